package cmd

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	snapshotFlags   controlsFlags
	snapshotTab     string
	snapshotTimeout time.Duration
	snapshotSettle  time.Duration
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Render one dashboard tab in headless Chrome and save a PNG",
	RunE: func(cmd *cobra.Command, args []string) error {
		switch snapshotTab {
		case "price", "neighbourhood", "property":
		default:
			return fmt.Errorf("snapshot: unknown tab %q (want price, neighbourhood or property)", snapshotTab)
		}

		table, err := loadDataset(cmd.Context())
		if err != nil {
			return err
		}

		dashboard := newDashboard(table)
		c := dashboard.WithDefaults(snapshotFlags.controls())
		if err := dashboard.Validate(c); err != nil {
			return err
		}

		svc, err := newAPI(dashboard)
		if err != nil {
			return err
		}

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("snapshot: listen: %w", err)
		}
		target := fmt.Sprintf("http://%s/?%s#%s", ln.Addr(), queryFor(c), snapshotTab)

		ctx, cancel := context.WithTimeout(cmd.Context(), snapshotTimeout)
		defer cancel()

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return svc.ServeListener(ln)
		})
		g.Go(func() error {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				_ = svc.Shutdown(shutdownCtx)
			}()

			png, err := capture(gctx, target)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(cfg.SnapshotPath), 0755); err != nil {
				return fmt.Errorf("snapshot: create output dir: %w", err)
			}
			if err := os.WriteFile(cfg.SnapshotPath, png, 0644); err != nil {
				return fmt.Errorf("snapshot: write %q: %w", cfg.SnapshotPath, err)
			}
			logger.Info("[snapshot] Saved %s tab to %s", snapshotTab, cfg.SnapshotPath)
			return nil
		})
		return g.Wait()
	},
}

func init() {
	snapshotFlags.register(snapshotCmd)
	f := snapshotCmd.Flags()
	f.StringVar(&snapshotTab, "tab", "price", "tab to capture: price, neighbourhood or property")
	f.DurationVar(&snapshotTimeout, "timeout", time.Minute, "give up after this long")
	f.DurationVar(&snapshotSettle, "settle", 3*time.Second, "time to let charts and map tiles draw")
	f.StringP("output", "o", "", "PNG file to write (env SNAPSHOT_PATH)")
	f.String("chrome", "", "Chrome/Chromium binary (env CHROME_BIN)")
	bindFlag("snapshot_path", f.Lookup("output"))
	bindFlag("chrome_bin", f.Lookup("chrome"))
	rootCmd.AddCommand(snapshotCmd)
}

func capture(ctx context.Context, target string) ([]byte, error) {
	chromeBin := findChromeBinary(cfg.ChromeBin)
	logger.Info("[snapshot] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1440, 900),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	var png []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(target),
		chromedp.WaitVisible("section.tab.active", chromedp.ByQuery),
		chromedp.Sleep(snapshotSettle),
		chromedp.FullScreenshot(&png, 100),
	)
	if err != nil {
		return nil, fmt.Errorf("snapshot: capture %s: %w", target, err)
	}
	return png, nil
}

// findChromeBinary prefers the configured binary, then well-known names on
// PATH, then common install locations. Empty means let chromedp decide.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
