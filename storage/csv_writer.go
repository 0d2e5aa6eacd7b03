package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"airbnb-dashboard/models"
)

// ExportColumns is the header written by CSVWriter. It matches the source
// file minus the dropped column.
var ExportColumns = []string{
	"id", "host_id", "name", "host_name", "neighbourhood", "latitude", "longitude",
	"room_type", "price", "minimum_nights", "number_of_reviews", "last_review",
	"reviews_per_month", "calculated_host_listings_count", "availability_365",
	"number_of_reviews_ltm", "license",
}

// CSVWriter writes listing tables as CSV. It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	closer io.Closer
	writer *csv.Writer
}

// NewCSVWriter wraps w and writes the header row.
func NewCSVWriter(w io.Writer) (*CSVWriter, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportColumns); err != nil {
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	cw.Flush()
	return &CSVWriter{writer: cw}, cw.Error()
}

// NewCSVFileWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVFileWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w, err := NewCSVWriter(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	w.closer = f
	return w, nil
}

// Write appends every row of the table.
func (c *CSVWriter) Write(table models.Table) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, l := range table {
		if err := c.writer.Write(listingRow(l)); err != nil {
			return fmt.Errorf("csv: write row %d: %w", l.ID, err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file, if any.
func (c *CSVWriter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.writer.Flush()
	flushErr := c.writer.Error()
	if c.closer != nil {
		if err := c.closer.Close(); err != nil && flushErr == nil {
			return fmt.Errorf("csv: close: %w", err)
		}
	}
	if flushErr != nil {
		return fmt.Errorf("csv: flush: %w", flushErr)
	}
	return nil
}

func listingRow(l *models.Listing) []string {
	lastReview := ""
	if l.LastReview != nil {
		lastReview = l.LastReview.Format("2006-01-02")
	}
	return []string{
		strconv.FormatInt(l.ID, 10),
		strconv.FormatInt(l.HostID, 10),
		l.Name,
		l.HostName,
		l.Neighbourhood,
		formatFloat(l.Latitude),
		formatFloat(l.Longitude),
		string(l.RoomType),
		formatOptional(l.Price),
		strconv.Itoa(l.MinimumNights),
		strconv.Itoa(l.NumberOfReviews),
		lastReview,
		formatOptional(l.ReviewsPerMonth),
		strconv.Itoa(l.CalculatedHostListingsCount),
		strconv.Itoa(l.Availability365),
		strconv.Itoa(l.NumberOfReviewsLTM),
		l.License,
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatOptional(f *float64) string {
	if f == nil {
		return ""
	}
	return formatFloat(*f)
}
