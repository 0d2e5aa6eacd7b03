package api

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"

	"airbnb-dashboard/models"
	"airbnb-dashboard/services"
)

//go:embed templates/*.html
var templateFS embed.FS

type templateRenderer struct {
	templates *template.Template
}

func newTemplateRenderer() (*templateRenderer, error) {
	t, err := template.New("").Funcs(template.FuncMap{
		"price": formatPrice,
		"rate":  formatRate,
		"rgb": func(c services.Color) template.CSS {
			return template.CSS(fmt.Sprintf("rgb(%d, %d, %d)", c[0], c[1], c[2]))
		},
		"minZoom":    func() float64 { return services.MinZoom },
		"maxZoom":    func() float64 { return services.MaxZoom },
		"zoomStep":   func() float64 { return services.ZoomStep },
		"minRadius":  func() float64 { return services.MinRadius },
		"maxRadius":  func() float64 { return services.MaxRadius },
		"radiusStep": func() float64 { return services.RadiusStep },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("api: parse templates: %w", err)
	}
	return &templateRenderer{templates: t}, nil
}

func (r *templateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

type pageData struct {
	Dashboard *services.Dashboard
	Notice    string
	// State is the dashboard as JSON for the client-side chart and map renderers.
	State template.JS
}

// Index renders the three-tab dashboard. A rejected selection re-renders the
// previous state with a notice and status 422.
func (svc *APIService) Index(ctx echo.Context) error {
	status := http.StatusOK
	notice := ""

	c, err := svc.controls(ctx)
	if err != nil {
		var invalid *models.InvalidCategoryError
		if !errors.As(err, &invalid) {
			return err
		}
		status = http.StatusUnprocessableEntity
		notice = err.Error()
	}

	d := svc.dashboard.Build(c)
	state, err := sonic.ConfigStd.MarshalToString(d)
	if err != nil {
		return fmt.Errorf("api: encode dashboard: %w", err)
	}

	return ctx.Render(status, "dashboard.html", pageData{
		Dashboard: d,
		Notice:    notice,
		State:     template.JS(state),
	})
}

func formatPrice(p *float64) string {
	if p == nil {
		return "N/A"
	}
	return "$" + strconv.FormatFloat(*p, 'f', 2, 64)
}

func formatRate(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', 2, 64)
}
