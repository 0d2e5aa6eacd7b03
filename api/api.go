package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"airbnb-dashboard/services"
	"airbnb-dashboard/utils"
)

// Options configures the HTTP surface.
type Options struct {
	AllowOrigins  []string
	DefaultZoom   float64
	DefaultRadius float64
}

// APIService serves the dashboard page and its JSON endpoints.
type APIService struct {
	router    *echo.Echo
	logger    *utils.Logger
	dashboard *services.DashboardService
	sessions  *SessionStore
}

// NewAPIService wires routes and middleware around dashboard.
func NewAPIService(logger *utils.Logger, dashboard *services.DashboardService, opts Options) (*APIService, error) {
	svc := &APIService{
		router:    echo.New(),
		logger:    logger,
		dashboard: dashboard,
	}
	defaults := dashboard.WithDefaults(services.Controls{
		Zoom:   opts.DefaultZoom,
		Radius: opts.DefaultRadius,
	})
	validator := NewValidator()
	req := newControlsRequest(defaults)
	if err := validator.Validate(&req); err != nil {
		return nil, fmt.Errorf("api: default map controls: %w", err)
	}
	svc.sessions = NewSessionStore(defaults, sessionMaxAge)

	renderer, err := newTemplateRenderer()
	if err != nil {
		return nil, err
	}

	svc.router.HideBanner = true
	svc.router.HidePort = true
	svc.router.Renderer = renderer
	svc.router.JSONSerializer = sonicSerializer{}
	svc.router.Validator = validator
	svc.router.Binder = NewBinder()
	svc.router.HTTPErrorHandler = svc.httpErrorHandler

	origins := opts.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	svc.router.Use(middleware.Recover())
	svc.router.Use(svc.requestLogger())
	svc.router.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{echo.GET, echo.POST},
		AllowHeaders: []string{echo.HeaderContentType},
	}))
	svc.router.Use(svc.SessionMiddleware)

	svc.router.GET("/", svc.Index)

	api := svc.router.Group("/api/v1")
	api.GET("/dashboard", svc.GetDashboard)
	api.POST("/controls", svc.GetDashboard)
	api.GET("/brackets", svc.GetBrackets)
	api.GET("/averages", svc.GetAverages)
	api.GET("/scatter", svc.GetScatter)
	api.GET("/neighbourhoods", svc.GetNeighbourhoods)
	api.GET("/map", svc.GetMap)
	api.GET("/pie", svc.GetPie)

	listings := api.Group("/listings")
	listings.GET("/price", svc.GetPriceListings)
	listings.GET("/extremes", svc.GetExtremes)
	listings.GET("/room-type", svc.GetRoomTypeListings)
	listings.GET("/export", svc.ExportListings)

	return svc, nil
}

// Handler exposes the router for tests and embedding.
func (svc *APIService) Handler() http.Handler {
	return svc.router
}

// Serve listens on addr until Shutdown is called.
func (svc *APIService) Serve(addr string) error {
	svc.logger.Info("[api] Listening on %s", addr)
	return svc.start(addr)
}

// ServeListener serves on an already bound listener.
func (svc *APIService) ServeListener(ln net.Listener) error {
	svc.router.Listener = ln
	svc.logger.Info("[api] Listening on %s", ln.Addr())
	return svc.start("")
}

func (svc *APIService) start(addr string) error {
	if err := svc.router.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api: serve: %w", err)
	}
	return nil
}

func (svc *APIService) Shutdown(ctx context.Context) error {
	return svc.router.Shutdown(ctx)
}
