package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"airbnb-dashboard/models"
	"airbnb-dashboard/services"
	"airbnb-dashboard/storage"
)

// controls merges the request's parameters into the session's controls.
// Rejected selections leave the session untouched and return its previous
// controls alongside the error.
func (svc *APIService) controls(ctx echo.Context) (services.Controls, error) {
	id := sessionID(ctx)
	current := svc.sessions.Get(id)

	req := newControlsRequest(current)
	if err := ctx.Bind(&req); err != nil {
		return current, err
	}

	next := req.controls()
	if next.Extended != current.Extended && !services.ScheduleFor(next.Extended).HasLabel(next.PriceRange) {
		next.PriceRange = ""
	}
	next = svc.dashboard.WithDefaults(next)
	if err := svc.dashboard.Validate(next); err != nil {
		return current, err
	}

	svc.sessions.Put(id, next)
	return next, nil
}

func (svc *APIService) GetDashboard(ctx echo.Context) error {
	c, err := svc.controls(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, svc.dashboard.Build(c))
}

func (svc *APIService) GetBrackets(ctx echo.Context) error {
	c, err := svc.controls(ctx)
	if err != nil {
		return err
	}

	type response struct {
		Schedule string   `json:"schedule"`
		Ranges   []string `json:"ranges"`
		Selected string   `json:"selected"`
	}
	s := services.ScheduleFor(c.Extended)
	return ctx.JSON(http.StatusOK, response{Schedule: s.Name, Ranges: s.Labels, Selected: c.PriceRange})
}

func (svc *APIService) GetPriceListings(ctx echo.Context) error {
	c, err := svc.controls(ctx)
	if err != nil {
		return err
	}
	panel, err := svc.dashboard.PricePanel(c)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, panel.Listings)
}

func (svc *APIService) GetExtremes(ctx echo.Context) error {
	type response struct {
		MostExpensive models.Table `json:"most_expensive"`
		Cheapest      models.Table `json:"cheapest"`
	}
	var resp response
	resp.MostExpensive, resp.Cheapest = svc.dashboard.Extremes()
	return ctx.JSON(http.StatusOK, resp)
}

func (svc *APIService) GetAverages(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, svc.dashboard.Averages())
}

func (svc *APIService) GetScatter(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, svc.dashboard.Scatter())
}

func (svc *APIService) GetNeighbourhoods(ctx echo.Context) error {
	names := svc.dashboard.Neighbourhoods()
	if names == nil {
		names = []string{}
	}
	return ctx.JSON(http.StatusOK, names)
}

func (svc *APIService) GetMap(ctx echo.Context) error {
	c, err := svc.controls(ctx)
	if err != nil {
		return err
	}
	panel, err := svc.dashboard.NeighbourhoodPanel(c)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, panel.Map)
}

func (svc *APIService) GetRoomTypeListings(ctx echo.Context) error {
	c, err := svc.controls(ctx)
	if err != nil {
		return err
	}
	panel, err := svc.dashboard.PropertyPanel(c)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, panel.Listings)
}

func (svc *APIService) GetPie(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, svc.dashboard.Pie())
}

// ExportListings streams one dashboard view as CSV. The view query parameter
// picks the table: price (default), neighbourhood, room_type or all.
func (svc *APIService) ExportListings(ctx echo.Context) error {
	c, err := svc.controls(ctx)
	if err != nil {
		return err
	}
	view := ctx.QueryParam("view")
	table, err := svc.dashboard.Listings(view, c)
	if err != nil {
		return err
	}

	if view == "" {
		view = services.ViewPrice
	}
	res := ctx.Response()
	res.Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	res.Header().Set(echo.HeaderContentDisposition, `attachment; filename="listings-`+view+`.csv"`)
	res.WriteHeader(http.StatusOK)

	w, err := storage.NewCSVWriter(res)
	if err != nil {
		return err
	}
	if err := storage.WriteTable(w, table); err != nil {
		return err
	}
	svc.logger.Debug("[api] Exported %d listings (%s view)", table.Len(), view)
	return nil
}
