package services

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"

	"airbnb-dashboard/models"
	"airbnb-dashboard/utils"
)

// Scatter viewport. Points outside stay in the series; only the view is clipped.
const (
	ScatterXMin = 0
	ScatterXMax = 10
	ScatterYMin = 0
	ScatterYMax = 1000
)

// Map controls.
const (
	MinZoom       = 10.0
	MaxZoom       = 15.0
	ZoomStep      = 0.5
	DefaultZoom   = 13.0
	MinRadius     = 15.0
	MaxRadius     = 65.0
	RadiusStep    = 5.0
	DefaultRadius = 40.0
)

// ExtremesCount is how many listings the most/least expensive tables show.
const ExtremesCount = 5

var (
	pieColors  = []string{"#D8BFD8", "#89CFF0", "#953553", "#51414F"}
	pieExplode = []float64{0.025, 0.025, 0.35, 0.35}
)

// Controls carries one user's current selections.
type Controls struct {
	Extended      bool            `json:"extended"`
	PriceRange    string          `json:"range"`
	Neighbourhood string          `json:"neighbourhood"`
	RoomType      models.RoomType `json:"room_type"`
	Zoom          float64         `json:"zoom"`
	Radius        float64         `json:"radius"`
	SortByPrice   bool            `json:"sort_by_price"`
}

// PricePanel backs the "Price Analysis" tab.
type PricePanel struct {
	Schedule      string         `json:"schedule"`
	Ranges        []string       `json:"ranges"`
	SelectedRange string         `json:"selected_range"`
	Listings      models.Table   `json:"listings"`
	MostExpensive models.Table   `json:"most_expensive"`
	Cheapest      models.Table   `json:"cheapest"`
	Averages      []GroupAverage `json:"averages"`
	Scatter       ScatterChart   `json:"scatter"`
}

// GroupAverage is one bar of the average price chart.
type GroupAverage struct {
	Neighbourhood string  `json:"neighbourhood"`
	AveragePrice  float64 `json:"average_price"`
}

// ScatterChart is the price vs reviews-per-month chart with its viewport.
type ScatterChart struct {
	Points []ScatterPoint `json:"points"`
	XMin   float64        `json:"x_min"`
	XMax   float64        `json:"x_max"`
	YMin   float64        `json:"y_min"`
	YMax   float64        `json:"y_max"`
}

// NeighbourhoodPanel backs the "Neighbourhood Explorer" tab.
type NeighbourhoodPanel struct {
	Options  []string `json:"options"`
	Selected string   `json:"selected"`
	Map      *MapView `json:"map"`
}

// MapView is everything the map renderer needs.
type MapView struct {
	Points    []MapPoint `json:"points"`
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	Zoom      float64    `json:"zoom"`
	Pitch     float64    `json:"pitch"`
	Radius    float64    `json:"radius"`
	Style     string     `json:"style"`
	Legend    []Legend   `json:"legend"`
}

// MapPoint is one listing on the map with its tooltip fields.
type MapPoint struct {
	Latitude  float64         `json:"latitude"`
	Longitude float64         `json:"longitude"`
	Color     Color           `json:"color"`
	Category  PriceCategory   `json:"category"`
	Name      string          `json:"name"`
	RoomType  models.RoomType `json:"room_type"`
	Price     *float64        `json:"price"`
}

// Legend explains one map colour.
type Legend struct {
	Category PriceCategory `json:"category"`
	Color    Color         `json:"color"`
	Text     string        `json:"text"`
}

// PropertyPanel backs the "Property Analysis" tab.
type PropertyPanel struct {
	Options  []models.RoomType `json:"options"`
	Selected models.RoomType   `json:"selected"`
	Listings models.Table      `json:"listings"`
	Pie      []PieSlice        `json:"pie"`
}

// PieSlice is one room type share.
type PieSlice struct {
	Label   models.RoomType `json:"label"`
	Count   int             `json:"count"`
	Percent float64         `json:"percent"`
	Color   string          `json:"color"`
	Explode float64         `json:"explode"`
}

// Panel wraps a panel's data or the error that prevented building it.
type Panel[T any] struct {
	Data  *T     `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
	Empty bool   `json:"empty,omitempty"`
	err   error
}

// Err returns the error the panel failed with, if any.
func (p Panel[T]) Err() error { return p.err }

func newPanel[T any](data *T, err error) Panel[T] {
	if err != nil {
		var empty *models.EmptyViewError
		return Panel[T]{Error: err.Error(), Empty: errors.As(err, &empty), err: err}
	}
	return Panel[T]{Data: data}
}

// Dashboard holds the three panels built for one set of controls.
type Dashboard struct {
	Controls      Controls                  `json:"controls"`
	Price         Panel[PricePanel]         `json:"price"`
	Neighbourhood Panel[NeighbourhoodPanel] `json:"neighbourhood"`
	Property      Panel[PropertyPanel]      `json:"property"`
}

// DashboardService builds panels from the read-only base table.
type DashboardService struct {
	logger   *utils.Logger
	base     models.Table
	mapStyle string
}

// NewDashboardService creates a DashboardService over base. The table must
// not be modified afterwards.
func NewDashboardService(logger *utils.Logger, base models.Table, mapStyle string) *DashboardService {
	return &DashboardService{logger: logger, base: base, mapStyle: mapStyle}
}

// Base returns the loaded table.
func (s *DashboardService) Base() models.Table { return s.base }

// Neighbourhoods lists the neighbourhoods present in the dataset.
func (s *DashboardService) Neighbourhoods() []string { return Neighbourhoods(s.base) }

// WithDefaults fills unset selections the way the dashboard first opens:
// first price range, first neighbourhood, private rooms, zoom 13, radius 40.
func (s *DashboardService) WithDefaults(c Controls) Controls {
	if c.PriceRange == "" {
		c.PriceRange = ScheduleFor(c.Extended).Labels[0]
	}
	if c.Neighbourhood == "" {
		if names := s.Neighbourhoods(); len(names) > 0 {
			c.Neighbourhood = names[0]
		}
	}
	if c.RoomType == "" {
		c.RoomType = s.defaultRoomType()
	}
	if c.Zoom == 0 {
		c.Zoom = DefaultZoom
	}
	if c.Radius == 0 {
		c.Radius = DefaultRadius
	}
	return c
}

// Validate rejects selections the dataset or the active schedule does not
// offer. An empty dataset has no neighbourhoods or room types, so blank ones
// are accepted.
func (s *DashboardService) Validate(c Controls) error {
	if !ScheduleFor(c.Extended).HasLabel(c.PriceRange) {
		return &models.InvalidCategoryError{Field: "price range", Value: c.PriceRange}
	}
	if !(s.base.Empty() && c.Neighbourhood == "") && !contains(s.Neighbourhoods(), c.Neighbourhood) {
		return &models.InvalidCategoryError{Field: "neighbourhood", Value: c.Neighbourhood}
	}
	if !(s.base.Empty() && c.RoomType == "") && !hasRoomType(RoomTypes(s.base), c.RoomType) {
		return &models.InvalidCategoryError{Field: "room type", Value: string(c.RoomType)}
	}
	return nil
}

// RoomTypes lists the room types present in the dataset, in the order the
// dashboard offers them. Types outside the known four follow in first-seen
// order.
func (s *DashboardService) RoomTypes() []models.RoomType {
	observed := RoomTypes(s.base)
	result := make([]models.RoomType, 0, len(observed))
	for _, rt := range models.AllRoomTypes {
		if hasRoomType(observed, rt) {
			result = append(result, rt)
		}
	}
	for _, rt := range observed {
		if !hasRoomType(models.AllRoomTypes, rt) {
			result = append(result, rt)
		}
	}
	return result
}

func (s *DashboardService) defaultRoomType() models.RoomType {
	if types := s.RoomTypes(); len(types) > 0 {
		return types[0]
	}
	return ""
}

// Export views accepted by Listings.
const (
	ViewPrice         = "price"
	ViewNeighbourhood = "neighbourhood"
	ViewRoomType      = "room_type"
	ViewAll           = "all"
)

// Listings returns the table behind one of the dashboard views, filtered by
// the current controls. An empty view name means ViewPrice.
func (s *DashboardService) Listings(view string, c Controls) (models.Table, error) {
	c = s.WithDefaults(c)
	if s.base.Empty() && (view == ViewNeighbourhood || view == ViewRoomType) {
		return models.Table{}, nil
	}
	switch view {
	case "", ViewPrice:
		p, err := s.PricePanel(c)
		if err != nil {
			return nil, err
		}
		return p.Listings, nil
	case ViewNeighbourhood:
		return FilterByNeighbourhood(s.base, c.Neighbourhood)
	case ViewRoomType:
		return FilterByRoomType(s.base, c.RoomType)
	case ViewAll:
		return s.base, nil
	default:
		return nil, &models.InvalidCategoryError{Field: "view", Value: view}
	}
}

// Build computes every panel. A failing panel records its error and does
// not affect the others.
func (s *DashboardService) Build(c Controls) *Dashboard {
	c = s.WithDefaults(c)

	price, err := s.PricePanel(c)
	d := &Dashboard{Controls: c, Price: newPanel(price, err)}
	if err != nil {
		s.logger.Debug("[dashboard] price panel: %v", err)
	}

	hood, err := s.NeighbourhoodPanel(c)
	d.Neighbourhood = newPanel(hood, err)
	if err != nil {
		s.logger.Debug("[dashboard] neighbourhood panel: %v", err)
	}

	property, err := s.PropertyPanel(c)
	d.Property = newPanel(property, err)
	if err != nil {
		s.logger.Debug("[dashboard] property panel: %v", err)
	}
	return d
}

// PricePanel builds the price analysis tab.
func (s *DashboardService) PricePanel(c Controls) (*PricePanel, error) {
	schedule := ScheduleFor(c.Extended)
	selected := c.PriceRange
	if selected == "" {
		selected = schedule.Labels[0]
	}

	listings, err := FilterByBracket(s.base, selected, schedule)
	if err != nil {
		return nil, err
	}
	if c.SortByPrice {
		listings = SortByPrice(listings, Ascending)
	}

	return &PricePanel{
		Schedule:      schedule.Name,
		Ranges:        schedule.Labels,
		SelectedRange: selected,
		Listings:      listings,
		MostExpensive: TopK(s.base, ExtremesCount, Descending),
		Cheapest:      TopK(s.base, ExtremesCount, Ascending),
		Averages:      s.Averages(),
		Scatter:       s.Scatter(),
	}, nil
}

// Scatter returns the full price vs reviews-per-month series with the
// fixed chart viewport.
func (s *DashboardService) Scatter() ScatterChart {
	return ScatterChart{
		Points: ScatterSeries(s.base),
		XMin:   ScatterXMin,
		XMax:   ScatterXMax,
		YMin:   ScatterYMin,
		YMax:   ScatterYMax,
	}
}

// Extremes returns the most and least expensive listings of the dataset.
func (s *DashboardService) Extremes() (mostExpensive, cheapest models.Table) {
	return TopK(s.base, ExtremesCount, Descending), TopK(s.base, ExtremesCount, Ascending)
}

// Averages returns the average price per neighbourhood, sorted by name and
// rounded to cents.
func (s *DashboardService) Averages() []GroupAverage {
	means := AverageByGroup(s.base)
	result := make([]GroupAverage, 0, len(means))
	for name, mean := range means {
		result = append(result, GroupAverage{Neighbourhood: name, AveragePrice: round2(mean)})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Neighbourhood < result[j].Neighbourhood })
	return result
}

// NeighbourhoodPanel builds the neighbourhood explorer tab.
func (s *DashboardService) NeighbourhoodPanel(c Controls) (*NeighbourhoodPanel, error) {
	if s.base.Empty() {
		return nil, &models.EmptyViewError{View: "map"}
	}
	subset, err := FilterByNeighbourhood(s.base, c.Neighbourhood)
	if err != nil {
		return nil, err
	}

	view, err := s.MapView(subset, c.Zoom, c.Radius)
	if err != nil {
		return nil, err
	}

	return &NeighbourhoodPanel{
		Options:  s.Neighbourhoods(),
		Selected: c.Neighbourhood,
		Map:      view,
	}, nil
}

// MapView centres a map on t and colours each point by price tier.
func (s *DashboardService) MapView(t models.Table, zoom, radius float64) (*MapView, error) {
	lat, lon, err := Centroid(t)
	if err != nil {
		return nil, err
	}

	points := make([]MapPoint, 0, len(t))
	for _, l := range t {
		cat, col := Classify(l.Price)
		points = append(points, MapPoint{
			Latitude:  l.Latitude,
			Longitude: l.Longitude,
			Color:     col,
			Category:  cat,
			Name:      l.Name,
			RoomType:  l.RoomType,
			Price:     l.Price,
		})
	}

	legend := make([]Legend, 0, len(Categories))
	for _, c := range Categories {
		legend = append(legend, Legend{Category: c.Category, Color: c.Color, Text: c.Legend})
	}

	return &MapView{
		Points:    points,
		Latitude:  lat,
		Longitude: lon,
		Zoom:      zoom,
		Radius:    radius,
		Style:     s.mapStyle,
		Legend:    legend,
	}, nil
}

// PropertyPanel builds the property analysis tab.
func (s *DashboardService) PropertyPanel(c Controls) (*PropertyPanel, error) {
	listings := models.Table{}
	if !s.base.Empty() {
		var err error
		if listings, err = FilterByRoomType(s.base, c.RoomType); err != nil {
			return nil, err
		}
	}

	return &PropertyPanel{
		Options:  s.RoomTypes(),
		Selected: c.RoomType,
		Listings: listings,
		Pie:      s.Pie(),
	}, nil
}

// Pie returns the room type shares, largest first.
func (s *DashboardService) Pie() []PieSlice {
	counts := RoomTypeCounts(s.base)
	total := len(s.base)

	slices := make([]PieSlice, 0, len(counts))
	for i, rc := range counts {
		slice := PieSlice{Label: rc.RoomType, Count: rc.Count}
		if total > 0 {
			slice.Percent = decimal.NewFromInt(int64(rc.Count) * 100).
				Div(decimal.NewFromInt(int64(total))).
				Round(1).InexactFloat64()
		}
		if i < len(pieColors) {
			slice.Color = pieColors[i]
			slice.Explode = pieExplode[i]
		}
		slices = append(slices, slice)
	}
	return slices
}

func round2(f float64) float64 {
	return decimal.NewFromFloat(f).Round(2).InexactFloat64()
}
