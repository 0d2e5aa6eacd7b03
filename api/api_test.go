package api

import (
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/bytedance/sonic"

	"airbnb-dashboard/models"
	"airbnb-dashboard/services"
	"airbnb-dashboard/utils"
)

func ptr(f float64) *float64 { return &f }

func testTable() models.Table {
	return models.Table{
		{ID: 1, Name: "Harbor loft", Neighbourhood: "East Boston", RoomType: models.RoomEntireHome, Price: ptr(125), Latitude: 42.36, Longitude: -71.03, ReviewsPerMonth: ptr(0.25)},
		{ID: 2, Name: "Sunny room", Neighbourhood: "Roxbury", RoomType: models.RoomPrivate, Price: ptr(60), Latitude: 42.32, Longitude: -71.09, ReviewsPerMonth: ptr(1.5)},
		{ID: 3, Name: "Penthouse", Neighbourhood: "Back Bay", RoomType: models.RoomEntireHome, Price: ptr(900), Latitude: 42.35, Longitude: -71.08},
		{ID: 4, Name: "No price yet", Neighbourhood: "Roxbury", RoomType: models.RoomPrivate, Latitude: 42.33, Longitude: -71.10},
		{ID: 5, Name: "Bunk", Neighbourhood: "East Boston", RoomType: models.RoomShared, Price: ptr(30), Latitude: 42.37, Longitude: -71.02},
		{ID: 6, Name: "Suite", Neighbourhood: "Back Bay", RoomType: models.RoomHotel, Price: ptr(500), Latitude: 42.35, Longitude: -71.07},
	}
}

func newTestAPI(t *testing.T, table models.Table) *APIService {
	t.Helper()
	logger := utils.NewNopLogger()
	dash := services.NewDashboardService(logger, table, "mapbox://styles/mapbox/light-v9")
	svc, err := NewAPIService(logger, dash, Options{DefaultZoom: 13, DefaultRadius: 40})
	if err != nil {
		t.Fatalf("NewAPIService: %v", err)
	}
	return svc
}

// client replays the session cookie between requests like a browser would.
type client struct {
	t      *testing.T
	svc    *APIService
	cookie *http.Cookie
}

func (c *client) do(method, target, body string) *httptest.ResponseRecorder {
	c.t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}

	rec := httptest.NewRecorder()
	c.svc.Handler().ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == cookieKeySession {
			c.cookie = ck
		}
	}
	return rec
}

func (c *client) get(target string) *httptest.ResponseRecorder {
	return c.do(http.MethodGet, target, "")
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := sonic.UnmarshalString(rec.Body.String(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestNeighbourhoods(t *testing.T) {
	c := &client{t: t, svc: newTestAPI(t, testTable())}
	rec := c.get("/api/v1/neighbourhoods")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	got := decode[[]string](t, rec)
	if len(got) != 3 || got[0] != "East Boston" {
		t.Errorf("got %v", got)
	}
}

func TestPriceListings(t *testing.T) {
	tests := []struct {
		target string
		code   int
		rows   int
	}{
		{"/api/v1/listings/price?range=50-100", http.StatusOK, 1},
		{"/api/v1/listings/price?range=0-50", http.StatusOK, 1},
		{"/api/v1/listings/price?range=550-600", http.StatusOK, 0},
		{"/api/v1/listings/price?range=600-1000", http.StatusUnprocessableEntity, 0},
		{"/api/v1/listings/price?extended=true&range=600-1000", http.StatusOK, 1},
	}

	for _, tt := range tests {
		c := &client{t: t, svc: newTestAPI(t, testTable())}
		rec := c.get(tt.target)
		if rec.Code != tt.code {
			t.Errorf("%s: status %d, want %d (%s)", tt.target, rec.Code, tt.code, rec.Body.String())
			continue
		}
		if tt.code != http.StatusOK {
			continue
		}
		if got := decode[[]models.Listing](t, rec); len(got) != tt.rows {
			t.Errorf("%s: %d rows, want %d", tt.target, len(got), tt.rows)
		}
	}
}

func TestInvalidCategoryBody(t *testing.T) {
	c := &client{t: t, svc: newTestAPI(t, testTable())}
	rec := c.get("/api/v1/listings/room-type?room_type=Castle")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d, want 422", rec.Code)
	}
	body := decode[ErrorResponse](t, rec)
	if body.Code != http.StatusUnprocessableEntity || !strings.Contains(body.Message, "Castle") {
		t.Errorf("body: got %+v", body)
	}
}

func TestMapControls(t *testing.T) {
	tests := []struct {
		query string
		code  int
	}{
		{"neighbourhood=Back%20Bay", http.StatusOK},
		{"neighbourhood=Back%20Bay&zoom=12.5&radius=30", http.StatusOK},
		{"zoom=12.3", http.StatusUnprocessableEntity},
		{"zoom=9.5", http.StatusUnprocessableEntity},
		{"radius=70", http.StatusUnprocessableEntity},
		{"radius=17", http.StatusUnprocessableEntity},
		{"neighbourhood=Atlantis", http.StatusUnprocessableEntity},
		{"zoom=abc", http.StatusBadRequest},
	}

	for _, tt := range tests {
		c := &client{t: t, svc: newTestAPI(t, testTable())}
		rec := c.get("/api/v1/map?" + tt.query)
		if rec.Code != tt.code {
			t.Errorf("%s: status %d, want %d (%s)", tt.query, rec.Code, tt.code, rec.Body.String())
		}
	}
}

func TestMapView(t *testing.T) {
	c := &client{t: t, svc: newTestAPI(t, testTable())}
	rec := c.get("/api/v1/map?neighbourhood=Back%20Bay&zoom=11&radius=25")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	view := decode[services.MapView](t, rec)
	if len(view.Points) != 2 || view.Zoom != 11 || view.Radius != 25 {
		t.Errorf("view: %d points, zoom %.1f, radius %.1f", len(view.Points), view.Zoom, view.Radius)
	}
	if view.Points[0].Color != services.ColorRed {
		t.Errorf("900 should be red, got %v", view.Points[0].Color)
	}
}

func TestMapEmptyDataset(t *testing.T) {
	c := &client{t: t, svc: newTestAPI(t, models.Table{})}
	rec := c.get("/api/v1/map")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want 404 (%s)", rec.Code, rec.Body.String())
	}
}

func TestSessionKeepsControls(t *testing.T) {
	svc := newTestAPI(t, testTable())
	c := &client{t: t, svc: svc}

	if rec := c.get("/api/v1/brackets?extended=true&range=600-1000"); rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if c.cookie == nil {
		t.Fatal("expected a session cookie")
	}

	type brackets struct {
		Schedule string `json:"schedule"`
		Selected string `json:"selected"`
	}
	got := decode[brackets](t, c.get("/api/v1/brackets"))
	if got.Schedule != "extended" || got.Selected != "600-1000" {
		t.Errorf("remembered controls: got %+v", got)
	}

	// A rejected selection leaves the session as it was.
	if rec := c.get("/api/v1/brackets?range=nope"); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d, want 422", rec.Code)
	}
	got = decode[brackets](t, c.get("/api/v1/brackets"))
	if got.Selected != "600-1000" {
		t.Errorf("after rejection: got %+v", got)
	}

	// Turning the toggle off resets a range the capped schedule lacks.
	got = decode[brackets](t, c.get("/api/v1/brackets?extended=false"))
	if got.Schedule != "capped" || got.Selected != "0-50" {
		t.Errorf("after toggle: got %+v", got)
	}

	if n := svc.sessions.Len(); n != 1 {
		t.Errorf("sessions: got %d, want 1", n)
	}

	other := &client{t: t, svc: svc}
	got = decode[brackets](t, other.get("/api/v1/brackets"))
	if got.Schedule != "capped" {
		t.Errorf("second visitor should start fresh, got %+v", got)
	}
}

func TestPostControls(t *testing.T) {
	c := &client{t: t, svc: newTestAPI(t, testTable())}
	rec := c.do(http.MethodPost, "/api/v1/controls", `{"room_type":"Entire home/apt","zoom":14.5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d (%s)", rec.Code, rec.Body.String())
	}
	d := decode[services.Dashboard](t, rec)
	if d.Controls.RoomType != models.RoomEntireHome || d.Controls.Zoom != 14.5 {
		t.Errorf("controls: got %+v", d.Controls)
	}
	if d.Property.Data == nil || len(d.Property.Data.Listings) != 2 {
		t.Errorf("property panel: got %+v", d.Property)
	}

	rec = c.do(http.MethodPost, "/api/v1/controls", `{"radius":100}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("radius 100: got %d, want 422", rec.Code)
	}
	rec = c.do(http.MethodPost, "/api/v1/controls", `{"radius":`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("broken body: got %d, want 400", rec.Code)
	}
}

func TestExtremesAndAggregates(t *testing.T) {
	c := &client{t: t, svc: newTestAPI(t, testTable())}

	type extremes struct {
		MostExpensive []models.Listing `json:"most_expensive"`
		Cheapest      []models.Listing `json:"cheapest"`
	}
	e := decode[extremes](t, c.get("/api/v1/listings/extremes"))
	if len(e.MostExpensive) != 5 || e.MostExpensive[0].ID != 3 || e.Cheapest[0].ID != 5 {
		t.Errorf("extremes: got %+v", e)
	}

	avgs := decode[[]services.GroupAverage](t, c.get("/api/v1/averages"))
	if len(avgs) != 3 || avgs[0].Neighbourhood != "Back Bay" || avgs[0].AveragePrice != 700 {
		t.Errorf("averages: got %+v", avgs)
	}

	pie := decode[[]services.PieSlice](t, c.get("/api/v1/pie"))
	if len(pie) != 4 {
		t.Errorf("pie: got %+v", pie)
	}

	scatter := decode[services.ScatterChart](t, c.get("/api/v1/scatter"))
	if len(scatter.Points) != 2 || scatter.YMax != 1000 {
		t.Errorf("scatter: got %+v", scatter)
	}
}

func TestExportListings(t *testing.T) {
	c := &client{t: t, svc: newTestAPI(t, testTable())}
	rec := c.get("/api/v1/listings/export?view=neighbourhood&neighbourhood=Roxbury")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d (%s)", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type: got %q", ct)
	}

	rows, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows: got %d, want header + 2", len(rows))
	}
	if rows[0][0] != "id" || rows[2][0] != "4" || rows[2][8] != "" {
		t.Errorf("rows: got %v", rows)
	}

	if rec := c.get("/api/v1/listings/export?view=calendar"); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("unknown view: got %d, want 422", rec.Code)
	}
}

func TestIndexRendersTabs(t *testing.T) {
	c := &client{t: t, svc: newTestAPI(t, testTable())}
	rec := c.get("/?range=100-150&neighbourhood=Roxbury&room_type=Private%20room")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d (%s)", rec.Code, rec.Body.String())
	}

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	if n := doc.Find("section.tab").Length(); n != 3 {
		t.Errorf("tabs: got %d, want 3", n)
	}
	if got := doc.Find("#range option[selected]").Text(); got != "100-150" {
		t.Errorf("selected range: got %q", got)
	}
	if n := doc.Find("#range option").Length(); n != 12 {
		t.Errorf("range options: got %d, want 12", n)
	}
	if n := doc.Find("#price-listings tbody tr").Length(); n != 1 {
		t.Errorf("price rows: got %d, want 1", n)
	}
	if got := doc.Find("#most-expensive tbody tr").First().Find("td.price").Text(); got != "$900.00" {
		t.Errorf("most expensive price: got %q", got)
	}
	if got := doc.Find("#neighbourhood-select option[selected]").Text(); got != "Roxbury" {
		t.Errorf("selected neighbourhood: got %q", got)
	}
	if n := doc.Find(".legend li").Length(); n != 4 {
		t.Errorf("legend entries: got %d, want 4", n)
	}
	if n := doc.Find("#room-type-listings tbody tr").Length(); n != 2 {
		t.Errorf("room type rows: got %d, want 2", n)
	}
	if !strings.Contains(doc.Find("script").Last().Text(), `"selected_range":"100-150"`) {
		t.Error("embedded state missing the selected range")
	}
}

func TestIndexNoResultsAndNotice(t *testing.T) {
	c := &client{t: t, svc: newTestAPI(t, testTable())}
	rec := c.get("/?range=550-600")
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Find("#price-listings .no-results").Length() != 1 {
		t.Error("empty bracket should render the no-results message")
	}

	rec = c.get("/?zoom=99")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d, want 422", rec.Code)
	}
	doc, err = goquery.NewDocumentFromReader(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Find(".notice").Length() != 1 {
		t.Error("rejected selection should show a notice")
	}
	if got := doc.Find("#range option[selected]").Text(); got != "550-600" {
		t.Errorf("previous range should be kept, got %q", got)
	}
}

func TestIndexEmptyDataset(t *testing.T) {
	c := &client{t: t, svc: newTestAPI(t, models.Table{})}
	rec := c.get("/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d (%s)", rec.Code, rec.Body.String())
	}
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Find("#neighbourhood .no-results").Length() != 1 {
		t.Error("map panel should say there is nothing to show")
	}
	if doc.Find("#property-form").Length() != 1 {
		t.Error("other panels should still render")
	}
}

func TestNewAPIServiceRejectsOffStepDefaults(t *testing.T) {
	logger := utils.NewNopLogger()
	dash := services.NewDashboardService(logger, testTable(), "")

	tests := []Options{
		{DefaultZoom: 12.3, DefaultRadius: 40},
		{DefaultZoom: 13, DefaultRadius: 42},
	}
	for _, opts := range tests {
		if _, err := NewAPIService(logger, dash, opts); err == nil {
			t.Errorf("NewAPIService(%+v): expected an error", opts)
		}
	}
}
