package services

import (
	"errors"
	"testing"

	"airbnb-dashboard/models"
	"airbnb-dashboard/utils"
)

func newTestLogger() *utils.Logger { return utils.NewNopLogger() }

func rawRow(line int, price string) *models.RawListing {
	return &models.RawListing{
		Line:                        line,
		ID:                          "3781",
		HostID:                      "4804",
		Name:                        "  HARBORSIDE-Walk to subway ",
		HostName:                    "Frank",
		Neighbourhood:               "East   Boston",
		Latitude:                    "42.36413",
		Longitude:                   "-71.02991",
		RoomType:                    "Entire home/apt",
		Price:                       price,
		MinimumNights:               "29",
		NumberOfReviews:             "19",
		LastReview:                  "2021-02-26",
		ReviewsPerMonth:             "0.27",
		CalculatedHostListingsCount: "1",
		Availability365:             "106",
		NumberOfReviewsLTM:          "0",
	}
}

func TestCleanerParsePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		null bool
	}{
		{"125", 125, false},
		{"$1,200.00", 1200, false},
		{" 99.5 ", 99.5, false},
		{"1e3", 1000, false},
		{"", 0, true},
		{"   ", 0, true},
		{"N/A", 0, true},
		{"NA", 0, true},
		{"nan", 0, true},
	}

	for _, tt := range tests {
		got, err := parsePrice(tt.raw)
		if err != nil {
			t.Errorf("parsePrice(%q): unexpected error %v", tt.raw, err)
			continue
		}
		if tt.null {
			if got != nil {
				t.Errorf("parsePrice(%q) = %.2f; want nil", tt.raw, *got)
			}
			continue
		}
		if got == nil || *got != tt.want {
			t.Errorf("parsePrice(%q) = %v; want %.2f", tt.raw, got, tt.want)
		}
	}

	for _, raw := range []string{"call host", "abc 12", "12-50", "-20", "$-5.00", "Inf"} {
		if got, err := parsePrice(raw); err == nil {
			t.Errorf("parsePrice(%q) = %v; expected error", raw, got)
		}
	}
}

func TestCleanerTreatsNATokensAsMissing(t *testing.T) {
	r := rawRow(2, "NA")
	r.ReviewsPerMonth = "NaN"
	r.LastReview = "N/A"

	table, err := NewCleaner(newTestLogger(), "listings.csv").Clean([]*models.RawListing{r})
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	l := table[0]
	if l.Price != nil || l.ReviewsPerMonth != nil || l.LastReview != nil {
		t.Errorf("NA cells should be nil, got price=%v rpm=%v last=%v", l.Price, l.ReviewsPerMonth, l.LastReview)
	}
}

func TestCleanerClean(t *testing.T) {
	c := NewCleaner(newTestLogger(), "listings.csv")
	raw := []*models.RawListing{rawRow(2, "125"), rawRow(3, "")}
	raw[1].ReviewsPerMonth = ""
	raw[1].LastReview = ""
	raw[1].NumberOfReviewsLTM = ""

	table, err := c.Clean(raw)
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("rows: got %d, want 2", table.Len())
	}

	first := table[0]
	if first.ID != 3781 || first.HostID != 4804 {
		t.Errorf("ids: got (%d, %d)", first.ID, first.HostID)
	}
	if first.Name != "HARBORSIDE-Walk to subway" {
		t.Errorf("name: got %q", first.Name)
	}
	if first.Neighbourhood != "East Boston" {
		t.Errorf("neighbourhood: got %q", first.Neighbourhood)
	}
	if first.RoomType != models.RoomEntireHome {
		t.Errorf("room type: got %q", first.RoomType)
	}
	if first.Price == nil || *first.Price != 125 {
		t.Errorf("price: got %v, want 125", first.Price)
	}
	if first.LastReview == nil || first.LastReview.Format("2006-01-02") != "2021-02-26" {
		t.Errorf("last review: got %v", first.LastReview)
	}
	if first.MinimumNights != 29 || first.Availability365 != 106 {
		t.Errorf("counters: got (%d, %d)", first.MinimumNights, first.Availability365)
	}

	second := table[1]
	if second.HasPrice() {
		t.Errorf("blank price should be nil, got %.2f", *second.Price)
	}
	if second.ReviewsPerMonth != nil || second.LastReview != nil {
		t.Error("blank optional fields should be nil")
	}
	if second.NumberOfReviewsLTM != 0 {
		t.Errorf("blank counter: got %d, want 0", second.NumberOfReviewsLTM)
	}
}

func TestCleanerRejectsMalformedRow(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.RawListing)
	}{
		{"latitude", func(r *models.RawListing) { r.Latitude = "north" }},
		{"id", func(r *models.RawListing) { r.ID = "" }},
		{"price", func(r *models.RawListing) { r.Price = "n/a" }},
		{"last_review", func(r *models.RawListing) { r.LastReview = "26/02/2021" }},
		{"minimum_nights", func(r *models.RawListing) { r.MinimumNights = "2.5" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCleaner(newTestLogger(), "listings.csv")
			bad := rawRow(7, "100")
			tt.mutate(bad)

			_, err := c.Clean([]*models.RawListing{rawRow(2, "50"), bad})
			var le *models.LoadError
			if !errors.As(err, &le) {
				t.Fatalf("expected LoadError, got %v", err)
			}
			if le.Line != 7 {
				t.Errorf("line: got %d, want 7", le.Line)
			}
			if le.Source != "listings.csv" {
				t.Errorf("source: got %q", le.Source)
			}
		})
	}
}

func TestNormaliseText(t *testing.T) {
	tests := []struct{ in, want string }{
		{"  Back   Bay ", "Back Bay"},
		{"Roxbury", "Roxbury"},
		{"\tSouth\nEnd", "South End"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normaliseText(tt.in); got != tt.want {
			t.Errorf("normaliseText(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}
