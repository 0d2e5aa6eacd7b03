package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"airbnb-dashboard/models"
	"airbnb-dashboard/utils"
)

// naTokens are the cell values pandas read_csv treats as missing by default.
var naTokens = map[string]struct{}{
	"#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {}, "-NaN": {}, "-nan": {},
	"1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {}, "NA": {}, "NULL": {}, "NaN": {}, "None": {},
	"n/a": {}, "nan": {}, "null": {},
}

// priceCleaner drops the currency sign and thousands separators.
var priceCleaner = strings.NewReplacer("$", "", ",", "")

// missing reports whether a trimmed cell holds no value.
func missing(raw string) bool {
	if raw == "" {
		return true
	}
	_, ok := naTokens[raw]
	return ok
}

// Cleaner turns RawListings into typed Listings.
type Cleaner struct {
	logger *utils.Logger
	source string
}

// NewCleaner creates a Cleaner; source names the dataset in error messages.
func NewCleaner(logger *utils.Logger, source string) *Cleaner {
	return &Cleaner{logger: logger, source: source}
}

// Clean parses every raw row. The first row carrying a value that cannot be
// parsed aborts the load with a *models.LoadError naming its line.
func (c *Cleaner) Clean(raw []*models.RawListing) (models.Table, error) {
	result := make(models.Table, 0, len(raw))
	unpriced := 0

	for _, r := range raw {
		l, err := c.parse(r)
		if err != nil {
			return nil, &models.LoadError{Source: c.source, Line: r.Line, Err: err}
		}
		if l.Price == nil {
			unpriced++
		}
		result = append(result, l)
	}

	c.logger.Info("[cleaner] Parsed %d listings (%d without a price)", len(result), unpriced)
	return result, nil
}

func (c *Cleaner) parse(r *models.RawListing) (*models.Listing, error) {
	var (
		l   = &models.Listing{}
		err error
	)

	if l.ID, err = parseInt64("id", r.ID); err != nil {
		return nil, err
	}
	if l.HostID, err = parseInt64("host_id", r.HostID); err != nil {
		return nil, err
	}
	if l.Latitude, err = parseFloat("latitude", r.Latitude); err != nil {
		return nil, err
	}
	if l.Longitude, err = parseFloat("longitude", r.Longitude); err != nil {
		return nil, err
	}
	if l.Price, err = parsePrice(r.Price); err != nil {
		return nil, err
	}
	if l.ReviewsPerMonth, err = parseOptionalFloat("reviews_per_month", r.ReviewsPerMonth); err != nil {
		return nil, err
	}
	if l.LastReview, err = parseDate("last_review", r.LastReview); err != nil {
		return nil, err
	}

	ints := []struct {
		name string
		raw  string
		dst  *int
	}{
		{"minimum_nights", r.MinimumNights, &l.MinimumNights},
		{"number_of_reviews", r.NumberOfReviews, &l.NumberOfReviews},
		{"calculated_host_listings_count", r.CalculatedHostListingsCount, &l.CalculatedHostListingsCount},
		{"availability_365", r.Availability365, &l.Availability365},
		{"number_of_reviews_ltm", r.NumberOfReviewsLTM, &l.NumberOfReviewsLTM},
	}
	for _, f := range ints {
		if *f.dst, err = parseInt(f.name, f.raw); err != nil {
			return nil, err
		}
	}

	l.Name = normaliseText(r.Name)
	l.HostName = normaliseText(r.HostName)
	l.Neighbourhood = normaliseText(r.Neighbourhood)
	l.RoomType = models.RoomType(normaliseText(r.RoomType))
	l.License = strings.TrimSpace(r.License)
	return l, nil
}

// parsePrice extracts a nightly price. Blank and NA cells mean "no price".
// Examples:
//
//	"125"       → 125
//	"$1,200.00" → 1200
//	"N/A"       → nil
//	"12-50"     → error
func parsePrice(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if missing(raw) {
		return nil, nil
	}

	v, err := strconv.ParseFloat(priceCleaner.Replace(raw), 64)
	if err != nil {
		return nil, fmt.Errorf("price: %q is not a number", raw)
	}
	if v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return nil, fmt.Errorf("price: %q is not a valid price", raw)
	}
	return &v, nil
}

func parseOptionalFloat(name, raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if missing(raw) {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &v, nil
}

func parseFloat(name, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

func parseInt64(name, raw string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

// parseInt treats a blank cell as zero; counters are blank for brand new listings.
func parseInt(name, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

func parseDate(name, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if missing(raw) {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &t, nil
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}
