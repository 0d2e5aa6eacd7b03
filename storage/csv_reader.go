package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"airbnb-dashboard/models"
)

// DroppedColumn is always blank in the published dataset and is discarded on load.
const DroppedColumn = "neighbourhood_group"

// RequiredColumns lists the header fields a listings file must carry.
var RequiredColumns = []string{
	"id", "host_id", "name", "neighbourhood", DroppedColumn,
	"latitude", "longitude", "room_type", "price", "minimum_nights",
	"number_of_reviews", "last_review", "reviews_per_month",
	"calculated_host_listings_count", "availability_365",
	"number_of_reviews_ltm", "license",
}

// CSVReader reads a listings CSV file into raw rows.
type CSVReader struct {
	path string
}

// NewCSVReader creates a reader for the file at path. The file is opened on ReadRaw.
func NewCSVReader(path string) *CSVReader {
	return &CSVReader{path: path}
}

// ReadRaw reads every row of the file. It fails with *models.LoadError when
// the file cannot be read and *models.SchemaError when a required column is
// missing from the header.
func (r *CSVReader) ReadRaw(ctx context.Context) ([]*models.RawListing, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, &models.LoadError{Source: r.path, Err: err}
	}
	defer f.Close()

	return decodeCSV(ctx, r.path, f)
}

// Close is a no-op; the file is closed after each read.
func (r *CSVReader) Close() error { return nil }

func decodeCSV(ctx context.Context, source string, in io.Reader) ([]*models.RawListing, error) {
	cr := csv.NewReader(in)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty file")
		}
		return nil, &models.LoadError{Source: source, Err: fmt.Errorf("read header: %w", err)}
	}

	cols, err := indexHeader(source, header)
	if err != nil {
		return nil, err
	}

	var rows []*models.RawListing
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			le := &models.LoadError{Source: source, Err: err}
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				le.Line = pe.Line
			}
			return nil, le
		}
		line, _ := cr.FieldPos(0)
		rows = append(rows, cols.raw(rec, line))
	}
	return rows, nil
}

// columnIndex maps column names to their position in a record.
type columnIndex map[string]int

func indexHeader(source string, header []string) (columnIndex, error) {
	cols := make(columnIndex, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		cols[name] = i
	}

	for _, name := range RequiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, &models.SchemaError{Source: source, Column: name}
		}
	}

	delete(cols, DroppedColumn)
	return cols, nil
}

func (c columnIndex) get(rec []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func (c columnIndex) raw(rec []string, line int) *models.RawListing {
	return &models.RawListing{
		Line:                        line,
		ID:                          c.get(rec, "id"),
		HostID:                      c.get(rec, "host_id"),
		Name:                        c.get(rec, "name"),
		HostName:                    c.get(rec, "host_name"),
		Neighbourhood:               c.get(rec, "neighbourhood"),
		Latitude:                    c.get(rec, "latitude"),
		Longitude:                   c.get(rec, "longitude"),
		RoomType:                    c.get(rec, "room_type"),
		Price:                       c.get(rec, "price"),
		MinimumNights:               c.get(rec, "minimum_nights"),
		NumberOfReviews:             c.get(rec, "number_of_reviews"),
		LastReview:                  c.get(rec, "last_review"),
		ReviewsPerMonth:             c.get(rec, "reviews_per_month"),
		CalculatedHostListingsCount: c.get(rec, "calculated_host_listings_count"),
		Availability365:             c.get(rec, "availability_365"),
		NumberOfReviewsLTM:          c.get(rec, "number_of_reviews_ltm"),
		License:                     c.get(rec, "license"),
	}
}
