package storage

import (
	"context"

	"airbnb-dashboard/models"
)

// RawListingReader is the interface any dataset source must satisfy.
type RawListingReader interface {
	ReadRaw(ctx context.Context) ([]*models.RawListing, error)
	Close() error
}

// ListingWriter is the interface for sinks of filtered tables.
type ListingWriter interface {
	Write(table models.Table) error
	Close() error
}

// WriteTable writes table to w and closes it. A write error still closes w.
func WriteTable(w ListingWriter, table models.Table) error {
	if err := w.Write(table); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

var (
	_ RawListingReader = (*CSVReader)(nil)
	_ RawListingReader = (*PostgresReader)(nil)
	_ ListingWriter    = (*CSVWriter)(nil)
)
