package services

import (
	"context"
	"fmt"

	"airbnb-dashboard/models"
	"airbnb-dashboard/storage"
)

// LoadDataset reads every row from reader and cleans it into the base table.
// Errors keep their *models.LoadError / *models.SchemaError type.
func LoadDataset(ctx context.Context, reader storage.RawListingReader, cleaner *Cleaner) (models.Table, error) {
	raw, err := reader.ReadRaw(ctx)
	if err != nil {
		return nil, fmt.Errorf("dataset: read: %w", err)
	}

	table, err := cleaner.Clean(raw)
	if err != nil {
		return nil, fmt.Errorf("dataset: clean: %w", err)
	}
	return table, nil
}
