package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"airbnb-dashboard/models"
	"airbnb-dashboard/utils"
)

// PostgresReader reads listings from a table laid out like the CSV export.
// It never writes.
type PostgresReader struct {
	db    *sql.DB
	table string
}

// NewPostgresReader opens a connection to PostgreSQL, retrying the ping with
// back-off, and returns a ready-to-use PostgresReader.
func NewPostgresReader(ctx context.Context, dsn, table string, maxRetries int, logger *utils.Logger) (*PostgresReader, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	retry := &utils.RetryConfig{
		MaxAttempts: maxRetries,
		BaseDelay:   500 * time.Millisecond,
		Logger:      logger,
	}
	if err := retry.Do(ctx, "postgres ping", func() error {
		return db.PingContext(ctx)
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	return &PostgresReader{db: db, table: table}, nil
}

// newPostgresReaderFromDB wraps an existing handle.
func newPostgresReaderFromDB(db *sql.DB, table string) *PostgresReader {
	return &PostgresReader{db: db, table: table}
}

// builder returns a squirrel statement builder using $n placeholders.
func builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

// selectQuery renders every exported column as text so rows go through the
// same cleaning path as CSV input.
func (pr *PostgresReader) selectQuery() sq.SelectBuilder {
	cols := make([]string, 0, len(ExportColumns))
	for _, c := range ExportColumns {
		ident := pq.QuoteIdentifier(c)
		cols = append(cols, fmt.Sprintf("COALESCE(%s::text, '') AS %s", ident, ident))
	}
	return builder().Select(cols...).
		From(pq.QuoteIdentifier(pr.table)).
		OrderBy(pq.QuoteIdentifier("id"))
}

// ReadRaw retrieves all stored listings in id order.
func (pr *PostgresReader) ReadRaw(ctx context.Context) ([]*models.RawListing, error) {
	query, args, err := pr.selectQuery().ToSql()
	if err != nil {
		return nil, fmt.Errorf("postgres: build query: %w", err)
	}

	rows, err := pr.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &models.LoadError{Source: "postgres:" + pr.table, Err: err}
	}
	defer rows.Close()

	var listings []*models.RawListing
	line := 0
	for rows.Next() {
		line++
		r := &models.RawListing{Line: line}
		if err := rows.Scan(
			&r.ID, &r.HostID, &r.Name, &r.HostName, &r.Neighbourhood,
			&r.Latitude, &r.Longitude, &r.RoomType, &r.Price, &r.MinimumNights,
			&r.NumberOfReviews, &r.LastReview, &r.ReviewsPerMonth,
			&r.CalculatedHostListingsCount, &r.Availability365,
			&r.NumberOfReviewsLTM, &r.License,
		); err != nil {
			return nil, &models.LoadError{Source: "postgres:" + pr.table, Line: line, Err: err}
		}
		listings = append(listings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &models.LoadError{Source: "postgres:" + pr.table, Err: err}
	}
	return listings, nil
}

func (pr *PostgresReader) Close() error {
	return pr.db.Close()
}
