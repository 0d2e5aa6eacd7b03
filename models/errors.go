package models

import "fmt"

// LoadError means the dataset could not be read: the file is missing or
// unreadable, or a row carries a value that cannot be parsed.
type LoadError struct {
	Source string
	Line   int
	Err    error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("load %s: line %d: %v", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// SchemaError means an expected column is absent from the dataset header.
type SchemaError struct {
	Source string
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema %s: missing column %q", e.Source, e.Column)
}

// InvalidCategoryError rejects a filter value that is not in the set the
// dataset (or the active schedule) offers.
type InvalidCategoryError struct {
	Field string
	Value string
}

func (e *InvalidCategoryError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Field, e.Value)
}

// EmptyViewError is returned when a view needs at least one row and the
// filtered table has none.
type EmptyViewError struct {
	View string
}

func (e *EmptyViewError) Error() string {
	return fmt.Sprintf("%s: no listings to show", e.View)
}
