package cdb

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// vertexIterator wraps the [database/sql] Rows returned by the vertices
// query.
type vertexIterator struct {
	rows     *sql.Rows
	lastErr  error
	vertexID uuid.UUID
}

// Next loads the next vertex id, returns false when no more rows are
// available or when an error occurs.
func (i *vertexIterator) Next() bool {
	if i.lastErr != nil || !i.rows.Next() {
		return false
	}

	if i.lastErr = i.rows.Scan(&i.vertexID); i.lastErr != nil {
		return false
	}

	return true
}

// Error returns the last error encountered by the iterator.
func (i *vertexIterator) Error() error {
	if i.lastErr != nil {
		return i.lastErr
	}

	return i.rows.Err()
}

// Close releases any resources allocated to the iterator.
func (i *vertexIterator) Close() error {
	if err := i.rows.Close(); err != nil {
		return fmt.Errorf("vertex iterator: %w", err)
	}

	return nil
}

type edgeRow struct {
	src, dest uuid.UUID
	weight    float64
}

// edgeIterator wraps the [database/sql] Rows returned by the edges query.
type edgeIterator struct {
	rows    *sql.Rows
	lastErr error
	edge    edgeRow
}

// Next advances the iterator. When no items are available or when an
// error occurs, calls to Next() return false.
func (i *edgeIterator) Next() bool {
	if i.lastErr != nil || !i.rows.Next() {
		return false
	}

	if i.lastErr = i.rows.Scan(&i.edge.src, &i.edge.dest, &i.edge.weight); i.lastErr != nil {
		return false
	}

	return true
}

// Error returns the last error recorded by the iterator.
func (i *edgeIterator) Error() error {
	if i.lastErr != nil {
		return i.lastErr
	}

	return i.rows.Err()
}

// Close releases any resources linked to the iterator.
func (i *edgeIterator) Close() error {
	if err := i.rows.Close(); err != nil {
		return fmt.Errorf("edge iterator: %w", err)
	}

	return nil
}
