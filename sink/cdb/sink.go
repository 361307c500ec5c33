/*
	cdb persists job results into a CockroachDB (or any Postgres compatible)
	table with the following schema:

		CREATE TABLE vertex_values (
			computation STRING NOT NULL,
			vertex_id STRING NOT NULL,
			value FLOAT NOT NULL,
			job_id UUID NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (computation, vertex_id)
		);
*/

package cdb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/juju/clock"
	"github.com/lib/pq"

	"github.com/mycok/uPregel/pregel"
	"github.com/mycok/uPregel/sink"
)

// DefaultTable is used when no table name is provided.
const DefaultTable = "vertex_values"

// Static and compile-time check to ensure Sink implements sink.Sink.
var _ sink.Sink = (*Sink)(nil)

// Sink upserts vertex values into a table.
type Sink struct {
	db  *sql.DB
	clk clock.Clock

	upsertQuery      string
	removeStaleQuery string
	findQuery        string
}

// New returns a Sink writing into table. If table is empty, DefaultTable
// will be used. If clk is nil, the default wall-clock will be used instead.
func New(db *sql.DB, table string, clk clock.Clock) *Sink {
	if table == "" {
		table = DefaultTable
	}

	if clk == nil {
		clk = clock.WallClock
	}

	table = pq.QuoteIdentifier(table)

	return &Sink{
		db:  db,
		clk: clk,
		upsertQuery: fmt.Sprintf(`
					INSERT INTO %s (computation, vertex_id, value, job_id, updated_at)
					VALUES ($1, $2, $3, $4, $5)
					ON CONFLICT (computation, vertex_id)
					DO UPDATE SET value=$3, job_id=$4, updated_at=$5
					`, table),
		removeStaleQuery: fmt.Sprintf(
			"DELETE FROM %s WHERE computation=$1 AND job_id<>$2", table,
		),
		findQuery: fmt.Sprintf(
			"SELECT value FROM %s WHERE computation=$1 AND vertex_id=$2", table,
		),
	}
}

// Write implements sink.Sink. Rows left behind by previous runs of the same
// computation are removed in the same transaction.
func (s *Sink) Write(ctx context.Context, computation string, res *pregel.Result, ids pregel.IDMapper) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("cdb sink: %w", err)
	}

	if err = s.write(ctx, tx, computation, res, ids); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("cdb sink: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("cdb sink: %w", err)
	}

	return nil
}

func (s *Sink) write(ctx context.Context, tx *sql.Tx, computation string, res *pregel.Result, ids pregel.IDMapper) error {
	stmt, err := tx.PrepareContext(ctx, s.upsertQuery)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	updatedAt := s.clk.Now().UTC()
	err = sink.ForEach(ctx, res, ids, func(vertexID string, value float64) error {
		_, err := stmt.ExecContext(ctx, computation, vertexID, value, res.JobID, updatedAt)
		return err
	})
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, s.removeStaleQuery, computation, res.JobID)

	return err
}

// Value returns the stored value of a vertex.
func (s *Sink) Value(ctx context.Context, computation, vertexID string) (float64, error) {
	var value float64
	row := s.db.QueryRowContext(ctx, s.findQuery, computation, vertexID)
	if err := row.Scan(&value); err != nil {
		return 0, fmt.Errorf("find value: %w", err)
	}

	return value, nil
}
