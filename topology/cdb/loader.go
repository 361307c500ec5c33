/*
	cdb loads topologies from a CockroachDB (or any Postgres compatible)
	database that stores a graph as a vertices table and an edges table
	keyed by UUIDs.

	The expected schema is:

		CREATE TABLE vertices (id UUID PRIMARY KEY, updated_at TIMESTAMP);
		CREATE TABLE edges (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			src UUID NOT NULL REFERENCES vertices(id) ON DELETE CASCADE,
			dest UUID NOT NULL REFERENCES vertices(id) ON DELETE CASCADE,
			weight FLOAT NOT NULL DEFAULT 1,
			updated_at TIMESTAMP,
			UNIQUE (src, dest)
		);
*/

package cdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
	_ "github.com/lib/pq" // postgres driver

	"github.com/mycok/uPregel/topology"
)

var (
	partitionedVerticesQuery = `
							SELECT id FROM vertices
							WHERE id >= $1 AND id <= $2 AND updated_at < $3
							ORDER BY id
							`
	partitionedEdgesQuery = `
							SELECT src, dest, weight FROM edges
							WHERE src >= $1 AND src <= $2 AND updated_at < $3
							ORDER BY src, dest
							`
)

// MaxUUID is the upper bound of the UUID space.
var MaxUUID = uuid.MustParse("ffffffff-ffff-ffff-ffff-ffffffffffff")

// Open connects to the database identified by dsn and verifies that it is
// reachable.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Loader builds topologies from the vertices and edges tables.
type Loader struct {
	db  *sql.DB
	clk clock.Clock
}

// NewLoader returns a Loader that queries db. If clk is nil, the default
// wall-clock will be used instead.
func NewLoader(db *sql.DB, clk clock.Clock) *Loader {
	if clk == nil {
		clk = clock.WallClock
	}

	return &Loader{db: db, clk: clk}
}

// Load builds a topology from every vertex and edge that was updated before
// the current time.
func (l *Loader) Load(ctx context.Context) (*topology.Graph, error) {
	return l.LoadRange(ctx, uuid.Nil, MaxUUID, l.clk.Now())
}

// LoadRange builds a topology from the vertices whose ids belong to the
// [fromID, toID] range and the edges originating from them. Edges pointing
// to vertices outside of the range are skipped.
func (l *Loader) LoadRange(
	ctx context.Context, fromID, toID uuid.UUID, updatedBefore time.Time,
) (*topology.Graph, error) {

	b := topology.NewBuilder()

	rows, err := l.db.QueryContext(ctx, partitionedVerticesQuery, fromID, toID, updatedBefore.UTC())
	if err != nil {
		return nil, fmt.Errorf("vertices: %w", err)
	}

	vertexIt := &vertexIterator{rows: rows}
	for vertexIt.Next() {
		b.AddVertex(vertexIt.vertexID.String())
	}

	if err := closeIterator(vertexIt); err != nil {
		return nil, err
	}

	if rows, err = l.db.QueryContext(ctx, partitionedEdgesQuery, fromID, toID, updatedBefore.UTC()); err != nil {
		return nil, fmt.Errorf("edges: %w", err)
	}

	edgeIt := &edgeIterator{rows: rows}
	for edgeIt.Next() {
		e := edgeIt.edge
		err := b.AddEdge(e.src.String(), e.dest.String(), e.weight)
		if err != nil && !errors.Is(err, topology.ErrUnknownVertex) {
			_ = edgeIt.Close()
			return nil, err
		}
	}

	if err := closeIterator(edgeIt); err != nil {
		return nil, err
	}

	return b.Build(), nil
}

type iterator interface {
	Error() error
	Close() error
}

func closeIterator(it iterator) error {
	// Check for iteration errors.
	if err := it.Error(); err != nil {
		_ = it.Close()

		return err
	}

	return it.Close()
}
