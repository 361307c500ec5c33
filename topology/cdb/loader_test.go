package cdb

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock/testclock"
	check "gopkg.in/check.v1"
)

var _ = check.Suite(new(LoaderTestSuite))

func Test(t *testing.T) {
	check.TestingT(t)
}

// LoaderTestSuite runs against a live database whose schema matches the
// package documentation.
type LoaderTestSuite struct {
	db *sql.DB
}

func (s *LoaderTestSuite) SetUpSuite(c *check.C) {
	dsn := os.Getenv("CDB_DSN")
	if dsn == "" {
		c.Skip("Missing CDB_DSN envvar: skipping cockroachDB backed test suite")
	}

	db, err := Open(context.TODO(), dsn)
	if err != nil {
		c.Fatalf("Failed to make a database connection: %v", err)
	}

	s.db = db
}

func (s *LoaderTestSuite) SetUpTest(c *check.C) {
	s.flushDB(c)
}

func (s *LoaderTestSuite) TearDownSuite(c *check.C) {
	if s.db != nil {
		s.flushDB(c)
		c.Assert(s.db.Close(), check.IsNil)
	}
}

func (s *LoaderTestSuite) flushDB(c *check.C) {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	_, err := s.db.ExecContext(ctx, "TRUNCATE vertices CASCADE")
	c.Assert(err, check.IsNil)
}

func (s *LoaderTestSuite) TestLoad(c *check.C) {
	now := time.Now().UTC()
	ids := []uuid.UUID{
		uuid.MustParse("00000000-0000-0000-0000-000000000001"),
		uuid.MustParse("00000000-0000-0000-0000-000000000002"),
		uuid.MustParse("00000000-0000-0000-0000-000000000003"),
	}

	for _, id := range ids {
		_, err := s.db.Exec("INSERT INTO vertices (id, updated_at) VALUES ($1, $2)", id, now.Add(-time.Hour))
		c.Assert(err, check.IsNil)
	}

	for _, e := range [][2]int{{0, 1}, {1, 2}, {2, 0}} {
		_, err := s.db.Exec(
			"INSERT INTO edges (src, dest, weight, updated_at) VALUES ($1, $2, $3, $4)",
			ids[e[0]], ids[e[1]], float64(e[0]+1), now.Add(-time.Hour),
		)
		c.Assert(err, check.IsNil)
	}

	loader := NewLoader(s.db, testclock.NewClock(now))
	g, err := loader.Load(context.TODO())
	c.Assert(err, check.IsNil)
	c.Assert(g.VertexCount(), check.Equals, int64(3))
	c.Assert(g.EdgeCount(), check.Equals, int64(3))

	first, ok := g.ToInternalID(ids[0].String())
	c.Assert(ok, check.Equals, true)
	c.Assert(first, check.Equals, int64(0))

	// Restricting the range drops edges to vertices outside of it.
	g, err = loader.LoadRange(context.TODO(), ids[0], ids[1], now)
	c.Assert(err, check.IsNil)
	c.Assert(g.VertexCount(), check.Equals, int64(2))
	c.Assert(g.EdgeCount(), check.Equals, int64(1))

	// Nothing was updated before the vertices were inserted.
	g, err = loader.LoadRange(context.TODO(), uuid.Nil, MaxUUID, now.Add(-2*time.Hour))
	c.Assert(err, check.IsNil)
	c.Assert(g.VertexCount(), check.Equals, int64(0))
}
