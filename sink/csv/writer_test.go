package csv_test

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	check "gopkg.in/check.v1"

	"github.com/mycok/uPregel/pregel"
	"github.com/mycok/uPregel/pregel/valuestore"
	"github.com/mycok/uPregel/sink/csv"
	"github.com/mycok/uPregel/topology"
)

var _ = check.Suite(new(writerTestSuite))

func Test(t *testing.T) {
	check.TestingT(t)
}

type writerTestSuite struct{}

func (s *writerTestSuite) result() (*pregel.Result, *topology.Graph) {
	b := topology.NewBuilder()
	b.AddVertex("a")
	b.AddVertex("b,c")
	b.AddVertex("d")

	values := valuestore.New(3)
	values.Set(0, 0.25)
	values.Set(1, 3)
	values.Set(2, math.Inf(1))

	return &pregel.Result{Status: pregel.Converged, Values: values}, b.Build()
}

func (s *writerTestSuite) TestWrite(c *check.C) {
	var buf bytes.Buffer
	res, g := s.result()

	err := csv.New(&buf).Write(context.TODO(), "shortestpath", res, g)
	c.Assert(err, check.IsNil)
	c.Assert(buf.String(), check.Equals, "vertex,shortestpath\na,0.25\n\"b,c\",3\nd,+Inf\n")
}

func (s *writerTestSuite) TestWriteFile(c *check.C) {
	path := filepath.Join(c.MkDir(), "out.csv")
	res, g := s.result()

	sink := csv.NewFile(path)
	c.Assert(sink.Write(context.TODO(), "pagerank", res, g), check.IsNil)
	// Files are truncated on every write.
	c.Assert(sink.Write(context.TODO(), "pagerank", res, g), check.IsNil)

	data, err := os.ReadFile(path)
	c.Assert(err, check.IsNil)
	c.Assert(string(data), check.Equals, "vertex,pagerank\na,0.25\n\"b,c\",3\nd,+Inf\n")
}

func (s *writerTestSuite) TestWriteToMissingDirectory(c *check.C) {
	res, g := s.result()

	err := csv.NewFile(filepath.Join(c.MkDir(), "missing", "out.csv")).Write(context.TODO(), "pagerank", res, g)
	c.Assert(err, check.ErrorMatches, "csv sink: .*no such file or directory")
}
