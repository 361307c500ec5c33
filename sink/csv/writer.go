/*
	csv writes job results as comma separated vertex id / value pairs.
*/

package csv

import (
	"context"
	stdcsv "encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mycok/uPregel/pregel"
	"github.com/mycok/uPregel/sink"
)

// Static and compile-time check to ensure Sink implements sink.Sink.
var _ sink.Sink = (*Sink)(nil)

// Sink writes a header line followed by one "vertex,value" record per
// vertex.
type Sink struct {
	open func(computation string) (io.WriteCloser, error)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// New returns a Sink that writes every result to w.
func New(w io.Writer) *Sink {
	return &Sink{
		open: func(string) (io.WriteCloser, error) { return nopCloser{w}, nil },
	}
}

// NewFile returns a Sink that (re)creates the file at path for every
// result.
func NewFile(path string) *Sink {
	return &Sink{
		open: func(string) (io.WriteCloser, error) { return os.Create(path) },
	}
}

// Write implements sink.Sink.
func (s *Sink) Write(ctx context.Context, computation string, res *pregel.Result, ids pregel.IDMapper) (err error) {
	out, err := s.open(computation)
	if err != nil {
		return fmt.Errorf("csv sink: %w", err)
	}
	defer func() {
		if closeErr := out.Close(); err == nil {
			err = closeErr
		}
	}()

	w := stdcsv.NewWriter(out)
	if err = w.Write([]string{"vertex", computation}); err != nil {
		return fmt.Errorf("csv sink: %w", err)
	}

	err = sink.ForEach(ctx, res, ids, func(vertexID string, value float64) error {
		return w.Write([]string{vertexID, strconv.FormatFloat(value, 'g', -1, 64)})
	})
	if err != nil {
		return fmt.Errorf("csv sink: %w", err)
	}

	w.Flush()
	if err = w.Error(); err != nil {
		return fmt.Errorf("csv sink: %w", err)
	}

	return nil
}
