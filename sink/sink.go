/*
	sink persists the per-vertex values produced by a pregel job.
*/

package sink

import (
	"context"
	"strconv"

	"github.com/hashicorp/go-multierror"

	"github.com/mycok/uPregel/pregel"
)

// Sink is implemented by result stores.
type Sink interface {
	// Write persists the value of every vertex of res under the name of
	// the computation that produced it, replacing previous values. ids maps
	// internal vertex ids to the ids stored by the sink; it may be nil.
	Write(ctx context.Context, computation string, res *pregel.Result, ids pregel.IDMapper) error
}

// ForEach invokes fn with the original id and value of every vertex in res.
// Vertices without an original id are reported by their internal id. It
// stops at the first error returned by fn or when ctx is cancelled.
func ForEach(
	ctx context.Context, res *pregel.Result, ids pregel.IDMapper,
	fn func(vertexID string, value float64) error,
) error {

	var err error
	res.Values.ForEach(func(internalID int64, value float64) bool {
		if err = ctx.Err(); err != nil {
			return false
		}

		vertexID, ok := "", false
		if ids != nil {
			vertexID, ok = ids.ToOriginalID(internalID)
		}
		if !ok {
			vertexID = strconv.FormatInt(internalID, 10)
		}

		err = fn(vertexID, value)

		return err == nil
	})

	return err
}

// Multi writes results to every sink in the list. Failing sinks do not
// prevent the remaining sinks from being written to.
type Multi []Sink

// Write implements Sink.
func (m Multi) Write(ctx context.Context, computation string, res *pregel.Result, ids pregel.IDMapper) error {
	var err error
	for _, s := range m {
		if sErr := s.Write(ctx, computation, res, ids); sErr != nil {
			err = multierror.Append(err, sErr)
		}
	}

	return err
}
