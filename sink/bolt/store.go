/*
	bolt persists job results in a bbolt key/value file. Every computation
	owns a top-level bucket holding the metadata of its latest run and a
	nested bucket that maps vertex ids to their values.
*/

package bolt

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"go.etcd.io/bbolt"

	"github.com/mycok/uPregel/pregel"
	"github.com/mycok/uPregel/sink"
)

var (
	valuesBucket = []byte("values")

	jobIDKey         = []byte("job_id")
	statusKey        = []byte("status")
	ranSuperstepsKey = []byte("ran_supersteps")
	writtenAtKey     = []byte("written_at")
)

// ErrNotFound is returned when no result has been stored for a computation
// or vertex.
var ErrNotFound = errors.New("not found")

// Static and compile-time check to ensure Store implements sink.Sink.
var _ sink.Sink = (*Store)(nil)

// RunInfo describes the run whose values are currently stored for a
// computation.
type RunInfo struct {
	JobID         uuid.UUID
	Status        string
	RanSupersteps int
	WrittenAt     time.Time
}

// Store is a sink backed by a bbolt database file.
type Store struct {
	db  *bbolt.DB
	clk clock.Clock
}

// Open opens or creates the database file at path. If clk is nil, the
// default wall-clock will be used instead.
func Open(path string, clk clock.Clock) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("bolt sink: %w", err)
	}

	if clk == nil {
		clk = clock.WallClock
	}

	return &Store{db: db, clk: clk}, nil
}

// Close releases the database file.
func (s *Store) Close() error { return s.db.Close() }

// Write implements sink.Sink. Values of a previous run of the same
// computation are replaced within a single transaction.
func (s *Store) Write(ctx context.Context, computation string, res *pregel.Result, ids pregel.IDMapper) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		name := []byte(computation)
		if tx.Bucket(name) != nil {
			if err := tx.DeleteBucket(name); err != nil {
				return err
			}
		}

		bucket, err := tx.CreateBucket(name)
		if err != nil {
			return err
		}

		meta := map[string][]byte{
			string(jobIDKey):         []byte(res.JobID.String()),
			string(statusKey):        []byte(res.Status.String()),
			string(ranSuperstepsKey): []byte(strconv.Itoa(res.RanSupersteps)),
			string(writtenAtKey):     []byte(s.clk.Now().UTC().Format(time.RFC3339Nano)),
		}
		for k, v := range meta {
			if err := bucket.Put([]byte(k), v); err != nil {
				return err
			}
		}

		values, err := bucket.CreateBucket(valuesBucket)
		if err != nil {
			return err
		}

		return sink.ForEach(ctx, res, ids, func(vertexID string, value float64) error {
			return values.Put([]byte(vertexID), encodeValue(value))
		})
	})
	if err != nil {
		return fmt.Errorf("bolt sink: write %q: %w", computation, err)
	}

	return nil
}

// Value returns the stored value of a vertex.
func (s *Store) Value(computation, vertexID string) (float64, error) {
	var value float64
	err := s.db.View(func(tx *bbolt.Tx) error {
		values, err := valuesOf(tx, computation)
		if err != nil {
			return err
		}

		raw := values.Get([]byte(vertexID))
		if raw == nil {
			return fmt.Errorf("vertex %q: %w", vertexID, ErrNotFound)
		}

		value = decodeValue(raw)

		return nil
	})

	return value, err
}

// Values invokes visitFn for every stored vertex of a computation in
// vertex id order.
func (s *Store) Values(computation string, visitFn func(vertexID string, value float64) error) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		values, err := valuesOf(tx, computation)
		if err != nil {
			return err
		}

		return values.ForEach(func(k, v []byte) error {
			return visitFn(string(k), decodeValue(v))
		})
	})
}

// LastRun returns the metadata of the stored run of a computation.
func (s *Store) LastRun(computation string) (RunInfo, error) {
	var info RunInfo
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(computation))
		if bucket == nil {
			return fmt.Errorf("computation %q: %w", computation, ErrNotFound)
		}

		var err error
		if info.JobID, err = uuid.ParseBytes(bucket.Get(jobIDKey)); err != nil {
			return err
		}
		if info.RanSupersteps, err = strconv.Atoi(string(bucket.Get(ranSuperstepsKey))); err != nil {
			return err
		}
		if info.WrittenAt, err = time.Parse(time.RFC3339Nano, string(bucket.Get(writtenAtKey))); err != nil {
			return err
		}
		info.Status = string(bucket.Get(statusKey))

		return nil
	})

	return info, err
}

func valuesOf(tx *bbolt.Tx, computation string) (*bbolt.Bucket, error) {
	bucket := tx.Bucket([]byte(computation))
	if bucket == nil {
		return nil, fmt.Errorf("computation %q: %w", computation, ErrNotFound)
	}

	return bucket.Bucket(valuesBucket), nil
}

func encodeValue(value float64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, math.Float64bits(value))

	return buf
}

func decodeValue(raw []byte) float64 {
	return math.Float64frombits(binary.BigEndian.Uint64(raw))
}
