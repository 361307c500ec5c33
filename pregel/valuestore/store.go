/*
	valuestore provides a paged float64 store indexed by vertex id. Values are
	kept in fixed size pages so that the store can address more vertices than a
	single contiguous allocation comfortably holds and can grow without copying
	existing pages.
*/

package valuestore

import "fmt"

const (
	pageShift = 14
	pageSize  = 1 << pageShift
	pageMask  = pageSize - 1
)

// Store holds one float64 value per vertex id in [0, Size()).
//
// Store is not safe for concurrent writes to the same id. Concurrent Set calls
// for disjoint ids are safe.
type Store struct {
	pages [][]float64
	size  int64
}

// New returns a zero-filled store with room for size values.
func New(size int64) *Store {
	s := new(Store)
	s.Grow(size)

	return s
}

// NewFilled returns a store with room for size values, each set to value.
func NewFilled(size int64, value float64) *Store {
	s := New(size)
	s.Fill(value)

	return s
}

// Size returns the number of addressable values.
func (s *Store) Size() int64 { return s.size }

// Get returns the value stored for id.
func (s *Store) Get(id int64) float64 {
	s.checkBounds(id)

	return s.pages[id>>pageShift][id&pageMask]
}

// Set stores value for id.
func (s *Store) Set(id int64, value float64) {
	s.checkBounds(id)

	s.pages[id>>pageShift][id&pageMask] = value
}

// Grow ensures the store can address at least newSize values. Existing values
// are preserved and new slots are zero. Grow never shrinks the store.
func (s *Store) Grow(newSize int64) {
	if newSize <= s.size {
		return
	}

	numOfPages := int((newSize + pageSize - 1) >> pageShift)

	// The last page is allocated with its exact length, extend it to a
	// full page before appending new pages after it.
	if last := len(s.pages) - 1; last >= 0 && len(s.pages[last]) < pageSize {
		want := pageSize
		if numOfPages == len(s.pages) {
			want = int(newSize - int64(last)<<pageShift)
		}

		page := make([]float64, want)
		copy(page, s.pages[last])
		s.pages[last] = page
	}

	for len(s.pages) < numOfPages {
		want := pageSize
		if len(s.pages) == numOfPages-1 {
			want = int(newSize - int64(len(s.pages))<<pageShift)
		}

		s.pages = append(s.pages, make([]float64, want))
	}

	s.size = newSize
}

// Fill sets every value in the store to value.
func (s *Store) Fill(value float64) {
	for _, page := range s.pages {
		for i := range page {
			page[i] = value
		}
	}
}

// ForEach invokes fn for each id in ascending order until fn returns false.
func (s *Store) ForEach(fn func(id int64, value float64) bool) {
	for p, page := range s.pages {
		base := int64(p) << pageShift
		for i, value := range page {
			if !fn(base+int64(i), value) {
				return
			}
		}
	}
}

// ToSlice copies the store contents into a single slice.
func (s *Store) ToSlice() []float64 {
	out := make([]float64, 0, s.size)
	for _, page := range s.pages {
		out = append(out, page...)
	}

	return out
}

func (s *Store) checkBounds(id int64) {
	if id < 0 || id >= s.size {
		panic(fmt.Sprintf("valuestore: index %d out of range [0, %d)", id, s.size))
	}
}
