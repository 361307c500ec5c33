package aggregator

import (
	"math"
	"sync/atomic"
)

// Aggregator is implemented by types that provide concurrent-safe reductions
// over float64 values (e.g. sums, min/max). Vertex programs feed values into
// an aggregator while a superstep runs and master computations read and reset
// it at the superstep barrier.
type Aggregator interface {
	// Type returns the type of this aggregator.
	Type() string

	// Set the aggregator to the specified value.
	Set(val float64)

	// Get the current aggregator value.
	Get() float64

	// Aggregate updates the aggregator's value based on the provided value.
	Aggregate(val float64)

	// Delta returns the change in the aggregator's value since the last
	// call to Delta or Set.
	Delta() float64
}

// Static and compile-time checks to ensure the accumulators implement the
// Aggregator interface.
var (
	_ Aggregator = (*Float64Accumulator)(nil)
	_ Aggregator = (*MaxAccumulator)(nil)
	_ Aggregator = (*MinAccumulator)(nil)
)

// atomicFloat64 stores a float64 as its IEEE 754 bit pattern so that it can
// be updated with compare-and-swap operations.
type atomicFloat64 struct {
	bits atomic.Uint64
}

func (f *atomicFloat64) load() float64 { return math.Float64frombits(f.bits.Load()) }

func (f *atomicFloat64) store(val float64) { f.bits.Store(math.Float64bits(val)) }

func (f *atomicFloat64) cas(old, next float64) bool {
	return f.bits.CompareAndSwap(math.Float64bits(old), math.Float64bits(next))
}

// update applies fn to the current value until the compare-and-swap succeeds.
func (f *atomicFloat64) update(fn func(old float64) float64) {
	for {
		old := f.load()
		if f.cas(old, fn(old)) {
			return
		}
	}
}

// Float64Accumulator is a concurrent-safe accumulator for float64 sums.
type Float64Accumulator struct {
	prevSum atomicFloat64
	currSum atomicFloat64
}

// Type returns the type of this accumulator as a string.
func (a *Float64Accumulator) Type() string { return "Float64Accumulator" }

// Get retrieves the current accumulator value.
func (a *Float64Accumulator) Get() float64 { return a.currSum.load() }

// Set the accumulator's current and previous sums to the specified value.
func (a *Float64Accumulator) Set(val float64) {
	a.currSum.store(val)
	a.prevSum.store(val)
}

// Aggregate adds val to the accumulator's current sum.
func (a *Float64Accumulator) Aggregate(val float64) {
	a.currSum.update(func(old float64) float64 { return old + val })
}

// Delta returns the change in the accumulator's value since the last
// call to Delta or Set.
func (a *Float64Accumulator) Delta() float64 {
	for {
		currSum := a.currSum.load()
		prevSum := a.prevSum.load()

		if a.prevSum.cas(prevSum, currSum) {
			return currSum - prevSum
		}
	}
}

// MaxAccumulator keeps track of the largest aggregated value. Instances
// should be created with NewMaxAccumulator.
type MaxAccumulator struct {
	extremum
}

// NewMaxAccumulator returns a MaxAccumulator in its initial state.
func NewMaxAccumulator() *MaxAccumulator {
	a := new(MaxAccumulator)
	a.Set(math.Inf(-1))

	return a
}

// Type returns the type of this accumulator as a string.
func (a *MaxAccumulator) Type() string { return "MaxAccumulator" }

// Aggregate replaces the current value with val if val is larger.
func (a *MaxAccumulator) Aggregate(val float64) {
	a.curr.update(func(old float64) float64 { return math.Max(old, val) })
}

// MinAccumulator keeps track of the smallest aggregated value. Instances
// should be created with NewMinAccumulator.
type MinAccumulator struct {
	extremum
}

// NewMinAccumulator returns a MinAccumulator in its initial state.
func NewMinAccumulator() *MinAccumulator {
	a := new(MinAccumulator)
	a.Set(math.Inf(1))

	return a
}

// Type returns the type of this accumulator as a string.
func (a *MinAccumulator) Type() string { return "MinAccumulator" }

// Aggregate replaces the current value with val if val is smaller.
func (a *MinAccumulator) Aggregate(val float64) {
	a.curr.update(func(old float64) float64 { return math.Min(old, val) })
}

// extremum holds the state shared by the min and max accumulators.
type extremum struct {
	prev atomicFloat64
	curr atomicFloat64
}

func (e *extremum) Get() float64 { return e.curr.load() }

func (e *extremum) Set(val float64) {
	e.curr.store(val)
	e.prev.store(val)
}

// Delta returns the current value if it changed since the last call to Delta
// or Set and zero otherwise.
func (e *extremum) Delta() float64 {
	for {
		curr := e.curr.load()
		prev := e.prev.load()

		if e.prev.cas(prev, curr) {
			if curr == prev {
				return 0
			}

			return curr
		}
	}
}
