package pregel

import (
	"fmt"

	"github.com/mycok/uPregel/pregel/aggregator"
)

// vertexContext holds the state shared by the init and compute contexts. A
// worker reuses a single context for all the vertices it processes.
type vertexContext struct {
	run      *run
	topology Topology
	vertexID int64
}

// VertexID returns the internal id of the vertex being processed.
func (c *vertexContext) VertexID() int64 { return c.vertexID }

// VertexCount returns the number of vertices in the graph.
func (c *vertexContext) VertexCount() int64 { return c.run.vertexCount }

// Value returns the current value of the vertex being processed.
func (c *vertexContext) Value() float64 { return c.run.values.Get(c.vertexID) }

// SetValue updates the value of the vertex being processed.
func (c *vertexContext) SetValue(value float64) { c.run.values.Set(c.vertexID, value) }

// Degree returns the number of outgoing edges of the vertex being processed.
func (c *vertexContext) Degree() int { return c.topology.Degree(c.vertexID) }

// ForEachNeighbor invokes fn for each outgoing edge of the vertex being
// processed until fn returns false.
func (c *vertexContext) ForEachNeighbor(fn func(targetID int64, weight float64) bool) {
	c.topology.ForEachNeighbor(c.vertexID, fn)
}

// IsAsynchronous reports whether the job delivers messages asynchronously.
func (c *vertexContext) IsAsynchronous() bool { return c.run.cfg.Asynchronous }

// ToOriginalID maps an internal vertex id to its external id. It returns
// false when the topology does not provide an id mapping.
func (c *vertexContext) ToOriginalID(vertexID int64) (string, bool) {
	return toOriginalID(c.run.cfg.Topology, vertexID)
}

// ToInternalID maps an external vertex id to its internal id. It returns
// false when the id is unknown or the topology does not provide an id mapping.
func (c *vertexContext) ToInternalID(originalID string) (int64, bool) {
	return toInternalID(c.run.cfg.Topology, originalID)
}

// InitContext is passed to Computation.Init.
type InitContext struct {
	vertexContext
}

// ComputeContext is passed to Computation.Compute. It is only valid for the
// duration of the call.
type ComputeContext struct {
	vertexContext

	stayActive bool
	sent       int64
	err        error
}

func (c *ComputeContext) reset(vertexID int64) {
	c.vertexID = vertexID
	c.stayActive = false
	c.sent = 0
	c.err = nil
}

// Superstep returns the current superstep number.
func (c *ComputeContext) Superstep() int { return c.run.superstep }

// IsInitialSuperstep reports whether this is superstep 0.
func (c *ComputeContext) IsInitialSuperstep() bool { return c.run.superstep == 0 }

// SendTo sends a message to the vertex with the specified id. Messages sent to
// ids outside of [0, VertexCount()) fail the job even if the returned error
// is ignored by the caller.
func (c *ComputeContext) SendTo(targetID int64, value float64) error {
	if targetID < 0 || targetID >= c.run.vertexCount {
		err := fmt.Errorf(
			"message can't be delivered to %d: %w", targetID, ErrVertexOutOfRange,
		)
		if c.err == nil {
			c.err = err
		}

		return err
	}

	c.run.inbox.Send(targetID, value)
	c.sent++

	return nil
}

// SendToNeighbors sends value to each out-neighbor of the vertex.
func (c *ComputeContext) SendToNeighbors(value float64) error {
	return c.SendToNeighborsWeighted(value, nil)
}

// SendToNeighborsWeighted sends a message to each out-neighbor of the vertex.
// The message value is computed by applying the edge weight to value. A nil
// applyWeight sends value unchanged.
func (c *ComputeContext) SendToNeighborsWeighted(
	value float64, applyWeight func(value, weight float64) float64,
) error {

	var err error
	c.topology.ForEachNeighbor(c.vertexID, func(targetID int64, weight float64) bool {
		msg := value
		if applyWeight != nil {
			msg = applyWeight(value, weight)
		}

		err = c.SendTo(targetID, msg)

		return err == nil
	})

	return err
}

// StayActive schedules the vertex for the next superstep even if it does not
// receive any messages. By default a vertex halts after each activation and
// is only re-activated by incoming messages.
func (c *ComputeContext) StayActive() { c.stayActive = true }

// Aggregator returns the aggregator with the specified name or nil if the
// computation did not register it.
func (c *ComputeContext) Aggregator(name string) aggregator.Aggregator {
	return c.run.aggregators[name]
}

// MasterContext is passed to MasterComputation.MasterCompute. It is used on
// the driving goroutine while no workers are running and may therefore read
// and write the value of any vertex.
type MasterContext struct {
	run *run
}

// Superstep returns the number of the superstep that just completed.
func (c *MasterContext) Superstep() int { return c.run.superstep }

// VertexCount returns the number of vertices in the graph.
func (c *MasterContext) VertexCount() int64 { return c.run.vertexCount }

// Value returns the value of the specified vertex.
func (c *MasterContext) Value(vertexID int64) float64 { return c.run.values.Get(vertexID) }

// SetValue updates the value of the specified vertex.
func (c *MasterContext) SetValue(vertexID int64, value float64) {
	c.run.values.Set(vertexID, value)
}

// ForEachVertex invokes fn for every vertex until fn returns false.
func (c *MasterContext) ForEachVertex(fn func(vertexID int64, value float64) bool) {
	c.run.values.ForEach(fn)
}

// Aggregator returns the aggregator with the specified name or nil if the
// computation did not register it.
func (c *MasterContext) Aggregator(name string) aggregator.Aggregator {
	return c.run.aggregators[name]
}

// ToOriginalID maps an internal vertex id to its external id.
func (c *MasterContext) ToOriginalID(vertexID int64) (string, bool) {
	return toOriginalID(c.run.cfg.Topology, vertexID)
}

// ToInternalID maps an external vertex id to its internal id.
func (c *MasterContext) ToInternalID(originalID string) (int64, bool) {
	return toInternalID(c.run.cfg.Topology, originalID)
}

func toOriginalID(t Topology, vertexID int64) (string, bool) {
	mapper, ok := t.(IDMapper)
	if !ok {
		return "", false
	}

	return mapper.ToOriginalID(vertexID)
}

func toInternalID(t Topology, originalID string) (int64, bool) {
	mapper, ok := t.(IDMapper)
	if !ok {
		return 0, false
	}

	return mapper.ToInternalID(originalID)
}
