package pregel

import "errors"

// Batch is a contiguous [Start, End) range of vertex ids that is owned by a
// single worker for the duration of a superstep.
type Batch struct {
	Index int
	Start int64
	End   int64
}

// Size returns the number of vertex ids in the batch.
func (b Batch) Size() int64 { return b.End - b.Start }

// MaxBatchCount returns the largest number of batches that vertexCount
// vertices can be split into when every batch must hold at least
// minBatchSize vertices. An empty graph can still be processed by a single
// (empty) batch.
func MaxBatchCount(vertexCount, minBatchSize int64) int {
	if minBatchSize <= 0 {
		minBatchSize = 1
	}

	count := (vertexCount + minBatchSize - 1) / minBatchSize
	if count < 1 {
		return 1
	}

	return int(count)
}

// Partition splits the vertex id range [0, vertexCount) into numOfBatches
// contiguous, disjoint batches that together cover the whole range. Batch
// sizes differ by at most one.
func Partition(vertexCount int64, numOfBatches int) ([]Batch, error) {
	if numOfBatches <= 0 {
		return nil, errors.New("number of batches must be at least equal to 1")
	} else if vertexCount < 0 {
		return nil, errors.New("vertex count must not be negative")
	}

	var (
		batchSize = vertexCount / int64(numOfBatches)
		remainder = vertexCount % int64(numOfBatches)
		batches   = make([]Batch, numOfBatches)
		start     int64
	)

	for i := range batches {
		size := batchSize
		// Spread the remainder over the first batches.
		if int64(i) < remainder {
			size++
		}

		batches[i] = Batch{Index: i, Start: start, End: start + size}
		start += size
	}

	return batches, nil
}

// Partitioning selects how the vertex id range is split into batches.
type Partitioning int

const (
	// RangePartitioning gives every batch about the same number of vertices.
	RangePartitioning Partitioning = iota

	// DegreePartitioning gives every batch about the same number of
	// vertices plus outgoing edges, so that high degree vertices are spread
	// across workers. Batches remain contiguous.
	DegreePartitioning
)

// String implements fmt.Stringer.
func (p Partitioning) String() string {
	switch p {
	case RangePartitioning:
		return "range"
	case DegreePartitioning:
		return "degree"
	default:
		return "unknown"
	}
}

// PartitionByDegree splits the vertex id range of t into numOfBatches
// contiguous, disjoint batches that together cover the whole range. Each
// vertex costs its out-degree plus one and batch ends are chosen so that
// batches carry about the same cost. When t has at least numOfBatches
// vertices, no batch is empty.
func PartitionByDegree(t Topology, numOfBatches int) ([]Batch, error) {
	if numOfBatches <= 0 {
		return nil, errors.New("number of batches must be at least equal to 1")
	}

	var (
		vertexCount = t.VertexCount()
		batches     = make([]Batch, numOfBatches)
		totalCost   int64
		cost        int64
		start, end  int64
	)

	for vertexID := int64(0); vertexID < vertexCount; vertexID++ {
		totalCost += int64(t.Degree(vertexID)) + 1
	}

	for i := range batches {
		if i == numOfBatches-1 {
			end = vertexCount
		} else {
			var (
				target = totalCost * int64(i+1) / int64(numOfBatches)
				// Leave at least one vertex for each of the following batches.
				limit  = vertexCount - int64(numOfBatches-i-1)
			)

			for end < limit && (end == start || cost < target) {
				cost += int64(t.Degree(end)) + 1
				end++
			}
		}

		batches[i] = Batch{Index: i, Start: start, End: end}
		start = end
	}

	return batches, nil
}
