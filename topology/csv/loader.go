/*
	csv loads topologies from comma separated edge lists. Every record
	describes a single edge as "src,dest[,weight]"; records with a single
	field declare an isolated vertex. Lines starting with '#' are ignored.
*/

package csv

import (
	stdcsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mycok/uPregel/topology"
)

// Options configures how edge lists are interpreted.
type Options struct {
	// Undirected adds every edge in both directions.
	Undirected bool

	// DefaultWeight is assigned to edges without an explicit weight. If not
	// specified, a weight of 1 will be used instead.
	DefaultWeight float64

	// Header is the first field of an optional header record that is
	// skipped when present. If not specified, "src" will be used instead.
	Header string
}

// LoadFile loads the edge list stored at path.
func LoadFile(path string, opts Options) (*topology.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Load(f, opts)
}

// Load reads an edge list from r and builds a topology from it.
func Load(r io.Reader, opts Options) (*topology.Graph, error) {
	if opts.DefaultWeight == 0 {
		opts.DefaultWeight = 1
	}

	if opts.Header == "" {
		opts.Header = "src"
	}

	reader := stdcsv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	b := topology.NewBuilder()

	for first := true; ; first = false {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}

		if first && strings.EqualFold(record[0], opts.Header) {
			continue
		}

		lineNum, _ := reader.FieldPos(0)
		if err := addRecord(b, record, lineNum, opts); err != nil {
			return nil, err
		}
	}

	return b.Build(), nil
}

func addRecord(b *topology.Builder, record []string, lineNum int, opts Options) error {
	switch len(record) {
	case 1:
		b.AddVertex(record[0])
		return nil
	case 2, 3:
	default:
		return fmt.Errorf("line %d: expected 1 to 3 columns, got %d", lineNum, len(record))
	}

	weight := opts.DefaultWeight
	if len(record) == 3 {
		var err error
		if weight, err = strconv.ParseFloat(record[2], 64); err != nil {
			return fmt.Errorf("line %d, column 3: invalid weight: %w", lineNum, err)
		}
	}

	b.AddVertex(record[0])
	b.AddVertex(record[1])

	if opts.Undirected {
		return b.AddUndirectedEdge(record[0], record[1], weight)
	}

	return b.AddEdge(record[0], record[1], weight)
}
