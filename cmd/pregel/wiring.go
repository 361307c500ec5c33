package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/url"
	"strings"

	"github.com/juju/clock"
	"github.com/sirupsen/logrus"

	"github.com/mycok/uPregel/coloring"
	"github.com/mycok/uPregel/components"
	"github.com/mycok/uPregel/labelprop"
	"github.com/mycok/uPregel/pagerank"
	"github.com/mycok/uPregel/pregel"
	"github.com/mycok/uPregel/service/scheduler"
	"github.com/mycok/uPregel/shortestpath"
	"github.com/mycok/uPregel/sink"
	"github.com/mycok/uPregel/sink/bolt"
	cdbsink "github.com/mycok/uPregel/sink/cdb"
	csvsink "github.com/mycok/uPregel/sink/csv"
	"github.com/mycok/uPregel/topology"
	"github.com/mycok/uPregel/topology/cdb"
	csvtopology "github.com/mycok/uPregel/topology/csv"
	"github.com/mycok/uPregel/topology/dot"
)

// closers collects resources that must be released on shutdown.
type closers []io.Closer

func (c closers) Close() {
	for i := len(c) - 1; i >= 0; i-- {
		_ = c[i].Close()
	}
}

// computationFactory returns the factory for the configured computation and
// whether it must run with asynchronous message delivery.
func computationFactory(cfg appConfig) (scheduler.ComputationFactory, bool, error) {
	switch cfg.Computation {
	case "pagerank":
		calc, err := pagerank.NewCalculator(pagerank.Config{
			DampingFactor:        cfg.PageRank.DampingFactor,
			MinSADForConvergence: cfg.PageRank.MinSADForConvergence,
			RedistributeDeadEnds: cfg.PageRank.RedistributeDeadEnds,
			MaxSupersteps:        cfg.MaxSupersteps,
		})
		if err != nil {
			return nil, false, err
		}

		return func(*topology.Graph) (pregel.Computation, error) {
			return calc.Computation(), nil
		}, cfg.Asynchronous, nil
	case "shortestpath":
		if cfg.ShortestPath.Source == "" {
			return nil, false, fmt.Errorf("shortest path source vertex not provided")
		}

		return func(g *topology.Graph) (pregel.Computation, error) {
			src, exists := g.ToInternalID(cfg.ShortestPath.Source)
			if !exists {
				return nil, fmt.Errorf("unknown source vertex with ID %q", cfg.ShortestPath.Source)
			}

			return &shortestpath.Computation{Source: src, HopCount: cfg.ShortestPath.HopCount}, nil
		}, true, nil
	case "components":
		return func(*topology.Graph) (pregel.Computation, error) {
			return components.Computation{}, nil
		}, cfg.Asynchronous, nil
	case "labelprop":
		return func(*topology.Graph) (pregel.Computation, error) {
			return labelprop.Computation{}, nil
		}, false, nil
	case "coloring":
		rnd := rand.New(rand.NewSource(cfg.Coloring.Seed))
		return func(g *topology.Graph) (pregel.Computation, error) {
			return coloring.NewComputation(g.VertexCount(), nil, rnd), nil
		}, false, nil
	default:
		return nil, false, fmt.Errorf("unsupported computation: %q", cfg.Computation)
	}
}

// getLoader returns a topology loader for the provided URI.
func getLoader(ctx context.Context, uri string, undirected bool, logger *logrus.Entry) (scheduler.Loader, io.Closer, error) {
	if uri == "" {
		return nil, nil, fmt.Errorf("topology URI must be specified with --topology-uri")
	}

	u, err := url.Parse(uri)
	if err != nil {
		return nil, nil, err
	}

	switch u.Scheme {
	case "csv":
		path := u.Host + u.Path
		logger.WithField("path", path).Info("using CSV topology")

		return scheduler.LoaderFunc(func(context.Context) (*topology.Graph, error) {
			return csvtopology.LoadFile(path, csvtopology.Options{Undirected: undirected})
		}), nil, nil
	case "dot":
		path := u.Host + u.Path
		logger.WithField("path", path).Info("using DOT topology")

		return scheduler.LoaderFunc(func(context.Context) (*topology.Graph, error) {
			return dot.LoadFile(path, dot.Options{Undirected: undirected})
		}), nil, nil
	case "postgresql":
		logger.Info("using CockroachDB topology")

		db, err := cdb.Open(ctx, uri)
		if err != nil {
			return nil, nil, err
		}

		return cdb.NewLoader(db, clock.WallClock), db, nil
	default:
		return nil, nil, fmt.Errorf("unsupported topology URI scheme: %q", u.Scheme)
	}
}

// getSinks returns a sink that writes to every sink URI. The bolt store, if
// any, is returned separately so it can serve stored values.
func getSinks(ctx context.Context, uris []string, logger *logrus.Entry) (sink.Multi, *bolt.Store, closers, error) {
	var (
		sinks  sink.Multi
		store  *bolt.Store
		toFree closers
	)

	for _, uri := range uris {
		u, err := url.Parse(uri)
		if err != nil {
			toFree.Close()
			return nil, nil, nil, err
		}

		switch u.Scheme {
		case "csv":
			path := u.Host + u.Path
			logger.WithField("path", path).Info("using CSV sink")
			sinks = append(sinks, csvsink.NewFile(path))
		case "bolt":
			path := u.Host + u.Path
			logger.WithField("path", path).Info("using bolt sink")

			if store, err = bolt.Open(path, nil); err != nil {
				toFree.Close()
				return nil, nil, nil, err
			}
			sinks = append(sinks, store)
			toFree = append(toFree, store)
		case "postgresql":
			logger.Info("using CockroachDB sink")

			q := u.Query()
			table := q.Get("table")
			q.Del("table")
			u.RawQuery = q.Encode()

			db, err := cdb.Open(ctx, u.String())
			if err != nil {
				toFree.Close()
				return nil, nil, nil, err
			}
			sinks = append(sinks, cdbsink.New(db, table, nil))
			toFree = append(toFree, db)
		default:
			toFree.Close()
			return nil, nil, nil, fmt.Errorf("unsupported sink URI scheme: %q", u.Scheme)
		}
	}

	return sinks, store, toFree, nil
}

func splitList(list string) []string {
	var items []string
	for _, item := range strings.Split(list, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	return items
}
