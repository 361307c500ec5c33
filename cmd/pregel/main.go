package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/mycok/uPregel/pregel/progress"
	"github.com/mycok/uPregel/service"
	"github.com/mycok/uPregel/service/partition"
	"github.com/mycok/uPregel/service/scheduler"
	"github.com/mycok/uPregel/service/status"
)

const (
	appName = "uPregel"
	appSHA  = "compiled-and-deployed-at"
)

func main() {
	host, _ := os.Hostname()
	// Instantiate a root logger that will be passed to all services.
	rootLogger := logrus.New()
	logger := rootLogger.WithFields(logrus.Fields{
		"app":  appName,
		"SHA":  appSHA,
		"host": host,
	})

	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		logger.WithField("err", err).Error("shutting down due to an error")
		os.Exit(1)
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.WithField("err", err).Error("shutting down due to an error")
		os.Exit(1)
	}
	rootLogger.SetLevel(level)

	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	// Launch a separate process to listen and respond to os signals
	// and trigger a graceful shutdown.
	go func() {
		signalChan := make(chan os.Signal, 1)
		signal.Notify(signalChan, syscall.SIGINT, syscall.SIGHUP, syscall.SIGTERM)

		select {
		case s := <-signalChan:
			logger.WithField("signal", s.String()).Info("shutting down due to os signal")
			cancelFn()
		case <-ctx.Done():
		}
	}()

	if err := run(ctx, cfg, logger); err != nil {
		logger.WithField("err", err).Error("shutting down due to an error")
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}

// parseConfig applies the config file, the environment and the command line
// flags in that order. Flags only override the other sources when they are
// explicitly set.
func parseConfig(args []string) (appConfig, error) {
	cfg := defaultConfig()

	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	var (
		configFile    = fs.String("config", "", "Path to a YAML job file")
		computation   = fs.String("computation", cfg.Computation, "Computation to run. Supported values are pagerank, shortestpath, components, labelprop and coloring")
		topologyURI   = fs.String("topology-uri", "", "URI of the input topology. [supported URI's: csv://path, dot://path, postgresql://user@host:26257/graph?sslmode=disable]")
		undirected    = fs.Bool("undirected", false, "Treat every input edge as undirected")
		sinkURIs      = fs.String("sink-uris", "", "Comma separated list of sink URI's. [supported URI's: csv://path, bolt://path, postgresql://user@host:26257/graph?table=vertex_values]")
		workers       = fs.Int("workers", cfg.Workers, "Number of workers for executing vertex programs")
		async         = fs.Bool("async", false, "Deliver messages within the superstep they were sent in")
		maxSupersteps = fs.Int("max-supersteps", cfg.MaxSupersteps, "Maximum number of supersteps per pass")
		interval      = fs.Duration("update-interval", 0, "Time between subsequent passes. A zero value runs a single pass and exits")
		statusAddr    = fs.String("status-listen-addr", cfg.StatusAddr, "Address to listen on for status requests")
		partitioning  = fs.String("partitioning", cfg.Partitioning, "How vertices are split across workers. Supported values are range and degree")
		partMode      = fs.String("partition-detection-mode", cfg.PartitionMode, "The partition detection mode to use. Supported values are 'dns=HEADLESS_SERVICE_NAME' (k8s) and 'single' (local dev mode)")
		source        = fs.String("source", "", "Source vertex for the shortestpath computation")
		seed          = fs.Int64("seed", 0, "Seed for the coloring computation")
		logLevel      = fs.String("log-level", cfg.LogLevel, "Log level")
	)

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if *configFile != "" {
		if err := loadConfigFile(&cfg, *configFile); err != nil {
			return cfg, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "computation":
			cfg.Computation = *computation
		case "topology-uri":
			cfg.Topology = *topologyURI
		case "undirected":
			cfg.Undirected = *undirected
		case "sink-uris":
			cfg.Sinks = splitList(*sinkURIs)
		case "workers":
			cfg.Workers = *workers
		case "async":
			cfg.Asynchronous = *async
		case "max-supersteps":
			cfg.MaxSupersteps = *maxSupersteps
		case "update-interval":
			cfg.UpdateInterval = *interval
		case "status-listen-addr":
			cfg.StatusAddr = *statusAddr
		case "partitioning":
			cfg.Partitioning = *partitioning
		case "partition-detection-mode":
			cfg.PartitionMode = *partMode
		case "source":
			cfg.ShortestPath.Source = *source
		case "seed":
			cfg.Coloring.Seed = *seed
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})

	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func run(ctx context.Context, cfg appConfig, logger *logrus.Entry) error {
	newComputation, async, err := computationFactory(cfg)
	if err != nil {
		return err
	}

	loader, loaderCloser, err := getLoader(ctx, cfg.Topology, cfg.Undirected, logger)
	if err != nil {
		return err
	}
	if loaderCloser != nil {
		defer func() { _ = loaderCloser.Close() }()
	}

	sinks, store, sinkClosers, err := getSinks(ctx, cfg.Sinks, logger)
	if err != nil {
		return err
	}
	defer sinkClosers.Close()

	partitioning, err := parsePartitioning(cfg.Partitioning)
	if err != nil {
		return err
	}

	partDet, err := partition.FromMode(cfg.PartitionMode)
	if err != nil {
		return err
	}

	metrics, err := progress.NewMetricsObserver(prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}

	sched, err := scheduler.New(scheduler.Config{
		Name:                cfg.Computation,
		Loader:              loader,
		Sink:                sinks,
		NewComputation:      newComputation,
		Asynchronous:        async,
		Partitioning:        partitioning,
		PartitionDetector:   partDet,
		NumOfComputeWorkers: cfg.Workers,
		MaxSupersteps:       cfg.MaxSupersteps,
		UpdateInterval:      cfg.UpdateInterval,
		Observer: progress.Multi{
			progress.NewLogObserver(logger.WithField("service", "progress")),
			metrics,
		},
		Logger: logger.WithField("service", "scheduler"),
	})
	if err != nil {
		return err
	}

	// A zero update interval runs a single pass without the status service.
	if cfg.UpdateInterval == 0 {
		return sched.Run(ctx)
	}

	statusConfig := status.Config{
		ListenAddr: cfg.StatusAddr,
		Passes:     map[string]status.PassReporter{cfg.Computation: sched},
		Logger:     logger.WithField("service", "status"),
	}
	if store != nil {
		statusConfig.Values = store
	}

	statusSvc, err := status.New(statusConfig)
	if err != nil {
		return err
	}

	return service.Group{sched, statusSvc}.Execute(ctx)
}
