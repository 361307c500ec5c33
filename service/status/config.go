package status

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/mycok/uPregel/service/scheduler"
)

// PassReporter is implemented by services that report on their last pass.
type PassReporter interface {
	LastPass() (scheduler.PassSummary, bool)
}

// ValueReader is implemented by sinks that can serve stored values.
type ValueReader interface {
	Value(computation, vertexID string) (float64, error)
}

// Config defines configurations for the status service.
type Config struct {
	// The address to listen for incoming requests.
	ListenAddr string

	// Gatherer exposes the metrics served at /metrics. If not specified,
	// the default prometheus gatherer will be used instead.
	Gatherer prometheus.Gatherer

	// Passes maps computation names to the services scheduling them.
	Passes map[string]PassReporter

	// Values serves stored vertex values. Optional.
	Values ValueReader

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (config *Config) validate() error {
	var err error

	if config.ListenAddr == "" {
		err = multierror.Append(err, fmt.Errorf("listen address has not been specified"))
	}

	if config.Gatherer == nil {
		config.Gatherer = prometheus.DefaultGatherer
	}

	if config.Logger == nil {
		config.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return err
}
