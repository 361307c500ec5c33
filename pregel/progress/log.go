/*
	progress provides pregel.Observer implementations that report job
	progress through logs and prometheus metrics.
*/

package progress

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/mycok/uPregel/pregel"
)

// LogObserver logs a line for every started and completed superstep.
type LogObserver struct {
	logger *logrus.Entry
}

// NewLogObserver returns a LogObserver that writes to logger. If logger is
// nil an output-discarding logger will be used instead.
func NewLogObserver(logger *logrus.Entry) *LogObserver {
	if logger == nil {
		logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return &LogObserver{logger: logger}
}

// StepStarted implements pregel.Observer.
func (o *LogObserver) StepStarted(stats pregel.StepStats) {
	o.logger.WithFields(logrus.Fields{
		"job_id":          stats.JobID,
		"computation":     stats.Computation,
		"superstep":       stats.Superstep,
		"active_vertices": stats.ActiveVertices,
	}).Infof("Compute iteration %d of %d :: Start", stats.Superstep+1, stats.MaxSupersteps)
}

// StepCompleted implements pregel.Observer.
func (o *LogObserver) StepCompleted(stats pregel.StepStats) {
	o.logger.WithFields(logrus.Fields{
		"job_id":          stats.JobID,
		"computation":     stats.Computation,
		"superstep":       stats.Superstep,
		"active_vertices": stats.ActiveVertices,
		"messages_sent":   stats.MessagesSent,
		"duration":        stats.Duration.String(),
	}).Infof("Compute iteration %d of %d :: Finished", stats.Superstep+1, stats.MaxSupersteps)
}

// Multi fans out notifications to a list of observers in order.
type Multi []pregel.Observer

// StepStarted implements pregel.Observer.
func (m Multi) StepStarted(stats pregel.StepStats) {
	for _, o := range m {
		o.StepStarted(stats)
	}
}

// StepCompleted implements pregel.Observer.
func (m Multi) StepCompleted(stats pregel.StepStats) {
	for _, o := range m {
		o.StepCompleted(stats)
	}
}
