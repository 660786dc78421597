package workers

import (
	"context"
	"log/slog"
	"roomchat/contract"
	"time"
)

// ProcessSampler refreshes process resource stats.
type ProcessSampler interface {
	Sample() error
}

// HealthMonitoringWorker periodically samples the process and probes the
// message store. The serving state is only pushed when it changes.
type HealthMonitoringWorker struct {
	log            *slog.Logger
	sampler        ProcessSampler
	probe          func() error
	reporter       contract.HealthReporter
	metricInterval time.Duration
	serving        *bool
}

func NewHealthMonitoringWorker(log *slog.Logger, sampler ProcessSampler, probe func() error,
	reporter contract.HealthReporter, metricInterval time.Duration) *HealthMonitoringWorker {
	return &HealthMonitoringWorker{
		log:            log,
		sampler:        sampler,
		probe:          probe,
		reporter:       reporter,
		metricInterval: metricInterval,
	}
}

func (w *HealthMonitoringWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	w.Check()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping health monitoring")
			return nil
		case <-ticker.C:
			w.Check()
		}
	}
}

// Check runs one sampling and probing round.
func (w *HealthMonitoringWorker) Check() {
	if err := w.sampler.Sample(); err != nil {
		w.log.Debug("Error while sampling process", "err", err)
	}

	err := w.probe()
	serving := err == nil
	if err != nil {
		w.log.Error("Message store probe failed", "err", err)
	}
	if w.serving != nil && *w.serving == serving {
		return
	}
	w.serving = &serving
	w.reporter.SetServing(serving)
	w.log.Info("Serving status changed", "serving", serving)
}
