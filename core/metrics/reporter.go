package metrics

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Reporter logs the tracker count on a schedule.
type Reporter struct {
	cron    *cron.Cron
	tracker *Tracker
	logger  *zap.Logger
}

// NewReporter schedules a report every cfg.Interval. Call Start to run it.
func NewReporter(cfg Config, tracker *Tracker, logger *zap.Logger) (*Reporter, error) {
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("metrics: interval must be positive, got %s", cfg.Interval)
	}
	r := &Reporter{
		cron:    cron.New(),
		tracker: tracker,
		logger:  logger,
	}
	if _, err := r.cron.AddFunc(fmt.Sprintf("@every %s", cfg.Interval), r.Report); err != nil {
		return nil, fmt.Errorf("metrics: schedule report: %w", err)
	}
	return r, nil
}

// Report logs the current count once.
func (r *Reporter) Report() {
	r.logger.Info("Upstream requests",
		zap.Int("count", r.tracker.Count()),
		zap.Duration("window", r.tracker.Window()))
}

func (r *Reporter) Start() {
	r.cron.Start()
}

// Stop halts the schedule and waits for a running report to finish.
func (r *Reporter) Stop() {
	<-r.cron.Stop().Done()
}
