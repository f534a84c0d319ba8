package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/i474232898/weather-report/internal/weather"
)

// Reporter builds a report for one location.
type Reporter interface {
	Report(ctx context.Context, loc weather.Location, req weather.ReportRequest) (weather.Report, error)
}

// Scheduler periodically builds and logs reports for watched locations.
type Scheduler struct {
	scheduler *gocron.Scheduler
	reporter  Reporter
	locations []weather.Location
	request   weather.ReportRequest
	interval  time.Duration
	timeout   time.Duration
	log       *zap.Logger
}

// New creates a new Scheduler. timeout bounds each location's report.
func New(locations []weather.Location, interval, timeout time.Duration, req weather.ReportRequest, reporter Reporter, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		reporter:  reporter,
		locations: locations,
		request:   req,
		interval:  interval,
		timeout:   timeout,
		log:       log.Named("scheduler"),
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.locations) == 0 {
		s.log.Info("no locations configured; nothing to schedule")
		return nil
	}

	interval := s.interval
	if interval <= 0 {
		interval = 30 * time.Minute
	}

	_, err := s.scheduler.Every(interval).Do(s.RunOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.log.Info("scheduler started",
		zap.Int("locations", len(s.locations)),
		zap.Duration("interval", interval))
	return nil
}

// RunOnce reports on every location in turn. Failures are logged and do not
// stop the remaining locations.
func (s *Scheduler) RunOnce() {
	s.log.Debug("running weather report job")

	for _, loc := range s.locations {
		s.reportOne(loc)
	}

	s.log.Debug("completed weather report job")
}

func (s *Scheduler) reportOne(loc weather.Location) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	report, err := s.reporter.Report(ctx, loc, s.request)
	if err != nil {
		s.log.Warn("report failed", zap.String("city", loc.Name), zap.Error(err))
		return
	}
	s.log.Info("weather report",
		zap.String("report_id", report.ID),
		zap.String("city", loc.Name),
		zap.Strings("lines", report.Lines()))
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
