package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
)

const (
	defaultInterval = 30 * time.Minute
	jobTimeout      = 2 * time.Minute
)

// Refresher warms cached weather data for saved locations.
type Refresher interface {
	RefreshFavorites(ctx context.Context) (int, error)
}

// Scheduler periodically refreshes the extended bundles of all favorites.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresher Refresher
	interval  time.Duration
	log       logrus.FieldLogger
}

// New creates a new Scheduler.
func New(refresher Refresher, interval time.Duration, log logrus.FieldLogger) *Scheduler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		refresher: refresher,
		interval:  interval,
		log:       log.WithField("component", "scheduler"),
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first run happens immediately.
func (s *Scheduler) Start() error {
	interval := s.interval
	if interval <= 0 {
		interval = defaultInterval
	}

	_, err := s.scheduler.Every(interval).Do(s.run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.log.WithField("interval", interval.String()).Info("favorites refresh scheduled")
	return nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	n, err := s.refresher.RefreshFavorites(ctx)
	if err != nil {
		s.log.WithError(err).Warn("favorites refresh failed")
		return
	}
	s.log.WithFields(logrus.Fields{
		"refreshed": n,
		"elapsed":   time.Since(start).Round(time.Millisecond).String(),
	}).Info("favorites refresh completed")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
