package scheduler

import (
	"context"
	"fmt"
	"time"

	"volunteer_feedback_reminders/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Sweeper runs one reminder pass over every volunteer.
type Sweeper interface {
	Run(ctx context.Context) (*app.SweepResult, error)
}

type ReminderScheduler struct {
	cronEngine         *cron.Cron
	sweeper            Sweeper
	guard              app.CallGuard
	logger             *logrus.Entry
	cronSpecSweep      string
	cronSpecGuardPrune string
	sweepTimeout       time.Duration
}

func NewReminderScheduler(
	sweeper Sweeper,
	guard app.CallGuard,
	logger *logrus.Entry,
	cronSpecSweep string, // e.g., "*/15 * * * *" (every 15 minutes)
	cronSpecGuardPrune string, // e.g., "0 * * * *" (hourly)
	sweepTimeout time.Duration,
) *ReminderScheduler {
	return &ReminderScheduler{
		// SkipIfStillRunning keeps a slow sweep from overlapping the next one
		cronEngine: cron.New(
			cron.WithLocation(time.Local),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		sweeper:            sweeper,
		guard:              guard,
		logger:             logger.WithField("component", "scheduler"),
		cronSpecSweep:      cronSpecSweep,
		cronSpecGuardPrune: cronSpecGuardPrune,
		sweepTimeout:       sweepTimeout,
	}
}

// Start registers the jobs and starts the cron engine.
func (s *ReminderScheduler) Start() error {
	s.logger.Info("Starting reminder scheduler...")

	if _, err := s.cronEngine.AddFunc(s.cronSpecSweep, s.runSweep); err != nil {
		return fmt.Errorf("could not add reminder sweep cron job: %w", err)
	}
	if _, err := s.cronEngine.AddFunc(s.cronSpecGuardPrune, s.pruneGuard); err != nil {
		return fmt.Errorf("could not add guard prune cron job: %w", err)
	}

	s.cronEngine.Start()
	s.logger.WithFields(logrus.Fields{
		"sweep": s.cronSpecSweep,
		"prune": s.cronSpecGuardPrune,
	}).Info("Reminder scheduler started with jobs.")
	return nil
}

func (s *ReminderScheduler) runSweep() {
	s.logger.Info("Cron job triggered for reminder sweep.")
	ctx := context.Background()
	if s.sweepTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.sweepTimeout)
		defer cancel()
	}
	if _, err := s.sweeper.Run(ctx); err != nil {
		s.logger.WithError(err).Error("Error during reminder sweep")
	}
}

func (s *ReminderScheduler) pruneGuard() {
	removed := s.guard.Prune(context.Background())
	s.logger.WithField("removed", removed).Debug("Pruned expired reminder check results")
}

func (s *ReminderScheduler) Stop() {
	s.logger.Info("Stopping reminder scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()
	s.logger.Info("Reminder scheduler gracefully stopped.")
}
