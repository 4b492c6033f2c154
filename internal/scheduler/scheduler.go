// Package scheduler sends hourly reminders to accounts with words due for review.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/petwords/internal/learning"
	"github.com/example/petwords/internal/logger"
	"github.com/example/petwords/pkg/models"
)

// Default notification window, inclusive
const (
	DefaultNotificationStartHour = 8
	DefaultNotificationEndHour   = 22
)

// Notifier delivers a reminder that count words are waiting
type Notifier interface {
	SendReminders(accountID string, count int) error
}

// Learner is the part of the learning service the scheduler reads from
type Learner interface {
	OpenSession(ctx context.Context, accountID string) (*learning.Session, error)
	DueWords(sess *learning.Session, topicID string) ([]models.WordRecord, error)
}

// Directory lists the accounts that have stored learning data
type Directory interface {
	Accounts(ctx context.Context) ([]string, error)
}

// Config holds the reminder window and recipients
type Config struct {
	// Accounts that can receive reminders
	Accounts []string
	// Directory, when set, limits reminders to Accounts that have stored data
	Directory Directory
	StartHour int
	EndHour   int
	Location  *time.Location
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	learner   Learner
	notifier  Notifier
	cfg       Config
	log       *logger.Logger

	now func() time.Time
}

// New creates a new scheduler instance
func New(learner Learner, notifier Notifier, cfg Config, log *logger.Logger) *Scheduler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(cfg.Location),
		learner:   learner,
		notifier:  notifier,
		cfg:       cfg,
		log:       log.With("service", "Scheduler"),
		now:       time.Now,
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() error {
	// Hourly check for accounts that need a reminder
	if _, err := s.scheduler.Every(1).Hour().Do(s.checkAndSendReminders); err != nil {
		return fmt.Errorf("failed to schedule reminders: %w", err)
	}

	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// InWindow reports whether hour falls inside the notification window
func (s *Scheduler) InWindow(hour int) bool {
	return hour >= s.cfg.StartHour && hour <= s.cfg.EndHour
}

func (s *Scheduler) checkAndSendReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	s.CheckAll(ctx)
}

// CheckAll sends reminders to every configured account if the current hour
// is inside the window. It returns how many reminders were sent.
func (s *Scheduler) CheckAll(ctx context.Context) int {
	hour := s.now().In(s.cfg.Location).Hour()
	if !s.InWindow(hour) {
		s.log.Debug("outside notification hours, skipping reminders",
			"hour", hour, "start", s.cfg.StartHour, "end", s.cfg.EndHour)
		return 0
	}

	accounts := s.recipients(ctx)
	sent := 0
	for _, accountID := range accounts {
		if ctx.Err() != nil {
			break
		}
		ok, err := s.RunManualCheck(ctx, accountID)
		if err != nil {
			s.log.Warn("reminder failed", "account", accountID, "error", err)
			continue
		}
		if ok {
			sent++
		}
	}
	s.log.Info("reminder check finished", "accounts", len(accounts), "sent", sent)
	return sent
}

// recipients returns the configured accounts that have stored data. Without
// a directory, or when it fails, every configured account is checked.
func (s *Scheduler) recipients(ctx context.Context) []string {
	if s.cfg.Directory == nil {
		return s.cfg.Accounts
	}
	stored, err := s.cfg.Directory.Accounts(ctx)
	if err != nil {
		s.log.Warn("failed to list stored accounts, checking all", "error", err)
		return s.cfg.Accounts
	}

	known := make(map[string]bool, len(stored))
	for _, id := range stored {
		known[id] = true
	}
	var out []string
	for _, id := range s.cfg.Accounts {
		if known[id] {
			out = append(out, id)
		} else {
			s.log.Debug("no stored data, skipping reminder", "account", id)
		}
	}
	return out
}

// RunManualCheck sends a reminder to one account if it has due words,
// ignoring the notification window. It reports whether a reminder was sent.
func (s *Scheduler) RunManualCheck(ctx context.Context, accountID string) (bool, error) {
	sess, err := s.learner.OpenSession(ctx, accountID)
	if err != nil {
		return false, err
	}
	due, err := s.learner.DueWords(sess, "")
	if err != nil {
		return false, err
	}
	if len(due) == 0 {
		return false, nil
	}

	if err := s.notifier.SendReminders(accountID, len(due)); err != nil {
		return false, fmt.Errorf("failed to send reminder: %w", err)
	}
	return true, nil
}
