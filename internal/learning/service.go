// Package learning is the entry point of the learning core. It turns review,
// quiz and study events into word record updates and serves the read models
// built from them.
package learning

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/example/petwords/internal/clock"
	"github.com/example/petwords/internal/logger"
	"github.com/example/petwords/internal/progress"
	"github.com/example/petwords/internal/spaced_repetition"
	"github.com/example/petwords/internal/store"
	"github.com/example/petwords/pkg/models"
)

var (
	// ErrNoIdentity rejects operations without an account
	ErrNoIdentity = errors.New("no account identity")
	// ErrTopicNotFound marks an outcome for a topic missing from the vocabulary
	ErrTopicNotFound = errors.New("topic not found")
	// ErrWordNotFound marks an outcome for a word missing from its topic
	ErrWordNotFound = errors.New("word not found")
)

// Vocabulary is the static word list the core validates outcomes against
type Vocabulary interface {
	WordsForTopic(topicID string) ([]models.Word, bool)
}

// Service runs learning operations. It holds no per-account state; that
// lives in the Session passed to each call.
type Service struct {
	remote  store.Persistence
	local   store.Persistence
	vocab   Vocabulary
	clock   clock.Clock
	timeout time.Duration
	log     *logger.Logger
}

// NewService wires the service. remote may be nil for a local-only setup and
// vocab may be nil to accept any topic and word.
func NewService(local, remote store.Persistence, vocab Vocabulary, clk clock.Clock, remoteTimeout time.Duration, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		remote:  remote,
		local:   local,
		vocab:   vocab,
		clock:   clk,
		timeout: remoteTimeout,
		log:     log.With("service", "Learning"),
	}
}

// Result is the outcome of RecordOutcome
type Result struct {
	Record   models.WordRecord
	Degraded bool
	// Skipped is set when the word or topic is unknown; Reason says which
	Skipped bool
	Reason  error
}

// OpenSession loads the account's data and returns the session that carries
// it through later calls.
func (s *Service) OpenSession(ctx context.Context, accountID string) (*Session, error) {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return nil, ErrNoIdentity
	}

	st := store.NewWordRecordStore(accountID, s.remote, s.local, s.timeout, s.log)
	sess := &Session{AccountID: accountID, Store: st}
	sess.Degraded = st.FetchFresh(ctx)
	if sess.Degraded {
		s.log.Warn("session opened on local data", "account", accountID)
	}
	return sess, nil
}

// Refresh reloads the session's data. It reports whether the reload fell
// back to local data.
func (s *Service) Refresh(ctx context.Context, sess *Session) (bool, error) {
	if err := sess.check(); err != nil {
		return false, err
	}
	sess.Degraded = sess.Store.FetchFresh(ctx)
	return sess.Degraded, nil
}

// RecordOutcome applies one review of a word and persists it
func (s *Service) RecordOutcome(ctx context.Context, sess *Session, topicID, wordID string, isCorrect bool) (Result, error) {
	if err := sess.check(); err != nil {
		return Result{}, err
	}
	if reason := s.lookup(topicID, wordID); reason != nil {
		s.log.Info("outcome skipped", "account", sess.AccountID, "topic", topicID, "word", wordID, "reason", reason)
		return Result{Skipped: true, Reason: reason}, nil
	}

	today := s.clock.Today()
	var next models.WordRecord
	// The record is read inside Update so it always starts from loaded data
	degraded, err := sess.Store.Update(ctx, today, func(snap *models.AccountSnapshot) error {
		rec, ok := snap.Words[models.RecordKey(topicID, wordID)]
		if !ok {
			rec = spaced_repetition.NewRecord(topicID, wordID, today)
		}
		next = spaced_repetition.ApplyOutcome(rec, isCorrect, today)
		progress.ApplyRecord(snap, next, today)
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	sess.Degraded = degraded

	s.log.Debug("outcome recorded",
		"account", sess.AccountID,
		"key", next.Key(),
		"correct", isCorrect,
		"level", next.MasteryLevel.String(),
		"nextReview", next.NextReview,
	)
	return Result{Record: next, Degraded: degraded}, nil
}

// lookup returns ErrTopicNotFound or ErrWordNotFound, or nil when the word exists
func (s *Service) lookup(topicID, wordID string) error {
	if s.vocab == nil {
		return nil
	}
	words, ok := s.vocab.WordsForTopic(topicID)
	if !ok {
		return ErrTopicNotFound
	}
	for _, w := range words {
		if w.ID == wordID {
			return nil
		}
	}
	return ErrWordNotFound
}

// DueWords returns the records due for review, optionally limited to one topic
func (s *Service) DueWords(sess *Session, topicID string) ([]models.WordRecord, error) {
	if err := sess.check(); err != nil {
		return nil, err
	}
	return spaced_repetition.DueWords(sess.Store.Records(), s.clock.Today(), topicID), nil
}

// TopicProgress returns the stored progress of one topic
func (s *Service) TopicProgress(sess *Session, topicID string) (models.TopicProgress, error) {
	if err := sess.check(); err != nil {
		return models.TopicProgress{}, err
	}
	snap := sess.Store.Snapshot()
	return snap.Topics[topicID], nil
}

// AccountProgress returns the account summary
func (s *Service) AccountProgress(sess *Session) (models.AccountProgress, error) {
	if err := sess.check(); err != nil {
		return models.AccountProgress{}, err
	}
	return progress.Account(sess.Store.Snapshot()), nil
}

// LearnedWords returns the ids of the learned words of a topic
func (s *Service) LearnedWords(sess *Session, topicID string) ([]string, error) {
	if err := sess.check(); err != nil {
		return nil, err
	}
	return progress.LearnedWords(sess.Store.Snapshot(), topicID), nil
}

// QuizHistory returns up to limit quizzes, newest first. An empty topicID
// means every topic.
func (s *Service) QuizHistory(sess *Session, topicID string, limit int) ([]models.QuizRecord, error) {
	if err := sess.check(); err != nil {
		return nil, err
	}
	return progress.QuizHistory(sess.Store.Snapshot(), topicID, limit), nil
}

// Stats returns the detailed profile statistics
func (s *Service) Stats(sess *Session) (progress.Stats, error) {
	if err := sess.check(); err != nil {
		return progress.Stats{}, err
	}
	return progress.DetailedStats(sess.Store.Snapshot(), s.clock.Today()), nil
}
