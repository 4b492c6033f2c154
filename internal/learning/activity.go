package learning

import (
	"context"

	"github.com/example/petwords/internal/progress"
	"github.com/example/petwords/internal/spaced_repetition"
	"github.com/example/petwords/pkg/models"
)

// QuizResult is the outcome of RecordQuizResult
type QuizResult struct {
	Quiz models.QuizRecord
	// Reviewed holds the records updated for the wrong words
	Reviewed []models.WordRecord
	Degraded bool
	Skipped  bool
	Reason   error
}

// RecordQuizResult stores a finished quiz. Every known wrong word is also
// recorded as an incorrect review, in the same write.
func (s *Service) RecordQuizResult(ctx context.Context, sess *Session, topicID string, score, total int, wrongWords []string) (QuizResult, error) {
	if err := sess.check(); err != nil {
		return QuizResult{}, err
	}
	if s.vocab != nil {
		if _, ok := s.vocab.WordsForTopic(topicID); !ok {
			return QuizResult{Skipped: true, Reason: ErrTopicNotFound}, nil
		}
	}

	now := s.clock.Now()
	today := models.DateOf(now)
	quiz, err := progress.NewQuizRecord(topicID, score, total, wrongWords, now)
	if err != nil {
		return QuizResult{}, err
	}

	var reviewed []models.WordRecord
	degraded, err := sess.Store.Update(ctx, today, func(snap *models.AccountSnapshot) error {
		reviewed = reviewed[:0]
		seen := make(map[string]bool, len(wrongWords))
		for _, wordID := range wrongWords {
			if seen[wordID] {
				continue
			}
			seen[wordID] = true
			if reason := s.lookup(topicID, wordID); reason != nil {
				s.log.Info("wrong word skipped", "account", sess.AccountID, "topic", topicID, "word", wordID, "reason", reason)
				continue
			}

			rec, ok := snap.Words[models.RecordKey(topicID, wordID)]
			if !ok {
				rec = spaced_repetition.NewRecord(topicID, wordID, today)
			}
			next := spaced_repetition.ApplyOutcome(rec, false, today)
			progress.ApplyRecord(snap, next, today)
			reviewed = append(reviewed, next)
		}

		progress.RecordQuiz(snap, quiz)
		progress.OnStudyActivity(&snap.Streak, today)
		return nil
	})
	if err != nil {
		return QuizResult{}, err
	}
	sess.Degraded = degraded

	s.log.Info("quiz recorded",
		"account", sess.AccountID,
		"topic", topicID,
		"score", score,
		"total", total,
		"percentage", quiz.Percentage,
	)
	return QuizResult{Quiz: quiz, Reviewed: reviewed, Degraded: degraded}, nil
}

// RecordStudySession logs a study session. It does not count as an answer
// and so leaves word records and the streak alone.
func (s *Service) RecordStudySession(ctx context.Context, sess *Session, topicID, mode string, wordsStudied, duration int) (models.StudySession, bool, error) {
	if err := sess.check(); err != nil {
		return models.StudySession{}, false, err
	}

	now := s.clock.Now()
	var recorded models.StudySession
	degraded, err := sess.Store.Update(ctx, models.DateOf(now), func(snap *models.AccountSnapshot) error {
		recorded = progress.RecordStudySession(snap, topicID, mode, wordsStudied, duration, now)
		return nil
	})
	if err != nil {
		return models.StudySession{}, false, err
	}
	sess.Degraded = degraded
	return recorded, degraded, nil
}
