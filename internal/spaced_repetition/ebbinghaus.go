package spaced_repetition

import (
	"github.com/example/petwords/pkg/models"
)

// ReviewIntervals maps a mastery level to the days until its next review.
// Day 0 learn, then day 1, 3, 7, 14, 30 and every 30 days after that.
var ReviewIntervals = [...]int{
	models.MasteryNew:       1,
	models.MasteryLearning:  2,
	models.MasteryFamiliar:  4,
	models.MasteryConfident: 7,
	models.MasteryMastered:  16,
	models.MasteryPermanent: 30,
}

// ClampLevel forces a level into [MasteryNew, MasteryPermanent]
func ClampLevel(level models.MasteryLevel) models.MasteryLevel {
	if level < models.MasteryNew {
		return models.MasteryNew
	}
	if level > models.MasteryPermanent {
		return models.MasteryPermanent
	}
	return level
}

// IntervalFor returns the review interval in days for a mastery level
func IntervalFor(level models.MasteryLevel) int {
	return ReviewIntervals[ClampLevel(level)]
}

// NextReview returns the date a word at level reviewed on day is due again
func NextReview(level models.MasteryLevel, day models.Date) models.Date {
	return day.AddDays(IntervalFor(level))
}

// NextLevel computes the mastery level after one review outcome.
//
// A correct answer on a NEW or LEARNING word jumps straight to FAMILIAR, the
// first level counted as learned; otherwise it climbs one level up to PERMANENT.
// A miss on a CONFIDENT or better word drops two levels, a miss below that drops
// one; neither goes below LEARNING, and a NEW word stays NEW.
func NextLevel(level models.MasteryLevel, isCorrect bool) models.MasteryLevel {
	level = ClampLevel(level)
	if isCorrect {
		switch {
		case level < models.MasteryFamiliar:
			return models.MasteryFamiliar
		case level < models.MasteryPermanent:
			return level + 1
		default:
			return models.MasteryPermanent
		}
	}

	switch {
	case level >= models.MasteryConfident:
		return max(models.MasteryLearning, level-2)
	case level > models.MasteryNew:
		return max(models.MasteryLearning, level-1)
	default:
		return models.MasteryNew
	}
}

// NewRecord returns the record of a word reviewed for the first time today
func NewRecord(topicID, wordID string, today models.Date) models.WordRecord {
	return models.WordRecord{
		TopicID:      topicID,
		WordID:       wordID,
		MasteryLevel: models.MasteryNew,
		FirstLearned: today,
		NextReview:   today,
	}
}

// ApplyOutcome returns rec after one review on today. rec itself is not modified.
func ApplyOutcome(rec models.WordRecord, isCorrect bool, today models.Date) models.WordRecord {
	next := rec.Clone()
	if next.FirstLearned.IsZero() {
		next.FirstLearned = today
	}

	next.MasteryLevel = NextLevel(rec.MasteryLevel, isCorrect)
	next.LastReviewed = today
	next.NextReview = NextReview(next.MasteryLevel, today)

	next.ReviewCount++
	if isCorrect {
		next.CorrectCount++
	} else {
		next.IncorrectCount++
	}

	next.History = append(next.History, models.HistoryEntry{
		Date:         today,
		Correct:      isCorrect,
		MasteryLevel: next.MasteryLevel,
	})
	next.History = trimHistory(next.History)

	return next
}

// trimHistory keeps the newest MaxHistory entries
func trimHistory(h []models.HistoryEntry) []models.HistoryEntry {
	if len(h) <= models.MaxHistory {
		return h
	}
	kept := make([]models.HistoryEntry, models.MaxHistory)
	copy(kept, h[len(h)-models.MaxHistory:])
	return kept
}

// IsLearned reports whether a word counts as learned
func IsLearned(rec models.WordRecord) bool {
	return rec.MasteryLevel >= models.MasteryFamiliar
}
