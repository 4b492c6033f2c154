package progress

import (
	"github.com/example/petwords/internal/spaced_repetition"
	"github.com/example/petwords/pkg/models"
)

// Stats is the detailed profile view of an account
type Stats struct {
	Account models.AccountProgress `json:"account"`
	// Levels counts word records per mastery level
	Levels [int(models.MasteryPermanent) + 1]int `json:"levels"`

	TotalWordsStudied int `json:"totalWordsStudied"`
	NewWords          int `json:"newWords"`      // NEW
	LearningWords     int `json:"learningWords"` // LEARNING to CONFIDENT
	MasteredWords     int `json:"masteredWords"` // MASTERED and PERMANENT
	WordsDueForReview int `json:"wordsDueForReview"`

	StartDate     models.Date         `json:"startDate,omitempty"`
	RecentQuizzes []models.QuizRecord `json:"recentQuizzes"`
}

// DetailedStats computes Stats for snap on today
func DetailedStats(snap *models.AccountSnapshot, today models.Date) Stats {
	st := Stats{
		Account:       Account(snap),
		StartDate:     snap.StartDate,
		RecentQuizzes: QuizHistory(snap, "", 5),
	}

	records := make([]models.WordRecord, 0, len(snap.Words))
	for _, rec := range snap.Words {
		records = append(records, rec)
		level := spaced_repetition.ClampLevel(rec.MasteryLevel)
		st.Levels[level]++
		st.TotalWordsStudied++
		switch {
		case level >= models.MasteryMastered:
			st.MasteredWords++
		case level >= models.MasteryLearning:
			st.LearningWords++
		default:
			st.NewWords++
		}
	}
	st.WordsDueForReview = spaced_repetition.CountDue(records, today)

	return st
}
