package progress

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/example/petwords/pkg/models"
)

// ErrInvalidQuiz is returned for a quiz result that cannot be scored
var ErrInvalidQuiz = errors.New("invalid quiz result")

// NewQuizRecord scores a finished quiz taken at now
func NewQuizRecord(topicID string, score, totalQuestions int, wrongWords []string, now time.Time) (models.QuizRecord, error) {
	if totalQuestions <= 0 {
		return models.QuizRecord{}, fmt.Errorf("%w: total questions must be positive, got %d", ErrInvalidQuiz, totalQuestions)
	}
	if score < 0 || score > totalQuestions {
		return models.QuizRecord{}, fmt.Errorf("%w: score %d outside 0..%d", ErrInvalidQuiz, score, totalQuestions)
	}

	wrong := append([]string{}, wrongWords...)
	return models.QuizRecord{
		ID:             uuid.NewString(),
		TopicID:        topicID,
		Date:           now.Format(time.RFC3339),
		DateStr:        models.DateOf(now),
		Score:          score,
		TotalQuestions: totalQuestions,
		Percentage:     roundInt(float64(score) / float64(totalQuestions) * 100),
		WrongWords:     wrong,
	}, nil
}

func roundInt(v float64) int {
	return int(math.Round(v))
}

// RecordQuiz adds q to the account history (newest MaxQuizHistory kept), updates
// the account average over that history and the quiz figures of q's topic.
func RecordQuiz(snap *models.AccountSnapshot, q models.QuizRecord) {
	snap.QuizHistory = append(snap.QuizHistory, q)
	if len(snap.QuizHistory) > models.MaxQuizHistory {
		snap.QuizHistory = append([]models.QuizRecord(nil), snap.QuizHistory[len(snap.QuizHistory)-models.MaxQuizHistory:]...)
	}
	snap.TotalQuizzes++

	sum := 0
	for _, h := range snap.QuizHistory {
		sum += h.Percentage
	}
	snap.AverageScore = roundInt(float64(sum) / float64(len(snap.QuizHistory)))

	if snap.Topics == nil {
		snap.Topics = make(map[string]models.TopicProgress)
	}
	topic := snap.Topics[q.TopicID].Clone()
	topic.QuizzesTaken++
	topic.BestQuizScore = max(topic.BestQuizScore, q.Percentage)
	topic.TotalQuizScore += q.Percentage
	topic.AverageQuizScore = roundInt(float64(topic.TotalQuizScore) / float64(topic.QuizzesTaken))
	topic.LastQuizDate = q.DateStr
	snap.Topics[q.TopicID] = topic
}

// QuizHistory returns up to limit quizzes, newest first, optionally for one topic.
// A limit of 0 or less returns every matching quiz.
func QuizHistory(snap *models.AccountSnapshot, topicID string, limit int) []models.QuizRecord {
	var out []models.QuizRecord
	for i := len(snap.QuizHistory) - 1; i >= 0; i-- {
		q := snap.QuizHistory[i]
		if topicID != "" && q.TopicID != topicID {
			continue
		}
		out = append(out, q)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
