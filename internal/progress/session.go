package progress

import (
	"time"

	"github.com/google/uuid"

	"github.com/example/petwords/pkg/models"
)

// RecordStudySession appends a study session to snap, keeping the newest
// MaxStudySessions, and returns it
func RecordStudySession(snap *models.AccountSnapshot, topicID, mode string, wordsStudied, duration int, now time.Time) models.StudySession {
	s := models.StudySession{
		ID:           uuid.NewString(),
		TopicID:      topicID,
		Mode:         mode,
		WordsStudied: wordsStudied,
		Duration:     duration,
		Timestamp:    now.Format(time.RFC3339),
		Date:         models.DateOf(now),
	}
	snap.StudySessions = append(snap.StudySessions, s)
	if len(snap.StudySessions) > models.MaxStudySessions {
		snap.StudySessions = append([]models.StudySession(nil), snap.StudySessions[len(snap.StudySessions)-models.MaxStudySessions:]...)
	}
	return s
}
