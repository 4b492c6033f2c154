package progress

import "github.com/example/petwords/pkg/models"

// OnStudyActivity counts today as a study day at most once.
//
// Studying the day after the last study day extends the current streak; any
// longer gap, or the first activity ever, starts a new streak of 1.
func OnStudyActivity(s *models.Streak, today models.Date) models.Streak {
	if s.LastStudyStr == today {
		return *s
	}

	if !s.LastStudyStr.IsZero() && s.LastStudyStr == today.AddDays(-1) {
		s.CurrentStreak++
	} else {
		s.CurrentStreak = 1
	}
	s.LongestStreak = max(s.LongestStreak, s.CurrentStreak)
	s.TotalDaysStudied++
	s.LastStudyStr = today

	return *s
}
