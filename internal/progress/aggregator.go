// Package progress derives topic and account summaries from word records and
// tracks study streaks and quiz results.
package progress

import (
	"math"
	"sort"

	"github.com/example/petwords/internal/spaced_repetition"
	"github.com/example/petwords/pkg/models"
)

// wordCounts holds the record-derived part of a TopicProgress
type wordCounts struct {
	studied        int
	learned        int
	averageMastery float64
}

func countWords(records []models.WordRecord) wordCounts {
	var c wordCounts
	total := 0
	for _, rec := range records {
		c.studied++
		if spaced_repetition.IsLearned(rec) {
			c.learned++
		}
		total += int(rec.MasteryLevel)
	}
	if c.studied > 0 {
		c.averageMastery = round2(float64(total) / float64(c.studied))
	}
	return c
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// RecomputeTopic returns prev updated after study on today: word counts and
// average mastery are recounted from records, today is added to the study days
// (keeping the newest MaxStudyDays) and becomes the last studied date.
// Quiz aggregates are carried over from prev.
func RecomputeTopic(prev models.TopicProgress, records []models.WordRecord, today models.Date) models.TopicProgress {
	next := prev.Clone()

	c := countWords(records)
	next.WordsStudied = c.studied
	next.WordsLearned = c.learned
	next.AverageMastery = c.averageMastery

	if next.FirstStudied.IsZero() {
		next.FirstStudied = today
	}
	next.LastStudied = today
	next.StudyDays = touchStudyDay(next.StudyDays, today)

	return next
}

func touchStudyDay(days []models.Date, today models.Date) []models.Date {
	for _, d := range days {
		if d == today {
			return days
		}
	}
	days = append(days, today)
	if len(days) > models.MaxStudyDays {
		days = append([]models.Date(nil), days[len(days)-models.MaxStudyDays:]...)
	}
	return days
}

// TopicRecords returns the records of snap that belong to topicID, ordered by key
func TopicRecords(snap *models.AccountSnapshot, topicID string) []models.WordRecord {
	var out []models.WordRecord
	for _, rec := range snap.Words {
		if rec.TopicID == topicID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// ApplyRecord stores rec in snap and recomputes everything that depends on it:
// the owning topic's progress and the account's study streak.
func ApplyRecord(snap *models.AccountSnapshot, rec models.WordRecord, today models.Date) {
	if snap.Words == nil {
		snap.Words = make(map[string]models.WordRecord)
	}
	if snap.Topics == nil {
		snap.Topics = make(map[string]models.TopicProgress)
	}
	if snap.StartDate.IsZero() {
		snap.StartDate = today
	}

	snap.Words[rec.Key()] = rec
	snap.Topics[rec.TopicID] = RecomputeTopic(snap.Topics[rec.TopicID], TopicRecords(snap, rec.TopicID), today)
	OnStudyActivity(&snap.Streak, today)
}

// Derive recounts the record-derived fields of every topic that has word
// records, without touching dates. Topics without records (for example legacy
// count-only entries) keep their stored counts.
func Derive(snap *models.AccountSnapshot) {
	if snap.Topics == nil {
		snap.Topics = make(map[string]models.TopicProgress)
	}
	byTopic := make(map[string][]models.WordRecord)
	for _, rec := range snap.Words {
		byTopic[rec.TopicID] = append(byTopic[rec.TopicID], rec)
	}
	for topicID, records := range byTopic {
		p := snap.Topics[topicID]
		c := countWords(records)
		p.WordsStudied = c.studied
		p.WordsLearned = c.learned
		p.AverageMastery = c.averageMastery
		snap.Topics[topicID] = p
	}
}

// TotalWordsLearned sums the learned words of every topic
func TotalWordsLearned(topics map[string]models.TopicProgress) int {
	total := 0
	for _, p := range topics {
		total += p.WordsLearned
	}
	return total
}

// Account returns the account-level summary of snap
func Account(snap *models.AccountSnapshot) models.AccountProgress {
	history := make([]models.QuizRecord, len(snap.QuizHistory))
	copy(history, snap.QuizHistory)
	return models.AccountProgress{
		TotalWordsLearned: TotalWordsLearned(snap.Topics),
		CurrentStreak:     snap.CurrentStreak,
		LongestStreak:     snap.LongestStreak,
		TotalDaysStudied:  snap.TotalDaysStudied,
		LastStudyStr:      snap.LastStudyStr,
		AverageScore:      snap.AverageScore,
		TotalQuizzes:      snap.TotalQuizzes,
		QuizHistory:       history,
	}
}

// LearnedWords returns the ids of the learned words of a topic, ordered by key
func LearnedWords(snap *models.AccountSnapshot, topicID string) []string {
	var ids []string
	for _, rec := range TopicRecords(snap, topicID) {
		if spaced_repetition.IsLearned(rec) {
			ids = append(ids, rec.WordID)
		}
	}
	return ids
}
