package spaced_repetition

import (
	"sort"

	"github.com/example/petwords/pkg/models"
)

// IsDue reports whether rec should be reviewed on today. A word is due from
// the start of its review day.
func IsDue(rec models.WordRecord, today models.Date) bool {
	return rec.NextReview <= today
}

// DaysSinceReview returns how many days ago the word was last reviewed,
// falling back to the first-learned date for records never reviewed
func DaysSinceReview(rec models.WordRecord, today models.Date) int {
	last := rec.LastReviewed
	if last.IsZero() {
		last = rec.FirstLearned
	}
	if last.IsZero() {
		return 0
	}
	return today.DaysSince(last)
}

// DueWords returns the records due on today, optionally restricted to one topic
// (an empty topicID selects every topic).
//
// Less mastered words come first. Within one mastery level, words reviewed
// longer ago come first. Remaining ties are ordered by key so the result does
// not depend on the input order.
func DueWords(records []models.WordRecord, today models.Date, topicID string) []models.WordRecord {
	type candidate struct {
		rec   models.WordRecord
		since int
	}

	var due []candidate
	for _, rec := range records {
		if topicID != "" && rec.TopicID != topicID {
			continue
		}
		if !IsDue(rec, today) {
			continue
		}
		due = append(due, candidate{rec: rec, since: DaysSinceReview(rec, today)})
	}

	sort.SliceStable(due, func(i, j int) bool {
		if due[i].rec.MasteryLevel != due[j].rec.MasteryLevel {
			return due[i].rec.MasteryLevel < due[j].rec.MasteryLevel
		}
		if due[i].since != due[j].since {
			return due[i].since > due[j].since
		}
		return due[i].rec.Key() < due[j].rec.Key()
	})

	result := make([]models.WordRecord, len(due))
	for i, c := range due {
		result[i] = c.rec
	}
	return result
}

// CountDue returns the number of records due on today across all topics
func CountDue(records []models.WordRecord, today models.Date) int {
	n := 0
	for _, rec := range records {
		if IsDue(rec, today) {
			n++
		}
	}
	return n
}
