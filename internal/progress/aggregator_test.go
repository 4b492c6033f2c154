package progress

import (
	"encoding/json"
	"fmt"
	"reflect"
	"testing"

	"github.com/example/petwords/internal/spaced_repetition"
	"github.com/example/petwords/pkg/models"
)

const today = models.Date("2024-05-10")

func record(topic, word string, level models.MasteryLevel) models.WordRecord {
	return models.WordRecord{
		TopicID:      topic,
		WordID:       word,
		MasteryLevel: level,
		FirstLearned: today,
		LastReviewed: today,
		NextReview:   spaced_repetition.NextReview(level, today),
	}
}

func TestRecomputeTopicCounts(t *testing.T) {
	records := []models.WordRecord{
		record("food", "apple", models.MasteryNew),
		record("food", "bread", models.MasteryFamiliar),
		record("food", "milk", models.MasteryPermanent),
	}
	prev := models.TopicProgress{QuizzesTaken: 2, BestQuizScore: 90}

	got := RecomputeTopic(prev, records, today)

	if got.WordsStudied != 3 || got.WordsLearned != 2 {
		t.Fatalf("unexpected counts: %+v", got)
	}
	if got.AverageMastery != 2.33 {
		t.Fatalf("expected average mastery 2.33, got %v", got.AverageMastery)
	}
	if got.QuizzesTaken != 2 || got.BestQuizScore != 90 {
		t.Fatalf("quiz aggregates not carried over: %+v", got)
	}
	if got.LastStudied != today || got.FirstStudied != today {
		t.Fatalf("unexpected study dates: %+v", got)
	}
	if len(got.StudyDays) != 1 || got.StudyDays[0] != today {
		t.Fatalf("expected today in study days, got %v", got.StudyDays)
	}
}

func TestRecomputeTopicStudyDaysCap(t *testing.T) {
	var prev models.TopicProgress
	start := models.Date("2024-01-01")
	for i := 0; i < 35; i++ {
		prev = RecomputeTopic(prev, nil, start.AddDays(i))
	}
	prev = RecomputeTopic(prev, nil, start.AddDays(34))

	if len(prev.StudyDays) != models.MaxStudyDays {
		t.Fatalf("expected %d study days, got %d", models.MaxStudyDays, len(prev.StudyDays))
	}
	if prev.StudyDays[0] != start.AddDays(5) {
		t.Fatalf("expected oldest days evicted, first is %s", prev.StudyDays[0])
	}
	if prev.FirstStudied != start {
		t.Fatalf("expected first studied %s, got %s", start, prev.FirstStudied)
	}
}

func TestApplyRecordUpdatesTopicAndStreak(t *testing.T) {
	snap := models.NewAccountSnapshot("alice")
	rec := spaced_repetition.ApplyOutcome(spaced_repetition.NewRecord("food", "apple", today), true, today)

	ApplyRecord(snap, rec, today)

	if got := snap.Topics["food"].WordsLearned; got != 1 {
		t.Fatalf("expected 1 learned word, got %d", got)
	}
	if snap.CurrentStreak != 1 || snap.TotalDaysStudied != 1 || snap.LastStudyStr != today {
		t.Fatalf("unexpected streak: %+v", snap.Streak)
	}
	if snap.StartDate != today {
		t.Fatalf("expected start date %s, got %s", today, snap.StartDate)
	}
}

func TestTotalWordsLearnedMatchesTopics(t *testing.T) {
	snap := models.NewAccountSnapshot("alice")
	levels := []models.MasteryLevel{0, 1, 2, 3, 4, 5, 2, 0}
	for i, level := range levels {
		topic := fmt.Sprintf("t%d", i%3)
		ApplyRecord(snap, record(topic, fmt.Sprintf("w%d", i), level), today)
	}

	sum := 0
	for _, p := range snap.Topics {
		sum += p.WordsLearned
	}
	if got := Account(snap).TotalWordsLearned; got != sum || got != 5 {
		t.Fatalf("expected total %d (5), got %d", sum, got)
	}
}

func TestDeriveKeepsLegacyTopics(t *testing.T) {
	snap := models.NewAccountSnapshot("alice")
	snap.Topics["legacy"] = models.TopicProgress{WordsLearned: 7}
	snap.Topics["food"] = models.TopicProgress{WordsLearned: 99, QuizzesTaken: 1}
	snap.Words["food/apple"] = record("food", "apple", models.MasteryFamiliar)

	Derive(snap)

	if snap.Topics["legacy"].WordsLearned != 7 {
		t.Fatalf("legacy count lost: %+v", snap.Topics["legacy"])
	}
	if snap.Topics["food"].WordsLearned != 1 || snap.Topics["food"].QuizzesTaken != 1 {
		t.Fatalf("food not recounted: %+v", snap.Topics["food"])
	}
	if Account(snap).TotalWordsLearned != 8 {
		t.Fatalf("expected 8 learned words, got %d", Account(snap).TotalWordsLearned)
	}
}

func TestSnapshotRoundTripPreservesProgress(t *testing.T) {
	snap := models.NewAccountSnapshot("alice")
	day := models.Date("2024-05-01")
	for i := 0; i < 6; i++ {
		rec, ok := snap.Words[models.RecordKey("food", "apple")]
		if !ok {
			rec = spaced_repetition.NewRecord("food", "apple", day)
		}
		ApplyRecord(snap, spaced_repetition.ApplyOutcome(rec, i != 3, day.AddDays(i)), day.AddDays(i))
		ApplyRecord(snap, spaced_repetition.ApplyOutcome(spaced_repetition.NewRecord("animals", fmt.Sprintf("w%d", i), day), i%2 == 0, day.AddDays(i)), day.AddDays(i))
	}
	q, err := NewQuizRecord("food", 4, 5, []string{"apple"}, mustTime(t, "2024-05-06T09:00:00Z"))
	if err != nil {
		t.Fatalf("new quiz: %v", err)
	}
	RecordQuiz(snap, q)
	Derive(snap)

	before := Account(snap)
	beforeTopics := snap.Topics

	raw, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded models.AccountSnapshot
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	Derive(&decoded)

	if after := Account(&decoded); !reflect.DeepEqual(before, after) {
		t.Fatalf("account progress changed:\nbefore %+v\nafter  %+v", before, after)
	}
	if !reflect.DeepEqual(beforeTopics, decoded.Topics) {
		t.Fatalf("topic progress changed:\nbefore %+v\nafter  %+v", beforeTopics, decoded.Topics)
	}
}

func TestLearnedWords(t *testing.T) {
	snap := models.NewAccountSnapshot("alice")
	snap.Words["food/bread"] = record("food", "bread", models.MasteryConfident)
	snap.Words["food/apple"] = record("food", "apple", models.MasteryFamiliar)
	snap.Words["food/milk"] = record("food", "milk", models.MasteryLearning)
	snap.Words["animals/cat"] = record("animals", "cat", models.MasteryPermanent)

	got := LearnedWords(snap, "food")

	if !reflect.DeepEqual(got, []string{"apple", "bread"}) {
		t.Fatalf("expected [apple bread], got %v", got)
	}
}
