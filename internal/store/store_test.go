package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/petwords/internal/logger"
	"github.com/example/petwords/internal/spaced_repetition"
	"github.com/example/petwords/internal/store/storetest"
	"github.com/example/petwords/pkg/models"
)

const today = models.Date("2024-06-01")

func newStore(remote, local *storetest.Memory) *WordRecordStore {
	var r Persistence
	if remote != nil {
		r = remote
	}
	return NewWordRecordStore("alice", r, local, 50*time.Millisecond, logger.Nop())
}

func seeded(streak int) *models.AccountSnapshot {
	snap := models.NewAccountSnapshot("alice")
	rec := spaced_repetition.NewRecord("animals", "cat", "2024-05-01")
	rec = spaced_repetition.ApplyOutcome(rec, true, "2024-05-01")
	snap.Words[rec.Key()] = rec
	snap.CurrentStreak = streak
	return snap
}

func saveTo(t *testing.T, m *storetest.Memory, snap *models.AccountSnapshot) {
	t.Helper()
	if err := m.Save(context.Background(), snap); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestFetchFreshEmpty(t *testing.T) {
	s := newStore(nil, storetest.NewMemory())

	if degraded := s.FetchFresh(context.Background()); degraded {
		t.Fatal("local-only store should not be degraded")
	}
	if len(s.Records()) != 0 {
		t.Fatalf("expected no records, got %d", len(s.Records()))
	}
	if s.Snapshot().AccountID != "alice" {
		t.Fatalf("unexpected account id %q", s.Snapshot().AccountID)
	}
}

func TestFetchFreshRemoteWins(t *testing.T) {
	remote, local := storetest.NewMemory(), storetest.NewMemory()
	saveTo(t, remote, seeded(5))
	saveTo(t, local, seeded(1))

	s := newStore(remote, local)
	if degraded := s.FetchFresh(context.Background()); degraded {
		t.Fatal("expected fresh load")
	}
	if got := s.Snapshot().CurrentStreak; got != 5 {
		t.Fatalf("expected remote streak 5, got %d", got)
	}
	if cached := local.Stored("alice"); cached == nil || cached.CurrentStreak != 5 {
		t.Fatalf("expected remote copy cached locally, got %+v", cached)
	}
	if p := s.Snapshot().Topics["animals"]; p.WordsStudied != 1 {
		t.Fatalf("expected derived topic progress, got %+v", p)
	}
}

func TestFetchFreshRemoteDown(t *testing.T) {
	remote, local := storetest.NewMemory(), storetest.NewMemory()
	saveTo(t, local, seeded(2))
	remote.SetFailing(true)

	s := newStore(remote, local)
	if degraded := s.FetchFresh(context.Background()); !degraded {
		t.Fatal("expected degraded load")
	}
	if got := s.Snapshot().CurrentStreak; got != 2 {
		t.Fatalf("expected local streak 2, got %d", got)
	}
}

func TestFetchFreshRemoteTimeout(t *testing.T) {
	remote, local := storetest.NewMemory(), storetest.NewMemory()
	saveTo(t, local, seeded(3))
	remote.SetDelay(time.Second)

	s := newStore(remote, local)
	start := time.Now()
	if degraded := s.FetchFresh(context.Background()); !degraded {
		t.Fatal("expected degraded load on timeout")
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("remote call was not bounded, took %s", elapsed)
	}
	if got := s.Snapshot().CurrentStreak; got != 3 {
		t.Fatalf("expected local streak 3, got %d", got)
	}
}

func TestFetchFreshSeedsEmptyRemote(t *testing.T) {
	remote, local := storetest.NewMemory(), storetest.NewMemory()
	saveTo(t, local, seeded(4))

	s := newStore(remote, local)
	if degraded := s.FetchFresh(context.Background()); degraded {
		t.Fatal("expected fresh load")
	}
	if got := s.Snapshot().CurrentStreak; got != 4 {
		t.Fatalf("expected local data kept, got streak %d", got)
	}
	if pushed := remote.Stored("alice"); pushed == nil || pushed.CurrentStreak != 4 {
		t.Fatalf("expected local data pushed to remote, got %+v", pushed)
	}
}

func TestFetchFreshKeepsMemoryWhenTiersFail(t *testing.T) {
	remote, local := storetest.NewMemory(), storetest.NewMemory()
	saveTo(t, remote, seeded(6))
	s := newStore(remote, local)
	s.FetchFresh(context.Background())

	remote.SetFailing(true)
	local.SetFailing(true)
	if degraded := s.FetchFresh(context.Background()); !degraded {
		t.Fatal("expected degraded refresh")
	}
	if got := s.Snapshot().CurrentStreak; got != 6 {
		t.Fatalf("expected in-memory data kept, got streak %d", got)
	}
}

func TestHealOnLoad(t *testing.T) {
	local := storetest.NewMemory()
	local.PutRaw("alice", `{
		"wordLearning": {
			"animals_cat": {"topicId":"animals","wordId":"cat","masteryLevel":9,"correctCount":2,"incorrectCount":0,"reviewCount":7,"lastReviewed":"2024-05-01"},
			"broken": {"topicId":"","wordId":"dog","masteryLevel":1}
		},
		"topicProgress": {"animals": 3, "food": 4}
	}`)

	s := newStore(nil, local)
	s.FetchFresh(context.Background())

	rec, ok := s.Get("animals", "cat")
	if !ok {
		t.Fatal("expected healed record")
	}
	if rec.MasteryLevel != models.MasteryPermanent {
		t.Fatalf("expected level clamped to 5, got %d", rec.MasteryLevel)
	}
	if rec.ReviewCount != 2 {
		t.Fatalf("expected review count 2, got %d", rec.ReviewCount)
	}
	if rec.NextReview != "2024-05-31" {
		t.Fatalf("expected next review recomputed, got %s", rec.NextReview)
	}
	if len(s.Records()) != 1 {
		t.Fatalf("expected broken record dropped, got %d records", len(s.Records()))
	}

	topics := s.Snapshot().Topics
	if topics["animals"].WordsLearned != 1 {
		t.Fatalf("expected animals recounted to 1 learned, got %+v", topics["animals"])
	}
	if topics["food"].WordsLearned != 4 {
		t.Fatalf("expected legacy food count kept, got %+v", topics["food"])
	}
}

func TestPutPersistsToBothTiers(t *testing.T) {
	remote, local := storetest.NewMemory(), storetest.NewMemory()
	s := newStore(remote, local)
	s.FetchFresh(context.Background())

	rec := spaced_repetition.ApplyOutcome(spaced_repetition.NewRecord("food", "apple", today), true, today)
	degraded, err := s.Put(context.Background(), rec, today)
	if err != nil || degraded {
		t.Fatalf("put: degraded=%v err=%v", degraded, err)
	}

	for name, tier := range map[string]*storetest.Memory{"remote": remote, "local": local} {
		stored := tier.Stored("alice")
		if stored == nil {
			t.Fatalf("%s: nothing stored", name)
		}
		if _, ok := stored.Words["food/apple"]; !ok {
			t.Fatalf("%s: record missing", name)
		}
		if stored.CurrentStreak != 1 || stored.LastStudyStr != today {
			t.Fatalf("%s: streak not updated: %+v", name, stored.Streak)
		}
		if stored.StartDate != today {
			t.Fatalf("%s: start date not set: %q", name, stored.StartDate)
		}
	}
	if p := s.Snapshot().Topics["food"]; p.WordsStudied != 1 || p.LastStudied != today {
		t.Fatalf("unexpected topic progress %+v", p)
	}
}

func TestPutDegradedWhenRemoteDown(t *testing.T) {
	remote, local := storetest.NewMemory(), storetest.NewMemory()
	s := newStore(remote, local)
	s.FetchFresh(context.Background())
	remote.SetFailing(true)

	rec := spaced_repetition.NewRecord("food", "apple", today)
	degraded, err := s.Put(context.Background(), rec, today)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if !degraded {
		t.Fatal("expected degraded write")
	}
	if _, ok := s.Get("food", "apple"); !ok {
		t.Fatal("expected record in memory")
	}
	if local.Stored("alice") == nil {
		t.Fatal("expected local copy")
	}
}

func TestPutBothTiersFail(t *testing.T) {
	remote, local := storetest.NewMemory(), storetest.NewMemory()
	s := newStore(remote, local)
	s.FetchFresh(context.Background())
	remote.SetFailing(true)
	local.SetFailing(true)

	_, err := s.Put(context.Background(), spaced_repetition.NewRecord("food", "apple", today), today)
	if !errors.Is(err, ErrPersist) {
		t.Fatalf("expected ErrPersist, got %v", err)
	}
	if _, ok := s.Get("food", "apple"); ok {
		t.Fatal("failed write must not change memory")
	}
}

func TestUpdateFnErrorLeavesStateUntouched(t *testing.T) {
	local := storetest.NewMemory()
	s := newStore(nil, local)
	s.FetchFresh(context.Background())
	saves := local.Saves

	boom := errors.New("boom")
	_, err := s.Update(context.Background(), today, func(snap *models.AccountSnapshot) error {
		snap.CurrentStreak = 99
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}
	if s.Snapshot().CurrentStreak != 0 {
		t.Fatal("working copy leaked into store")
	}
	if local.Saves != saves {
		t.Fatal("nothing should be saved when fn fails")
	}
}

func TestUpdateLoadsLazily(t *testing.T) {
	local := storetest.NewMemory()
	saveTo(t, local, seeded(2))
	s := newStore(nil, local)

	_, err := s.Update(context.Background(), today, func(snap *models.AccountSnapshot) error {
		snap.DisplayName = "Alice"
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	got := local.Stored("alice")
	if got.DisplayName != "Alice" || got.CurrentStreak != 2 {
		t.Fatalf("expected stored data merged with update, got %+v", got)
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	local := storetest.NewMemory()
	saveTo(t, local, seeded(1))
	s := newStore(nil, local)
	s.FetchFresh(context.Background())

	rec, _ := s.Get("animals", "cat")
	rec.History[0].Correct = false
	rec.MasteryLevel = models.MasteryPermanent

	again, _ := s.Get("animals", "cat")
	if !again.History[0].Correct || again.MasteryLevel == models.MasteryPermanent {
		t.Fatal("Get exposed internal state")
	}

	topic := s.TopicRecords("animals")
	if len(topic) != 1 {
		t.Fatalf("expected 1 topic record, got %d", len(topic))
	}
	topic[0].History = nil
	if again, _ := s.Get("animals", "cat"); len(again.History) != 1 {
		t.Fatal("TopicRecords exposed internal state")
	}
}

func TestPutKeepsOverlappingIDsApart(t *testing.T) {
	local := storetest.NewMemory()
	s := newStore(nil, local)
	ctx := context.Background()

	first := spaced_repetition.ApplyOutcome(spaced_repetition.NewRecord("daily_life", "ice", today), true, today)
	second := spaced_repetition.ApplyOutcome(spaced_repetition.NewRecord("daily", "life_ice", today), false, today)
	if _, err := s.Put(ctx, first, today); err != nil {
		t.Fatalf("put first: %v", err)
	}
	if _, err := s.Put(ctx, second, today); err != nil {
		t.Fatalf("put second: %v", err)
	}

	if n := len(s.Records()); n != 2 {
		t.Fatalf("expected 2 records, got %d", n)
	}
	got, ok := s.Get("daily_life", "ice")
	if !ok || got.TopicID != "daily_life" || got.MasteryLevel != models.MasteryFamiliar {
		t.Fatalf("first record overwritten: %+v ok=%v", got, ok)
	}
	got, ok = s.Get("daily", "life_ice")
	if !ok || got.TopicID != "daily" || got.MasteryLevel != models.MasteryNew {
		t.Fatalf("second record wrong: %+v ok=%v", got, ok)
	}

	reloaded := newStore(nil, local)
	reloaded.FetchFresh(ctx)
	topics := reloaded.Snapshot().Topics
	if topics["daily_life"].WordsLearned != 1 || topics["daily"].WordsStudied != 1 || topics["daily"].WordsLearned != 0 {
		t.Fatalf("unexpected topic progress after reload: %+v", topics)
	}
}

func TestLoadMergesDuplicateKeys(t *testing.T) {
	local := storetest.NewMemory()
	local.PutRaw("alice", `{
		"wordLearning": {
			"animals_cat": {"topicId":"animals","wordId":"cat","masteryLevel":2,"correctCount":1,"reviewCount":1,"lastReviewed":"2024-05-01"},
			"animals/cat": {"topicId":"animals","wordId":"cat","masteryLevel":3,"correctCount":2,"reviewCount":2,"lastReviewed":"2024-05-05"}
		}
	}`)

	s := newStore(nil, local)
	s.FetchFresh(context.Background())

	if n := len(s.Records()); n != 1 {
		t.Fatalf("expected duplicates merged into 1 record, got %d", n)
	}
	rec, _ := s.Get("animals", "cat")
	if rec.LastReviewed != "2024-05-05" || rec.MasteryLevel != models.MasteryConfident {
		t.Fatalf("expected the most recently reviewed copy, got %+v", rec)
	}
}

func TestReadsLoadLazily(t *testing.T) {
	local := storetest.NewMemory()
	saveTo(t, local, seeded(2))

	s := newStore(nil, local)
	if _, ok := s.Get("animals", "cat"); !ok {
		t.Fatal("expected first read to load stored data")
	}
}
