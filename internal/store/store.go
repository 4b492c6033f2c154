// Package store keeps one account's word records in memory on top of two
// persistence tiers: an authoritative remote tier and a local tier that acts
// as fallback and write-through cache.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/example/petwords/internal/logger"
	"github.com/example/petwords/internal/progress"
	"github.com/example/petwords/internal/spaced_repetition"
	"github.com/example/petwords/pkg/models"
)

// ErrPersist is returned when a change could not be written to any tier
var ErrPersist = errors.New("failed to persist snapshot")

// DefaultRemoteTimeout bounds remote calls when no timeout is configured
const DefaultRemoteTimeout = 3 * time.Second

// Persistence loads and saves whole account snapshots.
// Load returns nil, nil when the account has no stored snapshot.
type Persistence interface {
	Load(ctx context.Context, accountID string) (*models.AccountSnapshot, error)
	Save(ctx context.Context, snap *models.AccountSnapshot) error
}

// WordRecordStore is the single writer for one account. It is not safe for
// concurrent use; callers give each session its own store.
type WordRecordStore struct {
	accountID string
	remote    Persistence
	local     Persistence
	timeout   time.Duration
	log       *logger.Logger

	snap *models.AccountSnapshot
}

// NewWordRecordStore creates a store for accountID. remote may be nil for a
// local-only setup. Nothing is loaded until FetchFresh, the first read or
// the first Update.
func NewWordRecordStore(accountID string, remote, local Persistence, timeout time.Duration, log *logger.Logger) *WordRecordStore {
	if timeout <= 0 {
		timeout = DefaultRemoteTimeout
	}
	if log == nil {
		log = logger.Nop()
	}
	return &WordRecordStore{
		accountID: accountID,
		remote:    remote,
		local:     local,
		timeout:   timeout,
		log:       log.With("account", accountID),
	}
}

// AccountID returns the account the store belongs to
func (s *WordRecordStore) AccountID() string {
	return s.accountID
}

// FetchFresh reloads the snapshot. The remote copy wins when the remote
// tier answers; otherwise the local copy is used. It reports whether the
// remote tier was configured but unreachable. Failures never leave the store
// without data: the previous in-memory snapshot, or an empty one, is kept.
func (s *WordRecordStore) FetchFresh(ctx context.Context) (degraded bool) {
	localSnap, err := s.local.Load(ctx, s.accountID)
	if err != nil {
		s.log.Warn("local load failed", "error", err)
		localSnap = nil
	}

	chosen := localSnap
	fromRemote := false
	if s.remote != nil {
		rctx, cancel := context.WithTimeout(ctx, s.timeout)
		remoteSnap, err := s.remote.Load(rctx, s.accountID)
		cancel()
		switch {
		case err != nil:
			degraded = true
			s.log.Warn("remote load failed, using local data", "error", err)
		case remoteSnap != nil:
			chosen = remoteSnap
			fromRemote = true
		}
	}

	if chosen == nil {
		if s.snap != nil {
			return degraded
		}
		chosen = models.NewAccountSnapshot(s.accountID)
	}
	s.snap = s.prepare(chosen)

	switch {
	case fromRemote:
		if err := s.local.Save(ctx, s.snap); err != nil {
			s.log.Warn("local cache write failed", "error", err)
		}
	case s.remote != nil && !degraded && localSnap != nil:
		// Remote answered but has nothing yet; seed it from local.
		if err := s.saveRemote(ctx, s.snap); err != nil {
			degraded = true
			s.log.Warn("remote seed failed", "error", err)
		}
	}
	return degraded
}

// prepare repairs corrupt records and recounts derived progress
func (s *WordRecordStore) prepare(snap *models.AccountSnapshot) *models.AccountSnapshot {
	out := snap.Clone()
	out.AccountID = s.accountID
	out.Words = make(map[string]models.WordRecord, len(snap.Words))

	// Stored keys are rebuilt from the record ids; sorted so that
	// duplicates resolve the same way on every load.
	storedKeys := make([]string, 0, len(snap.Words))
	for key := range snap.Words {
		storedKeys = append(storedKeys, key)
	}
	sort.Strings(storedKeys)

	for _, key := range storedKeys {
		rec := snap.Words[key]
		if rec.TopicID == "" || rec.WordID == "" {
			s.log.Warn("dropping record without topic or word id", "key", key)
			continue
		}
		fixed, issues := spaced_repetition.Heal(rec)
		if len(issues) > 0 {
			s.log.Warn("healed corrupt record", "key", fixed.Key(), "issues", issues)
		}
		if prev, ok := out.Words[fixed.Key()]; ok {
			s.log.Warn("duplicate record for word", "key", fixed.Key(), "storedKey", key)
			if !newer(fixed, prev) {
				continue
			}
		}
		out.Words[fixed.Key()] = fixed
	}
	progress.Derive(out)
	return out
}

// newer reports whether a carries more recent progress than b
func newer(a, b models.WordRecord) bool {
	if a.LastReviewed != b.LastReviewed {
		return a.LastReviewed.After(b.LastReviewed)
	}
	return a.ReviewCount > b.ReviewCount
}

// current loads on first use. Remote reads are bounded by the store timeout,
// so a background context cannot block.
func (s *WordRecordStore) current() *models.AccountSnapshot {
	if s.snap == nil {
		s.FetchFresh(context.Background())
	}
	return s.snap
}

// Get returns the record for a word, if one exists
func (s *WordRecordStore) Get(topicID, wordID string) (models.WordRecord, bool) {
	rec, ok := s.current().Words[models.RecordKey(topicID, wordID)]
	if !ok {
		return models.WordRecord{}, false
	}
	return rec.Clone(), true
}

// Records returns every record, ordered by key
func (s *WordRecordStore) Records() []models.WordRecord {
	words := s.current().Words
	out := make([]models.WordRecord, 0, len(words))
	for _, rec := range words {
		out = append(out, rec.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// TopicRecords returns the records of one topic, ordered by key
func (s *WordRecordStore) TopicRecords(topicID string) []models.WordRecord {
	records := progress.TopicRecords(s.current(), topicID)
	for i := range records {
		records[i] = records[i].Clone()
	}
	return records
}

// Snapshot returns a copy of the whole account state
func (s *WordRecordStore) Snapshot() *models.AccountSnapshot {
	return s.current().Clone()
}

// Put upserts rec, recomputes the topic progress and streak, and persists
func (s *WordRecordStore) Put(ctx context.Context, rec models.WordRecord, today models.Date) (bool, error) {
	return s.Update(ctx, today, func(snap *models.AccountSnapshot) error {
		progress.ApplyRecord(snap, rec, today)
		return nil
	})
}

// Update applies fn to a working copy of the snapshot and persists it.
// The in-memory state only changes once fn succeeds and at least one tier
// accepted the write. degraded reports a remote failure that fell back to
// the local tier.
func (s *WordRecordStore) Update(ctx context.Context, today models.Date, fn func(*models.AccountSnapshot) error) (degraded bool, err error) {
	if s.snap == nil {
		degraded = s.FetchFresh(ctx)
	}

	work := s.snap.Clone()
	if err := fn(work); err != nil {
		return degraded, err
	}
	if work.StartDate.IsZero() {
		work.StartDate = today
	}

	saveDegraded, err := s.persist(ctx, work)
	if err != nil {
		return true, err
	}
	s.snap = work
	return degraded || saveDegraded, nil
}

func (s *WordRecordStore) persist(ctx context.Context, snap *models.AccountSnapshot) (degraded bool, err error) {
	var remoteErr error
	if s.remote != nil {
		if remoteErr = s.saveRemote(ctx, snap); remoteErr != nil {
			s.log.Warn("remote save failed, keeping local copy", "error", remoteErr)
		}
	}

	localErr := s.local.Save(ctx, snap)
	if localErr != nil {
		s.log.Warn("local save failed", "error", localErr)
	}

	switch {
	case s.remote == nil && localErr != nil:
		return true, fmt.Errorf("%w: local: %v", ErrPersist, localErr)
	case remoteErr != nil && localErr != nil:
		return true, fmt.Errorf("%w: remote: %v; local: %v", ErrPersist, remoteErr, localErr)
	case remoteErr != nil:
		return true, nil
	}
	return false, nil
}

func (s *WordRecordStore) saveRemote(ctx context.Context, snap *models.AccountSnapshot) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.remote.Save(ctx, snap)
}
