package learning

import "github.com/example/petwords/internal/store"

// Session is one signed-in account. It owns the account's store, so the
// caller must not use one session from several goroutines at once.
type Session struct {
	AccountID string
	Store     *store.WordRecordStore
	// Degraded reports whether the last load or write fell back to local data
	Degraded bool
}

func (s *Session) check() error {
	if s == nil || s.AccountID == "" || s.Store == nil {
		return ErrNoIdentity
	}
	return nil
}
