// Package storetest provides an in-memory persistence tier for tests.
package storetest

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/example/petwords/pkg/models"
)

// ErrUnavailable is returned while the tier is marked as failing
var ErrUnavailable = errors.New("storetest: tier unavailable")

// Memory keeps snapshots as JSON so every load goes through the real decoder
type Memory struct {
	mu      sync.Mutex
	data    map[string][]byte
	failing bool
	delay   time.Duration

	Loads int
	Saves int
}

// NewMemory returns an empty tier
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// SetFailing makes every call return ErrUnavailable
func (m *Memory) SetFailing(failing bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failing = failing
}

// SetDelay makes every call wait d or until the context is done
func (m *Memory) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// PutRaw stores a raw JSON payload, for seeding legacy or corrupt data
func (m *Memory) PutRaw(accountID, payload string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[accountID] = []byte(payload)
}

// Stored decodes what is currently stored for accountID, or nil
func (m *Memory) Stored(accountID string) *models.AccountSnapshot {
	m.mu.Lock()
	raw, ok := m.data[accountID]
	m.mu.Unlock()
	if !ok {
		return nil
	}
	var snap models.AccountSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil
	}
	return &snap
}

// Accounts lists the stored account ids in order
func (m *Memory) Accounts(ctx context.Context) ([]string, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.data))
	for id := range m.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *Memory) wait(ctx context.Context) error {
	m.mu.Lock()
	failing, delay := m.failing, m.delay
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	if failing {
		return ErrUnavailable
	}
	return nil
}

func (m *Memory) Load(ctx context.Context, accountID string) (*models.AccountSnapshot, error) {
	m.mu.Lock()
	m.Loads++
	m.mu.Unlock()
	if err := m.wait(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	raw, ok := m.data[accountID]
	m.mu.Unlock()
	if !ok {
		return nil, nil
	}
	var snap models.AccountSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (m *Memory) Save(ctx context.Context, snap *models.AccountSnapshot) error {
	m.mu.Lock()
	m.Saves++
	m.mu.Unlock()
	if err := m.wait(ctx); err != nil {
		return err
	}

	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[snap.AccountID] = raw
	m.mu.Unlock()
	return nil
}
