package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// AccountSnapshot is the whole persisted learning state of one account.
// Both storage tiers load and save it as a single document.
type AccountSnapshot struct {
	AccountID   string `json:"accountId"`
	DisplayName string `json:"displayName,omitempty"`
	StartDate   Date   `json:"startDate,omitempty"`

	Words  map[string]WordRecord    `json:"wordLearning"`
	Topics map[string]TopicProgress `json:"topicProgress"`

	Streak

	QuizHistory   []QuizRecord   `json:"quizHistory"`
	TotalQuizzes  int            `json:"totalQuizzes"`
	AverageScore  int            `json:"averageScore"`
	StudySessions []StudySession `json:"studySessions"`
}

// NewAccountSnapshot returns an empty snapshot for accountID
func NewAccountSnapshot(accountID string) *AccountSnapshot {
	return &AccountSnapshot{
		AccountID: accountID,
		Words:     make(map[string]WordRecord),
		Topics:    make(map[string]TopicProgress),
	}
}

// Clone returns a deep copy of s
func (s *AccountSnapshot) Clone() *AccountSnapshot {
	if s == nil {
		return nil
	}
	c := *s
	c.Words = make(map[string]WordRecord, len(s.Words))
	for k, r := range s.Words {
		c.Words[k] = r.Clone()
	}
	c.Topics = make(map[string]TopicProgress, len(s.Topics))
	for k, p := range s.Topics {
		c.Topics[k] = p.Clone()
	}
	if s.QuizHistory != nil {
		c.QuizHistory = make([]QuizRecord, len(s.QuizHistory))
		for i, q := range s.QuizHistory {
			if q.WrongWords != nil {
				q.WrongWords = append([]string(nil), q.WrongWords...)
			}
			c.QuizHistory[i] = q
		}
	}
	if s.StudySessions != nil {
		c.StudySessions = append([]StudySession(nil), s.StudySessions...)
	}
	return &c
}

// TopicProgressEntry is a stored topic progress value. Older clients stored
// just the learned-word count as a bare number; newer ones store the full object.
// Exactly one of LegacyCount and Detailed is set after decoding.
type TopicProgressEntry struct {
	LegacyCount *int
	Detailed    *TopicProgress
}

// UnmarshalJSON accepts either a number or a TopicProgress object
func (e *TopicProgressEntry) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*e = TopicProgressEntry{Detailed: &TopicProgress{}}
		return nil
	}
	if data[0] == '{' {
		var p TopicProgress
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("failed to decode topic progress: %w", err)
		}
		*e = TopicProgressEntry{Detailed: &p}
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("failed to decode legacy topic progress: %w", err)
	}
	count := int(n)
	*e = TopicProgressEntry{LegacyCount: &count}
	return nil
}

// Resolve converts the entry to the canonical TopicProgress shape
func (e TopicProgressEntry) Resolve() TopicProgress {
	switch {
	case e.Detailed != nil:
		return *e.Detailed
	case e.LegacyCount != nil:
		return TopicProgress{WordsLearned: *e.LegacyCount}
	default:
		return TopicProgress{}
	}
}

// UnmarshalJSON decodes a snapshot and resolves legacy topic progress values
func (s *AccountSnapshot) UnmarshalJSON(data []byte) error {
	type plain AccountSnapshot
	var wire struct {
		plain
		Topics map[string]TopicProgressEntry `json:"topicProgress"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*s = AccountSnapshot(wire.plain)
	s.Topics = make(map[string]TopicProgress, len(wire.Topics))
	for id, entry := range wire.Topics {
		s.Topics[id] = entry.Resolve()
	}
	if s.Words == nil {
		s.Words = make(map[string]WordRecord)
	}
	return nil
}
