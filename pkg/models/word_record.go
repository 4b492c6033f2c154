package models

import "strings"

// MasteryLevel classifies how firmly a word is retained, from 0 (NEW) to 5 (PERMANENT)
type MasteryLevel int

const (
	// MasteryNew is a word seen but never answered correctly
	MasteryNew MasteryLevel = 0
	// MasteryLearning is a word that is being relearned after a miss
	MasteryLearning MasteryLevel = 1
	// MasteryFamiliar is the first "learned" level
	MasteryFamiliar MasteryLevel = 2
	// MasteryConfident means one successful review after learning
	MasteryConfident MasteryLevel = 3
	// MasteryMastered means two successful reviews after learning
	MasteryMastered MasteryLevel = 4
	// MasteryPermanent is long-term maintenance
	MasteryPermanent MasteryLevel = 5
)

var masteryNames = [...]string{"NEW", "LEARNING", "FAMILIAR", "CONFIDENT", "MASTERED", "PERMANENT"}

// Valid reports whether the level is inside [MasteryNew, MasteryPermanent]
func (l MasteryLevel) Valid() bool {
	return l >= MasteryNew && l <= MasteryPermanent
}

func (l MasteryLevel) String() string {
	if !l.Valid() {
		return "INVALID"
	}
	return masteryNames[l]
}

// MaxHistory is the number of review entries kept per word
const MaxHistory = 20

// HistoryEntry is one review of a word
type HistoryEntry struct {
	Date         Date         `json:"date"`
	Correct      bool         `json:"correct"`
	MasteryLevel MasteryLevel `json:"masteryLevel"`
}

// WordRecord tracks one account's learning state for one word of one topic
type WordRecord struct {
	TopicID        string         `json:"topicId"`
	WordID         string         `json:"wordId"`
	MasteryLevel   MasteryLevel   `json:"masteryLevel"`
	FirstLearned   Date           `json:"firstLearned"`
	LastReviewed   Date           `json:"lastReviewed"`
	NextReview     Date           `json:"nextReview"`
	ReviewCount    int            `json:"reviewCount"`
	CorrectCount   int            `json:"correctCount"`
	IncorrectCount int            `json:"incorrectCount"`
	History        []HistoryEntry `json:"history"`
}

// RecordKeySeparator joins the topic and word parts of a record key
const RecordKeySeparator = "/"

var keyEscaper = strings.NewReplacer("%", "%25", "/", "%2F")

// RecordKey builds the map key of a word record as "topic/word". Both parts
// are escaped so distinct pairs never share a key.
func RecordKey(topicID, wordID string) string {
	return keyEscaper.Replace(topicID) + RecordKeySeparator + keyEscaper.Replace(wordID)
}

// Key returns the record's map key
func (r WordRecord) Key() string {
	return RecordKey(r.TopicID, r.WordID)
}

// Clone returns a copy that shares no memory with r
func (r WordRecord) Clone() WordRecord {
	if r.History != nil {
		h := make([]HistoryEntry, len(r.History))
		copy(h, r.History)
		r.History = h
	}
	return r
}
