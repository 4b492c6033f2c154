// Package vocabulary holds the static word lists that learners study.
package vocabulary

import (
	"sort"
	"strings"
	"unicode"

	"github.com/example/petwords/pkg/models"
)

// Catalog is an in-memory, read-only set of topics and their words
type Catalog struct {
	topics map[string]models.Topic
	words  map[string][]models.Word
}

// NewCatalog returns an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{
		topics: make(map[string]models.Topic),
		words:  make(map[string][]models.Word),
	}
}

// Add inserts a word, creating its topic on first use. A word whose id is
// already present in the topic replaces the earlier entry.
func (c *Catalog) Add(topicName string, w models.Word) models.Word {
	topicID := w.TopicID
	if topicID == "" {
		topicID = Slug(topicName)
	}
	if topicName == "" {
		topicName = topicID
	}
	w.TopicID = topicID
	if w.ID == "" {
		w.ID = Slug(w.English)
	}

	t, ok := c.topics[topicID]
	if !ok {
		t = models.Topic{ID: topicID, Name: topicName}
	}

	words := c.words[topicID]
	for i := range words {
		if words[i].ID == w.ID {
			words[i] = w
			return w
		}
	}
	c.words[topicID] = append(words, w)
	t.WordCount = len(c.words[topicID])
	c.topics[topicID] = t
	return w
}

// Topics returns every topic ordered by id
func (c *Catalog) Topics() []models.Topic {
	out := make([]models.Topic, 0, len(c.topics))
	for _, t := range c.topics {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Topic returns one topic
func (c *Catalog) Topic(topicID string) (models.Topic, bool) {
	t, ok := c.topics[topicID]
	return t, ok
}

// WordsForTopic returns the words of a topic in import order.
// ok is false when the topic does not exist.
func (c *Catalog) WordsForTopic(topicID string) ([]models.Word, bool) {
	words, ok := c.words[topicID]
	if !ok {
		return nil, false
	}
	return append([]models.Word(nil), words...), true
}

// Word looks up a single word
func (c *Catalog) Word(topicID, wordID string) (models.Word, bool) {
	for _, w := range c.words[topicID] {
		if w.ID == wordID {
			return w, true
		}
	}
	return models.Word{}, false
}

// Search returns words whose English text contains query (case-insensitive)
// or whose Chinese text contains it, ordered by topic then import order.
func (c *Catalog) Search(query string) []models.Word {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	lower := strings.ToLower(query)

	var out []models.Word
	for _, t := range c.Topics() {
		for _, w := range c.words[t.ID] {
			if strings.Contains(strings.ToLower(w.English), lower) || strings.Contains(w.Chinese, query) {
				out = append(out, w)
			}
		}
	}
	return out
}

// Slug turns free text into an id: lower case, runs of spaces and
// punctuation become a single underscore.
func Slug(s string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	return b.String()
}
