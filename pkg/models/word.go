package models

// Word is one vocabulary entry of a topic. Vocabulary is static, read-only content.
type Word struct {
	ID             string `json:"id"`
	TopicID        string `json:"topicId"`
	English        string `json:"english"`
	Chinese        string `json:"chinese"`
	Example        string `json:"example"`
	ExampleChinese string `json:"exampleChinese"`
}

// Topic groups words of one theme
type Topic struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	WordCount int    `json:"wordCount"`
}
