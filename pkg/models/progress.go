package models

// MaxStudyDays is the number of distinct study days kept per topic
const MaxStudyDays = 30

// MaxQuizHistory is the number of quiz results kept per account
const MaxQuizHistory = 100

// MaxStudySessions is the number of study sessions kept per account
const MaxStudySessions = 200

// TopicProgress summarizes one account's progress on one topic.
// Word counts are derived from the word records; quiz fields accumulate.
type TopicProgress struct {
	WordsLearned     int     `json:"wordsLearned"`
	WordsStudied     int     `json:"wordsStudied"`
	AverageMastery   float64 `json:"averageMastery"`
	QuizzesTaken     int     `json:"quizzesTaken"`
	BestQuizScore    int     `json:"bestQuizScore"`
	TotalQuizScore   int     `json:"totalQuizScore"`
	AverageQuizScore int     `json:"averageQuizScore"`
	StudyDays        []Date  `json:"studyDays"`
	FirstStudied     Date    `json:"firstStudied,omitempty"`
	LastStudied      Date    `json:"lastStudied,omitempty"`
	LastQuizDate     Date    `json:"lastQuizDate,omitempty"`
}

// Clone returns a copy that shares no memory with p
func (p TopicProgress) Clone() TopicProgress {
	if p.StudyDays != nil {
		days := make([]Date, len(p.StudyDays))
		copy(days, p.StudyDays)
		p.StudyDays = days
	}
	return p
}

// Streak holds the consecutive-study-day counters of an account
type Streak struct {
	CurrentStreak    int  `json:"currentStreak"`
	LongestStreak    int  `json:"longestStreak"`
	TotalDaysStudied int  `json:"totalDaysStudied"`
	LastStudyStr     Date `json:"lastStudyStr,omitempty"`
}

// QuizRecord is one finished quiz
type QuizRecord struct {
	ID             string   `json:"id"`
	TopicID        string   `json:"topicId"`
	Date           string   `json:"date"` // RFC3339 timestamp
	DateStr        Date     `json:"dateStr"`
	Score          int      `json:"score"`
	TotalQuestions int      `json:"totalQuestions"`
	Percentage     int      `json:"percentage"`
	WrongWords     []string `json:"wrongWords"`
}

// StudySession logs one stretch of study in a given mode
type StudySession struct {
	ID           string `json:"id"`
	TopicID      string `json:"topicId"`
	Mode         string `json:"mode"` // flashcard, quiz, story, library, review
	WordsStudied int    `json:"wordsStudied"`
	Duration     int    `json:"duration,omitempty"` // seconds
	Timestamp    string `json:"timestamp"`
	Date         Date   `json:"date"`
}

// AccountProgress is the account-level summary shown to the user.
// It is always derived from an AccountSnapshot, never stored.
type AccountProgress struct {
	TotalWordsLearned int          `json:"totalWordsLearned"`
	CurrentStreak     int          `json:"currentStreak"`
	LongestStreak     int          `json:"longestStreak"`
	TotalDaysStudied  int          `json:"totalDaysStudied"`
	LastStudyStr      Date         `json:"lastStudyStr,omitempty"`
	AverageScore      int          `json:"averageScore"`
	TotalQuizzes      int          `json:"totalQuizzes"`
	QuizHistory       []QuizRecord `json:"quizHistory"`
}
