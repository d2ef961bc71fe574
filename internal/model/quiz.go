package model

import "time"

// QuestionsPerQuiz is the fixed number of question ids stored per attempt.
const QuestionsPerQuiz = 5

// OptionsDelimiter joins a question's options into one stored string, so no
// option may contain it.
const OptionsDelimiter = "|"

// QuizResult is one quiz attempt. Rows are append-only.
type QuizResult struct {
	ID            int64
	FirebaseUID   string
	QuizID        int64
	QuestionIDs   [QuestionsPerQuiz]int64
	AverageResult int
	CreatedAt     time.Time
}

// Question is one row of the read-only question bank.
type Question struct {
	ID         int64    `json:"id"`
	QuizID     int64    `json:"quiz_id"`
	QuestionID int64    `json:"question_id"`
	Options    []string `json:"options"`
}
