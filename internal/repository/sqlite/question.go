package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/sakif/ability-api/internal/apperror"
	"github.com/sakif/ability-api/internal/model"
	"github.com/sakif/ability-api/internal/repository"
)

var _ repository.QuestionRepository = (*DB)(nil)

// InsertQuestions loads question bank rows in one transaction: either every
// row is stored or none is. A duplicate id fails the whole batch.
func (db *DB) InsertQuestions(ctx context.Context, questions []model.Question) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return apperror.Store("loading questions", fmt.Errorf("sqlite: beginning transaction: %w", err))
	}
	// Rollback after a successful Commit is a no-op.
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO questions (id, quiz_id, question_id, options) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return apperror.Store("loading questions", fmt.Errorf("sqlite: preparing question insert: %w", err))
	}
	defer stmt.Close()

	for _, q := range questions {
		if _, err := stmt.ExecContext(ctx, q.ID, q.QuizID, q.QuestionID, joinOptions(q.Options)); err != nil {
			return apperror.Store("loading questions", fmt.Errorf("sqlite: inserting question %d: %w", q.ID, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return apperror.Store("loading questions", fmt.Errorf("sqlite: committing questions: %w", err))
	}
	return nil
}

// ListQuestionsByQuiz returns the questions of one quiz ordered by question_id.
func (db *DB) ListQuestionsByQuiz(ctx context.Context, quizID int64) ([]model.Question, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, quiz_id, question_id, options
		 FROM questions
		 WHERE quiz_id = ?
		 ORDER BY question_id, id`,
		quizID,
	)
	if err != nil {
		return nil, apperror.Store("listing questions", fmt.Errorf("sqlite: listing questions for quiz %d: %w", quizID, err))
	}
	defer rows.Close()

	questions := make([]model.Question, 0)
	for rows.Next() {
		var (
			q       model.Question
			options string
		)
		if err := rows.Scan(&q.ID, &q.QuizID, &q.QuestionID, &options); err != nil {
			return nil, apperror.Store("listing questions", fmt.Errorf("sqlite: scanning question row: %w", err))
		}
		q.Options = splitOptions(options)
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Store("listing questions", fmt.Errorf("sqlite: iterating questions: %w", err))
	}

	return questions, nil
}

func joinOptions(options []string) string {
	return strings.Join(options, model.OptionsDelimiter)
}

func splitOptions(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, model.OptionsDelimiter)
}

// CountQuestions returns the number of rows in the question bank.
func (db *DB) CountQuestions(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions`).Scan(&n); err != nil {
		return 0, apperror.Store("counting questions", fmt.Errorf("sqlite: counting questions: %w", err))
	}
	return n, nil
}
