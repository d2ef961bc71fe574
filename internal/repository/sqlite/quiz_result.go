package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/sakif/ability-api/internal/apperror"
	"github.com/sakif/ability-api/internal/model"
	"github.com/sakif/ability-api/internal/repository"
)

var _ repository.QuizResultRepository = (*DB)(nil)

// AppendQuizResult inserts one quiz attempt and sets result.ID from the
// autoincrement key.
func (db *DB) AppendQuizResult(ctx context.Context, result *model.QuizResult) error {
	result.CreatedAt = time.Now().UTC()

	q := result.QuestionIDs
	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO quiz_results
			(firebase_uid, quiz_id, question1_id, question2_id, question3_id,
			 question4_id, question5_id, average_result, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.FirebaseUID,
		result.QuizID,
		q[0], q[1], q[2], q[3], q[4],
		result.AverageResult,
		result.CreatedAt,
	)
	if err != nil {
		return apperror.Store("saving quiz result", fmt.Errorf("sqlite: inserting quiz result for %s: %w", result.FirebaseUID, err))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return apperror.Store("saving quiz result", fmt.Errorf("sqlite: reading quiz result id: %w", err))
	}
	result.ID = id
	return nil
}

// ListQuizResultsByUID returns every attempt for uid in insertion order.
// An unknown uid yields an empty, non-nil slice.
func (db *DB) ListQuizResultsByUID(ctx context.Context, uid string) ([]model.QuizResult, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, firebase_uid, quiz_id, question1_id, question2_id, question3_id,
		        question4_id, question5_id, average_result
		 FROM quiz_results
		 WHERE firebase_uid = ?
		 ORDER BY id`,
		uid,
	)
	if err != nil {
		return nil, apperror.Store("listing quiz results", fmt.Errorf("sqlite: listing quiz results for %s: %w", uid, err))
	}
	defer rows.Close()

	results := make([]model.QuizResult, 0)
	for rows.Next() {
		var r model.QuizResult
		if err := rows.Scan(
			&r.ID, &r.FirebaseUID, &r.QuizID,
			&r.QuestionIDs[0], &r.QuestionIDs[1], &r.QuestionIDs[2],
			&r.QuestionIDs[3], &r.QuestionIDs[4],
			&r.AverageResult,
		); err != nil {
			return nil, apperror.Store("listing quiz results", fmt.Errorf("sqlite: scanning quiz result row: %w", err))
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Store("listing quiz results", fmt.Errorf("sqlite: iterating quiz results: %w", err))
	}

	return results, nil
}
