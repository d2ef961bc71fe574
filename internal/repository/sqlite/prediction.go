package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/sakif/ability-api/internal/apperror"
	"github.com/sakif/ability-api/internal/model"
	"github.com/sakif/ability-api/internal/repository"
)

var _ repository.PredictionRepository = (*DB)(nil)

// AppendPrediction inserts one prediction and sets p.ID.
func (db *DB) AppendPrediction(ctx context.Context, p *model.Prediction) error {
	p.CreatedAt = time.Now().UTC()

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO predictions (firebase_uid, predicted_values, created_at)
		 VALUES (?, ?, ?)`,
		p.FirebaseUID,
		p.PredictedValues,
		p.CreatedAt,
	)
	if err != nil {
		return apperror.Store("saving prediction", fmt.Errorf("sqlite: inserting prediction for %s: %w", p.FirebaseUID, err))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return apperror.Store("saving prediction", fmt.Errorf("sqlite: reading prediction id: %w", err))
	}
	p.ID = id
	return nil
}

// ListPredictionsByUID returns every prediction for uid in insertion order.
func (db *DB) ListPredictionsByUID(ctx context.Context, uid string) ([]model.Prediction, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, firebase_uid, predicted_values
		 FROM predictions
		 WHERE firebase_uid = ?
		 ORDER BY id`,
		uid,
	)
	if err != nil {
		return nil, apperror.Store("listing predictions", fmt.Errorf("sqlite: listing predictions for %s: %w", uid, err))
	}
	defer rows.Close()

	predictions := make([]model.Prediction, 0)
	for rows.Next() {
		var p model.Prediction
		if err := rows.Scan(&p.ID, &p.FirebaseUID, &p.PredictedValues); err != nil {
			return nil, apperror.Store("listing predictions", fmt.Errorf("sqlite: scanning prediction row: %w", err))
		}
		predictions = append(predictions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Store("listing predictions", fmt.Errorf("sqlite: iterating predictions: %w", err))
	}

	return predictions, nil
}
