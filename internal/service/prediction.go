package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/ability-api/internal/fuzzy"
	"github.com/sakif/ability-api/internal/model"
	"github.com/sakif/ability-api/internal/repository"
)

// Predictor is the loaded fuzzy model. *fuzzy.Predictor implements it.
type Predictor interface {
	Predict(samples map[string][]float64) (float64, error)
	Inputs() []fuzzy.Input
	Name() string
	Output() string
}

// ModelInfo describes the loaded model to clients.
type ModelInfo struct {
	Name   string        `json:"name"`
	Inputs []fuzzy.Input `json:"inputs"`
	Output string        `json:"output"`
}

// PredictionService runs the fuzzy model and keeps a log of its results.
type PredictionService struct {
	predictor Predictor
	repo      repository.PredictionRepository
	logger    *slog.Logger
}

func NewPredictionService(predictor Predictor, repo repository.PredictionRepository, logger *slog.Logger) *PredictionService {
	return &PredictionService{
		predictor: predictor,
		repo:      repo,
		logger:    logger,
	}
}

// Predict computes the ability percentage for uid and appends it to the
// prediction log. Nothing is stored when the model cannot produce a value.
func (s *PredictionService) Predict(ctx context.Context, uid string, samples map[string][]float64) (float64, error) {
	if err := requireUID(uid); err != nil {
		return 0, err
	}

	value, err := s.predictor.Predict(samples)
	if err != nil {
		s.logger.Warn("prediction failed",
			slog.String("uid", uid),
			slog.String("error", err.Error()),
		)
		return 0, err
	}

	record := &model.Prediction{FirebaseUID: uid, PredictedValues: value}
	if err := s.repo.AppendPrediction(ctx, record); err != nil {
		s.logger.Error("failed to store prediction",
			slog.String("uid", uid),
			slog.String("error", errorCause(err)),
		)
		return 0, fmt.Errorf("storing prediction: %w", err)
	}

	s.logger.Info("prediction stored",
		slog.String("uid", uid),
		slog.Int64("id", record.ID),
		slog.Float64("value", value),
	)
	return value, nil
}

// History lists every prediction for uid, oldest first.
func (s *PredictionService) History(ctx context.Context, uid string) ([]model.Prediction, error) {
	if err := requireUID(uid); err != nil {
		return nil, err
	}

	predictions, err := s.repo.ListPredictionsByUID(ctx, uid)
	if err != nil {
		s.logger.Error("failed to list predictions",
			slog.String("uid", uid),
			slog.String("error", errorCause(err)),
		)
		return nil, fmt.Errorf("listing predictions: %w", err)
	}
	return predictions, nil
}

// Inputs returns the request fields the loaded model expects.
func (s *PredictionService) Inputs() []fuzzy.Input {
	return s.predictor.Inputs()
}

func (s *PredictionService) Model() ModelInfo {
	return ModelInfo{
		Name:   s.predictor.Name(),
		Inputs: s.predictor.Inputs(),
		Output: s.predictor.Output(),
	}
}
