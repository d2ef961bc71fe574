package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/ability-api/internal/apperror"
	"github.com/sakif/ability-api/internal/fuzzy"
	"github.com/sakif/ability-api/internal/model"
	"github.com/sakif/ability-api/internal/service"
)

type PredictionService interface {
	Predict(ctx context.Context, uid string, samples map[string][]float64) (float64, error)
	History(ctx context.Context, uid string) ([]model.Prediction, error)
	Inputs() []fuzzy.Input
	Model() service.ModelInfo
}

// NoPredictionsMessage is returned by /prediction_table for a uid with no rows.
const NoPredictionsMessage = "No predictions found for the given user"

// PredictionHandler runs the fuzzy model and serves the prediction log.
type PredictionHandler struct {
	predictions PredictionService
	logger      *slog.Logger
}

func NewPredictionHandler(predictions PredictionService, logger *slog.Logger) *PredictionHandler {
	return &PredictionHandler{predictions: predictions, logger: logger}
}

// HandlePredict computes and stores one prediction.
//
// HTTP: POST /predict
// BODY: {"uid": "...", "counting_input": [3, 4, 5], "color_input": [2, 2, 2]}
//
// The sample fields are whatever the loaded model declares, so the body is
// read as a map instead of a fixed struct. Keys the model does not use are
// ignored.
func (h *PredictionHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	var body map[string]json.RawMessage
	if err := decodeBody(w, r, &body); err != nil {
		h.logger.Warn("invalid predict request", slog.String("error", err.Error()))
		writeError(w, h.logger, r, err)
		return
	}

	uid, samples, err := h.parsePredictBody(body)
	if err != nil {
		h.logger.Warn("invalid predict request", slog.String("error", err.Error()))
		writeError(w, h.logger, r, err)
		return
	}

	value, err := h.predictions.Predict(r.Context(), uid, samples)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]float64{"prediction": value})
}

func (h *PredictionHandler) parsePredictBody(body map[string]json.RawMessage) (string, map[string][]float64, error) {
	if body == nil {
		return "", nil, apperror.ValidationFailed("body", "request body must be a JSON object")
	}

	var uid string
	if raw, ok := body["uid"]; ok {
		if err := json.Unmarshal(raw, &uid); err != nil {
			return "", nil, apperror.ValidationFailed("uid", "uid must be a string")
		}
	}
	if uid == "" {
		return "", nil, apperror.ValidationFailed("uid", "uid is required")
	}

	samples := make(map[string][]float64)
	for _, in := range h.predictions.Inputs() {
		raw, ok := body[in.Field]
		if !ok {
			continue // the predictor reports missing inputs
		}
		var values []float64
		if err := json.Unmarshal(raw, &values); err != nil || values == nil {
			return "", nil, apperror.ValidationFailed(in.Field, fmt.Sprintf("%s must be an array of numbers", in.Field))
		}
		samples[in.Field] = values
	}
	return uid, samples, nil
}

// HandlePredictionTable lists every prediction of a uid.
//
// HTTP: GET /prediction_table/{uid}
func (h *PredictionHandler) HandlePredictionTable(w http.ResponseWriter, r *http.Request) {
	predictions, err := h.predictions.History(r.Context(), chi.URLParam(r, "uid"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	if len(predictions) == 0 {
		writeJSON(w, http.StatusOK, MessageResponse{Message: NoPredictionsMessage})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"predictions": predictions})
}

// HandleModel describes the loaded model: its name, inputs and output.
//
// HTTP: GET /model
func (h *PredictionHandler) HandleModel(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.predictions.Model())
}
