// Package handler contains the HTTP handlers of the ability service.
//
// HANDLER RESPONSIBILITIES:
//  1. Parse the request (path parameters, JSON body)
//  2. Call one service method
//  3. Write the JSON response, or map the error to a status code
//
// Handlers hold no business logic and no state between requests.
package handler

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/sakif/ability-api/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

// Endpoint is one row of the landing page's endpoint table.
type Endpoint struct {
	Method string
	Path   string
}

// LandingHandler renders GET /. The template is parsed once at startup.
type LandingHandler struct {
	tmpl      *template.Template
	model     ModelDescriber
	endpoints []Endpoint
	logger    *slog.Logger
}

// ModelDescriber reports the loaded model.
type ModelDescriber interface {
	Model() service.ModelInfo
}

func NewLandingHandler(model ModelDescriber, endpoints []Endpoint, logger *slog.Logger) (*LandingHandler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, err
	}
	return &LandingHandler{
		tmpl:      tmpl,
		model:     model,
		endpoints: endpoints,
		logger:    logger,
	}, nil
}

// HandleIndex serves the landing page.
func (h *LandingHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"Title":     "Child Ability Prediction",
		"Model":     h.model.Model(),
		"Endpoints": h.endpoints,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.ExecuteTemplate(w, "index.html", data); err != nil {
		h.logger.Error("failed to render landing page", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
