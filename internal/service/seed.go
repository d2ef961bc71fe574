package service

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/sakif/ability-api/internal/apperror"
	"github.com/sakif/ability-api/internal/model"
	"github.com/sakif/ability-api/internal/repository"
)

//go:embed seed_schema.json
var seedSchemaJSON []byte

const seedSchemaURL = "schema://question-seed.json"

var seedSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(seedSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("parse seed schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(seedSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("add seed schema: %w", err)
	}
	return c.Compile(seedSchemaURL)
})

// SeedQuestions loads the question bank from a JSON array file in one batch.
// It runs at startup, after the schema has been prepared; any error is fatal
// to the caller.
func SeedQuestions(ctx context.Context, repo repository.QuestionRepository, path string, logger *slog.Logger) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading question seed: %w", err)
	}

	questions, err := parseSeed(data)
	if err != nil {
		return 0, fmt.Errorf("decoding question seed %s: %w", path, err)
	}
	if err := validateSeed(questions); err != nil {
		return 0, fmt.Errorf("question seed %s: %w", path, err)
	}

	if err := repo.InsertQuestions(ctx, questions); err != nil {
		return 0, fmt.Errorf("loading question seed: %w", err)
	}

	logger.Info("question bank seeded",
		slog.String("path", path),
		slog.Int("questions", len(questions)),
	)
	return len(questions), nil
}

// parseSeed checks data against the seed schema before decoding it, so an
// entry with a missing key is rejected instead of loading as zero values.
func parseSeed(data []byte) ([]model.Question, error) {
	schema, err := seedSchema()
	if err != nil {
		return nil, err
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, apperror.ValidationFailed("body", fmt.Sprintf("not valid JSON: %v", err))
	}
	if err := schema.Validate(doc); err != nil {
		return nil, apperror.ValidationFailed("body", err.Error())
	}

	var questions []model.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func validateSeed(questions []model.Question) error {
	seen := make(map[int64]bool, len(questions))
	for i, q := range questions {
		if seen[q.ID] {
			return apperror.ValidationFailed("id", fmt.Sprintf("entry %d: duplicate question id %d", i, q.ID))
		}
		seen[q.ID] = true
		for _, opt := range q.Options {
			if strings.Contains(opt, model.OptionsDelimiter) {
				return apperror.ValidationFailed("options",
					fmt.Sprintf("entry %d: option %q contains the reserved %q", i, opt, model.OptionsDelimiter))
			}
		}
	}
	return nil
}
