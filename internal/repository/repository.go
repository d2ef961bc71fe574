// Package repository declares the storage contracts the service layer depends on.
// internal/repository/sqlite implements all of them on a single *sqlite.DB;
// service tests substitute in-memory fakes.
package repository

import (
	"context"

	"github.com/sakif/ability-api/internal/model"
)

// RegistrationRepository stores accounts. There is no update or delete.
type RegistrationRepository interface {
	// InsertRegistration returns apperror.ErrConflict if the uid is taken.
	InsertRegistration(ctx context.Context, reg *model.Registration) error
}

type ProfileRepository interface {
	// UpsertProfile inserts the profile or overwrites every mutable field of
	// the existing row in one statement.
	UpsertProfile(ctx context.Context, profile *model.UserProfile) error
	// FindProfileByUID returns apperror.ErrNotFound when no profile exists.
	FindProfileByUID(ctx context.Context, uid string) (*model.UserProfile, error)
}

type QuizResultRepository interface {
	AppendQuizResult(ctx context.Context, result *model.QuizResult) error
	ListQuizResultsByUID(ctx context.Context, uid string) ([]model.QuizResult, error)
}

type QuestionRepository interface {
	InsertQuestions(ctx context.Context, questions []model.Question) error
	ListQuestionsByQuiz(ctx context.Context, quizID int64) ([]model.Question, error)
	CountQuestions(ctx context.Context) (int, error)
}

type PredictionRepository interface {
	AppendPrediction(ctx context.Context, p *model.Prediction) error
	ListPredictionsByUID(ctx context.Context, uid string) ([]model.Prediction, error)
}
