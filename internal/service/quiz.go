package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/ability-api/internal/apperror"
	"github.com/sakif/ability-api/internal/model"
	"github.com/sakif/ability-api/internal/repository"
)

// QuizService records quiz attempts and serves the question bank.
type QuizService struct {
	results   repository.QuizResultRepository
	questions repository.QuestionRepository
	logger    *slog.Logger
}

func NewQuizService(results repository.QuizResultRepository, questions repository.QuestionRepository, logger *slog.Logger) *QuizService {
	return &QuizService{
		results:   results,
		questions: questions,
		logger:    logger,
	}
}

// RecordResult appends one quiz attempt.
//
// Exactly model.QuestionsPerQuiz question ids are stored. Fewer is a
// validation error; extra ids are dropped with a warning.
func (s *QuizService) RecordResult(ctx context.Context, uid string, quizID int64, average int, questionIDs []int64) (*model.QuizResult, error) {
	if err := requireUID(uid); err != nil {
		return nil, err
	}
	if len(questionIDs) < model.QuestionsPerQuiz {
		return nil, apperror.ValidationFailed("questionids",
			fmt.Sprintf("questionids must contain %d question ids, got %d", model.QuestionsPerQuiz, len(questionIDs)))
	}
	if len(questionIDs) > model.QuestionsPerQuiz {
		s.logger.Warn("extra question ids ignored",
			slog.String("uid", uid),
			slog.Int("received", len(questionIDs)),
			slog.Int("kept", model.QuestionsPerQuiz),
		)
	}

	result := &model.QuizResult{
		FirebaseUID:   uid,
		QuizID:        quizID,
		AverageResult: average,
	}
	copy(result.QuestionIDs[:], questionIDs)

	if err := s.results.AppendQuizResult(ctx, result); err != nil {
		s.logger.Error("failed to save quiz result",
			slog.String("uid", uid),
			slog.String("error", errorCause(err)),
		)
		return nil, fmt.Errorf("saving quiz result: %w", err)
	}

	s.logger.Info("quiz result stored",
		slog.String("uid", uid),
		slog.Int64("quiz_id", quizID),
		slog.Int64("id", result.ID),
	)
	return result, nil
}

// History lists every attempt for uid, oldest first.
func (s *QuizService) History(ctx context.Context, uid string) ([]model.QuizResult, error) {
	if err := requireUID(uid); err != nil {
		return nil, err
	}

	results, err := s.results.ListQuizResultsByUID(ctx, uid)
	if err != nil {
		s.logger.Error("failed to list quiz results",
			slog.String("uid", uid),
			slog.String("error", errorCause(err)),
		)
		return nil, fmt.Errorf("listing quiz results: %w", err)
	}
	return results, nil
}

// Questions returns the question bank entries of one quiz.
func (s *QuizService) Questions(ctx context.Context, quizID int64) ([]model.Question, error) {
	questions, err := s.questions.ListQuestionsByQuiz(ctx, quizID)
	if err != nil {
		s.logger.Error("failed to list questions",
			slog.Int64("quiz_id", quizID),
			slog.String("error", errorCause(err)),
		)
		return nil, fmt.Errorf("listing questions: %w", err)
	}
	return questions, nil
}
