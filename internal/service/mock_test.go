package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/sakif/ability-api/internal/apperror"
	"github.com/sakif/ability-api/internal/fuzzy"
	"github.com/sakif/ability-api/internal/model"
	"github.com/sakif/ability-api/internal/repository"
)

// =========================================================================
// MOCK STORE
// =========================================================================
//
// mockStore implements every repository interface in memory, the way
// *sqlite.DB does on disk. failWith makes every call return that error, to
// simulate a broken database.

type mockStore struct {
	mu            sync.Mutex
	registrations map[string]model.Registration
	profiles      map[string]model.UserProfile
	results       []model.QuizResult
	questions     []model.Question
	predictions   []model.Prediction
	failWith      error
}

var (
	_ repository.RegistrationRepository = (*mockStore)(nil)
	_ repository.ProfileRepository      = (*mockStore)(nil)
	_ repository.QuizResultRepository   = (*mockStore)(nil)
	_ repository.QuestionRepository     = (*mockStore)(nil)
	_ repository.PredictionRepository   = (*mockStore)(nil)
)

func newMockStore() *mockStore {
	return &mockStore{
		registrations: make(map[string]model.Registration),
		profiles:      make(map[string]model.UserProfile),
	}
}

func (m *mockStore) InsertRegistration(_ context.Context, reg *model.Registration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	if _, ok := m.registrations[reg.FirebaseUID]; ok {
		return apperror.Conflict("registration", reg.FirebaseUID)
	}
	m.registrations[reg.FirebaseUID] = *reg
	return nil
}

func (m *mockStore) UpsertProfile(_ context.Context, p *model.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.profiles[p.FirebaseUID] = *p
	return nil
}

func (m *mockStore) FindProfileByUID(_ context.Context, uid string) (*model.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	p, ok := m.profiles[uid]
	if !ok {
		return nil, apperror.NotFound("user profile", uid)
	}
	return &p, nil
}

func (m *mockStore) AppendQuizResult(_ context.Context, r *model.QuizResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	r.ID = int64(len(m.results) + 1)
	m.results = append(m.results, *r)
	return nil
}

func (m *mockStore) ListQuizResultsByUID(_ context.Context, uid string) ([]model.QuizResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	out := make([]model.QuizResult, 0)
	for _, r := range m.results {
		if r.FirebaseUID == uid {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockStore) InsertQuestions(_ context.Context, qs []model.Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.questions = append(m.questions, qs...)
	return nil
}

func (m *mockStore) ListQuestionsByQuiz(_ context.Context, quizID int64) ([]model.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	out := make([]model.Question, 0)
	for _, q := range m.questions {
		if q.QuizID == quizID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *mockStore) CountQuestions(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.questions), m.failWith
}

func (m *mockStore) AppendPrediction(_ context.Context, p *model.Prediction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	p.ID = int64(len(m.predictions) + 1)
	m.predictions = append(m.predictions, *p)
	return nil
}

func (m *mockStore) ListPredictionsByUID(_ context.Context, uid string) ([]model.Prediction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	out := make([]model.Prediction, 0)
	for _, p := range m.predictions {
		if p.FirebaseUID == uid {
			out = append(out, p)
		}
	}
	return out, nil
}

// =========================================================================
// MOCK PREDICTOR
// =========================================================================

// stubPredictor returns a fixed value, or err, and records what it was given.
type stubPredictor struct {
	value float64
	err   error
	got   map[string][]float64
}

func (p *stubPredictor) Predict(samples map[string][]float64) (float64, error) {
	p.got = samples
	return p.value, p.err
}

func (p *stubPredictor) Inputs() []fuzzy.Input {
	return []fuzzy.Input{
		{Name: "Counting_Ability", Field: "counting_input", Min: 0, Max: 10},
		{Name: "Color_Ability", Field: "color_input", Min: 0, Max: 10},
	}
}

func (p *stubPredictor) Name() string   { return "stub" }
func (p *stubPredictor) Output() string { return "Percentage" }

// plainHasher stands in for bcrypt so tests do not pay for hashing.
type plainHasher struct{}

func (plainHasher) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", apperror.ValidationFailed("password", "password too long")
	}
	return "hashed:" + plaintext, nil
}

var errDiskFull = errors.New("disk full")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newBrokenStore() *mockStore {
	s := newMockStore()
	s.failWith = apperror.Store("testing", errDiskFull)
	return s
}

func requireErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("error = %v, want %v", err, target)
	}
}
