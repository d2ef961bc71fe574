package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/ability-api/internal/apperror"
	"github.com/sakif/ability-api/internal/fuzzy"
	"github.com/sakif/ability-api/internal/handler"
	"github.com/sakif/ability-api/internal/model"
	"github.com/sakif/ability-api/internal/service"
)

// =========================================================================
// FAKES
// =========================================================================

type fakeUsers struct {
	registered *handler.RegisterRequest
	saved      *model.UserProfile
	profile    *model.UserProfile
	err        error
}

func (f *fakeUsers) Register(_ context.Context, uid, username, email, password string) error {
	f.registered = &handler.RegisterRequest{UID: uid, Username: username, Email: email, Password: password}
	return f.err
}

func (f *fakeUsers) SaveDetails(_ context.Context, p *model.UserProfile) error {
	f.saved = p
	return f.err
}

func (f *fakeUsers) GetDetails(_ context.Context, uid string) (*model.UserProfile, error) {
	return f.profile, f.err
}

type fakeQuizzes struct {
	gotIDs []int64
	gotUID string
	err    error
}

func (f *fakeQuizzes) RecordResult(_ context.Context, uid string, quizID int64, avg int, ids []int64) (*model.QuizResult, error) {
	f.gotUID, f.gotIDs = uid, ids
	return &model.QuizResult{ID: 1}, f.err
}

func (f *fakeQuizzes) History(_ context.Context, uid string) ([]model.QuizResult, error) {
	f.gotUID = uid
	return []model.QuizResult{}, f.err
}

func (f *fakeQuizzes) Questions(_ context.Context, quizID int64) ([]model.Question, error) {
	return []model.Question{}, f.err
}

type fakePredictions struct {
	samples map[string][]float64
	value   float64
	err     error
}

func (f *fakePredictions) Predict(_ context.Context, uid string, samples map[string][]float64) (float64, error) {
	f.samples = samples
	return f.value, f.err
}

func (f *fakePredictions) History(_ context.Context, uid string) ([]model.Prediction, error) {
	return []model.Prediction{}, f.err
}

func (f *fakePredictions) Inputs() []fuzzy.Input {
	return []fuzzy.Input{
		{Name: "Counting_Ability", Field: "counting_input"},
		{Name: "Color_Ability", Field: "color_input"},
		{Name: "Calculation_Ability", Field: "calculation_input"},
	}
}

func (f *fakePredictions) Model() service.ModelInfo {
	return service.ModelInfo{Name: "fake", Inputs: f.Inputs(), Output: "Percentage"}
}

// =========================================================================
// HELPERS
// =========================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// route mounts one handler on a chi router so URL parameters resolve.
func route(method, pattern string, h http.HandlerFunc) http.Handler {
	r := chi.NewRouter()
	r.MethodFunc(method, pattern, h)
	return r
}

func serve(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, handler.ErrorResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var errResp handler.ErrorResponse
	if rr.Code >= http.StatusBadRequest {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &errResp), rr.Body.String())
	}
	return rr, errResp
}

// =========================================================================
// ERROR MAPPING
// =========================================================================

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"validation", apperror.ValidationFailed("uid", "uid is required"), http.StatusBadRequest, "validation_error", "uid is required"},
		{"empty input", apperror.EmptyInput("counting_input"), http.StatusBadRequest, "empty_input", "counting_input must contain at least one value"},
		{"not found", apperror.NotFoundMessage("User profile not found"), http.StatusNotFound, "not_found", "User profile not found"},
		{"conflict", apperror.Conflict("registration", "u1"), http.StatusConflict, "conflict", "registration conflict with id u1"},
		{"prediction unavailable", apperror.PredictionUnavailable("no rule fired"), http.StatusInternalServerError, "prediction_unavailable", "no rule fired"},
		{"store hides cause", apperror.Store("saving", errors.New("SQL logic error near users")), http.StatusInternalServerError, "store_error", "An internal error occurred"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error", "An internal error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handler.NewUserHandler(&fakeUsers{err: tt.err}, testLogger())

			rr, resp := serve(t, route(http.MethodGet, "/get_user_details/{uid}", h.HandleGetDetails),
				http.MethodGet, "/get_user_details/u1", "")

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.Equal(t, tt.wantMsg, resp.Error)
		})
	}
}

// =========================================================================
// USERS
// =========================================================================

func TestHandleRegister(t *testing.T) {
	users := &fakeUsers{}
	h := handler.NewUserHandler(users, testLogger())

	rr, _ := serve(t, http.HandlerFunc(h.HandleRegister), http.MethodPost, "/register_user",
		`{"uid":"u1","username":"alice","email":"a@x.com","password":"pw","extra":"ignored"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"Registration successful"}`, rr.Body.String())
	assert.Equal(t, "alice", users.registered.Username)
}

func TestHandleRegister_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"empty body", ``, "request body is required"},
		{"malformed", `{"uid":`, "invalid JSON body"},
		{"missing uid", `{"username":"alice","email":"a@x.com","password":"pw"}`, "uid is required"},
		{"missing password", `{"uid":"u1","username":"alice","email":"a@x.com"}`, "password is required"},
		{"wrong type", `{"uid":1,"username":"alice","email":"a@x.com","password":"pw"}`, "uid must be of type string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &fakeUsers{}
			h := handler.NewUserHandler(users, testLogger())

			rr, resp := serve(t, http.HandlerFunc(h.HandleRegister), http.MethodPost, "/register_user", tt.body)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, "validation_error", resp.Code)
			assert.Equal(t, tt.wantMsg, resp.Error)
			assert.Nil(t, users.registered, "service must not be called")
		})
	}
}

func TestHandleSaveDetails_ZeroIsPresent(t *testing.T) {
	users := &fakeUsers{}
	h := handler.NewUserHandler(users, testLogger())

	rr, _ := serve(t, http.HandlerFunc(h.HandleSaveDetails), http.MethodPost, "/save_user_details",
		`{"uid":"u1","child_name":"Sam","child_age":0,"parent_name":"Alice","parent_phone_number":0,"address":"x"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 0, users.saved.ChildAge)
	assert.Equal(t, "u1", users.saved.FirebaseUID)
}

func TestHandleSaveDetails_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"missing age", `{"uid":"u1","child_name":"Sam","parent_name":"A","parent_phone_number":1,"address":"x"}`, "child_age is required"},
		{"phone as text", `{"uid":"u1","child_name":"Sam","child_age":6,"parent_name":"A","parent_phone_number":"555-1234","address":"x"}`, "parent_phone_number must be of type int64"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handler.NewUserHandler(&fakeUsers{}, testLogger())

			rr, resp := serve(t, http.HandlerFunc(h.HandleSaveDetails), http.MethodPost, "/save_user_details", tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, tt.wantMsg, resp.Error)
		})
	}
}

func TestHandleGetDetails_FiveFields(t *testing.T) {
	users := &fakeUsers{profile: &model.UserProfile{
		FirebaseUID: "u1", ChildName: "Sam", ChildAge: 6, ParentName: "Alice", ParentPhoneNumber: 5551234, Address: "1 Main St",
	}}
	h := handler.NewUserHandler(users, testLogger())

	rr, _ := serve(t, route(http.MethodGet, "/get_user_details/{uid}", h.HandleGetDetails),
		http.MethodGet, "/get_user_details/u1", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t,
		`{"child_name":"Sam","child_age":6,"parent_name":"Alice","parent_phone_number":5551234,"address":"1 Main St"}`,
		rr.Body.String())
}

// =========================================================================
// QUIZZES
// =========================================================================

func TestHandleQuizUpdate(t *testing.T) {
	quizzes := &fakeQuizzes{}
	h := handler.NewQuizHandler(quizzes, testLogger())

	rr, _ := serve(t, http.HandlerFunc(h.HandleQuizUpdate), http.MethodPost, "/quiz_update",
		`{"uid":"u1","quizid":0,"avg_result":0,"questionids":[1,2,3,4,5]}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"Quiz update successful"}`, rr.Body.String())
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, quizzes.gotIDs)
}

func TestHandleQuizUpdate_MissingFields(t *testing.T) {
	h := handler.NewQuizHandler(&fakeQuizzes{}, testLogger())

	rr, resp := serve(t, http.HandlerFunc(h.HandleQuizUpdate), http.MethodPost, "/quiz_update",
		`{"uid":"u1","avg_result":10,"questionids":[1,2,3,4,5]}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "quizid is required", resp.Error)

	rr, resp = serve(t, http.HandlerFunc(h.HandleQuizUpdate), http.MethodPost, "/quiz_update",
		`{"uid":"u1","quizid":1,"avg_result":10}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "questionids is required", resp.Error)
}

func TestHandleResultHistory_EmptyList(t *testing.T) {
	quizzes := &fakeQuizzes{}
	h := handler.NewQuizHandler(quizzes, testLogger())

	rr, _ := serve(t, route(http.MethodGet, "/result_history/{uid}", h.HandleResultHistory),
		http.MethodGet, "/result_history/u9", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"results":[]}`, rr.Body.String())
	assert.Equal(t, "u9", quizzes.gotUID)
}

// =========================================================================
// PREDICTIONS
// =========================================================================

func TestHandlePredict_ReadsModelFields(t *testing.T) {
	preds := &fakePredictions{value: 57.25}
	h := handler.NewPredictionHandler(preds, testLogger())

	rr, _ := serve(t, http.HandlerFunc(h.HandlePredict), http.MethodPost, "/predict",
		`{"uid":"u1","counting_input":[3,4,5],"color_input":[2],"calculation_input":[1.5],"unrelated":[9]}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"prediction":57.25}`, rr.Body.String())
	assert.Equal(t, map[string][]float64{
		"counting_input":    {3, 4, 5},
		"color_input":       {2},
		"calculation_input": {1.5},
	}, preds.samples)
}

func TestHandlePredict_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"missing uid", `{"counting_input":[1],"color_input":[1]}`, "uid is required"},
		{"uid not a string", `{"uid":5,"counting_input":[1],"color_input":[1]}`, "uid must be a string"},
		{"samples not numbers", `{"uid":"u1","counting_input":["a"],"color_input":[1]}`, "counting_input must be an array of numbers"},
		{"samples null", `{"uid":"u1","counting_input":null,"color_input":[1]}`, "counting_input must be an array of numbers"},
		{"body not an object", `[1,2]`, "request body must be a JSON object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			preds := &fakePredictions{}
			h := handler.NewPredictionHandler(preds, testLogger())

			rr, resp := serve(t, http.HandlerFunc(h.HandlePredict), http.MethodPost, "/predict", tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Contains(t, resp.Error, tt.wantMsg)
			assert.Nil(t, preds.samples, "service must not be called")
		})
	}
}

func TestHandlePredictionTable_NoRows(t *testing.T) {
	h := handler.NewPredictionHandler(&fakePredictions{}, testLogger())

	rr, _ := serve(t, route(http.MethodGet, "/prediction_table/{uid}", h.HandlePredictionTable),
		http.MethodGet, "/prediction_table/u1", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"No predictions found for the given user"}`, rr.Body.String())
}

func TestLandingPage(t *testing.T) {
	h, err := handler.NewLandingHandler(&fakePredictions{}, []handler.Endpoint{{Method: "POST", Path: "/predict"}}, testLogger())
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	h.HandleIndex(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "calculation_input")
	assert.Contains(t, rr.Body.String(), "/predict")
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func TestHandleHealth(t *testing.T) {
	rr, _ := serve(t, http.HandlerFunc(handler.NewHealthHandler(fakePinger{}, testLogger()).HandleHealth),
		http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())

	rr, resp := serve(t, http.HandlerFunc(handler.NewHealthHandler(fakePinger{err: errors.New("closed")}, testLogger()).HandleHealth),
		http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "store_error", resp.Code)
}
