package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/ability-api/internal/model"
)

// UserService is what UserHandler needs from the service layer.
type UserService interface {
	Register(ctx context.Context, uid, username, email, password string) error
	SaveDetails(ctx context.Context, profile *model.UserProfile) error
	GetDetails(ctx context.Context, uid string) (*model.UserProfile, error)
}

// UserHandler serves account registration and child profiles.
type UserHandler struct {
	users  UserService
	logger *slog.Logger
}

func NewUserHandler(users UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// HandleRegister creates an account.
//
// HTTP: POST /register_user
// BODY: {"uid": "...", "username": "...", "email": "...", "password": "..."}
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Warn("invalid register request", slog.String("error", err.Error()))
		writeError(w, h.logger, r, err)
		return
	}

	if err := h.users.Register(r.Context(), req.UID, req.Username, req.Email, req.Password); err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Registration successful"})
}

// HandleSaveDetails creates or overwrites the child profile of a uid.
//
// HTTP: POST /save_user_details
func (h *UserHandler) HandleSaveDetails(w http.ResponseWriter, r *http.Request) {
	var req SaveDetailsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Warn("invalid save_user_details request", slog.String("error", err.Error()))
		writeError(w, h.logger, r, err)
		return
	}

	profile := &model.UserProfile{
		FirebaseUID:       req.UID,
		ChildName:         req.ChildName,
		ChildAge:          *req.ChildAge,
		ParentName:        req.ParentName,
		ParentPhoneNumber: *req.ParentPhoneNumber,
		Address:           req.Address,
	}
	if err := h.users.SaveDetails(r.Context(), profile); err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "User details saved successfully"})
}

// HandleGetDetails returns the five profile fields of a uid.
//
// HTTP: GET /get_user_details/{uid}
func (h *UserHandler) HandleGetDetails(w http.ResponseWriter, r *http.Request) {
	profile, err := h.users.GetDetails(r.Context(), chi.URLParam(r, "uid"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	// model.UserProfile hides firebase_uid from JSON, leaving exactly the
	// five profile fields.
	writeJSON(w, http.StatusOK, profile)
}
