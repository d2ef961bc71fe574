package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/ability-api/internal/apperror"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// validate is safe for concurrent use and caches struct metadata, so one
// instance serves every request.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names ("child_age", not "ChildAge").
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeJSON reads the body into dst and runs the validate tags on it.
// Every failure is an apperror.ErrValidation.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := decodeBody(w, r, dst); err != nil {
		return err
	}
	return validateStruct(dst)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return apperror.ValidationFailed("body", "request body is required")
		case errors.As(err, &typeErr) && typeErr.Field == "":
			return apperror.ValidationFailed("body", "request body must be a JSON object")
		case errors.As(err, &typeErr):
			return apperror.ValidationFailed(typeErr.Field,
				fmt.Sprintf("%s must be of type %s", typeErr.Field, typeErr.Type))
		case errors.As(err, &maxErr):
			return apperror.ValidationFailed("body", "request body is too large")
		default:
			return apperror.ValidationFailed("body", "invalid JSON body")
		}
	}
	return nil
}

func validateStruct(dst any) error {
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			return apperror.ValidationFailed(field, field+" is required")
		default:
			return apperror.ValidationFailed(field, fmt.Sprintf("%s failed %s validation", field, fe.Tag()))
		}
	}
	return apperror.ValidationFailed("body", err.Error())
}

// RegisterRequest is the body of POST /register_user.
type RegisterRequest struct {
	UID      string `json:"uid" validate:"required"`
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SaveDetailsRequest is the body of POST /save_user_details.
// Numbers are pointers so that 0 counts as present.
type SaveDetailsRequest struct {
	UID               string `json:"uid" validate:"required"`
	ChildName         string `json:"child_name" validate:"required"`
	ChildAge          *int   `json:"child_age" validate:"required"`
	ParentName        string `json:"parent_name" validate:"required"`
	ParentPhoneNumber *int64 `json:"parent_phone_number" validate:"required"`
	Address           string `json:"address" validate:"required"`
}

// QuizUpdateRequest is the body of POST /quiz_update.
type QuizUpdateRequest struct {
	UID         string  `json:"uid" validate:"required"`
	QuizID      *int64  `json:"quizid" validate:"required"`
	AvgResult   *int    `json:"avg_result" validate:"required"`
	QuestionIDs []int64 `json:"questionids" validate:"required"`
}
