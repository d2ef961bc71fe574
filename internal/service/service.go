// Package service holds the business rules between the HTTP handlers and the
// repositories.
//
//	Handler (HTTP)  → parses requests, writes responses
//	Service         → validates, enforces rules, orchestrates
//	Repository      → reads/writes the database
//
// Services take repository interfaces, never *sqlite.DB, so tests pass
// in-memory fakes. They return apperror values and know nothing about HTTP
// status codes.
package service

import (
	"strings"

	"github.com/sakif/ability-api/internal/apperror"
)

// requireUID rejects an empty or all-blank uid. The uid is an opaque token:
// it is stored and matched exactly as the client sent it.
func requireUID(uid string) error {
	if strings.TrimSpace(uid) == "" {
		return apperror.ValidationFailed("uid", "uid is required")
	}
	return nil
}
