package middleware

import (
	"net/http"
	"strconv"
)

// OriginalStatusHeader carries the real status when LegacyStatusOK rewrites it.
const OriginalStatusHeader = "X-Original-Status"

// legacyWriter turns every status into 200 and keeps the body as written.
type legacyWriter struct {
	http.ResponseWriter
}

func (lw *legacyWriter) WriteHeader(code int) {
	if code != http.StatusOK {
		lw.Header().Set(OriginalStatusHeader, strconv.Itoa(code))
	}
	lw.ResponseWriter.WriteHeader(http.StatusOK)
}

// LegacyStatusOK answers every request with HTTP 200, errors included, for
// clients that only read the "error" key of the body. The real status is kept
// in the X-Original-Status header.
//
// Mount it outside Logger so request logs still show the real status.
func LegacyStatusOK(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(&legacyWriter{ResponseWriter: w}, r)
	})
}
