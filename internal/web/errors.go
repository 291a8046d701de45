package web

// errors.go maps pipeline errors onto HTTP responses.
//
// The import pipeline reports failures in tiers, and each tier has a
// distinct status code:
//   - format errors and empty uploads are client mistakes (400)
//   - validation blocks are reported by the handler itself (422, with
//     the full report in the body, so they never reach respondError)
//   - commit errors mean the transaction rolled back (500)

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/menuforge/backend/internal/importer"
)

// ErrorResponse is the JSON structure for API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	File  string `json:"file,omitempty"`
	Line  int    `json:"line,omitempty"`
}

// respondError logs the technical error with request context and writes
// the appropriate JSON response for its tier.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	resp := ErrorResponse{Error: "internal error"}

	var formatErr *importer.FormatError
	var commitErr *importer.CommitError
	switch {
	case errors.Is(err, importer.ErrEmptyImport):
		status = http.StatusBadRequest
		resp.Error = err.Error()
	case errors.As(err, &formatErr):
		status = http.StatusBadRequest
		resp.Error = formatErr.Error()
		resp.File = formatErr.File
		resp.Line = formatErr.Line
	case errors.As(err, &commitErr):
		// Transaction rolled back; the catalog is unchanged.
		resp.Error = "import failed, no changes were made"
	}

	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"request_id", middleware.GetReqID(r.Context()),
	)

	writeJSON(w, status, resp)
}
