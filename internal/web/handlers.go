package web

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/menuforge/backend/internal/importer"
)

// importRequest carries the non-file fields of an import submission.
type importRequest struct {
	BusinessID string `validate:"required,max=64"`
}

// readUpload extracts and validates the multipart file and form fields
// shared by the import and validate endpoints. On failure it writes the
// error response and returns false.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, importRequest, bool) {
	var req importRequest

	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		writeError(w, http.StatusBadRequest, "file too large or invalid form")
		return nil, "", req, false
	}

	req.BusinessID = r.FormValue("business_id")
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "business_id is required")
		return nil, "", req, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file provided")
		return nil, "", req, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read file")
		return nil, "", req, false
	}

	return data, header.Filename, req, true
}

// handleImport ingests an uploaded CSV or ZIP archive, validates it, and
// commits the result atomically. A validation-blocked import returns 422
// with the full report; nothing is written in that case.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, filename, req, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	summary, err := s.service.Import(r.Context(), data, filename, req.BusinessID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if summary.Result == nil {
		writeJSON(w, http.StatusUnprocessableEntity, summary)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleValidate runs ingest and validation without writing anything.
// The response always carries the full report, errors and warnings both.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	data, filename, req, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	summary, err := s.service.Validate(r.Context(), data, filename, req.BusinessID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// handleListTemplates returns the entity names with downloadable templates.
func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{
		"entities": importer.TemplateEntities(),
	})
}

// handleDownloadTemplate returns a CSV template with headers for an entity.
func (s *Server) handleDownloadTemplate(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")

	cols, ok := importer.TemplateColumns(entity)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown entity")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s_template.csv"`, entity))

	csvWriter := csv.NewWriter(w)
	csvWriter.Write(cols)
	csvWriter.Flush()
}

// handleHealth reports service liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
