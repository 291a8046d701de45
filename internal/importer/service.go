package importer

import (
	"context"
	"time"

	"github.com/menuforge/backend/internal/catalog"
	"github.com/menuforge/backend/internal/logging"
)

// Service runs the full import pipeline. It is the single entry point for
// transport layers: hand it the uploaded bytes and the catalog scope, get
// back a summary or a tiered error.
type Service struct {
	committer *Committer
}

// NewService creates an import service committing through the given store.
func NewService(store catalog.Store) *Service {
	return &Service{committer: NewCommitter(store)}
}

// Summary is the caller-facing outcome of an import submission. When the
// validator blocks the import, Report carries the full error list and
// Result is nil; nothing was written.
type Summary struct {
	Files    []string      `json:"files"`
	Report   Report        `json:"report"`
	Result   *Result       `json:"result,omitempty"`
	Duration time.Duration `json:"-"`
}

// Validate parses and validates an upload without writing anything.
func (s *Service) Validate(ctx context.Context, data []byte, filename, scope string) (*Summary, error) {
	g, err := Parse(data, filename)
	if err != nil {
		return nil, err
	}
	return &Summary{Files: g.Files, Report: Validate(g, scope)}, nil
}

// Import runs ingest, validation, and, when no blocking errors were found,
// the transactional commit. A blocked import returns a Summary with a nil
// Result and no error; format and commit failures return the error itself.
func (s *Service) Import(ctx context.Context, data []byte, filename, scope string) (*Summary, error) {
	start := time.Now()
	log := logging.FromContext(ctx).With("file", filename, "business_id", scope)

	g, err := Parse(data, filename)
	if err != nil {
		return nil, err
	}

	report := Validate(g, scope)
	if report.Blocked() {
		log.Info("import blocked by validation",
			"errors", len(report.Errors),
			"warnings", len(report.Warnings),
		)
		return &Summary{Files: g.Files, Report: report, Duration: time.Since(start)}, nil
	}

	result, err := s.committer.Commit(ctx, g, scope)
	if err != nil {
		return nil, err
	}

	log.Info("import committed",
		"files", len(g.Files),
		"categories_created", result.Categories.Created,
		"items_created", result.Items.Created,
		"warnings", len(report.Warnings),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &Summary{Files: g.Files, Report: report, Result: result, Duration: time.Since(start)}, nil
}
