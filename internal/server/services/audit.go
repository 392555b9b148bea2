package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/singularity/internal/common"
	"github.com/dmitrijs2005/singularity/internal/server/archive"
	"github.com/dmitrijs2005/singularity/internal/server/models"
	"github.com/dmitrijs2005/singularity/internal/server/repositories/auditlog"
	"github.com/dmitrijs2005/singularity/internal/server/repositories/repomanager"
)

// Exporter uploads a batch of audit entries and returns a download link.
type Exporter interface {
	Export(ctx context.Context, key string, entries []*models.AuditEntry) (string, error)
}

// AuditExport describes an uploaded archive.
type AuditExport struct {
	URL       string
	Key       string
	Count     int
	Truncated bool
}

type AuditService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	exporter    Exporter

	now func() time.Time
}

func NewAuditService(db *sql.DB, m repomanager.RepositoryManager, e Exporter) *AuditService {
	return &AuditService{db: db, repomanager: m, exporter: e, now: time.Now}
}

// Entries returns matching entries newest first. Staff only.
func (s *AuditService) Entries(ctx context.Context, f models.AuditFilter) ([]models.AuditEntry, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return nil, common.NewValidationError("to", "to must not be before from")
	}
	f.Limit = auditlog.ClampLimit(f.Limit)
	return s.repomanager.AuditLog(s.db).Query(ctx, f)
}

// Export uploads the newest entries between from and to, at most
// auditlog.MaxLimit of them. Staff only.
func (s *AuditService) Export(ctx context.Context, from, to time.Time) (*AuditExport, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	if s.exporter == nil {
		return nil, fmt.Errorf("audit export is not configured")
	}
	entries, err := s.Entries(ctx, models.AuditFilter{From: from, To: to, Limit: auditlog.MaxLimit})
	if err != nil {
		return nil, err
	}

	batch := make([]*models.AuditEntry, len(entries))
	for i := range entries {
		batch[i] = &entries[i]
	}

	key := archive.ObjectKey(s.now())
	url, err := s.exporter.Export(ctx, key, batch)
	if err != nil {
		return nil, fmt.Errorf("export audit log: %w", err)
	}
	return &AuditExport{URL: url, Key: key, Count: len(batch), Truncated: len(batch) == auditlog.MaxLimit}, nil
}
