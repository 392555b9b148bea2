// Package auditlog stores audit entries. Entries are append-only: the table
// rejects updates and deletes.
package auditlog

import (
	"context"

	"github.com/dmitrijs2005/singularity/internal/server/models"
)

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

type Repository interface {
	Append(ctx context.Context, e *models.AuditEntry) error
	// Query returns matching entries newest first.
	Query(ctx context.Context, f models.AuditFilter) ([]models.AuditEntry, error)
}
