// Package contacts persists user contact records with encrypted PII columns.
package contacts

import (
	"context"

	"github.com/dmitrijs2005/singularity/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, ci *models.ContactInfo) (*models.ContactInfo, error)
	ListByUser(ctx context.Context, userID string) ([]models.ContactInfo, error)
	// Update rewrites a contact owned by ci.UserID; common.ErrorNotFound when
	// there is no such contact for that user.
	Update(ctx context.Context, ci *models.ContactInfo) error
}
