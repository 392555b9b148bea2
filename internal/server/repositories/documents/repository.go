// Package documents persists user identity documents. The document number is
// stored encrypted next to a blind index that carries the uniqueness
// constraint.
package documents

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/singularity/internal/server/models"
)

var ErrDocumentTaken = errors.New("document already registered")

type Repository interface {
	Create(ctx context.Context, d *models.UserDocument) (*models.UserDocument, error)
	ListByUser(ctx context.Context, userID string) ([]models.UserDocument, error)
}
