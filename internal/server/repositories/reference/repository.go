// Package reference persists the shared country and document type catalogs.
package reference

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/singularity/internal/server/models"
)

var (
	ErrCountryCodeTaken  = errors.New("country code already exists")
	ErrDocumentTypeTaken = errors.New("document type already exists")
)

type Repository interface {
	ListCountries(ctx context.Context) ([]models.Country, error)
	GetCountry(ctx context.Context, id int64) (*models.Country, error)
	CountryExists(ctx context.Context, id int64) (bool, error)
	CreateCountry(ctx context.Context, c *models.Country) (*models.Country, error)

	ListDocumentTypes(ctx context.Context) ([]models.DocumentType, error)
	GetDocumentType(ctx context.Context, id int64) (*models.DocumentType, error)
	DocumentTypeExists(ctx context.Context, id int64) (bool, error)
	CreateDocumentType(ctx context.Context, dt *models.DocumentType) (*models.DocumentType, error)
}
