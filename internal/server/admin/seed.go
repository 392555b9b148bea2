package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/singularity/internal/server/models"
	"github.com/dmitrijs2005/singularity/internal/server/repositories/reference"
)

var seedCountries = []models.Country{
	{Code: "CO", Name: "Colombia"},
}

var seedDocumentTypes = []models.DocumentType{
	{Name: "Cedula de Ciudadania"},
	{Name: "Cedula de Extranjeria"},
	{Name: "Pasaporte"},
	{Name: "Tarjeta de Identidad"},
}

// SeedResult counts the rows Seed actually inserted.
type SeedResult struct {
	Countries     int
	DocumentTypes int
}

// Seed inserts the default reference catalog. Rows that already exist are
// skipped, so running it again is harmless. Each insert runs on its own:
// a unique violation would abort an enclosing Postgres transaction.
func (t *Tool) Seed(ctx context.Context) (SeedResult, error) {
	var res SeedResult
	ref := t.repomanager.Reference(t.db)

	for _, c := range seedCountries {
		_, err := ref.CreateCountry(ctx, &c)
		switch {
		case errors.Is(err, reference.ErrCountryCodeTaken):
			t.log.Debug(ctx, "country already present", "code", c.Code)
		case err != nil:
			return res, fmt.Errorf("seed country %s: %w", c.Code, err)
		default:
			res.Countries++
		}
	}

	for _, dt := range seedDocumentTypes {
		_, err := ref.CreateDocumentType(ctx, &dt)
		switch {
		case errors.Is(err, reference.ErrDocumentTypeTaken):
			t.log.Debug(ctx, "document type already present", "name", dt.Name)
		case err != nil:
			return res, fmt.Errorf("seed document type %s: %w", dt.Name, err)
		default:
			res.DocumentTypes++
		}
	}

	t.log.Info(ctx, "reference data seeded", "countries", res.Countries, "document_types", res.DocumentTypes)
	return res, nil
}
