package reference

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/singularity/internal/common"
	"github.com/dmitrijs2005/singularity/internal/dbx"
	"github.com/dmitrijs2005/singularity/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListCountries(ctx context.Context) ([]models.Country, error) {
	query := `SELECT id, country_code, country_name FROM countries ORDER BY country_name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.Country
	for rows.Next() {
		var c models.Country
		if err := rows.Scan(&c.ID, &c.Code, &c.Name); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) GetCountry(ctx context.Context, id int64) (*models.Country, error) {
	query := `SELECT id, country_code, country_name FROM countries WHERE id = $1`

	c := &models.Country{}
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Code, &c.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) CountryExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM countries WHERE id = $1)`, id)
}

func (r *PostgresRepository) CreateCountry(ctx context.Context, c *models.Country) (*models.Country, error) {
	query :=
		`INSERT INTO countries (country_code, country_name)
		 VALUES ($1, $2)
		 RETURNING id`

	if err := r.db.QueryRowContext(ctx, query, c.Code, c.Name).Scan(&c.ID); err != nil {
		if _, ok := dbx.UniqueViolation(err); ok {
			return nil, ErrCountryCodeTaken
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) ListDocumentTypes(ctx context.Context) ([]models.DocumentType, error) {
	query := `SELECT id, name_type_document FROM document_types ORDER BY name_type_document`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.DocumentType
	for rows.Next() {
		var dt models.DocumentType
		if err := rows.Scan(&dt.ID, &dt.Name); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, dt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) GetDocumentType(ctx context.Context, id int64) (*models.DocumentType, error) {
	query := `SELECT id, name_type_document FROM document_types WHERE id = $1`

	dt := &models.DocumentType{}
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&dt.ID, &dt.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return dt, nil
}

func (r *PostgresRepository) DocumentTypeExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM document_types WHERE id = $1)`, id)
}

func (r *PostgresRepository) CreateDocumentType(ctx context.Context, dt *models.DocumentType) (*models.DocumentType, error) {
	query :=
		`INSERT INTO document_types (name_type_document)
		 VALUES ($1)
		 RETURNING id`

	if err := r.db.QueryRowContext(ctx, query, dt.Name).Scan(&dt.ID); err != nil {
		if _, ok := dbx.UniqueViolation(err); ok {
			return nil, ErrDocumentTypeTaken
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return dt, nil
}

func (r *PostgresRepository) exists(ctx context.Context, query string, id int64) (bool, error) {
	var ok bool
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&ok); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return ok, nil
}
