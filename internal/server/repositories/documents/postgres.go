package documents

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/singularity/internal/cryptox"
	"github.com/dmitrijs2005/singularity/internal/dbx"
	"github.com/dmitrijs2005/singularity/internal/server/models"
)

type PostgresRepository struct {
	db     dbx.DBTX
	cipher cryptox.FieldCipher
}

func NewPostgresRepository(db dbx.DBTX, c cryptox.FieldCipher) *PostgresRepository {
	return &PostgresRepository{db: db, cipher: c}
}

// Create stores the document. A second document with the same type and
// number yields ErrDocumentTaken.
func (r *PostgresRepository) Create(ctx context.Context, d *models.UserDocument) (*models.UserDocument, error) {
	row, err := encodeDocument(r.cipher, d)
	if err != nil {
		return nil, err
	}

	query :=
		`INSERT INTO user_documents (user_id, document_type_id, document_enc, document_hash, place_expedition, date_expedition)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`

	err = r.db.QueryRowContext(ctx, query,
		row.UserID, row.DocumentTypeID, row.numberEnc, row.numberHash, row.PlaceExpedition, row.issuedOn,
	).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		if _, ok := dbx.UniqueViolation(err); ok {
			return nil, ErrDocumentTaken
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return d, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]models.UserDocument, error) {
	query :=
		`SELECT id, user_id, document_type_id, document_enc, place_expedition, date_expedition, created_at
		 FROM user_documents
		 WHERE user_id = $1
		 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.UserDocument
	for rows.Next() {
		row := &documentRow{}
		if err := rows.Scan(&row.ID, &row.UserID, &row.DocumentTypeID, &row.numberEnc,
			&row.PlaceExpedition, &row.issuedOn, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		d, err := decodeDocument(r.cipher, row)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
