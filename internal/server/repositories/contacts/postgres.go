package contacts

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/singularity/internal/common"
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

func (r *PostgresRepository) Create(ctx context.Context, ci *models.ContactInfo) (*models.ContactInfo, error) {
	row, err := encodeContact(r.cipher, ci)
	if err != nil {
		return nil, err
	}

	query :=
		`INSERT INTO contact_infos (user_id, country_id, city, address_enc, phone_enc,
			cel_phone_enc, emergency_name_enc, emergency_phone_enc)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`

	err = r.db.QueryRowContext(ctx, query,
		row.UserID, row.CountryID, row.City, row.addressEnc, row.phoneEnc,
		row.celPhoneEnc, row.emergencyNameEnc, row.emergencyPhoneEnc,
	).Scan(&ci.ID, &ci.CreatedAt, &ci.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ci, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]models.ContactInfo, error) {
	query :=
		`SELECT id, user_id, country_id, city, address_enc, phone_enc,
			cel_phone_enc, emergency_name_enc, emergency_phone_enc, created_at, updated_at
		 FROM contact_infos
		 WHERE user_id = $1
		 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.ContactInfo
	for rows.Next() {
		row := &contactRow{}
		if err := rows.Scan(&row.ID, &row.UserID, &row.CountryID, &row.City,
			&row.addressEnc, &row.phoneEnc, &row.celPhoneEnc, &row.emergencyNameEnc, &row.emergencyPhoneEnc,
			&row.CreatedAt, &row.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		ci, err := decodeContact(r.cipher, row)
		if err != nil {
			return nil, err
		}
		out = append(out, *ci)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Update(ctx context.Context, ci *models.ContactInfo) error {
	row, err := encodeContact(r.cipher, ci)
	if err != nil {
		return err
	}

	query :=
		`UPDATE contact_infos SET
			country_id = $3, city = $4, address_enc = $5, phone_enc = $6,
			cel_phone_enc = $7, emergency_name_enc = $8, emergency_phone_enc = $9,
			updated_at = now()
		 WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query,
		row.ID, row.UserID, row.CountryID, row.City, row.addressEnc, row.phoneEnc,
		row.celPhoneEnc, row.emergencyNameEnc, row.emergencyPhoneEnc)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
