package dbx

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	name, ok := UniqueViolation(err)
	assert.True(t, ok)
	assert.Equal(t, "users_email_key", name)

	_, ok = ForeignKeyViolation(err)
	assert.False(t, ok)
}

func TestForeignKeyViolation(t *testing.T) {
	err := &pgconn.PgError{Code: "23503", ConstraintName: "user_documents_document_type_id_fkey"}

	name, ok := ForeignKeyViolation(err)
	assert.True(t, ok)
	assert.Equal(t, "user_documents_document_type_id_fkey", name)
}

func TestViolation_OtherErrors(t *testing.T) {
	for _, err := range []error{nil, errors.New("boom"), &pgconn.PgError{Code: "40001"}} {
		_, ok := UniqueViolation(err)
		assert.False(t, ok)
	}
}
