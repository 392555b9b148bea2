// Package repomanager provides the PostgreSQL RepositoryManager: repository
// constructors sharing one field cipher, plus goose migrations.
package repomanager

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/singularity/internal/cryptox"
	"github.com/dmitrijs2005/singularity/internal/dbx"
	"github.com/dmitrijs2005/singularity/internal/server/migrations"
	"github.com/dmitrijs2005/singularity/internal/server/repositories/auditlog"
	"github.com/dmitrijs2005/singularity/internal/server/repositories/contacts"
	"github.com/dmitrijs2005/singularity/internal/server/repositories/documents"
	"github.com/dmitrijs2005/singularity/internal/server/repositories/reference"
	"github.com/dmitrijs2005/singularity/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/singularity/internal/server/repositories/users"
)

type PostgresRepositoryManager struct {
	cipher cryptox.FieldCipher
}

func NewPostgresRepositoryManager(c cryptox.FieldCipher) *PostgresRepositoryManager {
	return &PostgresRepositoryManager{cipher: c}
}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db, m.cipher)
}

func (m *PostgresRepositoryManager) Documents(db dbx.DBTX) documents.Repository {
	return documents.NewPostgresRepository(db, m.cipher)
}

func (m *PostgresRepositoryManager) Contacts(db dbx.DBTX) contacts.Repository {
	return contacts.NewPostgresRepository(db, m.cipher)
}

func (m *PostgresRepositoryManager) Reference(db dbx.DBTX) reference.Repository {
	return reference.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) AuditLog(db dbx.DBTX) auditlog.Repository {
	return auditlog.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}
