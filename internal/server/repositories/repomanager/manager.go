package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/singularity/internal/dbx"
	"github.com/dmitrijs2005/singularity/internal/server/repositories/auditlog"
	"github.com/dmitrijs2005/singularity/internal/server/repositories/contacts"
	"github.com/dmitrijs2005/singularity/internal/server/repositories/documents"
	"github.com/dmitrijs2005/singularity/internal/server/repositories/reference"
	"github.com/dmitrijs2005/singularity/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/singularity/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so the same code
// runs against the pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Documents(db dbx.DBTX) documents.Repository
	Contacts(db dbx.DBTX) contacts.Repository
	Reference(db dbx.DBTX) reference.Repository
	AuditLog(db dbx.DBTX) auditlog.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
