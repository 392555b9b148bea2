package admin

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/singularity/internal/dbx"
	"github.com/dmitrijs2005/singularity/internal/logging"
	"github.com/dmitrijs2005/singularity/internal/server/models"
	"github.com/dmitrijs2005/singularity/internal/server/repositories/reference"
	"github.com/dmitrijs2005/singularity/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/singularity/internal/server/repositories/users"
)

type fakeUsers struct {
	users.Repository
	created   *models.User
	createErr error
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = u
	out := *u
	out.ID = "su-1"
	return &out, nil
}

// fakeReference rejects duplicates the way the unique indexes do.
type fakeReference struct {
	reference.Repository
	codes map[string]bool
	names map[string]bool
	err   error
}

func newFakeReference() *fakeReference {
	return &fakeReference{codes: map[string]bool{}, names: map[string]bool{}}
}

func (f *fakeReference) CreateCountry(_ context.Context, c *models.Country) (*models.Country, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.codes[c.Code] {
		return nil, reference.ErrCountryCodeTaken
	}
	f.codes[c.Code] = true
	return c, nil
}

func (f *fakeReference) CreateDocumentType(_ context.Context, dt *models.DocumentType) (*models.DocumentType, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.names[dt.Name] {
		return nil, reference.ErrDocumentTypeTaken
	}
	f.names[dt.Name] = true
	return dt, nil
}

type fakeRepoManager struct {
	repomanager.RepositoryManager
	users        *fakeUsers
	reference    *fakeReference
	migrations   int
	migrationErr error
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error {
	m.migrations++
	return m.migrationErr
}

func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository         { return m.users }
func (m *fakeRepoManager) Reference(dbx.DBTX) reference.Repository { return m.reference }

type fakeRecorder struct {
	entries []models.AuditEntry
	err     error
}

func (r *fakeRecorder) RecordSync(_ context.Context, e models.AuditEntry) error {
	r.entries = append(r.entries, e)
	return r.err
}

var errBoom = errors.New("boom")

var fixedNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestTool(rm *fakeRepoManager, rec *fakeRecorder) *Tool {
	t := NewTool(nil, rm, rec, logging.Nop{})
	t.hashPassword = func(p string) (string, error) { return "hashed:" + p, nil }
	t.now = func() time.Time { return fixedNow }
	return t
}
