package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrijs2005/singularity/internal/dbx"
	"github.com/dmitrijs2005/singularity/internal/server/auth"
	"github.com/dmitrijs2005/singularity/internal/server/metrics"
	"github.com/dmitrijs2005/singularity/internal/server/models"
	"github.com/dmitrijs2005/singularity/internal/server/repositories/auditlog"
	"github.com/dmitrijs2005/singularity/internal/server/repositories/contacts"
	"github.com/dmitrijs2005/singularity/internal/server/repositories/documents"
	"github.com/dmitrijs2005/singularity/internal/server/repositories/reference"
	"github.com/dmitrijs2005/singularity/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/singularity/internal/server/repositories/users"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func newMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

func staffCtx() context.Context {
	return auth.WithActor(context.Background(), auth.Actor{UserID: "staff-1", Staff: true})
}

func userCtx(id string) context.Context {
	return auth.WithActor(context.Background(), auth.Actor{UserID: id})
}

// --- users ---

type fakeUsers struct {
	users.Repository

	createIn  *models.User
	createErr error

	byEmail    *models.User
	byEmailArg string
	byID       *models.User
	getErr     error

	failedCalls  int
	failedThresh int
	failedUntil  time.Time
	lockedUntil  *time.Time
	failedErr    error

	successIP  string
	successErr error

	softDeleted   string
	softDeleteErr error
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.createIn = u
	out := *u
	out.ID = "u-1"
	return &out, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.byEmailArg = email
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.byEmail, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.byID, nil
}

func (f *fakeUsers) RecordFailedLogin(_ context.Context, _ string, threshold int, lockUntil time.Time) (int, *time.Time, error) {
	f.failedCalls++
	f.failedThresh = threshold
	f.failedUntil = lockUntil
	return f.failedCalls, f.lockedUntil, f.failedErr
}

func (f *fakeUsers) RecordSuccessfulLogin(_ context.Context, _ string, ip string, _ time.Time) error {
	f.successIP = ip
	return f.successErr
}

func (f *fakeUsers) SoftDelete(_ context.Context, id string) error {
	if f.softDeleteErr != nil {
		return f.softDeleteErr
	}
	f.softDeleted = id
	return nil
}

// --- reference ---

type fakeReference struct {
	reference.Repository

	countries     []models.Country
	documentTypes []models.DocumentType
	listCalls     int

	country    *models.Country
	getErr     error
	created    *models.Country
	createdDT  *models.DocumentType
	createErr  error
	docTypeOK  bool
	countryOK  bool
	existsErr  error
	existsArgs []int64
}

func (f *fakeReference) ListCountries(context.Context) ([]models.Country, error) {
	f.listCalls++
	return f.countries, nil
}

func (f *fakeReference) ListDocumentTypes(context.Context) ([]models.DocumentType, error) {
	f.listCalls++
	return f.documentTypes, nil
}

func (f *fakeReference) GetCountry(context.Context, int64) (*models.Country, error) {
	return f.country, f.getErr
}

func (f *fakeReference) GetDocumentType(context.Context, int64) (*models.DocumentType, error) {
	return nil, f.getErr
}

func (f *fakeReference) CountryExists(_ context.Context, id int64) (bool, error) {
	f.existsArgs = append(f.existsArgs, id)
	return f.countryOK, f.existsErr
}

func (f *fakeReference) DocumentTypeExists(_ context.Context, id int64) (bool, error) {
	f.existsArgs = append(f.existsArgs, id)
	return f.docTypeOK, f.existsErr
}

func (f *fakeReference) CreateCountry(_ context.Context, c *models.Country) (*models.Country, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = c
	out := *c
	out.ID = 7
	return &out, nil
}

func (f *fakeReference) CreateDocumentType(_ context.Context, dt *models.DocumentType) (*models.DocumentType, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.createdDT = dt
	out := *dt
	out.ID = 3
	return &out, nil
}

// --- documents / contacts ---

type fakeDocuments struct {
	documents.Repository

	created   *models.UserDocument
	createErr error
	list      []models.UserDocument
}

func (f *fakeDocuments) Create(_ context.Context, d *models.UserDocument) (*models.UserDocument, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = d
	out := *d
	out.ID = 11
	return &out, nil
}

func (f *fakeDocuments) ListByUser(context.Context, string) ([]models.UserDocument, error) {
	return f.list, nil
}

type fakeContacts struct {
	contacts.Repository

	created   *models.ContactInfo
	createErr error
	updated   *models.ContactInfo
	updateErr error
	list      []models.ContactInfo
}

func (f *fakeContacts) Create(_ context.Context, ci *models.ContactInfo) (*models.ContactInfo, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = ci
	out := *ci
	out.ID = 21
	return &out, nil
}

func (f *fakeContacts) Update(_ context.Context, ci *models.ContactInfo) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = ci
	return nil
}

func (f *fakeContacts) ListByUser(context.Context, string) ([]models.ContactInfo, error) {
	return f.list, nil
}

// --- audit log / refresh tokens ---

type fakeAuditLog struct {
	auditlog.Repository

	filter models.AuditFilter
	out    []models.AuditEntry
	err    error
}

func (f *fakeAuditLog) Query(_ context.Context, flt models.AuditFilter) ([]models.AuditEntry, error) {
	f.filter = flt
	return f.out, f.err
}

type fakeRefresh struct {
	refreshtokens.Repository

	created   []string
	expiresAt time.Time
	createErr error

	consumeOut *models.RefreshToken
	consumeErr error

	revoked   string
	revokeErr error
}

func (f *fakeRefresh) Create(_ context.Context, _ string, token string, expiresAt time.Time) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, token)
	f.expiresAt = expiresAt
	return nil
}

func (f *fakeRefresh) Consume(context.Context, string) (*models.RefreshToken, error) {
	return f.consumeOut, f.consumeErr
}

func (f *fakeRefresh) RevokeUser(_ context.Context, id string) error {
	f.revoked = id
	return f.revokeErr
}

// --- manager ---

type fakeRepoManager struct {
	u  *fakeUsers
	rf *fakeReference
	d  *fakeDocuments
	c  *fakeContacts
	a  *fakeAuditLog
	r  *fakeRefresh
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		u:  &fakeUsers{},
		rf: &fakeReference{docTypeOK: true, countryOK: true},
		d:  &fakeDocuments{},
		c:  &fakeContacts{},
		a:  &fakeAuditLog{},
		r:  &fakeRefresh{},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return m.u }
func (m *fakeRepoManager) Documents(dbx.DBTX) documents.Repository         { return m.d }
func (m *fakeRepoManager) Contacts(dbx.DBTX) contacts.Repository           { return m.c }
func (m *fakeRepoManager) Reference(dbx.DBTX) reference.Repository         { return m.rf }
func (m *fakeRepoManager) AuditLog(dbx.DBTX) auditlog.Repository           { return m.a }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.r }
