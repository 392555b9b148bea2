package api

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/singularity/internal/common"
	"github.com/dmitrijs2005/singularity/internal/server/auth"
	"github.com/dmitrijs2005/singularity/internal/server/models"
	"github.com/dmitrijs2005/singularity/internal/server/services"
)

type fakeRegistrar struct {
	in  services.RegistrationInput
	out *services.Registration
	err error
}

func (f *fakeRegistrar) Register(_ context.Context, in services.RegistrationInput) (*services.Registration, error) {
	f.in = in
	return f.out, f.err
}

type fakeAuth struct {
	ip      string
	pair    *services.TokenPair
	err     error
	claims  *auth.Claims
	deleted string
}

func (f *fakeAuth) TokenAuth(_ context.Context, _, _, ip string) (*services.TokenPair, error) {
	f.ip = ip
	return f.pair, f.err
}

func (f *fakeAuth) VerifyToken(string) (*auth.Claims, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.claims, nil
}

func (f *fakeAuth) RefreshToken(context.Context, string) (*services.TokenPair, error) {
	return f.pair, f.err
}

func (f *fakeAuth) DeleteMe(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = id
	return nil
}

type fakeProfiles struct {
	profile *services.Profile
	err     error

	contactID int64
	fields    services.ContactFields
}

func (f *fakeProfiles) Me(ctx context.Context) (*services.Profile, error) {
	if _, ok := auth.ActorFrom(ctx); !ok {
		return nil, errUnauthorized
	}
	return f.profile, f.err
}

func (f *fakeProfiles) UpdateContactInfo(_ context.Context, id int64, in services.ContactFields) (*models.ContactInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.contactID, f.fields = id, in
	return &models.ContactInfo{ID: id, CountryID: in.CountryID, Address: in.Address, Phone: in.Phone}, nil
}

type fakeCatalog struct {
	countries []models.Country
	types     []models.DocumentType
	err       error
}

func (f *fakeCatalog) Countries(context.Context) ([]models.Country, error) { return f.countries, f.err }
func (f *fakeCatalog) DocumentTypes(context.Context) ([]models.DocumentType, error) {
	return f.types, f.err
}

func (f *fakeCatalog) Country(_ context.Context, id int64) (*models.Country, error) {
	for _, c := range f.countries {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, f.err
}

func (f *fakeCatalog) DocumentType(_ context.Context, id int64) (*models.DocumentType, error) {
	for _, dt := range f.types {
		if dt.ID == id {
			return &dt, nil
		}
	}
	return nil, f.err
}

func (f *fakeCatalog) CreateCountry(_ context.Context, code, name string) (*models.Country, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Country{ID: 2, Code: code, Name: name}, nil
}

func (f *fakeCatalog) CreateDocumentType(_ context.Context, name string) (*models.DocumentType, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.DocumentType{ID: 2, Name: name}, nil
}

type fakeAudit struct {
	filter  models.AuditFilter
	entries []models.AuditEntry
	export  *services.AuditExport
	err     error
}

func (f *fakeAudit) Entries(ctx context.Context, flt models.AuditFilter) ([]models.AuditEntry, error) {
	a, ok := auth.ActorFrom(ctx)
	if !ok || !a.Staff {
		return nil, errForbidden
	}
	f.filter = flt
	return f.entries, f.err
}

func (f *fakeAudit) Export(context.Context, time.Time, time.Time) (*services.AuditExport, error) {
	return f.export, f.err
}

type sinkFake struct {
	mu      sync.Mutex
	entries []models.AuditEntry
}

func (s *sinkFake) Enqueue(e models.AuditEntry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return true
}

func (s *sinkFake) all() []models.AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.AuditEntry(nil), s.entries...)
}

var (
	errUnauthorized = common.ErrorUnauthorized
	errForbidden    = common.ErrForbidden
)
