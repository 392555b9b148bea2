package api

import (
	"context"

	graphql "github.com/graph-gophers/graphql-go"

	"github.com/dmitrijs2005/singularity/internal/server/models"
)

const dateLayout = "2006-01-02"

type countryResolver struct{ c models.Country }

func (r *countryResolver) ID() graphql.ID      { return formatID(r.c.ID) }
func (r *countryResolver) CountryCode() string { return r.c.Code }
func (r *countryResolver) CountryName() string { return r.c.Name }

type documentTypeResolver struct{ dt models.DocumentType }

func (r *documentTypeResolver) ID() graphql.ID { return formatID(r.dt.ID) }
func (r *documentTypeResolver) Name() string   { return r.dt.Name }

type userResolver struct {
	u        *models.User
	docs     []models.UserDocument
	contacts []models.ContactInfo
	catalog  Catalog
}

func (r *userResolver) ID() graphql.ID      { return graphql.ID(r.u.ID) }
func (r *userResolver) Email() string       { return r.u.Email }
func (r *userResolver) Username() string    { return r.u.Username }
func (r *userResolver) Name() string        { return r.u.Name }
func (r *userResolver) LastName() string    { return r.u.LastName }
func (r *userResolver) IsActive() bool      { return r.u.IsActive }
func (r *userResolver) IsStaff() bool       { return r.u.IsStaff }
func (r *userResolver) IsTemporal() bool    { return r.u.IsTemporal }
func (r *userResolver) IsMilitar() bool     { return r.u.IsMilitar }
func (r *userResolver) EmailVerified() bool { return r.u.EmailVerified }
func (r *userResolver) TimeCreate() graphql.Time {
	return graphql.Time{Time: r.u.CreatedAt}
}

func (r *userResolver) LastLogin() *graphql.Time {
	if r.u.LastLogin == nil {
		return nil
	}
	return &graphql.Time{Time: *r.u.LastLogin}
}

func (r *userResolver) Documents() []*userDocumentResolver {
	out := make([]*userDocumentResolver, len(r.docs))
	for i := range r.docs {
		out[i] = &userDocumentResolver{d: r.docs[i], catalog: r.catalog}
	}
	return out
}

func (r *userResolver) Contacts() []*contactInfoResolver {
	out := make([]*contactInfoResolver, len(r.contacts))
	for i := range r.contacts {
		out[i] = &contactInfoResolver{c: r.contacts[i], catalog: r.catalog}
	}
	return out
}

type userDocumentResolver struct {
	d       models.UserDocument
	catalog Catalog
}

func (r *userDocumentResolver) ID() graphql.ID          { return formatID(r.d.ID) }
func (r *userDocumentResolver) DocumentNumber() string  { return r.d.Number }
func (r *userDocumentResolver) PlaceExpedition() string { return r.d.PlaceExpedition }

func (r *userDocumentResolver) DateExpedition() *string {
	if r.d.DateExpedition == nil {
		return nil
	}
	s := r.d.DateExpedition.Format(dateLayout)
	return &s
}

func (r *userDocumentResolver) DocumentType(ctx context.Context) (*documentTypeResolver, error) {
	dt, err := r.catalog.DocumentType(ctx, r.d.DocumentTypeID)
	if err != nil || dt == nil {
		return nil, err
	}
	return &documentTypeResolver{dt: *dt}, nil
}

type contactInfoResolver struct {
	c       models.ContactInfo
	catalog Catalog
}

func (r *contactInfoResolver) ID() graphql.ID         { return formatID(r.c.ID) }
func (r *contactInfoResolver) City() string           { return r.c.City }
func (r *contactInfoResolver) Address() string        { return r.c.Address }
func (r *contactInfoResolver) Phone() string          { return r.c.Phone }
func (r *contactInfoResolver) CelPhone() string       { return r.c.CelPhone }
func (r *contactInfoResolver) EmergencyName() string  { return r.c.EmergencyName }
func (r *contactInfoResolver) EmergencyPhone() string { return r.c.EmergencyPhone }

func (r *contactInfoResolver) Country(ctx context.Context) (*countryResolver, error) {
	c, err := r.catalog.Country(ctx, r.c.CountryID)
	if err != nil || c == nil {
		return nil, err
	}
	return &countryResolver{c: *c}, nil
}

type auditEntryResolver struct{ e models.AuditEntry }

func (r *auditEntryResolver) ID() graphql.ID          { return formatID(r.e.ID) }
func (r *auditEntryResolver) Timestamp() graphql.Time { return graphql.Time{Time: r.e.Timestamp} }
func (r *auditEntryResolver) ActorID() graphql.ID     { return graphql.ID(r.e.ActorID) }
func (r *auditEntryResolver) Action() string          { return string(r.e.Action) }
func (r *auditEntryResolver) ResourceType() string    { return r.e.ResourceType }
func (r *auditEntryResolver) ResourceID() string      { return r.e.ResourceID }
func (r *auditEntryResolver) IPAddress() string       { return r.e.IPAddress }
func (r *auditEntryResolver) UserAgent() string       { return r.e.UserAgent }
func (r *auditEntryResolver) Success() bool           { return r.e.Success }
func (r *auditEntryResolver) Details() string         { return string(r.e.Details) }

// payload carries the success/message pair every mutation returns.
type payload struct {
	success bool
	message string
}

func (p *payload) Success() bool   { return p.success }
func (p *payload) Message() string { return p.message }

type registerUserPayload struct {
	payload
	user *userResolver
}

func (p *registerUserPayload) User() *userResolver { return p.user }

type createCountryPayload struct {
	payload
	country *countryResolver
}

func (p *createCountryPayload) Country() *countryResolver { return p.country }

type createTypeDocumentPayload struct {
	payload
	typeDocument *documentTypeResolver
}

func (p *createTypeDocumentPayload) TypeDocument() *documentTypeResolver { return p.typeDocument }

type tokenAuthPayload struct {
	payload
	token        *string
	refreshToken *string
}

func (p *tokenAuthPayload) Token() *string        { return p.token }
func (p *tokenAuthPayload) RefreshToken() *string { return p.refreshToken }

type verifyTokenPayload struct {
	payload
	userID *graphql.ID
}

func (p *verifyTokenPayload) UserID() *graphql.ID { return p.userID }

type updateContactInfoPayload struct {
	payload
	contactInfo *contactInfoResolver
}

func (p *updateContactInfoPayload) ContactInfo() *contactInfoResolver { return p.contactInfo }

type exportAuditLogPayload struct {
	payload
	url   *string
	count int32
}

func (p *exportAuditLogPayload) URL() *string { return p.url }
func (p *exportAuditLogPayload) Count() int32 { return p.count }
