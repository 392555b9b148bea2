package api

import (
	"context"
	"time"

	graphql "github.com/graph-gophers/graphql-go"

	"github.com/dmitrijs2005/singularity/internal/common"
	"github.com/dmitrijs2005/singularity/internal/server/audit"
	"github.com/dmitrijs2005/singularity/internal/server/auth"
	"github.com/dmitrijs2005/singularity/internal/server/models"
	"github.com/dmitrijs2005/singularity/internal/server/services"
)

func done(msg string) payload { return payload{success: true, message: msg} }

// fail marks the audited request as failed and returns a payload with the
// public form of err.
func (r *Resolver) fail(ctx context.Context, op string, err error) payload {
	audit.MarkFailed(ctx)
	return payload{message: r.publicError(ctx, op, err).Error()}
}

type registrationInput struct {
	Email                   string
	Username                string
	Password                string
	LastName                string
	Name                    string
	IsMilitar               bool
	DocumentType            graphql.ID
	DocumentNumber          string
	DocumentExpeditionPlace string
	DocumentExpeditionDate  string
	Country                 graphql.ID
	Address                 string
	City                    string
	Phone                   string
	CelPhone                string
	EmergencyName           string
	EmergencyPhone          string
}

func (in registrationInput) toService() (services.RegistrationInput, error) {
	docType, err := parseID("document_type", in.DocumentType)
	if err != nil {
		return services.RegistrationInput{}, err
	}
	country, err := parseID("country", in.Country)
	if err != nil {
		return services.RegistrationInput{}, err
	}
	issued, err := time.Parse(dateLayout, in.DocumentExpeditionDate)
	if err != nil {
		return services.RegistrationInput{}, common.NewValidationError("document_expedition_date", "document expedition date must be YYYY-MM-DD")
	}

	return services.RegistrationInput{
		Email:                   in.Email,
		Username:                in.Username,
		Password:                in.Password,
		Name:                    in.Name,
		LastName:                in.LastName,
		IsMilitar:               in.IsMilitar,
		DocumentTypeID:          docType,
		DocumentNumber:          in.DocumentNumber,
		DocumentExpeditionPlace: in.DocumentExpeditionPlace,
		DocumentExpeditionDate:  &issued,
		Contact: services.ContactFields{
			CountryID:      country,
			Address:        in.Address,
			City:           in.City,
			Phone:          in.Phone,
			CelPhone:       in.CelPhone,
			EmergencyName:  in.EmergencyName,
			EmergencyPhone: in.EmergencyPhone,
		},
	}, nil
}

func (r *Resolver) RegisterUser(ctx context.Context, args struct{ Input registrationInput }) *registerUserPayload {
	in, err := args.Input.toService()
	if err != nil {
		return &registerUserPayload{payload: r.fail(ctx, "registerUser", err)}
	}

	reg, err := r.Registrar.Register(ctx, in)
	if err != nil {
		p := r.fail(ctx, "registerUser", err)
		if p.message == errInternal.Error() {
			p.message = services.MsgRegistrationFail
		}
		return &registerUserPayload{payload: p}
	}

	return &registerUserPayload{
		payload: done(services.MsgRegistered),
		user: &userResolver{
			u:        reg.User,
			docs:     []models.UserDocument{*reg.Document},
			contacts: []models.ContactInfo{*reg.Contact},
			catalog:  r.Catalog,
		},
	}
}

func (r *Resolver) CreateCountry(ctx context.Context, args struct {
	CountryCode string
	CountryName string
}) *createCountryPayload {
	c, err := r.Catalog.CreateCountry(ctx, args.CountryCode, args.CountryName)
	if err != nil {
		return &createCountryPayload{payload: r.fail(ctx, "createCountry", err)}
	}
	return &createCountryPayload{payload: done("country created"), country: &countryResolver{c: *c}}
}

func (r *Resolver) CreateTypeDocument(ctx context.Context, args struct{ Name string }) *createTypeDocumentPayload {
	dt, err := r.Catalog.CreateDocumentType(ctx, args.Name)
	if err != nil {
		return &createTypeDocumentPayload{payload: r.fail(ctx, "createTypeDocument", err)}
	}
	return &createTypeDocumentPayload{payload: done("document type created"), typeDocument: &documentTypeResolver{dt: *dt}}
}

func (r *Resolver) TokenAuth(ctx context.Context, args struct {
	Email    string
	Password string
}) *tokenAuthPayload {
	pair, err := r.Auth.TokenAuth(ctx, args.Email, args.Password, clientIPFrom(ctx))
	if err != nil {
		p := r.fail(ctx, "tokenAuth", err)
		if p.message == errLoginRequired.Error() {
			p.message = "invalid credentials"
		}
		return &tokenAuthPayload{payload: p}
	}
	return &tokenAuthPayload{payload: done("authenticated"), token: &pair.AccessToken, refreshToken: &pair.RefreshToken}
}

func (r *Resolver) VerifyToken(ctx context.Context, args struct{ Token string }) *verifyTokenPayload {
	claims, err := r.Auth.VerifyToken(args.Token)
	if err != nil {
		return &verifyTokenPayload{payload: r.fail(ctx, "verifyToken", err)}
	}
	id := graphql.ID(claims.UserID)
	return &verifyTokenPayload{payload: done("token is valid"), userID: &id}
}

func (r *Resolver) RefreshToken(ctx context.Context, args struct{ RefreshToken string }) *tokenAuthPayload {
	pair, err := r.Auth.RefreshToken(ctx, args.RefreshToken)
	if err != nil {
		return &tokenAuthPayload{payload: r.fail(ctx, "refreshToken", err)}
	}
	return &tokenAuthPayload{payload: done("token refreshed"), token: &pair.AccessToken, refreshToken: &pair.RefreshToken}
}

type contactInfoInput struct {
	ID             graphql.ID
	Country        graphql.ID
	Address        string
	City           string
	Phone          string
	CelPhone       string
	EmergencyName  string
	EmergencyPhone string
}

func (r *Resolver) UpdateContactInfo(ctx context.Context, args struct{ Input contactInfoInput }) *updateContactInfoPayload {
	in := args.Input
	id, err := parseID("contact", in.ID)
	if err != nil {
		return &updateContactInfoPayload{payload: r.fail(ctx, "updateContactInfo", err)}
	}
	country, err := parseID("country", in.Country)
	if err != nil {
		return &updateContactInfoPayload{payload: r.fail(ctx, "updateContactInfo", err)}
	}

	ci, err := r.Profiles.UpdateContactInfo(ctx, id, services.ContactFields{
		CountryID:      country,
		Address:        in.Address,
		City:           in.City,
		Phone:          in.Phone,
		CelPhone:       in.CelPhone,
		EmergencyName:  in.EmergencyName,
		EmergencyPhone: in.EmergencyPhone,
	})
	if err != nil {
		return &updateContactInfoPayload{payload: r.fail(ctx, "updateContactInfo", err)}
	}
	return &updateContactInfoPayload{
		payload:     done("contact info updated"),
		contactInfo: &contactInfoResolver{c: *ci, catalog: r.Catalog},
	}
}

func (r *Resolver) DeleteMe(ctx context.Context) *payload {
	actor, found := auth.ActorFrom(ctx)
	if !found {
		p := r.fail(ctx, "deleteMe", common.ErrorUnauthorized)
		return &p
	}
	if err := r.Auth.DeleteMe(ctx, actor.UserID); err != nil {
		p := r.fail(ctx, "deleteMe", err)
		return &p
	}
	p := done("account deleted")
	return &p
}

func (r *Resolver) ExportAuditLog(ctx context.Context, args struct {
	From *graphql.Time
	To   *graphql.Time
}) *exportAuditLogPayload {
	res, err := r.Audit.Export(ctx, optTime(args.From), optTime(args.To))
	if err != nil {
		return &exportAuditLogPayload{payload: r.fail(ctx, "exportAuditLog", err)}
	}
	msg := "audit log exported"
	if res.Truncated {
		msg = "audit log exported; only the newest entries were included"
	}
	return &exportAuditLogPayload{payload: done(msg), url: &res.URL, count: int32(res.Count)}
}
