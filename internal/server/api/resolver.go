package api

import (
	"context"
	_ "embed"
	"errors"
	"strconv"
	"time"

	graphql "github.com/graph-gophers/graphql-go"

	"github.com/dmitrijs2005/singularity/internal/common"
	"github.com/dmitrijs2005/singularity/internal/logging"
	"github.com/dmitrijs2005/singularity/internal/server/auth"
	"github.com/dmitrijs2005/singularity/internal/server/models"
	"github.com/dmitrijs2005/singularity/internal/server/services"
)

//go:embed schema.graphql
var schemaSDL string

type Registrar interface {
	Register(ctx context.Context, in services.RegistrationInput) (*services.Registration, error)
}

type Authenticator interface {
	TokenAuth(ctx context.Context, email, password, ip string) (*services.TokenPair, error)
	VerifyToken(token string) (*auth.Claims, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	DeleteMe(ctx context.Context, userID string) error
}

type Profiles interface {
	Me(ctx context.Context) (*services.Profile, error)
	UpdateContactInfo(ctx context.Context, contactID int64, in services.ContactFields) (*models.ContactInfo, error)
}

type Catalog interface {
	Countries(ctx context.Context) ([]models.Country, error)
	DocumentTypes(ctx context.Context) ([]models.DocumentType, error)
	Country(ctx context.Context, id int64) (*models.Country, error)
	DocumentType(ctx context.Context, id int64) (*models.DocumentType, error)
	CreateCountry(ctx context.Context, code, name string) (*models.Country, error)
	CreateDocumentType(ctx context.Context, name string) (*models.DocumentType, error)
}

type AuditLog interface {
	Entries(ctx context.Context, f models.AuditFilter) ([]models.AuditEntry, error)
	Export(ctx context.Context, from, to time.Time) (*services.AuditExport, error)
}

// Resolver is the root of both the query and the mutation types.
type Resolver struct {
	Registrar Registrar
	Auth      Authenticator
	Profiles  Profiles
	Catalog   Catalog
	Audit     AuditLog
	Log       logging.Logger
}

// NewSchema parses the embedded SDL against r.
func NewSchema(r *Resolver) (*graphql.Schema, error) {
	return graphql.ParseSchema(schemaSDL, r)
}

var (
	errLoginRequired    = errors.New("authentication required")
	errPermissionDenied = errors.New("permission denied")
	errInternal         = errors.New("internal error")
)

// publicError turns a service error into something safe to return in a
// GraphQL error. Unclassified errors are logged and masked.
func (r *Resolver) publicError(ctx context.Context, op string, err error) error {
	if msg, ok := common.ValidationMessage(err); ok {
		return errors.New(msg)
	}
	switch {
	case errors.Is(err, common.ErrorUnauthorized):
		return errLoginRequired
	case errors.Is(err, common.ErrForbidden):
		return errPermissionDenied
	case errors.Is(err, common.ErrAccountLocked),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired):
		return err
	}
	r.Log.Error(ctx, "resolver failed", "operation", op, "error", err)
	return errInternal
}

func parseID(field string, id graphql.ID) (int64, error) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil || n <= 0 {
		return 0, common.NewValidationError(field, "invalid "+field+" id")
	}
	return n, nil
}

func formatID(id int64) graphql.ID {
	return graphql.ID(strconv.FormatInt(id, 10))
}

func optTime(t *graphql.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.Time
}

func optString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
