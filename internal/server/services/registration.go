// Package services contains the server-side use cases: registration,
// authentication, profile, reference data and audit queries.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/singularity/internal/common"
	"github.com/dmitrijs2005/singularity/internal/cryptox"
	"github.com/dmitrijs2005/singularity/internal/dbx"
	"github.com/dmitrijs2005/singularity/internal/logging"
	"github.com/dmitrijs2005/singularity/internal/server/metrics"
	"github.com/dmitrijs2005/singularity/internal/server/models"
	"github.com/dmitrijs2005/singularity/internal/server/repositories/documents"
	"github.com/dmitrijs2005/singularity/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/singularity/internal/server/repositories/users"
)

const (
	msgEmailTaken       = "email already registered"
	msgUsernameTaken    = "username already registered"
	msgDocumentTaken    = "document already registered"
	msgNoDocumentType   = "document type does not exist"
	msgNoCountry        = "country does not exist"
	MsgRegistered       = "user registered successfully"
	MsgRegistrationFail = "registration failed"
)

// RegistrationInput is everything a new account needs.
type RegistrationInput struct {
	Email     string
	Username  string
	Password  string
	Name      string
	LastName  string
	IsMilitar bool

	DocumentTypeID          int64
	DocumentNumber          string
	DocumentExpeditionPlace string
	DocumentExpeditionDate  *time.Time

	Contact ContactFields
}

// Registration is the aggregate created by Register.
type Registration struct {
	User     *models.User
	Document *models.UserDocument
	Contact  *models.ContactInfo
}

type RegistrationService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	metrics     *metrics.Metrics
	log         logging.Logger

	hashPassword func(string) (string, error)
}

func NewRegistrationService(db *sql.DB, m repomanager.RepositoryManager, mx *metrics.Metrics, log logging.Logger) *RegistrationService {
	return &RegistrationService{
		db:           db,
		repomanager:  m,
		metrics:      mx,
		log:          log,
		hashPassword: cryptox.HashPassword,
	}
}

// Register validates in, then creates the user, its document and its contact
// in one transaction. Rejections are *common.ValidationError; nothing is
// left behind when any step fails.
func (s *RegistrationService) Register(ctx context.Context, in RegistrationInput) (*Registration, error) {
	reg, err := s.register(ctx, in)
	switch {
	case err == nil:
		s.metrics.IncRegistration("success")
	case common.IsValidation(err):
		s.metrics.IncRegistration("invalid")
	default:
		s.metrics.IncRegistration("error")
		s.log.Error(ctx, "registration failed", "error", err)
	}
	return reg, err
}

func (s *RegistrationService) register(ctx context.Context, in RegistrationInput) (*Registration, error) {
	if err := required(
		[2]string{"email", in.Email},
		[2]string{"username", in.Username},
		[2]string{"password", in.Password},
		[2]string{"document_number", in.DocumentNumber},
	); err != nil {
		return nil, err
	}
	if err := validateContact(in.Contact); err != nil {
		return nil, err
	}

	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	reg := &Registration{}
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		u, err := s.repomanager.Users(tx).Create(ctx, &models.User{
			Email:        NormalizeEmail(in.Email),
			Username:     in.Username,
			PasswordHash: hash,
			Name:         in.Name,
			LastName:     in.LastName,
			IsMilitar:    in.IsMilitar,
			IsActive:     true,
		})
		switch {
		case errors.Is(err, users.ErrEmailTaken):
			return common.NewValidationError("email", msgEmailTaken)
		case errors.Is(err, users.ErrUsernameTaken):
			return common.NewValidationError("username", msgUsernameTaken)
		case err != nil:
			return fmt.Errorf("create user: %w", err)
		}
		reg.User = u

		ref := s.repomanager.Reference(tx)
		ok, err := ref.DocumentTypeExists(ctx, in.DocumentTypeID)
		if err != nil {
			return fmt.Errorf("check document type: %w", err)
		}
		if !ok {
			return common.NewValidationError("document_type", msgNoDocumentType)
		}
		ok, err = ref.CountryExists(ctx, in.Contact.CountryID)
		if err != nil {
			return fmt.Errorf("check country: %w", err)
		}
		if !ok {
			return common.NewValidationError("country", msgNoCountry)
		}

		d, err := s.repomanager.Documents(tx).Create(ctx, &models.UserDocument{
			UserID:          u.ID,
			DocumentTypeID:  in.DocumentTypeID,
			Number:          in.DocumentNumber,
			PlaceExpedition: in.DocumentExpeditionPlace,
			DateExpedition:  in.DocumentExpeditionDate,
		})
		if errors.Is(err, documents.ErrDocumentTaken) {
			return common.NewValidationError("document_number", msgDocumentTaken)
		}
		if err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		reg.Document = d

		c, err := s.repomanager.Contacts(tx).Create(ctx, contactModel(u.ID, in.Contact))
		if err != nil {
			return fmt.Errorf("create contact: %w", err)
		}
		reg.Contact = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

func contactModel(userID string, c ContactFields) *models.ContactInfo {
	return &models.ContactInfo{
		UserID:         userID,
		CountryID:      c.CountryID,
		City:           c.City,
		Address:        c.Address,
		Phone:          c.Phone,
		CelPhone:       c.CelPhone,
		EmergencyName:  c.EmergencyName,
		EmergencyPhone: c.EmergencyPhone,
	}
}
