package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/singularity/internal/common"
	"github.com/dmitrijs2005/singularity/internal/server/models"
	"github.com/dmitrijs2005/singularity/internal/server/repositories/repomanager"
)

// Profile is the caller's own account with its decrypted records.
type Profile struct {
	User      *models.User
	Documents []models.UserDocument
	Contacts  []models.ContactInfo
}

type ProfileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewProfileService(db *sql.DB, m repomanager.RepositoryManager) *ProfileService {
	return &ProfileService{db: db, repomanager: m}
}

// Me loads the profile of the authenticated actor.
func (s *ProfileService) Me(ctx context.Context) (*Profile, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}

	u, err := s.repomanager.Users(s.db).GetByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}

	docs, err := s.repomanager.Documents(s.db).ListByUser(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	contacts, err := s.repomanager.Contacts(s.db).ListByUser(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return &Profile{User: u, Documents: docs, Contacts: contacts}, nil
}

// UpdateContactInfo rewrites one contact of the actor with the same format
// rules as registration.
func (s *ProfileService) UpdateContactInfo(ctx context.Context, contactID int64, in ContactFields) (*models.ContactInfo, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateContact(in); err != nil {
		return nil, err
	}

	ok, err := s.repomanager.Reference(s.db).CountryExists(ctx, in.CountryID)
	if err != nil {
		return nil, fmt.Errorf("check country: %w", err)
	}
	if !ok {
		return nil, common.NewValidationError("country", msgNoCountry)
	}

	ci := contactModel(actor.UserID, in)
	ci.ID = contactID
	if err := s.repomanager.Contacts(s.db).Update(ctx, ci); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewValidationError("id", "contact info not found")
		}
		return nil, err
	}
	return ci, nil
}
