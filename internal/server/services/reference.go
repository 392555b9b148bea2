package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/singularity/internal/common"
	"github.com/dmitrijs2005/singularity/internal/logging"
	"github.com/dmitrijs2005/singularity/internal/server/cache"
	"github.com/dmitrijs2005/singularity/internal/server/models"
	"github.com/dmitrijs2005/singularity/internal/server/repositories/reference"
	"github.com/dmitrijs2005/singularity/internal/server/repositories/repomanager"
)

const (
	keyCountries     = "countries"
	keyDocumentTypes = "document_types"
)

// ReferenceService serves the country and document type catalogs. Lists are
// cached; a cache that fails is logged and bypassed.
type ReferenceService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cache       cache.Cache
	ttl         time.Duration
	log         logging.Logger
}

func NewReferenceService(db *sql.DB, m repomanager.RepositoryManager, c cache.Cache, ttl time.Duration, log logging.Logger) *ReferenceService {
	return &ReferenceService{db: db, repomanager: m, cache: c, ttl: ttl, log: log}
}

func (s *ReferenceService) Countries(ctx context.Context) ([]models.Country, error) {
	return cachedList(ctx, s, keyCountries, s.repo().ListCountries)
}

func (s *ReferenceService) DocumentTypes(ctx context.Context) ([]models.DocumentType, error) {
	return cachedList(ctx, s, keyDocumentTypes, s.repo().ListDocumentTypes)
}

// Country returns nil without error when id is unknown.
func (s *ReferenceService) Country(ctx context.Context, id int64) (*models.Country, error) {
	c, err := s.repo().GetCountry(ctx, id)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, nil
	}
	return c, err
}

// DocumentType returns nil without error when id is unknown.
func (s *ReferenceService) DocumentType(ctx context.Context, id int64) (*models.DocumentType, error) {
	dt, err := s.repo().GetDocumentType(ctx, id)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, nil
	}
	return dt, err
}

// CreateCountry is staff only.
func (s *ReferenceService) CreateCountry(ctx context.Context, code, name string) (*models.Country, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if err := required([2]string{"country_code", code}, [2]string{"country_name", name}); err != nil {
		return nil, err
	}

	c, err := s.repo().CreateCountry(ctx, &models.Country{Code: code, Name: strings.TrimSpace(name)})
	if errors.Is(err, reference.ErrCountryCodeTaken) {
		return nil, common.NewValidationError("country_code", fmt.Sprintf("a country with code %s already exists", code))
	}
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, keyCountries)
	return c, nil
}

// CreateDocumentType is staff only.
func (s *ReferenceService) CreateDocumentType(ctx context.Context, name string) (*models.DocumentType, error) {
	if _, err := requireStaff(ctx); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if err := required([2]string{"name", name}); err != nil {
		return nil, err
	}

	dt, err := s.repo().CreateDocumentType(ctx, &models.DocumentType{Name: name})
	if errors.Is(err, reference.ErrDocumentTypeTaken) {
		return nil, common.NewValidationError("name", fmt.Sprintf("a document type named %s already exists", name))
	}
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, keyDocumentTypes)
	return dt, nil
}

func (s *ReferenceService) repo() reference.Repository {
	return s.repomanager.Reference(s.db)
}

func (s *ReferenceService) invalidate(ctx context.Context, key string) {
	if err := s.cache.Delete(ctx, key); err != nil {
		s.log.Warn(ctx, "cache invalidation failed", "key", key, "error", err)
	}
}

func cachedList[T any](ctx context.Context, s *ReferenceService, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	b, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		var out []T
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		s.log.Warn(ctx, "cached value unreadable", "key", key)
	case !errors.Is(err, cache.ErrMiss):
		s.log.Warn(ctx, "cache read failed", "key", key, "error", err)
	}

	out, err := load(ctx)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(out); err == nil {
		if err := s.cache.Set(ctx, key, b, s.ttl); err != nil {
			s.log.Warn(ctx, "cache write failed", "key", key, "error", err)
		}
	}
	return out, nil
}
