package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/singularity/internal/server/models"
	"github.com/dmitrijs2005/singularity/internal/server/repositories/users"
	"github.com/dmitrijs2005/singularity/internal/server/services"
)

const resourceUser = "User"

// SuperuserInput describes the operator account to create.
type SuperuserInput struct {
	Email    string
	Username string
	Password string
	Name     string
	LastName string
}

// CreateSuperuser stores an active staff superuser and records the creation
// in the audit log with the new account as actor.
func (t *Tool) CreateSuperuser(ctx context.Context, in SuperuserInput) (*models.User, error) {
	email := services.NormalizeEmail(in.Email)
	username := strings.TrimSpace(in.Username)
	if email == "" || username == "" {
		return nil, errors.New("email and username are required")
	}
	if in.Password == "" {
		return nil, errors.New("password is required")
	}

	hash, err := t.hashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := t.repomanager.Users(t.db).Create(ctx, &models.User{
		Email:         email,
		Username:      username,
		PasswordHash:  hash,
		Name:          in.Name,
		LastName:      in.LastName,
		IsActive:      true,
		IsStaff:       true,
		IsSuperuser:   true,
		EmailVerified: true,
	})
	switch {
	case errors.Is(err, users.ErrEmailTaken), errors.Is(err, users.ErrUsernameTaken):
		return nil, err
	case err != nil:
		return nil, fmt.Errorf("create user: %w", err)
	}

	details, _ := json.Marshal(map[string]string{"command": "create-superuser"})
	entry := models.AuditEntry{
		Timestamp:    t.now().UTC(),
		ActorID:      u.ID,
		Action:       models.ActionCreate,
		ResourceType: resourceUser,
		ResourceID:   u.ID,
		UserAgent:    "singularity-admin",
		Success:      true,
		Details:      details,
	}
	if err := t.recorder.RecordSync(ctx, entry); err != nil {
		t.log.Warn(ctx, "superuser audit entry not written", "user_id", u.ID, "error", err)
	}

	t.log.Info(ctx, "superuser created", "user_id", u.ID, "username", u.Username)
	return u, nil
}
