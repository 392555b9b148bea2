// Package refreshtokens stores the opaque refresh tokens issued at login.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/singularity/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, userID, token string, expiresAt time.Time) error
	// Consume deletes the token and returns what it granted, so a token can be
	// exchanged at most once. Unknown tokens yield common.ErrorNotFound.
	Consume(ctx context.Context, token string) (*models.RefreshToken, error)
	// RevokeUser deletes every token of the user.
	RevokeUser(ctx context.Context, userID string) error
}
