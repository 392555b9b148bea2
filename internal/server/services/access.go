package services

import (
	"context"

	"github.com/dmitrijs2005/singularity/internal/common"
	"github.com/dmitrijs2005/singularity/internal/server/auth"
)

func requireActor(ctx context.Context) (auth.Actor, error) {
	a, ok := auth.ActorFrom(ctx)
	if !ok {
		return auth.Actor{}, common.ErrorUnauthorized
	}
	return a, nil
}

func requireStaff(ctx context.Context) (auth.Actor, error) {
	a, err := requireActor(ctx)
	if err != nil {
		return a, err
	}
	if !a.Staff {
		return a, common.ErrForbidden
	}
	return a, nil
}
