package controllers

import (
	"context"

	"github.com/google/uuid"

	"github.com/marcosvillarreal/reelstack-backend/api/middleware"
	pkgerrors "github.com/marcosvillarreal/reelstack-backend/pkg/errors"
)

func ownerFromContext(ctx context.Context) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(ctx)
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, nil
}
