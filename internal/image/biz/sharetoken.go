package biz

import (
	"context"
	"errors"
	"time"

	"github.com/ashmara/imagevault/internal/image/types"
	"github.com/google/uuid"
)

// DefaultShareTokenTTL applies when a caller creates a token without an
// explicit expiry.
const DefaultShareTokenTTL = 72 * time.Hour

// ShareTokenUseCase creates share tokens for a user's own images.
type ShareTokenUseCase struct {
	ownerships OwnershipRepo
	tokens     ShareTokenRepo
}

// NewShareTokenUseCase creates the share-token use case.
func NewShareTokenUseCase(ownerships OwnershipRepo, tokens ShareTokenRepo) *ShareTokenUseCase {
	return &ShareTokenUseCase{
		ownerships: ownerships,
		tokens:     tokens,
	}
}

// Create issues a token for userID's ownership of imageID, expiring at
// expiresAt (or after DefaultShareTokenTTL when zero). Only the owner of the
// image may create tokens for it.
func (uc *ShareTokenUseCase) Create(ctx context.Context, userID, imageID string, expiresAt time.Time) (*types.ShareToken, error) {
	if userID == "" {
		return nil, ErrForbidden
	}

	ownership, err := uc.ownerships.GetByUserAndImage(ctx, userID, imageID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if expiresAt.IsZero() {
		expiresAt = now.Add(DefaultShareTokenTTL)
	}

	token := &types.ShareToken{
		ID:          uuid.NewString(),
		UserID:      userID,
		OwnershipID: ownership.ID,
		CreatedAt:   now,
		ExpiresAt:   expiresAt,
	}
	if err := uc.tokens.Create(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}
