package biz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	imagetypes "github.com/ashmara/imagevault/internal/image/types"
	"github.com/ashmara/imagevault/internal/platform/types"
)

// CredentialUseCase manages the platform credentials a user has linked.
type CredentialUseCase struct {
	credentials CredentialRepo
	logger      *zap.Logger
}

func NewCredentialUseCase(credentials CredentialRepo, logger *zap.Logger) *CredentialUseCase {
	return &CredentialUseCase{
		credentials: credentials,
		logger:      logger,
	}
}

// Link stores a new credential for userID. Imports driven by it will create
// ownerships at defaultPublicity. A nil expiresAt means the token does not
// expire; an already-expired one is rejected.
func (uc *CredentialUseCase) Link(
	ctx context.Context,
	userID string,
	platform types.Platform,
	remoteUserID, accessToken string,
	includePrivate bool,
	defaultPublicity imagetypes.Publicity,
	expiresAt *time.Time,
) (*types.Credential, error) {
	if userID == "" {
		return nil, ErrForbidden
	}
	if remoteUserID == "" {
		return nil, fmt.Errorf("remote user id is required")
	}
	if accessToken == "" {
		return nil, fmt.Errorf("access token is required")
	}
	if expiresAt != nil && !expiresAt.After(time.Now()) {
		return nil, fmt.Errorf("access token is already expired")
	}

	cred := &types.Credential{
		ID:               uuid.NewString(),
		UserID:           userID,
		Platform:         platform,
		RemoteUserID:     remoteUserID,
		AccessToken:      accessToken,
		IncludePrivate:   includePrivate,
		DefaultPublicity: defaultPublicity,
		ExpiresAt:        expiresAt,
		CreatedAt:        time.Now().UTC(),
	}
	if err := uc.credentials.Create(ctx, cred); err != nil {
		return nil, err
	}

	uc.logger.Info("platform credential linked",
		zap.String("credential_id", cred.ID),
		zap.String("platform", string(platform)),
		zap.String("user_id", userID),
	)
	return cred, nil
}

// List returns the credentials userID has linked.
func (uc *CredentialUseCase) List(ctx context.Context, userID string) ([]*types.Credential, error) {
	if userID == "" {
		return nil, ErrForbidden
	}
	return uc.credentials.ListByUser(ctx, userID)
}

// Unlink removes one of userID's credentials. Removing someone else's
// credential is ErrForbidden.
func (uc *CredentialUseCase) Unlink(ctx context.Context, userID, id string) error {
	if userID == "" {
		return ErrForbidden
	}

	cred, err := uc.credentials.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if cred.UserID != userID {
		return ErrForbidden
	}

	if err := uc.credentials.Delete(ctx, id); err != nil {
		return err
	}

	uc.logger.Info("platform credential unlinked",
		zap.String("credential_id", id),
		zap.String("user_id", userID),
	)
	return nil
}
