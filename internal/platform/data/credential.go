package data

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ashmara/imagevault/internal/pkg/database"
	"github.com/ashmara/imagevault/internal/platform/biz"
	"github.com/ashmara/imagevault/internal/platform/types"
)

type credentialRepo struct {
	db     *database.DB
	logger *zap.Logger
}

// NewCredentialRepo creates a postgres-backed credential repository.
func NewCredentialRepo(db *database.DB, logger *zap.Logger) biz.CredentialRepo {
	return &credentialRepo{
		db:     db,
		logger: logger.Named("data.credential"),
	}
}

func (r *credentialRepo) Create(ctx context.Context, c *types.Credential) error {
	po := &CredentialPO{
		ID:               c.ID,
		UserID:           c.UserID,
		Platform:         string(c.Platform),
		RemoteUserID:     c.RemoteUserID,
		AccessToken:      c.AccessToken,
		IncludePrivate:   c.IncludePrivate,
		DefaultPublicity: int16(c.DefaultPublicity),
		ExpiresAt:        c.ExpiresAt,
		CreatedAt:        c.CreatedAt,
	}
	return r.db.Handle(ctx).Create(po).Error
}

func (r *credentialRepo) GetByID(ctx context.Context, id string) (*types.Credential, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, biz.ErrNotFound
	}

	var po CredentialPO
	err := r.db.Handle(ctx).First(&po, "id = ?", id).Error
	if err != nil {
		if database.IsRecordNotFound(err) {
			return nil, biz.ErrNotFound
		}
		return nil, err
	}
	return toCredential(&po), nil
}

func (r *credentialRepo) ListByUser(ctx context.Context, userID string) ([]*types.Credential, error) {
	var pos []CredentialPO
	err := r.db.Handle(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&pos).Error
	if err != nil {
		return nil, err
	}
	return toCredentials(pos), nil
}

func (r *credentialRepo) ListAll(ctx context.Context) ([]*types.Credential, error) {
	var pos []CredentialPO
	err := r.db.Handle(ctx).
		Order("created_at ASC").
		Find(&pos).Error
	if err != nil {
		return nil, err
	}
	return toCredentials(pos), nil
}

func (r *credentialRepo) Delete(ctx context.Context, id string) error {
	return r.db.Handle(ctx).Delete(&CredentialPO{}, "id = ?", id).Error
}

func toCredentials(pos []CredentialPO) []*types.Credential {
	creds := make([]*types.Credential, len(pos))
	for i := range pos {
		creds[i] = toCredential(&pos[i])
	}
	return creds
}
