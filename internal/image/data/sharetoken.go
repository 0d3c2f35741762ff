package data

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ashmara/imagevault/internal/image/biz"
	"github.com/ashmara/imagevault/internal/image/types"
	"github.com/ashmara/imagevault/internal/pkg/database"
)

type shareTokenRepo struct {
	db     *database.DB
	logger *zap.Logger
}

// NewShareTokenRepo creates a postgres-backed share token repository.
func NewShareTokenRepo(db *database.DB, logger *zap.Logger) biz.ShareTokenRepo {
	return &shareTokenRepo{
		db:     db,
		logger: logger.Named("data.sharetoken"),
	}
}

func (r *shareTokenRepo) Create(ctx context.Context, t *types.ShareToken) error {
	po := &ShareTokenPO{
		ID:          t.ID,
		UserID:      t.UserID,
		OwnershipID: t.OwnershipID,
		CreatedAt:   t.CreatedAt,
		ExpiresAt:   t.ExpiresAt,
	}
	return r.db.Handle(ctx).Create(po).Error
}

func (r *shareTokenRepo) GetByID(ctx context.Context, id string) (*types.ShareToken, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, biz.ErrNotFound
	}

	var po ShareTokenPO
	err := r.db.Handle(ctx).First(&po, "id = ?", id).Error
	if err != nil {
		if database.IsRecordNotFound(err) {
			return nil, biz.ErrNotFound
		}
		return nil, err
	}
	return toShareToken(&po), nil
}

func (r *shareTokenRepo) DeleteByOwnership(ctx context.Context, ownershipID string) error {
	return r.db.Handle(ctx).
		Where("ownership_id = ?", ownershipID).
		Delete(&ShareTokenPO{}).Error
}
