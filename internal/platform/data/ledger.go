package data

import (
	"context"

	"go.uber.org/zap"

	"github.com/ashmara/imagevault/internal/pkg/database"
	"github.com/ashmara/imagevault/internal/platform/biz"
	"github.com/ashmara/imagevault/internal/platform/types"
)

type ledgerRepo struct {
	db     *database.DB
	logger *zap.Logger
}

// NewLedgerRepo creates a postgres-backed downloaded-item ledger.
func NewLedgerRepo(db *database.DB, logger *zap.Logger) biz.LedgerRepo {
	return &ledgerRepo{
		db:     db,
		logger: logger.Named("data.ledger"),
	}
}

func (r *ledgerRepo) Create(ctx context.Context, item *types.DownloadedItem) error {
	po := &DownloadedItemPO{
		ID:        item.ID,
		Platform:  string(item.Platform),
		RemoteID:  item.RemoteID,
		ImageID:   item.ImageID,
		CreatedAt: item.CreatedAt,
	}
	if err := r.db.Handle(ctx).Create(po).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return biz.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *ledgerRepo) GetByRemoteID(ctx context.Context, platform types.Platform, remoteID string) (*types.DownloadedItem, error) {
	var po DownloadedItemPO
	err := r.db.Handle(ctx).
		First(&po, "platform = ? AND remote_id = ?", string(platform), remoteID).Error
	if err != nil {
		if database.IsRecordNotFound(err) {
			return nil, biz.ErrNotFound
		}
		return nil, err
	}
	return toDownloadedItem(&po), nil
}
