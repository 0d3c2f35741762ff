package biz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ashmara/imagevault/internal/platform/types"
)

// PixivReconciler diffs one credential's remote bookmarks against the
// downloaded-item ledger: new works are downloaded and imported, already
// ledgered works only get their missing ownership backfilled. Each item is
// its own unit of work; one bad item never poisons its siblings.
type PixivReconciler struct {
	client   Client
	ledger   LedgerRepo
	importer Importer
	tx       TxRunner
	logger   *zap.Logger
}

func NewPixivReconciler(
	client Client,
	ledger LedgerRepo,
	importer Importer,
	tx TxRunner,
	logger *zap.Logger,
) *PixivReconciler {
	return &PixivReconciler{
		client:   client,
		ledger:   ledger,
		importer: importer,
		tx:       tx,
		logger:   logger,
	}
}

func (r *PixivReconciler) Platform() types.Platform {
	return types.PlatformPixiv
}

// Reconcile runs one pass for cred. A bookmark listing failure aborts the
// pass; per-item failures are logged and counted but do not stop it.
func (r *PixivReconciler) Reconcile(ctx context.Context, cred *types.Credential) error {
	items, err := r.client.ListBookmarks(ctx, cred)
	if err != nil {
		return fmt.Errorf("list bookmarks: %w", err)
	}

	var imported, backfilled, failed int
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}

		entry, err := r.ledger.GetByRemoteID(ctx, cred.Platform, item.ID)
		switch {
		case errors.Is(err, ErrNotFound):
			if err := r.importItem(ctx, cred, item); err != nil {
				failed++
				r.logger.Warn("failed to import remote item",
					zap.String("credential_id", cred.ID),
					zap.String("remote_id", item.ID),
					zap.Error(err),
				)
				continue
			}
			imported++
		case err != nil:
			failed++
			r.logger.Warn("failed to read ledger",
				zap.String("remote_id", item.ID),
				zap.Error(err),
			)
		default:
			// Already downloaded, possibly by another account. Make sure
			// this credential's user owns it too.
			if err := r.importer.EnsureOwnership(ctx, cred.UserID, entry.ImageID, cred.DefaultPublicity); err != nil {
				failed++
				r.logger.Warn("failed to backfill ownership",
					zap.String("remote_id", item.ID),
					zap.String("image_id", entry.ImageID),
					zap.Error(err),
				)
				continue
			}
			backfilled++
		}
	}

	r.logger.Info("reconciliation pass finished",
		zap.String("credential_id", cred.ID),
		zap.Int("remote_items", len(items)),
		zap.Int("imported", imported),
		zap.Int("backfilled", backfilled),
		zap.Int("failed", failed),
	)
	return nil
}

// importItem downloads one work and commits its import together with the
// ledger entry, so a crash between the two can never strand a ledgered item
// without content.
func (r *PixivReconciler) importItem(ctx context.Context, cred *types.Credential, item types.RemoteItem) error {
	raw, err := r.client.Download(ctx, cred, item)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}

	return r.tx.Transaction(ctx, func(ctx context.Context) error {
		imageID, err := r.importer.Import(ctx, raw, cred.DefaultPublicity, cred.UserID)
		if err != nil {
			return fmt.Errorf("import: %w", err)
		}

		entry := &types.DownloadedItem{
			ID:        uuid.NewString(),
			Platform:  cred.Platform,
			RemoteID:  item.ID,
			ImageID:   imageID,
			CreatedAt: time.Now().UTC(),
		}
		if err := r.ledger.Create(ctx, entry); err != nil {
			// A concurrent pass ledgered this work first; rolling back keeps
			// a single ledger row and the next pass backfills ownership.
			return fmt.Errorf("ledger: %w", err)
		}
		return nil
	})
}
