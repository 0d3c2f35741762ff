package biz

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// DeleteUseCase removes a user's claim on an image, and the image itself once
// the last claim is gone.
type DeleteUseCase struct {
	tx         TxRunner
	images     ImageRepo
	ownerships OwnershipRepo
	tokens     ShareTokenRepo
	blobs      BlobStore
	logger     *zap.Logger
}

// NewDeleteUseCase creates the delete use case.
func NewDeleteUseCase(
	tx TxRunner,
	images ImageRepo,
	ownerships OwnershipRepo,
	tokens ShareTokenRepo,
	blobs BlobStore,
	logger *zap.Logger,
) *DeleteUseCase {
	return &DeleteUseCase{
		tx:         tx,
		images:     images,
		ownerships: ownerships,
		tokens:     tokens,
		blobs:      blobs,
		logger:     logger,
	}
}

// Delete removes userID's ownership of imageID. It returns ErrNotFound when
// the user has no claim and the image is unknown to them, ErrForbidden when
// the image exists but belongs to someone else. Share tokens for the
// ownership are removed with it; when no ownership remains the Image row and
// its blobs are destroyed too.
func (uc *DeleteUseCase) Delete(ctx context.Context, userID, imageID string) error {
	if userID == "" {
		return ErrForbidden
	}

	var removeBlobs bool
	err := uc.tx.Transaction(ctx, func(ctx context.Context) error {
		ownership, err := uc.ownerships.GetByUserAndImage(ctx, userID, imageID)
		if errors.Is(err, ErrNotFound) {
			// Distinguish "no such image" from "not yours".
			if _, imgErr := uc.images.GetByID(ctx, imageID); imgErr != nil {
				if errors.Is(imgErr, ErrNotFound) {
					return ErrNotFound
				}
				return imgErr
			}
			return ErrForbidden
		}
		if err != nil {
			return err
		}

		if err := uc.tokens.DeleteByOwnership(ctx, ownership.ID); err != nil {
			return err
		}
		if err := uc.ownerships.Delete(ctx, ownership.ID); err != nil {
			return err
		}

		remaining, err := uc.ownerships.CountByImage(ctx, imageID)
		if err != nil {
			return err
		}
		if remaining == 0 {
			if err := uc.images.Delete(ctx, imageID); err != nil {
				return err
			}
			removeBlobs = true
		}
		return nil
	})
	if err != nil {
		return err
	}

	if removeBlobs {
		// Blob removal happens after the relational commit; a failure here
		// leaves orphaned blobs, never metadata without content.
		if err := uc.blobs.Remove(ctx, imageID); err != nil {
			uc.logger.Warn("failed to remove blobs for deleted image",
				zap.String("image_id", imageID),
				zap.Error(err),
			)
		}
	}

	uc.logger.Info("image ownership deleted",
		zap.String("image_id", imageID),
		zap.String("user_id", userID),
		zap.Bool("content_destroyed", removeBlobs),
	)

	return nil
}
