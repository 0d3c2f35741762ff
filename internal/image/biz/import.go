package biz

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/ashmara/imagevault/internal/image/types"
	"github.com/ashmara/imagevault/internal/pkg/imaging"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	thumbnailMaxWidth  = 300
	thumbnailMaxHeight = 600
)

// ImportUseCase is the content-addressable ingestion pipeline: it classifies
// incoming bytes, deduplicates them by perceptual hash, persists new content
// and links ownership records.
type ImportUseCase struct {
	tx         TxRunner
	images     ImageRepo
	ownerships OwnershipRepo
	tags       NameRepo
	characters NameRepo
	blobs      BlobStore
	classifier Classifier
	logger     *zap.Logger
}

// NewImportUseCase creates the ingestion pipeline.
func NewImportUseCase(
	tx TxRunner,
	images ImageRepo,
	ownerships OwnershipRepo,
	tags NameRepo,
	characters NameRepo,
	blobs BlobStore,
	classifier Classifier,
	logger *zap.Logger,
) *ImportUseCase {
	return &ImportUseCase{
		tx:         tx,
		images:     images,
		ownerships: ownerships,
		tags:       tags,
		characters: characters,
		blobs:      blobs,
		classifier: classifier,
		logger:     logger,
	}
}

// Import ingests one image for ownerID at the requested publicity and returns
// the resulting image id. Re-importing content the owner already has is a
// no-op returning the existing id. All relational writes happen in a single
// transaction; the classifier call precedes any side effect, and the blob is
// written before the rows referencing it are committed, so committed metadata
// never points at a missing blob.
func (uc *ImportUseCase) Import(ctx context.Context, raw []byte, publicity types.Publicity, ownerID string) (string, error) {
	if len(raw) == 0 {
		return "", ErrEmptyImage
	}
	if ownerID == "" {
		return "", ErrEmptyOwner
	}

	classification, err := uc.classifier.Classify(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTaggingFailed, err)
	}

	rating, err := types.ParseRating(classification.Rating)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTaggingFailed, err)
	}

	img, err := imaging.Decode(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	hash, err := imaging.PerceptualHash(img)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrImportFailed, err)
	}

	generalTags := NormalizeNames(classification.GeneralTags)
	characterTags := NormalizeNames(classification.CharacterTags)

	var imageID string
	err = uc.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := uc.tags.Ensure(ctx, generalTags); err != nil {
			return fmt.Errorf("resolve tags: %w", err)
		}
		if err := uc.characters.Ensure(ctx, characterTags); err != nil {
			return fmt.Errorf("resolve characters: %w", err)
		}

		image, err := uc.findOrCreateImage(ctx, raw, img, hash, rating, generalTags, characterTags)
		if err != nil {
			return err
		}
		imageID = image.ID

		return uc.linkOwner(ctx, ownerID, image.ID, publicity)
	})
	if err != nil {
		if errors.Is(err, ErrTaggingFailed) || errors.Is(err, ErrStorageFailed) || errors.Is(err, ErrImportFailed) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrImportFailed, err)
	}

	uc.logger.Info("image imported",
		zap.String("image_id", imageID),
		zap.String("owner_id", ownerID),
		zap.Uint64("hash", hash),
	)

	return imageID, nil
}

// findOrCreateImage resolves the content record for hash. Dedup by hash is a
// check-then-act race between concurrent importers; losing the insert race is
// handled by re-reading the winning row, never by failing the import.
func (uc *ImportUseCase) findOrCreateImage(
	ctx context.Context,
	raw []byte,
	decoded image.Image,
	hash uint64,
	rating types.Rating,
	tags, characters []string,
) (*types.Image, error) {
	existing, err := uc.images.GetByHash(ctx, hash)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	image := &types.Image{
		ID:           uuid.NewString(),
		Hash:         hash,
		Rating:       rating,
		Tags:         tags,
		Characters:   characters,
		HasThumbnail: true,
		CreatedAt:    time.Now().UTC(),
	}

	thumb, err := imaging.Thumbnail(decoded, thumbnailMaxWidth, thumbnailMaxHeight)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportFailed, err)
	}

	// Blob first: if the relational insert below fails the orphaned blob is
	// acceptable garbage, while the reverse would break every read path.
	if err := uc.blobs.Save(ctx, image.ID, raw, thumb); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailed, err)
	}

	if err := uc.images.Create(ctx, image); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			// A concurrent importer committed the same hash first.
			winner, readErr := uc.images.GetByHash(ctx, hash)
			if readErr != nil {
				return nil, fmt.Errorf("re-read after hash conflict: %w", readErr)
			}
			return winner, nil
		}
		return nil, err
	}

	return image, nil
}

// linkOwner ensures an ownership row exists for (ownerID, imageID). A unique
// violation means the owner already has the image, which is a no-op.
func (uc *ImportUseCase) linkOwner(ctx context.Context, ownerID, imageID string, publicity types.Publicity) error {
	ownership := &types.Ownership{
		ID:        uuid.NewString(),
		UserID:    ownerID,
		ImageID:   imageID,
		Publicity: publicity,
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.ownerships.Create(ctx, ownership); err != nil && !errors.Is(err, ErrAlreadyExists) {
		return err
	}
	return nil
}

// EnsureOwnership links userID to an already-known image at the given
// publicity, inside its own transaction. Used by the reconciliation loop to
// backfill ownerships for content other users imported earlier.
func (uc *ImportUseCase) EnsureOwnership(ctx context.Context, userID, imageID string, publicity types.Publicity) error {
	if userID == "" {
		return ErrEmptyOwner
	}
	return uc.tx.Transaction(ctx, func(ctx context.Context) error {
		return uc.linkOwner(ctx, userID, imageID, publicity)
	})
}
