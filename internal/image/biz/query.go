package biz

import (
	"context"
	"errors"
	"time"

	"github.com/ashmara/imagevault/internal/image/types"
	"go.uber.org/zap"
)

const (
	// MaxPageSize bounds the read surface; larger requests are clamped, not
	// rejected.
	MaxPageSize     = 200
	DefaultPageSize = 50
)

// Page is one page of an accessible-set query.
type Page struct {
	Images     []*types.Image
	Page       int
	PageSize   int
	TotalItems int64
	TotalPages int
}

// QueryUseCase is the visibility engine's read surface: paginated and
// filtered accessible-set queries plus single-image access checks.
type QueryUseCase struct {
	images     ImageRepo
	ownerships OwnershipRepo
	tokens     ShareTokenRepo
	blobs      BlobStore
	logger     *zap.Logger
}

// NewQueryUseCase creates the read-side use case.
func NewQueryUseCase(
	images ImageRepo,
	ownerships OwnershipRepo,
	tokens ShareTokenRepo,
	blobs BlobStore,
	logger *zap.Logger,
) *QueryUseCase {
	return &QueryUseCase{
		images:     images,
		ownerships: ownerships,
		tokens:     tokens,
		blobs:      blobs,
		logger:     logger,
	}
}

// ClampPage normalizes 1-based pagination parameters.
func ClampPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// ListImages returns one page of the viewer's accessible set.
func (uc *QueryUseCase) ListImages(ctx context.Context, q AccessibleQuery, page, pageSize int) (*Page, error) {
	page, pageSize = ClampPage(page, pageSize)

	images, total, err := uc.ownerships.ListAccessible(ctx, q, page, pageSize)
	if err != nil {
		return nil, err
	}

	return newPage(images, total, page, pageSize), nil
}

// SearchImages returns one page of the accessible set narrowed by tag,
// character and rating filters.
func (uc *QueryUseCase) SearchImages(ctx context.Context, q AccessibleQuery, filter SearchFilter, page, pageSize int) (*Page, error) {
	page, pageSize = ClampPage(page, pageSize)

	filter.Tags = NormalizeNames(filter.Tags)
	filter.Characters = NormalizeNames(filter.Characters)

	images, total, err := uc.ownerships.SearchAccessible(ctx, q, filter, page, pageSize)
	if err != nil {
		return nil, err
	}

	return newPage(images, total, page, pageSize), nil
}

// CanAccess reports whether the viewer may see the image, optionally holding
// a share token. A missing image, an unknown token and an expired token all
// yield false, never an error.
func (uc *QueryUseCase) CanAccess(ctx context.Context, viewerID, imageID, tokenID string) (bool, error) {
	img, err := uc.images.GetByID(ctx, imageID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	ownerships, err := uc.ownerships.ListByImage(ctx, imageID)
	if err != nil {
		return false, err
	}

	var token *types.ShareToken
	if tokenID != "" {
		token, err = uc.tokens.GetByID(ctx, tokenID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return false, err
		}
	}

	now := time.Now().UTC()
	for _, o := range ownerships {
		if OwnershipVisible(viewerID, o, img.Rating, token, now) {
			return true, nil
		}
	}
	return false, nil
}

// GetImage returns the image metadata if the viewer may access it.
func (uc *QueryUseCase) GetImage(ctx context.Context, viewerID, imageID, tokenID string) (*types.Image, error) {
	ok, err := uc.CanAccess(ctx, viewerID, imageID, tokenID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return uc.images.GetByID(ctx, imageID)
}

// LoadOriginal returns the original bytes if the viewer may access the image.
func (uc *QueryUseCase) LoadOriginal(ctx context.Context, viewerID, imageID, tokenID string) ([]byte, error) {
	ok, err := uc.CanAccess(ctx, viewerID, imageID, tokenID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return uc.blobs.LoadOriginal(ctx, imageID)
}

// LoadThumbnail returns the thumbnail bytes if the viewer may access the image.
func (uc *QueryUseCase) LoadThumbnail(ctx context.Context, viewerID, imageID, tokenID string) ([]byte, error) {
	ok, err := uc.CanAccess(ctx, viewerID, imageID, tokenID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return uc.blobs.LoadThumbnail(ctx, imageID)
}

func newPage(images []*types.Image, total int64, page, pageSize int) *Page {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &Page{
		Images:     images,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}
}
