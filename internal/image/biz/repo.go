package biz

import (
	"context"

	"github.com/ashmara/imagevault/internal/image/types"
)

// TxRunner executes a function inside a storage transaction. The transaction
// handle travels in the context so repositories join the same unit of work.
type TxRunner interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ImageRepo persists content records.
type ImageRepo interface {
	Create(ctx context.Context, img *types.Image) error
	GetByID(ctx context.Context, id string) (*types.Image, error)
	GetByHash(ctx context.Context, hash uint64) (*types.Image, error)
	Delete(ctx context.Context, id string) error
}

// AccessibleQuery identifies a viewer for accessible-set queries. An empty
// ViewerID means anonymous; an empty TokenID means no share token supplied.
type AccessibleQuery struct {
	ViewerID string
	TokenID  string
}

// SearchFilter narrows an accessible-set query. Empty slices mean "no filter".
type SearchFilter struct {
	Tags       []string
	Characters []string
	Ratings    []types.Rating
}

// OwnershipRepo persists ownership claims and answers visibility queries.
// The accessible-set methods compose the visibility predicate with further
// filters and pagination inside the store, without materializing the set.
type OwnershipRepo interface {
	Create(ctx context.Context, o *types.Ownership) error
	GetByUserAndImage(ctx context.Context, userID, imageID string) (*types.Ownership, error)
	ListByImage(ctx context.Context, imageID string) ([]*types.Ownership, error)
	CountByImage(ctx context.Context, imageID string) (int64, error)
	Delete(ctx context.Context, id string) error

	ListAccessible(ctx context.Context, q AccessibleQuery, page, pageSize int) ([]*types.Image, int64, error)
	SearchAccessible(ctx context.Context, q AccessibleQuery, filter SearchFilter, page, pageSize int) ([]*types.Image, int64, error)
}

// ShareTokenRepo persists share tokens.
type ShareTokenRepo interface {
	Create(ctx context.Context, t *types.ShareToken) error
	GetByID(ctx context.Context, id string) (*types.ShareToken, error)
	DeleteByOwnership(ctx context.Context, ownershipID string) error
}

// NameRepo persists a tag or character vocabulary. Ensure creates any rows
// missing for the given normalized names; concurrent writers introducing the
// same name must not produce duplicates (unique index on name).
type NameRepo interface {
	Ensure(ctx context.Context, names []string) error
	ListWithCounts(ctx context.Context) ([]types.NameCount, error)
}

// BlobStore persists original bytes and thumbnails by content id.
type BlobStore interface {
	Save(ctx context.Context, id string, original, thumbnail []byte) error
	LoadOriginal(ctx context.Context, id string) ([]byte, error)
	LoadThumbnail(ctx context.Context, id string) ([]byte, error)
	Remove(ctx context.Context, id string) error
}

// Classification is the outcome of classifying one image.
type Classification struct {
	Rating        string
	GeneralTags   []string
	CharacterTags []string
}

// Classifier is the external tagging service boundary.
type Classifier interface {
	Classify(ctx context.Context, image []byte) (*Classification, error)
}
