package biz

import (
	"context"
	"time"

	imagetypes "github.com/ashmara/imagevault/internal/image/types"
	"github.com/ashmara/imagevault/internal/platform/types"
)

// CredentialRepo persists platform credentials.
type CredentialRepo interface {
	Create(ctx context.Context, c *types.Credential) error
	GetByID(ctx context.Context, id string) (*types.Credential, error)
	ListByUser(ctx context.Context, userID string) ([]*types.Credential, error)
	ListAll(ctx context.Context) ([]*types.Credential, error)
	Delete(ctx context.Context, id string) error
}

// LedgerRepo persists the downloaded-item ledger. Create surfaces
// ErrAlreadyExists when a concurrent pass ledgered the same remote work
// first.
type LedgerRepo interface {
	Create(ctx context.Context, item *types.DownloadedItem) error
	GetByRemoteID(ctx context.Context, platform types.Platform, remoteID string) (*types.DownloadedItem, error)
}

// Client is the outbound boundary to one platform's API.
type Client interface {
	// ListBookmarks returns the account's bookmarked works, including
	// private bookmarks when the credential asks for them.
	ListBookmarks(ctx context.Context, cred *types.Credential) ([]types.RemoteItem, error)
	// Download fetches the original bytes of one work.
	Download(ctx context.Context, cred *types.Credential, item types.RemoteItem) ([]byte, error)
}

// Importer is the ingestion boundary of the image domain.
type Importer interface {
	Import(ctx context.Context, raw []byte, publicity imagetypes.Publicity, ownerID string) (string, error)
	EnsureOwnership(ctx context.Context, userID, imageID string, publicity imagetypes.Publicity) error
}

// TxRunner executes a function inside a storage transaction.
type TxRunner interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Locker is a best-effort distributed lock; TryLock returns false without
// error when the lock is held elsewhere.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Unlock(ctx context.Context, key, token string) error
}

// Reconciler brings local state in line with one credential's remote
// bookmarks.
type Reconciler interface {
	Platform() types.Platform
	Reconcile(ctx context.Context, cred *types.Credential) error
}
