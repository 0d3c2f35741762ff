package data

import (
	"time"

	imagetypes "github.com/ashmara/imagevault/internal/image/types"
	"github.com/ashmara/imagevault/internal/platform/types"
)

// CredentialPO links a local user to an external platform account.
type CredentialPO struct {
	ID               string    `gorm:"type:uuid;primaryKey"`
	UserID           string    `gorm:"size:255;not null;index"`
	Platform         string    `gorm:"size:32;not null"`
	RemoteUserID     string    `gorm:"size:255;not null"`
	AccessToken      string    `gorm:"size:1024;not null"`
	IncludePrivate   bool       `gorm:"not null;default:false"`
	DefaultPublicity int16      `gorm:"not null"`
	ExpiresAt        *time.Time
	CreatedAt        time.Time `gorm:"not null"`
}

func (CredentialPO) TableName() string {
	return "platform_credentials"
}

// DownloadedItemPO is one ledger row. The (platform, remote_id) pair is
// unique; concurrent reconciliation passes race on it and the loser rolls
// back.
type DownloadedItemPO struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	Platform  string    `gorm:"size:32;not null;uniqueIndex:idx_downloaded_platform_remote"`
	RemoteID  string    `gorm:"size:255;not null;uniqueIndex:idx_downloaded_platform_remote"`
	ImageID   string    `gorm:"type:uuid;not null;index"`
	CreatedAt time.Time `gorm:"not null"`
}

func (DownloadedItemPO) TableName() string {
	return "downloaded_items"
}

// Models returns all persistence models of the platform domain for migration.
func Models() []interface{} {
	return []interface{}{
		&CredentialPO{},
		&DownloadedItemPO{},
	}
}

func toCredential(po *CredentialPO) *types.Credential {
	return &types.Credential{
		ID:               po.ID,
		UserID:           po.UserID,
		Platform:         types.Platform(po.Platform),
		RemoteUserID:     po.RemoteUserID,
		AccessToken:      po.AccessToken,
		IncludePrivate:   po.IncludePrivate,
		DefaultPublicity: imagetypes.Publicity(po.DefaultPublicity),
		ExpiresAt:        po.ExpiresAt,
		CreatedAt:        po.CreatedAt,
	}
}

func toDownloadedItem(po *DownloadedItemPO) *types.DownloadedItem {
	return &types.DownloadedItem{
		ID:        po.ID,
		Platform:  types.Platform(po.Platform),
		RemoteID:  po.RemoteID,
		ImageID:   po.ImageID,
		CreatedAt: po.CreatedAt,
	}
}
