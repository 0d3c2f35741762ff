package types

import (
	"fmt"
	"time"

	imagetypes "github.com/ashmara/imagevault/internal/image/types"
)

// Platform identifies an external bookmark source. The set is closed; adding
// a platform means adding a reconciler for it.
type Platform string

const (
	PlatformPixiv Platform = "pixiv"
)

// ParsePlatform maps a wire name onto the closed platform set.
func ParsePlatform(s string) (Platform, error) {
	switch Platform(s) {
	case PlatformPixiv:
		return PlatformPixiv, nil
	default:
		return "", fmt.Errorf("unknown platform %q", s)
	}
}

// Credential links a local user to an external platform account. Imports
// driven by this credential create ownerships at DefaultPublicity. A nil
// ExpiresAt means the access token does not expire.
type Credential struct {
	ID               string
	UserID           string
	Platform         Platform
	RemoteUserID     string
	AccessToken      string
	IncludePrivate   bool
	DefaultPublicity imagetypes.Publicity
	ExpiresAt        *time.Time
	CreatedAt        time.Time
}

// Expired reports whether the access token is past its expiry at the given
// instant.
func (c *Credential) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(*c.ExpiresAt)
}

// RemoteItem is one bookmarked work as reported by the platform.
type RemoteItem struct {
	ID  string
	URL string
}

// DownloadedItem is one ledger entry mapping a remote work onto the local
// content record it was imported as. The ledger is global per platform:
// a work any credential already imported is never downloaded again.
type DownloadedItem struct {
	ID        string
	Platform  Platform
	RemoteID  string
	ImageID   string
	CreatedAt time.Time
}
