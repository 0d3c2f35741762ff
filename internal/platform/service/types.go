package service

import (
	"time"

	"github.com/ashmara/imagevault/internal/platform/types"
)

type LinkCredentialRequest struct {
	Platform       string `json:"platform" binding:"required"`
	RemoteUserID   string `json:"remote_user_id" binding:"required"`
	AccessToken    string `json:"access_token" binding:"required"`
	IncludePrivate bool   `json:"include_private"`
	// DefaultPublicity is "open" or "restricted"; empty means restricted,
	// imported bookmarks are private by default.
	DefaultPublicity string `json:"default_publicity"`
	// ExpiresAt marks when the access token stops working; omit it for
	// tokens that do not expire.
	ExpiresAt *time.Time `json:"expires_at"`
}

// CredentialResponse never echoes the access token back.
type CredentialResponse struct {
	ID               string `json:"id"`
	Platform         string `json:"platform"`
	RemoteUserID     string `json:"remote_user_id"`
	IncludePrivate   bool   `json:"include_private"`
	DefaultPublicity string `json:"default_publicity"`
	ExpiresAt        string `json:"expires_at,omitempty"`
	CreatedAt        string `json:"created_at"`
}

func toCredentialResponse(c *types.Credential) *CredentialResponse {
	resp := &CredentialResponse{
		ID:               c.ID,
		Platform:         string(c.Platform),
		RemoteUserID:     c.RemoteUserID,
		IncludePrivate:   c.IncludePrivate,
		DefaultPublicity: c.DefaultPublicity.String(),
		CreatedAt:        c.CreatedAt.UTC().Format(time.RFC3339),
	}
	if c.ExpiresAt != nil {
		resp.ExpiresAt = c.ExpiresAt.UTC().Format(time.RFC3339)
	}
	return resp
}
