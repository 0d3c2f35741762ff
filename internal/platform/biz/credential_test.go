package biz

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	imagetypes "github.com/ashmara/imagevault/internal/image/types"
	"github.com/ashmara/imagevault/internal/platform/types"
)

func TestCredentialLinkAndList(t *testing.T) {
	repo := newFakeCredentialRepo()
	uc := NewCredentialUseCase(repo, zap.NewNop())

	cred, err := uc.Link(
		context.Background(),
		"alice",
		types.PlatformPixiv,
		"12345",
		"secret",
		true,
		imagetypes.PublicityRestricted,
		nil,
	)
	require.NoError(t, err)
	assert.NotEmpty(t, cred.ID)
	assert.True(t, cred.IncludePrivate)
	assert.Nil(t, cred.ExpiresAt)

	listed, err := uc.List(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, cred.ID, listed[0].ID)

	// Anonymous callers get nothing.
	_, err = uc.Link(context.Background(), "", types.PlatformPixiv, "1", "t", false, imagetypes.PublicityOpen, nil)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = uc.List(context.Background(), "")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCredentialLinkValidation(t *testing.T) {
	uc := NewCredentialUseCase(newFakeCredentialRepo(), zap.NewNop())

	_, err := uc.Link(context.Background(), "alice", types.PlatformPixiv, "", "secret", false, imagetypes.PublicityOpen, nil)
	assert.Error(t, err)

	_, err = uc.Link(context.Background(), "alice", types.PlatformPixiv, "12345", "", false, imagetypes.PublicityOpen, nil)
	assert.Error(t, err)

	past := time.Now().Add(-time.Hour)
	_, err = uc.Link(context.Background(), "alice", types.PlatformPixiv, "12345", "secret", false, imagetypes.PublicityOpen, &past)
	assert.Error(t, err, "an already-expired token must be rejected")
}

func TestCredentialLinkWithExpiry(t *testing.T) {
	uc := NewCredentialUseCase(newFakeCredentialRepo(), zap.NewNop())

	expiry := time.Now().Add(24 * time.Hour).UTC()
	cred, err := uc.Link(context.Background(), "alice", types.PlatformPixiv, "12345", "secret", false, imagetypes.PublicityOpen, &expiry)
	require.NoError(t, err)
	require.NotNil(t, cred.ExpiresAt)
	assert.Equal(t, expiry, *cred.ExpiresAt)
}

func TestCredentialExpired(t *testing.T) {
	now := time.Now().UTC()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	cred := testCredential("cred-1", "alice")
	assert.False(t, cred.Expired(now), "no expiry never expires")

	cred.ExpiresAt = &future
	assert.False(t, cred.Expired(now))

	cred.ExpiresAt = &past
	assert.True(t, cred.Expired(now))

	// Expiry takes effect at the instant itself.
	cred.ExpiresAt = &now
	assert.True(t, cred.Expired(now))
}

func TestCredentialUnlink(t *testing.T) {
	repo := newFakeCredentialRepo(testCredential("cred-1", "alice"))
	uc := NewCredentialUseCase(repo, zap.NewNop())

	assert.ErrorIs(t, uc.Unlink(context.Background(), "bob", "cred-1"), ErrForbidden)
	assert.ErrorIs(t, uc.Unlink(context.Background(), "alice", "ghost"), ErrNotFound)

	require.NoError(t, uc.Unlink(context.Background(), "alice", "cred-1"))
	_, err := repo.GetByID(context.Background(), "cred-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestParsePlatform(t *testing.T) {
	p, err := types.ParsePlatform("pixiv")
	require.NoError(t, err)
	assert.Equal(t, types.PlatformPixiv, p)

	_, err = types.ParsePlatform("flickr")
	assert.Error(t, err)
}
