package biz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashmara/imagevault/internal/image/types"
)

func TestImport_NewImage(t *testing.T) {
	f := newImportFixture()
	f.classifier.result.Rating = "sensitive"

	id, err := f.uc.Import(context.Background(), testPNG(t), types.PublicityOpen, "alice")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	img, err := f.images.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, types.RatingSensitive, img.Rating)
	assert.Equal(t, []string{"landscape", "sky"}, img.Tags)
	assert.Equal(t, []string{"nobody"}, img.Characters)
	assert.True(t, img.HasThumbnail)
	assert.NotZero(t, img.Hash)

	ownership, err := f.ownerships.GetByUserAndImage(context.Background(), "alice", id)
	require.NoError(t, err)
	assert.Equal(t, types.PublicityOpen, ownership.Publicity)

	assert.Contains(t, f.blobs.originals, id)
	assert.Contains(t, f.blobs.thumbs, id)
	assert.Contains(t, f.tags.names, "landscape")
	assert.Contains(t, f.characters.names, "nobody")
}

func TestImport_ReimportIsIdempotent(t *testing.T) {
	f := newImportFixture()
	raw := testPNG(t)

	first, err := f.uc.Import(context.Background(), raw, types.PublicityOpen, "alice")
	require.NoError(t, err)

	second, err := f.uc.Import(context.Background(), raw, types.PublicityOpen, "alice")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.images.created)
	assert.Len(t, f.ownerships.items, 1)
	assert.Len(t, f.blobs.originals, 1)
}

func TestImport_SameContentAcrossOwners(t *testing.T) {
	f := newImportFixture()
	raw := testPNG(t)

	aliceID, err := f.uc.Import(context.Background(), raw, types.PublicityOpen, "alice")
	require.NoError(t, err)

	bobID, err := f.uc.Import(context.Background(), raw, types.PublicityRestricted, "bob")
	require.NoError(t, err)

	// One content record, two ownerships with independent publicity.
	assert.Equal(t, aliceID, bobID)
	assert.Equal(t, 1, f.images.created)
	assert.Len(t, f.ownerships.items, 2)
	assert.Len(t, f.blobs.originals, 1)

	bob, err := f.ownerships.GetByUserAndImage(context.Background(), "bob", bobID)
	require.NoError(t, err)
	assert.Equal(t, types.PublicityRestricted, bob.Publicity)
}

func TestImport_ClassifierFailureHasNoSideEffects(t *testing.T) {
	f := newImportFixture()
	f.classifier.err = errors.New("tagger down")

	_, err := f.uc.Import(context.Background(), testPNG(t), types.PublicityOpen, "alice")
	assert.ErrorIs(t, err, ErrTaggingFailed)

	assert.Empty(t, f.images.images)
	assert.Empty(t, f.ownerships.items)
	assert.Empty(t, f.blobs.originals)
	assert.Zero(t, f.tx.calls)
}

func TestImport_UnknownRating(t *testing.T) {
	f := newImportFixture()
	f.classifier.result.Rating = "spicy"

	_, err := f.uc.Import(context.Background(), testPNG(t), types.PublicityOpen, "alice")
	assert.ErrorIs(t, err, ErrTaggingFailed)
	assert.Empty(t, f.images.images)
}

func TestImport_UndecodableBytes(t *testing.T) {
	f := newImportFixture()

	_, err := f.uc.Import(context.Background(), []byte("not an image"), types.PublicityOpen, "alice")
	assert.ErrorIs(t, err, ErrInvalidImage)
	assert.Empty(t, f.blobs.originals)
}

func TestImport_BlobFailure(t *testing.T) {
	f := newImportFixture()
	f.blobs.failSave = true

	_, err := f.uc.Import(context.Background(), testPNG(t), types.PublicityOpen, "alice")
	assert.ErrorIs(t, err, ErrStorageFailed)

	assert.Empty(t, f.images.images)
	assert.Empty(t, f.ownerships.items)
}

func TestImport_HashConflictReusesWinner(t *testing.T) {
	f := newImportFixture()
	winner := &types.Image{ID: "winner-id", Rating: types.RatingGeneral, HasThumbnail: true}
	f.images.conflictOnCreate = true
	f.images.winner = winner

	raw := testPNG(t)
	id, err := f.uc.Import(context.Background(), raw, types.PublicityOpen, "alice")
	require.NoError(t, err)

	// The insert lost the race; the import resolves to the committed row.
	assert.Equal(t, "winner-id", id)
	assert.Equal(t, 0, f.images.created)

	_, err = f.ownerships.GetByUserAndImage(context.Background(), "alice", "winner-id")
	assert.NoError(t, err)
}

func TestImport_Validation(t *testing.T) {
	f := newImportFixture()

	_, err := f.uc.Import(context.Background(), nil, types.PublicityOpen, "alice")
	assert.ErrorIs(t, err, ErrEmptyImage)

	_, err = f.uc.Import(context.Background(), testPNG(t), types.PublicityOpen, "")
	assert.ErrorIs(t, err, ErrEmptyOwner)

	assert.Zero(t, f.classifier.calls)
}

func TestEnsureOwnership(t *testing.T) {
	f := newImportFixture()

	id, err := f.uc.Import(context.Background(), testPNG(t), types.PublicityOpen, "alice")
	require.NoError(t, err)

	require.NoError(t, f.uc.EnsureOwnership(context.Background(), "bob", id, types.PublicityRestricted))
	assert.Len(t, f.ownerships.items, 2)

	// Linking again is a no-op, not a failure.
	require.NoError(t, f.uc.EnsureOwnership(context.Background(), "bob", id, types.PublicityRestricted))
	assert.Len(t, f.ownerships.items, 2)

	assert.ErrorIs(t, f.uc.EnsureOwnership(context.Background(), "", id, types.PublicityOpen), ErrEmptyOwner)
}
