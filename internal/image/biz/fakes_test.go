package biz

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"go.uber.org/zap"

	"github.com/ashmara/imagevault/internal/image/types"
)

// testPNG renders a small deterministic PNG so the real decode and hash
// paths run in tests.
func testPNG(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 16), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test png: %v", err)
	}
	return buf.Bytes()
}

type fakeTx struct {
	calls int
}

func (f *fakeTx) Transaction(ctx context.Context, fn func(context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type fakeImageRepo struct {
	images  map[string]*types.Image
	created int
	deleted []string

	// conflictOnCreate makes the first Create fail as if a concurrent
	// importer committed winner for the same hash first.
	conflictOnCreate bool
	winner           *types.Image
	conflictFired    bool
}

func newFakeImageRepo() *fakeImageRepo {
	return &fakeImageRepo{images: make(map[string]*types.Image)}
}

func (f *fakeImageRepo) Create(ctx context.Context, img *types.Image) error {
	if f.conflictOnCreate && !f.conflictFired {
		f.conflictFired = true
		// The concurrent winner committed the same content hash.
		f.winner.Hash = img.Hash
		f.images[f.winner.ID] = f.winner
		return ErrAlreadyExists
	}
	f.images[img.ID] = img
	f.created++
	return nil
}

func (f *fakeImageRepo) GetByID(ctx context.Context, id string) (*types.Image, error) {
	if img, ok := f.images[id]; ok {
		return img, nil
	}
	return nil, ErrNotFound
}

func (f *fakeImageRepo) GetByHash(ctx context.Context, hash uint64) (*types.Image, error) {
	for _, img := range f.images {
		if img.Hash == hash {
			return img, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeImageRepo) Delete(ctx context.Context, id string) error {
	delete(f.images, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeOwnershipRepo struct {
	items map[string]*types.Ownership
}

func newFakeOwnershipRepo() *fakeOwnershipRepo {
	return &fakeOwnershipRepo{items: make(map[string]*types.Ownership)}
}

func (f *fakeOwnershipRepo) Create(ctx context.Context, o *types.Ownership) error {
	for _, existing := range f.items {
		if existing.UserID == o.UserID && existing.ImageID == o.ImageID {
			return ErrAlreadyExists
		}
	}
	f.items[o.ID] = o
	return nil
}

func (f *fakeOwnershipRepo) GetByUserAndImage(ctx context.Context, userID, imageID string) (*types.Ownership, error) {
	for _, o := range f.items {
		if o.UserID == userID && o.ImageID == imageID {
			return o, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeOwnershipRepo) ListByImage(ctx context.Context, imageID string) ([]*types.Ownership, error) {
	var out []*types.Ownership
	for _, o := range f.items {
		if o.ImageID == imageID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOwnershipRepo) CountByImage(ctx context.Context, imageID string) (int64, error) {
	var n int64
	for _, o := range f.items {
		if o.ImageID == imageID {
			n++
		}
	}
	return n, nil
}

func (f *fakeOwnershipRepo) Delete(ctx context.Context, id string) error {
	delete(f.items, id)
	return nil
}

func (f *fakeOwnershipRepo) ListAccessible(ctx context.Context, q AccessibleQuery, page, pageSize int) ([]*types.Image, int64, error) {
	return nil, 0, nil
}

func (f *fakeOwnershipRepo) SearchAccessible(ctx context.Context, q AccessibleQuery, filter SearchFilter, page, pageSize int) ([]*types.Image, int64, error) {
	return nil, 0, nil
}

type fakeShareTokenRepo struct {
	tokens map[string]*types.ShareToken
}

func newFakeShareTokenRepo() *fakeShareTokenRepo {
	return &fakeShareTokenRepo{tokens: make(map[string]*types.ShareToken)}
}

func (f *fakeShareTokenRepo) Create(ctx context.Context, tok *types.ShareToken) error {
	f.tokens[tok.ID] = tok
	return nil
}

func (f *fakeShareTokenRepo) GetByID(ctx context.Context, id string) (*types.ShareToken, error) {
	if tok, ok := f.tokens[id]; ok {
		return tok, nil
	}
	return nil, ErrNotFound
}

func (f *fakeShareTokenRepo) DeleteByOwnership(ctx context.Context, ownershipID string) error {
	for id, tok := range f.tokens {
		if tok.OwnershipID == ownershipID {
			delete(f.tokens, id)
		}
	}
	return nil
}

type fakeNameRepo struct {
	names map[string]struct{}
}

func newFakeNameRepo() *fakeNameRepo {
	return &fakeNameRepo{names: make(map[string]struct{})}
}

func (f *fakeNameRepo) Ensure(ctx context.Context, names []string) error {
	for _, n := range names {
		f.names[n] = struct{}{}
	}
	return nil
}

func (f *fakeNameRepo) ListWithCounts(ctx context.Context) ([]types.NameCount, error) {
	out := make([]types.NameCount, 0, len(f.names))
	for n := range f.names {
		out = append(out, types.NameCount{Name: n})
	}
	return out, nil
}

type fakeBlobStore struct {
	originals map[string][]byte
	thumbs    map[string][]byte
	removed   []string
	failSave  bool
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{
		originals: make(map[string][]byte),
		thumbs:    make(map[string][]byte),
	}
}

func (f *fakeBlobStore) Save(ctx context.Context, id string, original, thumbnail []byte) error {
	if f.failSave {
		return errors.New("object store unavailable")
	}
	f.originals[id] = original
	f.thumbs[id] = thumbnail
	return nil
}

func (f *fakeBlobStore) LoadOriginal(ctx context.Context, id string) ([]byte, error) {
	if data, ok := f.originals[id]; ok {
		return data, nil
	}
	return nil, errors.New("blob not found")
}

func (f *fakeBlobStore) LoadThumbnail(ctx context.Context, id string) ([]byte, error) {
	if data, ok := f.thumbs[id]; ok {
		return data, nil
	}
	return nil, errors.New("blob not found")
}

func (f *fakeBlobStore) Remove(ctx context.Context, id string) error {
	f.removed = append(f.removed, id)
	return nil
}

type fakeClassifier struct {
	result *Classification
	err    error
	calls  int
}

func (f *fakeClassifier) Classify(ctx context.Context, image []byte) (*Classification, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// importFixture bundles the fakes behind one ingestion pipeline.
type importFixture struct {
	tx         *fakeTx
	images     *fakeImageRepo
	ownerships *fakeOwnershipRepo
	tokens     *fakeShareTokenRepo
	tags       *fakeNameRepo
	characters *fakeNameRepo
	blobs      *fakeBlobStore
	classifier *fakeClassifier
	uc         *ImportUseCase
}

func newImportFixture() *importFixture {
	f := &importFixture{
		tx:         &fakeTx{},
		images:     newFakeImageRepo(),
		ownerships: newFakeOwnershipRepo(),
		tokens:     newFakeShareTokenRepo(),
		tags:       newFakeNameRepo(),
		characters: newFakeNameRepo(),
		blobs:      newFakeBlobStore(),
		classifier: &fakeClassifier{
			result: &Classification{
				Rating:        "general",
				GeneralTags:   []string{"Landscape", "sky"},
				CharacterTags: []string{"Nobody"},
			},
		},
	}
	f.uc = NewImportUseCase(
		f.tx, f.images, f.ownerships, f.tags, f.characters, f.blobs, f.classifier, zap.NewNop(),
	)
	return f
}
