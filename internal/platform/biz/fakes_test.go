package biz

import (
	"context"
	"errors"
	"fmt"
	"time"

	imagetypes "github.com/ashmara/imagevault/internal/image/types"
	"github.com/ashmara/imagevault/internal/platform/types"
)

type fakeClient struct {
	items     []types.RemoteItem
	listErr   error
	downloads map[string][]byte
	failURLs  map[string]bool

	listCalls     int
	downloadCalls int
}

func newFakeClient(items ...types.RemoteItem) *fakeClient {
	c := &fakeClient{
		items:     items,
		downloads: make(map[string][]byte),
		failURLs:  make(map[string]bool),
	}
	for _, item := range items {
		c.downloads[item.URL] = []byte("bytes-" + item.ID)
	}
	return c
}

func (c *fakeClient) ListBookmarks(ctx context.Context, cred *types.Credential) ([]types.RemoteItem, error) {
	c.listCalls++
	if c.listErr != nil {
		return nil, c.listErr
	}
	return c.items, nil
}

func (c *fakeClient) Download(ctx context.Context, cred *types.Credential, item types.RemoteItem) ([]byte, error) {
	c.downloadCalls++
	if c.failURLs[item.URL] {
		return nil, errors.New("download failed")
	}
	return c.downloads[item.URL], nil
}

type fakeLedger struct {
	entries map[string]*types.DownloadedItem // keyed by platform/remoteID
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{entries: make(map[string]*types.DownloadedItem)}
}

func ledgerKey(platform types.Platform, remoteID string) string {
	return string(platform) + "/" + remoteID
}

func (l *fakeLedger) Create(ctx context.Context, item *types.DownloadedItem) error {
	key := ledgerKey(item.Platform, item.RemoteID)
	if _, ok := l.entries[key]; ok {
		return ErrAlreadyExists
	}
	l.entries[key] = item
	return nil
}

func (l *fakeLedger) GetByRemoteID(ctx context.Context, platform types.Platform, remoteID string) (*types.DownloadedItem, error) {
	if entry, ok := l.entries[ledgerKey(platform, remoteID)]; ok {
		return entry, nil
	}
	return nil, ErrNotFound
}

// fakeImporter mimics the content-addressable behavior of the real pipeline:
// identical bytes resolve to the same image id, and ownerships are unique per
// (user, image).
type fakeImporter struct {
	byContent  map[string]string // raw bytes -> image id
	ownerships map[string]imagetypes.Publicity

	imports   int
	backfills int
	importErr error
}

func newFakeImporter() *fakeImporter {
	return &fakeImporter{
		byContent:  make(map[string]string),
		ownerships: make(map[string]imagetypes.Publicity),
	}
}

func (f *fakeImporter) Import(ctx context.Context, raw []byte, publicity imagetypes.Publicity, ownerID string) (string, error) {
	f.imports++
	if f.importErr != nil {
		return "", f.importErr
	}
	id, ok := f.byContent[string(raw)]
	if !ok {
		id = fmt.Sprintf("img-%d", len(f.byContent)+1)
		f.byContent[string(raw)] = id
	}
	f.ownerships[ownerID+"/"+id] = publicity
	return id, nil
}

func (f *fakeImporter) EnsureOwnership(ctx context.Context, userID, imageID string, publicity imagetypes.Publicity) error {
	f.backfills++
	key := userID + "/" + imageID
	if _, ok := f.ownerships[key]; !ok {
		f.ownerships[key] = publicity
	}
	return nil
}

type fakeTx struct{}

func (fakeTx) Transaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type fakeCredentialRepo struct {
	creds map[string]*types.Credential
}

func newFakeCredentialRepo(creds ...*types.Credential) *fakeCredentialRepo {
	r := &fakeCredentialRepo{creds: make(map[string]*types.Credential)}
	for _, c := range creds {
		r.creds[c.ID] = c
	}
	return r
}

func (r *fakeCredentialRepo) Create(ctx context.Context, c *types.Credential) error {
	r.creds[c.ID] = c
	return nil
}

func (r *fakeCredentialRepo) GetByID(ctx context.Context, id string) (*types.Credential, error) {
	if c, ok := r.creds[id]; ok {
		return c, nil
	}
	return nil, ErrNotFound
}

func (r *fakeCredentialRepo) ListByUser(ctx context.Context, userID string) ([]*types.Credential, error) {
	var out []*types.Credential
	for _, c := range r.creds {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCredentialRepo) ListAll(ctx context.Context) ([]*types.Credential, error) {
	out := make([]*types.Credential, 0, len(r.creds))
	for _, c := range r.creds {
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeCredentialRepo) Delete(ctx context.Context, id string) error {
	delete(r.creds, id)
	return nil
}

type fakeLocker struct {
	held     map[string]bool
	acquired []string
	released []string
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: make(map[string]bool)}
}

func (l *fakeLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if l.held[key] {
		return "", false, nil
	}
	l.held[key] = true
	l.acquired = append(l.acquired, key)
	return "token-" + key, true, nil
}

func (l *fakeLocker) Unlock(ctx context.Context, key, token string) error {
	delete(l.held, key)
	l.released = append(l.released, key)
	return nil
}

func testCredential(id, userID string) *types.Credential {
	return &types.Credential{
		ID:               id,
		UserID:           userID,
		Platform:         types.PlatformPixiv,
		RemoteUserID:     "remote-" + userID,
		AccessToken:      "token",
		DefaultPublicity: imagetypes.PublicityRestricted,
	}
}
