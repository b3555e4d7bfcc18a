package profiles

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shaygp/boxd/internal/cache"
	apperrors "github.com/shaygp/boxd/internal/errors"
	"github.com/shaygp/boxd/internal/models"
	"github.com/shaygp/boxd/internal/repository"
	"github.com/shaygp/boxd/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryCache records calls and can be told to fail
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]string
	ttls    map[string]time.Duration
	fail    error
	gets    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryCache) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.fail != nil {
		return "", m.fail
	}
	v, ok := m.entries[key]
	if !ok {
		return "", cache.ErrMiss
	}
	return v, nil
}

func (m *memoryCache) SetEx(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.entries[key] = value.(string)
	m.ttls[key] = ttl
	return nil
}

func (m *memoryCache) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.entries, k)
	}
	return m.fail
}

func TestResolveUnknownUser(t *testing.T) {
	db := testutil.NewDB(t)
	r := NewResolver(repository.NewProfileRepository(db), nil, 0)

	_, err := r.Resolve(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestResolveCachesIdentity(t *testing.T) {
	db := testutil.NewDB(t)
	alice := testutil.CreateUser(t, db, "alice")
	c := newMemoryCache()
	r := NewResolver(repository.NewProfileRepository(db), c, 30*time.Second)
	ctx := context.Background()

	first, err := r.Resolve(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", first.DisplayName)
	assert.Equal(t, 30*time.Second, c.ttls[keyPrefix+alice.ID])

	// a rename is only visible once the entry is dropped
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", alice.ID).Update("display_name", "Alice L.").Error)

	cached, err := r.Resolve(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", cached.DisplayName)

	r.Invalidate(ctx, alice.ID)
	fresh, err := r.Resolve(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice L.", fresh.DisplayName)
}

func TestCacheFailureFallsBackToStore(t *testing.T) {
	db := testutil.NewDB(t)
	alice := testutil.CreateUser(t, db, "alice")
	c := newMemoryCache()
	c.fail = errors.New("connection refused")
	r := NewResolver(repository.NewProfileRepository(db), c, 0)

	identity, err := r.Resolve(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, identity.ID)
	assert.Equal(t, "alice", identity.DisplayName)
}

func TestPatchLeavesCompleteSnapshots(t *testing.T) {
	db := testutil.NewDB(t)
	alice := testutil.CreateUser(t, db, "alice")
	r := NewResolver(repository.NewProfileRepository(db), nil, 0)

	stamped := models.ActorIdentity{ID: alice.ID, DisplayName: "old name"}
	got := r.Patch(context.Background(), alice.ID, stamped)
	assert.Equal(t, stamped, got)
}

func TestPatchFillsMissingDisplayName(t *testing.T) {
	db := testutil.NewDB(t)
	alice := testutil.CreateUser(t, db, "alice")
	r := NewResolver(repository.NewProfileRepository(db), nil, 0)

	stamped := models.ActorIdentity{ID: alice.ID}
	got := r.Patch(context.Background(), alice.ID, stamped)

	assert.Equal(t, "alice", got.DisplayName)
	assert.Equal(t, alice.AvatarURL, got.AvatarURL)
	assert.Empty(t, stamped.DisplayName, "input is not mutated")
}

func TestPatchLookupFailureReturnsInput(t *testing.T) {
	db := testutil.NewDB(t)
	r := NewResolver(repository.NewProfileRepository(db), nil, 0)

	stamped := models.ActorIdentity{ID: "deleted-user"}
	got := r.Patch(context.Background(), "deleted-user", stamped)
	assert.Equal(t, stamped, got)
}
