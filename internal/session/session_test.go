package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/library-circulation/internal/auth"
	"github.com/segyhp/library-circulation/internal/domain"
)

var issuedAt = time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

func signinResponse(t *testing.T) *domain.JWTResponse {
	t.Helper()

	tokens := auth.NewTokenService("session-test", time.Hour).WithClock(func() time.Time { return issuedAt })
	token, err := tokens.Issue(&domain.User{ID: 4, Username: "takver", Role: domain.RoleUser})
	require.NoError(t, err)

	memberID := int64(11)
	return &domain.JWTResponse{Token: token, Type: "Bearer", ID: 4, Username: "takver", Role: domain.RoleUser, MemberID: &memberID}
}

func TestFromSignin(t *testing.T) {
	s := FromSignin(signinResponse(t))

	assert.Equal(t, "takver", s.Username)
	assert.Equal(t, int64(11), *s.MemberID)
	assert.True(t, s.ExpiresAt.Equal(issuedAt.Add(time.Hour)))
	assert.False(t, s.IsAdmin())
	assert.False(t, s.ExpiredAt(issuedAt.Add(59*time.Minute)))
	assert.True(t, s.ExpiredAt(issuedAt.Add(time.Hour)))
}

func TestManager_StartLoadClear(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "librarian", "session.json")
	clock := func() time.Time { return issuedAt.Add(10 * time.Minute) }

	m := NewManager(NewFileStore(path)).WithClock(clock)
	require.NoError(t, m.Start(ctx, FromSignin(signinResponse(t))))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	restored := NewManager(NewFileStore(path)).WithClock(clock)
	require.NoError(t, restored.Load(ctx))
	token, ok := restored.Token()
	require.True(t, ok)
	assert.NotEmpty(t, token)

	require.NoError(t, restored.Clear(ctx))
	_, ok = restored.Token()
	assert.False(t, ok)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestManager_LoadDiscardsExpiredSession(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)
	require.NoError(t, store.Save(ctx, FromSignin(signinResponse(t))))

	m := NewManager(store).WithClock(func() time.Time { return issuedAt.Add(2 * time.Hour) })
	require.NoError(t, m.Load(ctx))

	_, ok := m.Current()
	assert.False(t, ok)
	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestManager_ExpiresWhileRunning(t *testing.T) {
	ctx := context.Background()
	now := issuedAt
	m := NewManager(NewFileStore(filepath.Join(t.TempDir(), "s.json"))).WithClock(func() time.Time { return now })
	require.NoError(t, m.Start(ctx, FromSignin(signinResponse(t))))

	_, ok := m.Token()
	assert.True(t, ok)

	now = issuedAt.Add(61 * time.Minute)
	_, ok = m.Token()
	assert.False(t, ok)
}

func TestManager_ExpireClearsStore(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(filepath.Join(t.TempDir(), "s.json"))
	m := NewManager(store).WithClock(func() time.Time { return issuedAt })
	require.NoError(t, m.Start(ctx, FromSignin(signinResponse(t))))

	require.NoError(t, m.Expire(ctx))

	_, ok := m.Token()
	assert.False(t, ok)
	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestFileStore_MissingAndCorrupt(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "s.json")
	store := NewFileStore(path)

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, ErrNoSession)
	assert.NoError(t, store.Clear(ctx))

	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}

	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	defer client.Close()

	ctx := context.Background()
	store := NewRedisStore(client, t.Name())
	store.now = func() time.Time { return issuedAt }
	defer store.Clear(ctx)

	require.NoError(t, store.Save(ctx, FromSignin(signinResponse(t))))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "takver", loaded.Username)

	ttl, err := client.TTL(ctx, store.key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, store.Clear(ctx))
	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, ErrNoSession)
}
