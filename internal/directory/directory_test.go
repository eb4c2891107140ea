package directory

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backlog-studio/engine/internal/models"
	"github.com/backlog-studio/engine/internal/repository"
	appErr "github.com/backlog-studio/engine/pkg/errors"
	"github.com/backlog-studio/engine/pkg/logger"
)

func TestMain(m *testing.M) {
	if _, err := logger.Init("error", "console"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// fakeUsers is an in-memory UserRepository that counts store lookups.
type fakeUsers struct {
	repository.UserRepository
	users   map[uuid.UUID]models.User
	lookups int
}

func (f *fakeUsers) GetByID(_ context.Context, id any, dest *models.User) error {
	f.lookups++
	u, ok := f.users[id.(uuid.UUID)]
	if !ok {
		return appErr.New(appErr.CodeNotFound, "user not found")
	}
	*dest = u
	return nil
}

func newDirectoryUnderTest(t *testing.T, ttl time.Duration) (*CachedDirectory, *fakeUsers, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	users := &fakeUsers{users: map[uuid.UUID]models.User{}}
	return NewCachedDirectory(users, rdb, ttl), users, mr
}

func TestExistsCachesPositiveLookups(t *testing.T) {
	dir, users, _ := newDirectoryUnderTest(t, time.Minute)
	ctx := context.Background()

	id := uuid.New()
	users.users[id] = models.User{ID: id, Email: "dev@example.com"}

	ok, err := dir.Exists(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, users.lookups)

	// second call is served from the cache
	ok, err = dir.Exists(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, users.lookups)
}

func TestExistsCachesNegativeLookups(t *testing.T) {
	dir, users, _ := newDirectoryUnderTest(t, time.Minute)
	ctx := context.Background()

	id := uuid.New()
	ok, err := dir.Exists(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	// the user appearing later stays invisible within the TTL window
	users.users[id] = models.User{ID: id}
	ok, err = dir.Exists(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, users.lookups)
}

func TestExistsRefreshesAfterTTL(t *testing.T) {
	dir, users, mr := newDirectoryUnderTest(t, time.Minute)
	ctx := context.Background()

	id := uuid.New()
	_, err := dir.Exists(ctx, id)
	require.NoError(t, err)
	require.Equal(t, 1, users.lookups)

	users.users[id] = models.User{ID: id}
	mr.FastForward(2 * time.Minute)

	ok, err := dir.Exists(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, users.lookups)
}
