package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/soiree/internal/database/testutil"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func storesUnderTest(t *testing.T, clock *fakeClock) map[string]Store {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	dbStore := NewDatabaseStore(db)
	dbStore.now = clock.Now

	return map[string]Store{
		"memory":   NewMemoryStore().WithClock(clock.Now),
		"database": dbStore,
	}
}

func TestIncrementWithTTLUsesFixedWindow(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 16, 18, 0, 0, 0, time.UTC)}

	for name, store := range storesUnderTest(t, clock) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			key := "login:" + name

			count, ttl, err := store.IncrementWithTTL(ctx, key, 15*time.Minute)
			require.NoError(t, err)
			require.EqualValues(t, 1, count)
			require.Equal(t, 15*time.Minute, ttl)

			clock.Advance(10 * time.Minute)
			count, ttl, err = store.IncrementWithTTL(ctx, key, 15*time.Minute)
			require.NoError(t, err)
			require.EqualValues(t, 2, count)
			require.Equal(t, 5*time.Minute, ttl, "later increments must not extend the window")

			clock.Advance(5 * time.Minute)
			count, _, err = store.IncrementWithTTL(ctx, key, 15*time.Minute)
			require.NoError(t, err)
			require.EqualValues(t, 1, count, "expired window starts over")
		})
	}
}

func TestSetGetDelete(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 16, 18, 0, 0, 0, time.UTC)}

	for name, store := range storesUnderTest(t, clock) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, store.Set(ctx, "a", []byte("one"), time.Minute))
			require.NoError(t, store.Set(ctx, "b", []byte("two"), 0))

			value, ok, err := store.Get(ctx, "a")
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, []byte("one"), value)

			clock.Advance(2 * time.Minute)
			_, ok, err = store.Get(ctx, "a")
			require.NoError(t, err)
			require.False(t, ok)

			_, ok, err = store.Get(ctx, "b")
			require.NoError(t, err)
			require.True(t, ok, "entries without ttl never expire")

			require.NoError(t, store.Delete(ctx, "b"))
			_, ok, err = store.Get(ctx, "b")
			require.NoError(t, err)
			require.False(t, ok)
		})
	}
}

func TestPurgeExpired(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 16, 18, 0, 0, 0, time.UTC)}

	for name, store := range storesUnderTest(t, clock) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Set(ctx, "short", []byte("x"), time.Second))
			require.NoError(t, store.Set(ctx, "forever", []byte("y"), 0))

			clock.Advance(time.Minute)

			purger, ok := store.(Purger)
			require.True(t, ok)
			removed, err := purger.PurgeExpired(ctx)
			require.NoError(t, err)
			require.EqualValues(t, 1, removed)

			_, ok, err = store.Get(ctx, "forever")
			require.NoError(t, err)
			require.True(t, ok)
		})
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("SOIREE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("SOIREE_TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	store, err := NewRedisStore(ctx, RedisConfig{Address: addr, Prefix: "soiree-test:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	key := "login:" + time.Now().Format(time.RFC3339Nano)
	t.Cleanup(func() { _ = store.Delete(ctx, key) })

	count, ttl, err := store.IncrementWithTTL(ctx, key, time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
	require.Greater(t, ttl, time.Duration(0))

	count, _, err = store.IncrementWithTTL(ctx, key, time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	require.NoError(t, store.Delete(ctx, key))
	_, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestNewRedisStoreRequiresAddress(t *testing.T) {
	_, err := NewRedisStore(context.Background(), RedisConfig{})
	require.ErrorContains(t, err, "address is required")
}
