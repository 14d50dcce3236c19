package pg_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/hybridsession/pkg/pg"
)

// setupCache connects to the database named by PG_TEST_URL and applies the
// session migrations. Tests are skipped when the variable is unset.
func setupCache(t *testing.T) *pg.Cache {
	t.Helper()

	url := os.Getenv("PG_TEST_URL")
	if url == "" {
		t.Skip("PG_TEST_URL not set")
	}

	ctx := context.Background()
	cfg := pg.Config{
		ConnectionString: url,
		RetryAttempts:    1,
		ReadyTimeout:     time.Second,
	}

	pool, err := pg.Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, pg.Migrate(ctx, pool, cfg, slog.New(slog.DiscardHandler)))

	return pg.NewCache(pool, cfg)
}

func TestCache(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()
	id := "pg-test-" + time.Now().Format("150405.000000000")

	assert.True(t, c.Ready(ctx))

	got, err := c.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.Set(ctx, id, []byte(`{"value":1}`), time.Minute))
	got, err = c.Get(ctx, id)
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":1}`, string(got))

	require.NoError(t, c.Set(ctx, id, []byte(`{"value":2}`), time.Minute))
	got, err = c.Get(ctx, id)
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":2}`, string(got))

	require.NoError(t, c.Delete(ctx, id))
	got, err = c.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCache_Expired(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()
	id := "pg-expired-" + time.Now().Format("150405.000000000")

	require.NoError(t, c.Set(ctx, id, []byte("x"), time.Millisecond))
	time.Sleep(20 * time.Millisecond)

	got, err := c.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)

	n, err := c.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, int64(1))
}

func TestCache_EmptyKey(t *testing.T) {
	c := pg.NewCache(nil, pg.Config{})
	ctx := context.Background()

	_, err := c.Get(ctx, "")
	assert.ErrorIs(t, err, pg.ErrEmptyKey)
	assert.ErrorIs(t, c.Set(ctx, "", nil, 0), pg.ErrEmptyKey)
	assert.ErrorIs(t, c.Delete(ctx, ""), pg.ErrEmptyKey)
}

func TestConnect_EmptyConnectionString(t *testing.T) {
	_, err := pg.Connect(context.Background(), pg.Config{})
	assert.ErrorIs(t, err, pg.ErrEmptyConnectionString)
}
