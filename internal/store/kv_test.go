package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backends returns one fresh instance of every KV implementation.
func backends(t *testing.T) map[string]KV {
	t.Helper()

	sqlite, err := NewSQLite(filepath.Join(t.TempDir(), "nested", "wardrobe.db"))
	require.NoError(t, err)

	bdg, err := NewBadgerInMemory()
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rds := NewRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}), WithPrefix("test"))

	all := map[string]KV{
		"sqlite": sqlite,
		"badger": bdg,
		"redis":  rds,
		"memory": NewMemory(),
	}
	t.Cleanup(func() {
		for _, kv := range all {
			_ = kv.Close()
		}
	})
	return all
}

func TestKV_Contract(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, kv.Ping(ctx))

			_, err := kv.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, kv.SetMany(ctx, map[string][]byte{
				"a": []byte("1"),
				"b": []byte(`{"x":2}`),
			}))

			got, err := kv.Get(ctx, "a")
			require.NoError(t, err)
			assert.Equal(t, "1", string(got))

			require.NoError(t, kv.SetMany(ctx, map[string][]byte{"a": []byte("overwritten")}))
			got, err = kv.Get(ctx, "a")
			require.NoError(t, err)
			assert.Equal(t, "overwritten", string(got))

			require.NoError(t, kv.Delete(ctx, "a", "b", "never-set"))
			_, err = kv.Get(ctx, "a")
			assert.ErrorIs(t, err, ErrNotFound)
			_, err = kv.Get(ctx, "b")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, kv.Delete(ctx))
		})
	}
}

func TestRedis_UsesPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	kv := NewRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}), WithPrefix("closet"))
	defer func() { _ = kv.Close() }()

	require.NoError(t, kv.SetMany(context.Background(), map[string][]byte{"k": []byte("v")}))

	val, err := mr.Get("closet:k")
	require.NoError(t, err)
	assert.Equal(t, "v", val)
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wardrobe.db")
	ctx := context.Background()

	first, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, first.SetMany(ctx, map[string][]byte{"k": []byte("v")}))
	require.NoError(t, first.Close())

	second, err := NewSQLite(path)
	require.NoError(t, err)
	defer func() { _ = second.Close() }()

	got, err := second.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
}

func TestSQLite_AppliesConnectionPragmas(t *testing.T) {
	kv, err := NewSQLite(filepath.Join(t.TempDir(), "wardrobe.db"))
	require.NoError(t, err)
	defer func() { _ = kv.Close() }()

	var mode string
	require.NoError(t, kv.db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	var sync, busy int
	require.NoError(t, kv.db.QueryRow("PRAGMA synchronous").Scan(&sync))
	assert.Equal(t, 1, sync)
	require.NoError(t, kv.db.QueryRow("PRAGMA busy_timeout").Scan(&busy))
	assert.Equal(t, 5000, busy)
}

func TestBadger_PingAfterClose(t *testing.T) {
	kv, err := NewBadgerInMemory()
	require.NoError(t, err)
	require.NoError(t, kv.Close())
	assert.Error(t, kv.Ping(context.Background()))
}
