package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurufuwa/board/pkg/config"
)

// contract exercises the behaviour every Store must share
func contract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound), "Get on absent key = %v, want ErrNotFound", err)

	require.NoError(t, s.Set(ctx, "yurufuwa_counter", "1"))
	v, err := s.Get(ctx, "yurufuwa_counter")
	require.NoError(t, err)
	assert.Equal(t, "1", v)

	require.NoError(t, s.Set(ctx, "yurufuwa_counter", "2"))
	v, err = s.Get(ctx, "yurufuwa_counter")
	require.NoError(t, err)
	assert.Equal(t, "2", v)

	payload := `[{"id":1,"content":"ice cream"}]`
	require.NoError(t, s.Set(ctx, "yurufuwa_posts", payload))
	v, err = s.Get(ctx, "yurufuwa_posts")
	require.NoError(t, err)
	assert.Equal(t, payload, v)

	require.NoError(t, s.Set(ctx, "yurufuwa_posts", ""))
	v, err = s.Get(ctx, "yurufuwa_posts")
	require.NoError(t, err)
	assert.Equal(t, "", v)
}

func TestMemoryStore(t *testing.T) {
	contract(t, NewMemory(0))
}

func TestMemoryStoreQuota(t *testing.T) {
	ctx := context.Background()
	s := NewMemory(10)

	require.NoError(t, s.Set(ctx, "k", "12345"))
	err := s.Set(ctx, "k2", "123456789")
	assert.True(t, errors.Is(err, ErrQuotaExceeded))

	// Rewriting an existing key only counts the difference
	require.NoError(t, s.Set(ctx, "k", "123456789"))
	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "123456789", v)

	_, err = s.Get(ctx, "k2")
	assert.True(t, errors.Is(err, ErrNotFound), "rejected write must not be stored")

	s.SetQuota(0)
	require.NoError(t, s.Set(ctx, "k2", "123456789"))
	assert.Equal(t, 2, s.Keys())
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisClient(client)
	defer s.Close()

	contract(t, s)

	v, err := mr.Get("yurufuwa_counter")
	require.NoError(t, err)
	assert.Equal(t, "2", v)
	assert.Zero(t, mr.TTL("yurufuwa_counter"), "board keys must not expire")
	require.NoError(t, s.Health(context.Background()))
}

func TestNewRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := NewRedis(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	defer s.Close()
	contract(t, s)

	_, err = NewRedis(context.Background(), "not a url")
	assert.Error(t, err)
}

func TestSQLStoreSQLite(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "board.db")
	s, err := NewSQL(context.Background(), config.DriverSQLite, dsn, "ERROR")
	require.NoError(t, err)
	defer s.Close()

	contract(t, s)
	require.NoError(t, s.Health(context.Background()))
}

func TestSQLStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "board.db")

	s, err := NewSQL(ctx, config.DriverSQLite, dsn, "ERROR")
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "yurufuwa_counter", "41"))
	require.NoError(t, s.Close())

	s, err = NewSQL(ctx, config.DriverSQLite, dsn, "ERROR")
	require.NoError(t, err)
	defer s.Close()
	v, err := s.Get(ctx, "yurufuwa_counter")
	require.NoError(t, err)
	assert.Equal(t, "41", v)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, &config.StoreConfig{Driver: config.DriverMemory}, "INFO")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(ctx, &config.StoreConfig{Driver: config.DriverSQLite, URL: filepath.Join(t.TempDir(), "b.db")}, "ERROR")
	require.NoError(t, err)
	assert.IsType(t, &SQLStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, &config.StoreConfig{Driver: "floppy"}, "INFO")
	assert.Error(t, err)
}
