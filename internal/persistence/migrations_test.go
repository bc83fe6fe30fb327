package persistence

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/chat-registration/internal/config"
)

func TestMigrationNamesSorted(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/002_b.sql":    {Data: []byte("SELECT 2;")},
		"migrations/001_a.sql":    {Data: []byte("SELECT 1;")},
		"migrations/nested/x.sql": {Data: []byte("SELECT 3;")},
	}

	names, err := migrationNames(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_a.sql", "002_b.sql"}, names)
}

func TestEmbeddedMigrations(t *testing.T) {
	names, err := migrationNames(migrationFiles)
	require.NoError(t, err)
	assert.Contains(t, names, "001_registration_log.sql")
}

func TestRunMigrationsWithoutPool(t *testing.T) {
	assert.NoError(t, RunMigrations(context.Background(), nil, zap.NewNop()))
}

func TestDisabledBackends(t *testing.T) {
	ctx := context.Background()

	pg, err := NewPostgres(ctx, config.PostgresConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, pg.Enabled())
	assert.ErrorIs(t, pg.Ping(ctx), ErrPostgresDisabled)
	pg.Close()

	r := NewRedis(config.RedisConfig{}, zap.NewNop())
	assert.False(t, r.Enabled())
	assert.ErrorIs(t, r.Ping(ctx), ErrRedisDisabled)
	assert.ErrorIs(t, r.Publish(ctx, "registrations", []byte("{}")), ErrRedisDisabled)
	r.Close()
}
