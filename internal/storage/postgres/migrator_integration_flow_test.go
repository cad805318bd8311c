package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMigrator_PostgresLifecycle(t *testing.T) {
	store := connectOrSkip(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	require.NoError(t, store.MigrateDown(ctx, 100))

	state, err := store.MigrationStatus(ctx)
	require.NoError(t, err)
	require.Zero(t, state.Version)
	require.Zero(t, state.Applied)
	require.Len(t, state.Pending, 3)

	require.NoError(t, store.MigrateUp(ctx, 2))
	state, err = store.MigrationStatus(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), state.Version)
	require.Equal(t, []string{"0003_outbox"}, state.Pending)

	require.NoError(t, store.MigrateUp(ctx, 0))
	require.NoError(t, store.MigrateUp(ctx, 0))
	state, err = store.MigrationStatus(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(3), state.Version)
	require.Equal(t, 3, state.Applied)
	require.Empty(t, state.Pending)

	require.NoError(t, store.MigrateDown(ctx, 0))
	state, err = store.MigrationStatus(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), state.Version)

	require.NoError(t, store.MigrateUp(ctx, 0))
}

func TestMigrator_Guards(t *testing.T) {
	var nilStore *Store
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.Error(t, nilStore.MigrateUp(ctx, 0))
	require.Error(t, nilStore.MigrateDown(ctx, 1))
	_, err := nilStore.MigrationStatus(ctx)
	require.Error(t, err)
}
