package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/scm/internal/domain"
)

func TestOutboxRepository_PostgresFlow(t *testing.T) {
	store := freshSchema(t)
	repo := NewOutboxRepository(store)
	ctx := context.Background()

	first, err := repo.Enqueue(ctx, domain.OutboxMessage{
		AggregateType: domain.AggregateOrder,
		AggregateID:   "o1",
		EventType:     "order.created",
		Payload:       []byte(`{"id":"o1"}`),
	})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)
	require.False(t, first.CreatedAt.IsZero())

	second, err := repo.Enqueue(ctx, domain.OutboxMessage{
		ID:            "outbox-fixed-id",
		AggregateType: domain.AggregateCargo,
		AggregateID:   "c1",
		EventType:     "cargo.deleted",
	})
	require.NoError(t, err)
	require.Equal(t, "outbox-fixed-id", second.ID)

	_, err = repo.Enqueue(ctx, domain.OutboxMessage{ID: "outbox-fixed-id", EventType: "cargo.deleted"})
	require.ErrorIs(t, err, domain.ErrConflict)

	pending, err := repo.PullPending(ctx, 0)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	require.Equal(t, first.ID, pending[0].ID)
	require.JSONEq(t, `{}`, string(pending[1].Payload))

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, stats.PendingCount)
	require.Equal(t, first.CreatedAt, stats.OldestPendingAt)

	require.NoError(t, repo.MarkSent(ctx, first.ID))
	require.NoError(t, repo.MarkFailed(ctx, second.ID, "broker unavailable"))

	after, err := repo.PullPending(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, after)

	var (
		status    string
		attempts  int
		lastError string
	)
	require.NoError(t, store.DB().QueryRowContext(ctx,
		`SELECT status, attempt_count, last_error FROM outbox_messages WHERE id = $1`, second.ID,
	).Scan(&status, &attempts, &lastError))
	require.Equal(t, "failed", status)
	require.Equal(t, 1, attempts)
	require.Equal(t, "broker unavailable", lastError)

	require.ErrorIs(t, repo.MarkSent(ctx, "missing-outbox"), domain.ErrOutboxPublish)
}
