package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/scm/internal/domain"
)

type outboxState int

const (
	outboxPending outboxState = iota
	outboxSent
	outboxFailed
)

type outboxEntry struct {
	msg       domain.OutboxMessage
	state     outboxState
	attempts  int
	lastError string
}

// OutboxRepository: очередь outbox в памяти. Порядок выдачи совпадает
// с порядком Enqueue.
type OutboxRepository struct {
	mu      sync.Mutex
	seq     []string
	entries map[string]*outboxEntry
	now     func() time.Time
}

// NewOutboxRepository создаёт пустую очередь.
func NewOutboxRepository() *OutboxRepository {
	return &OutboxRepository{
		entries: make(map[string]*outboxEntry),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (r *OutboxRepository) Enqueue(_ context.Context, msg domain.OutboxMessage) (domain.OutboxMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if msg.ID == "" {
		msg.ID = newID()
	}
	if _, exists := r.entries[msg.ID]; exists {
		return domain.OutboxMessage{}, conflict("outbox message %q already exists", msg.ID)
	}
	msg.Payload = slices.Clone(msg.Payload)
	msg.CreatedAt = r.now()

	r.entries[msg.ID] = &outboxEntry{msg: msg}
	r.seq = append(r.seq, msg.ID)
	return msg, nil
}

func (r *OutboxRepository) PullPending(_ context.Context, limit int) ([]domain.OutboxMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 {
		limit = 100
	}
	result := make([]domain.OutboxMessage, 0, min(limit, len(r.seq)))
	for _, id := range r.seq {
		if len(result) == limit {
			break
		}
		result = append(result, r.entries[id].msg)
	}
	return result, nil
}

func (r *OutboxRepository) Stats(context.Context) (domain.OutboxStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := domain.OutboxStats{PendingCount: len(r.seq)}
	if len(r.seq) > 0 {
		stats.OldestPendingAt = r.entries[r.seq[0]].msg.CreatedAt
	}
	return stats, nil
}

func (r *OutboxRepository) MarkSent(_ context.Context, id string) error {
	return r.settle(id, outboxSent, "")
}

func (r *OutboxRepository) MarkFailed(_ context.Context, id, reason string) error {
	return r.settle(id, outboxFailed, reason)
}

// settle снимает запись из очереди pending.
func (r *OutboxRepository) settle(id string, state outboxState, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok {
		return domain.ErrOutboxPublish
	}
	entry.state = state
	entry.attempts++
	entry.lastError = reason
	r.seq = slices.DeleteFunc(r.seq, func(s string) bool { return s == id })
	return nil
}

// Failed возвращает сообщения, доставка которых не удалась, с причиной.
func (r *OutboxRepository) Failed() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]string)
	for id, entry := range r.entries {
		if entry.state == outboxFailed {
			out[id] = entry.lastError
		}
	}
	return out
}

var _ domain.OutboxRepository = (*OutboxRepository)(nil)
