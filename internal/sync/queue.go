package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/sawyersrpg/savecore/internal/slot"
)

// QueueKeyPrefix is the storage key prefix for pending uploads. ULIDs
// sort by creation time, so a prefix scan yields entries oldest first.
const QueueKeyPrefix = "sawyers_rpg_sync_queue_"

// PendingUpload is one deferred backup, written when the network was
// unavailable at save time.
type PendingUpload struct {
	ID         string `json:"id"`
	SlotIndex  int    `json:"slotIndex"`
	Timestamp  int64  `json:"timestamp"`
	EnqueuedAt int64  `json:"enqueuedAt"`
}

// queue persists pending uploads in a slot store, keyed by ULID.
type queue struct {
	store slot.Store
	now   func() time.Time

	mu      sync.Mutex
	entropy *rand.Rand
}

func newQueue(store slot.Store, now func() time.Time) *queue {
	return &queue{
		store:   store,
		now:     now,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (q *queue) newID() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(q.now()), q.entropy).String()
}

// enqueue records a deferred upload. A slot already queued with the
// same record timestamp is not queued twice.
func (q *queue) enqueue(ctx context.Context, slotIndex int, timestamp int64) (*PendingUpload, error) {
	var exists bool
	err := q.scan(ctx, func(entry PendingUpload) bool {
		if entry.SlotIndex == slotIndex && entry.Timestamp == timestamp {
			exists = true
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, nil
	}

	entry := PendingUpload{
		ID:         q.newID(),
		SlotIndex:  slotIndex,
		Timestamp:  timestamp,
		EnqueuedAt: q.now().UnixMilli(),
	}
	raw, err := json.Marshal(&entry)
	if err != nil {
		return nil, fmt.Errorf("encode queue entry: %w", err)
	}
	if err := q.store.Put(ctx, QueueKeyPrefix+entry.ID, raw); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (q *queue) remove(ctx context.Context, id string) error {
	return q.store.Delete(ctx, QueueKeyPrefix+id)
}

// scan visits pending uploads oldest first. Undecodable entries are
// skipped.
func (q *queue) scan(ctx context.Context, fn func(entry PendingUpload) bool) error {
	return q.store.Scan(ctx, QueueKeyPrefix, func(key string, value []byte) bool {
		var entry PendingUpload
		if err := json.Unmarshal(value, &entry); err != nil {
			return true
		}
		return fn(entry)
	})
}

// entries returns all pending uploads oldest first.
func (q *queue) entries(ctx context.Context) ([]PendingUpload, error) {
	var out []PendingUpload
	err := q.scan(ctx, func(entry PendingUpload) bool {
		out = append(out, entry)
		return true
	})
	return out, err
}
