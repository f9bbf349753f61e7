package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hitoshi/gamevault/internal/model"
)

// MemoryActivityRepo はインメモリのアクティビティリポジトリ。
type MemoryActivityRepo struct {
	mu     sync.RWMutex
	events []model.ActivityEvent
}

// NewMemoryActivityRepo はMemoryActivityRepoを生成する。
func NewMemoryActivityRepo() *MemoryActivityRepo {
	return &MemoryActivityRepo{}
}

// Append はイベントを追加する。
func (r *MemoryActivityRepo) Append(ctx context.Context, events ...model.ActivityEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, events...)
	return nil
}

// List は全イベントのコピーを新しい順で返す。
func (r *MemoryActivityRepo) List(ctx context.Context) ([]model.ActivityEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	out := make([]model.ActivityEvent, len(r.events))
	copy(out, r.events)
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

// DeleteOlderThan はcutoffより古いイベントを削除し、削除件数を返す。
func (r *MemoryActivityRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.events[:0]
	var deleted int64
	for _, e := range r.events {
		if e.Timestamp.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	r.events = kept
	return deleted, nil
}
