package repository

import (
	"context"
	"sync"

	"github.com/hitoshi/gamevault/internal/model"
)

// MemoryPreferencesRepo はインメモリのユーザー設定リポジトリ。
// 更新はコピーオンライトで行い、読み出し済みの値が後から書き換わることはない。
type MemoryPreferencesRepo struct {
	mu    sync.RWMutex
	prefs map[string]model.Preferences
}

// NewMemoryPreferencesRepo はシードデータからMemoryPreferencesRepoを生成する。
func NewMemoryPreferencesRepo(seed map[string]model.Preferences) *MemoryPreferencesRepo {
	r := &MemoryPreferencesRepo{prefs: make(map[string]model.Preferences, len(seed))}
	for id, p := range seed {
		r.prefs[id] = p.Clone()
	}
	return r
}

// FindByUserID は指定ユーザーの設定のコピーを返す。未登録の場合は空の設定を返す。
func (r *MemoryPreferencesRepo) FindByUserID(ctx context.Context, userID string) (*model.Preferences, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	p := r.prefs[userID].Clone()
	return &p, nil
}

// Update は現在の設定をfnに渡し、fnが返した新しい設定で置き換える。
func (r *MemoryPreferencesRepo) Update(ctx context.Context, userID string, fn func(model.Preferences) (model.Preferences, error)) (*model.Preferences, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next, err := fn(r.prefs[userID].Clone())
	if err != nil {
		return nil, err
	}
	r.prefs[userID] = next.Clone()

	out := next.Clone()
	return &out, nil
}
