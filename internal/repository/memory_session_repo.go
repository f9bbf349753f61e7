package repository

import (
	"context"
	"fmt"
	"sync"
)

// MemorySessionRepo はユーザーごとのセッション中コレクションをインメモリで保持する。
// 初回アクセス時にUserRepositoryのコレクションをコピーして初期化する。
type MemorySessionRepo struct {
	users UserRepository

	mu     sync.Mutex
	states map[string]CollectionState
}

// NewMemorySessionRepo はMemorySessionRepoを生成する。
func NewMemorySessionRepo(users UserRepository) *MemorySessionRepo {
	return &MemorySessionRepo{
		users:  users,
		states: make(map[string]CollectionState),
	}
}

// Get はユーザーのセッション中コレクションのコピーを返す。ユーザーが存在しない場合はnilを返す。
func (r *MemorySessionRepo) Get(ctx context.Context, userID string) (*CollectionState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok, err := r.loadLocked(ctx, userID)
	if err != nil || !ok {
		return nil, err
	}
	out := state.Clone()
	return &out, nil
}

// Update は現在の状態をfnに渡し、返された状態で置き換えてRevisionを1進める。
// ユーザーが存在しない場合はnilを返す。
func (r *MemorySessionRepo) Update(ctx context.Context, userID string, fn func(CollectionState) (CollectionState, error)) (*CollectionState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok, err := r.loadLocked(ctx, userID)
	if err != nil || !ok {
		return nil, err
	}

	next, err := fn(state.Clone())
	if err != nil {
		return nil, err
	}
	next.UserID = userID
	next.Revision = state.Revision + 1
	r.states[userID] = next.Clone()

	out := next.Clone()
	return &out, nil
}

// loadLocked はロック取得済みの状態で呼び出す。
func (r *MemorySessionRepo) loadLocked(ctx context.Context, userID string) (CollectionState, bool, error) {
	if state, ok := r.states[userID]; ok {
		return state, true, nil
	}

	user, err := r.users.FindByID(ctx, userID)
	if err != nil {
		return CollectionState{}, false, fmt.Errorf("ユーザー %s の読み込みに失敗しました: %w", userID, err)
	}
	if user == nil {
		return CollectionState{}, false, nil
	}

	state := CollectionState{
		UserID:   userID,
		Games:    user.Games,
		Consoles: user.Consoles,
		Revision: 1,
	}
	r.states[userID] = state
	return state, true, nil
}
