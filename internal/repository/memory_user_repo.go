package repository

import (
	"context"
	"sync"

	"github.com/hitoshi/gamevault/internal/model"
)

// MemoryUserRepo はインメモリのユーザーリポジトリ。
type MemoryUserRepo struct {
	mu    sync.RWMutex
	users []model.User
	index map[string]int
}

// NewMemoryUserRepo はシードデータからMemoryUserRepoを生成する。
// 渡されたスライスはコピーして保持する。
func NewMemoryUserRepo(users []model.User) *MemoryUserRepo {
	r := &MemoryUserRepo{
		users: make([]model.User, len(users)),
		index: make(map[string]int, len(users)),
	}
	for i, u := range users {
		r.users[i] = u.Clone()
		r.index[u.ID] = i
	}
	return r
}

// FindByID は指定IDのユーザーのコピーを取得する。見つからない場合はnilを返す。
func (r *MemoryUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[id]
	if !ok {
		return nil, nil
	}
	u := r.users[i].Clone()
	return &u, nil
}

// List は全ユーザーのコピーを登録順で返す。
func (r *MemoryUserRepo) List(ctx context.Context) ([]model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.User, len(r.users))
	for i, u := range r.users {
		out[i] = u.Clone()
	}
	return out, nil
}

// Ping はストアが利用可能かを返す。メモリ上のストアはコンテキストが有効な限り常に応答する。
func (r *MemoryUserRepo) Ping(ctx context.Context) error {
	return ctx.Err()
}
