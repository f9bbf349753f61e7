package view

import "sync"

// Memo はスコープ（ユーザーIDなど）ごとに直近1件の計算結果を保持する。
// コレクションのRevisionとパラメータの両方が一致した場合のみ再利用し、
// どちらかが変われば再計算する。
type Memo[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[string]memoEntry[K, V]
	hits    uint64
	misses  uint64
}

type memoEntry[K comparable, V any] struct {
	revision uint64
	key      K
	value    V
}

// NewMemo はMemoを生成する。
func NewMemo[K comparable, V any]() *Memo[K, V] {
	return &Memo[K, V]{entries: make(map[string]memoEntry[K, V])}
}

// Get はキャッシュ済みの値を返すか、computeで計算して保持する。
// computeはロック外で実行される。
func (m *Memo[K, V]) Get(scope string, revision uint64, key K, compute func() V) V {
	m.mu.Lock()
	if e, ok := m.entries[scope]; ok && e.revision == revision && e.key == key {
		m.hits++
		m.mu.Unlock()
		return e.value
	}
	m.misses++
	m.mu.Unlock()

	v := compute()

	m.mu.Lock()
	defer m.mu.Unlock()
	// より新しいRevisionの結果を古い計算で上書きしない
	if e, ok := m.entries[scope]; !ok || e.revision <= revision {
		m.entries[scope] = memoEntry[K, V]{revision: revision, key: key, value: v}
	}
	return v
}

// Stats はヒット数とミス数を返す。
func (m *Memo[K, V]) Stats() (hits, misses uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits, m.misses
}
