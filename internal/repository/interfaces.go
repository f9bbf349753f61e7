// Package repository はデータ保持のインターフェースとインメモリ実装を定義する。
// 永続化は行わず、プロセスの生存期間中のみデータを保持する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/gamevault/internal/model"
)

// UserRepository はユーザー（とその初期コレクション）の参照インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーのコピーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// List は全ユーザーのコピーを登録順で返す。
	List(ctx context.Context) ([]model.User, error)
}

// PreferencesRepository はユーザー設定の保持インターフェース。
type PreferencesRepository interface {
	// FindByUserID は指定ユーザーの設定のコピーを返す。未登録の場合は空の設定を返す。
	FindByUserID(ctx context.Context, userID string) (*model.Preferences, error)

	// Update は現在の設定をfnに渡し、fnが返した新しい設定で置き換える。
	// fnがエラーを返した場合は何も変更しない。
	Update(ctx context.Context, userID string, fn func(model.Preferences) (model.Preferences, error)) (*model.Preferences, error)
}

// CollectionState はユーザーごとのセッション中のコレクションを表す。
// Revisionは変更のたびに単調増加し、派生ビューのメモ化キーとして使う。
type CollectionState struct {
	UserID   string
	Games    []model.Game
	Consoles []model.Console
	Revision uint64
}

// Clone はディープコピーを返す。
func (s CollectionState) Clone() CollectionState {
	return CollectionState{
		UserID:   s.UserID,
		Games:    model.CloneGames(s.Games),
		Consoles: model.CloneConsoles(s.Consoles),
		Revision: s.Revision,
	}
}

// SessionRepository はユーザーごとのセッション中コレクションの保持インターフェース。
type SessionRepository interface {
	// Get はユーザーのセッション中コレクションを返す。
	// 初回アクセス時はUserRepositoryの内容をコピーして初期化する。
	// ユーザーが存在しない場合はnilを返す。
	Get(ctx context.Context, userID string) (*CollectionState, error)

	// Update は現在の状態をfnに渡し、fnが返した状態で置き換えてRevisionを進める。
	// fnがエラーを返した場合は何も変更しない。
	Update(ctx context.Context, userID string, fn func(CollectionState) (CollectionState, error)) (*CollectionState, error)
}

// ActivityRepository はアクティビティイベントの保持インターフェース。
type ActivityRepository interface {
	// Append はイベントを追加する。
	Append(ctx context.Context, events ...model.ActivityEvent) error

	// List は全イベントを新しい順で返す。
	List(ctx context.Context) ([]model.ActivityEvent, error)

	// DeleteOlderThan はcutoffより古いイベントを削除し、削除件数を返す。
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
