package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/gamevault/internal/model"
)

func testUsers() []model.User {
	return []model.User{
		{
			ID:       "u1",
			Username: "alice",
			Games: []model.Game{
				{ID: "g1", Title: "Hades", Price: model.Float64(25.99), ForSale: true},
			},
			Consoles: []model.Console{{ID: "c1", Name: "Nintendo Switch"}},
		},
		{ID: "u2", Username: "bob"},
	}
}

func TestMemoryUserRepo_FindByID(t *testing.T) {
	repo := NewMemoryUserRepo(testUsers())
	ctx := context.Background()

	u, err := repo.FindByID(ctx, "u1")
	if err != nil {
		t.Fatalf("FindByID がエラーを返した: %v", err)
	}
	if u == nil || u.Username != "alice" {
		t.Fatalf("FindByID = %+v, want alice", u)
	}

	missing, err := repo.FindByID(ctx, "nope")
	if err != nil {
		t.Fatalf("FindByID がエラーを返した: %v", err)
	}
	if missing != nil {
		t.Errorf("FindByID(nope) = %+v, want nil", missing)
	}
}

func TestMemoryUserRepo_ReturnsCopies(t *testing.T) {
	repo := NewMemoryUserRepo(testUsers())
	ctx := context.Background()

	u, _ := repo.FindByID(ctx, "u1")
	u.Games[0].Title = "changed"
	*u.Games[0].Price = 0

	again, _ := repo.FindByID(ctx, "u1")
	if again.Games[0].Title != "Hades" || *again.Games[0].Price != 25.99 {
		t.Errorf("stored user mutated through returned copy: %+v", again.Games[0])
	}
}

func TestMemoryUserRepo_ListKeepsOrder(t *testing.T) {
	repo := NewMemoryUserRepo(testUsers())

	users, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List がエラーを返した: %v", err)
	}
	if len(users) != 2 || users[0].ID != "u1" || users[1].ID != "u2" {
		t.Errorf("List = %+v", users)
	}
}

func TestMemoryUserRepo_CanceledContext(t *testing.T) {
	repo := NewMemoryUserRepo(testUsers())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := repo.List(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("List err = %v, want context.Canceled", err)
	}
}

func TestMemoryPreferencesRepo_CopyOnWrite(t *testing.T) {
	repo := NewMemoryPreferencesRepo(map[string]model.Preferences{
		"u1": {Wishlist: []model.WishlistItem{{ID: "w1", GameTitle: "Hogwarts Legacy"}}},
	})
	ctx := context.Background()

	before, err := repo.FindByUserID(ctx, "u1")
	if err != nil {
		t.Fatalf("FindByUserID がエラーを返した: %v", err)
	}

	_, err = repo.Update(ctx, "u1", func(p model.Preferences) (model.Preferences, error) {
		p.Wishlist = append(p.Wishlist, model.WishlistItem{ID: "w2", GameTitle: "Elden Ring"})
		return p, nil
	})
	if err != nil {
		t.Fatalf("Update がエラーを返した: %v", err)
	}

	if len(before.Wishlist) != 1 {
		t.Errorf("previously read preferences changed: %d items", len(before.Wishlist))
	}
	after, _ := repo.FindByUserID(ctx, "u1")
	if len(after.Wishlist) != 2 {
		t.Errorf("wishlist after update = %d, want 2", len(after.Wishlist))
	}
}

func TestMemoryPreferencesRepo_UpdateErrorKeepsState(t *testing.T) {
	repo := NewMemoryPreferencesRepo(nil)
	ctx := context.Background()
	boom := errors.New("boom")

	_, err := repo.Update(ctx, "u1", func(p model.Preferences) (model.Preferences, error) {
		p.PersonalQuote = "should not persist"
		return p, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Update err = %v, want boom", err)
	}

	p, _ := repo.FindByUserID(ctx, "u1")
	if p.PersonalQuote != "" {
		t.Errorf("PersonalQuote = %q, want empty", p.PersonalQuote)
	}
}

func TestMemorySessionRepo_LazyInitAndRevision(t *testing.T) {
	users := NewMemoryUserRepo(testUsers())
	repo := NewMemorySessionRepo(users)
	ctx := context.Background()

	state, err := repo.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get がエラーを返した: %v", err)
	}
	if state.Revision != 1 || len(state.Games) != 1 {
		t.Fatalf("initial state = %+v", state)
	}

	updated, err := repo.Update(ctx, "u1", func(s CollectionState) (CollectionState, error) {
		s.Games[0].ForSale = false
		s.Games[0].Price = nil
		return s, nil
	})
	if err != nil {
		t.Fatalf("Update がエラーを返した: %v", err)
	}
	if updated.Revision != 2 {
		t.Errorf("Revision = %d, want 2", updated.Revision)
	}

	// セッション中の変更はユーザーリポジトリの初期データには影響しない
	u, _ := users.FindByID(ctx, "u1")
	if !u.Games[0].ForSale {
		t.Error("session mutation leaked into user repository")
	}
	// 先に取得した状態も変化しない
	if !state.Games[0].ForSale {
		t.Error("session mutation leaked into previously returned state")
	}
}

func TestMemorySessionRepo_UnknownUser(t *testing.T) {
	repo := NewMemorySessionRepo(NewMemoryUserRepo(testUsers()))

	state, err := repo.Get(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("Get がエラーを返した: %v", err)
	}
	if state != nil {
		t.Errorf("Get(ghost) = %+v, want nil", state)
	}
}

func TestMemorySessionRepo_LoadErrorIsWrapped(t *testing.T) {
	repo := NewMemorySessionRepo(NewMemoryUserRepo(testUsers()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Get(ctx, "u1")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Get = %v, want context.Canceled", err)
	}
	if !strings.Contains(err.Error(), "ユーザー u1 の読み込みに失敗しました") {
		t.Errorf("error = %q", err.Error())
	}
}

func TestMemoryActivityRepo_ListNewestFirstAndPrune(t *testing.T) {
	repo := NewMemoryActivityRepo()
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	err := repo.Append(ctx,
		model.ActivityEvent{ID: "old", Timestamp: now.Add(-48 * time.Hour)},
		model.ActivityEvent{ID: "mid", Timestamp: now.Add(-2 * time.Hour)},
		model.ActivityEvent{ID: "new", Timestamp: now.Add(-1 * time.Minute)},
	)
	if err != nil {
		t.Fatalf("Append がエラーを返した: %v", err)
	}

	events, _ := repo.List(ctx)
	if events[0].ID != "new" || events[2].ID != "old" {
		t.Errorf("order = %s,%s,%s", events[0].ID, events[1].ID, events[2].ID)
	}

	deleted, err := repo.DeleteOlderThan(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteOlderThan がエラーを返した: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}
	events, _ = repo.List(ctx)
	if len(events) != 2 {
		t.Errorf("remaining = %d, want 2", len(events))
	}
}
