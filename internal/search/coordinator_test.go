package search

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/hitoshi/gamevault/internal/metadata"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// fakeBackend はBackendのテスト用モック。
type fakeBackend struct {
	mu          sync.Mutex
	queries     []string
	searchFunc  func(ctx context.Context, query string) metadata.Result
	detailsFunc func(name string) *metadata.Details
}

func (f *fakeBackend) SearchTitles(ctx context.Context, query string, limit int) metadata.Result {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	if f.searchFunc != nil {
		return f.searchFunc(ctx, query)
	}
	return metadata.Result{Titles: []metadata.Title{{ID: "1", Name: query}}}
}

func (f *fakeBackend) EnhancedDetails(ctx context.Context, name string) *metadata.Details {
	if f.detailsFunc != nil {
		return f.detailsFunc(name)
	}
	return nil
}

func (f *fakeBackend) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

// newRecordingCoordinator は状態通知をチャネルに流すCoordinatorを生成する。
func newRecordingCoordinator(t *testing.T, backend Backend, debounce time.Duration) (*Coordinator, chan Snapshot, chan Enrichment) {
	t.Helper()
	var buf bytes.Buffer
	snaps := make(chan Snapshot, 256)
	enriched := make(chan Enrichment, 16)
	c := NewCoordinator(backend, newTestLogger(&buf), Options{
		Debounce:   debounce,
		OnChange:   func(s Snapshot) { snaps <- s },
		OnEnriched: func(e Enrichment) { enriched <- e },
	})
	t.Cleanup(c.Close)
	return c, snaps, enriched
}

// waitFor は条件を満たすスナップショットが通知されるまで待つ。
func waitFor(t *testing.T, snaps <-chan Snapshot, pred func(Snapshot) bool) Snapshot {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case s := <-snaps:
			if pred(s) {
				return s
			}
		case <-timeout:
			t.Fatal("期待する状態に到達しなかった")
			return Snapshot{}
		}
	}
}

func settled(s Snapshot) bool {
	return s.State == StatePopulated || s.State == StateEmpty
}

func TestCoordinator_DebounceIssuesOneSearchForRapidTyping(t *testing.T) {
	backend := &fakeBackend{}
	c, snaps, _ := newRecordingCoordinator(t, backend, 50*time.Millisecond)

	for _, q := range []string{"e", "el", "eld", "elde"} {
		c.Input(q)
	}
	if got := c.Snapshot().State; got != StateDebouncing {
		t.Errorf("入力直後の状態 = %s, want debouncing", got)
	}

	s := waitFor(t, snaps, settled)
	if s.State != StatePopulated || s.Results[0].Name != "elde" {
		t.Errorf("Snapshot = %+v", s)
	}
	if got := backend.calls(); !reflect.DeepEqual(got, []string{"elde"}) {
		t.Errorf("検索呼び出し = %v, want [elde]", got)
	}
}

func TestCoordinator_StaleResponseIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	marioCtxErr := make(chan error, 1)
	backend := &fakeBackend{
		searchFunc: func(ctx context.Context, query string) metadata.Result {
			if query == "mario" {
				// キャンセルを無視して遅れて返す
				<-release
				marioCtxErr <- ctx.Err()
				return metadata.Result{Titles: []metadata.Title{{ID: "m", Name: "Super Mario Bros."}}}
			}
			return metadata.Result{Titles: []metadata.Title{{ID: "z", Name: "Zelda"}}}
		},
	}
	c, snaps, _ := newRecordingCoordinator(t, backend, 10*time.Millisecond)

	c.Input("mario")
	waitFor(t, snaps, func(s Snapshot) bool { return s.State == StateSearching })

	c.Input("zelda")
	s := waitFor(t, snaps, settled)
	if len(s.Results) != 1 || s.Results[0].ID != "z" {
		t.Fatalf("zelda の結果を期待: %+v", s)
	}

	close(release)
	if err := <-marioCtxErr; !errors.Is(err, context.Canceled) {
		t.Errorf("置き換えられた検索のコンテキスト = %v, want Canceled", err)
	}

	// Close は実行中の完了処理を待つ
	c.Close()
	final := c.Snapshot()
	if len(final.Results) != 1 || final.Results[0].ID != "z" {
		t.Errorf("古いレスポンスで上書きされた: %+v", final)
	}
}

func TestCoordinator_ShortQueryReturnsToIdle(t *testing.T) {
	backend := &fakeBackend{}
	c, snaps, _ := newRecordingCoordinator(t, backend, 10*time.Millisecond)

	c.Input("zelda")
	waitFor(t, snaps, settled)

	c.Input(" z ")
	s := waitFor(t, snaps, func(s Snapshot) bool { return s.State == StateIdle })
	if len(s.Results) != 0 || s.Open {
		t.Errorf("idle では結果が消去され閉じているべき: %+v", s)
	}
	if got := backend.calls(); len(got) != 1 {
		t.Errorf("検索呼び出し = %v, want 1件", got)
	}
}

func TestCoordinator_UnavailableFoldsIntoEmpty(t *testing.T) {
	backend := &fakeBackend{
		searchFunc: func(ctx context.Context, query string) metadata.Result {
			return metadata.Result{Titles: []metadata.Title{}, Err: metadata.ErrNoCredentials}
		},
	}
	c, snaps, _ := newRecordingCoordinator(t, backend, 10*time.Millisecond)

	c.Input("zelda")
	s := waitFor(t, snaps, settled)
	if s.State != StateEmpty {
		t.Errorf("State = %s, want empty", s.State)
	}
	if !s.Unavailable {
		t.Error("Unavailable = false, want true")
	}
}

func TestCoordinator_SelectClearsResultsAndEnriches(t *testing.T) {
	backend := &fakeBackend{
		searchFunc: func(ctx context.Context, query string) metadata.Result {
			return metadata.Result{Titles: []metadata.Title{
				{ID: "1", Name: "Hades", BoxArtURL: "https://cdn/hades-500x700.jpg"},
				{ID: "2", Name: "Hades II"},
			}}
		},
		detailsFunc: func(name string) *metadata.Details {
			return &metadata.Details{Name: name, Publisher: "Supergiant", Genres: []string{"Roguelike"}}
		},
	}
	c, snaps, enriched := newRecordingCoordinator(t, backend, 10*time.Millisecond)

	c.Input("hade")
	waitFor(t, snaps, settled)

	sel, ok := c.Select(0)
	if !ok {
		t.Fatal("Select(0) = false")
	}
	if sel.Title != "Hades" || sel.CoverArt != "https://cdn/hades-500x700.jpg" {
		t.Errorf("Selection = %+v", sel)
	}

	s := c.Snapshot()
	if s.Query != "Hades" || len(s.Results) != 0 || s.Open {
		t.Errorf("選択後の状態 = %+v", s)
	}

	select {
	case e := <-enriched:
		if e.Publisher != "Supergiant" || e.Inferred || !reflect.DeepEqual(e.Genres, []string{"Roguelike"}) {
			t.Errorf("Enrichment = %+v", e)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("詳細情報が通知されなかった")
	}

	if _, ok := c.Select(0); ok {
		t.Error("結果が空のときの Select は false を返すべき")
	}
}

func TestCoordinator_EnrichmentFallsBackToInferredGenres(t *testing.T) {
	backend := &fakeBackend{
		searchFunc: func(ctx context.Context, query string) metadata.Result {
			return metadata.Result{Titles: []metadata.Title{{ID: "1", Name: "Gran Turismo 7"}}}
		},
	}
	c, snaps, enriched := newRecordingCoordinator(t, backend, 10*time.Millisecond)

	c.Input("gran")
	waitFor(t, snaps, settled)
	c.Select(0)

	select {
	case e := <-enriched:
		if !e.Inferred || !reflect.DeepEqual(e.Genres, []string{"Racing"}) {
			t.Errorf("Enrichment = %+v", e)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("詳細情報が通知されなかった")
	}
}

func TestCoordinator_OlderEnrichmentIsDropped(t *testing.T) {
	release := make(chan struct{})
	backend := &fakeBackend{
		searchFunc: func(ctx context.Context, query string) metadata.Result {
			return metadata.Result{Titles: []metadata.Title{
				{ID: "1", Name: "Dark Souls"},
				{ID: "2", Name: "Dark Souls III"},
			}}
		},
		detailsFunc: func(name string) *metadata.Details {
			if name == "Dark Souls" {
				<-release
				return &metadata.Details{Name: name, Publisher: "Namco", Genres: []string{"RPG"}}
			}
			return &metadata.Details{Name: name, Publisher: "Bandai Namco", Genres: []string{"Action RPG"}}
		},
	}
	c, snaps, enriched := newRecordingCoordinator(t, backend, 10*time.Millisecond)

	c.Input("dark")
	waitFor(t, snaps, settled)
	c.Select(0)

	c.Input("dark")
	waitFor(t, snaps, settled)
	c.Select(1)

	select {
	case e := <-enriched:
		if e.Title != "Dark Souls III" || e.Publisher != "Bandai Namco" {
			t.Errorf("Enrichment = %+v, want Dark Souls III", e)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("詳細情報が通知されなかった")
	}

	// 先に選択したタイトルの取得が後から完了しても通知しない
	close(release)
	select {
	case e := <-enriched:
		t.Errorf("古い選択の詳細情報が通知された: %+v", e)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestCoordinator_DismissKeepsQueryAndFocusReopens(t *testing.T) {
	backend := &fakeBackend{}
	c, snaps, _ := newRecordingCoordinator(t, backend, 10*time.Millisecond)

	c.Input("celeste")
	waitFor(t, snaps, settled)

	c.Dismiss()
	s := c.Snapshot()
	if s.Open {
		t.Error("Dismiss 後は閉じているべき")
	}
	if s.Query != "celeste" || len(s.Results) != 1 {
		t.Errorf("Dismiss はテキストと結果を保持するべき: %+v", s)
	}

	c.Focus()
	if !c.Snapshot().Open {
		t.Error("Focus 後は再び開いているべき")
	}
}

func TestCoordinator_CloseStopsPendingTimer(t *testing.T) {
	backend := &fakeBackend{}
	var buf bytes.Buffer
	c := NewCoordinator(backend, newTestLogger(&buf), Options{Debounce: 20 * time.Millisecond})

	c.Input("zelda")
	c.Close()
	time.Sleep(60 * time.Millisecond)

	if got := backend.calls(); len(got) != 0 {
		t.Errorf("Close 後に検索が実行された: %v", got)
	}

	// Close 後の操作は無視される
	c.Input("mario")
	if got := c.Snapshot().Query; got != "zelda" {
		t.Errorf("Close 後の Input が反映された: %q", got)
	}
}
