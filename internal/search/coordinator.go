// Package search は検索ボックス1つ分の対話的なタイトル検索を調停する。
// 入力のデバウンス、古いレスポンスの破棄、結果リストの開閉、
// 選択時の詳細情報の補完を扱う。
package search

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/hitoshi/gamevault/internal/metadata"
)

const (
	// DefaultDebounce は入力から検索開始までの既定の待ち時間。
	DefaultDebounce = 300 * time.Millisecond
	// minQueryLength は検索を実行する最小文字数（前後の空白を除く）。
	minQueryLength = 2
)

// State は検索ボックスの状態。
type State string

const (
	StateIdle       State = "idle"
	StateDebouncing State = "debouncing"
	StateSearching  State = "searching"
	StatePopulated  State = "populated"
	StateEmpty      State = "empty"
)

// Backend は Coordinator が利用するゲーム情報の取得元。
// *metadata.Client が満たす。
type Backend interface {
	SearchTitles(ctx context.Context, query string, limit int) metadata.Result
	EnhancedDetails(ctx context.Context, name string) *metadata.Details
}

// Snapshot は検索ボックスのある時点の状態。
// エラーは結果なしとして扱い、リストには区別して表示しない。
// Unavailable は直近の検索がサービス側の理由で失敗したことを示す。
type Snapshot struct {
	Query       string           `json:"query"`
	State       State            `json:"state"`
	Results     []metadata.Title `json:"results"`
	Open        bool             `json:"open"`
	Unavailable bool             `json:"unavailable"`
	Seq         uint64           `json:"seq"`
}

// Selection は結果リストから選ばれたタイトル。
type Selection struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	CoverArt string `json:"coverArt"`
}

// Enrichment は選択後に非同期で取得される詳細情報。
// 取得に失敗した場合はタイトルから推定したジャンルのみを持ち、Inferred が true になる。
type Enrichment struct {
	Title     string   `json:"title"`
	Publisher string   `json:"publisher"`
	Developer string   `json:"developer"`
	Genres    []string `json:"genre"`
	Inferred  bool     `json:"inferred"`
}

// Options はCoordinatorの設定。
type Options struct {
	Debounce time.Duration
	Limit    int
	// OnChange は状態が変わるたびに呼ばれる。Coordinator のロック内で同期的に呼ばれるため、
	// コールバック内で Coordinator のメソッドを呼んだり長時間ブロックしたりしてはならない。
	OnChange func(Snapshot)
	// OnEnriched は選択後の詳細情報の取得が完了したときに呼ばれる。
	OnEnriched func(Enrichment)
}

// Coordinator は検索ボックス1つ分の検索状態を管理する。
// 入力ごとにデバウンスタイマーを再始動し、タイマー満了時にシーケンス番号付きで検索を開始する。
// 最新のシーケンス番号と一致しない完了は破棄する。
type Coordinator struct {
	backend  Backend
	logger   *slog.Logger
	debounce time.Duration
	limit    int

	onChange   func(Snapshot)
	onEnriched func(Enrichment)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	query       string
	state       State
	results     []metadata.Title
	open        bool
	unavailable bool
	seq         uint64
	timer       *time.Timer
	inflight    context.CancelFunc
	closed      bool

	// selSeq は選択ごとに進む。最新の選択以外の詳細情報は通知しない。
	selSeq       uint64
	enrichCancel context.CancelFunc
	// enrichMu は OnEnriched の呼び出しを直列化する。
	enrichMu sync.Mutex
}

// NewCoordinator はCoordinatorの新しいインスタンスを生成する。
func NewCoordinator(backend Backend, logger *slog.Logger, opts Options) *Coordinator {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Limit <= 0 {
		opts.Limit = metadata.DefaultSearchLimit
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		backend:    backend,
		logger:     logger,
		debounce:   opts.Debounce,
		limit:      opts.Limit,
		onChange:   opts.OnChange,
		onEnriched: opts.OnEnriched,
		ctx:        ctx,
		cancel:     cancel,
		state:      StateIdle,
	}
}

// Input はキー入力を受け取り、デバウンスタイマーを再始動する。
// 実行中の検索は新しい入力によって無効になり、そのコンテキストはキャンセルされる。
func (c *Coordinator) Input(query string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.query = query
	c.state = StateDebouncing
	c.supersedeLocked()

	if c.timer != nil {
		c.timer.Stop()
	}
	seq := c.seq
	c.timer = time.AfterFunc(c.debounce, func() { c.fire(seq) })

	c.notifyLocked()
}

// fire はデバウンスタイマー満了時に呼ばれる。
// seq はタイマー設定時のシーケンス番号で、以後に入力があれば一致しない。
func (c *Coordinator) fire(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || seq != c.seq {
		return
	}

	q := strings.TrimSpace(c.query)
	if utf8.RuneCountInString(q) < minQueryLength {
		c.state = StateIdle
		c.results = nil
		c.open = false
		c.unavailable = false
		c.notifyLocked()
		return
	}

	c.seq++
	searchSeq := c.seq
	ctx, cancel := context.WithCancel(c.ctx)
	c.inflight = cancel
	c.state = StateSearching
	c.open = true
	c.notifyLocked()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()

		res := c.backend.SearchTitles(ctx, q, c.limit)
		c.complete(searchSeq, q, res)
	}()
}

// complete は検索の完了を反映する。最新でないシーケンス番号の結果は破棄する。
func (c *Coordinator) complete(seq uint64, query string, res metadata.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || seq != c.seq {
		c.logger.Debug("古い検索結果を破棄しました",
			slog.String("query", query),
			slog.Uint64("seq", seq),
			slog.Uint64("latest_seq", c.seq),
		)
		return
	}

	c.inflight = nil
	c.results = res.Titles
	c.unavailable = !res.Available()
	if len(res.Titles) > 0 {
		c.state = StatePopulated
	} else {
		c.state = StateEmpty
	}
	c.notifyLocked()
}

// Select は index 番目の結果を選択し、結果リストを消去して閉じる。
// 詳細情報の取得はバックグラウンドで行い、完了時に OnEnriched で通知する。
// index が範囲外の場合は false を返す。
func (c *Coordinator) Select(index int) (Selection, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || index < 0 || index >= len(c.results) {
		return Selection{}, false
	}

	picked := c.results[index]
	sel := Selection{ID: picked.ID, Title: picked.Name, CoverArt: picked.BoxArtURL}

	if c.timer != nil {
		c.timer.Stop()
	}
	c.supersedeLocked()
	c.query = picked.Name
	c.results = nil
	c.open = false
	c.unavailable = false
	c.state = StateIdle
	c.notifyLocked()

	if c.enrichCancel != nil {
		c.enrichCancel()
	}
	c.selSeq++
	selSeq := c.selSeq
	ctx, cancel := context.WithCancel(c.ctx)
	c.enrichCancel = cancel

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()
		c.enrich(ctx, selSeq, sel.Title)
	}()

	return sel, true
}

// enrich は選択したタイトルの詳細情報を取得する。失敗時はジャンルを推定する。
// より新しい選択があった場合は結果を破棄する。
func (c *Coordinator) enrich(ctx context.Context, seq uint64, title string) {
	e := Enrichment{Title: title}
	if d := c.backend.EnhancedDetails(ctx, title); d != nil {
		e.Publisher = d.Publisher
		e.Developer = d.Developer
		e.Genres = d.Genres
	}
	if len(e.Genres) == 0 {
		e.Genres = metadata.InferGenres(title)
		e.Inferred = true
	}

	c.enrichMu.Lock()
	defer c.enrichMu.Unlock()

	c.mu.Lock()
	stale := c.closed || seq != c.selSeq
	c.mu.Unlock()
	if stale || ctx.Err() != nil {
		c.logger.Debug("古い詳細情報を破棄しました",
			slog.String("title", title),
			slog.Uint64("seq", seq),
		)
		return
	}
	if c.onEnriched != nil {
		c.onEnriched(e)
	}
}

// Dismiss は結果リストを閉じる。入力中のテキストと結果は保持する。
func (c *Coordinator) Dismiss() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || !c.open {
		return
	}
	c.open = false
	c.notifyLocked()
}

// Focus は入力欄へのフォーカスで、保持している結果があればリストを再び開く。
func (c *Coordinator) Focus() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.open || len(c.results) == 0 {
		return
	}
	if utf8.RuneCountInString(strings.TrimSpace(c.query)) < minQueryLength {
		return
	}
	c.open = true
	c.notifyLocked()
}

// Snapshot は現在の状態を返す。
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Close はタイマーを停止し、実行中の検索と詳細取得をキャンセルして終了を待つ。
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
	}
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}

// supersedeLocked は実行中の検索を無効化してキャンセルする。c.mu を保持して呼ぶこと。
func (c *Coordinator) supersedeLocked() {
	c.seq++
	if c.inflight != nil {
		c.inflight()
		c.inflight = nil
	}
}

func (c *Coordinator) snapshotLocked() Snapshot {
	results := make([]metadata.Title, len(c.results))
	copy(results, c.results)
	return Snapshot{
		Query:       c.query,
		State:       c.state,
		Results:     results,
		Open:        c.open,
		Unavailable: c.unavailable,
		Seq:         c.seq,
	}
}

func (c *Coordinator) notifyLocked() {
	if c.onChange != nil {
		c.onChange(c.snapshotLocked())
	}
}
