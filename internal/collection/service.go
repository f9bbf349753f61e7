package collection

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/gamevault/internal/metrics"
	"github.com/hitoshi/gamevault/internal/model"
	"github.com/hitoshi/gamevault/internal/repository"
	"github.com/hitoshi/gamevault/internal/view"
)

// CoverBackfiller はカバーアートの一括取得を行う。*metadata.Client が満たす。
// 一部が失敗した場合も取得できた分は返す。
type CoverBackfiller interface {
	Backfill(ctx context.Context, games []model.Game, limit int) (map[string]string, error)
}

// TextSanitizer は自由入力テキストからマークアップを除去する。
type TextSanitizer interface {
	StripTags(s string) string
}

// URLValidator はユーザーが入力したURLを検証する。
type URLValidator interface {
	ValidateURL(rawURL string) error
}

// Deps はServiceの依存関係。Metrics が nil の場合は何も記録しない。
type Deps struct {
	Users       repository.UserRepository
	Sessions    repository.SessionRepository
	Preferences repository.PreferencesRepository
	Activities  repository.ActivityRepository
	Covers      CoverBackfiller
	Sanitizer   TextSanitizer
	URLs        URLValidator
	Metrics     metrics.MetricsCollector
	Logger      *slog.Logger

	// BackfillConcurrency はカバーアート取得の同時実行数。
	BackfillConcurrency int
}

// Analytics はコレクションの集計値と各軸の分布。
type Analytics struct {
	Summary       view.Summary                    `json:"summary"`
	Distributions map[view.Dimension]view.Counts `json:"distributions"`
}

// Service はセッション単位のコレクション操作を提供する。
// 変更は操作ユーザーのセッション中のコピーに対して行い、変更ごとにRevisionが進む。
// 派生ビューはRevisionとパラメータをキーにメモ化する。
type Service struct {
	users       repository.UserRepository
	sessions    repository.SessionRepository
	prefs       repository.PreferencesRepository
	activities  repository.ActivityRepository
	covers      CoverBackfiller
	sanitizer   TextSanitizer
	urls        URLValidator
	metrics     metrics.MetricsCollector
	logger      *slog.Logger
	concurrency int

	views     *view.Memo[view.CollectionParams, view.CollectionView]
	summaries *view.Memo[string, Analytics]
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(deps Deps) *Service {
	m := deps.Metrics
	if m == nil {
		m = metrics.Nop{}
	}
	return &Service{
		users:       deps.Users,
		sessions:    deps.Sessions,
		prefs:       deps.Preferences,
		activities:  deps.Activities,
		covers:      deps.Covers,
		sanitizer:   deps.Sanitizer,
		urls:        deps.URLs,
		metrics:     m,
		logger:      deps.Logger,
		concurrency: deps.BackfillConcurrency,
		views:       view.NewMemo[view.CollectionParams, view.CollectionView](),
		summaries:   view.NewMemo[string, Analytics](),
	}
}

// State はユーザーのセッション中コレクションを返す。
func (s *Service) State(ctx context.Context, userID string) (*repository.CollectionState, error) {
	state, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("コレクションの取得に失敗しました: %w", err)
	}
	if state == nil {
		return nil, model.NewUserNotFoundError(userID)
	}
	return state, nil
}

// Collection は絞り込み・並び替え済みのコレクションとそのRevisionを返す。
// 同じRevisionと同じ条件での再要求は前回の結果を再利用する。
func (s *Service) Collection(ctx context.Context, userID string, p view.CollectionParams) (view.CollectionView, uint64, error) {
	if err := p.Validate(); err != nil {
		return view.CollectionView{}, 0, err
	}

	state, err := s.State(ctx, userID)
	if err != nil {
		return view.CollectionView{}, 0, err
	}

	v := s.views.Get(userID, state.Revision, p, func() view.CollectionView {
		return view.FilterCollection(state.Games, state.Consoles, p)
	})
	return v, state.Revision, nil
}

// Analytics はコレクションの集計値を返す。推定価値はユーザー設定の上書き値を優先する。
func (s *Service) Analytics(ctx context.Context, userID string) (*Analytics, error) {
	state, err := s.State(ctx, userID)
	if err != nil {
		return nil, err
	}
	prefs, err := s.prefs.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザー設定の取得に失敗しました: %w", err)
	}

	// 上書き値は設定側の変更でも変わるため、キーに含める
	key := "none"
	if prefs.CollectionValue != nil {
		key = fmt.Sprintf("%.2f", *prefs.CollectionValue)
	}

	a := s.summaries.Get(userID, state.Revision, key, func() Analytics {
		return Analytics{
			Summary:       view.Summarize(state.Games, state.Consoles, prefs.CollectionValue),
			Distributions: view.Distributions(state.Games),
		}
	})
	return &a, nil
}

// Stats はコレクションの集計値のみを返す。
func (s *Service) Stats(ctx context.Context, userID string) (*view.Summary, error) {
	a, err := s.Analytics(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &a.Summary, nil
}

// MemoStats は派生ビューのメモ化のヒット数とミス数を返す。
func (s *Service) MemoStats() (hits, misses uint64) {
	vh, vm := s.views.Stats()
	sh, sm := s.summaries.Stats()
	return vh + sh, vm + sm
}

// update はセッション中コレクションを更新し、ユーザーが存在しない場合はエラーを返す。
func (s *Service) update(ctx context.Context, userID string, fn func(repository.CollectionState) (repository.CollectionState, error)) (*repository.CollectionState, error) {
	state, err := s.sessions.Update(ctx, userID, fn)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, model.NewUserNotFoundError(userID)
	}
	return state, nil
}

func (s *Service) stripTags(v string) string {
	if s.sanitizer == nil {
		return v
	}
	return s.sanitizer.StripTags(v)
}

func findGame(games []model.Game, id string) *model.Game {
	for i := range games {
		if games[i].ID == id {
			return &games[i]
		}
	}
	return nil
}

func findConsole(consoles []model.Console, id string) *model.Console {
	for i := range consoles {
		if consoles[i].ID == id {
			return &consoles[i]
		}
	}
	return nil
}
