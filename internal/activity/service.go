package activity

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/gorilla/feeds"

	"github.com/hitoshi/gamevault/internal/model"
	"github.com/hitoshi/gamevault/internal/repository"
	"github.com/hitoshi/gamevault/internal/view"
)

// Entry は表示用の情報を付加したイベント。
type Entry struct {
	model.ActivityEvent
	Icon    string `json:"icon"`
	Message string `json:"message"`
	TimeAgo string `json:"timeAgo"`
}

// Service はアクティビティフィードを提供する。
type Service struct {
	repo   repository.ActivityRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.ActivityRepository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Seed は疑似イベントを生成して保存する。seed が0の場合は現在時刻を使う。
func (s *Service) Seed(ctx context.Context, users []model.User, count int, seed int64) error {
	now := s.now()
	if seed == 0 {
		seed = now.UnixNano()
	}

	events := Generate(users, count, now, seed)
	if err := s.repo.Append(ctx, events...); err != nil {
		return fmt.Errorf("アクティビティの保存に失敗しました: %w", err)
	}

	s.logger.Info("アクティビティを生成しました",
		slog.Int("count", len(events)),
		slog.Int64("seed", seed),
	)
	return nil
}

// Feed はカテゴリで絞り込んだイベントを新しい順で返す。
func (s *Service) Feed(ctx context.Context, category view.ActivityCategory) ([]Entry, error) {
	events, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("アクティビティの取得に失敗しました: %w", err)
	}

	now := s.now()
	filtered := view.FilterActivity(events, category)
	out := make([]Entry, 0, len(filtered))
	for _, e := range filtered {
		out = append(out, Entry{
			ActivityEvent: e,
			Icon:          Icon(e.Type),
			Message:       Message(e),
			TimeAgo:       view.TimeAgo(now, e.Timestamp),
		})
	}
	return out, nil
}

// WriteAtom はカテゴリで絞り込んだフィードをAtom形式で書き出す。
// baseURL はエントリのリンク先（ユーザーのプロフィールページ）の組み立てに使う。
func (s *Service) WriteAtom(ctx context.Context, w io.Writer, category view.ActivityCategory, baseURL string) error {
	entries, err := s.Feed(ctx, category)
	if err != nil {
		return err
	}
	return RenderAtom(w, entries, baseURL, s.now())
}

// RenderAtom はエントリをAtomフィードとして書き出す。
// フィードの更新日時は最新のエントリの時刻、エントリがない場合は updated とする。
func RenderAtom(w io.Writer, entries []Entry, baseURL string, updated time.Time) error {
	base := strings.TrimSuffix(baseURL, "/")
	if len(entries) > 0 {
		updated = entries[0].Timestamp
	}

	feed := &feeds.Feed{
		Title:       "GameVault Community Activity",
		Link:        &feeds.Link{Href: base + "/activity"},
		Description: "What collectors are adding, listing and trading",
		Id:          "urn:gamevault:activity",
		Updated:     updated,
	}
	for _, e := range entries {
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          "urn:gamevault:activity:" + e.ID,
			Title:       e.Message,
			Link:        &feeds.Link{Href: base + "/users/" + e.UserID},
			Author:      &feeds.Author{Name: e.Username},
			Description: strings.TrimSpace(e.Icon + " " + e.Message),
			Created:     e.Timestamp,
		})
	}

	if err := feed.WriteAtom(w); err != nil {
		return fmt.Errorf("Atomフィードの書き出しに失敗しました: %w", err)
	}
	return nil
}
