package collection

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/gamevault/internal/model"
	"github.com/hitoshi/gamevault/internal/view"
)

// CollectionSummary はカスタムコレクションと、そこに属するゲームの件数・価値。
type CollectionSummary struct {
	model.CustomCollection
	Count int     `json:"count"`
	Value float64 `json:"value"`
}

// CollectionInput はカスタムコレクション作成の入力。
type CollectionInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
}

// WishlistInput はウィッシュリスト追加の入力。
type WishlistInput struct {
	GameTitle string `json:"gameTitle"`
	Platform  string `json:"console"`
}

// allCollection は常に先頭に表示される予約済みコレクション。
var allCollection = model.CustomCollection{
	ID:          model.AllCollectionID,
	Name:        "All Games",
	Description: "Every game in your collection",
	Icon:        "🎮",
	Color:       model.DefaultCollectionColor,
}

// CustomCollections は予約済みの "all" を先頭に、ユーザー定義のコレクションを統計付きで返す。
func (s *Service) CustomCollections(ctx context.Context, userID string) ([]CollectionSummary, error) {
	state, err := s.State(ctx, userID)
	if err != nil {
		return nil, err
	}
	prefs, err := s.prefs.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザー設定の取得に失敗しました: %w", err)
	}

	out := make([]CollectionSummary, 0, len(prefs.CustomCollections)+1)
	for _, c := range append([]model.CustomCollection{allCollection}, prefs.CustomCollections...) {
		st := view.CollectionStats(state.Games, c.ID)
		out = append(out, CollectionSummary{CustomCollection: c, Count: st.Count, Value: st.Value})
	}
	return out, nil
}

// CreateCollection はカスタムコレクションを作成する。名前は必須で、テキストはマークアップを除去する。
func (s *Service) CreateCollection(ctx context.Context, userID string, in CollectionInput) (*model.CustomCollection, error) {
	if _, err := s.State(ctx, userID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(s.stripTags(in.Name))
	if name == "" {
		return nil, model.NewInvalidRequestError("コレクション名は必須です")
	}

	c := model.CustomCollection{
		ID:          "collection-" + uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(s.stripTags(in.Description)),
		Icon:        in.Icon,
		Color:       in.Color,
	}
	if c.Icon == "" {
		c.Icon = model.DefaultCollectionIcon
	}
	if c.Color == "" {
		c.Color = model.DefaultCollectionColor
	}

	_, err := s.prefs.Update(ctx, userID, func(p model.Preferences) (model.Preferences, error) {
		p.CustomCollections = append(p.CustomCollections, c)
		return p, nil
	})
	if err != nil {
		return nil, fmt.Errorf("コレクションの作成に失敗しました: %w", err)
	}

	s.metrics.RecordMutation("collection")
	s.logger.Info("カスタムコレクションを作成しました",
		slog.String("user_id", userID),
		slog.String("collection_id", c.ID),
	)
	return &c, nil
}

// DeleteCollection はカスタムコレクションを削除する。"all" は削除できない。
func (s *Service) DeleteCollection(ctx context.Context, userID, collectionID string) error {
	if collectionID == model.AllCollectionID {
		return model.NewReservedCollectionError()
	}
	if _, err := s.State(ctx, userID); err != nil {
		return err
	}

	_, err := s.prefs.Update(ctx, userID, func(p model.Preferences) (model.Preferences, error) {
		kept := make([]model.CustomCollection, 0, len(p.CustomCollections))
		for _, c := range p.CustomCollections {
			if c.ID != collectionID {
				kept = append(kept, c)
			}
		}
		if len(kept) == len(p.CustomCollections) {
			return p, model.NewCollectionNotFoundError(collectionID)
		}
		p.CustomCollections = kept
		return p, nil
	})
	if err != nil {
		return err
	}

	s.metrics.RecordMutation("collection")
	s.logger.Info("カスタムコレクションを削除しました",
		slog.String("user_id", userID),
		slog.String("collection_id", collectionID),
	)
	return nil
}

// Wishlist は操作ユーザーのウィッシュリストを返す。
func (s *Service) Wishlist(ctx context.Context, userID string) ([]model.WishlistItem, error) {
	if _, err := s.State(ctx, userID); err != nil {
		return nil, err
	}
	prefs, err := s.prefs.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザー設定の取得に失敗しました: %w", err)
	}
	if prefs.Wishlist == nil {
		return []model.WishlistItem{}, nil
	}
	return prefs.Wishlist, nil
}

// AddWishlistItem はウィッシュリストに項目を追加する。タイトルとプラットフォームは必須。
func (s *Service) AddWishlistItem(ctx context.Context, userID string, in WishlistInput) (*model.WishlistItem, error) {
	if _, err := s.State(ctx, userID); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(s.stripTags(in.GameTitle))
	platform := strings.TrimSpace(s.stripTags(in.Platform))
	if title == "" || platform == "" {
		return nil, model.NewInvalidRequestError("タイトルとプラットフォームは必須です")
	}

	item := model.WishlistItem{
		ID:        "w-" + uuid.NewString(),
		GameTitle: title,
		Platform:  platform,
		AddedDate: time.Now().Format(model.DateLayout),
	}

	_, err := s.prefs.Update(ctx, userID, func(p model.Preferences) (model.Preferences, error) {
		p.Wishlist = append(p.Wishlist, item)
		return p, nil
	})
	if err != nil {
		return nil, fmt.Errorf("ウィッシュリストの更新に失敗しました: %w", err)
	}

	s.metrics.RecordMutation("wishlist")
	return &item, nil
}

// RemoveWishlistItem はウィッシュリストから項目を削除する。
func (s *Service) RemoveWishlistItem(ctx context.Context, userID, itemID string) error {
	if _, err := s.State(ctx, userID); err != nil {
		return err
	}

	_, err := s.prefs.Update(ctx, userID, func(p model.Preferences) (model.Preferences, error) {
		kept := make([]model.WishlistItem, 0, len(p.Wishlist))
		for _, w := range p.Wishlist {
			if w.ID != itemID {
				kept = append(kept, w)
			}
		}
		if len(kept) == len(p.Wishlist) {
			return p, model.NewWishlistItemNotFoundError(itemID)
		}
		p.Wishlist = kept
		return p, nil
	})
	if err != nil {
		return err
	}

	s.metrics.RecordMutation("wishlist")
	return nil
}
