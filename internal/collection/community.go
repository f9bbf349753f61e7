package collection

import (
	"context"
	"fmt"

	"github.com/hitoshi/gamevault/internal/model"
	"github.com/hitoshi/gamevault/internal/view"
)

// Profile はユーザーの公開プロフィールと集計値。
type Profile struct {
	User            model.User   `json:"user"`
	AvatarCharacter string       `json:"avatarCharacter,omitempty"`
	PersonalQuote   string       `json:"personalQuote,omitempty"`
	Following       int          `json:"following"`
	Followers       int          `json:"followers"`
	IsOwnProfile    bool         `json:"isOwnProfile"`
	Stats           view.Summary `json:"stats"`
}

// MarketplaceResult はマーケットプレイスの表示内容。
type MarketplaceResult struct {
	Listings  []view.Listing   `json:"listings"`
	Stats     view.MarketStats `json:"stats"`
	Platforms []string         `json:"platforms"`
}

// ExploreResult はユーザー一覧の表示内容。
type ExploreResult struct {
	Users     []model.User        `json:"users"`
	Stats     view.CommunityStats `json:"stats"`
	Platforms []string            `json:"platforms"`
}

// Users は全ユーザーを、各ユーザーのセッション中コレクションを反映した状態で返す。
// 販売・トレードの切り替えがマーケットプレイスやユーザー一覧にも反映される。
func (s *Service) Users(ctx context.Context) ([]model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}
	for i := range users {
		state, err := s.sessions.Get(ctx, users[i].ID)
		if err != nil {
			return nil, fmt.Errorf("コレクションの取得に失敗しました: %w", err)
		}
		if state != nil {
			users[i].Games = state.Games
			users[i].Consoles = state.Consoles
		}
	}
	return users, nil
}

// Profile は指定ユーザーのプロフィールを返す。
func (s *Service) Profile(ctx context.Context, actingUserID, userID string) (*Profile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError(userID)
	}

	state, err := s.State(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Games = state.Games
	user.Consoles = state.Consoles

	prefs, err := s.prefs.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザー設定の取得に失敗しました: %w", err)
	}

	p := &Profile{
		User:          *user,
		PersonalQuote: prefs.PersonalQuote,
		Following:     len(prefs.Following),
		Followers:     len(prefs.Followers),
		IsOwnProfile:  actingUserID == userID,
		Stats:         view.Summarize(state.Games, state.Consoles, prefs.CollectionValue),
	}
	if user.Avatar == "" {
		p.AvatarCharacter = view.AvatarCharacter(user.ID)
	}
	return p, nil
}

// Marketplace は全ユーザーの出品を絞り込み・並び替えて返す。
// 件数とプラットフォーム一覧は絞り込み前の出品全体から求める。
func (s *Service) Marketplace(ctx context.Context, p view.MarketplaceParams) (*MarketplaceResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	users, err := s.Users(ctx)
	if err != nil {
		return nil, err
	}

	all := view.BuildListings(users)
	return &MarketplaceResult{
		Listings:  view.FilterListings(all, p),
		Stats:     view.MarketplaceStats(all),
		Platforms: view.ListingPlatforms(all),
	}, nil
}

// Explore は操作ユーザー以外のユーザーを絞り込み・並び替えて返す。
func (s *Service) Explore(ctx context.Context, actingUserID string, p view.ExploreParams) (*ExploreResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	users, err := s.Users(ctx)
	if err != nil {
		return nil, err
	}

	return &ExploreResult{
		Users:     view.ExploreUsers(users, actingUserID, p),
		Stats:     view.ExploreStats(users, actingUserID),
		Platforms: view.Platforms(users),
	}, nil
}
