package collection

import (
	"context"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hitoshi/gamevault/internal/model"
	"github.com/hitoshi/gamevault/internal/repository"
)

// ToggleGameSale は操作ユーザーのゲームの販売フラグを反転し、更新後のゲームを返す。
func (s *Service) ToggleGameSale(ctx context.Context, userID, gameID string) (*model.Game, error) {
	return s.mutateGames(ctx, userID, gameID, "toggle_sale", ToggleGameSale)
}

// ToggleGameTrade は操作ユーザーのゲームのトレードフラグを反転し、更新後のゲームを返す。
func (s *Service) ToggleGameTrade(ctx context.Context, userID, gameID string) (*model.Game, error) {
	return s.mutateGames(ctx, userID, gameID, "toggle_trade", ToggleGameTrade)
}

// ToggleConsoleSale は操作ユーザーの本体の販売フラグを反転し、更新後の本体を返す。
func (s *Service) ToggleConsoleSale(ctx context.Context, userID, consoleID string) (*model.Console, error) {
	return s.mutateConsoles(ctx, userID, consoleID, "toggle_sale", ToggleConsoleSale)
}

// ToggleConsoleTrade は操作ユーザーの本体のトレードフラグを反転し、更新後の本体を返す。
func (s *Service) ToggleConsoleTrade(ctx context.Context, userID, consoleID string) (*model.Console, error) {
	return s.mutateConsoles(ctx, userID, consoleID, "toggle_trade", ToggleConsoleTrade)
}

// AddTag はゲームにタグを追加する。正規化後に空になるタグはエラー、既存タグは変更なしとする。
func (s *Service) AddTag(ctx context.Context, userID, gameID, tag string) (*model.Game, error) {
	normalized := model.NormalizeTag(s.stripTags(tag))
	if normalized == "" {
		return nil, model.NewInvalidRequestError("タグが空です")
	}
	return s.mutateGames(ctx, userID, gameID, "tag", func(games []model.Game, id string) ([]model.Game, error) {
		out := model.CloneGames(games)
		g := findGame(out, id)
		if g == nil {
			return nil, model.NewItemNotFoundError(id)
		}
		g.Tags, _ = AddTag(g.Tags, normalized)
		return out, nil
	})
}

// RemoveTag はゲームからタグを取り除く。存在しないタグは変更なしとする。
func (s *Service) RemoveTag(ctx context.Context, userID, gameID, tag string) (*model.Game, error) {
	return s.mutateGames(ctx, userID, gameID, "tag", func(games []model.Game, id string) ([]model.Game, error) {
		out := model.CloneGames(games)
		g := findGame(out, id)
		if g == nil {
			return nil, model.NewItemNotFoundError(id)
		}
		g.Tags, _ = RemoveTag(g.Tags, tag)
		return out, nil
	})
}

// TagSuggestions は操作ユーザーの全ゲームのタグから、指定ゲームに未設定の候補を返す。
func (s *Service) TagSuggestions(ctx context.Context, userID, gameID, input string) ([]string, error) {
	state, err := s.State(ctx, userID)
	if err != nil {
		return nil, err
	}
	g := findGame(state.Games, gameID)
	if g == nil {
		return nil, model.NewItemNotFoundError(gameID)
	}
	return TagSuggestions(input, AllTags(state.Games), g.Tags), nil
}

// SetRating はゲームの評価を設定する。nil は評価の消去。
func (s *Service) SetRating(ctx context.Context, userID, gameID string, rating *int) (*model.Game, error) {
	if err := model.ValidateRating(rating); err != nil {
		return nil, err
	}
	return s.mutateGames(ctx, userID, gameID, "rating", func(games []model.Game, id string) ([]model.Game, error) {
		out := model.CloneGames(games)
		g := findGame(out, id)
		if g == nil {
			return nil, model.NewItemNotFoundError(id)
		}
		g.Rating = rating
		return out, nil
	})
}

// SetPlaytime はゲームのプレイ時間を設定する。nil はプレイ時間の消去。
func (s *Service) SetPlaytime(ctx context.Context, userID, gameID string, hours *float64) (*model.Game, error) {
	if err := model.ValidatePlaytime(hours); err != nil {
		return nil, err
	}
	return s.mutateGames(ctx, userID, gameID, "playtime", func(games []model.Game, id string) ([]model.Game, error) {
		out := model.CloneGames(games)
		g := findGame(out, id)
		if g == nil {
			return nil, model.NewItemNotFoundError(id)
		}
		g.Playtime = hours
		return out, nil
	})
}

// BackfillResult はカバーアート補完の結果。
// Available が false の場合はゲーム情報APIの一部または全部が利用できなかった。
type BackfillResult struct {
	Updated   int  `json:"updated"`
	Available bool `json:"available"`
}

// BackfillCovers はカバーアート未設定のゲームについて取得を試み、成功したものだけを反映する。
// 取得中に他の操作でカバーアートが設定されたゲームは上書きしない。
// ゲーム情報APIの失敗はエラーにせず、結果の Available で示す。
func (s *Service) BackfillCovers(ctx context.Context, userID string) (BackfillResult, error) {
	state, err := s.State(ctx, userID)
	if err != nil {
		return BackfillResult{}, err
	}
	if s.covers == nil {
		return BackfillResult{}, nil
	}

	res := BackfillResult{Available: true}
	found, remoteErr := s.covers.Backfill(ctx, state.Games, s.concurrency)
	if remoteErr != nil {
		res.Available = false
		s.logger.Warn("カバーアートの取得に一部失敗しました",
			slog.String("user_id", userID),
			slog.String("error", remoteErr.Error()),
		)
	}
	if len(found) == 0 {
		return res, nil
	}

	_, err = s.update(ctx, userID, func(st repository.CollectionState) (repository.CollectionState, error) {
		res.Updated = 0
		for i := range st.Games {
			if url, ok := found[st.Games[i].ID]; ok && st.Games[i].CoverArt == "" {
				st.Games[i].CoverArt = url
				res.Updated++
			}
		}
		return st, nil
	})
	if err != nil {
		return BackfillResult{}, err
	}

	s.metrics.RecordMutation("backfill")
	s.logger.Info("カバーアートを補完しました",
		slog.String("user_id", userID),
		slog.Int("updated", res.Updated),
	)
	return res, nil
}

// mutateGames はゲームのスライスに変更関数を適用し、対象ゲームの更新後の値を返す。
func (s *Service) mutateGames(ctx context.Context, userID, gameID, kind string, fn func([]model.Game, string) ([]model.Game, error)) (*model.Game, error) {
	state, err := s.update(ctx, userID, func(st repository.CollectionState) (repository.CollectionState, error) {
		games, err := fn(st.Games, gameID)
		if err != nil {
			return st, err
		}
		st.Games = games
		return st, nil
	})
	if err != nil {
		return nil, err
	}

	g := findGame(state.Games, gameID)
	s.metrics.RecordMutation(kind)
	s.logger.Info("コレクションを更新しました",
		slog.String("user_id", userID),
		slog.String("game_id", gameID),
		slog.String("kind", kind),
		slog.Uint64("revision", state.Revision),
	)
	s.recordListing(ctx, userID, kind, g.Title, g.ForSale, g.ForTrade)
	return g, nil
}

// mutateConsoles は本体のスライスに変更関数を適用し、対象本体の更新後の値を返す。
func (s *Service) mutateConsoles(ctx context.Context, userID, consoleID, kind string, fn func([]model.Console, string) ([]model.Console, error)) (*model.Console, error) {
	state, err := s.update(ctx, userID, func(st repository.CollectionState) (repository.CollectionState, error) {
		consoles, err := fn(st.Consoles, consoleID)
		if err != nil {
			return st, err
		}
		st.Consoles = consoles
		return st, nil
	})
	if err != nil {
		return nil, err
	}

	c := findConsole(state.Consoles, consoleID)
	s.metrics.RecordMutation(kind)
	s.logger.Info("コレクションを更新しました",
		slog.String("user_id", userID),
		slog.String("console_id", consoleID),
		slog.String("kind", kind),
		slog.Uint64("revision", state.Revision),
	)
	s.recordListing(ctx, userID, kind, c.Name, c.ForSale, c.ForTrade)
	return c, nil
}

// recordListing は出品をオンにした操作をアクティビティとして記録する。
// 記録の失敗は操作自体を失敗させない。
func (s *Service) recordListing(ctx context.Context, userID, kind, item string, forSale, forTrade bool) {
	if s.activities == nil {
		return
	}

	var typ model.ActivityType
	switch {
	case kind == "toggle_sale" && forSale:
		typ = model.ActivityListedSale
	case kind == "toggle_trade" && forTrade:
		typ = model.ActivityListedTrade
	default:
		return
	}

	username := userID
	if u, err := s.users.FindByID(ctx, userID); err == nil && u != nil {
		username = u.Username
	}

	now := time.Now()
	event := model.ActivityEvent{
		ID:        ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		UserID:    userID,
		Username:  username,
		Type:      typ,
		Item:      item,
		Timestamp: now,
	}
	if err := s.activities.Append(ctx, event); err != nil {
		s.logger.Warn("アクティビティの記録に失敗しました",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}
