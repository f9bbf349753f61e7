package metadata

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hitoshi/gamevault/internal/model"
)

// DefaultBackfillConcurrency はカバーアート補完の既定の同時実行数。
const DefaultBackfillConcurrency = 4

// Backfill はカバーアート未設定のゲームについてタイトルからカバーアートを並行取得する。
// 全件の完了を待ってから、取得できたものだけをゲームID → URLのマップで返す。
// 一部の取得失敗は他の取得を妨げない。取得に失敗したものがあれば最初の原因を err で返す。
// 見つからなかっただけのタイトルは失敗として扱わない。
func (c *Client) Backfill(ctx context.Context, games []model.Game, limit int) (map[string]string, error) {
	if limit <= 0 {
		limit = DefaultBackfillConcurrency
	}

	var (
		mu    sync.Mutex
		found = make(map[string]string)
		g     errgroup.Group
	)
	g.SetLimit(limit)

	candidates := 0
	for _, game := range games {
		if game.CoverArt != "" || strings.TrimSpace(game.Title) == "" {
			continue
		}
		candidates++

		g.Go(func() error {
			best, err := c.bestMatch(ctx, game.Title)
			if err != nil {
				return fmt.Errorf("%s: %w", game.Title, err)
			}
			if best == nil || best.BoxArtURL == "" {
				return nil
			}
			mu.Lock()
			found[game.ID] = best.BoxArtURL
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()

	failed := candidates - len(found)
	c.metrics.RecordBackfill(len(found), failed)
	if candidates > 0 {
		attrs := []any{
			slog.Int("candidates", candidates),
			slog.Int("updated", len(found)),
			slog.Int("failed", failed),
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}
		c.logger.Info("カバーアートの補完が完了しました", attrs...)
	}

	return found, err
}
