// Package backfill はカバーアート未設定のゲームを定期的に補完するバッチジョブを提供する。
package backfill

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/gamevault/internal/collection"
	"github.com/hitoshi/gamevault/internal/model"
)

// UserLister は補完対象のユーザー一覧を返す。
type UserLister interface {
	List(ctx context.Context) ([]model.User, error)
}

// CoverService はユーザー単位でカバーアートを補完する。*collection.Service が満たす。
type CoverService interface {
	BackfillCovers(ctx context.Context, userID string) (collection.BackfillResult, error)
}

// Config はバッチジョブの設定パラメータ。
type Config struct {
	// Interval はバッチサイクルの実行間隔（デフォルト: 1時間）。
	Interval time.Duration
	// UserInterval はユーザー間の待機時間（デフォルト: 0）。
	UserInterval time.Duration
}

// DefaultConfig はデフォルトの設定を返す。
func DefaultConfig() Config {
	return Config{Interval: time.Hour}
}

// Job はカバーアート補完のバッチジョブ。
// メタデータサービスが応答しないサイクルが続くとバックオフする。
type Job struct {
	users             UserLister
	covers            CoverService
	logger            *slog.Logger
	config            Config
	now               func() time.Time
	consecutiveErrors int
	backoffUntil      time.Time
}

// NewJob はJobの新しいインスタンスを生成する。
func NewJob(users UserLister, covers CoverService, logger *slog.Logger, config Config) *Job {
	return &Job{
		users:  users,
		covers: covers,
		logger: logger,
		config: config,
		now:    time.Now,
	}
}

// Start はジョブをティッカーで定期実行する。起動直後に1回実行する。
// コンテキストがキャンセルされるまで実行を継続する。
func (j *Job) Start(ctx context.Context) {
	ticker := time.NewTicker(j.config.Interval)
	defer ticker.Stop()

	j.logger.Info("カバーアート補完ジョブを開始しました",
		slog.Duration("interval", j.config.Interval),
	)

	j.runAndLog(ctx)
	for {
		select {
		case <-ctx.Done():
			j.logger.Info("カバーアート補完ジョブを停止しました")
			return
		case <-ticker.C:
			j.runAndLog(ctx)
		}
	}
}

func (j *Job) runAndLog(ctx context.Context) {
	if err := j.RunOnce(ctx); err != nil && ctx.Err() == nil {
		j.logger.Error("カバーアート補完サイクルの実行に失敗しました",
			slog.String("error", err.Error()),
		)
	}
}

// RunOnce は全ユーザーについて1回の補完サイクルを実行する。
// メタデータサービスが利用不可と判明した時点でサイクルを打ち切る。
func (j *Job) RunOnce(ctx context.Context) error {
	start := j.now()

	if !j.backoffUntil.IsZero() && start.Before(j.backoffUntil) {
		j.logger.Info("カバーアート補完ジョブはバックオフ中のためスキップします",
			slog.Time("backoff_until", j.backoffUntil),
		)
		return nil
	}

	users, err := j.users.List(ctx)
	if err != nil {
		return fmt.Errorf("補完対象ユーザーの取得に失敗しました: %w", err)
	}

	var updated int
	var hadError bool
	for i, u := range users {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if i > 0 && j.config.UserInterval > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(j.config.UserInterval):
			}
		}

		res, err := j.covers.BackfillCovers(ctx, u.ID)
		if err != nil {
			j.logger.Error("カバーアートの補完に失敗しました",
				slog.String("user_id", u.ID),
				slog.String("error", err.Error()),
			)
			hadError = true
			continue
		}
		updated += res.Updated
		if !res.Available {
			hadError = true
			break
		}
	}

	if hadError {
		j.consecutiveErrors++
		if backoff := calculateErrorBackoff(j.consecutiveErrors); backoff > 0 {
			j.backoffUntil = j.now().Add(backoff)
			j.logger.Warn("連続エラーによりバックオフを適用します",
				slog.Int("consecutive_errors", j.consecutiveErrors),
				slog.Duration("backoff_duration", backoff),
			)
		}
	} else {
		j.consecutiveErrors = 0
		j.backoffUntil = time.Time{}
	}

	j.logger.Info("カバーアート補完サイクルが完了しました",
		slog.Int("users", len(users)),
		slog.Int("updated_games", updated),
		slog.Bool("had_error", hadError),
		slog.Float64("duration_ms", float64(j.now().Sub(start).Milliseconds())),
	)
	return nil
}

// calculateErrorBackoff は連続エラー回数に基づくバックオフ時間を計算する。
// 3回連続: 30分、5回連続: 1時間、10回連続: 6時間。
func calculateErrorBackoff(consecutiveErrors int) time.Duration {
	switch {
	case consecutiveErrors >= 10:
		return 6 * time.Hour
	case consecutiveErrors >= 5:
		return time.Hour
	case consecutiveErrors >= 3:
		return 30 * time.Minute
	default:
		return 0
	}
}
