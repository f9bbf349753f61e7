// Package cleanup は保持期間を過ぎたアクティビティイベントの定期削除ジョブを提供する。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/gamevault/internal/metrics"
)

// DefaultRetention はアクティビティの既定の保持期間。
const DefaultRetention = 24 * time.Hour

// Pruner は指定時刻より古いイベントを削除する。*repository.MemoryActivityRepo が満たす。
type Pruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// CleanupJob は保持期間を超過したアクティビティを削除するジョブ。
// 削除対象がない場合もエラーにならない。
type CleanupJob struct {
	pruner    Pruner
	logger    *slog.Logger
	metrics   metrics.MetricsCollector
	now       func() time.Time
	Retention time.Duration
}

// NewCleanupJob は新しいCleanupJobを生成する。保持期間は DefaultRetention。
func NewCleanupJob(pruner Pruner, logger *slog.Logger, m metrics.MetricsCollector) *CleanupJob {
	if m == nil {
		m = metrics.Nop{}
	}
	return &CleanupJob{
		pruner:    pruner,
		logger:    logger,
		metrics:   m,
		now:       time.Now,
		Retention: DefaultRetention,
	}
}

// Run は現在時刻から Retention 以上前のイベントを削除する。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := j.now()
	cutoff := start.Add(-j.Retention)

	deleted, err := j.pruner.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		j.logger.Error("アクティビティ削除ジョブの実行に失敗しました",
			slog.String("error", err.Error()),
			slog.Duration("retention", j.Retention),
		)
		return fmt.Errorf("アクティビティの削除に失敗: %w", err)
	}

	j.metrics.RecordActivityPruned(deleted)
	j.logger.Info("アクティビティ削除ジョブが完了しました",
		slog.Int64("deleted_count", deleted),
		slog.Duration("retention", j.Retention),
		slog.Time("cutoff", cutoff),
	)
	return nil
}

// Start は起動直後に1回実行し、以降 interval ごとに実行する。
// コンテキストがキャンセルされるまでブロックする。
func (j *CleanupJob) Start(ctx context.Context, interval time.Duration) {
	if err := j.Run(ctx); err != nil && ctx.Err() == nil {
		j.logger.Error("cleanup job failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			j.logger.Info("アクティビティ削除ジョブを停止しました")
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil && ctx.Err() == nil {
				j.logger.Error("cleanup job failed", slog.String("error", err.Error()))
			}
		}
	}
}
