package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/gamevault/internal/activity"
	"github.com/hitoshi/gamevault/internal/collection"
	"github.com/hitoshi/gamevault/internal/config"
	"github.com/hitoshi/gamevault/internal/export"
	"github.com/hitoshi/gamevault/internal/handler"
	"github.com/hitoshi/gamevault/internal/logger"
	"github.com/hitoshi/gamevault/internal/metadata"
	"github.com/hitoshi/gamevault/internal/metrics"
	"github.com/hitoshi/gamevault/internal/middleware"
	"github.com/hitoshi/gamevault/internal/repository"
	"github.com/hitoshi/gamevault/internal/search"
	"github.com/hitoshi/gamevault/internal/security"
	"github.com/hitoshi/gamevault/internal/seed"
	"github.com/hitoshi/gamevault/internal/worker/backfill"
	"github.com/hitoshi/gamevault/internal/worker/cleanup"
)

// searchResultLimit は検索ボックスに表示する候補の最大数。
const searchResultLimit = 8

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、LOG_LEVELに従ったJSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, *slog.Logger, error) {
	// 設定読み込みの失敗もログに残せるよう、先にINFOで初期化する
	logger.SetupDefault(w, slog.LevelInfo)

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	l := logger.SetupDefault(w, logger.ParseLevel(cfg.LogLevel))
	return cfg, l, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, l, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	l.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.Bool("metadata_enabled", cfg.MetadataEnabled()),
	)

	a, err := newApplication(context.Background(), cfg, l, prometheus.NewRegistry())
	if err != nil {
		return err
	}

	switch cmd {
	case CommandWorker:
		return a.runWorker(context.Background())
	case CommandExport:
		return a.runExport(context.Background(), commandArgs(args))
	default:
		return a.runServe()
	}
}

// application は起動モードに共通の依存関係を保持する。
// コレクションの状態はプロセス内のみに存在し、起動ごとに初期データから始まる。
type application struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metrics.Collector

	users      *repository.MemoryUserRepo
	activities *repository.MemoryActivityRepo
	metadata   *metadata.Client

	collection *collection.Service
	activity   *activity.Service

	backfillJob *backfill.Job
	cleanupJob  *cleanup.CleanupJob
}

// newApplication はリポジトリ・サービス・ジョブを構築し、アクティビティの初期データを投入する。
func newApplication(ctx context.Context, cfg *config.Config, l *slog.Logger, reg *prometheus.Registry) (*application, error) {
	collector := metrics.NewCollector(reg)

	// 1. セキュリティ
	urlGuard := security.NewURLGuard()
	sanitizer := security.NewTextSanitizer()

	// 2. 外部サービス
	metaClient := metadata.NewClient(urlGuard.NewSafeClient(cfg.MetadataTimeout), l, collector, metadata.Options{
		ClientID:     cfg.TwitchClientID,
		ClientSecret: cfg.TwitchClientSecret,
		TokenURL:     cfg.TwitchTokenURL,
		APIBase:      cfg.TwitchAPIBase,
	})

	// 3. リポジトリ
	users := seed.Users()
	userRepo := repository.NewMemoryUserRepo(users)
	activityRepo := repository.NewMemoryActivityRepo()

	// 4. ドメインサービス
	collectionSvc := collection.NewService(collection.Deps{
		Users:               userRepo,
		Sessions:            repository.NewMemorySessionRepo(userRepo),
		Preferences:         repository.NewMemoryPreferencesRepo(seed.Preferences()),
		Activities:          activityRepo,
		Covers:              metaClient,
		Sanitizer:           sanitizer,
		URLs:                urlGuard,
		Metrics:             collector,
		Logger:              l,
		BackfillConcurrency: cfg.BackfillConcurrency,
	})

	activitySvc := activity.NewService(activityRepo, l)
	activitySeed := cfg.ActivitySeed
	if activitySeed == 0 {
		activitySeed = time.Now().UnixNano()
	}
	if err := activitySvc.Seed(ctx, users, cfg.ActivityCount, activitySeed); err != nil {
		return nil, fmt.Errorf("failed to seed activity: %w", err)
	}

	// 5. ジョブ
	backfillJob := backfill.NewJob(userRepo, collectionSvc, l, backfill.Config{Interval: cfg.BackfillInterval})
	cleanupJob := cleanup.NewCleanupJob(activityRepo, l, collector)
	cleanupJob.Retention = cfg.ActivityRetention

	return &application{
		cfg:         cfg,
		logger:      l,
		registry:    reg,
		metrics:     collector,
		users:       userRepo,
		activities:  activityRepo,
		metadata:    metaClient,
		collection:  collectionSvc,
		activity:    activitySvc,
		backfillJob: backfillJob,
		cleanupJob:  cleanupJob,
	}, nil
}

// router はHTTPルーターを構築する。返したRateLimiterは終了時にStopする。
func (a *application) router() (http.Handler, *middleware.RateLimiter) {
	rl := middleware.NewRateLimiter(middleware.RateLimiterConfigPerMinute(a.cfg.RateLimitGeneral))

	deps := &handler.RouterDeps{
		Logger:            a.logger,
		Metrics:           a.metrics,
		Gatherer:          a.registry,
		Users:             a.users,
		DefaultUserID:     a.cfg.DefaultUserID,
		CORSAllowedOrigin: a.cfg.CORSAllowedOrigin,
		RateLimiter:       rl,

		Store:          a.users,
		MetadataStatus: a.metadata,

		CollectionService:  a.collection,
		PreferencesService: a.collection,
		CommunityService:   a.collection,
		ActivityService:    a.activity,
		MetadataService:    a.metadata,

		SearchSocket: search.NewHandler(a.metadata, a.logger, search.HandlerOptions{
			Debounce:      a.cfg.SearchDebounce,
			Limit:         searchResultLimit,
			AllowedOrigin: a.cfg.CORSAllowedOrigin,
		}),
		PublicBaseURL: a.cfg.PublicBaseURL,
	}
	return handler.NewRouter(deps), rl
}

// startJobs はカバーアート補完とアクティビティ削除をバックグラウンドで起動する。
// ctx がキャンセルされると停止する。
func (a *application) startJobs(ctx context.Context) {
	go a.backfillJob.Start(ctx)
	go a.cleanupJob.Start(ctx, a.cfg.ActivityPruneTick)
}

// runServe はAPIサーバーモードで起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func (a *application) runServe() error {
	router, rl := a.router()
	defer rl.Stop()

	jobCtx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()
	if a.cfg.BackgroundJobs {
		a.startJobs(jobCtx)
	}

	server := &http.Server{
		Addr:         ":" + a.cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("API server starting",
			slog.String("addr", server.Addr),
			slog.Bool("background_jobs", a.cfg.BackgroundJobs),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-stop:
	case err := <-serveErr:
		return fmt.Errorf("server listen error: %w", err)
	}
	a.logger.Info("shutting down API server...")
	cancelJobs()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.logger.Info("API server stopped gracefully")
	return nil
}

// runWorker は各ジョブを1回ずつ実行して終了する。
// コレクションはプロセス内のみに存在するため、定期実行はserveモードで行う。
func (a *application) runWorker(ctx context.Context) error {
	a.logger.Info("worker starting",
		slog.Duration("activity_retention", a.cfg.ActivityRetention),
		slog.Bool("metadata_enabled", a.metadata.Enabled()),
	)

	if err := a.backfillJob.RunOnce(ctx); err != nil {
		return fmt.Errorf("backfill job failed: %w", err)
	}
	if err := a.cleanupJob.Run(ctx); err != nil {
		return fmt.Errorf("cleanup job failed: %w", err)
	}

	a.logger.Info("worker finished")
	return nil
}

// runExport はユーザーのコレクションを.xlsxファイルに書き出す。
// args は [ユーザーID] [出力パス]。省略時は既定ユーザーとEXPORT_DIR配下の既定ファイル名を使う。
func (a *application) runExport(ctx context.Context, args []string) error {
	userID := a.cfg.DefaultUserID
	if len(args) > 0 && args[0] != "" {
		userID = args[0]
	}

	user, err := a.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("user not found: %s", userID)
	}

	path := filepath.Join(a.cfg.ExportDir, export.Filename(user.Username, time.Now()))
	if len(args) > 1 && args[1] != "" {
		path = args[1]
	}

	state, err := a.collection.State(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := export.WriteWorkbook(f, state.Games, state.Consoles); err != nil {
		f.Close()
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	a.logger.Info("collection exported",
		slog.String("user_id", userID),
		slog.String("path", path),
		slog.Int("games", len(state.Games)),
		slog.Int("consoles", len(state.Consoles)),
	)
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}
