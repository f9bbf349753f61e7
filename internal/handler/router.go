package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/gamevault/internal/metrics"
	"github.com/hitoshi/gamevault/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	Logger  *slog.Logger
	Metrics metrics.MetricsCollector
	// Gatherer が nil の場合 /metrics は公開しない。
	Gatherer prometheus.Gatherer

	// ミドルウェア依存
	Users             middleware.UserFinder
	DefaultUserID     string
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// ヘルスチェック
	Store          StoreChecker
	MetadataStatus MetadataStatus

	// サービス
	CollectionService  CollectionServiceInterface
	PreferencesService PreferencesServiceInterface
	CommunityService   CommunityServiceInterface
	ActivityService    ActivityServiceInterface
	MetadataService    MetadataServiceInterface

	// SearchSocket は /ws/search のハンドラー。nil の場合は公開しない。
	SearchSocket http.Handler
	// PublicBaseURL はAtomフィード内のリンク生成に使う。
	PublicBaseURL string
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Logging → Recovery → SecurityHeaders → CORS → Session → RateLimit(General)
//
// /health、/metrics、/ws/search はセッションの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.NewLoggingMiddleware(logger, deps.Metrics))
	r.Use(middleware.NewRecoveryMiddleware(logger))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	collectionHandler := NewCollectionHandler(deps.CollectionService, deps.Users)
	prefsHandler := NewPreferencesHandler(deps.PreferencesService)
	communityHandler := NewCommunityHandler(deps.CommunityService)
	activityHandler := NewActivityHandler(deps.ActivityService, deps.PublicBaseURL)
	metadataHandler := NewMetadataHandler(deps.MetadataService)

	// --- セッション不要のルート ---
	r.Get("/health", NewHealthHandler(deps.Store, deps.MetadataStatus))
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}
	if deps.SearchSocket != nil {
		r.Method(http.MethodGet, "/ws/search", deps.SearchSocket)
	}

	// --- 操作ユーザーが必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.Users, deps.DefaultUserID))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Route("/api/collection", func(r chi.Router) {
			r.Get("/", collectionHandler.ListCollection)
			r.Get("/stats", collectionHandler.GetStats)
			r.Get("/export", collectionHandler.Export)
			r.Post("/covers/backfill", collectionHandler.BackfillCovers)

			r.Route("/games/{id}", func(r chi.Router) {
				r.Post("/sale", collectionHandler.ToggleGameSale)
				r.Post("/trade", collectionHandler.ToggleGameTrade)
				r.Post("/tags", collectionHandler.AddTag)
				r.Get("/tags/suggestions", collectionHandler.TagSuggestions)
				r.Delete("/tags/{tag}", collectionHandler.RemoveTag)
				r.Put("/rating", collectionHandler.SetRating)
				r.Put("/playtime", collectionHandler.SetPlaytime)
			})

			r.Route("/consoles/{id}", func(r chi.Router) {
				r.Post("/sale", collectionHandler.ToggleConsoleSale)
				r.Post("/trade", collectionHandler.ToggleConsoleTrade)
			})
		})

		r.Post("/api/games", collectionHandler.AddGame)
		r.Post("/api/consoles", collectionHandler.AddConsole)
		r.Get("/api/analytics", collectionHandler.GetAnalytics)

		r.Route("/api/collections", func(r chi.Router) {
			r.Get("/", prefsHandler.ListCollections)
			r.Post("/", prefsHandler.CreateCollection)
			r.Delete("/{id}", prefsHandler.DeleteCollection)
		})

		r.Route("/api/wishlist", func(r chi.Router) {
			r.Get("/", prefsHandler.ListWishlist)
			r.Post("/", prefsHandler.AddWishlistItem)
			r.Delete("/{id}", prefsHandler.RemoveWishlistItem)
		})

		r.Get("/api/marketplace", communityHandler.Marketplace)
		r.Post("/api/marketplace/{type}/{id}/purchase", communityHandler.Purchase)
		r.Post("/api/trades", communityHandler.TradeRequest)
		r.Get("/api/explore", communityHandler.Explore)
		r.Get("/api/users/{id}", communityHandler.Profile)

		r.Get("/api/activity", activityHandler.Feed)
		r.Get("/api/activity.atom", activityHandler.Atom)

		// 外部サービスを呼び出すため、専用のレート制限を追加する
		r.Group(func(r chi.Router) {
			r.Use(deps.RateLimiter.MetadataMiddleware())
			r.Get("/api/metadata/search", metadataHandler.Search)
			r.Get("/api/metadata/popular", metadataHandler.Popular)
		})
	})

	return r
}
