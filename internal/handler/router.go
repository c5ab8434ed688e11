package handler

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/mogumogu/internal/metrics"
	"github.com/hitoshi/mogumogu/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	Logger *slog.Logger
	DB     *sql.DB

	// ミドルウェア依存
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	TokenVerifier     middleware.TokenVerifier

	// メトリクス。nilの場合は/metricsを公開しない。
	Metrics         metrics.MetricsCollector
	MetricsGatherer prometheus.Gatherer

	// サービス
	AuthService    AuthServiceInterface
	AuthConfig     AuthHandlerConfig
	CatalogService CatalogServiceInterface
	OrderService   OrderServiceInterface
	InquiryService InquiryServiceInterface
	UserService    UserServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RealIP → Recovery → SecurityHeaders → CORS → Logging → Metrics
//
// レート制限は/api配下にのみ適用し、ログイン試行には専用の制限を重ねる。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig, deps.Metrics)
	itemHandler := NewItemHandler(deps.CatalogService)
	orderHandler := NewOrderHandler(deps.OrderService)
	queryHandler := NewQueryHandler(deps.InquiryService)
	userHandler := NewUserHandler(deps.UserService)

	// --- 運用エンドポイント ---

	r.Get("/health", newHealthHandler(deps.DB))
	if deps.MetricsGatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	// --- OAuthフロー ---

	r.Route("/auth", func(r chi.Router) {
		r.Get("/google", authHandler.GoogleLogin)
		r.Get("/google/callback", authHandler.GoogleCallback)
	})

	// --- APIルート（全体にAPI全般レート制限を適用） ---

	r.Route("/api", func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 認証不要のルート
		r.Post("/register", authHandler.Register)
		r.With(deps.RateLimiter.LoginMiddleware()).Post("/login", authHandler.Login)
		r.Get("/verify-email/{id}", authHandler.VerifyEmail)

		// 商品カタログは未ログインでも閲覧できる
		r.Get("/items", itemHandler.ListItems)
		r.Get("/filter-options", itemHandler.GetFilterOptions)

		// 認証が必要なルート
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewAuthMiddleware(deps.TokenVerifier))

			r.Get("/users/me", userHandler.Me)

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", orderHandler.Create)
				r.Get("/", orderHandler.List)
			})

			r.Route("/queries", func(r chi.Router) {
				r.Post("/", queryHandler.Create)
				r.Get("/", queryHandler.List)
			})
		})
	})

	return r
}

// newHealthHandler はDBへの疎通確認を含むヘルスチェックハンドラーを返す。
func newHealthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
