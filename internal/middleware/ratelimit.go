package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/hitoshi/mogumogu/internal/model"
)

// RateLimiterConfig はレート制限の設定を保持する。
type RateLimiterConfig struct {
	Window          time.Duration // カウント対象の時間窓
	GeneralLimit    int           // API全般の窓あたり許可リクエスト数
	LoginLimit      int           // ログイン試行の窓あたり許可リクエスト数
	CleanupInterval time.Duration // 期限切れエントリのクリーンアップ間隔

	// OnDeny は拒否時に呼ばれるフック。メトリクス記録用。nilの場合は何もしない。
	OnDeny func(limitType string)
}

// DefaultRateLimiterConfig はデフォルトのレート制限設定を返す。
// API全般 100 req/15min/IP、ログイン試行 5 req/15min/IP
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		Window:          15 * time.Minute,
		GeneralLimit:    100,
		LoginLimit:      5,
		CleanupInterval: 5 * time.Minute,
	}
}

// windowCounter は固定窓のリクエスト数と窓の開始時刻を保持する。
type windowCounter struct {
	count       int
	windowStart time.Time
	lastAccess  time.Time
}

// RateLimiter は送信元IPごとの固定窓レート制限を管理する。
// 窓の経過後はカウントが最初からやり直しになる。
// API全般の制限とログイン試行の制限の2種類を独立に提供する。
type RateLimiter struct {
	config RateLimiterConfig

	mu       sync.Mutex
	general  map[string]*windowCounter
	login    map[string]*windowCounter
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter は新しいRateLimiterを生成する。
// バックグラウンドで期限切れエントリのクリーンアップを開始する。
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	rl := &RateLimiter{
		config:  config,
		general: make(map[string]*windowCounter),
		login:   make(map[string]*windowCounter),
		stopCh:  make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop はクリーンアップのバックグラウンドゴルーチンを停止する。
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopCh)
	})
}

// GeneralMiddleware はAPI全般のレート制限ミドルウェアを返す。
func (rl *RateLimiter) GeneralMiddleware() func(next http.Handler) http.Handler {
	return rl.middleware("general", rl.general, rl.config.GeneralLimit)
}

// LoginMiddleware はログイン試行専用のレート制限ミドルウェアを返す。
// API全般の制限とは独立にカウントする。
func (rl *RateLimiter) LoginMiddleware() func(next http.Handler) http.Handler {
	return rl.middleware("login", rl.login, rl.config.LoginLimit)
}

func (rl *RateLimiter) middleware(limitType string, counters map[string]*windowCounter, limit int) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)

			allowed, retryAfter := rl.allow(counters, ip, limit)
			if !allowed {
				writeRateLimitResponse(w, retryAfter)
				slog.Warn("rate limit exceeded",
					slog.String("ip", ip),
					slog.String("limit_type", limitType),
				)
				if rl.config.OnDeny != nil {
					rl.config.OnDeny(limitType)
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// allow は固定窓でリクエストをカウントし、許可するかどうかを判定する。
// 窓が経過していたらカウントをリセットして新しい窓を開始する。
// 拒否時は窓の終了までの残り時間を併せて返す。
func (rl *RateLimiter) allow(counters map[string]*windowCounter, key string, limit int) (bool, time.Duration) {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	wc, exists := counters[key]
	if !exists || now.Sub(wc.windowStart) >= rl.config.Window {
		wc = &windowCounter{windowStart: now}
		counters[key] = wc
	}

	wc.count++
	wc.lastAccess = now

	if wc.count > limit {
		return false, rl.config.Window - now.Sub(wc.windowStart)
	}
	return true, 0
}

// EntryCount は現在管理されているカウンターのエントリ数を返す。
// テストおよびメトリクス用。
func (rl *RateLimiter) EntryCount() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.general) + len(rl.login)
}

// cleanupLoop はバックグラウンドで期限切れエントリを定期的にクリーンアップする。
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup は最終アクセスから窓の2倍を超えたエントリを削除する。
func (rl *RateLimiter) cleanup() {
	ttl := rl.config.Window * 2
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, wc := range rl.general {
		if now.Sub(wc.lastAccess) > ttl {
			delete(rl.general, key)
		}
	}
	for key, wc := range rl.login {
		if now.Sub(wc.lastAccess) > ttl {
			delete(rl.login, key)
		}
	}
}

// clientIP はリクエストの送信元IPアドレスを返す。
// リバースプロキシ配下ではchiのRealIPミドルウェアがRemoteAddrを書き換える。
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// writeRateLimitResponse は429 Too Many Requestsレスポンスを書き込む。
// Retry-Afterヘッダーには現在の窓が終了するまでの秒数を設定する。
func writeRateLimitResponse(w http.ResponseWriter, retryAfter time.Duration) {
	retryAfterSec := int(retryAfter.Seconds()) + 1
	if retryAfterSec < 1 {
		retryAfterSec = 1
	}

	w.Header().Set("Retry-After", strconv.Itoa(retryAfterSec))
	WriteErrorResponse(w, http.StatusTooManyRequests, &model.APIError{
		Code:     "RATE_LIMIT_EXCEEDED",
		Message:  "リクエストが多すぎます。しばらく待ってから再度お試しください。",
		Category: "system",
		Action:   "時間をおいて再度お試しください。",
	})
}
