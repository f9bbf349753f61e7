package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func testLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     2,
		GeneralBurst:    5,
		MetadataRate:    rate.Limit(30.0 / 60.0),
		MetadataBurst:   2,
		CleanupInterval: time.Minute,
	}
}

// serveAs は指定ユーザーとしてリクエストを送り、ステータスコードを返す。
func serveAs(h http.Handler, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
	if userID != "" {
		req = req.WithContext(ContextWithUserID(req.Context(), userID))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestDefaultRateLimiterConfig(t *testing.T) {
	cfg := DefaultRateLimiterConfig()
	if cfg.GeneralRate != rate.Limit(2) || cfg.GeneralBurst != 120 {
		t.Errorf("general = %v / %d", cfg.GeneralRate, cfg.GeneralBurst)
	}
	if cfg.MetadataBurst != 30 {
		t.Errorf("MetadataBurst = %d, want 30", cfg.MetadataBurst)
	}

	per := RateLimiterConfigPerMinute(60)
	if per.GeneralRate != rate.Limit(1) || per.GeneralBurst != 60 {
		t.Errorf("PerMinute(60) = %v / %d", per.GeneralRate, per.GeneralBurst)
	}
	if zero := RateLimiterConfigPerMinute(0); zero.GeneralBurst != 120 {
		t.Errorf("PerMinute(0) は既定値を使うべき: %d", zero.GeneralBurst)
	}
}

func TestGeneralMiddleware_BurstThen429(t *testing.T) {
	rl := NewRateLimiter(testLimiterConfig())
	defer rl.Stop()
	handler := rl.GeneralMiddleware()(okHandler)

	for i := 0; i < 5; i++ {
		if w := serveAs(handler, "user1"); w.Code != http.StatusOK {
			t.Fatalf("リクエスト%d: status = %d, want 200", i+1, w.Code)
		}
	}

	w := serveAs(handler, "user1")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if ra, err := strconv.Atoi(w.Header().Get("Retry-After")); err != nil || ra < 1 {
		t.Errorf("Retry-After = %q", w.Header().Get("Retry-After"))
	}
	var body ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("レスポンスのデコードに失敗した: %v", err)
	}
	if body.Code != "RATE_LIMIT_EXCEEDED" {
		t.Errorf("code = %q", body.Code)
	}

	// 他のユーザーには影響しない
	if w := serveAs(handler, "user2"); w.Code != http.StatusOK {
		t.Errorf("別ユーザー: status = %d, want 200", w.Code)
	}
	if got := rl.GeneralLimiterCount(); got != 2 {
		t.Errorf("GeneralLimiterCount = %d, want 2", got)
	}
}

func TestMetadataMiddleware_IndependentFromGeneral(t *testing.T) {
	rl := NewRateLimiter(testLimiterConfig())
	defer rl.Stop()
	meta := rl.MetadataMiddleware()(okHandler)
	general := rl.GeneralMiddleware()(okHandler)

	serveAs(meta, "user1")
	serveAs(meta, "user1")
	w := serveAs(meta, "user1")
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("メタデータ3回目: status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") != "2" {
		t.Errorf("Retry-After = %q, want 2", w.Header().Get("Retry-After"))
	}
	if w := serveAs(general, "user1"); w.Code != http.StatusOK {
		t.Errorf("API全般: status = %d, want 200", w.Code)
	}
	if rl.MetadataLimiterCount() != 1 {
		t.Errorf("MetadataLimiterCount = %d, want 1", rl.MetadataLimiterCount())
	}
}

func TestRateLimiter_NoUserReturns401(t *testing.T) {
	rl := NewRateLimiter(testLimiterConfig())
	defer rl.Stop()

	if w := serveAs(rl.GeneralMiddleware()(okHandler), ""); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestRateLimiter_CleanupRemovesStaleEntries(t *testing.T) {
	rl := NewRateLimiter(testLimiterConfig())
	defer rl.Stop()

	serveAs(rl.GeneralMiddleware()(okHandler), "user1")
	serveAs(rl.MetadataMiddleware()(okHandler), "user1")

	rl.cleanup(time.Now())
	if rl.GeneralLimiterCount() != 1 {
		t.Fatal("期限内のエントリが削除された")
	}

	rl.cleanup(time.Now().Add(3 * time.Minute))
	if rl.GeneralLimiterCount() != 0 || rl.MetadataLimiterCount() != 0 {
		t.Errorf("期限切れエントリが残っている: general=%d metadata=%d", rl.GeneralLimiterCount(), rl.MetadataLimiterCount())
	}
}

func TestRateLimiter_StopTwice(t *testing.T) {
	rl := NewRateLimiter(testLimiterConfig())
	rl.Stop()
	rl.Stop()
}
