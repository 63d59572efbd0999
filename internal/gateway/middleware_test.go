// middleware_test.go

package gateway

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestRateLimiterGeneralLimit 普通请求超过总预算后被拒绝，客户端之间互不影响
func TestRateLimiterGeneralLimit(t *testing.T) {
	rl := NewRateLimiter(3, 2)

	for i := 0; i < 3; i++ {
		if !rl.allowRequest("1.2.3.4", false) {
			t.Fatalf("第 %d 次请求不应被限制", i+1)
		}
	}
	if rl.allowRequest("1.2.3.4", false) {
		t.Error("超过总预算的请求应被限制")
	}

	// 其他客户端不受影响
	if !rl.allowRequest("5.6.7.8", false) {
		t.Error("其他客户端的请求不应被限制")
	}
}

// TestRateLimiterResolveBudget 战斗发起有单独的更小预算，不影响普通请求
func TestRateLimiterResolveBudget(t *testing.T) {
	rl := NewRateLimiter(100, 2)

	for i := 0; i < 2; i++ {
		if !rl.allowRequest("1.2.3.4", true) {
			t.Fatalf("第 %d 次战斗发起不应被限制", i+1)
		}
	}
	if rl.allowRequest("1.2.3.4", true) {
		t.Error("超过战斗预算的发起应被限制")
	}

	// 普通请求仍在总预算内
	if !rl.allowRequest("1.2.3.4", false) {
		t.Error("普通请求不应受战斗预算影响")
	}
}

// TestRateLimiterHealthExempt 健康检查不计入限流
func TestRateLimiterHealthExempt(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	doRequest := func(path string) int {
		r, _ := http.NewRequest(http.MethodGet, path, nil)
		r.RemoteAddr = "9.9.9.9:1234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w.Code
	}

	// 健康检查反复请求也不会触发限流
	for i := 0; i < 5; i++ {
		if code := doRequest("/health"); code != http.StatusOK {
			t.Fatalf("健康检查返回 %d, 期望 200", code)
		}
	}

	// 普通路径的预算未被健康检查消耗
	if code := doRequest("/stats/leaderboard"); code != http.StatusOK {
		t.Errorf("首次普通请求返回 %d, 期望 200", code)
	}
	if code := doRequest("/stats/leaderboard"); code != http.StatusTooManyRequests {
		t.Errorf("超限普通请求返回 %d, 期望 429", code)
	}
}

// TestGetClientIPForwarded X-Forwarded-For取最靠近客户端的第一跳
func TestGetClientIPForwarded(t *testing.T) {
	rl := NewRateLimiter(10, 10)

	r, _ := http.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if got := rl.getClientIP(r); got != "203.0.113.7" {
		t.Errorf("getClientIP = %s, 期望 203.0.113.7", got)
	}

	r, _ = http.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "198.51.100.3:4567"
	if got := rl.getClientIP(r); got != "198.51.100.3" {
		t.Errorf("getClientIP = %s, 期望 198.51.100.3", got)
	}
}
