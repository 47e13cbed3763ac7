package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiterAllowsBurstThenBlocks(t *testing.T) {
	l := NewLimiter(5)
	defer l.Stop()

	for i := 0; i < 5; i++ {
		if !l.Allow("key") {
			t.Fatalf("request %d blocked within burst", i)
		}
	}
	if l.Allow("key") {
		t.Fatal("request beyond burst was allowed")
	}
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	l := NewLimiter(1)
	defer l.Stop()

	if !l.Allow("a") {
		t.Fatal("first request for key a blocked")
	}
	if l.Allow("a") {
		t.Fatal("second request for key a allowed")
	}
	if !l.Allow("b") {
		t.Fatal("key b throttled by key a's usage")
	}
}

func TestLimiterRefills(t *testing.T) {
	l := NewLimiter(6000) // 100 tokens/sec so the test refills quickly
	defer l.Stop()

	for l.Allow("key") {
	}
	time.Sleep(50 * time.Millisecond)
	if !l.Allow("key") {
		t.Fatal("bucket did not refill")
	}
}

func TestLimiterEvictsIdleBuckets(t *testing.T) {
	l := NewLimiter(5)
	defer l.Stop()

	l.Allow("stale")
	l.evictIdle(time.Now().Add(11 * time.Minute))

	l.mu.Lock()
	_, ok := l.buckets["stale"]
	l.mu.Unlock()
	if ok {
		t.Fatal("idle bucket survived eviction")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	l := NewLimiter(2)
	defer l.Stop()

	handler := RateLimit(l)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		statuses = append(statuses, rec.Code)
	}
	if statuses[0] != http.StatusOK || statuses[1] != http.StatusOK {
		t.Fatalf("first two requests = %v, want 200s", statuses[:2])
	}
	if statuses[2] != http.StatusTooManyRequests {
		t.Fatalf("third request = %d, want 429", statuses[2])
	}
}

func TestRateLimitPrefersUserIdentity(t *testing.T) {
	l := NewLimiter(1)
	defer l.Stop()

	handler := RateLimit(l)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Same IP, different users: each gets their own budget.
	for _, user := range []string{"user-a", "user-b"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		req = req.WithContext(ContextWithUserID(req.Context(), user))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("first request for %s = %d, want 200", user, rec.Code)
		}
	}
}
