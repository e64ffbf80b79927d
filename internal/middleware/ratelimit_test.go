package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestMemoryLimiter(t *testing.T) {
	l := NewMemoryLimiter(3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, _, err := l.Allow(ctx, "a")
		if err != nil || !ok {
			t.Fatalf("request %d should pass", i)
		}
	}
	ok, retry, _ := l.Allow(ctx, "a")
	if ok {
		t.Fatal("fourth request should be limited")
	}
	if retry <= 0 || retry > 20*time.Second {
		t.Errorf("unexpected retry delay %s", retry)
	}

	if ok, _, _ := l.Allow(ctx, "b"); !ok {
		t.Error("other keys must not share the bucket")
	}
}

func TestMemoryLimiterEvictsIdleKeys(t *testing.T) {
	l := NewMemoryLimiter(2)
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	l.lastSweep = now
	ctx := context.Background()

	for _, key := range []string{"10.0.0.1", "10.0.0.2", "user-1"} {
		l.Allow(ctx, key)
	}
	l.Allow(ctx, "user-1")
	l.Allow(ctx, "user-1")
	if ok, _, _ := l.Allow(ctx, "user-1"); ok {
		t.Fatal("user-1 should be limited before the sweep")
	}

	now = now.Add(5 * time.Minute)
	l.Allow(ctx, "user-1")
	if n := l.Len(); n != 3 {
		t.Fatalf("no key is idle yet, have %d buckets", n)
	}

	now = now.Add(memoryIdleTTL + time.Minute)
	if ok, _, _ := l.Allow(ctx, "user-2"); !ok {
		t.Fatal("new key should pass")
	}
	if n := l.Len(); n != 1 {
		t.Errorf("idle buckets should be evicted, have %d", n)
	}
	if ok, _, _ := l.Allow(ctx, "user-1"); !ok {
		t.Error("an evicted key starts with a full bucket")
	}
}

type failingLimiter struct{}

func (failingLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	return false, 0, errors.New("redis down")
}

func TestRateLimitMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	handler := RateLimit(NewMemoryLimiter(1), quietLogger())(ok)
	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/ai/process", nil)
		req.RemoteAddr = "10.0.0.7:5555"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	if rec := do(); rec.Code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", rec.Code)
	}
	rec := do()
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}

	// Limiter errors fail open
	open := RateLimit(failingLimiter{}, quietLogger())(ok)
	rec = httptest.NewRecorder()
	open.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected pass-through on limiter error, got %d", rec.Code)
	}
}

func TestRedisLimiter(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set, skipping redis limiter test")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("invalid TEST_REDIS_URL: %v", err)
	}
	client := redis.NewClient(opts)
	defer client.Close()

	l := NewRedisLimiter(client, 2, time.Minute)
	key := "test-" + uuid.NewString()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if ok, _, err := l.Allow(ctx, key); err != nil || !ok {
			t.Fatalf("request %d should pass: %v", i, err)
		}
	}
	ok, retry, err := l.Allow(ctx, key)
	if err != nil {
		t.Fatalf("Allow failed: %v", err)
	}
	if ok || retry <= 0 {
		t.Errorf("third request should be limited, got ok=%v retry=%s", ok, retry)
	}
}
