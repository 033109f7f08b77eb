package profile

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"FlousWise/internal/config"
	"FlousWise/internal/faults"
	pkghttp "FlousWise/pkg/http"
	"FlousWise/pkg/logger"
)

// memoryCache is an in-process Cache used to observe caching behavior.
type memoryCache struct {
	entries map[string]string
	getErr  error
	setErr  error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]string{}}
}

func (m *memoryCache) Get(ctx context.Context, key string) (string, bool, error) {
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *memoryCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.entries[key] = value
	return nil
}

func (m *memoryCache) Delete(ctx context.Context, key string) error {
	delete(m.entries, key)
	return nil
}

const profileJSON = `{
  "userId": "user-1",
  "monthlyIncome": {"salary": 9000, "freelance": 0, "other": 0},
  "fixedExpenses": {"rent": 3500},
  "variableExpenses": {"food": 2000},
  "debts": [],
  "financialGoals": [{"name": "Emergency fund", "targetAmount": 27000, "savedAmount": 5000}]
}`

func newTestService(t *testing.T, financeURL string, cache Cache) *Service {
	t.Helper()
	client, err := pkghttp.NewClient(config.CircuitBreakerConfig{Enabled: false})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	svc, err := New(&config.ProfileConfig{FinanceServiceURL: financeURL, CacheTTL: "1m"}, cache, client, logger.New("test", "", ""))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return svc
}

func TestFetch_RemoteThenCached(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path != "/api/profile" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token-abc" {
			t.Errorf("Authorization = %q, want bearer pass-through", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(profileJSON))
	}))
	defer server.Close()

	cache := newMemoryCache()
	svc := newTestService(t, server.URL, cache)

	p, err := svc.Fetch(context.Background(), "user-1", "token-abc")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if p.UserID != "user-1" || p.MonthlyIncome.Salary != 9000 {
		t.Errorf("unexpected profile: %+v", p)
	}
	if _, ok := cache.entries["user:profile:user-1"]; !ok {
		t.Error("profile was not cached under user:profile:<id>")
	}

	// Second fetch must come from cache.
	if _, err := svc.Fetch(context.Background(), "user-1", "token-abc"); err != nil {
		t.Fatalf("Fetch() from cache error = %v", err)
	}
	if calls != 1 {
		t.Errorf("finance service called %d times, want 1", calls)
	}
}

func TestFetch_NotFoundNeverCached(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail": "Profile not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	cache := newMemoryCache()
	svc := newTestService(t, server.URL, cache)

	_, err := svc.Fetch(context.Background(), "user-2", "token")
	var notFound *faults.ProfileNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ProfileNotFound, got %v", err)
	}
	if notFound.UserID != "user-2" {
		t.Errorf("UserID = %q", notFound.UserID)
	}
	if len(cache.entries) != 0 {
		t.Error("not-found answer must never be cached")
	}
}

func TestFetch_ServerErrorIsFetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := newTestService(t, server.URL, newMemoryCache())

	_, err := svc.Fetch(context.Background(), "user-1", "token")
	var fetchErr *faults.ProfileFetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected ProfileFetchError, got %v", err)
	}
}

func TestFetch_CorruptPayloadIsFetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{truncated"))
	}))
	defer server.Close()

	svc := newTestService(t, server.URL, newMemoryCache())

	_, err := svc.Fetch(context.Background(), "user-1", "token")
	var fetchErr *faults.ProfileFetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected ProfileFetchError, got %v", err)
	}
}

func TestFetch_CacheReadFailureFallsThrough(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(profileJSON))
	}))
	defer server.Close()

	cache := newMemoryCache()
	cache.getErr = errors.New("redis down")
	svc := newTestService(t, server.URL, cache)

	p, err := svc.Fetch(context.Background(), "user-1", "token")
	if err != nil {
		t.Fatalf("Fetch() with broken cache error = %v", err)
	}
	if p.UserID != "user-1" || calls != 1 {
		t.Errorf("expected direct fetch despite cache failure (calls=%d)", calls)
	}
}

func TestFetch_CorruptCacheEntryRefetched(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(profileJSON))
	}))
	defer server.Close()

	cache := newMemoryCache()
	cache.entries["user:profile:user-1"] = "{corrupt"
	svc := newTestService(t, server.URL, cache)

	p, err := svc.Fetch(context.Background(), "user-1", "token")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if p.MonthlyIncome.Salary != 9000 {
		t.Errorf("unexpected profile: %+v", p)
	}
	if calls != 1 {
		t.Errorf("finance service called %d times, want 1", calls)
	}
	if cache.entries["user:profile:user-1"] == "{corrupt" {
		t.Error("corrupt cache entry was not replaced")
	}
}

func TestInvalidate(t *testing.T) {
	cache := newMemoryCache()
	cache.entries["user:profile:user-1"] = profileJSON
	svc := newTestService(t, "http://unused", cache)

	svc.Invalidate(context.Background(), "user-1")
	if _, ok := cache.entries["user:profile:user-1"]; ok {
		t.Error("Invalidate() did not drop the cached profile")
	}
}

func TestNew_InvalidTTL(t *testing.T) {
	client, err := pkghttp.NewClient(config.CircuitBreakerConfig{Enabled: false})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	_, err = New(&config.ProfileConfig{FinanceServiceURL: "http://x", CacheTTL: "bogus"}, newMemoryCache(), client, logger.New("test", "", ""))
	if err == nil {
		t.Fatal("expected error for invalid TTL")
	}
}
