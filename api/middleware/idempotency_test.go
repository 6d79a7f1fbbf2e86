package middleware

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/vendio/catalog-backend/pkg/logger"
	pkgredis "github.com/vendio/catalog-backend/pkg/redis"
)

// memoryStore is an in-process stand-in for the redis idempotency store.
type memoryStore struct {
	mu      sync.Mutex
	records map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: make(map[string]string)}
}

func (s *memoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[key], nil
}

func (s *memoryStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[key]; ok {
		return false, nil
	}
	s.records[key] = fmt.Sprint(value)
	return true, nil
}

func (s *memoryStore) IdempotencyKey(scope, id string) string {
	return "test:" + scope + ":" + id
}

func idempotencyHandler(store pkgredis.IdempotencyStore, hits *int) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"data":{"hit":%d}}`, *hits)
	})
	return Idempotency(store, time.Hour, logg)(inner)
}

func idempotentRequest(businessID uuid.UUID, key, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(body))
	req = req.WithContext(WithBusinessID(req.Context(), businessID))
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	return req
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	t.Parallel()

	hits := 0
	handler := idempotencyHandler(newMemoryStore(), &hits)
	businessID := uuid.New()

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, idempotentRequest(businessID, "key-1", `{"name":"Latte"}`))
	require.Equal(t, http.StatusCreated, first.Code)
	require.Equal(t, 1, hits)

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, idempotentRequest(businessID, "key-1", `{"name":"Latte"}`))
	require.Equal(t, http.StatusCreated, second.Code)
	require.Equal(t, first.Body.String(), second.Body.String())
	require.Equal(t, "application/json", second.Header().Get("Content-Type"))
	// The handler must not run again on a replay.
	require.Equal(t, 1, hits)
}

func TestIdempotencyRejectsReusedKeyWithDifferentBody(t *testing.T) {
	t.Parallel()

	hits := 0
	handler := idempotencyHandler(newMemoryStore(), &hits)
	businessID := uuid.New()

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, idempotentRequest(businessID, "key-1", `{"name":"Latte"}`))
	require.Equal(t, 1, hits)

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, idempotentRequest(businessID, "key-1", `{"name":"Espresso"}`))
	require.Equal(t, http.StatusConflict, second.Code)
	require.Contains(t, second.Body.String(), "IDEMPOTENCY_KEY_REUSED")
	require.Equal(t, 1, hits)
}

func TestIdempotencyDoesNotCacheServerErrors(t *testing.T) {
	t.Parallel()

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	hits := 0
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprint(w, `{"error":{"code":"DEPENDENCY_ERROR"}}`)
			return
		}
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"data":{"ok":true}}`)
	})
	handler := Idempotency(newMemoryStore(), time.Hour, logg)(inner)
	businessID := uuid.New()

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, idempotentRequest(businessID, "key-1", `{"name":"Latte"}`))
	require.Equal(t, http.StatusServiceUnavailable, first.Code)

	// A retry with the same key must reach the handler, not replay the 503.
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, idempotentRequest(businessID, "key-1", `{"name":"Latte"}`))
	require.Equal(t, http.StatusCreated, second.Code)
	require.Equal(t, 2, hits)

	// The successful outcome is what gets pinned to the key.
	third := httptest.NewRecorder()
	handler.ServeHTTP(third, idempotentRequest(businessID, "key-1", `{"name":"Latte"}`))
	require.Equal(t, http.StatusCreated, third.Code)
	require.Equal(t, second.Body.String(), third.Body.String())
	require.Equal(t, 2, hits)
}

func TestIdempotencyScopedByBusiness(t *testing.T) {
	t.Parallel()

	hits := 0
	handler := idempotencyHandler(newMemoryStore(), &hits)

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, idempotentRequest(uuid.New(), "key-1", `{"name":"Latte"}`))
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, idempotentRequest(uuid.New(), "key-1", `{"name":"Latte"}`))

	// Different businesses never share idempotency records.
	require.Equal(t, 2, hits)
}

func TestIdempotencyPassThrough(t *testing.T) {
	t.Parallel()

	hits := 0
	handler := idempotencyHandler(newMemoryStore(), &hits)
	businessID := uuid.New()

	// No Idempotency-Key header: the request flows straight through.
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, idempotentRequest(businessID, "", `{"name":"Latte"}`))
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	require.Equal(t, 2, hits)

	// Uncovered routes are never intercepted, key or not.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req = req.WithContext(WithBusinessID(req.Context(), businessID))
	req.Header.Set("Idempotency-Key", "key-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, 3, hits)
}

func TestRouteCovered(t *testing.T) {
	t.Parallel()

	cases := []struct {
		method string
		path   string
		want   bool
	}{
		{http.MethodPost, "/api/v1/products", true},
		{http.MethodPost, "/api/v1/products/", true},
		{http.MethodGet, "/api/v1/products", false},
		{http.MethodPost, "/api/v1/products/52fdfc07-2182-454f-963f-5f0f9a621d72/stock/adjust", true},
		{http.MethodPost, "/api/v1/modifier-groups", true},
		{http.MethodPost, "/api/v1/modifier-groups/52fdfc07-2182-454f-963f-5f0f9a621d72/options", true},
		{http.MethodPost, "/api/v1/modifier-options/52fdfc07-2182-454f-963f-5f0f9a621d72/availability/apply", true},
		{http.MethodPost, "/api/v1/modifier-options/52fdfc07-2182-454f-963f-5f0f9a621d72/archive", false},
		{http.MethodPatch, "/api/v1/products/52fdfc07-2182-454f-963f-5f0f9a621d72", false},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		got := routeCovered(tc.method, requestPath(req))
		if got != tc.want {
			t.Errorf("routeCovered(%s %s) = %v, want %v", tc.method, tc.path, got, tc.want)
		}
	}
}
