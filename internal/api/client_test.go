package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/agorahq/agora-go/internal/apierrors"
)

func TestNew_RequiresBaseURL(t *testing.T) {
	t.Parallel()

	if _, err := New(""); err == nil {
		t.Fatal("New(\"\") should return an error")
	}
}

func TestNew_NormalizesBaseURL(t *testing.T) {
	t.Parallel()

	client, err := New("http://example.test/")
	if err != nil {
		t.Fatal(err)
	}
	if got := client.BaseURL(); got != "http://example.test" {
		t.Errorf("BaseURL() = %q, want trailing slash stripped", got)
	}
}

func TestDo_RequestShape(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q", got)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("X-Request-ID missing")
		}
		if got := r.URL.Query().Get("k"); got != "5" {
			t.Errorf("query k = %q", got)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["name"] != "thing" {
			t.Errorf("body = %v", body)
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	client, _ := New(server.URL, WithToken("test-token"))
	var result struct {
		Status string `json:"status"`
	}
	err := client.Post(context.Background(), "/api/thing", url.Values{"k": {"5"}},
		map[string]string{"name": "thing"}, &result)
	if err != nil {
		t.Fatal(err)
	}
	if result.Status != "ok" {
		t.Errorf("Status = %q, want ok", result.Status)
	}
}

func TestDo_NoTokenOmitsAuthorization(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Header["Authorization"]; ok {
			t.Error("Authorization header should be absent without a token")
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	client, _ := New(server.URL)
	if err := client.Get(context.Background(), "/api/market/health", nil, nil); err != nil {
		t.Fatal(err)
	}
}

func TestDo_RepeatedQueryParams(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids := r.URL.Query()["target_ids"]
		if len(ids) != 2 || ids[0] != "t1" || ids[1] != "t2" {
			t.Errorf("target_ids = %v", ids)
		}
		w.Write([]byte("{}"))
	}))
	defer server.Close()

	client, _ := New(server.URL)
	query := url.Values{"target_ids": {"t1", "t2"}}
	if err := client.Get(context.Background(), "/api/market/offers_given_targets", query, nil); err != nil {
		t.Fatal(err)
	}
}

func TestDo_NoContent(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client, _ := New(server.URL)
	if err := client.Delete(context.Background(), "/api/agents/a1", nil); err != nil {
		t.Fatalf("204 should not be an error, got %v", err)
	}
}

func TestDo_ErrorStatusMapped(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"agent not found"}`))
	}))
	defer server.Close()

	client, _ := New(server.URL)
	err := client.Get(context.Background(), "/api/agents/nope", nil, nil)

	var apiErr *apierrors.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("want *apierrors.APIError, got %T", err)
	}
	if apiErr.StatusCode != 404 {
		t.Errorf("StatusCode = %d", apiErr.StatusCode)
	}
	if apiErr.Message != "agent not found" {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if !errors.Is(err, apierrors.ErrNotFound) {
		t.Error("should match ErrNotFound")
	}
}

func TestDo_MalformedBodyIsDecodeError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": <not json>`))
	}))
	defer server.Close()

	client, _ := New(server.URL)
	var result struct {
		Status string `json:"status"`
	}
	err := client.Get(context.Background(), "/api/market/health", nil, &result)

	var decErr *apierrors.DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("want *apierrors.DecodeError, got %T (%v)", err, err)
	}
}

func TestDo_NetworkError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	client, _ := New(server.URL)
	err := client.Get(context.Background(), "/api/market/health", nil, nil)

	var netErr *apierrors.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("want *apierrors.NetworkError, got %T (%v)", err, err)
	}
}

func TestDo_TimeoutErrorKind(t *testing.T) {
	t.Parallel()

	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	client, _ := New(server.URL, WithTimeout(20*time.Millisecond))
	err := client.Get(context.Background(), "/api/market/health", nil, nil)

	var timeoutErr *apierrors.TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("want *apierrors.TimeoutError, got %T (%v)", err, err)
	}
	var netErr *apierrors.NetworkError
	if errors.As(err, &netErr) {
		t.Error("timeout must not be a NetworkError")
	}
}

func TestDo_CancellationAbortsInFlightRequest(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	block := make(chan struct{})
	defer close(block)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	client, _ := New(server.URL)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- client.Get(ctx, "/api/market/health", nil, nil)
	}()

	<-started
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("want context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("cancelled request did not return")
	}
}

func TestDo_RetriesRetryableStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	retry := NewRetryConfig(3)
	retry.BaseDelay = time.Millisecond
	retry.Jitter = 0

	client, _ := New(server.URL, WithRetry(retry))
	var result struct {
		Status string `json:"status"`
	}
	if err := client.Get(context.Background(), "/api/market/health", nil, &result); err != nil {
		t.Fatal(err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestDo_NoRetryByDefault(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, _ := New(server.URL)
	err := client.Get(context.Background(), "/api/market/health", nil, nil)
	if !errors.Is(err, apierrors.ErrServer) {
		t.Fatalf("want server error, got %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1 (no retries by default)", got)
	}
}

func TestSetToken_AffectsSubsequentRequests(t *testing.T) {
	t.Parallel()

	var lastAuth atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastAuth.Store(r.Header.Get("Authorization"))
		w.Write([]byte("{}"))
	}))
	defer server.Close()

	client, _ := New(server.URL, WithToken("first"))
	ctx := context.Background()

	client.Get(ctx, "/api/auth/me", nil, nil)
	if got := lastAuth.Load(); got != "Bearer first" {
		t.Errorf("Authorization = %v", got)
	}

	client.SetToken("second")
	client.Get(ctx, "/api/auth/me", nil, nil)
	if got := lastAuth.Load(); got != "Bearer second" {
		t.Errorf("Authorization = %v", got)
	}

	client.ClearToken()
	client.Get(ctx, "/api/auth/me", nil, nil)
	if got := lastAuth.Load(); got != "" {
		t.Errorf("Authorization after ClearToken = %v", got)
	}
}
