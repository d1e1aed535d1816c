package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestGetJSON_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"recall","version":1}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	var dest struct {
		Name    string `json:"name"`
		Version int    `json:"version"`
	}
	if err := c.GetJSON(context.Background(), "/info", nil, &dest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dest.Name != "recall" || dest.Version != 1 {
		t.Fatalf("unexpected result: %+v", dest)
	}
}

func TestGetJSON_Headers(t *testing.T) {
	var gotAuth, gotToken, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotToken = r.Header.Get("PRIVATE-TOKEN")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithBearer("secret-token-123"), WithHeader("PRIVATE-TOKEN", "glpat"))
	if err := c.GetJSON(context.Background(), "/", nil, &struct{}{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer secret-token-123" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotToken != "glpat" {
		t.Errorf("PRIVATE-TOKEN = %q", gotToken)
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q", gotAccept)
	}
}

func TestGetJSON_QueryAndPath(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL + "/api/v4/")
	q := url.Values{"to": {"200"}, "from": {"100"}}
	if err := c.GetJSON(context.Background(), "/events", q, &struct{}{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/api/v4/events" {
		t.Errorf("path = %q", gotPath)
	}
	// url.Values.Encode sorts keys alphabetically
	if gotQuery != "from=100&to=200" {
		t.Errorf("query = %q", gotQuery)
	}
}

func TestGetJSON_APIErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(strings.Repeat("x", 600)))
	}))
	defer srv.Close()

	err := New(srv.URL).GetJSON(context.Background(), "/", nil, &struct{}{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d", apiErr.StatusCode)
	}
	if len(apiErr.Body) != 512 {
		t.Errorf("body length = %d, want 512", len(apiErr.Body))
	}
	if calls.Load() != 1 {
		t.Errorf("server called %d times, want 1", calls.Load())
	}
}

func TestGetJSON_DecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	if err := New(srv.URL).GetJSON(context.Background(), "/x", nil, &struct{}{}); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestGetJSON_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := New(srv.URL).GetJSON(ctx, "/", nil, &struct{}{}); err == nil {
		t.Fatal("expected an error for a cancelled context")
	}
}

func TestWithTimeout(t *testing.T) {
	c := New("http://example.invalid", WithTimeout(3*time.Second))
	if c.httpClient.Timeout != 3*time.Second {
		t.Errorf("timeout = %v", c.httpClient.Timeout)
	}
}
