package httpx

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
)

func TestDo_JSONRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/cart/add" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer abc" {
			t.Errorf("Authorization=%q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type=%q", got)
		}
		var in map[string]any
		_ = json.NewDecoder(r.Body).Decode(&in)
		_ = json.NewEncoder(w).Encode(map[string]any{"echo": in["product_id"]})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/v1/", time.Second)
	var out struct {
		Echo string `json:"echo"`
	}
	ctx := WithBearer(context.Background(), " abc ")
	err := c.Do(ctx, Request{Method: http.MethodPost, Path: []string{"cart", "add"}, Body: map[string]string{"product_id": "p1"}}, &out)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if out.Echo != "p1" {
		t.Fatalf("echo=%q", out.Echo)
	}
}

func TestDo_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, strings.Repeat("x", 1000))
	}))
	defer srv.Close()

	err := NewClient(srv.URL, time.Second).Do(context.Background(), Request{Path: []string{"cart"}}, nil)
	if !errors.Is(err, ErrStatus) {
		t.Fatalf("expected ErrStatus, got %v", err)
	}
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusUnauthorized || se.Method != http.MethodGet {
		t.Fatalf("unexpected error %#v", err)
	}
	if len(se.Body) != 256 {
		t.Fatalf("body should be truncated, got %d bytes", len(se.Body))
	}
}

func TestDo_EmptyBodiesAreFine(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/gone" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	var out map[string]any
	if err := c.Do(context.Background(), Request{Method: http.MethodDelete, Path: []string{"gone"}}, &out); err != nil {
		t.Fatalf("204: %v", err)
	}
	if err := c.Do(context.Background(), Request{Method: http.MethodPost, Path: []string{"made"}}, &out); err != nil {
		t.Fatalf("201 without body: %v", err)
	}
}

func TestDo_TransportFailureIsWrapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	err := NewClient(srv.URL, time.Second).Do(context.Background(), Request{Path: []string{"products"}}, nil)
	if err == nil || errors.Is(err, ErrStatus) {
		t.Fatalf("expected a transport error, got %v", err)
	}
	if !strings.Contains(err.Error(), "GET /products") {
		t.Fatalf("error should name the call: %v", err)
	}
}

func TestBearer_NotSetWithoutToken(t *testing.T) {
	if BearerFrom(context.Background()) != "" {
		t.Fatal("no token expected")
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Errorf("unexpected Authorization header")
		}
	}))
	defer srv.Close()
	_ = NewClient(srv.URL, time.Second).Do(context.Background(), Request{}, nil)
}
