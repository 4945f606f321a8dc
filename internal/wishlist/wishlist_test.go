package wishlist

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/MikeMC777/storefront/internal/httpx"
)

func TestList_Unmarshal(t *testing.T) {
	var l List
	raw := `[{"id": 1, "product": {"id": 5}}, {"id": "2", "product_id": "6", "created_at": "2024-01-01"}]`
	if err := json.Unmarshal([]byte(raw), &l); err != nil {
		t.Fatal(err)
	}
	if !l.Contains("5") || !l.Contains("6") || l.Contains("7") {
		t.Fatalf("unexpected contents %+v", l)
	}
	if got := l.ProductIDs(); len(got) != 2 || got[0] != "5" {
		t.Fatalf("ProductIDs=%v", got)
	}
}

func TestClient_Flow(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Method+" "+r.URL.Path)
		mu.Unlock()
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(`null`))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(httpx.NewClient(srv.URL, time.Second))
	ctx := context.Background()
	if err := c.Add(ctx, " 5 "); err != nil {
		t.Fatal(err)
	}
	if err := c.Remove(ctx, "5"); err != nil {
		t.Fatal(err)
	}
	l, err := c.Get(ctx)
	if err != nil || l == nil || len(l) != 0 {
		t.Fatalf("Get: %v %v", l, err)
	}
	if err := c.Add(ctx, ""); err != ErrMissingProduct {
		t.Fatalf("expected ErrMissingProduct, got %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"POST /wishlist/add", "DELETE /wishlist/remove/5", "GET /wishlist"}
	if len(seen) != len(want) {
		t.Fatalf("calls=%v", seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("call %d = %q, want %q", i, seen[i], want[i])
		}
	}
}
