package cart

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/storefront/internal/httpx"
)

type recorded struct {
	method, path, body, auth string
}

type recorder struct {
	mu    sync.Mutex
	calls []recorded
}

func (r *recorder) all() []recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recorded(nil), r.calls...)
}

func newClient(t *testing.T, reply string) (*Client, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.calls = append(rec.calls, recorded{r.Method, r.URL.Path, string(b), r.Header.Get("Authorization")})
		rec.mu.Unlock()
		if reply == "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return NewClient(httpx.NewClient(srv.URL, time.Second)), rec
}

func TestCart_UnmarshalLenient(t *testing.T) {
	var c Cart
	raw := `{"items": [
		{"id": 1, "product": {"id": 10, "name": "Boot"}, "quantity": 2, "selected_size": "42"},
		{"id": "2", "product_id": "11", "quantity": "1", "color": "Red"},
		{"id": 3, "product_id": 12, "quantity": -4}
	], "total_price": 129.5}`
	require.NoError(t, json.Unmarshal([]byte(raw), &c))

	require.Len(t, c.Items, 3)
	assert.Equal(t, Item{ID: "1", ProductID: "10", Quantity: 2, Size: "42"}, c.Items[0])
	assert.Equal(t, "11", c.Items[1].ProductID)
	assert.Equal(t, 1, c.Items[1].Quantity)
	assert.Equal(t, "Red", c.Items[1].Color)
	assert.Equal(t, 0, c.Items[2].Quantity)
	assert.Equal(t, 3, c.TotalItems, "summed from the lines when absent")
	assert.Equal(t, "129.5", c.TotalPrice.String())
}

func TestClient_GetForwardsBearer(t *testing.T) {
	c, rec := newClient(t, `{"items": [], "total_items": 0, "total_price": "0.00"}`)
	got, err := c.Get(httpx.WithBearer(context.Background(), "t0k"))
	require.NoError(t, err)
	assert.Empty(t, got.Items)
	calls := rec.all()
	require.Len(t, calls, 1)
	assert.Equal(t, recorded{method: "GET", path: "/cart", auth: "Bearer t0k"}, calls[0])
}

func TestClient_Mutations(t *testing.T) {
	c, rec := newClient(t, "")
	ctx := context.Background()

	require.NoError(t, c.Add(ctx, AddRequest{ProductID: "p1", Size: "M"}))
	require.NoError(t, c.UpdateItem(ctx, "i9", 3))
	require.NoError(t, c.Remove(ctx, "i9"))
	require.NoError(t, c.Clear(ctx))

	calls := rec.all()
	require.Len(t, calls, 4)
	assert.Equal(t, "POST", calls[0].method)
	assert.Equal(t, "/cart/add", calls[0].path)
	assert.JSONEq(t, `{"product_id":"p1","quantity":1,"size":"M"}`, calls[0].body)
	assert.Equal(t, "PATCH", calls[1].method)
	assert.Equal(t, "/cart/items/i9", calls[1].path)
	assert.JSONEq(t, `{"quantity":3}`, calls[1].body)
	assert.Equal(t, "DELETE", calls[2].method)
	assert.Equal(t, "/cart/items/i9", calls[2].path)
	assert.Equal(t, "/cart/clear", calls[3].path)
}

func TestClient_ValidatesBeforeCalling(t *testing.T) {
	c, rec := newClient(t, "")
	ctx := context.Background()

	assert.ErrorIs(t, c.Add(ctx, AddRequest{Quantity: 1}), ErrMissingID)
	assert.ErrorIs(t, c.Add(ctx, AddRequest{ProductID: "p", Quantity: -1}), ErrInvalidQuantity)
	assert.ErrorIs(t, c.UpdateItem(ctx, "i", 0), ErrInvalidQuantity)
	assert.ErrorIs(t, c.UpdateItem(ctx, " ", 2), ErrMissingID)
	assert.ErrorIs(t, c.Remove(ctx, ""), ErrMissingID)
	assert.Empty(t, rec.all())
}
