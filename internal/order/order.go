// Package order is the storefront's read-only client for the account
// service order history.
package order

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"github.com/MikeMC777/storefront/internal/httpx"
)

var ErrMissingID = errors.New("missing order id")

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
)

type Order struct {
	ID         string          `json:"id"`
	UserEmail  string          `json:"user_email,omitempty"`
	Status     Status          `json:"status"`
	TotalPrice decimal.Decimal `json:"total_price"`
	CreatedAt  time.Time       `json:"created_at"`
	Items      []Item          `json:"items"`
}

// Item is one order line. The product may have been deleted since the
// order was placed, in which case ProductID and ProductName are empty.
type Item struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id,omitempty"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	Size        string          `json:"size,omitempty"`
	Color       string          `json:"color,omitempty"`
	Price       decimal.Decimal `json:"price"`
}

// UnmarshalJSON tolerates numeric ids, string amounts and missing fields.
func (o *Order) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*o = fromMap(raw)
	return nil
}

func fromMap(raw map[string]any) Order {
	o := Order{
		ID:         cast.ToString(raw["id"]),
		UserEmail:  strings.TrimSpace(cast.ToString(raw["user_email"])),
		Status:     Status(strings.ToLower(strings.TrimSpace(cast.ToString(raw["status"])))),
		TotalPrice: amount(first(raw, "total_price", "total")),
		Items:      []Item{},
	}
	if o.Status == "" {
		o.Status = StatusPending
	}
	if ts := cast.ToString(first(raw, "created_at", "date")); ts != "" {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			o.CreatedAt = t
		}
	}
	items, _ := raw["items"].([]any)
	for _, v := range items {
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		it := Item{
			ID:        cast.ToString(m["id"]),
			ProductID: cast.ToString(m["product_id"]),
			Quantity:  max(cast.ToInt(m["quantity"]), 0),
			Size:      strings.TrimSpace(cast.ToString(m["size"])),
			Color:     strings.TrimSpace(cast.ToString(m["color"])),
			Price:     amount(m["price"]),
		}
		if p, ok := m["product"].(map[string]any); ok {
			it.ProductID = cast.ToString(p["id"])
			it.ProductName = strings.TrimSpace(cast.ToString(p["name"]))
		}
		o.Items = append(o.Items, it)
	}
	return o
}

// History is one page of a customer's orders.
type History struct {
	Orders []Order `json:"orders"`
	Count  int     `json:"count"`
}

// UnmarshalJSON accepts a bare array or a paginated {count, results} envelope.
func (h *History) UnmarshalJSON(b []byte) error {
	var list []Order
	if err := json.Unmarshal(b, &list); err == nil {
		h.Orders, h.Count = list, len(list)
	} else {
		var env struct {
			Count   any     `json:"count"`
			Results []Order `json:"results"`
		}
		if err := json.Unmarshal(b, &env); err != nil {
			return err
		}
		h.Orders, h.Count = env.Results, cast.ToInt(env.Count)
	}
	if h.Orders == nil {
		h.Orders = []Order{}
	}
	h.Count = max(h.Count, len(h.Orders))
	return nil
}

type Client struct {
	api *httpx.Client
}

func NewClient(api *httpx.Client) *Client { return &Client{api: api} }

// List fetches the caller's order history.
func (c *Client) List(ctx context.Context) (History, error) {
	var out History
	if err := c.api.Do(ctx, httpx.Request{Path: []string{"orders"}}, &out); err != nil {
		return History{}, err
	}
	if out.Orders == nil {
		out.Orders = []Order{}
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, id string) (Order, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Order{}, ErrMissingID
	}
	var out Order
	if err := c.api.Do(ctx, httpx.Request{Path: []string{"orders", id}}, &out); err != nil {
		return Order{}, err
	}
	return out, nil
}

func first(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func amount(v any) decimal.Decimal {
	if s := strings.TrimSpace(cast.ToString(v)); s != "" {
		if d, err := decimal.NewFromString(s); err == nil {
			return d
		}
	}
	return decimal.Zero
}
