// Package cart is the storefront's client for the account service cart API.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"github.com/MikeMC777/storefront/internal/httpx"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be >= 1")
	ErrMissingID       = errors.New("missing id")
)

// Item is one cart line. ProductID references the catalog record.
type Item struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
	AddedAt   string `json:"added_at,omitempty"`
}

type Cart struct {
	Items      []Item          `json:"items"`
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// UnmarshalJSON tolerates numeric ids, string totals and missing fields.
func (c *Cart) UnmarshalJSON(b []byte) error {
	var raw struct {
		Items      []map[string]any `json:"items"`
		TotalItems any              `json:"total_items"`
		TotalPrice any              `json:"total_price"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	c.Items = make([]Item, 0, len(raw.Items))
	for _, it := range raw.Items {
		productID := it["product_id"]
		if productID == nil {
			productID = it["product"]
		}
		// nested product objects carry their own id
		if m, ok := productID.(map[string]any); ok {
			productID = m["id"]
		}
		c.Items = append(c.Items, Item{
			ID:        cast.ToString(it["id"]),
			ProductID: cast.ToString(productID),
			Quantity:  max(cast.ToInt(it["quantity"]), 0),
			Size:      firstString(it, "size", "selected_size"),
			Color:     firstString(it, "color", "selected_color"),
			AddedAt:   firstString(it, "added_at", "created_at"),
		})
	}
	c.TotalItems = cast.ToInt(raw.TotalItems)
	if c.TotalItems == 0 {
		for _, it := range c.Items {
			c.TotalItems += it.Quantity
		}
	}
	c.TotalPrice = decimal.Zero
	if s := strings.TrimSpace(cast.ToString(raw.TotalPrice)); s != "" {
		if d, err := decimal.NewFromString(s); err == nil {
			c.TotalPrice = d
		}
	}
	return nil
}

// AddRequest is the payload of POST /cart/add.
type AddRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
}

type Client struct {
	api *httpx.Client
}

func NewClient(api *httpx.Client) *Client { return &Client{api: api} }

func (c *Client) Get(ctx context.Context) (Cart, error) {
	var out Cart
	if err := c.api.Do(ctx, httpx.Request{Path: []string{"cart"}}, &out); err != nil {
		return Cart{}, err
	}
	return out, nil
}

func (c *Client) Add(ctx context.Context, req AddRequest) error {
	if strings.TrimSpace(req.ProductID) == "" {
		return ErrMissingID
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 1 {
		return ErrInvalidQuantity
	}
	return c.api.Do(ctx, httpx.Request{Method: "POST", Path: []string{"cart", "add"}, Body: req}, nil)
}

func (c *Client) UpdateItem(ctx context.Context, itemID string, quantity int) error {
	if strings.TrimSpace(itemID) == "" {
		return ErrMissingID
	}
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	return c.api.Do(ctx, httpx.Request{
		Method: "PATCH",
		Path:   []string{"cart", "items", itemID},
		Body:   map[string]int{"quantity": quantity},
	}, nil)
}

func (c *Client) Remove(ctx context.Context, itemID string) error {
	if strings.TrimSpace(itemID) == "" {
		return ErrMissingID
	}
	return c.api.Do(ctx, httpx.Request{Method: "DELETE", Path: []string{"cart", "items", itemID}}, nil)
}

func (c *Client) Clear(ctx context.Context) error {
	return c.api.Do(ctx, httpx.Request{Method: "DELETE", Path: []string{"cart", "clear"}}, nil)
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := strings.TrimSpace(cast.ToString(m[k])); s != "" {
			return s
		}
	}
	return ""
}
