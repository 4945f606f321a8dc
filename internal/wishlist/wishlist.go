// Package wishlist is the storefront's client for the account service wishlist API.
package wishlist

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/spf13/cast"

	"github.com/MikeMC777/storefront/internal/httpx"
)

var ErrMissingProduct = errors.New("missing product id")

type Entry struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	CreatedAt string `json:"created_at,omitempty"`
}

// UnmarshalJSON accepts both a bare product id and an embedded product object.
func (e *Entry) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	pid := raw["product_id"]
	if pid == nil {
		pid = raw["product"]
	}
	if m, ok := pid.(map[string]any); ok {
		pid = m["id"]
	}
	e.ID = cast.ToString(raw["id"])
	e.ProductID = cast.ToString(pid)
	e.CreatedAt = cast.ToString(raw["created_at"])
	return nil
}

// List is a wishlist in the order returned by the account service.
type List []Entry

// Contains reports whether productID is wishlisted.
func (l List) Contains(productID string) bool {
	for _, e := range l {
		if e.ProductID == productID {
			return true
		}
	}
	return false
}

// ProductIDs lists the wishlisted product ids.
func (l List) ProductIDs() []string {
	out := make([]string, 0, len(l))
	for _, e := range l {
		out = append(out, e.ProductID)
	}
	return out
}

type Client struct {
	api *httpx.Client
}

func NewClient(api *httpx.Client) *Client { return &Client{api: api} }

func (c *Client) Get(ctx context.Context) (List, error) {
	var out List
	if err := c.api.Do(ctx, httpx.Request{Path: []string{"wishlist"}}, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = List{}
	}
	return out, nil
}

func (c *Client) Add(ctx context.Context, productID string) error {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return ErrMissingProduct
	}
	return c.api.Do(ctx, httpx.Request{
		Method: "POST",
		Path:   []string{"wishlist", "add"},
		Body:   map[string]string{"product_id": productID},
	}, nil)
}

func (c *Client) Remove(ctx context.Context, productID string) error {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return ErrMissingProduct
	}
	return c.api.Do(ctx, httpx.Request{Method: "DELETE", Path: []string{"wishlist", "remove", productID}}, nil)
}
