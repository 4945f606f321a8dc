// Package catalog keeps a storefront session's product list in sync with the
// remote catalog API.
package catalog

import (
	"context"
	"net/url"

	"github.com/MikeMC777/storefront/internal/httpx"
	"github.com/MikeMC777/storefront/internal/product"
)

// Page is one fetched page of the catalog API.
type Page struct {
	Count    int               `json:"count"`
	Products []product.Product `json:"results"`
}

// Source is the catalog API as seen by the controller.
type Source interface {
	ListProducts(ctx context.Context, params url.Values) (Page, error)
	Options(ctx context.Context, kind product.OptionKind) ([]product.Option, error)
}

// Client talks to the catalog API over HTTP.
type Client struct {
	api *httpx.Client
}

func NewClient(api *httpx.Client) *Client {
	return &Client{api: api}
}

// ListProducts calls GET /products with the translated filter parameters.
func (c *Client) ListProducts(ctx context.Context, params url.Values) (Page, error) {
	var resp product.ListResponse
	if err := c.api.Do(ctx, httpx.Request{Path: []string{"products"}, Query: params}, &resp); err != nil {
		return Page{}, err
	}
	if resp.Results == nil {
		resp.Results = []product.Product{}
	}
	count := resp.Count
	if count < len(resp.Results) {
		count = len(resp.Results)
	}
	return Page{Count: count, Products: resp.Results}, nil
}

// GetProduct calls GET /products/{id}.
func (c *Client) GetProduct(ctx context.Context, id string) (*product.Product, error) {
	var p product.Product
	if err := c.api.Do(ctx, httpx.Request{Path: []string{"products", id}}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Options calls GET /categories, /brands, /colors or /sizes.
func (c *Client) Options(ctx context.Context, kind product.OptionKind) ([]product.Option, error) {
	var out []product.Option
	if err := c.api.Do(ctx, httpx.Request{Path: []string{string(kind)}}, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []product.Option{}
	}
	return out, nil
}
