package main

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MikeMC777/storefront/internal/cart"
	"github.com/MikeMC777/storefront/internal/catalog"
	"github.com/MikeMC777/storefront/internal/filter"
	"github.com/MikeMC777/storefront/internal/httpx"
	"github.com/MikeMC777/storefront/internal/order"
	"github.com/MikeMC777/storefront/internal/product"
	"github.com/MikeMC777/storefront/internal/syncstate"
	"github.com/MikeMC777/storefront/internal/wishlist"
)

type server struct {
	log      *zap.Logger
	sessions *sessions
	catalog  *catalog.Client
	carts    *cart.Client
	wishes   *wishlist.Client
	orders   *order.Client
}

// cellView is the JSON shape of a cart or wishlist snapshot.
type cellView[T any] struct {
	Phase syncstate.Phase `json:"phase"`
	Data  T               `json:"data"`
	Error string          `json:"error,omitempty"`
}

func viewOf[T any](s syncstate.Snapshot[T]) cellView[T] {
	v := cellView[T]{Phase: s.Phase, Data: s.Value}
	if s.Err != nil {
		v.Error = s.Err.Error()
	}
	return v
}

// filtersRequest is a partial update: absent fields keep their value, an
// empty list clears the dimension.
type filtersRequest struct {
	Search     *string          `json:"search"`
	Categories *[]string        `json:"categories"`
	Sizes      *[]string        `json:"sizes"`
	Colors     *[]string        `json:"colors"`
	Brands     *[]string        `json:"brands"`
	MinPrice   *decimal.Decimal `json:"min_price"`
	MaxPrice   *decimal.Decimal `json:"max_price"`
	Sort       *string          `json:"sort"`
	Page       *int             `json:"page"`
}

func (r filtersRequest) changes(current filter.State) ([]filter.Change, error) {
	var out []filter.Change
	if r.Search != nil {
		out = append(out, filter.Search(*r.Search))
	}
	if r.Categories != nil {
		out = append(out, filter.Categories(*r.Categories...))
	}
	if r.Sizes != nil {
		out = append(out, filter.Sizes(*r.Sizes...))
	}
	if r.Colors != nil {
		out = append(out, filter.Colors(*r.Colors...))
	}
	if r.Brands != nil {
		out = append(out, filter.Brands(*r.Brands...))
	}
	if r.MinPrice != nil || r.MaxPrice != nil {
		pr := current.Price()
		if r.MinPrice != nil {
			pr.Min = *r.MinPrice
		}
		if r.MaxPrice != nil {
			pr.Max = *r.MaxPrice
		}
		out = append(out, filter.Price(pr.Min, pr.Max))
	}
	if r.Sort != nil {
		k, err := filter.ParseSortKey(*r.Sort)
		if err != nil {
			return nil, err
		}
		out = append(out, filter.SortBy(k))
	}
	if r.Page != nil {
		out = append(out, filter.PageTo(*r.Page))
	}
	return out, nil
}

// GET /products
func (s *server) getProducts(c *gin.Context) {
	ctrl := controllerOf(c)
	ctx := c.Request.Context()
	if c.Query("refresh") != "" || ctrl.Snapshot().Phase == syncstate.Idle {
		c.JSON(http.StatusOK, ctrl.Refresh(ctx))
		return
	}
	c.JSON(http.StatusOK, ctrl.Snapshot())
}

// GET /products/:id
func (s *server) getProduct(c *gin.Context) {
	p, err := s.catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// POST /filters
func (s *server) setFilters(c *gin.Context) {
	ctrl := controllerOf(c)
	var req filtersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, product.HTTPError{Error: "invalid json"})
		return
	}
	changes, err := req.changes(ctrl.State())
	if err != nil {
		c.JSON(http.StatusBadRequest, product.HTTPError{Error: err.Error()})
		return
	}
	snap, err := ctrl.SetFilters(c.Request.Context(), changes...)
	if err != nil {
		c.JSON(http.StatusBadRequest, product.HTTPError{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// DELETE /filters
func (s *server) clearFilters(c *gin.Context) {
	c.JSON(http.StatusOK, controllerOf(c).ClearFilters(c.Request.Context()))
}

// PUT /sort {"sort": "price_asc"}
func (s *server) setSort(c *gin.Context) {
	var req struct {
		Sort string `json:"sort"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, product.HTTPError{Error: "invalid json"})
		return
	}
	key, err := filter.ParseSortKey(req.Sort)
	if err != nil {
		c.JSON(http.StatusBadRequest, product.HTTPError{Error: err.Error()})
		return
	}
	snap, err := controllerOf(c).SetSort(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusBadRequest, product.HTTPError{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// PUT /page {"page": 2}
func (s *server) setPage(c *gin.Context) {
	var req struct {
		Page int `json:"page" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, product.HTTPError{Error: "page is required"})
		return
	}
	snap, err := controllerOf(c).SetPage(c.Request.Context(), req.Page)
	if err != nil {
		c.JSON(http.StatusBadRequest, product.HTTPError{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// GET /filters/options
func (s *server) filterOptions(c *gin.Context) {
	c.JSON(http.StatusOK, controllerOf(c).LoadOptions(c.Request.Context()))
}

// GET /clearance
func (s *server) clearance(c *gin.Context) {
	ctrl := controllerOf(c)
	if ctrl.Snapshot().Phase == syncstate.Idle {
		ctrl.Mount(c.Request.Context())
	}
	c.JSON(http.StatusOK, ctrl.Clearance())
}

// GET /cart
func (s *server) getCart(c *gin.Context) {
	snap := controllerOf(c).FetchCart(s.authed(c))
	status := http.StatusOK
	if snap.Phase == syncstate.Errored && !snap.Loaded {
		status = statusFor(snap.Err)
	}
	c.JSON(status, viewOf(snap))
}

// POST /cart/items
func (s *server) addCartItem(c *gin.Context) {
	var req cart.AddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, product.HTTPError{Error: "invalid json"})
		return
	}
	s.mutateCart(c, http.StatusCreated, func() error { return s.carts.Add(s.authed(c), req) })
}

// PATCH /cart/items/:id {"quantity": 2}
func (s *server) updateCartItem(c *gin.Context) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, product.HTTPError{Error: "invalid json"})
		return
	}
	s.mutateCart(c, http.StatusOK, func() error { return s.carts.UpdateItem(s.authed(c), c.Param("id"), req.Quantity) })
}

// DELETE /cart/items/:id
func (s *server) removeCartItem(c *gin.Context) {
	s.mutateCart(c, http.StatusOK, func() error { return s.carts.Remove(s.authed(c), c.Param("id")) })
}

// DELETE /cart
func (s *server) clearCart(c *gin.Context) {
	s.mutateCart(c, http.StatusOK, func() error { return s.carts.Clear(s.authed(c)) })
}

// mutateCart runs a cart mutation and answers with the refetched cart.
func (s *server) mutateCart(c *gin.Context, okStatus int, mutate func() error) {
	if err := mutate(); err != nil {
		s.upstreamError(c, err)
		return
	}
	c.JSON(okStatus, viewOf(controllerOf(c).FetchCart(s.authed(c))))
}

// GET /wishlist
func (s *server) getWishlist(c *gin.Context) {
	snap := controllerOf(c).FetchWishlist(s.authed(c))
	status := http.StatusOK
	if snap.Phase == syncstate.Errored && !snap.Loaded {
		status = statusFor(snap.Err)
	}
	c.JSON(status, viewOf(snap))
}

// POST /wishlist/:productId
func (s *server) addWish(c *gin.Context) {
	if err := s.wishes.Add(s.authed(c), c.Param("productId")); err != nil {
		s.upstreamError(c, err)
		return
	}
	c.JSON(http.StatusCreated, viewOf(controllerOf(c).FetchWishlist(s.authed(c))))
}

// DELETE /wishlist/:productId
func (s *server) removeWish(c *gin.Context) {
	if err := s.wishes.Remove(s.authed(c), c.Param("productId")); err != nil {
		s.upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(controllerOf(c).FetchWishlist(s.authed(c))))
}

// GET /orders
func (s *server) getOrders(c *gin.Context) {
	snap := controllerOf(c).FetchOrders(s.authed(c))
	status := http.StatusOK
	if snap.Phase == syncstate.Errored && !snap.Loaded {
		status = statusFor(snap.Err)
	}
	c.JSON(status, viewOf(snap))
}

// GET /orders/:id
func (s *server) getOrder(c *gin.Context) {
	o, err := s.orders.Get(s.authed(c), c.Param("id"))
	if err != nil {
		s.upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// authed returns the request context carrying the caller's bearer token, if any.
func (s *server) authed(c *gin.Context) context.Context {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	tok, ok := strings.CutPrefix(h, "Bearer ")
	if !ok {
		return c.Request.Context()
	}
	return httpx.WithBearer(c.Request.Context(), tok)
}

func (s *server) upstreamError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= 500 {
		_ = c.Error(err)
		s.log.Warn("upstream call failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	msg := err.Error()
	if status == http.StatusBadGateway {
		msg = "upstream unavailable"
	}
	c.JSON(status, product.HTTPError{Error: msg})
}

// statusFor maps collaborator errors to the storefront's response codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity), errors.Is(err, cart.ErrMissingID),
		errors.Is(err, wishlist.ErrMissingProduct), errors.Is(err, order.ErrMissingID):
		return http.StatusBadRequest
	}
	var se *httpx.StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			return se.Code
		}
	}
	return http.StatusBadGateway
}
