package catalog

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/MikeMC777/storefront/internal/cart"
	"github.com/MikeMC777/storefront/internal/filter"
	"github.com/MikeMC777/storefront/internal/order"
	"github.com/MikeMC777/storefront/internal/paging"
	"github.com/MikeMC777/storefront/internal/product"
	"github.com/MikeMC777/storefront/internal/syncstate"
	"github.com/MikeMC777/storefront/internal/wishlist"
)

type CartSource interface {
	Get(ctx context.Context) (cart.Cart, error)
}

type WishlistSource interface {
	Get(ctx context.Context) (wishlist.List, error)
}

type OrderSource interface {
	List(ctx context.Context) (order.History, error)
}

type Settings struct {
	PageSize int
	// Locale drives the collation of name sorts.
	Locale language.Tag
}

// fetched pairs a page with the filter state it was requested for.
type fetched struct {
	page  Page
	state filter.State
}

// Controller owns one session's catalog cache. All mutations go through
// transition; readers only ever get copies via Snapshot.
type Controller struct {
	src      Source
	carts    CartSource
	wishes   WishlistSource
	orders   OrderSource
	log      *zap.Logger
	locale   language.Tag
	pageSize int

	mu           sync.Mutex
	state        filter.State
	seenProducts bool
	options      Options
	optionsErr   error

	products syncstate.Cell[fetched]
	cart     syncstate.Cell[cart.Cart]
	wishlist syncstate.Cell[wishlist.List]
	history  syncstate.Cell[order.History]
}

func NewController(src Source, carts CartSource, wishes WishlistSource, orders OrderSource, log *zap.Logger, s Settings) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	if s.PageSize <= 0 {
		s.PageSize = filter.DefaultPageSize
	}
	return &Controller{
		src:      src,
		carts:    carts,
		wishes:   wishes,
		orders:   orders,
		log:      log,
		locale:   s.Locale,
		pageSize: s.PageSize,
		state:    filter.Default(s.PageSize),
	}
}

// Mount performs the initial fetch for the current state.
func (c *Controller) Mount(ctx context.Context) Snapshot {
	snap, _ := c.transition(ctx, func(s filter.State) (filter.State, error) { return s, nil })
	return snap
}

// Refresh refetches the current state.
func (c *Controller) Refresh(ctx context.Context) Snapshot {
	return c.Mount(ctx)
}

// SetFilters applies the changes and refetches. The only error is a
// rejected change, in which case nothing is fetched.
func (c *Controller) SetFilters(ctx context.Context, changes ...filter.Change) (Snapshot, error) {
	return c.transition(ctx, func(s filter.State) (filter.State, error) { return s.Apply(changes...) })
}

func (c *Controller) SetSort(ctx context.Context, key filter.SortKey) (Snapshot, error) {
	return c.transition(ctx, func(s filter.State) (filter.State, error) { return s.WithSort(key) })
}

// SetPage refuses pages outside [1, totalPages] once the total is known.
func (c *Controller) SetPage(ctx context.Context, n int) (Snapshot, error) {
	totalPages := c.Snapshot().TotalPages
	return c.transition(ctx, func(s filter.State) (filter.State, error) {
		if c.products.Snapshot().Loaded && !paging.CanNavigate(n, totalPages) {
			return s, filter.ErrInvalidPage
		}
		return s.WithPage(n)
	})
}

func (c *Controller) ClearFilters(ctx context.Context) Snapshot {
	snap, _ := c.transition(ctx, func(s filter.State) (filter.State, error) { return s.ClearAll(), nil })
	return snap
}

// State returns the current filter state, which may be ahead of the
// displayed products while a fetch is in flight.
func (c *Controller) State() filter.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// transition is the single mutation path: it swaps the filter state and
// issues the request under one lock so sequence numbers follow state order.
// Fetch failures are logged and kept in the snapshot, never returned.
func (c *Controller) transition(ctx context.Context, mutate func(filter.State) (filter.State, error)) (Snapshot, error) {
	c.mu.Lock()
	next, err := mutate(c.state)
	if err != nil {
		c.mu.Unlock()
		return c.Snapshot(), err
	}
	c.state = next
	fctx, seq := c.products.Begin(ctx)
	c.mu.Unlock()

	params := filter.Translate(next)
	page, err := c.src.ListProducts(fctx, params)
	applied := c.products.Resolve(seq, fetched{page: page, state: next}, err)
	switch {
	case !applied:
		c.log.Debug("catalog: stale response discarded", zap.Uint64("seq", seq), zap.Error(err))
	case err != nil:
		c.log.Warn("catalog: fetch failed, keeping previous products",
			zap.Uint64("seq", seq), zap.String("query", params.Encode()), zap.Error(err))
	default:
		if len(page.Products) > 0 {
			c.mu.Lock()
			c.seenProducts = true
			c.mu.Unlock()
		}
		c.log.Debug("catalog: products replaced",
			zap.Uint64("seq", seq), zap.Int("count", page.Count), zap.Int("received", len(page.Products)))
	}
	return c.Snapshot(), nil
}

// Snapshot is the read model handed to the UI layer.
type Snapshot struct {
	Products   []product.Product `json:"products"`
	TotalCount int               `json:"total_count"`
	TotalPages int               `json:"total_pages"`
	Pages      []int             `json:"pages"`
	IsLoading  bool              `json:"is_loading"`
	Phase      syncstate.Phase   `json:"phase"`
	Filters    filter.State      `json:"filters"`
	Sort       filter.SortKey    `json:"sort"`
	Page       int               `json:"page"`
	Active     []string          `json:"active_filters"`
	// Error is only surfaced while no product has ever been shown.
	Error          string `json:"error,omitempty"`
	ShowEmptyState bool   `json:"show_empty_state"`
}

// Snapshot derives the visible page: the last good fetch, narrowed by every
// dimension the API could not fully apply, sorted, then sliced when the API
// returned more than one page worth of products. Page and Pages describe the
// listed products; Filters and Sort may already be ahead of them while a
// fetch is in flight.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	state := c.state
	seen := c.seenProducts
	c.mu.Unlock()

	cell := c.products.Snapshot()
	shownState := state
	if cell.Loaded {
		shownState = cell.Value.state
	}

	list := filter.OrderIn(filter.Filter(cell.Value.page.Products, shownState, filter.LocalDims), shownState.Sort(), c.locale)
	total := cell.Value.page.Count
	if len(cell.Value.page.Products) > shownState.PageSize() {
		// the API ignored page_size: paginate the narrowed list ourselves
		total = len(list)
		list = paging.Visible(list, paging.Slice(total, shownState.Page(), shownState.PageSize()))
	}
	totalPages := paging.TotalPages(total, shownState.PageSize())

	active := make([]string, 0)
	for _, d := range state.Active() {
		active = append(active, d.String())
	}

	snap := Snapshot{
		Products:   list,
		TotalCount: total,
		TotalPages: totalPages,
		Pages:      paging.Numbers(shownState.Page(), totalPages),
		IsLoading:  cell.IsLoading(),
		Phase:      cell.Phase,
		Filters:    state,
		Sort:       state.Sort(),
		Page:       shownState.Page(),
		Active:     active,
	}
	if cell.Phase == syncstate.Errored && !seen && cell.Err != nil {
		snap.Error = errorMessage(cell.Err)
	}
	snap.ShowEmptyState = len(list) == 0 && (cell.Phase == syncstate.Populated || cell.Phase == syncstate.Errored)
	return snap
}

// Discounted is a product with a valid compare price.
type Discounted struct {
	product.Product
	DiscountPercent int64 `json:"discount_percent"`
}

// Clearance lists the displayed products that carry a valid discount. A
// compare price at or below the price is not a discount; nothing is
// synthesized when no product qualifies.
func (c *Controller) Clearance() []Discounted {
	cell := c.products.Snapshot()
	st := cell.Value.state
	list := filter.OrderIn(filter.Filter(cell.Value.page.Products, st, filter.LocalDims), st.Sort(), c.locale)
	out := []Discounted{}
	for _, p := range list {
		if pct, ok := p.Discount(); ok {
			out = append(out, Discounted{Product: p, DiscountPercent: pct})
		}
	}
	return out
}

// LoadOptions fetches the filter option lists. On failure the previous lists stay.
func (c *Controller) LoadOptions(ctx context.Context) Options {
	opts, err := LoadOptions(ctx, c.src)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.log.Warn("catalog: loading filter options failed", zap.Error(err))
		c.optionsErr = err
		return c.options
	}
	c.options, c.optionsErr = opts, nil
	return opts
}

// FetchCart refreshes the session cart. Errors are logged and kept in the snapshot.
func (c *Controller) FetchCart(ctx context.Context) syncstate.Snapshot[cart.Cart] {
	if c.carts == nil {
		return c.cart.Snapshot()
	}
	if applied, err := c.cart.Run(ctx, c.carts.Get); applied && err != nil {
		c.log.Warn("cart: fetch failed", zap.Error(err))
	}
	return c.cart.Snapshot()
}

// FetchWishlist refreshes the session wishlist. Errors are logged and kept in the snapshot.
func (c *Controller) FetchWishlist(ctx context.Context) syncstate.Snapshot[wishlist.List] {
	if c.wishes == nil {
		return c.wishlist.Snapshot()
	}
	if applied, err := c.wishlist.Run(ctx, c.wishes.Get); applied && err != nil {
		c.log.Warn("wishlist: fetch failed", zap.Error(err))
	}
	return c.wishlist.Snapshot()
}

// FetchOrders refreshes the session's order history.
func (c *Controller) FetchOrders(ctx context.Context) syncstate.Snapshot[order.History] {
	if c.orders == nil {
		return c.history.Snapshot()
	}
	if applied, err := c.history.Run(ctx, c.orders.List); applied && err != nil {
		c.log.Warn("orders: fetch failed", zap.Error(err))
	}
	return c.history.Snapshot()
}

func errorMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "catalog timed out"
	}
	return "catalog unavailable"
}
