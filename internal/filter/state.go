// Package filter holds the storefront's filter state, the local predicate
// engine and the translation of a filter state into the catalog API's
// query vocabulary.
package filter

import (
	"encoding/json"
	"errors"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidPriceRange = errors.New("price range must satisfy 0 <= min <= max")
	ErrInvalidPage       = errors.New("page must be >= 1")
	ErrUnknownSortKey    = errors.New("unknown sort key")
)

const DefaultPageSize = 12

// Dimension is one independently toggleable facet of product selection.
type Dimension int

const (
	DimSearch Dimension = iota
	DimCategory
	DimSize
	DimColor
	DimBrand
	DimPrice
)

var dimensionNames = [...]string{
	DimSearch:   "search",
	DimCategory: "category",
	DimSize:     "size",
	DimColor:    "color",
	DimBrand:    "brand",
	DimPrice:    "price",
}

// Dimensions lists every filter dimension in a fixed order.
var Dimensions = []Dimension{DimSearch, DimCategory, DimSize, DimColor, DimBrand, DimPrice}

func (d Dimension) String() string {
	if d < 0 || int(d) >= len(dimensionNames) {
		return "unknown"
	}
	return dimensionNames[d]
}

// SortKey selects the ordering of the product list.
type SortKey string

const (
	SortFeatured  SortKey = "featured"
	SortNewest    SortKey = "newest"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortRating    SortKey = "rating"
	SortNameAsc   SortKey = "name_asc"
	SortNameDesc  SortKey = "name_desc"
)

var sortAliases = map[string]SortKey{
	"price-low-high": SortPriceAsc,
	"price-high-low": SortPriceDesc,
	"name-a-z":       SortNameAsc,
	"name-z-a":       SortNameDesc,
}

// Valid reports whether k is a known sort key.
func (k SortKey) Valid() bool {
	switch k {
	case SortFeatured, SortNewest, SortPriceAsc, SortPriceDesc, SortRating, SortNameAsc, SortNameDesc:
		return true
	}
	return false
}

// ParseSortKey accepts the canonical keys and the storefront's legacy
// dash-separated aliases. An empty string selects SortFeatured.
func ParseSortKey(s string) (SortKey, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SortFeatured, nil
	}
	if k := SortKey(s); k.Valid() {
		return k, nil
	}
	if k, ok := sortAliases[s]; ok {
		return k, nil
	}
	return "", ErrUnknownSortKey
}

// PriceRange is an inclusive [Min, Max] interval.
type PriceRange struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// DefaultPriceRange is the unconstrained storefront range (0, 1000).
func DefaultPriceRange() PriceRange {
	return PriceRange{Min: decimal.Zero, Max: decimal.NewFromInt(1000)}
}

func (r PriceRange) Valid() bool {
	return !r.Min.IsNegative() && r.Min.LessThanOrEqual(r.Max)
}

func (r PriceRange) Contains(p decimal.Decimal) bool {
	return r.Min.LessThanOrEqual(p) && p.LessThanOrEqual(r.Max)
}

func (r PriceRange) Equal(o PriceRange) bool {
	return r.Min.Equal(o.Min) && r.Max.Equal(o.Max)
}

// State is an immutable filter/sort/pagination selection. The zero value is
// not usable; build one with Default.
type State struct {
	categories []string
	sizes      []string
	colors     []string
	brands     []string
	price      PriceRange
	search     string
	sort       SortKey
	page       int
	pageSize   int
}

// Default returns the unfiltered state for a view with the given page size.
func Default(pageSize int) State {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return State{
		price:    DefaultPriceRange(),
		sort:     SortFeatured,
		page:     1,
		pageSize: pageSize,
	}
}

func (s State) Categories() []string { return slices.Clone(s.categories) }
func (s State) Sizes() []string      { return slices.Clone(s.sizes) }
func (s State) Colors() []string     { return slices.Clone(s.colors) }
func (s State) Brands() []string     { return slices.Clone(s.brands) }
func (s State) Price() PriceRange    { return s.price }
func (s State) Search() string       { return s.search }
func (s State) Sort() SortKey        { return s.sort }
func (s State) Page() int            { return s.page }
func (s State) PageSize() int        { return s.pageSize }

// ClearAll drops every filter, the sort and the page, keeping the page size.
func (s State) ClearAll() State {
	return Default(s.pageSize)
}

// WithSort is Apply(SortBy(k)).
func (s State) WithSort(k SortKey) (State, error) {
	return s.Apply(SortBy(k))
}

// WithPage is Apply(PageTo(n)).
func (s State) WithPage(n int) (State, error) {
	return s.Apply(PageTo(n))
}

// Apply merges the changes over s and returns the new state. Unless every
// change is a page change, the result starts again at page 1. On error s is
// returned untouched.
func (s State) Apply(changes ...Change) (State, error) {
	if len(changes) == 0 {
		return s, nil
	}
	next := s
	onlyPage := true
	for _, c := range changes {
		if c.kind != changePage {
			onlyPage = false
		}
		switch c.kind {
		case changePage:
			if c.page < 1 {
				return s, ErrInvalidPage
			}
			next.page = c.page
		case changeSort:
			if !c.sort.Valid() {
				return s, ErrUnknownSortKey
			}
			next.sort = c.sort
		case changeDimension:
			switch c.dim {
			case DimSearch:
				next.search = c.text
			case DimCategory:
				next.categories = c.values
			case DimSize:
				next.sizes = c.values
			case DimColor:
				next.colors = c.values
			case DimBrand:
				next.brands = c.values
			case DimPrice:
				if !c.price.Valid() {
					return s, ErrInvalidPriceRange
				}
				next.price = c.price
			}
		}
	}
	if !onlyPage {
		next.page = 1
	}
	return next, nil
}

// Active lists the dimensions whose selection differs from the default.
func (s State) Active() []Dimension {
	var out []Dimension
	for _, d := range Dimensions {
		if s.constrains(d) {
			out = append(out, d)
		}
	}
	return out
}

func (s State) constrains(d Dimension) bool {
	switch d {
	case DimSearch:
		return s.search != ""
	case DimCategory:
		return len(s.categories) > 0
	case DimSize:
		return len(s.sizes) > 0
	case DimColor:
		return len(s.colors) > 0
	case DimBrand:
		return len(s.brands) > 0
	case DimPrice:
		return !s.price.Equal(DefaultPriceRange())
	}
	return false
}

// Equal compares two states structurally.
func (s State) Equal(o State) bool {
	return slices.Equal(s.categories, o.categories) &&
		slices.Equal(s.sizes, o.sizes) &&
		slices.Equal(s.colors, o.colors) &&
		slices.Equal(s.brands, o.brands) &&
		s.price.Equal(o.price) &&
		s.search == o.search &&
		s.sort == o.sort &&
		s.page == o.page &&
		s.pageSize == o.pageSize
}

// View is the JSON shape of a State.
type View struct {
	Search     string          `json:"search"`
	Categories []string        `json:"categories"`
	Sizes      []string        `json:"sizes"`
	Colors     []string        `json:"colors"`
	Brands     []string        `json:"brands"`
	MinPrice   decimal.Decimal `json:"min_price"`
	MaxPrice   decimal.Decimal `json:"max_price"`
	Sort       SortKey         `json:"sort"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
}

func (s State) View() View {
	return View{
		Search:     s.search,
		Categories: nonNil(s.categories),
		Sizes:      nonNil(s.sizes),
		Colors:     nonNil(s.colors),
		Brands:     nonNil(s.brands),
		MinPrice:   s.price.Min,
		MaxPrice:   s.price.Max,
		Sort:       s.sort,
		Page:       s.page,
		PageSize:   s.pageSize,
	}
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.View())
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return slices.Clone(v)
}

type changeKind int

const (
	changeDimension changeKind = iota
	changeSort
	changePage
)

// Change is one typed field update of a State. Build it with Search,
// Categories, Sizes, Colors, Brands, Price, SortBy or PageTo.
type Change struct {
	kind   changeKind
	dim    Dimension
	values []string
	text   string
	price  PriceRange
	sort   SortKey
	page   int
}

// Dimension reports which filter dimension c touches. ok is false for sort
// and page changes.
func (c Change) Dimension() (d Dimension, ok bool) {
	return c.dim, c.kind == changeDimension
}

func Search(q string) Change {
	return Change{kind: changeDimension, dim: DimSearch, text: strings.TrimSpace(q)}
}

func Categories(names ...string) Change {
	return Change{kind: changeDimension, dim: DimCategory, values: selection(names)}
}

func Sizes(names ...string) Change {
	return Change{kind: changeDimension, dim: DimSize, values: selection(names)}
}

func Colors(names ...string) Change {
	return Change{kind: changeDimension, dim: DimColor, values: selection(names)}
}

func Brands(names ...string) Change {
	return Change{kind: changeDimension, dim: DimBrand, values: selection(names)}
}

func Price(min, max decimal.Decimal) Change {
	return Change{kind: changeDimension, dim: DimPrice, price: PriceRange{Min: min, Max: max}}
}

func SortBy(k SortKey) Change {
	return Change{kind: changeSort, sort: k}
}

func PageTo(n int) Change {
	return Change{kind: changePage, page: n}
}

// selection trims, drops blanks and de-duplicates while keeping first-seen order.
func selection(names []string) []string {
	var out []string
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || slices.Contains(out, n) {
			continue
		}
		out = append(out, n)
	}
	return out
}
