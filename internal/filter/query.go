package filter

import (
	"net/url"
	"strconv"
)

// Reach says how much of a dimension the catalog API can apply itself.
type Reach int

const (
	// RemoteFull dimensions are applied completely by the catalog API.
	RemoteFull Reach = iota
	// RemotePartial dimensions are sent in reduced form and re-applied locally.
	RemotePartial
	// LocalOnly dimensions have no remote parameter.
	LocalOnly
)

var reach = [...]Reach{
	DimSearch:   RemoteFull,
	DimCategory: RemotePartial, // the API takes a single category
	DimSize:     LocalOnly,
	DimColor:    LocalOnly,
	DimBrand:    LocalOnly,
	DimPrice:    RemoteFull,
}

func (d Dimension) Reach() Reach { return reach[d] }

// LocalDims is the set of dimensions that must be re-applied to every fetched page.
var LocalDims = func() DimSet {
	var s DimSet
	for _, d := range Dimensions {
		if d.Reach() != RemoteFull {
			s |= DimsOf(d)
		}
	}
	return s
}()

// Remote parameter names of the catalog API.
const (
	ParamSearch   = "search"
	ParamCategory = "category"
	ParamMinPrice = "min_price"
	ParamMaxPrice = "max_price"
	ParamOrdering = "ordering"
	ParamPage     = "page"
	ParamPageSize = "page_size"
)

var orderings = map[SortKey]string{
	SortPriceAsc:  "price",
	SortPriceDesc: "-price",
	SortNewest:    "-created_at",
	SortRating:    "-rating",
	SortNameAsc:   "name",
	SortNameDesc:  "-name",
}

// Ordering returns the catalog API ordering for k. ok is false when the API
// has no equivalent, as for SortFeatured.
func Ordering(k SortKey) (string, bool) {
	o, ok := orderings[k]
	return o, ok
}

// Translate maps s to the catalog API query parameters. Sizes, colors and
// brands are never sent and at most one category is.
func Translate(s State) url.Values {
	v := url.Values{}
	if s.search != "" {
		v.Set(ParamSearch, s.search)
	}
	if len(s.categories) > 0 {
		v.Set(ParamCategory, s.categories[0])
	}
	v.Set(ParamMinPrice, s.price.Min.String())
	v.Set(ParamMaxPrice, s.price.Max.String())
	if o, ok := Ordering(s.sort); ok {
		v.Set(ParamOrdering, o)
	}
	v.Set(ParamPage, strconv.Itoa(s.page))
	v.Set(ParamPageSize, strconv.Itoa(s.pageSize))
	return v
}
