package filter

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/MikeMC777/storefront/internal/product"
)

// DimSet is a set of filter dimensions.
type DimSet uint8

// AllDims selects every dimension.
const AllDims DimSet = 1<<DimSearch | 1<<DimCategory | 1<<DimSize | 1<<DimColor | 1<<DimBrand | 1<<DimPrice

func DimsOf(dims ...Dimension) DimSet {
	var s DimSet
	for _, d := range dims {
		s |= 1 << d
	}
	return s
}

func (s DimSet) Has(d Dimension) bool { return s&(1<<d) != 0 }

// matcher holds the lower-cased selections of a State so a product list is
// scanned without re-normalizing the filter for every record.
type matcher struct {
	dims       DimSet
	search     string
	categories []string
	sizes      []string
	colors     []string
	brands     []string
	price      PriceRange
}

func newMatcher(s State, dims DimSet) matcher {
	return matcher{
		dims:       dims,
		search:     strings.ToLower(s.search),
		categories: s.categories,
		sizes:      s.sizes,
		colors:     lowerAll(s.colors),
		brands:     lowerAll(s.brands),
		price:      s.price,
	}
}

func (m matcher) match(p product.Product) bool {
	if m.dims.Has(DimSearch) && m.search != "" && !m.matchSearch(p) {
		return false
	}
	if m.dims.Has(DimCategory) && len(m.categories) > 0 && !m.matchCategory(p) {
		return false
	}
	if m.dims.Has(DimSize) && len(m.sizes) > 0 && !intersects(p.SizeNames, m.sizes) {
		return false
	}
	if m.dims.Has(DimColor) && len(m.colors) > 0 && !m.matchColor(p) {
		return false
	}
	if m.dims.Has(DimBrand) && len(m.brands) > 0 && !slices.Contains(m.brands, strings.ToLower(strings.TrimSpace(p.Brand))) {
		return false
	}
	if m.dims.Has(DimPrice) && !m.price.Contains(p.Price) {
		return false
	}
	return true
}

func (m matcher) matchSearch(p product.Product) bool {
	if containsLower(p.Name, m.search) || containsLower(p.Brand, m.search) || containsLower(p.Description, m.search) {
		return true
	}
	for _, t := range p.Tags {
		if containsLower(t, m.search) {
			return true
		}
	}
	return false
}

// colors compare exactly after trimming and case folding; "Re" does not match "Red".
func (m matcher) matchColor(p product.Product) bool {
	for _, c := range p.ColorNames {
		if slices.Contains(m.colors, strings.ToLower(strings.TrimSpace(c))) {
			return true
		}
	}
	return false
}

// Match reports whether p passes every dimension of s selected by dims.
func Match(p product.Product, s State, dims DimSet) bool {
	return newMatcher(s, dims).match(p)
}

// Filter returns the products passing s on the given dimensions, in input
// order. The input slice is never modified.
func Filter(products []product.Product, s State, dims DimSet) []product.Product {
	m := newMatcher(s, dims)
	out := make([]product.Product, 0, len(products))
	for _, p := range products {
		if m.match(p) {
			out = append(out, p)
		}
	}
	return out
}

// Order returns a stably sorted copy of products. Names are compared with
// the root collation.
func Order(products []product.Product, key SortKey) []product.Product {
	return OrderIn(products, key, language.Und)
}

// OrderIn is Order with name comparisons collated for the given locale.
func OrderIn(products []product.Product, key SortKey, locale language.Tag) []product.Product {
	out := slices.Clone(products)
	if out == nil {
		out = []product.Product{}
	}
	var less func(a, b product.Product) int
	switch key {
	case SortFeatured, SortRating:
		// featured uses rating as its proxy, the featured flag is not consulted
		less = func(a, b product.Product) int { return cmp.Compare(b.Rating, a.Rating) }
	case SortNewest:
		less = func(a, b product.Product) int {
			switch {
			case a.IsNew == b.IsNew:
				return 0
			case a.IsNew:
				return -1
			default:
				return 1
			}
		}
	case SortPriceAsc:
		less = func(a, b product.Product) int { return a.Price.Cmp(b.Price) }
	case SortPriceDesc:
		less = func(a, b product.Product) int { return b.Price.Cmp(a.Price) }
	case SortNameAsc, SortNameDesc:
		// collators are not safe for concurrent use
		col := collate.New(locale)
		if key == SortNameAsc {
			less = func(a, b product.Product) int { return col.CompareString(a.Name, b.Name) }
		} else {
			less = func(a, b product.Product) int { return col.CompareString(b.Name, a.Name) }
		}
	default:
		return out
	}
	slices.SortStableFunc(out, less)
	return out
}

// Apply filters on every dimension of s and sorts by its sort key.
func Apply(products []product.Product, s State) []product.Product {
	return Order(Filter(products, s, AllDims), s.sort)
}

// matchCategory accepts the primary category as well as the category list,
// the same way the catalog matches the category parameter.
func (m matcher) matchCategory(p product.Product) bool {
	return slices.Contains(m.categories, p.Category) || intersects(p.CategoryNames, m.categories)
}

func intersects(have, want []string) bool {
	for _, h := range have {
		if slices.Contains(want, h) {
			return true
		}
	}
	return false
}

func containsLower(s, lowerSub string) bool {
	return strings.Contains(strings.ToLower(s), lowerSub)
}

func lowerAll(v []string) []string {
	out := make([]string, len(v))
	for i, s := range v {
		out[i] = strings.ToLower(strings.TrimSpace(s))
	}
	return out
}
