package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MikeMC777/storefront/internal/product"
)

func TestTranslate_Defaults(t *testing.T) {
	v := Translate(Default(12))
	assert.Equal(t, "0", v.Get(ParamMinPrice))
	assert.Equal(t, "1000", v.Get(ParamMaxPrice))
	assert.Equal(t, "1", v.Get(ParamPage))
	assert.Equal(t, "12", v.Get(ParamPageSize))
	assert.False(t, v.Has(ParamSearch))
	assert.False(t, v.Has(ParamCategory))
	assert.False(t, v.Has(ParamOrdering), "featured has no remote ordering")
}

func TestTranslate_NeverSendsLocalOnlyDimensions(t *testing.T) {
	s := mustApply(t,
		Search("dress"),
		Categories("Women", "Kids"),
		Sizes("M"), Colors("Red"), Brands("Acme"),
		Price(d("10.5"), d("99")),
		SortBy(SortNewest),
		PageTo(3),
	)
	v := Translate(s)
	assert.Equal(t, "dress", v.Get(ParamSearch))
	assert.Equal(t, []string{"Women"}, v[ParamCategory], "only the first category is sent")
	assert.Equal(t, "10.5", v.Get(ParamMinPrice))
	assert.Equal(t, "99", v.Get(ParamMaxPrice))
	assert.Equal(t, "-created_at", v.Get(ParamOrdering))
	assert.Equal(t, "1", v.Get(ParamPage))

	allowed := map[string]bool{
		ParamSearch: true, ParamCategory: true, ParamMinPrice: true, ParamMaxPrice: true,
		ParamOrdering: true, ParamPage: true, ParamPageSize: true,
	}
	for k := range v {
		assert.True(t, allowed[k], "unexpected remote parameter %q", k)
	}
}

func TestOrdering_Map(t *testing.T) {
	want := map[SortKey]string{
		SortPriceAsc:  "price",
		SortPriceDesc: "-price",
		SortNewest:    "-created_at",
		SortRating:    "-rating",
		SortNameAsc:   "name",
		SortNameDesc:  "-name",
	}
	for k, o := range want {
		got, ok := Ordering(k)
		assert.True(t, ok, k)
		assert.Equal(t, o, got, k)
	}
	_, ok := Ordering(SortFeatured)
	assert.False(t, ok)
}

// Every dimension is classified, and every dimension the API cannot fully
// apply is part of the local pass.
func TestReach_IsTotal(t *testing.T) {
	for _, dim := range Dimensions {
		r := dim.Reach()
		assert.Contains(t, []Reach{RemoteFull, RemotePartial, LocalOnly}, r, dim.String())
		assert.Equal(t, r != RemoteFull, LocalDims.Has(dim), dim.String())
	}
	assert.True(t, LocalDims.Has(DimCategory))
	assert.False(t, LocalDims.Has(DimSearch))
	assert.False(t, LocalDims.Has(DimPrice))
}

// The local pass after a lossy remote fetch never shows a product the full
// filter would reject.
func TestTranslate_LocalPassNeverWidensRemoteResult(t *testing.T) {
	catalog := []struct {
		id, cat, color string
		price          string
	}{
		{"1", "Women", "Red", "20"},
		{"2", "Kids", "Red", "20"},
		{"3", "Women", "Blue", "20"},
		{"4", "Women", "Red", "900"},
	}
	s := mustApply(t, Categories("Kids", "Women"), Colors("Red"), Price(d("0"), d("100")))

	all := make([]product.Product, 0, len(catalog))
	for _, c := range catalog {
		all = append(all, prod(c.id, c.id, c.price, withCats(c.cat), withColors(c.color)))
	}
	// what a remote honoring category=first and the price range returns
	v := Translate(s)
	remote := all[:0:0]
	for _, p := range all {
		if p.CategoryNames[0] == v.Get(ParamCategory) && s.Price().Contains(p.Price) {
			remote = append(remote, p)
		}
	}
	local := Filter(remote, s, LocalDims)
	full := Filter(all, s, AllDims)

	// the remote side only knows one category, so the local view is a subset
	for _, p := range local {
		assert.Contains(t, idsOf(full), p.ID)
	}
	assert.Equal(t, []string{"2"}, idsOf(local))
	assert.Equal(t, []string{"1", "2"}, idsOf(full))
}
