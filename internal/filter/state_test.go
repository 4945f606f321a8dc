package filter

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestDefault(t *testing.T) {
	s := Default(0)
	assert.Equal(t, DefaultPageSize, s.PageSize())
	assert.Equal(t, 1, s.Page())
	assert.Equal(t, SortFeatured, s.Sort())
	assert.True(t, s.Price().Equal(DefaultPriceRange()))
	assert.Empty(t, s.Active())
}

func TestApply_ResetsPageUnlessOnlyPageChanges(t *testing.T) {
	s, err := Default(12).WithPage(3)
	require.NoError(t, err)
	require.Equal(t, 3, s.Page())

	for name, c := range map[string]Change{
		"search":   Search("dress"),
		"category": Categories("Women"),
		"size":     Sizes("M"),
		"color":    Colors("Red"),
		"brand":    Brands("Acme"),
		"price":    Price(d("10"), d("20")),
		"sort":     SortBy(SortPriceAsc),
	} {
		next, err := s.Apply(c)
		require.NoError(t, err, name)
		assert.Equal(t, 1, next.Page(), name)
	}

	// a page change combined with a filter change still lands on page 1
	next, err := s.Apply(PageTo(4), Colors("Red"))
	require.NoError(t, err)
	assert.Equal(t, 1, next.Page())

	next, err = s.Apply(PageTo(5))
	require.NoError(t, err)
	assert.Equal(t, 5, next.Page())
}

func TestApply_EmptyIsNoop(t *testing.T) {
	s, _ := Default(12).Apply(Colors("Red"), PageTo(2))
	next, err := s.Apply()
	require.NoError(t, err)
	assert.True(t, next.Equal(s))
}

func TestApply_Idempotent(t *testing.T) {
	changes := []Change{Search("  dress "), Categories("Women", "Women", " "), Price(d("5"), d("50")), SortBy(SortRating)}
	once, err := Default(12).Apply(changes...)
	require.NoError(t, err)
	twice, err := once.Apply(changes...)
	require.NoError(t, err)
	assert.True(t, once.Equal(twice))
	assert.Equal(t, "dress", once.Search())
	assert.Equal(t, []string{"Women"}, once.Categories())
}

func TestApply_RejectsInvalidPriceRange(t *testing.T) {
	s, err := Default(12).Apply(Price(d("10"), d("90")))
	require.NoError(t, err)

	for _, pr := range [][2]string{{"100", "20"}, {"-1", "20"}} {
		next, err := s.Apply(Colors("Red"), Price(d(pr[0]), d(pr[1])))
		assert.ErrorIs(t, err, ErrInvalidPriceRange)
		assert.True(t, next.Equal(s), "state must be untouched on error")
	}

	// min == max is a valid single-price range
	_, err = s.Apply(Price(d("25"), d("25")))
	assert.NoError(t, err)
}

func TestApply_RejectsBadSortAndPage(t *testing.T) {
	s := Default(12)
	_, err := s.WithSort("cheapest")
	assert.ErrorIs(t, err, ErrUnknownSortKey)
	_, err = s.WithPage(0)
	assert.ErrorIs(t, err, ErrInvalidPage)
}

func TestClearAll_KeepsPageSize(t *testing.T) {
	s, err := Default(24).Apply(Colors("Red"), Brands("Acme"), SortBy(SortNameDesc))
	require.NoError(t, err)
	cleared := s.ClearAll()
	assert.True(t, cleared.Equal(Default(24)))
}

func TestState_AccessorsReturnCopies(t *testing.T) {
	s, _ := Default(12).Apply(Colors("Red", "Blue"))
	cs := s.Colors()
	cs[0] = "Green"
	assert.Equal(t, []string{"Red", "Blue"}, s.Colors())
}

func TestActive(t *testing.T) {
	s, err := Default(12).Apply(Search("x"), Sizes("M"), Price(d("0"), d("500")))
	require.NoError(t, err)
	assert.Equal(t, []Dimension{DimSearch, DimSize, DimPrice}, s.Active())
}

func TestParseSortKey(t *testing.T) {
	cases := map[string]SortKey{
		"":               SortFeatured,
		"featured":       SortFeatured,
		"NEWEST":         SortNewest,
		"price-low-high": SortPriceAsc,
		"price-high-low": SortPriceDesc,
		"name-a-z":       SortNameAsc,
		"name-z-a":       SortNameDesc,
		" rating ":       SortRating,
	}
	for in, want := range cases {
		got, err := ParseSortKey(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseSortKey("popular")
	assert.ErrorIs(t, err, ErrUnknownSortKey)
}

func TestChange_Dimension(t *testing.T) {
	dim, ok := Brands("Acme").Dimension()
	assert.True(t, ok)
	assert.Equal(t, DimBrand, dim)
	_, ok = SortBy(SortRating).Dimension()
	assert.False(t, ok)
}

func TestState_MarshalJSON(t *testing.T) {
	s, err := Default(12).Apply(Colors("Red"), Price(d("10"), d("99.5")))
	require.NoError(t, err)
	b, err := json.Marshal(s)
	require.NoError(t, err)

	var v map[string]any
	require.NoError(t, json.Unmarshal(b, &v))
	assert.Equal(t, []any{"Red"}, v["colors"])
	assert.Equal(t, []any{}, v["sizes"])
	assert.Equal(t, "99.5", v["max_price"])
	assert.Equal(t, "featured", v["sort"])
}
