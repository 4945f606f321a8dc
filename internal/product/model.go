package product

import (
	"encoding/json"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Product is a catalog record as served by the catalog API.
// Records are values: filtering and sorting always produce new slices.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Brand       string `json:"brand"`
	Description string `json:"description,omitempty"`
	// Prices travel as decimal strings to avoid rounding errors (NUMERIC in Postgres)
	Price decimal.Decimal `json:"price"`
	// Zero when the catalog has no "was" price for the product
	ComparePrice  decimal.Decimal `json:"compare_price"`
	Category      string          `json:"category"`
	Subcategory   string          `json:"subcategory"`
	CategoryNames []string        `json:"category_names"`
	ColorNames    []string        `json:"color_names"`
	SizeNames     []string        `json:"size_names"`
	Tags          []string        `json:"tags"`
	Image         string          `json:"image"`
	Images        []string        `json:"images"`
	IsNew         bool            `json:"is_new"`
	IsFeatured    bool            `json:"is_featured"`
	Rating        float64         `json:"rating"`
	ReviewCount   int             `json:"review_count"`
	Stock         int             `json:"stock"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Option is one selectable value of a filter dimension (category, brand, color, size).
type Option struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// HTTPError represents a standard error in JSON.
// swagger:model
type HTTPError struct {
	// Error message
	// example: not found
	Error string `json:"error"`
}

// ListResponse is the paginated product page of the catalog API.
// swagger:model
type ListResponse struct {
	// total items matching the query, across all pages
	Count int `json:"count"`
	// items of the requested page
	Results []Product `json:"results"`
}

// UnmarshalJSON accepts partial and loosely typed records. Missing fields
// fall back to zero values and empty slices, prices may be strings or
// numbers, and out-of-range numbers are clamped.
func (p *Product) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*p = FromMap(raw)
	return nil
}

// FromMap builds a well-formed Product from a decoded JSON object.
func FromMap(raw map[string]any) Product {
	p := Product{
		ID:            cast.ToString(raw["id"]),
		Name:          cast.ToString(raw["name"]),
		Brand:         firstString(raw, "brand", "brand_name"),
		Description:   cast.ToString(raw["description"]),
		Price:         nonNegative(toDecimal(raw["price"])),
		ComparePrice:  nonNegative(toDecimal(raw["compare_price"])),
		Category:      cast.ToString(raw["category"]),
		Subcategory:   cast.ToString(raw["subcategory"]),
		CategoryNames: stringList(raw, "category_names"),
		ColorNames:    stringList(raw, "color_names", "colors"),
		SizeNames:     stringList(raw, "size_names", "sizes"),
		Tags:          stringList(raw, "tags"),
		Image:         cast.ToString(raw["image"]),
		Images:        stringList(raw, "images"),
		IsNew:         cast.ToBool(raw["is_new"]),
		IsFeatured:    cast.ToBool(raw["is_featured"]),
		Rating:        clamp(cast.ToFloat64(raw["rating"]), 0, 5),
		ReviewCount:   max(cast.ToInt(raw["review_count"]), 0),
		Stock:         max(cast.ToInt(raw["stock"]), 0),
	}
	if ts := cast.ToString(raw["created_at"]); ts != "" {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			p.CreatedAt = t
		}
	}
	// the catalog matches a category against the primary one too
	if p.Category != "" && !slices.Contains(p.CategoryNames, p.Category) {
		p.CategoryNames = append([]string{p.Category}, p.CategoryNames...)
	}
	if p.Image == "" && len(p.Images) > 0 {
		p.Image = p.Images[0]
	}
	return p
}

// UnmarshalJSON accepts numeric or string ids.
func (o *Option) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	o.ID = cast.ToString(raw["id"])
	o.Name = strings.TrimSpace(cast.ToString(raw["name"]))
	return nil
}

// Discount returns the rounded percentage off the compare price. ok is false
// when there is no valid "was" price, including a compare price at or below
// the current price.
func (p Product) Discount() (percent int64, ok bool) {
	if !p.ComparePrice.IsPositive() || !p.ComparePrice.GreaterThan(p.Price) {
		return 0, false
	}
	off := p.ComparePrice.Sub(p.Price).Div(p.ComparePrice).Mul(decimal.NewFromInt(100))
	return off.Round(0).IntPart(), true
}

// OnClearance reports whether the product carries a valid discount.
func (p Product) OnClearance() bool {
	_, ok := p.Discount()
	return ok
}

func toDecimal(v any) decimal.Decimal {
	switch t := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return t
	case float64:
		return decimal.NewFromFloat(t)
	}
	d, err := decimal.NewFromString(strings.TrimSpace(cast.ToString(v)))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func firstString(raw map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := strings.TrimSpace(cast.ToString(raw[k])); s != "" {
			return s
		}
	}
	return ""
}

// stringList reads the first present key as a list of strings. Entries may be
// plain strings or option objects carrying a "name".
func stringList(raw map[string]any, keys ...string) []string {
	for _, k := range keys {
		items, ok := raw[k].([]any)
		if !ok || len(items) == 0 {
			continue
		}
		out := make([]string, 0, len(items))
		for _, it := range items {
			var s string
			if m, ok := it.(map[string]any); ok {
				s = cast.ToString(m["name"])
			} else {
				s = cast.ToString(it)
			}
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return []string{}
}
