// File: internal/product/repo.go
// Package product provides the catalog record type and the PostgreSQL repository
// that answers the catalog API vocabulary.
package product

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("product not found")
)

// Query is the catalog API's own filter vocabulary: a single category,
// a single ordering key and server-side pagination.
type Query struct {
	Search   string
	Category string
	MinPrice decimal.Decimal
	MaxPrice decimal.Decimal
	Ordering string
	Page     int
	PageSize int
}

// Normalize applies the API defaults and bounds.
func (q Query) Normalize() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = 12
	}
	if q.PageSize > 200 {
		q.PageSize = 200
	}
	q.Search = strings.TrimSpace(q.Search)
	q.Category = strings.TrimSpace(q.Category)
	return q
}

// Offset is the zero-based row offset of the page.
func (q Query) Offset() int { return (q.Page - 1) * q.PageSize }

// orderings maps the API ordering keys to SQL. Anything else falls back to newest first.
var orderings = map[string]string{
	"price":       "price ASC",
	"-price":      "price DESC",
	"created_at":  "created_at ASC",
	"-created_at": "created_at DESC",
	"rating":      "rating ASC",
	"-rating":     "rating DESC",
	"name":        "name ASC",
	"-name":       "name DESC",
}

func orderClause(ordering string) string {
	if o, ok := orderings[strings.TrimSpace(ordering)]; ok {
		return o + ", id"
	}
	return "created_at DESC, id"
}

type Repository interface {
	List(ctx context.Context, q Query) ([]Product, int, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	Options(ctx context.Context, kind OptionKind) ([]Option, error)
}

// OptionKind names an option table of the catalog.
type OptionKind string

const (
	OptionCategories OptionKind = "categories"
	OptionBrands     OptionKind = "brands"
	OptionColors     OptionKind = "colors"
	OptionSizes      OptionKind = "sizes"
)

// Valid reports whether k is one of the known option tables.
func (k OptionKind) Valid() bool {
	switch k {
	case OptionCategories, OptionBrands, OptionColors, OptionSizes:
		return true
	}
	return false
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const productColumns = `
	id, name, brand, COALESCE(description, ''), price::text, COALESCE(compare_price::text, ''),
	COALESCE(category, ''), COALESCE(subcategory, ''),
	COALESCE(category_names, '{}'), COALESCE(color_names, '{}'), COALESCE(size_names, '{}'),
	COALESCE(tags, '{}'), COALESCE(image, ''), COALESCE(images, '{}'),
	is_new, is_featured, rating, review_count, stock, created_at`

const productFilter = `
	WHERE ($1 = '' OR name ILIKE $1 ESCAPE '\' OR brand ILIKE $1 ESCAPE '\'
	       OR description ILIKE $1 ESCAPE '\'
	       OR EXISTS (SELECT 1 FROM unnest(tags) t WHERE t ILIKE $1 ESCAPE '\'))
	  AND ($2 = '' OR category = $2 OR $2 = ANY(category_names))
	  AND price >= $3::numeric AND price <= $4::numeric`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns a search term into an ILIKE substring pattern that
// matches % and _ literally. An empty term stays empty.
func containsPattern(term string) string {
	if term == "" {
		return ""
	}
	return "%" + likeEscaper.Replace(term) + "%"
}

func (r *PGRepo) List(ctx context.Context, q Query) ([]Product, int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	q = q.Normalize()
	args := []any{containsPattern(q.Search), q.Category, q.MinPrice.String(), q.MaxPrice.String()}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM products`+productFilter, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, `SELECT `+productColumns+` FROM products`+productFilter+`
		ORDER BY `+orderClause(q.Ordering)+`
		LIMIT $5 OFFSET $6`, append(args, q.PageSize, q.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]Product, 0, q.PageSize)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p, err := scanProduct(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PGRepo) Options(ctx context.Context, kind OptionKind) ([]Option, error) {
	if !kind.Valid() {
		return nil, errors.New("unknown option kind")
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// kind is whitelisted above
	rows, err := r.db.Query(ctx, `SELECT id::text, name FROM `+string(kind)+` ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Option{}
	for rows.Next() {
		var o Option
		if err := rows.Scan(&o.ID, &o.Name); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func scanProduct(row pgx.Row) (Product, error) {
	var (
		p              Product
		price, compare string
	)
	err := row.Scan(&p.ID, &p.Name, &p.Brand, &p.Description, &price, &compare,
		&p.Category, &p.Subcategory,
		&p.CategoryNames, &p.ColorNames, &p.SizeNames,
		&p.Tags, &p.Image, &p.Images,
		&p.IsNew, &p.IsFeatured, &p.Rating, &p.ReviewCount, &p.Stock, &p.CreatedAt)
	if err != nil {
		return Product{}, err
	}
	p.Price = toDecimal(price)
	p.ComparePrice = toDecimal(compare)
	return p, nil
}
