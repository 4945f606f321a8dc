package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	prod "github.com/MikeMC777/storefront/internal/product"
)

// maxPriceUnbounded stands in for an absent max_price.
var maxPriceUnbounded = decimal.NewFromInt(1_000_000_000)

// GET /products?search=&category=&min_price=&max_price=&ordering=&page=&page_size=
func listProductsHandler(repo prod.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := prod.Query{
			Search:   c.Query("search"),
			Category: c.Query("category"),
			Ordering: c.Query("ordering"),
			MinPrice: decimal.Zero,
			MaxPrice: maxPriceUnbounded,
		}
		var err error
		if q.MinPrice, err = decimalParam(c, "min_price", q.MinPrice); err != nil {
			c.JSON(http.StatusBadRequest, prod.HTTPError{Error: "min_price must be a number"})
			return
		}
		if q.MaxPrice, err = decimalParam(c, "max_price", q.MaxPrice); err != nil {
			c.JSON(http.StatusBadRequest, prod.HTTPError{Error: "max_price must be a number"})
			return
		}
		if q.MinPrice.IsNegative() || q.MinPrice.GreaterThan(q.MaxPrice) {
			c.JSON(http.StatusBadRequest, prod.HTTPError{Error: "min_price must be between 0 and max_price"})
			return
		}
		if q.Page, err = intParam(c, "page", 1); err != nil || q.Page < 1 {
			c.JSON(http.StatusBadRequest, prod.HTTPError{Error: "page must be a positive integer"})
			return
		}
		if q.PageSize, err = intParam(c, "page_size", 12); err != nil || q.PageSize < 1 {
			c.JSON(http.StatusBadRequest, prod.HTTPError{Error: "page_size must be a positive integer"})
			return
		}

		items, total, err := repo.List(c.Request.Context(), q)
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, prod.HTTPError{Error: "list failed"})
			return
		}
		if items == nil {
			items = []prod.Product{}
		}
		c.JSON(http.StatusOK, prod.ListResponse{Count: total, Results: items})
	}
}

// GET /products/:id
func getProductHandler(repo prod.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, prod.ErrNotFound) {
				c.JSON(http.StatusNotFound, prod.HTTPError{Error: "not found"})
				return
			}
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, prod.HTTPError{Error: "get failed"})
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// GET /categories, /brands, /colors, /sizes
func optionsHandler(repo prod.Repository, kind prod.OptionKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		opts, err := repo.Options(c.Request.Context(), kind)
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, prod.HTTPError{Error: "options failed"})
			return
		}
		c.JSON(http.StatusOK, opts)
	}
}

func decimalParam(c *gin.Context, key string, def decimal.Decimal) (decimal.Decimal, error) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return def, nil
	}
	return decimal.NewFromString(v)
}

func intParam(c *gin.Context, key string, def int) (int, error) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
