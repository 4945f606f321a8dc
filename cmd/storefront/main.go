package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/MikeMC777/storefront/internal/cart"
	"github.com/MikeMC777/storefront/internal/catalog"
	"github.com/MikeMC777/storefront/internal/config"
	"github.com/MikeMC777/storefront/internal/httpx"
	"github.com/MikeMC777/storefront/internal/logging"
	"github.com/MikeMC777/storefront/internal/order"
	"github.com/MikeMC777/storefront/internal/wishlist"
)

func main() {
	cfg := config.Load()
	log, err := logging.New(logging.Options{Mode: cfg.LogMode, File: cfg.LogFile})
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()
	cfg.Log(log)

	if cfg.LogMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := newServer(cfg, log)
	r := newRouter(srv)

	// idle sessions are swept in the background until shutdown
	stop := make(chan struct{})
	go func() {
		t := time.NewTicker(time.Minute)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				if n := srv.sessions.sweep(); n > 0 {
					log.Debug("sessions evicted", zap.Int("count", n))
				}
			case <-stop:
				return
			}
		}
	}()

	hs := &http.Server{
		Addr:              cfg.StorefrontAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.HTTPTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		log.Info("storefront listening", zap.String("addr", cfg.StorefrontAddr))
		if err := hs.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	close(stop)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := hs.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
}

func newServer(cfg config.Config, log *zap.Logger) *server {
	catalogAPI := catalog.NewClient(httpx.NewClient(cfg.CatalogBaseURL, cfg.HTTPTimeout))
	account := httpx.NewClient(cfg.AccountBaseURL, cfg.HTTPTimeout)
	carts := cart.NewClient(account)
	wishes := wishlist.NewClient(account)
	orders := order.NewClient(account)

	settings := catalog.Settings{PageSize: cfg.PageSize, Locale: language.Make(cfg.Locale)}
	return &server{
		log:     log,
		catalog: catalogAPI,
		carts:   carts,
		wishes:  wishes,
		orders:  orders,
		sessions: newSessions(cfg.SessionIdleTimeout, func() *catalog.Controller {
			return catalog.NewController(catalogAPI, carts, wishes, orders, log, settings)
		}),
	}
}

func newRouter(s *server) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger(s.log))

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/products/:id", s.getProduct)

	g := r.Group("/", s.sessions.Session())
	g.GET("/products", s.getProducts)
	g.POST("/filters", s.setFilters)
	g.DELETE("/filters", s.clearFilters)
	g.GET("/filters/options", s.filterOptions)
	g.PUT("/sort", s.setSort)
	g.PUT("/page", s.setPage)
	g.GET("/clearance", s.clearance)

	g.GET("/cart", s.getCart)
	g.POST("/cart/items", s.addCartItem)
	g.PATCH("/cart/items/:id", s.updateCartItem)
	g.DELETE("/cart/items/:id", s.removeCartItem)
	g.DELETE("/cart", s.clearCart)

	g.GET("/wishlist", s.getWishlist)
	g.POST("/wishlist/:productId", s.addWish)
	g.DELETE("/wishlist/:productId", s.removeWish)

	g.GET("/orders", s.getOrders)
	g.GET("/orders/:id", s.getOrder)
	return r
}
