package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/MikeMC777/storefront/internal/config"
	"github.com/MikeMC777/storefront/internal/httpx"
	"github.com/MikeMC777/storefront/internal/logging"
	prod "github.com/MikeMC777/storefront/internal/product"
)

func main() {
	cfg := config.Load()
	log, err := logging.New(logging.Options{Mode: cfg.LogMode, File: cfg.LogFile})
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()
	cfg.Log(log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	cancel()
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pool.Close()

	if cfg.LogMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := newRouter(prod.NewPGRepo(pool), log)
	r.GET("/healthz", func(c *gin.Context) {
		if err := pool.Ping(c.Request.Context()); err != nil {
			c.String(http.StatusServiceUnavailable, "db down")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	srv := &http.Server{
		Addr:              cfg.CatalogSvcAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		log.Info("catalog-service listening", zap.String("addr", cfg.CatalogSvcAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
}

func newRouter(repo prod.Repository, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger(log))

	r.GET("/products", listProductsHandler(repo))
	r.GET("/products/:id", getProductHandler(repo))
	for _, kind := range []prod.OptionKind{prod.OptionCategories, prod.OptionBrands, prod.OptionColors, prod.OptionSizes} {
		r.GET("/"+string(kind), optionsHandler(repo, kind))
	}
	return r
}
