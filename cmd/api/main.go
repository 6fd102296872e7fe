package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"

	"github.com/noah-isme/catalog-pricing/internal/cache"
	"github.com/noah-isme/catalog-pricing/internal/config"
	"github.com/noah-isme/catalog-pricing/internal/health"
	"github.com/noah-isme/catalog-pricing/internal/obs"
	"github.com/noah-isme/catalog-pricing/internal/pricing"
	"github.com/noah-isme/catalog-pricing/internal/repo"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("env", cfg.AppEnv).Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := repo.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}

	var pricingMetrics *obs.PricingMetrics
	var httpMetrics *obs.HTTPMetrics
	if cfg.MetricsEnabled {
		pricingMetrics = obs.NewPricingMetrics(cfg.MetricsNamespace, nil)
		buckets := obs.ParseBucketsCSV(os.Getenv("OBS_METRICS_BUCKETS_MS"))
		httpMetrics = obs.NewHTTPMetrics(cfg.MetricsNamespace, buckets, nil)
	}

	settings := pricing.Settings{
		IgnoreDiscounts:                     cfg.IgnoreDiscounts,
		CachePrices:                         cfg.CachePrices,
		CacheTTL:                            cfg.PriceCacheTTL,
		RoundDuringCalculation:              cfg.RoundDuringCalculation,
		CurrencyDecimals:                    int32(cfg.CurrencyDecimals),
		GroupTierPricesForDistinctCartLines: cfg.GroupTierPrices,
	}

	products := &repo.ProductStore{Pool: pool}
	discounts := &repo.DiscountStore{Pool: pool}
	categories := &repo.CategoryStore{Pool: pool}
	customers := &repo.CustomerStore{Pool: pool}
	cartLines := &repo.CartStore{Pool: pool}

	priceCache := &pricing.PriceCache{
		Store:   cache.RedisStore{Client: redisClient},
		Logger:  logger,
		Metrics: metricsOrNil(pricingMetrics),
	}

	engine, err := pricing.NewEngine(pricing.EngineConfig{
		Discounts:  discounts,
		Categories: categories,
		Products:   products,
		Parser:     pricing.JSONPayloadParser{},
		Cart:       cartLines,
		Cache:      priceCache,
		Settings:   settings,
		Metrics:    metricsOrNil(pricingMetrics),
		Logger:     logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise pricing engine")
	}
	pricingHandler := pricing.NewHandler(engine, products, customers)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(cfg),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	if cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	healthHandler := health.Handler{
		Checker:      readinessChecker{db: pool, redis: redisClient},
		DBTimeout:    500 * time.Millisecond,
		RedisTimeout: 300 * time.Millisecond,
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1/pricing", func(v chi.Router) {
		v.Post("/final-price", pricingHandler.FinalPrice)
		v.Post("/unit-price", pricingHandler.UnitPrice)
		v.Post("/subtotal", pricingHandler.Subtotal)
		v.Post("/product-cost", pricingHandler.ProductCost)
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
	case sig := <-stop:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
		health.SetReady(false)
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown")
		}
	}
}

func metricsOrNil(m *obs.PricingMetrics) pricing.Metrics {
	if m == nil {
		return nil
	}
	return m
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

type readinessChecker struct {
	db    *pgxpool.Pool
	redis *redis.Client
}

func (c readinessChecker) PingDB(ctx context.Context, timeout time.Duration) error {
	if c.db == nil {
		return errors.New("db not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.db.Ping(ctx)
}

func (c readinessChecker) PingRedis(ctx context.Context, timeout time.Duration) error {
	if c.redis == nil {
		return errors.New("redis not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.redis.Ping(ctx).Err()
}
