package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"qrattend/internal/api"
	"qrattend/internal/attendance"
	"qrattend/internal/cloudinary"
	"qrattend/internal/config"
	"qrattend/internal/httpmiddleware"
	"qrattend/internal/logging"
	"qrattend/internal/qrcode"
	"qrattend/internal/queue"
	"qrattend/internal/store"
)

func main() {
	cfg := config.Load()
	logging.Init(cfg.LogLevel, cfg.LogFormat)

	// Set Gin mode based on environment
	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		logging.Logger.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	log := logging.Logger
	ctx := context.Background()

	var opts []api.Option

	attStore, closeStore, err := openStore(ctx, cfg, &opts)
	if err != nil {
		return err
	}
	defer closeStore()

	// With the memory backend there is no worker to forward to; /v1/scan-events
	// answers 503 and clients post to /v1/scans instead.
	var q queue.Queue
	if cfg.QueueBackend != "memory" {
		redisClient := store.NewRedis(cfg.RedisAddr)
		defer redisClient.Close()
		q = queue.NewRedisQueue(redisClient.Client, cfg.QueueKey)
		opts = append(opts, api.WithHealthCheck("redis", redisClient.Healthy))
	}

	gen, err := qrcode.NewGenerator(qrcode.Options{
		Size:       cfg.QRSize,
		Margin:     cfg.QRMargin,
		Foreground: cfg.QRForeground,
		Background: cfg.QRBackground,
	})
	if err != nil {
		return err
	}

	// Cloudinary client (sharing disabled when not configured)
	if cfg.CloudinaryConfigured() {
		opts = append(opts, api.WithUploader(cloudinary.New(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)))
		log.WithField("cloud", cfg.CloudinaryCloudName).Info("cloudinary configured")
	} else {
		log.Info("cloudinary not configured, QR sharing disabled")
	}

	svc := attendance.NewService(attStore, cfg.LateCutoff, cfg.Location)
	opts = append(opts, api.WithLogger(log))
	handler := api.New(svc, gen, q, opts...)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Output:    log.Writer(),
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:   []string{"Content-Disposition"},
		MaxAge:          12 * time.Hour,
	}))
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handler.Register(r)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.HTTPPort).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}
	log.Info("shutting down server")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("server forced shutdown")
	}
	log.Info("server exited")
	return nil
}

// openStore selects the attendance store backend and registers its health check.
func openStore(ctx context.Context, cfg config.App, opts *[]api.Option) (attendance.Store, func(), error) {
	switch cfg.StoreBackend {
	case "memory":
		logging.Logger.Warn("using in-memory store, records are lost on exit")
		return attendance.NewMemoryStore(), func() {}, nil
	case "sqlite":
		db, err := store.NewSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		*opts = append(*opts, api.WithHealthCheck("db", db.Healthy))
		return attendance.NewRepository(db.Client, attendance.SQLite), func() { db.Close() }, nil
	default:
		db, err := store.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		*opts = append(*opts, api.WithHealthCheck("db", db.Healthy))
		return attendance.NewRepository(db.Client, attendance.Postgres), func() { db.Close() }, nil
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// Only add HSTS in production
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
}
