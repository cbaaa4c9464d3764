package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"regexp"
	"slices"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"eventhub/config"
	"eventhub/db"
	"eventhub/models"
	"eventhub/routes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatal("zap:", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Postgres（或本機用 sqlite3）
	store, err := db.Open(ctx, cfg.DBDriver, cfg.DSN, db.Pool{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	})
	if err != nil {
		logger.Fatal("database open", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	defer store.Close()
	if err := store.CreateTables(ctx); err != nil {
		logger.Fatal("create tables", zap.Error(err))
	}

	// Redis 可選：沒設定就不開回應快取與配額
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, cache and quota disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
			_ = rdb.Close()
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	if !cfg.Development() {
		gin.SetMode(gin.ReleaseMode)
	}
	server := gin.New()
	server.Use(gin.Recovery())

	routes.RegisterRoutes(ctx, server, routes.Deps{
		Tx:            store,
		Users:         models.NewSQLUserRepository(store),
		Groups:        models.NewSQLGroupRepository(store, models.AdminScope(cfg.AdminScope)),
		Events:        models.NewSQLEventRepository(store),
		RSVPs:         models.NewSQLRSVPRepository(store),
		Notifications: models.NewSQLNotificationRepository(store),
		Redis:         rdb,
		Log:           logger,
	}, routes.Options{
		Services:       cfg.Services,
		RequestTimeout: cfg.RequestTimeout,
		CacheTTL:       cfg.CacheTTL,
		QuotaLimit:     cfg.QuotaLimit,
		QuotaWindow:    cfg.QuotaWindow,
		RateRPS:        cfg.RateRPS,
		RateBurst:      cfg.RateBurst,
		AuthRateRPS:    cfg.AuthRateRPS,
		AuthRateBurst:  cfg.AuthRateBurst,
	})

	c := cors.New(cors.Options{
		AllowOriginFunc:  allowOrigin(cfg.CORSOrigins, cfg.CORSLocalhostPort),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-Cache", "X-Quota-Used"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           c.Handler(server),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr), zap.Strings("services", cfg.Services))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development() {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

var localhostOrigin = regexp.MustCompile(`^http://localhost:\d+$`)

// allowOrigin accepts the listed origins and, when localhostAnyPort is set, any http://localhost:<port>.
func allowOrigin(origins []string, localhostAnyPort bool) func(string) bool {
	return func(origin string) bool {
		if slices.Contains(origins, origin) {
			return true
		}
		return localhostAnyPort && localhostOrigin.MatchString(origin)
	}
}
