package app

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"Gin_postgres_redis_library_tool/cache"
	"Gin_postgres_redis_library_tool/config"
	"Gin_postgres_redis_library_tool/engine"
	"Gin_postgres_redis_library_tool/storage"
)

// Aliases so controllers stay short.
type Ctx = gin.Context
type H = gin.H

// App aggregates the service dependencies.
type App struct {
	Router *gin.Engine
	Engine *engine.Engine
	RDB    *redis.Client
	Views  *cache.Store
	Config config.Config
}

func MustNew() *App {
	cfg := config.Load()

	// --- Persistence gateway ---
	var gw storage.Gateway
	switch cfg.Storage {
	case config.StoragePostgres:
		pg, err := storage.NewPostgresGateway(cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres gateway: %v", err)
		}
		gw = pg
	case config.StorageFile:
		gw = storage.NewFileGateway(cfg.DataFile)
	default:
		log.Fatalf("unknown STORAGE %q (want %q or %q)", cfg.Storage, config.StorageFile, config.StoragePostgres)
	}

	// --- Engine ---
	// A corrupt snapshot aborts startup; running on an empty inventory
	// would mask data loss.
	eng, err := engine.New(context.Background(), gw, engine.Options{CommitTimeout: cfg.CommitTimeout})
	if err != nil {
		log.Fatalf("load inventory: %v", err)
	}

	// --- Redis (optional view cache) ---
	var rdb *redis.Client
	var views *cache.Store
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("redis: %v", err)
		}
		views = cache.New(rdb, cfg.CacheTTL)
	}

	// --- Gin ---
	r := gin.Default()
	useCORS(r, cfg.WebOrigin)

	return &App{
		Router: r,
		Engine: eng,
		RDB:    rdb,
		Views:  views,
		Config: cfg,
	}
}

func (a *App) Close() {
	if a.RDB != nil {
		_ = a.RDB.Close()
	}
}
