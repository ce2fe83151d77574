package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"go-league/internal/config"

	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"
)

// MongodbDB wraps the application database handle.
type MongodbDB struct {
	DB *mongo.Database
}

// NewDatabase creates a new MongoDB database connection with lifecycle management.
// MongoDB only holds presets and persisted logs, so an unreachable server is
// logged and yields a nil handle instead of failing startup.
func NewDatabase(lc fx.Lifecycle, cfg *config.Config) (*MongodbDB, error) {
	db, disconnect, err := Connect(cfg)
	if err != nil {
		log.Printf("MongoDB unavailable, presets and log persistence disabled: %v", err)
		return nil, nil
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Println("Disconnecting from MongoDB...")
			return disconnect(ctx)
		},
	})

	return db, nil
}

// Connect opens a MongoDB connection outside of an fx graph (CLI tools).
func Connect(cfg *config.Config) (*MongodbDB, func(context.Context) error, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}

	log.Println("Connected to MongoDB!")

	return &MongodbDB{DB: client.Database(cfg.DBName)}, client.Disconnect, nil
}

// NewRedisClient connects to redis when it backs the preset store. It returns
// nil for any other backend, or when redis cannot be reached, so constructors
// can take it unconditionally.
func NewRedisClient(lc fx.Lifecycle, cfg *config.Config) (*goredis.Client, error) {
	if cfg.PresetBackend != "redis" {
		return nil, nil
	}

	rdb, err := ConnectRedis(cfg)
	if err != nil {
		log.Printf("Redis unavailable, presets disabled: %v", err)
		return nil, nil
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return rdb.Close()
		},
	})
	return rdb, nil
}

func ConnectRedis(cfg *config.Config) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.RedisAddr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}
