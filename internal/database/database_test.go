package database

import (
	"testing"

	"go-league/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
)

func TestUnreachableStoresDoNotFailStartup(t *testing.T) {
	cfg := &config.Config{
		MongoURI:      "mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=200&connectTimeoutMS=200",
		DBName:        "league_test",
		PresetBackend: "redis",
		RedisAddr:     "127.0.0.1:1",
	}
	lc := fxtest.NewLifecycle(t)

	db, err := NewDatabase(lc, cfg)
	require.NoError(t, err)
	assert.Nil(t, db)

	rdb, err := NewRedisClient(lc, cfg)
	require.NoError(t, err)
	assert.Nil(t, rdb)
}

func TestRedisSkippedForOtherBackends(t *testing.T) {
	rdb, err := NewRedisClient(fxtest.NewLifecycle(t), &config.Config{PresetBackend: "mongo"})
	require.NoError(t, err)
	assert.Nil(t, rdb)
}
