package preset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go-league/internal/config"
	"go-league/internal/database"

	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PresetRepository is a key-value store of preset lists keyed by
// organization id.
type PresetRepository interface {
	Load(ctx context.Context, orgID string) ([]Preset, error)
	Store(ctx context.Context, orgID string, presets []Preset) error
}

// NewPresetRepository picks the backend named by PRESET_BACKEND. A backend
// that could not be reached at startup fails every call instead, so reports
// keep working without presets.
func NewPresetRepository(cfg *config.Config, db *database.MongodbDB, rdb *goredis.Client) PresetRepository {
	switch cfg.PresetBackend {
	case "memory":
		return NewMemoryPresetRepository()
	case "redis":
		if rdb == nil {
			return UnavailableRepository{Backend: "redis"}
		}
		return NewRedisPresetRepository(rdb)
	default:
		if db == nil || db.DB == nil {
			return UnavailableRepository{Backend: "mongo"}
		}
		return NewMongoPresetRepository(db)
	}
}

// UnavailableRepository stands in for a preset backend that is down.
type UnavailableRepository struct {
	Backend string
}

func (r UnavailableRepository) Load(ctx context.Context, orgID string) ([]Preset, error) {
	return nil, fmt.Errorf("%s preset backend not connected", r.Backend)
}

func (r UnavailableRepository) Store(ctx context.Context, orgID string, presets []Preset) error {
	return fmt.Errorf("%s preset backend not connected", r.Backend)
}

type presetDocument struct {
	OrgID     string    `bson:"_id"`
	Presets   []Preset  `bson:"presets"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type MongoPresetRepository struct {
	collection *mongo.Collection
}

func NewMongoPresetRepository(db *database.MongodbDB) *MongoPresetRepository {
	return &MongoPresetRepository{
		collection: db.DB.Collection("report_presets"),
	}
}

func (r *MongoPresetRepository) Load(ctx context.Context, orgID string) ([]Preset, error) {
	var doc presetDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": orgID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return []Preset{}, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.Presets, nil
}

func (r *MongoPresetRepository) Store(ctx context.Context, orgID string, presets []Preset) error {
	doc := presetDocument{OrgID: orgID, Presets: presets, UpdatedAt: time.Now()}
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": orgID}, doc, options.Replace().SetUpsert(true))
	return err
}

const redisKeyPrefix = "report_presets:"

type RedisPresetRepository struct {
	rdb *goredis.Client
}

func NewRedisPresetRepository(rdb *goredis.Client) *RedisPresetRepository {
	return &RedisPresetRepository{rdb: rdb}
}

func (r *RedisPresetRepository) Load(ctx context.Context, orgID string) ([]Preset, error) {
	raw, err := r.rdb.Get(ctx, redisKeyPrefix+orgID).Bytes()
	if errors.Is(err, goredis.Nil) {
		return []Preset{}, nil
	}
	if err != nil {
		return nil, err
	}
	var presets []Preset
	if err := json.Unmarshal(raw, &presets); err != nil {
		return nil, err
	}
	return presets, nil
}

func (r *RedisPresetRepository) Store(ctx context.Context, orgID string, presets []Preset) error {
	raw, err := json.Marshal(presets)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, redisKeyPrefix+orgID, raw, 0).Err()
}

// MemoryPresetRepository keeps presets in process. It serves local runs and
// tests.
type MemoryPresetRepository struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryPresetRepository() *MemoryPresetRepository {
	return &MemoryPresetRepository{data: make(map[string][]byte)}
}

func (r *MemoryPresetRepository) Load(ctx context.Context, orgID string) ([]Preset, error) {
	r.mu.RLock()
	raw, ok := r.data[orgID]
	r.mu.RUnlock()
	if !ok {
		return []Preset{}, nil
	}
	var presets []Preset
	if err := json.Unmarshal(raw, &presets); err != nil {
		return nil, err
	}
	return presets, nil
}

func (r *MemoryPresetRepository) Store(ctx context.Context, orgID string, presets []Preset) error {
	raw, err := json.Marshal(presets)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.data[orgID] = raw
	r.mu.Unlock()
	return nil
}
