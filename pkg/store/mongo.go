package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyGuard/pkg/logger"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RecordsCollection is the collection holding one document per key.
const RecordsCollection = "records"

// ErrUnavailable is returned when the database has never been reachable
// and nothing is cached for the key.
var ErrUnavailable = errors.New("store: database unavailable")

// Connection is the slice of database.Database the Mongo store needs.
type Connection interface {
	GetCollection(name string) *mongo.Collection
	MarkDisconnected(cause error)
}

type document struct {
	ID        string        `bson:"_id"`
	Data      bson.RawValue `bson:"data"`
	UpdatedAt time.Time     `bson:"updatedAt"`
}

// Mongo stores each record as {_id: key, data: value} and upserts it whole.
// The last value read or written per key is kept in an LRU so reads keep
// working while the server is unreachable. Writes never fall back.
type Mongo struct {
	conn  Connection
	cache *lru.Cache[string, bson.RawValue]
}

// NewMongo returns a store over conn caching up to cacheSize records.
func NewMongo(conn Connection, cacheSize int) (*Mongo, error) {
	cache, err := lru.New[string, bson.RawValue](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Mongo{conn: conn, cache: cache}, nil
}

func (m *Mongo) Load(ctx context.Context, key string, dst interface{}) error {
	col := m.conn.GetCollection(RecordsCollection)
	if col == nil {
		return m.fromCache(key, dst, ErrUnavailable)
	}

	var doc document
	err := col.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case err != nil:
		m.observe(err)
		return m.fromCache(key, dst, err)
	}

	if err := doc.Data.Unmarshal(dst); err != nil {
		return &CorruptRecordError{Key: key, Err: err}
	}
	m.cache.Add(key, doc.Data)
	return nil
}

func (m *Mongo) Save(ctx context.Context, key string, value interface{}) error {
	col := m.conn.GetCollection(RecordsCollection)
	if col == nil {
		return ErrUnavailable
	}

	t, data, err := bson.MarshalValue(value)
	if err != nil {
		return fmt.Errorf("store: encoding %q: %w", key, err)
	}
	raw := bson.RawValue{Type: t, Value: data}

	replacement := document{ID: key, Data: raw, UpdatedAt: time.Now().UTC()}
	_, err = col.ReplaceOne(ctx, bson.M{"_id": key}, replacement, options.Replace().SetUpsert(true))
	if err != nil {
		m.observe(err)
		return err
	}

	m.cache.Add(key, raw)
	return nil
}

func (m *Mongo) fromCache(key string, dst interface{}, cause error) error {
	raw, ok := m.cache.Get(key)
	if !ok {
		return cause
	}
	logger.Warn(fmt.Sprintf("Sirviendo '%s' desde caché: %v", key, cause), "Store")
	if err := raw.Unmarshal(dst); err != nil {
		return &CorruptRecordError{Key: key, Err: err}
	}
	return nil
}

func (m *Mongo) observe(err error) {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		m.conn.MarkDisconnected(err)
	}
}
