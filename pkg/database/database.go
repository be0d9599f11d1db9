// Package database provides the MongoDB connection used by the document store.
// It keeps a single client, pings it for status, and reconnects in the background
// after the connection drops.
package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/PancyStudios/PancyGuard/pkg/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

const reconnectInterval = 15 * time.Second

// Database manages the MongoDB connection
type Database struct {
	client      *mongo.Client
	db          *mongo.Database
	mongoURL    string
	dbName      string
	IsConnected bool
	reconnect   bool
	stop        chan struct{}
	mu          sync.RWMutex
	collections map[string]*mongo.Collection
}

var (
	database *Database
	dbOnce   sync.Once
)

// Init initializes the global database instance
func Init(mongoURL, dbName string) (*Database, error) {
	var err error
	dbOnce.Do(func() {
		database = NewDatabase(mongoURL, dbName)
		err = database.Connect()
	})
	return database, err
}

// Get returns the global database instance
func Get() *Database {
	return database
}

// NewDatabase creates a new Database instance
func NewDatabase(mongoURL, dbName string) *Database {
	return &Database{
		mongoURL:    mongoURL,
		dbName:      dbName,
		stop:        make(chan struct{}),
		collections: make(map[string]*mongo.Collection),
	}
}

// Connect establishes a connection to MongoDB. On failure a background
// loop keeps retrying until it succeeds or Disconnect is called.
func (d *Database) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.IsConnected {
		return nil
	}

	logger.System("Intentando conectar a la base de datos...", "DB")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if d.client == nil {
		clientOpts := options.Client().
			ApplyURI(d.mongoURL).
			SetServerSelectionTimeout(5 * time.Second).
			SetWriteConcern(writeconcern.Majority())

		client, err := mongo.Connect(ctx, clientOpts)
		if err != nil {
			logger.Critical(fmt.Sprintf("Fallo al conectar con la base de datos: %v", err), "DB")
			d.startReconnectLocked()
			return err
		}
		d.client = client
		d.db = client.Database(d.dbName)
	}

	if err := d.client.Ping(ctx, readpref.Primary()); err != nil {
		logger.Critical(fmt.Sprintf("Fallo al verificar conexión con la base de datos: %v", err), "DB")
		d.startReconnectLocked()
		return err
	}

	d.IsConnected = true
	logger.Success("Conectado exitosamente a la base de datos.", "DB")
	return nil
}

// MarkDisconnected is called by users of the connection when an operation
// fails at the transport level.
func (d *Database) MarkDisconnected(cause error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.IsConnected {
		return
	}
	d.IsConnected = false
	logger.Warn(fmt.Sprintf("Se perdió la conexión con la base de datos: %v", cause), "DB")
	d.startReconnectLocked()
}

// startReconnectLocked starts at most one retry loop. d.mu must be held.
func (d *Database) startReconnectLocked() {
	if d.reconnect {
		return
	}
	d.reconnect = true

	go func() {
		ticker := time.NewTicker(reconnectInterval)
		defer ticker.Stop()
		defer func() {
			d.mu.Lock()
			d.reconnect = false
			d.mu.Unlock()
		}()

		for {
			select {
			case <-ticker.C:
				logger.Info("Intentando reconectar a la base de datos...", "DB")
				if d.tryReconnect() {
					return
				}
			case <-d.stop:
				return
			}
		}
	}()
}

func (d *Database) tryReconnect() bool {
	d.mu.RLock()
	client := d.client
	d.mu.RUnlock()

	if client == nil {
		// Connect re-enters startReconnectLocked on failure; the flag keeps it a no-op.
		return d.Connect() == nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return false
	}

	d.mu.Lock()
	d.IsConnected = true
	d.mu.Unlock()
	logger.Success("Conexión con la base de datos restablecida.", "DB")
	return true
}

// Disconnect closes the database connection
func (d *Database) Disconnect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	select {
	case <-d.stop:
	default:
		close(d.stop)
	}

	if d.client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := d.client.Disconnect(ctx); err != nil {
			return err
		}
		d.IsConnected = false
		logger.Warn("La base de datos ha sido desconectada", "DB")
	}
	return nil
}

// Ping measures the database response time
func (d *Database) Ping() (time.Duration, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.IsConnected || d.client == nil {
		return 0, fmt.Errorf("not connected to database")
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := d.client.Ping(ctx, readpref.Primary())
	return time.Since(start), err
}

// GetStatus returns the database connection status
func (d *Database) GetStatus() (string, bool) {
	if d == nil {
		return "⚪ | No configurada", false
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.client == nil || !d.IsConnected {
		return "🔴 | Desconectado", false
	}
	return "🟢 | En linea", true
}

// GetCollection returns a MongoDB collection, or nil before the first connect
func (d *Database) GetCollection(name string) *mongo.Collection {
	d.mu.RLock()
	if col, exists := d.collections[name]; exists {
		d.mu.RUnlock()
		return col
	}
	d.mu.RUnlock()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		return nil
	}

	col := d.db.Collection(name)
	d.collections[name] = col
	return col
}

// Client returns the underlying MongoDB client
func (d *Database) Client() *mongo.Client {
	return d.client
}
