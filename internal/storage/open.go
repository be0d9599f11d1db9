// Package storage picks the persistence backend named by the configuration.
package storage

import (
	"fmt"

	"github.com/PancyStudios/PancyGuard/pkg/database"
	"github.com/PancyStudios/PancyGuard/pkg/logger"
	"github.com/PancyStudios/PancyGuard/pkg/store"
)

// mongoCacheSize is how many records the document store keeps for outages.
const mongoCacheSize = 1024

// Backend is an opened store plus the database behind it, if any.
type Backend struct {
	Name  string
	Store store.Store
	// DB is nil unless Name is "mongo".
	DB *database.Database
}

// Status reports the database state for status displays. Backends without
// a database report nil.
func (b *Backend) Status() func() (string, bool) {
	if b.DB == nil {
		return nil
	}
	return b.DB.GetStatus
}

// Close disconnects the database, if there is one.
func (b *Backend) Close() {
	if b.DB == nil {
		return
	}
	if err := b.DB.Disconnect(); err != nil {
		logger.Warn(fmt.Sprintf("Error cerrando la base de datos: %v", err), "Storage")
	}
}

// Open builds the store for backend ("file", "mongo" or "memory"). A mongo
// server that is down is not an error: the connection keeps retrying.
func Open(backend, dataDir, mongoURL, dbName string) (*Backend, error) {
	switch backend {
	case "file", "":
		s, err := store.NewFile(dataDir)
		if err != nil {
			return nil, err
		}
		logger.Info("Almacenamiento en archivos: "+dataDir, "Storage")
		return &Backend{Name: "file", Store: s}, nil

	case "mongo":
		db, err := database.Init(mongoURL, dbName)
		if err != nil {
			logger.Error(fmt.Sprintf("Error connecting to database: %v", err), "Storage")
		}
		s, err := store.NewMongo(db, mongoCacheSize)
		if err != nil {
			return nil, err
		}
		return &Backend{Name: "mongo", Store: s, DB: db}, nil

	case "memory":
		logger.Warn("Almacenamiento en memoria: los datos se pierden al reiniciar", "Storage")
		return &Backend{Name: "memory", Store: store.NewMemory()}, nil
	}

	return nil, fmt.Errorf("storeBackend desconocido: %q", backend)
}
