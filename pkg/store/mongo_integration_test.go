package store

import (
	"context"
	"os"
	"testing"

	"github.com/PancyStudios/PancyGuard/pkg/database"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs only when PANCY_TEST_MONGO_URL points at a disposable server.
func TestMongoRoundTrip(t *testing.T) {
	url := os.Getenv("PANCY_TEST_MONGO_URL")
	if url == "" {
		t.Skip("PANCY_TEST_MONGO_URL not set")
	}

	db := database.NewDatabase(url, "pancyguard_test_"+uuid.NewString()[:8])
	require.NoError(t, db.Connect())
	defer func() {
		_ = db.GetCollection(RecordsCollection).Drop(context.Background())
		_ = db.Disconnect()
	}()

	m, err := NewMongo(db, 16)
	require.NoError(t, err)

	ctx := context.Background()
	var out sampleRecord
	assert.ErrorIs(t, m.Load(ctx, "ledger:1", &out), ErrNotFound)

	in := sampleRecord{Counts: map[string]int{"42": 2}, Words: []string{"spam"}}
	require.NoError(t, m.Save(ctx, "ledger:1", in))
	require.NoError(t, m.Save(ctx, "ledger:1", in))

	require.NoError(t, m.Load(ctx, "ledger:1", &out))
	assert.Equal(t, in, out)
}
