package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	N int `json:"n"`
}

// slowStore delays every Save so concurrent writers overlap.
type slowStore struct {
	*Memory
	delay time.Duration
	saves int32
	fail  atomic.Bool
}

func (s *slowStore) Save(ctx context.Context, key string, value interface{}) error {
	atomic.AddInt32(&s.saves, 1)
	time.Sleep(s.delay)
	if s.fail.Load() {
		return errors.New("disk full")
	}
	return s.Memory.Save(ctx, key, value)
}

func increment(cur *counter) (*counter, error) {
	return &counter{N: cur.N + 1}, nil
}

func TestRecordsConcurrentUpdates(t *testing.T) {
	s := &slowStore{Memory: NewMemory(), delay: 5 * time.Millisecond}
	r := NewRecords[counter](s, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Update(ctx, "c", increment)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := r.Get(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, 10, got.N)

	var persisted counter
	require.NoError(t, s.Memory.Load(ctx, "c", &persisted))
	assert.Equal(t, 10, persisted.N)
}

func TestRecordsNoopSkipsSave(t *testing.T) {
	s := &slowStore{Memory: NewMemory()}
	r := NewRecords[counter](s, nil)

	rec, err := r.Update(context.Background(), "c", func(cur *counter) (*counter, error) {
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, rec.N)
	assert.Equal(t, int32(0), atomic.LoadInt32(&s.saves))
}

func TestRecordsFailedSaveKeepsCache(t *testing.T) {
	s := &slowStore{Memory: NewMemory()}
	r := NewRecords[counter](s, nil)
	ctx := context.Background()

	_, err := r.Update(ctx, "c", increment)
	require.NoError(t, err)

	s.fail.Store(true)
	rec, err := r.Update(ctx, "c", increment)
	require.Error(t, err)
	assert.Equal(t, 1, rec.N)

	got, err := r.Get(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, 1, got.N)
}

func TestRecordsNormalize(t *testing.T) {
	r := NewRecords[counter](NewMemory(), func(c *counter) {
		if c.N == 0 {
			c.N = 100
		}
	})

	got, err := r.Get(context.Background(), "fresh")
	require.NoError(t, err)
	assert.Equal(t, 100, got.N)
}

func TestRecordsForget(t *testing.T) {
	m := NewMemory()
	r := NewRecords[counter](m, nil)
	ctx := context.Background()

	_, err := r.Get(ctx, "c")
	require.NoError(t, err)

	require.NoError(t, m.Save(ctx, "c", counter{N: 9}))
	r.Forget("c")

	got, err := r.Get(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, 9, got.N)
}
