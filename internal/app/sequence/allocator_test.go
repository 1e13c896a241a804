package sequence

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/jianyuhu/TinyLink/internal/app/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocator_NextWithoutInitialize(t *testing.T) {
	a := NewAllocator(kv.NewMemory())

	_, err := a.Next(context.Background())
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestAllocator_InitializeThenNext(t *testing.T) {
	ctx := context.Background()
	a := NewAllocator(kv.NewMemory())

	require.NoError(t, a.Initialize(ctx))

	n, err := a.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, StartValue+1, n)

	n, err = a.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, StartValue+2, n)
}

func TestAllocator_InitializeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	a := NewAllocator(store)

	require.NoError(t, a.Initialize(ctx))
	if _, err := a.Next(ctx); err != nil {
		t.Fatal(err)
	}

	// A late initializer must not reset an advanced counter.
	require.NoError(t, a.Initialize(ctx))

	n, err := a.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, StartValue+2, n)
}

func TestAllocator_ConcurrentInitializeWritesOnce(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	a := NewAllocator(store)

	const callers = 50
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := a.Initialize(ctx); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	val, err := store.Read(ctx, CounterKey)
	require.NoError(t, err)
	assert.Equal(t, strconv.FormatInt(StartValue, 10), val,
		"counter must equal the starting value, not be started %d times", callers)
}

func TestAllocator_ConcurrentNextReturnsDistinctValues(t *testing.T) {
	ctx := context.Background()
	a := NewAllocator(kv.NewMemory())
	require.NoError(t, a.Initialize(ctx))

	const workers = 16
	const perWorker = 200

	var (
		mu   sync.Mutex
		seen = make(map[int64]struct{}, workers*perWorker)
		wg   sync.WaitGroup
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				n, err := a.Next(ctx)
				if err != nil {
					t.Error(err)
					return
				}
				mu.Lock()
				if _, dup := seen[n]; dup {
					t.Errorf("counter value %d handed out twice", n)
				}
				seen[n] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker)
}
