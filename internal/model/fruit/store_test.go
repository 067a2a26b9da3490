package fruit

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreAssignsSequentialIDs(t *testing.T) {
	store := NewMemoryStore(nil)

	first := store.Create(Draft{Name: "tomate", Price: 10})
	second := store.Create(Draft{Name: "maça", Price: 12})

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.Equal(t, 2, store.Len())
}

func TestMemoryStoreListKeepsInsertionOrder(t *testing.T) {
	store := NewMemoryStore([]Draft{{Name: "banana", Price: 3}, {Name: "kiwi", Price: 1.5}})

	items := store.List()
	require.Len(t, items, 2)
	assert.Equal(t, "banana", items[0].Name)
	assert.Equal(t, "kiwi", items[1].Name)

	items[0].Name = "mutated"
	got, ok := store.FindByID(1)
	require.True(t, ok)
	assert.Equal(t, "banana", got.Name, "List must return a copy")
}

func TestMemoryStoreListEmptyIsNotNil(t *testing.T) {
	items := NewMemoryStore(nil).List()
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestMemoryStoreFindByIDMissing(t *testing.T) {
	store := NewMemoryStore([]Draft{{Name: "pera", Price: 4}})

	_, ok := store.FindByID(2)
	assert.False(t, ok)
}

func TestMemoryStoreResetRestartsNumbering(t *testing.T) {
	store := NewMemoryStore([]Draft{{Name: "uva", Price: 7}, {Name: "lima", Price: 2}})

	store.Reset()
	assert.Equal(t, 0, store.Len())

	created := store.Create(Draft{Name: "tomate", Price: 10})
	assert.Equal(t, int64(1), created.ID)
}

func TestMemoryStoreConcurrentCreatesKeepIDsUnique(t *testing.T) {
	store := NewMemoryStore(nil)

	const workers = 32
	var wg sync.WaitGroup
	ids := make(chan int64, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- store.Create(Draft{Name: "caju", Price: 1}).ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool, workers)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, workers)
	assert.Equal(t, workers, store.Len())
}
