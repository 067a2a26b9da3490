package fruit_test

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "github.com/zhouzirui/fruitstand/backend/internal/model/fruit"
	fruit "github.com/zhouzirui/fruitstand/backend/internal/service/fruit"
)

func setup(t *testing.T) (*fruit.Service, *model.MemoryStore, *logtest.Hook) {
	t.Helper()
	logger, hook := logtest.NewNullLogger()
	store := model.NewMemoryStore(nil)
	return fruit.NewService(store, logger), store, hook
}

func TestServiceCreate(t *testing.T) {
	svc, store, hook := setup(t)

	t.Run("Success", func(t *testing.T) {
		item, err := svc.Create(context.Background(), model.Draft{Name: "tomate", Price: 10})

		require.NoError(t, err)
		assert.Equal(t, model.Fruit{ID: 1, Name: "tomate", Price: 10}, item)
		assert.Equal(t, 1, store.Len())

		entry := hook.LastEntry()
		require.NotNil(t, entry)
		assert.Equal(t, "fruit created", entry.Message)
		assert.Equal(t, int64(1), entry.Data["id"])
	})

	t.Run("Fail on empty name leaves store untouched", func(t *testing.T) {
		_, err := svc.Create(context.Background(), model.Draft{Name: "", Price: 10})

		var verr *model.ValidationError
		assert.True(t, errors.As(err, &verr))
		assert.Equal(t, 1, store.Len())
	})
}

func TestServiceGet(t *testing.T) {
	svc, _, _ := setup(t)
	created, err := svc.Create(context.Background(), model.Draft{Name: "maça", Price: 12})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = svc.Get(context.Background(), 99)
	assert.ErrorIs(t, err, fruit.ErrFruitNotFound)

	_, err = svc.Get(context.Background(), 0)
	assert.ErrorIs(t, err, fruit.ErrInvalidID)
}

func TestServiceListEmpty(t *testing.T) {
	svc, _, _ := setup(t)

	items, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
	assert.Equal(t, 0, svc.Count())
}

func TestParseID(t *testing.T) {
	valid := map[string]int64{"1": 1, "42": 42}
	for raw, want := range valid {
		id, err := fruit.ParseID(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, id)
	}

	for _, raw := range []string{"notvalid", "", "0", "-3", "1.5", "99999999999999999999"} {
		_, err := fruit.ParseID(raw)
		assert.ErrorIs(t, err, fruit.ErrInvalidID, raw)
	}
}

func TestSubscribeReceivesCreatedEvents(t *testing.T) {
	svc, _, _ := setup(t)
	events, cancel := svc.Subscribe(4)
	defer cancel()

	item, err := svc.Create(context.Background(), model.Draft{Name: "kiwi", Price: 2})
	require.NoError(t, err)

	event := <-events
	assert.Equal(t, model.EventCreated, event.Type)
	assert.Equal(t, item, event.Fruit)
	assert.False(t, event.At.IsZero())
}

func TestSubscribeCancelClosesChannel(t *testing.T) {
	svc, _, _ := setup(t)
	events, cancel := svc.Subscribe(1)

	cancel()
	cancel()

	_, open := <-events
	assert.False(t, open)

	_, err := svc.Create(context.Background(), model.Draft{Name: "lima", Price: 1})
	require.NoError(t, err)
}

func TestPublishDropsWhenSubscriberIsFull(t *testing.T) {
	svc, _, hook := setup(t)
	events, cancel := svc.Subscribe(1)
	defer cancel()

	for _, name := range []string{"uva", "pera"} {
		_, err := svc.Create(context.Background(), model.Draft{Name: name, Price: 1})
		require.NoError(t, err)
	}

	first := <-events
	assert.Equal(t, "uva", first.Fruit.Name)

	var dropped bool
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel && entry.Message == "subscriber buffer full, dropping event" {
			dropped = true
		}
	}
	assert.True(t, dropped)
}
