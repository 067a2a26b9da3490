package fruit

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/fruitstand/backend/internal/config"
	"github.com/zhouzirui/fruitstand/backend/internal/handler"
	model "github.com/zhouzirui/fruitstand/backend/internal/model/fruit"
	fruitService "github.com/zhouzirui/fruitstand/backend/internal/service/fruit"
)

func setup(t *testing.T) *Client {
	t.Helper()
	logger, _ := logtest.NewNullLogger()
	svc := fruitService.NewService(model.NewMemoryStore(nil), logger)
	srv := httptest.NewServer(handler.NewRouter(svc, config.ServerConfig{AllowedOrigins: []string{"*"}, FeedBuffer: 4}, logger))
	t.Cleanup(srv.Close)
	return New(srv.URL, srv.Client())
}

func TestClientRoundTrip(t *testing.T) {
	c := setup(t)
	ctx := context.Background()

	items, err := c.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	created, err := c.Create(ctx, "tomate", 10)
	require.NoError(t, err)
	assert.Equal(t, model.Fruit{ID: 1, Name: "tomate", Price: 10}, created)

	got, err := c.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	items, err = c.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestClientMapsErrors(t *testing.T) {
	c := setup(t)
	ctx := context.Background()

	_, err := c.Get(ctx, 7)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.Create(ctx, "", 3)
	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Violations, 1)
	assert.Equal(t, "name", verr.Violations[0].Field)
}

func TestClientWatch(t *testing.T) {
	c := setup(t)
	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()

	received := make(chan model.Event, 1)
	watchErr := make(chan error, 1)
	go func() {
		watchErr <- c.Watch(watchCtx, func(ev model.Event) {
			select {
			case received <- ev:
			default:
			}
		})
	}()

	// the dial may still be in flight; keep creating until the first event lands
	timeout := time.After(5 * time.Second)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	var event model.Event
loop:
	for {
		select {
		case event = <-received:
			break loop
		case <-ticker.C:
			_, err := c.Create(context.Background(), "kiwi", 2)
			require.NoError(t, err)
		case <-timeout:
			t.Fatal("no event received")
		}
	}

	assert.Equal(t, model.EventCreated, event.Type)
	assert.Equal(t, "kiwi", event.Fruit.Name)

	stopWatch()
	assert.NoError(t, <-watchErr)
}
