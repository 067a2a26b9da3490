package fruit

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/fruitstand/backend/internal/model/fruit"
)

var (
	ErrFruitNotFound = errors.New("fruit not found")
	ErrInvalidID     = errors.New("fruit id must be a positive integer")
)

// Service encapsulates fruit inventory operations and the live event feed.
type Service struct {
	store fruit.Store
	log   logrus.FieldLogger

	mu          sync.RWMutex
	subscribers map[chan fruit.Event]struct{}
}

// NewService wires the service to an owned store.
func NewService(store fruit.Store, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		store:       store,
		log:         log.WithField("component", "fruit-service"),
		subscribers: make(map[chan fruit.Event]struct{}),
	}
}

// Create stores a validated draft and announces it to subscribers.
func (s *Service) Create(_ context.Context, draft fruit.Draft) (fruit.Fruit, error) {
	if err := draft.Validate(); err != nil {
		return fruit.Fruit{}, err
	}

	item := s.store.Create(draft)
	s.log.WithFields(logrus.Fields{"id": item.ID, "name": item.Name}).Info("fruit created")

	s.publish(fruit.NewCreatedEvent(item))
	return item, nil
}

// List returns all fruits in insertion order.
func (s *Service) List(_ context.Context) ([]fruit.Fruit, error) {
	return s.store.List(), nil
}

// Get retrieves a fruit by identifier.
func (s *Service) Get(_ context.Context, id int64) (fruit.Fruit, error) {
	if id <= 0 {
		return fruit.Fruit{}, ErrInvalidID
	}
	item, ok := s.store.FindByID(id)
	if !ok {
		return fruit.Fruit{}, ErrFruitNotFound
	}
	return item, nil
}

func (s *Service) Count() int {
	return s.store.Len()
}

// ParseID converts a path segment into a fruit id.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}

// Subscribe registers a live listener. The returned cancel func must be called once the
// listener goes away; it closes the channel.
func (s *Service) Subscribe(buffer int) (<-chan fruit.Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan fruit.Event, buffer)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, ch)
			s.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (s *Service) publish(event fruit.Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			s.log.WithField("type", event.Type).Warn("subscriber buffer full, dropping event")
		}
	}
}
