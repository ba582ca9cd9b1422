package memory

import (
	"context"

	"socialgraph/internal/domain"
)

type EventsStore struct {
	t *table[*domain.Event]
}

func NewEventsStore() *EventsStore {
	return &EventsStore{t: newTable((*domain.Event).Clone)}
}

func (s *EventsStore) Create(_ context.Context, e *domain.Event) error {
	return s.t.insert(e.ID, e)
}

func (s *EventsStore) Get(_ context.Context, id string) (*domain.Event, error) {
	e, ok := s.t.get(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return e, nil
}

func (s *EventsStore) Update(_ context.Context, id string, fn func(*domain.Event) error) error {
	found, err := s.t.update(id, func(e *domain.Event) (*domain.Event, error) {
		return e, fn(e)
	})
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrNotFound
	}
	return nil
}

func (s *EventsStore) Delete(_ context.Context, id string, allow func(*domain.Event) error) error {
	found, err := s.t.deleteIf(id, allow)
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrNotFound
	}
	return nil
}

func (s *EventsStore) List(_ context.Context, keep func(*domain.Event) bool) ([]*domain.Event, error) {
	return s.t.list(keep), nil
}
