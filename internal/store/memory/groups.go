package memory

import (
	"context"

	"socialgraph/internal/domain"
)

type GroupsStore struct {
	t *table[*domain.Group]
}

func NewGroupsStore() *GroupsStore {
	return &GroupsStore{t: newTable((*domain.Group).Clone)}
}

func (s *GroupsStore) Create(_ context.Context, g *domain.Group) error {
	return s.t.insert(g.ID, g)
}

func (s *GroupsStore) Get(_ context.Context, id string) (*domain.Group, error) {
	g, ok := s.t.get(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return g, nil
}

// Update runs fn against a copy of the group and commits it only when fn returns nil.
func (s *GroupsStore) Update(_ context.Context, id string, fn func(*domain.Group) error) error {
	found, err := s.t.update(id, func(g *domain.Group) (*domain.Group, error) {
		return g, fn(g)
	})
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrNotFound
	}
	return nil
}

func (s *GroupsStore) Delete(_ context.Context, id string, allow func(*domain.Group) error) error {
	found, err := s.t.deleteIf(id, allow)
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrNotFound
	}
	return nil
}

func (s *GroupsStore) List(_ context.Context, keep func(*domain.Group) bool) ([]*domain.Group, error) {
	return s.t.list(keep), nil
}
