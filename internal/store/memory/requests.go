package memory

import (
	"context"

	"socialgraph/internal/domain"
)

type RequestsStore struct {
	t *table[domain.FriendRequest]
}

func NewRequestsStore() *RequestsStore {
	return &RequestsStore{t: newTable[domain.FriendRequest](nil)}
}

func (s *RequestsStore) Create(_ context.Context, r domain.FriendRequest) error {
	return s.t.insert(r.ID, r)
}

func (s *RequestsStore) Get(_ context.Context, id string) (domain.FriendRequest, error) {
	r, ok := s.t.get(id)
	if !ok {
		return domain.FriendRequest{}, domain.ErrNotFound
	}
	return r, nil
}

// Transition moves a request from one status to another and reports whether it was in from.
func (s *RequestsStore) Transition(_ context.Context, id string, from, to domain.RequestStatus) (bool, error) {
	moved := false
	found, err := s.t.update(id, func(r domain.FriendRequest) (domain.FriendRequest, error) {
		if r.Status == from {
			r.Status = to
			moved = true
		}
		return r, nil
	})
	if err != nil {
		return false, err
	}
	if !found {
		return false, domain.ErrNotFound
	}
	return moved, nil
}

func (s *RequestsStore) List(_ context.Context, keep func(domain.FriendRequest) bool) ([]domain.FriendRequest, error) {
	return s.t.list(keep), nil
}

func (s *RequestsStore) DeleteWhere(_ context.Context, drop func(domain.FriendRequest) bool) (int, error) {
	return s.t.deleteWhere(drop), nil
}
