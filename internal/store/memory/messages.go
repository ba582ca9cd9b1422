package memory

import (
	"context"

	"socialgraph/internal/domain"
)

type GroupMessagesStore struct {
	t *table[domain.GroupMessage]
}

func NewGroupMessagesStore() *GroupMessagesStore {
	return &GroupMessagesStore{t: newTable(domain.GroupMessage.Clone)}
}

func (s *GroupMessagesStore) Add(_ context.Context, m domain.GroupMessage) error {
	return s.t.insert(m.ID, m)
}

func (s *GroupMessagesStore) Get(_ context.Context, id string) (domain.GroupMessage, error) {
	m, ok := s.t.get(id)
	if !ok {
		return domain.GroupMessage{}, domain.ErrNotFound
	}
	return m, nil
}

// Update runs fn against a copy of the message and commits it only when fn returns nil.
func (s *GroupMessagesStore) Update(_ context.Context, id string, fn func(*domain.GroupMessage) error) error {
	found, err := s.t.update(id, func(m domain.GroupMessage) (domain.GroupMessage, error) {
		return m, fn(&m)
	})
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrNotFound
	}
	return nil
}

func (s *GroupMessagesStore) Delete(_ context.Context, id string, allow func(domain.GroupMessage) error) error {
	found, err := s.t.deleteIf(id, allow)
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrNotFound
	}
	return nil
}

// List returns matching messages in the order they were added.
func (s *GroupMessagesStore) List(_ context.Context, keep func(domain.GroupMessage) bool) ([]domain.GroupMessage, error) {
	return s.t.list(keep), nil
}

func (s *GroupMessagesStore) DeleteWhere(_ context.Context, drop func(domain.GroupMessage) bool) (int, error) {
	return s.t.deleteWhere(drop), nil
}

type DirectMessagesStore struct {
	t *table[domain.DirectMessage]
}

func NewDirectMessagesStore() *DirectMessagesStore {
	return &DirectMessagesStore{t: newTable[domain.DirectMessage](nil)}
}

func (s *DirectMessagesStore) Add(_ context.Context, m domain.DirectMessage) error {
	return s.t.insert(m.ID, m)
}

func (s *DirectMessagesStore) Get(_ context.Context, id string) (domain.DirectMessage, error) {
	m, ok := s.t.get(id)
	if !ok {
		return domain.DirectMessage{}, domain.ErrNotFound
	}
	return m, nil
}

func (s *DirectMessagesStore) List(_ context.Context, keep func(domain.DirectMessage) bool) ([]domain.DirectMessage, error) {
	return s.t.list(keep), nil
}

// MarkRead flags every unread message match accepts and returns how many changed.
func (s *DirectMessagesStore) MarkRead(_ context.Context, match func(domain.DirectMessage) bool) (int, error) {
	n := s.t.updateWhere(
		func(m domain.DirectMessage) bool { return !m.Read && match(m) },
		func(m domain.DirectMessage) domain.DirectMessage {
			m.Read = true
			return m
		},
	)
	return n, nil
}

func (s *DirectMessagesStore) Delete(_ context.Context, id string, allow func(domain.DirectMessage) error) error {
	found, err := s.t.deleteIf(id, allow)
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrNotFound
	}
	return nil
}
