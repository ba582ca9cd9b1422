package memory

import (
	"context"
	"slices"
	"sync"

	"socialgraph/internal/domain"
)

type InboxStore struct {
	t *table[domain.Notification]
}

func NewInboxStore() *InboxStore {
	return &InboxStore{t: newTable[domain.Notification](nil)}
}

func (s *InboxStore) Add(_ context.Context, n domain.Notification) error {
	return s.t.insert(n.ID, n)
}

// ListForUser returns newest first.
func (s *InboxStore) ListForUser(_ context.Context, userID string, unreadOnly bool) ([]domain.Notification, error) {
	out := s.t.list(func(n domain.Notification) bool {
		return n.UserID == userID && (!unreadOnly || !n.Read)
	})
	slices.Reverse(out)
	return out, nil
}

func (s *InboxStore) MarkAllRead(_ context.Context, userID string) (int, error) {
	n := s.t.updateWhere(
		func(n domain.Notification) bool { return n.UserID == userID && !n.Read },
		func(n domain.Notification) domain.Notification {
			n.Read = true
			return n
		},
	)
	return n, nil
}

type TokensStore struct {
	mu     sync.RWMutex
	byUser map[string][]domain.NotificationToken
}

func NewTokensStore() *TokensStore {
	return &TokensStore{byUser: make(map[string][]domain.NotificationToken)}
}

func (s *TokensStore) UpsertToken(_ context.Context, t domain.NotificationToken) (domain.NotificationToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.byUser[t.UserID]
	for i, existing := range list {
		if existing.Token == t.Token {
			existing.Platform = t.Platform
			existing.UpdatedAt = t.UpdatedAt
			list[i] = existing
			return existing, nil
		}
	}
	t.CreatedAt = t.UpdatedAt
	s.byUser[t.UserID] = append(list, t)
	return t, nil
}

func (s *TokensStore) DeleteToken(_ context.Context, userID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byUser[userID] = slices.DeleteFunc(s.byUser[userID], func(t domain.NotificationToken) bool {
		return t.Token == token
	})
	return nil
}

func (s *TokensStore) ListTokens(_ context.Context, userID string) ([]domain.NotificationToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.byUser[userID]), nil
}
