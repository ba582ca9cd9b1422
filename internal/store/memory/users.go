package memory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"socialgraph/internal/domain"
)

// UsersStore is the in-process identity collaborator.
type UsersStore struct {
	t   *table[domain.User]
	Now func() time.Time
}

func NewUsersStore() *UsersStore {
	return &UsersStore{t: newTable[domain.User](nil), Now: time.Now}
}

func (s *UsersStore) CreateUser(_ context.Context, displayName string) (domain.User, error) {
	u := domain.User{
		ID:          uuid.NewString(),
		DisplayName: displayName,
		CreatedAt:   s.Now().UTC(),
	}
	if err := s.t.insert(u.ID, u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// Add stores a user with a caller-chosen id.
func (s *UsersStore) Add(_ context.Context, u domain.User) error {
	return s.t.insert(u.ID, u)
}

func (s *UsersStore) GetUserByID(_ context.Context, id string) (domain.User, error) {
	u, ok := s.t.get(id)
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (s *UsersStore) Exists(_ context.Context, id string) (bool, error) {
	_, ok := s.t.get(id)
	return ok, nil
}

func (s *UsersStore) DisplayName(_ context.Context, id string) (string, error) {
	u, ok := s.t.get(id)
	if !ok {
		return "", domain.ErrNotFound
	}
	return u.DisplayName, nil
}

// SearchUsers returns up to limit users whose display name contains q, in creation order.
func (s *UsersStore) SearchUsers(_ context.Context, q string, limit int, excludeUserID string) ([]domain.UserSummary, error) {
	q = strings.ToLower(q)
	out := []domain.UserSummary{}
	for _, u := range s.t.list(func(u domain.User) bool {
		return u.ID != excludeUserID && strings.Contains(strings.ToLower(u.DisplayName), q)
	}) {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, u.Summary())
	}
	return out, nil
}
