package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"socialgraph/internal/domain"
)

// DefaultRequestRetention is how long rejected requests are kept before PurgeRejected drops them.
const DefaultRequestRetention = 30 * 24 * time.Hour

type RequestsStore interface {
	Create(ctx context.Context, r domain.FriendRequest) error
	Get(ctx context.Context, id string) (domain.FriendRequest, error)
	Transition(ctx context.Context, id string, from, to domain.RequestStatus) (bool, error)
	List(ctx context.Context, keep func(domain.FriendRequest) bool) ([]domain.FriendRequest, error)
	DeleteWhere(ctx context.Context, drop func(domain.FriendRequest) bool) (int, error)
}

// RequestsService owns friend-request records and their pending → accepted/rejected transitions.
// It never touches the friendship graph.
type RequestsService struct {
	Requests  RequestsStore
	Users     Identity
	Notifier  FriendRequestNotifier
	Logger    *slog.Logger
	Now       func() time.Time
	Retention time.Duration

	mu sync.Mutex
}

// Send records a pending request from sender to receiver. It is refused when the ids are equal,
// a pending request exists in either direction, or the pair ever had an accepted request.
func (s *RequestsService) Send(ctx context.Context, senderID, receiverID string) (domain.FriendRequest, error) {
	senderID = strings.TrimSpace(senderID)
	receiverID = strings.TrimSpace(receiverID)
	if senderID == "" || receiverID == "" {
		return domain.FriendRequest{}, domain.ErrMissing
	}
	if senderID == receiverID {
		return domain.FriendRequest{}, domain.ErrSelfReference
	}

	req, err := s.create(ctx, senderID, receiverID)
	if err != nil {
		return domain.FriendRequest{}, err
	}

	s.notify(ctx, req)
	return req, nil
}

func (s *RequestsService) create(ctx context.Context, senderID, receiverID string) (domain.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.Requests.List(ctx, func(r domain.FriendRequest) bool {
		return r.Involves(senderID, receiverID)
	})
	if err != nil {
		return domain.FriendRequest{}, fmt.Errorf("list requests: %w", err)
	}
	for _, r := range history {
		switch r.Status {
		case domain.RequestPending:
			return domain.FriendRequest{}, domain.ErrRequestPending
		case domain.RequestAccepted:
			return domain.FriendRequest{}, domain.ErrAlreadyFriends
		}
	}

	req := domain.FriendRequest{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     domain.RequestPending,
		CreatedAt:  nowOr(s.Now).UTC(),
	}
	if err := s.Requests.Create(ctx, req); err != nil {
		return domain.FriendRequest{}, fmt.Errorf("create request: %w", err)
	}
	return req, nil
}

func (s *RequestsService) notify(ctx context.Context, req domain.FriendRequest) {
	if s.Notifier == nil {
		return
	}
	name := displayName(ctx, s.Users, req.SenderID)
	if err := s.Notifier.NotifyFriendRequest(ctx, req.ReceiverID, name); err != nil {
		loggerOr(s.Logger).Warn("friend request notification failed", "err", err, "request_id", req.ID, "user_id", req.ReceiverID)
	}
}

func (s *RequestsService) Accept(ctx context.Context, requestID string) error {
	return s.transition(ctx, requestID, domain.RequestAccepted)
}

func (s *RequestsService) Reject(ctx context.Context, requestID string) error {
	return s.transition(ctx, requestID, domain.RequestRejected)
}

func (s *RequestsService) transition(ctx context.Context, requestID string, to domain.RequestStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	moved, err := s.Requests.Transition(ctx, requestID, domain.RequestPending, to)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrMissing
		}
		return fmt.Errorf("transition request: %w", err)
	}
	if !moved {
		return domain.ErrNotPending
	}
	return nil
}

func (s *RequestsService) Get(ctx context.Context, requestID string) (domain.FriendRequest, error) {
	r, err := s.Requests.Get(ctx, requestID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.FriendRequest{}, domain.ErrMissing
	}
	return r, err
}

func (s *RequestsService) PendingReceived(ctx context.Context, userID string) ([]domain.FriendRequest, error) {
	return s.Requests.List(ctx, func(r domain.FriendRequest) bool {
		return r.ReceiverID == userID && r.Status == domain.RequestPending
	})
}

func (s *RequestsService) PendingSent(ctx context.Context, userID string) ([]domain.FriendRequest, error) {
	return s.Requests.List(ctx, func(r domain.FriendRequest) bool {
		return r.SenderID == userID && r.Status == domain.RequestPending
	})
}

// SentBy returns every request userID sent, whatever its status.
func (s *RequestsService) SentBy(ctx context.Context, userID string) ([]domain.FriendRequest, error) {
	return s.Requests.List(ctx, func(r domain.FriendRequest) bool {
		return r.SenderID == userID
	})
}

func (s *RequestsService) AllFor(ctx context.Context, userID string) ([]domain.FriendRequest, error) {
	return s.Requests.List(ctx, func(r domain.FriendRequest) bool {
		return r.SenderID == userID || r.ReceiverID == userID
	})
}

func (s *RequestsService) All(ctx context.Context) ([]domain.FriendRequest, error) {
	return s.Requests.List(ctx, nil)
}

func (s *RequestsService) PendingCount(ctx context.Context, userID string) (int, error) {
	pending, err := s.PendingReceived(ctx, userID)
	return len(pending), err
}

// HasPending is direction-specific: only a → b counts.
func (s *RequestsService) HasPending(ctx context.Context, a, b string) (bool, error) {
	found, err := s.Requests.List(ctx, func(r domain.FriendRequest) bool {
		return r.SenderID == a && r.ReceiverID == b && r.Status == domain.RequestPending
	})
	return len(found) > 0, err
}

// AlreadyFriends reports whether any request between a and b, in either direction, was ever
// accepted. It is a historical fact and stays true after the friendship is removed.
func (s *RequestsService) AlreadyFriends(ctx context.Context, a, b string) (bool, error) {
	found, err := s.Requests.List(ctx, func(r domain.FriendRequest) bool {
		return r.Involves(a, b) && r.Status == domain.RequestAccepted
	})
	return len(found) > 0, err
}

// PurgeRejected drops rejected requests created before the retention window.
func (s *RequestsService) PurgeRejected(ctx context.Context) (int, error) {
	retention := s.Retention
	if retention <= 0 {
		retention = DefaultRequestRetention
	}
	cutoff := nowOr(s.Now).Add(-retention)

	s.mu.Lock()
	n, err := s.Requests.DeleteWhere(ctx, func(r domain.FriendRequest) bool {
		return r.Status == domain.RequestRejected && r.CreatedAt.Before(cutoff)
	})
	s.mu.Unlock()
	if err != nil {
		return 0, fmt.Errorf("purge rejected requests: %w", err)
	}

	loggerOr(s.Logger).Info("purged rejected friend requests", "count", n, "cutoff", cutoff)
	return n, nil
}
