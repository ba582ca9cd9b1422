package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"socialgraph/internal/domain"
)

// FriendshipsStore holds directed adjacency edges. A friendship is the pair a → b and b → a.
type FriendshipsStore interface {
	Insert(ctx context.Context, from, to string) (bool, error)
	Remove(ctx context.Context, from, to string) (bool, error)
	Has(ctx context.Context, from, to string) (bool, error)
	List(ctx context.Context, userID string) ([]string, error)
}

// FriendRequests is the slice of RequestsService the friendship graph drives.
type FriendRequests interface {
	Send(ctx context.Context, senderID, receiverID string) (domain.FriendRequest, error)
	Accept(ctx context.Context, requestID string) error
	Reject(ctx context.Context, requestID string) error
	PendingReceived(ctx context.Context, userID string) ([]domain.FriendRequest, error)
	PendingSent(ctx context.Context, userID string) ([]domain.FriendRequest, error)
}

type FriendsService struct {
	Requests    FriendRequests
	Friendships FriendshipsStore
	Users       Identity
	Logger      *slog.Logger

	mu sync.Mutex
}

// withTx serializes compound graph mutations. Accept relies on it to make both edge insertions
// and the request transition one unit.
func (s *FriendsService) withTx(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

// SendRequest checks the live graph, then hands off to the request lifecycle.
func (s *FriendsService) SendRequest(ctx context.Context, fromID, toID string) (domain.FriendRequest, error) {
	fromID, toID, err := normalizePair(fromID, toID)
	if err != nil {
		return domain.FriendRequest{}, err
	}
	if fromID == toID {
		return domain.FriendRequest{}, domain.ErrSelfReference
	}

	var out domain.FriendRequest
	err = s.withTx(func() error {
		friends, err := s.AreFriends(ctx, fromID, toID)
		if err != nil {
			return err
		}
		if friends {
			return domain.ErrAlreadyFriends
		}
		out, err = s.Requests.Send(ctx, fromID, toID)
		return err
	})
	return out, err
}

// normalizePair trims both ids and refuses empty ones.
func normalizePair(a, b string) (string, string, error) {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" {
		return "", "", domain.ErrMissing
	}
	return a, b, nil
}

// Accept resolves requester's pending request to recipient and links both users.
func (s *FriendsService) Accept(ctx context.Context, recipientID, requesterID string) error {
	recipientID, requesterID, err := normalizePair(recipientID, requesterID)
	if err != nil {
		return err
	}
	return s.withTx(func() error {
		req, err := s.findPending(ctx, recipientID, requesterID)
		if err != nil {
			return err
		}
		added, err := s.link(ctx, recipientID, requesterID)
		if err != nil {
			return err
		}
		if err := s.Requests.Accept(ctx, req.ID); err != nil {
			s.unlink(ctx, added)
			return err
		}
		loggerOr(s.Logger).Debug("friend request accepted", "request_id", req.ID, "recipient_id", recipientID, "requester_id", requesterID)
		return nil
	})
}

func (s *FriendsService) Decline(ctx context.Context, recipientID, requesterID string) error {
	recipientID, requesterID, err := normalizePair(recipientID, requesterID)
	if err != nil {
		return err
	}
	return s.withTx(func() error {
		req, err := s.findPending(ctx, recipientID, requesterID)
		if err != nil {
			return err
		}
		return s.Requests.Reject(ctx, req.ID)
	})
}

func (s *FriendsService) findPending(ctx context.Context, recipientID, requesterID string) (domain.FriendRequest, error) {
	pending, err := s.Requests.PendingReceived(ctx, recipientID)
	if err != nil {
		return domain.FriendRequest{}, err
	}
	for _, r := range pending {
		if r.SenderID == requesterID {
			return r, nil
		}
	}
	return domain.FriendRequest{}, domain.ErrNoPending
}

type edge struct{ from, to string }

// link inserts both directed edges and returns the ones that were new. If an insert fails, the
// edges it already added are removed again.
func (s *FriendsService) link(ctx context.Context, a, b string) ([]edge, error) {
	var added []edge
	for _, e := range []edge{{a, b}, {b, a}} {
		ok, err := s.Friendships.Insert(ctx, e.from, e.to)
		if err != nil {
			s.unlink(ctx, added)
			return nil, fmt.Errorf("insert friendship edge: %w", err)
		}
		if ok {
			added = append(added, e)
		}
	}
	return added, nil
}

// unlink removes exactly the given edges. Edges that existed before link stay in place.
func (s *FriendsService) unlink(ctx context.Context, edges []edge) {
	for _, e := range edges {
		if _, err := s.Friendships.Remove(ctx, e.from, e.to); err != nil {
			loggerOr(s.Logger).Error("undo friendship edge failed", "err", err, "from", e.from, "to", e.to)
		}
	}
}

// RemoveFriend drops both directions independently. It succeeds when either edge existed, so it
// can succeed for a pair AreFriends already reported as not friends.
func (s *FriendsService) RemoveFriend(ctx context.Context, userID, friendID string) error {
	userID, friendID, err := normalizePair(userID, friendID)
	if err != nil {
		return err
	}
	return s.withTx(func() error {
		a, err := s.Friendships.Remove(ctx, userID, friendID)
		if err != nil {
			return fmt.Errorf("remove friendship edge: %w", err)
		}
		b, err := s.Friendships.Remove(ctx, friendID, userID)
		if err != nil {
			return fmt.Errorf("remove friendship edge: %w", err)
		}
		if !a && !b {
			return domain.ErrNotFriends
		}
		return nil
	})
}

// AreFriends requires both directed edges.
func (s *FriendsService) AreFriends(ctx context.Context, a, b string) (bool, error) {
	ab, err := s.Friendships.Has(ctx, a, b)
	if err != nil || !ab {
		return false, err
	}
	return s.Friendships.Has(ctx, b, a)
}

// FriendsOf returns a snapshot of userID's adjacency in insertion order.
func (s *FriendsService) FriendsOf(ctx context.Context, userID string) ([]string, error) {
	return s.Friendships.List(ctx, userID)
}

func (s *FriendsService) Overview(ctx context.Context, userID string) (domain.FriendsOverview, error) {
	friendIDs, err := s.FriendsOf(ctx, userID)
	if err != nil {
		return domain.FriendsOverview{}, err
	}
	incoming, err := s.Requests.PendingReceived(ctx, userID)
	if err != nil {
		return domain.FriendsOverview{}, err
	}
	outgoing, err := s.Requests.PendingSent(ctx, userID)
	if err != nil {
		return domain.FriendsOverview{}, err
	}

	out := domain.FriendsOverview{
		Friends:  make([]domain.UserSummary, 0, len(friendIDs)),
		Incoming: make([]domain.RequestSummary, 0, len(incoming)),
		Outgoing: make([]domain.RequestSummary, 0, len(outgoing)),
	}
	for _, id := range friendIDs {
		out.Friends = append(out.Friends, domain.UserSummary{ID: id, DisplayName: displayName(ctx, s.Users, id)})
	}
	for _, r := range incoming {
		out.Incoming = append(out.Incoming, s.requestSummary(ctx, r, r.SenderID))
	}
	for _, r := range outgoing {
		out.Outgoing = append(out.Outgoing, s.requestSummary(ctx, r, r.ReceiverID))
	}
	return out, nil
}

func (s *FriendsService) requestSummary(ctx context.Context, r domain.FriendRequest, otherID string) domain.RequestSummary {
	return domain.RequestSummary{
		ID:        r.ID,
		User:      domain.UserSummary{ID: otherID, DisplayName: displayName(ctx, s.Users, otherID)},
		CreatedAt: r.CreatedAt,
	}
}
