package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"socialgraph/internal/domain"
)

type DirectMessagesStore interface {
	Add(ctx context.Context, m domain.DirectMessage) error
	Get(ctx context.Context, id string) (domain.DirectMessage, error)
	List(ctx context.Context, keep func(domain.DirectMessage) bool) ([]domain.DirectMessage, error)
	MarkRead(ctx context.Context, match func(domain.DirectMessage) bool) (int, error)
	Delete(ctx context.Context, id string, allow func(domain.DirectMessage) error) error
}

// FriendChecker answers the live friendship test. FriendsService satisfies it.
type FriendChecker interface {
	AreFriends(ctx context.Context, a, b string) (bool, error)
}

type MessageNotifier interface {
	NotifyMessage(ctx context.Context, toUserID, fromDisplayName, messageID string) error
}

// MessagesService carries private messages. Only current friends may message each other.
type MessagesService struct {
	Messages DirectMessagesStore
	Friends  FriendChecker
	Users    Identity
	Notifier MessageNotifier
	Logger   *slog.Logger
	Now      func() time.Time
}

func (s *MessagesService) Send(ctx context.Context, senderID, receiverID, content string) (domain.DirectMessage, error) {
	content, err := cleanContent(content)
	if err != nil {
		return domain.DirectMessage{}, err
	}
	senderID, receiverID, err = normalizePair(senderID, receiverID)
	if err != nil {
		return domain.DirectMessage{}, err
	}
	if senderID == receiverID {
		return domain.DirectMessage{}, domain.ErrSelfReference
	}

	friends, err := s.Friends.AreFriends(ctx, senderID, receiverID)
	if err != nil {
		return domain.DirectMessage{}, fmt.Errorf("check friendship: %w", err)
	}
	if !friends {
		return domain.DirectMessage{}, domain.ErrNotFriends
	}
	for _, id := range []string{senderID, receiverID} {
		ok, err := userExists(ctx, s.Users, id)
		if err != nil {
			return domain.DirectMessage{}, fmt.Errorf("lookup user: %w", err)
		}
		if !ok {
			return domain.DirectMessage{}, domain.ErrMissing
		}
	}

	m := domain.DirectMessage{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		SentAt:     nowOr(s.Now).UTC(),
	}
	if err := s.Messages.Add(ctx, m); err != nil {
		return domain.DirectMessage{}, err
	}

	if s.Notifier != nil {
		name := displayName(ctx, s.Users, senderID)
		if err := s.Notifier.NotifyMessage(ctx, receiverID, name, m.ID); err != nil {
			loggerOr(s.Logger).Warn("message notification failed", "err", err, "message_id", m.ID, "receiver_id", receiverID)
		}
	}
	return m, nil
}

func (s *MessagesService) list(ctx context.Context, keep func(domain.DirectMessage) bool) ([]domain.DirectMessage, error) {
	out, err := s.Messages.List(ctx, keep)
	if out == nil && err == nil {
		out = []domain.DirectMessage{}
	}
	return out, err
}

// All returns every message userID sent or received, in sending order.
func (s *MessagesService) All(ctx context.Context, userID string) ([]domain.DirectMessage, error) {
	return s.list(ctx, func(m domain.DirectMessage) bool { return m.Involves(userID) })
}

func (s *MessagesService) Sent(ctx context.Context, userID string) ([]domain.DirectMessage, error) {
	return s.list(ctx, func(m domain.DirectMessage) bool { return m.SenderID == userID })
}

func (s *MessagesService) Received(ctx context.Context, userID string) ([]domain.DirectMessage, error) {
	return s.list(ctx, func(m domain.DirectMessage) bool { return m.ReceiverID == userID })
}

func (s *MessagesService) Conversation(ctx context.Context, a, b string) ([]domain.DirectMessage, error) {
	return s.list(ctx, func(m domain.DirectMessage) bool { return m.Between(a, b) })
}

func (s *MessagesService) UnreadCount(ctx context.Context, userID string) (int, error) {
	unread, err := s.list(ctx, func(m domain.DirectMessage) bool { return m.ReceiverID == userID && !m.Read })
	return len(unread), err
}

// MarkRead flags one message as read. Only its receiver may do so.
func (s *MessagesService) MarkRead(ctx context.Context, messageID, readerID string) error {
	m, err := s.Messages.Get(ctx, messageID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrMissing
	}
	if err != nil {
		return err
	}
	if m.ReceiverID != readerID {
		return domain.ErrForbidden
	}
	_, err = s.Messages.MarkRead(ctx, func(x domain.DirectMessage) bool { return x.ID == m.ID })
	return err
}

// MarkConversationRead flags everything otherID sent to readerID and returns how many changed.
func (s *MessagesService) MarkConversationRead(ctx context.Context, readerID, otherID string) (int, error) {
	return s.Messages.MarkRead(ctx, func(m domain.DirectMessage) bool {
		return m.ReceiverID == readerID && m.SenderID == otherID
	})
}

// Delete removes a message. Only the sender may delete it.
func (s *MessagesService) Delete(ctx context.Context, messageID, userID string) error {
	err := s.Messages.Delete(ctx, messageID, func(m domain.DirectMessage) error {
		if m.SenderID != userID {
			return domain.ErrForbidden
		}
		return nil
	})
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrMissing
	}
	return err
}
