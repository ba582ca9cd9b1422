package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"socialgraph/internal/domain"
	"socialgraph/internal/notifications"
)

type NotificationTokensStore interface {
	UpsertToken(ctx context.Context, token domain.NotificationToken) (domain.NotificationToken, error)
	DeleteToken(ctx context.Context, userID, token string) error
	ListTokens(ctx context.Context, userID string) ([]domain.NotificationToken, error)
}

type InboxStore interface {
	Add(ctx context.Context, n domain.Notification) error
	ListForUser(ctx context.Context, userID string, unreadOnly bool) ([]domain.Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int, error)
}

type PushSender interface {
	Send(ctx context.Context, token string, msg notifications.Message) error
}

// NotificationService stores an inbox entry for every notice and pushes it to the recipient's
// registered devices when a sender is configured.
type NotificationService struct {
	Inbox  InboxStore
	Tokens NotificationTokensStore
	Sender PushSender
	Logger *slog.Logger
	Now    func() time.Time
}

func (s *NotificationService) RegisterToken(ctx context.Context, userID, token, platform string) (domain.NotificationToken, error) {
	if s.Tokens == nil {
		return domain.NotificationToken{}, errors.New("notifications unavailable")
	}
	token = strings.TrimSpace(token)
	platform = strings.TrimSpace(strings.ToLower(platform))
	if token == "" || platform == "" {
		return domain.NotificationToken{}, domain.NewValidationError(map[string]string{"token": "required", "platform": "required"})
	}
	switch platform {
	case "android", "ios":
	default:
		return domain.NotificationToken{}, domain.NewValidationError(map[string]string{"platform": "must be ios or android"})
	}
	when := nowOr(s.Now).UTC().Truncate(time.Millisecond)
	return s.Tokens.UpsertToken(ctx, domain.NotificationToken{
		UserID:    userID,
		Token:     token,
		Platform:  platform,
		UpdatedAt: when,
	})
}

func (s *NotificationService) DeleteToken(ctx context.Context, userID, token string) error {
	if s.Tokens == nil {
		return errors.New("notifications unavailable")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.NewValidationError(map[string]string{"token": "required"})
	}
	return s.Tokens.DeleteToken(ctx, userID, token)
}

func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool) ([]domain.Notification, error) {
	if s.Inbox == nil {
		return []domain.Notification{}, nil
	}
	out, err := s.Inbox.ListForUser(ctx, userID, unreadOnly)
	if out == nil && err == nil {
		out = []domain.Notification{}
	}
	return out, err
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	unread, err := s.List(ctx, userID, true)
	return len(unread), err
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int, error) {
	if s.Inbox == nil {
		return 0, nil
	}
	return s.Inbox.MarkAllRead(ctx, userID)
}

// NotifyFriendRequest records the notice and fans it out to toUserID's devices.
func (s *NotificationService) NotifyFriendRequest(ctx context.Context, toUserID, fromDisplayName string) error {
	display := displayOrUnknown(fromDisplayName)
	return s.deliver(ctx, notice{
		userID: toUserID,
		kind:   domain.NotificationFriendRequest,
		title:  "Friend request",
		body:   display + " sent you a friend request.",
		data:   map[string]string{"display_name": display},
	})
}

// NotifyMessage tells toUserID about a new direct message.
func (s *NotificationService) NotifyMessage(ctx context.Context, toUserID, fromDisplayName, messageID string) error {
	display := displayOrUnknown(fromDisplayName)
	return s.deliver(ctx, notice{
		userID:    toUserID,
		kind:      domain.NotificationMessage,
		title:     "New message",
		body:      display + " sent you a message.",
		relatedID: messageID,
		data:      map[string]string{"display_name": display, "message_id": messageID},
	})
}

type notice struct {
	userID    string
	kind      string
	title     string
	body      string
	relatedID string
	data      map[string]string
}

func displayOrUnknown(name string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return domain.UnknownUserName
}

// deliver stores n in the inbox and pushes it to the user's devices. Push failures are logged; an
// invalid device token is dropped.
func (s *NotificationService) deliver(ctx context.Context, n notice) error {
	logger := loggerOr(s.Logger)

	if s.Inbox != nil {
		entry := domain.Notification{
			ID:        uuid.NewString(),
			UserID:    n.userID,
			Type:      n.kind,
			Title:     n.title,
			Message:   n.body,
			RelatedID: n.relatedID,
			CreatedAt: nowOr(s.Now).UTC(),
		}
		if err := s.Inbox.Add(ctx, entry); err != nil {
			return fmt.Errorf("store notification: %w", err)
		}
	}

	if s.Tokens == nil || s.Sender == nil {
		return nil
	}
	tokens, err := s.Tokens.ListTokens(ctx, n.userID)
	if err != nil {
		logger.Error("notifications: list tokens failed", "err", err, "user_id", n.userID)
		return err
	}

	payload := map[string]string{"type": n.kind}
	for k, v := range n.data {
		payload[k] = v
	}
	dataOnlyMsg := notifications.Message{Data: payload}
	iosAlertMsg := notifications.Message{
		Data:         payload,
		Notification: &notifications.Notification{Title: n.title, Body: n.body},
	}

	for _, token := range tokens {
		msg := dataOnlyMsg
		if strings.TrimSpace(strings.ToLower(token.Platform)) == "ios" {
			msg = iosAlertMsg
		}
		if err := s.Sender.Send(ctx, token.Token, msg); err != nil {
			if errors.Is(err, notifications.ErrInvalidToken) {
				if delErr := s.Tokens.DeleteToken(ctx, n.userID, token.Token); delErr != nil {
					logger.Error("notifications: delete invalid token failed", "err", delErr, "user_id", n.userID)
				}
				continue
			}
			logger.Error("notifications: send failed", "err", err, "user_id", n.userID, "type", n.kind)
		}
	}
	return nil
}
