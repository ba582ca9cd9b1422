package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"socialgraph/internal/domain"
	"socialgraph/internal/notifications"
	"socialgraph/internal/store/memory"
)

type sentPush struct {
	token string
	msg   notifications.Message
}

type stubPushSender struct {
	sent    []sentPush
	invalid map[string]bool
	err     error
}

func (s *stubPushSender) Send(ctx context.Context, token string, msg notifications.Message) error {
	s.sent = append(s.sent, sentPush{token: token, msg: msg})
	if s.invalid[token] {
		return notifications.ErrInvalidToken
	}
	return s.err
}

func newNotificationService(sender PushSender) (*NotificationService, *memory.TokensStore) {
	tokens := memory.NewTokensStore()
	return &NotificationService{
		Inbox:  memory.NewInboxStore(),
		Tokens: tokens,
		Sender: sender,
		Now:    func() time.Time { return time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC) },
	}, tokens
}

func TestNotificationRegisterTokenValidatesPlatform(t *testing.T) {
	svc, _ := newNotificationService(nil)
	ctx := context.Background()

	_, err := svc.RegisterToken(ctx, "u1", "tok", "windows")
	expectValidation(t, err)
	_, err = svc.RegisterToken(ctx, "u1", " ", "ios")
	expectValidation(t, err)

	got, err := svc.RegisterToken(ctx, "u1", "tok", " iOS ")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if got.Platform != "ios" || got.CreatedAt.IsZero() {
		t.Fatalf("unexpected token: %+v", got)
	}
}

func TestNotifyFriendRequestStoresAndPushes(t *testing.T) {
	sender := &stubPushSender{}
	svc, _ := newNotificationService(sender)
	ctx := context.Background()
	_, _ = svc.RegisterToken(ctx, "u1", "ios-token", "ios")
	_, _ = svc.RegisterToken(ctx, "u1", "android-token", "android")

	if err := svc.NotifyFriendRequest(ctx, "u1", "Ana"); err != nil {
		t.Fatalf("notify: %v", err)
	}

	inbox, _ := svc.List(ctx, "u1", false)
	if len(inbox) != 1 || inbox[0].Message != "Ana sent you a friend request." || inbox[0].Type != domain.NotificationFriendRequest {
		t.Fatalf("unexpected inbox: %+v", inbox)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("expected 2 pushes, got %d", len(sender.sent))
	}
	for _, p := range sender.sent {
		switch p.token {
		case "ios-token":
			if p.msg.Notification == nil || p.msg.Notification.Title != "Friend request" {
				t.Fatalf("expected alert for ios, got %+v", p.msg)
			}
		case "android-token":
			if p.msg.Notification != nil {
				t.Fatalf("expected data-only for android, got %+v", p.msg)
			}
		}
		if p.msg.Data["display_name"] != "Ana" {
			t.Fatalf("unexpected data: %v", p.msg.Data)
		}
	}
}

func TestNotifyFriendRequestDropsInvalidTokens(t *testing.T) {
	sender := &stubPushSender{invalid: map[string]bool{"stale": true}}
	svc, tokens := newNotificationService(sender)
	ctx := context.Background()
	_, _ = svc.RegisterToken(ctx, "u1", "stale", "android")
	_, _ = svc.RegisterToken(ctx, "u1", "fresh", "android")

	if err := svc.NotifyFriendRequest(ctx, "u1", "Ana"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	left, _ := tokens.ListTokens(ctx, "u1")
	if len(left) != 1 || left[0].Token != "fresh" {
		t.Fatalf("unexpected tokens: %+v", left)
	}
}

func TestNotifyFriendRequestSendFailureIsNotFatal(t *testing.T) {
	sender := &stubPushSender{err: errors.New("unavailable")}
	svc, tokens := newNotificationService(sender)
	ctx := context.Background()
	_, _ = svc.RegisterToken(ctx, "u1", "tok", "android")

	if err := svc.NotifyFriendRequest(ctx, "u1", ""); err != nil {
		t.Fatalf("notify: %v", err)
	}
	left, _ := tokens.ListTokens(ctx, "u1")
	if len(left) != 1 {
		t.Fatal("token dropped on a transient failure")
	}
	inbox, _ := svc.List(ctx, "u1", false)
	if inbox[0].Message != domain.UnknownUserName+" sent you a friend request." {
		t.Fatalf("unexpected message %q", inbox[0].Message)
	}
}

func TestNotificationMarkAllRead(t *testing.T) {
	svc, _ := newNotificationService(nil)
	ctx := context.Background()
	_ = svc.NotifyFriendRequest(ctx, "u1", "Ana")
	_ = svc.NotifyFriendRequest(ctx, "u1", "Ben")
	_ = svc.NotifyFriendRequest(ctx, "u2", "Ana")

	n, _ := svc.UnreadCount(ctx, "u1")
	if n != 2 {
		t.Fatalf("expected 2 unread, got %d", n)
	}
	marked, err := svc.MarkAllRead(ctx, "u1")
	if err != nil || marked != 2 {
		t.Fatalf("mark all read: %d %v", marked, err)
	}
	n, _ = svc.UnreadCount(ctx, "u1")
	if n != 0 {
		t.Fatalf("expected 0 unread, got %d", n)
	}
	other, _ := svc.UnreadCount(ctx, "u2")
	if other != 1 {
		t.Fatalf("expected u2 untouched, got %d", other)
	}
}

func TestRequestSendDeliversThroughNotificationService(t *testing.T) {
	f := newFixture(t)
	svc, _ := newNotificationService(nil)
	f.requests.Notifier = svc

	if _, err := f.friends.SendRequest(context.Background(), "A", "B"); err != nil {
		t.Fatalf("send: %v", err)
	}
	inbox, _ := svc.List(context.Background(), "B", true)
	if len(inbox) != 1 || inbox[0].Message != "User A sent you a friend request." {
		t.Fatalf("unexpected inbox: %+v", inbox)
	}
}
