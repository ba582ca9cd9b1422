package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"socialgraph/internal/domain"
)

// Identity answers user lookups for the engine.
type Identity interface {
	Exists(ctx context.Context, userID string) (bool, error)
	DisplayName(ctx context.Context, userID string) (string, error)
}

// PostRepository returns one author's posts in repository order.
type PostRepository interface {
	PostsByAuthor(ctx context.Context, userID string) ([]domain.Post, error)
}

// FriendRequestNotifier delivers friend-request notices. Delivery is fire-and-forget.
type FriendRequestNotifier interface {
	NotifyFriendRequest(ctx context.Context, toUserID, fromDisplayName string) error
}

func displayName(ctx context.Context, users Identity, userID string) string {
	if users == nil {
		return domain.UnknownUserName
	}
	name, err := users.DisplayName(ctx, userID)
	if err != nil || strings.TrimSpace(name) == "" {
		return domain.UnknownUserName
	}
	return name
}

func userExists(ctx context.Context, users Identity, userID string) (bool, error) {
	if users == nil || userID == "" {
		return false, nil
	}
	return users.Exists(ctx, userID)
}

func loggerOr(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}

func nowOr(now func() time.Time) time.Time {
	if now == nil {
		return time.Now()
	}
	return now()
}
