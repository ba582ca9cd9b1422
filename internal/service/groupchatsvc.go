package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"socialgraph/internal/domain"
)

type GroupMessagesStore interface {
	Add(ctx context.Context, m domain.GroupMessage) error
	Get(ctx context.Context, id string) (domain.GroupMessage, error)
	Update(ctx context.Context, id string, fn func(*domain.GroupMessage) error) error
	Delete(ctx context.Context, id string, allow func(domain.GroupMessage) error) error
	List(ctx context.Context, keep func(domain.GroupMessage) bool) ([]domain.GroupMessage, error)
	DeleteWhere(ctx context.Context, drop func(domain.GroupMessage) bool) (int, error)
}

// GroupLookup resolves a group for its role checks. GroupsService satisfies it.
type GroupLookup interface {
	Get(ctx context.Context, groupID string) (*domain.Group, error)
}

// GroupChatService is a group's message board. Members post; the sender or anyone who can modify
// the group removes messages; only the sender edits.
type GroupChatService struct {
	Store  GroupMessagesStore
	Groups GroupLookup
	Logger *slog.Logger
	Now    func() time.Time
}

type chatContent struct {
	Content string `json:"content" validate:"required,max=2000"`
}

func cleanContent(content string) (string, error) {
	p := chatContent{Content: strings.TrimSpace(content)}
	if err := validateParams(p); err != nil {
		return "", err
	}
	return p.Content, nil
}

func (s *GroupChatService) group(ctx context.Context, groupID string) (*domain.Group, error) {
	if strings.TrimSpace(groupID) == "" {
		return nil, domain.ErrMissing
	}
	g, err := s.Groups.Get(ctx, groupID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrMissing
	}
	return g, err
}

func (s *GroupChatService) Send(ctx context.Context, groupID, senderID, content string) (domain.GroupMessage, error) {
	content, err := cleanContent(content)
	if err != nil {
		return domain.GroupMessage{}, err
	}
	if senderID == "" {
		return domain.GroupMessage{}, domain.ErrMissing
	}
	g, err := s.group(ctx, groupID)
	if err != nil {
		return domain.GroupMessage{}, err
	}
	if !g.IsMember(senderID) {
		return domain.GroupMessage{}, domain.ErrNotMember
	}

	m := domain.GroupMessage{
		ID:       uuid.NewString(),
		GroupID:  g.ID,
		SenderID: senderID,
		Content:  content,
		SentAt:   nowOr(s.Now).UTC(),
	}
	if err := s.Store.Add(ctx, m); err != nil {
		return domain.GroupMessage{}, err
	}
	return m, nil
}

// CanRead lets members of any group and anyone for public groups read the chat.
func (s *GroupChatService) CanRead(ctx context.Context, groupID, userID string) error {
	g, err := s.group(ctx, groupID)
	if err != nil {
		return err
	}
	if g.Privacy == domain.PrivacyPublic || g.IsMember(userID) {
		return nil
	}
	return domain.ErrNotMember
}

// chronological lists a group's messages oldest first. Equal timestamps keep posting order.
func (s *GroupChatService) chronological(ctx context.Context, groupID string, keep func(domain.GroupMessage) bool) ([]domain.GroupMessage, error) {
	out, err := s.Store.List(ctx, func(m domain.GroupMessage) bool {
		return m.GroupID == groupID && (keep == nil || keep(m))
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.GroupMessage{}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SentAt.Before(out[j].SentAt) })
	return out, nil
}

func (s *GroupChatService) Messages(ctx context.Context, groupID string) ([]domain.GroupMessage, error) {
	return s.chronological(ctx, groupID, nil)
}

// Recent returns the newest limit messages, still oldest first.
func (s *GroupChatService) Recent(ctx context.Context, groupID string, limit int) ([]domain.GroupMessage, error) {
	all, err := s.chronological(ctx, groupID, nil)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		return []domain.GroupMessage{}, nil
	}
	if len(all) <= limit {
		return all, nil
	}
	return all[len(all)-limit:], nil
}

func (s *GroupChatService) ByUser(ctx context.Context, groupID, userID string) ([]domain.GroupMessage, error) {
	return s.chronological(ctx, groupID, func(m domain.GroupMessage) bool { return m.SenderID == userID })
}

// Search matches a case-insensitive substring of the content. A blank term matches nothing.
func (s *GroupChatService) Search(ctx context.Context, groupID, term string) ([]domain.GroupMessage, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return []domain.GroupMessage{}, nil
	}
	return s.chronological(ctx, groupID, func(m domain.GroupMessage) bool {
		return strings.Contains(strings.ToLower(m.Content), term)
	})
}

func (s *GroupChatService) Count(ctx context.Context, groupID string) (int, error) {
	all, err := s.Store.List(ctx, func(m domain.GroupMessage) bool { return m.GroupID == groupID })
	return len(all), err
}

// Edit rewrites the content in place. Only the sender may edit; the message keeps its position.
func (s *GroupChatService) Edit(ctx context.Context, groupID, messageID, userID, content string) (domain.GroupMessage, error) {
	content, err := cleanContent(content)
	if err != nil {
		return domain.GroupMessage{}, err
	}
	var out domain.GroupMessage
	err = s.Store.Update(ctx, messageID, func(m *domain.GroupMessage) error {
		if m.GroupID != groupID {
			return domain.ErrMissing
		}
		if m.SenderID != userID {
			return domain.ErrForbidden
		}
		now := nowOr(s.Now).UTC()
		m.Content = content
		m.EditedAt = &now
		out = m.Clone()
		return nil
	})
	if errors.Is(err, domain.ErrNotFound) {
		return domain.GroupMessage{}, domain.ErrMissing
	}
	return out, err
}

// Delete removes a message for its sender or for an owner or moderator of the group.
func (s *GroupChatService) Delete(ctx context.Context, groupID, messageID, userID string) error {
	if userID == "" {
		return domain.ErrMissing
	}
	g, err := s.group(ctx, groupID)
	if err != nil {
		return err
	}
	err = s.Store.Delete(ctx, messageID, func(m domain.GroupMessage) error {
		if m.GroupID != g.ID {
			return domain.ErrMissing
		}
		if m.SenderID != userID && !g.CanModify(userID) {
			return domain.ErrForbidden
		}
		return nil
	})
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrMissing
	}
	if err == nil {
		loggerOr(s.Logger).Debug("group message deleted", "group_id", g.ID, "message_id", messageID, "by", userID)
	}
	return err
}

// Clear drops every message of the group. Only an owner or moderator may clear.
func (s *GroupChatService) Clear(ctx context.Context, groupID, userID string) (int, error) {
	g, err := s.group(ctx, groupID)
	if err != nil {
		return 0, err
	}
	if !g.CanModify(userID) {
		return 0, domain.ErrForbidden
	}
	n, err := s.Store.DeleteWhere(ctx, func(m domain.GroupMessage) bool { return m.GroupID == g.ID })
	if err == nil {
		loggerOr(s.Logger).Info("group chat cleared", "group_id", g.ID, "by", userID, "count", n)
	}
	return n, err
}

func (s *GroupChatService) Stats(ctx context.Context, groupID string) (domain.GroupChatStats, error) {
	if _, err := s.group(ctx, groupID); err != nil {
		return domain.GroupChatStats{}, err
	}
	all, err := s.chronological(ctx, groupID, nil)
	if err != nil {
		return domain.GroupChatStats{}, err
	}
	if len(all) == 0 {
		return domain.GroupChatStats{Empty: true, Message: "No messages in this group"}, nil
	}
	senders := domain.NewIDSet()
	for _, m := range all {
		senders.Add(m.SenderID)
	}
	return domain.GroupChatStats{
		Total:       len(all),
		ActiveUsers: senders.Len(),
		First:       all[0].SentAt,
		Last:        all[len(all)-1].SentAt,
	}, nil
}
