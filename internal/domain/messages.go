package domain

import (
	"fmt"
	"time"
)

// GroupMessage is a chat line posted to a group. EditedAt is set once the sender rewrites it.
type GroupMessage struct {
	ID       string     `json:"id"`
	GroupID  string     `json:"group_id"`
	SenderID string     `json:"sender_id"`
	Content  string     `json:"content"`
	SentAt   time.Time  `json:"sent_at"`
	EditedAt *time.Time `json:"edited_at,omitempty"`
}

func (m GroupMessage) Clone() GroupMessage {
	if m.EditedAt != nil {
		t := *m.EditedAt
		m.EditedAt = &t
	}
	return m
}

// DirectMessage is a private message between two friends.
type DirectMessage struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Content    string    `json:"content"`
	Read       bool      `json:"read"`
	SentAt     time.Time `json:"sent_at"`
}

// Involves reports whether userID sent or received m.
func (m DirectMessage) Involves(userID string) bool {
	return m.SenderID == userID || m.ReceiverID == userID
}

// Between reports whether m was exchanged by a and b, in either direction.
func (m DirectMessage) Between(a, b string) bool {
	return (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a)
}

type GroupChatStats struct {
	Empty       bool      `json:"empty"`
	Message     string    `json:"message,omitempty"`
	Total       int       `json:"total"`
	ActiveUsers int       `json:"active_users"`
	First       time.Time `json:"first,omitempty"`
	Last        time.Time `json:"last,omitempty"`
}

func (s GroupChatStats) String() string {
	if s.Empty {
		return s.Message
	}
	return fmt.Sprintf("Total messages: %d\nActive users: %d\nFirst message: %s\nLast message: %s",
		s.Total, s.ActiveUsers, s.First.Format("02/01/2006 15:04"), s.Last.Format("02/01/2006 15:04"))
}
