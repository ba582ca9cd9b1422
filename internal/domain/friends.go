package domain

import "time"

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

func (s RequestStatus) IsTerminal() bool {
	return s == RequestAccepted || s == RequestRejected
}

// FriendRequest is immutable except for Status, which moves once from pending to a terminal value.
type FriendRequest struct {
	ID         string        `json:"id"`
	SenderID   string        `json:"sender_id"`
	ReceiverID string        `json:"receiver_id"`
	Status     RequestStatus `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
}

// Involves reports whether the request was exchanged between a and b, in either direction.
func (r FriendRequest) Involves(a, b string) bool {
	return (r.SenderID == a && r.ReceiverID == b) || (r.SenderID == b && r.ReceiverID == a)
}

type UserSummary struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type RequestSummary struct {
	ID        string      `json:"id"`
	User      UserSummary `json:"user"`
	CreatedAt time.Time   `json:"created_at"`
}

type FriendsOverview struct {
	Friends  []UserSummary    `json:"friends"`
	Incoming []RequestSummary `json:"incoming_requests"`
	Outgoing []RequestSummary `json:"outgoing_requests"`
}
