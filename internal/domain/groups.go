package domain

import (
	"fmt"
	"time"
)

type Privacy string

const (
	PrivacyPublic  Privacy = "public"
	PrivacyPrivate Privacy = "private"
)

func (p Privacy) Valid() bool {
	return p == PrivacyPublic || p == PrivacyPrivate
}

type EntityKind string

const (
	KindGroup EntityKind = "group"
	KindEvent EntityKind = "event"
)

// Membership holds the fields groups and events share. The owner is always a member.
type Membership struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     string    `json:"owner_id"`
	Members     IDSet     `json:"members"`
	CreatedAt   time.Time `json:"created_at"`
}

func newMembership(id, name, description, ownerID string, now time.Time) Membership {
	return Membership{
		ID:          id,
		Name:        name,
		Description: description,
		OwnerID:     ownerID,
		Members:     NewIDSet(ownerID),
		CreatedAt:   now,
	}
}

func (m *Membership) IsMember(userID string) bool { return m.Members.Has(userID) }

func (m *Membership) IsOwner(userID string) bool { return m.OwnerID == userID }

func (m *Membership) MemberCount() int { return m.Members.Len() }

func (m Membership) clone() Membership {
	m.Members = m.Members.Clone()
	return m
}

// Joinable is implemented by every membership variant that accepts new members.
type Joinable interface {
	Kind() EntityKind
	CanAdd(userID string, now time.Time) bool
}

type Group struct {
	Membership
	Privacy    Privacy `json:"privacy"`
	Moderators IDSet   `json:"moderators"`
}

func NewGroup(id, name, description, ownerID string, privacy Privacy, now time.Time) *Group {
	return &Group{
		Membership: newMembership(id, name, description, ownerID, now),
		Privacy:    privacy,
		Moderators: NewIDSet(ownerID),
	}
}

func (g *Group) Kind() EntityKind { return KindGroup }

func (g *Group) CanAdd(userID string, _ time.Time) bool {
	return userID != "" && !g.IsMember(userID)
}

func (g *Group) IsModerator(userID string) bool { return g.Moderators.Has(userID) }

func (g *Group) CanModify(userID string) bool {
	return g.IsOwner(userID) || g.IsModerator(userID)
}

// RemoveMember drops userID from members and moderators. The owner is never removed.
func (g *Group) RemoveMember(userID string) bool {
	if g.IsOwner(userID) {
		return false
	}
	g.Moderators.Remove(userID)
	return g.Members.Remove(userID)
}

func (g *Group) Clone() *Group {
	out := *g
	out.Membership = g.Membership.clone()
	out.Moderators = g.Moderators.Clone()
	return &out
}

func (g *Group) Summary() string {
	return fmt.Sprintf("Name: %s\nDescription: %s\nMembers: %d\nModerators: %d\nPrivacy: %s\nCreated: %s",
		g.Name, g.Description, g.MemberCount(), g.Moderators.Len(), g.Privacy,
		g.CreatedAt.Format("02/01/2006 15:04"))
}

type Event struct {
	Membership
	StartsAt time.Time `json:"starts_at"`
}

func NewEvent(id, name, description, creatorID string, startsAt, now time.Time) *Event {
	return &Event{
		Membership: newMembership(id, name, description, creatorID, now),
		StartsAt:   startsAt,
	}
}

func (e *Event) Kind() EntityKind { return KindEvent }

func (e *Event) CanAdd(userID string, now time.Time) bool {
	return userID != "" && !e.IsMember(userID) && !e.IsPast(now)
}

func (e *Event) IsPast(now time.Time) bool { return e.StartsAt.Before(now) }

func (e *Event) RemoveMember(userID string) bool {
	if e.IsOwner(userID) {
		return false
	}
	return e.Members.Remove(userID)
}

func (e *Event) Clone() *Event {
	out := *e
	out.Membership = e.Membership.clone()
	return &out
}

var (
	_ Joinable = (*Group)(nil)
	_ Joinable = (*Event)(nil)
)
