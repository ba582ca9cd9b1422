package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"socialgraph/internal/domain"
)

type EventsStore interface {
	Create(ctx context.Context, e *domain.Event) error
	Get(ctx context.Context, id string) (*domain.Event, error)
	Update(ctx context.Context, id string, fn func(*domain.Event) error) error
	Delete(ctx context.Context, id string, allow func(*domain.Event) error) error
	List(ctx context.Context, keep func(*domain.Event) bool) ([]*domain.Event, error)
}

// EventsService manages dated gatherings. Only the creator edits or deletes an event.
type EventsService struct {
	Events EventsStore
	Users  Identity
	Logger *slog.Logger
	Now    func() time.Time
}

type CreateEventParams struct {
	Name        string    `json:"name" validate:"required,max=80"`
	Description string    `json:"description" validate:"required,max=500"`
	CreatorID   string    `json:"creator_id" validate:"required"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
}

type EditEventParams struct {
	Name        string
	Description string
	StartsAt    time.Time
}

func (s *EventsService) Create(ctx context.Context, p CreateEventParams) (*domain.Event, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	p.CreatorID = strings.TrimSpace(p.CreatorID)
	if err := validateParams(p); err != nil {
		return nil, err
	}
	now := nowOr(s.Now)
	if p.StartsAt.Before(now) {
		return nil, domain.NewValidationError(map[string]string{"starts_at": "must not be in the past"})
	}

	ok, err := userExists(ctx, s.Users, p.CreatorID)
	if err != nil {
		return nil, fmt.Errorf("lookup creator: %w", err)
	}
	if !ok {
		return nil, domain.NewValidationError(map[string]string{"creator_id": "user not found"})
	}

	e := domain.NewEvent(uuid.NewString(), p.Name, p.Description, p.CreatorID, p.StartsAt, now.UTC())
	if err := s.Events.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	loggerOr(s.Logger).Info("event created", "event_id", e.ID, "creator_id", e.OwnerID)
	return e.Clone(), nil
}

func (s *EventsService) Edit(ctx context.Context, eventID, userID string, p EditEventParams) error {
	name := strings.TrimSpace(p.Name)
	description := strings.TrimSpace(p.Description)
	now := nowOr(s.Now)
	return s.update(ctx, eventID, func(e *domain.Event) error {
		if !e.IsOwner(userID) {
			return domain.ErrNotOwner
		}
		if !p.StartsAt.IsZero() && p.StartsAt.Before(now) {
			return domain.ErrEventPast
		}
		if name != "" {
			e.Name = name
		}
		if description != "" {
			e.Description = description
		}
		if !p.StartsAt.IsZero() {
			e.StartsAt = p.StartsAt
		}
		return nil
	})
}

func (s *EventsService) Delete(ctx context.Context, eventID, userID string) error {
	err := s.Events.Delete(ctx, eventID, func(e *domain.Event) error {
		if !e.IsOwner(userID) {
			return domain.ErrNotOwner
		}
		return nil
	})
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrMissing
	}
	return err
}

// Join adds userID while the event is still ahead.
func (s *EventsService) Join(ctx context.Context, eventID, userID string) error {
	ok, err := userExists(ctx, s.Users, userID)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if !ok {
		return domain.ErrMissing
	}
	now := nowOr(s.Now)
	return s.update(ctx, eventID, func(e *domain.Event) error {
		if e.IsMember(userID) {
			return domain.ErrAlreadyMember
		}
		if !e.CanAdd(userID, now) {
			return domain.ErrEventPast
		}
		e.Members.Add(userID)
		return nil
	})
}

func (s *EventsService) Leave(ctx context.Context, eventID, userID string) error {
	return s.update(ctx, eventID, func(e *domain.Event) error {
		if e.IsOwner(userID) {
			return domain.ErrOwnerProtected
		}
		if !e.RemoveMember(userID) {
			return domain.ErrNotMember
		}
		return nil
	})
}

func (s *EventsService) update(ctx context.Context, eventID string, fn func(*domain.Event) error) error {
	if eventID == "" {
		return domain.ErrMissing
	}
	err := s.Events.Update(ctx, eventID, fn)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrMissing
	}
	return err
}

func (s *EventsService) Get(ctx context.Context, eventID string) (*domain.Event, error) {
	e, err := s.Events.Get(ctx, eventID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrMissing
	}
	return e, err
}

// Upcoming returns events that have not started, soonest first.
func (s *EventsService) Upcoming(ctx context.Context) ([]*domain.Event, error) {
	now := nowOr(s.Now)
	out, err := s.Events.List(ctx, func(e *domain.Event) bool { return e.StartsAt.After(now) })
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

// Past returns started events, most recent first.
func (s *EventsService) Past(ctx context.Context) ([]*domain.Event, error) {
	now := nowOr(s.Now)
	out, err := s.Events.List(ctx, func(e *domain.Event) bool { return e.IsPast(now) })
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartsAt.After(out[j].StartsAt) })
	return out, nil
}

func (s *EventsService) ByMember(ctx context.Context, userID string) ([]*domain.Event, error) {
	return s.Events.List(ctx, func(e *domain.Event) bool { return e.IsMember(userID) })
}
