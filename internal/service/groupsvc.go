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
)

type GroupsStore interface {
	Create(ctx context.Context, g *domain.Group) error
	Get(ctx context.Context, id string) (*domain.Group, error)
	Update(ctx context.Context, id string, fn func(*domain.Group) error) error
	Delete(ctx context.Context, id string, allow func(*domain.Group) error) error
	List(ctx context.Context, keep func(*domain.Group) bool) ([]*domain.Group, error)
}

// GroupsService enforces the owner > moderator > member hierarchy. Every mutation checks and
// applies inside one store Update, so a refused operation leaves the group untouched.
type GroupsService struct {
	Groups GroupsStore
	Users  Identity
	Logger *slog.Logger
	Now    func() time.Time
}

type CreateGroupParams struct {
	Name        string         `json:"name" validate:"required,max=80"`
	Description string         `json:"description" validate:"required,max=500"`
	OwnerID     string         `json:"owner_id" validate:"required"`
	Privacy     domain.Privacy `json:"privacy" validate:"required,oneof=public private"`
}

type EditGroupParams struct {
	Name        string
	Description string
	Privacy     domain.Privacy
}

func (s *GroupsService) Create(ctx context.Context, p CreateGroupParams) (*domain.Group, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	p.OwnerID = strings.TrimSpace(p.OwnerID)
	p.Privacy = domain.Privacy(strings.ToLower(strings.TrimSpace(string(p.Privacy))))
	if err := validateParams(p); err != nil {
		return nil, err
	}

	ok, err := userExists(ctx, s.Users, p.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("lookup owner: %w", err)
	}
	if !ok {
		return nil, domain.NewValidationError(map[string]string{"owner_id": "user not found"})
	}

	g := domain.NewGroup(uuid.NewString(), p.Name, p.Description, p.OwnerID, p.Privacy, nowOr(s.Now).UTC())
	if err := s.Groups.Create(ctx, g); err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}
	loggerOr(s.Logger).Info("group created", "group_id", g.ID, "owner_id", g.OwnerID, "privacy", g.Privacy)
	return g.Clone(), nil
}

// Edit updates the non-empty fields. Owners and moderators may edit.
func (s *GroupsService) Edit(ctx context.Context, groupID, userID string, p EditGroupParams) error {
	name := strings.TrimSpace(p.Name)
	description := strings.TrimSpace(p.Description)
	privacy := domain.Privacy(strings.ToLower(strings.TrimSpace(string(p.Privacy))))
	if privacy != "" && !privacy.Valid() {
		return domain.NewValidationError(map[string]string{"privacy": "must be one of public private"})
	}

	return s.update(ctx, groupID, func(g *domain.Group) error {
		if !g.CanModify(userID) {
			return domain.ErrForbidden
		}
		if name != "" {
			g.Name = name
		}
		if description != "" {
			g.Description = description
		}
		if privacy != "" {
			g.Privacy = privacy
		}
		return nil
	})
}

func (s *GroupsService) Delete(ctx context.Context, groupID, userID string) error {
	err := s.Groups.Delete(ctx, groupID, func(g *domain.Group) error {
		if !g.IsOwner(userID) {
			return domain.ErrNotOwner
		}
		return nil
	})
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrMissing
	}
	if err == nil {
		loggerOr(s.Logger).Info("group deleted", "group_id", groupID, "user_id", userID)
	}
	return err
}

// AddMember lets an owner or moderator add targetID.
func (s *GroupsService) AddMember(ctx context.Context, groupID, targetID, requesterID string) error {
	if err := s.requireUser(ctx, targetID); err != nil {
		return err
	}
	return s.update(ctx, groupID, func(g *domain.Group) error {
		if !g.CanModify(requesterID) {
			return domain.ErrForbidden
		}
		if !g.CanAdd(targetID, time.Time{}) {
			return domain.ErrAlreadyMember
		}
		g.Members.Add(targetID)
		return nil
	})
}

// Join is self-service and only open on public groups.
func (s *GroupsService) Join(ctx context.Context, groupID, userID string) error {
	if err := s.requireUser(ctx, userID); err != nil {
		return err
	}
	return s.update(ctx, groupID, func(g *domain.Group) error {
		if g.Privacy != domain.PrivacyPublic {
			return domain.ErrPrivateGroup
		}
		if !g.CanAdd(userID, time.Time{}) {
			return domain.ErrAlreadyMember
		}
		g.Members.Add(userID)
		return nil
	})
}

// RemoveMember drops targetID from members and moderators. The owner cannot be removed.
func (s *GroupsService) RemoveMember(ctx context.Context, groupID, targetID, requesterID string) error {
	return s.update(ctx, groupID, func(g *domain.Group) error {
		if !g.CanModify(requesterID) {
			return domain.ErrForbidden
		}
		if g.IsOwner(targetID) {
			return domain.ErrOwnerProtected
		}
		if !g.RemoveMember(targetID) {
			return domain.ErrNotMember
		}
		return nil
	})
}

func (s *GroupsService) AddModerator(ctx context.Context, groupID, targetID, requesterID string) error {
	return s.update(ctx, groupID, func(g *domain.Group) error {
		if !g.IsOwner(requesterID) {
			return domain.ErrNotOwner
		}
		if !g.IsMember(targetID) {
			return domain.ErrNotMember
		}
		if !g.Moderators.Add(targetID) {
			return domain.ErrAlreadyMod
		}
		return nil
	})
}

func (s *GroupsService) RemoveModerator(ctx context.Context, groupID, targetID, requesterID string) error {
	return s.update(ctx, groupID, func(g *domain.Group) error {
		if !g.IsOwner(requesterID) {
			return domain.ErrNotOwner
		}
		if g.IsOwner(targetID) {
			return domain.ErrOwnerProtected
		}
		if !g.Moderators.Remove(targetID) {
			return domain.ErrNotModerator
		}
		return nil
	})
}

func (s *GroupsService) Leave(ctx context.Context, groupID, userID string) error {
	return s.update(ctx, groupID, func(g *domain.Group) error {
		if g.IsOwner(userID) {
			return domain.ErrOwnerProtected
		}
		if !g.RemoveMember(userID) {
			return domain.ErrNotMember
		}
		return nil
	})
}

// TransferOwnership hands the group to newOwnerID, who must already be a member. The previous
// owner keeps moderator status.
func (s *GroupsService) TransferOwnership(ctx context.Context, groupID, currentOwnerID, newOwnerID string) error {
	if err := s.requireUser(ctx, newOwnerID); err != nil {
		return err
	}
	err := s.update(ctx, groupID, func(g *domain.Group) error {
		if !g.IsOwner(currentOwnerID) {
			return domain.ErrNotOwner
		}
		if !g.IsMember(newOwnerID) {
			return domain.ErrNotMember
		}
		g.OwnerID = newOwnerID
		g.Moderators.Add(newOwnerID)
		return nil
	})
	if err == nil {
		loggerOr(s.Logger).Info("group ownership transferred", "group_id", groupID, "from", currentOwnerID, "to", newOwnerID)
	}
	return err
}

func (s *GroupsService) update(ctx context.Context, groupID string, fn func(*domain.Group) error) error {
	if groupID == "" {
		return domain.ErrMissing
	}
	err := s.Groups.Update(ctx, groupID, fn)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrMissing
	}
	return err
}

func (s *GroupsService) requireUser(ctx context.Context, userID string) error {
	ok, err := userExists(ctx, s.Users, userID)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if !ok {
		return domain.ErrMissing
	}
	return nil
}

func (s *GroupsService) Get(ctx context.Context, groupID string) (*domain.Group, error) {
	g, err := s.Groups.Get(ctx, groupID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrMissing
	}
	return g, err
}

func (s *GroupsService) IsMember(ctx context.Context, groupID, userID string) bool {
	g, err := s.Groups.Get(ctx, groupID)
	return err == nil && g.IsMember(userID)
}

func (s *GroupsService) IsModerator(ctx context.Context, groupID, userID string) bool {
	g, err := s.Groups.Get(ctx, groupID)
	return err == nil && g.IsModerator(userID)
}

func (s *GroupsService) IsOwner(ctx context.Context, groupID, userID string) bool {
	g, err := s.Groups.Get(ctx, groupID)
	return err == nil && g.IsOwner(userID)
}

func (s *GroupsService) CanModify(ctx context.Context, groupID, userID string) bool {
	g, err := s.Groups.Get(ctx, groupID)
	return err == nil && g.CanModify(userID)
}

// SearchByName matches a case-insensitive substring of the group name.
func (s *GroupsService) SearchByName(ctx context.Context, name string) ([]*domain.Group, error) {
	q := strings.ToLower(strings.TrimSpace(name))
	if q == "" {
		return []*domain.Group{}, nil
	}
	return s.Groups.List(ctx, func(g *domain.Group) bool {
		return strings.Contains(strings.ToLower(g.Name), q)
	})
}

func (s *GroupsService) All(ctx context.Context) ([]*domain.Group, error) {
	return s.Groups.List(ctx, nil)
}

func (s *GroupsService) Public(ctx context.Context) ([]*domain.Group, error) {
	return s.Groups.List(ctx, func(g *domain.Group) bool { return g.Privacy == domain.PrivacyPublic })
}

func (s *GroupsService) ByMember(ctx context.Context, userID string) ([]*domain.Group, error) {
	return s.Groups.List(ctx, func(g *domain.Group) bool { return g.IsMember(userID) })
}

func (s *GroupsService) ByOwner(ctx context.Context, userID string) ([]*domain.Group, error) {
	return s.Groups.List(ctx, func(g *domain.Group) bool { return g.IsOwner(userID) })
}

func (s *GroupsService) ByModerator(ctx context.Context, userID string) ([]*domain.Group, error) {
	return s.Groups.List(ctx, func(g *domain.Group) bool { return g.IsModerator(userID) })
}

func (s *GroupsService) Summary(ctx context.Context, groupID string) (string, error) {
	g, err := s.Get(ctx, groupID)
	if err != nil {
		return "", err
	}
	return g.Summary(), nil
}
