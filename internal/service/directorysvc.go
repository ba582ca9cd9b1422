package service

import (
	"context"
	"errors"
	"strings"

	"socialgraph/internal/domain"
)

type UsersStore interface {
	CreateUser(ctx context.Context, displayName string) (domain.User, error)
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	SearchUsers(ctx context.Context, q string, limit int, excludeUserID string) ([]domain.UserSummary, error)
}

type PostsStore interface {
	CreatePost(ctx context.Context, authorID string, typ domain.PostType, content string) (domain.Post, error)
	Like(ctx context.Context, postID, userID string) (bool, error)
	Unlike(ctx context.Context, postID, userID string) (bool, error)
}

// DirectoryService is the write surface of the identity and post collaborators.
type DirectoryService struct {
	Users UsersStore
	Posts PostsStore
}

func (s *DirectoryService) CreateUser(ctx context.Context, displayName string) (domain.User, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return domain.User{}, domain.NewValidationError(map[string]string{"display_name": "required"})
	}
	if len(displayName) > 48 {
		return domain.User{}, domain.NewValidationError(map[string]string{"display_name": "must be 48 characters or less"})
	}
	for _, r := range displayName {
		if r < 32 {
			return domain.User{}, domain.NewValidationError(map[string]string{"display_name": "contains invalid characters"})
		}
	}
	return s.Users.CreateUser(ctx, displayName)
}

func (s *DirectoryService) GetUser(ctx context.Context, id string) (domain.User, error) {
	u, err := s.Users.GetUserByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, domain.ErrMissing
	}
	return u, err
}

// SearchUsers matches display names case-insensitively. The query needs three characters.
func (s *DirectoryService) SearchUsers(ctx context.Context, q string, limit int, excludeUserID string) ([]domain.UserSummary, error) {
	q = strings.TrimSpace(q)
	if len(q) < 3 {
		return nil, domain.NewValidationError(map[string]string{"q": "must be at least 3 characters"})
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.Users.SearchUsers(ctx, q, limit, excludeUserID)
}

func (s *DirectoryService) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.Users.GetUserByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *DirectoryService) CreatePost(ctx context.Context, authorID, typ, content string) (domain.Post, error) {
	postType, ok := domain.ParsePostType(typ)
	if !ok {
		return domain.Post{}, domain.NewValidationError(map[string]string{"type": "must be TEXT, IMAGE or VIDEO"})
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Post{}, domain.NewValidationError(map[string]string{"content": "required"})
	}
	if len(content) > 2000 {
		return domain.Post{}, domain.NewValidationError(map[string]string{"content": "must be 2000 characters or less"})
	}
	p, err := s.Posts.CreatePost(ctx, authorID, postType, content)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Post{}, domain.ErrMissing
	}
	return p, err
}

// LikePost reports whether the like was new.
func (s *DirectoryService) LikePost(ctx context.Context, postID, userID string) (bool, error) {
	added, err := s.Posts.Like(ctx, postID, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, domain.ErrMissing
	}
	return added, err
}

// UnlikePost reports whether userID had liked the post.
func (s *DirectoryService) UnlikePost(ctx context.Context, postID, userID string) (bool, error) {
	removed, err := s.Posts.Unlike(ctx, postID, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, domain.ErrMissing
	}
	return removed, err
}
