package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"socialgraph/internal/domain"
)

// FriendLister is the read side of the friendship graph.
type FriendLister interface {
	FriendsOf(ctx context.Context, userID string) ([]string, error)
	AreFriends(ctx context.Context, a, b string) (bool, error)
}

// FeedService builds read-only views of the posts written by a user's current friends.
//
// Posts with equal timestamps keep the order they were gathered in: friends in the order the
// friendship was formed, then each author's posts in repository order. Every sort is stable.
type FeedService struct {
	Friends FriendLister
	Posts   PostRepository
	Users   Identity
	Now     func() time.Time
}

// Feed returns every friend post, newest first.
func (s *FeedService) Feed(ctx context.Context, userID string) ([]domain.Post, error) {
	out := []domain.Post{}
	if userID == "" {
		return out, nil
	}
	friends, err := s.Friends.FriendsOf(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	for _, id := range friends {
		posts, err := s.Posts.PostsByAuthor(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("list posts: %w", err)
		}
		out = append(out, posts...)
	}
	sortRecent(out)
	return out, nil
}

func (s *FeedService) FeedLimit(ctx context.Context, userID string, limit int) ([]domain.Post, error) {
	posts, err := s.Feed(ctx, userID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		return []domain.Post{}, nil
	}
	if len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

// FeedByType keeps posts whose type matches typ case-insensitively.
func (s *FeedService) FeedByType(ctx context.Context, userID, typ string) ([]domain.Post, error) {
	typ = strings.TrimSpace(typ)
	return s.filter(ctx, userID, func(p domain.Post) bool {
		return strings.EqualFold(string(p.Type), typ)
	})
}

func (s *FeedService) FeedMostLiked(ctx context.Context, userID string) ([]domain.Post, error) {
	posts, err := s.Feed(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(posts, func(i, j int) bool { return posts[i].LikeCount > posts[j].LikeCount })
	return posts, nil
}

// FeedFromFriend is empty unless userID and friendID are currently friends.
func (s *FeedService) FeedFromFriend(ctx context.Context, userID, friendID string) ([]domain.Post, error) {
	out := []domain.Post{}
	if userID == "" || friendID == "" {
		return out, nil
	}
	ok, err := s.Friends.AreFriends(ctx, userID, friendID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return out, nil
	}
	posts, err := s.Posts.PostsByAuthor(ctx, friendID)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	out = append(out, posts...)
	sortRecent(out)
	return out, nil
}

// FeedByDateRange keeps posts strictly between start and end.
func (s *FeedService) FeedByDateRange(ctx context.Context, userID string, start, end time.Time) ([]domain.Post, error) {
	return s.filter(ctx, userID, func(p domain.Post) bool {
		return p.CreatedAt.After(start) && p.CreatedAt.Before(end)
	})
}

func (s *FeedService) FeedToday(ctx context.Context, userID string) ([]domain.Post, error) {
	start := startOfDay(nowOr(s.Now))
	return s.FeedByDateRange(ctx, userID, start, start.AddDate(0, 0, 1))
}

// FeedThisWeek covers the calendar week starting on Monday.
func (s *FeedService) FeedThisWeek(ctx context.Context, userID string) ([]domain.Post, error) {
	now := nowOr(s.Now)
	offset := (int(now.Weekday()) + 6) % 7
	start := startOfDay(now).AddDate(0, 0, -offset)
	return s.FeedByDateRange(ctx, userID, start, start.AddDate(0, 0, 7))
}

func (s *FeedService) FeedWithAuthors(ctx context.Context, userID string) ([]domain.FeedPost, error) {
	posts, err := s.Feed(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.withAuthors(ctx, posts), nil
}

func (s *FeedService) withAuthors(ctx context.Context, posts []domain.Post) []domain.FeedPost {
	names := make(map[string]string)
	out := make([]domain.FeedPost, 0, len(posts))
	for _, p := range posts {
		name, ok := names[p.AuthorID]
		if !ok {
			name = displayName(ctx, s.Users, p.AuthorID)
			names[p.AuthorID] = name
		}
		out = append(out, domain.FeedPost{Post: p, AuthorName: name})
	}
	return out
}

// Stats counts the feed by type and likes. The most liked post is the first one reaching the
// highest count, and only posts with at least one like qualify.
func (s *FeedService) Stats(ctx context.Context, userID string) (domain.FeedStats, error) {
	friends, err := s.Friends.FriendsOf(ctx, userID)
	if err != nil {
		return domain.FeedStats{}, fmt.Errorf("list friends: %w", err)
	}
	if len(friends) == 0 {
		return domain.FeedStats{
			Empty:   true,
			Message: "You have no friends yet. Add some friends to see posts in your feed!",
		}, nil
	}

	posts, err := s.Feed(ctx, userID)
	if err != nil {
		return domain.FeedStats{}, err
	}
	if len(posts) == 0 {
		return domain.FeedStats{
			Empty:   true,
			Friends: len(friends),
			Message: fmt.Sprintf("You have %d friends, but none of them has posted yet.", len(friends)),
		}, nil
	}

	out := domain.FeedStats{
		Friends:    len(friends),
		TotalPosts: len(posts),
		ByType:     make(map[domain.PostType]int),
	}
	var best *domain.Post
	for i := range posts {
		p := &posts[i]
		out.ByType[p.Type]++
		out.TotalLikes += p.LikeCount
		if best == nil || p.LikeCount > best.LikeCount {
			best = p
		}
	}
	if best != nil && best.LikeCount > 0 {
		fp := domain.FeedPost{Post: *best, AuthorName: displayName(ctx, s.Users, best.AuthorID)}
		out.MostLiked = &fp
	}
	return out, nil
}

func (s *FeedService) filter(ctx context.Context, userID string, keep func(domain.Post) bool) ([]domain.Post, error) {
	posts, err := s.Feed(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := []domain.Post{}
	for _, p := range posts {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func sortRecent(posts []domain.Post) {
	sort.SliceStable(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
