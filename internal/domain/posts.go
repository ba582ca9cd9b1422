package domain

import (
	"fmt"
	"strings"
	"time"
)

type PostType string

const (
	PostText  PostType = "TEXT"
	PostImage PostType = "IMAGE"
	PostVideo PostType = "VIDEO"
)

// ParsePostType matches case-insensitively.
func ParsePostType(s string) (PostType, bool) {
	switch t := PostType(strings.ToUpper(strings.TrimSpace(s))); t {
	case PostText, PostImage, PostVideo:
		return t, true
	default:
		return "", false
	}
}

// Post is owned by the post repository; the engine only reads it.
type Post struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Type      PostType  `json:"type"`
	Content   string    `json:"content"`
	LikeCount int       `json:"like_count"`
	CreatedAt time.Time `json:"created_at"`
}

type FeedPost struct {
	Post
	AuthorName string `json:"author_name"`
}

func (p FeedPost) DisplayText() string {
	return fmt.Sprintf("[%s] %s: %s", p.CreatedAt.Format("02/01/2006 15:04"), p.AuthorName, p.Content)
}

// FeedStats summarizes a user's feed. Empty is set when there is nothing to count, and Message
// then carries the explanation.
type FeedStats struct {
	Empty      bool             `json:"empty"`
	Message    string           `json:"message,omitempty"`
	Friends    int              `json:"friends"`
	TotalPosts int              `json:"total_posts"`
	ByType     map[PostType]int `json:"by_type,omitempty"`
	TotalLikes int              `json:"total_likes"`
	MostLiked  *FeedPost        `json:"most_liked,omitempty"`
}

func (s FeedStats) String() string {
	if s.Empty {
		return s.Message
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Feed stats:\n")
	fmt.Fprintf(&b, "Friends: %d\n", s.Friends)
	fmt.Fprintf(&b, "Total posts: %d\n", s.TotalPosts)
	fmt.Fprintf(&b, "Text posts: %d\n", s.ByType[PostText])
	fmt.Fprintf(&b, "Image posts: %d\n", s.ByType[PostImage])
	fmt.Fprintf(&b, "Video posts: %d\n", s.ByType[PostVideo])
	fmt.Fprintf(&b, "Total likes: %d", s.TotalLikes)
	if s.MostLiked != nil {
		fmt.Fprintf(&b, "\nMost liked post: %s (%d likes)", s.MostLiked.AuthorName, s.MostLiked.LikeCount)
	}
	return b.String()
}
