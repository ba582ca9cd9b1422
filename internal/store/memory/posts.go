package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"socialgraph/internal/domain"
)

type postRow struct {
	post  domain.Post
	likes domain.IDSet
}

func clonePostRow(r postRow) postRow {
	r.likes = r.likes.Clone()
	return r
}

// PostsStore is the in-process post repository. Posts of one author come back in creation order.
type PostsStore struct {
	t   *table[postRow]
	Now func() time.Time
}

func NewPostsStore() *PostsStore {
	return &PostsStore{t: newTable(clonePostRow), Now: time.Now}
}

func (s *PostsStore) CreatePost(_ context.Context, authorID string, typ domain.PostType, content string) (domain.Post, error) {
	p := domain.Post{
		ID:        uuid.NewString(),
		AuthorID:  authorID,
		Type:      typ,
		Content:   content,
		CreatedAt: s.Now().UTC(),
	}
	if err := s.t.insert(p.ID, postRow{post: p, likes: domain.NewIDSet()}); err != nil {
		return domain.Post{}, err
	}
	return p, nil
}

// Like records userID's like once and reports whether it was new.
func (s *PostsStore) Like(_ context.Context, postID, userID string) (bool, error) {
	added := false
	found, err := s.t.update(postID, func(r postRow) (postRow, error) {
		added = r.likes.Add(userID)
		return r, nil
	})
	if err != nil {
		return false, err
	}
	if !found {
		return false, domain.ErrNotFound
	}
	return added, nil
}

// Unlike drops userID's like and reports whether there was one.
func (s *PostsStore) Unlike(_ context.Context, postID, userID string) (bool, error) {
	removed := false
	found, err := s.t.update(postID, func(r postRow) (postRow, error) {
		removed = r.likes.Remove(userID)
		return r, nil
	})
	if err != nil {
		return false, err
	}
	if !found {
		return false, domain.ErrNotFound
	}
	return removed, nil
}

func (s *PostsStore) PostsByAuthor(_ context.Context, authorID string) ([]domain.Post, error) {
	rows := s.t.list(func(r postRow) bool { return r.post.AuthorID == authorID })
	out := make([]domain.Post, 0, len(rows))
	for _, r := range rows {
		p := r.post
		p.LikeCount = r.likes.Len()
		out = append(out, p)
	}
	return out, nil
}
