package postgres

import (
	"context"
	"fmt"
	"time"

	"socialgraph/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostsStore is the post repository. PostsByAuthor returns posts in insertion order.
type PostsStore struct {
	pool *pgxpool.Pool
}

func NewPostsStore(pool *pgxpool.Pool) *PostsStore {
	return &PostsStore{pool: pool}
}

func (s *PostsStore) CreatePost(ctx context.Context, authorID string, typ domain.PostType, content string) (domain.Post, error) {
	const q = `
		INSERT INTO posts (author_id, type, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	var (
		idUUID    pgtype.UUID
		createdAt time.Time
	)
	err := s.pool.QueryRow(ctx, q, authorID, string(typ), content).Scan(&idUUID, &createdAt)
	if err != nil {
		if isMissingRef(err) {
			return domain.Post{}, domain.ErrNotFound
		}
		return domain.Post{}, fmt.Errorf("create post: %w", err)
	}
	return domain.Post{
		ID:        uuidOrEmpty(idUUID),
		AuthorID:  authorID,
		Type:      typ,
		Content:   content,
		CreatedAt: createdAt,
	}, nil
}

// Like records userID's like once and reports whether it was new.
func (s *PostsStore) Like(ctx context.Context, postID, userID string) (bool, error) {
	const q = `
		INSERT INTO post_likes (post_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (post_id, user_id) DO NOTHING
	`
	ct, err := s.pool.Exec(ctx, q, postID, userID)
	if err != nil {
		if isMissingRef(err) {
			return false, domain.ErrNotFound
		}
		return false, fmt.Errorf("like post: %w", err)
	}
	return ct.RowsAffected() == 1, nil
}

// Unlike drops userID's like and reports whether there was one. An unknown post is not found.
func (s *PostsStore) Unlike(ctx context.Context, postID, userID string) (bool, error) {
	const q = `
		WITH target AS (SELECT id FROM posts WHERE id = $1),
		removed AS (
			DELETE FROM post_likes
			WHERE post_id = $1 AND user_id = $2
			RETURNING 1
		)
		SELECT EXISTS (SELECT 1 FROM target), EXISTS (SELECT 1 FROM removed)
	`
	var exists, removed bool
	if err := s.pool.QueryRow(ctx, q, postID, userID).Scan(&exists, &removed); err != nil {
		if isBadID(err) {
			return false, domain.ErrNotFound
		}
		return false, fmt.Errorf("unlike post: %w", err)
	}
	if !exists {
		return false, domain.ErrNotFound
	}
	return removed, nil
}

func (s *PostsStore) PostsByAuthor(ctx context.Context, authorID string) ([]domain.Post, error) {
	const q = `
		SELECT p.id, p.author_id, p.type, p.content, p.created_at,
		       (SELECT count(*) FROM post_likes l WHERE l.post_id = p.id)
		FROM posts p
		WHERE p.author_id = $1
		ORDER BY p.seq ASC
	`

	rows, err := s.pool.Query(ctx, q, authorID)
	if err != nil {
		if isBadID(err) {
			return []domain.Post{}, nil
		}
		return nil, fmt.Errorf("list posts: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Post, error) {
		var (
			p        domain.Post
			idUUID   pgtype.UUID
			authUUID pgtype.UUID
			typ      string
			likes    int64
		)
		if err := row.Scan(&idUUID, &authUUID, &typ, &p.Content, &p.CreatedAt, &likes); err != nil {
			return domain.Post{}, err
		}
		p.ID = uuidOrEmpty(idUUID)
		p.AuthorID = uuidOrEmpty(authUUID)
		p.Type = domain.PostType(typ)
		p.LikeCount = int(likes)
		return p, nil
	})
	if err != nil {
		if isBadID(err) {
			return []domain.Post{}, nil
		}
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return out, nil
}
