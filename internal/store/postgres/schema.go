package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		display_name text NOT NULL,
		created_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS posts (
		id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		seq bigserial NOT NULL,
		author_id uuid NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		type text NOT NULL CHECK (type IN ('TEXT', 'IMAGE', 'VIDEO')),
		content text NOT NULL,
		created_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS posts_author_seq_idx ON posts (author_id, seq)`,
	`CREATE TABLE IF NOT EXISTS post_likes (
		post_id uuid NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		user_id uuid NOT NULL,
		created_at timestamptz NOT NULL DEFAULT now(),
		PRIMARY KEY (post_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS notification_tokens (
		id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id uuid NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		token text NOT NULL UNIQUE,
		platform text NOT NULL,
		created_at timestamptz NOT NULL,
		updated_at timestamptz NOT NULL
	)`,
}

// EnsureSchema creates the collaborator tables when they are missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
