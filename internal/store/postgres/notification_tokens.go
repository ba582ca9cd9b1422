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

// NotificationTokensStore keeps push device tokens. A token belongs to at most one user.
type NotificationTokensStore struct {
	pool *pgxpool.Pool
}

func NewNotificationTokensStore(pool *pgxpool.Pool) *NotificationTokensStore {
	return &NotificationTokensStore{pool: pool}
}

const tokenColumns = `user_id, token, platform, created_at, updated_at`

type tokenRow struct {
	UserID    pgtype.UUID
	Token     string
	Platform  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r tokenRow) toDomain() domain.NotificationToken {
	return domain.NotificationToken{
		UserID:    uuidOrEmpty(r.UserID),
		Token:     r.Token,
		Platform:  r.Platform,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// UpsertToken registers t.Token for t.UserID, moving it away from any previous owner.
func (s *NotificationTokensStore) UpsertToken(ctx context.Context, t domain.NotificationToken) (domain.NotificationToken, error) {
	const q = `
		INSERT INTO notification_tokens (user_id, token, platform, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (token)
		DO UPDATE SET
			user_id = EXCLUDED.user_id,
			platform = EXCLUDED.platform,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + tokenColumns

	rows, err := s.pool.Query(ctx, q, t.UserID, t.Token, t.Platform, t.UpdatedAt)
	if err != nil {
		return domain.NotificationToken{}, fmt.Errorf("upsert notification token: %w", err)
	}
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[tokenRow])
	if err != nil {
		if isMissingRef(err) {
			return domain.NotificationToken{}, domain.ErrNotFound
		}
		return domain.NotificationToken{}, fmt.Errorf("upsert notification token: %w", err)
	}
	return row.toDomain(), nil
}

func (s *NotificationTokensStore) DeleteToken(ctx context.Context, userID, token string) error {
	const q = `DELETE FROM notification_tokens WHERE user_id = $1 AND token = $2`
	if _, err := s.pool.Exec(ctx, q, userID, token); err != nil && !isBadID(err) {
		return fmt.Errorf("delete notification token: %w", err)
	}
	return nil
}

// ListTokens returns userID's tokens, most recently refreshed first.
func (s *NotificationTokensStore) ListTokens(ctx context.Context, userID string) ([]domain.NotificationToken, error) {
	q := `SELECT ` + tokenColumns + ` FROM notification_tokens WHERE user_id = $1 ORDER BY updated_at DESC`

	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list notification tokens: %w", err)
	}
	found, err := pgx.CollectRows(rows, pgx.RowToStructByPos[tokenRow])
	if err != nil {
		if isBadID(err) {
			return []domain.NotificationToken{}, nil
		}
		return nil, fmt.Errorf("list notification tokens: %w", err)
	}
	out := make([]domain.NotificationToken, 0, len(found))
	for _, r := range found {
		out = append(out, r.toDomain())
	}
	return out, nil
}
