package postgres

import (
	"context"
	"errors"
	"fmt"

	"socialgraph/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UsersStore is the identity collaborator backed by the users table.
type UsersStore struct {
	pool *pgxpool.Pool
}

func NewUsersStore(pool *pgxpool.Pool) *UsersStore {
	return &UsersStore{pool: pool}
}

func (s *UsersStore) CreateUser(ctx context.Context, displayName string) (domain.User, error) {
	const q = `
		INSERT INTO users (display_name)
		VALUES ($1)
		RETURNING id, display_name, created_at
	`

	var (
		u         domain.User
		idUUID    pgtype.UUID
		createdTS pgtype.Timestamptz
	)
	if err := s.pool.QueryRow(ctx, q, displayName).Scan(&idUUID, &u.DisplayName, &createdTS); err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	u.ID = uuidOrEmpty(idUUID)
	u.CreatedAt = timestamptzOrZero(createdTS)
	return u, nil
}

func (s *UsersStore) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	const q = `
		SELECT id, display_name, created_at
		FROM users
		WHERE id = $1
	`

	var (
		u         domain.User
		idUUID    pgtype.UUID
		createdTS pgtype.Timestamptz
	)
	err := s.pool.QueryRow(ctx, q, id).Scan(&idUUID, &u.DisplayName, &createdTS)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isBadID(err) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("get user by id: %w", err)
	}
	u.ID = uuidOrEmpty(idUUID)
	u.CreatedAt = timestamptzOrZero(createdTS)
	return u, nil
}

func (s *UsersStore) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.GetUserByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *UsersStore) DisplayName(ctx context.Context, id string) (string, error) {
	u, err := s.GetUserByID(ctx, id)
	if err != nil {
		return "", err
	}
	return u.DisplayName, nil
}

func (s *UsersStore) SearchUsers(ctx context.Context, q string, limit int, excludeUserID string) ([]domain.UserSummary, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	like := "%" + q + "%"
	const query = `
		SELECT id, display_name
		FROM users
		WHERE ($3 = '' OR id::text <> $3)
		  AND display_name ILIKE $1
		ORDER BY created_at ASC
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, like, limit, excludeUserID)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	defer rows.Close()

	out := []domain.UserSummary{}
	for rows.Next() {
		var (
			idUUID pgtype.UUID
			name   pgtype.Text
		)
		if err := rows.Scan(&idUUID, &name); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, domain.UserSummary{ID: uuidOrEmpty(idUUID), DisplayName: textOrEmpty(name)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return out, nil
}
