package postgres

import (
	"context"
	"fmt"

	"github.com/bytespace-io/bytespace/internal/domain/user"
)

const userColumns = `id, username, name, password_hash, super_admin, enabled, created_at, updated_at`

func scanUser(row scannable) (user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Username, &u.Name, &u.PasswordHash,
		&u.SuperAdmin, &u.Enabled, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (s *Store) CreateUser(ctx context.Context, u *user.User) error {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (id, username, name, password_hash, super_admin, enabled)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		u.ID, u.Username, u.Name, u.PasswordHash, u.SuperAdmin, u.Enabled)

	if err := row.Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		return conflictWrap(err, "create user %s", u.Username)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*user.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)

	u, err := scanUser(row)
	if err != nil {
		return nil, notFoundWrap(err, "get user %s", id)
	}
	return &u, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*user.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username)

	u, err := scanUser(row)
	if err != nil {
		return nil, notFoundWrap(err, "get user by username %s", username)
	}
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]user.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return orEmpty(users), rows.Err()
}

func (s *Store) UpdateUser(ctx context.Context, u *user.User) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE users
		SET name = $2, password_hash = $3, super_admin = $4, enabled = $5, updated_at = now()
		WHERE id = $1`,
		u.ID, u.Name, u.PasswordHash, u.SuperAdmin, u.Enabled)
	return execExpectOne(tag, err, "update user %s", u.ID)
}
