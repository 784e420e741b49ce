package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/bytespace-io/bytespace/internal/domain/space"
)

func (s *Store) CreateSpaceAPIKey(ctx context.Context, key *space.APIKey) error {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO space_api_keys (id, space_id, name, prefix, key_hash, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		key.ID, key.SpaceID, key.Name, key.Prefix, key.KeyHash, key.CreatedBy)

	if err := row.Scan(&key.CreatedAt); err != nil {
		return conflictWrap(err, "create api key for space %s", key.SpaceID)
	}
	return nil
}

func (s *Store) ListSpaceAPIKeys(ctx context.Context, spaceID string) ([]space.APIKey, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, space_id, name, prefix, key_hash, created_by, created_at, last_used_at
		FROM space_api_keys WHERE space_id = $1 ORDER BY created_at DESC`, spaceID)
	if err != nil {
		return nil, fmt.Errorf("list api keys for space %s: %w", spaceID, err)
	}
	defer rows.Close()

	var keys []space.APIKey
	for rows.Next() {
		var k space.APIKey
		var lastUsed *time.Time
		if err := rows.Scan(&k.ID, &k.SpaceID, &k.Name, &k.Prefix, &k.KeyHash,
			&k.CreatedBy, &k.CreatedAt, &lastUsed); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		if lastUsed != nil {
			k.LastUsedAt = *lastUsed
		}
		keys = append(keys, k)
	}
	return orEmpty(keys), rows.Err()
}

func (s *Store) DeleteSpaceAPIKey(ctx context.Context, spaceID, keyID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM space_api_keys WHERE id = $1 AND space_id = $2`, keyID, spaceID)
	return execExpectOne(tag, err, "delete api key %s", keyID)
}

func (s *Store) GetSpaceIDByAPIKeyHash(ctx context.Context, keyHash string) (string, error) {
	var spaceID string
	err := s.pool.QueryRow(ctx,
		`SELECT space_id FROM space_api_keys WHERE key_hash = $1`, keyHash).Scan(&spaceID)
	if err != nil {
		return "", notFoundWrap(err, "lookup api key")
	}
	return spaceID, nil
}

func (s *Store) TouchSpaceAPIKey(ctx context.Context, keyHash string, usedAt time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE space_api_keys SET last_used_at = $2 WHERE key_hash = $1`, keyHash, usedAt)
	if err != nil {
		return fmt.Errorf("touch api key: %w", err)
	}
	return nil
}
