package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bytespace-io/bytespace/internal/domain/space"
)

const spaceColumns = `id, name, admin_usernames, features, domains, theme,
	public_write_allowed, created_by, created_at, updated_at`

func scanSpace(row scannable) (space.Space, error) {
	var sp space.Space
	var theme []byte
	err := row.Scan(&sp.ID, &sp.Name, &sp.AdminUsernames, &sp.Features, &sp.Domains,
		&theme, &sp.PublicWriteAllowed, &sp.CreatedBy, &sp.CreatedAt, &sp.UpdatedAt)
	if err != nil {
		return space.Space{}, err
	}
	if len(theme) > 0 {
		sp.Theme = &space.ThemeColors{}
		if err := json.Unmarshal(theme, sp.Theme); err != nil {
			return space.Space{}, fmt.Errorf("unmarshal theme: %w", err)
		}
	}
	sp.AdminUsernames = orEmpty(sp.AdminUsernames)
	sp.Features = orEmpty(sp.Features)
	sp.Domains = orEmpty(sp.Domains)
	return sp, nil
}

func (s *Store) CreateSpace(ctx context.Context, req space.CreateRequest, createdBy string) (*space.Space, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO spaces (id, name, admin_usernames, public_write_allowed, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+spaceColumns,
		req.ID, req.Name, pgTextArray(req.AdminUsernames), req.PublicWriteAllowed, createdBy)

	sp, err := scanSpace(row)
	if err != nil {
		return nil, conflictWrap(err, "create space %s", req.ID)
	}
	return &sp, nil
}

func (s *Store) GetSpace(ctx context.Context, id string) (*space.Space, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+spaceColumns+` FROM spaces WHERE id = $1`, id)

	sp, err := scanSpace(row)
	if err != nil {
		return nil, notFoundWrap(err, "get space %s", id)
	}
	return &sp, nil
}

func (s *Store) ListSpaces(ctx context.Context) ([]space.Space, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+spaceColumns+` FROM spaces ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list spaces: %w", err)
	}
	defer rows.Close()

	var spaces []space.Space
	for rows.Next() {
		sp, err := scanSpace(rows)
		if err != nil {
			return nil, fmt.Errorf("scan space: %w", err)
		}
		spaces = append(spaces, sp)
	}
	return orEmpty(spaces), rows.Err()
}

func (s *Store) UpdateSpace(ctx context.Context, sp *space.Space) error {
	var theme any
	if sp.Theme != nil {
		b, err := json.Marshal(sp.Theme)
		if err != nil {
			return fmt.Errorf("marshal theme: %w", err)
		}
		theme = b
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE spaces
		SET name = $2, admin_usernames = $3, features = $4, domains = $5,
		    theme = $6, public_write_allowed = $7, updated_at = now()
		WHERE id = $1`,
		sp.ID, sp.Name, pgTextArray(sp.AdminUsernames), pgTextArray(sp.Features),
		pgTextArray(sp.Domains), theme, sp.PublicWriteAllowed)
	return execExpectOne(tag, err, "update space %s", sp.ID)
}

func (s *Store) GetSpaceIntegration(ctx context.Context, spaceID string) (*space.Integration, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT space_id, discord_webhook_url, updated_at
		FROM space_integrations WHERE space_id = $1`, spaceID)

	var in space.Integration
	if err := row.Scan(&in.SpaceID, &in.DiscordWebhookURL, &in.UpdatedAt); err != nil {
		return nil, notFoundWrap(err, "get integration for space %s", spaceID)
	}
	return &in, nil
}

func (s *Store) UpsertSpaceIntegration(ctx context.Context, in *space.Integration) error {
	in.UpdatedAt = time.Now().UTC()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO space_integrations (space_id, discord_webhook_url, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (space_id)
		DO UPDATE SET discord_webhook_url = EXCLUDED.discord_webhook_url,
		              updated_at = EXCLUDED.updated_at`,
		in.SpaceID, in.DiscordWebhookURL, in.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert integration for space %s: %w", in.SpaceID, err)
	}
	return nil
}
