package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/bytespace-io/bytespace/internal/domain/rubric"
)

const rubricColumns = `space_id, id, name, summary, levels, criteria, archived,
	created_by, created_at, updated_at`

func scanRubric(row scannable) (rubric.Rubric, error) {
	var r rubric.Rubric
	var levels, criteria []byte
	err := row.Scan(&r.SpaceID, &r.ID, &r.Name, &r.Summary, &levels, &criteria,
		&r.Archived, &r.CreatedBy, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return rubric.Rubric{}, err
	}
	if err := json.Unmarshal(levels, &r.Levels); err != nil {
		return rubric.Rubric{}, fmt.Errorf("unmarshal levels: %w", err)
	}
	if err := json.Unmarshal(criteria, &r.Criteria); err != nil {
		return rubric.Rubric{}, fmt.Errorf("unmarshal criteria: %w", err)
	}
	return r, nil
}

func (s *Store) UpsertRubric(ctx context.Context, spaceID string, req rubric.UpsertRequest, actor string) (*rubric.Rubric, error) {
	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	levels, err := json.Marshal(req.Levels)
	if err != nil {
		return nil, fmt.Errorf("marshal levels: %w", err)
	}
	criteria, err := json.Marshal(req.Criteria)
	if err != nil {
		return nil, fmt.Errorf("marshal criteria: %w", err)
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO rubrics (space_id, id, name, summary, levels, criteria, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (space_id, id) DO UPDATE
		SET name = EXCLUDED.name, summary = EXCLUDED.summary,
		    levels = EXCLUDED.levels, criteria = EXCLUDED.criteria, updated_at = now()
		RETURNING `+rubricColumns,
		spaceID, id, req.Name, req.Summary, levels, criteria, actor)

	r, err := scanRubric(row)
	if err != nil {
		return nil, fmt.Errorf("upsert rubric %s: %w", id, err)
	}
	return &r, nil
}

func (s *Store) GetRubric(ctx context.Context, spaceID, id string) (*rubric.Rubric, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+rubricColumns+` FROM rubrics WHERE space_id = $1 AND id = $2`, spaceID, id)

	r, err := scanRubric(row)
	if err != nil {
		return nil, notFoundWrap(err, "get rubric %s", id)
	}
	return &r, nil
}

func (s *Store) ListRubrics(ctx context.Context, spaceID string, includeArchived bool) ([]rubric.Rubric, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+rubricColumns+` FROM rubrics
		WHERE space_id = $1 AND (archived = FALSE OR $2)
		ORDER BY updated_at DESC`, spaceID, includeArchived)
	if err != nil {
		return nil, fmt.Errorf("list rubrics for space %s: %w", spaceID, err)
	}
	defer rows.Close()

	var rubrics []rubric.Rubric
	for rows.Next() {
		r, err := scanRubric(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rubric: %w", err)
		}
		rubrics = append(rubrics, r)
	}
	return orEmpty(rubrics), rows.Err()
}

func (s *Store) ArchiveRubric(ctx context.Context, spaceID, id string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE rubrics SET archived = TRUE, updated_at = now()
		WHERE space_id = $1 AND id = $2`, spaceID, id)
	return execExpectOne(tag, err, "archive rubric %s", id)
}

func (s *Store) CreateRating(ctx context.Context, spaceID, rubricID string, req rubric.RateRequest) (*rubric.Rating, error) {
	scores, err := json.Marshal(req.Scores)
	if err != nil {
		return nil, fmt.Errorf("marshal scores: %w", err)
	}

	r := &rubric.Rating{
		ID:       uuid.NewString(),
		RubricID: rubricID,
		Username: req.Username,
		Scores:   req.Scores,
		Comment:  req.Comment,
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO rubric_ratings (id, space_id, rubric_id, username, scores, comment)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		r.ID, spaceID, rubricID, req.Username, scores, req.Comment)

	if err := row.Scan(&r.CreatedAt); err != nil {
		return nil, fmt.Errorf("create rating for rubric %s: %w", rubricID, err)
	}
	return r, nil
}

func (s *Store) ListRatings(ctx context.Context, spaceID, rubricID string) ([]rubric.Rating, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, rubric_id, username, scores, comment, created_at
		FROM rubric_ratings
		WHERE space_id = $1 AND rubric_id = $2
		ORDER BY created_at DESC`, spaceID, rubricID)
	if err != nil {
		return nil, fmt.Errorf("list ratings for rubric %s: %w", rubricID, err)
	}
	defer rows.Close()

	var ratings []rubric.Rating
	for rows.Next() {
		var r rubric.Rating
		var scores []byte
		if err := rows.Scan(&r.ID, &r.RubricID, &r.Username, &scores, &r.Comment, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		if err := json.Unmarshal(scores, &r.Scores); err != nil {
			return nil, fmt.Errorf("unmarshal scores: %w", err)
		}
		ratings = append(ratings, r)
	}
	return orEmpty(ratings), rows.Err()
}
