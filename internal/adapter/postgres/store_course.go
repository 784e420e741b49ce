package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/bytespace-io/bytespace/internal/domain/course"
	"github.com/bytespace-io/bytespace/internal/domain/tidbit"
)

const courseColumns = `space_id, id, title, summary, publish_status, archived,
	created_by, created_at, updated_at`

func scanCourse(row scannable) (course.Course, error) {
	var c course.Course
	err := row.Scan(&c.SpaceID, &c.ID, &c.Title, &c.Summary, &c.Status,
		&c.Archived, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (s *Store) UpsertCourse(ctx context.Context, spaceID string, req course.UpsertRequest, actor string) (*course.Course, error) {
	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	status := req.Status
	if status == "" {
		status = tidbit.StatusDraft
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO courses (space_id, id, title, summary, publish_status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (space_id, id) DO UPDATE
		SET title = EXCLUDED.title, summary = EXCLUDED.summary,
		    publish_status = EXCLUDED.publish_status, updated_at = now()
		RETURNING `+courseColumns,
		spaceID, id, req.Title, req.Summary, status, actor)

	c, err := scanCourse(row)
	if err != nil {
		return nil, fmt.Errorf("upsert course %s: %w", id, err)
	}
	return &c, nil
}

func (s *Store) GetCourse(ctx context.Context, spaceID, id string) (*course.Course, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE space_id = $1 AND id = $2`, spaceID, id)

	c, err := scanCourse(row)
	if err != nil {
		return nil, notFoundWrap(err, "get course %s", id)
	}
	return &c, nil
}

func (s *Store) ListCourses(ctx context.Context, spaceID string, includeArchived bool) ([]course.Course, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+courseColumns+` FROM courses
		WHERE space_id = $1 AND (archived = FALSE OR $2)
		ORDER BY updated_at DESC`, spaceID, includeArchived)
	if err != nil {
		return nil, fmt.Errorf("list courses for space %s: %w", spaceID, err)
	}
	defer rows.Close()

	var courses []course.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		courses = append(courses, c)
	}
	return orEmpty(courses), rows.Err()
}

func (s *Store) ArchiveCourse(ctx context.Context, spaceID, id string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE courses SET archived = TRUE, updated_at = now()
		WHERE space_id = $1 AND id = $2`, spaceID, id)
	return execExpectOne(tag, err, "archive course %s", id)
}

func (s *Store) UpsertEnrollment(ctx context.Context, spaceID, courseID, username string, progress map[string]any) (*course.Enrollment, error) {
	// nil progress means "keep whatever is recorded": it inserts as an
	// empty object on first enrollment and coalesces to the stored blob
	// on re-enrollment. Binding NULL through $4 keeps that distinction,
	// which EXCLUDED.progress would lose.
	var blob []byte
	if progress != nil {
		b, err := json.Marshal(progress)
		if err != nil {
			return nil, fmt.Errorf("marshal progress: %w", err)
		}
		blob = b
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO course_enrollments (space_id, course_id, username, progress)
		VALUES ($1, $2, $3, COALESCE($4, '{}'::jsonb))
		ON CONFLICT (space_id, course_id, username) DO UPDATE
		SET progress = COALESCE($4, course_enrollments.progress), updated_at = now()
		RETURNING course_id, username, progress, created_at, updated_at`,
		spaceID, courseID, username, blob)

	e, err := scanEnrollment(row)
	if err != nil {
		return nil, fmt.Errorf("upsert enrollment for %s in course %s: %w", username, courseID, err)
	}
	return &e, nil
}

func (s *Store) ListEnrollments(ctx context.Context, spaceID, courseID string) ([]course.Enrollment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT course_id, username, progress, created_at, updated_at
		FROM course_enrollments
		WHERE space_id = $1 AND course_id = $2
		ORDER BY username`, spaceID, courseID)
	if err != nil {
		return nil, fmt.Errorf("list enrollments for course %s: %w", courseID, err)
	}
	defer rows.Close()

	var enrollments []course.Enrollment
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan enrollment: %w", err)
		}
		enrollments = append(enrollments, e)
	}
	return orEmpty(enrollments), rows.Err()
}

func scanEnrollment(row scannable) (course.Enrollment, error) {
	var e course.Enrollment
	var progress []byte
	err := row.Scan(&e.CourseID, &e.Username, &progress, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return course.Enrollment{}, err
	}
	if err := json.Unmarshal(progress, &e.Progress); err != nil {
		return course.Enrollment{}, fmt.Errorf("unmarshal progress: %w", err)
	}
	return e, nil
}
