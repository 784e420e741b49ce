package service

import (
	"context"

	"github.com/bytespace-io/bytespace/internal/domain/course"
	"github.com/bytespace-io/bytespace/internal/domain/principal"
	"github.com/bytespace-io/bytespace/internal/port/database"
)

// CourseService executes course and enrollment operations.
type CourseService struct {
	store  database.Store
	spaces *SpaceService
	gate   *Gate
	inv    *Invalidator
}

// NewCourseService creates the course service.
func NewCourseService(store database.Store, spaces *SpaceService, gate *Gate, inv *Invalidator) *CourseService {
	return &CourseService{store: store, spaces: spaces, gate: gate, inv: inv}
}

func coursesTag(spaceID string) string { return "courses:" + spaceID }

// Upsert creates or replaces a course.
func (s *CourseService) Upsert(ctx context.Context, p *principal.Principal, spaceID string, req course.UpsertRequest) (*course.Course, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	sp, err := s.spaces.Resolve(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Authorize(ctx, p, sp); err != nil {
		return nil, err
	}

	c, err := s.store.UpsertCourse(ctx, spaceID, req, actorName(p))
	if err != nil {
		return nil, err
	}

	s.inv.Invalidate(ctx, coursesTag(spaceID))
	return c, nil
}

// Get returns one course.
func (s *CourseService) Get(ctx context.Context, spaceID, id string) (*course.Course, error) {
	if _, err := s.spaces.Resolve(ctx, spaceID); err != nil {
		return nil, err
	}
	return s.store.GetCourse(ctx, spaceID, id)
}

// List returns the space's courses.
func (s *CourseService) List(ctx context.Context, spaceID string, includeArchived bool) ([]course.Course, error) {
	if _, err := s.spaces.Resolve(ctx, spaceID); err != nil {
		return nil, err
	}
	return s.store.ListCourses(ctx, spaceID, includeArchived)
}

// Archive soft-deletes a course.
func (s *CourseService) Archive(ctx context.Context, p *principal.Principal, spaceID, id string) error {
	sp, err := s.spaces.Resolve(ctx, spaceID)
	if err != nil {
		return err
	}
	if err := s.gate.Authorize(ctx, p, sp); err != nil {
		return err
	}

	if err := s.store.ArchiveCourse(ctx, spaceID, id); err != nil {
		return err
	}
	s.inv.Invalidate(ctx, coursesTag(spaceID))
	return nil
}

// Enroll adds a learner to a course with empty progress. Re-enrolling is
// idempotent and keeps existing progress.
func (s *CourseService) Enroll(ctx context.Context, p *principal.Principal, spaceID, courseID string, req course.EnrollRequest) (*course.Enrollment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	sp, err := s.spaces.Resolve(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Authorize(ctx, p, sp); err != nil {
		return nil, err
	}
	if _, err := s.store.GetCourse(ctx, spaceID, courseID); err != nil {
		return nil, err
	}

	return s.store.UpsertEnrollment(ctx, spaceID, courseID, req.Username, nil)
}

// RecordProgress replaces a learner's progress blob.
func (s *CourseService) RecordProgress(ctx context.Context, p *principal.Principal, spaceID, courseID string, req course.ProgressRequest) (*course.Enrollment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	sp, err := s.spaces.Resolve(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Authorize(ctx, p, sp); err != nil {
		return nil, err
	}
	if _, err := s.store.GetCourse(ctx, spaceID, courseID); err != nil {
		return nil, err
	}

	return s.store.UpsertEnrollment(ctx, spaceID, courseID, req.Username, req.Progress)
}

// ListEnrollments returns a course's enrollments.
func (s *CourseService) ListEnrollments(ctx context.Context, spaceID, courseID string) ([]course.Enrollment, error) {
	if _, err := s.spaces.Resolve(ctx, spaceID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetCourse(ctx, spaceID, courseID); err != nil {
		return nil, err
	}
	return s.store.ListEnrollments(ctx, spaceID, courseID)
}
