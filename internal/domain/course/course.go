// Package course defines courses and learner enrollments.
package course

import (
	"time"

	"github.com/bytespace-io/bytespace/internal/domain"
	"github.com/bytespace-io/bytespace/internal/domain/tidbit"
)

// Course is a long-form learning track within a space.
type Course struct {
	ID        string               `json:"id"`
	SpaceID   string               `json:"spaceId"`
	Title     string               `json:"title"`
	Summary   string               `json:"summary"`
	Status    tidbit.PublishStatus `json:"publishStatus"`
	Archived  bool                 `json:"archive"`
	CreatedBy string               `json:"createdBy"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

// UpsertRequest creates or replaces a course keyed by (space, id).
type UpsertRequest struct {
	ID      string               `json:"id,omitempty"`
	Title   string               `json:"title"`
	Summary string               `json:"summary"`
	Status  tidbit.PublishStatus `json:"publishStatus,omitempty"`
}

// Validate checks required fields eagerly.
func (r *UpsertRequest) Validate() error {
	if r.Title == "" {
		return domain.Validationf("course title is required")
	}
	return nil
}

// Enrollment records a learner's membership and progress in a course.
type Enrollment struct {
	CourseID  string         `json:"courseId"`
	Username  string         `json:"username"`
	Progress  map[string]any `json:"progress"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// EnrollRequest enrolls the named learner in a course.
type EnrollRequest struct {
	Username string `json:"username"`
}

// Validate checks required fields eagerly.
func (r *EnrollRequest) Validate() error {
	if r.Username == "" {
		return domain.Validationf("username is required")
	}
	return nil
}

// ProgressRequest upserts a learner's progress blob.
type ProgressRequest struct {
	Username string         `json:"username"`
	Progress map[string]any `json:"progress"`
}

// Validate checks required fields eagerly.
func (r *ProgressRequest) Validate() error {
	if r.Username == "" {
		return domain.Validationf("username is required")
	}
	if r.Progress == nil {
		return domain.Validationf("progress is required")
	}
	return nil
}
