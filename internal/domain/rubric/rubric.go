// Package rubric defines grading rubrics and submitted ratings.
package rubric

import (
	"time"

	"github.com/bytespace-io/bytespace/internal/domain"
)

// Rubric is a grading grid of criteria scored against levels.
type Rubric struct {
	ID        string      `json:"id"`
	SpaceID   string      `json:"spaceId"`
	Name      string      `json:"name"`
	Summary   string      `json:"summary"`
	Levels    []Level     `json:"levels"`
	Criteria  []Criterion `json:"criteria"`
	Archived  bool        `json:"archive"`
	CreatedBy string      `json:"createdBy"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// Level is one scoring column (e.g. "Excellent" = 3).
type Level struct {
	Title string `json:"title"`
	Score int    `json:"score"`
}

// Criterion is one graded row.
type Criterion struct {
	Title string `json:"title"`
}

// UpsertRequest creates or replaces a rubric keyed by (space, id).
type UpsertRequest struct {
	ID       string      `json:"id,omitempty"`
	Name     string      `json:"name"`
	Summary  string      `json:"summary"`
	Levels   []Level     `json:"levels"`
	Criteria []Criterion `json:"criteria"`
}

// Validate checks required fields eagerly.
func (r *UpsertRequest) Validate() error {
	if r.Name == "" {
		return domain.Validationf("rubric name is required")
	}
	if len(r.Levels) == 0 {
		return domain.Validationf("at least one level is required")
	}
	if len(r.Criteria) == 0 {
		return domain.Validationf("at least one criterion is required")
	}
	return nil
}

// Rating is one submitted grading of a rubric.
type Rating struct {
	ID        string         `json:"id"`
	RubricID  string         `json:"rubricId"`
	Username  string         `json:"username"`
	Scores    map[string]int `json:"scores"`
	Comment   string         `json:"comment,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// RateRequest submits a rating. Scores maps criterion title to level score.
type RateRequest struct {
	Username string         `json:"username"`
	Scores   map[string]int `json:"scores"`
	Comment  string         `json:"comment,omitempty"`
}

// Validate checks required fields eagerly.
func (r *RateRequest) Validate() error {
	if r.Username == "" {
		return domain.Validationf("username is required")
	}
	if len(r.Scores) == 0 {
		return domain.Validationf("scores are required")
	}
	return nil
}
