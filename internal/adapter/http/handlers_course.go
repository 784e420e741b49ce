package http

import (
	"net/http"

	"github.com/bytespace-io/bytespace/internal/domain/course"
	"github.com/bytespace-io/bytespace/internal/middleware"
)

// UpsertCourse creates or replaces a course.
func (h *Handlers) UpsertCourse(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[course.UpsertRequest](w, r)
	if !ok {
		return
	}

	p := middleware.PrincipalFromContext(r.Context())
	c, err := h.courses.Upsert(r.Context(), p, urlParam(r, "spaceID"), req)
	if err != nil {
		writeDomainError(w, err, "space not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// GetCourse returns one course.
func (h *Handlers) GetCourse(w http.ResponseWriter, r *http.Request) {
	c, err := h.courses.Get(r.Context(), urlParam(r, "spaceID"), urlParam(r, "courseID"))
	if err != nil {
		writeDomainError(w, err, "course not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// ListCourses returns the space's courses.
func (h *Handlers) ListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.courses.List(r.Context(), urlParam(r, "spaceID"), includeArchived(r))
	if err != nil {
		writeDomainError(w, err, "space not found")
		return
	}
	if courses == nil {
		courses = []course.Course{}
	}
	writeJSON(w, http.StatusOK, courses)
}

// ArchiveCourse soft-deletes a course.
func (h *Handlers) ArchiveCourse(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromContext(r.Context())
	if err := h.courses.Archive(r.Context(), p, urlParam(r, "spaceID"), urlParam(r, "courseID")); err != nil {
		writeDomainError(w, err, "course not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EnrollInCourse adds a learner to a course.
func (h *Handlers) EnrollInCourse(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[course.EnrollRequest](w, r)
	if !ok {
		return
	}

	p := middleware.PrincipalFromContext(r.Context())
	e, err := h.courses.Enroll(r.Context(), p, urlParam(r, "spaceID"), urlParam(r, "courseID"), req)
	if err != nil {
		writeDomainError(w, err, "course not found")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// RecordCourseProgress replaces a learner's progress blob.
func (h *Handlers) RecordCourseProgress(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[course.ProgressRequest](w, r)
	if !ok {
		return
	}

	p := middleware.PrincipalFromContext(r.Context())
	e, err := h.courses.RecordProgress(r.Context(), p, urlParam(r, "spaceID"), urlParam(r, "courseID"), req)
	if err != nil {
		writeDomainError(w, err, "course not found")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// ListCourseEnrollments returns a course's enrollments.
func (h *Handlers) ListCourseEnrollments(w http.ResponseWriter, r *http.Request) {
	list, err := h.courses.ListEnrollments(r.Context(), urlParam(r, "spaceID"), urlParam(r, "courseID"))
	if err != nil {
		writeDomainError(w, err, "course not found")
		return
	}
	if list == nil {
		list = []course.Enrollment{}
	}
	writeJSON(w, http.StatusOK, list)
}
