package http

import (
	"github.com/go-chi/chi/v5"

	"github.com/bytespace-io/bytespace/internal/middleware"
)

// MountRoutes registers all API routes on the given chi router. Auth
// middleware runs before this and only attaches the principal; write
// authorization happens inside services, so read routes need no guard.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Get("/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		// Auth
		r.Post("/auth/login", h.Login)
		r.With(middleware.RequireAuth).Post("/auth/refresh", h.Refresh)
		r.With(middleware.RequireAuth).Get("/auth/me", h.Me)

		// User administration
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSuperAdmin)
			r.Get("/users", h.ListUsers)
			r.Post("/users", h.CreateUser)
		})

		// Spaces
		r.Get("/spaces", h.ListSpaces)
		r.With(middleware.RequireSuperAdmin).Post("/spaces", h.CreateSpace)

		r.Route("/spaces/{spaceID}", func(r chi.Router) {
			r.Use(h.SpaceCtx)

			r.Get("/", h.GetSpace)
			r.Put("/", h.UpdateSpace)
			r.Put("/theme", h.UpdateSpaceTheme)
			r.Put("/features", h.UpdateSpaceFeatures)
			r.Put("/integrations", h.UpdateSpaceIntegration)

			// API keys
			r.Get("/api-keys", h.ListSpaceAPIKeys)
			r.Post("/api-keys", h.CreateSpaceAPIKey)
			r.Delete("/api-keys/{keyID}", h.DeleteSpaceAPIKey)

			// Bytes
			r.Get("/bytes", h.ListBytes)
			r.Put("/bytes", h.UpsertByte)
			r.Post("/bytes/generate", h.GenerateByte)
			r.Get("/bytes/{byteID}", h.GetByte)
			r.Delete("/bytes/{byteID}", h.ArchiveByte)

			// Byte collections
			r.Get("/byte-collections", h.ListCollections)
			r.Post("/byte-collections", h.CreateCollection)
			r.Get("/byte-collections/{collectionID}", h.GetCollection)
			r.Put("/byte-collections/{collectionID}", h.UpdateCollection)
			r.Delete("/byte-collections/{collectionID}", h.ArchiveCollection)
			r.Post("/byte-collections/{collectionID}/items", h.AddCollectionItem)
			r.Put("/byte-collections/{collectionID}/item-orders", h.ReorderCollectionItems)
			r.Post("/actions/byte-collections/move-item", h.MoveCollectionItem)

			// Courses
			r.Get("/courses", h.ListCourses)
			r.Put("/courses", h.UpsertCourse)
			r.Get("/courses/{courseID}", h.GetCourse)
			r.Delete("/courses/{courseID}", h.ArchiveCourse)
			r.Post("/courses/{courseID}/enroll", h.EnrollInCourse)
			r.Put("/courses/{courseID}/progress", h.RecordCourseProgress)
			r.Get("/courses/{courseID}/enrollments", h.ListCourseEnrollments)

			// Rubrics
			r.Get("/rubrics", h.ListRubrics)
			r.Put("/rubrics", h.UpsertRubric)
			r.Get("/rubrics/{rubricID}", h.GetRubric)
			r.Delete("/rubrics/{rubricID}", h.ArchiveRubric)
			r.Post("/rubrics/{rubricID}/ratings", h.RateRubric)
			r.Get("/rubrics/{rubricID}/ratings", h.ListRubricRatings)

			// Uploads
			r.Post("/uploads/presign", h.PresignUpload)
		})
	})
}
