// Package database defines the port interface for the relational store.
package database

import (
	"context"
	"time"

	"github.com/bytespace-io/bytespace/internal/domain/course"
	"github.com/bytespace-io/bytespace/internal/domain/rubric"
	"github.com/bytespace-io/bytespace/internal/domain/space"
	"github.com/bytespace-io/bytespace/internal/domain/tidbit"
	"github.com/bytespace-io/bytespace/internal/domain/user"
)

// Store is the port interface implemented by the PostgreSQL adapter.
// Multi-row mutations are transactional: each call is all-or-nothing
// with respect to the rows it touches.
type Store interface {
	// Spaces
	CreateSpace(ctx context.Context, req space.CreateRequest, createdBy string) (*space.Space, error)
	GetSpace(ctx context.Context, id string) (*space.Space, error)
	ListSpaces(ctx context.Context) ([]space.Space, error)
	UpdateSpace(ctx context.Context, sp *space.Space) error
	GetSpaceIntegration(ctx context.Context, spaceID string) (*space.Integration, error)
	UpsertSpaceIntegration(ctx context.Context, in *space.Integration) error

	// Space API keys
	CreateSpaceAPIKey(ctx context.Context, key *space.APIKey) error
	ListSpaceAPIKeys(ctx context.Context, spaceID string) ([]space.APIKey, error)
	DeleteSpaceAPIKey(ctx context.Context, spaceID, keyID string) error
	GetSpaceIDByAPIKeyHash(ctx context.Context, keyHash string) (string, error)
	TouchSpaceAPIKey(ctx context.Context, keyHash string, usedAt time.Time) error

	// Users
	CreateUser(ctx context.Context, u *user.User) error
	GetUser(ctx context.Context, id string) (*user.User, error)
	GetUserByUsername(ctx context.Context, username string) (*user.User, error)
	ListUsers(ctx context.Context) ([]user.User, error)
	UpdateUser(ctx context.Context, u *user.User) error

	// Bytes
	UpsertByte(ctx context.Context, spaceID string, req tidbit.UpsertByteRequest, actor string) (*tidbit.Byte, error)
	GetByte(ctx context.Context, spaceID, id string) (*tidbit.Byte, error)
	ListBytes(ctx context.Context, spaceID string, includeArchived bool) ([]tidbit.Byte, error)
	ArchiveByte(ctx context.Context, spaceID, id string, actor string) error

	// Byte collections
	CreateCollection(ctx context.Context, spaceID string, req tidbit.CreateCollectionRequest) (*tidbit.Collection, error)
	GetCollection(ctx context.Context, spaceID, id string) (*tidbit.Collection, error)
	ListCollections(ctx context.Context, spaceID string, includeArchived bool) ([]tidbit.Collection, error)
	UpdateCollection(ctx context.Context, spaceID, id string, req tidbit.UpdateCollectionRequest) (*tidbit.Collection, error)
	ArchiveCollection(ctx context.Context, spaceID, id string) error
	AddCollectionItem(ctx context.Context, spaceID, collectionID string, req tidbit.AddItemRequest) error
	ListCollectionItems(ctx context.Context, spaceID, collectionID string) ([]tidbit.ItemSummary, error)
	ReorderCollectionItems(ctx context.Context, spaceID, collectionID string, req tidbit.ReorderRequest) error
	MoveCollectionItem(ctx context.Context, spaceID string, req tidbit.MoveItemRequest) error

	// Courses
	UpsertCourse(ctx context.Context, spaceID string, req course.UpsertRequest, actor string) (*course.Course, error)
	GetCourse(ctx context.Context, spaceID, id string) (*course.Course, error)
	ListCourses(ctx context.Context, spaceID string, includeArchived bool) ([]course.Course, error)
	ArchiveCourse(ctx context.Context, spaceID, id string) error
	UpsertEnrollment(ctx context.Context, spaceID, courseID, username string, progress map[string]any) (*course.Enrollment, error)
	ListEnrollments(ctx context.Context, spaceID, courseID string) ([]course.Enrollment, error)

	// Rubrics
	UpsertRubric(ctx context.Context, spaceID string, req rubric.UpsertRequest, actor string) (*rubric.Rubric, error)
	GetRubric(ctx context.Context, spaceID, id string) (*rubric.Rubric, error)
	ListRubrics(ctx context.Context, spaceID string, includeArchived bool) ([]rubric.Rubric, error)
	ArchiveRubric(ctx context.Context, spaceID, id string) error
	CreateRating(ctx context.Context, spaceID, rubricID string, req rubric.RateRequest) (*rubric.Rating, error)
	ListRatings(ctx context.Context, spaceID, rubricID string) ([]rubric.Rating, error)
}
