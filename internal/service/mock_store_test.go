package service_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bytespace-io/bytespace/internal/domain"
	"github.com/bytespace-io/bytespace/internal/domain/course"
	"github.com/bytespace-io/bytespace/internal/domain/rubric"
	"github.com/bytespace-io/bytespace/internal/domain/space"
	"github.com/bytespace-io/bytespace/internal/domain/tidbit"
	"github.com/bytespace-io/bytespace/internal/domain/user"
	"github.com/bytespace-io/bytespace/internal/port/database"
)

var errNotFound = fmt.Errorf("row missing: %w", domain.ErrNotFound)

// mockStore is an in-memory database.Store for service tests. Methods a
// test never reaches are inherited from the embedded nil interface and
// panic loudly if called.
type mockStore struct {
	database.Store

	mu           sync.Mutex
	spaces       map[string]*space.Space
	bytes        map[string]*tidbit.Byte // key space/id
	collections  map[string]*tidbit.Collection
	items        []tidbit.CollectionItem
	users        map[string]*user.User // keyed by username
	integrations map[string]*space.Integration
	apiKeys      []space.APIKey
	rubrics      map[string]*rubric.Rubric
	ratings      []rubric.Rating
	courses      map[string]*course.Course
	enrollments  map[string]*course.Enrollment // key space/course/user

	writeCalls int
	touched    int
}

func newMockStore(spaces ...*space.Space) *mockStore {
	m := &mockStore{
		spaces:      make(map[string]*space.Space),
		bytes:       make(map[string]*tidbit.Byte),
		collections: make(map[string]*tidbit.Collection),
		users:       make(map[string]*user.User),
		rubrics:     make(map[string]*rubric.Rubric),
		courses:     make(map[string]*course.Course),
		enrollments: make(map[string]*course.Enrollment),
	}
	for _, sp := range spaces {
		m.spaces[sp.ID] = sp
	}
	return m
}

func key(spaceID, id string) string { return spaceID + "/" + id }

func (m *mockStore) GetSpace(_ context.Context, id string) (*space.Space, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sp, ok := m.spaces[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *sp
	return &cp, nil
}

func (m *mockStore) CreateSpace(_ context.Context, req space.CreateRequest, createdBy string) (*space.Space, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeCalls++
	if _, ok := m.spaces[req.ID]; ok {
		return nil, fmt.Errorf("space exists: %w", domain.ErrConflict)
	}
	sp := &space.Space{
		ID: req.ID, Name: req.Name, AdminUsernames: req.AdminUsernames,
		PublicWriteAllowed: req.PublicWriteAllowed, CreatedBy: createdBy,
	}
	m.spaces[req.ID] = sp
	cp := *sp
	return &cp, nil
}

func (m *mockStore) ListSpaces(_ context.Context) ([]space.Space, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []space.Space
	for _, sp := range m.spaces {
		out = append(out, *sp)
	}
	return out, nil
}

func (m *mockStore) UpdateSpace(_ context.Context, sp *space.Space) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeCalls++
	if _, ok := m.spaces[sp.ID]; !ok {
		return errNotFound
	}
	cp := *sp
	m.spaces[sp.ID] = &cp
	return nil
}

func (m *mockStore) GetSpaceIntegration(_ context.Context, spaceID string) (*space.Integration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	in, ok := m.integrations[spaceID]
	if !ok {
		return nil, errNotFound
	}
	cp := *in
	return &cp, nil
}

func (m *mockStore) UpsertSpaceIntegration(_ context.Context, in *space.Integration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeCalls++
	if m.integrations == nil {
		m.integrations = make(map[string]*space.Integration)
	}
	cp := *in
	m.integrations[in.SpaceID] = &cp
	return nil
}

func (m *mockStore) UpsertByte(_ context.Context, spaceID string, req tidbit.UpsertByteRequest, actor string) (*tidbit.Byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeCalls++

	id := req.ID
	if id == "" {
		id = fmt.Sprintf("byte-%d", len(m.bytes)+1)
	}
	status := req.Status
	if status == "" {
		status = tidbit.StatusDraft
	}

	b, ok := m.bytes[key(spaceID, id)]
	if !ok {
		b = &tidbit.Byte{ID: id, SpaceID: spaceID, CreatedBy: actor, CreatedAt: time.Now()}
		m.bytes[key(spaceID, id)] = b
	}
	b.Name = req.Name
	b.Content = req.Content
	b.Steps = req.Steps
	b.Status = status
	b.Archived = false // writes revive archived bytes
	b.UpdatedBy = actor
	b.UpdatedAt = time.Now()

	cp := *b
	return &cp, nil
}

func (m *mockStore) GetByte(_ context.Context, spaceID, id string) (*tidbit.Byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bytes[key(spaceID, id)]
	if !ok {
		return nil, errNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *mockStore) ListBytes(_ context.Context, spaceID string, includeArchived bool) ([]tidbit.Byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []tidbit.Byte
	for _, b := range m.bytes {
		if b.SpaceID == spaceID && (includeArchived || !b.Archived) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *mockStore) ArchiveByte(_ context.Context, spaceID, id, actor string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeCalls++
	b, ok := m.bytes[key(spaceID, id)]
	if !ok {
		return errNotFound
	}
	b.Archived = true
	b.UpdatedBy = actor
	for i := range m.items {
		if m.items[i].ItemID == id && m.items[i].ItemType == tidbit.ItemByte {
			m.items[i].Archived = true
		}
	}
	return nil
}

func (m *mockStore) CreateCollection(_ context.Context, spaceID string, req tidbit.CreateCollectionRequest) (*tidbit.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeCalls++
	id := req.ID
	if id == "" {
		id = fmt.Sprintf("col-%d", len(m.collections)+1)
	}
	c := &tidbit.Collection{
		ID: id, SpaceID: spaceID, Name: req.Name, Description: req.Description,
		Priority: req.Priority, Version: 1,
	}
	m.collections[key(spaceID, id)] = c
	cp := *c
	return &cp, nil
}

func (m *mockStore) GetCollection(_ context.Context, spaceID, id string) (*tidbit.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.collections[key(spaceID, id)]
	if !ok {
		return nil, errNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockStore) ListCollectionItems(_ context.Context, spaceID, collectionID string) ([]tidbit.ItemSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []tidbit.ItemSummary
	for _, it := range m.items {
		if it.CollectionID == key(spaceID, collectionID) {
			out = append(out, tidbit.ItemSummary{
				ItemID: it.ItemID, ItemType: it.ItemType, Name: it.ItemID,
				Order: it.Order, Archived: it.Archived,
			})
		}
	}
	return out, nil
}

func (m *mockStore) AddCollectionItem(_ context.Context, spaceID, collectionID string, req tidbit.AddItemRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeCalls++
	if _, ok := m.collections[key(spaceID, collectionID)]; !ok {
		return errNotFound
	}
	m.items = append(m.items, tidbit.CollectionItem{
		CollectionID: key(spaceID, collectionID),
		ItemID:       req.ItemID,
		ItemType:     req.ItemType,
		Order:        req.Order,
	})
	return nil
}

func (m *mockStore) ReorderCollectionItems(_ context.Context, spaceID, collectionID string, req tidbit.ReorderRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeCalls++

	c, ok := m.collections[key(spaceID, collectionID)]
	if !ok {
		return errNotFound
	}
	if c.Version != req.Version {
		return fmt.Errorf("stale version: %w", domain.ErrConflict)
	}

	// Stage every order first; an unknown item aborts with nothing
	// applied, mirroring the adapter's single transaction.
	staged := make(map[int]int)
	for _, o := range req.NewItemIDAndOrders {
		found := false
		for i := range m.items {
			if m.items[i].CollectionID == key(spaceID, collectionID) &&
				m.items[i].ItemID == o.ItemID && m.items[i].ItemType == o.ItemType {
				staged[i] = o.Order
				found = true
			}
		}
		if !found {
			return errNotFound
		}
	}
	for i, order := range staged {
		m.items[i].Order = order
	}
	c.Version++
	return nil
}

func (m *mockStore) MoveCollectionItem(_ context.Context, spaceID string, req tidbit.MoveItemRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeCalls++

	src, ok := m.collections[key(spaceID, req.SourceByteCollectionID)]
	if !ok {
		return errNotFound
	}
	dst, ok := m.collections[key(spaceID, req.TargetByteCollectionID)]
	if !ok {
		return errNotFound
	}
	if src.Version != req.SourceVersion || dst.Version != req.TargetVersion {
		return fmt.Errorf("stale version: %w", domain.ErrConflict)
	}

	// A target already holding the mapping trips the table's primary key.
	for i := range m.items {
		if m.items[i].CollectionID == key(spaceID, req.TargetByteCollectionID) &&
			m.items[i].ItemID == req.ItemID && m.items[i].ItemType == req.ItemType {
			return fmt.Errorf("item %s already in collection %s: %w",
				req.ItemID, req.TargetByteCollectionID, domain.ErrConflict)
		}
	}

	for i := range m.items {
		if m.items[i].CollectionID == key(spaceID, req.SourceByteCollectionID) &&
			m.items[i].ItemID == req.ItemID && m.items[i].ItemType == req.ItemType {
			m.items[i].CollectionID = key(spaceID, req.TargetByteCollectionID)
			src.Version++
			dst.Version++
			return nil
		}
	}
	return errNotFound
}

func (m *mockStore) CreateUser(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Username]; ok {
		return fmt.Errorf("username taken: %w", domain.ErrConflict)
	}
	cp := *u
	m.users[u.Username] = &cp
	return nil
}

func (m *mockStore) GetUserByUsername(_ context.Context, username string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return nil, errNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockStore) ListUsers(_ context.Context) ([]user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []user.User
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *mockStore) UpdateUser(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Username]; !ok {
		return errNotFound
	}
	cp := *u
	m.users[u.Username] = &cp
	return nil
}

func (m *mockStore) CreateSpaceAPIKey(_ context.Context, k *space.APIKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apiKeys = append(m.apiKeys, *k)
	return nil
}

func (m *mockStore) ListSpaceAPIKeys(_ context.Context, spaceID string) ([]space.APIKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []space.APIKey
	for _, k := range m.apiKeys {
		if k.SpaceID == spaceID {
			out = append(out, k)
		}
	}
	return out, nil
}

func (m *mockStore) DeleteSpaceAPIKey(_ context.Context, spaceID, keyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, k := range m.apiKeys {
		if k.SpaceID == spaceID && k.ID == keyID {
			m.apiKeys = append(m.apiKeys[:i], m.apiKeys[i+1:]...)
			return nil
		}
	}
	return errNotFound
}

func (m *mockStore) GetSpaceIDByAPIKeyHash(_ context.Context, keyHash string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range m.apiKeys {
		if k.KeyHash == keyHash {
			return k.SpaceID, nil
		}
	}
	return "", errNotFound
}

func (m *mockStore) TouchSpaceAPIKey(_ context.Context, keyHash string, usedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.apiKeys {
		if m.apiKeys[i].KeyHash == keyHash {
			m.apiKeys[i].LastUsedAt = usedAt
			m.touched++
			return nil
		}
	}
	return errNotFound
}

func (m *mockStore) UpsertCourse(_ context.Context, spaceID string, req course.UpsertRequest, actor string) (*course.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeCalls++
	id := req.ID
	if id == "" {
		id = fmt.Sprintf("course-%d", len(m.courses)+1)
	}
	status := req.Status
	if status == "" {
		status = tidbit.StatusDraft
	}
	c := &course.Course{
		ID: id, SpaceID: spaceID, Title: req.Title, Summary: req.Summary,
		Status: status, CreatedBy: actor,
	}
	m.courses[key(spaceID, id)] = c
	cp := *c
	return &cp, nil
}

func (m *mockStore) GetCourse(_ context.Context, spaceID, id string) (*course.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.courses[key(spaceID, id)]
	if !ok {
		return nil, errNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockStore) UpsertEnrollment(_ context.Context, spaceID, courseID, username string, progress map[string]any) (*course.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeCalls++
	k := key(spaceID, courseID) + "/" + username
	e, ok := m.enrollments[k]
	if !ok {
		e = &course.Enrollment{CourseID: courseID, Username: username, Progress: map[string]any{}}
		m.enrollments[k] = e
	}
	// nil keeps the stored blob, matching the adapter's COALESCE.
	if progress != nil {
		e.Progress = progress
	}
	cp := *e
	return &cp, nil
}

func (m *mockStore) ListEnrollments(_ context.Context, spaceID, courseID string) ([]course.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []course.Enrollment
	for _, e := range m.enrollments {
		if e.CourseID == courseID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m *mockStore) UpsertRubric(_ context.Context, spaceID string, req rubric.UpsertRequest, actor string) (*rubric.Rubric, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeCalls++
	id := req.ID
	if id == "" {
		id = fmt.Sprintf("rubric-%d", len(m.rubrics)+1)
	}
	r := &rubric.Rubric{
		ID: id, SpaceID: spaceID, Name: req.Name, Summary: req.Summary,
		Levels: req.Levels, Criteria: req.Criteria, CreatedBy: actor,
	}
	m.rubrics[key(spaceID, id)] = r
	cp := *r
	return &cp, nil
}

func (m *mockStore) GetRubric(_ context.Context, spaceID, id string) (*rubric.Rubric, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rubrics[key(spaceID, id)]
	if !ok {
		return nil, errNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *mockStore) CreateRating(_ context.Context, spaceID, rubricID string, req rubric.RateRequest) (*rubric.Rating, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeCalls++
	r := rubric.Rating{
		ID:       fmt.Sprintf("rating-%d", len(m.ratings)+1),
		RubricID: rubricID,
		Username: req.Username,
		Scores:   req.Scores,
		Comment:  req.Comment,
	}
	m.ratings = append(m.ratings, r)
	cp := r
	return &cp, nil
}

func (m *mockStore) ListRatings(_ context.Context, spaceID, rubricID string) ([]rubric.Rating, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []rubric.Rating
	for _, r := range m.ratings {
		if r.RubricID == rubricID {
			out = append(out, r)
		}
	}
	return out, nil
}

// memCache is an in-memory cache.Cache recording deletes.
type memCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deleted []string
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (m *memCache) Get(_ context.Context, k string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[k]
	return v, ok, nil
}

func (m *memCache) Set(_ context.Context, k string, v []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[k] = v
	return nil
}

func (m *memCache) Delete(_ context.Context, k string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, k)
	m.deleted = append(m.deleted, k)
	return nil
}

func (m *memCache) deletedTags() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}
