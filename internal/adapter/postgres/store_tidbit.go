package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/bytespace-io/bytespace/internal/domain"
	"github.com/bytespace-io/bytespace/internal/domain/tidbit"
)

// --- Bytes ---

const byteColumns = `space_id, id, name, content, steps, publish_status,
	archived, created_by, updated_by, created_at, updated_at`

func scanByte(row scannable) (tidbit.Byte, error) {
	var b tidbit.Byte
	var steps []byte
	err := row.Scan(&b.SpaceID, &b.ID, &b.Name, &b.Content, &steps, &b.Status,
		&b.Archived, &b.CreatedBy, &b.UpdatedBy, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return tidbit.Byte{}, err
	}
	if err := json.Unmarshal(steps, &b.Steps); err != nil {
		return tidbit.Byte{}, fmt.Errorf("unmarshal steps: %w", err)
	}
	b.Steps = orEmpty(b.Steps)
	return b, nil
}

// UpsertByte creates or rewrites a byte. Writing to an archived byte
// revives it, the same semantics AddCollectionItem applies to mapping rows.
func (s *Store) UpsertByte(ctx context.Context, spaceID string, req tidbit.UpsertByteRequest, actor string) (*tidbit.Byte, error) {
	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	status := req.Status
	if status == "" {
		status = tidbit.StatusDraft
	}
	steps, err := json.Marshal(orEmpty(req.Steps))
	if err != nil {
		return nil, fmt.Errorf("marshal steps: %w", err)
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO bytes (space_id, id, name, content, steps, publish_status, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (space_id, id) DO UPDATE
		SET name = EXCLUDED.name, content = EXCLUDED.content, steps = EXCLUDED.steps,
		    publish_status = EXCLUDED.publish_status, updated_by = EXCLUDED.updated_by,
		    archived = FALSE, updated_at = now()
		RETURNING `+byteColumns,
		spaceID, id, req.Name, req.Content, steps, status, actor)

	b, err := scanByte(row)
	if err != nil {
		return nil, fmt.Errorf("upsert byte %s: %w", id, err)
	}
	return &b, nil
}

func (s *Store) GetByte(ctx context.Context, spaceID, id string) (*tidbit.Byte, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+byteColumns+` FROM bytes WHERE space_id = $1 AND id = $2`, spaceID, id)

	b, err := scanByte(row)
	if err != nil {
		return nil, notFoundWrap(err, "get byte %s", id)
	}
	return &b, nil
}

func (s *Store) ListBytes(ctx context.Context, spaceID string, includeArchived bool) ([]tidbit.Byte, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+byteColumns+` FROM bytes
		WHERE space_id = $1 AND (archived = FALSE OR $2)
		ORDER BY updated_at DESC`, spaceID, includeArchived)
	if err != nil {
		return nil, fmt.Errorf("list bytes for space %s: %w", spaceID, err)
	}
	defer rows.Close()

	var bytes []tidbit.Byte
	for rows.Next() {
		b, err := scanByte(rows)
		if err != nil {
			return nil, fmt.Errorf("scan byte: %w", err)
		}
		bytes = append(bytes, b)
	}
	return orEmpty(bytes), rows.Err()
}

// ArchiveByte soft-deletes a byte and its collection membership rows in
// one transaction, so listings never show a live mapping to an archived byte.
func (s *Store) ArchiveByte(ctx context.Context, spaceID, id string, actor string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE bytes SET archived = TRUE, updated_by = $3, updated_at = now()
		WHERE space_id = $1 AND id = $2`, spaceID, id, actor)
	if err := execExpectOne(tag, err, "archive byte %s", id); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE byte_collection_items SET archived = TRUE
		WHERE space_id = $1 AND item_id = $2 AND item_type = $3`,
		spaceID, id, tidbit.ItemByte); err != nil {
		return fmt.Errorf("archive byte mappings %s: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit archive byte: %w", err)
	}
	return nil
}

// --- Collections ---

const collectionColumns = `space_id, id, name, description, priority, archived,
	version, created_at, updated_at`

func scanCollection(row scannable) (tidbit.Collection, error) {
	var c tidbit.Collection
	err := row.Scan(&c.SpaceID, &c.ID, &c.Name, &c.Description, &c.Priority,
		&c.Archived, &c.Version, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (s *Store) CreateCollection(ctx context.Context, spaceID string, req tidbit.CreateCollectionRequest) (*tidbit.Collection, error) {
	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO byte_collections (space_id, id, name, description, priority)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+collectionColumns,
		spaceID, id, req.Name, req.Description, req.Priority)

	c, err := scanCollection(row)
	if err != nil {
		return nil, conflictWrap(err, "create collection %s", id)
	}
	return &c, nil
}

func (s *Store) GetCollection(ctx context.Context, spaceID, id string) (*tidbit.Collection, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+collectionColumns+` FROM byte_collections WHERE space_id = $1 AND id = $2`,
		spaceID, id)

	c, err := scanCollection(row)
	if err != nil {
		return nil, notFoundWrap(err, "get collection %s", id)
	}
	return &c, nil
}

func (s *Store) ListCollections(ctx context.Context, spaceID string, includeArchived bool) ([]tidbit.Collection, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+collectionColumns+` FROM byte_collections
		WHERE space_id = $1 AND (archived = FALSE OR $2)
		ORDER BY priority, created_at`, spaceID, includeArchived)
	if err != nil {
		return nil, fmt.Errorf("list collections for space %s: %w", spaceID, err)
	}
	defer rows.Close()

	var cols []tidbit.Collection
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, fmt.Errorf("scan collection: %w", err)
		}
		cols = append(cols, c)
	}
	return orEmpty(cols), rows.Err()
}

func (s *Store) UpdateCollection(ctx context.Context, spaceID, id string, req tidbit.UpdateCollectionRequest) (*tidbit.Collection, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE byte_collections
		SET name        = COALESCE($3, name),
		    description = COALESCE($4, description),
		    priority    = COALESCE($5, priority),
		    updated_at  = now()
		WHERE space_id = $1 AND id = $2
		RETURNING `+collectionColumns,
		spaceID, id, req.Name, req.Description, req.Priority)

	c, err := scanCollection(row)
	if err != nil {
		return nil, notFoundWrap(err, "update collection %s", id)
	}
	return &c, nil
}

func (s *Store) ArchiveCollection(ctx context.Context, spaceID, id string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE byte_collections SET archived = TRUE, updated_at = now()
		WHERE space_id = $1 AND id = $2`, spaceID, id)
	if err := execExpectOne(tag, err, "archive collection %s", id); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE byte_collection_items SET archived = TRUE
		WHERE space_id = $1 AND collection_id = $2`, spaceID, id); err != nil {
		return fmt.Errorf("archive collection items %s: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit archive collection: %w", err)
	}
	return nil
}

func (s *Store) AddCollectionItem(ctx context.Context, spaceID, collectionID string, req tidbit.AddItemRequest) error {
	// The collection must exist; a missing row here is a 404, not an FK error.
	if _, err := s.GetCollection(ctx, spaceID, collectionID); err != nil {
		return err
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO byte_collection_items (space_id, collection_id, item_id, item_type, item_order)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (space_id, collection_id, item_id, item_type)
		DO UPDATE SET item_order = EXCLUDED.item_order, archived = FALSE`,
		spaceID, collectionID, req.ItemID, req.ItemType, req.Order)
	if err != nil {
		return fmt.Errorf("add item %s to collection %s: %w", req.ItemID, collectionID, err)
	}
	return nil
}

func (s *Store) ListCollectionItems(ctx context.Context, spaceID, collectionID string) ([]tidbit.ItemSummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT i.item_id, i.item_type, COALESCE(b.name, i.item_id), i.item_order, i.archived
		FROM byte_collection_items i
		LEFT JOIN bytes b
		  ON b.space_id = i.space_id AND b.id = i.item_id AND i.item_type = $3
		WHERE i.space_id = $1 AND i.collection_id = $2
		ORDER BY i.item_order`,
		spaceID, collectionID, tidbit.ItemByte)
	if err != nil {
		return nil, fmt.Errorf("list items for collection %s: %w", collectionID, err)
	}
	defer rows.Close()

	var items []tidbit.ItemSummary
	for rows.Next() {
		var it tidbit.ItemSummary
		if err := rows.Scan(&it.ItemID, &it.ItemType, &it.Name, &it.Order, &it.Archived); err != nil {
			return nil, fmt.Errorf("scan collection item: %w", err)
		}
		items = append(items, it)
	}
	return orEmpty(items), rows.Err()
}

// ReorderCollectionItems rewrites the order of every listed mapping row in
// one transaction. The caller's version must match the collection's current
// version; the row is locked for the duration and the version is bumped on
// commit, so concurrent reorders of the same collection serialize and the
// loser gets domain.ErrConflict.
func (s *Store) ReorderCollectionItems(ctx context.Context, spaceID, collectionID string, req tidbit.ReorderRequest) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := lockCollectionVersion(ctx, tx, spaceID, collectionID, req.Version); err != nil {
		return err
	}

	for _, o := range req.NewItemIDAndOrders {
		tag, err := tx.Exec(ctx, `
			UPDATE byte_collection_items SET item_order = $5
			WHERE space_id = $1 AND collection_id = $2 AND item_id = $3 AND item_type = $4`,
			spaceID, collectionID, o.ItemID, o.ItemType, o.Order)
		if err := execExpectOne(tag, err, "reorder item %s in collection %s", o.ItemID, collectionID); err != nil {
			return err
		}
	}

	if err := bumpCollectionVersion(ctx, tx, spaceID, collectionID); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit reorder: %w", err)
	}
	return nil
}

// MoveCollectionItem relocates one mapping row between two collections of
// the same space. Both collections are locked in a fixed order to avoid
// deadlocks, both versions are checked, and both are bumped on commit.
func (s *Store) MoveCollectionItem(ctx context.Context, spaceID string, req tidbit.MoveItemRequest) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	first, second := req.SourceByteCollectionID, req.TargetByteCollectionID
	firstVer, secondVer := req.SourceVersion, req.TargetVersion
	if second < first {
		first, second = second, first
		firstVer, secondVer = secondVer, firstVer
	}
	if err := lockCollectionVersion(ctx, tx, spaceID, first, firstVer); err != nil {
		return err
	}
	if err := lockCollectionVersion(ctx, tx, spaceID, second, secondVer); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE byte_collection_items SET collection_id = $5
		WHERE space_id = $1 AND collection_id = $2 AND item_id = $3 AND item_type = $4`,
		spaceID, req.SourceByteCollectionID, req.ItemID, req.ItemType, req.TargetByteCollectionID)
	if err != nil {
		// A target that already holds the same mapping trips the table's
		// primary key; that is the caller's conflict, not a server fault.
		return conflictWrap(err, "move item %s to collection %s", req.ItemID, req.TargetByteCollectionID)
	}
	if err := execExpectOne(tag, nil, "move item %s from collection %s", req.ItemID, req.SourceByteCollectionID); err != nil {
		return err
	}

	for _, id := range []string{req.SourceByteCollectionID, req.TargetByteCollectionID} {
		if err := bumpCollectionVersion(ctx, tx, spaceID, id); err != nil {
			return err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit move: %w", err)
	}
	return nil
}

// lockCollectionVersion locks a collection row and verifies the caller-held
// version against the current one.
func lockCollectionVersion(ctx context.Context, tx pgx.Tx, spaceID, id string, wantVersion int) error {
	var current int
	err := tx.QueryRow(ctx, `
		SELECT version FROM byte_collections
		WHERE space_id = $1 AND id = $2 FOR UPDATE`, spaceID, id).Scan(&current)
	if err != nil {
		return notFoundWrap(err, "lock collection %s", id)
	}
	if current != wantVersion {
		return fmt.Errorf("collection %s version is %d, caller has %d: %w",
			id, current, wantVersion, domain.ErrConflict)
	}
	return nil
}

func bumpCollectionVersion(ctx context.Context, tx pgx.Tx, spaceID, id string) error {
	if _, err := tx.Exec(ctx, `
		UPDATE byte_collections SET version = version + 1, updated_at = now()
		WHERE space_id = $1 AND id = $2`, spaceID, id); err != nil {
		return fmt.Errorf("bump collection version %s: %w", id, err)
	}
	return nil
}
