// Package items implements the versioned items CRUD: a simple V1 surface
// and the enhanced V2 surface with tags, metadata and pagination.
package items

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Repository handles CRUD operations for items
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new items repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "items").Logger(),
	}
}

// Create stores a new item and returns it with generated fields filled in
func (r *Repository) Create(req CreateRequest) (Item, error) {
	if req.Name == "" {
		return Item{}, fmt.Errorf("item name is required")
	}

	now := time.Now().UTC()
	item := Item{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
		Tags:        req.Tags,
		Metadata:    req.Metadata,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if item.Category == "" {
		item.Category = "general"
	}
	if item.Priority == 0 {
		item.Priority = 1
	}
	if item.Tags == nil {
		item.Tags = []string{}
	}
	if item.Metadata == nil {
		item.Metadata = map[string]string{}
	}

	tags, metadata, err := encodeJSONFields(item)
	if err != nil {
		return Item{}, err
	}

	_, err = r.db.Exec(`
		INSERT INTO items (id, name, description, category, priority, tags, metadata, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		item.ID, item.Name, item.Description, item.Category, item.Priority,
		tags, metadata, item.Version, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return Item{}, fmt.Errorf("failed to insert item: %w", err)
	}

	r.log.Debug().Str("id", item.ID).Str("name", item.Name).Msg("Item created")
	return item, nil
}

// Get returns one item by id; sql.ErrNoRows when absent
func (r *Repository) Get(id string) (Item, error) {
	row := r.db.QueryRow(`
		SELECT id, name, description, category, priority, tags, metadata, version, created_at, updated_at
		FROM items WHERE id = ?
	`, id)
	return scanItem(row)
}

// Update applies a partial update and bumps the record version
func (r *Repository) Update(id string, req UpdateRequest) (Item, error) {
	item, err := r.Get(id)
	if err != nil {
		return Item{}, err
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Category != nil {
		item.Category = *req.Category
	}
	if req.Priority != nil {
		item.Priority = *req.Priority
	}
	if req.Tags != nil {
		item.Tags = *req.Tags
	}
	if req.Metadata != nil {
		item.Metadata = *req.Metadata
	}
	item.Version++
	item.UpdatedAt = time.Now().UTC()

	tags, metadata, err := encodeJSONFields(item)
	if err != nil {
		return Item{}, err
	}

	_, err = r.db.Exec(`
		UPDATE items
		SET name = ?, description = ?, category = ?, priority = ?, tags = ?, metadata = ?, version = ?, updated_at = ?
		WHERE id = ?
	`,
		item.Name, item.Description, item.Category, item.Priority,
		tags, metadata, item.Version, item.UpdatedAt, id,
	)
	if err != nil {
		return Item{}, fmt.Errorf("failed to update item: %w", err)
	}

	r.log.Debug().Str("id", id).Int("version", item.Version).Msg("Item updated")
	return item, nil
}

// Delete removes an item; sql.ErrNoRows when absent
func (r *Repository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	r.log.Debug().Str("id", id).Msg("Item deleted")
	return nil
}

// List returns one page of items, newest first, optionally filtered by
// category.
func (r *Repository) List(q ListQuery) ([]Item, ListMeta, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = 10
	}

	where := ""
	args := []interface{}{}
	if q.Category != "" {
		where = "WHERE category = ?"
		args = append(args, q.Category)
	}

	var total int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM items "+where, args...).Scan(&total); err != nil {
		return nil, ListMeta{}, fmt.Errorf("failed to count items: %w", err)
	}

	offset := (q.Page - 1) * q.PerPage
	rows, err := r.db.Query(`
		SELECT id, name, description, category, priority, tags, metadata, version, created_at, updated_at
		FROM items `+where+`
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, append(args, q.PerPage, offset)...)
	if err != nil {
		return nil, ListMeta{}, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, ListMeta{}, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, ListMeta{}, err
	}

	pages := (total + q.PerPage - 1) / q.PerPage
	meta := ListMeta{Total: total, Page: q.Page, PerPage: q.PerPage, Pages: pages}
	return items, meta, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row rowScanner) (Item, error) {
	var item Item
	var tags, metadata string
	err := row.Scan(
		&item.ID, &item.Name, &item.Description, &item.Category, &item.Priority,
		&tags, &metadata, &item.Version, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return Item{}, err
	}

	if err := json.Unmarshal([]byte(tags), &item.Tags); err != nil {
		return Item{}, fmt.Errorf("corrupt tags for item %s: %w", item.ID, err)
	}
	if err := json.Unmarshal([]byte(metadata), &item.Metadata); err != nil {
		return Item{}, fmt.Errorf("corrupt metadata for item %s: %w", item.ID, err)
	}
	return item, nil
}

func encodeJSONFields(item Item) (tags string, metadata string, err error) {
	tagBytes, err := json.Marshal(item.Tags)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode tags: %w", err)
	}
	metaBytes, err := json.Marshal(item.Metadata)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode metadata: %w", err)
	}
	return string(tagBytes), string(metaBytes), nil
}
