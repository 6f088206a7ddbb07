package items

import "time"

// Item is the stored record. V1 clients see only the basic fields; V2
// clients additionally get tags, metadata, category and priority.
type Item struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Category    string            `json:"category"`
	Priority    int               `json:"priority"`
	Tags        []string          `json:"tags"`
	Metadata    map[string]string `json:"metadata"`
	Version     int               `json:"version"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ItemV1 is the reduced V1 wire representation
type ItemV1 struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// V1 projects the item onto the V1 shape
func (i Item) V1() ItemV1 {
	return ItemV1{
		ID:          i.ID,
		Name:        i.Name,
		Description: i.Description,
		CreatedAt:   i.CreatedAt,
	}
}

// CreateRequest is the create payload; the V1 endpoint ignores the
// enhanced fields.
type CreateRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Category    string            `json:"category"`
	Priority    int               `json:"priority"`
	Tags        []string          `json:"tags"`
	Metadata    map[string]string `json:"metadata"`
}

// UpdateRequest is the V2 partial-update payload; nil fields are left
// untouched.
type UpdateRequest struct {
	Name        *string            `json:"name"`
	Description *string            `json:"description"`
	Category    *string            `json:"category"`
	Priority    *int               `json:"priority"`
	Tags        *[]string          `json:"tags"`
	Metadata    *map[string]string `json:"metadata"`
}

// ListQuery carries the V2 pagination and filter parameters
type ListQuery struct {
	Page     int
	PerPage  int
	Category string
}

// ListMeta is the pagination block of a V2 list response
type ListMeta struct {
	Total   int `json:"total"`
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Pages   int `json:"pages"`
}
