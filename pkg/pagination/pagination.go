// Package pagination carries list parameters and result envelopes for both
// offset (page/per_page) and keyset (cursor/limit) listing.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

const (
	DefaultPerPage = 15
	MaxPerPage     = 100
)

func clampSize(n int) int {
	switch {
	case n < 1:
		return DefaultPerPage
	case n > MaxPerPage:
		return MaxPerPage
	}
	return n
}

// PaginationParams is the page/per_page query pair
type PaginationParams struct {
	Page    int `form:"page" json:"page"`
	PerPage int `form:"per_page" json:"per_page"`
}

// Validate clamps the page to >= 1 and the page size to [1, MaxPerPage]
func (p *PaginationParams) Validate() {
	p.Page = max(p.Page, 1)
	p.PerPage = clampSize(p.PerPage)
}

func (p *PaginationParams) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Pagination describes one page of an offset listing
type Pagination struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"total_pages"`
	HasNext     bool  `json:"has_next"`
	HasPrev     bool  `json:"has_prev"`
}

func NewPagination(page, perPage int, total int64) *Pagination {
	pages := 0
	if perPage > 0 {
		pages = int((total + int64(perPage) - 1) / int64(perPage))
	}
	return &Pagination{
		CurrentPage: page,
		PerPage:     perPage,
		Total:       total,
		TotalPages:  pages,
		HasNext:     page < pages,
		HasPrev:     page > 1,
	}
}

type PaginatedResult[T any] struct {
	Items      []T         `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

func NewPaginatedResult[T any](items []T, p *Pagination) *PaginatedResult[T] {
	if items == nil {
		items = []T{}
	}
	return &PaginatedResult[T]{Items: items, Pagination: p}
}

// CursorDirection is "next" or "prev"
type CursorDirection string

const (
	CursorDirectionNext CursorDirection = "next"
	CursorDirectionPrev CursorDirection = "prev"
)

// Cursor is the keyset position: the last row's created_at and id.
type Cursor struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// CursorParams is the cursor/direction/limit query triple. Cursor is opaque
// URL-safe base64.
type CursorParams struct {
	Cursor    string          `form:"cursor" json:"cursor"`
	Direction CursorDirection `form:"direction" json:"direction"`
	Limit     int             `form:"limit" json:"limit"`
}

func (c *CursorParams) Validate() {
	c.Limit = clampSize(c.Limit)
	if c.Direction != CursorDirectionPrev {
		c.Direction = CursorDirectionNext
	}
}

// DecodeCursor returns nil for an empty cursor
func (c *CursorParams) DecodeCursor() (*Cursor, error) {
	if c.Cursor == "" {
		return nil, nil
	}
	raw, err := base64.URLEncoding.DecodeString(c.Cursor)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor format: %w", err)
	}
	var cur Cursor
	if err := json.Unmarshal(raw, &cur); err != nil {
		return nil, fmt.Errorf("invalid cursor data: %w", err)
	}
	return &cur, nil
}

func EncodeCursor(id string, createdAt time.Time) string {
	raw, _ := json.Marshal(Cursor{ID: id, CreatedAt: createdAt})
	return base64.URLEncoding.EncodeToString(raw)
}

type CursorPagination struct {
	NextCursor *string `json:"next_cursor,omitempty"`
	PrevCursor *string `json:"prev_cursor,omitempty"`
	HasNext    bool    `json:"has_next"`
	HasPrev    bool    `json:"has_prev"`
	Limit      int     `json:"limit"`
}

type CursorPaginatedResult[T any] struct {
	Items      []T               `json:"items"`
	Pagination *CursorPagination `json:"pagination"`
}

// NewCursorPagination expects up to limit+1 rows; the extra row only signals
// that another page exists and is dropped. HasPrev is left for the caller,
// which knows whether a cursor came in.
func NewCursorPagination[T any](rows []T, limit int, id func(T) string, createdAt func(T) time.Time) (*CursorPagination, []T) {
	p := &CursorPagination{Limit: limit, HasNext: len(rows) > limit}
	if p.HasNext {
		rows = rows[:limit]
	}
	if n := len(rows); n > 0 {
		next := EncodeCursor(id(rows[n-1]), createdAt(rows[n-1]))
		prev := EncodeCursor(id(rows[0]), createdAt(rows[0]))
		p.NextCursor, p.PrevCursor = &next, &prev
	}
	return p, rows
}

func NewCursorPaginatedResult[T any](items []T, p *CursorPagination) *CursorPaginatedResult[T] {
	if items == nil {
		items = []T{}
	}
	return &CursorPaginatedResult[T]{Items: items, Pagination: p}
}
