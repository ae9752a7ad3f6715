package repository

import (
	"strings"
	"time"

	"github.com/sangkips/tillpoint-api/pkg/pagination"
	"gorm.io/gorm"
)

// SearchScope matches term case-insensitively against any of columns. It uses
// LOWER(..) LIKE so the same query runs on postgres and mysql.
func SearchScope(term string, columns ...string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		term = strings.TrimSpace(term)
		if term == "" || len(columns) == 0 {
			return db
		}
		pattern := "%" + strings.ToLower(term) + "%"
		clauses := make([]string, len(columns))
		args := make([]interface{}, len(columns))
		for i, c := range columns {
			clauses[i] = "LOWER(" + c + ") LIKE ?"
			args[i] = pattern
		}
		return db.Where(strings.Join(clauses, " OR "), args...)
	}
}

// DateRangeScope bounds column to [start, end]. Nil bounds are open.
func DateRangeScope(column string, start, end *time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if start != nil {
			db = db.Where(column+" >= ?", *start)
		}
		if end != nil {
			db = db.Where(column+" <= ?", *end)
		}
		return db
	}
}

// CursorScope applies keyset pagination over (created_at, id) and fetches one
// extra row so the caller can detect a further page.
func CursorScope(params *pagination.CursorParams) (func(db *gorm.DB) *gorm.DB, error) {
	params.Validate()
	cursor, err := params.DecodeCursor()
	if err != nil {
		return nil, err
	}
	return func(db *gorm.DB) *gorm.DB {
		if cursor != nil {
			if params.Direction == pagination.CursorDirectionNext {
				db = db.Where("(created_at, id) > (?, ?)", cursor.CreatedAt, cursor.ID)
			} else {
				db = db.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
			}
		}
		return db.Limit(params.Limit + 1).Order("created_at ASC, id ASC")
	}, nil
}

// orderClause builds a safe ORDER BY from a requested column, falling back to
// created_at DESC for anything not in allowed.
func orderClause(sortBy, sortOrder string, allowed ...string) string {
	col := "created_at"
	for _, a := range allowed {
		if sortBy == a {
			col = a
			break
		}
	}
	dir := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		dir = "ASC"
	}
	return col + " " + dir
}
