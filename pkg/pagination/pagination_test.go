package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginationParamsValidate(t *testing.T) {
	p := &PaginationParams{Page: 0, PerPage: 500}
	p.Validate()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 100, p.PerPage)
	assert.Equal(t, 0, p.Offset())
}

func TestNewPagination(t *testing.T) {
	pag := NewPagination(2, 15, 31)
	assert.Equal(t, 3, pag.TotalPages)
	assert.True(t, pag.HasNext)
	assert.True(t, pag.HasPrev)
}

func TestCursorRoundTrip(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	params := &CursorParams{Cursor: EncodeCursor("abc", at)}
	cur, err := params.DecodeCursor()
	require.NoError(t, err)
	assert.Equal(t, "abc", cur.ID)
	assert.True(t, at.Equal(cur.CreatedAt))
}

func TestNewCursorPaginationTrimsExtra(t *testing.T) {
	items := []int{1, 2, 3}
	pag, trimmed := NewCursorPagination(items, 2,
		func(i int) string { return "id" },
		func(i int) time.Time { return time.Time{} },
	)
	assert.True(t, pag.HasNext)
	assert.Equal(t, []int{1, 2}, trimmed)
	require.NotNil(t, pag.NextCursor)
}
