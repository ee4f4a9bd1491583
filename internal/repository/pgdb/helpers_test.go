package pgdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWhereBuilder(t *testing.T) {
	testCases := []struct {
		name      string
		build     func(w *whereBuilder)
		wantWhere string
		wantLimit string
		wantArgs  []any
	}{
		{
			name:      "no filters",
			build:     func(*whereBuilder) {},
			wantWhere: "",
			wantLimit: " LIMIT $1 OFFSET $2",
			wantArgs:  []any{10, 0},
		},
		{
			name: "equality filters joined with AND",
			build: func(w *whereBuilder) {
				w.add("product_id = $%d", int64(7))
				w.add("performed_by = $%d", int64(3))
			},
			wantWhere: " WHERE product_id = $1 AND performed_by = $2",
			wantLimit: " LIMIT $3 OFFSET $4",
			wantArgs:  []any{int64(7), int64(3), 10, 0},
		},
		{
			name: "substring filter after equality",
			build: func(w *whereBuilder) {
				w.add("product_id = $%d", int64(7))
				w.addLike("reason", "Restock")
			},
			wantWhere: " WHERE product_id = $1 AND reason ILIKE '%' || $2 || '%'",
			wantLimit: " LIMIT $3 OFFSET $4",
			wantArgs:  []any{int64(7), "Restock", 10, 0},
		},
		{
			name: "wildcards in substring are escaped",
			build: func(w *whereBuilder) {
				w.addLike("reason", `50%_off\`)
			},
			wantWhere: " WHERE reason ILIKE '%' || $1 || '%'",
			wantLimit: " LIMIT $2 OFFSET $3",
			wantArgs:  []any{`50\%\_off\\`, 10, 0},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var w whereBuilder
			tc.build(&w)

			limit, args := w.page(10, 0)

			assert.Equal(t, tc.wantWhere, w.sql())
			assert.Equal(t, tc.wantLimit, limit)
			assert.Equal(t, tc.wantArgs, args)
		})
	}
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "plain", escapeLike("plain"))
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\dir`, escapeLike(`c:\dir`))
}
