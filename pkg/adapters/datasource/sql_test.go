package datasource

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRebind(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		placeholder func(int) string
		expected    string
	}{
		{
			name:        "no placeholders",
			query:       "SELECT 1",
			placeholder: DollarPlaceholder,
			expected:    "SELECT 1",
		},
		{
			name:        "dollar",
			query:       "SELECT id FROM items WHERE backward_compatibility = ? AND type = ?",
			placeholder: DollarPlaceholder,
			expected:    "SELECT id FROM items WHERE backward_compatibility = $1 AND type = $2",
		},
		{
			name:        "at p",
			query:       "UPDATE partners SET monument_item_id = ? WHERE id = ?",
			placeholder: AtPPlaceholder,
			expected:    "UPDATE partners SET monument_item_id = @p1 WHERE id = @p2",
		},
		{
			name:        "question marks inside literals untouched",
			query:       "SELECT '?' AS q, `a?b` FROM t WHERE x = ?",
			placeholder: DollarPlaceholder,
			expected:    "SELECT '?' AS q, `a?b` FROM t WHERE x = $1",
		},
		{
			name:        "question keeps",
			query:       "SELECT ? , ?",
			placeholder: QuestionPlaceholder,
			expected:    "SELECT ? , ?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Rebind(tt.query, tt.placeholder))
		})
	}
}

func TestInsertStatement(t *testing.T) {
	assert.Equal(t,
		"INSERT INTO item_tag (item_id, tag_id) VALUES (?, ?)",
		InsertStatement("INSERT", "item_tag", []string{"item_id", "tag_id"}))
	assert.Equal(t,
		"INSERT IGNORE INTO artist_item (item_id, artist_id) VALUES (?, ?)",
		InsertStatement("INSERT IGNORE", "artist_item", []string{"item_id", "artist_id"}))
}
