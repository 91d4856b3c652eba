package legacydb

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ekaya-inc/heritage-importer/pkg/bckey"
)

func TestNewRow_PreservesOrderAndDecodesBytes(t *testing.T) {
	row := NewRow(
		[]string{"project_id", "country", "lang", "number", "name"},
		[]any{[]byte("AWE"), "eg", []byte("en"), int64(12), nil},
	)

	assert.Equal(t, []string{"project_id", "country", "lang", "number", "name"}, row.Columns())
	assert.Equal(t, "AWE", row.String("project_id"))
	assert.Equal(t, "AWE", row.Get("project_id"))
	assert.Equal(t, "12", row.String("number"))
	assert.Equal(t, 12, row.Int("number"))
	assert.Equal(t, "", row.String("name"))
	assert.False(t, row.Has("name"))
	assert.True(t, row.Has("lang"))
	assert.False(t, row.Has("missing"))
}

func TestRow_Fields(t *testing.T) {
	row := RowOf("word_id", int64(4), "lang_id", "fr")

	assert.Equal(t, []bckey.Field{
		{Name: "word_id", Value: int64(4)},
		{Name: "lang_id", Value: "fr"},
	}, row.Fields())
	assert.Equal(t, "mwnf3:gl_definitions:4", bckey.FormatDenormalized("mwnf3", "gl_definitions", row.Fields()))
}

func TestRow_TypedAccessors(t *testing.T) {
	row := RowOf(
		"zoom", "12",
		"lat", "36.8065",
		"bad", "abc",
		"flag", "1",
		"text", "  padded  ",
		"f", 2.5,
	)

	assert.Equal(t, 12, row.Int("zoom"))
	assert.Equal(t, 0, row.Int("bad"))

	lat, ok := row.Float("lat")
	assert.True(t, ok)
	assert.InDelta(t, 36.8065, lat, 1e-9)
	_, ok = row.Float("bad")
	assert.False(t, ok)
	_, ok = row.Float("missing")
	assert.False(t, ok)

	assert.True(t, row.Bool("flag"))
	assert.False(t, row.Bool("text"))
	assert.Equal(t, "padded", row.Trimmed("text"))
	assert.Equal(t, "2.5", row.String("f"))
	assert.Equal(t, 2, row.Int("f"))
}
