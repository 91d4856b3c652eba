// Package bckey formats and parses backward-compatibility keys.
//
// A key identifies a legacy record across runs: {schema}:{table}:{pk1}:{pk2}:...
// Every migrated target row stores its key in the backward_compatibility column.
package bckey

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ekaya-inc/heritage-importer/pkg/apperrors"
)

// Separator joins key segments.
const Separator = ":"

// ErrFormat is returned by Parse for keys with fewer than three segments.
var ErrFormat = fmt.Errorf("%w: expected schema:table:pk", apperrors.ErrInvalidKey)

// DefaultExcludedColumns are the language columns dropped by FormatDenormalized.
var DefaultExcludedColumns = []string{"lang", "lang_id", "language", "language_id", "language_code"}

// Key is a legacy record reference.
type Key struct {
	Schema   string
	Table    string
	PKValues []any
}

// ParsedKey is the result of Parse. PKValues are always strings.
type ParsedKey struct {
	Schema   string
	Table    string
	PKValues []string
}

// Field is one named primary key column value.
type Field struct {
	Name  string
	Value any
}

// Format renders k as schema:table:pk1:pk2:...
func Format(k Key) string {
	parts := make([]string, 0, len(k.PKValues)+2)
	parts = append(parts, k.Schema, k.Table)
	for _, v := range k.PKValues {
		parts = append(parts, stringify(v))
	}
	return strings.Join(parts, Separator)
}

// Parse splits a key produced by Format.
func Parse(s string) (ParsedKey, error) {
	parts := strings.Split(s, Separator)
	if len(parts) < 3 {
		return ParsedKey{}, fmt.Errorf("%w: %q", ErrFormat, s)
	}
	return ParsedKey{
		Schema:   parts[0],
		Table:    parts[1],
		PKValues: parts[2:],
	}, nil
}

// FormatDenormalized builds a key from fields in declaration order, skipping the
// excluded columns. When exclude is empty DefaultExcludedColumns apply.
func FormatDenormalized(schema, table string, fields []Field, exclude ...string) string {
	if len(exclude) == 0 {
		exclude = DefaultExcludedColumns
	}
	skip := make(map[string]struct{}, len(exclude))
	for _, name := range exclude {
		skip[strings.ToLower(name)] = struct{}{}
	}

	values := make([]any, 0, len(fields))
	for _, f := range fields {
		if _, ok := skip[strings.ToLower(f.Name)]; ok {
			continue
		}
		values = append(values, f.Value)
	}
	return Format(Key{Schema: schema, Table: table, PKValues: values})
}

// FormatImage appends the 1-based image index to the record key.
func FormatImage(k Key, index int) string {
	return Format(k) + Separator + strconv.Itoa(index)
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case int:
		return strconv.Itoa(t)
	case int8:
		return strconv.FormatInt(int64(t), 10)
	case int16:
		return strconv.FormatInt(int64(t), 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint:
		return strconv.FormatUint(uint64(t), 10)
	case uint8:
		return strconv.FormatUint(uint64(t), 10)
	case uint16:
		return strconv.FormatUint(uint64(t), 10)
	case uint32:
		return strconv.FormatUint(uint64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
