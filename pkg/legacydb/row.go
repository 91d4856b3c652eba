package legacydb

import (
	"strconv"
	"strings"
	"time"

	"github.com/ekaya-inc/heritage-importer/pkg/bckey"
)

// Row is one legacy result row. Column order is preserved.
type Row struct {
	columns []string
	values  map[string]any
}

// NewRow builds a Row from parallel column and value slices.
// []byte values are decoded to strings.
func NewRow(columns []string, values []any) Row {
	r := Row{
		columns: make([]string, len(columns)),
		values:  make(map[string]any, len(columns)),
	}
	copy(r.columns, columns)
	for i, col := range columns {
		var v any
		if i < len(values) {
			v = values[i]
		}
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		r.values[col] = v
	}
	return r
}

// RowOf builds a Row from alternating column/value pairs. Intended for tests and fixtures.
func RowOf(pairs ...any) Row {
	columns := make([]string, 0, len(pairs)/2)
	values := make([]any, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		col, _ := pairs[i].(string)
		columns = append(columns, col)
		values = append(values, pairs[i+1])
	}
	return NewRow(columns, values)
}

// Columns returns the column names in select order.
func (r Row) Columns() []string {
	out := make([]string, len(r.columns))
	copy(out, r.columns)
	return out
}

// Fields returns name/value pairs in select order.
func (r Row) Fields() []bckey.Field {
	fields := make([]bckey.Field, 0, len(r.columns))
	for _, col := range r.columns {
		fields = append(fields, bckey.Field{Name: col, Value: r.values[col]})
	}
	return fields
}

// Get returns the raw value; nil for NULL or unknown columns.
func (r Row) Get(col string) any {
	return r.values[col]
}

// Has reports whether the column exists and is not NULL.
func (r Row) Has(col string) bool {
	v, ok := r.values[col]
	return ok && v != nil
}

// String returns the value as text; "" for NULL or unknown columns.
func (r Row) String(col string) string {
	switch v := r.values[col].(type) {
	case nil:
		return ""
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format("2006-01-02 15:04:05")
	default:
		return ""
	}
}

// Trimmed returns String with surrounding whitespace removed.
func (r Row) Trimmed(col string) string {
	return strings.TrimSpace(r.String(col))
}

// Int returns the value as an int; 0 for NULL or unparsable text.
func (r Row) Int(col string) int {
	switch v := r.values[col].(type) {
	case int64:
		return int(v)
	case int:
		return v
	case int32:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		return int(v)
	case bool:
		if v {
			return 1
		}
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(r.String(col)))
	if err != nil {
		return 0
	}
	return n
}

// Float returns the value as a float64 and whether it parsed.
func (r Row) Float(col string) (float64, bool) {
	s := strings.TrimSpace(r.String(col))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Bool treats 1, "1", "true", "y" and "yes" as true.
func (r Row) Bool(col string) bool {
	switch strings.ToLower(strings.TrimSpace(r.String(col))) {
	case "1", "true", "y", "yes":
		return true
	}
	return false
}
