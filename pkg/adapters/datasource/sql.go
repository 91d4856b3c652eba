package datasource

import (
	"strconv"
	"strings"
)

// QuestionPlaceholder keeps ? placeholders.
func QuestionPlaceholder(int) string { return "?" }

// DollarPlaceholder renders $1, $2, ...
func DollarPlaceholder(n int) string { return "$" + strconv.Itoa(n) }

// AtPPlaceholder renders @p1, @p2, ...
func AtPPlaceholder(n int) string { return "@p" + strconv.Itoa(n) }

// Rebind replaces each ? outside quoted literals and identifiers with
// placeholder(n), n counting from 1.
func Rebind(query string, placeholder func(n int) string) string {
	if !strings.Contains(query, "?") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	var quote byte
	for i := 0; i < len(query); i++ {
		c := query[i]
		if quote != 0 {
			b.WriteByte(c)
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			quote = c
			b.WriteByte(c)
		case '?':
			n++
			b.WriteString(placeholder(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// InsertStatement builds "INSERT INTO table (cols) VALUES (?, ...)" with ? placeholders.
func InsertStatement(verb, table string, columns []string) string {
	marks := make([]string, len(columns))
	for i := range marks {
		marks[i] = "?"
	}
	return verb + " INTO " + table + " (" + strings.Join(columns, ", ") + ") VALUES (" + strings.Join(marks, ", ") + ")"
}
