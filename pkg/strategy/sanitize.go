package strategy

import (
	"strings"
	"unicode/utf8"
)

// sanitize replaces invalid UTF-8 and strips NUL bytes, both of which the
// target drivers reject.
func sanitize(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "�")
	}
	return strings.ReplaceAll(s, "\x00", "")
}

// nullable binds an empty string as NULL.
func nullable(s string) any {
	s = sanitize(s)
	if s == "" {
		return nil
	}
	return s
}

func nullableFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func nullableInt(i *int) any {
	if i == nil {
		return nil
	}
	return *i
}
