// Package transform maps denormalized legacy rows onto target write payloads.
//
// Transformers are pure: they never touch a database. Foreign keys are returned
// as backward-compatibility keys and resolved by the importers.
package transform

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	xtransform "golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/ekaya-inc/heritage-importer/pkg/markdown"
	"github.com/ekaya-inc/heritage-importer/pkg/models"
)

// DefaultFieldLimit is the width of VARCHAR translation columns.
const DefaultFieldLimit = 255

// Group is an ordered set of rows sharing a grouping key.
type Group[T any] struct {
	Key  string
	Rows []T
}

// GroupBy groups rows by key. Groups come out in first-seen key order and rows
// keep their input order inside a group.
func GroupBy[T any](rows []T, key func(T) string) []Group[T] {
	index := make(map[string]int)
	var groups []Group[T]
	for _, r := range rows {
		k := key(r)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group[T]{Key: k})
		}
		groups[i].Rows = append(groups[i].Rows, r)
	}
	return groups
}

// ParseTagString splits a legacy tag list. Semicolons separate tags when
// present, otherwise commas do.
func ParseTagString(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	sep := ","
	if strings.Contains(s, ";") {
		sep = ";"
	}
	return splitTrimmed(s, sep)
}

// ExtractArtists splits a semicolon separated artist field. Every artist
// shares the biographical fields of meta.
func ExtractArtists(field string, meta models.Artist) []models.Artist {
	return artistsFrom(splitTrimmed(field, ";"), meta)
}

var detailArtistSeparators = regexp.MustCompile(`[;,\n]`)

// extractDetailArtists splits monument detail artist fields, which also use
// commas and line breaks.
func extractDetailArtists(field string) []models.Artist {
	var names []string
	for _, part := range detailArtistSeparators.Split(field, -1) {
		if p := strings.TrimSpace(part); p != "" {
			names = append(names, p)
		}
	}
	return artistsFrom(names, models.Artist{})
}

func artistsFrom(names []string, meta models.Artist) []models.Artist {
	var out []models.Artist
	for _, name := range names {
		a := meta
		a.Name = name
		a.InternalName = name
		a.BackwardCompatibility = ArtistKey(name)
		out = append(out, a)
	}
	return out
}

func splitTrimmed(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Warning describes a value shortened to fit its column.
type Warning struct {
	Field  string
	Length int
	Limit  int
}

// Message renders the warning for the record identified by ref.
func (w Warning) Message(ref string) string {
	return fmt.Sprintf("%s - %s truncated (%d → %d chars)", ref, w.Field, w.Length, w.Limit)
}

// Truncate shortens value to limit characters, ending in "...". The warning is
// nil when value already fits.
func Truncate(value string, limit int, field string) (string, *Warning) {
	n := utf8.RuneCountInString(value)
	if n <= limit {
		return value, nil
	}
	r := []rune(value)
	keep := limit - 3
	if keep < 0 {
		keep = 0
	}
	return string(r[:keep]) + "...", &Warning{Field: field, Length: n, Limit: limit}
}

// BuildExtra encodes the non-empty values of alternating key/value pairs as a
// JSON object. ok is false when every value is empty.
func BuildExtra(pairs ...string) (string, bool) {
	extra := make(map[string]string)
	for i := 0; i+1 < len(pairs); i += 2 {
		if v := strings.TrimSpace(pairs[i+1]); v != "" {
			extra[pairs[i]] = v
		}
	}
	if len(extra) == 0 {
		return "", false
	}
	b, err := json.Marshal(extra)
	if err != nil {
		return "", false
	}
	return string(b), true
}

// Text converts a legacy HTML fragment to Markdown.
func Text(s string) string {
	return markdown.FromHTML(s)
}

// ParseGeoCoordinates reads "lat,lon". Either both values parse or neither is returned.
func ParseGeoCoordinates(s string) (lat, lon *float64) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return nil, nil
	}
	la, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil, nil
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil, nil
	}
	return &la, &lo
}

// ParseZoom returns nil for empty or non-numeric zoom levels.
func ParseZoom(s string) *int {
	z, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &z
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug folds accents and reduces s to lower-case words joined by underscores.
func Slug(s string) string {
	t := xtransform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := xtransform.String(t, markdown.StripHTML(s))
	if err != nil {
		folded = s
	}
	slug := nonSlug.ReplaceAllString(strings.ToLower(folded), "_")
	return strings.Trim(slug, "_")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func joinNonEmpty(sep string, values ...string) string {
	var parts []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, sep)
}
