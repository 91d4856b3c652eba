package transform

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/heritage-importer/pkg/models"
)

func TestGroupBy_FirstSeenOrder(t *testing.T) {
	type rec struct{ k, v string }
	rows := []rec{{"a", "1"}, {"b", "2"}, {"a", "3"}, {"c", "4"}, {"b", "5"}}

	groups := GroupBy(rows, func(r rec) string { return r.k })

	require.Len(t, groups, 3)
	assert.Equal(t, "a", groups[0].Key)
	assert.Equal(t, []rec{{"a", "1"}, {"a", "3"}}, groups[0].Rows)
	assert.Equal(t, "b", groups[1].Key)
	assert.Equal(t, []rec{{"b", "2"}, {"b", "5"}}, groups[1].Rows)
	assert.Equal(t, "c", groups[2].Key)

	total := 0
	for _, g := range groups {
		total += len(g.Rows)
	}
	assert.Equal(t, len(rows), total)
}

func TestGroupBy_Empty(t *testing.T) {
	assert.Empty(t, GroupBy([]string{}, func(s string) string { return s }))
}

func TestParseTagString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty", "", nil},
		{"blank", "   ", nil},
		{"single", "bronze", []string{"bronze"}},
		{"commas", "bronze, gold,,silver ", []string{"bronze", "gold", "silver"}},
		{"semicolons", "bronze; gold;", []string{"bronze", "gold"}},
		{"semicolons win over commas", "Umayyad; Abbasid, early", []string{"Umayyad", "Abbasid, early"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseTagString(tt.input))
		})
	}
}

func TestExtractArtists_SharedMetadata(t *testing.T) {
	artists := ExtractArtists(" Ali ibn Muhammad ; Omar;", models.Artist{PeriodOfActivity: "10th century"})

	require.Len(t, artists, 2)
	assert.Equal(t, "Ali ibn Muhammad", artists[0].Name)
	assert.Equal(t, "Ali ibn Muhammad", artists[0].InternalName)
	assert.Equal(t, "mwnf3:artists:Ali ibn Muhammad", artists[0].BackwardCompatibility)
	assert.Equal(t, "10th century", artists[0].PeriodOfActivity)
	assert.Equal(t, "Omar", artists[1].Name)
	assert.Equal(t, "10th century", artists[1].PeriodOfActivity)

	assert.Empty(t, ExtractArtists("", models.Artist{}))
}

func TestExtractDetailArtists_AllSeparators(t *testing.T) {
	artists := extractDetailArtists("Sinan, Davud\nMehmed;Ahmed")

	names := make([]string, 0, len(artists))
	for _, a := range artists {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"Sinan", "Davud", "Mehmed", "Ahmed"}, names)
}

func TestTruncate(t *testing.T) {
	value := strings.Repeat("a", 300)

	out, w := Truncate(value, DefaultFieldLimit, "alternate_name")

	assert.Len(t, []rune(out), 255)
	assert.True(t, strings.HasSuffix(out, "..."))
	require.NotNil(t, w)
	assert.Equal(t, "AWE:Mus01:12:en - alternate_name truncated (300 → 255 chars)", w.Message("AWE:Mus01:12:en"))
}

func TestTruncate_FitsUntouched(t *testing.T) {
	out, w := Truncate("short", DefaultFieldLimit, "type")
	assert.Equal(t, "short", out)
	assert.Nil(t, w)
}

func TestTruncate_CountsRunes(t *testing.T) {
	value := strings.Repeat("é", 255)
	out, w := Truncate(value, DefaultFieldLimit, "type")
	assert.Equal(t, value, out)
	assert.Nil(t, w)
}

func TestBuildExtra(t *testing.T) {
	extra, ok := BuildExtra("workshop", "", "copyright", " Museum ", "binding_desc", "   ")
	assert.True(t, ok)
	assert.JSONEq(t, `{"copyright":"Museum"}`, extra)

	extra, ok = BuildExtra("workshop", "", "copyright", "")
	assert.False(t, ok)
	assert.Empty(t, extra)
}

func TestParseGeoCoordinates(t *testing.T) {
	lat, lon := ParseGeoCoordinates("36.8065, 10.1815")
	require.NotNil(t, lat)
	require.NotNil(t, lon)
	assert.InDelta(t, 36.8065, *lat, 1e-9)
	assert.InDelta(t, 10.1815, *lon, 1e-9)

	for _, bad := range []string{"", "36.8", "a,b", "1,2,3", "36.8,x"} {
		lat, lon := ParseGeoCoordinates(bad)
		assert.Nil(t, lat, bad)
		assert.Nil(t, lon, bad)
	}
}

func TestParseZoom(t *testing.T) {
	z := ParseZoom(" 12 ")
	require.NotNil(t, z)
	assert.Equal(t, 12, *z)
	assert.Nil(t, ParseZoom(""))
	assert.Nil(t, ParseZoom("far"))
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "egypte_nubie", Slug("Égypte & <b>Nubie</b>"))
	assert.Equal(t, "the_umayyads_2", Slug("  The Umayyads (2) "))
	assert.Equal(t, "", Slug("---"))
}

func TestLegacyDate(t *testing.T) {
	assert.Equal(t, "2004-05-12", LegacyDate("2004-05-12 00:00:00"))
	assert.Equal(t, "2004-05-12", LegacyDate("2004-05-12"))
	assert.Equal(t, "", LegacyDate("0000-00-00"))
	assert.Equal(t, "", LegacyDate(""))
	assert.Equal(t, "", LegacyDate("sometime in 2004"))
}

func TestInternalName_FallbackChain(t *testing.T) {
	assert.Equal(t, "Bowl", InternalName("<b>Bowl</b>", "INV-1", "W1", "12"))
	assert.Equal(t, "INV-1", InternalName("", "INV-1", "W1", "12"))
	assert.Equal(t, "W1", InternalName(" ", "", "W1", "12"))
	assert.Equal(t, "12", InternalName("", "", "", "12"))
}
