package codes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/heritage-importer/pkg/apperrors"
)

func TestLanguage(t *testing.T) {
	tests := []struct {
		legacy   string
		expected string
	}{
		{"en", "eng"},
		{"fr", "fra"},
		{"ar", "ara"},
		{"ch", "zho"},
		{"zh", "zho"},
		{"se", "swe"},
		{" EN ", "eng"},
	}

	for _, tt := range tests {
		t.Run(tt.legacy, func(t *testing.T) {
			code, err := Language(tt.legacy)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, code)
		})
	}
}

func TestLanguage_Unknown(t *testing.T) {
	_, err := Language("xx")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnknownCode)
	assert.Contains(t, err.Error(), "unknown language code 'xx'")
}

func TestCountry(t *testing.T) {
	tests := []struct {
		legacy   string
		expected string
	}{
		{"eg", "egy"},
		{"uk", "gbr"},
		{"ix", "ita"},
		{"pa", "pse"},
		{"px", "pse"},
		{"pd", "zzzpd"},
		{"ww", "zzzww"},
		{"Tr", "tur"},
	}

	for _, tt := range tests {
		t.Run(tt.legacy, func(t *testing.T) {
			code, err := Country(tt.legacy)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, code)
		})
	}
}

func TestCountry_Unknown(t *testing.T) {
	_, err := Country("")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnknownCode)
	assert.False(t, IsKnownCountry("qq"))
	assert.True(t, IsKnownCountry("eg"))
}

func TestLegacyLists_Sorted(t *testing.T) {
	langs := LegacyLanguages()
	assert.Len(t, langs, 20)
	assert.IsNonDecreasing(t, langs)
	assert.True(t, IsKnownLanguage("hu"))

	assert.IsNonDecreasing(t, LegacyCountries())
}
