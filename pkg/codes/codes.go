// Package codes maps legacy two-letter language and country codes to the
// three-letter codes used as primary keys in the target schema.
package codes

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ekaya-inc/heritage-importer/pkg/apperrors"
)

// ISO 639-1 (plus a few legacy aliases) to ISO 639-2/T.
var languages = map[string]string{
	"ar": "ara",
	"cs": "ces",
	"de": "deu",
	"en": "eng",
	"es": "spa",
	"fa": "fas",
	"fr": "fra",
	"he": "heb",
	"hr": "hrv",
	"hu": "hun",
	"it": "ita",
	"ja": "jpn",
	"pt": "por",
	"ru": "rus",
	"tr": "tur",
	"zh": "zho",
	"el": "ell",
	"ch": "zho",
	"se": "swe",
	"si": "slv",
}

// Legacy country codes are a mix of ISO 3166-1 alpha-2 and house codes.
// zzzpd and zzzww are placeholders for non-country partners.
var countries = map[string]string{
	"at": "aut",
	"az": "aze",
	"be": "bel",
	"br": "bra",
	"ca": "can",
	"cz": "cze",
	"de": "deu",
	"dz": "dza",
	"eg": "egy",
	"es": "esp",
	"fr": "fra",
	"gr": "grc",
	"hr": "hrv",
	"hu": "hun",
	"iq": "irq",
	"jo": "jor",
	"jp": "jpn",
	"lb": "lbn",
	"ly": "lby",
	"ma": "mar",
	"pl": "pol",
	"pt": "prt",
	"ro": "rou",
	"ru": "rus",
	"sa": "sau",
	"sy": "syr",
	"tn": "tun",
	"tr": "tur",
	"ab": "alb",
	"ag": "arg",
	"al": "aus",
	"bg": "bgd",
	"bh": "bhr",
	"bl": "blr",
	"bs": "bih",
	"bu": "bgr",
	"ch": "chn",
	"co": "com",
	"cy": "cyp",
	"dj": "dji",
	"dn": "dnk",
	"et": "est",
	"fn": "fin",
	"ge": "geo",
	"ia": "irn",
	"is": "isr",
	"ix": "ita",
	"ln": "ltu",
	"lt": "lva",
	"lx": "lux",
	"mc": "mkd",
	"md": "mda",
	"ml": "mlt",
	"mn": "mne",
	"mt": "mrt",
	"nt": "nld",
	"on": "omn",
	"pa": "pse",
	"pd": "zzzpd",
	"px": "pse",
	"qt": "qat",
	"rm": "rou",
	"sb": "srb",
	"sd": "sdn",
	"sf": "zaf",
	"sl": "svk",
	"so": "som",
	"sw": "che",
	"uc": "ukr",
	"uk": "gbr",
	"va": "vat",
	"ww": "zzzww",
	"ym": "yem",
}

// Language returns the three-letter language code for a legacy code.
func Language(legacy string) (string, error) {
	code := normalize(legacy)
	if iso, ok := languages[code]; ok {
		return iso, nil
	}
	return "", fmt.Errorf("unknown language code '%s': %w", legacy, apperrors.ErrUnknownCode)
}

// Country returns the three-letter country code for a legacy code.
func Country(legacy string) (string, error) {
	code := normalize(legacy)
	if iso, ok := countries[code]; ok {
		return iso, nil
	}
	return "", fmt.Errorf("unknown country code '%s': %w", legacy, apperrors.ErrUnknownCode)
}

// IsKnownLanguage reports whether Language would succeed.
func IsKnownLanguage(legacy string) bool {
	_, ok := languages[normalize(legacy)]
	return ok
}

// IsKnownCountry reports whether Country would succeed.
func IsKnownCountry(legacy string) bool {
	_, ok := countries[normalize(legacy)]
	return ok
}

// LegacyLanguages lists the known legacy language codes, sorted.
func LegacyLanguages() []string {
	return sortedKeys(languages)
}

// LegacyCountries lists the known legacy country codes, sorted.
func LegacyCountries() []string {
	return sortedKeys(countries)
}

func normalize(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
