package transform

import (
	"fmt"
	"strings"

	"github.com/ekaya-inc/heritage-importer/pkg/codes"
	"github.com/ekaya-inc/heritage-importer/pkg/legacydb"
	"github.com/ekaya-inc/heritage-importer/pkg/models"
)

// MonumentDetailsQuery selects every monument detail language row.
const MonumentDetailsQuery = "SELECT * FROM mwnf3.monument_details ORDER BY project_id, country_id, institution_id, monument_id, detail_id"

const detailNameFromDescription = 100

// GroupMonumentDetails groups detail rows by their non-language primary key.
func GroupMonumentDetails(rows []legacydb.Row) []Group[legacydb.Row] {
	return GroupBy(rows, func(r legacydb.Row) string {
		return MonumentDetailKey(r.Trimmed("project_id"), r.Trimmed("country_id"), r.Trimmed("institution_id"),
			r.Trimmed("monument_id"), r.Trimmed("detail_id"))
	})
}

// TransformMonumentDetail maps a detail group to an item of type detail whose
// parent is the monument.
func TransformMonumentDetail(g Group[legacydb.Row], defaultLanguageID string) (*ItemRecord, error) {
	if len(g.Rows) == 0 {
		return nil, errNoRows
	}
	first := g.Rows[0]
	projectID := first.Trimmed("project_id")
	country := first.Trimmed("country_id")
	institutionID := first.Trimmed("institution_id")
	monumentID := first.Trimmed("monument_id")

	countryID, err := countryOf(country)
	if err != nil {
		return nil, fmt.Errorf("monument detail %s: %w", g.Key, err)
	}

	rec := &ItemRecord{
		Key:        g.Key,
		ProjectKey: ProjectKey(projectID),
		PartnerKey: InstitutionKey(institutionID, country),
		ParentKey:  MonumentKey(projectID, country, institutionID, monumentID),
	}

	selected, warning := selectDefault(g.Rows, "lang_id", defaultLanguageID, "Monument detail "+g.Key)
	if warning != "" {
		rec.Warnings = append(rec.Warnings, warning)
	}
	rec.Item = models.Item{
		Type:                  models.ItemTypeDetail,
		InternalName:          InternalName(selected.String("name"), "", "", first.Trimmed("detail_id")),
		BackwardCompatibility: g.Key,
		CountryID:             countryID,
	}

	for _, r := range g.Rows {
		t, w, ok := detailTranslation(r, "lang_id", g.Key)
		rec.Warnings = append(rec.Warnings, w...)
		if ok {
			rec.Translations = append(rec.Translations, t)
		}
	}
	rec.Artists = extractDetailArtists(first.String("artist"))
	return rec, nil
}

// detailTranslation maps name, description, location and date of a detail
// row. A missing name is taken from the start of the description.
func detailTranslation(r legacydb.Row, langColumn, key string) (TranslationRecord, []string, bool) {
	description := Text(r.String("description"))
	if description == "" {
		return TranslationRecord{}, nil, false
	}
	lang := r.Trimmed(langColumn)
	languageID, err := codes.Language(lang)
	if err != nil {
		return TranslationRecord{}, []string{fmt.Sprintf("%s:%s - %v", key, lang, err)}, false
	}

	name := Text(r.String("name"))
	if name == "" {
		runes := []rune(description)
		if len(runes) > detailNameFromDescription {
			runes = runes[:detailNameFromDescription]
		}
		name = strings.TrimSpace(string(runes))
	}
	return TranslationRecord{Data: models.ItemTranslation{
		LanguageID:            languageID,
		Name:                  name,
		Description:           description,
		Location:              Text(r.String("location")),
		Dates:                 Text(r.String("date")),
		BackwardCompatibility: key,
	}}, nil, true
}
