package transform

import (
	"fmt"

	"github.com/ekaya-inc/heritage-importer/pkg/legacydb"
	"github.com/ekaya-inc/heritage-importer/pkg/models"
)

// MonumentsQuery selects every monument language row.
const MonumentsQuery = "SELECT * FROM mwnf3.monuments ORDER BY project_id, country, institution_id, number"

var monumentTagColumns = map[string]string{"keywords": models.TagCategoryKeyword}

// GroupMonuments groups monument rows by their non-language primary key.
func GroupMonuments(rows []legacydb.Row) []Group[legacydb.Row] {
	return GroupBy(rows, func(r legacydb.Row) string {
		return MonumentKey(r.Trimmed("project_id"), r.Trimmed("country"), r.Trimmed("institution_id"), r.Trimmed("number"))
	})
}

// TransformMonument maps one monument group to an item of type monument.
// Monuments belong to institutions and carry keyword tags only.
func TransformMonument(g Group[legacydb.Row], defaultLanguageID string, hasEPM bool) (*ItemRecord, error) {
	if len(g.Rows) == 0 {
		return nil, errNoRows
	}
	first := g.Rows[0]
	projectID := first.Trimmed("project_id")
	institutionID := first.Trimmed("institution_id")
	country := first.Trimmed("country")
	number := first.Trimmed("number")

	countryID, err := countryOf(country)
	if err != nil {
		return nil, fmt.Errorf("monument %s: %w", g.Key, err)
	}

	rec := &ItemRecord{
		Key:        g.Key,
		ProjectKey: ProjectKey(projectID),
		PartnerKey: InstitutionKey(institutionID, country),
	}

	selected, warning := selectDefault(g.Rows, "lang", defaultLanguageID, "Monument "+g.Key)
	if warning != "" {
		rec.Warnings = append(rec.Warnings, warning)
	}
	rec.Item = models.Item{
		Type:                  models.ItemTypeMonument,
		InternalName:          InternalName(selected.String("name"), selected.String("inventory_id"), selected.String("working_number"), number),
		BackwardCompatibility: g.Key,
		CountryID:             countryID,
		OwnerReference:        selected.Trimmed("inventory_id"),
		MwnfReference:         selected.Trimmed("working_number"),
	}

	ref := fmt.Sprintf("%s:%s:%s", projectID, institutionID, number)
	translations, warnings := planned(PlanTranslations(projectID, g.Rows, hasEPM), g.Key, ref, "lang")
	rec.Translations = translations
	rec.Warnings = append(rec.Warnings, warnings...)
	rec.Tags = tagsFrom(first, "lang", monumentTagColumns, []string{"keywords"})
	return rec, nil
}
