package transform

import (
	"errors"
	"fmt"

	"github.com/ekaya-inc/heritage-importer/pkg/legacydb"
	"github.com/ekaya-inc/heritage-importer/pkg/models"
)

// ObjectsQuery selects every object language row.
const ObjectsQuery = "SELECT * FROM mwnf3.objects ORDER BY project_id, country, museum_id, number"

var errNoRows = errors.New("group has no rows")

// GroupObjects groups object rows by their non-language primary key.
func GroupObjects(rows []legacydb.Row) []Group[legacydb.Row] {
	return GroupBy(rows, func(r legacydb.Row) string {
		return ObjectKey(r.Trimmed("project_id"), r.Trimmed("country"), r.Trimmed("museum_id"), r.Trimmed("number"))
	})
}

// TransformObject maps one object group to an item of type object.
func TransformObject(g Group[legacydb.Row], defaultLanguageID string, hasEPM bool) (*ItemRecord, error) {
	if len(g.Rows) == 0 {
		return nil, errNoRows
	}
	first := g.Rows[0]
	projectID := first.Trimmed("project_id")
	museumID := first.Trimmed("museum_id")
	country := first.Trimmed("country")
	number := first.Trimmed("number")

	countryID, err := countryOf(country)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", g.Key, err)
	}

	rec := &ItemRecord{
		Key:        g.Key,
		ProjectKey: ProjectKey(projectID),
		PartnerKey: MuseumKey(museumID, country),
	}

	selected, warning := selectDefault(g.Rows, "lang", defaultLanguageID, "Object "+g.Key)
	if warning != "" {
		rec.Warnings = append(rec.Warnings, warning)
	}
	rec.Item = models.Item{
		Type:                  models.ItemTypeObject,
		InternalName:          InternalName(selected.String("name"), selected.String("inventory_id"), selected.String("working_number"), number),
		BackwardCompatibility: g.Key,
		CountryID:             countryID,
		OwnerReference:        selected.Trimmed("inventory_id"),
		MwnfReference:         selected.Trimmed("working_number"),
	}

	ref := fmt.Sprintf("%s:%s:%s", projectID, museumID, number)
	translations, warnings := planned(PlanTranslations(projectID, g.Rows, hasEPM), g.Key, ref, "lang")
	rec.Translations = translations
	rec.Warnings = append(rec.Warnings, warnings...)

	// Tags and artists repeat on every language row; the first row is authoritative.
	rec.Tags = tagsFrom(first, "lang", objectTagColumns, []string{"materials", "dynasty", "keywords"})
	rec.Artists = ExtractArtists(first.String("artist"), models.Artist{
		PlaceOfBirth:     first.Trimmed("birthplace"),
		PlaceOfDeath:     first.Trimmed("deathplace"),
		DateOfBirth:      first.Trimmed("birthdate"),
		DateOfDeath:      first.Trimmed("deathdate"),
		PeriodOfActivity: first.Trimmed("period_activity"),
	})
	return rec, nil
}
