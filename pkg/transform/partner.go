package transform

import (
	"fmt"

	"github.com/ekaya-inc/heritage-importer/pkg/codes"
	"github.com/ekaya-inc/heritage-importer/pkg/legacydb"
	"github.com/ekaya-inc/heritage-importer/pkg/markdown"
	"github.com/ekaya-inc/heritage-importer/pkg/models"
)

const (
	MuseumsQuery          = "SELECT * FROM mwnf3.museums ORDER BY museum_id, country"
	MuseumNamesQuery      = "SELECT * FROM mwnf3.museumnames ORDER BY museum_id, country, lang"
	InstitutionsQuery     = "SELECT * FROM mwnf3.institutions ORDER BY institution_id, country"
	InstitutionNamesQuery = "SELECT * FROM mwnf3.institutionnames ORDER BY institution_id, country, lang"
)

// PartnerRecord is a museum or institution with its translations. Translations
// are written in the default context.
type PartnerRecord struct {
	Key          string
	Partner      models.Partner
	ProjectKey   string
	Translations []models.PartnerTranslation
	Warnings     []string
}

// GroupPartnerNames indexes name rows by partner key.
func GroupPartnerNames(rows []legacydb.Row, partnerType string) map[string][]legacydb.Row {
	return IndexBy(rows, func(r legacydb.Row) string { return PartnerKeyOf(r, partnerType) })
}

// PartnerKeyOf returns the key of the museum or institution a row refers to.
func PartnerKeyOf(r legacydb.Row, partnerType string) string {
	if partnerType == models.PartnerTypeMuseum {
		return MuseumKey(r.Trimmed("museum_id"), r.Trimmed("country"))
	}
	return InstitutionKey(r.Trimmed("institution_id"), r.Trimmed("country"))
}

// TransformPartner maps a museums or institutions row and its name rows.
func TransformPartner(p legacydb.Row, names []legacydb.Row, partnerType string) (*PartnerRecord, error) {
	key := PartnerKeyOf(p, partnerType)
	countryID, err := countryOf(p.Trimmed("country"))
	if err != nil {
		return nil, fmt.Errorf("partner %s: %w", key, err)
	}

	lat, lon := ParseGeoCoordinates(p.String("geoCoordinates"))
	zoom := ParseZoom(p.String("zoom"))
	if zoom == nil {
		z := models.DefaultPartnerMapZoom
		zoom = &z
	}

	rec := &PartnerRecord{
		Key: key,
		Partner: models.Partner{
			Type:                  partnerType,
			InternalName:          firstNonEmpty(markdown.StripHTML(p.String("name")), key),
			BackwardCompatibility: key,
			CountryID:             countryID,
			Latitude:              lat,
			Longitude:             lon,
			MapZoom:               zoom,
			Visible:               true,
		},
	}
	if projectID := p.Trimmed("project_id"); projectID != "" {
		rec.ProjectKey = ProjectKey(projectID)
	}

	for _, n := range names {
		lang := n.Trimmed("lang")
		languageID, err := codes.Language(lang)
		if err != nil {
			rec.Warnings = append(rec.Warnings, fmt.Sprintf("%s:%s - %v", key, lang, err))
			continue
		}
		extra, _ := BuildExtra(
			"address", p.String("address"),
			"fax", p.String("fax"),
			"ex_name", Text(n.String("ex_name")),
			"ex_description", Text(n.String("ex_description")),
			"how_to_reach", Text(n.String("how_to_reach")),
			"opening_hours", Text(n.String("opening_hours")),
		)
		rec.Translations = append(rec.Translations, models.PartnerTranslation{
			LanguageID:            languageID,
			Name:                  firstNonEmpty(Text(n.String("name")), rec.Partner.InternalName),
			Description:           Text(n.String("description")),
			CityDisplay:           firstNonEmpty(n.String("city"), p.String("city")),
			ContactWebsite:        p.Trimmed("url"),
			ContactPhone:          p.Trimmed("phone"),
			ContactEmailGeneral:   p.Trimmed("email"),
			Extra:                 extra,
			BackwardCompatibility: key + ":" + languageID,
		})
	}
	return rec, nil
}

// MonumentLinksQuery selects museums located in a monument.
const MonumentLinksQuery = `SELECT museum_id, country, mon_project_id, mon_country_id, mon_institution_id, mon_monument_id
FROM mwnf3.museums
WHERE mon_project_id IS NOT NULL AND mon_country_id IS NOT NULL
  AND mon_institution_id IS NOT NULL AND mon_monument_id IS NOT NULL
ORDER BY museum_id, country`

// MonumentLink pairs a museum with the monument housing it.
type MonumentLink struct {
	PartnerKey  string
	MonumentKey string
}

// TransformMonumentLink reads the mon_* columns of a museums row. The monument
// key has no language segment because monuments are grouped across languages.
func TransformMonumentLink(r legacydb.Row) (MonumentLink, bool) {
	parts := []string{r.Trimmed("mon_project_id"), r.Trimmed("mon_country_id"), r.Trimmed("mon_institution_id"), r.Trimmed("mon_monument_id")}
	for _, p := range parts {
		if p == "" {
			return MonumentLink{}, false
		}
	}
	return MonumentLink{
		PartnerKey:  MuseumKey(r.Trimmed("museum_id"), r.Trimmed("country")),
		MonumentKey: MonumentKey(parts[0], parts[1], parts[2], parts[3]),
	}, true
}
