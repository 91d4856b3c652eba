package transform

import (
	"fmt"
	"strings"

	"github.com/ekaya-inc/heritage-importer/pkg/codes"
	"github.com/ekaya-inc/heritage-importer/pkg/legacydb"
	"github.com/ekaya-inc/heritage-importer/pkg/markdown"
	"github.com/ekaya-inc/heritage-importer/pkg/models"
)

const (
	ShProjectsQuery           = "SELECT * FROM mwnf3_sharing_history.sh_projects ORDER BY project_id"
	ShProjectNamesQuery       = "SELECT * FROM mwnf3_sharing_history.sh_project_names ORDER BY project_id, lang"
	ShPartnersQuery           = "SELECT * FROM mwnf3_sharing_history.sh_partners ORDER BY partners_id"
	ShPartnerNamesQuery       = "SELECT * FROM mwnf3_sharing_history.sh_partner_names ORDER BY partners_id, lang"
	ShObjectsQuery            = "SELECT * FROM mwnf3_sharing_history.sh_objects ORDER BY project_id, country, number"
	ShObjectTextsQuery        = "SELECT * FROM mwnf3_sharing_history.sh_objects_texts ORDER BY project_id, country, number, lang"
	ShMonumentsQuery          = "SELECT * FROM mwnf3_sharing_history.sh_monuments ORDER BY project_id, country, number"
	ShMonumentTextsQuery      = "SELECT * FROM mwnf3_sharing_history.sh_monuments_texts ORDER BY project_id, country, number, lang"
	ShMonumentDetailsQuery    = "SELECT * FROM mwnf3_sharing_history.sh_monument_details ORDER BY project_id, country, number, detail_id"
	ShMonumentDetailTextQuery = "SELECT * FROM mwnf3_sharing_history.sh_monument_detail_texts ORDER BY project_id, country, number, detail_id, lang"
)

// IndexBy groups rows under key. Row order is kept within each key.
func IndexBy(rows []legacydb.Row, key func(legacydb.Row) string) map[string][]legacydb.Row {
	out := make(map[string][]legacydb.Row)
	for _, r := range rows {
		k := key(r)
		out[k] = append(out[k], r)
	}
	return out
}

func ShObjectKeyOf(r legacydb.Row) string {
	return ShObjectKey(r.Trimmed("project_id"), r.Trimmed("country"), r.Trimmed("number"))
}

func ShMonumentKeyOf(r legacydb.Row) string {
	return ShMonumentKey(r.Trimmed("project_id"), r.Trimmed("country"), r.Trimmed("number"))
}

func ShMonumentDetailKeyOf(r legacydb.Row) string {
	return ShMonumentDetailKey(r.Trimmed("project_id"), r.Trimmed("country"), r.Trimmed("number"), r.Trimmed("detail_id"))
}

// TransformShProject maps a sh_projects row and its sh_project_names rows.
func TransformShProject(p legacydb.Row, names []legacydb.Row, defaultLanguageID string) *ProjectRecord {
	projectID := p.Trimmed("project_id")
	return buildProject(projectSource{
		key:          ShProjectKey(projectID),
		contextName:  "sh_" + projectID,
		internalName: firstNonEmpty(markdown.StripHTML(p.String("name")), projectID),
		launchDate:   p.Trimmed("addeddate"),
		enabled:      p.Bool("show"),
		titleColumn:  "title",
		quoteColumn:  "sub_title",
		descColumns:  []string{"introduction", "short_introduction", "about_text"},
	}, names, defaultLanguageID)
}

// TransformShPartner maps a sh_partners row and its sh_partner_names rows.
// Partners whose category mentions a museum become museums.
func TransformShPartner(p legacydb.Row, names []legacydb.Row) (*PartnerRecord, error) {
	key := ShPartnerKey(p.Trimmed("partners_id"))
	countryID, err := countryOf(p.Trimmed("country"))
	if err != nil {
		return nil, fmt.Errorf("partner %s: %w", key, err)
	}

	partnerType := models.PartnerTypeInstitution
	if strings.Contains(strings.ToLower(p.String("partner_category")), "museum") {
		partnerType = models.PartnerTypeMuseum
	}
	lat, lon := ParseGeoCoordinates(p.String("geoCoordinates"))

	rec := &PartnerRecord{
		Key: key,
		Partner: models.Partner{
			Type:                  partnerType,
			InternalName:          firstNonEmpty(markdown.StripHTML(p.String("name")), key),
			BackwardCompatibility: key,
			CountryID:             countryID,
			Latitude:              lat,
			Longitude:             lon,
			MapZoom:               ParseZoom(p.String("zoom")),
			Visible:               true,
		},
	}

	extra, _ := BuildExtra(
		"source", SchemaSharingHistory,
		"partner_category", p.String("partner_category"),
		"address", p.String("address"),
		"fax", p.String("fax"),
		"email2", p.String("email2"),
		"contact_person_1", joinNonEmpty(", ", p.String("cp1_name"), p.String("cp1_title"), p.String("cp1_phone"), p.String("cp1_email")),
		"contact_person_2", joinNonEmpty(", ", p.String("cp2_name"), p.String("cp2_title"), p.String("cp2_phone"), p.String("cp2_email")),
		"urls", joinNonEmpty(" ", p.String("url2"), p.String("url3"), p.String("url4"), p.String("url5")),
		"region_id", p.String("region_id"),
		"portal_display", p.String("portal_display"),
	)

	for _, n := range names {
		lang := n.Trimmed("lang")
		languageID, err := codes.Language(lang)
		if err != nil {
			rec.Warnings = append(rec.Warnings, fmt.Sprintf("%s:%s - %v", key, lang, err))
			continue
		}
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

// TransformShObject maps a sh_objects row and its sh_objects_texts rows.
func TransformShObject(obj legacydb.Row, texts []legacydb.Row, defaultLanguageID string, hasEPM bool) (*ItemRecord, error) {
	return shItem(obj, texts, ShObjectKeyOf(obj), models.ItemTypeObject, defaultLanguageID, hasEPM,
		objectTagColumns, []string{"materials", "dynasty", "keywords"})
}

// TransformShMonument maps a sh_monuments row and its sh_monuments_texts rows.
func TransformShMonument(mon legacydb.Row, texts []legacydb.Row, defaultLanguageID string, hasEPM bool) (*ItemRecord, error) {
	return shItem(mon, texts, ShMonumentKeyOf(mon), models.ItemTypeMonument, defaultLanguageID, hasEPM,
		monumentTagColumns, []string{"keywords"})
}

func shItem(base legacydb.Row, texts []legacydb.Row, itemKey, itemType, defaultLanguageID string, hasEPM bool,
	tagColumns map[string]string, tagOrder []string) (*ItemRecord, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%s: %w", itemKey, errNoRows)
	}
	projectID := base.Trimmed("project_id")
	number := base.Trimmed("number")

	countryID, err := countryOf(base.Trimmed("country"))
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", itemType, itemKey, err)
	}

	rec := &ItemRecord{
		Key:        itemKey,
		ProjectKey: ShProjectKey(projectID),
	}
	if partnerID := base.Trimmed("partners_id"); partnerID != "" {
		rec.PartnerKey = ShPartnerKey(partnerID)
	}

	selected, warning := selectDefault(texts, "lang", defaultLanguageID, itemKey)
	if warning != "" {
		rec.Warnings = append(rec.Warnings, warning)
	}
	rec.Item = models.Item{
		Type:                  itemType,
		InternalName:          InternalName(selected.String("name"), base.String("inventory_id"), base.String("working_number"), number),
		BackwardCompatibility: itemKey,
		CountryID:             countryID,
		OwnerReference:        base.Trimmed("inventory_id"),
		MwnfReference:         base.Trimmed("working_number"),
	}

	ref := fmt.Sprintf("%s:%s:%s", projectID, base.Trimmed("country"), number)
	translations, warnings := planned(PlanTranslations(projectID, texts, hasEPM), itemKey, ref, "lang")
	rec.Translations = translations
	rec.Warnings = append(rec.Warnings, warnings...)

	first := texts[0]
	rec.Tags = tagsFrom(first, "lang", tagColumns, tagOrder)
	rec.Artists = ExtractArtists(first.String("artist"), models.Artist{
		PlaceOfBirth:     first.Trimmed("birthplace"),
		PlaceOfDeath:     first.Trimmed("deathplace"),
		DateOfBirth:      first.Trimmed("birthdate"),
		DateOfDeath:      first.Trimmed("deathdate"),
		PeriodOfActivity: first.Trimmed("period_activity"),
	})
	return rec, nil
}

// TransformShMonumentDetail maps a sh_monument_details row and its texts. The
// detail's parent is the sharing history monument.
func TransformShMonumentDetail(detail legacydb.Row, texts []legacydb.Row, defaultLanguageID string) (*ItemRecord, error) {
	itemKey := ShMonumentDetailKeyOf(detail)
	if len(texts) == 0 {
		return nil, fmt.Errorf("%s: %w", itemKey, errNoRows)
	}
	countryID, err := countryOf(detail.Trimmed("country"))
	if err != nil {
		return nil, fmt.Errorf("monument detail %s: %w", itemKey, err)
	}

	rec := &ItemRecord{
		Key:        itemKey,
		ProjectKey: ShProjectKey(detail.Trimmed("project_id")),
		ParentKey:  ShMonumentKeyOf(detail),
	}
	selected, warning := selectDefault(texts, "lang", defaultLanguageID, itemKey)
	if warning != "" {
		rec.Warnings = append(rec.Warnings, warning)
	}
	rec.Item = models.Item{
		Type:                  models.ItemTypeDetail,
		InternalName:          InternalName(selected.String("name"), "", "", detail.Trimmed("detail_id")),
		BackwardCompatibility: itemKey,
		CountryID:             countryID,
	}
	for _, t := range texts {
		tr, w, ok := detailTranslation(t, "lang", itemKey)
		rec.Warnings = append(rec.Warnings, w...)
		if ok {
			rec.Translations = append(rec.Translations, tr)
		}
	}
	rec.Artists = extractDetailArtists(texts[0].String("artist"))
	return rec, nil
}
