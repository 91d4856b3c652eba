package strategy

import (
	"fmt"
	"regexp"

	"github.com/jinzhu/inflection"

	"github.com/ekaya-inc/heritage-importer/pkg/tracker"
)

// Target tables.
const (
	TableLanguages                = "languages"
	TableLanguageTranslations     = "language_translations"
	TableCountries                = "countries"
	TableCountryTranslations      = "country_translations"
	TableContexts                 = "contexts"
	TableCollections              = "collections"
	TableCollectionTranslations   = "collection_translations"
	TableProjects                 = "projects"
	TablePartners                 = "partners"
	TablePartnerTranslations      = "partner_translations"
	TableItems                    = "items"
	TableItemTranslations         = "item_translations"
	TableTags                     = "tags"
	TableAuthors                  = "authors"
	TableArtists                  = "artists"
	TableItemImages               = "item_images"
	TablePartnerImages            = "partner_images"
	TablePartnerLogos             = "partner_logos"
	TableCollectionImages         = "collection_images"
	TableGlossaries               = "glossaries"
	TableGlossaryTranslations     = "glossary_translations"
	TableGlossarySpellings        = "glossary_spellings"
	TableThemes                   = "themes"
	TableThemeTranslations        = "theme_translations"
	TableItemItemLinks            = "item_item_links"
	TableItemItemLinkTranslations = "item_item_link_translations"
)

// tableEntities maps each table holding backward-compatibility keys to the
// tracker namespace of its rows. Tables outside the map are looked up in the
// database only.
var tableEntities = buildTableEntities()

func buildTableEntities() map[string]tracker.EntityType {
	known := make(map[tracker.EntityType]bool)
	for _, t := range tracker.EntityTypes() {
		known[t] = true
	}

	m := make(map[string]tracker.EntityType)
	for _, table := range []string{
		TableLanguages, TableLanguageTranslations, TableCountries, TableCountryTranslations,
		TableContexts, TableCollections, TableCollectionTranslations, TableProjects,
		TablePartners, TablePartnerTranslations, TableItems, TableItemTranslations,
		TableTags, TableAuthors, TableArtists, TableGlossaries, TableGlossaryTranslations,
		TableGlossarySpellings, TableThemes, TableThemeTranslations, TableItemItemLinks,
		TableItemItemLinkTranslations,
	} {
		if entityType := tracker.EntityType(inflection.Singular(table)); known[entityType] {
			m[table] = entityType
		}
	}
	for _, table := range []string{TableItemImages, TablePartnerImages, TableCollectionImages, TablePartnerLogos} {
		m[table] = tracker.Image
	}
	return m
}

// EntityTypeForTable returns the tracker namespace of table, or "" when rows of
// table are not tracked.
func EntityTypeForTable(table string) (tracker.EntityType, bool) {
	t, ok := tableEntities[table]
	return t, ok
}

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

func validateTable(table string) error {
	if !identifierPattern.MatchString(table) {
		return fmt.Errorf("invalid table name %q", table)
	}
	return nil
}
