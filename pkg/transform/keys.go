package transform

import (
	"strings"

	"github.com/ekaya-inc/heritage-importer/pkg/bckey"
)

// Legacy schemas and fixed keys.
const (
	SchemaMain            = "mwnf3"
	SchemaSharingHistory  = "mwnf3_sharing_history"
	SchemaThematicGallery = "mwnf3_thematic_gallery"
	SchemaExplore         = "mwnf3_explore"
	SchemaTravels         = "mwnf3_travels"
	EPMProjectID          = "EPM"
	DefaultContextKey     = "mwnf3:context:default"
	ExploreContextKey     = "mwnf3_explore:context"
	TravelsContextKey     = "mwnf3_travels:context"
	TravelsRootKey        = "mwnf3_travels:root"
	GalleriesRootKey      = "mwnf3_thematic_gallery:galleries_root"
	ExhibitionsRootKey    = "mwnf3_thematic_gallery:exhibitions_root"
	ExploreByThemeKey     = "mwnf3_explore:root:explore_by_theme"
	ExploreByCountryKey   = "mwnf3_explore:root:explore_by_country"
	ExploreByItineraryKey = "mwnf3_explore:root:explore_by_itinerary"
)

func key(schema, table string, pk ...any) string {
	return bckey.Format(bckey.Key{Schema: schema, Table: table, PKValues: pk})
}

// ProjectKey is shared by the context, collection and project of a legacy project.
func ProjectKey(projectID string) string {
	return key(SchemaMain, "projects", projectID)
}

// EPMContextKey identifies the context receiving description2 translations.
func EPMContextKey() string {
	return ProjectKey(EPMProjectID)
}

func MuseumKey(museumID, country string) string {
	return key(SchemaMain, "museums", museumID, country)
}

func InstitutionKey(institutionID, country string) string {
	return key(SchemaMain, "institutions", institutionID, country)
}

func ObjectKey(projectID, country, museumID, number string) string {
	return key(SchemaMain, "objects", projectID, country, museumID, number)
}

func MonumentKey(projectID, country, institutionID, number string) string {
	return key(SchemaMain, "monuments", projectID, country, institutionID, number)
}

func MonumentDetailKey(projectID, country, institutionID, monumentID, detailID string) string {
	return key(SchemaMain, "monument_details", projectID, country, institutionID, monumentID, detailID)
}

func GlossaryKey(wordID string) string {
	return key(SchemaMain, "glossary", wordID)
}

// Supporting entity keys are derived from their names so the same tag, author
// or artist found on many records maps to one row.

func TagKey(category, languageID, name string) string {
	return key(SchemaMain, "tags", category, languageID, strings.ToLower(strings.TrimSpace(name)))
}

func AuthorKey(name string) string {
	return key(SchemaMain, "authors", strings.TrimSpace(name))
}

func ArtistKey(name string) string {
	return key(SchemaMain, "artists", strings.TrimSpace(name))
}

func ShProjectKey(projectID string) string {
	return key(SchemaSharingHistory, "sh_projects", projectID)
}

func ShPartnerKey(partnerID string) string {
	return key(SchemaSharingHistory, "sh_partners", partnerID)
}

func ShObjectKey(projectID, country, number string) string {
	return key(SchemaSharingHistory, "sh_objects", projectID, country, number)
}

func ShMonumentKey(projectID, country, number string) string {
	return key(SchemaSharingHistory, "sh_monuments", projectID, country, number)
}

func ShMonumentDetailKey(projectID, country, monumentNumber, detailID string) string {
	return key(SchemaSharingHistory, "sh_monument_details", projectID, country, monumentNumber, detailID)
}

func GalleryKey(galleryID string) string {
	return key(SchemaThematicGallery, "thg_gallery", galleryID)
}

func ThemeKey(galleryID, themeID string) string {
	return key(SchemaThematicGallery, "theme", galleryID, themeID)
}

func ExploreCountryKey(countryID string) string {
	return key(SchemaExplore, "country", countryID)
}

func ExploreLocationKey(locationID string) string {
	return key(SchemaExplore, "location", locationID)
}

func ExploreMonumentKey(monumentID string) string {
	return key(SchemaExplore, "monument", monumentID)
}

func ExploreThematicCycleKey(cycleID string) string {
	return key(SchemaExplore, "thematiccycle", cycleID)
}

func ExploreItineraryKey(itineraryID string) string {
	return key(SchemaExplore, "itinerary", itineraryID)
}

func TrailKey(projectID, country, trailID string) string {
	return key(SchemaTravels, "trail", projectID, country, trailID)
}

func ItineraryKey(projectID, country, trailID, itineraryID string) string {
	return key(SchemaTravels, "itinerary", projectID, country, trailID, itineraryID)
}

func TravelLocationKey(projectID, country, trailID, itineraryID, locationID string) string {
	return key(SchemaTravels, "location", projectID, country, trailID, itineraryID, locationID)
}
