package transform

import (
	"fmt"
	"strings"

	"github.com/ekaya-inc/heritage-importer/pkg/legacydb"
	"github.com/ekaya-inc/heritage-importer/pkg/models"
)

const (
	ExploreCountriesQuery = `SELECT DISTINCT countryId FROM mwnf3_explore.locations
WHERE countryId IS NOT NULL AND countryId != '' ORDER BY countryId`
	ExploreLocationsQuery = `SELECT locationId, countryId, label, geoCoordinates, zoom, path, how_to_reach, info, contact, description
FROM mwnf3_explore.locations WHERE label IS NOT NULL AND label != '' ORDER BY countryId, locationId`
	ExploreMonumentsQuery = `SELECT monumentId, locationId, title, geoCoordinates, zoom, special_monument, related_monument
FROM mwnf3_explore.exploremonument WHERE title IS NOT NULL AND title != '' ORDER BY locationId, monumentId`
)

const (
	ExploreThematicCyclesQuery = "SELECT cycleId, cycleLabel, cycleDescription, geoCoordinates, zoom FROM mwnf3_explore.thematiccycle " +
		"WHERE status = 'e' AND cycleLabel != '' ORDER BY `order`, cycleId"
	ExploreItinerariesQuery = `SELECT ei.itineraries_id, ei.cycle, ei.country, ei.parent_itineraries_id,
       tc.cycleLabel, tc.cycleDescription, tc.geoCoordinates, tc.zoom
FROM mwnf3_explore.explore_itineraries ei
LEFT JOIN mwnf3_explore.thematiccycle tc ON ei.cycle = tc.cycleId
ORDER BY COALESCE(ei.parent_itineraries_id, 0), ei.itinorder, ei.itineraries_id`
	ExploreLocationPicturesQuery = `SELECT locationId, lang, image_number, path, caption, type
FROM mwnf3_explore.locations_pictures ORDER BY locationId, type, image_number, lang`
	ExploreMonumentPicturesQuery = `SELECT monumentId, lang, image_number, path, caption, type
FROM mwnf3_explore.exploremonument_pictures ORDER BY monumentId, type, image_number, lang`
	ExploreThematicCyclePicturesQuery = `SELECT cycleId, lang, image_number, path, caption, type
FROM mwnf3_explore.thematiccycle_pictures ORDER BY cycleId, type, image_number, lang`
)

func ExploreLocationPictureOwnerKey(r legacydb.Row) string {
	return ExploreLocationKey(r.Trimmed("locationId"))
}

func ExploreMonumentPictureOwnerKey(r legacydb.Row) string {
	return ExploreMonumentKey(r.Trimmed("monumentId"))
}

func ExploreThematicCyclePictureOwnerKey(r legacydb.Row) string {
	return ExploreThematicCycleKey(r.Trimmed("cycleId"))
}

// ExploreContext is the context of every Explore collection.
func ExploreContext() models.Context {
	return models.Context{InternalName: "explore", BackwardCompatibility: ExploreContextKey}
}

// ExploreRoots are the three entry points of the Explore application.
func ExploreRoots(languageID string) []CollectionRecord {
	return []CollectionRecord{
		newCollection(ExploreByThemeKey, ExploreContextKey, "", models.CollectionTypeCollection,
			"explore_by_theme", languageID, "Explore by Theme", "Monuments grouped by theme"),
		newCollection(ExploreByCountryKey, ExploreContextKey, "", models.CollectionTypeCollection,
			"explore_by_country", languageID, "Explore by Country", "Monuments grouped by country and location"),
		newCollection(ExploreByItineraryKey, ExploreContextKey, "", models.CollectionTypeItinerary,
			"explore_by_itinerary", languageID, "Explore by Itinerary", "Monuments along travel itineraries"),
	}
}

// TransformExploreCountry maps a distinct countryId to a collection under the
// by-country root. countryName may be empty.
func TransformExploreCountry(r legacydb.Row, countryName, languageID string) (CollectionRecord, error) {
	legacy := r.Trimmed("countryId")
	countryID, err := countryOf(legacy)
	if err != nil {
		return CollectionRecord{}, fmt.Errorf("explore country %s: %w", legacy, err)
	}
	k := ExploreCountryKey(legacy)
	rec := newCollection(k, ExploreContextKey, ExploreByCountryKey, models.CollectionTypeCollection,
		"explore_country_"+strings.ToLower(legacy), languageID, firstNonEmpty(countryName, strings.ToUpper(legacy)), "")
	rec.Collection.CountryID = countryID
	return rec, nil
}

// TransformExploreLocation maps a locations row to a location collection under
// its country.
func TransformExploreLocation(r legacydb.Row, languageID string) (CollectionRecord, error) {
	locationID := r.Trimmed("locationId")
	legacyCountry := r.Trimmed("countryId")
	countryID, err := countryOf(legacyCountry)
	if err != nil {
		return CollectionRecord{}, fmt.Errorf("explore location %s: %w", locationID, err)
	}

	label := Text(r.String("label"))
	var sections []string
	if v := Text(r.String("description")); v != "" {
		sections = append(sections, v)
	}
	if v := Text(r.String("how_to_reach")); v != "" {
		sections = append(sections, "How to reach: "+v)
	}
	if v := Text(r.String("info")); v != "" {
		sections = append(sections, v)
	}
	if v := Text(r.String("contact")); v != "" {
		sections = append(sections, "Contact: "+v)
	}

	parent := ""
	if legacyCountry != "" {
		parent = ExploreCountryKey(legacyCountry)
	}
	k := ExploreLocationKey(locationID)
	rec := newCollection(k, ExploreContextKey, parent, models.CollectionTypeLocation,
		fmt.Sprintf("explore_location_%s_%s", locationID, Slug(label)), languageID, label, strings.Join(sections, "\n\n"))
	rec.Collection.CountryID = countryID
	rec.Collection.Latitude, rec.Collection.Longitude = ParseGeoCoordinates(r.String("geoCoordinates"))
	rec.Collection.MapZoom = ParseZoom(r.String("zoom"))
	return rec, nil
}

// ExploreMonumentRecord is an Explore monument imported as an item attached to
// its location collection.
type ExploreMonumentRecord struct {
	Key          string
	LocationKey  string
	Item         models.Item
	Translations []models.ItemTranslation
}

// TransformExploreMonument maps an exploremonument row.
func TransformExploreMonument(r legacydb.Row, languageID string) ExploreMonumentRecord {
	monumentID := r.Trimmed("monumentId")
	k := ExploreMonumentKey(monumentID)
	title := Text(r.String("title"))
	lat, lon := ParseGeoCoordinates(r.String("geoCoordinates"))

	rec := ExploreMonumentRecord{
		Key: k,
		Item: models.Item{
			Type:                  models.ItemTypeMonument,
			InternalName:          fmt.Sprintf("explore_monument_%s_%s", monumentID, Slug(title)),
			BackwardCompatibility: k,
			Latitude:              lat,
			Longitude:             lon,
			MapZoom:               ParseZoom(r.String("zoom")),
		},
	}
	if locationID := r.Trimmed("locationId"); locationID != "" {
		rec.LocationKey = ExploreLocationKey(locationID)
	}
	extra, _ := BuildExtra(
		"special_monument", r.String("special_monument"),
		"related_monument", r.String("related_monument"),
	)
	rec.Translations = []models.ItemTranslation{{
		LanguageID:            languageID,
		Name:                  title,
		Description:           title,
		Extra:                 extra,
		BackwardCompatibility: k,
	}}
	return rec
}

// TransformExploreThematicCycle maps an enabled thematiccycle row to a theme
// collection under the by-theme root.
func TransformExploreThematicCycle(r legacydb.Row, languageID string) (CollectionRecord, error) {
	cycleID := r.Trimmed("cycleId")
	label := Text(r.String("cycleLabel"))
	description := Text(r.String("cycleDescription"))
	k := ExploreThematicCycleKey(cycleID)
	rec := newCollection(k, ExploreContextKey, ExploreByThemeKey, models.CollectionTypeTheme,
		"theme_"+firstNonEmpty(Slug(label), cycleID), languageID, firstNonEmpty(description, label), description)
	rec.Collection.Latitude, rec.Collection.Longitude = ParseGeoCoordinates(r.String("geoCoordinates"))
	rec.Collection.MapZoom = ParseZoom(r.String("zoom"))
	return rec, nil
}

// TransformExploreItineraries maps explore_itineraries rows, parents before
// their children. Root itineraries hang from the by-itinerary root and nested
// ones become exhibition trails. Itineraries whose parent is missing are
// reported and dropped.
func TransformExploreItineraries(rows []legacydb.Row, languageID string) ([]CollectionRecord, []error) {
	type node struct {
		id, parentID string
		rec          CollectionRecord
	}
	nodes := make([]node, 0, len(rows))
	known := make(map[string]bool, len(rows))
	for _, r := range rows {
		id := r.Trimmed("itineraries_id")
		parentID := r.Trimmed("parent_itineraries_id")
		if parentID == "0" {
			parentID = ""
		}

		title := fmt.Sprintf("Itinerary %s", id)
		country := strings.ToUpper(r.Trimmed("country"))
		if cycle := firstNonEmpty(Text(r.String("cycleDescription")), Text(r.String("cycleLabel"))); cycle != "" {
			title = joinNonEmpty(" - ", cycle, country)
		} else if country != "" {
			title = "Itinerary - " + country
		}

		collectionType, parentKey := models.CollectionTypeItinerary, ExploreByItineraryKey
		if parentID != "" {
			collectionType, parentKey = models.CollectionTypeExhibitionTrail, ExploreItineraryKey(parentID)
		}
		rec := newCollection(ExploreItineraryKey(id), ExploreContextKey, parentKey, collectionType,
			"itinerary_"+id, languageID, title, "")
		rec.Collection.Latitude, rec.Collection.Longitude = ParseGeoCoordinates(r.String("geoCoordinates"))
		rec.Collection.MapZoom = ParseZoom(r.String("zoom"))
		nodes = append(nodes, node{id: id, parentID: parentID, rec: rec})
		known[id] = true
	}

	var out []CollectionRecord
	var errs []error
	placed := make(map[string]bool, len(nodes))
	for progress := true; progress; {
		progress = false
		for _, n := range nodes {
			if placed[n.id] || (n.parentID != "" && !placed[n.parentID]) {
				continue
			}
			placed[n.id] = true
			out = append(out, n.rec)
			progress = true
		}
	}
	for _, n := range nodes {
		if placed[n.id] {
			continue
		}
		if known[n.parentID] {
			errs = append(errs, fmt.Errorf("explore itinerary %s: parent %s is part of a cycle", n.id, n.parentID))
		} else {
			errs = append(errs, fmt.Errorf("explore itinerary %s: parent %s not found", n.id, n.parentID))
		}
	}
	return out, errs
}
