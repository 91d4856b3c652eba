package transform

import (
	"fmt"

	"github.com/ekaya-inc/heritage-importer/pkg/codes"
	"github.com/ekaya-inc/heritage-importer/pkg/legacydb"
	"github.com/ekaya-inc/heritage-importer/pkg/models"
)

// Every language row of a travels table repeats the structure; rows are grouped
// by their key and each language becomes one translation.
const (
	TrailsQuery = `SELECT project_id, country, lang, number, title, subtitle, description
FROM mwnf3_travels.trails ORDER BY project_id, country, number, lang`
	ItinerariesQuery = `SELECT project_id, country, number, lang, trail_id, title, description, days
FROM mwnf3.tr_itineraries ORDER BY project_id, country, trail_id, number, lang`
	TravelLocationsQuery = `SELECT project_id, country, itinerary_id, number, lang, trail_id, title
FROM mwnf3.tr_locations ORDER BY project_id, country, trail_id, itinerary_id, number, lang`
	TravelMonumentsQuery = `SELECT project_id, country, itinerary_id, location_id, number, lang, trail_id, title,
how_to_reach, info, contact, description, prepared_by
FROM mwnf3.tr_monuments ORDER BY project_id, country, trail_id, itinerary_id, location_id, number, lang`
	TrailPicturesQuery = `SELECT project_id, country, trail_id, lang, image_number, path, caption
FROM mwnf3.tr_trails_pictures ORDER BY project_id, country, trail_id, image_number, lang`
	TravelLocationPicturesQuery = `SELECT project_id, country, trail_id, itinerary_id, location_id, lang, image_number, path, caption
FROM mwnf3.tr_locations_pictures ORDER BY project_id, country, trail_id, itinerary_id, location_id, image_number, lang`
)

func TrailRowKey(r legacydb.Row) string {
	return TrailKey(r.Trimmed("project_id"), r.Trimmed("country"), r.Trimmed("number"))
}

func ItineraryRowKey(r legacydb.Row) string {
	return ItineraryKey(r.Trimmed("project_id"), r.Trimmed("country"), r.Trimmed("trail_id"), r.Trimmed("number"))
}

func TravelLocationRowKey(r legacydb.Row) string {
	return TravelLocationKey(r.Trimmed("project_id"), r.Trimmed("country"), r.Trimmed("trail_id"),
		r.Trimmed("itinerary_id"), r.Trimmed("number"))
}

// GroupTravelRows maps the language rows of each key to one collection. The
// row in defaultLanguageID, or the first row, shapes the collection; every row
// adds its translation. Rows in unknown languages are reported and dropped.
func GroupTravelRows(rows []legacydb.Row, defaultLanguageID string, rowKey func(legacydb.Row) string,
	fn func(legacydb.Row, string) (CollectionRecord, error)) ([]CollectionRecord, []error) {
	var out []CollectionRecord
	var errs []error
	for _, g := range GroupBy(rows, rowKey) {
		var recs []CollectionRecord
		primary := -1
		seen := make(map[string]bool)
		for _, r := range g.Rows {
			languageID, err := codes.Language(r.Trimmed("lang"))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", g.Key, err))
				continue
			}
			if seen[languageID] {
				continue
			}
			seen[languageID] = true
			rec, err := fn(r, languageID)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if primary < 0 && languageID == defaultLanguageID {
				primary = len(recs)
			}
			recs = append(recs, rec)
		}
		if len(recs) == 0 {
			continue
		}
		if primary < 0 {
			primary = 0
		}
		rec := recs[primary]
		rec.Collection.LanguageID = defaultLanguageID
		rec.Translations = append([]models.CollectionTranslation(nil), rec.Translations...)
		for j, other := range recs {
			if j == primary {
				continue
			}
			rec.Translations = append(rec.Translations, other.Translations...)
			rec.Warnings = append(rec.Warnings, other.Warnings...)
		}
		out = append(out, rec)
	}
	return out, errs
}

// TravelsContext is the context of every travels collection.
func TravelsContext() models.Context {
	return models.Context{InternalName: "travels", BackwardCompatibility: TravelsContextKey}
}

// TravelsRoot is the collection trails hang from.
func TravelsRoot(languageID string) CollectionRecord {
	return newCollection(TravelsRootKey, TravelsContextKey, "", models.CollectionTypeCollection,
		"travels_root", languageID, "Travels", "Exhibition trails and their itineraries")
}

// TransformTrail maps a trails row.
func TransformTrail(r legacydb.Row, languageID string) (CollectionRecord, error) {
	p, c, n := r.Trimmed("project_id"), r.Trimmed("country"), r.Trimmed("number")
	countryID, err := countryOf(c)
	if err != nil {
		return CollectionRecord{}, fmt.Errorf("trail %s:%s:%s: %w", p, c, n, err)
	}
	title := firstNonEmpty(Text(r.String("title")), fmt.Sprintf("Trail %s", n))
	rec := newCollection(TrailKey(p, c, n), TravelsContextKey, TravelsRootKey, models.CollectionTypeExhibitionTrail,
		fmt.Sprintf("trail_%s_%s_%s_%s", p, c, n, Slug(title)), languageID, title, Text(r.String("description")))
	rec.Collection.CountryID = countryID
	if len(rec.Translations) > 0 {
		rec.Translations[0].Quote = Text(r.String("subtitle"))
	}
	return rec, nil
}

// TransformItinerary maps a tr_itineraries row. Its parent is the trail.
func TransformItinerary(r legacydb.Row, languageID string) (CollectionRecord, error) {
	p, c, t, n := r.Trimmed("project_id"), r.Trimmed("country"), r.Trimmed("trail_id"), r.Trimmed("number")
	countryID, err := countryOf(c)
	if err != nil {
		return CollectionRecord{}, fmt.Errorf("itinerary %s:%s:%s:%s: %w", p, c, t, n, err)
	}
	title := firstNonEmpty(Text(r.String("title")), fmt.Sprintf("Itinerary %s", n))
	description := Text(r.String("description"))
	if days := r.Trimmed("days"); days != "" {
		description = joinNonEmpty("\n\n", description, "Days: "+days)
	}
	rec := newCollection(ItineraryKey(p, c, t, n), TravelsContextKey, TrailKey(p, c, t), models.CollectionTypeItinerary,
		fmt.Sprintf("itin_%s_%s_%s_%s_%s", p, c, t, n, Slug(title)), languageID, title, description)
	rec.Collection.CountryID = countryID
	return rec, nil
}

// TransformTravelLocation maps a tr_locations row. Its parent is the itinerary.
func TransformTravelLocation(r legacydb.Row, languageID string) (CollectionRecord, error) {
	p, c, t := r.Trimmed("project_id"), r.Trimmed("country"), r.Trimmed("trail_id")
	i, n := r.Trimmed("itinerary_id"), r.Trimmed("number")
	countryID, err := countryOf(c)
	if err != nil {
		return CollectionRecord{}, fmt.Errorf("location %s:%s:%s:%s:%s: %w", p, c, t, i, n, err)
	}
	title := firstNonEmpty(Text(r.String("title")), fmt.Sprintf("Location %s", n))
	rec := newCollection(TravelLocationKey(p, c, t, i, n), TravelsContextKey, ItineraryKey(p, c, t, i), models.CollectionTypeLocation,
		fmt.Sprintf("loc_%s_%s_%s_%s_%s_%s", p, c, t, i, n, Slug(title)), languageID, title, "")
	rec.Collection.CountryID = countryID
	return rec, nil
}

// TravelMonumentKey identifies a tr_monuments monument.
func TravelMonumentKey(projectID, country, trailID, itineraryID, locationID, number string) string {
	return key(SchemaTravels, "monument", projectID, country, trailID, itineraryID, locationID, number)
}

// TravelMonumentRecord is a travels monument imported as an item attached to
// its location collection.
type TravelMonumentRecord struct {
	Key          string
	LocationKey  string
	Item         models.Item
	Translations []models.ItemTranslation
	Warnings     []string
}

// TransformTravelMonuments groups tr_monuments rows across languages. The row
// in defaultLanguageID, or the first one, names the item.
func TransformTravelMonuments(rows []legacydb.Row, defaultLanguageID string) ([]TravelMonumentRecord, []error) {
	var out []TravelMonumentRecord
	var errs []error
	for _, g := range GroupBy(rows, func(r legacydb.Row) string {
		return TravelMonumentKey(r.Trimmed("project_id"), r.Trimmed("country"), r.Trimmed("trail_id"),
			r.Trimmed("itinerary_id"), r.Trimmed("location_id"), r.Trimmed("number"))
	}) {
		first := g.Rows[0]
		for _, r := range g.Rows {
			if languageID, _ := codes.Language(r.Trimmed("lang")); languageID == defaultLanguageID {
				first = r
				break
			}
		}
		p, c, t := first.Trimmed("project_id"), first.Trimmed("country"), first.Trimmed("trail_id")
		i, l, n := first.Trimmed("itinerary_id"), first.Trimmed("location_id"), first.Trimmed("number")
		countryID, err := countryOf(c)
		if err != nil {
			errs = append(errs, fmt.Errorf("travel monument %s: %w", g.Key, err))
			continue
		}
		title := firstNonEmpty(Text(first.String("title")), "Monument "+n)
		rec := TravelMonumentRecord{
			Key:         g.Key,
			LocationKey: TravelLocationKey(p, c, t, i, l),
			Item: models.Item{
				Type:                  models.ItemTypeMonument,
				InternalName:          fmt.Sprintf("tr_mon_%s_%s_%s_%s_%s_%s_%s", p, c, t, i, l, n, Slug(title)),
				CountryID:             countryID,
				BackwardCompatibility: g.Key,
			},
		}

		seen := make(map[string]bool)
		for _, r := range g.Rows {
			languageID, err := codes.Language(r.Trimmed("lang"))
			if err != nil {
				rec.Warnings = append(rec.Warnings, fmt.Sprintf("%s - %v", g.Key, err))
				continue
			}
			if seen[languageID] {
				continue
			}
			seen[languageID] = true
			name := firstNonEmpty(Text(r.String("title")), title)
			extra, _ := BuildExtra(
				"how_to_reach", Text(r.String("how_to_reach")),
				"info", Text(r.String("info")),
				"contact", Text(r.String("contact")),
				"prepared_by", r.String("prepared_by"),
			)
			rec.Translations = append(rec.Translations, models.ItemTranslation{
				LanguageID:            languageID,
				Name:                  name,
				Description:           firstNonEmpty(Text(r.String("description")), name),
				Extra:                 extra,
				BackwardCompatibility: g.Key + ":" + languageID,
			})
		}
		out = append(out, rec)
	}
	return out, errs
}

func TrailPictureOwnerKey(r legacydb.Row) string {
	return TrailKey(r.Trimmed("project_id"), r.Trimmed("country"), r.Trimmed("trail_id"))
}

func TravelLocationPictureOwnerKey(r legacydb.Row) string {
	return TravelLocationKey(r.Trimmed("project_id"), r.Trimmed("country"), r.Trimmed("trail_id"),
		r.Trimmed("itinerary_id"), r.Trimmed("location_id"))
}
