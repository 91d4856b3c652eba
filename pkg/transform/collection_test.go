package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/heritage-importer/pkg/legacydb"
	"github.com/ekaya-inc/heritage-importer/pkg/models"
)

func TestTransformProject(t *testing.T) {
	p := legacydb.RowOf("project_id", "AWE", "name", "Discover Islamic Art", "launchdate", "2005-03-01 00:00:00", "active", "1")
	names := []legacydb.Row{
		legacydb.RowOf("project_id", "AWE", "lang", "en", "name", "Discover Islamic Art", "description", "Virtual museum"),
		legacydb.RowOf("project_id", "AWE", "lang", "zz", "name", "?"),
	}

	rec := TransformProject(p, names, "eng")

	assert.Equal(t, "mwnf3:projects:AWE", rec.Key)
	assert.Equal(t, "AWE", rec.Context.InternalName)
	assert.Equal(t, rec.Key, rec.Context.BackwardCompatibility)
	assert.Equal(t, models.CollectionTypeCollection, rec.Collection.Type)
	assert.Equal(t, "eng", rec.Collection.LanguageID)
	assert.Equal(t, "2005-03-01", rec.Project.LaunchDate)
	assert.True(t, rec.Project.IsLaunched)
	assert.True(t, rec.Project.IsEnabled)

	require.Len(t, rec.Translations, 1)
	tr := rec.Translations[0].Collection
	assert.Equal(t, "Discover Islamic Art", tr.Title)
	assert.Equal(t, "Virtual museum", tr.Description)
	assert.Equal(t, "mwnf3:projects:AWE:eng", tr.BackwardCompatibility)
	assert.Len(t, rec.Warnings, 1)
}

func TestTransformShProject_DistinctContextName(t *testing.T) {
	p := legacydb.RowOf("project_id", "AWE", "name", "Sharing History", "addeddate", "0000-00-00", "show", "N")
	names := []legacydb.Row{
		legacydb.RowOf("project_id", "AWE", "lang", "en", "title", "Sharing", "sub_title", "Quote", "short_introduction", "Short"),
	}

	rec := TransformShProject(p, names, "eng")

	assert.Equal(t, "mwnf3_sharing_history:sh_projects:AWE", rec.Key)
	assert.Equal(t, "sh_AWE", rec.Context.InternalName)
	assert.False(t, rec.Project.IsLaunched)
	assert.False(t, rec.Project.IsEnabled)
	require.Len(t, rec.Translations, 1)
	assert.Equal(t, "Sharing", rec.Translations[0].Collection.Title)
	assert.Equal(t, "Short", rec.Translations[0].Collection.Description)
	assert.Equal(t, "Quote", rec.Translations[0].Collection.Quote)
}

func TestTransformPartner(t *testing.T) {
	p := legacydb.RowOf("museum_id", "Mus01", "country", "eg", "name", "Museum of Islamic Art",
		"project_id", "AWE", "geoCoordinates", "30.04,31.25", "url", "https://mia.example", "address", "Port Said St")
	names := []legacydb.Row{
		legacydb.RowOf("museum_id", "Mus01", "country", "eg", "lang", "en", "name", "MIA", "description", "Collection",
			"opening_hours", "9-17"),
	}

	rec, err := TransformPartner(p, names, models.PartnerTypeMuseum)
	require.NoError(t, err)

	assert.Equal(t, "mwnf3:museums:Mus01:eg", rec.Key)
	assert.Equal(t, "mwnf3:projects:AWE", rec.ProjectKey)
	assert.Equal(t, "egy", rec.Partner.CountryID)
	require.NotNil(t, rec.Partner.MapZoom)
	assert.Equal(t, models.DefaultPartnerMapZoom, *rec.Partner.MapZoom)
	require.NotNil(t, rec.Partner.Latitude)
	assert.True(t, rec.Partner.Visible)

	require.Len(t, rec.Translations, 1)
	tr := rec.Translations[0]
	assert.Equal(t, "MIA", tr.Name)
	assert.Equal(t, "https://mia.example", tr.ContactWebsite)
	assert.JSONEq(t, `{"address":"Port Said St","opening_hours":"9-17"}`, tr.Extra)
	assert.Equal(t, "mwnf3:museums:Mus01:eg:eng", tr.BackwardCompatibility)
}

func TestTransformShPartner_Category(t *testing.T) {
	p := legacydb.RowOf("partners_id", "P9", "country", "ma", "partner_category", "National Museum", "name", "Musée")
	rec, err := TransformShPartner(p, nil)
	require.NoError(t, err)
	assert.Equal(t, models.PartnerTypeMuseum, rec.Partner.Type)
	assert.Nil(t, rec.Partner.MapZoom)

	p = legacydb.RowOf("partners_id", "P10", "country", "ma", "partner_category", "University", "name", "Uni")
	rec, err = TransformShPartner(p, nil)
	require.NoError(t, err)
	assert.Equal(t, models.PartnerTypeInstitution, rec.Partner.Type)
}

func TestTransformMonumentLink(t *testing.T) {
	link, ok := TransformMonumentLink(legacydb.RowOf("museum_id", "Mus01", "country", "tn",
		"mon_project_id", "ISL", "mon_country_id", "tn", "mon_institution_id", "Ins01", "mon_monument_id", "7"))
	require.True(t, ok)
	assert.Equal(t, "mwnf3:museums:Mus01:tn", link.PartnerKey)
	assert.Equal(t, "mwnf3:monuments:ISL:tn:Ins01:7", link.MonumentKey)

	_, ok = TransformMonumentLink(legacydb.RowOf("museum_id", "Mus01", "country", "tn", "mon_project_id", "ISL"))
	assert.False(t, ok)
}

func TestTransformPictures(t *testing.T) {
	base := []any{"project_id", "AWE", "country", "eg", "museum_id", "Mus01", "number", "12"}
	row := func(extra ...any) legacydb.Row {
		return legacydb.RowOf(append(append([]any{}, base...), extra...)...)
	}
	rows := []legacydb.Row{
		row("type", "", "image_number", "1", "lang", "en", "path", "objects/AWE/1.jpg", "caption", "Front", "photographer", "Jane"),
		row("type", "", "image_number", "1", "lang", "fr", "path", "objects/AWE/1.jpg", "caption", "Face"),
		row("type", "", "image_number", "1", "lang", "en", "path", "objects/AWE/1.jpg"),
		row("type", "detail", "image_number", "1", "lang", "en", "path", "objects/AWE/d1.jpg"),
		row("type", "", "image_number", "2", "lang", "en", "path", ""),
	}

	pictures := TransformPictures(rows, ObjectPictures)

	require.Len(t, pictures, 2)
	main := pictures[0]
	assert.Equal(t, "mwnf3:objects_pictures:AWE:eg:Mus01:12:1", main.Key)
	assert.Equal(t, "mwnf3:objects:AWE:eg:Mus01:12", main.ParentKey)
	assert.Equal(t, "mwnf3:projects:AWE", main.ProjectKey)
	assert.Equal(t, "mwnf3:museums:Mus01:eg", main.PartnerKey)
	assert.True(t, main.ParentImage)
	assert.Equal(t, models.ItemTypePicture, main.Item.Type)
	assert.Equal(t, "Picture 1 for AWE:eg:Mus01:12", main.Item.InternalName)
	require.Len(t, main.Translations, 2, "repeated languages collapse")
	assert.Equal(t, "Image 1", main.Translations[0].Name)
	assert.Equal(t, "Front", main.Translations[0].Description)
	require.Len(t, main.Artists, 1)
	assert.Equal(t, "Jane", main.Artists[0].Name)

	detail := pictures[1]
	assert.Equal(t, "mwnf3:objects_pictures:AWE:eg:Mus01:12:detail:1", detail.Key)
	assert.False(t, detail.ParentImage)
	assert.JSONEq(t, `{"legacy_type":"detail"}`, detail.Translations[0].Extra)
}

func TestTransformPartnerPictures_DedupesPaths(t *testing.T) {
	rows := []legacydb.Row{
		legacydb.RowOf("institution_id", "Ins01", "country", "tn", "image_number", "1", "path", "inst/1.jpg"),
		legacydb.RowOf("institution_id", "Ins01", "country", "tn", "image_number", "2", "path", "inst/1.jpg"),
		legacydb.RowOf("institution_id", "Ins01", "country", "tn", "image_number", "3", "path", ""),
	}

	images := TransformPartnerPictures(rows, models.PartnerTypeInstitution)
	require.Len(t, images, 1)
	assert.Equal(t, "mwnf3:institutions:Ins01:tn", images[0].PartnerKey)
	assert.Equal(t, 1, images[0].Number)
}

func TestTransformLogos(t *testing.T) {
	r := legacydb.RowOf("museum_id", "Mus01", "country", "eg", "logo", "logo/a.png", "logo1", "", "logo2", "logo/a.png", "logo3", "logo/b.png")

	logos := TransformLogos(r, models.PartnerTypeMuseum)

	require.Len(t, logos, 2)
	assert.Equal(t, LogoTypePrimary, logos[0].LogoType)
	assert.Equal(t, 1, logos[0].DisplayOrder)
	assert.Equal(t, "logo/b.png", logos[1].Path)
	assert.Equal(t, LogoTypeSecondary, logos[1].LogoType)
	assert.Equal(t, 2, logos[1].DisplayOrder)

	sh := TransformShPartnerLogos(legacydb.RowOf("partners_id", "P9", "logo3", "logo/sh.png"))
	require.Len(t, sh, 1)
	assert.Equal(t, "mwnf3_sharing_history:sh_partners:P9", sh[0].PartnerKey)
	assert.Equal(t, LogoTypePrimary, sh[0].LogoType)
}

func TestTransformLinks(t *testing.T) {
	row := legacydb.RowOf(
		"id", "1",
		"o1_project_id", "AWE", "o1_country_id", "eg", "o1_museum_id", "Mus01", "o1_number", "12",
		"m1_project_id", "ISL", "m1_country_id", "tn", "m1_institution_id", "Ins01", "m1_number", "3",
	)

	links := TransformLinks([]legacydb.Row{row, row}, ObjectMonumentLinks)

	require.Len(t, links, 1)
	assert.Equal(t, "mwnf3:link:object_monument:AWE:eg:Mus01:12:ISL:tn:Ins01:3", links[0].Key)
	assert.Equal(t, "mwnf3:objects:AWE:eg:Mus01:12", links[0].SourceKey)
	assert.Equal(t, "mwnf3:monuments:ISL:tn:Ins01:3", links[0].TargetKey)
}

func TestGlossary(t *testing.T) {
	g, ok := TransformGlossary(legacydb.RowOf("word_id", "4", "name", "Mihrab"))
	require.True(t, ok)
	assert.Equal(t, "mwnf3:glossary:4", g.Key)
	assert.Equal(t, "Mihrab", g.Glossary.InternalName)

	_, ok = TransformGlossary(legacydb.RowOf("word_id", "5", "name", ""))
	assert.False(t, ok)

	def, err := TransformDefinition(legacydb.RowOf("word_id", "4", "lang_id", "fr", "definition", "<p>Niche</p>"))
	require.NoError(t, err)
	assert.Equal(t, "mwnf3:gl_definitions:4:fra", def.Key)
	assert.Equal(t, "mwnf3:glossary:4", def.GlossaryKey)
	assert.Equal(t, "Niche", def.Text)

	_, err = TransformSpelling(legacydb.RowOf("spelling_id", "9", "word_id", "4", "lang_id", "??", "spelling", "Mehrab"))
	require.Error(t, err)
}

func TestTransformGallery(t *testing.T) {
	r := legacydb.RowOf("gallery_id", "3", "project_id", "SH1", "name", "Ports & Trade", "link", "")

	gallery := TransformGallery(r, true, "eng")
	assert.Equal(t, "mwnf3_thematic_gallery:thg_gallery:3", gallery.Key)
	assert.Equal(t, "thg_3", gallery.Context.InternalName)
	assert.Equal(t, gallery.Key, gallery.Collection.ContextKey)
	assert.Equal(t, ExhibitionsRootKey, gallery.Collection.ParentKey)
	assert.Equal(t, models.CollectionTypeExhibition, gallery.Collection.Collection.Type)
	assert.Equal(t, "exhibition_ports_trade", gallery.Collection.Collection.InternalName)

	gallery = TransformGallery(r, false, "eng")
	assert.Equal(t, GalleriesRootKey, gallery.Collection.ParentKey)
	assert.Equal(t, "gallery_ports_trade", gallery.Collection.Collection.InternalName)
}

func TestThematicRoots(t *testing.T) {
	roots := ThematicRoots("eng")
	require.Len(t, roots, 2)
	assert.Equal(t, GalleriesRootKey, roots[0].Key)
	require.Len(t, roots[0].Translations, 1)
	assert.Equal(t, GalleriesRootKey+":translation:eng", roots[0].Translations[0].BackwardCompatibility)
}

func TestTransformThemes_ParentsFirst(t *testing.T) {
	rows := []legacydb.Row{
		legacydb.RowOf("gallery_id", "3", "theme_id", "2", "parent_theme_id", "1", "name", "Child", "sort_order", "1"),
		legacydb.RowOf("gallery_id", "3", "theme_id", "1", "parent_theme_id", "0", "name", "Parent", "sort_order", "2"),
		legacydb.RowOf("gallery_id", "3", "theme_id", "4", "parent_theme_id", "99", "name", "Orphan", "sort_order", "3"),
	}

	themes := TransformThemes(rows)

	require.Len(t, themes, 3)
	order := make(map[string]int)
	for i, th := range themes {
		order[th.Key] = i
	}
	assert.Less(t, order[ThemeKey("3", "1")], order[ThemeKey("3", "2")])
	for _, th := range themes {
		switch th.Key {
		case ThemeKey("3", "2"):
			assert.Equal(t, ThemeKey("3", "1"), th.ParentKey)
		case ThemeKey("3", "4"):
			assert.Empty(t, th.ParentKey, "missing parent is released to the top level")
		}
		assert.Equal(t, GalleryKey("3"), th.GalleryKey)
	}
}

func TestTransformThemeItem(t *testing.T) {
	item, ok := TransformThemeItem(legacydb.RowOf("gallery_id", "3", "theme_id", "1", "item_id", "8",
		"sh_monument_detail_project_id", "SH1", "sh_monument_detail_country_id", "ma",
		"sh_monument_detail_item_id", "5", "sh_monument_detail_detail_id", "2"))
	require.True(t, ok)
	assert.Equal(t, ShMonumentDetailKey("SH1", "ma", "5", "2"), item.ItemKey)
	assert.Equal(t, ThemeKey("3", "1"), item.ThemeKey)

	item, ok = TransformThemeItem(legacydb.RowOf("gallery_id", "3", "theme_id", "1",
		"mwnf3_object_project_id", "AWE", "mwnf3_object_country_id", "eg",
		"mwnf3_object_partner_id", "Mus01", "mwnf3_object_item_id", "12"))
	require.True(t, ok)
	assert.Equal(t, ObjectKey("AWE", "eg", "Mus01", "12"), item.ItemKey)

	_, ok = TransformThemeItem(legacydb.RowOf("gallery_id", "3", "theme_id", "1", "mwnf3_object_project_id", "AWE"))
	assert.False(t, ok)
}

func TestExplore(t *testing.T) {
	roots := ExploreRoots("eng")
	require.Len(t, roots, 3)
	assert.Equal(t, models.CollectionTypeItinerary, roots[2].Collection.Type)

	country, err := TransformExploreCountry(legacydb.RowOf("countryId", "tn"), "Tunisia", "eng")
	require.NoError(t, err)
	assert.Equal(t, ExploreByCountryKey, country.ParentKey)
	assert.Equal(t, "tun", country.Collection.CountryID)
	assert.Equal(t, "Tunisia", country.Translations[0].Title)

	loc, err := TransformExploreLocation(legacydb.RowOf("locationId", "17", "countryId", "tn", "label", "Kairouan",
		"geoCoordinates", "35.67,10.10", "zoom", "14", "description", "Holy city", "how_to_reach", "By road"), "eng")
	require.NoError(t, err)
	assert.Equal(t, ExploreCountryKey("tn"), loc.ParentKey)
	assert.Equal(t, "explore_location_17_kairouan", loc.Collection.InternalName)
	assert.Equal(t, "Holy city\n\nHow to reach: By road", loc.Translations[0].Description)
	require.NotNil(t, loc.Collection.MapZoom)
	assert.Equal(t, 14, *loc.Collection.MapZoom)

	mon := TransformExploreMonument(legacydb.RowOf("monumentId", "40", "locationId", "17", "title", "Great Mosque"), "eng")
	assert.Equal(t, ExploreLocationKey("17"), mon.LocationKey)
	assert.Equal(t, "explore_monument_40_great_mosque", mon.Item.InternalName)
	assert.Equal(t, models.ItemTypeMonument, mon.Item.Type)
}

func TestTravels(t *testing.T) {
	trail, err := TransformTrail(legacydb.RowOf("project_id", "TR", "country", "pt", "number", "1",
		"title", "Lisbon", "subtitle", "By the sea"), "eng")
	require.NoError(t, err)
	assert.Equal(t, TravelsRootKey, trail.ParentKey)
	assert.Equal(t, TravelsContextKey, trail.ContextKey)
	assert.Equal(t, models.CollectionTypeExhibitionTrail, trail.Collection.Type)
	assert.Equal(t, "trail_TR_pt_1_lisbon", trail.Collection.InternalName)
	assert.Equal(t, "By the sea", trail.Translations[0].Quote)

	itin, err := TransformItinerary(legacydb.RowOf("project_id", "TR", "country", "pt", "trail_id", "1",
		"number", "2", "title", "Old town", "days", "1"), "eng")
	require.NoError(t, err)
	assert.Equal(t, trail.Key, itin.ParentKey)
	assert.Equal(t, "Days: 1", itin.Translations[0].Description)

	loc, err := TransformTravelLocation(legacydb.RowOf("project_id", "TR", "country", "pt", "trail_id", "1",
		"itinerary_id", "2", "number", "3", "title", ""), "eng")
	require.NoError(t, err)
	assert.Equal(t, itin.Key, loc.ParentKey)
	assert.Equal(t, "Location 3", loc.Translations[0].Title)
}

func TestGroupTravelRows_OneTranslationPerLanguage(t *testing.T) {
	rows := []legacydb.Row{
		legacydb.RowOf("project_id", "TR", "country", "pt", "number", "1", "lang", "fr", "title", "Lisbonne"),
		legacydb.RowOf("project_id", "TR", "country", "pt", "number", "1", "lang", "en", "title", "Lisbon"),
		legacydb.RowOf("project_id", "TR", "country", "pt", "number", "1", "lang", "zz", "title", "?"),
		legacydb.RowOf("project_id", "TR", "country", "pt", "number", "2", "lang", "ar", "title", "Porto"),
	}

	recs, errs := GroupTravelRows(rows, "eng", TrailRowKey, TransformTrail)

	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "unknown language code 'zz'")
	require.Len(t, recs, 2)

	lisbon := recs[0]
	assert.Equal(t, TrailKey("TR", "pt", "1"), lisbon.Key)
	assert.Equal(t, "trail_TR_pt_1_lisbon", lisbon.Collection.InternalName)
	assert.Equal(t, "eng", lisbon.Collection.LanguageID)
	require.Len(t, lisbon.Translations, 2)
	assert.Equal(t, "eng", lisbon.Translations[0].LanguageID)
	assert.Equal(t, "Lisbon", lisbon.Translations[0].Title)
	assert.Equal(t, "fra", lisbon.Translations[1].LanguageID)
	assert.Equal(t, "Lisbonne", lisbon.Translations[1].Title)
	assert.Equal(t, lisbon.Key+":translation:fra", lisbon.Translations[1].BackwardCompatibility)

	porto := recs[1]
	assert.Equal(t, "eng", porto.Collection.LanguageID)
	require.Len(t, porto.Translations, 1)
	assert.Equal(t, "ara", porto.Translations[0].LanguageID)
}

func TestTransformTravelMonuments(t *testing.T) {
	rows := []legacydb.Row{
		legacydb.RowOf("project_id", "TR", "country", "pt", "trail_id", "1", "itinerary_id", "2", "location_id", "3",
			"number", "4", "lang", "fr", "title", "Tour de Belém", "description", "Une tour"),
		legacydb.RowOf("project_id", "TR", "country", "pt", "trail_id", "1", "itinerary_id", "2", "location_id", "3",
			"number", "4", "lang", "en", "title", "Belém Tower", "description", "A tower",
			"how_to_reach", "Tram 15", "prepared_by", "A. Costa"),
	}

	recs, errs := TransformTravelMonuments(rows, "eng")

	require.Empty(t, errs)
	require.Len(t, recs, 1)
	rec := recs[0]
	assert.Equal(t, "mwnf3_travels:monument:TR:pt:1:2:3:4", rec.Key)
	assert.Equal(t, TravelLocationKey("TR", "pt", "1", "2", "3"), rec.LocationKey)
	assert.Equal(t, "tr_mon_TR_pt_1_2_3_4_belem_tower", rec.Item.InternalName)
	assert.Equal(t, models.ItemTypeMonument, rec.Item.Type)
	assert.Equal(t, "prt", rec.Item.CountryID)
	require.Len(t, rec.Translations, 2)
	assert.Equal(t, "fra", rec.Translations[0].LanguageID)
	assert.Equal(t, "Tour de Belém", rec.Translations[0].Name)
	assert.Equal(t, "eng", rec.Translations[1].LanguageID)
	assert.JSONEq(t, `{"how_to_reach":"Tram 15","prepared_by":"A. Costa"}`, rec.Translations[1].Extra)
	assert.NotEqual(t, rec.Translations[0].BackwardCompatibility, rec.Translations[1].BackwardCompatibility)
}

func TestTransformImages_DropsRepeatedPaths(t *testing.T) {
	rows := []legacydb.Row{
		legacydb.RowOf("project_id", "TR", "country", "pt", "trail_id", "1", "lang", "en", "image_number", int64(1),
			"path", "trails/1.jpg", "caption", "The river"),
		legacydb.RowOf("project_id", "TR", "country", "pt", "trail_id", "1", "lang", "fr", "image_number", int64(1),
			"path", "Trails/1.JPG", "caption", "Le fleuve"),
		legacydb.RowOf("project_id", "TR", "country", "pt", "trail_id", "1", "lang", "en", "image_number", int64(2),
			"path", ""),
	}

	recs := TransformImages(rows, TrailPictureOwnerKey)

	require.Len(t, recs, 1)
	assert.Equal(t, ImageRecord{
		OwnerKey: TrailKey("TR", "pt", "1"),
		Path:     "trails/1.jpg",
		Number:   1,
		Caption:  "The river",
	}, recs[0])
}

func TestTransformExploreThematicCycle(t *testing.T) {
	rec, err := TransformExploreThematicCycle(legacydb.RowOf("cycleId", "5", "cycleLabel", "Andalusian Gardens",
		"cycleDescription", "Gardens of al-Andalus", "geoCoordinates", "37.17, -3.59", "zoom", "8"), "eng")

	require.NoError(t, err)
	assert.Equal(t, "mwnf3_explore:thematiccycle:5", rec.Key)
	assert.Equal(t, ExploreByThemeKey, rec.ParentKey)
	assert.Equal(t, models.CollectionTypeTheme, rec.Collection.Type)
	assert.Equal(t, "theme_andalusian_gardens", rec.Collection.InternalName)
	require.NotNil(t, rec.Collection.MapZoom)
	assert.Equal(t, 8, *rec.Collection.MapZoom)
	require.Len(t, rec.Translations, 1)
	assert.Equal(t, "Gardens of al-Andalus", rec.Translations[0].Title)
}

func TestTransformExploreItineraries_ParentsFirst(t *testing.T) {
	rows := []legacydb.Row{
		legacydb.RowOf("itineraries_id", "3", "parent_itineraries_id", "2", "country", "es"),
		legacydb.RowOf("itineraries_id", "1", "cycle", "5", "country", "es", "cycleLabel", "Gardens"),
		legacydb.RowOf("itineraries_id", "2", "parent_itineraries_id", "1"),
		legacydb.RowOf("itineraries_id", "4", "parent_itineraries_id", "99"),
	}

	recs, errs := TransformExploreItineraries(rows, "eng")

	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "parent 99 not found")
	require.Len(t, recs, 3)
	assert.Equal(t, ExploreItineraryKey("1"), recs[0].Key)
	assert.Equal(t, ExploreByItineraryKey, recs[0].ParentKey)
	assert.Equal(t, models.CollectionTypeItinerary, recs[0].Collection.Type)
	assert.Equal(t, "Gardens - ES", recs[0].Translations[0].Title)

	assert.Equal(t, ExploreItineraryKey("2"), recs[1].Key)
	assert.Equal(t, ExploreItineraryKey("1"), recs[1].ParentKey)
	assert.Equal(t, models.CollectionTypeExhibitionTrail, recs[1].Collection.Type)
	assert.Equal(t, "Itinerary 2", recs[1].Translations[0].Title)

	assert.Equal(t, ExploreItineraryKey("3"), recs[2].Key)
	assert.Equal(t, "Itinerary - ES", recs[2].Translations[0].Title)
}

func TestWithGalleryTexts(t *testing.T) {
	gallery := TransformGallery(legacydb.RowOf("gallery_id", "12", "name", "Islamic Art"), false, "eng")
	texts := []legacydb.Row{
		legacydb.RowOf("gallery_id", "12", "language_id", "fr", "title", "Art islamique", "subtitle", "Sous-titre", "about", "À propos"),
		legacydb.RowOf("gallery_id", "12", "language_id", "zz", "title", "?"),
	}

	rec := WithGalleryTexts(gallery, texts)

	require.Len(t, rec.Collection.Translations, 2)
	fr := rec.Collection.Translations[0]
	assert.Equal(t, "fra", fr.LanguageID)
	assert.Equal(t, "Art islamique", fr.Title)
	assert.Equal(t, "Sous-titre\n\nÀ propos", fr.Description)
	assert.Equal(t, GalleryKey("12")+":translation:fra", fr.BackwardCompatibility)
	assert.Equal(t, "eng", rec.Collection.Translations[1].LanguageID, "name-based translation kept for an uncovered language")
	require.Len(t, rec.Collection.Warnings, 1)

	withEnglish := WithGalleryTexts(gallery, []legacydb.Row{
		legacydb.RowOf("gallery_id", "12", "language_id", "en", "title", "Islamic Art Gallery"),
	})
	require.Len(t, withEnglish.Collection.Translations, 1)
	assert.Equal(t, "Islamic Art Gallery", withEnglish.Collection.Translations[0].Title)
}

func TestTransformThemeItemLinks(t *testing.T) {
	themeItems := []legacydb.Row{
		legacydb.RowOf("gallery_id", "12", "theme_id", "3", "item_id", "1",
			"mwnf3_object_project_id", "AWE", "mwnf3_object_country_id", "eg", "mwnf3_object_partner_id", "Mus01", "mwnf3_object_item_id", "12"),
		legacydb.RowOf("gallery_id", "12", "theme_id", "3", "item_id", "2",
			"sh_monument_project_id", "SH1", "sh_monument_country_id", "eg", "sh_monument_item_id", "7"),
	}
	related := []legacydb.Row{
		legacydb.RowOf("gallery_id", "12", "theme_id", "3", "item_id", "1", "related_item_id", "2"),
		legacydb.RowOf("gallery_id", "12", "theme_id", "3", "item_id", "1", "related_item_id", "2"),
		legacydb.RowOf("gallery_id", "12", "theme_id", "3", "item_id", "1", "related_item_id", "9"),
	}

	links, skipped := TransformThemeItemLinks(themeItems, related)

	require.Len(t, links, 1)
	assert.Equal(t, ThemeLinkRecord{
		Key:        "mwnf3_thematic_gallery:theme_item_related:12:3:1:2",
		GalleryKey: GalleryKey("12"),
		SourceKey:  ObjectKey("AWE", "eg", "Mus01", "12"),
		TargetKey:  ShMonumentKey("SH1", "eg", "7"),
	}, links[0])
	require.Len(t, skipped, 1)
	assert.Contains(t, skipped[0], "target theme item 9 not found")
}
