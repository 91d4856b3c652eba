package importers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/heritage-importer/pkg/legacydb"
	"github.com/ekaya-inc/heritage-importer/pkg/models"
	"github.com/ekaya-inc/heritage-importer/pkg/strategy"
	"github.com/ekaya-inc/heritage-importer/pkg/testhelpers"
	"github.com/ekaya-inc/heritage-importer/pkg/tracker"
	"github.com/ekaya-inc/heritage-importer/pkg/transform"
)

func collectionTranslations(s *testhelpers.FakeStrategy) []models.CollectionTranslation {
	var out []models.CollectionTranslation
	for _, c := range s.CallsTo("WriteCollectionTranslation") {
		out = append(out, c.(models.CollectionTranslation))
	}
	return out
}

func TestTrailImporter_WritesEveryLanguage(t *testing.T) {
	reader := testhelpers.NewFakeReader().On(transform.TrailsQuery,
		legacydb.RowOf("project_id", "TR", "country", "pt", "number", "1", "lang", "en", "title", "Lisbon"),
		legacydb.RowOf("project_id", "TR", "country", "pt", "number", "1", "lang", "fr", "title", "Lisbonne"),
		legacydb.RowOf("project_id", "TR", "country", "pt", "number", "1", "lang", "ar", "title", "لشبونة"),
	)
	c, s := newTestContext(t, reader, false)
	ctx := context.Background()

	result := NewTrailImporter(c).Import(ctx)

	require.True(t, result.Success, "errors: %v", result.Errors)
	assert.Equal(t, 2, result.Imported, "root and trail")
	require.Len(t, s.CallsTo("WriteCollection"), 2)

	trailID, ok := c.Tracker.GetUUID(transform.TrailKey("TR", "pt", "1"), tracker.Collection)
	require.True(t, ok)
	titles := map[string]string{}
	for _, tr := range collectionTranslations(s) {
		if tr.CollectionID == trailID {
			titles[tr.LanguageID] = tr.Title
		}
	}
	assert.Equal(t, map[string]string{"eng": "Lisbon", "fra": "Lisbonne", "ara": "لشبونة"}, titles)

	again := NewTrailImporter(c).Import(ctx)
	assert.Equal(t, 0, again.Imported)
	assert.Len(t, s.CallsTo("WriteCollectionTranslation"), 4)
}

func TestItineraryImporter_AddsMissingTranslationsToExistingCollection(t *testing.T) {
	itineraryKey := transform.ItineraryKey("TR", "pt", "1", "2")
	reader := testhelpers.NewFakeReader().On(transform.ItinerariesQuery,
		legacydb.RowOf("project_id", "TR", "country", "pt", "trail_id", "1", "number", "2", "lang", "en", "title", "Old town"),
		legacydb.RowOf("project_id", "TR", "country", "pt", "trail_id", "1", "number", "2", "lang", "fr", "title", "Vieille ville"),
	)
	c, s := newTestContext(t, reader, false)
	s.Seed(strategy.TableContexts, transform.TravelsContextKey, "ctx-travels")
	s.Seed(strategy.TableCollections, transform.TrailKey("TR", "pt", "1"), "col-trail")
	s.Seed(strategy.TableCollections, itineraryKey, "col-itin")
	s.Seed(strategy.TableCollectionTranslations, itineraryKey+":translation:eng", "tr-eng")

	result := NewItineraryImporter(c).Import(context.Background())

	require.True(t, result.Success, "errors: %v", result.Errors)
	assert.Equal(t, 0, result.Imported)
	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, s.CallsTo("WriteCollection"))
	translations := collectionTranslations(s)
	require.Len(t, translations, 1)
	assert.Equal(t, "fra", translations[0].LanguageID)
	assert.Equal(t, "Vieille ville", translations[0].Title)
	assert.Equal(t, "col-itin", translations[0].CollectionID)
	assert.Equal(t, "ctx-travels", translations[0].ContextID)
}

func TestTravelLocationImporter_UnknownLanguageIsSkipped(t *testing.T) {
	reader := testhelpers.NewFakeReader().On(transform.TravelLocationsQuery,
		legacydb.RowOf("project_id", "TR", "country", "pt", "trail_id", "1", "itinerary_id", "2", "number", "3", "lang", "en", "title", "Belém"),
		legacydb.RowOf("project_id", "TR", "country", "pt", "trail_id", "1", "itinerary_id", "2", "number", "3", "lang", "zz", "title", "?"),
	)
	c, s := newTestContext(t, reader, false)
	s.Seed(strategy.TableContexts, transform.TravelsContextKey, "ctx-travels")
	s.Seed(strategy.TableCollections, transform.ItineraryKey("TR", "pt", "1", "2"), "col-itin")

	result := NewTravelLocationImporter(c).Import(context.Background())

	require.True(t, result.Success, "errors: %v", result.Errors)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "unknown language code 'zz'")
	assert.Len(t, collectionTranslations(s), 1)
}

func TestTravelMonumentImporter(t *testing.T) {
	locationKey := transform.TravelLocationKey("TR", "pt", "1", "2", "3")
	row := func(lang, title string) legacydb.Row {
		return legacydb.RowOf("project_id", "TR", "country", "pt", "trail_id", "1", "itinerary_id", "2", "location_id", "3",
			"number", "4", "lang", lang, "title", title, "description", title)
	}
	reader := testhelpers.NewFakeReader().
		On(transform.TravelMonumentsQuery, row("en", "Belém Tower"), row("fr", "Tour de Belém"),
			legacydb.RowOf("project_id", "TR", "country", "pt", "trail_id", "1", "itinerary_id", "9", "location_id", "9",
				"number", "1", "lang", "en", "title", "Orphan"))
	c, s := newTestContext(t, reader, false)
	s.Seed(strategy.TableContexts, transform.TravelsContextKey, "ctx-travels")
	s.Seed(strategy.TableCollections, locationKey, "col-loc")
	ctx := context.Background()

	result := NewTravelMonumentImporter(c).Import(ctx)

	require.True(t, result.Success, "errors: %v", result.Errors)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Skipped, "monument of a missing location")

	items := s.CallsTo("WriteItem")
	require.Len(t, items, 1)
	item := items[0].(models.Item)
	assert.Equal(t, "col-loc", item.CollectionID)
	assert.Equal(t, "prt", item.CountryID)
	assert.Empty(t, item.ProjectID)
	assert.Empty(t, item.PartnerID)

	translations := s.CallsTo("WriteItemTranslation")
	require.Len(t, translations, 2)
	for _, tr := range translations {
		assert.Equal(t, "ctx-travels", tr.(models.ItemTranslation).ContextID)
	}
	attachments := s.CallsTo("AttachItemsToCollection")
	require.Len(t, attachments, 1)
	assert.Equal(t, "col-loc", attachments[0].(testhelpers.Attachment).OwnerID)

	c.Tracker.Clear()
	again := NewTravelMonumentImporter(c).Import(ctx)
	assert.Equal(t, 0, again.Imported)
	assert.Len(t, s.CallsTo("WriteItem"), 1)
}

func TestTrailPictureImporter_RestartWithEmptyTracker(t *testing.T) {
	reader := testhelpers.NewFakeReader().On(transform.TrailPicturesQuery,
		legacydb.RowOf("project_id", "TR", "country", "pt", "trail_id", "1", "lang", "en", "image_number", int64(1),
			"path", "trails/1.jpg", "caption", "The river"),
		legacydb.RowOf("project_id", "TR", "country", "pt", "trail_id", "1", "lang", "fr", "image_number", int64(1),
			"path", "trails/1.jpg", "caption", "Le fleuve"),
		legacydb.RowOf("project_id", "TR", "country", "pt", "trail_id", "1", "lang", "en", "image_number", int64(2),
			"path", "trails/2.jpg"),
	)
	c, s := newTestContext(t, reader, false)
	s.Seed(strategy.TableCollections, transform.TrailKey("TR", "pt", "1"), "col-trail")
	ctx := context.Background()

	result := NewTrailPictureImporter(c).Import(ctx)

	require.True(t, result.Success, "errors: %v", result.Errors)
	assert.Equal(t, 2, result.Imported)
	images := s.CallsTo("WriteCollectionImage")
	require.Len(t, images, 2)
	first := images[0].(models.Image)
	assert.Equal(t, "col-trail", first.ParentID)
	assert.Equal(t, "The river", first.AltText)
	assert.Equal(t, 1, first.DisplayOrder)
	assert.Equal(t, 2, images[1].(models.Image).DisplayOrder)

	c.Tracker.Clear()
	again := NewTrailPictureImporter(c).Import(ctx)
	assert.Equal(t, 0, again.Imported)
	assert.Equal(t, 2, again.Skipped)
	assert.Len(t, s.CallsTo("WriteCollectionImage"), 2)
}

func TestShMonumentPictureImporter(t *testing.T) {
	const shKey = "mwnf3_sharing_history:sh_projects:SH1"
	reader := testhelpers.NewFakeReader().
		On(transform.ShMonumentPictures.Query,
			legacydb.RowOf("project_id", "SH1", "country", "eg", "number", "7", "type", "", "image_number", int64(1), "path", "sh/7-1.jpg"),
			legacydb.RowOf("project_id", "SH1", "country", "eg", "number", "7", "type", "plan", "image_number", int64(1), "path", "sh/7-plan.jpg")).
		On(transform.ShMonumentPictures.TextsQuery,
			legacydb.RowOf("project_id", "SH1", "country", "eg", "number", "7", "type", "", "image_number", int64(1),
				"lang", "en", "caption", "Facade"))
	c, s := newTestContext(t, reader, false)
	s.Seed(strategy.TableContexts, shKey, "ctx-sh1")
	s.Seed(strategy.TableProjects, shKey, "proj-sh1")
	s.Seed(strategy.TableCollections, shKey, "col-sh1")
	s.Seed(strategy.TableItems, transform.ShMonumentKey("SH1", "eg", "7"), "item-mon")

	result := NewShMonumentPictureImporter(c).Import(context.Background())

	require.True(t, result.Success, "errors: %v", result.Errors)
	assert.Equal(t, 2, result.Imported)

	items := s.CallsTo("WriteItem")
	require.Len(t, items, 2)
	picture := items[0].(models.Item)
	assert.Equal(t, models.ItemTypePicture, picture.Type)
	assert.Equal(t, "item-mon", picture.ParentID)
	assert.Equal(t, "proj-sh1", picture.ProjectID)
	assert.Equal(t, "col-sh1", picture.CollectionID)
	assert.Empty(t, picture.PartnerID)

	translations := s.CallsTo("WriteItemTranslation")
	require.Len(t, translations, 1)
	assert.Equal(t, "Facade", translations[0].(models.ItemTranslation).Name)
	assert.Equal(t, "ctx-sh1", translations[0].(models.ItemTranslation).ContextID)

	var parentImages int
	for _, img := range s.CallsTo("WriteItemImage") {
		if img.(models.Image).ParentID == "item-mon" {
			parentImages++
		}
	}
	assert.Equal(t, 1, parentImages, "only the first untyped picture is the monument's own image")
}
