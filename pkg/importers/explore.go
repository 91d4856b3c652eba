package importers

import (
	"context"
	"fmt"
	"time"

	"github.com/ekaya-inc/heritage-importer/pkg/codes"
	"github.com/ekaya-inc/heritage-importer/pkg/legacydb"
	"github.com/ekaya-inc/heritage-importer/pkg/models"
	"github.com/ekaya-inc/heritage-importer/pkg/strategy"
	"github.com/ekaya-inc/heritage-importer/pkg/tracker"
	"github.com/ekaya-inc/heritage-importer/pkg/transform"
)

// ExploreCountryNamesQuery names the Explore country collections.
const ExploreCountryNamesQuery = "SELECT country, name FROM mwnf3.countrynames WHERE lang = 'en' ORDER BY country"

// RowCollectionImporter maps each row of one legacy query to a collection.
// The owning context and fixed roots are written first when set. With group
// set, rows sharing a key are language variants of one collection.
type RowCollectionImporter struct {
	base
	owner     *models.Context
	roots     func(languageID string) []transform.CollectionRecord
	rowsQuery string
	group     func(r legacydb.Row) string
	transform func(r legacydb.Row, languageID string) (transform.CollectionRecord, error)
}

func NewExploreRootsImporter(c *Context) *CollectionTreeImporter {
	owner := transform.ExploreContext()
	return &CollectionTreeImporter{base: newBase("explore-root-collections", c), owner: &owner, collections: transform.ExploreRoots}
}

func NewExploreLocationImporter(c *Context) *RowCollectionImporter {
	return &RowCollectionImporter{
		base:      newBase("explore-location", c),
		rowsQuery: transform.ExploreLocationsQuery,
		transform: transform.TransformExploreLocation,
	}
}

func NewExploreThematicCycleImporter(c *Context) *RowCollectionImporter {
	return &RowCollectionImporter{
		base:      newBase("explore-thematiccycle", c),
		rowsQuery: transform.ExploreThematicCyclesQuery,
		transform: transform.TransformExploreThematicCycle,
	}
}

// ExploreItineraryImporter writes Explore itineraries, nested ones under their
// parent itinerary.
type ExploreItineraryImporter struct{ base }

func NewExploreItineraryImporter(c *Context) *ExploreItineraryImporter {
	return &ExploreItineraryImporter{base: newBase("explore-itinerary", c)}
}

func (i *ExploreItineraryImporter) Import(ctx context.Context) Result {
	started := time.Now()
	i.begin()

	rows, err := i.query(ctx, transform.ExploreItinerariesQuery)
	if err != nil {
		i.fail(i.name, err)
		return i.finish(started)
	}
	recs, errs := transform.TransformExploreItineraries(rows, i.defaultLanguageID())
	for _, err := range errs {
		i.warn(err.Error())
		i.skipped()
	}
	i.importCollections(ctx, recs)
	return i.finish(started)
}

func (i *RowCollectionImporter) Import(ctx context.Context) Result {
	started := time.Now()
	i.begin()

	lang := i.defaultLanguageID()
	if i.owner != nil {
		if _, _, err := i.ensureContext(ctx, *i.owner); err != nil {
			i.fail(i.owner.BackwardCompatibility, err)
			return i.finish(started)
		}
	}
	if i.roots != nil {
		i.importCollections(ctx, i.roots(lang))
	}

	rows, err := i.query(ctx, i.rowsQuery)
	if err != nil {
		i.fail(i.name, err)
		return i.finish(started)
	}
	if i.group != nil {
		recs, errs := transform.GroupTravelRows(rows, lang, i.group, i.transform)
		for _, err := range errs {
			i.warn(err.Error())
			i.skipped()
		}
		i.importCollections(ctx, recs)
		return i.finish(started)
	}
	recs := make([]transform.CollectionRecord, 0, len(rows))
	for _, r := range rows {
		rec, err := i.transform(r, lang)
		if err != nil {
			i.warn(err.Error())
			i.skipped()
			continue
		}
		recs = append(recs, rec)
	}
	i.importCollections(ctx, recs)
	return i.finish(started)
}

// ExploreCountryImporter writes one collection per country holding Explore
// locations, named after the country's English name.
type ExploreCountryImporter struct{ base }

func NewExploreCountryImporter(c *Context) *ExploreCountryImporter {
	return &ExploreCountryImporter{base: newBase("explore-country", c)}
}

func (i *ExploreCountryImporter) Import(ctx context.Context) Result {
	started := time.Now()
	i.begin()

	rows, err := i.query(ctx, transform.ExploreCountriesQuery)
	if err != nil {
		i.fail(i.name, err)
		return i.finish(started)
	}
	nameRows, err := i.query(ctx, ExploreCountryNamesQuery)
	if err != nil {
		i.fail(i.name, err)
		return i.finish(started)
	}
	names := make(map[string]string, len(nameRows))
	for _, r := range nameRows {
		if id, err := codes.Country(r.Trimmed("country")); err == nil {
			names[id] = transform.Text(r.String("name"))
		}
	}

	lang := i.defaultLanguageID()
	recs := make([]transform.CollectionRecord, 0, len(rows))
	for _, r := range rows {
		id, _ := codes.Country(r.Trimmed("countryId"))
		rec, err := transform.TransformExploreCountry(r, names[id], lang)
		if err != nil {
			i.warn(err.Error())
			i.skipped()
			continue
		}
		recs = append(recs, rec)
	}
	i.importCollections(ctx, recs)
	return i.finish(started)
}

// ExploreMonumentImporter writes Explore monuments as items attached to their
// location collection.
type ExploreMonumentImporter struct{ base }

func NewExploreMonumentImporter(c *Context) *ExploreMonumentImporter {
	return &ExploreMonumentImporter{base: newBase("explore-monument", c)}
}

func (i *ExploreMonumentImporter) Import(ctx context.Context) Result {
	started := time.Now()
	i.begin()

	contextID, err := i.resolve(ctx, strategy.TableContexts, tracker.Context, transform.ExploreContextKey)
	if err != nil {
		i.fail(i.name, err)
		return i.finish(started)
	}
	rows, err := i.query(ctx, transform.ExploreMonumentsQuery)
	if err != nil {
		i.fail(i.name, err)
		return i.finish(started)
	}
	lang := i.defaultLanguageID()
	for _, r := range rows {
		rec := transform.TransformExploreMonument(r, lang)
		exists, err := i.exists(ctx, strategy.TableItems, tracker.Item, rec.Key)
		if err != nil {
			i.fail(rec.Key, err)
			continue
		}
		if exists {
			i.skipped()
			continue
		}
		if err := i.writeMonument(ctx, rec, contextID); err != nil {
			i.fail(rec.Key, err)
			continue
		}
		i.imported()
	}
	return i.finish(started)
}

func (i *ExploreMonumentImporter) writeMonument(ctx context.Context, rec transform.ExploreMonumentRecord, contextID string) error {
	data := rec.Item
	var locationID string
	if rec.LocationKey != "" {
		id, err := i.resolve(ctx, strategy.TableCollections, tracker.Collection, rec.LocationKey)
		if err != nil {
			i.warn(fmt.Sprintf("%s - location %s not imported", rec.Key, rec.LocationKey))
		}
		locationID = id
		data.CollectionID = id
	}

	itemID, err := i.write(rec.Key, tracker.Item, func() (string, error) {
		return i.c.Strategy.WriteItem(ctx, data)
	})
	if err != nil {
		return err
	}
	for _, tr := range rec.Translations {
		tr.ItemID = itemID
		tr.ContextID = contextID
		if err := i.writeTranslation(tr.BackwardCompatibility, tracker.ItemTranslation, func() error {
			return i.c.Strategy.WriteItemTranslation(ctx, tr)
		}); err != nil {
			return err
		}
	}
	if locationID == "" {
		return nil
	}
	return i.exec(func() error {
		return i.c.Strategy.AttachItemsToCollection(ctx, locationID, []string{itemID})
	})
}
