package importers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ekaya-inc/heritage-importer/pkg/apperrors"
	"github.com/ekaya-inc/heritage-importer/pkg/strategy"
	"github.com/ekaya-inc/heritage-importer/pkg/tracker"
	"github.com/ekaya-inc/heritage-importer/pkg/transform"
)

// NewTrailImporter also writes the travels context and root collection.
func NewTrailImporter(c *Context) *RowCollectionImporter {
	owner := transform.TravelsContext()
	return &RowCollectionImporter{
		base:      newBase("travels-trail", c),
		owner:     &owner,
		roots:     func(lang string) []transform.CollectionRecord { return []transform.CollectionRecord{transform.TravelsRoot(lang)} },
		rowsQuery: transform.TrailsQuery,
		group:     transform.TrailRowKey,
		transform: transform.TransformTrail,
	}
}

func NewItineraryImporter(c *Context) *RowCollectionImporter {
	return &RowCollectionImporter{
		base:      newBase("travels-itinerary", c),
		rowsQuery: transform.ItinerariesQuery,
		group:     transform.ItineraryRowKey,
		transform: transform.TransformItinerary,
	}
}

func NewTravelLocationImporter(c *Context) *RowCollectionImporter {
	return &RowCollectionImporter{
		base:      newBase("travels-location", c),
		rowsQuery: transform.TravelLocationsQuery,
		group:     transform.TravelLocationRowKey,
		transform: transform.TransformTravelLocation,
	}
}

// TravelMonumentImporter writes tr_monuments as monument items attached to
// their location collection, one translation per language.
type TravelMonumentImporter struct{ base }

func NewTravelMonumentImporter(c *Context) *TravelMonumentImporter {
	return &TravelMonumentImporter{base: newBase("travels-monument", c)}
}

func (i *TravelMonumentImporter) Import(ctx context.Context) Result {
	started := time.Now()
	i.begin()

	contextID, err := i.resolve(ctx, strategy.TableContexts, tracker.Context, transform.TravelsContextKey)
	if err != nil {
		i.fail(i.name, err)
		return i.finish(started)
	}
	rows, err := i.query(ctx, transform.TravelMonumentsQuery)
	if err != nil {
		i.fail(i.name, err)
		return i.finish(started)
	}
	recs, errs := transform.TransformTravelMonuments(rows, i.defaultLanguageID())
	for _, err := range errs {
		i.warn(err.Error())
		i.skipped()
	}
	for _, rec := range recs {
		i.warn(rec.Warnings...)
		exists, err := i.exists(ctx, strategy.TableItems, tracker.Item, rec.Key)
		if err != nil {
			i.fail(rec.Key, err)
			continue
		}
		if exists {
			i.skipped()
			continue
		}
		err = i.writeMonument(ctx, rec, contextID)
		switch {
		case errors.Is(err, apperrors.ErrMissingDependency):
			i.warn(fmt.Sprintf("%s - %v, monument skipped", rec.Key, err))
			i.skipped()
		case err != nil:
			i.fail(rec.Key, err)
		default:
			i.imported()
		}
	}
	return i.finish(started)
}

func (i *TravelMonumentImporter) writeMonument(ctx context.Context, rec transform.TravelMonumentRecord, contextID string) error {
	locationID, err := i.resolve(ctx, strategy.TableCollections, tracker.Collection, rec.LocationKey)
	if err != nil {
		return err
	}
	data := rec.Item
	data.CollectionID = locationID
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
	return i.exec(func() error {
		return i.c.Strategy.AttachItemsToCollection(ctx, locationID, []string{itemID})
	})
}
