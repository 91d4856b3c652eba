package importers

import (
	"context"
	"fmt"
	"time"

	"github.com/ekaya-inc/heritage-importer/pkg/models"
	"github.com/ekaya-inc/heritage-importer/pkg/strategy"
	"github.com/ekaya-inc/heritage-importer/pkg/tracker"
	"github.com/ekaya-inc/heritage-importer/pkg/transform"
)

// ItemItemLinkImporter writes the legacy object and monument cross references
// as item links in the default context.
type ItemItemLinkImporter struct {
	base
	sources []transform.LinkSource
}

func NewItemItemLinkImporter(c *Context) *ItemItemLinkImporter {
	return &ItemItemLinkImporter{base: newBase("item-item-link", c), sources: transform.LinkSources}
}

func (i *ItemItemLinkImporter) Import(ctx context.Context) Result {
	started := time.Now()
	i.begin()

	contextID, err := i.defaultContextID(ctx)
	if err != nil {
		i.fail(i.name, err)
		return i.finish(started)
	}
	for _, src := range i.sources {
		rows, err := i.query(ctx, src.Query)
		if err != nil {
			i.fail(src.Name, err)
			continue
		}
		for _, rec := range transform.TransformLinks(rows, src) {
			i.importLink(ctx, rec, contextID)
		}
	}
	return i.finish(started)
}

func (i *ItemItemLinkImporter) importLink(ctx context.Context, rec transform.LinkRecord, contextID string) {
	exists, err := i.exists(ctx, strategy.TableItemItemLinks, tracker.ItemItemLink, rec.Key)
	if err != nil {
		i.fail(rec.Key, err)
		return
	}
	if exists {
		i.skipped()
		return
	}
	sourceID, err := i.resolve(ctx, strategy.TableItems, tracker.Item, rec.SourceKey)
	if err != nil {
		i.warn(fmt.Sprintf("%s - source %s not imported", rec.Key, rec.SourceKey))
		i.skipped()
		return
	}
	targetID, err := i.resolve(ctx, strategy.TableItems, tracker.Item, rec.TargetKey)
	if err != nil {
		i.warn(fmt.Sprintf("%s - target %s not imported", rec.Key, rec.TargetKey))
		i.skipped()
		return
	}

	link := models.ItemItemLink{SourceID: sourceID, TargetID: targetID, ContextID: contextID, BackwardCompatibility: rec.Key}
	if _, err := i.write(rec.Key, tracker.ItemItemLink, func() (string, error) {
		return i.c.Strategy.WriteItemItemLink(ctx, link)
	}); err != nil {
		i.fail(rec.Key, err)
		return
	}
	i.imported()
}
