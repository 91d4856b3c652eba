package importers

import (
	"context"
	"fmt"
	"time"

	"github.com/ekaya-inc/heritage-importer/pkg/strategy"
	"github.com/ekaya-inc/heritage-importer/pkg/tracker"
	"github.com/ekaya-inc/heritage-importer/pkg/transform"
)

// PartnerMonumentLinker points museums housed in a monument at the monument's
// item. It runs last, once every monument exists.
type PartnerMonumentLinker struct{ base }

func NewPartnerMonumentLinker(c *Context) *PartnerMonumentLinker {
	return &PartnerMonumentLinker{base: newBase("partner-monument-linker", c)}
}

func (i *PartnerMonumentLinker) Import(ctx context.Context) Result {
	started := time.Now()
	i.begin()

	rows, err := i.query(ctx, transform.MonumentLinksQuery)
	if err != nil {
		i.fail(i.name, err)
		return i.finish(started)
	}
	for _, r := range rows {
		link, ok := transform.TransformMonumentLink(r)
		if !ok {
			i.skipped()
			continue
		}
		partnerID, err := i.resolve(ctx, strategy.TablePartners, tracker.Partner, link.PartnerKey)
		if err != nil {
			i.warn(fmt.Sprintf("%s - partner not imported", link.PartnerKey))
			i.skipped()
			continue
		}
		itemID, err := i.resolve(ctx, strategy.TableItems, tracker.Item, link.MonumentKey)
		if err != nil {
			i.warn(fmt.Sprintf("%s - monument %s not imported", link.PartnerKey, link.MonumentKey))
			i.skipped()
			continue
		}
		if err := i.exec(func() error { return i.c.Strategy.UpdatePartnerMonument(ctx, partnerID, itemID) }); err != nil {
			i.fail(link.PartnerKey, err)
			continue
		}
		i.imported()
	}
	return i.finish(started)
}
