package importers

import (
	"context"
	"fmt"
	"time"

	"github.com/ekaya-inc/heritage-importer/pkg/legacydb"
	"github.com/ekaya-inc/heritage-importer/pkg/models"
	"github.com/ekaya-inc/heritage-importer/pkg/strategy"
	"github.com/ekaya-inc/heritage-importer/pkg/tracker"
	"github.com/ekaya-inc/heritage-importer/pkg/transform"
)

// PartnerImporter writes museums, institutions or sharing history partners
// with their translations in the default context.
type PartnerImporter struct {
	base
	partnersQuery string
	namesQuery    string
	keyOf         func(legacydb.Row) string
	transform     func(p legacydb.Row, names []legacydb.Row) (*transform.PartnerRecord, error)
}

func NewMuseumImporter(c *Context) *PartnerImporter {
	return newPartnerImporter("museum", c, transform.MuseumsQuery, transform.MuseumNamesQuery, models.PartnerTypeMuseum)
}

func NewInstitutionImporter(c *Context) *PartnerImporter {
	return newPartnerImporter("institution", c, transform.InstitutionsQuery, transform.InstitutionNamesQuery, models.PartnerTypeInstitution)
}

func newPartnerImporter(name string, c *Context, partnersQuery, namesQuery, partnerType string) *PartnerImporter {
	return &PartnerImporter{
		base:          newBase(name, c),
		partnersQuery: partnersQuery,
		namesQuery:    namesQuery,
		keyOf:         func(r legacydb.Row) string { return transform.PartnerKeyOf(r, partnerType) },
		transform: func(p legacydb.Row, names []legacydb.Row) (*transform.PartnerRecord, error) {
			return transform.TransformPartner(p, names, partnerType)
		},
	}
}

func NewShPartnerImporter(c *Context) *PartnerImporter {
	return &PartnerImporter{
		base:          newBase("sh-partner", c),
		partnersQuery: transform.ShPartnersQuery,
		namesQuery:    transform.ShPartnerNamesQuery,
		keyOf:         func(r legacydb.Row) string { return transform.ShPartnerKey(r.Trimmed("partners_id")) },
		transform:     transform.TransformShPartner,
	}
}

func (i *PartnerImporter) Import(ctx context.Context) Result {
	started := time.Now()
	i.begin()

	partners, err := i.query(ctx, i.partnersQuery)
	if err != nil {
		i.fail(i.name, err)
		return i.finish(started)
	}
	names, err := i.query(ctx, i.namesQuery)
	if err != nil {
		i.fail(i.name, err)
		return i.finish(started)
	}
	byPartner := transform.IndexBy(names, i.keyOf)

	contextID, err := i.defaultContextID(ctx)
	if err != nil {
		i.fail(i.name, err)
		return i.finish(started)
	}

	for _, p := range partners {
		k := i.keyOf(p)
		exists, err := i.exists(ctx, strategy.TablePartners, tracker.Partner, k)
		if err != nil {
			i.fail(k, err)
			continue
		}
		if exists {
			i.skipped()
			continue
		}
		rec, err := i.transform(p, byPartner[k])
		if err != nil {
			i.fail(k, err)
			continue
		}
		i.warn(rec.Warnings...)
		if err := i.writePartner(ctx, rec, contextID); err != nil {
			i.fail(k, err)
			continue
		}
		i.imported()
	}
	return i.finish(started)
}

func (i *PartnerImporter) writePartner(ctx context.Context, rec *transform.PartnerRecord, contextID string) error {
	data := rec.Partner
	if rec.ProjectKey != "" {
		projectID, err := i.resolve(ctx, strategy.TableProjects, tracker.Project, rec.ProjectKey)
		if err != nil {
			i.warn(fmt.Sprintf("%s - project %s not imported, partner left without project", rec.Key, rec.ProjectKey))
		}
		data.ProjectID = projectID
	}

	partnerID, err := i.write(rec.Key, tracker.Partner, func() (string, error) {
		return i.c.Strategy.WritePartner(ctx, data)
	})
	if err != nil {
		return err
	}
	for _, tr := range rec.Translations {
		tr.PartnerID = partnerID
		tr.ContextID = contextID
		err := i.writeTranslation(tr.BackwardCompatibility, tracker.PartnerTranslation, func() error {
			return i.c.Strategy.WritePartnerTranslation(ctx, tr)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// defaultContextID returns the id of the shared default context.
func (b *base) defaultContextID(ctx context.Context) (string, error) {
	if id, ok := b.c.Tracker.GetMetadata(tracker.MetaDefaultContextID); ok && id != "" {
		return id, nil
	}
	id, err := b.resolve(ctx, strategy.TableContexts, tracker.Context, transform.DefaultContextKey)
	if err != nil {
		return "", err
	}
	b.c.Tracker.SetMetadata(tracker.MetaDefaultContextID, id)
	return id, nil
}
