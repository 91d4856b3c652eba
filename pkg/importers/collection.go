package importers

import (
	"context"

	"github.com/ekaya-inc/heritage-importer/pkg/strategy"
	"github.com/ekaya-inc/heritage-importer/pkg/tracker"
	"github.com/ekaya-inc/heritage-importer/pkg/transform"
)

// writeCollection resolves the context and parent of rec, writes the collection
// when missing and then the translations it does not have yet, in the
// collection's context. Translations without a key are written only together
// with a new collection.
func (b *base) writeCollection(ctx context.Context, rec transform.CollectionRecord) (string, bool, error) {
	contextID, err := b.resolve(ctx, strategy.TableContexts, tracker.Context, rec.ContextKey)
	if err != nil {
		return "", false, err
	}
	data := rec.Collection
	data.ContextID = contextID
	if rec.ParentKey != "" {
		parentID, err := b.resolve(ctx, strategy.TableCollections, tracker.Collection, rec.ParentKey)
		if err != nil {
			return "", false, err
		}
		data.ParentID = parentID
	}

	id, created, err := b.ensure(ctx, strategy.TableCollections, tracker.Collection, rec.Key, func() (string, error) {
		return b.c.Strategy.WriteCollection(ctx, data)
	})
	if err != nil {
		return id, created, err
	}
	for _, tr := range rec.Translations {
		if !created {
			if tr.BackwardCompatibility == "" {
				continue
			}
			exists, err := b.exists(ctx, strategy.TableCollectionTranslations, tracker.CollectionTranslation, tr.BackwardCompatibility)
			if err != nil {
				return id, false, err
			}
			if exists {
				continue
			}
		}
		tr.CollectionID = id
		tr.ContextID = contextID
		err := b.writeTranslation(tr.BackwardCompatibility, tracker.CollectionTranslation, func() error {
			return b.c.Strategy.WriteCollectionTranslation(ctx, tr)
		})
		if err != nil {
			return id, created, err
		}
	}
	return id, created, nil
}

// importCollections writes recs in order, counting each one.
func (b *base) importCollections(ctx context.Context, recs []transform.CollectionRecord) {
	for _, rec := range recs {
		b.warn(rec.Warnings...)
		_, created, err := b.writeCollection(ctx, rec)
		switch {
		case err != nil:
			b.fail(rec.Key, err)
		case created:
			b.imported()
		default:
			b.skipped()
		}
	}
}
