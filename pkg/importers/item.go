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

// itemSource defers the transformation of one item until its key is known to
// be missing.
type itemSource struct {
	key   string
	build func() (*transform.ItemRecord, error)
}

type itemLoader func(ctx context.Context, b *base, defaultLanguageID string, hasEPM bool) ([]itemSource, error)

// ItemImporter writes one legacy item family with its translations, tags,
// artists and authors.
type ItemImporter struct {
	base
	load itemLoader
}

func newItemImporter(name string, c *Context, load itemLoader) *ItemImporter {
	return &ItemImporter{base: newBase(name, c), load: load}
}

func NewObjectImporter(c *Context) *ItemImporter {
	return newItemImporter("object", c, groupedItems(transform.ObjectsQuery, transform.GroupObjects, transform.TransformObject))
}

func NewMonumentImporter(c *Context) *ItemImporter {
	return newItemImporter("monument", c, groupedItems(transform.MonumentsQuery, transform.GroupMonuments, transform.TransformMonument))
}

func NewMonumentDetailImporter(c *Context) *ItemImporter {
	return newItemImporter("monument-detail", c, groupedItems(transform.MonumentDetailsQuery, transform.GroupMonumentDetails,
		func(g transform.Group[legacydb.Row], lang string, _ bool) (*transform.ItemRecord, error) {
			return transform.TransformMonumentDetail(g, lang)
		}))
}

func NewShObjectImporter(c *Context) *ItemImporter {
	return newItemImporter("sh-object", c, textedItems(transform.ShObjectsQuery, transform.ShObjectTextsQuery,
		transform.ShObjectKeyOf, transform.TransformShObject))
}

func NewShMonumentImporter(c *Context) *ItemImporter {
	return newItemImporter("sh-monument", c, textedItems(transform.ShMonumentsQuery, transform.ShMonumentTextsQuery,
		transform.ShMonumentKeyOf, transform.TransformShMonument))
}

func NewShMonumentDetailImporter(c *Context) *ItemImporter {
	return newItemImporter("sh-monument-detail", c, textedItems(transform.ShMonumentDetailsQuery, transform.ShMonumentDetailTextQuery,
		transform.ShMonumentDetailKeyOf,
		func(r legacydb.Row, texts []legacydb.Row, lang string, _ bool) (*transform.ItemRecord, error) {
			return transform.TransformShMonumentDetail(r, texts, lang)
		}))
}

// groupedItems loads tables holding one row per item and language.
func groupedItems(q string, group func([]legacydb.Row) []transform.Group[legacydb.Row],
	fn func(transform.Group[legacydb.Row], string, bool) (*transform.ItemRecord, error)) itemLoader {
	return func(ctx context.Context, b *base, lang string, hasEPM bool) ([]itemSource, error) {
		rows, err := b.query(ctx, q)
		if err != nil {
			return nil, err
		}
		groups := group(rows)
		out := make([]itemSource, 0, len(groups))
		for _, g := range groups {
			out = append(out, itemSource{key: g.Key, build: func() (*transform.ItemRecord, error) { return fn(g, lang, hasEPM) }})
		}
		return out, nil
	}
}

// textedItems loads tables split into a base row and per-language text rows.
func textedItems(baseQuery, textQuery string, keyOf func(legacydb.Row) string,
	fn func(legacydb.Row, []legacydb.Row, string, bool) (*transform.ItemRecord, error)) itemLoader {
	return func(ctx context.Context, b *base, lang string, hasEPM bool) ([]itemSource, error) {
		rows, err := b.query(ctx, baseQuery)
		if err != nil {
			return nil, err
		}
		texts, err := b.query(ctx, textQuery)
		if err != nil {
			return nil, err
		}
		byKey := transform.IndexBy(texts, keyOf)
		out := make([]itemSource, 0, len(rows))
		for _, r := range rows {
			k := keyOf(r)
			out = append(out, itemSource{key: k, build: func() (*transform.ItemRecord, error) { return fn(r, byKey[k], lang, hasEPM) }})
		}
		return out, nil
	}
}

func (i *ItemImporter) Import(ctx context.Context) Result {
	started := time.Now()
	i.begin()

	hasEPM, err := i.exists(ctx, strategy.TableContexts, tracker.Context, transform.EPMContextKey())
	if err != nil {
		i.fail(i.name, err)
		return i.finish(started)
	}
	sources, err := i.load(ctx, &i.base, i.defaultLanguageID(), hasEPM)
	if err != nil {
		i.fail(i.name, err)
		return i.finish(started)
	}

	for _, src := range sources {
		exists, err := i.exists(ctx, strategy.TableItems, tracker.Item, src.key)
		if err != nil {
			i.fail(src.key, err)
			continue
		}
		if exists {
			i.skipped()
			continue
		}
		rec, err := src.build()
		if err != nil {
			i.fail(src.key, err)
			continue
		}
		i.warn(rec.Warnings...)
		if err := i.writeItem(ctx, rec); err != nil {
			i.fail(src.key, err)
			continue
		}
		i.imported()
	}
	return i.finish(started)
}

// itemOwners are the resolved foreign keys of an item.
type itemOwners struct {
	contextID    string
	projectID    string
	collectionID string
	partnerID    string
	parentID     string
}

// resolveOwners resolves the project, partner and parent of an item. A missing
// partner only warns.
func (b *base) resolveOwners(ctx context.Context, itemKey, projectKey, partnerKey, parentKey string) (itemOwners, error) {
	var o itemOwners
	var err error
	if o.contextID, err = b.resolve(ctx, strategy.TableContexts, tracker.Context, projectKey); err != nil {
		return o, err
	}
	if o.projectID, err = b.resolve(ctx, strategy.TableProjects, tracker.Project, projectKey); err != nil {
		return o, err
	}
	if o.collectionID, err = b.resolve(ctx, strategy.TableCollections, tracker.Collection, projectKey); err != nil {
		return o, err
	}
	if partnerKey != "" {
		if o.partnerID, err = b.resolve(ctx, strategy.TablePartners, tracker.Partner, partnerKey); err != nil {
			b.warn(fmt.Sprintf("%s - partner %s not imported, item left without partner", itemKey, partnerKey))
		}
	}
	if parentKey != "" {
		if o.parentID, err = b.resolve(ctx, strategy.TableItems, tracker.Item, parentKey); err != nil {
			return o, err
		}
	}
	return o, nil
}

func (o itemOwners) apply(item models.Item) models.Item {
	item.ProjectID = o.projectID
	item.CollectionID = o.collectionID
	item.PartnerID = o.partnerID
	item.ParentID = o.parentID
	return item
}

func (i *ItemImporter) writeItem(ctx context.Context, rec *transform.ItemRecord) error {
	owners, err := i.resolveOwners(ctx, rec.Key, rec.ProjectKey, rec.PartnerKey, rec.ParentKey)
	if err != nil {
		return err
	}
	data := owners.apply(rec.Item)
	itemID, err := i.write(rec.Key, tracker.Item, func() (string, error) {
		return i.c.Strategy.WriteItem(ctx, data)
	})
	if err != nil {
		return err
	}

	for _, tr := range rec.Translations {
		contextID := owners.contextID
		if tr.EPM {
			if contextID, err = i.resolve(ctx, strategy.TableContexts, tracker.Context, transform.EPMContextKey()); err != nil {
				return err
			}
		}
		if err := i.writeItemTranslation(ctx, itemID, contextID, tr); err != nil {
			return err
		}
	}
	if err := i.attachTags(ctx, itemID, rec.Tags); err != nil {
		return err
	}
	return i.attachArtists(ctx, itemID, rec.Artists)
}

func (i *ItemImporter) writeItemTranslation(ctx context.Context, itemID, contextID string, tr transform.TranslationRecord) error {
	data := tr.Data
	data.ItemID = itemID
	data.ContextID = contextID

	credits := []struct {
		name string
		id   *string
	}{
		{tr.Credits.Author, &data.AuthorID},
		{tr.Credits.TextCopyEditor, &data.TextCopyEditorID},
		{tr.Credits.Translator, &data.TranslatorID},
		{tr.Credits.TranslationCopyEditor, &data.TranslationCopyEditorID},
	}
	for _, c := range credits {
		if c.name == "" {
			continue
		}
		id, err := i.ensureAuthor(ctx, c.name)
		if err != nil {
			return err
		}
		*c.id = id
	}

	return i.writeTranslation(data.BackwardCompatibility, tracker.ItemTranslation, func() error {
		return i.c.Strategy.WriteItemTranslation(ctx, data)
	})
}

func (b *base) ensureAuthor(ctx context.Context, name string) (string, error) {
	k := transform.AuthorKey(name)
	id, _, err := b.ensure(ctx, strategy.TableAuthors, tracker.Author, k, func() (string, error) {
		return b.c.Strategy.WriteAuthor(ctx, models.Author{Name: name, InternalName: name, BackwardCompatibility: k})
	})
	return id, err
}

func (b *base) attachTags(ctx context.Context, itemID string, tags []models.Tag) error {
	if len(tags) == 0 {
		return nil
	}
	ids := make([]string, 0, len(tags))
	for _, t := range tags {
		id, _, err := b.ensure(ctx, strategy.TableTags, tracker.Tag, t.BackwardCompatibility, func() (string, error) {
			return b.c.Strategy.WriteTag(ctx, t)
		})
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}
	return b.exec(func() error { return b.c.Strategy.AttachTagsToItem(ctx, itemID, ids) })
}

func (b *base) attachArtists(ctx context.Context, itemID string, artists []models.Artist) error {
	if len(artists) == 0 {
		return nil
	}
	ids := make([]string, 0, len(artists))
	for _, a := range artists {
		id, _, err := b.ensure(ctx, strategy.TableArtists, tracker.Artist, a.BackwardCompatibility, func() (string, error) {
			return b.c.Strategy.WriteArtist(ctx, a)
		})
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}
	return b.exec(func() error { return b.c.Strategy.AttachArtistsToItem(ctx, itemID, ids) })
}
