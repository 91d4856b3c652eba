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

// CollectionTreeImporter writes synthesized collections that do not come from
// legacy rows, such as the roots galleries and Explore hang from. The owning
// context is created first when set.
type CollectionTreeImporter struct {
	base
	owner       *models.Context
	collections func(languageID string) []transform.CollectionRecord
}

func NewThematicRootsImporter(c *Context) *CollectionTreeImporter {
	return &CollectionTreeImporter{base: newBase("thg-root-collections", c), collections: transform.ThematicRoots}
}

func (i *CollectionTreeImporter) Import(ctx context.Context) Result {
	started := time.Now()
	i.begin()
	if i.owner != nil {
		if _, _, err := i.ensureContext(ctx, *i.owner); err != nil {
			i.fail(i.owner.BackwardCompatibility, err)
			return i.finish(started)
		}
	}
	i.importCollections(ctx, i.collections(i.defaultLanguageID()))
	return i.finish(started)
}

// GalleryImporter writes each thematic gallery as a context and a collection
// carrying the gallery texts of every language.
type GalleryImporter struct{ base }

func NewGalleryImporter(c *Context) *GalleryImporter {
	return &GalleryImporter{base: newBase("thg-gallery", c)}
}

func (i *GalleryImporter) Import(ctx context.Context) Result {
	started := time.Now()
	i.begin()

	rows, err := i.query(ctx, transform.GalleriesQuery)
	if err != nil {
		i.fail(i.name, err)
		return i.finish(started)
	}
	textRows, err := i.query(ctx, transform.GalleryTextsQuery)
	if err != nil {
		i.fail(i.name, err)
		return i.finish(started)
	}
	texts := transform.IndexBy(textRows, func(r legacydb.Row) string { return r.Trimmed("gallery_id") })
	lang := i.defaultLanguageID()
	for _, r := range rows {
		shProject := false
		if projectID := r.Trimmed("project_id"); projectID != "" {
			if shProject, err = i.exists(ctx, strategy.TableProjects, tracker.Project, transform.ShProjectKey(projectID)); err != nil {
				i.fail(transform.GalleryKey(r.Trimmed("gallery_id")), err)
				continue
			}
		}
		rec := transform.WithGalleryTexts(transform.TransformGallery(r, shProject, lang), texts[r.Trimmed("gallery_id")])
		i.warn(rec.Collection.Warnings...)
		rec.Collection.Warnings = nil
		if _, _, err := i.ensureContext(ctx, rec.Context); err != nil {
			i.fail(rec.Key, err)
			continue
		}
		_, created, err := i.writeCollection(ctx, rec.Collection)
		switch {
		case err != nil:
			i.fail(rec.Key, err)
		case created:
			i.imported()
		default:
			i.skipped()
		}
	}
	return i.finish(started)
}

// ThemeImporter writes gallery themes, parents first.
type ThemeImporter struct{ base }

func NewThemeImporter(c *Context) *ThemeImporter {
	return &ThemeImporter{base: newBase("thg-theme", c)}
}

func (i *ThemeImporter) Import(ctx context.Context) Result {
	started := time.Now()
	i.begin()

	rows, err := i.query(ctx, transform.ThemesQuery)
	if err != nil {
		i.fail(i.name, err)
		return i.finish(started)
	}
	for _, rec := range transform.TransformThemes(rows) {
		exists, err := i.exists(ctx, strategy.TableThemes, tracker.Theme, rec.Key)
		if err != nil {
			i.fail(rec.Key, err)
			continue
		}
		if exists {
			i.skipped()
			continue
		}
		collectionID, err := i.resolve(ctx, strategy.TableCollections, tracker.Collection, rec.GalleryKey)
		if err != nil {
			i.warn(fmt.Sprintf("%s - gallery %s not imported", rec.Key, rec.GalleryKey))
			i.skipped()
			continue
		}
		data := rec.Theme
		data.CollectionID = collectionID
		if rec.ParentKey != "" {
			if data.ParentID, err = i.resolve(ctx, strategy.TableThemes, tracker.Theme, rec.ParentKey); err != nil {
				i.fail(rec.Key, err)
				continue
			}
		}
		if _, err := i.write(rec.Key, tracker.Theme, func() (string, error) {
			return i.c.Strategy.WriteTheme(ctx, data)
		}); err != nil {
			i.fail(rec.Key, err)
			continue
		}
		i.imported()
	}
	return i.finish(started)
}

// ThemeTranslationImporter writes theme texts in their gallery's context.
type ThemeTranslationImporter struct{ base }

func NewThemeTranslationImporter(c *Context) *ThemeTranslationImporter {
	return &ThemeTranslationImporter{base: newBase("thg-theme-translation", c)}
}

func (i *ThemeTranslationImporter) Import(ctx context.Context) Result {
	started := time.Now()
	i.begin()

	rows, err := i.query(ctx, transform.ThemeTranslationsQuery)
	if err != nil {
		i.fail(i.name, err)
		return i.finish(started)
	}
	for _, r := range rows {
		rec, err := transform.TransformThemeTranslation(r)
		if err != nil {
			i.warn(err.Error())
			i.skipped()
			continue
		}
		k := rec.Translation.BackwardCompatibility
		exists, err := i.exists(ctx, strategy.TableThemeTranslations, tracker.ThemeTranslation, k)
		if err != nil {
			i.fail(k, err)
			continue
		}
		if exists {
			i.skipped()
			continue
		}
		themeID, err := i.resolve(ctx, strategy.TableThemes, tracker.Theme, rec.ThemeKey)
		if err != nil {
			i.warn(fmt.Sprintf("%s - theme %s not imported", k, rec.ThemeKey))
			i.skipped()
			continue
		}
		contextID, err := i.resolve(ctx, strategy.TableContexts, tracker.Context, rec.GalleryKey)
		if err != nil {
			i.fail(k, err)
			continue
		}
		data := rec.Translation
		data.ThemeID = themeID
		data.ContextID = contextID
		if err := i.writeTranslation(k, tracker.ThemeTranslation, func() error {
			return i.c.Strategy.WriteThemeTranslation(ctx, data)
		}); err != nil {
			i.fail(k, err)
			continue
		}
		i.imported()
	}
	return i.finish(started)
}

// ThemeItemImporter attaches the items of every theme to the theme's gallery
// collection.
type ThemeItemImporter struct{ base }

func NewThemeItemImporter(c *Context) *ThemeItemImporter {
	return &ThemeItemImporter{base: newBase("thg-theme-item", c)}
}

func (i *ThemeItemImporter) Import(ctx context.Context) Result {
	started := time.Now()
	i.begin()

	rows, err := i.query(ctx, transform.ThemeItemsQuery)
	if err != nil {
		i.fail(i.name, err)
		return i.finish(started)
	}
	seen := make(map[string]bool)
	for _, r := range rows {
		rec, ok := transform.TransformThemeItem(r)
		if !ok {
			i.skipped()
			continue
		}
		pair := rec.GalleryKey + "|" + rec.ItemKey
		if seen[pair] {
			i.skipped()
			continue
		}
		seen[pair] = true

		collectionID, err := i.resolve(ctx, strategy.TableCollections, tracker.Collection, rec.GalleryKey)
		if err != nil {
			i.warn(fmt.Sprintf("%s - gallery %s not imported", rec.ThemeKey, rec.GalleryKey))
			i.skipped()
			continue
		}
		itemID, err := i.resolve(ctx, strategy.TableItems, tracker.Item, rec.ItemKey)
		if err != nil {
			i.warn(fmt.Sprintf("%s - item %s not imported", rec.ThemeKey, rec.ItemKey))
			i.skipped()
			continue
		}
		if err := i.exec(func() error {
			return i.c.Strategy.AttachItemsToCollection(ctx, collectionID, []string{itemID})
		}); err != nil {
			i.fail(pair, err)
			continue
		}
		i.imported()
	}
	return i.finish(started)
}

// ThemeItemLinkImporter relates items shown together in a theme, then writes
// the link texts.
type ThemeItemLinkImporter struct{ base }

func NewThemeItemLinkImporter(c *Context) *ThemeItemLinkImporter {
	return &ThemeItemLinkImporter{base: newBase("thg-item-related", c)}
}

func (i *ThemeItemLinkImporter) Import(ctx context.Context) Result {
	started := time.Now()
	i.begin()

	themeItems, err := i.query(ctx, transform.ThemeItemsQuery)
	if err != nil {
		i.fail(i.name, err)
		return i.finish(started)
	}
	related, err := i.query(ctx, transform.ThemeItemRelatedQuery)
	if err != nil {
		i.fail(i.name, err)
		return i.finish(started)
	}
	links, skipped := transform.TransformThemeItemLinks(themeItems, related)
	for _, msg := range skipped {
		i.warn(msg)
		i.skipped()
	}
	for _, rec := range links {
		i.importLink(ctx, rec)
	}

	texts, err := i.query(ctx, transform.ThemeItemRelatedTextsQuery)
	if err != nil {
		i.fail(i.name, err)
		return i.finish(started)
	}
	for _, r := range texts {
		i.importLinkText(ctx, r)
	}
	return i.finish(started)
}

func (i *ThemeItemLinkImporter) importLink(ctx context.Context, rec transform.ThemeLinkRecord) {
	exists, err := i.exists(ctx, strategy.TableItemItemLinks, tracker.ItemItemLink, rec.Key)
	if err != nil {
		i.fail(rec.Key, err)
		return
	}
	if exists {
		i.skipped()
		return
	}
	contextID, err := i.resolve(ctx, strategy.TableContexts, tracker.Context, rec.GalleryKey)
	if err != nil {
		i.warn(fmt.Sprintf("%s - gallery %s not imported", rec.Key, rec.GalleryKey))
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

// importLinkText is not counted; texts of links that were not imported only warn.
func (i *ThemeItemLinkImporter) importLinkText(ctx context.Context, r legacydb.Row) {
	rec, err := transform.TransformThemeLinkTranslation(r)
	if err != nil {
		i.warn(err.Error())
		return
	}
	k := rec.Translation.BackwardCompatibility
	exists, err := i.exists(ctx, strategy.TableItemItemLinkTranslations, tracker.ItemItemLinkTranslation, k)
	if err != nil {
		i.fail(k, err)
		return
	}
	if exists {
		return
	}
	linkID, err := i.resolve(ctx, strategy.TableItemItemLinks, tracker.ItemItemLink, rec.LinkKey)
	if err != nil {
		i.warn(fmt.Sprintf("%s - link %s not imported", k, rec.LinkKey))
		return
	}
	data := rec.Translation
	data.ItemItemLinkID = linkID
	if err := i.writeTranslation(k, tracker.ItemItemLinkTranslation, func() error {
		return i.c.Strategy.WriteItemItemLinkTranslation(ctx, data)
	}); err != nil {
		i.fail(k, err)
	}
}
