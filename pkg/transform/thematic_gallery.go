package transform

import (
	"fmt"

	"github.com/ekaya-inc/heritage-importer/pkg/codes"
	"github.com/ekaya-inc/heritage-importer/pkg/legacydb"
	"github.com/ekaya-inc/heritage-importer/pkg/markdown"
	"github.com/ekaya-inc/heritage-importer/pkg/models"
)

const (
	GalleriesQuery = `SELECT gallery_id, project_id, name, link, sort_order, status
FROM mwnf3_thematic_gallery.thg_gallery ORDER BY sort_order, gallery_id`
	ThemesQuery = `SELECT gallery_id, theme_id, parent_theme_id, name, sort_order
FROM mwnf3_thematic_gallery.theme ORDER BY gallery_id, sort_order, theme_id`
	ThemeTranslationsQuery = `SELECT gallery_id, theme_id, language_id, title, quote, presentation
FROM mwnf3_thematic_gallery.theme_i18n ORDER BY gallery_id, theme_id, language_id`
	ThemeItemsQuery = "SELECT * FROM mwnf3_thematic_gallery.theme_item ORDER BY gallery_id, theme_id, item_id"
)

const (
	GalleryTextsQuery = `SELECT gallery_id, language_id, title, subtitle, heading, about
FROM mwnf3_thematic_gallery.exhibition_i18n ORDER BY gallery_id, language_id`
	ThemeItemRelatedQuery = `SELECT gallery_id, theme_id, item_id, related_item_id
FROM mwnf3_thematic_gallery.theme_item_related ORDER BY gallery_id, theme_id, item_id, related_item_id`
	ThemeItemRelatedTextsQuery = `SELECT gallery_id, theme_id, item_id, related_item_id, language_id, description
FROM mwnf3_thematic_gallery.theme_item_related_i18n ORDER BY gallery_id, theme_id, item_id, related_item_id, language_id`
)

// ThematicRoots are the two top-level collections galleries hang from.
func ThematicRoots(languageID string) []CollectionRecord {
	return []CollectionRecord{
		newCollection(GalleriesRootKey, DefaultContextKey, "", models.CollectionTypeCollection,
			"galleries_root", languageID, "Galleries", "Thematic galleries"),
		newCollection(ExhibitionsRootKey, DefaultContextKey, "", models.CollectionTypeCollection,
			"exhibitions_root", languageID, "Exhibitions", "Thematic exhibitions of the Sharing History programme"),
	}
}

// GalleryRecord is a thematic gallery: its own context and a collection
// sharing the gallery key.
type GalleryRecord struct {
	Key        string
	Context    models.Context
	Collection CollectionRecord
}

// TransformGallery maps a thg_gallery row. Galleries of a sharing history
// project become exhibitions under the exhibitions root.
func TransformGallery(r legacydb.Row, shProject bool, languageID string) GalleryRecord {
	galleryID := r.Trimmed("gallery_id")
	k := GalleryKey(galleryID)

	collectionType, parent := models.CollectionTypeGallery, GalleriesRootKey
	if shProject {
		collectionType, parent = models.CollectionTypeExhibition, ExhibitionsRootKey
	}
	slug := Slug(firstNonEmpty(r.String("link"), r.String("name")))
	if slug == "" {
		slug = galleryID
	}
	title := firstNonEmpty(markdown.StripHTML(r.String("name")), k)

	return GalleryRecord{
		Key: k,
		Context: models.Context{
			InternalName:          "thg_" + galleryID,
			BackwardCompatibility: k,
		},
		Collection: newCollection(k, k, parent, collectionType, collectionType+"_"+slug, languageID, title, ""),
	}
}

// WithGalleryTexts replaces the name-based translation of rec with the
// exhibition_i18n rows of the gallery. The name-based one stays when no text
// covers its language.
func WithGalleryTexts(rec GalleryRecord, texts []legacydb.Row) GalleryRecord {
	var translations []models.CollectionTranslation
	covered := make(map[string]bool)
	for _, r := range texts {
		languageID, err := codes.Language(r.Trimmed("language_id"))
		if err != nil {
			rec.Collection.Warnings = append(rec.Collection.Warnings, fmt.Sprintf("%s - %v", rec.Key, err))
			continue
		}
		if covered[languageID] {
			continue
		}
		covered[languageID] = true
		description := joinNonEmpty("\n\n", Text(r.String("subtitle")), Text(r.String("heading")), Text(r.String("about")))
		translations = append(translations, models.CollectionTranslation{
			LanguageID:            languageID,
			Title:                 firstNonEmpty(Text(r.String("title")), "Gallery "+r.Trimmed("gallery_id")),
			Description:           description,
			BackwardCompatibility: translationKey(rec.Key, languageID),
		})
	}
	for _, tr := range rec.Collection.Translations {
		if !covered[tr.LanguageID] {
			translations = append(translations, tr)
		}
	}
	rec.Collection.Translations = translations
	return rec
}

// ThemeRecord is a theme of a gallery. GalleryKey names both the collection
// and the context of the theme.
type ThemeRecord struct {
	Key        string
	GalleryKey string
	ParentKey  string
	Theme      models.Theme
}

// TransformThemes maps theme rows, returning parents before their children.
// Themes whose parent is missing are attached at the top level.
func TransformThemes(rows []legacydb.Row) []ThemeRecord {
	all := make([]ThemeRecord, 0, len(rows))
	known := make(map[string]bool, len(rows))
	for _, r := range rows {
		galleryID := r.Trimmed("gallery_id")
		themeID := r.Trimmed("theme_id")
		rec := ThemeRecord{
			Key:        ThemeKey(galleryID, themeID),
			GalleryKey: GalleryKey(galleryID),
			Theme: models.Theme{
				DisplayOrder: r.Int("sort_order"),
				InternalName: firstNonEmpty(markdown.StripHTML(r.String("name")), "theme_"+themeID),
			},
		}
		rec.Theme.BackwardCompatibility = rec.Key
		if parent := r.Trimmed("parent_theme_id"); parent != "" && parent != "0" && parent != themeID {
			rec.ParentKey = ThemeKey(galleryID, parent)
		}
		known[rec.Key] = true
		all = append(all, rec)
	}

	out := make([]ThemeRecord, 0, len(all))
	placed := make(map[string]bool, len(all))
	for len(out) < len(all) {
		progress := false
		for _, rec := range all {
			if placed[rec.Key] {
				continue
			}
			if rec.ParentKey != "" && known[rec.ParentKey] && !placed[rec.ParentKey] {
				continue
			}
			if !known[rec.ParentKey] {
				rec.ParentKey = ""
			}
			placed[rec.Key] = true
			out = append(out, rec)
			progress = true
		}
		if !progress {
			// Cycle: release the remaining themes at the top level.
			for _, rec := range all {
				if !placed[rec.Key] {
					rec.ParentKey = ""
					placed[rec.Key] = true
					out = append(out, rec)
				}
			}
		}
	}
	return out
}

// ThemeTranslationRecord is one language of a theme, written in the gallery context.
type ThemeTranslationRecord struct {
	ThemeKey    string
	GalleryKey  string
	Translation models.ThemeTranslation
}

// TransformThemeTranslation maps a theme_i18n row.
func TransformThemeTranslation(r legacydb.Row) (ThemeTranslationRecord, error) {
	galleryID := r.Trimmed("gallery_id")
	themeID := r.Trimmed("theme_id")
	themeKey := ThemeKey(galleryID, themeID)
	languageID, err := codes.Language(r.Trimmed("language_id"))
	if err != nil {
		return ThemeTranslationRecord{}, fmt.Errorf("theme %s: %w", themeKey, err)
	}
	return ThemeTranslationRecord{
		ThemeKey:   themeKey,
		GalleryKey: GalleryKey(galleryID),
		Translation: models.ThemeTranslation{
			LanguageID:            languageID,
			Title:                 firstNonEmpty(Text(r.String("title")), "Theme "+themeID),
			Description:           Text(r.String("presentation")),
			Introduction:          Text(r.String("quote")),
			BackwardCompatibility: themeKey + ":" + languageID,
		},
	}, nil
}

// ThemeItemRecord places an item in a gallery.
type ThemeItemRecord struct {
	ThemeKey   string
	GalleryKey string
	ItemKey    string
}

// themeItemRefs are the reference column sets of theme_item, most specific first.
var themeItemRefs = []struct {
	prefix string
	cols   []string
	key    func(v []string) string
}{
	{"mwnf3_object_", []string{"project_id", "country_id", "partner_id", "item_id"},
		func(v []string) string { return ObjectKey(v[0], v[1], v[2], v[3]) }},
	{"mwnf3_monument_detail_", []string{"project_id", "country_id", "partner_id", "item_id", "detail_id"},
		func(v []string) string { return MonumentDetailKey(v[0], v[1], v[2], v[3], v[4]) }},
	{"mwnf3_monument_", []string{"project_id", "country_id", "partner_id", "item_id"},
		func(v []string) string { return MonumentKey(v[0], v[1], v[2], v[3]) }},
	{"sh_object_", []string{"project_id", "country_id", "item_id"},
		func(v []string) string { return ShObjectKey(v[0], v[1], v[2]) }},
	{"sh_monument_detail_", []string{"project_id", "country_id", "item_id", "detail_id"},
		func(v []string) string { return ShMonumentDetailKey(v[0], v[1], v[2], v[3]) }},
	{"sh_monument_", []string{"project_id", "country_id", "item_id"},
		func(v []string) string { return ShMonumentKey(v[0], v[1], v[2]) }},
}

// TransformThemeItem resolves the item a theme_item row refers to. ok is false
// when no complete reference is present.
func TransformThemeItem(r legacydb.Row) (ThemeItemRecord, bool) {
	galleryID := r.Trimmed("gallery_id")
	rec := ThemeItemRecord{
		ThemeKey:   ThemeKey(galleryID, r.Trimmed("theme_id")),
		GalleryKey: GalleryKey(galleryID),
	}
	for _, ref := range themeItemRefs {
		values := make([]string, len(ref.cols))
		complete := true
		for i, col := range ref.cols {
			values[i] = r.Trimmed(ref.prefix + col)
			if values[i] == "" {
				complete = false
				break
			}
		}
		if complete {
			rec.ItemKey = ref.key(values)
			return rec, true
		}
	}
	return ThemeItemRecord{}, false
}

func ThemeItemLinkKey(galleryID, themeID, itemID, relatedItemID string) string {
	return key(SchemaThematicGallery, "theme_item_related", galleryID, themeID, itemID, relatedItemID)
}

func themeItemIndex(galleryID, themeID, itemID string) string {
	return galleryID + "|" + themeID + "|" + itemID
}

// ThemeLinkRecord relates two items shown in the same theme, written in the
// gallery context.
type ThemeLinkRecord struct {
	Key        string
	GalleryKey string
	SourceKey  string
	TargetKey  string
}

// TransformThemeItemLinks maps theme_item_related rows. Both ends are looked
// up in themeItems by gallery, theme and item_id. Rows whose ends cannot be
// resolved are reported in skipped.
func TransformThemeItemLinks(themeItems, related []legacydb.Row) (links []ThemeLinkRecord, skipped []string) {
	itemKeys := make(map[string]string, len(themeItems))
	for _, r := range themeItems {
		if rec, ok := TransformThemeItem(r); ok {
			itemKeys[themeItemIndex(r.Trimmed("gallery_id"), r.Trimmed("theme_id"), r.Trimmed("item_id"))] = rec.ItemKey
		}
	}
	seen := make(map[string]bool)
	for _, r := range related {
		g, t := r.Trimmed("gallery_id"), r.Trimmed("theme_id")
		i, rel := r.Trimmed("item_id"), r.Trimmed("related_item_id")
		k := ThemeItemLinkKey(g, t, i, rel)
		if seen[k] {
			continue
		}
		seen[k] = true
		sourceKey, ok := itemKeys[themeItemIndex(g, t, i)]
		if !ok {
			skipped = append(skipped, fmt.Sprintf("%s - source theme item not found", k))
			continue
		}
		targetKey, ok := itemKeys[themeItemIndex(g, t, rel)]
		if !ok {
			skipped = append(skipped, fmt.Sprintf("%s - target theme item %s not found", k, rel))
			continue
		}
		links = append(links, ThemeLinkRecord{Key: k, GalleryKey: GalleryKey(g), SourceKey: sourceKey, TargetKey: targetKey})
	}
	return links, skipped
}

// ThemeLinkTranslationRecord describes a theme item link in one language.
type ThemeLinkTranslationRecord struct {
	LinkKey     string
	Translation models.ItemItemLinkTranslation
}

// TransformThemeLinkTranslation maps a theme_item_related_i18n row.
func TransformThemeLinkTranslation(r legacydb.Row) (ThemeLinkTranslationRecord, error) {
	linkKey := ThemeItemLinkKey(r.Trimmed("gallery_id"), r.Trimmed("theme_id"), r.Trimmed("item_id"), r.Trimmed("related_item_id"))
	languageID, err := codes.Language(r.Trimmed("language_id"))
	if err != nil {
		return ThemeLinkTranslationRecord{}, fmt.Errorf("theme item link %s: %w", linkKey, err)
	}
	return ThemeLinkTranslationRecord{
		LinkKey: linkKey,
		Translation: models.ItemItemLinkTranslation{
			LanguageID:            languageID,
			Description:           Text(r.String("description")),
			BackwardCompatibility: linkKey + ":" + languageID,
		},
	}, nil
}
