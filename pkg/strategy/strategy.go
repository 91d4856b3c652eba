// Package strategy persists transformed entities into the target database.
package strategy

import (
	"context"

	"github.com/ekaya-inc/heritage-importer/pkg/models"
)

// WriteStrategy writes one target entity kind per method. Entity writers return
// the id of the new row. Writers register every row that carries a
// backward-compatibility key in the run's tracker.
type WriteStrategy interface {
	WriteLanguage(ctx context.Context, data models.Language) (string, error)
	WriteLanguageTranslation(ctx context.Context, data models.LanguageTranslation) error
	WriteCountry(ctx context.Context, data models.Country) (string, error)
	WriteCountryTranslation(ctx context.Context, data models.CountryTranslation) error
	WriteContext(ctx context.Context, data models.Context) (string, error)
	WriteContextTranslation(ctx context.Context, data models.ContextTranslation) error
	WriteCollection(ctx context.Context, data models.Collection) (string, error)
	WriteCollectionTranslation(ctx context.Context, data models.CollectionTranslation) error
	WriteProject(ctx context.Context, data models.Project) (string, error)
	WriteProjectTranslation(ctx context.Context, data models.ProjectTranslation) error
	WritePartner(ctx context.Context, data models.Partner) (string, error)
	WritePartnerTranslation(ctx context.Context, data models.PartnerTranslation) error
	WriteItem(ctx context.Context, data models.Item) (string, error)
	WriteItemTranslation(ctx context.Context, data models.ItemTranslation) error

	// Supporting entities resolve an existing row when the key is already taken.
	WriteTag(ctx context.Context, data models.Tag) (string, error)
	WriteAuthor(ctx context.Context, data models.Author) (string, error)
	WriteArtist(ctx context.Context, data models.Artist) (string, error)

	WriteItemImage(ctx context.Context, data models.Image) (string, error)
	WritePartnerImage(ctx context.Context, data models.Image) (string, error)
	WritePartnerLogo(ctx context.Context, data models.Image) (string, error)
	WriteCollectionImage(ctx context.Context, data models.Image) (string, error)

	WriteGlossary(ctx context.Context, data models.Glossary) (string, error)
	// Glossary definitions and spellings that already exist are ignored.
	WriteGlossaryTranslation(ctx context.Context, data models.GlossaryTranslation) error
	WriteGlossarySpelling(ctx context.Context, data models.GlossarySpelling) error
	WriteTheme(ctx context.Context, data models.Theme) (string, error)
	WriteThemeTranslation(ctx context.Context, data models.ThemeTranslation) error
	WriteItemItemLink(ctx context.Context, data models.ItemItemLink) (string, error)
	WriteItemItemLinkTranslation(ctx context.Context, data models.ItemItemLinkTranslation) error

	UpdatePartnerMonument(ctx context.Context, partnerID, itemID string) error

	// Attachers ignore pairs that already exist.
	AttachTagsToItem(ctx context.Context, itemID string, tagIDs []string) error
	AttachArtistsToItem(ctx context.Context, itemID string, artistIDs []string) error
	AttachItemsToCollection(ctx context.Context, collectionID string, itemIDs []string) error
	AttachPartnersToCollection(ctx context.Context, collectionID string, partnerIDs []string, collectionType string) error

	// Exists reports whether a row with the backward-compatibility key exists in table.
	Exists(ctx context.Context, table, key string) (bool, error)
	// FindByBackwardCompatibility returns the id of the row with key in table,
	// or apperrors.ErrNotFound.
	FindByBackwardCompatibility(ctx context.Context, table, key string) (string, error)
}

// Unsupported lists the writers that accept data without persisting it because
// the target schema has no table for it.
func Unsupported() []string {
	return []string{
		"WriteContextTranslation",
		"WriteProjectTranslation",
	}
}

// DefaultCollectionPartnerType is the collection_type stored when none is given.
const DefaultCollectionPartnerType = "project"
