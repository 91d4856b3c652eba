package transform

import (
	"github.com/ekaya-inc/heritage-importer/pkg/models"
)

// CollectionRecord is a collection with its translations. ContextKey and
// ParentKey are resolved to ids by the importer.
type CollectionRecord struct {
	Key          string
	ContextKey   string
	ParentKey    string
	Collection   models.Collection
	Translations []models.CollectionTranslation
	Warnings     []string
}

// translationKey identifies the translation of a synthesized collection.
func translationKey(collectionKey, languageID string) string {
	return collectionKey + ":translation:" + languageID
}

// newCollection builds a collection carrying a single translation in languageID.
func newCollection(k, contextKey, parentKey, collectionType, internalName, languageID, title, description string) CollectionRecord {
	rec := CollectionRecord{
		Key:        k,
		ContextKey: contextKey,
		ParentKey:  parentKey,
		Collection: models.Collection{
			LanguageID:            languageID,
			Type:                  collectionType,
			InternalName:          internalName,
			BackwardCompatibility: k,
		},
	}
	if title != "" {
		rec.Translations = append(rec.Translations, models.CollectionTranslation{
			LanguageID:            languageID,
			Title:                 title,
			Description:           description,
			BackwardCompatibility: translationKey(k, languageID),
		})
	}
	return rec
}
