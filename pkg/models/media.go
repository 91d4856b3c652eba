package models

import (
	"path"
	"strings"
)

// PlaceholderImageSize marks image rows whose file has not been synchronized yet.
const PlaceholderImageSize = 1

// Image is a row of item_images, partner_images, collection_images or partner_logos.
// ParentID refers to the owning item, partner or collection.
type Image struct {
	ID           string `json:"id,omitempty"` // generated when empty
	ParentID     string `json:"parent_id"`
	Path         string `json:"path"`
	OriginalName string `json:"original_name"`
	MimeType     string `json:"mime_type"`
	Size         int64  `json:"size"`
	AltText      string `json:"alt_text,omitempty"`
	DisplayOrder int    `json:"display_order"`
	LogoType     string `json:"logo_type,omitempty"` // partner_logos only
}

// NewPlaceholderImage describes a legacy image file before synchronization.
func NewPlaceholderImage(parentID, legacyPath string, displayOrder int) Image {
	return Image{
		ParentID:     parentID,
		Path:         legacyPath,
		OriginalName: path.Base(legacyPath),
		MimeType:     MimeTypeFromPath(legacyPath),
		Size:         PlaceholderImageSize,
		AltText:      legacyPath,
		DisplayOrder: displayOrder,
	}
}

// MimeTypeFromPath derives the image mime type from the file extension.
func MimeTypeFromPath(p string) string {
	switch strings.ToLower(path.Ext(p)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".tif", ".tiff":
		return "image/tiff"
	case ".bmp":
		return "image/bmp"
	case ".svg":
		return "image/svg+xml"
	default:
		return "image/jpeg"
	}
}

// Glossary is a glossary word.
type Glossary struct {
	InternalName          string `json:"internal_name"`
	BackwardCompatibility string `json:"backward_compatibility"`
}

// GlossaryTranslation is a word definition in one language.
type GlossaryTranslation struct {
	GlossaryID            string `json:"glossary_id"`
	LanguageID            string `json:"language_id"`
	Definition            string `json:"definition"`
	BackwardCompatibility string `json:"backward_compatibility"`
}

// GlossarySpelling is an alternative spelling of a word in one language.
type GlossarySpelling struct {
	GlossaryID            string `json:"glossary_id"`
	LanguageID            string `json:"language_id"`
	Spelling              string `json:"spelling"`
	BackwardCompatibility string `json:"backward_compatibility"`
}
