package models

// Collection types.
const (
	CollectionTypeCollection      = "collection"
	CollectionTypeExhibition      = "exhibition"
	CollectionTypeGallery         = "gallery"
	CollectionTypeTheme           = "theme"
	CollectionTypeExhibitionTrail = "exhibition trail"
	CollectionTypeItinerary       = "itinerary"
	CollectionTypeLocation        = "location"
)

// Collection is a hierarchical grouping of items.
type Collection struct {
	ContextID             string   `json:"context_id"`
	LanguageID            string   `json:"language_id"`
	ParentID              string   `json:"parent_id,omitempty"`
	Type                  string   `json:"type,omitempty"`
	InternalName          string   `json:"internal_name"`
	BackwardCompatibility string   `json:"backward_compatibility"`
	Latitude              *float64 `json:"latitude,omitempty"`
	Longitude             *float64 `json:"longitude,omitempty"`
	MapZoom               *int     `json:"map_zoom,omitempty"`
	CountryID             string   `json:"country_id,omitempty"`
}

// CollectionTranslation is a collection's title and text in one language and context.
type CollectionTranslation struct {
	CollectionID          string `json:"collection_id"`
	LanguageID            string `json:"language_id"`
	ContextID             string `json:"context_id"`
	Title                 string `json:"title"`
	Description           string `json:"description,omitempty"`
	Quote                 string `json:"quote,omitempty"`
	BackwardCompatibility string `json:"backward_compatibility"`
}

// Project is a legacy exhibition project.
type Project struct {
	InternalName          string `json:"internal_name"`
	BackwardCompatibility string `json:"backward_compatibility"`
	ContextID             string `json:"context_id"`
	LanguageID            string `json:"language_id"`
	LaunchDate            string `json:"launch_date,omitempty"`
	IsLaunched            bool   `json:"is_launched"`
	IsEnabled             bool   `json:"is_enabled"`
}

// ProjectTranslation has no target table; writes are accepted and dropped.
type ProjectTranslation struct {
	ProjectID   string `json:"project_id"`
	LanguageID  string `json:"language_id"`
	ContextID   string `json:"context_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Theme is a node of a thematic gallery.
type Theme struct {
	CollectionID          string `json:"collection_id"`
	ParentID              string `json:"parent_id,omitempty"`
	DisplayOrder          int    `json:"display_order"`
	InternalName          string `json:"internal_name"`
	BackwardCompatibility string `json:"backward_compatibility"`
}

// ThemeTranslation is a theme's text in one language and context.
type ThemeTranslation struct {
	ThemeID               string `json:"theme_id"`
	LanguageID            string `json:"language_id"`
	ContextID             string `json:"context_id"`
	Title                 string `json:"title"`
	Description           string `json:"description,omitempty"`
	Introduction          string `json:"introduction,omitempty"`
	BackwardCompatibility string `json:"backward_compatibility"`
}
