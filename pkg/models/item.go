package models

// Item types.
const (
	ItemTypeObject   = "object"
	ItemTypeMonument = "monument"
	ItemTypeDetail   = "detail"
	ItemTypePicture  = "picture"
)

// Item is an object, monument, monument detail or picture.
type Item struct {
	Type                  string   `json:"type"`
	InternalName          string   `json:"internal_name"`
	BackwardCompatibility string   `json:"backward_compatibility"`
	PartnerID             string   `json:"partner_id,omitempty"`
	CollectionID          string   `json:"collection_id,omitempty"`
	ParentID              string   `json:"parent_id,omitempty"`
	CountryID             string   `json:"country_id,omitempty"`
	ProjectID             string   `json:"project_id,omitempty"`
	OwnerReference        string   `json:"owner_reference,omitempty"`
	MwnfReference         string   `json:"mwnf_reference,omitempty"`
	Latitude              *float64 `json:"latitude,omitempty"`
	Longitude             *float64 `json:"longitude,omitempty"`
	MapZoom               *int     `json:"map_zoom,omitempty"`
}

// ItemTranslation is an item's descriptive text in one language and context.
type ItemTranslation struct {
	ItemID                  string `json:"item_id"`
	LanguageID              string `json:"language_id"`
	ContextID               string `json:"context_id"`
	Name                    string `json:"name"`
	Description             string `json:"description"`
	AlternateName           string `json:"alternate_name,omitempty"`
	Type                    string `json:"type,omitempty"`
	Holder                  string `json:"holder,omitempty"`
	Owner                   string `json:"owner,omitempty"`
	InitialOwner            string `json:"initial_owner,omitempty"`
	Dates                   string `json:"dates,omitempty"`
	Location                string `json:"location,omitempty"`
	Dimensions              string `json:"dimensions,omitempty"`
	PlaceOfProduction       string `json:"place_of_production,omitempty"`
	MethodForDatation       string `json:"method_for_datation,omitempty"`
	MethodForProvenance     string `json:"method_for_provenance,omitempty"`
	Obtention               string `json:"obtention,omitempty"`
	Bibliography            string `json:"bibliography,omitempty"`
	AuthorID                string `json:"author_id,omitempty"`
	TextCopyEditorID        string `json:"text_copy_editor_id,omitempty"`
	TranslatorID            string `json:"translator_id,omitempty"`
	TranslationCopyEditorID string `json:"translation_copy_editor_id,omitempty"`
	Extra                   string `json:"extra,omitempty"` // JSON object
	BackwardCompatibility   string `json:"backward_compatibility"`
}

// Tag categories.
const (
	TagCategoryMaterial = "material"
	TagCategoryDynasty  = "dynasty"
	TagCategoryKeyword  = "keyword"
)

// Tag is a keyword attached to items.
type Tag struct {
	InternalName          string `json:"internal_name"`
	Category              string `json:"category"`
	LanguageID            string `json:"language_id"`
	Description           string `json:"description"`
	BackwardCompatibility string `json:"backward_compatibility"`
}

// Author is a writer, editor or translator of item texts.
type Author struct {
	Name                  string `json:"name"`
	InternalName          string `json:"internal_name"`
	BackwardCompatibility string `json:"backward_compatibility"`
}

// Artist is a maker credited on an item.
type Artist struct {
	Name                  string `json:"name"`
	InternalName          string `json:"internal_name"`
	PlaceOfBirth          string `json:"place_of_birth,omitempty"`
	PlaceOfDeath          string `json:"place_of_death,omitempty"`
	DateOfBirth           string `json:"date_of_birth,omitempty"`
	DateOfDeath           string `json:"date_of_death,omitempty"`
	PeriodOfActivity      string `json:"period_of_activity,omitempty"`
	BackwardCompatibility string `json:"backward_compatibility"`
}

// ItemItemLink relates two items within a context.
type ItemItemLink struct {
	SourceID              string `json:"source_id"`
	TargetID              string `json:"target_id"`
	ContextID             string `json:"context_id"`
	BackwardCompatibility string `json:"backward_compatibility,omitempty"`
}

// ItemItemLinkTranslation describes a link in one language.
type ItemItemLinkTranslation struct {
	ItemItemLinkID        string `json:"item_item_link_id"`
	LanguageID            string `json:"language_id"`
	Description           string `json:"description,omitempty"`
	ReciprocalDescription string `json:"reciprocal_description,omitempty"`
	BackwardCompatibility string `json:"backward_compatibility,omitempty"`
}
