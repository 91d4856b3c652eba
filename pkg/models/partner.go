package models

// Partner types.
const (
	PartnerTypeMuseum      = "museum"
	PartnerTypeInstitution = "institution"
)

// DefaultPartnerMapZoom is stored when the legacy row has no zoom level.
const DefaultPartnerMapZoom = 16

// Partner is a museum or institution.
type Partner struct {
	Type                  string   `json:"type"`
	InternalName          string   `json:"internal_name"`
	BackwardCompatibility string   `json:"backward_compatibility"`
	CountryID             string   `json:"country_id,omitempty"`
	Latitude              *float64 `json:"latitude,omitempty"`
	Longitude             *float64 `json:"longitude,omitempty"`
	MapZoom               *int     `json:"map_zoom,omitempty"`
	ProjectID             string   `json:"project_id,omitempty"`
	MonumentItemID        string   `json:"monument_item_id,omitempty"`
	Visible               bool     `json:"visible"`
}

// PartnerTranslation is a partner's name and contact text in one language and context.
type PartnerTranslation struct {
	PartnerID             string `json:"partner_id"`
	LanguageID            string `json:"language_id"`
	ContextID             string `json:"context_id"`
	Name                  string `json:"name"`
	Description           string `json:"description,omitempty"`
	CityDisplay           string `json:"city_display,omitempty"`
	ContactWebsite        string `json:"contact_website,omitempty"`
	ContactPhone          string `json:"contact_phone,omitempty"`
	ContactEmailGeneral   string `json:"contact_email_general,omitempty"`
	Extra                 string `json:"extra,omitempty"` // JSON object
	BackwardCompatibility string `json:"backward_compatibility"`
}
