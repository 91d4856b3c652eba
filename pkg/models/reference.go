package models

// Write payloads for the target schema. Empty strings in optional fields are
// stored as NULL.

// Language is keyed by its ISO 639-3 code.
type Language struct {
	ID                    string `json:"id"`
	InternalName          string `json:"internal_name"`
	BackwardCompatibility string `json:"backward_compatibility"`
	IsDefault             bool   `json:"is_default"`
}

// LanguageTranslation names LanguageID in DisplayLanguageID.
type LanguageTranslation struct {
	LanguageID            string `json:"language_id"`
	DisplayLanguageID     string `json:"display_language_id"`
	Name                  string `json:"name"`
	BackwardCompatibility string `json:"backward_compatibility"`
}

// Country is keyed by its ISO 3166-1 alpha-3 code (or a zzz placeholder).
type Country struct {
	ID                    string `json:"id"`
	InternalName          string `json:"internal_name"`
	BackwardCompatibility string `json:"backward_compatibility"`
}

// CountryTranslation names CountryID in LanguageID.
type CountryTranslation struct {
	CountryID             string `json:"country_id"`
	LanguageID            string `json:"language_id"`
	Name                  string `json:"name"`
	BackwardCompatibility string `json:"backward_compatibility"`
}

// Context scopes translations (one per legacy project plus the default context).
type Context struct {
	InternalName          string `json:"internal_name"`
	BackwardCompatibility string `json:"backward_compatibility"`
	IsDefault             bool   `json:"is_default"`
}

// ContextTranslation has no target table; writes are accepted and dropped.
type ContextTranslation struct {
	ContextID   string `json:"context_id"`
	LanguageID  string `json:"language_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
