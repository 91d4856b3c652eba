package transform

import (
	"fmt"

	"github.com/ekaya-inc/heritage-importer/pkg/codes"
	"github.com/ekaya-inc/heritage-importer/pkg/legacydb"
	"github.com/ekaya-inc/heritage-importer/pkg/markdown"
	"github.com/ekaya-inc/heritage-importer/pkg/models"
)

const (
	GlossaryQuery            = "SELECT word_id, name FROM mwnf3.glossary ORDER BY word_id"
	GlossaryDefinitionsQuery = "SELECT word_id, lang_id, definition FROM mwnf3.gl_definitions ORDER BY word_id, lang_id"
	GlossarySpellingsQuery   = "SELECT spelling_id, word_id, lang_id, spelling FROM mwnf3.gl_spellings ORDER BY word_id, lang_id, spelling_id"
)

// GlossaryRecord is one glossary word.
type GlossaryRecord struct {
	Key      string
	Glossary models.Glossary
}

// TransformGlossary maps a glossary row. ok is false for words without a name.
func TransformGlossary(r legacydb.Row) (GlossaryRecord, bool) {
	k := GlossaryKey(r.Trimmed("word_id"))
	name := markdown.StripHTML(r.String("name"))
	if name == "" {
		return GlossaryRecord{}, false
	}
	return GlossaryRecord{
		Key:      k,
		Glossary: models.Glossary{InternalName: name, BackwardCompatibility: k},
	}, true
}

// GlossaryTextRecord is a definition or spelling of a word.
type GlossaryTextRecord struct {
	Key         string
	GlossaryKey string
	LanguageID  string
	Text        string
}

// TransformDefinition maps a gl_definitions row.
func TransformDefinition(r legacydb.Row) (GlossaryTextRecord, error) {
	wordID := r.Trimmed("word_id")
	languageID, err := codes.Language(r.Trimmed("lang_id"))
	if err != nil {
		return GlossaryTextRecord{}, fmt.Errorf("definition of word %s: %w", wordID, err)
	}
	return GlossaryTextRecord{
		Key:         key(SchemaMain, "gl_definitions", wordID, languageID),
		GlossaryKey: GlossaryKey(wordID),
		LanguageID:  languageID,
		Text:        Text(r.String("definition")),
	}, nil
}

// TransformSpelling maps a gl_spellings row.
func TransformSpelling(r legacydb.Row) (GlossaryTextRecord, error) {
	wordID := r.Trimmed("word_id")
	languageID, err := codes.Language(r.Trimmed("lang_id"))
	if err != nil {
		return GlossaryTextRecord{}, fmt.Errorf("spelling %s of word %s: %w", r.Trimmed("spelling_id"), wordID, err)
	}
	return GlossaryTextRecord{
		Key:         key(SchemaMain, "gl_spellings", r.Trimmed("spelling_id")),
		GlossaryKey: GlossaryKey(wordID),
		LanguageID:  languageID,
		Text:        markdown.StripHTML(r.String("spelling")),
	}, nil
}
