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

// GlossaryImporter writes the glossary words.
type GlossaryImporter struct{ base }

func NewGlossaryImporter(c *Context) *GlossaryImporter {
	return &GlossaryImporter{base: newBase("glossary", c)}
}

func (i *GlossaryImporter) Import(ctx context.Context) Result {
	started := time.Now()
	i.begin()

	words, err := i.query(ctx, transform.GlossaryQuery)
	if err != nil {
		i.fail(i.name, err)
		return i.finish(started)
	}
	for _, r := range words {
		rec, ok := transform.TransformGlossary(r)
		if !ok {
			i.skipped()
			continue
		}
		_, created, err := i.ensure(ctx, strategy.TableGlossaries, tracker.Glossary, rec.Key, func() (string, error) {
			return i.c.Strategy.WriteGlossary(ctx, rec.Glossary)
		})
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

// GlossaryTextImporter writes the definitions or the spellings of glossary
// words. Rows already in the target are skipped; the strategy also ignores
// rows colliding with an existing (word, language) definition or spelling.
type GlossaryTextImporter struct {
	base
	rowsQuery  string
	table      string
	entityType tracker.EntityType
	transform  func(legacydb.Row) (transform.GlossaryTextRecord, error)
	write      func(ctx context.Context, s strategy.WriteStrategy, glossaryID string, t transform.GlossaryTextRecord) error
}

func NewGlossaryTranslationImporter(c *Context) *GlossaryTextImporter {
	return &GlossaryTextImporter{
		base:       newBase("glossary-translation", c),
		rowsQuery:  transform.GlossaryDefinitionsQuery,
		table:      strategy.TableGlossaryTranslations,
		entityType: tracker.GlossaryTranslation,
		transform:  transform.TransformDefinition,
		write: func(ctx context.Context, s strategy.WriteStrategy, glossaryID string, t transform.GlossaryTextRecord) error {
			return s.WriteGlossaryTranslation(ctx, models.GlossaryTranslation{
				GlossaryID:            glossaryID,
				LanguageID:            t.LanguageID,
				Definition:            t.Text,
				BackwardCompatibility: t.Key,
			})
		},
	}
}

func NewGlossarySpellingImporter(c *Context) *GlossaryTextImporter {
	return &GlossaryTextImporter{
		base:       newBase("glossary-spelling", c),
		rowsQuery:  transform.GlossarySpellingsQuery,
		table:      strategy.TableGlossarySpellings,
		entityType: tracker.GlossarySpelling,
		transform:  transform.TransformSpelling,
		write: func(ctx context.Context, s strategy.WriteStrategy, glossaryID string, t transform.GlossaryTextRecord) error {
			return s.WriteGlossarySpelling(ctx, models.GlossarySpelling{
				GlossaryID:            glossaryID,
				LanguageID:            t.LanguageID,
				Spelling:              t.Text,
				BackwardCompatibility: t.Key,
			})
		},
	}
}

func (i *GlossaryTextImporter) Import(ctx context.Context) Result {
	started := time.Now()
	i.begin()

	rows, err := i.query(ctx, i.rowsQuery)
	if err != nil {
		i.fail(i.name, err)
		return i.finish(started)
	}
	for _, r := range rows {
		t, err := i.transform(r)
		if err != nil {
			i.warn(err.Error())
			i.skipped()
			continue
		}
		if t.Text == "" {
			i.skipped()
			continue
		}
		exists, err := i.exists(ctx, i.table, i.entityType, t.Key)
		if err != nil {
			i.fail(t.Key, err)
			continue
		}
		if exists {
			i.skipped()
			continue
		}
		glossaryID, err := i.resolve(ctx, strategy.TableGlossaries, tracker.Glossary, t.GlossaryKey)
		if err != nil {
			i.warn(fmt.Sprintf("%s - word %s not imported", t.Key, t.GlossaryKey))
			i.skipped()
			continue
		}
		if err := i.exec(func() error { return i.write(ctx, i.c.Strategy, glossaryID, t) }); err != nil {
			i.fail(t.Key, err)
			continue
		}
		// The rows have no id of their own; they are tracked under their word.
		i.register(t.Key, glossaryID, i.entityType)
		i.imported()
	}
	return i.finish(started)
}
