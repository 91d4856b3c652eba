package importers

import (
	"context"
	"embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ekaya-inc/heritage-importer/pkg/bckey"
	"github.com/ekaya-inc/heritage-importer/pkg/models"
	"github.com/ekaya-inc/heritage-importer/pkg/strategy"
	"github.com/ekaya-inc/heritage-importer/pkg/tracker"
	"github.com/ekaya-inc/heritage-importer/pkg/transform"
)

//go:embed reference/*.yaml
var referenceFS embed.FS

// ReferenceEntry is one bundled language or country. BackwardCompatibility is
// the legacy code other importers refer to.
type ReferenceEntry struct {
	ID                    string `yaml:"id"`
	InternalName          string `yaml:"internal_name"`
	BackwardCompatibility string `yaml:"backward_compatibility"`
	IsDefault             bool   `yaml:"is_default"`
}

func loadReference(name string) ([]ReferenceEntry, error) {
	data, err := referenceFS.ReadFile("reference/" + name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	var entries []ReferenceEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return entries, nil
}

// BundledLanguages returns the languages shipped with the binary.
func BundledLanguages() ([]ReferenceEntry, error) { return loadReference("languages.yaml") }

// BundledCountries returns the countries shipped with the binary.
func BundledCountries() ([]ReferenceEntry, error) { return loadReference("countries.yaml") }

// LanguageImporter writes the bundled languages. It never queries the legacy
// database. Languages keep their three-letter code as id.
type LanguageImporter struct {
	base
	load func() ([]ReferenceEntry, error)
}

func NewLanguageImporter(c *Context) *LanguageImporter {
	return NewLanguageImporterWith(c, BundledLanguages)
}

// NewLanguageImporterWith reads languages from load instead of the bundled dataset.
func NewLanguageImporterWith(c *Context, load func() ([]ReferenceEntry, error)) *LanguageImporter {
	return &LanguageImporter{base: newBase("language", c), load: load}
}

func (i *LanguageImporter) Import(ctx context.Context) Result {
	started := time.Now()
	i.begin()

	entries, err := i.load()
	if err != nil {
		i.fail("languages", err)
		return i.finish(started)
	}
	for _, e := range entries {
		if e.IsDefault {
			i.c.Tracker.SetMetadata(tracker.MetaDefaultLanguageID, e.ID)
		}
		exists, err := i.exists(ctx, strategy.TableLanguages, tracker.Language, e.BackwardCompatibility)
		if err != nil {
			i.fail(e.BackwardCompatibility, err)
			continue
		}
		if exists {
			i.skipped()
			continue
		}
		if err := i.writeLanguage(ctx, e); err != nil {
			i.fail(e.BackwardCompatibility, err)
			continue
		}
		i.imported()
	}
	return i.finish(started)
}

func (i *LanguageImporter) writeLanguage(ctx context.Context, e ReferenceEntry) error {
	if i.c.DryRun {
		i.register(e.BackwardCompatibility, e.ID, tracker.Language)
		return nil
	}
	id, err := i.c.Strategy.WriteLanguage(ctx, models.Language{
		ID:                    e.ID,
		InternalName:          e.InternalName,
		BackwardCompatibility: e.BackwardCompatibility,
		IsDefault:             e.IsDefault,
	})
	if err != nil {
		return err
	}
	i.register(e.BackwardCompatibility, id, tracker.Language)
	return nil
}

// CountryImporter writes the bundled countries.
type CountryImporter struct {
	base
	load func() ([]ReferenceEntry, error)
}

func NewCountryImporter(c *Context) *CountryImporter {
	return NewCountryImporterWith(c, BundledCountries)
}

// NewCountryImporterWith reads countries from load instead of the bundled dataset.
func NewCountryImporterWith(c *Context, load func() ([]ReferenceEntry, error)) *CountryImporter {
	return &CountryImporter{base: newBase("country", c), load: load}
}

func (i *CountryImporter) Import(ctx context.Context) Result {
	started := time.Now()
	i.begin()

	entries, err := i.load()
	if err != nil {
		i.fail("countries", err)
		return i.finish(started)
	}
	for _, e := range entries {
		exists, err := i.exists(ctx, strategy.TableCountries, tracker.Country, e.BackwardCompatibility)
		if err != nil {
			i.fail(e.BackwardCompatibility, err)
			continue
		}
		if exists {
			i.skipped()
			continue
		}
		if i.c.DryRun {
			i.register(e.BackwardCompatibility, e.ID, tracker.Country)
			i.imported()
			continue
		}
		id, err := i.c.Strategy.WriteCountry(ctx, models.Country{
			ID:                    e.ID,
			InternalName:          e.InternalName,
			BackwardCompatibility: e.BackwardCompatibility,
		})
		if err != nil {
			i.fail(e.BackwardCompatibility, err)
			continue
		}
		i.register(e.BackwardCompatibility, id, tracker.Country)
		i.imported()
	}
	return i.finish(started)
}

const (
	LanguageNamesQuery = "SELECT lang_id, lang, name FROM mwnf3.langnames ORDER BY lang_id, lang"
	CountryNamesQuery  = "SELECT country, lang, name FROM mwnf3.countrynames ORDER BY country, lang"
)

// LanguageTranslationImporter names every language in every display language.
type LanguageTranslationImporter struct{ base }

func NewLanguageTranslationImporter(c *Context) *LanguageTranslationImporter {
	return &LanguageTranslationImporter{base: newBase("language-translation", c)}
}

func (i *LanguageTranslationImporter) Import(ctx context.Context) Result {
	started := time.Now()
	i.begin()

	rows, err := i.query(ctx, LanguageNamesQuery)
	if err != nil {
		i.fail(i.name, err)
		return i.finish(started)
	}
	for _, r := range rows {
		named, display := r.Trimmed("lang_id"), r.Trimmed("lang")
		k := bckey.Format(bckey.Key{Schema: transform.SchemaMain, Table: "langnames", PKValues: []any{named, display}})
		name := transform.Text(r.String("name"))
		if name == "" {
			i.skipped()
			continue
		}
		exists, err := i.exists(ctx, strategy.TableLanguageTranslations, tracker.LanguageTranslation, k)
		if err != nil {
			i.fail(k, err)
			continue
		}
		if exists {
			i.skipped()
			continue
		}

		languageID, err := i.resolve(ctx, strategy.TableLanguages, tracker.Language, named)
		if err != nil {
			i.warn(fmt.Sprintf("%s - language %s not imported", k, named))
			i.skipped()
			continue
		}
		displayID, err := i.resolve(ctx, strategy.TableLanguages, tracker.Language, display)
		if err != nil {
			i.warn(fmt.Sprintf("%s - display language %s not imported", k, display))
			i.skipped()
			continue
		}

		err = i.writeTranslation(k, tracker.LanguageTranslation, func() error {
			return i.c.Strategy.WriteLanguageTranslation(ctx, models.LanguageTranslation{
				LanguageID:            languageID,
				DisplayLanguageID:     displayID,
				Name:                  name,
				BackwardCompatibility: k,
			})
		})
		if err != nil {
			i.fail(k, err)
			continue
		}
		i.imported()
	}
	return i.finish(started)
}

// CountryTranslationImporter names every country in every legacy language.
type CountryTranslationImporter struct{ base }

func NewCountryTranslationImporter(c *Context) *CountryTranslationImporter {
	return &CountryTranslationImporter{base: newBase("country-translation", c)}
}

func (i *CountryTranslationImporter) Import(ctx context.Context) Result {
	started := time.Now()
	i.begin()

	rows, err := i.query(ctx, CountryNamesQuery)
	if err != nil {
		i.fail(i.name, err)
		return i.finish(started)
	}
	for _, r := range rows {
		country, lang := r.Trimmed("country"), r.Trimmed("lang")
		k := bckey.Format(bckey.Key{Schema: transform.SchemaMain, Table: "countrynames", PKValues: []any{country, lang}})
		name := transform.Text(r.String("name"))
		if name == "" {
			i.skipped()
			continue
		}
		exists, err := i.exists(ctx, strategy.TableCountryTranslations, tracker.CountryTranslation, k)
		if err != nil {
			i.fail(k, err)
			continue
		}
		if exists {
			i.skipped()
			continue
		}

		countryID, err := i.resolve(ctx, strategy.TableCountries, tracker.Country, country)
		if err != nil {
			i.warn(fmt.Sprintf("%s - country %s not imported", k, country))
			i.skipped()
			continue
		}
		languageID, err := i.resolve(ctx, strategy.TableLanguages, tracker.Language, lang)
		if err != nil {
			i.warn(fmt.Sprintf("%s - language %s not imported", k, lang))
			i.skipped()
			continue
		}

		err = i.writeTranslation(k, tracker.CountryTranslation, func() error {
			return i.c.Strategy.WriteCountryTranslation(ctx, models.CountryTranslation{
				CountryID:             countryID,
				LanguageID:            languageID,
				Name:                  name,
				BackwardCompatibility: k,
			})
		})
		if err != nil {
			i.fail(k, err)
			continue
		}
		i.imported()
	}
	return i.finish(started)
}

// DefaultContextImporter creates the context shared by content that belongs to
// no particular project.
type DefaultContextImporter struct{ base }

func NewDefaultContextImporter(c *Context) *DefaultContextImporter {
	return &DefaultContextImporter{base: newBase("default-context", c)}
}

func (i *DefaultContextImporter) Import(ctx context.Context) Result {
	started := time.Now()
	i.begin()

	id, created, err := i.ensureContext(ctx, models.Context{
		InternalName:          "default",
		BackwardCompatibility: transform.DefaultContextKey,
		IsDefault:             true,
	})
	switch {
	case err != nil:
		i.fail(transform.DefaultContextKey, err)
	case created:
		i.imported()
	default:
		i.skipped()
	}
	if id != "" {
		i.c.Tracker.SetMetadata(tracker.MetaDefaultContextID, id)
	}
	return i.finish(started)
}

// ensureContext returns the id of the context keyed data.BackwardCompatibility,
// writing it when missing.
func (b *base) ensureContext(ctx context.Context, data models.Context) (string, bool, error) {
	return b.ensure(ctx, strategy.TableContexts, tracker.Context, data.BackwardCompatibility, func() (string, error) {
		return b.c.Strategy.WriteContext(ctx, data)
	})
}
