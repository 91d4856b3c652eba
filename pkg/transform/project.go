package transform

import (
	"fmt"
	"strings"
	"time"

	"github.com/ekaya-inc/heritage-importer/pkg/codes"
	"github.com/ekaya-inc/heritage-importer/pkg/legacydb"
	"github.com/ekaya-inc/heritage-importer/pkg/markdown"
	"github.com/ekaya-inc/heritage-importer/pkg/models"
)

const (
	ProjectsQuery     = "SELECT * FROM mwnf3.projects ORDER BY project_id"
	ProjectNamesQuery = "SELECT * FROM mwnf3.projectnames ORDER BY project_id, lang"
)

// ProjectRecord is a legacy project: a context, a root collection and a
// project sharing one key.
type ProjectRecord struct {
	Key          string
	Context      models.Context
	Collection   models.Collection
	Project      models.Project
	Translations []ProjectTranslation
	Warnings     []string
}

// ProjectTranslation is one language of a project. Only the collection
// translation has a target table.
type ProjectTranslation struct {
	Context    models.ContextTranslation
	Collection models.CollectionTranslation
	Project    models.ProjectTranslation
}

// GroupByProject indexes name rows by project_id.
func GroupByProject(rows []legacydb.Row) map[string][]legacydb.Row {
	return IndexBy(rows, func(r legacydb.Row) string { return r.Trimmed("project_id") })
}

// TransformProject maps a mwnf3.projects row and its projectnames rows.
func TransformProject(p legacydb.Row, names []legacydb.Row, defaultLanguageID string) *ProjectRecord {
	projectID := p.Trimmed("project_id")
	return buildProject(projectSource{
		key:          ProjectKey(projectID),
		contextName:  projectID,
		internalName: firstNonEmpty(markdown.StripHTML(p.String("name")), projectID),
		launchDate:   p.Trimmed("launchdate"),
		enabled:      p.Bool("active"),
		titleColumn:  "name",
		descColumns:  []string{"description"},
	}, names, defaultLanguageID)
}

// contextName must be unique across contexts of every legacy schema.
type projectSource struct {
	key          string
	contextName  string
	internalName string
	launchDate   string
	enabled      bool
	titleColumn  string
	quoteColumn  string
	descColumns  []string
}

func buildProject(src projectSource, names []legacydb.Row, defaultLanguageID string) *ProjectRecord {
	rec := &ProjectRecord{
		Key: src.key,
		Context: models.Context{
			InternalName:          src.contextName,
			BackwardCompatibility: src.key,
		},
		Collection: models.Collection{
			LanguageID:            defaultLanguageID,
			Type:                  models.CollectionTypeCollection,
			InternalName:          src.internalName,
			BackwardCompatibility: src.key,
		},
	}
	launch := LegacyDate(src.launchDate)
	rec.Project = models.Project{
		InternalName:          src.internalName,
		BackwardCompatibility: src.key,
		LanguageID:            defaultLanguageID,
		LaunchDate:            launch,
		IsLaunched:            launch != "",
		IsEnabled:             src.enabled,
	}

	for _, n := range names {
		lang := n.Trimmed("lang")
		languageID, err := codes.Language(lang)
		if err != nil {
			rec.Warnings = append(rec.Warnings, fmt.Sprintf("%s:%s - %v", src.key, lang, err))
			continue
		}
		title := firstNonEmpty(Text(n.String(src.titleColumn)), src.internalName)
		var description string
		for _, col := range src.descColumns {
			if description = Text(n.String(col)); description != "" {
				break
			}
		}
		var quote string
		if src.quoteColumn != "" {
			quote = Text(n.String(src.quoteColumn))
		}
		rec.Translations = append(rec.Translations, ProjectTranslation{
			Context: models.ContextTranslation{LanguageID: languageID, Name: title, Description: description},
			Collection: models.CollectionTranslation{
				LanguageID:            languageID,
				Title:                 title,
				Description:           description,
				Quote:                 quote,
				BackwardCompatibility: src.key + ":" + languageID,
			},
			Project: models.ProjectTranslation{LanguageID: languageID, Name: title, Description: description},
		})
	}
	return rec
}

// LegacyDate normalizes a free-text legacy date column to YYYY-MM-DD.
// Zero dates and unparsable values become empty.
func LegacyDate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 10 || strings.HasPrefix(s, "0000") {
		return ""
	}
	t, err := time.Parse("2006-01-02", s[:10])
	if err != nil {
		return ""
	}
	return t.Format("2006-01-02")
}
