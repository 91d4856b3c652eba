package importers

import (
	"context"
	"time"

	"github.com/ekaya-inc/heritage-importer/pkg/legacydb"
	"github.com/ekaya-inc/heritage-importer/pkg/strategy"
	"github.com/ekaya-inc/heritage-importer/pkg/tracker"
	"github.com/ekaya-inc/heritage-importer/pkg/transform"
)

// ProjectImporter writes each legacy project as a context, a root collection
// and a project sharing the project key.
type ProjectImporter struct {
	base
	projectsQuery string
	namesQuery    string
	transform     func(p legacydb.Row, names []legacydb.Row, defaultLanguageID string) *transform.ProjectRecord
}

func NewProjectImporter(c *Context) *ProjectImporter {
	return &ProjectImporter{
		base:          newBase("project", c),
		projectsQuery: transform.ProjectsQuery,
		namesQuery:    transform.ProjectNamesQuery,
		transform:     transform.TransformProject,
	}
}

// NewShProjectImporter imports the sharing history projects the same way.
func NewShProjectImporter(c *Context) *ProjectImporter {
	return &ProjectImporter{
		base:          newBase("sh-project", c),
		projectsQuery: transform.ShProjectsQuery,
		namesQuery:    transform.ShProjectNamesQuery,
		transform:     transform.TransformShProject,
	}
}

func (i *ProjectImporter) Import(ctx context.Context) Result {
	started := time.Now()
	i.begin()

	projects, err := i.query(ctx, i.projectsQuery)
	if err != nil {
		i.fail(i.name, err)
		return i.finish(started)
	}
	names, err := i.query(ctx, i.namesQuery)
	if err != nil {
		i.fail(i.name, err)
		return i.finish(started)
	}
	byProject := transform.GroupByProject(names)
	lang := i.defaultLanguageID()

	for _, p := range projects {
		rec := i.transform(p, byProject[p.Trimmed("project_id")], lang)
		i.warn(rec.Warnings...)

		exists, err := i.exists(ctx, strategy.TableProjects, tracker.Project, rec.Key)
		if err != nil {
			i.fail(rec.Key, err)
			continue
		}
		if exists {
			i.skipped()
			continue
		}
		if err := i.writeProject(ctx, rec); err != nil {
			i.fail(rec.Key, err)
			continue
		}
		i.imported()
	}
	return i.finish(started)
}

// writeProject tolerates a context or collection left behind by an
// interrupted run.
func (i *ProjectImporter) writeProject(ctx context.Context, rec *transform.ProjectRecord) error {
	contextID, _, err := i.ensureContext(ctx, rec.Context)
	if err != nil {
		return err
	}

	collection := rec.Collection
	collection.ContextID = contextID
	collectionID, collectionCreated, err := i.ensure(ctx, strategy.TableCollections, tracker.Collection, rec.Key,
		func() (string, error) { return i.c.Strategy.WriteCollection(ctx, collection) })
	if err != nil {
		return err
	}

	project := rec.Project
	project.ContextID = contextID
	projectID, err := i.write(rec.Key, tracker.Project, func() (string, error) {
		return i.c.Strategy.WriteProject(ctx, project)
	})
	if err != nil {
		return err
	}

	for _, tr := range rec.Translations {
		if collectionCreated {
			data := tr.Collection
			data.CollectionID = collectionID
			data.ContextID = contextID
			err := i.writeTranslation(data.BackwardCompatibility, tracker.CollectionTranslation, func() error {
				return i.c.Strategy.WriteCollectionTranslation(ctx, data)
			})
			if err != nil {
				return err
			}
		}
		if err := i.writeNamedTranslations(ctx, tr, contextID, projectID); err != nil {
			return err
		}
	}
	return nil
}

func (i *ProjectImporter) writeNamedTranslations(ctx context.Context, tr transform.ProjectTranslation, contextID, projectID string) error {
	return i.exec(func() error {
		contextTr := tr.Context
		contextTr.ContextID = contextID
		if err := i.c.Strategy.WriteContextTranslation(ctx, contextTr); err != nil {
			return err
		}
		projectTr := tr.Project
		projectTr.ProjectID = projectID
		projectTr.ContextID = contextID
		return i.c.Strategy.WriteProjectTranslation(ctx, projectTr)
	})
}
