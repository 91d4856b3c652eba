package transform

import (
	"github.com/ekaya-inc/heritage-importer/pkg/legacydb"
)

// LinkSource describes one legacy item-to-item link table.
type LinkSource struct {
	Name   string
	Query  string
	source func(legacydb.Row) (key string, pk []any)
	target func(legacydb.Row) (key string, pk []any)
}

func objectEnd(prefix string) func(legacydb.Row) (string, []any) {
	return func(r legacydb.Row) (string, []any) {
		p, c, m, n := r.Trimmed(prefix+"_project_id"), r.Trimmed(prefix+"_country_id"), r.Trimmed(prefix+"_museum_id"), r.Trimmed(prefix+"_number")
		return ObjectKey(p, c, m, n), []any{p, c, m, n}
	}
}

func monumentEnd(prefix string) func(legacydb.Row) (string, []any) {
	return func(r legacydb.Row) (string, []any) {
		p, c, i, n := r.Trimmed(prefix+"_project_id"), r.Trimmed(prefix+"_country_id"), r.Trimmed(prefix+"_institution_id"), r.Trimmed(prefix+"_number")
		return MonumentKey(p, c, i, n), []any{p, c, i, n}
	}
}

var (
	ObjectObjectLinks = LinkSource{
		Name: "object_object",
		Query: `SELECT id, o1_project_id, o1_country_id, o1_museum_id, o1_number,
       o2_project_id, o2_country_id, o2_museum_id, o2_number
FROM mwnf3.objects_objects ORDER BY id`,
		source: objectEnd("o1"),
		target: objectEnd("o2"),
	}
	ObjectMonumentLinks = LinkSource{
		Name: "object_monument",
		Query: `SELECT id, o1_project_id, o1_country_id, o1_museum_id, o1_number,
       m1_project_id, m1_country_id, m1_institution_id, m1_number
FROM mwnf3.objects_monuments ORDER BY id`,
		source: objectEnd("o1"),
		target: monumentEnd("m1"),
	}
	MonumentMonumentLinks = LinkSource{
		Name: "monument_monument",
		Query: `SELECT id, m1_project_id, m1_country_id, m1_institution_id, m1_number,
       m2_project_id, m2_country_id, m2_institution_id, m2_number
FROM mwnf3.monuments_monuments ORDER BY id`,
		source: monumentEnd("m1"),
		target: monumentEnd("m2"),
	}
)

// LinkSources lists the link tables in import order.
var LinkSources = []LinkSource{ObjectObjectLinks, ObjectMonumentLinks, MonumentMonumentLinks}

// LinkRecord is a directed link between two items, written in the default context.
type LinkRecord struct {
	Key       string
	SourceKey string
	TargetKey string
}

// TransformLinks maps link rows. Repeated pairs collapse to one record.
func TransformLinks(rows []legacydb.Row, src LinkSource) []LinkRecord {
	var out []LinkRecord
	seen := make(map[string]bool)
	for _, r := range rows {
		sourceKey, sourcePK := src.source(r)
		targetKey, targetPK := src.target(r)
		k := key(SchemaMain, "link", append(append([]any{src.Name}, sourcePK...), targetPK...)...)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, LinkRecord{Key: k, SourceKey: sourceKey, TargetKey: targetKey})
	}
	return out
}
