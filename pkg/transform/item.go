package transform

import (
	"fmt"
	"strings"

	"github.com/ekaya-inc/heritage-importer/pkg/codes"
	"github.com/ekaya-inc/heritage-importer/pkg/legacydb"
	"github.com/ekaya-inc/heritage-importer/pkg/markdown"
	"github.com/ekaya-inc/heritage-importer/pkg/models"
)

// ItemRecord is a transformed item with its translations and supporting entities.
// Foreign keys are carried as keys: ProjectKey names the context, collection and
// project; PartnerKey the partner; ParentKey the parent item.
type ItemRecord struct {
	Key          string
	Item         models.Item
	ProjectKey   string
	PartnerKey   string
	ParentKey    string
	Translations []TranslationRecord
	Tags         []models.Tag
	Artists      []models.Artist
	Warnings     []string
}

// TranslationRecord is one item translation. EPM translations are written to
// the EPM context instead of the item's own context.
type TranslationRecord struct {
	Data    models.ItemTranslation
	EPM     bool
	Credits Credits
}

// Credits are the author names of a translation, resolved to author ids on write.
type Credits struct {
	Author                string
	TextCopyEditor        string
	Translator            string
	TranslationCopyEditor string
}

func creditsFrom(r legacydb.Row) Credits {
	return Credits{
		Author:                r.Trimmed("preparedby"),
		TextCopyEditor:        r.Trimmed("copyeditedby"),
		Translator:            r.Trimmed("translationby"),
		TranslationCopyEditor: r.Trimmed("translationcopyeditedby"),
	}
}

// TranslationPlan says which description column of a row becomes a translation,
// and in which context.
type TranslationPlan struct {
	Row               legacydb.Row
	EPM               bool
	DescriptionColumn string
}

// PlanTranslations applies the EPM rule. Rows of the EPM project yield one
// translation from description2. Other rows yield one from description, plus an
// EPM context translation from description2 when hasEPM is set.
// Blank descriptions yield nothing.
func PlanTranslations(projectID string, rows []legacydb.Row, hasEPM bool) []TranslationPlan {
	var plans []TranslationPlan
	for _, r := range rows {
		description := r.Trimmed("description")
		description2 := r.Trimmed("description2")

		if projectID == EPMProjectID {
			if description2 != "" {
				plans = append(plans, TranslationPlan{Row: r, DescriptionColumn: "description2"})
			}
			continue
		}
		if description != "" {
			plans = append(plans, TranslationPlan{Row: r, DescriptionColumn: "description"})
		}
		if description2 != "" && hasEPM {
			plans = append(plans, TranslationPlan{Row: r, EPM: true, DescriptionColumn: "description2"})
		}
	}
	return plans
}

// InternalName returns the first non-empty of name, inventory id, working
// number and number, stripped of markup.
func InternalName(name, inventoryID, workingNumber, number string) string {
	return markdown.StripHTML(firstNonEmpty(name, inventoryID, workingNumber, number))
}

// selectDefault returns the row in the default language, or the first row with
// a warning when none matches.
func selectDefault(rows []legacydb.Row, langColumn, defaultLanguageID, ref string) (legacydb.Row, string) {
	for _, r := range rows {
		if lang, err := codes.Language(r.Trimmed(langColumn)); err == nil && lang == defaultLanguageID {
			return r, ""
		}
	}
	first := rows[0]
	return first, fmt.Sprintf("%s has no translation in default language %s, using %s instead",
		ref, defaultLanguageID, first.Trimmed(langColumn))
}

// itemTranslation maps an object-shaped legacy row. Columns missing from the
// row map to empty fields. ok is false when the row cannot become a translation;
// warnings explain why or report truncations.
func itemTranslation(r legacydb.Row, descriptionColumn, ref, langColumn string) (TranslationRecord, []string, bool) {
	lang := r.Trimmed(langColumn)
	ref = ref + ":" + lang

	languageID, err := codes.Language(lang)
	if err != nil {
		return TranslationRecord{}, []string{fmt.Sprintf("%s - %v", ref, err)}, false
	}
	description := r.Trimmed(descriptionColumn)
	if description == "" {
		return TranslationRecord{}, nil, false
	}
	name := r.Trimmed("name")
	if name == "" {
		return TranslationRecord{}, []string{ref + " - Missing required 'name' field"}, false
	}

	var warnings []string
	truncate := func(value, field string) string {
		out, w := Truncate(Text(value), DefaultFieldLimit, field)
		if w != nil {
			warnings = append(warnings, w.Message(ref))
		}
		return out
	}

	extra, _ := BuildExtra(
		"workshop", r.String("workshop"),
		"copyright", r.String("copyright"),
		"binding_desc", r.String("binding_desc"),
	)

	var location []string
	for _, col := range []string{"location", "province"} {
		if v := Text(r.String(col)); v != "" {
			location = append(location, v)
		}
	}

	t := models.ItemTranslation{
		LanguageID:          languageID,
		Name:                Text(name),
		Description:         Text(description),
		AlternateName:       truncate(r.String("name2"), "alternate_name"),
		Type:                truncate(r.String("typeof"), "type"),
		Holder:              Text(r.String("holding_museum")),
		Owner:               Text(r.String("current_owner")),
		InitialOwner:        Text(r.String("original_owner")),
		Dates:               Text(r.String("date_description")),
		Location:            strings.Join(location, ", "),
		Dimensions:          Text(r.String("dimensions")),
		PlaceOfProduction:   Text(r.String("production_place")),
		MethodForDatation:   Text(r.String("datationmethod")),
		MethodForProvenance: Text(r.String("provenancemethod")),
		Obtention:           Text(r.String("obtentionmethod")),
		Bibliography:        Text(r.String("bibliography")),
		Extra:               extra,
	}
	return TranslationRecord{Data: t, Credits: creditsFrom(r)}, warnings, true
}

// planned builds the translations of every plan, tagging each with key.
func planned(plans []TranslationPlan, key, ref, langColumn string) ([]TranslationRecord, []string) {
	var out []TranslationRecord
	var warnings []string
	for _, p := range plans {
		t, w, ok := itemTranslation(p.Row, p.DescriptionColumn, ref, langColumn)
		warnings = append(warnings, w...)
		if !ok {
			continue
		}
		t.EPM = p.EPM
		t.Data.BackwardCompatibility = key
		out = append(out, t)
	}
	return out, warnings
}

// tagsFrom reads tag lists from columns, keyed by category.
func tagsFrom(r legacydb.Row, langColumn string, columns map[string]string, order []string) []models.Tag {
	languageID, err := codes.Language(r.Trimmed(langColumn))
	if err != nil {
		return nil
	}
	var tags []models.Tag
	for _, col := range order {
		category := columns[col]
		for _, name := range ParseTagString(markdown.StripHTML(r.String(col))) {
			tags = append(tags, models.Tag{
				InternalName:          name,
				Category:              category,
				LanguageID:            languageID,
				Description:           name,
				BackwardCompatibility: TagKey(category, languageID, name),
			})
		}
	}
	return tags
}

var objectTagColumns = map[string]string{
	"materials": models.TagCategoryMaterial,
	"dynasty":   models.TagCategoryDynasty,
	"keywords":  models.TagCategoryKeyword,
}

func countryOf(legacy string) (string, error) {
	if strings.TrimSpace(legacy) == "" {
		return "", nil
	}
	return codes.Country(legacy)
}
