package transform

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ekaya-inc/heritage-importer/pkg/codes"
	"github.com/ekaya-inc/heritage-importer/pkg/legacydb"
	"github.com/ekaya-inc/heritage-importer/pkg/models"
)

// PictureRecord is a legacy picture imported as a child item of type picture
// carrying one image. Pictures without a type whose number is 1 are also the
// parent's own image.
type PictureRecord struct {
	Key          string
	Path         string
	Number       int
	ParentKey    string
	ProjectKey   string
	PartnerKey   string
	Item         models.Item
	Translations []models.ItemTranslation
	Artists      []models.Artist
	ParentImage  bool
	Warnings     []string
}

// PictureSource describes the layout of one legacy picture table.
type PictureSource struct {
	Name         string
	Query        string
	Table        string
	LangColumn   string
	NumberColumn string
	TypeColumn   string
	// pk returns the non-language primary key of the picture's parent.
	pk         func(legacydb.Row) []any
	parentKey  func(legacydb.Row) string
	partnerKey func(legacydb.Row) string
}

var ObjectPictures = PictureSource{
	Name:         "object",
	Query:        "SELECT * FROM mwnf3.objects_pictures ORDER BY project_id, country, museum_id, number, type, image_number, lang",
	Table:        "objects_pictures",
	LangColumn:   "lang",
	NumberColumn: "image_number",
	TypeColumn:   "type",
	pk: func(r legacydb.Row) []any {
		return []any{r.Trimmed("project_id"), r.Trimmed("country"), r.Trimmed("museum_id"), r.Trimmed("number")}
	},
	parentKey: func(r legacydb.Row) string {
		return ObjectKey(r.Trimmed("project_id"), r.Trimmed("country"), r.Trimmed("museum_id"), r.Trimmed("number"))
	},
	partnerKey: func(r legacydb.Row) string { return MuseumKey(r.Trimmed("museum_id"), r.Trimmed("country")) },
}

var MonumentPictures = PictureSource{
	Name:         "monument",
	Query:        "SELECT * FROM mwnf3.monuments_pictures ORDER BY project_id, country, institution_id, number, type, image_number, lang",
	Table:        "monuments_pictures",
	LangColumn:   "lang",
	NumberColumn: "image_number",
	TypeColumn:   "type",
	pk: func(r legacydb.Row) []any {
		return []any{r.Trimmed("project_id"), r.Trimmed("country"), r.Trimmed("institution_id"), r.Trimmed("number")}
	},
	parentKey: func(r legacydb.Row) string {
		return MonumentKey(r.Trimmed("project_id"), r.Trimmed("country"), r.Trimmed("institution_id"), r.Trimmed("number"))
	},
	partnerKey: func(r legacydb.Row) string { return InstitutionKey(r.Trimmed("institution_id"), r.Trimmed("country")) },
}

var MonumentDetailPictures = PictureSource{
	Name:         "monument detail",
	Query:        "SELECT * FROM mwnf3.monument_detail_pictures ORDER BY project_id, country_id, institution_id, monument_id, detail_id, picture_id, lang_id",
	Table:        "monument_detail_pictures",
	LangColumn:   "lang_id",
	NumberColumn: "picture_id",
	pk: func(r legacydb.Row) []any {
		return []any{r.Trimmed("project_id"), r.Trimmed("country_id"), r.Trimmed("institution_id"), r.Trimmed("monument_id"), r.Trimmed("detail_id")}
	},
	parentKey: func(r legacydb.Row) string {
		return MonumentDetailKey(r.Trimmed("project_id"), r.Trimmed("country_id"), r.Trimmed("institution_id"),
			r.Trimmed("monument_id"), r.Trimmed("detail_id"))
	},
	partnerKey: func(r legacydb.Row) string { return InstitutionKey(r.Trimmed("institution_id"), r.Trimmed("country_id")) },
}

func (s PictureSource) key(r legacydb.Row) string {
	pk := s.pk(r)
	if s.TypeColumn != "" {
		if t := r.Trimmed(s.TypeColumn); t != "" {
			pk = append(pk, t)
		}
	}
	pk = append(pk, r.Int(s.NumberColumn))
	return key(SchemaMain, s.Table, pk...)
}

// TransformPictures groups picture rows across languages and maps each group.
// Groups without a path are dropped.
func TransformPictures(rows []legacydb.Row, src PictureSource) []PictureRecord {
	var out []PictureRecord
	for _, g := range GroupBy(rows, src.key) {
		first := g.Rows[0]
		path := firstNonEmpty(stringsOf(g.Rows, "path")...)
		if path == "" {
			continue
		}
		number := first.Int(src.NumberColumn)
		pk := src.pk(first)
		legacyType := ""
		if src.TypeColumn != "" {
			legacyType = first.Trimmed(src.TypeColumn)
		}
		projectID, _ := pk[0].(string)

		rec := PictureRecord{
			Key:        g.Key,
			Path:       path,
			Number:     number,
			ParentKey:  src.parentKey(first),
			ProjectKey: ProjectKey(projectID),
			PartnerKey: src.partnerKey(first),
			Item: models.Item{
				Type:                  models.ItemTypePicture,
				InternalName:          fmt.Sprintf("Picture %d for %s", number, joinNonEmpty(":", stringsOfAny(pk)...)),
				BackwardCompatibility: g.Key,
			},
			ParentImage: legacyType == "" && number == 1,
			Artists:     ExtractArtists(first.String("photographer"), models.Artist{}),
		}

		seen := make(map[string]bool)
		for _, r := range g.Rows {
			lang := r.Trimmed(src.LangColumn)
			languageID, err := codes.Language(lang)
			if err != nil {
				rec.Warnings = append(rec.Warnings, fmt.Sprintf("%s:%s - %v", g.Key, lang, err))
				continue
			}
			if seen[languageID] {
				continue
			}
			seen[languageID] = true

			name := "Image " + strconv.Itoa(number)
			extra, _ := BuildExtra("legacy_type", legacyType, "copyright", r.String("copyright"))
			rec.Translations = append(rec.Translations, models.ItemTranslation{
				LanguageID:            languageID,
				Name:                  name,
				Description:           firstNonEmpty(Text(r.String("caption")), name),
				Extra:                 extra,
				BackwardCompatibility: g.Key,
			})
		}
		out = append(out, rec)
	}
	return out
}

func stringsOf(rows []legacydb.Row, col string) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.String(col))
	}
	return out
}

func stringsOfAny(values []any) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, fmt.Sprint(v))
	}
	return out
}

// PartnerImageRecord is one image of a museum or institution.
type PartnerImageRecord struct {
	PartnerKey string
	Path       string
	Number     int
	Caption    string
}

const (
	MuseumPicturesQuery      = "SELECT * FROM mwnf3.museums_pictures ORDER BY museum_id, country, image_number"
	InstitutionPicturesQuery = "SELECT * FROM mwnf3.institutions_pictures ORDER BY institution_id, country, image_number"
)

// TransformPartnerPictures maps museums_pictures or institutions_pictures rows.
// Rows repeating a path already seen are dropped.
func TransformPartnerPictures(rows []legacydb.Row, partnerType string) []PartnerImageRecord {
	var out []PartnerImageRecord
	seen := make(map[string]bool)
	for _, r := range rows {
		path := r.Trimmed("path")
		if path == "" || seen[path] {
			continue
		}
		seen[path] = true
		out = append(out, PartnerImageRecord{
			PartnerKey: PartnerKeyOf(r, partnerType),
			Path:       path,
			Number:     r.Int("image_number"),
			Caption:    Text(r.String("caption")),
		})
	}
	return out
}

// ShPictureSource describes a Sharing History picture table. Captions live in
// a separate texts table sharing its primary key.
type ShPictureSource struct {
	Name         string
	Query        string
	TextsQuery   string
	Table        string
	NumberColumn string
	TypeColumn   string
	pk           func(legacydb.Row) []any
	parentKey    func(legacydb.Row) string
}

var ShMonumentPictures = ShPictureSource{
	Name:         "sh monument",
	Query:        "SELECT * FROM mwnf3_sharing_history.sh_monument_images ORDER BY project_id, country, number, type, image_number",
	TextsQuery:   "SELECT * FROM mwnf3_sharing_history.sh_monument_image_texts ORDER BY project_id, country, number, type, image_number, lang",
	Table:        "sh_monument_images",
	NumberColumn: "image_number",
	TypeColumn:   "type",
	pk: func(r legacydb.Row) []any {
		return []any{r.Trimmed("project_id"), r.Trimmed("country"), r.Trimmed("number")}
	},
	parentKey: ShMonumentKeyOf,
}

var ShMonumentDetailPictures = ShPictureSource{
	Name:         "sh monument detail",
	Query:        "SELECT * FROM mwnf3_sharing_history.sh_monument_detail_pictures ORDER BY project_id, country, number, detail_id, picture_id",
	TextsQuery:   "SELECT * FROM mwnf3_sharing_history.sh_monument_detail_picture_texts ORDER BY project_id, country, number, detail_id, picture_id, lang",
	Table:        "sh_monument_detail_pictures",
	NumberColumn: "picture_id",
	pk: func(r legacydb.Row) []any {
		return []any{r.Trimmed("project_id"), r.Trimmed("country"), r.Trimmed("number"), r.Trimmed("detail_id")}
	},
	parentKey: ShMonumentDetailKeyOf,
}

// key identifies a picture; pictures without a type use "_" in its place.
func (s ShPictureSource) key(r legacydb.Row) string {
	pk := s.pk(r)
	if s.TypeColumn != "" {
		pk = append(pk, firstNonEmpty(r.Trimmed(s.TypeColumn), "_"))
	}
	return key(SchemaSharingHistory, s.Table, append(pk, r.Int(s.NumberColumn))...)
}

// TransformShPictures maps Sharing History picture rows and their caption
// rows. Each caption language becomes a translation named after the caption.
func TransformShPictures(pictures, texts []legacydb.Row, src ShPictureSource) []PictureRecord {
	captions := IndexBy(texts, src.key)
	var out []PictureRecord
	seen := make(map[string]bool)
	for _, p := range pictures {
		k := src.key(p)
		path := p.Trimmed("path")
		if path == "" || seen[k] {
			continue
		}
		seen[k] = true
		number := p.Int(src.NumberColumn)
		legacyType := ""
		if src.TypeColumn != "" {
			legacyType = p.Trimmed(src.TypeColumn)
		}
		rows := captions[k]
		name := "Image " + strconv.Itoa(number)
		internalName := name
		if len(rows) > 0 {
			internalName = firstNonEmpty(Text(rows[0].String("caption")), name)
		}

		rec := PictureRecord{
			Key:        k,
			Path:       path,
			Number:     number,
			ParentKey:  src.parentKey(p),
			ProjectKey: ShProjectKey(p.Trimmed("project_id")),
			Item: models.Item{
				Type:                  models.ItemTypePicture,
				InternalName:          internalName,
				BackwardCompatibility: k,
			},
			ParentImage: legacyType == "" && number == 1,
		}

		langs := make(map[string]bool)
		for _, r := range rows {
			lang := r.Trimmed("lang")
			languageID, err := codes.Language(lang)
			if err != nil {
				rec.Warnings = append(rec.Warnings, fmt.Sprintf("%s:%s - %v", k, lang, err))
				continue
			}
			if langs[languageID] {
				continue
			}
			langs[languageID] = true
			caption := firstNonEmpty(Text(r.String("caption")), name)
			extra, _ := BuildExtra(
				"legacy_type", legacyType,
				"photographer", Text(r.String("photographer")),
				"copyright", r.String("copyright"),
			)
			rec.Translations = append(rec.Translations, models.ItemTranslation{
				LanguageID:            languageID,
				Name:                  caption,
				Description:           caption,
				Extra:                 extra,
				BackwardCompatibility: k,
			})
		}
		out = append(out, rec)
	}
	return out
}

// ImageRecord is a legacy picture written as a plain image of the collection
// or item OwnerKey names.
type ImageRecord struct {
	OwnerKey string
	Path     string
	Number   int
	Caption  string
}

// TransformImages maps picture rows to images. Language rows repeat the
// picture, so only the first row of a path is kept; its caption becomes the
// alt text.
func TransformImages(rows []legacydb.Row, ownerKey func(legacydb.Row) string) []ImageRecord {
	var out []ImageRecord
	seen := make(map[string]bool)
	for _, r := range rows {
		path := r.Trimmed("path")
		folded := strings.ToLower(path)
		if path == "" || seen[folded] {
			continue
		}
		seen[folded] = true
		out = append(out, ImageRecord{
			OwnerKey: ownerKey(r),
			Path:     path,
			Number:   r.Int("image_number"),
			Caption:  Text(r.String("caption")),
		})
	}
	return out
}
