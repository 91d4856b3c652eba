package importers

import (
	"context"
	"fmt"
	"strings"
)

// Phase groups importers for reporting.
type Phase struct {
	Number int
	Name   string
}

func (p Phase) String() string { return fmt.Sprintf("%02d %s", p.Number, p.Name) }

var (
	PhaseReference       = Phase{0, "Reference"}
	PhaseCore            = Phase{1, "Core"}
	PhaseImages          = Phase{2, "Images"}
	PhaseSharingHistory  = Phase{3, "Sharing History"}
	PhaseGlossary        = Phase{4, "Glossary"}
	PhaseThematicGallery = Phase{5, "Thematic Gallery"}
	PhaseExplore         = Phase{6, "Explore"}
	PhaseTravels         = Phase{7, "Travels"}
	PhaseLinking         = Phase{11, "Linking"}
	PhaseOther           = Phase{99, "Other"}
)

// Entry describes one registered importer.
type Entry struct {
	Key          string
	Name         string
	Description  string
	Dependencies []string
	New          func(*Context) Importer
}

// Registry returns the importers in execution order.
func Registry() []Entry {
	return []Entry{
		{"language", "Languages", "Bundled language reference data", nil,
			func(c *Context) Importer { return NewLanguageImporter(c) }},
		{"language-translation", "Language translations", "Language names in every language", []string{"language"},
			func(c *Context) Importer { return NewLanguageTranslationImporter(c) }},
		{"country", "Countries", "Bundled country reference data", nil,
			func(c *Context) Importer { return NewCountryImporter(c) }},
		{"country-translation", "Country translations", "Country names in every language", []string{"country", "language"},
			func(c *Context) Importer { return NewCountryTranslationImporter(c) }},
		{"default-context", "Default context", "Context shared by content outside any project", nil,
			func(c *Context) Importer { return NewDefaultContextImporter(c) }},

		{"project", "Projects", "Projects with their context and root collection", []string{"language"},
			func(c *Context) Importer { return NewProjectImporter(c) }},
		{"partner", "Partners", "Museums and institutions", []string{"country", "project", "default-context"},
			func(c *Context) Importer {
				return newSequence("partner", NewMuseumImporter(c), NewInstitutionImporter(c))
			}},
		{"object", "Objects", "Objects with translations, tags and artists", []string{"project", "partner"},
			func(c *Context) Importer { return NewObjectImporter(c) }},
		{"monument", "Monuments", "Monuments with translations, tags and artists", []string{"project", "partner"},
			func(c *Context) Importer { return NewMonumentImporter(c) }},
		{"monument-detail", "Monument details", "Details of monuments", []string{"monument"},
			func(c *Context) Importer { return NewMonumentDetailImporter(c) }},
		{"item-item-link", "Item links", "Links between objects and monuments", []string{"object", "monument", "default-context"},
			func(c *Context) Importer { return NewItemItemLinkImporter(c) }},

		{"object-picture", "Object pictures", "Picture items of objects", []string{"object"},
			func(c *Context) Importer { return NewObjectPictureImporter(c) }},
		{"monument-picture", "Monument pictures", "Picture items of monuments", []string{"monument"},
			func(c *Context) Importer { return NewMonumentPictureImporter(c) }},
		{"monument-detail-picture", "Monument detail pictures", "Picture items of monument details", []string{"monument-detail"},
			func(c *Context) Importer { return NewMonumentDetailPictureImporter(c) }},
		{"partner-picture", "Partner pictures", "Images of museums and institutions", []string{"partner"},
			func(c *Context) Importer {
				return newSequence("partner-picture", NewMuseumPictureImporter(c), NewInstitutionPictureImporter(c))
			}},
		{"partner-logo", "Partner logos", "Logos of museums and institutions", []string{"partner"},
			func(c *Context) Importer {
				return newSequence("partner-logo", NewMuseumLogoImporter(c), NewInstitutionLogoImporter(c))
			}},

		{"sh-project", "Sharing History projects", "Sharing History projects with context and root collection", []string{"language"},
			func(c *Context) Importer { return NewShProjectImporter(c) }},
		{"sh-partner", "Sharing History partners", "Sharing History partners and their logos", []string{"country", "default-context"},
			func(c *Context) Importer {
				return newSequence("sh-partner", NewShPartnerImporter(c), NewShPartnerLogoImporter(c))
			}},
		{"sh-object", "Sharing History objects", "Sharing History objects", []string{"sh-project", "sh-partner"},
			func(c *Context) Importer { return NewShObjectImporter(c) }},
		{"sh-monument", "Sharing History monuments", "Sharing History monuments", []string{"sh-project", "sh-partner"},
			func(c *Context) Importer { return NewShMonumentImporter(c) }},
		{"sh-monument-detail", "Sharing History monument details", "Details of Sharing History monuments", []string{"sh-monument"},
			func(c *Context) Importer { return NewShMonumentDetailImporter(c) }},
		{"sh-monument-picture", "Sharing History monument pictures", "Picture items of Sharing History monuments", []string{"sh-monument"},
			func(c *Context) Importer { return NewShMonumentPictureImporter(c) }},
		{"sh-monument-detail-picture", "Sharing History detail pictures", "Picture items of Sharing History monument details", []string{"sh-monument-detail"},
			func(c *Context) Importer { return NewShMonumentDetailPictureImporter(c) }},

		{"glossary", "Glossary", "Glossary words", nil,
			func(c *Context) Importer { return NewGlossaryImporter(c) }},
		{"glossary-translation", "Glossary definitions", "Definitions of glossary words", []string{"glossary", "language"},
			func(c *Context) Importer { return NewGlossaryTranslationImporter(c) }},
		{"glossary-spelling", "Glossary spellings", "Spellings of glossary words", []string{"glossary", "language"},
			func(c *Context) Importer { return NewGlossarySpellingImporter(c) }},

		{"thg-root-collections", "Gallery roots", "Root collections of galleries and exhibitions", []string{"default-context"},
			func(c *Context) Importer { return NewThematicRootsImporter(c) }},
		{"thg-gallery", "Galleries", "Thematic galleries", []string{"thg-root-collections", "sh-project"},
			func(c *Context) Importer { return NewGalleryImporter(c) }},
		{"thg-theme", "Themes", "Gallery themes", []string{"thg-gallery"},
			func(c *Context) Importer { return NewThemeImporter(c) }},
		{"thg-theme-translation", "Theme translations", "Gallery theme texts", []string{"thg-theme"},
			func(c *Context) Importer { return NewThemeTranslationImporter(c) }},
		{"thg-theme-item", "Theme items", "Items shown in galleries", []string{"thg-theme", "object", "monument", "sh-object", "sh-monument"},
			func(c *Context) Importer { return NewThemeItemImporter(c) }},
		{"thg-item-related", "Theme item links", "Links between items shown in the same theme", []string{"thg-theme-item"},
			func(c *Context) Importer { return NewThemeItemLinkImporter(c) }},

		{"explore-root-collections", "Explore roots", "Explore context and root collections", nil,
			func(c *Context) Importer { return NewExploreRootsImporter(c) }},
		{"explore-country", "Explore countries", "Countries holding Explore locations", []string{"explore-root-collections", "country"},
			func(c *Context) Importer { return NewExploreCountryImporter(c) }},
		{"explore-location", "Explore locations", "Explore locations", []string{"explore-country"},
			func(c *Context) Importer { return NewExploreLocationImporter(c) }},
		{"explore-monument", "Explore monuments", "Explore monuments", []string{"explore-location"},
			func(c *Context) Importer { return NewExploreMonumentImporter(c) }},
		{"explore-thematiccycle", "Explore themes", "Thematic cycles", []string{"explore-root-collections"},
			func(c *Context) Importer { return NewExploreThematicCycleImporter(c) }},
		{"explore-itinerary", "Explore itineraries", "Itineraries through thematic cycles", []string{"explore-root-collections"},
			func(c *Context) Importer { return NewExploreItineraryImporter(c) }},
		{"explore-location-picture", "Explore location pictures", "Images of Explore locations", []string{"explore-location"},
			func(c *Context) Importer { return NewExploreLocationPictureImporter(c) }},
		{"explore-monument-picture", "Explore monument pictures", "Images of Explore monuments", []string{"explore-monument"},
			func(c *Context) Importer { return NewExploreMonumentPictureImporter(c) }},
		{"explore-thematiccycle-picture", "Explore theme pictures", "Images of thematic cycles", []string{"explore-thematiccycle"},
			func(c *Context) Importer { return NewExploreThematicCyclePictureImporter(c) }},

		{"travels-trail", "Trails", "Travels context, root and exhibition trails", []string{"country"},
			func(c *Context) Importer { return NewTrailImporter(c) }},
		{"travels-itinerary", "Itineraries", "Trail itineraries", []string{"travels-trail"},
			func(c *Context) Importer { return NewItineraryImporter(c) }},
		{"travels-location", "Travel locations", "Itinerary locations", []string{"travels-itinerary"},
			func(c *Context) Importer { return NewTravelLocationImporter(c) }},
		{"travels-monument", "Travel monuments", "Monuments along itineraries", []string{"travels-location"},
			func(c *Context) Importer { return NewTravelMonumentImporter(c) }},
		{"travels-trail-picture", "Trail pictures", "Images of exhibition trails", []string{"travels-trail"},
			func(c *Context) Importer { return NewTrailPictureImporter(c) }},
		{"travels-location-picture", "Travel location pictures", "Images of itinerary locations", []string{"travels-location"},
			func(c *Context) Importer { return NewTravelLocationPictureImporter(c) }},

		{"partner-monument-linker", "Partner monuments", "Links museums to the monument housing them", []string{"partner", "monument"},
			func(c *Context) Importer { return NewPartnerMonumentLinker(c) }},
	}
}

var phaseByPrefix = []struct {
	prefix string
	phase  Phase
}{
	{"sh-", PhaseSharingHistory},
	{"thg-", PhaseThematicGallery},
	{"explore-", PhaseExplore},
	{"travels-", PhaseTravels},
	{"glossary", PhaseGlossary},
}

var phaseByKey = map[string]Phase{
	"language":                PhaseReference,
	"language-translation":    PhaseReference,
	"country":                 PhaseReference,
	"country-translation":     PhaseReference,
	"default-context":         PhaseReference,
	"project":                 PhaseCore,
	"partner":                 PhaseCore,
	"object":                  PhaseCore,
	"monument":                PhaseCore,
	"monument-detail":         PhaseCore,
	"item-item-link":          PhaseCore,
	"object-picture":          PhaseImages,
	"monument-picture":        PhaseImages,
	"monument-detail-picture": PhaseImages,
	"partner-picture":         PhaseImages,
	"partner-logo":            PhaseImages,
	"partner-monument-linker": PhaseLinking,
}

// PhaseOf classifies an importer key.
func PhaseOf(key string) Phase {
	if p, ok := phaseByKey[key]; ok {
		return p
	}
	for _, p := range phaseByPrefix {
		if strings.HasPrefix(key, p.prefix) {
			return p.phase
		}
	}
	return PhaseOther
}

// ValidateDependencies checks that every dependency is registered before the
// entry needing it. It does not reorder entries.
func ValidateDependencies(entries []Entry) error {
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		for _, dep := range e.Dependencies {
			if !seen[dep] {
				return fmt.Errorf("importer %s depends on %s, which is not registered before it", e.Key, dep)
			}
		}
		seen[e.Key] = true
	}
	return nil
}

// sequence runs several importers under one key and merges their results.
type sequence struct {
	name  string
	parts []Importer
}

func newSequence(name string, parts ...Importer) *sequence {
	return &sequence{name: name, parts: parts}
}

func (s *sequence) Name() string { return s.name }

func (s *sequence) Import(ctx context.Context) Result {
	out := Result{Success: true, Errors: []string{}, Warnings: []string{}}
	for _, p := range s.parts {
		if err := ctx.Err(); err != nil {
			out.Errors = append(out.Errors, fmt.Sprintf("%s: %v", p.Name(), err))
			break
		}
		r := p.Import(ctx)
		out.Imported += r.Imported
		out.Skipped += r.Skipped
		out.Errors = append(out.Errors, r.Errors...)
		out.Warnings = append(out.Warnings, r.Warnings...)
	}
	out.Success = len(out.Errors) == 0
	return out
}
