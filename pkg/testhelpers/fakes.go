package testhelpers

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ekaya-inc/heritage-importer/pkg/apperrors"
	"github.com/ekaya-inc/heritage-importer/pkg/legacydb"
	"github.com/ekaya-inc/heritage-importer/pkg/models"
	"github.com/ekaya-inc/heritage-importer/pkg/strategy"
	"github.com/ekaya-inc/heritage-importer/pkg/tracker"
)

// FakeReader serves canned rows keyed by query. Unknown queries return no rows.
type FakeReader struct {
	Rows    map[string][]legacydb.Row
	Errors  map[string]error
	Queries []string
}

var _ legacydb.Reader = (*FakeReader)(nil)

func NewFakeReader() *FakeReader {
	return &FakeReader{Rows: make(map[string][]legacydb.Row), Errors: make(map[string]error)}
}

// On registers the rows returned for query.
func (r *FakeReader) On(query string, rows ...legacydb.Row) *FakeReader {
	r.Rows[query] = append(r.Rows[query], rows...)
	return r
}

func (r *FakeReader) Connect(context.Context) error { return nil }
func (r *FakeReader) Disconnect() error             { return nil }

func (r *FakeReader) Query(_ context.Context, query string, _ ...any) ([]legacydb.Row, error) {
	r.Queries = append(r.Queries, query)
	if err := r.Errors[query]; err != nil {
		return nil, err
	}
	return r.Rows[query], nil
}

func (r *FakeReader) Execute(context.Context, string, ...any) error { return nil }

// Call is one recorded strategy call.
type Call struct {
	Method string
	Data   any
}

// FakeStrategy records writes in memory. Rows carrying a backward compatibility
// key are stored per table so Exists and FindByBackwardCompatibility see them,
// and registered in Tracker like the SQL strategy does.
type FakeStrategy struct {
	mu      sync.Mutex
	Tracker *tracker.Tracker
	Calls   []Call
	// Fail makes the named method return the error.
	Fail   map[string]error
	rows   map[string]map[string]string
	nextID int
}

var _ strategy.WriteStrategy = (*FakeStrategy)(nil)

func NewFakeStrategy(t *tracker.Tracker) *FakeStrategy {
	return &FakeStrategy{Tracker: t, Fail: make(map[string]error), rows: make(map[string]map[string]string)}
}

// Seed stores an existing row, as if written by an earlier run.
func (s *FakeStrategy) Seed(table, key, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(table, key, id)
}

// CallsTo returns the recorded data of every call to method.
func (s *FakeStrategy) CallsTo(method string) []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []any
	for _, c := range s.Calls {
		if c.Method == method {
			out = append(out, c.Data)
		}
	}
	return out
}

func (s *FakeStrategy) put(table, key, id string) {
	if key == "" {
		return
	}
	if s.rows[table] == nil {
		s.rows[table] = make(map[string]string)
	}
	s.rows[table][key] = id
}

func (s *FakeStrategy) record(method string, data any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, Call{Method: method, Data: data})
	return s.Fail[method]
}

// insert records the call and stores the row under key with a generated id,
// or with id when given.
func (s *FakeStrategy) insert(method, table string, entityType tracker.EntityType, key, id string, data any) (string, error) {
	if err := s.record(method, data); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.rows[table][key]; ok && key != "" {
		return "", fmt.Errorf("duplicate %s in %s (id %s): %w", key, table, existing, apperrors.ErrConflict)
	}
	if id == "" {
		s.nextID++
		id = fmt.Sprintf("%s-%d", strings.TrimSuffix(table, "s"), s.nextID)
	}
	s.put(table, key, id)
	if s.Tracker != nil && key != "" {
		s.Tracker.Register(tracker.Record{UUID: id, BackwardCompatibility: key, EntityType: entityType})
	}
	return id, nil
}

// supporting returns the existing id for key instead of failing on duplicates.
func (s *FakeStrategy) supporting(method, table string, entityType tracker.EntityType, key string, data any) (string, error) {
	s.mu.Lock()
	id, ok := s.rows[table][key]
	s.mu.Unlock()
	if ok {
		return id, s.record(method, data)
	}
	return s.insert(method, table, entityType, key, "", data)
}

func (s *FakeStrategy) WriteLanguage(_ context.Context, d models.Language) (string, error) {
	return s.insert("WriteLanguage", strategy.TableLanguages, tracker.Language, d.BackwardCompatibility, d.ID, d)
}

func (s *FakeStrategy) WriteLanguageTranslation(_ context.Context, d models.LanguageTranslation) error {
	_, err := s.insert("WriteLanguageTranslation", strategy.TableLanguageTranslations, tracker.LanguageTranslation, d.BackwardCompatibility, "", d)
	return err
}

func (s *FakeStrategy) WriteCountry(_ context.Context, d models.Country) (string, error) {
	return s.insert("WriteCountry", strategy.TableCountries, tracker.Country, d.BackwardCompatibility, d.ID, d)
}

func (s *FakeStrategy) WriteCountryTranslation(_ context.Context, d models.CountryTranslation) error {
	_, err := s.insert("WriteCountryTranslation", strategy.TableCountryTranslations, tracker.CountryTranslation, d.BackwardCompatibility, "", d)
	return err
}

func (s *FakeStrategy) WriteContext(_ context.Context, d models.Context) (string, error) {
	return s.insert("WriteContext", strategy.TableContexts, tracker.Context, d.BackwardCompatibility, "", d)
}

func (s *FakeStrategy) WriteContextTranslation(_ context.Context, d models.ContextTranslation) error {
	return s.record("WriteContextTranslation", d)
}

func (s *FakeStrategy) WriteCollection(_ context.Context, d models.Collection) (string, error) {
	return s.insert("WriteCollection", strategy.TableCollections, tracker.Collection, d.BackwardCompatibility, "", d)
}

func (s *FakeStrategy) WriteCollectionTranslation(_ context.Context, d models.CollectionTranslation) error {
	_, err := s.insert("WriteCollectionTranslation", strategy.TableCollectionTranslations, tracker.CollectionTranslation, d.BackwardCompatibility, "", d)
	return err
}

func (s *FakeStrategy) WriteProject(_ context.Context, d models.Project) (string, error) {
	return s.insert("WriteProject", strategy.TableProjects, tracker.Project, d.BackwardCompatibility, "", d)
}

func (s *FakeStrategy) WriteProjectTranslation(_ context.Context, d models.ProjectTranslation) error {
	return s.record("WriteProjectTranslation", d)
}

func (s *FakeStrategy) WritePartner(_ context.Context, d models.Partner) (string, error) {
	return s.insert("WritePartner", strategy.TablePartners, tracker.Partner, d.BackwardCompatibility, "", d)
}

func (s *FakeStrategy) WritePartnerTranslation(_ context.Context, d models.PartnerTranslation) error {
	_, err := s.insert("WritePartnerTranslation", strategy.TablePartnerTranslations, tracker.PartnerTranslation, d.BackwardCompatibility, "", d)
	return err
}

func (s *FakeStrategy) WriteItem(_ context.Context, d models.Item) (string, error) {
	return s.insert("WriteItem", strategy.TableItems, tracker.Item, d.BackwardCompatibility, "", d)
}

// Item translations share the item key across languages, so they are not
// stored for lookups.
func (s *FakeStrategy) WriteItemTranslation(_ context.Context, d models.ItemTranslation) error {
	return s.record("WriteItemTranslation", d)
}

func (s *FakeStrategy) WriteTag(_ context.Context, d models.Tag) (string, error) {
	return s.supporting("WriteTag", strategy.TableTags, tracker.Tag, d.BackwardCompatibility, d)
}

func (s *FakeStrategy) WriteAuthor(_ context.Context, d models.Author) (string, error) {
	return s.supporting("WriteAuthor", strategy.TableAuthors, tracker.Author, d.BackwardCompatibility, d)
}

func (s *FakeStrategy) WriteArtist(_ context.Context, d models.Artist) (string, error) {
	return s.supporting("WriteArtist", strategy.TableArtists, tracker.Artist, d.BackwardCompatibility, d)
}

// image stores image rows by path key. Several rows may share a path, the
// first one answers lookups.
func (s *FakeStrategy) image(method, table, key string, d models.Image) (string, error) {
	if err := s.record(method, d); err != nil {
		return "", err
	}
	s.mu.Lock()
	s.nextID++
	id := fmt.Sprintf("image-%d", s.nextID)
	if _, ok := s.rows[table][key]; !ok {
		s.put(table, key, id)
	}
	s.mu.Unlock()
	if s.Tracker != nil {
		s.Tracker.Register(tracker.Record{UUID: id, BackwardCompatibility: key, EntityType: tracker.Image})
	}
	return id, nil
}

func (s *FakeStrategy) WriteItemImage(_ context.Context, d models.Image) (string, error) {
	return s.image("WriteItemImage", strategy.TableItemImages, strategy.ImageKey(d.Path), d)
}

func (s *FakeStrategy) WritePartnerImage(_ context.Context, d models.Image) (string, error) {
	return s.image("WritePartnerImage", strategy.TablePartnerImages, strategy.ImageKey(d.Path), d)
}

func (s *FakeStrategy) WritePartnerLogo(_ context.Context, d models.Image) (string, error) {
	return s.image("WritePartnerLogo", strategy.TablePartnerLogos, strategy.LogoKey(d.Path), d)
}

func (s *FakeStrategy) WriteCollectionImage(_ context.Context, d models.Image) (string, error) {
	return s.image("WriteCollectionImage", strategy.TableCollectionImages, strategy.ImageKey(d.Path), d)
}

func (s *FakeStrategy) WriteGlossary(_ context.Context, d models.Glossary) (string, error) {
	return s.insert("WriteGlossary", strategy.TableGlossaries, tracker.Glossary, d.BackwardCompatibility, "", d)
}

// ignored stores a row written with INSERT IGNORE. Rows repeating a key are
// dropped without error.
func (s *FakeStrategy) ignored(method, table, key string, data any) error {
	if err := s.record(method, data); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[table][key]; !ok {
		s.nextID++
		s.put(table, key, fmt.Sprintf("%s-%d", strings.TrimSuffix(table, "s"), s.nextID))
	}
	return nil
}

func (s *FakeStrategy) WriteGlossaryTranslation(_ context.Context, d models.GlossaryTranslation) error {
	return s.ignored("WriteGlossaryTranslation", strategy.TableGlossaryTranslations, d.BackwardCompatibility, d)
}

func (s *FakeStrategy) WriteGlossarySpelling(_ context.Context, d models.GlossarySpelling) error {
	return s.ignored("WriteGlossarySpelling", strategy.TableGlossarySpellings, d.BackwardCompatibility, d)
}

func (s *FakeStrategy) WriteTheme(_ context.Context, d models.Theme) (string, error) {
	return s.insert("WriteTheme", strategy.TableThemes, tracker.Theme, d.BackwardCompatibility, "", d)
}

func (s *FakeStrategy) WriteThemeTranslation(_ context.Context, d models.ThemeTranslation) error {
	_, err := s.insert("WriteThemeTranslation", strategy.TableThemeTranslations, tracker.ThemeTranslation, d.BackwardCompatibility, "", d)
	return err
}

func (s *FakeStrategy) WriteItemItemLink(_ context.Context, d models.ItemItemLink) (string, error) {
	return s.insert("WriteItemItemLink", strategy.TableItemItemLinks, tracker.ItemItemLink, d.BackwardCompatibility, "", d)
}

func (s *FakeStrategy) WriteItemItemLinkTranslation(_ context.Context, d models.ItemItemLinkTranslation) error {
	_, err := s.insert("WriteItemItemLinkTranslation", strategy.TableItemItemLinkTranslations, tracker.ItemItemLinkTranslation, d.BackwardCompatibility, "", d)
	return err
}

// PartnerMonument is the data recorded for UpdatePartnerMonument.
type PartnerMonument struct{ PartnerID, ItemID string }

func (s *FakeStrategy) UpdatePartnerMonument(_ context.Context, partnerID, itemID string) error {
	return s.record("UpdatePartnerMonument", PartnerMonument{partnerID, itemID})
}

// Attachment is the data recorded for the Attach methods.
type Attachment struct {
	OwnerID string
	IDs     []string
	Type    string
}

func (s *FakeStrategy) AttachTagsToItem(_ context.Context, itemID string, tagIDs []string) error {
	return s.record("AttachTagsToItem", Attachment{OwnerID: itemID, IDs: tagIDs})
}

func (s *FakeStrategy) AttachArtistsToItem(_ context.Context, itemID string, artistIDs []string) error {
	return s.record("AttachArtistsToItem", Attachment{OwnerID: itemID, IDs: artistIDs})
}

func (s *FakeStrategy) AttachItemsToCollection(_ context.Context, collectionID string, itemIDs []string) error {
	return s.record("AttachItemsToCollection", Attachment{OwnerID: collectionID, IDs: itemIDs})
}

func (s *FakeStrategy) AttachPartnersToCollection(_ context.Context, collectionID string, partnerIDs []string, collectionType string) error {
	return s.record("AttachPartnersToCollection", Attachment{OwnerID: collectionID, IDs: partnerIDs, Type: collectionType})
}

func (s *FakeStrategy) Exists(ctx context.Context, table, key string) (bool, error) {
	_, err := s.FindByBackwardCompatibility(ctx, table, key)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (s *FakeStrategy) FindByBackwardCompatibility(_ context.Context, table, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.rows[table][key]; ok {
		return id, nil
	}
	return "", fmt.Errorf("%s %s: %w", table, key, apperrors.ErrNotFound)
}
