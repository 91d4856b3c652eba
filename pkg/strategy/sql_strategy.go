package strategy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ekaya-inc/heritage-importer/pkg/adapters/datasource"
	"github.com/ekaya-inc/heritage-importer/pkg/apperrors"
	"github.com/ekaya-inc/heritage-importer/pkg/models"
	"github.com/ekaya-inc/heritage-importer/pkg/tracker"
)

// Executor runs statements against the target database. database.ResilientConn
// satisfies it. QueryValue returns apperrors.ErrNotFound when no row matches.
type Executor interface {
	Execute(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryValue(ctx context.Context, dest any, query string, args ...any) error
}

// SQLStrategy writes entities with parameterized INSERT statements.
type SQLStrategy struct {
	exec    Executor
	dialect datasource.Dialect
	tracker *tracker.Tracker
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string
}

var _ WriteStrategy = (*SQLStrategy)(nil)

// NewSQLStrategy creates a strategy writing through exec in dialect's SQL.
func NewSQLStrategy(exec Executor, dialect datasource.Dialect, t *tracker.Tracker, logger *zap.Logger) *SQLStrategy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLStrategy{
		exec:    exec,
		dialect: dialect,
		tracker: t,
		logger:  logger.Named("sql-strategy"),
		now:     func() time.Time { return time.Now().UTC().Truncate(time.Second) },
		newID:   uuid.NewString,
	}
}

type column struct {
	name  string
	value any
}

type row []column

func (s *SQLStrategy) insertRow(ctx context.Context, table string, r row, ignore bool) error {
	now := s.now()
	r = append(r, column{"created_at", now}, column{"updated_at", now})

	cols := make([]string, len(r))
	args := make([]any, len(r))
	for i, c := range r {
		cols[i] = c.name
		if str, ok := c.value.(string); ok {
			args[i] = sanitize(str)
		} else {
			args[i] = c.value
		}
	}

	query := s.dialect.Insert(table, cols)
	if ignore {
		query = s.dialect.InsertIgnore(table, cols)
	}
	if _, err := s.exec.Execute(ctx, query, args...); err != nil {
		if ignore && s.dialect.IsDuplicate(err) {
			return nil
		}
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return nil
}

func (s *SQLStrategy) register(key, id string, entityType tracker.EntityType) {
	if key == "" {
		return
	}
	s.tracker.Register(tracker.Record{UUID: id, BackwardCompatibility: key, EntityType: entityType})
}

// insertEntity inserts r under a new id and registers it under key.
func (s *SQLStrategy) insertEntity(ctx context.Context, table string, entityType tracker.EntityType, key string, r row) (string, error) {
	id := s.newID()
	if err := s.insertRow(ctx, table, append(row{{"id", id}}, r...), false); err != nil {
		return "", err
	}
	s.register(key, id, entityType)
	return id, nil
}

func (s *SQLStrategy) WriteLanguage(ctx context.Context, data models.Language) (string, error) {
	err := s.insertRow(ctx, TableLanguages, row{
		{"id", data.ID},
		{"internal_name", data.InternalName},
		{"backward_compatibility", nullable(data.BackwardCompatibility)},
		{"is_default", data.IsDefault},
	}, false)
	if err != nil {
		return "", err
	}
	s.register(data.BackwardCompatibility, data.ID, tracker.Language)
	return data.ID, nil
}

func (s *SQLStrategy) WriteLanguageTranslation(ctx context.Context, data models.LanguageTranslation) error {
	_, err := s.insertEntity(ctx, TableLanguageTranslations, tracker.LanguageTranslation, data.BackwardCompatibility, row{
		{"language_id", data.LanguageID},
		{"display_language_id", data.DisplayLanguageID},
		{"name", data.Name},
		{"backward_compatibility", nullable(data.BackwardCompatibility)},
	})
	return err
}

func (s *SQLStrategy) WriteCountry(ctx context.Context, data models.Country) (string, error) {
	err := s.insertRow(ctx, TableCountries, row{
		{"id", data.ID},
		{"internal_name", data.InternalName},
		{"backward_compatibility", nullable(data.BackwardCompatibility)},
	}, false)
	if err != nil {
		return "", err
	}
	s.register(data.BackwardCompatibility, data.ID, tracker.Country)
	return data.ID, nil
}

func (s *SQLStrategy) WriteCountryTranslation(ctx context.Context, data models.CountryTranslation) error {
	_, err := s.insertEntity(ctx, TableCountryTranslations, tracker.CountryTranslation, data.BackwardCompatibility, row{
		{"country_id", data.CountryID},
		{"language_id", data.LanguageID},
		{"name", data.Name},
		{"backward_compatibility", nullable(data.BackwardCompatibility)},
	})
	return err
}

func (s *SQLStrategy) WriteContext(ctx context.Context, data models.Context) (string, error) {
	return s.insertEntity(ctx, TableContexts, tracker.Context, data.BackwardCompatibility, row{
		{"internal_name", data.InternalName},
		{"is_default", data.IsDefault},
		{"backward_compatibility", nullable(data.BackwardCompatibility)},
	})
}

// WriteContextTranslation is accepted and dropped; contexts are not translated in the target.
func (s *SQLStrategy) WriteContextTranslation(ctx context.Context, data models.ContextTranslation) error {
	s.logger.Debug("Context translation not persisted",
		zap.String("context_id", data.ContextID),
		zap.String("language_id", data.LanguageID))
	return nil
}

func (s *SQLStrategy) WriteCollection(ctx context.Context, data models.Collection) (string, error) {
	collectionType := data.Type
	if collectionType == "" {
		collectionType = models.CollectionTypeCollection
	}
	return s.insertEntity(ctx, TableCollections, tracker.Collection, data.BackwardCompatibility, row{
		{"context_id", nullable(data.ContextID)},
		{"language_id", nullable(data.LanguageID)},
		{"parent_id", nullable(data.ParentID)},
		{"type", collectionType},
		{"internal_name", data.InternalName},
		{"backward_compatibility", nullable(data.BackwardCompatibility)},
		{"latitude", nullableFloat(data.Latitude)},
		{"longitude", nullableFloat(data.Longitude)},
		{"map_zoom", nullableInt(data.MapZoom)},
		{"country_id", nullable(data.CountryID)},
	})
}

func (s *SQLStrategy) WriteCollectionTranslation(ctx context.Context, data models.CollectionTranslation) error {
	_, err := s.insertEntity(ctx, TableCollectionTranslations, tracker.CollectionTranslation, data.BackwardCompatibility, row{
		{"collection_id", data.CollectionID},
		{"language_id", data.LanguageID},
		{"context_id", data.ContextID},
		{"title", data.Title},
		{"description", nullable(data.Description)},
		{"quote", nullable(data.Quote)},
		{"backward_compatibility", nullable(data.BackwardCompatibility)},
	})
	return err
}

func (s *SQLStrategy) WriteProject(ctx context.Context, data models.Project) (string, error) {
	return s.insertEntity(ctx, TableProjects, tracker.Project, data.BackwardCompatibility, row{
		{"internal_name", data.InternalName},
		{"context_id", nullable(data.ContextID)},
		{"language_id", nullable(data.LanguageID)},
		{"launch_date", nullable(data.LaunchDate)},
		{"is_launched", data.IsLaunched},
		{"is_enabled", data.IsEnabled},
		{"backward_compatibility", nullable(data.BackwardCompatibility)},
	})
}

// WriteProjectTranslation is accepted and dropped; project names are stored as
// collection translations.
func (s *SQLStrategy) WriteProjectTranslation(ctx context.Context, data models.ProjectTranslation) error {
	s.logger.Debug("Project translation not persisted",
		zap.String("project_id", data.ProjectID),
		zap.String("language_id", data.LanguageID))
	return nil
}

func (s *SQLStrategy) WritePartner(ctx context.Context, data models.Partner) (string, error) {
	mapZoom := models.DefaultPartnerMapZoom
	if data.MapZoom != nil {
		mapZoom = *data.MapZoom
	}
	return s.insertEntity(ctx, TablePartners, tracker.Partner, data.BackwardCompatibility, row{
		{"type", data.Type},
		{"internal_name", data.InternalName},
		{"backward_compatibility", nullable(data.BackwardCompatibility)},
		{"country_id", nullable(data.CountryID)},
		{"latitude", nullableFloat(data.Latitude)},
		{"longitude", nullableFloat(data.Longitude)},
		{"map_zoom", mapZoom},
		{"project_id", nullable(data.ProjectID)},
		{"monument_item_id", nullable(data.MonumentItemID)},
		{"visible", data.Visible},
	})
}

func (s *SQLStrategy) WritePartnerTranslation(ctx context.Context, data models.PartnerTranslation) error {
	_, err := s.insertEntity(ctx, TablePartnerTranslations, tracker.PartnerTranslation, data.BackwardCompatibility, row{
		{"partner_id", data.PartnerID},
		{"language_id", data.LanguageID},
		{"context_id", data.ContextID},
		{"name", data.Name},
		{"description", nullable(data.Description)},
		{"city_display", nullable(data.CityDisplay)},
		{"contact_website", nullable(data.ContactWebsite)},
		{"contact_phone", nullable(data.ContactPhone)},
		{"contact_email_general", nullable(data.ContactEmailGeneral)},
		{"extra", nullable(data.Extra)},
		{"backward_compatibility", nullable(data.BackwardCompatibility)},
	})
	return err
}

func (s *SQLStrategy) WriteItem(ctx context.Context, data models.Item) (string, error) {
	return s.insertEntity(ctx, TableItems, tracker.Item, data.BackwardCompatibility, row{
		{"partner_id", nullable(data.PartnerID)},
		{"collection_id", nullable(data.CollectionID)},
		{"parent_id", nullable(data.ParentID)},
		{"internal_name", data.InternalName},
		{"type", data.Type},
		{"country_id", nullable(data.CountryID)},
		{"project_id", nullable(data.ProjectID)},
		{"owner_reference", nullable(data.OwnerReference)},
		{"mwnf_reference", nullable(data.MwnfReference)},
		{"latitude", nullableFloat(data.Latitude)},
		{"longitude", nullableFloat(data.Longitude)},
		{"map_zoom", nullableInt(data.MapZoom)},
		{"backward_compatibility", nullable(data.BackwardCompatibility)},
	})
}

func (s *SQLStrategy) WriteItemTranslation(ctx context.Context, data models.ItemTranslation) error {
	_, err := s.insertEntity(ctx, TableItemTranslations, tracker.ItemTranslation, data.BackwardCompatibility, row{
		{"item_id", data.ItemID},
		{"language_id", data.LanguageID},
		{"context_id", data.ContextID},
		{"name", data.Name},
		{"alternate_name", nullable(data.AlternateName)},
		{"description", data.Description},
		{"type", nullable(data.Type)},
		{"holder", nullable(data.Holder)},
		{"owner", nullable(data.Owner)},
		{"initial_owner", nullable(data.InitialOwner)},
		{"dates", nullable(data.Dates)},
		{"location", nullable(data.Location)},
		{"dimensions", nullable(data.Dimensions)},
		{"place_of_production", nullable(data.PlaceOfProduction)},
		{"method_for_datation", nullable(data.MethodForDatation)},
		{"method_for_provenance", nullable(data.MethodForProvenance)},
		{"obtention", nullable(data.Obtention)},
		{"bibliography", nullable(data.Bibliography)},
		{"author_id", nullable(data.AuthorID)},
		{"text_copy_editor_id", nullable(data.TextCopyEditorID)},
		{"translator_id", nullable(data.TranslatorID)},
		{"translation_copy_editor_id", nullable(data.TranslationCopyEditorID)},
		{"extra", nullable(data.Extra)},
		{"backward_compatibility", nullable(data.BackwardCompatibility)},
	})
	return err
}

// writeSupporting inserts a tag, author or artist. A duplicate key resolves to
// the row already holding it.
func (s *SQLStrategy) writeSupporting(ctx context.Context, kind, table string, entityType tracker.EntityType, key string, r row) (string, error) {
	if id, ok := s.tracker.GetUUID(key, entityType); ok {
		return id, nil
	}

	id, err := s.insertEntity(ctx, table, entityType, key, r)
	if err == nil {
		return id, nil
	}

	if s.dialect.IsDuplicate(err) {
		if existing, findErr := s.FindByBackwardCompatibility(ctx, table, key); findErr == nil {
			s.logger.Debug("Reusing existing "+kind, zap.String("key", key), zap.String("id", existing))
			return existing, nil
		}
	}
	return "", fmt.Errorf("Failed to create or find %s: %s. Original error: %w", kind, key, err)
}

func (s *SQLStrategy) WriteTag(ctx context.Context, data models.Tag) (string, error) {
	return s.writeSupporting(ctx, "tag", TableTags, tracker.Tag, data.BackwardCompatibility, row{
		{"internal_name", data.InternalName},
		{"category", nullable(data.Category)},
		{"language_id", nullable(data.LanguageID)},
		{"description", data.Description},
		{"backward_compatibility", nullable(data.BackwardCompatibility)},
	})
}

func (s *SQLStrategy) WriteAuthor(ctx context.Context, data models.Author) (string, error) {
	return s.writeSupporting(ctx, "author", TableAuthors, tracker.Author, data.BackwardCompatibility, row{
		{"name", data.Name},
		{"internal_name", nullable(data.InternalName)},
		{"backward_compatibility", nullable(data.BackwardCompatibility)},
	})
}

func (s *SQLStrategy) WriteArtist(ctx context.Context, data models.Artist) (string, error) {
	return s.writeSupporting(ctx, "artist", TableArtists, tracker.Artist, data.BackwardCompatibility, row{
		{"name", data.Name},
		{"internal_name", nullable(data.InternalName)},
		{"place_of_birth", nullable(data.PlaceOfBirth)},
		{"place_of_death", nullable(data.PlaceOfDeath)},
		{"date_of_birth", nullable(data.DateOfBirth)},
		{"date_of_death", nullable(data.DateOfDeath)},
		{"period_of_activity", nullable(data.PeriodOfActivity)},
		{"backward_compatibility", nullable(data.BackwardCompatibility)},
	})
}

// ImageKey is the tracker key of an image row: its lower-cased legacy path.
func ImageKey(legacyPath string) string {
	return strings.ToLower(legacyPath)
}

// LogoKey is the tracker key of a partner logo row.
func LogoKey(legacyPath string) string {
	return "logo:" + strings.ToLower(legacyPath)
}

func (s *SQLStrategy) writeImage(ctx context.Context, table, parentColumn, key string, data models.Image, extra ...column) (string, error) {
	id := data.ID
	if id == "" {
		id = s.newID()
	}
	r := row{
		{"id", id},
		{parentColumn, data.ParentID},
		{"path", data.Path},
		{"original_name", data.OriginalName},
		{"mime_type", data.MimeType},
		{"size", data.Size},
	}
	r = append(r, extra...)
	r = append(r,
		column{"alt_text", nullable(data.AltText)},
		column{"display_order", data.DisplayOrder},
		column{"backward_compatibility", nullable(key)},
	)

	if err := s.insertRow(ctx, table, r, false); err != nil {
		return "", err
	}
	s.register(key, id, tracker.Image)
	return id, nil
}

func (s *SQLStrategy) WriteItemImage(ctx context.Context, data models.Image) (string, error) {
	return s.writeImage(ctx, TableItemImages, "item_id", ImageKey(data.Path), data)
}

func (s *SQLStrategy) WritePartnerImage(ctx context.Context, data models.Image) (string, error) {
	return s.writeImage(ctx, TablePartnerImages, "partner_id", ImageKey(data.Path), data)
}

func (s *SQLStrategy) WritePartnerLogo(ctx context.Context, data models.Image) (string, error) {
	logoType := data.LogoType
	if logoType == "" {
		logoType = "primary"
	}
	return s.writeImage(ctx, TablePartnerLogos, "partner_id", LogoKey(data.Path), data, column{"logo_type", logoType})
}

func (s *SQLStrategy) WriteCollectionImage(ctx context.Context, data models.Image) (string, error) {
	return s.writeImage(ctx, TableCollectionImages, "collection_id", ImageKey(data.Path), data)
}

func (s *SQLStrategy) WriteGlossary(ctx context.Context, data models.Glossary) (string, error) {
	return s.insertEntity(ctx, TableGlossaries, tracker.Glossary, data.BackwardCompatibility, row{
		{"internal_name", data.InternalName},
		{"backward_compatibility", nullable(data.BackwardCompatibility)},
	})
}

func (s *SQLStrategy) WriteGlossaryTranslation(ctx context.Context, data models.GlossaryTranslation) error {
	return s.insertRow(ctx, TableGlossaryTranslations, row{
		{"id", s.newID()},
		{"glossary_id", data.GlossaryID},
		{"language_id", data.LanguageID},
		{"definition", data.Definition},
		{"backward_compatibility", nullable(data.BackwardCompatibility)},
	}, true)
}

func (s *SQLStrategy) WriteGlossarySpelling(ctx context.Context, data models.GlossarySpelling) error {
	return s.insertRow(ctx, TableGlossarySpellings, row{
		{"id", s.newID()},
		{"glossary_id", data.GlossaryID},
		{"language_id", data.LanguageID},
		{"spelling", data.Spelling},
		{"backward_compatibility", nullable(data.BackwardCompatibility)},
	}, true)
}

func (s *SQLStrategy) WriteTheme(ctx context.Context, data models.Theme) (string, error) {
	return s.insertEntity(ctx, TableThemes, tracker.Theme, data.BackwardCompatibility, row{
		{"collection_id", data.CollectionID},
		{"parent_id", nullable(data.ParentID)},
		{"display_order", data.DisplayOrder},
		{"internal_name", data.InternalName},
		{"backward_compatibility", nullable(data.BackwardCompatibility)},
	})
}

func (s *SQLStrategy) WriteThemeTranslation(ctx context.Context, data models.ThemeTranslation) error {
	_, err := s.insertEntity(ctx, TableThemeTranslations, tracker.ThemeTranslation, data.BackwardCompatibility, row{
		{"theme_id", data.ThemeID},
		{"language_id", data.LanguageID},
		{"context_id", data.ContextID},
		{"title", data.Title},
		{"description", nullable(data.Description)},
		{"introduction", nullable(data.Introduction)},
		{"backward_compatibility", nullable(data.BackwardCompatibility)},
	})
	return err
}

func (s *SQLStrategy) WriteItemItemLink(ctx context.Context, data models.ItemItemLink) (string, error) {
	return s.insertEntity(ctx, TableItemItemLinks, tracker.ItemItemLink, data.BackwardCompatibility, row{
		{"source_id", data.SourceID},
		{"target_id", data.TargetID},
		{"context_id", data.ContextID},
		{"backward_compatibility", nullable(data.BackwardCompatibility)},
	})
}

func (s *SQLStrategy) WriteItemItemLinkTranslation(ctx context.Context, data models.ItemItemLinkTranslation) error {
	_, err := s.insertEntity(ctx, TableItemItemLinkTranslations, tracker.ItemItemLinkTranslation, data.BackwardCompatibility, row{
		{"item_item_link_id", data.ItemItemLinkID},
		{"language_id", data.LanguageID},
		{"description", nullable(data.Description)},
		{"reciprocal_description", nullable(data.ReciprocalDescription)},
		{"backward_compatibility", nullable(data.BackwardCompatibility)},
	})
	return err
}

func (s *SQLStrategy) UpdatePartnerMonument(ctx context.Context, partnerID, itemID string) error {
	query := s.dialect.Rebind("UPDATE partners SET monument_item_id = ?, updated_at = ? WHERE id = ?")
	if _, err := s.exec.Execute(ctx, query, itemID, s.now(), partnerID); err != nil {
		return fmt.Errorf("failed to link partner %s to monument %s: %w", partnerID, itemID, err)
	}
	return nil
}

// attach inserts (owner, related) pivot rows, skipping empty and repeated ids.
func (s *SQLStrategy) attach(ctx context.Context, table, ownerColumn, ownerID, relatedColumn string, relatedIDs []string, extra ...column) error {
	seen := make(map[string]bool, len(relatedIDs))
	for _, relatedID := range relatedIDs {
		if relatedID == "" || seen[relatedID] {
			continue
		}
		seen[relatedID] = true

		r := row{{ownerColumn, ownerID}}
		r = append(r, extra...)
		r = append(r, column{relatedColumn, relatedID})
		if err := s.insertRow(ctx, table, r, true); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLStrategy) AttachTagsToItem(ctx context.Context, itemID string, tagIDs []string) error {
	return s.attach(ctx, "item_tag", "item_id", itemID, "tag_id", tagIDs)
}

func (s *SQLStrategy) AttachArtistsToItem(ctx context.Context, itemID string, artistIDs []string) error {
	return s.attach(ctx, "artist_item", "item_id", itemID, "artist_id", artistIDs)
}

func (s *SQLStrategy) AttachItemsToCollection(ctx context.Context, collectionID string, itemIDs []string) error {
	return s.attach(ctx, "collection_item", "collection_id", collectionID, "item_id", itemIDs)
}

func (s *SQLStrategy) AttachPartnersToCollection(ctx context.Context, collectionID string, partnerIDs []string, collectionType string) error {
	if collectionType == "" {
		collectionType = DefaultCollectionPartnerType
	}
	return s.attach(ctx, "collection_partner", "collection_id", collectionID, "partner_id", partnerIDs,
		column{"collection_type", collectionType})
}

func (s *SQLStrategy) Exists(ctx context.Context, table, key string) (bool, error) {
	_, err := s.FindByBackwardCompatibility(ctx, table, key)
	if errors.Is(err, apperrors.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// FindByBackwardCompatibility consults the tracker first, then the table.
// Database hits are written back into the tracker.
func (s *SQLStrategy) FindByBackwardCompatibility(ctx context.Context, table, key string) (string, error) {
	if err := validateTable(table); err != nil {
		return "", err
	}

	entityType, tracked := EntityTypeForTable(table)
	if tracked {
		if id, ok := s.tracker.GetUUID(key, entityType); ok {
			return id, nil
		}
	}

	var id string
	query := s.dialect.Rebind("SELECT id FROM " + table + " WHERE backward_compatibility = ?")
	if err := s.exec.QueryValue(ctx, &id, query, key); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", fmt.Errorf("%s %s: %w", table, key, apperrors.ErrNotFound)
		}
		return "", fmt.Errorf("failed to look up %s in %s: %w", key, table, err)
	}

	if tracked {
		s.tracker.Set(key, id, entityType)
	}
	return id, nil
}
