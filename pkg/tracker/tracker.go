// Package tracker maps legacy backward-compatibility keys to target ids for one run.
package tracker

import (
	"sort"
	"strconv"
	"time"
)

// EntityType namespaces backward-compatibility keys. The empty type is the
// global namespace.
type EntityType string

const (
	Language                EntityType = "language"
	LanguageTranslation     EntityType = "language_translation"
	Country                 EntityType = "country"
	CountryTranslation      EntityType = "country_translation"
	Context                 EntityType = "context"
	Collection              EntityType = "collection"
	CollectionTranslation   EntityType = "collection_translation"
	Project                 EntityType = "project"
	Partner                 EntityType = "partner"
	PartnerTranslation      EntityType = "partner_translation"
	Item                    EntityType = "item"
	ItemTranslation         EntityType = "item_translation"
	Image                   EntityType = "image"
	Tag                     EntityType = "tag"
	Author                  EntityType = "author"
	Artist                  EntityType = "artist"
	Glossary                EntityType = "glossary"
	GlossaryTranslation     EntityType = "glossary_translation"
	GlossarySpelling        EntityType = "glossary_spelling"
	Theme                   EntityType = "theme"
	ThemeTranslation        EntityType = "theme_translation"
	ItemItemLink            EntityType = "item_item_link"
	ItemItemLinkTranslation EntityType = "item_item_link_translation"
)

// EntityTypes lists the closed set of tracked entity types.
func EntityTypes() []EntityType {
	return []EntityType{
		Language, LanguageTranslation, Country, CountryTranslation, Context,
		Collection, CollectionTranslation, Project, Partner, PartnerTranslation,
		Item, ItemTranslation, Image, Tag, Author, Artist, Glossary,
		GlossaryTranslation, GlossarySpelling, Theme, ThemeTranslation,
		ItemItemLink, ItemItemLinkTranslation,
	}
}

// Metadata keys shared between importers.
const (
	MetaDefaultLanguageID = "default_language_id"
	MetaDefaultContextID  = "default_context_id"
)

// Record is one tracked entity.
type Record struct {
	UUID                  string
	BackwardCompatibility string
	EntityType            EntityType
	CreatedAt             time.Time
}

type recordKey struct {
	entityType EntityType
	key        string
}

// Tracker holds the key to id mapping for one process run.
// Not safe for concurrent use; the import pipeline is sequential.
type Tracker struct {
	records  map[recordKey]Record
	order    []recordKey
	metadata map[string]string
	now      func() time.Time
}

// New returns an empty tracker.
func New() *Tracker {
	return &Tracker{
		records:  make(map[recordKey]Record),
		metadata: make(map[string]string),
		now:      time.Now,
	}
}

// Register inserts or replaces r. A zero CreatedAt is stamped with the current time.
func (t *Tracker) Register(r Record) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = t.now()
	}
	k := recordKey{entityType: r.EntityType, key: r.BackwardCompatibility}
	if _, ok := t.records[k]; !ok {
		t.order = append(t.order, k)
	}
	t.records[k] = r
}

// Set upserts just the id for key, keeping the original CreatedAt when present.
func (t *Tracker) Set(key, uuid string, entityType EntityType) {
	k := recordKey{entityType: entityType, key: key}
	if existing, ok := t.records[k]; ok {
		existing.UUID = uuid
		t.records[k] = existing
		return
	}
	t.Register(Record{UUID: uuid, BackwardCompatibility: key, EntityType: entityType})
}

// Exists reports whether key is tracked under entityType.
func (t *Tracker) Exists(key string, entityType EntityType) bool {
	_, ok := t.records[recordKey{entityType: entityType, key: key}]
	return ok
}

// GetUUID returns the id tracked for key under entityType.
func (t *Tracker) GetUUID(key string, entityType EntityType) (string, bool) {
	r, ok := t.records[recordKey{entityType: entityType, key: key}]
	if !ok {
		return "", false
	}
	return r.UUID, true
}

// GetByType returns the records of one type in registration order.
func (t *Tracker) GetByType(entityType EntityType) []Record {
	var out []Record
	for _, k := range t.order {
		if k.entityType == entityType {
			out = append(out, t.records[k])
		}
	}
	return out
}

// Stats counts records per type.
func (t *Tracker) Stats() map[EntityType]int {
	stats := make(map[EntityType]int)
	for k := range t.records {
		stats[k.entityType]++
	}
	return stats
}

// All returns every record in registration order.
func (t *Tracker) All() []Record {
	out := make([]Record, 0, len(t.order))
	for _, k := range t.order {
		out = append(out, t.records[k])
	}
	return out
}

// Clear drops all records and metadata.
func (t *Tracker) Clear() {
	t.records = make(map[recordKey]Record)
	t.order = nil
	t.metadata = make(map[string]string)
}

// Size is the number of tracked records.
func (t *Tracker) Size() int {
	return len(t.records)
}

// SetMetadata stores a run-scoped fact.
func (t *Tracker) SetMetadata(key, value string) {
	t.metadata[key] = value
}

// GetMetadata returns a run-scoped fact.
func (t *Tracker) GetMetadata(key string) (string, bool) {
	v, ok := t.metadata[key]
	return v, ok
}

// NextDisplayOrder returns the next 1-based image position for a parent entity.
func (t *Tracker) NextDisplayOrder(parentID string) int {
	metaKey := "display_order:" + parentID
	next := 1
	if v, ok := t.metadata[metaKey]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			next = n + 1
		}
	}
	t.metadata[metaKey] = strconv.Itoa(next)
	return next
}

// SortedTypes returns the types present in stats, sorted by name.
func SortedTypes(stats map[EntityType]int) []EntityType {
	types := make([]EntityType, 0, len(stats))
	for et := range stats {
		types = append(types, et)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
