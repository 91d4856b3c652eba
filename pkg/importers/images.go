package importers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ekaya-inc/heritage-importer/pkg/apperrors"
	"github.com/ekaya-inc/heritage-importer/pkg/legacydb"
	"github.com/ekaya-inc/heritage-importer/pkg/models"
	"github.com/ekaya-inc/heritage-importer/pkg/strategy"
	"github.com/ekaya-inc/heritage-importer/pkg/tracker"
	"github.com/ekaya-inc/heritage-importer/pkg/transform"
)

// PictureImporter writes legacy pictures as child items of type picture, each
// carrying one placeholder image. First untyped pictures are also attached to
// the parent item.
type PictureImporter struct {
	base
	load func(ctx context.Context) ([]transform.PictureRecord, error)
}

func newPictureImporter(name string, c *Context, src transform.PictureSource) *PictureImporter {
	i := &PictureImporter{base: newBase(name, c)}
	i.load = func(ctx context.Context) ([]transform.PictureRecord, error) {
		rows, err := i.query(ctx, src.Query)
		if err != nil {
			return nil, err
		}
		return transform.TransformPictures(rows, src), nil
	}
	return i
}

// newShPictureImporter reads captions from the texts table. Pictures are still
// imported, unnamed, when that table cannot be read.
func newShPictureImporter(name string, c *Context, src transform.ShPictureSource) *PictureImporter {
	i := &PictureImporter{base: newBase(name, c)}
	i.load = func(ctx context.Context) ([]transform.PictureRecord, error) {
		rows, err := i.query(ctx, src.Query)
		if err != nil {
			return nil, err
		}
		texts, err := i.query(ctx, src.TextsQuery)
		if err != nil {
			i.warn(fmt.Sprintf("%s picture texts not loaded: %v", src.Name, err))
		}
		return transform.TransformShPictures(rows, texts, src), nil
	}
	return i
}

func NewObjectPictureImporter(c *Context) *PictureImporter {
	return newPictureImporter("object-picture", c, transform.ObjectPictures)
}

func NewMonumentPictureImporter(c *Context) *PictureImporter {
	return newPictureImporter("monument-picture", c, transform.MonumentPictures)
}

func NewMonumentDetailPictureImporter(c *Context) *PictureImporter {
	return newPictureImporter("monument-detail-picture", c, transform.MonumentDetailPictures)
}

func NewShMonumentPictureImporter(c *Context) *PictureImporter {
	return newShPictureImporter("sh-monument-picture", c, transform.ShMonumentPictures)
}

func NewShMonumentDetailPictureImporter(c *Context) *PictureImporter {
	return newShPictureImporter("sh-monument-detail-picture", c, transform.ShMonumentDetailPictures)
}

func (i *PictureImporter) Import(ctx context.Context) Result {
	started := time.Now()
	i.begin()

	recs, err := i.load(ctx)
	if err != nil {
		i.fail(i.name, err)
		return i.finish(started)
	}
	for _, rec := range recs {
		i.warn(rec.Warnings...)
		exists, err := i.exists(ctx, strategy.TableItems, tracker.Item, rec.Key)
		if err != nil {
			i.fail(rec.Key, err)
			continue
		}
		if exists {
			i.skipped()
			continue
		}
		err = i.writePicture(ctx, rec)
		switch {
		case errors.Is(err, apperrors.ErrMissingDependency):
			i.warn(fmt.Sprintf("%s - %v, picture skipped", rec.Key, err))
			i.skipped()
		case err != nil:
			i.fail(rec.Key, err)
		default:
			i.imported()
		}
	}
	return i.finish(started)
}

// writePicture writes the images only together with a new picture item, which
// keeps reruns from duplicating them.
func (i *PictureImporter) writePicture(ctx context.Context, rec transform.PictureRecord) error {
	owners, err := i.resolveOwners(ctx, rec.Key, rec.ProjectKey, rec.PartnerKey, rec.ParentKey)
	if err != nil {
		return err
	}
	data := owners.apply(rec.Item)
	itemID, err := i.write(rec.Key, tracker.Item, func() (string, error) {
		return i.c.Strategy.WriteItem(ctx, data)
	})
	if err != nil {
		return err
	}

	for _, tr := range rec.Translations {
		tr.ItemID = itemID
		tr.ContextID = owners.contextID
		err := i.writeTranslation(tr.BackwardCompatibility, tracker.ItemTranslation, func() error {
			return i.c.Strategy.WriteItemTranslation(ctx, tr)
		})
		if err != nil {
			return err
		}
	}
	if err := i.attachArtists(ctx, itemID, rec.Artists); err != nil {
		return err
	}

	image := models.NewPlaceholderImage(itemID, rec.Path, i.c.Tracker.NextDisplayOrder(itemID))
	if err := i.writeImage(strategy.ImageKey(rec.Path), func() (string, error) {
		return i.c.Strategy.WriteItemImage(ctx, image)
	}); err != nil {
		return err
	}
	if !rec.ParentImage {
		return nil
	}
	parentImage := models.NewPlaceholderImage(owners.parentID, rec.Path, i.c.Tracker.NextDisplayOrder(owners.parentID))
	return i.exec(func() error {
		_, err := i.c.Strategy.WriteItemImage(ctx, parentImage)
		return err
	})
}

// writeImage writes an image row. The strategy stores key, the lower-cased
// legacy path, as the row's backward compatibility value.
func (b *base) writeImage(key string, fn func() (string, error)) error {
	_, err := b.write(key, tracker.Image, fn)
	return err
}

// PartnerPictureImporter writes the pictures of museums or institutions as
// partner images.
type PartnerPictureImporter struct {
	base
	rowsQuery   string
	partnerType string
}

func NewMuseumPictureImporter(c *Context) *PartnerPictureImporter {
	return &PartnerPictureImporter{base: newBase("museum-picture", c), rowsQuery: transform.MuseumPicturesQuery, partnerType: models.PartnerTypeMuseum}
}

func NewInstitutionPictureImporter(c *Context) *PartnerPictureImporter {
	return &PartnerPictureImporter{base: newBase("institution-picture", c), rowsQuery: transform.InstitutionPicturesQuery, partnerType: models.PartnerTypeInstitution}
}

func (i *PartnerPictureImporter) Import(ctx context.Context) Result {
	started := time.Now()
	i.begin()

	rows, err := i.query(ctx, i.rowsQuery)
	if err != nil {
		i.fail(i.name, err)
		return i.finish(started)
	}
	for _, rec := range transform.TransformPartnerPictures(rows, i.partnerType) {
		k := strategy.ImageKey(rec.Path)
		exists, err := i.exists(ctx, strategy.TablePartnerImages, tracker.Image, k)
		if err != nil {
			i.fail(rec.Path, err)
			continue
		}
		if exists {
			i.skipped()
			continue
		}
		partnerID, err := i.resolve(ctx, strategy.TablePartners, tracker.Partner, rec.PartnerKey)
		if err != nil {
			i.warn(fmt.Sprintf("%s - partner %s not imported, picture skipped", rec.Path, rec.PartnerKey))
			i.skipped()
			continue
		}
		image := models.NewPlaceholderImage(partnerID, rec.Path, i.c.Tracker.NextDisplayOrder(partnerID))
		image.AltText = firstNonEmpty(rec.Caption, image.AltText)
		if err := i.writeImage(k, func() (string, error) { return i.c.Strategy.WritePartnerImage(ctx, image) }); err != nil {
			i.fail(rec.Path, err)
			continue
		}
		i.imported()
	}
	return i.finish(started)
}

// LogoImporter writes the logo columns of partner rows as partner logos.
type LogoImporter struct {
	base
	rowsQuery string
	transform func(legacydb.Row) []transform.LogoRecord
}

func NewMuseumLogoImporter(c *Context) *LogoImporter {
	return &LogoImporter{base: newBase("museum-logo", c), rowsQuery: transform.MuseumsQuery,
		transform: func(r legacydb.Row) []transform.LogoRecord { return transform.TransformLogos(r, models.PartnerTypeMuseum) }}
}

func NewInstitutionLogoImporter(c *Context) *LogoImporter {
	return &LogoImporter{base: newBase("institution-logo", c), rowsQuery: transform.InstitutionsQuery,
		transform: func(r legacydb.Row) []transform.LogoRecord { return transform.TransformLogos(r, models.PartnerTypeInstitution) }}
}

func NewShPartnerLogoImporter(c *Context) *LogoImporter {
	return &LogoImporter{base: newBase("sh-partner-logo", c), rowsQuery: transform.ShPartnersQuery, transform: transform.TransformShPartnerLogos}
}

func (i *LogoImporter) Import(ctx context.Context) Result {
	started := time.Now()
	i.begin()

	rows, err := i.query(ctx, i.rowsQuery)
	if err != nil {
		i.fail(i.name, err)
		return i.finish(started)
	}
	for _, r := range rows {
		for _, rec := range i.transform(r) {
			k := strategy.LogoKey(rec.Path)
			exists, err := i.exists(ctx, strategy.TablePartnerLogos, tracker.Image, k)
			if err != nil {
				i.fail(rec.Path, err)
				continue
			}
			if exists {
				i.skipped()
				continue
			}
			partnerID, err := i.resolve(ctx, strategy.TablePartners, tracker.Partner, rec.PartnerKey)
			if err != nil {
				i.warn(fmt.Sprintf("%s - partner %s not imported, logo skipped", rec.Path, rec.PartnerKey))
				i.skipped()
				continue
			}
			logo := models.NewPlaceholderImage(partnerID, rec.Path, rec.DisplayOrder)
			logo.LogoType = rec.LogoType
			if err := i.writeImage(k, func() (string, error) { return i.c.Strategy.WritePartnerLogo(ctx, logo) }); err != nil {
				i.fail(rec.Path, err)
				continue
			}
			i.imported()
		}
	}
	return i.finish(started)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// imageOwner is where an ImageImporter attaches its images.
type imageOwner struct {
	table      string
	entityType tracker.EntityType
	imageTable string
	write      func(ctx context.Context, s strategy.WriteStrategy, image models.Image) (string, error)
}

var (
	collectionImages = imageOwner{
		table: strategy.TableCollections, entityType: tracker.Collection, imageTable: strategy.TableCollectionImages,
		write: func(ctx context.Context, s strategy.WriteStrategy, image models.Image) (string, error) {
			return s.WriteCollectionImage(ctx, image)
		},
	}
	itemImages = imageOwner{
		table: strategy.TableItems, entityType: tracker.Item, imageTable: strategy.TableItemImages,
		write: func(ctx context.Context, s strategy.WriteStrategy, image models.Image) (string, error) {
			return s.WriteItemImage(ctx, image)
		},
	}
)

// ImageImporter writes legacy pictures as plain images of the collection or
// item they illustrate, without picture items.
type ImageImporter struct {
	base
	rowsQuery string
	ownerKey  func(legacydb.Row) string
	owner     imageOwner
}

func NewTrailPictureImporter(c *Context) *ImageImporter {
	return &ImageImporter{base: newBase("travels-trail-picture", c), rowsQuery: transform.TrailPicturesQuery,
		ownerKey: transform.TrailPictureOwnerKey, owner: collectionImages}
}

func NewTravelLocationPictureImporter(c *Context) *ImageImporter {
	return &ImageImporter{base: newBase("travels-location-picture", c), rowsQuery: transform.TravelLocationPicturesQuery,
		ownerKey: transform.TravelLocationPictureOwnerKey, owner: collectionImages}
}

func NewExploreLocationPictureImporter(c *Context) *ImageImporter {
	return &ImageImporter{base: newBase("explore-location-picture", c), rowsQuery: transform.ExploreLocationPicturesQuery,
		ownerKey: transform.ExploreLocationPictureOwnerKey, owner: collectionImages}
}

func NewExploreThematicCyclePictureImporter(c *Context) *ImageImporter {
	return &ImageImporter{base: newBase("explore-thematiccycle-picture", c), rowsQuery: transform.ExploreThematicCyclePicturesQuery,
		ownerKey: transform.ExploreThematicCyclePictureOwnerKey, owner: collectionImages}
}

func NewExploreMonumentPictureImporter(c *Context) *ImageImporter {
	return &ImageImporter{base: newBase("explore-monument-picture", c), rowsQuery: transform.ExploreMonumentPicturesQuery,
		ownerKey: transform.ExploreMonumentPictureOwnerKey, owner: itemImages}
}

func (i *ImageImporter) Import(ctx context.Context) Result {
	started := time.Now()
	i.begin()

	rows, err := i.query(ctx, i.rowsQuery)
	if err != nil {
		i.fail(i.name, err)
		return i.finish(started)
	}
	for _, rec := range transform.TransformImages(rows, i.ownerKey) {
		k := strategy.ImageKey(rec.Path)
		exists, err := i.exists(ctx, i.owner.imageTable, tracker.Image, k)
		if err != nil {
			i.fail(rec.Path, err)
			continue
		}
		if exists {
			i.skipped()
			continue
		}
		ownerID, err := i.resolve(ctx, i.owner.table, i.owner.entityType, rec.OwnerKey)
		if err != nil {
			i.warn(fmt.Sprintf("%s - %s %s not imported, picture skipped", rec.Path, i.owner.entityType, rec.OwnerKey))
			i.skipped()
			continue
		}
		image := models.NewPlaceholderImage(ownerID, rec.Path, i.c.Tracker.NextDisplayOrder(ownerID))
		image.AltText = firstNonEmpty(rec.Caption, image.AltText)
		if err := i.writeImage(k, func() (string, error) { return i.owner.write(ctx, i.c.Strategy, image) }); err != nil {
			i.fail(rec.Path, err)
			continue
		}
		i.imported()
	}
	return i.finish(started)
}
