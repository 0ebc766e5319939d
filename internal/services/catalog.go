// catalog.go
//
// Content service and admin tooling of a church website
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of chapel-cms.
// chapel-cms is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// chapel-cms is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with chapel-cms.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/localnerve/chapel-cms/internal/database"
	"github.com/localnerve/chapel-cms/internal/models"
	"github.com/localnerve/chapel-cms/internal/resource"
	"gorm.io/gorm"
)

// Binding is the resource manager contract shared by the HTTP layer and the operator tooling
type Binding interface {
	Schema() resource.Schema
	List(ctx context.Context) ([]resource.Row, error)
	Get(ctx context.Context, id string) (resource.Row, error)
	Create(ctx context.Context, drafts []resource.Row, uploads []resource.Upload) ([]resource.Row, error)
	Update(ctx context.Context, id string, draft resource.Row, uploads []resource.Upload) (resource.Row, error)
	Delete(ctx context.Context, id string) error
}

// Catalog holds one binding per content resource
type Catalog struct {
	bindings map[string]Binding
	names    []string
}

var (
	byOrderIndex = []resource.OrderKey{{Column: "order_index"}}
	byNewest     = []resource.OrderKey{{Column: "created_at", Desc: true}}
	imageUpload  = func(field string) resource.MediaField {
		return resource.MediaField{Field: field, Kind: resource.MediaImage, Bucket: "images"}
	}
)

// NewCatalog registers every content resource. media may be nil, in which case
// uploads are refused.
func NewCatalog(db *gorm.DB, media *MediaUploader, metrics *Metrics) *Catalog {
	c := &Catalog{bindings: make(map[string]Binding)}

	register(c, db, media, metrics, &models.PageHeading{}, resource.Schema{
		Name: "headings", Label: "📝 Titres & Descriptions", Table: "page_headings", Category: resource.CategoryContent,
		Order: []resource.OrderKey{{Column: "page_name"}},
	})
	register(c, db, media, metrics, &models.Feature{}, resource.Schema{
		Name: "features", Label: "⭐ Features", Table: "features", Category: resource.CategoryContent,
		Order: byOrderIndex,
	})
	register(c, db, media, metrics, &models.Service{}, resource.Schema{
		Name: "services", Label: "🕒 Services", Table: "services", Category: resource.CategoryContent,
		Order: byOrderIndex,
	})
	register(c, db, media, metrics, &models.CommunityMember{}, resource.Schema{
		Name: "community-members", Label: "👥 Équipe", Table: "community_members", Category: resource.CategoryContent,
		Order: byOrderIndex,
		Media: []resource.MediaField{imageUpload("image_url")},
	})
	register(c, db, media, metrics, &models.Testimonial{}, resource.Schema{
		Name: "testimonials", Label: "💬 Témoignages", Table: "testimonials", Category: resource.CategoryContent,
		Order: byOrderIndex,
		Media: []resource.MediaField{imageUpload("image_url")},
	})
	register(c, db, media, metrics, &models.BiblicalVerse{}, resource.Schema{
		Name: "biblical-verses", Label: "📖 Versets Bibliques", Table: "biblical_verses", Category: resource.CategoryContent,
		Order: byNewest,
	})
	register(c, db, media, metrics, &models.ContentSection{}, resource.Schema{
		Name: "content-sections", Label: "📋 Sections", Table: "content_sections", Category: resource.CategoryContent,
		Order: []resource.OrderKey{{Column: "section_name"}},
	})
	register(c, db, media, metrics, &models.Setting{}, resource.Schema{
		Name: "settings", Label: "⚙️ Paramètres", Table: "settings", Category: resource.CategoryContent,
		Order: []resource.OrderKey{{Column: "setting_key"}},
	})
	register(c, db, media, metrics, &models.HeroContent{}, resource.Schema{
		Name: "hero", Label: "🏠 Accueil", Table: "hero_content", Category: resource.CategoryContent,
		Singleton: true,
		Media:     []resource.MediaField{imageUpload("hero_image_url")},
	})
	register(c, db, media, metrics, &models.SocialLinks{}, resource.Schema{
		Name: "social-links", Label: "🔗 Réseaux & Pied de page", Table: "social_links", Category: resource.CategoryContent,
		Singleton: true,
	})
	register(c, db, media, metrics, &models.ContactInfo{}, resource.Schema{
		Name: "contact-info", Label: "📞 Contact", Table: "contact_info", Category: resource.CategoryContent,
		Singleton: true,
	})
	register(c, db, media, metrics, &models.Image{}, resource.Schema{
		Name: "images", Label: "🖼️ Images", Table: "images", Category: resource.CategoryMedia,
		Order: []resource.OrderKey{{Column: "section"}, {Column: "order_index"}},
		Media: []resource.MediaField{imageUpload("url")},
	})
	register(c, db, media, metrics, &models.Event{}, resource.Schema{
		Name: "events", Label: "📅 Événements", Table: "events", Category: resource.CategoryMedia,
		Order: []resource.OrderKey{{Column: "date", Desc: true}},
		Media: []resource.MediaField{imageUpload("image_url")},
	})
	register(c, db, media, metrics, &models.GalleryItem{}, resource.Schema{
		Name: "gallery-items", Label: "🖼️ Galerie", Table: "gallery_items", Category: resource.CategoryMedia,
		Order: byOrderIndex,
		Media: []resource.MediaField{imageUpload("image_url")},
	})
	register(c, db, media, metrics, &models.Podcast{}, resource.Schema{
		Name: "podcasts", Label: "🎵 Podcasts", Table: "podcasts", Category: resource.CategoryMedia,
		Order: byNewest,
		Media: []resource.MediaField{{Field: "audio_url", Kind: resource.MediaAudio, Bucket: "podcasts"}},
	})
	register(c, db, media, metrics, &models.ShortVideo{}, resource.Schema{
		Name: "short-videos", Label: "🎬 Short Videos", Table: "short_videos", Category: resource.CategoryMedia,
		Order: byNewest,
		Media: []resource.MediaField{
			{Field: "video_url", Kind: resource.MediaVideo, Bucket: "short-videos", DurationField: "duration_seconds"},
			{Field: "thumbnail_url", Kind: resource.MediaImage, Bucket: "short-videos"},
		},
	})

	return c
}

func register[T any](c *Catalog, db *gorm.DB, media *MediaUploader, metrics *Metrics, model *T, s resource.Schema) {
	s = resource.Describe(model, s)
	if media != nil {
		for i, rule := range s.Media {
			if rule.Timed() {
				s.Media[i].MinSeconds = media.window.Min
				s.Media[i].MaxSeconds = media.window.Max
				s.Media[i].MaxInclusive = media.window.MaxInclusive
			}
		}
	}
	c.bindings[s.Name] = &binding[T]{
		schema:  s,
		repo:    NewRepository[T](db, s),
		media:   media,
		metrics: metrics,
	}
	c.names = append(c.names, s.Name)
}

// Lookup finds the binding of a resource
func (c *Catalog) Lookup(name string) (Binding, bool) {
	b, ok := c.bindings[name]
	return b, ok
}

// Schemas lists the descriptors in dashboard order
func (c *Catalog) Schemas() []resource.Schema {
	out := make([]resource.Schema, 0, len(c.names))
	for _, name := range c.names {
		out = append(out, c.bindings[name].Schema())
	}
	return out
}

type binding[T any] struct {
	schema  resource.Schema
	repo    *Repository[T]
	media   *MediaUploader
	metrics *Metrics
}

func (b *binding[T]) Schema() resource.Schema {
	return b.schema
}

func (b *binding[T]) invalid(op string, err error) error {
	return database.NewError(database.KindValidation, op, b.schema.Name, err)
}

func (b *binding[T]) List(ctx context.Context) ([]resource.Row, error) {
	items, err := b.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]resource.Row, 0, len(items))
	for i := range items {
		row, err := resource.Encode(&items[i])
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (b *binding[T]) Get(ctx context.Context, id string) (resource.Row, error) {
	item, err := b.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return resource.Encode(item)
}

// prepare turns a draft and its uploads into a model.
// Nothing is stored unless the draft is valid; stored objects are returned for compensation.
func (b *binding[T]) prepare(ctx context.Context, op string, draft resource.Row, uploads []resource.Upload) (*T, []*StoredObject, error) {
	row, err := b.schema.Coerce(draft)
	if err != nil {
		return nil, nil, b.invalid(op, err)
	}

	rules := make([]resource.MediaField, len(uploads))
	for i, up := range uploads {
		rule, ok := b.schema.MediaFor(up.Field)
		if !ok {
			return nil, nil, b.invalid(op, fmt.Errorf("%s does not accept uploads", up.Field))
		}
		if b.media == nil {
			return nil, nil, b.invalid(op, errors.New("media storage is not configured"))
		}
		seconds, err := b.media.Check(up, rule)
		if err != nil {
			return nil, nil, err
		}
		rules[i] = rule
		row[rule.Field] = up.Filename
		if rule.Timed() {
			row[rule.DurationField] = seconds
		}
	}
	if err := b.checkDeclaredDurations(row, uploads); err != nil {
		return nil, nil, err
	}

	item := new(T)
	if err := resource.Decode(row, item); err != nil {
		return nil, nil, b.invalid(op, err)
	}
	if err := resource.Validate(item); err != nil {
		return nil, nil, b.invalid(op, err)
	}
	if len(uploads) == 0 {
		return item, nil, nil
	}

	stored := make([]*StoredObject, 0, len(uploads))
	for i, up := range uploads {
		obj, err := b.media.Store(ctx, up, rules[i])
		if err != nil {
			b.media.Compensate(ctx, stored)
			return nil, nil, err
		}
		stored = append(stored, obj)
		row[rules[i].Field] = obj.URL
	}

	item = new(T)
	if err := resource.Decode(row, item); err != nil {
		b.media.Compensate(ctx, stored)
		return nil, nil, b.invalid(op, err)
	}
	return item, stored, nil
}

// checkDeclaredDurations holds a timed field submitted without a file to the
// window its upload would have to fit.
func (b *binding[T]) checkDeclaredDurations(row resource.Row, uploads []resource.Upload) error {
	if b.media == nil {
		return nil
	}
	for _, rule := range b.schema.Media {
		if !rule.Timed() || uploaded(uploads, rule.Field) {
			continue
		}
		seconds, err := strconv.Atoi(row.String(rule.DurationField))
		if err != nil || !b.media.window.Contains(seconds) {
			return &MediaError{
				Kind:    MediaDuration,
				Field:   rule.Field,
				Message: fmt.Sprintf("%s %q outside %s", rule.DurationField, row.String(rule.DurationField), b.media.window),
			}
		}
	}
	return nil
}

func uploaded(uploads []resource.Upload, field string) bool {
	for _, up := range uploads {
		if up.Field == field {
			return true
		}
	}
	return false
}

func (b *binding[T]) Create(ctx context.Context, drafts []resource.Row, uploads []resource.Upload) (rows []resource.Row, err error) {
	defer func() { b.metrics.mutation(b.schema.Name, "create", err) }()

	switch {
	case len(drafts) == 0:
		return nil, b.invalid("create", errors.New("no record submitted"))
	case len(drafts) > 1 && len(uploads) > 0:
		return nil, b.invalid("create", errors.New("files can only be uploaded with a single record"))
	case len(drafts) > 1 && b.schema.Singleton:
		return nil, b.invalid("create", fmt.Errorf("%s holds a single record", b.schema.Name))
	}

	if len(drafts) == 1 {
		item, stored, err := b.prepare(ctx, "create", drafts[0], uploads)
		if err != nil {
			return nil, err
		}
		if err := b.repo.Insert(ctx, item); err != nil {
			b.media.Compensate(ctx, stored)
			return nil, err
		}
		row, err := resource.Encode(item)
		if err != nil {
			return nil, err
		}
		return []resource.Row{row}, nil
	}

	items := make([]T, 0, len(drafts))
	for _, draft := range drafts {
		item, _, err := b.prepare(ctx, "create", draft, nil)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	if err := b.repo.InsertMany(ctx, items); err != nil {
		return nil, err
	}
	rows = make([]resource.Row, 0, len(items))
	for i := range items {
		row, err := resource.Encode(&items[i])
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (b *binding[T]) Update(ctx context.Context, id string, draft resource.Row, uploads []resource.Upload) (row resource.Row, err error) {
	defer func() { b.metrics.mutation(b.schema.Name, "update", err) }()

	item, stored, err := b.prepare(ctx, "update", draft, uploads)
	if err != nil {
		return nil, err
	}
	if err := b.repo.Update(ctx, id, item); err != nil {
		b.media.Compensate(ctx, stored)
		return nil, err
	}
	return b.Get(ctx, id)
}

func (b *binding[T]) Delete(ctx context.Context, id string) (err error) {
	defer func() { b.metrics.mutation(b.schema.Name, "delete", err) }()
	return b.repo.Delete(ctx, id)
}
