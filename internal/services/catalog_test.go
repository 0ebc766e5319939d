// catalog_test.go
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
	"bytes"
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/localnerve/chapel-cms/internal/database"
	"github.com/localnerve/chapel-cms/internal/resource"
	"github.com/localnerve/chapel-cms/internal/testutil"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validDrafts holds one valid draft per resource
var validDrafts = map[string]resource.Row{
	"headings":          {"page_name": "about", "title": "À Propos", "description": "Nos valeurs"},
	"features":          {"title": "Foi", "icon_name": "heart", "order_index": 1},
	"services":          {"day": "Dimanche", "time": "09:00", "title": "Culte", "order_index": 1},
	"community-members": {"name": "Paul", "role": "Pasteur", "order_index": 1},
	"testimonials":      {"name": "Marie", "text": "Une vraie famille", "rating": 5},
	"biblical-verses":   {"text": "Test", "reference": "Test 1:1"},
	"content-sections":  {"section_name": "about", "title": "À Propos", "content": "**Bienvenue**"},
	"settings":          {"setting_key": "theme", "setting_value": "blue", "setting_type": "color"},
	"hero":              {"church_name": "Merci Saint-Esprit", "cta_text": "Nous Rejoindre"},
	"social-links":      {"facebook_url": "https://facebook.com/chapel"},
	"contact-info":      {"email": "contact@chapel.test", "phone": "0123"},
	"images":            {"url": "/images/img1.jpg", "section": "gallery", "order_index": 2},
	"events":            {"title": "Noël", "date": "2024-12-15T00:00:00.000Z", "location": "Église"},
	"gallery-items":     {"title": "Baptêmes", "attendees": 40},
	"podcasts":          {"title": "Sermon", "audio_url": "http://chapel.test/media/podcasts/a.mp3"},
	"short-videos":      {"title": "Clip", "video_url": "http://chapel.test/media/short-videos/a.mp4", "duration_seconds": 33},
}

// editedDrafts holds one valid replacement draft per resource
var editedDrafts = map[string]resource.Row{
	"headings":          {"page_name": "about", "title": "Qui sommes-nous", "description": ""},
	"features":          {"title": "Espérance", "icon_name": "star", "order_index": 3},
	"services":          {"day": "Mercredi", "time": "19:00", "title": "Étude", "order_index": 2},
	"community-members": {"name": "Paul", "role": "Ancien", "order_index": 4},
	"testimonials":      {"name": "Marie", "text": "Merci", "rating": 4},
	"biblical-verses":   {"text": "Edited", "reference": "Test 1:2"},
	"content-sections":  {"section_name": "mission", "title": "Mission", "content": "Servir"},
	"settings":          {"setting_key": "theme", "setting_value": "green", "setting_type": "color"},
	"hero":              {"church_name": "Grâce et Foi"},
	"social-links":      {"youtube_url": "https://youtube.com/@chapel"},
	"contact-info":      {"city": "Lyon"},
	"images":            {"url": "/images/img2.jpg", "section": "hero", "order_index": 1},
	"events":            {"title": "Pâques", "date": "2025-04-20T00:00:00.000Z"},
	"gallery-items":     {"title": "Mariages", "attendees": 120},
	"podcasts":          {"title": "Louange", "audio_url": "http://chapel.test/media/podcasts/b.mp3"},
	"short-videos":      {"title": "Clip 2", "video_url": "http://chapel.test/media/short-videos/b.mp4", "duration_seconds": 31},
}

// assertFields checks that every drafted field reads back unchanged
func assertFields(t *testing.T, want, got resource.Row) {
	t.Helper()
	for k, v := range want {
		assert.Equal(t, resource.Row{k: v}.String(k), got.String(k), "field %s", k)
	}
}

func TestCatalogSchemas(t *testing.T) {
	f := newFixture(t)
	schemas := f.catalog.Schemas()
	require.Len(t, schemas, 16)
	assert.Equal(t, "headings", schemas[0].Name)
	assert.Equal(t, "short-videos", schemas[15].Name)

	for _, s := range schemas {
		_, ok := validDrafts[s.Name]
		assert.True(t, ok, "no draft for %s", s.Name)
		for _, field := range s.Fields {
			assert.NotEqual(t, "id", field.Name)
			assert.NotEqual(t, "slot", field.Name)
		}
	}

	hero, _ := f.catalog.Lookup("hero")
	assert.True(t, hero.Schema().Singleton)
	assert.Equal(t, []string{"church_name"}, hero.Schema().Required())

	videos, _ := f.catalog.Lookup("short-videos")
	assert.Equal(t, resource.CategoryMedia, videos.Schema().Category)
	assert.Equal(t, []string{"title", "video_url"}, videos.Schema().Required())
	clip, _ := videos.Schema().MediaFor("video_url")
	assert.Equal(t, 30, clip.MinSeconds)
	assert.Equal(t, 40, clip.MaxSeconds)
	thumb, _ := videos.Schema().MediaFor("thumbnail_url")
	assert.Zero(t, thumb.MaxSeconds)
}

func TestCreateThenList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for name, draft := range validDrafts {
		t.Run(name, func(t *testing.T) {
			b := f.binding(t, name)
			before, err := b.List(ctx)
			require.NoError(t, err)

			created, err := b.Create(ctx, []resource.Row{draft.Clone()}, nil)
			require.NoError(t, err)
			require.Len(t, created, 1)
			id := created[0].ID()
			require.NotEmpty(t, id)

			after, err := b.List(ctx)
			require.NoError(t, err)
			require.Len(t, after, len(before)+1)

			var found resource.Row
			for _, row := range after {
				if row.ID() == id {
					found = row
				}
			}
			require.NotNil(t, found)
			assertFields(t, draft, found)
			for _, row := range before {
				assert.NotEqual(t, id, row.ID())
			}
		})
	}
}

func TestUpdateThenList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for name, draft := range validDrafts {
		t.Run(name, func(t *testing.T) {
			b := f.binding(t, name)
			created, err := b.Create(ctx, []resource.Row{draft.Clone()}, nil)
			require.NoError(t, err)
			id := created[0].ID()

			edit := editedDrafts[name].Clone()
			edit["id"] = "someone-else"
			updated, err := b.Update(ctx, id, edit, nil)
			require.NoError(t, err)
			assert.Equal(t, id, updated.ID())

			rows, err := b.List(ctx)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, id, rows[0].ID())
			delete(edit, "id")
			assertFields(t, edit, rows[0])
		})
	}
}

func TestUpdateReplacesOmittedFields(t *testing.T) {
	ctx := context.Background()
	b := newFixture(t).binding(t, "events")

	created, err := b.Create(ctx, []resource.Row{{"title": "Noël", "date": "2024-12-15", "location": "Église"}}, nil)
	require.NoError(t, err)

	row, err := b.Update(ctx, created[0].ID(), resource.Row{"title": "Noël", "date": "2024-12-15"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "", row.String("location"))
}

func TestDeleteThenList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for name, draft := range validDrafts {
		t.Run(name, func(t *testing.T) {
			b := f.binding(t, name)
			created, err := b.Create(ctx, []resource.Row{draft.Clone()}, nil)
			require.NoError(t, err)
			before, err := b.List(ctx)
			require.NoError(t, err)

			require.NoError(t, b.Delete(ctx, created[0].ID()))

			after, err := b.List(ctx)
			require.NoError(t, err)
			assert.Len(t, after, len(before)-1)
			for _, row := range after {
				assert.NotEqual(t, created[0].ID(), row.ID())
			}

			err = b.Delete(ctx, created[0].ID())
			assert.True(t, database.IsKind(err, database.KindNotFound))
		})
	}
}

func TestListIsIdempotent(t *testing.T) {
	ctx := context.Background()
	b := newFixture(t).binding(t, "features")

	drafts := []resource.Row{
		{"title": "A", "order_index": 1},
		{"title": "B", "order_index": 1},
		{"title": "C", "order_index": 0},
		{"title": "D", "order_index": 1},
	}
	for _, d := range drafts {
		_, err := b.Create(ctx, []resource.Row{d}, nil)
		require.NoError(t, err)
	}

	first, err := b.List(ctx)
	require.NoError(t, err)
	second, err := b.List(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("List() mismatch (-first +second):\n%s", diff)
	}

	var titles []string
	for _, row := range first {
		titles = append(titles, row.String("title"))
	}
	assert.Equal(t, []string{"C", "A", "B", "D"}, titles)
}

func TestVerseScenario(t *testing.T) {
	ctx := context.Background()
	b := newFixture(t).binding(t, "biblical-verses")

	rows, err := b.List(ctx)
	require.NoError(t, err)
	require.Empty(t, rows)

	_, err = b.Create(ctx, []resource.Row{{"text": "Test", "reference": "Test 1:1"}}, nil)
	require.NoError(t, err)

	rows, err = b.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Test", rows[0].String("text"))
	assert.Equal(t, "Test 1:1", rows[0].String("reference"))
}

func TestCreateRejectsInvalidDrafts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.binding(t, "biblical-verses")

	tests := []struct {
		name   string
		drafts []resource.Row
	}{
		{"missing required field", []resource.Row{{"text": "Test"}}},
		{"no record", nil},
		{"bad field type", []resource.Row{{"text": "Test", "reference": map[string]any{"x": 1}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.Create(ctx, tt.drafts, nil)
			assert.True(t, database.IsKind(err, database.KindValidation), "got %v", err)
		})
	}

	rows, err := b.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = f.binding(t, "testimonials").Create(ctx, []resource.Row{{"name": "A", "text": "B", "rating": 9}}, nil)
	assert.True(t, database.IsKind(err, database.KindValidation))

	_, err = f.binding(t, "contact-info").Create(ctx, []resource.Row{{"email": "not-an-email"}}, nil)
	assert.True(t, database.IsKind(err, database.KindValidation))
}

func TestCreateConstraintViolation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	verses := f.binding(t, "biblical-verses")
	_, err := verses.Create(ctx, []resource.Row{{"text": "A", "reference": "Jean 3:16"}}, nil)
	require.NoError(t, err)
	_, err = verses.Create(ctx, []resource.Row{{"text": "B", "reference": "Jean 3:16"}}, nil)
	assert.True(t, database.IsKind(err, database.KindConstraint), "got %v", err)

	hero := f.binding(t, "hero")
	_, err = hero.Create(ctx, []resource.Row{{"church_name": "One"}}, nil)
	require.NoError(t, err)
	_, err = hero.Create(ctx, []resource.Row{{"church_name": "Two"}}, nil)
	assert.True(t, database.IsKind(err, database.KindConstraint), "got %v", err)

	_, err = hero.Create(ctx, []resource.Row{{"church_name": "Two"}, {"church_name": "Three"}}, nil)
	assert.True(t, database.IsKind(err, database.KindValidation))
}

func TestCreateManyIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	b := newFixture(t).binding(t, "settings")

	created, err := b.Create(ctx, []resource.Row{
		{"setting_key": "a", "setting_value": "1"},
		{"setting_key": "b", "setting_value": "2"},
	}, nil)
	require.NoError(t, err)
	assert.Len(t, created, 2)

	_, err = b.Create(ctx, []resource.Row{
		{"setting_key": "c", "setting_value": "3"},
		{"setting_key": "a", "setting_value": "4"},
	}, nil)
	assert.True(t, database.IsKind(err, database.KindConstraint))

	rows, err := b.List(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestUpdateMissingRecord(t *testing.T) {
	ctx := context.Background()
	b := newFixture(t).binding(t, "features")

	_, err := b.Update(ctx, "00000000-0000-0000-0000-000000000000", resource.Row{"title": "X"}, nil)
	assert.True(t, database.IsKind(err, database.KindNotFound), "got %v", err)

	_, err = b.Get(ctx, "missing")
	assert.True(t, database.IsKind(err, database.KindNotFound))
}

func TestCreateWithUpload(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.binding(t, "podcasts")

	created, err := b.Create(ctx, []resource.Row{{"title": "Sermon"}}, []resource.Upload{{
		Field:       "audio_url",
		Filename:    "sermon.mp3",
		ContentType: "audio/mpeg",
		Body:        bytes.NewReader(testutil.MP3),
	}})
	require.NoError(t, err)
	url := created[0].String("audio_url")
	assert.Regexp(t, `^http://chapel\.test/media/podcasts/[0-9a-f-]{36}\.mp3$`, url)

	keys := f.objects(t)
	require.Len(t, keys, 1)
	assert.Contains(t, url, keys[0])
}

func TestCreateShortVideoStoresDuration(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.probe.d = 33400 * 1e6
	b := f.binding(t, "short-videos")

	created, err := b.Create(ctx, []resource.Row{{"title": "Clip"}}, []resource.Upload{
		{Field: "video_url", Filename: "clip.mp4", ContentType: "video/mp4", Body: bytes.NewReader(testutil.MP4(33400, 1000))},
		{Field: "thumbnail_url", Filename: "thumb.png", ContentType: "image/png", Body: bytes.NewReader(testutil.PNG)},
	})
	require.NoError(t, err)
	assert.Equal(t, "33", created[0].String("duration_seconds"))
	assert.Contains(t, created[0].String("thumbnail_url"), "/media/short-videos/")
	assert.Len(t, f.objects(t), 2)
}

func TestRejectedUploadStoresNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.probe.d = 29 * 1e9

	_, err := f.binding(t, "short-videos").Create(ctx, []resource.Row{{"title": "Clip"}}, []resource.Upload{
		{Field: "video_url", Filename: "clip.mp4", ContentType: "video/mp4", Body: bytes.NewReader(testutil.MP4(29000, 1000))},
	})
	var mediaErr *MediaError
	require.ErrorAs(t, err, &mediaErr)
	assert.Equal(t, MediaDuration, mediaErr.Kind)
	assert.Empty(t, f.objects(t))

	_, err = f.binding(t, "podcasts").Create(ctx, []resource.Row{{}}, []resource.Upload{
		{Field: "audio_url", Filename: "sermon.mp3", ContentType: "audio/mpeg", Body: bytes.NewReader(testutil.MP3)},
	})
	assert.True(t, database.IsKind(err, database.KindValidation), "title is required, got %v", err)
	assert.Empty(t, f.objects(t))

	_, err = f.binding(t, "features").Create(ctx, []resource.Row{{"title": "X"}}, []resource.Upload{
		{Field: "icon_name", Filename: "a.png", ContentType: "image/png", Body: bytes.NewReader(testutil.PNG)},
	})
	assert.True(t, database.IsKind(err, database.KindValidation))
}

func TestShortVideoWithoutFileKeepsWindow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.binding(t, "short-videos")

	for _, seconds := range []any{300, 29, 40, nil} {
		draft := resource.Row{"title": "Clip", "video_url": "https://example.test/long.mp4"}
		if seconds != nil {
			draft["duration_seconds"] = seconds
		}
		_, err := b.Create(ctx, []resource.Row{draft}, nil)
		var mediaErr *MediaError
		require.ErrorAs(t, err, &mediaErr, "duration %v", seconds)
		assert.Equal(t, MediaDuration, mediaErr.Kind)
		assert.Equal(t, "video_url", mediaErr.Field)
	}
	assert.Equal(t, 0, countRows(t, f, "short-videos"))

	created, err := b.Create(ctx, []resource.Row{{"title": "Clip", "video_url": "https://example.test/clip.mp4", "duration_seconds": 30}}, nil)
	require.NoError(t, err)
	id := created[0].ID()

	_, err = b.Update(ctx, id, resource.Row{"title": "Clip", "video_url": "https://example.test/clip.mp4", "duration_seconds": 300}, nil)
	var mediaErr *MediaError
	require.ErrorAs(t, err, &mediaErr)

	got, err := b.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "30", got.String("duration_seconds"))
}

func TestFailedInsertRemovesUpload(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	hero := f.binding(t, "hero")

	_, err := hero.Create(ctx, []resource.Row{{"church_name": "One"}}, nil)
	require.NoError(t, err)

	_, err = hero.Create(ctx, []resource.Row{{"church_name": "Two"}}, []resource.Upload{
		{Field: "hero_image_url", Filename: "hero.png", ContentType: "image/png", Body: bytes.NewReader(testutil.PNG)},
	})
	assert.True(t, database.IsKind(err, database.KindConstraint))
	assert.Empty(t, f.objects(t))
	assert.Equal(t, 0.0, promtest.ToFloat64(f.metrics.Orphans))
	assert.Equal(t, 1.0, promtest.ToFloat64(f.metrics.Mutations.WithLabelValues("hero", "create", "error")))
	assert.Equal(t, 1.0, promtest.ToFloat64(f.metrics.Mutations.WithLabelValues("hero", "create", "ok")))
}

func TestUploadWithoutStorage(t *testing.T) {
	f := newFixture(t)
	catalog := NewCatalog(f.db, nil, nil)
	b, _ := catalog.Lookup("images")

	_, err := b.Create(context.Background(), []resource.Row{{}}, []resource.Upload{
		{Field: "url", Filename: "a.png", ContentType: "image/png", Body: bytes.NewReader(testutil.PNG)},
	})
	assert.True(t, database.IsKind(err, database.KindValidation))
}
