// site_service_test.go
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
	"testing"
	"time"

	"github.com/localnerve/chapel-cms/data"
	"github.com/localnerve/chapel-cms/internal/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSite(t *testing.T) (*SiteService, *fixture) {
	t.Helper()
	f := newFixture(t)
	defaults, err := LoadDefaults(data.Defaults)
	require.NoError(t, err)
	rotation := NewRotation(5 * time.Second)
	rotation.now = func() time.Time { return time.Unix(12, 0) }
	return NewSiteService(f.catalog, defaults, rotation, zap.NewNop()), f
}

func TestLoadDefaults(t *testing.T) {
	d, err := LoadDefaults(data.Defaults)
	require.NoError(t, err)

	hero := d.Rows("hero")
	require.Len(t, hero, 1)
	assert.Equal(t, "Merci Saint-Esprit", hero[0].String("church_name"))
	assert.Len(t, d.Rows("biblical-verses"), 4)
	assert.Empty(t, d.Rows("podcasts"))
	assert.Empty(t, d.Rows("unknown"))

	hero[0]["church_name"] = "changed"
	assert.Equal(t, "Merci Saint-Esprit", d.Rows("hero")[0].String("church_name"), "rows are copies")

	assert.Equal(t, "Dimanche", d.Draft("services").String("day"))
	assert.Nil(t, d.Draft("events"))

	_, err = LoadDefaults([]byte("sections:\n  hero: just text\n"))
	assert.Error(t, err)
	_, err = LoadDefaults([]byte("sections: [\n"))
	assert.Error(t, err)
}

func TestApplyDrafts(t *testing.T) {
	f := newFixture(t)
	d, err := LoadDefaults(data.Defaults)
	require.NoError(t, err)
	f.catalog.ApplyDrafts(d)

	services, _ := f.catalog.Lookup("services")
	draft := services.Schema().Draft()
	assert.Equal(t, "Dimanche", draft.String("day"))
	assert.Equal(t, "09:00", draft.String("time"))

	draft["day"] = "Lundi"
	assert.Equal(t, "Dimanche", services.Schema().Draft().String("day"), "drafts are copies")

	events, _ := f.catalog.Lookup("events")
	assert.Empty(t, events.Schema().Draft())
}

func TestSectionFallsBackToDefaults(t *testing.T) {
	ctx := context.Background()
	site, f := newSite(t)

	section, err := site.Section(ctx, "biblical-verses")
	require.NoError(t, err)
	assert.Equal(t, SourceDefaults, section.Source)
	assert.Len(t, section.Items, 4)

	_, err = f.binding(t, "biblical-verses").Create(ctx, []resource.Row{{"text": "Test", "reference": "Test 1:1"}}, nil)
	require.NoError(t, err)

	section, err = site.Section(ctx, "biblical-verses")
	require.NoError(t, err)
	assert.Equal(t, SourceStore, section.Source)
	require.Len(t, section.Items, 1)
	assert.Equal(t, "Test 1:1", section.Items[0].String("reference"))

	_, err = site.Section(ctx, "sermons")
	assert.ErrorIs(t, err, ErrUnknownSection)
}

func TestSectionFallsBackWhenStoreFails(t *testing.T) {
	ctx := context.Background()
	site, f := newSite(t)
	sqlDB, err := f.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	section, err := site.Section(ctx, "hero")
	require.NoError(t, err)
	assert.Equal(t, SourceDefaults, section.Source)
	require.Len(t, section.Items, 1)
}

func TestSectionRendersMarkdown(t *testing.T) {
	ctx := context.Background()
	site, f := newSite(t)

	_, err := f.binding(t, "content-sections").Create(ctx, []resource.Row{{
		"section_name": "about",
		"title":        "À Propos",
		"content":      "Bienvenue à **Merci Saint-Esprit**",
	}}, nil)
	require.NoError(t, err)

	section, err := site.Section(ctx, "content-sections")
	require.NoError(t, err)
	require.Len(t, section.Items, 1)
	assert.Equal(t, "<p>Bienvenue à <strong>Merci Saint-Esprit</strong></p>\n", section.Items[0].String("content_html"))
}

func TestSite(t *testing.T) {
	ctx := context.Background()
	site, f := newSite(t)

	_, err := f.binding(t, "features").Create(ctx, []resource.Row{{"title": "Foi"}}, nil)
	require.NoError(t, err)

	sections, err := site.Site(ctx)
	require.NoError(t, err)
	assert.Len(t, sections, 16)
	assert.Equal(t, SourceStore, sections["features"].Source)
	assert.Equal(t, SourceDefaults, sections["hero"].Source)
	assert.Equal(t, SourceDefaults, sections["podcasts"].Source)
	assert.Empty(t, sections["podcasts"].Items)
}

func TestSlide(t *testing.T) {
	ctx := context.Background()
	site, _ := newSite(t)

	slide, err := site.Slide(ctx, "biblical-verses")
	require.NoError(t, err)
	// 12s into the epoch at 5s per slide is tick 2
	assert.Equal(t, 2, slide.Index)
	assert.Equal(t, 4, slide.Count)
	assert.Equal(t, int64(5000), slide.Interval)
	assert.Equal(t, time.Unix(15, 0).UTC(), slide.NextAt)
	assert.Equal(t, "Jean 14:6", slide.Item.String("reference"))

	_, err = site.Slide(ctx, "events")
	assert.ErrorIs(t, err, ErrUnknownSection)
}

func TestRotation(t *testing.T) {
	r := NewRotation(5 * time.Second)
	now := time.Unix(0, 0)
	r.now = func() time.Time { return now }

	items := []resource.Row{{"n": 0}, {"n": 1}, {"n": 2}}
	var seen []int
	for i := 0; i < 4; i++ {
		seen = append(seen, r.Current(items).Index)
		now = now.Add(5 * time.Second)
	}
	assert.Equal(t, []int{0, 1, 2, 0}, seen)

	empty := r.Current(nil)
	assert.Equal(t, -1, empty.Index)
	assert.Nil(t, empty.Item)
}
