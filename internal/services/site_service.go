// site_service.go
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
	"errors"

	"github.com/localnerve/chapel-cms/internal/resource"
	"github.com/yuin/goldmark"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Section sources
const (
	SourceStore    = "store"
	SourceDefaults = "defaults"
)

// ErrUnknownSection is returned for a section name with no resource
var ErrUnknownSection = errors.New("unknown section")

// rotating sections served by the slider
var slideSections = map[string]bool{
	"biblical-verses": true,
	"testimonials":    true,
}

// Section is the public content of one resource
type Section struct {
	Name   string         `json:"name"`
	Source string         `json:"source"`
	Items  []resource.Row `json:"items"`
}

// SiteService reads the content tables for the public site. Each section is
// fetched on its own and falls back to the defaults table when the read fails
// or returns no rows.
type SiteService struct {
	catalog  *Catalog
	defaults *Defaults
	rotation *Rotation
	markdown goldmark.Markdown
	log      *zap.Logger
}

func NewSiteService(catalog *Catalog, defaults *Defaults, rotation *Rotation, log *zap.Logger) *SiteService {
	return &SiteService{
		catalog:  catalog,
		defaults: defaults,
		rotation: rotation,
		markdown: goldmark.New(),
		log:      log,
	}
}

// Section returns one public section
func (s *SiteService) Section(ctx context.Context, name string) (*Section, error) {
	binding, ok := s.catalog.Lookup(name)
	if !ok {
		return nil, ErrUnknownSection
	}

	section := &Section{Name: name, Source: SourceStore}
	rows, err := binding.List(ctx)
	if err != nil {
		s.log.Warn("section read failed, serving defaults", zap.String("section", name), zap.Error(err))
	}
	if err != nil || len(rows) == 0 {
		rows = s.defaults.Rows(name)
		section.Source = SourceDefaults
	}
	if name == "content-sections" {
		s.renderMarkdown(rows)
	}
	section.Items = rows
	return section, nil
}

// Site returns every public section, fetched concurrently
func (s *SiteService) Site(ctx context.Context) (map[string]*Section, error) {
	schemas := s.catalog.Schemas()
	sections := make([]*Section, len(schemas))

	g, ctx := errgroup.WithContext(ctx)
	for i, schema := range schemas {
		g.Go(func() error {
			section, err := s.Section(ctx, schema.Name)
			if err != nil {
				return err
			}
			sections[i] = section
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]*Section, len(sections))
	for _, section := range sections {
		out[section.Name] = section
	}
	return out, nil
}

// Slide returns the current slide of a rotating section
func (s *SiteService) Slide(ctx context.Context, name string) (*Slide, error) {
	if !slideSections[name] {
		return nil, ErrUnknownSection
	}
	section, err := s.Section(ctx, name)
	if err != nil {
		return nil, err
	}
	slide := s.rotation.Current(section.Items)
	return &slide, nil
}

func (s *SiteService) renderMarkdown(rows []resource.Row) {
	for _, row := range rows {
		var buf bytes.Buffer
		if err := s.markdown.Convert([]byte(row.String("content")), &buf); err != nil {
			s.log.Warn("markdown render failed", zap.String("section", row.String("section_name")), zap.Error(err))
			continue
		}
		row["content_html"] = buf.String()
	}
}
