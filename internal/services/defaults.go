// defaults.go
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
	"fmt"

	"github.com/localnerve/chapel-cms/internal/resource"
	"gopkg.in/yaml.v3"
)

// Defaults is the shared table of fallback content and draft values, keyed by resource name.
// It is parsed once at startup.
type Defaults struct {
	sections map[string][]resource.Row
	drafts   map[string]resource.Row
}

// LoadDefaults parses the YAML defaults table. A section is either a list of
// rows or, for singletons, one mapping.
func LoadDefaults(raw []byte) (*Defaults, error) {
	var doc struct {
		Sections map[string]yaml.Node    `yaml:"sections"`
		Drafts   map[string]resource.Row `yaml:"drafts"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse defaults: %w", err)
	}

	d := &Defaults{
		sections: make(map[string][]resource.Row, len(doc.Sections)),
		drafts:   doc.Drafts,
	}
	if d.drafts == nil {
		d.drafts = make(map[string]resource.Row)
	}
	for name, node := range doc.Sections {
		switch node.Kind {
		case yaml.SequenceNode:
			var rows []resource.Row
			if err := node.Decode(&rows); err != nil {
				return nil, fmt.Errorf("failed to parse defaults for %s: %w", name, err)
			}
			d.sections[name] = rows
		case yaml.MappingNode:
			var row resource.Row
			if err := node.Decode(&row); err != nil {
				return nil, fmt.Errorf("failed to parse defaults for %s: %w", name, err)
			}
			d.sections[name] = []resource.Row{row}
		default:
			return nil, fmt.Errorf("defaults for %s must be a list or a mapping", name)
		}
	}
	return d, nil
}

// Rows returns copies of the fallback rows of a section
func (d *Defaults) Rows(name string) []resource.Row {
	src := d.sections[name]
	rows := make([]resource.Row, 0, len(src))
	for _, r := range src {
		rows = append(rows, r.Clone())
	}
	return rows
}

// Draft returns the initial form values of a resource
func (d *Defaults) Draft(name string) resource.Row {
	if r, ok := d.drafts[name]; ok {
		return r.Clone()
	}
	return nil
}

// ApplyDrafts sets the draft values on every schema of the catalog
func (c *Catalog) ApplyDrafts(d *Defaults) {
	for name, b := range c.bindings {
		if draft := d.Draft(name); draft != nil {
			b.(interface{ setDefaults(resource.Row) }).setDefaults(draft)
		}
	}
}

func (b *binding[T]) setDefaults(row resource.Row) {
	b.schema.Defaults = row
}
