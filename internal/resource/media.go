// media.go
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

package resource

// MediaKind is the expected category of an uploaded file
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaAudio MediaKind = "audio"
	MediaVideo MediaKind = "video"
)

// Prefix is the MIME type prefix of the kind
func (k MediaKind) Prefix() string {
	return string(k) + "/"
}

// MediaField binds a URL field to an upload rule.
// When DurationField is set the clip length is checked and stored there,
// and MinSeconds/MaxSeconds publish the accepted window to clients.
type MediaField struct {
	Field         string    `json:"field"`
	Kind          MediaKind `json:"kind"`
	Bucket        string    `json:"bucket"`
	DurationField string    `json:"duration_field,omitempty"`
	MinSeconds    int       `json:"min_seconds,omitempty"`
	MaxSeconds    int       `json:"max_seconds,omitempty"`
	MaxInclusive  bool      `json:"max_inclusive,omitempty"`
}

// Timed reports whether uploads for the field are duration checked
func (m MediaField) Timed() bool {
	return m.DurationField != ""
}

// Accepts reports whether a clip of seconds fits the published window.
// A field without a window accepts everything.
func (m MediaField) Accepts(seconds int) bool {
	if m.MaxSeconds == 0 {
		return true
	}
	if seconds < m.MinSeconds {
		return false
	}
	if m.MaxInclusive {
		return seconds <= m.MaxSeconds
	}
	return seconds < m.MaxSeconds
}
