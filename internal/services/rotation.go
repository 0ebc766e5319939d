// rotation.go
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
	"time"

	"github.com/localnerve/chapel-cms/internal/resource"
)

// Rotation picks the current slide of a rotating list from the wall clock,
// so every visitor sees the same slide at the same time
type Rotation struct {
	Interval time.Duration
	now      func() time.Time
}

// NewRotation creates a rotation advancing every interval
func NewRotation(interval time.Duration) *Rotation {
	return &Rotation{Interval: interval, now: time.Now}
}

// Slide is the current item of a rotating section
type Slide struct {
	Index    int          `json:"index"`
	Count    int          `json:"count"`
	Item     resource.Row `json:"item"`
	Interval int64        `json:"interval_ms"`
	NextAt   time.Time    `json:"next_at"`
}

// Current returns the slide shown now. An empty list yields index -1.
func (r *Rotation) Current(items []resource.Row) Slide {
	now := r.now()
	tick := now.UnixNano() / int64(r.Interval)
	slide := Slide{
		Index:    -1,
		Count:    len(items),
		Interval: r.Interval.Milliseconds(),
		NextAt:   time.Unix(0, (tick+1)*int64(r.Interval)).UTC(),
	}
	if len(items) == 0 {
		return slide
	}
	slide.Index = int(tick % int64(len(items)))
	slide.Item = items[slide.Index]
	return slide
}
