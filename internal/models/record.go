// record.go
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

package models

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var lastSeq atomic.Int64

// nextSeq returns a strictly increasing insertion counter, seeded from the clock
// so values keep increasing across restarts
func nextSeq() int64 {
	for {
		prev := lastSeq.Load()
		next := time.Now().UnixNano()
		if next <= prev {
			next = prev + 1
		}
		if lastSeq.CompareAndSwap(prev, next) {
			return next
		}
	}
}

// Record holds the columns every content table shares.
// ID is assigned once on create and never reassigned.
type Record struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Seq       int64     `gorm:"not null;index" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns the identifier and the insertion sequence
func (r *Record) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Seq == 0 {
		r.Seq = nextSeq()
	}
	return nil
}

// Singleton is embedded by tables that hold at most one row.
// Every row takes slot 1, so a second insert violates the unique index.
type Singleton struct {
	Slot int `gorm:"uniqueIndex;not null;default:1" json:"-"`
}

// ImmutableColumns are never written by an update
var ImmutableColumns = []string{"id", "seq", "created_at", "slot"}
