// models.go
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

// Package models defines the GORM models of every content table.
package models

// All returns one instance of every model, in migration order
func All() []interface{} {
	return []interface{}{
		&BiblicalVerse{},
		&Event{},
		&Image{},
		&Podcast{},
		&ShortVideo{},
		&Testimonial{},
		&CommunityMember{},
		&Feature{},
		&Service{},
		&PageHeading{},
		&Setting{},
		&ContentSection{},
		&GalleryItem{},
		&HeroContent{},
		&SocialLinks{},
		&ContactInfo{},
		&Principal{},
		&OperationRun{},
	}
}
