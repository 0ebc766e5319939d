// content.go
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

// BiblicalVerse is a scripture quote shown in the verse slider
type BiblicalVerse struct {
	Record
	Text      string `gorm:"type:text;not null" json:"text" validate:"required"`
	Reference string `gorm:"size:255;not null;uniqueIndex" json:"reference" validate:"required"`
}

// TableName overrides the table name for BiblicalVerse
func (BiblicalVerse) TableName() string {
	return "biblical_verses"
}

// Event is a dated church event. Date is an ISO-8601 string.
type Event struct {
	Record
	Title       string `gorm:"size:255;not null;uniqueIndex:idx_events_title_date" json:"title" validate:"required"`
	Description string `gorm:"type:text" json:"description"`
	Date        string `gorm:"size:64;not null;uniqueIndex:idx_events_title_date" json:"date" validate:"required"`
	Location    string `gorm:"size:255" json:"location"`
	ImageURL    string `gorm:"size:1024" json:"image_url"`
}

func (Event) TableName() string {
	return "events"
}

// Image is a site image placed in a named section
type Image struct {
	Record
	Title      string `gorm:"size:255" json:"title"`
	URL        string `gorm:"size:512;not null;uniqueIndex:idx_images_section_url" json:"url" validate:"required"`
	Section    string `gorm:"size:100;not null;default:gallery;uniqueIndex:idx_images_section_url" json:"section"`
	OrderIndex int    `gorm:"not null;default:0" json:"order_index"`
}

func (Image) TableName() string {
	return "images"
}

type Podcast struct {
	Record
	Title       string `gorm:"size:255;not null" json:"title" validate:"required"`
	Description string `gorm:"type:text" json:"description"`
	AudioURL    string `gorm:"size:1024;not null" json:"audio_url" validate:"required"`
}

func (Podcast) TableName() string {
	return "podcasts"
}

// ShortVideo is a 30 to 40 second clip. DurationSeconds is measured on upload.
type ShortVideo struct {
	Record
	Title           string `gorm:"size:255;not null" json:"title" validate:"required"`
	Description     string `gorm:"type:text" json:"description"`
	VideoURL        string `gorm:"size:1024;not null" json:"video_url" validate:"required"`
	ThumbnailURL    string `gorm:"size:1024" json:"thumbnail_url"`
	DurationSeconds int    `gorm:"not null;default:30" json:"duration_seconds"`
	Creator         string `gorm:"size:255" json:"creator"`
}

func (ShortVideo) TableName() string {
	return "short_videos"
}

type Testimonial struct {
	Record
	Name       string `gorm:"size:255;not null" json:"name" validate:"required"`
	Role       string `gorm:"size:255" json:"role"`
	Text       string `gorm:"type:text;not null" json:"text" validate:"required"`
	Rating     int    `gorm:"not null;default:5" json:"rating" validate:"min=0,max=5"`
	ImageURL   string `gorm:"size:1024" json:"image_url"`
	OrderIndex int    `gorm:"not null;default:0" json:"order_index"`
}

func (Testimonial) TableName() string {
	return "testimonials"
}

// CommunityMember is a member of the church team
type CommunityMember struct {
	Record
	Name       string `gorm:"size:255;not null" json:"name" validate:"required"`
	Role       string `gorm:"size:255;not null" json:"role" validate:"required"`
	ImageURL   string `gorm:"size:1024" json:"image_url"`
	OrderIndex int    `gorm:"not null;default:0" json:"order_index"`
}

func (CommunityMember) TableName() string {
	return "community_members"
}

type Feature struct {
	Record
	Title       string `gorm:"size:255;not null" json:"title" validate:"required"`
	Description string `gorm:"type:text" json:"description"`
	IconName    string `gorm:"size:100" json:"icon_name"`
	OrderIndex  int    `gorm:"not null;default:0" json:"order_index"`
}

func (Feature) TableName() string {
	return "features"
}

// Service is a weekly worship service
type Service struct {
	Record
	Day         string `gorm:"size:50" json:"day"`
	Time        string `gorm:"size:50" json:"time"`
	Title       string `gorm:"size:255;not null" json:"title" validate:"required"`
	Description string `gorm:"type:text" json:"description"`
	OrderIndex  int    `gorm:"not null;default:0" json:"order_index"`
}

func (Service) TableName() string {
	return "services"
}

// PageHeading is the title block of one page
type PageHeading struct {
	Record
	PageName    string `gorm:"size:100;not null;uniqueIndex" json:"page_name" validate:"required"`
	Title       string `gorm:"size:255;not null" json:"title" validate:"required"`
	Description string `gorm:"type:text" json:"description"`
}

func (PageHeading) TableName() string {
	return "page_headings"
}

type Setting struct {
	Record
	SettingKey   string `gorm:"size:100;not null;uniqueIndex" json:"setting_key" validate:"required"`
	SettingValue string `gorm:"type:text;not null" json:"setting_value" validate:"required"`
	SettingType  string `gorm:"size:50;not null;default:text" json:"setting_type" validate:"omitempty,oneof=text number boolean url color"`
}

func (Setting) TableName() string {
	return "settings"
}

// ContentSection is a named block of Markdown content
type ContentSection struct {
	Record
	SectionName string `gorm:"size:100;not null;uniqueIndex" json:"section_name" validate:"required"`
	Title       string `gorm:"size:255;not null" json:"title" validate:"required"`
	Description string `gorm:"type:text" json:"description"`
	Content     string `gorm:"type:text" json:"content"`
}

func (ContentSection) TableName() string {
	return "content_sections"
}

type GalleryItem struct {
	Record
	Title      string `gorm:"size:255;not null" json:"title" validate:"required"`
	Category   string `gorm:"size:100" json:"category"`
	Date       string `gorm:"size:64" json:"date"`
	Attendees  int    `gorm:"not null;default:0" json:"attendees" validate:"min=0"`
	ImageURL   string `gorm:"size:1024" json:"image_url"`
	OrderIndex int    `gorm:"not null;default:0" json:"order_index"`
}

func (GalleryItem) TableName() string {
	return "gallery_items"
}
