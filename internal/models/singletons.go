// singletons.go
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

// HeroContent is the landing banner
type HeroContent struct {
	Record
	Singleton
	WelcomeText    string `gorm:"size:255" json:"welcome_text"`
	ChurchName     string `gorm:"size:255;not null" json:"church_name" validate:"required"`
	ChurchSubtitle string `gorm:"size:255" json:"church_subtitle"`
	Description    string `gorm:"type:text" json:"description"`
	CTAText        string `gorm:"size:100" json:"cta_text"`
	HeroImageURL   string `gorm:"size:1024" json:"hero_image_url"`
	MembersCount   string `gorm:"size:50" json:"members_count"`
}

func (HeroContent) TableName() string {
	return "hero_content"
}

// SocialLinks holds the footer links and credits
type SocialLinks struct {
	Record
	Singleton
	FacebookURL     string `gorm:"size:1024" json:"facebook_url" validate:"omitempty,url"`
	InstagramURL    string `gorm:"size:1024" json:"instagram_url" validate:"omitempty,url"`
	TwitterURL      string `gorm:"size:1024" json:"twitter_url" validate:"omitempty,url"`
	YoutubeURL      string `gorm:"size:1024" json:"youtube_url" validate:"omitempty,url"`
	TiktokURL       string `gorm:"size:1024" json:"tiktok_url" validate:"omitempty,url"`
	CopyrightText   string `gorm:"size:255" json:"copyright_text"`
	DevelopedByText string `gorm:"size:255" json:"developed_by_text"`
}

func (SocialLinks) TableName() string {
	return "social_links"
}

type ContactInfo struct {
	Record
	Singleton
	Address           string `gorm:"size:255" json:"address"`
	City              string `gorm:"size:255" json:"city"`
	Phone             string `gorm:"size:50" json:"phone"`
	PhoneHours        string `gorm:"size:255" json:"phone_hours"`
	Email             string `gorm:"size:255" json:"email" validate:"omitempty,email"`
	EmailResponseTime string `gorm:"size:255" json:"email_response_time"`
}

func (ContactInfo) TableName() string {
	return "contact_info"
}
