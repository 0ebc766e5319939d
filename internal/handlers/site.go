// site.go
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

package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/chapel-cms/internal/services"
	"github.com/localnerve/chapel-cms/internal/utils"
)

// SiteHandler serves the public read API
type SiteHandler struct {
	Site *services.SiteService
}

// GetSite handles GET /api/site
// @Summary Get every public section
// @Description Each section is read on its own and falls back to default content when the read fails or is empty
// @Tags Site
// @Produce json
// @Success 200 {object} map[string]services.Section
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /site [get]
func (h *SiteHandler) GetSite(c *fiber.Ctx) error {
	sections, err := h.Site.Site(c.UserContext())
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderCacheControl, "no-cache")
	return utils.SuccessResponse(c, sections, fiber.StatusOK)
}

// GetSection handles GET /api/site/:section
// @Summary Get one public section
// @Tags Site
// @Produce json
// @Param section path string true "Section (resource) name"
// @Success 200 {object} services.Section
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /site/{section} [get]
func (h *SiteHandler) GetSection(c *fiber.Ctx) error {
	name := c.Params("section")
	section, err := h.Site.Section(c.UserContext(), name)
	if errors.Is(err, services.ErrUnknownSection) {
		return utils.NotFoundResponse(c, fmt.Sprintf("Section '%s' not found", name))
	}
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderCacheControl, "no-cache")
	return utils.SuccessResponse(c, section, fiber.StatusOK)
}

// GetSlide handles GET /api/site/slides/:section
// @Summary Current slide of a rotating section
// @Description Verses and testimonials rotate on a fixed interval; every visitor sees the same slide at the same time
// @Tags Site
// @Produce json
// @Param section path string true "biblical-verses or testimonials"
// @Success 200 {object} services.Slide
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /site/slides/{section} [get]
func (h *SiteHandler) GetSlide(c *fiber.Ctx) error {
	name := c.Params("section")
	slide, err := h.Site.Slide(c.UserContext(), name)
	if errors.Is(err, services.ErrUnknownSection) {
		return utils.NotFoundResponse(c, fmt.Sprintf("Section '%s' does not rotate", name))
	}
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderCacheControl, "no-store")
	return utils.SuccessResponse(c, slide, fiber.StatusOK)
}
