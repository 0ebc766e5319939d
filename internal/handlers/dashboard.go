// dashboard.go
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
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/chapel-cms/internal/middleware"
	"github.com/localnerve/chapel-cms/internal/resource"
	"github.com/localnerve/chapel-cms/internal/services"
	"github.com/localnerve/chapel-cms/internal/utils"
)

// DashboardHandler serves the admin dashboard catalogue
type DashboardHandler struct {
	Catalog *services.Catalog
}

// DashboardTab is one manager of the dashboard
type DashboardTab struct {
	Name     string            `json:"name"`
	Label    string            `json:"label"`
	Category resource.Category `json:"category"`
	Href     string            `json:"href"`
}

// DashboardResponse is the dashboard navigation chrome
type DashboardResponse struct {
	Email      string              `json:"email"`
	Categories []resource.Category `json:"categories"`
	Tabs       []DashboardTab      `json:"tabs"`
	Logout     string              `json:"logout"`
}

// Dashboard handles GET /admin/dashboard, outside the /api base path.
// It lists the manager tabs grouped by category.
func (h *DashboardHandler) Dashboard(c *fiber.Ctx) error {
	principal, _ := middleware.PrincipalFrom(c)

	resp := DashboardResponse{
		Email:      principal.Email,
		Categories: []resource.Category{resource.CategoryContent, resource.CategoryMedia},
		Logout:     "/api/auth/logout",
	}
	for _, s := range h.Catalog.Schemas() {
		resp.Tabs = append(resp.Tabs, DashboardTab{
			Name:     s.Name,
			Label:    s.Label,
			Category: s.Category,
			Href:     "/api/admin/" + s.Name,
		})
	}
	return utils.SuccessResponse(c, resp, fiber.StatusOK)
}
