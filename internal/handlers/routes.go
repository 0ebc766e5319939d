// routes.go
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
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/chapel-cms/internal/middleware"
	"github.com/localnerve/chapel-cms/internal/services"
	"gorm.io/gorm"
)

// Deps are the services the routes are served from
type Deps struct {
	DB         *gorm.DB
	Auth       services.Authenticator
	Catalog    *services.Catalog
	Site       *services.SiteService
	Import     *services.ImportService
	Setup      *services.SetupService
	Media      *services.MediaUploader
	Health     *services.HealthCheck
	SessionTTL time.Duration
	Secure     bool
}

// Register mounts every route on app
func Register(app *fiber.App, d Deps) {
	authHandler := &AuthHandler{Auth: d.Auth, SessionTTL: d.SessionTTL, Secure: d.Secure}
	resourceHandler := &ResourceHandler{Catalog: d.Catalog}
	dashboardHandler := &DashboardHandler{Catalog: d.Catalog}
	siteHandler := &SiteHandler{Site: d.Site}
	opsHandler := &OperationsHandler{DB: d.DB, Importer: d.Import, Setup: d.Setup}
	healthHandler := &HealthHandler{Check: d.Health}

	session := middleware.RequireSession(d.Auth)
	can := middleware.RequireCapability

	// Admin pages
	app.Get("/admin/login", authHandler.LoginPage)
	app.Get("/admin/dashboard", session, dashboardHandler.Dashboard)

	// Public media
	if d.Media != nil {
		mediaHandler := &MediaHandler{Media: d.Media}
		app.Get("/media/:bucket/*", mediaHandler.GetObject)
	}

	// API routes under /api
	api := app.Group("/api")
	api.Use(middleware.VersionMiddleware())

	api.Get("/health", healthHandler.Health)

	api.Post("/auth/login", authHandler.Login)
	api.Post("/auth/logout", authHandler.Logout)

	api.Get("/site", siteHandler.GetSite)
	api.Get("/site/slides/:section", siteHandler.GetSlide)
	api.Get("/site/:section", siteHandler.GetSection)

	api.Post("/setup-db", opsHandler.SetupDB)
	api.Post("/import-existing-data", session, can(middleware.CapImport), opsHandler.Import)

	// Session guarded admin routes
	admin := api.Group("/admin", session)
	admin.Get("/session", authHandler.Session)
	admin.Get("/resources", can(middleware.CapRead), resourceHandler.ListSchemas)
	admin.Get("/runs", can(middleware.CapRead), opsHandler.Runs)
	admin.Post("/import", can(middleware.CapImport), opsHandler.Import)
	admin.Post("/provision", can(middleware.CapProvision), opsHandler.Provision)

	admin.Get("/:resource", can(middleware.CapRead), resourceHandler.List)
	admin.Get("/:resource/:id", can(middleware.CapRead), resourceHandler.Get)
	admin.Post("/:resource", can(middleware.CapWrite), resourceHandler.Create)
	admin.Put("/:resource/:id", can(middleware.CapWrite), resourceHandler.Update)
	admin.Delete("/:resource/:id", can(middleware.CapDelete), resourceHandler.Delete)
}
