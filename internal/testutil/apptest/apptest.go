// apptest.go
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

// Package apptest serves the complete route table over an in-memory database
// and bucket for tests of the HTTP layer and its clients.
package apptest

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/chapel-cms/data"
	"github.com/localnerve/chapel-cms/internal/config"
	"github.com/localnerve/chapel-cms/internal/handlers"
	"github.com/localnerve/chapel-cms/internal/services"
	"github.com/localnerve/chapel-cms/internal/testutil"
	"go.uber.org/zap"
	"gocloud.dev/blob/memblob"
	"gorm.io/gorm"
)

// Credentials of the admin every App is provisioned with
const (
	AdminEmail    = "admin@chapel.test"
	AdminPassword = "Secret!23"
	SetupSecret   = "service-role-key"
	BaseURL       = "http://chapel.test"
)

// App is a served route table and the stores behind it
type App struct {
	*fiber.App
	DB   *gorm.DB
	Auth *services.LocalAuthenticator
}

// New builds an App with one provisioned admin
func New(t testing.TB) *App {
	t.Helper()
	ctx := context.Background()
	log := zap.NewNop()

	db := testutil.NewDB(t)
	cfg := &config.Config{DBType: "sqlite", DBDatabase: "memory", SetupSecret: SetupSecret}

	bucket := memblob.OpenBucket(nil)
	t.Cleanup(func() { _ = bucket.Close() })
	media := services.NewMediaUploader(bucket, services.MediaOptions{
		BaseURL: BaseURL,
		Window:  services.DurationWindow{Min: 30, Max: 40},
		Logger:  log,
	})

	auth := services.NewLocalAuthenticator(db, services.NewSessionStore(time.Hour))
	if _, err := auth.Provision(ctx, AdminEmail, AdminPassword); err != nil {
		t.Fatalf("Failed to provision admin: %v", err)
	}

	defaults, err := services.LoadDefaults(data.Defaults)
	if err != nil {
		t.Fatalf("Failed to load defaults: %v", err)
	}
	seed, err := services.LoadSeed(data.Seed)
	if err != nil {
		t.Fatalf("Failed to load seed: %v", err)
	}

	catalog := services.NewCatalog(db, media, nil)
	catalog.ApplyDrafts(defaults)

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	handlers.Register(app, handlers.Deps{
		DB:         db,
		Auth:       auth,
		Catalog:    catalog,
		Site:       services.NewSiteService(catalog, defaults, services.NewRotation(5*time.Second), log),
		Import:     services.NewImportService(db, seed, nil, log),
		Setup:      services.NewSetupService(db, auth, cfg, log),
		Media:      media,
		Health:     &services.HealthCheck{Config: cfg, DB: db, Auth: auth, Media: media},
		SessionTTL: time.Hour,
	})

	return &App{App: app, DB: db, Auth: auth}
}

// HTTPClient returns a client whose requests are served by the App in process
func (a *App) HTTPClient() *http.Client {
	return &http.Client{Transport: transport{a.App}}
}

type transport struct {
	app *fiber.App
}

func (tr transport) RoundTrip(req *http.Request) (*http.Response, error) {
	return tr.app.Test(req, -1)
}
