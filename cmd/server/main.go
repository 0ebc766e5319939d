// main.go
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

package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/joho/godotenv"
	"github.com/localnerve/chapel-cms/data"
	"github.com/localnerve/chapel-cms/internal/config"
	"github.com/localnerve/chapel-cms/internal/database"
	"github.com/localnerve/chapel-cms/internal/handlers"
	"github.com/localnerve/chapel-cms/internal/logging"
	"github.com/localnerve/chapel-cms/internal/services"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/localnerve/chapel-cms/docs/api" // Swagger docs
)

// @title Chapel CMS API
// @version 1.0.0
// @description Content service of a church website: public site content, admin content management and media uploads
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/chapel-cms
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name chapel_session

func main() {
	envFile := flag.String("f", "", "environment file to load before reading the configuration")
	flag.Parse()
	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			log.Fatalf("Failed to load %s: %v", *envFile, err)
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zlog); err != nil {
		zlog.Fatal("Server stopped", zap.Error(err))
	}
	zlog.Info("Server stopped")
}

func run(ctx context.Context, cfg *config.Config, zlog *zap.Logger) error {
	// Connect to database
	db, err := database.Connect(cfg, logging.GormLevel(cfg.LogLevel))
	if err != nil {
		return err
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		return err
	}

	metrics := services.NewMetrics(prometheus.DefaultRegisterer)

	bucket, err := services.OpenMediaBucket(ctx, cfg.MediaURL)
	if err != nil {
		return err
	}
	defer bucket.Close()
	media := services.NewMediaUploader(bucket, services.MediaOptions{
		BaseURL: cfg.PublicBaseURL,
		Window: services.DurationWindow{
			Min:          cfg.ShortVideoMinSeconds,
			Max:          cfg.ShortVideoMaxSeconds,
			MaxInclusive: cfg.ShortVideoMaxInclusive,
		},
		Logger:  zlog.Named("media"),
		Metrics: metrics,
	})

	auth, err := newAuthenticator(ctx, cfg, db, zlog)
	if err != nil {
		return err
	}
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		_, err := auth.Provision(ctx, cfg.AdminEmail, cfg.AdminPassword)
		switch {
		case err == nil:
			zlog.Info("Admin provisioned", zap.String("email", cfg.AdminEmail))
		case errors.Is(err, services.ErrPrincipalExists):
		default:
			return err
		}
	}

	defaults, err := services.LoadDefaults(data.Defaults)
	if err != nil {
		return err
	}
	seed, err := services.LoadSeed(data.Seed)
	if err != nil {
		return err
	}

	catalog := services.NewCatalog(db, media, metrics)
	catalog.ApplyDrafts(defaults)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler,
		BodyLimit:             cfg.MaxUploadMB << 20,
		DisableStartupMessage: true,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prom := fiberprometheus.New("chapel_cms")
	prom.RegisterAt(app, "/metrics")
	app.Use(prom.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	handlers.Register(app, handlers.Deps{
		DB:      db,
		Auth:    auth,
		Catalog: catalog,
		Site:    services.NewSiteService(catalog, defaults, services.NewRotation(cfg.SlideInterval), zlog.Named("site")),
		Import:  services.NewImportService(db, seed, metrics, zlog.Named("import")),
		Setup:   services.NewSetupService(db, auth, cfg, zlog.Named("setup")),
		Media:   media,
		Health: &services.HealthCheck{
			Config: cfg,
			DB:     db,
			Auth:   auth,
			Media:  media,
			Log:    zlog.Named("health"),
		},
		SessionTTL: cfg.SessionTTL,
		Secure:     strings.HasPrefix(cfg.PublicBaseURL, "https://"),
	})

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":    fiber.StatusNotFound,
			"message":   "[404] Resource Not Found",
			"ok":        false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"url":       c.OriginalURL(),
		})
	})

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		zlog.Info("Gracefully shutting down...")
		_ = app.ShutdownWithTimeout(30 * time.Second)
	}()

	zlog.Info("Starting server",
		zap.String("port", cfg.Port),
		zap.String("db", cfg.DBType),
		zap.String("auth", auth.Name()),
	)
	return app.Listen(":" + cfg.Port)
}

func newAuthenticator(ctx context.Context, cfg *config.Config, db *gorm.DB, zlog *zap.Logger) (services.Authenticator, error) {
	sessions := services.NewSessionStore(cfg.SessionTTL)
	if cfg.AuthProvider == config.AuthProviderAuthorizer {
		auth, err := services.NewAuthorizerAuthenticator(ctx, cfg, sessions, zlog.Named("authorizer"))
		if err != nil {
			return nil, err
		}
		return auth, nil
	}
	return services.NewLocalAuthenticator(db, sessions), nil
}
