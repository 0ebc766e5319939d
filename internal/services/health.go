// health.go
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
	"context"
	"fmt"

	"github.com/localnerve/chapel-cms/internal/config"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	Auth         string            `json:"auth"`
	Media        string            `json:"media"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

// HealthCheck bundles what a health check probes
type HealthCheck struct {
	Config *config.Config
	DB     *gorm.DB
	Auth   Authenticator
	Media  *MediaUploader
	Log    *zap.Logger
}

func (r *HealthCheckResult) fail(component, detail string, err error) {
	r.Status = "unhealthy"
	r.Details[component+"_error"] = err.Error()
	msg := fmt.Sprintf("%s %s: %v", component, detail, err)
	if r.ErrorMessage == "" {
		r.ErrorMessage = msg
	} else {
		r.ErrorMessage += "; " + msg
	}
}

// Run performs a comprehensive health check of the service
func (h *HealthCheck) Run(ctx context.Context) HealthCheckResult {
	result := HealthCheckResult{
		Status:  "healthy",
		Details: make(map[string]string),
	}
	log := h.Log
	if log == nil {
		log = zap.NewNop()
	}

	// Check database connectivity
	sqlDB, err := h.DB.DB()
	if err != nil {
		result.Database = "error"
		result.fail("database", "connection error", err)
	} else if err := sqlDB.PingContext(ctx); err != nil {
		result.Database = "unreachable"
		result.fail("database", "ping failed", err)
	} else {
		result.Database = "ok"
		result.Details["database_type"] = h.Config.DBType
		result.Details["database_name"] = h.Config.DBDatabase
	}

	// Check the authentication provider
	if h.Auth != nil {
		if err := h.Auth.Ping(ctx); err != nil {
			result.Auth = "unreachable"
			result.fail("auth", "ping failed", err)
		} else {
			result.Auth = "ok"
			result.Details["auth_provider"] = h.Auth.Name()
		}
	}

	// Check object storage
	if h.Media != nil {
		if err := h.Media.Ping(ctx); err != nil {
			result.Media = "unreachable"
			result.fail("media", "check failed", err)
		} else {
			result.Media = "ok"
		}
	}

	if result.Status == "healthy" {
		log.Debug("health check passed")
	} else {
		log.Warn("health check failed", zap.String("error", result.ErrorMessage))
	}

	return result
}
