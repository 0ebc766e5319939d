// setup_service.go
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
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/localnerve/chapel-cms/internal/config"
	"github.com/localnerve/chapel-cms/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Setup errors
var (
	ErrSetupKeyMissing  = errors.New("service role key is required")
	ErrSetupKeyInvalid  = errors.New("invalid service role key")
	ErrSetupDisabled    = errors.New("provisioning is disabled, SETUP_SECRET is not set")
	ErrSetupCredentials = errors.New("adminEmail and adminPassword are required")
)

// SetupRequest is the provisioning input
type SetupRequest struct {
	ServiceRoleKey string `json:"serviceRoleKey"`
	AdminEmail     string `json:"adminEmail"`
	AdminPassword  string `json:"adminPassword"`
}

// SetupService provisions the admin principal. It checks the schema but never runs DDL.
type SetupService struct {
	db   *gorm.DB
	auth Authenticator
	cfg  *config.Config
	log  *zap.Logger
}

func NewSetupService(db *gorm.DB, auth Authenticator, cfg *config.Config, log *zap.Logger) *SetupService {
	return &SetupService{db: db, auth: auth, cfg: cfg, log: log}
}

// Authorize checks the elevated credential of a request
func (s *SetupService) Authorize(req SetupRequest) error {
	if req.ServiceRoleKey == "" {
		return ErrSetupKeyMissing
	}
	if s.cfg.SetupSecret == "" {
		return ErrSetupDisabled
	}
	if subtle.ConstantTimeCompare([]byte(req.ServiceRoleKey), []byte(s.cfg.SetupSecret)) != 1 {
		return ErrSetupKeyInvalid
	}
	return nil
}

// Run creates the admin principal. An existing principal is reported, not failed.
// The request must have passed Authorize.
func (s *SetupService) Run(ctx context.Context, req SetupRequest) *OperationResult {
	result := &OperationResult{Success: true}

	email, password := req.AdminEmail, req.AdminPassword
	if email == "" {
		email = s.cfg.AdminEmail
	}
	if password == "" {
		password = s.cfg.AdminPassword
	}
	if email == "" || password == "" {
		result.fail(ErrSetupCredentials)
		return result
	}

	result.Lines = append(result.Lines, "📊 Vérification des tables...")
	var missing []string
	for _, m := range models.All() {
		if !s.db.WithContext(ctx).Migrator().HasTable(m) {
			missing = append(missing, fmt.Sprintf("%T", m))
		}
	}

	_, err := s.auth.Provision(ctx, email, password)
	switch {
	case err == nil:
		result.Lines = append(result.Lines, fmt.Sprintf("✅ Utilisateur admin créé: %s", email))
		s.log.Info("admin principal created", zap.String("email", email), zap.String("provider", s.auth.Name()))
	case errors.Is(err, ErrPrincipalExists):
		result.Lines = append(result.Lines, "⚠️ Utilisateur admin existe déjà")
	default:
		result.Lines = append(result.Lines, fmt.Sprintf("❌ Erreur création user: %s", message(err)))
		result.fail(err)
	}

	if len(missing) == 0 {
		result.Lines = append(result.Lines, "✅ Tables prêtes")
	} else {
		result.Lines = append(result.Lines, fmt.Sprintf("⚠️ Tables manquantes: %v (lancer la migration)", missing))
	}

	recordRun(ctx, s.db, s.log, models.OperationProvision, email, result)
	return result
}
