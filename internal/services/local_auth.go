// local_auth.go
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
	"errors"
	"strings"

	"github.com/localnerve/chapel-cms/internal/database"
	"github.com/localnerve/chapel-cms/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// LocalAuthenticator keeps principals in the principals table
type LocalAuthenticator struct {
	db       *gorm.DB
	sessions *SessionStore
	cost     int
}

// NewLocalAuthenticator creates an authenticator over db
func NewLocalAuthenticator(db *gorm.DB, sessions *SessionStore) *LocalAuthenticator {
	return &LocalAuthenticator{db: db, sessions: sessions, cost: bcrypt.DefaultCost}
}

func (a *LocalAuthenticator) Name() string {
	return "local"
}

func (a *LocalAuthenticator) SignIn(ctx context.Context, email, password string) (Principal, string, error) {
	if err := requireCredentials(email, password); err != nil {
		return Principal{}, "", err
	}

	var p models.Principal
	err := a.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Principal{}, "", ErrInvalidCredentials
	}
	if err != nil {
		return Principal{}, "", database.Classify("sign-in", "principals", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)); err != nil {
		return Principal{}, "", ErrInvalidCredentials
	}

	principal := Principal{ID: p.ID, Email: p.Email, Role: p.Role}
	return principal, a.sessions.Create(principal), nil
}

func (a *LocalAuthenticator) Verify(_ context.Context, token string) (Principal, error) {
	p, ok := a.sessions.Get(token)
	if !ok {
		return Principal{}, ErrNoSession
	}
	return p, nil
}

func (a *LocalAuthenticator) SignOut(_ context.Context, token string) error {
	a.sessions.Delete(token)
	return nil
}

func (a *LocalAuthenticator) Provision(ctx context.Context, email, password string) (Principal, error) {
	if err := requireCredentials(email, password); err != nil {
		return Principal{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return Principal{}, err
	}

	p := models.Principal{Email: normalizeEmail(email), PasswordHash: string(hash), Role: models.RoleAdmin}
	err = database.Classify("provision", "principals", a.db.WithContext(ctx).Create(&p).Error)
	if database.IsKind(err, database.KindConstraint) {
		return Principal{}, ErrPrincipalExists
	}
	if err != nil {
		return Principal{}, err
	}
	return Principal{ID: p.ID, Email: p.Email, Role: p.Role}, nil
}

func (a *LocalAuthenticator) Ping(ctx context.Context) error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
