// authorizer_auth.go
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
	"encoding/json"
	"fmt"

	"github.com/authorizerdev/authorizer-go"
	"github.com/localnerve/chapel-cms/internal/config"
	"github.com/localnerve/chapel-cms/internal/models"
	"github.com/localnerve/chapel-cms/internal/utils"
	"go.uber.org/zap"
)

// AuthorizerAuthenticator delegates credentials to an Authorizer server.
// Sessions opened by SignIn are kept locally; an Authorizer cookie_session is
// accepted as a token as well.
type AuthorizerAuthenticator struct {
	client   *authorizer.AuthorizerClient
	url      string
	sessions *SessionStore
	roles    []*string
	log      *zap.Logger
}

// NewAuthorizerAuthenticator pings the Authorizer service and creates the client
func NewAuthorizerAuthenticator(ctx context.Context, cfg *config.Config, sessions *SessionStore, log *zap.Logger) (*AuthorizerAuthenticator, error) {
	if err := utils.PingAuthorizer(ctx, cfg.AuthzURL); err != nil {
		return nil, fmt.Errorf("authorizer ping failed: %w", err)
	}

	log.Info("initializing authorizer",
		zap.String("authorizerURL", cfg.AuthzURL),
		zap.String("clientID", cfg.AuthzClientID),
		zap.String("redirectURL", cfg.PublicBaseURL),
	)
	client, err := authorizer.NewAuthorizerClient(cfg.AuthzClientID, cfg.AuthzURL, cfg.PublicBaseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create authorizer client: %w", err)
	}

	role := models.RoleAdmin
	return &AuthorizerAuthenticator{
		client:   client,
		url:      cfg.AuthzURL,
		sessions: sessions,
		roles:    []*string{&role},
		log:      log,
	}, nil
}

func (a *AuthorizerAuthenticator) Name() string {
	return "authorizer"
}

func (a *AuthorizerAuthenticator) SignIn(_ context.Context, email, password string) (Principal, string, error) {
	if err := requireCredentials(email, password); err != nil {
		return Principal{}, "", err
	}
	res, err := a.client.Login(&authorizer.LoginInput{
		Email:    &email,
		Password: password,
		Roles:    a.roles,
	})
	if err != nil {
		a.log.Debug("authorizer login failed", zap.Error(err))
		return Principal{}, "", ErrInvalidCredentials
	}
	p, err := principalFromUser(res.User)
	if err != nil {
		return Principal{}, "", err
	}
	return p, a.sessions.Create(p), nil
}

func (a *AuthorizerAuthenticator) Verify(_ context.Context, token string) (Principal, error) {
	if p, ok := a.sessions.Get(token); ok {
		return p, nil
	}
	if token == "" {
		return Principal{}, ErrNoSession
	}

	res, err := a.client.ValidateSession(&authorizer.ValidateSessionInput{
		Cookie: token,
		Roles:  a.roles,
	})
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrNoSession, err)
	}
	if res == nil || !res.IsValid {
		return Principal{}, ErrNoSession
	}
	return principalFromUser(res.User)
}

// SignOut ends the local session. Authorizer cookie sessions end at the provider.
func (a *AuthorizerAuthenticator) SignOut(_ context.Context, token string) error {
	a.sessions.Delete(token)
	return nil
}

func (a *AuthorizerAuthenticator) Provision(_ context.Context, email, password string) (Principal, error) {
	if err := requireCredentials(email, password); err != nil {
		return Principal{}, err
	}
	res, err := a.client.SignUp(&authorizer.SignUpInput{
		Email:           &email,
		Password:        password,
		ConfirmPassword: password,
		Roles:           a.roles,
	})
	if err != nil {
		// a successful login means the account is already there
		if _, loginErr := a.client.Login(&authorizer.LoginInput{Email: &email, Password: password, Roles: a.roles}); loginErr == nil {
			return Principal{}, ErrPrincipalExists
		}
		return Principal{}, fmt.Errorf("authorizer sign up failed: %w", err)
	}
	return principalFromUser(res.User)
}

func (a *AuthorizerAuthenticator) Ping(ctx context.Context) error {
	return utils.PingAuthorizer(ctx, a.url)
}

// principalFromUser reads the identity fields of an Authorizer user
func principalFromUser(user any) (Principal, error) {
	raw, err := json.Marshal(user)
	if err != nil {
		return Principal{}, fmt.Errorf("failed to read authorizer user: %w", err)
	}
	var u struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	if err := json.Unmarshal(raw, &u); err != nil {
		return Principal{}, fmt.Errorf("failed to read authorizer user: %w", err)
	}
	if u.Email == "" {
		return Principal{}, fmt.Errorf("%w: authorizer user has no email", ErrNoSession)
	}
	return Principal{ID: u.ID, Email: u.Email, Role: models.RoleAdmin}, nil
}
