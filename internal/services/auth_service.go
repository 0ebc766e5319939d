// auth_service.go
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
	"fmt"
)

// Authentication errors
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNoSession          = errors.New("no valid session")
	ErrPrincipalExists    = errors.New("principal already exists")
)

// Authenticator is the authentication boundary used by the session guard
type Authenticator interface {
	// SignIn checks credentials and opens a session, returning its token
	SignIn(ctx context.Context, email, password string) (Principal, string, error)
	// Verify resolves a session token to its principal
	Verify(ctx context.Context, token string) (Principal, error)
	// SignOut ends the session
	SignOut(ctx context.Context, token string) error
	// Provision creates an admin principal, ErrPrincipalExists when the email is taken
	Provision(ctx context.Context, email, password string) (Principal, error)
	// Ping checks that the provider is reachable
	Ping(ctx context.Context) error
	Name() string
}

func requireCredentials(email, password string) error {
	if email == "" || password == "" {
		return fmt.Errorf("%w: email and password are required", ErrInvalidCredentials)
	}
	return nil
}
