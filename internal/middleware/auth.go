// auth.go
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

package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/chapel-cms/internal/services"
	"github.com/localnerve/chapel-cms/internal/types"
)

const (
	// SessionCookie carries the token of a session opened by /api/auth/login
	SessionCookie = "chapel_session"
	// AuthorizerCookie is the session cookie set by an Authorizer server
	AuthorizerCookie = "cookie_session"
	// LoginPath is where unauthenticated navigations are sent
	LoginPath = "/admin/login"

	principalKey = "principal"
)

// SessionToken returns the session token of a request, empty when there is none
func SessionToken(c *fiber.Ctx) string {
	if token := c.Cookies(SessionCookie); token != "" {
		return token
	}
	return c.Cookies(AuthorizerCookie)
}

// RequireSession resolves the principal of the request session. Without one,
// browser navigations are redirected to the login route and API calls get a
// 401 naming it. The chain stops before any handler runs.
func RequireSession(auth services.Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := SessionToken(c)
		if token == "" {
			return deny(c, "Session cookie \""+SessionCookie+"\" not found")
		}

		principal, err := auth.Verify(c.UserContext(), token)
		if err != nil {
			return deny(c, "Invalid session: "+err.Error())
		}

		c.Locals(principalKey, principal)
		return c.Next()
	}
}

// PrincipalFrom returns the principal set by RequireSession
func PrincipalFrom(c *fiber.Ctx) (services.Principal, bool) {
	p, ok := c.Locals(principalKey).(services.Principal)
	return p, ok
}

func deny(c *fiber.Ctx, message string) error {
	if wantsHTML(c) {
		return c.Redirect(LoginPath, fiber.StatusSeeOther)
	}
	return &types.CustomError{
		Code:     fiber.StatusUnauthorized,
		Message:  message,
		Type:     "session.required",
		Redirect: LoginPath,
	}
}

// wantsHTML reports a browser page navigation, as opposed to an API call
func wantsHTML(c *fiber.Ctx) bool {
	if c.Method() != fiber.MethodGet || strings.HasPrefix(c.Path(), "/api/") {
		return false
	}
	return c.Accepts(fiber.MIMETextHTML, fiber.MIMEApplicationJSON) == fiber.MIMETextHTML
}
