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

package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/chapel-cms/internal/middleware"
	"github.com/localnerve/chapel-cms/internal/services"
	"github.com/localnerve/chapel-cms/internal/utils"
)

// AuthHandler handles sign in, sign out and the session identity
type AuthHandler struct {
	Auth       services.Authenticator
	SessionTTL time.Duration
	// Secure marks the session cookie https-only
	Secure bool
}

// LoginRequest is the sign in body
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// SessionResponse is the identity of the signed in principal
type SessionResponse struct {
	ID           string   `json:"id"`
	Email        string   `json:"email"`
	Role         string   `json:"role"`
	Capabilities []string `json:"capabilities"`
}

func sessionResponse(p services.Principal) SessionResponse {
	caps := middleware.Capabilities(p.Role)
	names := make([]string, 0, len(caps))
	for _, c := range caps {
		names = append(names, string(c))
	}
	return SessionResponse{ID: p.ID, Email: p.Email, Role: p.Role, Capabilities: names}
}

// Login handles POST /api/auth/login
// @Summary Sign in
// @Description Checks the credentials and sets the chapel_session cookie
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Credentials"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var body LoginRequest
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation")
	}

	principal, token, err := h.Auth.SignIn(c.UserContext(), body.Email, body.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusUnauthorized, "auth.credentials")
	}
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.SessionTTL),
		HTTPOnly: true,
		Secure:   h.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return utils.SuccessResponse(c, sessionResponse(principal), fiber.StatusOK)
}

// Logout handles POST /api/auth/logout
// @Summary Sign out
// @Description Ends the session and clears the cookie. The response names the login route.
// @Tags Auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if token := c.Cookies(middleware.SessionCookie); token != "" {
		if err := h.Auth.SignOut(c.UserContext(), token); err != nil {
			return err
		}
	}
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ok":       true,
		"redirect": middleware.LoginPath,
	})
}

// Session handles GET /api/admin/session
// @Summary Session identity
// @Description The signed in principal and its capabilities
// @Tags Auth
// @Produce json
// @Success 200 {object} SessionResponse
// @Failure 401 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /admin/session [get]
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "No session principal")
	}
	return utils.SuccessResponse(c, sessionResponse(principal), fiber.StatusOK)
}

// LoginPage handles GET /admin/login. A live session goes straight to the dashboard.
func (h *AuthHandler) LoginPage(c *fiber.Ctx) error {
	if token := middleware.SessionToken(c); token != "" {
		if _, err := h.Auth.Verify(c.UserContext(), token); err == nil {
			return c.Redirect("/admin/dashboard", fiber.StatusSeeOther)
		}
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Connexion requise",
		"action":  "/api/auth/login",
		"method":  fiber.MethodPost,
		"fields":  []string{"email", "password"},
	})
}
