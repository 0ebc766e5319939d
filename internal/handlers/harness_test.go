// harness_test.go
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

package handlers_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/chapel-cms/internal/middleware"
	"github.com/localnerve/chapel-cms/internal/testutil"
	"github.com/localnerve/chapel-cms/internal/testutil/apptest"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	adminEmail    = apptest.AdminEmail
	adminPassword = apptest.AdminPassword
	setupSecret   = apptest.SetupSecret
)

type harness struct {
	app *fiber.App
	db  *gorm.DB
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	a := apptest.New(t)
	return &harness{app: a.App, db: a.DB}
}

// login opens a session and returns its cookie
func (h *harness) login(t *testing.T) *http.Cookie {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"`+adminEmail+`","password":"`+adminPassword+`"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := h.do(t, req, nil)
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	t.Fatalf("Login did not set the %s cookie", middleware.SessionCookie)
	return nil
}

func (h *harness) do(t *testing.T, req *http.Request, cookie *http.Cookie) *http.Response {
	t.Helper()
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (h *harness) request(t *testing.T, method, target string, body io.Reader, contentType string, cookie *http.Cookie) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return h.do(t, req, cookie)
}

func (h *harness) getJSON(t *testing.T, target string, cookie *http.Cookie, out interface{}) *http.Response {
	t.Helper()
	resp := h.request(t, http.MethodGet, target, nil, "", cookie)
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	testutil.ParseJSON(t, resp, out)
	return resp
}

type envelope struct {
	Status   int    `json:"status"`
	Message  string `json:"message"`
	Ok       bool   `json:"ok"`
	Type     string `json:"type"`
	Redirect string `json:"redirect"`
}

type mutation struct {
	Ok           bool                     `json:"ok"`
	AffectedRows int                      `json:"affectedRows"`
	Data         []map[string]interface{} `json:"data"`
}

type operation struct {
	Success bool     `json:"success"`
	Results []string `json:"results"`
	Logs    []string `json:"logs"`
	Error   string   `json:"error"`
}
