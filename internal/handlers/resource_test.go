// resource_test.go
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
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/chapel-cms/internal/middleware"
	"github.com/localnerve/chapel-cms/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnauthenticatedAdminRedirects(t *testing.T) {
	h := newHarness(t)
	queries := testutil.CountQueries(t, h.db)

	// a browser navigation is sent to the login page
	req, _ := http.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.Header.Set("Accept", "text/html")
	resp := h.do(t, req, nil)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, middleware.LoginPath, resp.Header.Get("Location"))

	// api calls get a 401 naming the login route
	var env envelope
	resp = h.request(t, http.MethodGet, "/api/admin/biblical-verses", nil, "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	testutil.ParseJSON(t, resp, &env)
	assert.Equal(t, middleware.LoginPath, env.Redirect)
	assert.False(t, env.Ok)

	// a forged cookie is no better than none
	resp = h.request(t, http.MethodGet, "/api/admin/biblical-verses", nil, "", &http.Cookie{Name: middleware.SessionCookie, Value: "forged"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	assert.Zero(t, queries.Count(), "no resource data may be read before the session is checked")
}

func TestLoginLogout(t *testing.T) {
	h := newHarness(t)

	resp := h.request(t, http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"admin@chapel.test","password":"wrong"}`), fiber.MIMEApplicationJSON, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	cookie := h.login(t)
	assert.True(t, cookie.HttpOnly)

	var session struct {
		Email        string   `json:"email"`
		Role         string   `json:"role"`
		Capabilities []string `json:"capabilities"`
	}
	h.getJSON(t, "/api/admin/session", cookie, &session)
	assert.Equal(t, adminEmail, session.Email)
	assert.Equal(t, "admin", session.Role)
	assert.Contains(t, session.Capabilities, "delete")

	// the login page sends a live session to the dashboard
	resp = h.request(t, http.MethodGet, "/admin/login", nil, "", cookie)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)

	var dashboard struct {
		Email string `json:"email"`
		Tabs  []struct {
			Name string `json:"name"`
		} `json:"tabs"`
	}
	h.getJSON(t, "/admin/dashboard", cookie, &dashboard)
	assert.Equal(t, adminEmail, dashboard.Email)
	require.Len(t, dashboard.Tabs, 16)
	assert.Equal(t, "headings", dashboard.Tabs[0].Name)

	var out struct {
		Ok       bool   `json:"ok"`
		Redirect string `json:"redirect"`
	}
	resp = h.request(t, http.MethodPost, "/api/auth/logout", nil, "", cookie)
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	testutil.ParseJSON(t, resp, &out)
	assert.True(t, out.Ok)
	assert.Equal(t, middleware.LoginPath, out.Redirect)

	resp = h.request(t, http.MethodGet, "/api/admin/session", nil, "", cookie)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestResourceCRUD(t *testing.T) {
	h := newHarness(t)
	cookie := h.login(t)

	var created mutation
	resp := h.request(t, http.MethodPost, "/api/admin/biblical-verses",
		testutil.JSONBody(t, map[string]string{"text": "Test", "reference": "Test 1:1"}), fiber.MIMEApplicationJSON, cookie)
	testutil.AssertStatus(t, resp, fiber.StatusCreated)
	testutil.ParseJSON(t, resp, &created)
	require.Len(t, created.Data, 1)
	id, _ := created.Data[0]["id"].(string)
	require.NotEmpty(t, id)

	var rows []map[string]interface{}
	h.getJSON(t, "/api/admin/biblical-verses", cookie, &rows)
	require.Len(t, rows, 1)
	assert.Equal(t, "Test 1:1", rows[0]["reference"])

	var row map[string]interface{}
	h.getJSON(t, "/api/admin/biblical-verses/"+id, cookie, &row)
	assert.Equal(t, "Test", row["text"])

	resp = h.request(t, http.MethodPut, "/api/admin/biblical-verses/"+id,
		testutil.JSONBody(t, map[string]string{"id": "ignored", "text": "Edited", "reference": "Test 1:2"}), fiber.MIMEApplicationJSON, cookie)
	testutil.AssertStatus(t, resp, fiber.StatusOK)

	h.getJSON(t, "/api/admin/biblical-verses", cookie, &rows)
	require.Len(t, rows, 1)
	assert.Equal(t, id, rows[0]["id"])
	assert.Equal(t, "Edited", rows[0]["text"])

	resp = h.request(t, http.MethodDelete, "/api/admin/biblical-verses/"+id+"?confirm=true", nil, "", cookie)
	testutil.AssertStatus(t, resp, fiber.StatusOK)

	h.getJSON(t, "/api/admin/biblical-verses", cookie, &rows)
	assert.Empty(t, rows)
}

func TestCreateMany(t *testing.T) {
	h := newHarness(t)
	cookie := h.login(t)

	var created mutation
	resp := h.request(t, http.MethodPost, "/api/admin/features", strings.NewReader(`[
		{"title":"Foi","icon_name":"heart","order_index":2},
		{"title":"Amour","icon_name":"star","order_index":1}
	]`), fiber.MIMEApplicationJSON, cookie)
	testutil.AssertStatus(t, resp, fiber.StatusCreated)
	testutil.ParseJSON(t, resp, &created)
	assert.Equal(t, 2, created.AffectedRows)

	var rows []map[string]interface{}
	h.getJSON(t, "/api/admin/features", cookie, &rows)
	require.Len(t, rows, 2)
	assert.Equal(t, "Amour", rows[0]["title"])
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	h := newHarness(t)
	cookie := h.login(t)

	var created mutation
	resp := h.request(t, http.MethodPost, "/api/admin/testimonials",
		testutil.JSONBody(t, map[string]interface{}{"name": "Marie", "text": "Merci", "rating": 5}), fiber.MIMEApplicationJSON, cookie)
	testutil.AssertStatus(t, resp, fiber.StatusCreated)
	testutil.ParseJSON(t, resp, &created)
	id := created.Data[0]["id"].(string)

	var env envelope
	resp = h.request(t, http.MethodDelete, "/api/admin/testimonials/"+id, nil, "", cookie)
	assert.Equal(t, fiber.StatusPreconditionRequired, resp.StatusCode)
	testutil.ParseJSON(t, resp, &env)
	assert.Equal(t, "confirmation.required", env.Type)

	var rows []map[string]interface{}
	h.getJSON(t, "/api/admin/testimonials", cookie, &rows)
	assert.Len(t, rows, 1)
}

func TestResourceErrors(t *testing.T) {
	h := newHarness(t)
	cookie := h.login(t)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		status int
		kind   string
	}{
		{
			name:   "unknown resource",
			method: http.MethodGet, target: "/api/admin/sermons",
			status: fiber.StatusNotFound, kind: "not-found",
		},
		{
			name:   "missing required field",
			method: http.MethodPost, target: "/api/admin/biblical-verses", body: `{"text":"Sans référence"}`,
			status: fiber.StatusBadRequest, kind: "validation",
		},
		{
			name:   "malformed body",
			method: http.MethodPost, target: "/api/admin/biblical-verses", body: `{"text":`,
			status: fiber.StatusBadRequest, kind: "validation",
		},
		{
			name:   "missing record",
			method: http.MethodPut, target: "/api/admin/biblical-verses/00000000-0000-0000-0000-000000000000",
			body:   `{"text":"Test","reference":"Test 1:1"}`,
			status: fiber.StatusNotFound, kind: "not-found",
		},
		{
			name:   "delete missing record",
			method: http.MethodDelete, target: "/api/admin/biblical-verses/00000000-0000-0000-0000-000000000000?confirm=true",
			status: fiber.StatusNotFound, kind: "not-found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := h.request(t, tt.method, tt.target, strings.NewReader(tt.body), fiber.MIMEApplicationJSON, cookie)
			var env envelope
			assert.Equal(t, tt.status, resp.StatusCode)
			testutil.ParseJSON(t, resp, &env)
			assert.Equal(t, tt.kind, env.Type)
			assert.False(t, env.Ok)
		})
	}
}

func TestConstraintViolation(t *testing.T) {
	h := newHarness(t)
	cookie := h.login(t)

	draft := `{"setting_key":"theme","setting_value":"blue"}`
	resp := h.request(t, http.MethodPost, "/api/admin/settings", strings.NewReader(draft), fiber.MIMEApplicationJSON, cookie)
	testutil.AssertStatus(t, resp, fiber.StatusCreated)

	var env envelope
	resp = h.request(t, http.MethodPost, "/api/admin/settings", strings.NewReader(draft), fiber.MIMEApplicationJSON, cookie)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	testutil.ParseJSON(t, resp, &env)
	assert.Equal(t, "constraint-violation", env.Type)
}

func TestShortVideoUpload(t *testing.T) {
	h := newHarness(t)
	cookie := h.login(t)

	// 40 seconds is outside the half open window
	body, contentType := testutil.MultipartBody(t, map[string]string{"title": "Trop long"}, testutil.FilePart{
		Field: "video_url", Filename: "long.mp4", ContentType: "video/mp4", Content: testutil.MP4(40, 1),
	})
	resp := h.request(t, http.MethodPost, "/api/admin/short-videos", body, contentType, cookie)
	var env envelope
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	testutil.ParseJSON(t, resp, &env)
	assert.Equal(t, "media-duration", env.Type)

	// a png declared as a video is refused
	body, contentType = testutil.MultipartBody(t, map[string]string{"title": "Image"}, testutil.FilePart{
		Field: "video_url", Filename: "clip.mp4", ContentType: "video/mp4", Content: testutil.PNG,
	})
	resp = h.request(t, http.MethodPost, "/api/admin/short-videos", body, contentType, cookie)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	body, contentType = testutil.MultipartBody(t, map[string]string{"title": "Clip"}, testutil.FilePart{
		Field: "video_url", Filename: "clip.mp4", ContentType: "video/mp4", Content: testutil.MP4(90000*33, 90000),
	})
	resp = h.request(t, http.MethodPost, "/api/admin/short-videos", body, contentType, cookie)
	testutil.AssertStatus(t, resp, fiber.StatusCreated)
	var created mutation
	testutil.ParseJSON(t, resp, &created)
	require.Len(t, created.Data, 1)
	assert.EqualValues(t, 33, created.Data[0]["duration_seconds"])

	videoURL, _ := created.Data[0]["video_url"].(string)
	u, err := url.Parse(videoURL)
	require.NoError(t, err)
	assert.Equal(t, "chapel.test", u.Host)

	// the stored file is served publicly
	resp = h.request(t, http.MethodGet, u.Path, nil, "", nil)
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	assert.Equal(t, "video/mp4", resp.Header.Get("Content-Type"))

	resp = h.request(t, http.MethodGet, "/media/short-videos/missing.mp4", nil, "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	resp = h.request(t, http.MethodGet, "/media/private/clip.mp4", nil, "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestListSchemas(t *testing.T) {
	h := newHarness(t)
	cookie := h.login(t)

	var schemas []struct {
		Name string `json:"name"`
	}
	h.getJSON(t, "/api/admin/resources", cookie, &schemas)
	require.Len(t, schemas, 16)
	assert.Equal(t, "headings", schemas[0].Name)
	assert.Equal(t, "short-videos", schemas[15].Name)
}
