// operations_test.go
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
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/chapel-cms/internal/middleware"
	"github.com/localnerve/chapel-cms/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImport(t *testing.T) {
	h := newHarness(t)
	cookie := h.login(t)

	var op operation
	resp := h.request(t, http.MethodPost, "/api/admin/import", nil, "", cookie)
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	testutil.ParseJSON(t, resp, &op)
	assert.True(t, op.Success)
	assert.Contains(t, op.Results, "✅ 4 versets importés")
	assert.Equal(t, "✅ Import complété!", op.Results[len(op.Results)-1])

	var verses []map[string]interface{}
	h.getJSON(t, "/api/admin/biblical-verses", cookie, &verses)
	assert.Len(t, verses, 4)

	// a re-run reports every table as present and duplicates nothing
	resp = h.request(t, http.MethodPost, "/api/import-existing-data", nil, "", cookie)
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	testutil.ParseJSON(t, resp, &op)
	assert.True(t, op.Success)
	assert.Contains(t, op.Results, "⚠️ Versets déjà importés")

	h.getJSON(t, "/api/admin/biblical-verses", cookie, &verses)
	assert.Len(t, verses, 4)

	var runs []struct {
		Kind    string `json:"kind"`
		Actor   string `json:"actor"`
		Success bool   `json:"success"`
	}
	h.getJSON(t, "/api/admin/runs?limit=5", cookie, &runs)
	require.Len(t, runs, 2)
	assert.Equal(t, adminEmail, runs[0].Actor)
	assert.True(t, runs[0].Success)
}

func TestImportRequiresSession(t *testing.T) {
	h := newHarness(t)

	resp := h.request(t, http.MethodPost, "/api/import-existing-data", nil, "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestSetupDB(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name    string
		body    string
		status  int
		success bool
		message string
		line    string
	}{
		{
			name:    "missing key",
			body:    `{"adminEmail":"new@chapel.test","adminPassword":"pw"}`,
			status:  fiber.StatusBadRequest,
			message: "Service Role Key requis",
		},
		{
			name:    "wrong key",
			body:    `{"serviceRoleKey":"nope","adminEmail":"new@chapel.test","adminPassword":"pw"}`,
			status:  fiber.StatusForbidden,
			message: "Service Role Key invalide",
		},
		{
			name:    "missing credentials",
			body:    `{"serviceRoleKey":"` + setupSecret + `"}`,
			status:  fiber.StatusBadRequest,
			message: "adminEmail and adminPassword are required",
		},
		{
			name:    "provisions",
			body:    `{"serviceRoleKey":"` + setupSecret + `","adminEmail":"new@chapel.test","adminPassword":"Secret!45"}`,
			status:  fiber.StatusOK,
			success: true,
			line:    "✅ Utilisateur admin créé: new@chapel.test",
		},
		{
			name:    "existing principal",
			body:    `{"serviceRoleKey":"` + setupSecret + `","adminEmail":"` + adminEmail + `","adminPassword":"x"}`,
			status:  fiber.StatusOK,
			success: true,
			line:    "⚠️ Utilisateur admin existe déjà",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var op operation
			resp := h.request(t, http.MethodPost, "/api/setup-db", strings.NewReader(tt.body), fiber.MIMEApplicationJSON, nil)
			assert.Equal(t, tt.status, resp.StatusCode)
			testutil.ParseJSON(t, resp, &op)
			assert.Equal(t, tt.success, op.Success)
			if tt.message != "" {
				assert.Equal(t, tt.message, op.Error)
			}
			if tt.line != "" {
				assert.Contains(t, op.Logs, tt.line)
			}
		})
	}

	// the provisioned admin can sign in
	resp := h.request(t, http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"new@chapel.test","password":"Secret!45"}`), fiber.MIMEApplicationJSON, nil)
	testutil.AssertStatus(t, resp, fiber.StatusOK)
}

func TestProvision(t *testing.T) {
	h := newHarness(t)
	cookie := h.login(t)

	resp := h.request(t, http.MethodPost, "/api/admin/provision", strings.NewReader(`{}`), fiber.MIMEApplicationJSON, cookie)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var op operation
	resp = h.request(t, http.MethodPost, "/api/admin/provision",
		strings.NewReader(`{"adminEmail":"second@chapel.test","adminPassword":"Secret!67"}`), fiber.MIMEApplicationJSON, cookie)
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	testutil.ParseJSON(t, resp, &op)
	assert.True(t, op.Success)
	assert.Contains(t, op.Logs, "✅ Utilisateur admin créé: second@chapel.test")
}

func TestSite(t *testing.T) {
	h := newHarness(t)

	var section struct {
		Name   string                   `json:"name"`
		Source string                   `json:"source"`
		Items  []map[string]interface{} `json:"items"`
	}
	h.getJSON(t, "/api/site/biblical-verses", nil, &section)
	assert.Equal(t, "defaults", section.Source)
	assert.NotEmpty(t, section.Items)

	cookie := h.login(t)
	resp := h.request(t, http.MethodPost, "/api/admin/biblical-verses",
		strings.NewReader(`{"text":"Test","reference":"Test 1:1"}`), fiber.MIMEApplicationJSON, cookie)
	testutil.AssertStatus(t, resp, fiber.StatusCreated)

	h.getJSON(t, "/api/site/biblical-verses", nil, &section)
	assert.Equal(t, "store", section.Source)
	require.Len(t, section.Items, 1)
	assert.Equal(t, "Test 1:1", section.Items[0]["reference"])

	var site map[string]struct {
		Source string `json:"source"`
	}
	h.getJSON(t, "/api/site", nil, &site)
	assert.Len(t, site, 16)
	assert.Equal(t, "store", site["biblical-verses"].Source)

	var slide struct {
		Index int                    `json:"index"`
		Count int                    `json:"count"`
		Item  map[string]interface{} `json:"item"`
	}
	h.getJSON(t, "/api/site/slides/biblical-verses", nil, &slide)
	assert.Equal(t, 0, slide.Index)
	assert.Equal(t, 1, slide.Count)
	assert.Equal(t, "Test", slide.Item["text"])

	resp = h.request(t, http.MethodGet, "/api/site/slides/events", nil, "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	resp = h.request(t, http.MethodGet, "/api/site/sermons", nil, "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	h := newHarness(t)

	var health struct {
		Status   string `json:"status"`
		Database string `json:"database"`
	}
	h.getJSON(t, "/api/health", nil, &health)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "ok", health.Database)
}

func TestAPIVersion(t *testing.T) {
	h := newHarness(t)

	req, _ := http.NewRequest(http.MethodGet, "/api/site/hero", nil)
	req.Header.Set(middleware.VersionHeader, "1.0")
	resp := h.do(t, req, nil)
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	assert.Equal(t, middleware.APIVersion, resp.Header.Get(middleware.VersionHeader))

	req, _ = http.NewRequest(http.MethodGet, "/api/site/hero", nil)
	req.Header.Set(middleware.VersionHeader, "2.0.0")
	resp = h.do(t, req, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
