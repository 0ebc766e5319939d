// cli_test.go
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

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/localnerve/chapel-cms/internal/manager"
	"github.com/localnerve/chapel-cms/internal/testutil"
	"github.com/localnerve/chapel-cms/internal/testutil/apptest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setup points the CLI at an in-process server and a fresh config directory
func setup(t *testing.T) *apptest.App {
	t.Helper()
	app := apptest.New(t)
	serverURL = apptest.BaseURL
	configDir = t.TempDir()
	httpClient = app.HTTPClient()
	t.Setenv("CHAPELCTL_PASSWORD", "")
	t.Cleanup(func() {
		serverURL, configDir, httpClient = "", "", nil
	})
	return app
}

// execute runs chapelctl with args, feeding stdin and returning stdout
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	loginEmail, loginPassword = "", ""
	setValues, fileValues = nil, nil
	assumeYes = false

	var out bytes.Buffer
	rootCmd.SetArgs(append([]string{"--url", apptest.BaseURL}, args...))
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func login(t *testing.T) {
	t.Helper()
	_, err := execute(t, "", "login", "--email", apptest.AdminEmail, "--password", apptest.AdminPassword)
	require.NoError(t, err)
}

func TestLoginWhoamiLogout(t *testing.T) {
	setup(t)

	_, err := execute(t, "", "whoami")
	require.ErrorIs(t, err, errNoSession)

	_, err = execute(t, "", "login", "--email", apptest.AdminEmail, "--password", "wrong")
	require.Error(t, err)

	// password prompted on stdin
	out, err := execute(t, apptest.AdminPassword+"\n", "login", "--email", apptest.AdminEmail)
	require.NoError(t, err)
	assert.Contains(t, out, "Connecté en tant que "+apptest.AdminEmail)

	info, err := os.Stat(filepath.Join(configDir, "chapelctl", "session"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	out, err = execute(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, apptest.AdminEmail)
	assert.Contains(t, out, "role: admin")
	assert.Contains(t, out, "delete")

	out, err = execute(t, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Déconnecté")

	_, err = execute(t, "", "whoami")
	assert.ErrorIs(t, err, errNoSession)
}

func TestPasswordFromEnvironment(t *testing.T) {
	setup(t)
	t.Setenv("CHAPELCTL_PASSWORD", apptest.AdminPassword)

	_, err := execute(t, "", "login", "--email", apptest.AdminEmail)
	require.NoError(t, err)
}

func TestResources(t *testing.T) {
	setup(t)
	login(t)

	out, err := execute(t, "", "resources")
	require.NoError(t, err)
	assert.Contains(t, out, "biblical-verses")
	assert.Contains(t, out, "short-videos")
}

func TestVerseLifecycle(t *testing.T) {
	setup(t)
	login(t)

	out, err := execute(t, "", "list", "biblical-verses")
	require.NoError(t, err)
	assert.Contains(t, out, "Aucun élément")

	_, err = execute(t, "", "create", "biblical-verses", "--set", "text=Sans référence")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reference")

	_, err = execute(t, "", "create", "biblical-verses", "--set", "colour=red")
	require.Error(t, err)

	out, err = execute(t, "", "create", "biblical-verses", "--set", "text=Test", "--set", "reference=Test 1:1")
	require.NoError(t, err)
	assert.Contains(t, out, "Élément créé")

	rows, err := listRows(t, "biblical-verses")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	id := rows[0]

	out, err = execute(t, "", "list", "biblical-verses")
	require.NoError(t, err)
	assert.Contains(t, out, "Test 1:1")

	_, err = execute(t, "", "edit", "biblical-verses", id, "--set", "reference=Test 1:2")
	require.NoError(t, err)
	out, err = execute(t, "", "list", "biblical-verses")
	require.NoError(t, err)
	assert.Contains(t, out, "Test 1:2")

	_, err = execute(t, "", "edit", "biblical-verses", "00000000-0000-0000-0000-000000000000", "--set", "text=x")
	assert.Error(t, err)

	// declined on the prompt
	out, err = execute(t, "n\n", "delete", "biblical-verses", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Suppression annulée")
	rows, err = listRows(t, "biblical-verses")
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	out, err = execute(t, "o\n", "delete", "biblical-verses", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Élément supprimé")
	rows, err = listRows(t, "biblical-verses")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestCreateShortVideo(t *testing.T) {
	setup(t)
	login(t)

	dir := t.TempDir()
	short := filepath.Join(dir, "short.mp4")
	clip := filepath.Join(dir, "clip.mp4")
	require.NoError(t, os.WriteFile(short, testutil.MP4(20, 1), 0o644))
	require.NoError(t, os.WriteFile(clip, testutil.MP4(33, 1), 0o644))

	_, err := execute(t, "", "create", "short-videos", "--set", "title=Trop court", "--file", "video_url="+short)
	require.ErrorIs(t, err, manager.ErrMediaDuration)

	_, err = execute(t, "", "create", "short-videos", "--set", "title=Louange", "--file", "title="+clip)
	require.Error(t, err)

	out, err := execute(t, "", "create", "short-videos", "--set", "title=Louange", "--file", "video_url="+clip)
	require.NoError(t, err)
	assert.Contains(t, out, "Élément créé")

	out, err = execute(t, "", "list", "short-videos")
	require.NoError(t, err)
	assert.Contains(t, out, "Louange")
	assert.Contains(t, out, "33")
}

func TestImportAndRuns(t *testing.T) {
	setup(t)
	login(t)

	out, err := execute(t, "", "import")
	require.NoError(t, err)
	assert.Contains(t, out, "✅ Import complété!")

	out, err = execute(t, "", "import")
	require.NoError(t, err)
	assert.Contains(t, out, "Versets déjà importés")

	out, err = execute(t, "", "runs", "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "import")
	assert.Contains(t, out, apptest.AdminEmail)
}

// listRows returns the ids of the records of a resource through a client
func listRows(t *testing.T, name string) ([]string, error) {
	t.Helper()
	c, _, err := signedIn()
	require.NoError(t, err)
	rows, err := c.List(context.Background(), name)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID())
	}
	return ids, nil
}
