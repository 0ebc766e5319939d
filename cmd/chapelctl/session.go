// session.go
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
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/localnerve/chapel-cms/pkg/client"
)

// savedSession is the content of the session file
type savedSession struct {
	URL   string `json:"url"`
	Token string `json:"token"`
	Email string `json:"email"`
}

var errNoSession = errors.New("not signed in, run 'chapelctl login' first")

func sessionPath() (string, error) {
	dir := configDir
	if dir == "" {
		var err error
		if dir, err = os.UserConfigDir(); err != nil {
			return "", fmt.Errorf("failed to locate the config directory: %w", err)
		}
	}
	return filepath.Join(dir, "chapelctl", "session"), nil
}

func loadSession() (*savedSession, error) {
	path, err := sessionPath()
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errNoSession
	}
	if err != nil {
		return nil, err
	}
	var s savedSession
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("corrupt session file %s: %w", path, err)
	}
	if s.Token == "" {
		return nil, errNoSession
	}
	return &s, nil
}

func saveSession(s *savedSession) error {
	path, err := sessionPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

func removeSession() error {
	path, err := sessionPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// resolveURL picks the server URL: flag, environment, session, default
func resolveURL(s *savedSession) string {
	switch {
	case serverURL != "":
		return serverURL
	case os.Getenv("CHAPEL_URL") != "":
		return os.Getenv("CHAPEL_URL")
	case s != nil && s.URL != "":
		return s.URL
	}
	return defaultURL
}

func newClient(token string, url string) *client.Client {
	opts := []client.Option{client.WithToken(token)}
	if httpClient != nil {
		opts = append(opts, client.WithHTTPClient(httpClient))
	}
	return client.New(url, opts...)
}

// signedIn returns a client resuming the saved session
func signedIn() (*client.Client, *savedSession, error) {
	s, err := loadSession()
	if err != nil {
		return nil, nil, err
	}
	return newClient(s.Token, resolveURL(s)), s, nil
}
