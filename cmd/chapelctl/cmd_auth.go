// cmd_auth.go
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
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string
)

// loginCmd opens a session and saves it
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and keep the session",
	RunE:  runLogin,
}

// logoutCmd ends the session
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the session",
	RunE:  runLogout,
}

// whoamiCmd shows the signed in principal
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed in admin",
	RunE:  runWhoami,
}

func runLogin(cmd *cobra.Command, args []string) error {
	in := bufio.NewReader(cmd.InOrStdin())
	email := loginEmail
	if email == "" {
		var err error
		if email, err = prompt(cmd, in, "Email: "); err != nil {
			return err
		}
	}
	password := loginPassword
	if password == "" {
		password = os.Getenv("CHAPELCTL_PASSWORD")
	}
	if password == "" {
		var err error
		if password, err = prompt(cmd, in, "Mot de passe: "); err != nil {
			return err
		}
	}

	url := resolveURL(nil)
	c := newClient("", url)
	session, err := c.Login(cmd.Context(), email, password)
	if err != nil {
		return err
	}
	if err := saveSession(&savedSession{URL: url, Token: c.Token(), Email: session.Email}); err != nil {
		return fmt.Errorf("signed in but failed to save the session: %w", err)
	}
	logger.Debug("session saved")

	fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("✓ Connecté en tant que "+session.Email))
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	c, _, err := signedIn()
	if errors.Is(err, errNoSession) {
		fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("Aucune session"))
		return nil
	}
	if err != nil {
		return err
	}
	if err := c.Logout(cmd.Context()); err != nil {
		logger.Warn("server logout failed, forgetting the session anyway")
	}
	if err := removeSession(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("✓ Déconnecté"))
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	c, _, err := signedIn()
	if err != nil {
		return err
	}
	session, err := c.Session(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render(session.Email))
	fmt.Fprintf(out, "role: %s\n", session.Role)
	fmt.Fprintf(out, "capabilities: %s\n", strings.Join(session.Capabilities, ", "))
	return nil
}

func prompt(cmd *cobra.Command, in *bufio.Reader, label string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), label)
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("%s is required", strings.TrimSuffix(strings.TrimSpace(label), ":"))
	}
	return line, nil
}
