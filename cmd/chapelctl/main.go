// main.go
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

// Command chapelctl manages the content of a chapel-cms server from the terminal.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/localnerve/chapel-cms/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultURL = "http://localhost:3000"

var (
	serverURL string
	verbose   bool

	// configDir overrides the user config directory holding the session file
	configDir string
	// httpClient replaces the default HTTP client when set
	httpClient *http.Client

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "chapelctl",
	Short: "Manage the content of a chapel-cms server",
	Long: `chapelctl lists, creates, edits and deletes the records of every content
resource (verses, events, images, podcasts, short videos...) through the admin API.

Sign in once with 'chapelctl login'; the session is kept in
~/.config/chapelctl/session until 'chapelctl logout'.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "warn"
		if verbose {
			level = "debug"
		}
		var err error
		logger, err = logging.New(level, "console")
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "url", "", "server URL (default $CHAPEL_URL, the session URL or "+defaultURL+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	loginCmd.Flags().StringVar(&loginEmail, "email", "", "admin email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "admin password (default $CHAPELCTL_PASSWORD or prompt)")

	createCmd.Flags().StringArrayVar(&setValues, "set", nil, "field value as key=value, repeatable")
	createCmd.Flags().StringArrayVar(&fileValues, "file", nil, "file to upload for a media field as field=path, repeatable")
	editCmd.Flags().StringArrayVar(&setValues, "set", nil, "field value as key=value, repeatable")
	editCmd.Flags().StringArrayVar(&fileValues, "file", nil, "file to upload for a media field as field=path, repeatable")
	deleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "delete without asking for confirmation")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum runs listed")

	rootCmd.AddCommand(
		loginCmd,
		logoutCmd,
		whoamiCmd,
		resourcesCmd,
		listCmd,
		createCmd,
		editCmd,
		deleteCmd,
		importCmd,
		runsCmd,
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("✗ "+err.Error()))
		os.Exit(1)
	}
}
