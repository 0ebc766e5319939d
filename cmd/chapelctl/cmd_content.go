// cmd_content.go
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
	"strconv"
	"strings"

	"github.com/localnerve/chapel-cms/internal/manager"
	"github.com/localnerve/chapel-cms/internal/resource"
	"github.com/localnerve/chapel-cms/internal/services"
	"github.com/localnerve/chapel-cms/pkg/client"
	"github.com/spf13/cobra"
)

var (
	setValues  []string
	fileValues []string
	assumeYes  bool
	runsLimit  int
)

// resourcesCmd lists the content resources
var resourcesCmd = &cobra.Command{
	Use:   "resources",
	Short: "List the content resources and their fields",
	Args:  cobra.NoArgs,
	RunE:  runResources,
}

// listCmd lists the records of one resource
var listCmd = &cobra.Command{
	Use:   "list <resource>",
	Short: "List the records of a resource",
	Args:  cobra.ExactArgs(1),
	RunE:  runList,
}

// createCmd creates a record
var createCmd = &cobra.Command{
	Use:   "create <resource>",
	Short: "Create a record",
	Example: `  chapelctl create biblical-verses --set text="Car Dieu a tant aimé le monde" --set reference="Jean 3:16"
  chapelctl create short-videos --set title=Louange --file video_url=./louange.mp4`,
	Args: cobra.ExactArgs(1),
	RunE: runCreate,
}

// editCmd replaces the fields of a record
var editCmd = &cobra.Command{
	Use:   "edit <resource> <id>",
	Short: "Edit a record",
	Args:  cobra.ExactArgs(2),
	RunE:  runEdit,
}

// deleteCmd deletes a record after confirmation
var deleteCmd = &cobra.Command{
	Use:   "delete <resource> <id>",
	Short: "Delete a record",
	Args:  cobra.ExactArgs(2),
	RunE:  runDelete,
}

// importCmd runs the bulk import of the bundled seed content
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import the bundled seed content",
	Args:  cobra.NoArgs,
	RunE:  runImport,
}

// runsCmd lists past import and provisioning runs
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List past import and provisioning runs",
	Args:  cobra.NoArgs,
	RunE:  runRuns,
}

func runResources(cmd *cobra.Command, args []string) error {
	c, _, err := signedIn()
	if err != nil {
		return err
	}
	schemas, err := c.Schemas(cmd.Context())
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(schemas))
	for _, s := range schemas {
		rows = append(rows, []string{s.Name, s.Label, string(s.Category), strings.Join(s.Required(), ", ")})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"resource", "label", "category", "required"}, rows))
	return nil
}

// openManager loads a manager for the named resource
func openManager(cmd *cobra.Command, name string) (*manager.Manager, error) {
	c, _, err := signedIn()
	if err != nil {
		return nil, err
	}
	schema, err := c.Schema(cmd.Context(), name)
	if err != nil {
		return nil, err
	}
	m := manager.New(schema, c, logger.Named(name))
	m.SetProbe(services.MP4Probe{})
	if err := m.Load(cmd.Context()); err != nil {
		return nil, err
	}
	return m, nil
}

func runList(cmd *cobra.Command, args []string) error {
	m, err := openManager(cmd, args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	rows := m.Rows()
	if len(rows) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("Aucun élément"))
		return nil
	}
	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%s (%d)", m.Schema().Label, len(rows))))
	fmt.Fprintln(out, renderRows(m.Schema(), rows))
	return nil
}

func runCreate(cmd *cobra.Command, args []string) error {
	m, err := openManager(cmd, args[0])
	if err != nil {
		return err
	}
	values, err := parseValues(m.Schema())
	if err != nil {
		return err
	}
	files, closeFiles, err := openFiles(m.Schema())
	if err != nil {
		return err
	}
	defer closeFiles()

	if err := m.Create(cmd.Context(), values, files...); err != nil {
		return mutationError(m, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("✓ Élément créé"))
	return nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	m, err := openManager(cmd, args[0])
	if err != nil {
		return err
	}
	id := args[1]
	var record resource.Row
	for _, row := range m.Rows() {
		if row.ID() == id {
			record = row
		}
	}
	if record == nil {
		return fmt.Errorf("%s %s not found", args[0], id)
	}
	if err := m.StartEdit(record); err != nil {
		return err
	}

	values, err := parseValues(m.Schema())
	if err != nil {
		return err
	}
	files, closeFiles, err := openFiles(m.Schema())
	if err != nil {
		return err
	}
	defer closeFiles()

	if err := m.Update(cmd.Context(), id, values, files...); err != nil {
		return mutationError(m, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("✓ Élément modifié"))
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	m, err := openManager(cmd, args[0])
	if err != nil {
		return err
	}
	id := args[1]
	out := cmd.OutOrStdout()
	confirm := func() bool {
		if assumeYes {
			return true
		}
		fmt.Fprintf(out, "Supprimer %s %s ? [o/N] ", args[0], id)
		return confirmed(cmd.InOrStdin())
	}

	err = m.Delete(cmd.Context(), id, confirm)
	if errors.Is(err, manager.ErrDeclined) {
		fmt.Fprintln(out, mutedStyle.Render("Suppression annulée"))
		return nil
	}
	if err != nil {
		return mutationError(m, err)
	}
	fmt.Fprintln(out, successStyle.Render("✓ Élément supprimé"))
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	c, _, err := signedIn()
	if err != nil {
		return err
	}
	op, err := c.Import(cmd.Context())
	out := cmd.OutOrStdout()
	if op != nil {
		for _, line := range op.Results {
			fmt.Fprintln(out, styleLogLine(line))
		}
	}
	return err
}

func runRuns(cmd *cobra.Command, args []string) error {
	c, _, err := signedIn()
	if err != nil {
		return err
	}
	runs, err := c.Runs(cmd.Context(), runsLimit)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		status := successStyle.Render("ok")
		if !r.Success {
			status = errorStyle.Render("échec")
		}
		last := ""
		if len(r.Log) > 0 {
			last = truncate(r.Log[len(r.Log)-1])
		}
		rows = append(rows, []string{
			strconv.FormatUint(r.ID, 10),
			r.Kind,
			status,
			r.Actor,
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			last,
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"id", "kind", "status", "actor", "date", "last"}, rows))
	return nil
}

// parseValues reads the --set flags as typed field values
func parseValues(schema resource.Schema) (resource.Row, error) {
	raw := resource.Row{}
	for _, kv := range setValues {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --set %q, expected key=value", kv)
		}
		if _, known := schema.Field(key); !known {
			return nil, fmt.Errorf("%s has no field %q", schema.Name, key)
		}
		raw[key] = value
	}
	return schema.Coerce(raw)
}

// openFiles opens the --file flags, returning a func closing them all
func openFiles(schema resource.Schema) ([]client.File, func(), error) {
	var (
		files  []client.File
		opened []*os.File
	)
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	for _, fv := range fileValues {
		field, path, ok := strings.Cut(fv, "=")
		if !ok {
			closeAll()
			return nil, nil, fmt.Errorf("invalid --file %q, expected field=path", fv)
		}
		if _, media := schema.MediaFor(field); !media {
			closeAll()
			return nil, nil, fmt.Errorf("%s has no media field %q", schema.Name, field)
		}
		file, f, err := client.OpenFile(field, path)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		opened = append(opened, f)
		files = append(files, file)
	}
	return files, closeAll, nil
}

// mutationError prefers the banner the manager kept for a failed call
func mutationError(m *manager.Manager, err error) error {
	if errors.Is(err, manager.ErrInvalidDraft) || errors.Is(err, manager.ErrMediaDuration) {
		return err
	}
	if banner := m.Banner(); banner != "" {
		return errors.New(banner)
	}
	return err
}

func confirmed(in io.Reader) bool {
	line, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "o", "oui", "y", "yes":
		return true
	}
	return false
}

func styleLogLine(line string) string {
	switch {
	case strings.HasPrefix(line, "✅"):
		return successStyle.Render(line)
	case strings.HasPrefix(line, "⚠️"):
		return warningStyle.Render(line)
	case strings.HasPrefix(line, "❌"):
		return errorStyle.Render(line)
	}
	return line
}
