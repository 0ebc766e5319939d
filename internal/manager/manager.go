// manager.go
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

// Package manager drives the list and form cycle of one content resource:
// load the list, fill a draft, submit it, reload the list.
package manager

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/localnerve/chapel-cms/internal/resource"
	"github.com/localnerve/chapel-cms/pkg/client"
	"go.uber.org/zap"
)

// State of a Manager
type State int

const (
	Loading State = iota
	Idle
	Creating
	Editing
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Idle:
		return "idle"
	case Creating:
		return "creating"
	case Editing:
		return "editing"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var (
	// ErrBusy rejects form operations while the first list is loading
	ErrBusy = errors.New("the list is still loading")
	// ErrInvalidDraft rejects a draft with empty required fields. Nothing is sent.
	ErrInvalidDraft = errors.New("invalid draft")
	// ErrDeclined is returned when the operator declines a delete
	ErrDeclined = errors.New("delete declined")
	// ErrMediaDuration rejects a clip outside the window of its field. Nothing is sent.
	ErrMediaDuration = errors.New("clip length out of range")
)

// DurationProbe measures the playback duration of a file
type DurationProbe interface {
	Duration(r io.ReadSeeker) (time.Duration, error)
}

// Store is the admin API as seen by a Manager
type Store interface {
	List(ctx context.Context, name string) ([]resource.Row, error)
	Create(ctx context.Context, name string, draft resource.Row, files []client.File) ([]resource.Row, error)
	Update(ctx context.Context, name, id string, draft resource.Row, files []client.File) (resource.Row, error)
	Delete(ctx context.Context, name, id string) error
}

// Manager holds the list, draft and error banner of one resource.
// Managers of different resources share nothing.
type Manager struct {
	mu      sync.Mutex
	schema  resource.Schema
	store   Store
	log     *zap.Logger
	state   State
	editing string
	draft   resource.Row
	rows    []resource.Row
	banner  string
	probe   DurationProbe
}

// New creates a manager in the Loading state. Call Load to fetch the list.
func New(schema resource.Schema, store Store, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		schema: schema,
		store:  store,
		log:    log.With(zap.String("resource", schema.Name)),
		state:  Loading,
		draft:  schema.Draft(),
	}
}

// SetProbe enables the duration check of timed uploads before they are sent
func (m *Manager) SetProbe(p DurationProbe) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.probe = p
}

// Schema is the descriptor the manager was created with
func (m *Manager) Schema() resource.Schema {
	return m.schema
}

// State returns the current state and, when Editing, the record id
func (m *Manager) State() (State, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, m.editing
}

// Rows returns the list as last loaded
func (m *Manager) Rows() []resource.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]resource.Row(nil), m.rows...)
}

// Draft returns a copy of the form values
func (m *Manager) Draft() resource.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.draft.Clone()
}

// Banner is the message of the last failure, empty after a success
func (m *Manager) Banner() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.banner
}

// Load fetches the list. On failure the banner is set and the previous list kept.
func (m *Manager) Load(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reload(ctx)
}

// List loads and returns the list
func (m *Manager) List(ctx context.Context) ([]resource.Row, error) {
	if err := m.Load(ctx); err != nil {
		return m.Rows(), err
	}
	return m.Rows(), nil
}

func (m *Manager) reload(ctx context.Context) error {
	rows, err := m.store.List(ctx, m.schema.Name)
	if m.state == Loading {
		m.state = Idle
	}
	if err != nil {
		m.fail("list", err)
		return err
	}
	m.rows = rows
	m.banner = ""
	return nil
}

func (m *Manager) fail(op string, err error) {
	m.banner = err.Error()
	m.log.Warn("operation failed", zap.String("op", op), zap.Error(err))
}

// SetField sets one draft value. From Idle it starts a new record.
func (m *Manager) SetField(name string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Loading {
		return ErrBusy
	}
	if _, ok := m.schema.Field(name); !ok {
		return fmt.Errorf("%w: %s has no field %q", ErrInvalidDraft, m.schema.Name, name)
	}
	if m.state == Idle {
		m.state = Creating
	}
	m.draft[name] = value
	return nil
}

// StartEdit copies the fields of record into the draft and edits it
func (m *Manager) StartEdit(record resource.Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Loading {
		return ErrBusy
	}
	id := record.ID()
	if id == "" {
		return fmt.Errorf("%w: record has no id", ErrInvalidDraft)
	}
	m.draft, m.editing, m.state = m.fieldsOf(record), id, Editing
	return nil
}

// fieldsOf keeps the mutable fields of a record
func (m *Manager) fieldsOf(record resource.Row) resource.Row {
	draft := resource.Row{}
	for _, f := range m.schema.Fields {
		if v, ok := record[f.Name]; ok {
			draft[f.Name] = v
		}
	}
	return draft
}

// Cancel discards the draft without any call
func (m *Manager) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Loading {
		return
	}
	m.reset()
}

func (m *Manager) reset() {
	m.draft, m.editing, m.state = m.schema.Draft(), "", Idle
}

// merge applies values over the current draft
func (m *Manager) merge(values resource.Row) {
	for k, v := range values {
		m.draft[k] = v
	}
}

func (m *Manager) validate(files []client.File) error {
	var provided []string
	for _, f := range files {
		provided = append(provided, f.Field)
	}
	if missing := m.schema.Missing(m.draft, provided...); len(missing) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidDraft, resource.Missing(missing))
	}
	return m.checkDurations(files)
}

// checkDurations probes timed uploads against the window published by the schema
func (m *Manager) checkDurations(files []client.File) error {
	if m.probe == nil {
		return nil
	}
	for _, f := range files {
		rule, ok := m.schema.MediaFor(f.Field)
		if !ok || !rule.Timed() {
			continue
		}
		rs, ok := f.Content.(io.ReadSeeker)
		if !ok {
			continue
		}
		d, err := m.probe.Duration(rs)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrMediaDuration, f.Name, err)
		}
		if _, err := rs.Seek(0, io.SeekStart); err != nil {
			return err
		}
		if seconds := int(math.Round(d.Seconds())); !rule.Accepts(seconds) {
			return fmt.Errorf("%w: %s lasts %d seconds, accepted %d to %d", ErrMediaDuration, f.Name, seconds, rule.MinSeconds, rule.MaxSeconds)
		}
	}
	return nil
}

// Create submits values, merged over the draft, as a new record. An invalid
// draft makes no call. On failure the banner is set and the draft kept.
func (m *Manager) Create(ctx context.Context, values resource.Row, files ...client.File) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Loading {
		return ErrBusy
	}
	if m.state != Creating {
		m.draft, m.editing, m.state = m.schema.Draft(), "", Creating
	}
	m.merge(values)
	if err := m.validate(files); err != nil {
		return err
	}

	if _, err := m.store.Create(ctx, m.schema.Name, m.draft.Clone(), files); err != nil {
		m.fail("create", err)
		return err
	}
	m.log.Info("record created")
	m.reset()
	return m.reload(ctx)
}

// Update submits values, merged over the draft, as the new content of record
// id. On failure the manager stays Editing with the banner set.
func (m *Manager) Update(ctx context.Context, id string, values resource.Row, files ...client.File) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Loading {
		return ErrBusy
	}
	if m.state != Editing || m.editing != id {
		m.draft, m.editing, m.state = m.schema.Draft(), id, Editing
		for _, row := range m.rows {
			if row.ID() == id {
				m.draft = m.fieldsOf(row)
			}
		}
	}
	m.merge(values)
	if err := m.validate(files); err != nil {
		return err
	}

	if _, err := m.store.Update(ctx, m.schema.Name, id, m.draft.Clone(), files); err != nil {
		m.fail("update", err)
		return err
	}
	m.log.Info("record updated", zap.String("id", id))
	m.reset()
	return m.reload(ctx)
}

// Delete removes record id once confirm approves it. A declined or missing
// confirmation changes nothing and makes no call.
func (m *Manager) Delete(ctx context.Context, id string, confirm func() bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Loading {
		return ErrBusy
	}
	if confirm == nil || !confirm() {
		return ErrDeclined
	}

	if err := m.store.Delete(ctx, m.schema.Name, id); err != nil {
		m.fail("delete", err)
		return err
	}
	m.log.Info("record deleted", zap.String("id", id))
	if m.editing == id {
		m.reset()
	}
	return m.reload(ctx)
}
