// operation_run.go
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

package models

import (
	"time"
)

// Operation kinds recorded in operation_runs
const (
	OperationImport    = "import"
	OperationProvision = "provision"
)

// OperationRun records one bulk import or provisioning call and the lines it logged
type OperationRun struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Kind      string    `gorm:"size:50;not null;index" json:"kind"`
	Success   bool      `gorm:"not null" json:"success"`
	Actor     string    `gorm:"size:255" json:"actor,omitempty"`
	Log       JSON      `json:"log" swaggertype:"array,string"`
	CreatedAt time.Time `json:"created_at"`
}

func (OperationRun) TableName() string {
	return "operation_runs"
}

// NewOperationRun builds a run with its log lines encoded as a JSON array
func NewOperationRun(kind, actor string, success bool, lines []string) (*OperationRun, error) {
	if lines == nil {
		lines = []string{}
	}
	log, err := JSONOf(lines)
	if err != nil {
		return nil, err
	}
	return &OperationRun{
		Kind:    kind,
		Success: success,
		Actor:   actor,
		Log:     log,
	}, nil
}

// Lines decodes the logged lines
func (r *OperationRun) Lines() []string {
	return r.Log.Strings()
}
