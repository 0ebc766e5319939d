// models_test.go
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
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNextSeqIncreases(t *testing.T) {
	prev := nextSeq()
	for i := 0; i < 1000; i++ {
		next := nextSeq()
		require.Greater(t, next, prev)
		prev = next
	}
}

func TestRecordBeforeCreate(t *testing.T) {
	v := &BiblicalVerse{Text: "t", Reference: "r"}
	require.NoError(t, v.BeforeCreate(nil))
	assert.Len(t, v.ID, 36)
	assert.NotZero(t, v.Seq)

	// an assigned id is kept
	id := v.ID
	require.NoError(t, v.BeforeCreate(nil))
	assert.Equal(t, id, v.ID)
}

func TestOperationRunLines(t *testing.T) {
	run, err := NewOperationRun(OperationImport, "admin@example.com", true, []string{"un", "deux"})
	require.NoError(t, err)
	assert.Equal(t, []string{"un", "deux"}, run.Lines())
	assert.JSONEq(t, `["un","deux"]`, string(run.Log.JSON))

	empty, err := NewOperationRun(OperationProvision, "", false, nil)
	require.NoError(t, err)
	assert.Empty(t, empty.Lines())
}

func TestJSONColumn(t *testing.T) {
	raw, err := json.Marshal(OperationRun{})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"log":[]`)

	obj, err := JSONOf(map[string]int{"a": 1})
	require.NoError(t, err)
	assert.Nil(t, obj.Strings())
}

func TestAllHasUniqueTables(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range All() {
		tabler, ok := m.(interface{ TableName() string })
		require.True(t, ok, "%T has no table name", m)
		assert.False(t, seen[tabler.TableName()], tabler.TableName())
		seen[tabler.TableName()] = true
	}
	assert.Len(t, seen, 18)
}
