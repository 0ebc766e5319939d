// db.go
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

// Package testutil holds helpers shared by the package tests and the dev container binary.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/localnerve/chapel-cms/internal/database"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory SQLite database with every model migrated.
// The database lives until the test ends.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString()[:8])

	db, err := database.Open(sqlite.Open(dsn), logger.Silent)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get test database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

// QueryCounter counts the statements GORM issues on a database
type QueryCounter struct {
	n atomic.Int64
}

// Count is the number of statements issued since the counter was attached
func (q *QueryCounter) Count() int64 {
	return q.n.Load()
}

// CountQueries attaches a counter to every GORM callback chain of db
func CountQueries(t testing.TB, db *gorm.DB) *QueryCounter {
	t.Helper()
	q := &QueryCounter{}
	inc := func(*gorm.DB) { q.n.Add(1) }

	cb := db.Callback()
	register := []error{
		cb.Query().Before("gorm:query").Register("testutil:count_query", inc),
		cb.Create().Before("gorm:create").Register("testutil:count_create", inc),
		cb.Update().Before("gorm:update").Register("testutil:count_update", inc),
		cb.Delete().Before("gorm:delete").Register("testutil:count_delete", inc),
		cb.Row().Before("gorm:row").Register("testutil:count_row", inc),
		cb.Raw().Before("gorm:raw").Register("testutil:count_raw", inc),
	}
	for _, err := range register {
		if err != nil {
			t.Fatalf("Failed to register query counter: %v", err)
		}
	}
	return q
}
