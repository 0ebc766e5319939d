// inspect_schema.go
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
	"flag"
	"fmt"
	"log"

	"github.com/localnerve/chapel-cms/internal/config"
	"github.com/localnerve/chapel-cms/internal/database"
	"github.com/localnerve/chapel-cms/internal/models"
	"gorm.io/gorm/logger"
)

func main() {
	dbType := flag.String("type", "sqlite", "sqlite or sqlite3")
	flag.Parse()

	dialector, err := database.Dialector(&config.Config{DBType: *dbType, DBDatabase: ":memory:"})
	if err != nil {
		log.Fatal(err)
	}
	db, err := database.Open(dialector, logger.Silent)
	if err != nil {
		log.Fatal(err)
	}

	// Auto-migrate to see what GORM creates
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal(err)
	}

	for _, model := range models.All() {
		stmt := db.Model(model).Statement
		if err := stmt.Parse(model); err != nil {
			log.Fatal(err)
		}
		table := stmt.Schema.Table
		fmt.Printf("\n=== Table: %s ===\n", table)

		var ddl string
		db.Raw("SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&ddl)
		fmt.Println(ddl)

		columns, err := db.Migrator().ColumnTypes(model)
		if err != nil {
			log.Fatal(err)
		}
		for _, col := range columns {
			nullable, _ := col.Nullable()
			fmt.Printf("  %-20s %-12s null=%t\n", col.Name(), col.DatabaseTypeName(), nullable)
		}
	}
}
