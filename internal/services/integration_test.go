// integration_test.go
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

//go:build integration

package services

import (
	"context"
	"testing"

	"github.com/localnerve/chapel-cms/data"
	"github.com/localnerve/chapel-cms/internal/database"
	"github.com/localnerve/chapel-cms/internal/resource"
	"github.com/localnerve/chapel-cms/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gocloud.dev/blob/memblob"
	"gorm.io/gorm"
)

// containerDB starts a database container of dbType and migrates it
func containerDB(t *testing.T, dbType string) *gorm.DB {
	t.Helper()
	testutil.RequireDocker(t)

	opts := testutil.OptionsFromEnv()
	opts.DBType = dbType
	opts.DBImage = testutil.DefaultImage(dbType)
	opts.AuthzImage = ""

	tc := testutil.StartContainers(t, opts)
	t.Cleanup(func() { tc.Terminate(t) })

	db := tc.Connect(t)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func TestStoreIntegration(t *testing.T) {
	for _, dbType := range []string{"postgres", "mariadb"} {
		t.Run(dbType, func(t *testing.T) {
			ctx := context.Background()
			db := containerDB(t, dbType)

			root := memblob.OpenBucket(nil)
			t.Cleanup(func() { _ = root.Close() })
			media := NewMediaUploader(root, MediaOptions{
				BaseURL: "http://chapel.test",
				Window:  DurationWindow{Min: 30, Max: 40},
				Logger:  zap.NewNop(),
			})
			catalog := NewCatalog(db, media, nil)

			t.Run("crud", func(t *testing.T) {
				for name, draft := range validDrafts {
					b, ok := catalog.Lookup(name)
					require.True(t, ok, name)

					created, err := b.Create(ctx, []resource.Row{draft.Clone()}, nil)
					require.NoError(t, err, name)
					id := created[0].ID()

					_, err = b.Update(ctx, id, editedDrafts[name].Clone(), nil)
					require.NoError(t, err, name)

					got, err := b.Get(ctx, id)
					require.NoError(t, err, name)
					assertFields(t, editedDrafts[name], got)

					require.NoError(t, b.Delete(ctx, id), name)
					_, err = b.Get(ctx, id)
					assert.True(t, database.IsKind(err, database.KindNotFound), "%s: %v", name, err)
				}
			})

			t.Run("constraint violation", func(t *testing.T) {
				b, _ := catalog.Lookup("settings")
				_, err := b.Create(ctx, []resource.Row{validDrafts["settings"].Clone()}, nil)
				require.NoError(t, err)
				_, err = b.Create(ctx, []resource.Row{validDrafts["settings"].Clone()}, nil)
				assert.True(t, database.IsKind(err, database.KindConstraint), "%v", err)
			})

			t.Run("update missing record", func(t *testing.T) {
				b, _ := catalog.Lookup("biblical-verses")
				_, err := b.Update(ctx, "00000000-0000-0000-0000-000000000000", validDrafts["biblical-verses"].Clone(), nil)
				assert.True(t, database.IsKind(err, database.KindNotFound), "%v", err)
			})

			t.Run("import", func(t *testing.T) {
				seed, err := LoadSeed(data.Seed)
				require.NoError(t, err)
				svc := NewImportService(db, seed, nil, zap.NewNop())

				first := svc.Run(ctx, "admin@chapel.test")
				require.True(t, first.Success, "lines: %v", first.Lines)
				assert.Contains(t, first.Lines, "✅ 4 versets importés")

				second := svc.Run(ctx, "admin@chapel.test")
				require.True(t, second.Success, "lines: %v", second.Lines)
				assert.Contains(t, second.Lines, "⚠️ Versets déjà importés")

				verses, _ := catalog.Lookup("biblical-verses")
				rows, err := verses.List(ctx)
				require.NoError(t, err)
				assert.Len(t, rows, 4)
			})
		})
	}
}
