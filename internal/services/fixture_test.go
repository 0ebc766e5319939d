// fixture_test.go
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

package services

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/localnerve/chapel-cms/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gocloud.dev/blob"
	"gocloud.dev/blob/memblob"
	"gorm.io/gorm"
)

// fakeProbe reports a fixed duration for every file
type fakeProbe struct {
	d   time.Duration
	err error
}

func (p *fakeProbe) Duration(io.ReadSeeker) (time.Duration, error) {
	return p.d, p.err
}

type fixture struct {
	db      *gorm.DB
	root    *blob.Bucket
	media   *MediaUploader
	probe   *fakeProbe
	metrics *Metrics
	catalog *Catalog
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		db:      testutil.NewDB(t),
		root:    memblob.OpenBucket(nil),
		probe:   &fakeProbe{d: 35 * time.Second},
		metrics: NewMetrics(prometheus.NewRegistry()),
	}
	t.Cleanup(func() { _ = f.root.Close() })

	f.media = NewMediaUploader(f.root, MediaOptions{
		BaseURL: "http://chapel.test/",
		Probe:   f.probe,
		Window:  DurationWindow{Min: 30, Max: 40},
		Logger:  zap.NewNop(),
		Metrics: f.metrics,
	})
	f.catalog = NewCatalog(f.db, f.media, f.metrics)
	return f
}

func (f *fixture) binding(t *testing.T, name string) Binding {
	t.Helper()
	b, ok := f.catalog.Lookup(name)
	require.True(t, ok, "resource %s is not registered", name)
	return b
}

// objects lists every key stored under the blob root
func (f *fixture) objects(t *testing.T) []string {
	t.Helper()
	var keys []string
	iter := f.root.List(nil)
	for {
		obj, err := iter.Next(context.Background())
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		keys = append(keys, obj.Key)
	}
	return keys
}
