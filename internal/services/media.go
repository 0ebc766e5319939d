// media.go
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
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/localnerve/chapel-cms/internal/resource"
	"go.uber.org/zap"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
)

// Media error kinds
const (
	MediaTypeMismatch = "media-type"
	MediaDuration     = "media-duration"
)

// MediaError rejects an upload before anything is stored
type MediaError struct {
	Kind    string
	Field   string
	Message string
}

func (e *MediaError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// StoredObject is an uploaded object and its public URL
type StoredObject struct {
	Bucket string
	Key    string
	URL    string
}

// MediaUploader stores uploaded files in named buckets under one blob root
type MediaUploader struct {
	root    *blob.Bucket
	baseURL string
	probe   DurationProbe
	window  DurationWindow
	log     *zap.Logger
	metrics *Metrics
}

// MediaOptions configure a MediaUploader
type MediaOptions struct {
	BaseURL string
	Probe   DurationProbe
	Window  DurationWindow
	Logger  *zap.Logger
	Metrics *Metrics
}

// OpenMediaBucket opens the blob root named by a gocloud URL (file://, mem://, s3://)
func OpenMediaBucket(ctx context.Context, mediaURL string) (*blob.Bucket, error) {
	bucket, err := blob.OpenBucket(ctx, mediaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open media bucket %s: %w", mediaURL, err)
	}
	return bucket, nil
}

// NewMediaUploader wraps an open blob root
func NewMediaUploader(root *blob.Bucket, opts MediaOptions) *MediaUploader {
	if opts.Probe == nil {
		opts.Probe = MP4Probe{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &MediaUploader{
		root:    root,
		baseURL: strings.TrimSuffix(opts.BaseURL, "/"),
		probe:   opts.Probe,
		window:  opts.Window,
		log:     opts.Logger,
		metrics: opts.Metrics,
	}
}

func (m *MediaUploader) bucket(name string) *blob.Bucket {
	return blob.PrefixedBucket(m.root, name+"/")
}

// Check verifies an upload against its media rule without storing anything.
// It returns the clip length in whole seconds for timed fields, zero otherwise.
func (m *MediaUploader) Check(up resource.Upload, rule resource.MediaField) (int, error) {
	sniffed, err := mimetype.DetectReader(up.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read upload %s: %w", up.Filename, err)
	}
	if _, err := up.Body.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	// octet-stream means the content was not recognised
	unknown := sniffed.Is("application/octet-stream")

	declared, _, _ := mime.ParseMediaType(up.ContentType)
	if declared == "" || declared == "application/octet-stream" {
		declared = mime.TypeByExtension(path.Ext(up.Filename))
		if declared == "" && !unknown {
			declared = sniffed.String()
		}
		declared, _, _ = mime.ParseMediaType(declared)
	}
	if !strings.HasPrefix(declared, rule.Kind.Prefix()) {
		return 0, &MediaError{
			Kind:    MediaTypeMismatch,
			Field:   rule.Field,
			Message: fmt.Sprintf("expected %s* file, got %q", rule.Kind.Prefix(), up.ContentType),
		}
	}
	if !unknown && !strings.HasPrefix(sniffed.String(), rule.Kind.Prefix()) {
		return 0, &MediaError{
			Kind:    MediaTypeMismatch,
			Field:   rule.Field,
			Message: fmt.Sprintf("declared %s but content is %s", declared, sniffed.String()),
		}
	}

	if !rule.Timed() {
		return 0, nil
	}
	d, err := m.probe.Duration(up.Body)
	if err != nil {
		return 0, &MediaError{Kind: MediaDuration, Field: rule.Field, Message: err.Error()}
	}
	if _, err := up.Body.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	seconds := Seconds(d)
	if !m.window.Contains(seconds) {
		return 0, &MediaError{
			Kind:    MediaDuration,
			Field:   rule.Field,
			Message: fmt.Sprintf("video lasts %d seconds, accepted %s", seconds, m.window),
		}
	}
	return seconds, nil
}

// Store writes the upload to its bucket under a fresh key and returns the public URL
func (m *MediaUploader) Store(ctx context.Context, up resource.Upload, rule resource.MediaField) (*StoredObject, error) {
	ext := strings.ToLower(path.Ext(up.Filename))
	if ext == "" {
		if exts, _ := mime.ExtensionsByType(up.ContentType); len(exts) > 0 {
			ext = exts[0]
		}
	}
	key := uuid.NewString() + ext

	w, err := m.bucket(rule.Bucket).NewWriter(ctx, key, &blob.WriterOptions{ContentType: up.ContentType})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s/%s: %w", rule.Bucket, key, err)
	}
	if _, err := io.Copy(w, up.Body); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to upload %s/%s: %w", rule.Bucket, key, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to upload %s/%s: %w", rule.Bucket, key, err)
	}

	return &StoredObject{Bucket: rule.Bucket, Key: key, URL: m.PublicURL(rule.Bucket, key)}, nil
}

// PublicURL derives the public URL of a stored object
func (m *MediaUploader) PublicURL(bucket, key string) string {
	return fmt.Sprintf("%s/media/%s/%s", m.baseURL, bucket, key)
}

// Compensate removes objects whose record was never written.
// Failures are logged and counted, never returned.
func (m *MediaUploader) Compensate(ctx context.Context, objects []*StoredObject) {
	for _, obj := range objects {
		err := m.bucket(obj.Bucket).Delete(ctx, obj.Key)
		if err == nil || gcerrors.Code(err) == gcerrors.NotFound {
			m.log.Info("removed upload of failed mutation", zap.String("bucket", obj.Bucket), zap.String("key", obj.Key))
			continue
		}
		m.metrics.orphan()
		m.log.Error("orphaned upload",
			zap.String("bucket", obj.Bucket),
			zap.String("key", obj.Key),
			zap.Error(err),
		)
	}
}

// ErrObjectNotFound is returned by Open for a missing object
var ErrObjectNotFound = errors.New("object not found")

// Open reads a stored object
func (m *MediaUploader) Open(ctx context.Context, bucket, key string) (*blob.Reader, error) {
	if key == "" || strings.Contains(key, "..") {
		return nil, ErrObjectNotFound
	}
	r, err := m.bucket(bucket).NewReader(ctx, key, nil)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, ErrObjectNotFound
		}
		return nil, err
	}
	return r, nil
}

// Ping checks that the blob root is reachable
func (m *MediaUploader) Ping(ctx context.Context) error {
	ok, err := m.root.IsAccessible(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("media bucket is not accessible")
	}
	return nil
}
