// client.go
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

// Package client is a Go client of the chapel-cms admin API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/localnerve/chapel-cms/internal/resource"
)

const (
	// APIVersion is the API version the client speaks
	APIVersion = "1.0.0"

	sessionCookie = "chapel_session"
)

// Client calls the admin API with one session
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken resumes an existing session
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a client of the service at baseURL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 2 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token is the session token, empty before Login
func (c *Client) Token() string {
	return c.token
}

// APIError is an error envelope returned by the service
type APIError struct {
	Status   int    `json:"status"`
	Message  string `json:"message"`
	Type     string `json:"type"`
	Redirect string `json:"redirect,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// IsStatus reports whether err is an APIError with the given status
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Session is the signed in principal
type Session struct {
	ID           string   `json:"id"`
	Email        string   `json:"email"`
	Role         string   `json:"role"`
	Capabilities []string `json:"capabilities"`
}

// Operation is the result of an import run
type Operation struct {
	Success bool     `json:"success"`
	Results []string `json:"results"`
	Error   string   `json:"error,omitempty"`
}

// Run is one recorded import or provisioning run
type Run struct {
	ID        uint64    `json:"id"`
	Kind      string    `json:"kind"`
	Success   bool      `json:"success"`
	Actor     string    `json:"actor"`
	Log       []string  `json:"log"`
	CreatedAt time.Time `json:"created_at"`
}

// File is a file uploaded for a media field
type File struct {
	Field       string
	Name        string
	ContentType string
	Content     io.Reader
}

// OpenFile reads the file at path for field, detecting its content type.
// The caller closes the returned file.
func OpenFile(field, path string) (File, *os.File, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return File{}, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	f, err := os.Open(path)
	if err != nil {
		return File{}, nil, err
	}
	contentType, _, _ := strings.Cut(mtype.String(), ";")
	return File{Field: field, Name: filepath.Base(path), ContentType: contentType, Content: f}, f, nil
}

type mutationResponse struct {
	AffectedRows int            `json:"affectedRows"`
	Data         []resource.Row `json:"data"`
}

// Login signs in and keeps the session token
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}
	resp, err := c.send(ctx, http.MethodPost, "/api/auth/login", bytes.NewReader(body), "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var session Session
	if err := decode(resp, &session); err != nil {
		return nil, err
	}
	for _, cookie := range resp.Cookies() {
		if cookie.Name == sessionCookie {
			c.token = cookie.Value
		}
	}
	if c.token == "" {
		return nil, fmt.Errorf("login response did not set the %s cookie", sessionCookie)
	}
	return &session, nil
}

// Logout ends the session
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	c.token = ""
	return err
}

// Session returns the signed in principal
func (c *Client) Session(ctx context.Context) (*Session, error) {
	var session Session
	if err := c.do(ctx, http.MethodGet, "/api/admin/session", nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Schemas returns the descriptors of every resource in dashboard order
func (c *Client) Schemas(ctx context.Context) ([]resource.Schema, error) {
	var schemas []resource.Schema
	if err := c.do(ctx, http.MethodGet, "/api/admin/resources", nil, &schemas); err != nil {
		return nil, err
	}
	return schemas, nil
}

// Schema returns the descriptor of one resource
func (c *Client) Schema(ctx context.Context, name string) (resource.Schema, error) {
	schemas, err := c.Schemas(ctx)
	if err != nil {
		return resource.Schema{}, err
	}
	for _, s := range schemas {
		if s.Name == name {
			return s, nil
		}
	}
	return resource.Schema{}, &APIError{Status: http.StatusNotFound, Message: fmt.Sprintf("Resource '%s' not found", name), Type: "not-found"}
}

// List returns every record of a resource in display order
func (c *Client) List(ctx context.Context, name string) ([]resource.Row, error) {
	var rows []resource.Row
	if err := c.do(ctx, http.MethodGet, "/api/admin/"+url.PathEscape(name), nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Get returns one record
func (c *Client) Get(ctx context.Context, name, id string) (resource.Row, error) {
	var row resource.Row
	if err := c.do(ctx, http.MethodGet, "/api/admin/"+url.PathEscape(name)+"/"+url.PathEscape(id), nil, &row); err != nil {
		return nil, err
	}
	return row, nil
}

// Create inserts a record, uploading files for its media fields
func (c *Client) Create(ctx context.Context, name string, draft resource.Row, files []File) ([]resource.Row, error) {
	var out mutationResponse
	if err := c.mutate(ctx, http.MethodPost, "/api/admin/"+url.PathEscape(name), draft, files, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// Update replaces the mutable fields of a record
func (c *Client) Update(ctx context.Context, name, id string, draft resource.Row, files []File) (resource.Row, error) {
	var out mutationResponse
	if err := c.mutate(ctx, http.MethodPut, "/api/admin/"+url.PathEscape(name)+"/"+url.PathEscape(id), draft, files, &out); err != nil {
		return nil, err
	}
	if len(out.Data) == 0 {
		return nil, nil
	}
	return out.Data[0], nil
}

// Delete removes a record. Callers confirm with the operator first.
func (c *Client) Delete(ctx context.Context, name, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/admin/"+url.PathEscape(name)+"/"+url.PathEscape(id)+"?confirm=true", nil, nil)
}

// Import runs the bulk import. A failed run is returned with its lines and an error.
func (c *Client) Import(ctx context.Context) (*Operation, error) {
	resp, err := c.send(ctx, http.MethodPost, "/api/admin/import", nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var op Operation
	if err := json.NewDecoder(resp.Body).Decode(&op); err != nil {
		return nil, fmt.Errorf("failed to decode import response (status %d): %w", resp.StatusCode, err)
	}
	if !op.Success {
		return &op, &APIError{Status: resp.StatusCode, Message: op.Error, Type: "import"}
	}
	return &op, nil
}

// Runs returns the most recent import and provisioning runs
func (c *Client) Runs(ctx context.Context, limit int) ([]Run, error) {
	var runs []Run
	if err := c.do(ctx, http.MethodGet, "/api/admin/runs?limit="+strconv.Itoa(limit), nil, &runs); err != nil {
		return nil, err
	}
	return runs, nil
}

func (c *Client) mutate(ctx context.Context, method, path string, draft resource.Row, files []File, out any) error {
	if len(files) == 0 {
		body, err := json.Marshal(draft)
		if err != nil {
			return err
		}
		return c.do(ctx, method, path, bytes.NewReader(body), out, "application/json")
	}

	body, contentType, err := multipartBody(draft, files)
	if err != nil {
		return err
	}
	return c.do(ctx, method, path, body, out, contentType)
}

func multipartBody(draft resource.Row, files []File) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for key := range draft {
		if err := w.WriteField(key, draft.String(key)); err != nil {
			return nil, "", err
		}
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.Name))
		h.Set("Content-Type", f.ContentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", f.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// do sends a request and decodes a successful JSON response into out
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any, contentType ...string) error {
	ct := ""
	if len(contentType) > 0 {
		ct = contentType[0]
	}
	resp, err := c.send(ctx, method, path, body, ct)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decode(resp, out)
}

func (c *Client) send(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Api-Version", APIVersion)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: c.token})
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func decode(resp *http.Response, out any) error {
	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		raw, _ := io.ReadAll(resp.Body)
		if err := json.Unmarshal(raw, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(raw))
			if apiErr.Message == "" {
				apiErr.Message = http.StatusText(resp.StatusCode)
			}
		}
		apiErr.Status = resp.StatusCode
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
