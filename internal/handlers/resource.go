// resource.go
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

package handlers

import (
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/chapel-cms/internal/resource"
	"github.com/localnerve/chapel-cms/internal/services"
	"github.com/localnerve/chapel-cms/internal/types"
	"github.com/localnerve/chapel-cms/internal/utils"
)

// ResourceHandler serves the admin CRUD routes of every content resource
type ResourceHandler struct {
	Catalog *services.Catalog
}

func (h *ResourceHandler) binding(c *fiber.Ctx) (services.Binding, error) {
	name := c.Params("resource")
	b, ok := h.Catalog.Lookup(name)
	if !ok {
		return nil, fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("Resource '%s' not found", name))
	}
	return b, nil
}

// ListSchemas handles GET /api/admin/resources
// @Summary List resource descriptors
// @Description Field lists, sort keys, media rules and draft defaults of every content resource, in dashboard order
// @Tags Admin
// @Produce json
// @Success 200 {array} resource.Schema
// @Failure 401 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /admin/resources [get]
func (h *ResourceHandler) ListSchemas(c *fiber.Ctx) error {
	return utils.SuccessResponse(c, h.Catalog.Schemas(), fiber.StatusOK)
}

// List handles GET /api/admin/:resource
// @Summary List records
// @Description All records of a resource in its display order
// @Tags Admin
// @Produce json
// @Param resource path string true "Resource name"
// @Success 200 {array} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 503 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /admin/{resource} [get]
func (h *ResourceHandler) List(c *fiber.Ctx) error {
	b, err := h.binding(c)
	if err != nil {
		return err
	}
	rows, err := b.List(c.UserContext())
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, rows, fiber.StatusOK)
}

// Get handles GET /api/admin/:resource/:id
// @Summary Get a record
// @Tags Admin
// @Produce json
// @Param resource path string true "Resource name"
// @Param id path string true "Record id"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /admin/{resource}/{id} [get]
func (h *ResourceHandler) Get(c *fiber.Ctx) error {
	b, err := h.binding(c)
	if err != nil {
		return err
	}
	row, err := b.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, row, fiber.StatusOK)
}

// Create handles POST /api/admin/:resource
// @Summary Create records
// @Description A JSON object or array of drafts, or one draft as a multipart form with files for the media fields
// @Tags Admin
// @Accept json,mpfd
// @Produce json
// @Param resource path string true "Resource name"
// @Param body body object true "Draft or list of drafts"
// @Success 201 {object} utils.MutationResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 422 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /admin/{resource} [post]
func (h *ResourceHandler) Create(c *fiber.Ctx) error {
	b, err := h.binding(c)
	if err != nil {
		return err
	}

	var (
		drafts  []resource.Row
		uploads []resource.Upload
	)
	if isMultipart(c) {
		draft, files, closeFiles, err := parseForm(c)
		if err != nil {
			return err
		}
		defer closeFiles()
		drafts, uploads = []resource.Row{draft}, files
	} else {
		var body types.FlexList[resource.Row]
		if err := c.BodyParser(&body); err != nil {
			return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation")
		}
		drafts = body.Slice()
	}

	rows, err := b.Create(c.UserContext(), drafts, uploads)
	if err != nil {
		return err
	}
	return utils.MutationResponse(c, fiber.StatusCreated, rows, len(rows))
}

// Update handles PUT /api/admin/:resource/:id
// @Summary Update a record
// @Description Replaces every mutable field of the record. The id of the path wins over any id in the body.
// @Tags Admin
// @Accept json,mpfd
// @Produce json
// @Param resource path string true "Resource name"
// @Param id path string true "Record id"
// @Param body body object true "Draft"
// @Success 200 {object} utils.MutationResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 422 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /admin/{resource}/{id} [put]
func (h *ResourceHandler) Update(c *fiber.Ctx) error {
	b, err := h.binding(c)
	if err != nil {
		return err
	}

	var (
		draft   resource.Row
		uploads []resource.Upload
	)
	if isMultipart(c) {
		form, files, closeFiles, err := parseForm(c)
		if err != nil {
			return err
		}
		defer closeFiles()
		draft, uploads = form, files
	} else if err := c.BodyParser(&draft); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation")
	}

	row, err := b.Update(c.UserContext(), c.Params("id"), draft, uploads)
	if err != nil {
		return err
	}
	return utils.MutationResponse(c, fiber.StatusOK, []resource.Row{row}, 1)
}

// Delete handles DELETE /api/admin/:resource/:id?confirm=true
// @Summary Delete a record
// @Description Permanent. Refused with 428 unless the destructive action is confirmed.
// @Tags Admin
// @Produce json
// @Param resource path string true "Resource name"
// @Param id path string true "Record id"
// @Param confirm query bool true "Confirmation of the destructive action"
// @Success 200 {object} utils.MutationResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 428 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /admin/{resource}/{id} [delete]
func (h *ResourceHandler) Delete(c *fiber.Ctx) error {
	b, err := h.binding(c)
	if err != nil {
		return err
	}
	if !c.QueryBool("confirm") {
		return utils.ErrorResponse(c, "Delete must be confirmed with ?confirm=true", fiber.StatusPreconditionRequired, "confirmation.required")
	}

	if err := b.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return utils.MutationResponse(c, fiber.StatusOK, nil, 1)
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm)
}

// parseForm reads a multipart draft. The returned func closes the uploaded files.
func parseForm(c *fiber.Ctx) (resource.Row, []resource.Upload, func(), error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil, nil, fiber.NewError(fiber.StatusBadRequest, "Invalid multipart form")
	}

	draft := resource.Row{}
	for key, values := range form.Value {
		if len(values) > 0 {
			draft[key] = values[0]
		}
	}

	var (
		uploads []resource.Upload
		opened  []multipart.File
	)
	closeFiles := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	for field, headers := range form.File {
		for _, fh := range headers {
			f, err := fh.Open()
			if err != nil {
				closeFiles()
				return nil, nil, nil, fiber.NewError(fiber.StatusBadRequest, "Invalid upload "+fh.Filename)
			}
			opened = append(opened, f)
			uploads = append(uploads, resource.Upload{
				Field:       field,
				Filename:    fh.Filename,
				ContentType: fh.Header.Get(fiber.HeaderContentType),
				Size:        fh.Size,
				Body:        f,
			})
		}
	}
	return draft, uploads, closeFiles, nil
}
