// errors.go
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
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/chapel-cms/internal/database"
	"github.com/localnerve/chapel-cms/internal/resource"
	"github.com/localnerve/chapel-cms/internal/services"
	"github.com/localnerve/chapel-cms/internal/types"
	"github.com/localnerve/chapel-cms/internal/utils"
)

// kindStatus maps store error kinds to HTTP status codes
var kindStatus = map[database.Kind]int{
	database.KindValidation: fiber.StatusBadRequest,
	database.KindNotFound:   fiber.StatusNotFound,
	database.KindConstraint: fiber.StatusConflict,
	database.KindPermission: fiber.StatusForbidden,
	database.KindTransient:  fiber.StatusServiceUnavailable,
	database.KindUnknown:    fiber.StatusInternalServerError,
}

// ErrorHandler renders any error returned by a handler or middleware in the
// standard envelope. The type field carries the error kind.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var custom *types.CustomError
	if errors.As(err, &custom) {
		if custom.Redirect != "" {
			return utils.RedirectErrorResponse(c, custom.Message, custom.Code, custom.Type, custom.Redirect)
		}
		return utils.ErrorResponse(c, custom.Message, custom.Code, custom.Type)
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		if fe.Code == fiber.StatusNotFound {
			return utils.NotFoundResponse(c, fe.Message)
		}
		return utils.ErrorResponse(c, fe.Message, fe.Code, "http")
	}

	status, kind := statusOf(err)
	return utils.ErrorResponse(c, errorMessage(err), status, kind)
}

// statusOf classifies a service error
func statusOf(err error) (int, string) {
	var mediaErr *services.MediaError
	if errors.As(err, &mediaErr) {
		return fiber.StatusUnprocessableEntity, mediaErr.Kind
	}

	var se *database.Error
	if errors.As(err, &se) {
		return kindStatus[se.Kind], string(se.Kind)
	}

	var ve *resource.ValidationError
	if errors.As(err, &ve) {
		return fiber.StatusBadRequest, string(database.KindValidation)
	}

	return fiber.StatusInternalServerError, string(database.KindUnknown)
}

// errorMessage is the text shown to the operator, the store message when there is one
func errorMessage(err error) string {
	var se *database.Error
	if errors.As(err, &se) {
		return se.Message()
	}
	return err.Error()
}
