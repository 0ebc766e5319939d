// operations.go
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
	"github.com/localnerve/chapel-cms/internal/middleware"
	"github.com/localnerve/chapel-cms/internal/models"
	"github.com/localnerve/chapel-cms/internal/services"
	"github.com/localnerve/chapel-cms/internal/utils"
	"gorm.io/gorm"
)

// OperationsHandler serves the bulk import, provisioning and run history routes
type OperationsHandler struct {
	DB       *gorm.DB
	Importer *services.ImportService
	Setup    *services.SetupService
}

// Import handles POST /api/admin/import and POST /api/import-existing-data
// @Summary Bulk import
// @Description Seeds verses, events, images and sections. Tables already imported are reported, not duplicated.
// @Tags Operations
// @Produce json
// @Success 200 {object} utils.OperationResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.OperationResponseStruct
// @Security CookieAuth
// @Router /admin/import [post]
func (h *OperationsHandler) Import(c *fiber.Ctx) error {
	principal, _ := middleware.PrincipalFrom(c)

	result := h.Importer.Run(c.UserContext(), principal.Email)
	if !result.Success {
		return utils.OperationResponse(c, fiber.StatusInternalServerError, false, "results", result.Lines, errorMessage(result.Err))
	}
	return utils.OperationResponse(c, fiber.StatusOK, true, "results", result.Lines, "")
}

// SetupDB handles POST /api/setup-db
// @Summary Provision the admin principal
// @Description Requires the service role key (SETUP_SECRET). Checks the tables and creates the admin account.
// @Tags Operations
// @Accept json
// @Produce json
// @Param body body services.SetupRequest true "Service role key and admin credentials"
// @Success 200 {object} utils.OperationResponseStruct
// @Failure 400 {object} utils.OperationResponseStruct
// @Failure 403 {object} utils.OperationResponseStruct
// @Failure 500 {object} utils.OperationResponseStruct
// @Router /setup-db [post]
func (h *OperationsHandler) SetupDB(c *fiber.Ctx) error {
	var req services.SetupRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.OperationResponse(c, fiber.StatusBadRequest, false, "logs", nil, "Invalid input")
	}

	if err := h.Setup.Authorize(req); err != nil {
		switch {
		case errors.Is(err, services.ErrSetupKeyMissing):
			return utils.OperationResponse(c, fiber.StatusBadRequest, false, "logs", nil, "Service Role Key requis")
		case errors.Is(err, services.ErrSetupDisabled):
			return utils.OperationResponse(c, fiber.StatusForbidden, false, "logs", nil, err.Error())
		default:
			return utils.OperationResponse(c, fiber.StatusForbidden, false, "logs", nil, "Service Role Key invalide")
		}
	}

	result := h.Setup.Run(c.UserContext(), req)
	switch {
	case errors.Is(result.Err, services.ErrSetupCredentials):
		return utils.OperationResponse(c, fiber.StatusBadRequest, false, "logs", result.Lines, result.Err.Error())
	case !result.Success:
		return utils.OperationResponse(c, fiber.StatusInternalServerError, false, "logs", result.Lines, errorMessage(result.Err))
	}
	return utils.OperationResponse(c, fiber.StatusOK, true, "logs", result.Lines, "")
}

// Runs handles GET /api/admin/runs
// @Summary Recorded runs
// @Description The most recent import and provisioning runs with the lines they logged
// @Tags Operations
// @Produce json
// @Param limit query int false "Maximum runs returned" default(20)
// @Success 200 {array} models.OperationRun
// @Security CookieAuth
// @Router /admin/runs [get]
func (h *OperationsHandler) Runs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	runs, err := services.ListRuns(c.UserContext(), h.DB, limit)
	if err != nil {
		return err
	}
	if runs == nil {
		runs = []models.OperationRun{}
	}
	return utils.SuccessResponse(c, runs, fiber.StatusOK)
}

// Provision handles POST /api/admin/provision
// @Summary Add an admin principal
// @Description Signed in admins create further admin accounts without the service role key
// @Tags Operations
// @Accept json
// @Produce json
// @Param body body services.SetupRequest true "Admin credentials"
// @Success 200 {object} utils.OperationResponseStruct
// @Failure 400 {object} utils.OperationResponseStruct
// @Failure 500 {object} utils.OperationResponseStruct
// @Security CookieAuth
// @Router /admin/provision [post]
func (h *OperationsHandler) Provision(c *fiber.Ctx) error {
	var req services.SetupRequest
	if err := c.BodyParser(&req); err != nil || req.AdminEmail == "" || req.AdminPassword == "" {
		return utils.OperationResponse(c, fiber.StatusBadRequest, false, "logs", nil, services.ErrSetupCredentials.Error())
	}

	result := h.Setup.Run(c.UserContext(), req)
	if !result.Success {
		return utils.OperationResponse(c, fiber.StatusInternalServerError, false, "logs", result.Lines, errorMessage(result.Err))
	}
	return utils.OperationResponse(c, fiber.StatusOK, true, "logs", result.Lines, "")
}
