// response.go
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

package utils

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// SuccessResponse sends a standard success response
func SuccessResponse(c *fiber.Ctx, data interface{}, status int) error {
	return c.Status(status).JSON(data)
}

// ErrorResponse sends the standard error envelope
func ErrorResponse(c *fiber.Ctx, message string, status int, errorType string) error {
	return c.Status(status).JSON(fiber.Map{
		"status":    status,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}

// RedirectErrorResponse sends the error envelope with the route the client should open
func RedirectErrorResponse(c *fiber.Ctx, message string, status int, errorType, redirect string) error {
	return c.Status(status).JSON(fiber.Map{
		"status":    status,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
		"redirect":  redirect,
	})
}

// NotFoundResponse sends a 404 not found response
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"status":    fiber.StatusNotFound,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      "not-found",
	})
}

// MutationResponse sends the result of a create, update or delete
func MutationResponse(c *fiber.Ctx, status int, data interface{}, affectedRows int) error {
	body := fiber.Map{
		"message":      "Success",
		"ok":           true,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"affectedRows": affectedRows,
	}
	if data != nil {
		body["data"] = data
	}
	return c.Status(status).JSON(body)
}

// OperationResponse sends the result of an import or provisioning run
func OperationResponse(c *fiber.Ctx, status int, success bool, key string, lines []string, errMessage string) error {
	if lines == nil {
		lines = []string{}
	}
	body := fiber.Map{
		"success": success,
		key:       lines,
	}
	if errMessage != "" {
		body["error"] = errMessage
	}
	return c.Status(status).JSON(body)
}

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	Ok        bool   `json:"ok"`
	Timestamp string `json:"timestamp"`
	URL       string `json:"url"`
	Type      string `json:"type,omitempty"`
	Redirect  string `json:"redirect,omitempty"`
}

// MutationResponseStruct defines the schema for mutation success responses
type MutationResponseStruct struct {
	Message      string                   `json:"message"`
	Ok           bool                     `json:"ok"`
	Timestamp    string                   `json:"timestamp"`
	AffectedRows int                      `json:"affectedRows"`
	Data         []map[string]interface{} `json:"data,omitempty"`
}

// OperationResponseStruct defines the schema of import and setup responses
type OperationResponseStruct struct {
	Success bool     `json:"success"`
	Results []string `json:"results,omitempty"`
	Logs    []string `json:"logs,omitempty"`
	Error   string   `json:"error,omitempty"`
}
