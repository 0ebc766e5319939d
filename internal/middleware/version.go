// version.go
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

package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/chapel-cms/internal/types"
)

const (
	// APIVersion is the version of the JSON API served
	APIVersion = "1.0.0"
	// VersionHeader carries the requested and the served API version
	VersionHeader = "X-Api-Version"
)

// VersionMiddleware parses the X-Api-Version header and stores it in context.
// Requests for another major version are refused.
func VersionMiddleware() fiber.Handler {
	major, _, _ := strings.Cut(APIVersion, ".")
	return func(c *fiber.Ctx) error {
		version := c.Get(VersionHeader, APIVersion)

		// Support version aliases
		switch version {
		case "1", "1.0":
			version = "1.0.0"
		}

		if requested, _, _ := strings.Cut(version, "."); requested != major {
			return &types.CustomError{
				Code:    fiber.StatusBadRequest,
				Message: "Unsupported API version " + version + ", this server speaks " + APIVersion,
				Type:    "version",
			}
		}

		c.Locals("apiVersion", version)
		c.Set(VersionHeader, APIVersion)

		return c.Next()
	}
}
