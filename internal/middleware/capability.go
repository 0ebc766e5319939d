// capability.go
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
	"slices"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/chapel-cms/internal/models"
	"github.com/localnerve/chapel-cms/internal/types"
)

// Capability is an operation a route requires
type Capability string

const (
	CapRead      Capability = "read"
	CapWrite     Capability = "write"
	CapDelete    Capability = "delete"
	CapImport    Capability = "import"
	CapProvision Capability = "provision"
)

// roleCapabilities is the capability set granted to each role
var roleCapabilities = map[string][]Capability{
	models.RoleAdmin: {CapRead, CapWrite, CapDelete, CapImport, CapProvision},
}

// Can reports whether role holds capability
func Can(role string, capability Capability) bool {
	return slices.Contains(roleCapabilities[role], capability)
}

// Capabilities lists the capabilities of a role
func Capabilities(role string) []Capability {
	return slices.Clone(roleCapabilities[role])
}

// RequireCapability checks the session principal's role for capability.
// It must run after RequireSession.
func RequireCapability(capability Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFrom(c)
		if !ok {
			return deny(c, "No session principal")
		}
		if !Can(principal.Role, capability) {
			return &types.CustomError{
				Code:    fiber.StatusForbidden,
				Message: "Role \"" + principal.Role + "\" lacks the " + string(capability) + " capability",
				Type:    "session.capability",
			}
		}
		return c.Next()
	}
}
