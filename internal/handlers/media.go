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

package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/chapel-cms/internal/services"
	"github.com/localnerve/chapel-cms/internal/utils"
)

// MediaHandler serves stored uploads publicly
type MediaHandler struct {
	Media *services.MediaUploader
}

// buckets that can be read publicly
var publicBuckets = map[string]bool{
	"images":       true,
	"podcasts":     true,
	"short-videos": true,
}

// GetObject handles GET /media/:bucket/*
func (h *MediaHandler) GetObject(c *fiber.Ctx) error {
	bucket := c.Params("bucket")
	key := c.Params("*")
	if !publicBuckets[bucket] {
		return utils.NotFoundResponse(c, "Bucket '"+bucket+"' not found")
	}

	r, err := h.Media.Open(c.UserContext(), bucket, key)
	if errors.Is(err, services.ErrObjectNotFound) {
		return utils.NotFoundResponse(c, "Object '"+key+"' not found")
	}
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, r.ContentType())
	c.Set(fiber.HeaderCacheControl, "public, max-age=31536000, immutable")
	c.Set(fiber.HeaderContentLength, strconv.FormatInt(r.Size(), 10))
	// fasthttp closes the reader once the body is sent
	return c.Status(fiber.StatusOK).SendStream(r, int(r.Size()))
}
