// video_probe.go
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
	"fmt"
	"io"
	"math"
	"time"

	"github.com/abema/go-mp4"
)

// DurationProbe measures the playback duration of a media file
type DurationProbe interface {
	Duration(r io.ReadSeeker) (time.Duration, error)
}

// MP4Probe reads the duration from the movie header of an ISO BMFF file (mp4, mov, m4v)
type MP4Probe struct{}

func (MP4Probe) Duration(r io.ReadSeeker) (time.Duration, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	info, err := mp4.Probe(r)
	if err != nil {
		return 0, fmt.Errorf("failed to probe video: %w", err)
	}
	if info.Timescale == 0 {
		return 0, fmt.Errorf("failed to probe video: no movie header")
	}
	seconds := float64(info.Duration) / float64(info.Timescale)
	return time.Duration(seconds * float64(time.Second)), nil
}

// DurationWindow is the accepted clip length in whole seconds
type DurationWindow struct {
	Min          int
	Max          int
	MaxInclusive bool
}

// Seconds rounds a duration to whole seconds
func Seconds(d time.Duration) int {
	return int(math.Round(d.Seconds()))
}

// Contains reports whether seconds falls inside the window
func (w DurationWindow) Contains(seconds int) bool {
	if seconds < w.Min {
		return false
	}
	if w.MaxInclusive {
		return seconds <= w.Max
	}
	return seconds < w.Max
}

func (w DurationWindow) String() string {
	closing := ")"
	if w.MaxInclusive {
		closing = "]"
	}
	return fmt.Sprintf("[%d, %d%s seconds", w.Min, w.Max, closing)
}
