// Package availability answers whether an asset is bookable at a point in
// time, from its maintenance window and status metadata.
package availability

import (
	"strconv"
	"strings"
	"time"

	"github.com/Ross1116/sitespace-app-sub000/internal/models"
)

// statuses that mark an asset wholly unavailable when no maintenance window
// is set. Matching is case-insensitive; broken/repair match as substrings.
var blockedStatuses = []string{"maintenance", "retired"}
var blockedSubstrings = []string{"broken", "repair"}

// IsBlocked reports whether the asset is unavailable at the given instant.
//
// With both maintenance dates present, the window blocks inclusively from
// local midnight of the start date to 23:59:59 of the end date; the dates are
// normalized by taking the date-only prefix of possibly-ISO inputs. If the
// dates do not parse as finite numeric components, blocking falls back to the
// status rules instead of treating the asset as available. That fallback is a
// deliberate safety default, not an oversight.
func IsBlocked(asset models.Asset, at time.Time) bool {
	if asset.MaintenanceStartDate != "" && asset.MaintenanceEndDate != "" {
		from, okFrom := parseDay(asset.MaintenanceStartDate)
		to, okTo := parseDay(asset.MaintenanceEndDate)
		if okFrom && okTo {
			windowStart := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, at.Location())
			windowEnd := time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, 0, at.Location())
			return !at.Before(windowStart) && !at.After(windowEnd)
		}
	}
	return blockedByStatus(asset.Status)
}

func blockedByStatus(status string) bool {
	s := strings.ToLower(strings.TrimSpace(status))
	for _, b := range blockedStatuses {
		if s == b {
			return true
		}
	}
	for _, sub := range blockedSubstrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// parseDay extracts a calendar date from the first ten characters of a
// YYYY-MM-DD or ISO datetime string, requiring all three components to be
// numeric.
func parseDay(s string) (time.Time, bool) {
	if len(s) < 10 {
		return time.Time{}, false
	}
	parts := strings.Split(s[:10], "-")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return time.Time{}, false
		}
		nums[i] = n
	}
	return time.Date(nums[0], time.Month(nums[1]), nums[2], 0, 0, 0, 0, time.Local), true
}
