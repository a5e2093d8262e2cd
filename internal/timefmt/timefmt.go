// Package timefmt converts second offsets into display strings.
package timefmt

import (
	"fmt"
	"math"
)

// FormatHMS renders a second offset as "MM:SS", or "HH:MM:SS" once the offset
// reaches one hour. Negative or invalid inputs clamp to zero.
func FormatHMS(secs float64) string {
	if math.IsNaN(secs) || math.IsInf(secs, 0) {
		secs = 0
	}
	total := int(math.Floor(secs))
	if total < 0 {
		total = 0
	}
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// FormatRange renders a start/end pair, e.g. "00:05 - 01:05".
func FormatRange(start, end float64) string {
	return FormatHMS(start) + " - " + FormatHMS(end)
}
