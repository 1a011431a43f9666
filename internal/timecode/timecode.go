// Package timecode converts between HH:MM:SS,mmm subtitle timestamps and
// integer millisecond counts.
package timecode

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// strict shape a manual timestamp edit must match before it is accepted
var strictPattern = regexp.MustCompile(`^\d{2}:\d{2}:\d{2},\d{3}$`)

// Parse converts an HH:MM:SS,mmm timestamp to milliseconds. Empty input or
// input with fewer than three colon-separated parts yields 0 rather than an
// error; downstream duration and CPS displays depend on that fallback.
func Parse(timestamp string) int {
	if timestamp == "" {
		return 0
	}
	parts := strings.Split(timestamp, ":")
	if len(parts) != 3 {
		return 0
	}
	hours, _ := strconv.Atoi(parts[0])
	minutes, _ := strconv.Atoi(parts[1])
	secondsParts := strings.SplitN(parts[2], ",", 2)
	seconds, _ := strconv.Atoi(secondsParts[0])
	ms := 0
	if len(secondsParts) > 1 {
		ms, _ = strconv.Atoi(secondsParts[1])
	}
	return hours*3600000 + minutes*60000 + seconds*1000 + ms
}

// Format converts milliseconds to HH:MM:SS<sep>mmm. The separator is ","
// for SRT and "." for VTT.
func Format(ms int, separator string) string {
	hours := ms / 3600000
	minutes := (ms % 3600000) / 60000
	seconds := (ms % 60000) / 1000
	millis := ms % 1000
	return fmt.Sprintf(
		"%02d:%02d:%02d%s%03d",
		hours, minutes, seconds, separator, millis,
	)
}

// FormatSRT formats milliseconds with the comma separator.
func FormatSRT(ms int) string {
	return Format(ms, ",")
}

// Nudge shifts a timestamp by deltaMs, clamping at zero.
func Nudge(timestamp string, deltaMs int) string {
	ms := Parse(timestamp) + deltaMs
	if ms < 0 {
		ms = 0
	}
	return FormatSRT(ms)
}

// IsValid reports whether a timestamp matches the strict HH:MM:SS,mmm
// shape. Manual edits that fail this check are reverted, not rejected with
// an error.
func IsValid(timestamp string) bool {
	return strictPattern.MatchString(timestamp)
}
