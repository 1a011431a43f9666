package subtitle

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"subpad/internal/timecode"
)

// represents single timed cue
type Entry struct {
	ID        string `json:"id"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Text      string `json:"text"`
}

// NewEntry creates an entry with a fresh id. Ids are opaque, stable for the
// entry's lifetime and never reused.
func NewEntry(startTime, endTime, text string) Entry {
	return Entry{
		ID:        uuid.NewString(),
		StartTime: startTime,
		EndTime:   endTime,
		Text:      text,
	}
}

// DurationSeconds returns the cue length in seconds. Inverted ranges are
// tolerated and come back negative.
func (e Entry) DurationSeconds() float64 {
	startMs := timecode.Parse(e.StartTime)
	endMs := timecode.Parse(e.EndTime)
	return float64(endMs-startMs) / 1000
}

// CPS returns characters per second for the cue, 0 when the duration is not
// positive.
func (e Entry) CPS() int {
	duration := e.DurationSeconds()
	if duration <= 0 {
		return 0
	}
	chars := len([]rune(strings.ReplaceAll(e.Text, "\n", "")))
	cps := float64(chars) / duration
	return int(cps + 0.5)
}

// represents supported export formats
type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
	FormatTXT Format = "txt"
	FormatLRC Format = "lrc"
	FormatRaw Format = "raw"
)

var knownExtension = regexp.MustCompile(`(?i)\.(srt|vtt|txt|lrc)$`)

// BaseName strips any recognized subtitle or text extension from a
// filename. It is the case-insensitive merge key used during import.
func BaseName(filename string) string {
	return strings.TrimSpace(knownExtension.ReplaceAllString(filename, ""))
}

// IsValidFormat reports whether a format name is one of the export formats.
func IsValidFormat(format Format) bool {
	switch format {
	case FormatSRT, FormatVTT, FormatTXT, FormatLRC, FormatRaw:
		return true
	default:
		return false
	}
}
