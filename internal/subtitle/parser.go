package subtitle

import (
	"regexp"
	"strings"
)

// cue block shape: numeric label, timing line, then text. The label itself
// is discarded; display numbering is always positional.
var cueBlock = regexp.MustCompile(
	`(?s)^\s*\d+\s*\n` +
		`(\d{2}:\d{2}:\d{2},\d{3})\s*-->\s*(\d{2}:\d{2}:\d{2},\d{3})\s*\n?` +
		`(.*)$`,
)

var blankLines = regexp.MustCompile(`\n{2,}`)

// Parse extracts timed cues from SRT-style text, in file order. Timestamps
// are taken verbatim; cue text is trimmed but keeps internal newlines.
// Blocks that do not match the cue shape are skipped, and an empty result
// means "not a structured subtitle format" rather than an error; callers
// fall back to raw-text handling.
func Parse(sourceText string) []Entry {
	text := strings.ReplaceAll(sourceText, "\r\n", "\n")
	text = strings.TrimPrefix(text, "\ufeff")

	var entries []Entry
	for _, block := range blankLines.Split(text, -1) {
		m := cueBlock.FindStringSubmatch(block)
		if m == nil {
			continue
		}
		entries = append(entries, NewEntry(m[1], m[2], strings.TrimSpace(m[3])))
	}
	return entries
}
