// Package notepad converts between structured entries and the numbered
// free-text blocks shown in the editor's notepad pane.
package notepad

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"subpad/internal/subtitle"
)

var (
	blockSeparator = regexp.MustCompile(`\n{2,}`)
	numberedBlock  = regexp.MustCompile(`(?s)^(\d+)\s+(.*)$`)
)

// Format renders entries as numbered blocks: a 3-digit 1-based index, a
// space, then the entry text, blocks joined by a blank line. This is the
// canonical notepad representation of a clean document.
func Format(entries []subtitle.Entry) string {
	blocks := make([]string, len(entries))
	for i, entry := range entries {
		blocks[i] = fmt.Sprintf("%03d %s", i+1, entry.Text)
	}
	return strings.Join(blocks, "\n\n")
}

// Reparse applies edited notepad text back onto existing entries. Each
// block's leading digit run is a 1-based position; the matching entry gets
// its text replaced while timestamps and id stay untouched. Blocks whose
// position is out of range are dropped silently. Reparsing never creates,
// removes, or reorders entries.
func Reparse(notepadText string, existing []subtitle.Entry) []subtitle.Entry {
	updated := make([]subtitle.Entry, len(existing))
	copy(updated, existing)

	for _, block := range blockSeparator.Split(notepadText, -1) {
		m := numberedBlock.FindStringSubmatch(block)
		if m == nil {
			continue
		}
		position, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		index := position - 1
		if index < 0 || index >= len(updated) {
			continue
		}
		updated[index].Text = strings.TrimSpace(m[2])
	}

	return updated
}
