package subtitle

import (
	"fmt"
	"strings"

	"subpad/internal/timecode"
)

// Serialize renders entries (or, for the raw format, the notepad text
// verbatim) into the requested output format.
func Serialize(entries []Entry, notepadText string, format Format) string {
	switch format {
	case FormatRaw:
		return notepadText
	case FormatVTT:
		return serializeVTT(entries)
	case FormatTXT:
		return serializeTXT(entries)
	case FormatLRC:
		return serializeLRC(entries)
	default:
		return serializeSRT(entries)
	}
}

func serializeSRT(entries []Entry) string {
	blocks := make([]string, len(entries))
	for i, entry := range entries {
		blocks[i] = fmt.Sprintf(
			"%d\n%s --> %s\n%s\n",
			i+1, entry.StartTime, entry.EndTime, entry.Text,
		)
	}
	return strings.Join(blocks, "\n")
}

func serializeVTT(entries []Entry) string {
	var sb strings.Builder
	sb.WriteString("WEBVTT\n\n")

	blocks := make([]string, len(entries))
	for i, entry := range entries {
		start := strings.ReplaceAll(entry.StartTime, ",", ".")
		end := strings.ReplaceAll(entry.EndTime, ",", ".")
		blocks[i] = fmt.Sprintf("%s --> %s\n%s\n", start, end, entry.Text)
	}
	sb.WriteString(strings.Join(blocks, "\n"))
	return sb.String()
}

func serializeTXT(entries []Entry) string {
	lines := make([]string, len(entries))
	for i, entry := range entries {
		lines[i] = entry.Text
	}
	return strings.Join(lines, "\n")
}

// LRC carries one line per cue: an [MM:SS.hh] tag from the start time
// followed by the text with internal newlines flattened to spaces.
func serializeLRC(entries []Entry) string {
	lines := make([]string, len(entries))
	for i, entry := range entries {
		ms := timecode.Parse(entry.StartTime)
		minutes := ms / 60000
		seconds := (ms % 60000) / 1000
		hundredths := (ms % 1000) / 10
		text := strings.ReplaceAll(entry.Text, "\n", " ")
		lines[i] = fmt.Sprintf(
			"[%02d:%02d.%02d]%s",
			minutes, seconds, hundredths, text,
		)
	}
	return strings.Join(lines, "\n")
}

// ExportName derives the download filename for a document: any known
// extension is stripped and the format's own extension appended. Raw
// exports become plain .txt files.
func ExportName(name string, format Format) string {
	extension := string(format)
	if format == FormatRaw {
		extension = "txt"
	}
	return fmt.Sprintf("%s.%s", BaseName(name), extension)
}
