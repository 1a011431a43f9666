// Package document holds the dual representation of one open subtitle
// file: structured entries plus the free-text notepad view, tied together
// by a dirty flag. All operations are copy-on-write and return new values,
// so no partially updated state is ever observable.
package document

import (
	"github.com/google/uuid"

	"subpad/internal/notepad"
	"subpad/internal/subtitle"
	"subpad/internal/timecode"
)

// Document is one open file. While Dirty is false, NotepadText is kept
// byte-for-byte equal to notepad.Format(Entries); once the notepad is
// edited or raw text imported, Dirty flips and the notepad text is the
// authoritative side until an explicit sync.
type Document struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Entries     []subtitle.Entry `json:"entries"`
	NotepadText string           `json:"notepadText"`
	Dirty       bool             `json:"dirty"`
}

// New creates a clean document whose notepad text is derived from the
// given entries.
func New(name string, entries []subtitle.Entry) Document {
	return Document{
		ID:          uuid.NewString(),
		Name:        name,
		Entries:     entries,
		NotepadText: notepad.Format(entries),
		Dirty:       false,
	}
}

// NewRaw creates a dirty document carrying unparsed text and no entries.
// This is the fallback for imports that yield no recognizable cues.
func NewRaw(name, rawText string) Document {
	return Document{
		ID:          uuid.NewString(),
		Name:        name,
		Entries:     []subtitle.Entry{},
		NotepadText: rawText,
		Dirty:       true,
	}
}

func (d Document) cloneEntries() []subtitle.Entry {
	entries := make([]subtitle.Entry, len(d.Entries))
	copy(entries, d.Entries)
	return entries
}

// withEntries swaps in a new entry slice, recomputing the notepad text
// when the document is clean. Dirty documents keep their notepad text: it
// is authoritative until synced.
func (d Document) withEntries(entries []subtitle.Entry) Document {
	d.Entries = entries
	if !d.Dirty {
		d.NotepadText = notepad.Format(entries)
	}
	return d
}

// AddEntry appends a new empty entry. It starts 100ms after the last
// entry's end with a 2 second default duration, or at zero for an empty
// document.
func (d Document) AddEntry() Document {
	start := "00:00:00,000"
	end := "00:00:02,000"
	if len(d.Entries) > 0 {
		lastEndMs := timecode.Parse(d.Entries[len(d.Entries)-1].EndTime)
		start = timecode.FormatSRT(lastEndMs + 100)
		end = timecode.FormatSRT(lastEndMs + 2100)
	}
	return d.withEntries(append(d.cloneEntries(), subtitle.NewEntry(start, end, "")))
}

// UpdateEntry replaces the fields of the entry matching id, keeping the id
// itself. Unknown ids leave the document unchanged.
func (d Document) UpdateEntry(id string, updated subtitle.Entry) Document {
	entries := d.cloneEntries()
	for i, entry := range entries {
		if entry.ID == id {
			updated.ID = id
			entries[i] = updated
			return d.withEntries(entries)
		}
	}
	return d
}

// DeleteEntry removes the entry matching id.
func (d Document) DeleteEntry(id string) Document {
	entries := make([]subtitle.Entry, 0, len(d.Entries))
	for _, entry := range d.Entries {
		if entry.ID != id {
			entries = append(entries, entry)
		}
	}
	return d.withEntries(entries)
}

// EditNotepad replaces the notepad text. Manual edits always mark the
// document dirty, even if the text happens to match the derived form.
func (d Document) EditNotepad(text string) Document {
	d.NotepadText = text
	d.Dirty = true
	return d
}

// ImportRaw overwrites the notepad text with raw file content, leaving
// entries untouched and marking the document dirty.
func (d Document) ImportRaw(rawText string) Document {
	return d.EditNotepad(rawText)
}

// Sync reconciles the notepad text back into the entries by position and
// clears the dirty flag. The notepad text itself is left exactly as typed:
// stray or out-of-range blocks are never rewritten back.
func (d Document) Sync() Document {
	d.Entries = notepad.Reparse(d.NotepadText, d.Entries)
	d.Dirty = false
	return d
}
