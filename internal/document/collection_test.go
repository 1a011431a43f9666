package document

import (
	"errors"
	"testing"

	"subpad/internal/subtitle"
)

func twoDocCollection() Collection {
	a := New("Show.S01E01.srt", []subtitle.Entry{
		subtitle.NewEntry("00:00:01,000", "00:00:02,000", "a"),
	})
	b := NewRaw("notes.srt", "raw text")
	return Collection{Documents: []Document{a, b}, ActiveID: a.ID}
}

func TestSeed(t *testing.T) {
	c := Seed()
	if len(c.Documents) != 1 {
		t.Fatalf("seed should hold one document, got %d", len(c.Documents))
	}
	doc, ok := c.Active()
	if !ok {
		t.Fatal("seed has no active document")
	}
	if doc.Name != "Generation.S01E20.en.srt" {
		t.Errorf("unexpected seed name: %q", doc.Name)
	}
	if len(doc.Entries) != 3 || doc.Dirty {
		t.Errorf(
			"seed document wrong shape: %d entries, dirty=%v",
			len(doc.Entries), doc.Dirty,
		)
	}
}

func TestActiveFallsBackToFirst(t *testing.T) {
	c := twoDocCollection()
	c.ActiveID = "missing"
	doc, ok := c.Active()
	if !ok {
		t.Fatal("expected a document")
	}
	if doc.ID != c.Documents[0].ID {
		t.Error("active should fall back to first document")
	}
}

func TestActivate(t *testing.T) {
	c := twoDocCollection()
	second := c.Documents[1].ID

	c = c.Activate(second)
	if c.ActiveID != second {
		t.Error("activate did not switch")
	}

	c = c.Activate("missing")
	if c.ActiveID != second {
		t.Error("activating an unknown id should be a no-op")
	}
}

func TestCloseRefusesLastDocument(t *testing.T) {
	c := Seed()
	_, err := c.Close(c.Documents[0].ID)
	if !errors.Is(err, ErrLastDocument) {
		t.Errorf("expected ErrLastDocument, got %v", err)
	}
}

func TestCloseSwitchesActive(t *testing.T) {
	c := twoDocCollection()
	first := c.Documents[0].ID
	second := c.Documents[1].ID

	c, err := c.Close(first)
	if err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if len(c.Documents) != 1 {
		t.Fatalf("expected 1 document, got %d", len(c.Documents))
	}
	if c.ActiveID != second {
		t.Error("active id should move to the first survivor")
	}
}

func TestSyncAllOnlyTouchesDirty(t *testing.T) {
	c := twoDocCollection()
	clean := c.Documents[0]
	c = c.Update(c.Documents[1].ID, func(d Document) Document {
		return d.EditNotepad("001 ignored, no entries exist")
	})

	c = c.SyncAll()

	for _, doc := range c.Documents {
		if doc.Dirty {
			t.Errorf("document %q still dirty after SyncAll", doc.Name)
		}
	}
	got, _ := c.Get(clean.ID)
	if got.NotepadText != clean.NotepadText {
		t.Error("clean document was rewritten by SyncAll")
	}
}

func TestMergeByBaseName(t *testing.T) {
	c := twoDocCollection()
	existingID := c.Documents[0].ID

	incoming := NewRaw("show.s01e01.txt", "replacement text")
	c = c.Merge(incoming)

	if len(c.Documents) != 2 {
		t.Fatalf("merge created a duplicate: %d documents", len(c.Documents))
	}
	merged := c.Documents[0]
	if merged.ID != existingID {
		t.Error("merge must retain the existing document id")
	}
	if merged.Name != "show.s01e01.txt" {
		t.Errorf("merge should overwrite fields, name = %q", merged.Name)
	}
	if merged.NotepadText != "replacement text" || !merged.Dirty {
		t.Error("merge should overwrite notepad text and dirty flag")
	}
}

func TestMergeAppendsOnNoMatch(t *testing.T) {
	c := twoDocCollection()
	incoming := NewRaw("Other.Show.srt", "text")
	c = c.Merge(incoming)
	if len(c.Documents) != 3 {
		t.Errorf("expected append, got %d documents", len(c.Documents))
	}
}
