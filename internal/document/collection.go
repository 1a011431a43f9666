package document

import (
	"fmt"
	"strings"

	"subpad/internal/subtitle"
)

// ErrLastDocument is returned when closing the sole remaining document.
var ErrLastDocument = fmt.Errorf("cannot close the last open document")

// Collection is an ordered set of documents with one active document. It
// is a value type: every mutation returns a new snapshot.
type Collection struct {
	Documents []Document `json:"documents"`
	ActiveID  string     `json:"activeId"`
}

// Seed returns the initial collection holding the demo document every
// session starts with.
func Seed() Collection {
	entries := []subtitle.Entry{
		subtitle.NewEntry("00:01:39,520", "00:01:41,940", "I've had so many dreams."),
		subtitle.NewEntry("00:01:42,900", "00:01:45,840", "Like I was living\nin different parallel universes."),
		subtitle.NewEntry("00:01:45,880", "00:01:47,980", "Each universe had its version of you."),
	}
	doc := New("Generation.S01E20.en.srt", entries)
	return Collection{
		Documents: []Document{doc},
		ActiveID:  doc.ID,
	}
}

func (c Collection) cloneDocuments() []Document {
	docs := make([]Document, len(c.Documents))
	copy(docs, c.Documents)
	return docs
}

// Active returns the active document, falling back to the first document
// when the active id is missing. The second result is false only for an
// empty collection.
func (c Collection) Active() (Document, bool) {
	if doc, ok := c.Get(c.ActiveID); ok {
		return doc, true
	}
	if len(c.Documents) > 0 {
		return c.Documents[0], true
	}
	return Document{}, false
}

// Get looks a document up by id.
func (c Collection) Get(id string) (Document, bool) {
	for _, doc := range c.Documents {
		if doc.ID == id {
			return doc, true
		}
	}
	return Document{}, false
}

// Activate marks a document active. Unknown ids leave the collection
// unchanged.
func (c Collection) Activate(id string) Collection {
	if _, ok := c.Get(id); ok {
		c.ActiveID = id
	}
	return c
}

// Replace swaps in an updated document by id.
func (c Collection) Replace(updated Document) Collection {
	docs := c.cloneDocuments()
	for i, doc := range docs {
		if doc.ID == updated.ID {
			docs[i] = updated
			break
		}
	}
	c.Documents = docs
	return c
}

// Update applies fn to the document matching id.
func (c Collection) Update(id string, fn func(Document) Document) Collection {
	doc, ok := c.Get(id)
	if !ok {
		return c
	}
	return c.Replace(fn(doc))
}

// Close removes a document. Closing the last remaining document is
// refused. If the active document is closed, the first survivor becomes
// active.
func (c Collection) Close(id string) (Collection, error) {
	if len(c.Documents) == 1 {
		return c, ErrLastDocument
	}
	if _, ok := c.Get(id); !ok {
		return c, fmt.Errorf("no such document: %s", id)
	}

	docs := make([]Document, 0, len(c.Documents)-1)
	for _, doc := range c.Documents {
		if doc.ID != id {
			docs = append(docs, doc)
		}
	}
	c.Documents = docs
	if c.ActiveID == id {
		c.ActiveID = docs[0].ID
	}
	return c, nil
}

// SyncAll syncs every dirty document; clean ones pass through untouched so
// their notepad text is not rewritten.
func (c Collection) SyncAll() Collection {
	docs := c.cloneDocuments()
	for i, doc := range docs {
		if doc.Dirty {
			docs[i] = doc.Sync()
		}
	}
	c.Documents = docs
	return c
}

// FindByBaseName returns the index of the document whose base name matches
// case-insensitively, or -1.
func (c Collection) FindByBaseName(baseName string) int {
	target := strings.ToLower(baseName)
	for i, doc := range c.Documents {
		if strings.ToLower(subtitle.BaseName(doc.Name)) == target {
			return i
		}
	}
	return -1
}

// Merge folds an incoming document into the collection by base name. On a
// match every field of the existing document is overwritten while its id
// is retained; otherwise the document is appended.
func (c Collection) Merge(incoming Document) Collection {
	index := c.FindByBaseName(subtitle.BaseName(incoming.Name))
	if index == -1 {
		c.Documents = append(c.cloneDocuments(), incoming)
		return c
	}

	docs := c.cloneDocuments()
	incoming.ID = docs[index].ID
	docs[index] = incoming
	c.Documents = docs
	return c
}
