package translate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"subpad/internal/document"
)

// fixed pause between sequential calls to respect provider rate limits
const interCallDelay = 500 * time.Millisecond

// ProcessDocument runs the service over one document's notepad text. On
// any failure the collection is returned unchanged so the caller can
// surface a single notice. Documents with empty notepads are skipped.
func ProcessDocument(
	ctx context.Context,
	svc Service,
	collection document.Collection,
	docID string,
	instruction string,
) (document.Collection, error) {
	doc, ok := collection.Get(docID)
	if !ok {
		return collection, fmt.Errorf("no such document: %s", docID)
	}
	if strings.TrimSpace(doc.NotepadText) == "" {
		return collection, nil
	}

	result, err := svc.Process(ctx, doc.NotepadText, instruction)
	if err != nil {
		return collection, fmt.Errorf("AI processing failed: %w", err)
	}

	return collection.Update(docID, func(d document.Document) document.Document {
		return d.EditNotepad(result)
	}), nil
}

// ProcessAll walks every document sequentially, replacing each non-empty
// notepad with the processed result. A failing document is skipped and
// counted; the walk continues. The fixed delay between calls keeps within
// external rate limits.
func ProcessAll(
	ctx context.Context,
	svc Service,
	collection document.Collection,
	instruction string,
) (document.Collection, int) {
	failed := 0
	for _, doc := range collection.Documents {
		if strings.TrimSpace(doc.NotepadText) == "" {
			continue
		}

		result, err := svc.Process(ctx, doc.NotepadText, instruction)
		if err != nil {
			failed++
		} else {
			collection = collection.Update(doc.ID, func(d document.Document) document.Document {
				return d.EditNotepad(result)
			})
		}

		select {
		case <-ctx.Done():
			return collection, failed
		case <-time.After(interCallDelay):
		}
	}
	return collection, failed
}
