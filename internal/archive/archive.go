// Package archive bundles serialized documents into a zip download.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"time"

	"subpad/internal/document"
	"subpad/internal/subtitle"
)

// ProgressFunc receives a percent-complete value while the bundle is
// compressed.
type ProgressFunc func(percent int)

// ExportDocument serializes one document, returning the download filename
// and its content.
func ExportDocument(
	doc document.Document,
	format subtitle.Format,
) (string, string) {
	name := subtitle.ExportName(doc.Name, format)
	content := subtitle.Serialize(doc.Entries, doc.NotepadText, format)
	return name, content
}

// Bundle serializes every document into one zip archive, one entry per
// document. Export reads documents only; a failure here never touches the
// collection.
func Bundle(
	docs []document.Document,
	format subtitle.Format,
	progress ProgressFunc,
) ([]byte, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("nothing to bundle")
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for i, doc := range docs {
		name, content := ExportDocument(doc, format)
		w, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("create archive entry %s: %w", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			return nil, fmt.Errorf("write archive entry %s: %w", name, err)
		}
		if progress != nil {
			progress((i + 1) * 100 / len(docs))
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}

// BundleName is the timestamped default download name.
func BundleName(now time.Time) string {
	return fmt.Sprintf("subtitles_export_%s.zip", now.Format("2006-01-02"))
}
