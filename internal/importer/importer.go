// Package importer turns raw file inputs into documents and merges them
// into the open collection.
package importer

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"

	"subpad/internal/document"
	"subpad/internal/subtitle"
)

// Source is one raw input: a display name and a way to read its content.
type Source struct {
	Name string
	Read func(ctx context.Context) (string, error)
}

// FromPath builds a source reading from the filesystem.
func FromPath(path string) Source {
	name := path
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		name = path[i+1:]
	}
	return Source{
		Name: name,
		Read: func(ctx context.Context) (string, error) {
			data, err := os.ReadFile(path)
			if err != nil {
				return "", fmt.Errorf("read %s: %w", path, err)
			}
			return string(data), nil
		},
	}
}

// FromBytes builds a source over already-received content, e.g. an upload.
func FromBytes(name string, data []byte) Source {
	return Source{
		Name: name,
		Read: func(ctx context.Context) (string, error) {
			return string(data), nil
		},
	}
}

// FileError records one failed read. Reads fail individually; the batch
// always continues.
type FileError struct {
	Name string
	Err  error
}

// Summary reports one batch import.
type Summary struct {
	Total  int         `json:"total"`
	Added  int         `json:"added"`
	Failed int         `json:"failed"`
	Errors []FileError `json:"-"`
}

// ProgressFunc receives a percent-complete value after each file outcome.
type ProgressFunc func(percent int)

type readOutcome struct {
	source Source
	text   string
	err    error
}

// readAll reads every source concurrently, capturing each outcome
// independently. Results arrive in completion order, not input order.
func readAll(ctx context.Context, sources []Source) []readOutcome {
	results := make(chan readOutcome, len(sources))

	var wg sync.WaitGroup
	for _, src := range sources {
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()
			text, err := src.Read(ctx)
			results <- readOutcome{source: src, text: text, err: err}
		}(src)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	outcomes := make([]readOutcome, 0, len(sources))
	for outcome := range results {
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

// ImportFiles reads every source concurrently, builds a document per
// readable source and merges the results into the collection by base name,
// in read-completion order. Sources that parse as structured subtitles
// become clean documents; everything else becomes a dirty raw document,
// with plain .txt inputs renamed to <base>.srt. Read failures are counted
// and reported, never thrown.
func ImportFiles(
	ctx context.Context,
	collection document.Collection,
	sources []Source,
	progress ProgressFunc,
) (document.Collection, Summary) {
	summary := Summary{Total: len(sources)}
	if len(sources) == 0 {
		return collection, summary
	}

	processed := 0
	for _, outcome := range readAll(ctx, sources) {
		processed++
		if progress != nil {
			progress(processed * 100 / summary.Total)
		}

		if outcome.err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, FileError{
				Name: outcome.source.Name,
				Err:  outcome.err,
			})
			continue
		}

		doc := buildDocument(outcome.source.Name, outcome.text)
		collection = collection.Merge(doc)
		summary.Added++

		if processed%10 == 0 {
			runtime.Gosched()
		}
	}

	return collection, summary
}

func buildDocument(name, text string) document.Document {
	if entries := subtitle.Parse(text); len(entries) > 0 {
		return document.New(name, entries)
	}
	if strings.HasSuffix(strings.ToLower(name), ".txt") {
		name = subtitle.BaseName(name) + ".srt"
	}
	return document.NewRaw(name, text)
}

// ImportRaw overwrites one document's notepad text with a source's raw
// content. Entries are untouched; structured parsing is never attempted.
func ImportRaw(
	ctx context.Context,
	collection document.Collection,
	docID string,
	source Source,
) (document.Collection, error) {
	text, err := source.Read(ctx)
	if err != nil {
		return collection, fmt.Errorf("read raw file: %w", err)
	}
	return collection.Update(docID, func(d document.Document) document.Document {
		return d.ImportRaw(text)
	}), nil
}

// ImportRawFolder imports only plain-text sources, overwriting the notepad
// of any document with a matching base name and creating dirty documents
// for the rest. Content is always treated as raw.
func ImportRawFolder(
	ctx context.Context,
	collection document.Collection,
	sources []Source,
	progress ProgressFunc,
) (document.Collection, Summary) {
	var textSources []Source
	for _, src := range sources {
		if strings.HasSuffix(strings.ToLower(src.Name), ".txt") {
			textSources = append(textSources, src)
		}
	}

	summary := Summary{Total: len(textSources)}
	if len(textSources) == 0 {
		return collection, summary
	}

	processed := 0
	for _, outcome := range readAll(ctx, textSources) {
		processed++
		if progress != nil {
			progress(processed * 100 / summary.Total)
		}

		if outcome.err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, FileError{
				Name: outcome.source.Name,
				Err:  outcome.err,
			})
			continue
		}

		base := strings.ToLower(subtitle.BaseName(outcome.source.Name))
		text := outcome.text
		if index := collection.FindByBaseName(base); index != -1 {
			id := collection.Documents[index].ID
			collection = collection.Update(id, func(d document.Document) document.Document {
				return d.ImportRaw(text)
			})
		} else {
			collection = collection.Merge(document.NewRaw(base+".srt", text))
		}
		summary.Added++

		if processed%10 == 0 {
			runtime.Gosched()
		}
	}

	return collection, summary
}
