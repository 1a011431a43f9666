package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"subpad/internal/logging"
	"subpad/internal/prefs"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store, err := prefs.Open(filepath.Join(t.TempDir(), "prefs.db"))
	if err != nil {
		t.Fatalf("prefs.Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return New(logging.NewLogger(false), store, nil)
}

func doJSON(
	t *testing.T,
	s *Server,
	method, path string,
	body any,
) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, path, reader)
	if err != nil {
		t.Fatal(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.App().Test(req, 10000)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return resp
}

func decodeFiles(t *testing.T, s *Server) (files []map[string]any, activeID string) {
	t.Helper()
	resp := doJSON(t, s, http.MethodGet, "/api/files", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	var payload struct {
		Files    []map[string]any `json:"files"`
		ActiveID string           `json:"activeId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatal(err)
	}
	return payload.Files, payload.ActiveID
}

func TestListFilesSeed(t *testing.T) {
	s := newTestServer(t)
	files, activeID := decodeFiles(t, s)

	if len(files) != 1 {
		t.Fatalf("expected 1 seeded file, got %d", len(files))
	}
	if files[0]["name"] != "Generation.S01E20.en.srt" {
		t.Errorf("seed name = %v", files[0]["name"])
	}
	if files[0]["id"] != activeID {
		t.Error("seed document should be active")
	}
	entries := files[0]["entries"].([]any)
	if len(entries) != 3 {
		t.Errorf("seed entries = %d", len(entries))
	}
}

func TestAddAndDeleteEntry(t *testing.T) {
	s := newTestServer(t)
	_, activeID := decodeFiles(t, s)

	resp := doJSON(t, s, http.MethodPost, "/api/files/"+activeID+"/entries", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add status = %d", resp.StatusCode)
	}

	files, _ := decodeFiles(t, s)
	entries := files[0]["entries"].([]any)
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries after add, got %d", len(entries))
	}
	added := entries[3].(map[string]any)
	// seed's last entry ends at 00:01:47,980
	if added["startTime"] != "00:01:48,080" || added["endTime"] != "00:01:50,180" {
		t.Errorf(
			"added range = %v --> %v",
			added["startTime"], added["endTime"],
		)
	}

	entryID := added["id"].(string)
	resp = doJSON(
		t, s, http.MethodDelete,
		"/api/files/"+activeID+"/entries/"+entryID, nil,
	)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	files, _ = decodeFiles(t, s)
	if n := len(files[0]["entries"].([]any)); n != 3 {
		t.Errorf("expected 3 entries after delete, got %d", n)
	}
}

func TestUpdateEntryRevertsBadTimestamp(t *testing.T) {
	s := newTestServer(t)
	files, activeID := decodeFiles(t, s)
	entry := files[0]["entries"].([]any)[0].(map[string]any)
	entryID := entry["id"].(string)
	originalStart := entry["startTime"].(string)

	resp := doJSON(
		t, s, http.MethodPatch,
		"/api/files/"+activeID+"/entries/"+entryID,
		map[string]any{"startTime": "garbage", "text": "new text"},
	)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("update status = %d", resp.StatusCode)
	}

	files, _ = decodeFiles(t, s)
	updated := files[0]["entries"].([]any)[0].(map[string]any)
	if updated["startTime"] != originalStart {
		t.Errorf(
			"bad timestamp should revert silently, got %v",
			updated["startTime"],
		)
	}
	if updated["text"] != "new text" {
		t.Errorf("valid field should still apply, got %v", updated["text"])
	}
}

func TestNotepadEditAndSync(t *testing.T) {
	s := newTestServer(t)
	_, activeID := decodeFiles(t, s)

	resp := doJSON(
		t, s, http.MethodPatch,
		"/api/files/"+activeID+"/notepad",
		map[string]any{"text": "001 Replaced first line."},
	)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("notepad status = %d", resp.StatusCode)
	}

	files, _ := decodeFiles(t, s)
	if files[0]["dirty"] != true {
		t.Error("notepad edit should mark dirty")
	}

	resp = doJSON(t, s, http.MethodPost, "/api/files/"+activeID+"/sync", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("sync status = %d", resp.StatusCode)
	}

	files, _ = decodeFiles(t, s)
	if files[0]["dirty"] != false {
		t.Error("sync should clear dirty")
	}
	first := files[0]["entries"].([]any)[0].(map[string]any)
	if first["text"] != "Replaced first line." {
		t.Errorf("sync did not apply text: %v", first["text"])
	}
	if files[0]["notepadText"] != "001 Replaced first line." {
		t.Errorf("sync must keep notepad as typed: %v", files[0]["notepadText"])
	}
}

func TestCloseLastDocumentRefused(t *testing.T) {
	s := newTestServer(t)
	_, activeID := decodeFiles(t, s)

	resp := doJSON(t, s, http.MethodDelete, "/api/files/"+activeID, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("closing last document: status = %d, want 409", resp.StatusCode)
	}
}

func multipartRequest(
	t *testing.T,
	path string,
	files map[string]string,
) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, content := range files {
		part, err := w.CreateFormFile("files", name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	req, err := http.NewRequest(http.MethodPost, path, &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestImportAndExport(t *testing.T) {
	s := newTestServer(t)

	srt := "1\n00:00:01,000 --> 00:00:02,500\nHi\n"
	req := multipartRequest(t, "/api/files/import", map[string]string{
		"Movie.srt": srt,
	})
	resp, err := s.App().Test(req, 10000)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("import status = %d", resp.StatusCode)
	}
	var summary struct {
		Total, Added, Failed int
	}
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if summary.Total != 1 || summary.Added != 1 || summary.Failed != 0 {
		t.Fatalf("summary = %+v", summary)
	}

	files, _ := decodeFiles(t, s)
	if len(files) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(files))
	}
	importedID := files[1]["id"].(string)

	resp = doJSON(
		t, s, http.MethodGet,
		"/api/files/"+importedID+"/export?format=lrc", nil,
	)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export status = %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "[00:01.00]Hi" {
		t.Errorf("lrc export = %q", string(body))
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "Movie.lrc") {
		t.Errorf("Content-Disposition = %q", cd)
	}
}

func TestExportBundle(t *testing.T) {
	s := newTestServer(t)

	req := multipartRequest(t, "/api/files/import", map[string]string{
		"One.srt": "1\n00:00:01,000 --> 00:00:02,000\nA\n",
	})
	if _, err := s.App().Test(req, 10000); err != nil {
		t.Fatal(err)
	}

	resp := doJSON(t, s, http.MethodGet, "/api/export/bundle?format=srt", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("bundle status = %d", resp.StatusCode)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "application/zip" {
		t.Errorf("Content-Type = %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if len(body) == 0 || string(body[:2]) != "PK" {
		t.Error("bundle is not a zip archive")
	}
}

func TestSearch(t *testing.T) {
	s := newTestServer(t)
	_, activeID := decodeFiles(t, s)

	resp := doJSON(
		t, s, http.MethodGet,
		"/api/files/"+activeID+"/search?q=universe", nil,
	)
	defer resp.Body.Close()
	var payload struct {
		Matches int `json:"matches"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatal(err)
	}
	// "universes" and "universe" both match case-insensitively
	if payload.Matches != 2 {
		t.Errorf("matches = %d, want 2", payload.Matches)
	}
}

func TestInstructionRoundTrip(t *testing.T) {
	s := newTestServer(t)

	resp := doJSON(
		t, s, http.MethodPut,
		"/api/settings/instruction",
		map[string]any{"instruction": "Rewrite in pirate speak."},
	)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("put status = %d", resp.StatusCode)
	}

	resp = doJSON(t, s, http.MethodGet, "/api/settings/instruction", nil)
	defer resp.Body.Close()
	var payload struct {
		Instruction string `json:"instruction"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatal(err)
	}
	if payload.Instruction != "Rewrite in pirate speak." {
		t.Errorf("instruction = %q", payload.Instruction)
	}
}

func TestTranslateUnconfigured(t *testing.T) {
	s := newTestServer(t)
	_, activeID := decodeFiles(t, s)

	resp := doJSON(
		t, s, http.MethodPost,
		fmt.Sprintf("/api/files/%s/translate", activeID), nil,
	)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("translate status = %d, want 503", resp.StatusCode)
	}

	// document must be untouched after the failure
	files, _ := decodeFiles(t, s)
	if files[0]["dirty"] != false {
		t.Error("failed translation modified the document")
	}
}
