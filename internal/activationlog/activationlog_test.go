package activationlog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func countLines(t *testing.T, path string) int {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	n := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		n++
	}
	return n
}

func TestAppendWritesJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activations.jsonl")
	w := NewWriter(path)

	w.Append(Record{
		InvocationID: "inv-1",
		PromptHash:   "abc123",
		Mode:         "hook",
		Suggestions:  []Suggestion{{Name: "devops-expert", Type: "skill", Score: 0.9, Confidence: "HIGH"}},
	})
	w.Append(Record{InvocationID: "inv-2", PromptHash: "def456", Mode: "hook"})

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}

	var rec Record
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("line is not valid JSON: %v", err)
	}
	if rec.InvocationID != "inv-1" || rec.Timestamp == "" {
		t.Errorf("record = %+v", rec)
	}
	if len(rec.Suggestions) != 1 || rec.Suggestions[0].Name != "devops-expert" {
		t.Errorf("suggestions = %+v", rec.Suggestions)
	}
}

func TestNilWriterIsSafe(t *testing.T) {
	var w *Writer
	w.Append(Record{InvocationID: "x"}) // must not panic
	if NewWriter("") != nil {
		t.Error("empty path must disable the writer")
	}
}

func TestRotationKeepsNewestHalf(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activations.jsonl")

	// Pre-fill the file to capacity without going through Append.
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	bw := bufio.NewWriter(f)
	for i := 0; i < MaxEntries; i++ {
		rec := Record{InvocationID: "old", Timestamp: "t"}
		data, _ := json.Marshal(rec)
		bw.Write(data)
		bw.WriteByte('\n')
	}
	bw.Flush()
	f.Close()

	w := NewWriter(path)
	w.Append(Record{InvocationID: "new"})

	got := countLines(t, path)
	want := MaxEntries/2 + 1
	if got != want {
		t.Errorf("after rotation: %d lines, want %d", got, want)
	}
}
