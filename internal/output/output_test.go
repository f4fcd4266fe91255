package output

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/scoregest/internal/protocol"
	"github.com/dgallion1/scoregest/internal/sheet"
)

func TestPath(t *testing.T) {
	tests := []struct{ dir, pdf, want string }{
		{"out", "NOVADAMES-FS.pdf", filepath.Join("out", "NOVADAMES-FS.json")},
		{"out", "season/comp/file.PDF", filepath.Join("out", "file.json")},
		{"", "noext", "noext.json"},
	}
	for _, tt := range tests {
		if got := Path(tt.dir, tt.pdf); got != tt.want {
			t.Errorf("Path(%q, %q) = %q, want %q", tt.dir, tt.pdf, got, tt.want)
		}
	}
}

func TestWriteFileRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	res := &protocol.Result{
		PDF: "FS.pdf",
		Performances: []sheet.Record{{
			Metadata: sheet.Metadata{FirstName: "John", LastName: "DOE", Program: "Novice A FS"},
		}},
	}

	path, err := WriteFile(dir, res)
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if path != filepath.Join(dir, "FS.json") {
		t.Fatalf("unexpected path %q", path)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected only the result file, got %d entries", len(entries))
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got.PDF != "FS.pdf" || len(got.Performances) != 1 || got.Performances[0].Metadata.LastName != "DOE" {
		t.Errorf("unexpected result %+v", got)
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, &protocol.Result{PDF: "x.pdf", Performances: []sheet.Record{}}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, `"performances": []`) || !strings.Contains(out, `"pdf": "x.pdf"`) {
		t.Errorf("unexpected output %s", out)
	}
}

func TestReadFileErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := ReadFile(filepath.Join(dir, "missing.json")); !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte(`{"performances": []}`), 0o644)
	if _, err := ReadFile(bad); err == nil {
		t.Error("expected error for result without pdf name")
	}
}
