package fonts

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadBuiltin(t *testing.T) {
	for _, src := range []string{"builtin:regular", "builtin:bold", "builtin:BOLD"} {
		data, err := Load(src, "")
		if err != nil {
			t.Fatalf("Load(%q): %v", src, err)
		}
		if len(data) == 0 {
			t.Fatalf("Load(%q) returned no data", src)
		}
	}
	if _, err := Load("builtin:italic", ""); err == nil {
		t.Fatalf("unknown builtin font should fail")
	}
	if _, err := Load("", ""); err == nil {
		t.Fatalf("empty src should fail")
	}
}

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	want := []byte("not really a font")
	if err := os.WriteFile(filepath.Join(dir, "custom.ttf"), want, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := Load("custom.ttf", dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("unexpected data")
	}
	if _, err := Load("missing.ttf", dir); err == nil {
		t.Fatalf("missing file should fail")
	}
}
