package bulk

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBuiltinSetsLoad(t *testing.T) {
	lib, err := NewSetLibrary("")
	if err != nil {
		t.Fatalf("NewSetLibrary() error = %v", err)
	}
	defer lib.Close()

	for _, name := range []string{"self-harm", "acute-distress"} {
		set, ok := lib.Get(name)
		if !ok {
			t.Fatalf("built-in set %q missing", name)
		}
		if len(set.Keywords) == 0 {
			t.Errorf("built-in set %q has no keywords", name)
		}
		for _, kw := range set.Keywords {
			if kw.Text == "" {
				t.Errorf("set %q has a keyword with empty text", name)
			}
		}
	}
}

func TestSetLibraryLoadsDirectory(t *testing.T) {
	dir := t.TempDir()

	single := `name: custom-set
keywords:
  - text: custom phrase
    severity: high
`
	if err := os.WriteFile(filepath.Join(dir, "custom.yaml"), []byte(single), 0o644); err != nil {
		t.Fatal(err)
	}

	multi := `sets:
  - name: set-a
    keywords:
      - text: alpha
  - name: set-b
    keywords:
      - text: beta
`
	if err := os.WriteFile(filepath.Join(dir, "multi.yml"), []byte(multi), 0o644); err != nil {
		t.Fatal(err)
	}

	// Non-YAML files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0o644); err != nil {
		t.Fatal(err)
	}

	lib, err := NewSetLibrary(dir)
	if err != nil {
		t.Fatalf("NewSetLibrary() error = %v", err)
	}
	defer lib.Close()

	for _, name := range []string{"custom-set", "set-a", "set-b", "self-harm"} {
		if _, ok := lib.Get(name); !ok {
			t.Errorf("set %q missing after directory load", name)
		}
	}

	set, _ := lib.Get("custom-set")
	if len(set.Keywords) != 1 || set.Keywords[0].Severity != "high" {
		t.Errorf("custom-set parsed wrong: %+v", set)
	}
}

func TestSetLibraryUnnamedSetTakesFileStem(t *testing.T) {
	dir := t.TempDir()
	content := `keywords:
  - text: something
`
	if err := os.WriteFile(filepath.Join(dir, "fallback.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	lib, err := NewSetLibrary(dir)
	if err != nil {
		t.Fatalf("NewSetLibrary() error = %v", err)
	}
	defer lib.Close()

	if _, ok := lib.Get("fallback"); !ok {
		t.Errorf("unnamed set should take its file stem, have %v", lib.Names())
	}
}

func TestSetLibraryMissingDirectory(t *testing.T) {
	lib, err := NewSetLibrary("/nonexistent/sets/dir")
	if err != nil {
		t.Fatalf("missing directory should not error, got %v", err)
	}
	defer lib.Close()

	if _, ok := lib.Get("self-harm"); !ok {
		t.Error("built-in sets should still load without a sets directory")
	}
}

func TestSetLibraryNames(t *testing.T) {
	lib, err := NewSetLibrary("")
	if err != nil {
		t.Fatalf("NewSetLibrary() error = %v", err)
	}
	defer lib.Close()

	names := lib.Names()
	if len(names) < 2 {
		t.Fatalf("Names() = %v, want at least the built-in sets", names)
	}
	for i := 1; i < len(names); i++ {
		if names[i] < names[i-1] {
			t.Errorf("Names() not sorted: %v", names)
		}
	}
}
