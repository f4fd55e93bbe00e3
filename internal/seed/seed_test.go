package seed

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

func TestLoad_YAML(t *testing.T) {
	path := writeTemp(t, "seed.yaml", `
memories:
  - content: "gophers burrow under the test fixtures"
    importance: 0.9
  - content: "plain fact with default weight"
goals:
  - "finish the migration"
`)

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(f.Memories) != 2 || len(f.Goals) != 1 {
		t.Fatalf("Unexpected shape: %d memories, %d goals", len(f.Memories), len(f.Goals))
	}
	if f.Memories[0].Importance == nil || *f.Memories[0].Importance != 0.9 {
		t.Errorf("Importance lost: %+v", f.Memories[0])
	}
	if f.Memories[1].Importance != nil {
		t.Errorf("Omitted importance should stay nil, got %v", *f.Memories[1].Importance)
	}
}

func TestLoad_JSON(t *testing.T) {
	path := writeTemp(t, "seed.json", `{
		"memories": [{"content": "json works too", "metadata": {"origin": "import"}}],
		"goals": []
	}`)

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if f.Memories[0].Metadata["origin"] != "import" {
		t.Errorf("Metadata lost: %+v", f.Memories[0])
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}

	bad := writeTemp(t, "seed.toml", "whatever")
	if _, err := Load(bad); err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("Expected unsupported format error, got %v", err)
	}

	mangled := writeTemp(t, "seed.yaml", "memories: [unclosed")
	if _, err := Load(mangled); err == nil {
		t.Error("Expected error for mangled YAML")
	}
}

func TestValidate(t *testing.T) {
	l := New(2)
	imp := func(v float64) *float64 { return &v }

	t.Run("Valid", func(t *testing.T) {
		res := l.Validate(File{Memories: []Entry{{Content: "fine", Importance: imp(0.5)}}})
		if !res.Valid || len(res.Errors) != 0 {
			t.Errorf("Expected valid, got %+v", res)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		res := l.Validate(File{})
		if res.Valid || len(res.Errors) == 0 {
			t.Errorf("Expected invalid for empty seed, got %+v", res)
		}
	})

	t.Run("BlankContent", func(t *testing.T) {
		res := l.Validate(File{Memories: []Entry{{Content: "  "}}})
		if res.Valid {
			t.Errorf("Expected invalid, got %+v", res)
		}
	})

	t.Run("OutOfRangeImportanceWarns", func(t *testing.T) {
		res := l.Validate(File{Memories: []Entry{{Content: "x", Importance: imp(1.5)}}})
		if !res.Valid || len(res.Warnings) == 0 {
			t.Errorf("Expected warning but valid, got %+v", res)
		}
	})

	t.Run("OversizedContentWarns", func(t *testing.T) {
		res := l.Validate(File{Memories: []Entry{{Content: strings.Repeat("x", 20000)}}})
		if !res.Valid || len(res.Warnings) == 0 {
			t.Errorf("Expected warning but valid, got %+v", res)
		}
	})

	t.Run("BlankGoal", func(t *testing.T) {
		res := l.Validate(File{Goals: []string{""}})
		if res.Valid {
			t.Errorf("Expected invalid, got %+v", res)
		}
	})

	t.Run("TooManyGoalsWarns", func(t *testing.T) {
		res := l.Validate(File{Goals: []string{"a", "b", "c"}})
		if !res.Valid || len(res.Warnings) == 0 {
			t.Errorf("Expected warning but valid, got %+v", res)
		}
	})
}
