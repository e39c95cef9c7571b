package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/retracehq/retrace/internal/config"
)

func TestOpenInput(t *testing.T) {
	t.Run("no args reads stdin", func(t *testing.T) {
		r, closeFn, err := openInput(nil)
		if err != nil {
			t.Fatalf("openInput() error: %v", err)
		}
		defer closeFn()
		if r != os.Stdin {
			t.Error("expected stdin")
		}
	})

	t.Run("dash reads stdin", func(t *testing.T) {
		r, closeFn, err := openInput([]string{"-"})
		if err != nil {
			t.Fatalf("openInput() error: %v", err)
		}
		defer closeFn()
		if r != os.Stdin {
			t.Error("expected stdin")
		}
	})

	t.Run("file path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "agent.log")
		if err := os.WriteFile(path, []byte("📍 Step 1\n"), 0644); err != nil {
			t.Fatal(err)
		}
		r, closeFn, err := openInput([]string{path})
		if err != nil {
			t.Fatalf("openInput() error: %v", err)
		}
		defer closeFn()
		if r == nil {
			t.Error("expected a reader")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, _, err := openInput([]string{"/does/not/exist.log"}); err == nil {
			t.Error("expected an error for a missing file")
		}
	})
}

func TestBuildSession(t *testing.T) {
	cfg := &config.Config{}
	cfg.Session.UnknownCap = 10
	cfg.Session.FlushInterval = "30s"

	session, err := buildSession(cfg, t.TempDir(), "Test run")
	if err != nil {
		t.Fatalf("buildSession() error: %v", err)
	}
	if session.ID() == "" {
		t.Error("session should carry an identifier")
	}
}

func TestBuildSessionWithCustomPatterns(t *testing.T) {
	rules := filepath.Join(t.TempDir(), "rules.yaml")
	content := `rules:
  - name: custom_note
    kind: thought
    label: memory
    pattern: '^Note:\s*(.+)$'
    text_group: 1
`
	if err := os.WriteFile(rules, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{}
	cfg.Session.FlushInterval = "30s"
	cfg.Patterns.File = rules

	if _, err := buildSession(cfg, "", "Test run"); err != nil {
		t.Fatalf("buildSession() with custom rules error: %v", err)
	}

	cfg.Patterns.File = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := buildSession(cfg, "", "Test run"); err == nil {
		t.Error("expected an error for a missing rules file")
	}
}
