package sources

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultPresets(t *testing.T) {
	s := Default()
	for _, name := range []string{"fastapi", "langchain", "pydantic"} {
		if len(s[name]) == 0 {
			t.Errorf("preset %q has no URLs", name)
		}
	}

	names := s.Names()
	if len(names) != 3 {
		t.Fatalf("names = %v", names)
	}
	if names[0] != "fastapi" || names[1] != "langchain" || names[2] != "pydantic" {
		t.Errorf("names not sorted: %v", names)
	}
}

func TestAllURLs(t *testing.T) {
	s := Sources{
		"a": {"http://a/1", "http://a/2"},
		"b": {"http://b/1"},
	}
	urls := s.AllURLs()
	if len(urls) != 3 {
		t.Fatalf("urls = %v", urls)
	}
	if urls[0] != "http://a/1" || urls[2] != "http://b/1" {
		t.Errorf("urls out of order: %v", urls)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.yaml")
	data := "gin:\n  - https://gin-gonic.com/docs/\nfastapi:\n  - https://example.com/only\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(s["gin"]) != 1 {
		t.Errorf("gin preset missing: %v", s["gin"])
	}
	if len(s["fastapi"]) != 1 || s["fastapi"][0] != "https://example.com/only" {
		t.Errorf("fastapi preset not overridden: %v", s["fastapi"])
	}
	if len(s["pydantic"]) == 0 {
		t.Error("default pydantic preset lost")
	}
}

func TestLoadEmptyPathKeepsDefaults(t *testing.T) {
	s, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(s) != 3 {
		t.Errorf("expected default presets, got %v", s.Names())
	}
}
