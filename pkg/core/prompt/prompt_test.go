package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewRegistry_LoadsDefaults(t *testing.T) {
	r := NewRegistry()
	for _, id := range []string{NarrativeSummary, NarrativeChat} {
		pt, err := r.GetPrompt(id)
		if err != nil {
			t.Fatalf("missing default %s: %v", id, err)
		}
		if pt.Category != "narrative" {
			t.Errorf("%s: expected category narrative, got %q", id, pt.Category)
		}
	}
}

func TestRender_AppliesDefaults(t *testing.T) {
	r := NewRegistry()
	system, user, err := r.Render(NarrativeChat, NewContext().Set("Question", "Is liquidity OK?"))
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if system == "" {
		t.Errorf("expected system prompt")
	}
	if !strings.Contains(user, "No financial data has been uploaded yet.") {
		t.Errorf("expected default context in %q", user)
	}
	if !strings.Contains(user, "User question: Is liquidity OK?") {
		t.Errorf("expected question in %q", user)
	}
}

func TestRender_RequiredVariable(t *testing.T) {
	r := NewRegistry()
	if _, _, err := r.Render(NarrativeSummary, NewContext()); err == nil {
		t.Errorf("expected error for missing Data")
	}
}

func TestLoadFromDirectory_Overrides(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "narrative"), 0o755); err != nil {
		t.Fatal(err)
	}
	body := `{"system_prompt": "custom", "user_prompt_template": "Q={{.Question}}"}`
	if err := os.WriteFile(filepath.Join(dir, "narrative", "chat.json"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry()
	n, err := r.LoadFromDirectory(dir)
	if err != nil {
		t.Fatalf("LoadFromDirectory failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 template loaded, got %d", n)
	}
	system, user, err := r.Render(NarrativeChat, NewContext().Set("Question", "why"))
	if err != nil {
		t.Fatal(err)
	}
	if system != "custom" || user != "Q=why" {
		t.Errorf("override not applied: %q / %q", system, user)
	}
	if r.Count() != 2 {
		t.Errorf("expected 2 prompts, got %d", r.Count())
	}
}

func TestLoadFromDirectory_Missing(t *testing.T) {
	if _, err := NewRegistry().LoadFromDirectory(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Errorf("expected error for missing directory")
	}
}
