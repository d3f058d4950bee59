package utils

import (
	"strings"
	"testing"
)

func TestCleanMarkdown(t *testing.T) {
	cases := map[string]string{
		"  plain text \n":                 "plain text",
		"```markdown\n# Title\nbody\n```": "# Title\nbody",
		"```\nbody\n```":                  "body",
		"```go\nfmt.Println()\n```":       "```go\nfmt.Println()\n```",
		"```":                             "```",
	}
	for in, want := range cases {
		if got := CleanMarkdown(in); got != want {
			t.Errorf("CleanMarkdown(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRenderHTML_Table(t *testing.T) {
	out, err := RenderHTML("| a | b |\n|---|--:|\n| 1 | 2 |\n\n**bold**")
	if err != nil {
		t.Fatalf("RenderHTML failed: %v", err)
	}
	if !strings.Contains(out, "<table>") || !strings.Contains(out, "<strong>bold</strong>") {
		t.Errorf("expected table and emphasis, got:\n%s", out)
	}
}

func TestRenderHTML_DropsRawHTML(t *testing.T) {
	out, err := RenderHTML("hello <script>alert(1)</script>")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "<script>") {
		t.Errorf("raw HTML must not pass through: %s", out)
	}
}

func TestPlainText(t *testing.T) {
	got := PlainText("# Liquidity\n\nThe **current ratio** is `2.0`.\n\n- strong\n- stable")
	for _, want := range []string{"Liquidity", "The current ratio is 2.0.", "strong", "stable"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "**") || strings.Contains(got, "#") {
		t.Errorf("markdown syntax left in:\n%s", got)
	}
}
