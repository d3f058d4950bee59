package prompt

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

//go:embed defaults
var defaultsFS embed.FS

// LoadFromDirectory registers every .json template under dir, replacing
// templates with the same ID. Expected structure:
//
//	dir/
//	  narrative/
//	    summary.json
//	    chat.json
func (r *Registry) LoadFromDirectory(dir string) (int, error) {
	if _, err := os.Stat(dir); err != nil {
		return 0, fmt.Errorf("prompts directory not found: %s", dir)
	}
	return r.loadFS(os.DirFS(dir), ".")
}

func (r *Registry) loadEmbedded() error {
	_, err := r.loadFS(defaultsFS, "defaults")
	return err
}

func (r *Registry) loadFS(fsys fs.FS, root string) (int, error) {
	loaded := 0
	err := fs.WalkDir(fsys, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		// Skip directories and non-JSON files
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		var pt PromptTemplate
		if err := json.Unmarshal(data, &pt); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}

		// Auto-generate ID from path if not specified
		if pt.ID == "" {
			pt.ID = generateIDFromPath(path, root)
		}
		if pt.Category == "" {
			pt.Category = detectCategory(path, root)
		}

		if err := r.Register(&pt); err != nil {
			return fmt.Errorf("failed to register %s: %w", pt.ID, err)
		}
		loaded++
		return nil
	})
	return loaded, err
}

// generateIDFromPath creates a prompt ID from the file path
// e.g., "narrative/summary.json" -> "narrative.summary"
func generateIDFromPath(path, root string) string {
	rel := relative(path, root)
	rel = strings.TrimSuffix(rel, ".json")
	return strings.ReplaceAll(rel, "/", ".")
}

// detectCategory extracts the category from the folder structure
func detectCategory(path, root string) string {
	parts := strings.Split(relative(path, root), "/")
	if len(parts) > 1 {
		return parts[0]
	}
	return "default"
}

// fs.FS paths always use forward slashes.
func relative(path, root string) string {
	if root == "." {
		return path
	}
	return strings.TrimPrefix(path, root+"/")
}

// RenderUserPrompt executes the user prompt template with the given context
func RenderUserPrompt(pt *PromptTemplate, ctx *PromptExecutionContext) (string, error) {
	if pt.UserPromptTmpl == "" {
		return "", nil
	}

	tmpl, err := template.New(pt.ID).Parse(pt.UserPromptTmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	vars := make(map[string]interface{})
	if ctx != nil {
		for k, v := range ctx.Variables {
			vars[k] = v
		}
	}
	for _, v := range pt.Variables {
		if _, ok := vars[v.Name]; ok {
			continue
		}
		if v.Required && v.Default == "" {
			return "", fmt.Errorf("template %s: missing required variable %s", pt.ID, v.Name)
		}
		vars[v.Name] = v.Default
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}
