package prompts

import (
	"bytes"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

// Manager handles loading and rendering of prompt templates.
// Templates under common/ are parsed first so every other template can use their definitions.
type Manager struct {
	root *template.Template
}

// NewManager creates a new prompt manager loading *.tmpl files from fsys.
func NewManager(fsys fs.FS) (*Manager, error) {
	m := &Manager{}
	m.root = template.New("root").Funcs(template.FuncMap{
		"category": m.categoryFunc,
		"join":     joinFunc,
	})

	if err := m.loadCommon(fsys); err != nil {
		return nil, fmt.Errorf("loading common templates: %w", err)
	}

	if err := m.loadTemplates(fsys); err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	return m, nil
}

func (m *Manager) loadCommon(fsys fs.FS) error {
	if _, err := fs.Stat(fsys, "common"); err != nil {
		return nil
	}
	return fs.WalkDir(fsys, "common", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".tmpl") {
			return nil
		}

		content, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		if _, err = m.root.Parse(string(content)); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
		return nil
	})
}

func (m *Manager) loadTemplates(fsys fs.FS) error {
	return fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".tmpl") {
			return nil
		}
		if strings.HasPrefix(path, "common/") {
			return nil
		}

		content, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		if _, err = m.root.New(path).Parse(string(content)); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
		return nil
	})
}

// Render executes the named template with the provided data.
func (m *Manager) Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := m.root.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Has reports whether a template with that name was loaded.
func (m *Manager) Has(name string) bool {
	return m.root.Lookup(name) != nil
}

func (m *Manager) categoryFunc(name string, data any) (string, error) {
	if name == "" {
		return "", nil
	}

	// Try to find a template named "category/<name>.tmpl"
	tmplName := "category/" + strings.ToLower(name) + ".tmpl"
	t := m.root.Lookup(tmplName)
	if t == nil {
		// Silently ignore missing category templates
		return "", nil
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// joinFunc joins items with sep. Usage: {{join .Labels ", "}}
func joinFunc(items []string, sep string) string {
	return strings.Join(items, sep)
}
