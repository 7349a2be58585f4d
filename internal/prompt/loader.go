// Package prompt loads the system prompt templates that steer UI generation.
// Templates are YAML documents embedded at build time, one per generation
// profile, so the binary is self-contained.
package prompt

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed templates/*.yaml
var templateFS embed.FS

// promptFile is the template document shape.
type promptFile struct {
	Type           string   `yaml:"_type"`
	Name           string   `yaml:"name"`
	InputVariables []string `yaml:"input_variables"`
	Template       string   `yaml:"template"`
}

// Library holds the loaded prompt templates keyed by name.
type Library struct {
	templates map[string]string
}

// Load parses every embedded template. A document that is not `_type: prompt`
// or has an empty template is a packaging error and fails loudly.
func Load() (*Library, error) {
	entries, err := fs.Glob(templateFS, "templates/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob templates: %w", err)
	}

	lib := &Library{templates: make(map[string]string, len(entries))}
	for _, path := range entries {
		data, err := templateFS.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		var doc promptFile
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if doc.Type != "prompt" {
			return nil, fmt.Errorf("%s: expected _type: prompt, got %q", path, doc.Type)
		}
		if strings.TrimSpace(doc.Template) == "" {
			return nil, fmt.Errorf("%s: empty template", path)
		}
		name := doc.Name
		if name == "" {
			name = strings.TrimSuffix(strings.TrimPrefix(path, "templates/"), ".yaml")
		}
		lib.templates[name] = doc.Template
	}
	if len(lib.templates) == 0 {
		return nil, fmt.Errorf("no prompt templates embedded")
	}
	return lib, nil
}

// System returns the system prompt for the named template.
func (l *Library) System(name string) (string, error) {
	tmpl, ok := l.templates[name]
	if !ok {
		return "", fmt.Errorf("prompt template not found: %s", name)
	}
	return tmpl, nil
}

// Names lists the loaded template names, sorted.
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.templates))
	for name := range l.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UserPrompt wraps the raw user request with the generation instructions
// every profile shares.
func UserPrompt(request string) string {
	return fmt.Sprintf(`User Request: %s

Please generate appropriate UI components for this request.

Remember to:
1. Use the surfaceUpdate message to define all components
2. Use dataModelUpdate messages to provide realistic sample data
3. End with a beginRendering message

Return a complete response following the protocol.`, request)
}
