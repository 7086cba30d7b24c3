package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed locales
var localesFS embed.FS

// Languages the bot speaks. English is the fallback for every key.
var Languages = []string{"en", "am", "om"}

const fallbackLanguage = "en"

// Copy is the static message table: (key, language) -> template. Templates
// use {name}-style placeholders filled in by Render.
type Copy struct {
	tables map[string]map[string]string
}

// NewCopy loads the embedded locale files.
func NewCopy() (*Copy, error) {
	c := &Copy{tables: make(map[string]map[string]string, len(Languages))}
	for _, lang := range Languages {
		data, err := fs.ReadFile(localesFS, fmt.Sprintf("locales/%s.yaml", lang))
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", lang, err)
		}
		var table map[string]string
		if err := yaml.Unmarshal(data, &table); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", lang, err)
		}
		c.tables[lang] = table
	}
	return c, nil
}

// newCopyFromTables builds a Copy directly; used by tests to avoid the embed.
func newCopyFromTables(tables map[string]map[string]string) *Copy {
	return &Copy{tables: tables}
}

// Render looks up key for lang, falling back to the English variant when the
// language has none, and to the key string itself when the key is unknown.
// Placeholder substitution happens only when vars are supplied; a template
// whose placeholder is missing from vars is left as-is (programmer error,
// visible in the output rather than a runtime failure).
func (c *Copy) Render(key, lang string, vars map[string]string) string {
	tmpl, ok := c.tables[lang][key]
	if !ok {
		tmpl, ok = c.tables[fallbackLanguage][key]
	}
	if !ok {
		return key
	}
	if len(vars) == 0 {
		return tmpl
	}
	pairs := make([]string, 0, len(vars)*2)
	for name, value := range vars {
		pairs = append(pairs, "{"+name+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
