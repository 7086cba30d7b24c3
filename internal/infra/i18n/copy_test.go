//go:build !integration

package i18n

import (
	"strings"
	"testing"
)

func TestCopyRender(t *testing.T) {
	c := newCopyFromTables(map[string]map[string]string{
		"en": {
			"greeting":  "Hello {name}!",
			"only_en":   "English only",
			"no_params": "Plain text",
		},
		"om": {
			"greeting": "Akkam {name}!",
		},
	})

	t.Run("should render the requested language", func(t *testing.T) {
		got := c.Render("greeting", "om", map[string]string{"name": "Abebe"})
		if got != "Akkam Abebe!" {
			t.Errorf("unexpected render: %q", got)
		}
	})

	t.Run("should fall back to English when the language variant is absent", func(t *testing.T) {
		got := c.Render("only_en", "om", nil)
		if got != "English only" {
			t.Errorf("expected English fallback, got %q", got)
		}
	})

	t.Run("should return the key unchanged when the key is unknown", func(t *testing.T) {
		got := c.Render("missing_key", "en", nil)
		if got != "missing_key" {
			t.Errorf("expected key passthrough, got %q", got)
		}
	})

	t.Run("should not substitute without vars", func(t *testing.T) {
		got := c.Render("greeting", "en", nil)
		if got != "Hello {name}!" {
			t.Errorf("expected raw template, got %q", got)
		}
	})
}

func TestCopyEmbeddedLocales(t *testing.T) {
	c, err := NewCopy()
	if err != nil {
		t.Fatalf("NewCopy failed: %v", err)
	}

	t.Run("welcome exists in all languages", func(t *testing.T) {
		for _, lang := range Languages {
			got := c.Render("welcome", lang, nil)
			if got == "welcome" {
				t.Errorf("welcome missing for %s", lang)
			}
		}
	})

	t.Run("welcome names the platform", func(t *testing.T) {
		if !strings.Contains(c.Render("welcome", "en", nil), "SoukSync") {
			t.Error("expected welcome copy to contain the platform name")
		}
	})

	t.Run("english-only key falls back for om", func(t *testing.T) {
		en := c.Render("cart_empty", "en", nil)
		om := c.Render("cart_empty", "om", nil)
		if en != om {
			t.Errorf("expected identical fallback text, got %q vs %q", en, om)
		}
	})

	t.Run("registration template substitutes all fields", func(t *testing.T) {
		got := c.Render("registration_complete", "en", map[string]string{
			"shop_name": "Test Shop",
			"location":  "Bole",
			"shop_type": "Kiosk",
		})
		for _, want := range []string{"Test Shop", "Bole", "Kiosk"} {
			if !strings.Contains(got, want) {
				t.Errorf("expected %q in rendered copy: %q", want, got)
			}
		}
		if strings.Contains(got, "{") {
			t.Errorf("unsubstituted placeholder left in %q", got)
		}
	})
}
