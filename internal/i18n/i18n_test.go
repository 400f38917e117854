package i18n

import "testing"

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	manager, err := NewManager(LangEN)
	if err != nil {
		t.Fatalf("load locales: %v", err)
	}
	return manager
}

func TestNormalize(t *testing.T) {
	manager := newTestManager(t)

	cases := map[string]string{
		"en":    "en",
		"EN":    "en",
		"pt":    "pt",
		"pt-BR": "pt",
		"pt_BR": "pt",
		"PT-br": "pt",
		"fr":    "en",
		"":      "en",
	}
	for raw, want := range cases {
		if got := manager.Normalize(raw); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestT_Interpolation(t *testing.T) {
	manager := newTestManager(t)

	got := manager.T("en", "user.contributions_text.many", map[string]any{"total": int64(4)})
	if got != "Contributed to this and 4 other projects" {
		t.Fatalf("unexpected interpolation: %q", got)
	}
}

func TestT_FallsBackToDefaultLanguage(t *testing.T) {
	manager := newTestManager(t)

	if got := manager.T("fr", "user.no_name", nil); got != "No name" {
		t.Fatalf("expected default language fallback, got %q", got)
	}
}

func TestT_UnknownKeyReturnsKey(t *testing.T) {
	manager := newTestManager(t)

	if got := manager.T("en", "user.never_defined", nil); got != "user.never_defined" {
		t.Fatalf("expected the key itself, got %q", got)
	}
}

func TestSupportedLanguages(t *testing.T) {
	manager := newTestManager(t)

	supported := manager.SupportedLanguages()
	if len(supported) < 2 {
		t.Fatalf("expected at least en and pt, got %v", supported)
	}
	if supported[0] != "en" {
		t.Fatalf("expected sorted languages starting with en, got %v", supported)
	}
}

func TestDefaultLanguageNormalized(t *testing.T) {
	manager, err := NewManager("PT-br")
	if err != nil {
		t.Fatalf("load locales: %v", err)
	}
	if got := manager.DefaultLanguage(); got != "pt" {
		t.Fatalf("expected normalized default, got %q", got)
	}
}
