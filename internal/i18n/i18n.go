package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cast"
)

const (
	LangEN = "en"
	LangPT = "pt"
)

//go:embed locales/*.json
var localeFS embed.FS

// Manager resolves message keys against embedded locale catalogs, falling
// back to the default language and finally to the key itself.
type Manager struct {
	defaultLanguage string
	locales         map[string]map[string]string
	supported       []string
}

func NewManager(defaultLanguage string) (*Manager, error) {
	manager := &Manager{
		locales: map[string]map[string]string{},
	}

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("read locales: %w", err)
	}
	for _, entry := range entries {
		language := strings.TrimSuffix(strings.ToLower(entry.Name()), filepath.Ext(entry.Name()))
		content, err := localeFS.ReadFile("locales/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", language, err)
		}

		messages := map[string]string{}
		if err := json.Unmarshal(content, &messages); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", language, err)
		}
		if len(messages) == 0 {
			return nil, fmt.Errorf("locale %s is empty", language)
		}

		manager.locales[language] = messages
		manager.supported = append(manager.supported, language)
	}

	if _, ok := manager.locales[LangEN]; !ok {
		return nil, fmt.Errorf("required locale %q missing", LangEN)
	}
	sort.Strings(manager.supported)
	manager.defaultLanguage = manager.Normalize(defaultLanguage)
	return manager, nil
}

func (m *Manager) DefaultLanguage() string {
	return m.defaultLanguage
}

func (m *Manager) SupportedLanguages() []string {
	result := make([]string, len(m.supported))
	copy(result, m.supported)
	return result
}

// Normalize maps a raw language tag ("pt-BR", "PT") to a supported language,
// falling back to the default.
func (m *Manager) Normalize(raw string) string {
	tag := strings.ToLower(strings.TrimSpace(raw))
	if idx := strings.IndexAny(tag, "-_"); idx > 0 {
		tag = tag[:idx]
	}
	if _, ok := m.locales[tag]; ok {
		return tag
	}
	if m.defaultLanguage != "" {
		return m.defaultLanguage
	}
	return LangEN
}

// T resolves a message key for the given language, interpolating {name}
// placeholders from args.
func (m *Manager) T(language string, key string, args map[string]any) string {
	message, ok := m.locales[m.Normalize(language)][key]
	if !ok {
		message, ok = m.locales[m.defaultLanguage][key]
	}
	if !ok {
		return key
	}
	for name, value := range args {
		message = strings.ReplaceAll(message, "{"+name+"}", cast.ToString(value))
	}
	return message
}
