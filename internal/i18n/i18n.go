// Package i18n holds the UI string bundles and picks a language for each request.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

//go:embed locales/*.json
var embedded embed.FS

// Bundle maps language → key → string.
type Bundle struct {
	dict     map[string]map[string]string
	fallback string
	tags     []language.Tag
	bases    []string
	matcher  language.Matcher
}

// Default loads the embedded bundles.
func Default(fallback string) (*Bundle, error) {
	return Load(embedded, "locales", fallback)
}

// Load reads every <lang>.json file under dir. The fallback language must be present.
func Load(fsys fs.FS, dir, fallback string) (*Bundle, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("i18n: read %s: %w", dir, err)
	}
	b := &Bundle{dict: map[string]map[string]string{}, fallback: strings.ToLower(fallback)}
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".json" {
			continue
		}
		lang := strings.ToLower(strings.TrimSuffix(e.Name(), ".json"))
		raw, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("i18n: load locale %s: %w", lang, err)
		}
		var m map[string]string
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("i18n: unmarshal %s: %w", lang, err)
		}
		b.dict[lang] = m
	}
	if _, ok := b.dict[b.fallback]; !ok {
		return nil, fmt.Errorf("i18n: fallback locale %s not loaded", b.fallback)
	}

	// The fallback goes first so the matcher returns it when nothing matches.
	b.bases = append(b.bases, b.fallback)
	for lang := range b.dict {
		if lang != b.fallback {
			b.bases = append(b.bases, lang)
		}
	}
	sort.Strings(b.bases[1:])
	for _, base := range b.bases {
		b.tags = append(b.tags, language.Make(base))
	}
	b.matcher = language.NewMatcher(b.tags)
	return b, nil
}

// Supported returns the loaded languages, fallback first.
func (b *Bundle) Supported() []string {
	out := make([]string, len(b.bases))
	copy(out, b.bases)
	return out
}

// Fallback returns the configured fallback language.
func (b *Bundle) Fallback() string { return b.fallback }

// IsSupported reports whether lang has a bundle.
func (b *Bundle) IsSupported(lang string) bool {
	_, ok := b.dict[strings.ToLower(lang)]
	return ok
}

// T returns the translation for key in lang, falling back to the default language and
// finally the key itself.
func (b *Bundle) T(lang, key string) string {
	if m, ok := b.dict[strings.ToLower(lang)]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if v, ok := b.dict[b.fallback][key]; ok {
		return v
	}
	return key
}

// Resolve picks the best supported language for an Accept-Language header.
func (b *Bundle) Resolve(acceptLang string) string {
	prefs, _, err := language.ParseAcceptLanguage(acceptLang)
	if err != nil || len(prefs) == 0 {
		return b.fallback
	}
	_, index, confidence := b.matcher.Match(prefs...)
	if confidence == language.No {
		return b.fallback
	}
	return b.bases[index]
}
