// Package i18n holds the display text for alerts, dimensions and
// severities, keyed by dotted message ids, in Spanish and English.
//
// There is no process-wide current language. Callers resolve a
// Translator for an explicit locale and pass it to whatever renders text.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var embeddedLocales embed.FS

// DefaultLocale is used when a requested locale cannot be matched.
const DefaultLocale = "es"

// Catalog is an immutable set of messages per language.
type Catalog struct {
	tags     []language.Tag
	messages []map[string]string // parallel to tags
	matcher  language.Matcher
}

// New loads the embedded locale files. The default locale is always
// first so the matcher prefers it on ties.
func New() (*Catalog, error) {
	entries, err := fs.ReadDir(embeddedLocales, "locales")
	if err != nil {
		return nil, fmt.Errorf("i18n: read locales: %w", err)
	}

	byTag := make(map[string]map[string]string)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || path.Ext(name) != ".yaml" {
			continue
		}
		data, err := embeddedLocales.ReadFile(path.Join("locales", name))
		if err != nil {
			return nil, fmt.Errorf("i18n: read %s: %w", name, err)
		}
		msgs, err := parseMessages(data)
		if err != nil {
			return nil, fmt.Errorf("i18n: parse %s: %w", name, err)
		}
		byTag[strings.TrimSuffix(name, ".yaml")] = msgs
	}
	if _, ok := byTag[DefaultLocale]; !ok {
		return nil, fmt.Errorf("i18n: default locale %q missing", DefaultLocale)
	}

	names := make([]string, 0, len(byTag))
	for n := range byTag {
		if n != DefaultLocale {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	names = append([]string{DefaultLocale}, names...)

	c := &Catalog{}
	for _, n := range names {
		tag, err := language.Parse(n)
		if err != nil {
			return nil, fmt.Errorf("i18n: locale file %s: %w", n, err)
		}
		c.tags = append(c.tags, tag)
		c.messages = append(c.messages, byTag[n])
	}
	c.matcher = language.NewMatcher(c.tags)
	return c, nil
}

// parseMessages flattens a nested YAML document into dotted keys.
func parseMessages(data []byte) (map[string]string, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	out := make(map[string]string)
	flatten("", doc, out)
	return out, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		case string:
			out[key] = val
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

// Locales returns the supported locale codes, default first.
func (c *Catalog) Locales() []string {
	out := make([]string, len(c.tags))
	for i, t := range c.tags {
		out[i] = t.String()
	}
	return out
}

// Match resolves a locale string (for example "en-US" or "es-AR") to one
// of the supported locale codes. Empty, malformed or unsupported locales
// resolve to DefaultLocale.
func (c *Catalog) Match(locale string) string {
	return c.tags[c.index(locale)].String()
}

func (c *Catalog) index(locale string) int {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return 0
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return 0
	}
	_, idx, conf := c.matcher.Match(tag)
	if conf == language.No {
		return 0
	}
	return idx
}

// Translator returns the text source for a locale.
func (c *Catalog) Translator(locale string) *Translator {
	idx := c.index(locale)
	return &Translator{
		locale:   c.tags[idx].String(),
		primary:  c.messages[idx],
		fallback: c.messages[0],
	}
}

// Translator looks up messages for one locale. Missing keys fall back to
// the default locale, then to the key itself.
type Translator struct {
	locale   string
	primary  map[string]string
	fallback map[string]string
}

// Locale returns the resolved locale code.
func (t *Translator) Locale() string { return t.locale }

// Text returns the message for key.
func (t *Translator) Text(key string) string {
	if v, ok := t.primary[key]; ok {
		return v
	}
	if v, ok := t.fallback[key]; ok {
		return v
	}
	return key
}
