// Package i18n implements proofread.Catalog with YAML locale files.
//
// Each locale is one file named after its language code (en.yaml, ru.yaml)
// with a display name and a flat map of message keys:
//
//	name: English
//	messages:
//	  no_errors: "No errors found."
//
// The English locale is embedded and must define every key. Other locales
// may omit keys; missing keys fall back to English.
package i18n

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fwojciec/proofread"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var embedded embed.FS

// localePattern matches locale files at any depth.
const localePattern = "**/*.{yaml,yml}"

// RequiredKeys lists the messages the default locale must define.
var RequiredKeys = []proofread.MessageKey{
	proofread.MessageSystemPrompt,
	proofread.MessageWelcome,
	proofread.MessageChooseLanguage,
	proofread.MessageLanguageSet,
	proofread.MessageChecking,
	proofread.MessageBusy,
	proofread.MessageEmptyInput,
	proofread.MessageTooLong,
	proofread.MessageNoErrors,
	proofread.MessageNotEnglish,
	proofread.MessageTimedOut,
	proofread.MessageFailed,
	proofread.MessageEmpty,
}

var _ proofread.Catalog = (*Catalog)(nil)

type locale struct {
	Name     string            `yaml:"name"`
	Messages map[string]string `yaml:"messages"`
}

// Catalog holds the loaded locales. It is immutable after loading and safe
// for concurrent use.
type Catalog struct {
	locales map[proofread.Language]locale
}

// Default returns the catalog of embedded locales.
func Default() (*Catalog, error) {
	return Load(embedded)
}

// Load reads every locale file in fsys.
func Load(fsys fs.FS) (*Catalog, error) {
	c := &Catalog{locales: make(map[proofread.Language]locale)}
	if err := c.merge(fsys); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadDir returns the embedded locales overlaid with the locale files found
// under dir. A file for an existing language replaces individual messages;
// a file for a new language adds it.
func LoadDir(dir string) (*Catalog, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	if err := c.merge(os.DirFS(dir)); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) merge(fsys fs.FS) error {
	paths, err := doublestar.Glob(fsys, localePattern)
	if err != nil {
		return fmt.Errorf("i18n: %w", err)
	}
	slices.Sort(paths)
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("i18n: %w", err)
		}
		var loc locale
		if err := yaml.Unmarshal(data, &loc); err != nil {
			return fmt.Errorf("i18n: parse %s: %w", p, err)
		}
		lang := proofread.Language(strings.TrimSuffix(path.Base(p), path.Ext(p)))
		c.add(lang, loc)
	}
	return nil
}

func (c *Catalog) add(lang proofread.Language, loc locale) {
	existing, ok := c.locales[lang]
	if !ok {
		existing = locale{Messages: make(map[string]string)}
	}
	if loc.Name != "" {
		existing.Name = loc.Name
	}
	for k, v := range loc.Messages {
		existing.Messages[k] = strings.TrimRight(v, "\n")
	}
	c.locales[lang] = existing
}

func (c *Catalog) validate() error {
	def, ok := c.locales[proofread.DefaultLanguage]
	if !ok {
		return fmt.Errorf("i18n: no %q locale: %w", proofread.DefaultLanguage, proofread.ErrValidation)
	}
	var missing []string
	for _, key := range RequiredKeys {
		if def.Messages[string(key)] == "" {
			missing = append(missing, string(key))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("i18n: %q locale is missing %s: %w",
			proofread.DefaultLanguage, strings.Join(missing, ", "), proofread.ErrValidation)
	}
	return nil
}

// Message returns the message for key in lang, falling back to the default
// language and finally to the key itself.
func (c *Catalog) Message(lang proofread.Language, key proofread.MessageKey) string {
	if s := c.locales[lang].Messages[string(key)]; s != "" {
		return s
	}
	if s := c.locales[proofread.DefaultLanguage].Messages[string(key)]; s != "" {
		return s
	}
	return string(key)
}

// Languages returns the loaded language codes, default language first and
// the rest in code order.
func (c *Catalog) Languages() []proofread.Language {
	langs := make([]proofread.Language, 0, len(c.locales))
	for lang := range c.locales {
		if lang != proofread.DefaultLanguage {
			langs = append(langs, lang)
		}
	}
	slices.Sort(langs)
	return append([]proofread.Language{proofread.DefaultLanguage}, langs...)
}

// Name returns the display name of lang, or its code when none is set.
func (c *Catalog) Name(lang proofread.Language) string {
	if loc, ok := c.locales[lang]; ok && loc.Name != "" {
		return loc.Name
	}
	return string(lang)
}

// Supports reports whether lang has a locale.
func (c *Catalog) Supports(lang proofread.Language) bool {
	_, ok := c.locales[lang]
	return ok
}

// Match maps a client locale such as "ru" or "en-US" to a supported
// language.
func (c *Catalog) Match(code string) (proofread.Language, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return "", false
	}
	if c.Supports(proofread.Language(code)) {
		return proofread.Language(code), true
	}
	base, _, _ := strings.Cut(code, "-")
	base, _, _ = strings.Cut(base, "_")
	if c.Supports(proofread.Language(base)) {
		return proofread.Language(base), true
	}
	return "", false
}

// ErrUnsupported is returned by Parse for a language with no locale.
var ErrUnsupported = errors.New("unsupported language")

// Parse returns code as a Language when the catalog supports it.
func (c *Catalog) Parse(code string) (proofread.Language, error) {
	if lang, ok := c.Match(code); ok {
		return lang, nil
	}
	return "", fmt.Errorf("i18n: %q: %w", code, ErrUnsupported)
}
