package console

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// BaseLocale is the locale every catalog falls back to.
const BaseLocale = "en-US"

//go:embed locales/*.yaml
var embeddedLocales embed.FS

type catalogFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

// Catalog holds the console messages for every embedded locale.
type Catalog struct {
	builder *catalog.Builder
	matcher language.Matcher
	tags    []language.Tag
}

// LoadCatalog loads the embedded locale files.
func LoadCatalog() (*Catalog, error) {
	return LoadCatalogFS(embeddedLocales)
}

// LoadCatalogFS loads locales/*.yaml from fsys. The base locale must be present.
func LoadCatalogFS(fsys fs.FS) (*Catalog, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	sort.Strings(paths)

	base := language.MustParse(BaseLocale)
	b := catalog.NewBuilder(catalog.Fallback(base))
	var tags []language.Tag
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", p, err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", p, err)
		}
		want := strings.TrimSuffix(path.Base(p), path.Ext(p))
		if file.Locale != want {
			return nil, fmt.Errorf("catalog %s: locale %q must match file name", p, file.Locale)
		}
		tag, err := language.Parse(file.Locale)
		if err != nil {
			return nil, fmt.Errorf("catalog %s: %w", p, err)
		}
		keys := make([]string, 0, len(file.Messages))
		for k := range file.Messages {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := b.SetString(tag, k, file.Messages[k]); err != nil {
				return nil, fmt.Errorf("catalog %s: key %s: %w", p, k, err)
			}
		}
		tags = append(tags, tag)
	}

	// base first so the matcher falls back to it
	sort.SliceStable(tags, func(i, j int) bool { return tags[i] == base && tags[j] != base })
	if len(tags) == 0 || tags[0] != base {
		return nil, fmt.Errorf("base locale %s is not defined in catalogs", BaseLocale)
	}
	return &Catalog{builder: b, matcher: language.NewMatcher(tags), tags: tags}, nil
}

// Locales returns the available locale tags, base locale first.
func (c *Catalog) Locales() []string {
	out := make([]string, len(c.tags))
	for i, t := range c.tags {
		out[i] = t.String()
	}
	return out
}

// Printer returns a printer for the closest supported match to locale.
func (c *Catalog) Printer(locale string) *message.Printer {
	tag, _ := language.Parse(locale)
	_, idx, _ := c.matcher.Match(tag)
	return message.NewPrinter(c.tags[idx], message.Catalog(c.builder))
}
