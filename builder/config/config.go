// loads site configuration from kosh.yaml
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"gopkg.in/yaml.v3"

	"github.com/Kush-Singh-26/koshgraph/builder/models"
)

const DefaultFile = "kosh.yaml"

// Config holds the structural options of a site.
type Config struct {
	BaseURL               string              `yaml:"base_url"`
	ContentDir            string              `yaml:"content_dir"`
	DefaultSortKey        models.SortBy       `yaml:"default_sort_key"`
	InsertAnchorLinks     models.AnchorPolicy `yaml:"insert_anchor_links"`
	ContinueReadingText   string              `yaml:"continue_reading_text"`
	IgnoredContent        []string            `yaml:"ignored_content"`
	Taxonomies            []Taxonomy          `yaml:"taxonomies"`
	PaginationPathSegment string              `yaml:"pagination_path_segment"`
	FeedFilename          string              `yaml:"feed_filename"`
	IncludeDrafts         bool                `yaml:"include_drafts"`
	Markdown              MarkdownConfig      `yaml:"markdown"`
	Build                 BuildConfig         `yaml:"build"`
}

// MarkdownConfig tunes body rendering.
type MarkdownConfig struct {
	HighlightStyle string `yaml:"highlight_style"`
	BrokenLinks    string `yaml:"broken_links"` // "warn" or "error"
}

// Taxonomy declares one classification kind.
type Taxonomy struct {
	Name          string `yaml:"name"`
	PaginateBy    int    `yaml:"paginate_by"`
	PaginatePath  string `yaml:"paginate_path"`
	Feed          bool   `yaml:"feed"`
	CaseSensitive *bool  `yaml:"case_sensitive"`
}

// IsCaseSensitive defaults to true when the option is omitted. Terms that
// differ only in case ("Rust", "rust") then stay distinct but share a slug,
// which fails the build with a conflict; set case_sensitive: false to merge them.
func (t Taxonomy) IsCaseSensitive() bool {
	return t.CaseSensitive == nil || *t.CaseSensitive
}

var taxonomyName = regexp.MustCompile(`^[\p{L}\p{N}_-]+$`)

func (t Taxonomy) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Name, validation.Required, validation.Match(taxonomyName)),
		validation.Field(&t.PaginateBy, validation.Min(0)),
	)
}

// Default returns the configuration used when kosh.yaml omits a value.
func Default() *Config {
	return &Config{
		ContentDir:            "content",
		DefaultSortKey:        models.SortNone,
		InsertAnchorLinks:     models.AnchorNone,
		ContinueReadingText:   "more",
		PaginationPathSegment: "page",
		FeedFilename:          "atom.xml",
		Markdown: MarkdownConfig{
			HighlightStyle: "nord",
			BrokenLinks:    "warn",
		},
		Build: DefaultBuildConfig(),
	}
}

// Load reads a YAML file, expands environment variables and validates the result.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
	}
	return Parse(data)
}

// LoadOrDefault behaves like Load but falls back to defaults when the file is absent.
// The defaults carry no base URL, so callers must supply one before validating.
func LoadOrDefault(filename string) (*Config, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return Load(filename)
}

// Parse decodes YAML on top of Default.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := decode(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadWith reads filename when it exists, lets override replace values
// of the file (command-line flags) and validates the result.
func LoadWith(filename string, override func(*Config)) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(filename)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
	default:
		if err := decode(data, cfg); err != nil {
			return nil, err
		}
	}
	if override != nil {
		override(cfg)
	}
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

func (c *Config) finish() error {
	c.normalize()
	if err := c.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// normalize fills defaults that YAML may have blanked
func (c *Config) normalize() {
	if c.ContentDir == "" {
		c.ContentDir = "content"
	}
	if c.DefaultSortKey == "" {
		c.DefaultSortKey = models.SortNone
	}
	if c.InsertAnchorLinks == "" {
		c.InsertAnchorLinks = models.AnchorNone
	}
	if c.ContinueReadingText == "" {
		c.ContinueReadingText = "more"
	}
	if c.PaginationPathSegment == "" {
		c.PaginationPathSegment = "page"
	}
	if c.FeedFilename == "" {
		c.FeedFilename = "atom.xml"
	}
	if c.Markdown.HighlightStyle == "" {
		c.Markdown.HighlightStyle = "nord"
	}
	if c.Markdown.BrokenLinks == "" {
		c.Markdown.BrokenLinks = "warn"
	}
	c.Build.validate()
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required, is.URL),
		validation.Field(&c.ContentDir, validation.Required),
		validation.Field(&c.DefaultSortKey, validation.In(
			models.SortDate, models.SortWeight, models.SortTitle, models.SortFilename, models.SortNone)),
		validation.Field(&c.InsertAnchorLinks, validation.In(
			models.AnchorNone, models.AnchorLeft, models.AnchorRight)),
		validation.Field(&c.PaginationPathSegment, validation.Required),
		validation.Field(&c.Taxonomies),
	)
	if err != nil {
		return err
	}
	if err := c.Markdown.Validate(); err != nil {
		return err
	}

	seen := make(map[string]bool, len(c.Taxonomies))
	for _, t := range c.Taxonomies {
		if seen[t.Name] {
			return fmt.Errorf("taxonomies: %q is declared twice", t.Name)
		}
		seen[t.Name] = true
	}
	return nil
}

func (m *MarkdownConfig) Validate() error {
	return validation.ValidateStruct(m,
		validation.Field(&m.BrokenLinks, validation.In("warn", "error")),
	)
}

// Normalize is exported for callers that build a Config in code.
func (c *Config) Normalize() {
	c.normalize()
}

// Taxonomy returns the declared kind called name.
func (c *Config) Taxonomy(name string) (Taxonomy, bool) {
	for _, t := range c.Taxonomies {
		if t.Name == name {
			return t, true
		}
	}
	return Taxonomy{}, false
}

// BrokenLinksFatal reports whether an unresolved internal link fails the build.
func (c *Config) BrokenLinksFatal() bool {
	return c.Markdown.BrokenLinks == "error"
}
