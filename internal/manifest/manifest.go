// Package manifest loads and validates the site manifest (patterns.yaml).
//
// The manifest is the single source of truth for the catalog: site identity,
// the ordered navigation groups, and the knobs for building, serving, and
// verifying the generated site.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where commands look for the manifest unless told otherwise.
const DefaultPath = "patterns.yaml"

var (
	ErrMissingSiteTitle = errors.New("site title is required")
	ErrEmptyNav         = errors.New("navigation has no groups")
)

// Manifest is the parsed patterns.yaml.
type Manifest struct {
	Site    Site       `yaml:"site"`
	Content Content    `yaml:"content"`
	Build   Build      `yaml:"build"`
	Serve   Serve      `yaml:"serve"`
	Verify  Verify     `yaml:"verify"`
	Events  Events     `yaml:"events"`
	Metrics Metrics    `yaml:"metrics"`
	Nav     []NavGroup `yaml:"nav"`
}

// Site carries the identity rendered into every page.
type Site struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	// URL is the canonical public origin, e.g. "https://patterns.example.com".
	// Optional; when set the sitemap carries absolute locations.
	URL      string            `yaml:"url"`
	BasePath string            `yaml:"base_path"`
	Social   map[string]string `yaml:"social"`
}

// Content locates the markdown sources.
type Content struct {
	Dir string `yaml:"dir"`
}

// Build controls static output.
type Build struct {
	OutputDir string `yaml:"output_dir"`
	Clean     bool   `yaml:"clean"`
}

// Serve controls the local preview server.
type Serve struct {
	Addr string `yaml:"addr"`
}

// Verify controls external link verification.
type Verify struct {
	Concurrency int      `yaml:"concurrency"`
	Timeout     Duration `yaml:"timeout"`
	Attempts    int      `yaml:"attempts"`
	CacheTTL    Duration `yaml:"cache_ttl"`
	// Schedule is a cron expression for periodic verification while
	// serving. Empty disables the schedule.
	Schedule string `yaml:"schedule"`
	NATS     NATS   `yaml:"nats"`
}

// NATS configures the optional verification event stream. An empty URL
// keeps verification fully local.
type NATS struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
	Bucket  string `yaml:"bucket"`
}

// Events locates the build event journal.
type Events struct {
	Path string `yaml:"path"`
}

// Metrics controls the Prometheus endpoint of the preview server.
type Metrics struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// NavGroup is one ordered category in the sidebar.
type NavGroup struct {
	Title     string    `yaml:"title"`
	Collapsed bool      `yaml:"collapsed"`
	Items     []NavItem `yaml:"items"`
}

// NavItem points a sidebar label at a markdown document, relative to the
// content dir.
type NavItem struct {
	Label string `yaml:"label"`
	Path  string `yaml:"path"`
}

// Duration is a time.Duration that unmarshals from YAML strings like "30s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std converts back to the standard library type.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Load reads, expands, and validates the manifest at path. A .env file next
// to the manifest is applied first so ${VAR} references in it resolve.
func Load(path string) (*Manifest, error) {
	if env := filepath.Join(filepath.Dir(path), ".env"); fileExists(env) {
		if err := godotenv.Load(env); err != nil {
			return nil, fmt.Errorf("load %s: %w", env, err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	m.applyDefaults()
	m.expandEnv()

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	return &m, nil
}

func (m *Manifest) applyDefaults() {
	if m.Content.Dir == "" {
		m.Content.Dir = "docs"
	}
	if m.Build.OutputDir == "" {
		m.Build.OutputDir = "dist"
	}
	if m.Serve.Addr == "" {
		m.Serve.Addr = ":4173"
	}
	if m.Verify.Concurrency <= 0 {
		m.Verify.Concurrency = 8
	}
	if m.Verify.Timeout <= 0 {
		m.Verify.Timeout = Duration(10 * time.Second)
	}
	if m.Verify.Attempts <= 0 {
		m.Verify.Attempts = 3
	}
	if m.Verify.CacheTTL <= 0 {
		m.Verify.CacheTTL = Duration(time.Hour)
	}
	if m.Verify.NATS.Subject == "" {
		m.Verify.NATS.Subject = "patterns.linkcheck"
	}
	if m.Verify.NATS.Bucket == "" {
		m.Verify.NATS.Bucket = "linkcheck"
	}
	if m.Events.Path == "" {
		m.Events.Path = filepath.Join(".patterns", "events.db")
	}
	if m.Metrics.Namespace == "" {
		m.Metrics.Namespace = "patterns"
	}
	m.Site.BasePath = normalizeBasePath(m.Site.BasePath)
	m.Site.URL = strings.TrimRight(m.Site.URL, "/")
}

// normalizeBasePath forces a leading and trailing slash so href joins stay
// mechanical everywhere else.
func normalizeBasePath(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return "/"
	}
	return "/" + p + "/"
}

func (m *Manifest) expandEnv() {
	m.Site.URL = os.ExpandEnv(m.Site.URL)
	m.Verify.NATS.URL = os.ExpandEnv(m.Verify.NATS.URL)
	m.Events.Path = os.ExpandEnv(m.Events.Path)
	for k, v := range m.Site.Social {
		m.Site.Social[k] = os.ExpandEnv(v)
	}
}

// Validate checks structural soundness. Catalog-level properties, such as
// nav entries pointing at documents that exist, are the linter's concern.
func (m *Manifest) Validate() error {
	if strings.TrimSpace(m.Site.Title) == "" {
		return ErrMissingSiteTitle
	}
	if len(m.Nav) == 0 {
		return ErrEmptyNav
	}
	for gi, group := range m.Nav {
		if strings.TrimSpace(group.Title) == "" {
			return fmt.Errorf("nav group %d: title is required", gi+1)
		}
		if len(group.Items) == 0 {
			return fmt.Errorf("nav group %q: no items", group.Title)
		}
		for _, item := range group.Items {
			if err := validateItem(item); err != nil {
				return fmt.Errorf("nav group %q: %w", group.Title, err)
			}
		}
	}
	return nil
}

func validateItem(item NavItem) error {
	if strings.TrimSpace(item.Label) == "" {
		return fmt.Errorf("item %q: label is required", item.Path)
	}
	if strings.TrimSpace(item.Path) == "" {
		return fmt.Errorf("item %q: path is required", item.Label)
	}
	p := filepath.ToSlash(item.Path)
	switch {
	case strings.HasPrefix(p, "/"):
		return fmt.Errorf("item %q: path must be relative to the content dir", item.Label)
	case p != filepath.ToSlash(filepath.Clean(p)) || strings.HasPrefix(p, ".."):
		return fmt.Errorf("item %q: path must not traverse outside the content dir", item.Label)
	case !strings.HasSuffix(p, ".md"):
		return fmt.Errorf("item %q: path must point at a .md file", item.Label)
	}
	return nil
}

// NavPaths returns every nav item path in sidebar order.
func (m *Manifest) NavPaths() []string {
	var paths []string
	for _, group := range m.Nav {
		for _, item := range group.Items {
			paths = append(paths, item.Path)
		}
	}
	return paths
}

// HrefFor maps a content-relative markdown path to its site URL.
// "index.md" is the site root; everything else renders as a directory with
// a trailing slash, e.g. "state/stores.md" under base path "/patterns/"
// becomes "/patterns/state/stores/".
func (m *Manifest) HrefFor(relPath string) string {
	p := strings.TrimSuffix(filepath.ToSlash(relPath), ".md")
	if p == "index" {
		return m.Site.BasePath
	}
	p = strings.TrimSuffix(p, "/index")
	return m.Site.BasePath + p + "/"
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
