package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// APIConfig holds the extension-level settings loaded from contentapi.yml:
// request defaults, access control, and the per-content-type column
// configuration consumed by the column resolver.
type APIConfig struct {
	// MountingPoint is the URL prefix the API routes are mounted under.
	// The major API version is appended to it. Default: /api
	MountingPoint string `yaml:"mounting_point"`

	// Whitelist restricts access by client IP. A false value disables
	// the check entirely; an empty or absent list allows only the server
	// itself.
	Whitelist Whitelist `yaml:"whitelist"`

	// Exclude lists content types that must never be served, regardless
	// of permissions.
	Exclude []string `yaml:"exclude"`

	// Defaults holds the fallback limit and order applied when a request
	// does not set them.
	Defaults Defaults `yaml:"defaults"`

	// BaseColumns is the global base column override. A list replaces
	// the intrinsic base columns; true keeps them; false drops them.
	BaseColumns *ColumnsOption `yaml:"base_columns,omitempty"`

	// ContentTypes maps a content type slug to its per-type column
	// configuration (base column override plus per-view column lists).
	ContentTypes map[string]ContentTypeConfig `yaml:"contenttypes,omitempty"`

	// Users are the API users allowed to obtain write-access tokens.
	Users []User `yaml:"users,omitempty"`

	// Permissions configures which roles may perform which actions.
	Permissions Permissions `yaml:"permissions"`
}

// Defaults holds the fallback query parameters.
type Defaults struct {
	Limit int    `yaml:"limit"`
	Order string `yaml:"order"`
}

// User is an API user. The password is stored as an Argon2id hash.
type User struct {
	Username     string   `yaml:"username"`
	PasswordHash string   `yaml:"password_hash"`
	Roles        []string `yaml:"roles"`
}

// Permissions maps actions to allowed roles, with optional per-content-type
// overrides. The "anonymous" role stands for unauthenticated callers.
type Permissions struct {
	View         []string                      `yaml:"view"`
	Create       []string                      `yaml:"create"`
	ContentTypes map[string]ContentTypeActions `yaml:"contenttypes,omitempty"`
}

// ContentTypeActions overrides the allowed roles per action for one
// content type.
type ContentTypeActions struct {
	View   []string `yaml:"view,omitempty"`
	Create []string `yaml:"create,omitempty"`
}

// Whitelist is either disabled (false in YAML) or a list of IP prefixes.
type Whitelist struct {
	// Disabled is true when the whitelist was configured as false,
	// meaning every client IP is accepted.
	Disabled bool

	// IPs holds the allowed IP prefixes.
	IPs []string
}

// UnmarshalYAML accepts either the scalar false or a sequence of IPs.
func (w *Whitelist) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var enabled bool
		if err := node.Decode(&enabled); err != nil {
			return fmt.Errorf("whitelist must be false or a list of IPs")
		}
		if enabled {
			return fmt.Errorf("whitelist: true is not meaningful, use a list of IPs or false")
		}
		w.Disabled = true
		w.IPs = nil
		return nil
	case yaml.SequenceNode:
		return node.Decode(&w.IPs)
	default:
		return fmt.Errorf("whitelist must be false or a list of IPs")
	}
}

// ColumnsOption is a tri-state column override: an explicit column list, or
// a boolean selecting between the intrinsic base columns (true) and no base
// columns at all (false).
type ColumnsOption struct {
	// Columns is the explicit list, when the option was a sequence.
	Columns []string

	// UseDefault is the boolean value, when the option was a scalar.
	UseDefault bool

	// IsList reports whether Columns is the authoritative value.
	IsList bool
}

// UnmarshalYAML accepts either a boolean scalar or a sequence of names.
func (c *ColumnsOption) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if err := node.Decode(&c.UseDefault); err != nil {
			return fmt.Errorf("base_columns must be a boolean or a list of columns")
		}
		c.IsList = false
		c.Columns = nil
		return nil
	case yaml.SequenceNode:
		c.IsList = true
		c.UseDefault = false
		return node.Decode(&c.Columns)
	default:
		return fmt.Errorf("base_columns must be a boolean or a list of columns")
	}
}

// ContentTypeConfig is the per-content-type column configuration. In the
// YAML file the view lists sit directly next to base_columns:
//
//	articles:
//	  base_columns: [id, slug]
//	  listing: [title, image]
//	  record: [title, image, body]
type ContentTypeConfig struct {
	// BaseColumns overrides the base columns for this type.
	BaseColumns *ColumnsOption

	// Views maps a view name (listing, record, search, taxonomy, or a
	// custom name) to the column list configured for it.
	Views map[string][]string
}

// UnmarshalYAML decodes the mapping, treating the base_columns key
// specially and every other key as a view column list.
func (c *ContentTypeConfig) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("content type config must be a mapping")
	}

	c.Views = make(map[string][]string)

	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		valNode := node.Content[i+1]

		if keyNode.Value == "base_columns" {
			var opt ColumnsOption
			if err := valNode.Decode(&opt); err != nil {
				return err
			}
			c.BaseColumns = &opt
			continue
		}

		var cols []string
		if err := valNode.Decode(&cols); err != nil {
			return fmt.Errorf("view %q: expected a list of columns: %w", keyNode.Value, err)
		}
		c.Views[keyNode.Value] = cols
	}

	return nil
}

// LoadAPIConfig reads and parses the contentapi.yml file at path, applying
// defaults for absent values.
func LoadAPIConfig(path string) (*APIConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading API config %q: %w", path, err)
	}

	cfg := &APIConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing API config %q: %w", path, err)
	}

	if cfg.MountingPoint == "" {
		cfg.MountingPoint = "/api"
	}
	if cfg.Defaults.Limit <= 0 {
		cfg.Defaults.Limit = 10
	}
	if cfg.Defaults.Order == "" {
		cfg.Defaults.Order = "datepublish DESC"
	}
	if len(cfg.Permissions.View) == 0 {
		cfg.Permissions.View = []string{"anonymous"}
	}
	if len(cfg.Permissions.Create) == 0 {
		cfg.Permissions.Create = []string{"editor"}
	}

	return cfg, nil
}

// IsExcluded reports whether the given content type is configured to be
// excluded from the API.
func (c *APIConfig) IsExcluded(contentType string) bool {
	for _, ex := range c.Exclude {
		if ex == contentType {
			return true
		}
	}
	return false
}

// UserByName returns the configured API user with the given username.
func (c *APIConfig) UserByName(username string) (User, bool) {
	for _, u := range c.Users {
		if u.Username == username {
			return u, true
		}
	}
	return User{}, false
}

// ViewColumns returns the configured column list for a content type slug
// and view name, or ok=false when no per-view list is configured.
func (c *APIConfig) ViewColumns(slug, view string) ([]string, bool) {
	tc, ok := c.ContentTypes[slug]
	if !ok {
		return nil, false
	}
	cols, ok := tc.Views[view]
	return cols, ok
}
