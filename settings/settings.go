// Package settings loads the YAML settings file shared by the management
// commands: the database aliases and the admin models served by the
// autocomplete endpoint.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/syssam/veloxext"
	"github.com/syssam/veloxext/dialect"
)

// DefaultDBAlias is the alias used when no database is nominated.
const DefaultDBAlias = "default"

// DefaultFile is the settings file looked up by the commands.
const DefaultFile = "settings.yaml"

// Settings represents the settings file.
type Settings struct {
	// Databases maps an alias to its configuration.
	Databases map[string]Database `yaml:"databases" validate:"dive"`

	// Engines registers extra engine names per class, for custom backends:
	//
	//	engines:
	//	  postgresql: [shop.backends.pg]
	Engines map[string][]string `yaml:"engines,omitempty"`

	// Admin configures the autocomplete endpoint.
	Admin Admin `yaml:"admin,omitempty"`
}

// Database describes one database alias. An empty Host means localhost.
type Database struct {
	Engine   string `yaml:"engine" validate:"required"`
	Name     string `yaml:"name" validate:"required"`
	User     string `yaml:"user,omitempty"`
	Password string `yaml:"password,omitempty"`
	Host     string `yaml:"host,omitempty"`
	Port     int    `yaml:"port,omitempty" validate:"gte=0,lte=65535"`

	// ConnMaxAge is the lifetime of a pooled connection; zero keeps
	// connections open.
	ConnMaxAge time.Duration `yaml:"conn_max_age,omitempty" validate:"gte=0"`
	// MaxOpenConns limits the open connections; zero is unlimited.
	MaxOpenConns int `yaml:"max_open_conns,omitempty" validate:"gte=0"`
}

// HostOrDefault returns Host, or "localhost" when it is blank.
func (d Database) HostOrDefault() string {
	if d.Host == "" {
		return "localhost"
	}
	return d.Host
}

// Admin holds the models exposed through the autocomplete endpoint.
type Admin struct {
	// Prefix is the URL prefix of the admin site (default "/admin/").
	Prefix string `yaml:"prefix,omitempty"`
	// Limit caps the number of autocomplete results. Zero means unlimited.
	Limit  int     `yaml:"limit,omitempty" validate:"gte=0"`
	Models []Model `yaml:"models,omitempty" validate:"dive"`

	// Cache keeps recent search results; disabled when Size is zero.
	Cache Cache `yaml:"cache,omitempty"`
	// RateLimit throttles autocomplete requests per client.
	RateLimit RateLimit `yaml:"rate_limit,omitempty"`
	// CORSOrigins lists the origins allowed to call the endpoint from
	// another host. Empty disables CORS.
	CORSOrigins []string `yaml:"cors_origins,omitempty"`
	// SlowQuery is the duration above which store queries are logged as
	// slow. Zero keeps the driver default.
	SlowQuery time.Duration `yaml:"slow_query,omitempty" validate:"gte=0"`
	// Metrics exposes Prometheus metrics under /metrics.
	Metrics bool `yaml:"metrics,omitempty"`
}

// Cache configures the search result cache.
type Cache struct {
	Size int           `yaml:"size" validate:"gte=0"`
	TTL  time.Duration `yaml:"ttl" validate:"gte=0"`
}

// RateLimit configures the per-client request rate. Zero Rate disables it.
type RateLimit struct {
	// Rate is the number of requests per second.
	Rate  float64 `yaml:"rate" validate:"gte=0"`
	Burst int     `yaml:"burst" validate:"gte=0"`
}

// Model registers one admin model.
type Model struct {
	App          string   `yaml:"app" validate:"required"`
	Model        string   `yaml:"model" validate:"required"`
	Database     string   `yaml:"database,omitempty"`
	Table        string   `yaml:"table,omitempty"`
	PK           string   `yaml:"pk,omitempty"`
	Label        string   `yaml:"label,omitempty"`
	SearchFields []string `yaml:"search_fields"`
}

// Load reads and parses a settings file.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	return Parse(data)
}

// Parse parses settings from YAML.
func Parse(data []byte) (*Settings, error) {
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	for class := range s.Engines {
		if _, err := dialect.ParseClass(class); err != nil {
			return nil, fmt.Errorf("settings: engines: %w", err)
		}
	}
	if err := validate.Struct(&s); err != nil {
		return nil, validationError(err)
	}
	return &s, nil
}

var validate = newValidator()

// newValidator reports fields by their YAML names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationError turns validator errors into a ConfigError listing every
// invalid field, e.g. "settings: databases[default].name is required".
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("settings: %w", err)
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		field := fe.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
		switch fe.Tag() {
		case "required":
			msgs[i] = field + " is required"
		case "gte":
			msgs[i] = fmt.Sprintf("%s must be at least %s", field, fe.Param())
		case "lte":
			msgs[i] = fmt.Sprintf("%s must be at most %s", field, fe.Param())
		default:
			msgs[i] = fmt.Sprintf("%s failed %s", field, fe.Tag())
		}
	}
	return veloxext.NewConfigError("settings: %s", strings.Join(msgs, "; "))
}

// Database returns the configuration of the alias, or a ConfigError if the
// alias is not configured.
func (s *Settings) Database(alias string) (Database, error) {
	if s != nil {
		if db, ok := s.Databases[alias]; ok {
			return db, nil
		}
	}
	return Database{}, veloxext.NewConfigError("Unknown database %s", alias)
}

// Aliases returns the configured aliases in sorted order.
func (s *Settings) Aliases() []string {
	aliases := make([]string, 0, len(s.Databases))
	for a := range s.Databases {
		aliases = append(aliases, a)
	}
	sort.Strings(aliases)
	return aliases
}

// Classifier returns an engine classifier extended with the engines section.
func (s *Settings) Classifier() *dialect.Classifier {
	var opts []dialect.ClassifierOption
	if s != nil {
		for name, engines := range s.Engines {
			// Validated by Parse.
			class, _ := dialect.ParseClass(name)
			opts = append(opts, dialect.WithEngines(class, engines...))
		}
	}
	return dialect.NewClassifier(opts...)
}
