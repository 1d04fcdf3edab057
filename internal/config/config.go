// Package config resolves generator settings from defaults, an optional
// config file, the environment and command-line overrides. It is only used
// at the process boundary; the generator receives plain option values.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/swagger2client/internal/emitter"
)

// EnvPrefix prefixes every environment variable read by FromEnv.
const EnvPrefix = "SWAGGER2CLIENT_"

// Config is a fully resolved configuration.
type Config struct {
	Spec   string
	Output string
	// Paths maps a kind name to its output sub-directory.
	Paths map[string]string
	// Templates maps a template id to the file holding its replacement.
	Templates map[string]string

	EnumAsUnion   bool
	UseReactQuery bool
	GenerateForms bool
	GenerateLists bool
	FixtureCount  int
	MockSeedCount int
	ListColumns   int
	Port          int

	IncludeTags  []string
	ExcludeTags  []string
	Methods      []string
	PathPatterns []string

	DryRun  bool
	Verbose bool
}

// Default returns the built-in configuration.
func Default() Config {
	d := emitter.DefaultOptions()
	paths := make(map[string]string, len(emitter.AllKinds))
	for _, k := range emitter.AllKinds {
		paths[string(k)] = string(k)
	}
	return Config{
		Output:        ".",
		Paths:         paths,
		EnumAsUnion:   d.EnumAsUnion,
		UseReactQuery: d.UseReactQuery,
		GenerateForms: d.GenerateForms,
		GenerateLists: d.GenerateLists,
		FixtureCount:  d.FixtureCount,
		MockSeedCount: d.MockSeedCount,
		ListColumns:   d.ListColumns,
		Port:          d.MockPort,
	}
}

// Override holds user-supplied values. Nil fields leave the base value
// untouched; map entries replace the base entry of the same key.
type Override struct {
	Spec      *string           `yaml:"spec" env:"SPEC"`
	Output    *string           `yaml:"output" env:"OUTPUT"`
	Paths     map[string]string `yaml:"paths" env:"PATHS"`
	Templates map[string]string `yaml:"templates" env:"TEMPLATES"`

	EnumAsUnion   *bool `yaml:"enumAsUnion" env:"ENUM_AS_UNION"`
	UseReactQuery *bool `yaml:"useReactQuery" env:"USE_REACT_QUERY"`
	GenerateForms *bool `yaml:"generateForms" env:"GENERATE_FORMS"`
	GenerateLists *bool `yaml:"generateLists" env:"GENERATE_LISTS"`
	FixtureCount  *int  `yaml:"fixtureCount" env:"FIXTURE_COUNT"`
	MockSeedCount *int  `yaml:"mockSeedCount" env:"MOCK_SEED_COUNT"`
	ListColumns   *int  `yaml:"listColumns" env:"LIST_COLUMNS"`
	Port          *int  `yaml:"port" env:"PORT"`

	IncludeTags  []string `yaml:"includeTags" env:"INCLUDE_TAGS"`
	ExcludeTags  []string `yaml:"excludeTags" env:"EXCLUDE_TAGS"`
	Methods      []string `yaml:"methods" env:"METHODS"`
	PathPatterns []string `yaml:"pathPatterns" env:"PATH_PATTERNS"`

	DryRun  *bool `yaml:"dryRun" env:"DRY_RUN"`
	Verbose *bool `yaml:"verbose" env:"VERBOSE"`
}

// Merge applies o on top of base. base is not modified.
func Merge(base Config, o Override) Config {
	out := base
	out.Paths = mergeMap(base.Paths, o.Paths)
	out.Templates = mergeMap(base.Templates, o.Templates)
	set(&out.Spec, o.Spec)
	set(&out.Output, o.Output)
	set(&out.EnumAsUnion, o.EnumAsUnion)
	set(&out.UseReactQuery, o.UseReactQuery)
	set(&out.GenerateForms, o.GenerateForms)
	set(&out.GenerateLists, o.GenerateLists)
	set(&out.FixtureCount, o.FixtureCount)
	set(&out.MockSeedCount, o.MockSeedCount)
	set(&out.ListColumns, o.ListColumns)
	set(&out.Port, o.Port)
	set(&out.DryRun, o.DryRun)
	set(&out.Verbose, o.Verbose)
	if o.IncludeTags != nil {
		out.IncludeTags = append([]string(nil), o.IncludeTags...)
	}
	if o.ExcludeTags != nil {
		out.ExcludeTags = append([]string(nil), o.ExcludeTags...)
	}
	if o.Methods != nil {
		out.Methods = append([]string(nil), o.Methods...)
	}
	if o.PathPatterns != nil {
		out.PathPatterns = append([]string(nil), o.PathPatterns...)
	}
	return out
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func mergeMap(base, over map[string]string) map[string]string {
	if base == nil && over == nil {
		return nil
	}
	out := make(map[string]string, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}

// LoadFile reads a YAML or JSON config file. Unknown keys are an error.
func LoadFile(path string) (Override, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Override{}, fmt.Errorf("read config file %q: %w", path, err)
	}
	o, err := Parse(data)
	if err != nil {
		return Override{}, fmt.Errorf("parse config file %q: %w", path, err)
	}
	return o, nil
}

// Parse decodes config file content. Empty input yields an empty Override.
func Parse(data []byte) (Override, error) {
	var o Override
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&o); err != nil && !errors.Is(err, io.EOF) {
		return Override{}, err
	}
	return o, nil
}

// FromEnv reads SWAGGER2CLIENT_* variables. A nil environ reads the
// process environment.
func FromEnv(environ map[string]string) (Override, error) {
	var o Override
	if err := env.ParseWithOptions(&o, env.Options{Prefix: EnvPrefix, Environment: environ}); err != nil {
		return Override{}, fmt.Errorf("read environment: %w", err)
	}
	return o, nil
}

// Validate reports values the generator cannot work with.
func (c Config) Validate() error {
	var errs []error
	for name := range c.Paths {
		if _, ok := emitter.ParseKind(name); !ok {
			errs = append(errs, fmt.Errorf("paths: unknown kind %q", name))
		}
	}
	for _, m := range c.Methods {
		switch strings.ToUpper(strings.TrimSpace(m)) {
		case "GET", "POST", "PUT", "PATCH", "DELETE":
		default:
			errs = append(errs, fmt.Errorf("methods: unsupported method %q", m))
		}
	}
	if c.FixtureCount < 1 {
		errs = append(errs, fmt.Errorf("fixtureCount must be at least 1, got %d", c.FixtureCount))
	}
	if c.MockSeedCount < 0 {
		errs = append(errs, fmt.Errorf("mockSeedCount must not be negative, got %d", c.MockSeedCount))
	}
	if c.ListColumns < 1 {
		errs = append(errs, fmt.Errorf("listColumns must be at least 1, got %d", c.ListColumns))
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d is out of range", c.Port))
	}
	if overlap := intersect(c.IncludeTags, c.ExcludeTags); len(overlap) > 0 {
		errs = append(errs, fmt.Errorf("include/exclude tags overlap: %s", strings.Join(overlap, ", ")))
	}
	return errors.Join(errs...)
}

func intersect(a, b []string) []string {
	in := make(map[string]bool, len(a))
	for _, s := range a {
		in[s] = true
	}
	var out []string
	for _, s := range b {
		if in[s] {
			out = append(out, s)
		}
	}
	return out
}

// EmitterOptions converts c to the options the emitters take.
func (c Config) EmitterOptions() emitter.Options {
	paths := make(map[emitter.Kind]string, len(c.Paths))
	for name, p := range c.Paths {
		if k, ok := emitter.ParseKind(name); ok {
			paths[k] = p
		}
	}
	return emitter.Options{
		Paths:         paths,
		EnumAsUnion:   c.EnumAsUnion,
		UseReactQuery: c.UseReactQuery,
		GenerateForms: c.GenerateForms,
		GenerateLists: c.GenerateLists,
		FixtureCount:  c.FixtureCount,
		MockSeedCount: c.MockSeedCount,
		ListColumns:   c.ListColumns,
		MockPort:      c.Port,
	}
}

// TemplateSources reads every configured template override file.
func (c Config) TemplateSources() (map[string]string, error) {
	if len(c.Templates) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(c.Templates))
	for id := range c.Templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		src, err := os.ReadFile(c.Templates[id])
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", id, err)
		}
		out[id] = string(src)
	}
	return out, nil
}
