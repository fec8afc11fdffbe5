// Package config loads the ambient, non-SQL half of a configuration:
// named environments (driver tag, DSN, pool tuning) and free-form
// settings, from either an XML file (grounded on the teacher's
// configuration.go/parser.go streaming encoding/xml.Decoder) or YAML
// (new, via gopkg.in/yaml.v3). Mapping files carrying the SQL templates
// themselves are parsed separately by the template package and are
// unaffected by which loader produced the surrounding Configuration.
package config

import (
	"errors"
	"fmt"
	"iter"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Environment is one named connection target: its DSN, driver tag, and
// pool tuning knobs.
type Environment struct {
	ID                   string
	DataSource           string
	Driver               string
	MaxIdleConnNum       int
	MaxOpenConnNum       int
	MaxConnLifetime      int
	MaxIdleConnLifetime  int
}

// Environments is the parsed <environments> block: a default environment
// id plus the named environments themselves.
type Environments struct {
	Default string
	envs    map[string]*Environment
}

// Use returns the environment registered under id, or an error if none
// is registered.
func (e *Environments) Use(id string) (*Environment, error) {
	if e == nil {
		return nil, fmt.Errorf("config: no environments configured")
	}
	env, ok := e.envs[id]
	if !ok {
		return nil, fmt.Errorf("config: environment %s not found", id)
	}
	return env, nil
}

// Iter ranges over every configured environment in no particular order.
func (e *Environments) Iter() iter.Seq[*Environment] {
	return func(yield func(*Environment) bool) {
		if e == nil {
			return
		}
		for _, env := range e.envs {
			if !yield(env) {
				return
			}
		}
	}
}

func (e *Environments) add(env *Environment) error {
	if env.ID == "" {
		return errors.New("config: environment id is required")
	}
	if e.envs == nil {
		e.envs = make(map[string]*Environment)
	}
	if _, exists := e.envs[env.ID]; exists {
		return fmt.Errorf("config: duplicate environment id: %s", env.ID)
	}
	e.envs[env.ID] = env
	return nil
}

// EnvValueProvider resolves a string that may reference external
// environment variables (e.g. "${HOST}:5432") into its substituted
// form, for use in datasource strings that shouldn't hardcode secrets.
type EnvValueProvider interface {
	Get(template string) (string, error)
}

// EnvValueProviderFunc adapts a function to EnvValueProvider.
type EnvValueProviderFunc func(template string) (string, error)

func (f EnvValueProviderFunc) Get(template string) (string, error) { return f(template) }

// OsEnvValueProvider substitutes ${VAR} references against os.Getenv,
// returning an error alongside the best-effort substitution (missing
// variables become empty string) so callers can choose to fail loudly
// or proceed.
type OsEnvValueProvider struct{}

func (OsEnvValueProvider) Get(s string) (string, error) {
	var missing []string
	out := substituteEnv(s, func(name string) string {
		v, ok := os.LookupEnv(name)
		if !ok {
			missing = append(missing, name)
		}
		return v
	})
	if len(missing) > 0 {
		return out, fmt.Errorf("config: missing environment variable(s): %s", strings.Join(missing, ", "))
	}
	return out, nil
}

func substituteEnv(s string, lookup func(string) string) string {
	var b strings.Builder
	for {
		start := strings.Index(s, "${")
		if start < 0 {
			b.WriteString(s)
			break
		}
		end := strings.Index(s[start:], "}")
		if end < 0 {
			b.WriteString(s)
			break
		}
		end += start
		b.WriteString(s[:start])
		b.WriteString(lookup(s[start+2 : end]))
		s = s[end+1:]
	}
	return b.String()
}

var (
	envProvidersMu sync.RWMutex
	envProviders   = map[string]EnvValueProvider{
		"os": OsEnvValueProvider{},
	}
)

// RegisterEnvValueProvider registers a named EnvValueProvider for later
// lookup via GetEnvValueProvider. Panics if name is empty.
func RegisterEnvValueProvider(name string, provider EnvValueProvider) {
	if name == "" {
		panic("config: env value provider name cannot be empty")
	}
	envProvidersMu.Lock()
	defer envProvidersMu.Unlock()
	envProviders[name] = provider
}

// GetEnvValueProvider returns the provider registered under name, or
// OsEnvValueProvider if none was registered.
func GetEnvValueProvider(name string) EnvValueProvider {
	envProvidersMu.RLock()
	defer envProvidersMu.RUnlock()
	if p, ok := envProviders[name]; ok {
		return p
	}
	return OsEnvValueProvider{}
}

func parseIntField(name, s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s %q: %w", name, s, err)
	}
	return n, nil
}
