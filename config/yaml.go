package config

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sqlcraft/sqlcraft/template"
	"gopkg.in/yaml.v3"
)

// yamlDocument is the on-disk shape for LoadYAML: the same environments
// and settings an XML file would carry, plus a list of SQL mapping-file
// paths to parse with the tag/indent front-ends (those files stay XML —
// only the environment/settings document format changes).
type yamlDocument struct {
	Environments struct {
		Default string `yaml:"default"`
		Env      map[string]struct {
			DataSource          string `yaml:"dataSource"`
			Driver              string `yaml:"driver"`
			MaxIdleConnNum      int    `yaml:"maxIdleConnNum"`
			MaxOpenConnNum      int    `yaml:"maxOpenConnNum"`
			MaxConnLifetime     int    `yaml:"maxConnLifetime"`
			MaxIdleConnLifetime int    `yaml:"maxIdleConnLifetime"`
		} `yaml:"env"`
	} `yaml:"environments"`
	Settings map[string]string `yaml:"settings"`
	Mappers  []string          `yaml:"mappers"`
}

// LoadYAML parses a YAML configuration file from the local filesystem,
// producing the same *Configuration shape as LoadXML.
func LoadYAML(path string) (*Configuration, error) {
	dir := filepath.Dir(path)
	name := filepath.Base(path)
	return LoadYAMLFS(os.DirFS(dir), name)
}

// LoadYAMLFS parses a YAML configuration file out of fsys.
func LoadYAMLFS(fsys fs.FS, name string) (*Configuration, error) {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	var doc yamlDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	envs := &Environments{Default: doc.Environments.Default}
	for id, e := range doc.Environments.Env {
		env := &Environment{
			ID:                  id,
			DataSource:          e.DataSource,
			Driver:              e.Driver,
			MaxIdleConnNum:      e.MaxIdleConnNum,
			MaxOpenConnNum:      e.MaxOpenConnNum,
			MaxConnLifetime:     e.MaxConnLifetime,
			MaxIdleConnLifetime: e.MaxIdleConnLifetime,
		}
		if err := envs.add(env); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	settings := make(keyValueSettingProvider, len(doc.Settings))
	for k, v := range doc.Settings {
		settings[k] = v
	}

	mappers := template.NewMappers()
	for _, resource := range doc.Mappers {
		if err := loadMapperResource(fsys, mappers, resource); err != nil {
			return nil, err
		}
	}
	if err := mappers.Link(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return &Configuration{Environments: envs, Settings: settings, Mappers: mappers}, nil
}
