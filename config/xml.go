package config

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/sqlcraft/sqlcraft/template"
)

// Configuration ties environments, settings, and the compiled mapping
// registry together — the result of either LoadXML or LoadYAML.
type Configuration struct {
	Environments *Environments
	Settings     SettingProvider
	Mappers      *template.Mappers
}

// LoadXML parses an XML configuration file from the local filesystem.
// path's directory becomes the base for any relative <mapper resource="...">
// references.
func LoadXML(path string) (*Configuration, error) {
	dir := filepath.Dir(path)
	name := filepath.Base(path)
	return LoadXMLFS(os.DirFS(dir), name)
}

// LoadXMLFS parses an XML configuration file out of fsys, resolving
// relative mapper resource paths against fsys too.
func LoadXMLFS(fsys fs.FS, name string) (*Configuration, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	cfg := &Configuration{Mappers: template.NewMappers()}
	decoder := xml.NewDecoder(f)
	for {
		tok, err := decoder.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("config: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "environments":
			envs, err := parseEnvironmentsXML(decoder, start)
			if err != nil {
				return nil, err
			}
			cfg.Environments = envs
		case "settings":
			settings, err := parseSettingsXML(decoder)
			if err != nil {
				return nil, err
			}
			cfg.Settings = settings
		case "mappers":
			if err := parseMappersXML(fsys, cfg.Mappers, decoder, start); err != nil {
				return nil, err
			}
		}
	}
	if err := cfg.Mappers.Link(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func attrValue(start xml.StartElement, name string) string {
	for _, a := range start.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func parseEnvironmentsXML(decoder *xml.Decoder, start xml.StartElement) (*Environments, error) {
	envs := &Environments{Default: attrValue(start, "default")}
	for {
		tok, err := decoder.Token()
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "environment" {
				continue
			}
			env, err := parseEnvironmentXML(decoder, t)
			if err != nil {
				return nil, err
			}
			if err := envs.add(env); err != nil {
				return nil, err
			}
		case xml.EndElement:
			if t.Name.Local == "environments" {
				return envs, nil
			}
		}
	}
}

func parseEnvironmentXML(decoder *xml.Decoder, start xml.StartElement) (*Environment, error) {
	env := &Environment{ID: attrValue(start, "id")}
	if env.ID == "" {
		return nil, errors.New("config: environment id is required")
	}
	for {
		tok, err := decoder.Token()
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var text string
			if err := decoder.DecodeElement(&text, &t); err != nil {
				return nil, fmt.Errorf("config: %w", err)
			}
			switch t.Name.Local {
			case "dataSource":
				env.DataSource = text
			case "driver":
				env.Driver = text
			case "maxIdleConnNum":
				if env.MaxIdleConnNum, err = parseIntField(t.Name.Local, text); err != nil {
					return nil, err
				}
			case "maxOpenConnNum":
				if env.MaxOpenConnNum, err = parseIntField(t.Name.Local, text); err != nil {
					return nil, err
				}
			case "maxConnLifetime":
				if env.MaxConnLifetime, err = parseIntField(t.Name.Local, text); err != nil {
					return nil, err
				}
			case "maxIdleConnLifetime":
				if env.MaxIdleConnLifetime, err = parseIntField(t.Name.Local, text); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			if t.Name.Local == "environment" {
				return env, nil
			}
		}
	}
}

func parseSettingsXML(decoder *xml.Decoder) (keyValueSettingProvider, error) {
	settings := make(keyValueSettingProvider)
	for {
		tok, err := decoder.Token()
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "setting" {
				continue
			}
			var item settingItem
			if err := decoder.DecodeElement(&item, &t); err != nil {
				return nil, fmt.Errorf("config: %w", err)
			}
			if _, ok := settings[item.Name]; ok {
				return nil, fmt.Errorf("config: duplicate setting name: %s", item.Name)
			}
			settings[item.Name] = item.Value
		case xml.EndElement:
			if t.Name.Local == "settings" {
				return settings, nil
			}
		}
	}
}

func parseMappersXML(fsys fs.FS, mappers *template.Mappers, decoder *xml.Decoder, start xml.StartElement) error {
	if pattern := attrValue(start, "pattern"); pattern != "" {
		matches, err := fs.Glob(fsys, pattern)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		for _, m := range matches {
			if err := loadMapperResource(fsys, mappers, m); err != nil {
				return err
			}
		}
	}
	for {
		tok, err := decoder.Token()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "mapper" {
				continue
			}
			resource := attrValue(t, "resource")
			if resource == "" {
				return errors.New("config: mapper element requires a resource attribute")
			}
			if err := loadMapperResource(fsys, mappers, resource); err != nil {
				return err
			}
		case xml.EndElement:
			if t.Name.Local == "mappers" {
				return nil
			}
		}
	}
}

func loadMapperResource(fsys fs.FS, mappers *template.Mappers, resource string) error {
	f, err := fsys.Open(path.Clean(resource))
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	defer f.Close()
	mapper, err := template.ParseXML(mappers, f)
	if err != nil {
		return fmt.Errorf("config: parsing mapper %s: %w", resource, err)
	}
	return mappers.Add(mapper)
}
