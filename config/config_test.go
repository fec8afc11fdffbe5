package config

import (
	"testing"
	"testing/fstest"
)

const xmlConfig = `<?xml version="1.0"?>
<configuration>
  <environments default="dev">
    <environment id="dev">
      <dataSource>postgres://localhost/dev</dataSource>
      <driver>postgres</driver>
      <maxOpenConnNum>10</maxOpenConnNum>
    </environment>
  </environments>
  <settings>
    <setting name="debug" value="true"/>
  </settings>
  <mappers>
    <mapper resource="user.xml"/>
  </mappers>
</configuration>`

const xmlMapper = `<mapper namespace="user">
  <select id="find">select id, name from user where id = #{id}</select>
</mapper>`

func TestLoadXMLFSParsesEnvironmentsSettingsAndMappers(t *testing.T) {
	fsys := fstest.MapFS{
		"app.xml":  {Data: []byte(xmlConfig)},
		"user.xml": {Data: []byte(xmlMapper)},
	}
	cfg, err := LoadXMLFS(fsys, "app.xml")
	if err != nil {
		t.Fatalf("LoadXMLFS: %v", err)
	}

	env, err := cfg.Environments.Use("dev")
	if err != nil {
		t.Fatalf("Use: %v", err)
	}
	if env.DataSource != "postgres://localhost/dev" || env.MaxOpenConnNum != 10 {
		t.Fatalf("got %+v", env)
	}

	if !cfg.Settings.Get("debug").Bool() {
		t.Fatalf("expected debug setting true")
	}

	stmt, err := cfg.Mappers.StatementByID("user.find")
	if err != nil {
		t.Fatalf("StatementByID: %v", err)
	}
	if stmt.ID() == "" {
		t.Fatalf("expected non-empty statement id")
	}
}

func TestLoadXMLFSMissingEnvironmentErrors(t *testing.T) {
	fsys := fstest.MapFS{
		"app.xml": {Data: []byte(xmlConfig)},
		"user.xml": {Data: []byte(xmlMapper)},
	}
	cfg, err := LoadXMLFS(fsys, "app.xml")
	if err != nil {
		t.Fatalf("LoadXMLFS: %v", err)
	}
	if _, err := cfg.Environments.Use("missing"); err == nil {
		t.Fatalf("expected error for missing environment")
	}
}

const yamlConfig = `
environments:
  default: dev
  env:
    dev:
      dataSource: "postgres://localhost/dev"
      driver: postgres
      maxOpenConnNum: 5
settings:
  debug: "true"
mappers:
  - user.xml
`

func TestLoadYAMLFSParsesEnvironmentsSettingsAndMappers(t *testing.T) {
	fsys := fstest.MapFS{
		"app.yaml": {Data: []byte(yamlConfig)},
		"user.xml": {Data: []byte(xmlMapper)},
	}
	cfg, err := LoadYAMLFS(fsys, "app.yaml")
	if err != nil {
		t.Fatalf("LoadYAMLFS: %v", err)
	}
	env, err := cfg.Environments.Use("dev")
	if err != nil {
		t.Fatalf("Use: %v", err)
	}
	if env.MaxOpenConnNum != 5 {
		t.Fatalf("got %+v", env)
	}
	if !cfg.Settings.Get("debug").Bool() {
		t.Fatalf("expected debug setting true")
	}
	if _, err := cfg.Mappers.StatementByID("user.find"); err != nil {
		t.Fatalf("StatementByID: %v", err)
	}
}

func TestOsEnvValueProviderSubstitutesAndReportsMissing(t *testing.T) {
	t.Setenv("CONFIG_TEST_VAR", "present")
	got, err := (OsEnvValueProvider{}).Get("${CONFIG_TEST_VAR}/x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "present/x" {
		t.Fatalf("got %q", got)
	}

	got, err = (OsEnvValueProvider{}).Get("${CONFIG_TEST_MISSING_VAR}/x")
	if err == nil {
		t.Fatalf("expected error for missing var")
	}
	if got != "/x" {
		t.Fatalf("got %q", got)
	}
}

func TestRegisterEnvValueProviderPanicsOnEmptyName(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	RegisterEnvValueProvider("", EnvValueProviderFunc(func(s string) (string, error) { return s, nil }))
}
