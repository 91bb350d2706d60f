package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"git.fractalqb.de/fractalqb/testerr"
)

const testSettings = `
rootProject: skins
version: 1.2.3
include: [mappings:shared, alpha]
projects:
  ":mappings:shared":
    conventions: [java]
  ":alpha":
    conventions: [mapping-logic]
toolchains:
  - home: /opt/jdk17
    version: "17"
remapper:
  tool: [cp]
`

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	testerr.Shall(os.WriteFile(path, []byte(content), 0644)).BeNil(t)
	return path
}

func TestRun_tasks(t *testing.T) {
	path := writeSettings(t, testSettings)
	var out, errOut strings.Builder
	testerr.Shall(run(context.Background(), []string{"--settings", path, "--tasks"}, &out, &errOut)).BeNil(t)
	for _, task := range []string{":alpha:remap", ":alpha:jar", ":alpha:build", ":mappings:shared:jar"} {
		if !strings.Contains(out.String(), task+"\t") {
			t.Errorf("task %s not listed:\n%s", task, out.String())
		}
	}
}

func TestRun_dot(t *testing.T) {
	path := writeSettings(t, testSettings)
	var out, errOut strings.Builder
	testerr.Shall(run(context.Background(), []string{"--settings", path, "--dot"}, &out, &errOut)).BeNil(t)
	if !strings.HasPrefix(out.String(), `digraph "skins" {`) {
		t.Errorf("unexpected dot output:\n%s", out.String())
	}
}

func TestRun_buildAndOutgoing(t *testing.T) {
	path := writeSettings(t, testSettings)
	dir := filepath.Dir(path)
	var out, errOut strings.Builder
	testerr.Shall(run(context.Background(), []string{"--settings", path, "-n"}, &out, &errOut)).BeNil(t)
	remapped := filepath.Join(dir, "alpha", "build", "libs", "alpha-1.2.3-remapped.jar")
	if _, err := os.Stat(remapped); !os.IsNotExist(err) {
		t.Fatalf("dry run produced %s", remapped)
	}

	testerr.Shall(run(context.Background(), []string{"--settings", path, "--trace", "info", ":alpha:build"}, &out, &errOut)).BeNil(t)
	testerr.Shall1(os.Stat(remapped)).BeNil(t)

	out.Reset()
	testerr.Shall(run(context.Background(), []string{"--settings", path, "--outgoing"}, &out, &errOut)).BeNil(t)
	var line string
	for _, l := range strings.Split(out.String(), "\n") {
		if strings.HasPrefix(l, ":alpha:remapped\t") {
			line = l
		}
	}
	fields := strings.Split(line, "\t")
	if len(fields) != 3 || fields[1] != remapped || len(fields[2]) != 64 {
		t.Errorf("outgoing line %q", line)
	}

	testerr.Shall(run(context.Background(), []string{"--settings", path, "--clean"}, &out, &errOut)).BeNil(t)
	if _, err := os.Stat(remapped); !os.IsNotExist(err) {
		t.Errorf("clean left %s", remapped)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	testerr.Shall(loadDotEnv(filepath.Join(dir, ".env"))).BeNil(t)

	bad := filepath.Join(dir, "bad.env")
	testerr.Shall(os.WriteFile(bad, []byte("BAD-KEY=1\n"), 0644)).BeNil(t)
	if err := loadDotEnv(bad); err == nil || !strings.Contains(err.Error(), "loading env file") {
		t.Errorf("malformed env file not reported: %v", err)
	}
}

func TestRun_configError(t *testing.T) {
	path := writeSettings(t, "include: [alpha]\nprojects:\n  ':alpha': {conventions: [mapping-logic]}\n")
	var out, errOut strings.Builder
	err := run(context.Background(), []string{"--settings", path}, &out, &errOut)
	if err == nil || !strings.Contains(err.Error(), ":mappings:shared") {
		t.Errorf("unexpected error %v", err)
	}
}
