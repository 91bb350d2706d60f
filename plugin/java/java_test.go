package java

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"git.fractalqb.de/fractalqb/mkconv/internal/mktest"
	"git.fractalqb.de/fractalqb/mkconv/mkore"
	"git.fractalqb.de/fractalqb/testerr"
	"github.com/Masterminds/semver/v3"
	"github.com/klauspost/compress/zip"
)

func TestApply_model(t *testing.T) {
	b := mkore.NewBuild("/src", "root")
	prj := testerr.Shall1(b.Include(":alpha")).BeNil(t)
	prj.Version = "1.2.3"
	x := testerr.Shall1(Apply(prj)).BeNil(t)

	if want := filepath.Join("/src", "alpha", "build", "libs", "alpha-1.2.3.jar"); x.JarPath() != want {
		t.Errorf("jar path %s", x.JarPath())
	}
	if x.CompileClasspath.CanBeConsumed || !x.CompileClasspath.CanBeResolved {
		t.Error("compileClasspath must be resolvable only")
	}
	if !slices.Equal(x.CompileClasspath.Extends(), []*mkore.Configuration{x.Implementation, x.CompileOnly}) {
		t.Error("compileClasspath extends wrong configurations")
	}
	if x.Default.CanBeResolved || !x.Default.CanBeConsumed {
		t.Error("default must be consumable only")
	}
	if out := x.Default.Outgoing(); len(out) != 1 || out[0].Path() != x.JarPath() {
		t.Errorf("default artifacts %v", out)
	}
	assemble := testerr.Shall1(prj.Task("assemble")).BeNil(t)
	if !assemble.DependsOnTask(Jar) {
		t.Error("assemble does not depend on jar")
	}
	if !x.Jar.DependsOnTask(Classes) {
		t.Error("jar does not depend on classes")
	}
}

func TestSetLanguageVersion(t *testing.T) {
	b := mkore.NewBuild("/src", "root")
	b.Toolchains.Add(mkore.Installation{Home: "/jdk17", Version: semver.MustParse("17.0.9")})
	x := testerr.Shall1(Apply(b.Root())).BeNil(t)
	testerr.Shall(x.SetLanguageVersion(17)).BeNil(t)
	if x.LanguageVersion() != 17 {
		t.Errorf("language version %d", x.LanguageVersion())
	}
	inst := testerr.Shall1(x.Installation()).BeNil(t)
	if inst.Home != "/jdk17" {
		t.Errorf("installation %s", inst)
	}
	err := x.SetLanguageVersion(21)
	if !errors.Is(err, &mkore.ConfigError{Kind: mkore.ToolchainUnavailable, Project: ":"}) {
		t.Errorf("unexpected error %v", err)
	}
	if x.LanguageVersion() != 17 {
		t.Error("failed provisioning changed the toolchain")
	}
}

func TestJar_withoutSources(t *testing.T) {
	dir := t.TempDir()
	res := filepath.Join(dir, "src", "main", "resources", "logic.properties")
	testerr.Shall(os.MkdirAll(filepath.Dir(res), 0777)).BeNil(t)
	testerr.Shall(os.WriteFile(res, []byte("a=b"), 0644)).BeNil(t)

	prj := mkore.NewBuild(dir, "alpha").Root()
	x := testerr.Shall1(Apply(prj)).BeNil(t)
	testerr.Shall1(mktest.Run(t, x.Jar)).BeNil(t)

	zr := testerr.Shall1(zip.OpenReader(x.JarPath())).BeNil(t)
	defer zr.Close()
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	if !slices.Contains(names, "logic.properties") {
		t.Errorf("jar entries %v", names)
	}
}

func TestLookup(t *testing.T) {
	prj := mkore.NewBuild("/src", "root").Root()
	_, err := Lookup(prj)
	if !errors.Is(err, &mkore.ConfigError{Kind: mkore.MissingTask, Entity: Jar}) {
		t.Errorf("unexpected error %v", err)
	}
}
