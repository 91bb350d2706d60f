package mkconv

import (
	"errors"
	"os"
	"slices"
	"testing"

	"git.fractalqb.de/fractalqb/mkconv/internal/mktest"
	"git.fractalqb.de/fractalqb/mkconv/mkore"
	"git.fractalqb.de/fractalqb/mkconv/plugin/coredeps"
	"git.fractalqb.de/fractalqb/mkconv/plugin/java"
	"git.fractalqb.de/fractalqb/mkconv/plugin/license"
	"git.fractalqb.de/fractalqb/testerr"
	"github.com/Masterminds/semver/v3"
)

// testBuild has the projects :mappings:shared and :alpha (version 1.2.3) and
// knows a JDK 17.
func testBuild(t *testing.T, dir string, withMappings bool) (*Build, *Project) {
	t.Helper()
	b := NewBuild(dir, "root")
	b.Toolchains.Add(mkore.Installation{
		Home:    "/opt/jdk17",
		Version: semver.MustParse("17.0.9"),
	})
	if withMappings {
		shared := testerr.Shall1(b.Include(MappingsProject)).BeNil(t)
		testerr.Shall1(java.Apply(shared)).BeNil(t)
	}
	alpha := testerr.Shall1(b.Include(":alpha")).BeNil(t)
	alpha.Version = "1.2.3"
	return b, alpha
}

func TestMappingLogic_happyPath(t *testing.T) {
	_, alpha := testBuild(t, "/src", true)
	alpha.BuildDir = "/tmp/b"
	rmd := testerr.Shall1(ApplyMappingLogic(alpha)).BeNil(t)

	remap := testerr.Shall1(alpha.Task("remap")).BeNil(t)
	if remap != rmd.Remap.Task() {
		t.Error("typed handle is not the remap task")
	}
	if c := rmd.Remap.ArchiveClassifier; c != "remapped" {
		t.Errorf("classifier '%s'", c)
	}
	if !remap.DependsOnTask("jar") {
		t.Error("no edge remap -> jar")
	}
	build := testerr.Shall1(alpha.Task("build")).BeNil(t)
	if !build.DependsOnTask("remap") {
		t.Error("no edge build -> remap")
	}

	impl := testerr.Shall1(alpha.Configuration(java.Implementation)).BeNil(t)
	var pdeps []*mkore.ProjectDependency
	for _, d := range impl.Dependencies() {
		if pd, ok := d.(*mkore.ProjectDependency); ok {
			pdeps = append(pdeps, pd)
		}
	}
	if len(pdeps) != 1 || pdeps[0].Project.Path() != MappingsProject {
		t.Errorf("implementation dependencies %v", impl.Dependencies())
	}

	if lv := rmd.Java.LanguageVersion(); lv != 17 {
		t.Errorf("language version %d", lv)
	}

	cfg := testerr.Shall1(alpha.Configuration("remapped")).BeNil(t)
	if !cfg.CanBeConsumed || cfg.CanBeResolved {
		t.Error("remapped must be consumable and not resolvable")
	}
	out := cfg.Outgoing()
	if len(out) != 1 {
		t.Fatalf("%d outgoing artifacts", len(out))
	}
	const want = "/tmp/b/libs/alpha-1.2.3-remapped.jar"
	if p := out[0].Path(); p != want {
		t.Errorf("artifact path %s", p)
	}
	if p := rmd.Remap.ArchivePath(); p != want {
		t.Errorf("remap writes %s", p)
	}
	builders := testerr.Shall1(out[0].BuildDependencies()).BeNil(t)
	if !slices.Equal(builders, []*mkore.Task{remap}) {
		t.Errorf("artifact built by %v", builders)
	}
	bdeps := testerr.Shall1(cfg.BuildDependencies()).BeNil(t)
	if !slices.Equal(bdeps, []*mkore.Task{remap}) {
		t.Errorf("configuration built by %v", bdeps)
	}
	for _, id := range []string{java.ID, license.ID, coredeps.ID, "remapper", MappingLogicID} {
		if !alpha.HasPlugin(id) {
			t.Errorf("plugin %s not applied", id)
		}
	}
}

func TestMappingLogic_idempotent(t *testing.T) {
	_, alpha := testBuild(t, "/src", true)
	r1 := testerr.Shall1(ApplyMappingLogic(alpha)).BeNil(t)
	r2 := testerr.Shall1(ApplyMappingLogic(alpha)).BeNil(t)
	if r1 != r2 {
		t.Error("second application returned a new result")
	}
	impl := testerr.Shall1(alpha.Configuration(java.Implementation)).BeNil(t)
	if n := len(impl.Dependencies()); n != 1 {
		t.Errorf("%d implementation dependencies after second application", n)
	}
	if n := len(r1.Configuration.Outgoing()); n != 1 {
		t.Errorf("%d outgoing artifacts after second application", n)
	}
}

func TestMappingLogic_missingRemapper(t *testing.T) {
	_, alpha := testBuild(t, "/src", true)
	ml := DefaultMappingLogic
	ml.Remapper = nil
	_, err := ml.Apply(alpha)
	if !errors.Is(err, &mkore.ConfigError{Kind: mkore.MissingTask, Entity: "remap"}) {
		t.Fatalf("unexpected error %v", err)
	}
	if alpha.HasPlugin(MappingLogicID) {
		t.Error("failed convention is marked as applied")
	}
}

func TestMappingLogic_noConventions(t *testing.T) {
	_, alpha := testBuild(t, "/src", true)
	_, err := MappingLogic{}.Apply(alpha)
	if !errors.Is(err, mkore.ErrMissingTask) {
		t.Fatalf("unexpected error %v", err)
	}
	if _, err := alpha.Task("jar"); err == nil {
		t.Error("conventions were applied without hooks")
	}
}

func TestMappingLogic_missingMappings(t *testing.T) {
	_, alpha := testBuild(t, "/src", false)
	_, err := ApplyMappingLogic(alpha)
	if !errors.Is(err, &mkore.ConfigError{Kind: mkore.MissingProject, Entity: MappingsProject}) {
		t.Fatalf("unexpected error %v", err)
	}
	testerr.Shall1(ApplyMappingLogic(alpha)).Check(t, testerr.Msg(
		"project ':alpha': project ':mappings:shared' not found in build",
	))
}

func TestMappingLogic_noToolchain(t *testing.T) {
	b := NewBuild("/src", "root")
	testerr.Shall1(b.Include(MappingsProject)).BeNil(t)
	alpha := testerr.Shall1(b.Include(":alpha")).BeNil(t)
	_, err := ApplyMappingLogic(alpha)
	if !errors.Is(err, &mkore.ConfigError{Kind: mkore.ToolchainUnavailable, Project: ":alpha"}) {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestMappingLogic_duplicateConfiguration(t *testing.T) {
	_, alpha := testBuild(t, "/src", true)
	testerr.Shall1(alpha.NewConfiguration(RemappedConfiguration)).BeNil(t)
	_, err := ApplyMappingLogic(alpha)
	if !errors.Is(err, &mkore.ConfigError{Kind: mkore.Duplicate, Entity: RemappedConfiguration}) {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestMappingLogic_consumer(t *testing.T) {
	b, alpha := testBuild(t, "/src", true)
	alpha.BuildDir = "/tmp/b"
	testerr.Shall1(ApplyMappingLogic(alpha)).BeNil(t)

	beta := testerr.Shall1(b.Include(":beta")).BeNil(t)
	bx := testerr.Shall1(java.Apply(beta)).BeNil(t)
	bx.Implementation.Add(testerr.Shall1(beta.ProjectDependency(":alpha", RemappedConfiguration)).BeNil(t))

	res := testerr.Shall1(bx.CompileClasspath.Resolve()).BeNil(t)
	if !slices.Equal(res.Files, []string{"/tmp/b/libs/alpha-1.2.3-remapped.jar"}) {
		t.Errorf("consumer sees %v", res.Files)
	}

	bd := testerr.Shall1(mkore.NewBuilder(mktest.NewTrace(t), &mkore.Env{})).BeNil(t)
	bd.DryRun = true
	testerr.Shall(bd.NamedTasks(b, ":beta:build")).BeNil(t)
	var ran []string
	for _, task := range bd.Ran() {
		ran = append(ran, task.Path())
	}
	iJar, iRemap := slices.Index(ran, ":alpha:jar"), slices.Index(ran, ":alpha:remap")
	if iRemap < 0 || iJar < 0 || iRemap < iJar {
		t.Errorf("consumer build ran %v", ran)
	}
	if iComp := slices.Index(ran, ":beta:compileJava"); iComp < iRemap {
		t.Errorf("consumer compiled before remap: %v", ran)
	}
}

func TestMappingLogic_run(t *testing.T) {
	dir := t.TempDir()
	b, alpha := testBuild(t, dir, true)
	rmd := testerr.Shall1(ApplyMappingLogic(alpha)).BeNil(t)
	rmd.Remap.Tool = []string{"cp"}

	bd := testerr.Shall1(mktest.Run(t, testerr.Shall1(alpha.Task("build")).BeNil(t))).BeNil(t)
	if _, err := os.Stat(rmd.Artifact.Path()); err != nil {
		t.Fatalf("remapped archive missing: %v", err)
	}
	if !slices.ContainsFunc(bd.Ran(), func(t *mkore.Task) bool { return t.Path() == ":mappings:shared:jar" }) {
		t.Errorf("mappings were not built: %v", bd.Ran())
	}

	bd = testerr.Shall1(mkore.NewBuilder(mktest.NewTrace(t), &mkore.Env{})).BeNil(t)
	testerr.Shall(bd.NamedTasks(b, ":alpha:remap")).BeNil(t)
	if len(bd.Ran()) != 0 {
		t.Errorf("unchanged build ran %v", bd.Ran())
	}
	if !slices.ContainsFunc(bd.UpToDate(), func(t *mkore.Task) bool { return t.Path() == ":alpha:remap" }) {
		t.Errorf("remap not up to date: %v", bd.UpToDate())
	}
}
