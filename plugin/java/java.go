// Package java is the compile convention. It provides the configurations and
// tasks that turn the Java sources of a project into its primary archive.
package java

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"git.fractalqb.de/fractalqb/mkconv/mkfs"
	"git.fractalqb.de/fractalqb/mkconv/mkore"
	"git.fractalqb.de/fractalqb/mkconv/plugin/base"
)

const (
	ID = "java"

	Implementation   = "implementation"
	CompileOnly      = "compileOnly"
	CompileClasspath = "compileClasspath"

	CompileJava      = "compileJava"
	ProcessResources = "processResources"
	Classes          = "classes"
	Jar              = "jar"
)

type Extension struct {
	// Source and resource directories relative to the project directory
	SourceDir, ResourceDir string

	// ArchiveBaseName defaults to the project name
	ArchiveBaseName string

	Implementation, CompileOnly, CompileClasspath, Default *mkore.Configuration

	CompileJava, ProcessResources, Classes, Jar *mkore.Task

	prj       *mkore.Project
	toolchain mkore.ToolchainSpec
	inst      *mkore.Installation
}

func Apply(prj *mkore.Project) (*Extension, error) {
	return mkore.Apply(prj, ID, apply)
}

// Lookup returns the extension of an applied java plugin. If the plugin was
// not applied, the error names the missing task "jar".
func Lookup(prj *mkore.Project) (*Extension, error) {
	if x, ok := mkore.Extension[*Extension](prj, ID); ok {
		return x, nil
	}
	return nil, &mkore.ConfigError{Kind: mkore.MissingTask, Project: prj.Path(), Entity: Jar}
}

func apply(prj *mkore.Project) (x *Extension, err error) {
	bx, err := base.Apply(prj)
	if err != nil {
		return nil, err
	}
	x = &Extension{
		SourceDir:   filepath.Join("src", "main", "java"),
		ResourceDir: filepath.Join("src", "main", "resources"),
		prj:         prj,
	}
	if err = x.configurations(); err != nil {
		return nil, err
	}
	if err = x.tasks(); err != nil {
		return nil, err
	}
	bx.Assemble.DependOn(x.Jar)
	x.Default.Artifact(mkore.PathFunc(x.JarPath), x.Jar)
	return x, nil
}

func (x *Extension) configurations() (err error) {
	prj := x.prj
	if x.Implementation, err = prj.NewConfiguration(Implementation); err != nil {
		return err
	}
	x.Implementation.CanBeResolved = false
	x.Implementation.CanBeConsumed = false
	x.Implementation.Description = "Implementation dependencies."
	if x.CompileOnly, err = prj.NewConfiguration(CompileOnly); err != nil {
		return err
	}
	x.CompileOnly.CanBeResolved = false
	x.CompileOnly.CanBeConsumed = false
	x.CompileOnly.Description = "Dependencies only needed for compilation."
	if x.CompileClasspath, err = prj.NewConfiguration(CompileClasspath); err != nil {
		return err
	}
	x.CompileClasspath.CanBeConsumed = false
	x.CompileClasspath.Description = "Classpath of the Java compiler."
	x.CompileClasspath.Extend(x.Implementation, x.CompileOnly)
	if x.Default, err = prj.NewConfiguration(mkore.DefaultConfiguration); err != nil {
		return err
	}
	x.Default.CanBeResolved = false
	x.Default.Description = "Primary archive and its runtime dependencies."
	x.Default.Extend(x.Implementation)
	return nil
}

func (x *Extension) tasks() (err error) {
	prj := x.prj
	x.CompileJava, err = prj.Register(CompileJava, &javacOp{x: x})
	if err != nil {
		return err
	}
	x.CompileJava.Description = "Compiles the Java sources."
	x.CompileJava.DependOn(x.CompileClasspath).
		AddInputs(mkore.PathFunc(func() string { return x.SourceDir })).
		AddOutputs(mkore.PathFunc(x.ClassesDir))

	x.ProcessResources, err = prj.Register(ProcessResources, mkfs.Copy{
		Src:       mkfs.Tree{Dir: mkore.PathFunc(func() string { return x.ResourceDir })},
		Dest:      mkore.PathFunc(x.ResourcesOutDir),
		MkDirMode: 0777,
	})
	if err != nil {
		return err
	}
	x.ProcessResources.Description = "Copies the resources to the build directory."
	x.ProcessResources.
		AddInputs(mkore.PathFunc(func() string { return x.ResourceDir })).
		AddOutputs(mkore.PathFunc(x.ResourcesOutDir))

	if x.Classes, err = prj.Register(Classes, nil); err != nil {
		return err
	}
	x.Classes.Description = "Assembles the compiled classes and resources."
	x.Classes.DependOn(x.CompileJava, x.ProcessResources)

	x.Jar, err = prj.Register(Jar, &mkfs.Jar{
		Dirs: []mkore.PathProvider{
			mkore.PathFunc(x.ClassesDir),
			mkore.PathFunc(x.ResourcesOutDir),
		},
		Archive:   mkore.PathFunc(x.JarPath),
		Manifest:  map[string]string{"Implementation-Title": prj.Name()},
		MkDirMode: 0777,
	})
	if err != nil {
		return err
	}
	x.Jar.Description = "Assembles the primary archive."
	x.Jar.DependOn(x.Classes).
		AddInputs(mkore.PathFunc(x.ClassesDir), mkore.PathFunc(x.ResourcesOutDir)).
		AddOutputs(mkore.PathFunc(x.JarPath))
	return nil
}

func (x *Extension) Project() *mkore.Project { return x.prj }

func (x *Extension) ClassesDir() string {
	return filepath.Join(x.prj.BuildDirPath(), "classes", "java", "main")
}

func (x *Extension) ResourcesOutDir() string {
	return filepath.Join(x.prj.BuildDirPath(), "resources", "main")
}

func (x *Extension) BaseName() string {
	if x.ArchiveBaseName == "" {
		return x.prj.Name()
	}
	return x.ArchiveBaseName
}

// JarPath is the path of the primary archive
// <buildDir>/libs/<base name>-<version>.jar.
func (x *Extension) JarPath() string {
	return filepath.Join(
		x.prj.LibsDir(),
		mkore.ArchiveFileName(x.BaseName(), x.prj.Version, "", "jar"),
	)
}

// SetLanguageVersion pins the toolchain used for compilation. The toolchain
// is provisioned immediately from the build's toolchains.
func (x *Extension) SetLanguageVersion(v int) error {
	return x.SetToolchain(mkore.ToolchainSpec{LanguageVersion: v})
}

func (x *Extension) SetToolchain(spec mkore.ToolchainSpec) error {
	inst, err := x.prj.Build().Toolchains.Find(spec)
	if err != nil {
		var cerr *mkore.ConfigError
		if errors.As(err, &cerr) {
			cerr.Project = x.prj.Path()
		}
		return err
	}
	x.toolchain, x.inst = spec, &inst
	x.prj.Build().Logger().Info("`project` compiles with `toolchain`",
		`project`, x.prj.Path(),
		`toolchain`, inst.String(),
	)
	return nil
}

func (x *Extension) Toolchain() mkore.ToolchainSpec { return x.toolchain }

func (x *Extension) LanguageVersion() int { return x.toolchain.LanguageVersion }

// Installation returns the provisioned toolchain. Without pinned toolchain
// the newest known installation is used.
func (x *Extension) Installation() (mkore.Installation, error) {
	if x.inst != nil {
		return *x.inst, nil
	}
	return x.prj.Build().Toolchains.Find(mkore.ToolchainSpec{})
}

type javacOp struct{ x *Extension }

func (op *javacOp) Describe(*mkore.Task, *mkore.Env) string {
	if lv := op.x.LanguageVersion(); lv > 0 {
		return "javac --release " + strconv.Itoa(lv)
	}
	return "javac"
}

func (op *javacOp) Do(tr *mkore.Trace, t *mkore.Task, env *mkore.Env) error {
	x := op.x
	srcs, err := mkfs.FilesWithExt(mkore.FixedPath(x.SourceDir), ".java").Files(x.prj)
	if err != nil {
		return err
	}
	if len(srcs) == 0 {
		tr.Info("no Java sources in `dir`", `dir`, x.SourceDir)
		return os.MkdirAll(x.ClassesDir(), 0777)
	}
	inst, err := x.Installation()
	if err != nil {
		return err
	}
	cp, err := x.CompileClasspath.Resolve()
	if err != nil {
		return err
	}
	if len(cp.Modules) > 0 {
		tr.Warn("external modules are not resolved: `modules`", `modules`, cp.Modules)
	}
	args := []string{"-d", x.ClassesDir()}
	if lv := x.LanguageVersion(); lv > 0 {
		args = append(args, "--release", strconv.Itoa(lv))
	}
	if len(cp.Files) > 0 {
		args = append(args, "-cp", strings.Join(cp.Files, string(os.PathListSeparator)))
	}
	srcDir := x.prj.AbsPath(x.SourceDir)
	for _, s := range srcs {
		args = append(args, filepath.Join(srcDir, s))
	}
	if err := os.MkdirAll(x.ClassesDir(), 0777); err != nil {
		return err
	}
	cmd := mkore.CmdOp{
		Exe:  inst.Tool("javac"),
		Args: args,
		Desc: fmt.Sprintf("javac %d files", len(srcs)),
	}
	return cmd.Do(tr, t, env)
}
