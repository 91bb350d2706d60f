// Package remapper provides the remap task. It rewrites the symbol names in
// the primary archive of a project with an external remapping tool and writes
// the result to a secondary archive that is distinguished by its classifier.
package remapper

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"git.fractalqb.de/fractalqb/mkconv/mkore"
	"git.fractalqb.de/fractalqb/mkconv/plugin/java"
)

const (
	ID = "remapper"

	Remap = "remap"

	ClasspathVar = "REMAP_CLASSPATH"
)

var ErrNoTool = errors.New("no remapper tool configured")

// RemapTask is the typed handle of the remap task. All settings are read
// when the task's paths are requested, i.e. they may change until the build
// runs.
type RemapTask struct {
	ArchiveBaseName   string // default: project name
	ArchiveVersion    string // default: project version
	ArchiveClassifier string
	ArchiveExtension  string

	// Input defaults to the primary archive
	Input mkore.PathProvider

	// Classpath names the configuration whose files are passed to the tool
	// in the environment variable ClasspathVar
	Classpath string

	// Tool is the command that runs the remapper. It is called with the
	// input archive and the output archive as the last arguments.
	Tool []string

	task *mkore.Task
	jx   *java.Extension
}

func Apply(prj *mkore.Project) (*RemapTask, error) {
	return mkore.Apply(prj, ID, apply)
}

// Lookup returns the remap task of prj. If the plugin was not applied, the
// error names the missing task "remap".
func Lookup(prj *mkore.Project) (*RemapTask, error) {
	if rt, ok := mkore.Extension[*RemapTask](prj, ID); ok {
		return rt, nil
	}
	return nil, &mkore.ConfigError{Kind: mkore.MissingTask, Project: prj.Path(), Entity: Remap}
}

func apply(prj *mkore.Project) (*RemapTask, error) {
	jx, err := java.Apply(prj)
	if err != nil {
		return nil, err
	}
	rt := &RemapTask{
		ArchiveExtension: "jar",
		Classpath:        java.CompileClasspath,
		jx:               jx,
	}
	if rt.task, err = prj.Register(Remap, (*remapOp)(rt)); err != nil {
		return nil, err
	}
	rt.task.Description = "Remaps the symbols of the primary archive."
	rt.task.AddInputs(mkore.PathFunc(rt.InputPath)).
		AddOutputs(mkore.PathFunc(rt.ArchivePath))
	return rt, nil
}

func (rt *RemapTask) Task() *mkore.Task { return rt.task }

func (rt *RemapTask) SetArchiveClassifier(c string) *RemapTask {
	rt.ArchiveClassifier = c
	return rt
}

func (rt *RemapTask) InputPath() string {
	if rt.Input == nil {
		return rt.jx.JarPath()
	}
	return rt.task.Project().AbsPath(rt.Input.Path())
}

// ArchivePath returns the path of the remapped archive
// <buildDir>/libs/<base>-<version>-<classifier>.<ext>.
func (rt *RemapTask) ArchivePath() string {
	prj := rt.task.Project()
	base, version := rt.ArchiveBaseName, rt.ArchiveVersion
	if base == "" {
		base = prj.Name()
	}
	if version == "" {
		version = prj.Version
	}
	return filepath.Join(
		prj.LibsDir(),
		mkore.ArchiveFileName(base, version, rt.ArchiveClassifier, rt.ArchiveExtension),
	)
}

type remapOp RemapTask

func (op *remapOp) Describe(*mkore.Task, *mkore.Env) string {
	rt := (*RemapTask)(op)
	return "remap " + filepath.Base(rt.InputPath()) + " -> " + filepath.Base(rt.ArchivePath())
}

func (op *remapOp) Do(tr *mkore.Trace, t *mkore.Task, env *mkore.Env) error {
	rt := (*RemapTask)(op)
	if len(rt.Tool) == 0 {
		return ErrNoTool
	}
	in, out := rt.InputPath(), rt.ArchivePath()
	if in == out {
		return errors.New("remap input and output are the same file: " + in)
	}
	args := append([]string{}, rt.Tool[1:]...)
	args = append(args, in, out)
	if rt.Classpath != "" {
		cfg, err := t.Project().Configuration(rt.Classpath)
		if err != nil {
			return err
		}
		res, err := cfg.Resolve()
		if err != nil {
			return err
		}
		env.SetVar(ClasspathVar, strings.Join(res.Files, string(os.PathListSeparator)))
	}
	if err := os.MkdirAll(filepath.Dir(out), 0777); err != nil {
		return err
	}
	tr.Debug("remap `input` to `output`", `input`, in, `output`, out)
	cmd := mkore.CmdOp{Exe: rt.Tool[0], Args: args}
	return cmd.Do(tr, t, env)
}
