// Package license is the licensing convention. It checks that the sources of
// a project carry the license header. The check itself is delegated to an
// external tool.
package license

import (
	"git.fractalqb.de/fractalqb/mkconv/mkore"
	"git.fractalqb.de/fractalqb/mkconv/plugin/base"
)

const (
	ID = "license"

	CheckLicenses = "checkLicenses"

	DefaultHeaderFile = "HEADER"
)

type Extension struct {
	// HeaderFile is relative to the root project directory
	HeaderFile string

	// Tool is the external license checker. It is called with the header
	// file and the project directory. Without tool, checkLicenses does
	// nothing.
	Tool []string

	CheckLicenses *mkore.Task
}

func Apply(prj *mkore.Project) (*Extension, error) {
	return mkore.Apply(prj, ID, apply)
}

func Lookup(prj *mkore.Project) (*Extension, error) {
	if x, ok := mkore.Extension[*Extension](prj, ID); ok {
		return x, nil
	}
	return nil, &mkore.ConfigError{Kind: mkore.MissingTask, Project: prj.Path(), Entity: CheckLicenses}
}

func apply(prj *mkore.Project) (*Extension, error) {
	bx, err := base.Apply(prj)
	if err != nil {
		return nil, err
	}
	x := &Extension{HeaderFile: DefaultHeaderFile}
	x.CheckLicenses, err = prj.Register(CheckLicenses, &checkOp{x: x})
	if err != nil {
		return nil, err
	}
	x.CheckLicenses.Description = "Checks the license headers of the sources."
	bx.Check.DependOn(x.CheckLicenses)
	return x, nil
}

type checkOp struct{ x *Extension }

func (op *checkOp) Describe(*mkore.Task, *mkore.Env) string {
	if len(op.x.Tool) == 0 {
		return "license check (no tool)"
	}
	return "license check " + op.x.Tool[0]
}

func (op *checkOp) Do(tr *mkore.Trace, t *mkore.Task, env *mkore.Env) error {
	x := op.x
	if len(x.Tool) == 0 {
		tr.Debug("no license tool for `project`", `project`, t.Project().Path())
		return nil
	}
	prj := t.Project()
	header := prj.Build().Root().AbsPath(x.HeaderFile)
	cmd := mkore.CmdOp{
		Exe:  x.Tool[0],
		Args: append(append([]string{}, x.Tool[1:]...), header, prj.Dir()),
	}
	return cmd.Do(tr, t, env)
}
