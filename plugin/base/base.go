// Package base registers the lifecycle tasks every project has.
package base

import (
	"git.fractalqb.de/fractalqb/mkconv/mkfs"
	"git.fractalqb.de/fractalqb/mkconv/mkore"
)

const (
	ID = "base"

	Assemble = "assemble"
	Check    = "check"
	Build    = "build"
	Clean    = "clean"
)

// Extension gives typed access to the lifecycle tasks.
type Extension struct {
	Assemble, Check, Build, Clean *mkore.Task
}

func Apply(prj *mkore.Project) (*Extension, error) {
	return mkore.Apply(prj, ID, apply)
}

// Lookup returns the extension of an applied base plugin. If the plugin was
// not applied, the error names the missing task "build".
func Lookup(prj *mkore.Project) (*Extension, error) {
	if x, ok := mkore.Extension[*Extension](prj, ID); ok {
		return x, nil
	}
	return nil, &mkore.ConfigError{Kind: mkore.MissingTask, Project: prj.Path(), Entity: Build}
}

func apply(prj *mkore.Project) (x *Extension, err error) {
	x = new(Extension)
	if x.Assemble, err = prj.Register(Assemble, nil); err != nil {
		return nil, err
	}
	x.Assemble.Description = "Assembles the outputs of this project."
	if x.Check, err = prj.Register(Check, nil); err != nil {
		return nil, err
	}
	x.Check.Description = "Runs all checks."
	if x.Build, err = prj.Register(Build, nil); err != nil {
		return nil, err
	}
	x.Build.Description = "Assembles and tests this project."
	x.Build.DependOn(x.Assemble, x.Check)
	x.Clean, err = prj.Register(Clean, mkfs.Delete{
		Paths: []mkore.PathProvider{mkore.PathFunc(prj.BuildDirPath)},
	})
	if err != nil {
		return nil, err
	}
	x.Clean.Description = "Deletes the build directory."
	return x, nil
}
