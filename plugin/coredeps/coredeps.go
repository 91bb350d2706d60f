// Package coredeps is the core-dependencies convention. It contributes the
// standard set of compile time modules to a project.
package coredeps

import (
	"git.fractalqb.de/fractalqb/mkconv/mkore"
	"git.fractalqb.de/fractalqb/mkconv/plugin/java"
)

const ID = "core-dependencies"

// Defaults are the coordinates of the modules added to compileOnly.
var Defaults = []string{
	"org.jetbrains:annotations:24.1.0",
	"org.projectlombok:lombok:1.18.30",
	"com.google.code.gson:gson:2.10.1",
}

type Extension struct {
	Modules []*mkore.ModuleDependency
}

func Apply(prj *mkore.Project) (*Extension, error) {
	return mkore.Apply(prj, ID, func(prj *mkore.Project) (*Extension, error) {
		return addModules(prj, Defaults)
	})
}

func addModules(prj *mkore.Project, coords []string) (*Extension, error) {
	jx, err := java.Apply(prj)
	if err != nil {
		return nil, err
	}
	x := new(Extension)
	for _, c := range coords {
		m, err := mkore.ParseModule(c)
		if err != nil {
			return nil, err
		}
		x.Modules = append(x.Modules, m)
		jx.CompileOnly.Add(m)
	}
	return x, nil
}
