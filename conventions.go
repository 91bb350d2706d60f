package mkconv

import (
	"git.fractalqb.de/fractalqb/mkconv/mkore"
	"git.fractalqb.de/fractalqb/mkconv/plugin/base"
	"git.fractalqb.de/fractalqb/mkconv/plugin/coredeps"
	"git.fractalqb.de/fractalqb/mkconv/plugin/java"
	"git.fractalqb.de/fractalqb/mkconv/plugin/license"
	"git.fractalqb.de/fractalqb/mkconv/plugin/remapper"
)

// Convention applies a convention to a project.
type Convention = func(*mkore.Project) error

// Conventions are the conventions that can be requested by name in build
// settings.
var Conventions = map[string]Convention{
	base.ID:        convention(base.Apply),
	java.ID:        convention(java.Apply),
	license.ID:     convention(license.Apply),
	coredeps.ID:    convention(coredeps.Apply),
	remapper.ID:    convention(remapper.Apply),
	MappingLogicID: convention(ApplyMappingLogic),
}

func convention[E any](apply func(*mkore.Project) (E, error)) Convention {
	return func(prj *mkore.Project) error {
		_, err := apply(prj)
		return err
	}
}
