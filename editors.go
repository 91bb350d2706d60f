package mkconv

import (
	"git.fractalqb.de/fractalqb/mkconv/mkore"
)

// ProjectEd is used with [Edit].
type ProjectEd struct{ p *Project }

func (ed ProjectEd) Project() *Project { return ed.p }

func (ed ProjectEd) Dir() string { return ed.p.Dir() }

func (ed ProjectEd) Register(name string, op mkore.Operation) TaskEd {
	return TaskEd{mustRet(ed.p.Register(name, op))}
}

func (ed ProjectEd) Task(name string) TaskEd {
	return TaskEd{mustRet(ed.p.Task(name))}
}

func (ed ProjectEd) NewConfiguration(name string) ConfigurationEd {
	return ConfigurationEd{mustRet(ed.p.NewConfiguration(name))}
}

func (ed ProjectEd) Configuration(name string) ConfigurationEd {
	return ConfigurationEd{mustRet(ed.p.Configuration(name))}
}

func (ed ProjectEd) ProjectDependency(path, configuration string) *mkore.ProjectDependency {
	return mustRet(ed.p.ProjectDependency(path, configuration))
}

func (ed ProjectEd) Files(paths ...mkore.PathProvider) *mkore.FileCollection {
	return ed.p.Files(paths...)
}

// TaskEd is used with [Edit].
type TaskEd struct{ t *Task }

func (ed TaskEd) Task() *Task { return ed.t }

func (ed TaskEd) Project() ProjectEd { return ProjectEd{ed.t.Project()} }

// DependOn resolves names immediately, i.e. it panics when a named task does
// not exist.
func (ed TaskEd) DependOn(deps ...any) TaskEd {
	ed.t.DependOn(deps...)
	mustRet(ed.t.Dependencies())
	return ed
}

func (ed TaskEd) Inputs(ps ...mkore.PathProvider) TaskEd {
	ed.t.AddInputs(ps...)
	return ed
}

func (ed TaskEd) Outputs(ps ...mkore.PathProvider) TaskEd {
	ed.t.AddOutputs(ps...)
	return ed
}

// ConfigurationEd is used with [Edit].
type ConfigurationEd struct{ c *Configuration }

func (ed ConfigurationEd) Configuration() *Configuration { return ed.c }

func (ed ConfigurationEd) Add(deps ...mkore.Dependency) ConfigurationEd {
	ed.c.Add(deps...)
	return ed
}

func (ed ConfigurationEd) Usage(resolvable, consumable bool) ConfigurationEd {
	ed.c.CanBeResolved = resolvable
	ed.c.CanBeConsumed = consumable
	return ed
}

func (ed ConfigurationEd) Artifact(file mkore.PathProvider, builtBy ...any) *mkore.PublishArtifact {
	return ed.c.Artifact(file, builtBy...)
}
