package mkore

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// DefaultConfiguration is the configuration a [ProjectDependency] selects
// when no configuration is given.
const DefaultConfiguration = "default"

// A Configuration is a named set of dependencies and outgoing artifacts of a
// project. A resolvable configuration is used by its project to collect the
// files of its dependencies. A consumable configuration offers its outgoing
// artifacts to other projects.
type Configuration struct {
	Description   string
	CanBeResolved bool
	CanBeConsumed bool

	prj       *Project
	name      string
	extends   []*Configuration
	deps      []Dependency
	artifacts []*PublishArtifact
}

var _ Buildable = (*Configuration)(nil)

func (c *Configuration) Project() *Project { return c.prj }

func (c *Configuration) Name() string { return c.name }

func (c *Configuration) String() string {
	return fmt.Sprintf("configuration '%s' of project '%s'", c.name, c.prj.path)
}

// Extend makes c inherit all dependencies of others.
func (c *Configuration) Extend(others ...*Configuration) *Configuration {
	for _, o := range others {
		if o != c && !slices.Contains(c.extends, o) {
			c.extends = append(c.extends, o)
		}
	}
	return c
}

func (c *Configuration) Extends() []*Configuration { return slices.Clone(c.extends) }

func (c *Configuration) Add(deps ...Dependency) *Configuration {
	c.deps = append(c.deps, deps...)
	return c
}

// Dependencies returns the dependencies declared directly in c.
func (c *Configuration) Dependencies() []Dependency { return slices.Clone(c.deps) }

// AllDependencies returns the dependencies of c and of all configurations c
// extends, each dependency once.
func (c *Configuration) AllDependencies() []Dependency {
	var (
		res  []Dependency
		seen = make(map[*Configuration]bool)
	)
	var collect func(*Configuration)
	collect = func(c *Configuration) {
		if seen[c] {
			return
		}
		seen[c] = true
		for _, e := range c.extends {
			collect(e)
		}
	NEXT_DEP:
		for _, d := range c.deps {
			for _, r := range res {
				if r == d {
					continue NEXT_DEP
				}
			}
			res = append(res, d)
		}
	}
	collect(c)
	return res
}

// Artifact adds an outgoing artifact to c.
func (c *Configuration) Artifact(file PathProvider, builtBy ...any) *PublishArtifact {
	a := &PublishArtifact{File: file, prj: c.prj}
	a.BuiltBy(builtBy...)
	c.artifacts = append(c.artifacts, a)
	return a
}

func (c *Configuration) Outgoing() []*PublishArtifact { return slices.Clone(c.artifacts) }

// BuildDependencies returns the tasks that produce the files of all
// dependencies of c.
func (c *Configuration) BuildDependencies() ([]*Task, error) {
	var res []*Task
	for _, d := range c.AllDependencies() {
		ts, err := d.BuildDependencies()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c, err)
		}
		for _, t := range ts {
			if !slices.Contains(res, t) {
				res = append(res, t)
			}
		}
	}
	return res, nil
}

type Resolution struct {
	Files   []string
	Modules []*ModuleDependency
}

// Resolve collects the files of all dependencies of c. External modules are
// not resolved but reported in [Resolution.Modules].
func (c *Configuration) Resolve() (*Resolution, error) {
	if !c.CanBeResolved {
		return nil, fmt.Errorf("%s cannot be resolved", c)
	}
	res := new(Resolution)
	for _, d := range c.AllDependencies() {
		if m, ok := d.(*ModuleDependency); ok {
			res.Modules = append(res.Modules, m)
			continue
		}
		fs, err := d.Files()
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", c, err)
		}
		for _, f := range fs {
			if !slices.Contains(res.Files, f) {
				res.Files = append(res.Files, f)
			}
		}
	}
	return res, nil
}

// PublishArtifact is an outgoing artifact of a [Configuration].
type PublishArtifact struct {
	File PathProvider

	prj     *Project
	builtBy []any
}

var _ Buildable = (*PublishArtifact)(nil)

func (a *PublishArtifact) Path() string { return a.prj.AbsPath(a.File.Path()) }

func (a *PublishArtifact) BuiltBy(tasks ...any) *PublishArtifact {
	a.builtBy = append(a.builtBy, tasks...)
	return a
}

func (a *PublishArtifact) BuildDependencies() ([]*Task, error) {
	return buildersOf(a.prj, a.builtBy)
}

// FileCollection is a set of files that may be built by tasks.
type FileCollection struct {
	prj     *Project
	paths   []PathProvider
	builtBy []any
}

var _ Buildable = (*FileCollection)(nil)

func (fc *FileCollection) BuiltBy(tasks ...any) *FileCollection {
	fc.builtBy = append(fc.builtBy, tasks...)
	return fc
}

func (fc *FileCollection) Paths() []string { return fc.prj.absPaths(fc.paths) }

func (fc *FileCollection) BuildDependencies() ([]*Task, error) {
	return buildersOf(fc.prj, fc.builtBy)
}

func buildersOf(prj *Project, builtBy []any) ([]*Task, error) {
	var res []*Task
	for _, b := range builtBy {
		var ts []*Task
		switch b := b.(type) {
		case *Task:
			ts = []*Task{b}
		case string:
			t, err := prj.lookupTask(b)
			if err != nil {
				return nil, err
			}
			ts = []*Task{t}
		case Buildable:
			var err error
			if ts, err = b.BuildDependencies(); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("illegal builder type %T", b)
		}
		for _, t := range ts {
			if !slices.Contains(res, t) {
				res = append(res, t)
			}
		}
	}
	return res, nil
}

// Dependency is an entry of a [Configuration].
type Dependency interface {
	Buildable
	Files() ([]string, error)
	String() string
}

// ProjectDependency depends on the outgoing artifacts of a consumable
// configuration of another project in the same build.
type ProjectDependency struct {
	Project       *Project
	Configuration string
}

var _ Dependency = (*ProjectDependency)(nil)

func (d *ProjectDependency) String() string {
	return fmt.Sprintf("project(%s, %s)", d.Project.path, d.Configuration)
}

// Target returns the configuration the dependency refers to. It must be
// consumable.
func (d *ProjectDependency) Target() (*Configuration, error) {
	c, err := d.Project.Configuration(d.Configuration)
	if err != nil {
		return nil, err
	}
	if !c.CanBeConsumed {
		return nil, fmt.Errorf("%s cannot be consumed", c)
	}
	return c, nil
}

func (d *ProjectDependency) Files() ([]string, error) {
	c, err := d.Target()
	if err != nil {
		return nil, err
	}
	var res []string
	for _, a := range c.artifacts {
		res = append(res, a.Path())
	}
	return res, nil
}

func (d *ProjectDependency) BuildDependencies() ([]*Task, error) {
	c, err := d.Target()
	if err != nil {
		return nil, err
	}
	var res []*Task
	for _, a := range c.artifacts {
		ts, err := a.BuildDependencies()
		if err != nil {
			return nil, err
		}
		for _, t := range ts {
			if !slices.Contains(res, t) {
				res = append(res, t)
			}
		}
	}
	return res, nil
}

// FileDependency depends on the files of a [FileCollection].
type FileDependency struct {
	*FileCollection
}

var _ Dependency = FileDependency{}

func (d FileDependency) Files() ([]string, error) { return d.Paths(), nil }

func (d FileDependency) String() string { return fmt.Sprintf("files%v", d.Paths()) }

// ModuleDependency is an external module given by its coordinates. Modules
// are declared and reported but not resolved by the build.
type ModuleDependency struct {
	Group, Module, Version string
}

var _ Dependency = (*ModuleDependency)(nil)

// ParseModule parses "group:module:version" coordinates.
func ParseModule(coords string) (*ModuleDependency, error) {
	parts := strings.Split(coords, ":")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return nil, fmt.Errorf("illegal module coordinates '%s'", coords)
	}
	return &ModuleDependency{Group: parts[0], Module: parts[1], Version: parts[2]}, nil
}

func (d *ModuleDependency) String() string {
	return d.Group + ":" + d.Module + ":" + d.Version
}

func (d *ModuleDependency) Files() ([]string, error) {
	return nil, errors.New("external module resolution not supported: " + d.String())
}

func (d *ModuleDependency) BuildDependencies() ([]*Task, error) { return nil, nil }
