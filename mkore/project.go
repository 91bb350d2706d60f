package mkore

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

const (
	DefaultVersion  = "unspecified"
	DefaultBuildDir = "build"
)

type Project struct {
	Version     string
	Description string

	// BuildDir is the base directory of generated artefacts. A relative
	// BuildDir is relative to the project directory.
	BuildDir string

	sync.Mutex

	build    *Build
	parent   *Project
	name     string
	path     string
	dir      string
	tasks    map[string]*Task
	configs  map[string]*Configuration
	plugins  map[string]any
	applying map[string]bool
	order    []string
}

func newProject(b *Build, parent *Project, name, dir string) *Project {
	prj := &Project{
		Version:  DefaultVersion,
		BuildDir: DefaultBuildDir,
		build:    b,
		parent:   parent,
		name:     name,
		dir:      dir,
		tasks:    make(map[string]*Task),
		configs:  make(map[string]*Configuration),
		plugins:  make(map[string]any),
		applying: make(map[string]bool),
	}
	if parent == nil {
		prj.path = ":"
	} else {
		prj.path = joinProjectPath(parent.path, name)
	}
	return prj
}

func (prj *Project) Build() *Build    { return prj.build }
func (prj *Project) Parent() *Project { return prj.parent }
func (prj *Project) Name() string     { return prj.name }
func (prj *Project) Path() string     { return prj.path }
func (prj *Project) Dir() string      { return prj.dir }
func (prj *Project) String() string   { return prj.path }
func (prj *Project) IsRoot() bool     { return prj.parent == nil }

// TaskPath returns the absolute path of the task with name n in prj.
func (prj *Project) TaskPath(n string) string {
	return joinProjectPath(prj.path, n)
}

func (prj *Project) BuildDirPath() string {
	if filepath.IsAbs(prj.BuildDir) {
		return prj.BuildDir
	}
	return filepath.Join(prj.dir, prj.BuildDir)
}

// LibsDir is where archives of the project are written to.
func (prj *Project) LibsDir() string {
	return filepath.Join(prj.BuildDirPath(), "libs")
}

// ArchiveFileName returns "<base>-<version>-<classifier>.<ext>" where empty
// version and classifier are left out together with their dash.
func ArchiveFileName(base, version, classifier, ext string) string {
	var sb strings.Builder
	sb.WriteString(base)
	if version != "" {
		sb.WriteByte('-')
		sb.WriteString(version)
	}
	if classifier != "" {
		sb.WriteByte('-')
		sb.WriteString(classifier)
	}
	if ext != "" {
		sb.WriteByte('.')
		sb.WriteString(ext)
	}
	return sb.String()
}

// AbsPath resolves path relative to the project directory.
func (prj *Project) AbsPath(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(prj.dir, path)
}

func (prj *Project) RelPath(path string) string {
	rel, err := filepath.Rel(prj.dir, prj.AbsPath(path))
	if err != nil {
		return filepath.Clean(path)
	}
	return rel
}

// Register adds a new task with name to prj. It is an error to register a
// task name twice.
func (prj *Project) Register(name string, op Operation) (*Task, error) {
	if name == "" || strings.ContainsRune(name, ':') {
		return nil, fmt.Errorf("project '%s': illegal task name '%s'", prj.path, name)
	}
	if _, ok := prj.tasks[name]; ok {
		return nil, &ConfigError{Kind: Duplicate, Project: prj.path, Entity: name}
	}
	t := &Task{Op: op, prj: prj, name: name}
	prj.tasks[name] = t
	return t, nil
}

func (prj *Project) Task(name string) (*Task, error) {
	if t := prj.tasks[name]; t != nil {
		return t, nil
	}
	return nil, &ConfigError{Kind: MissingTask, Project: prj.path, Entity: name}
}

func (prj *Project) FindTask(name string) *Task { return prj.tasks[name] }

// Tasks returns the tasks of prj sorted by name.
func (prj *Project) Tasks() []*Task {
	res := make([]*Task, 0, len(prj.tasks))
	for _, t := range prj.tasks {
		res = append(res, t)
	}
	slices.SortFunc(res, func(s, t *Task) int { return strings.Compare(s.name, t.name) })
	return res
}

// NewConfiguration creates a new configuration that is resolvable and
// consumable.
func (prj *Project) NewConfiguration(name string) (*Configuration, error) {
	if _, ok := prj.configs[name]; ok {
		return nil, &ConfigError{Kind: Duplicate, Project: prj.path, Entity: name}
	}
	c := &Configuration{
		CanBeResolved: true,
		CanBeConsumed: true,
		prj:           prj,
		name:          name,
	}
	prj.configs[name] = c
	return c, nil
}

func (prj *Project) Configuration(name string) (*Configuration, error) {
	if c := prj.configs[name]; c != nil {
		return c, nil
	}
	return nil, &ConfigError{Kind: MissingConfiguration, Project: prj.path, Entity: name}
}

func (prj *Project) FindConfiguration(name string) *Configuration { return prj.configs[name] }

func (prj *Project) Configurations() []*Configuration {
	res := make([]*Configuration, 0, len(prj.configs))
	for _, c := range prj.configs {
		res = append(res, c)
	}
	slices.SortFunc(res, func(c, d *Configuration) int { return strings.Compare(c.name, d.name) })
	return res
}

func (prj *Project) Files(paths ...PathProvider) *FileCollection {
	return &FileCollection{prj: prj, paths: paths}
}

// ProjectDependency creates a dependency on the configuration of the project
// with path. An empty configuration selects [DefaultConfiguration]. The
// project must already be part of the build.
func (prj *Project) ProjectDependency(path, configuration string) (*ProjectDependency, error) {
	target, err := prj.build.Project(path)
	if err != nil {
		var cerr *ConfigError
		if errors.As(err, &cerr) {
			cerr.Project = prj.path
		}
		return nil, err
	}
	if configuration == "" {
		configuration = DefaultConfiguration
	}
	return &ProjectDependency{
		Project:       target,
		Configuration: configuration,
	}, nil
}

func (prj *Project) HasPlugin(id string) bool {
	_, ok := prj.plugins[id]
	return ok
}

// Plugins returns the ids of the applied plugins in application order.
func (prj *Project) Plugins() []string { return slices.Clone(prj.order) }

// Apply applies a plugin, i.e. a convention, with id to prj. A plugin is
// applied at most once per project. Later calls return the value of the first
// successful application.
func Apply[E any](prj *Project, id string, apply func(*Project) (E, error)) (E, error) {
	var zero E
	if x, ok := prj.plugins[id]; ok {
		e, ok := x.(E)
		if !ok {
			return zero, fmt.Errorf("project '%s': plugin '%s' has extension %T, not %T",
				prj.path,
				id,
				x,
				zero,
			)
		}
		return e, nil
	}
	if prj.applying[id] {
		return zero, fmt.Errorf("project '%s': recursive application of plugin '%s'",
			prj.path,
			id,
		)
	}
	prj.applying[id] = true
	defer delete(prj.applying, id)
	prj.build.Logger().Debug("apply `plugin` to `project`", `plugin`, id, `project`, prj.path)
	e, err := apply(prj)
	if err != nil {
		return zero, err
	}
	prj.plugins[id] = e
	prj.order = append(prj.order, id)
	return e, nil
}

// Extension returns the value registered by the plugin with id.
func Extension[E any](prj *Project, id string) (E, bool) {
	x, ok := prj.plugins[id]
	if !ok {
		var zero E
		return zero, false
	}
	e, ok := x.(E)
	return e, ok
}
