package mkore

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Operation is the implementation of a [Task]. A task without operation is
// "implicit", i.e. it is done as soon as all its dependencies are done.
type Operation interface {
	// The hints are optional
	Describe(taskHint *Task, envHint *Env) string
	Do(tr *Trace, t *Task, env *Env) error
}

// Buildable is anything that needs tasks to be run before it is available.
type Buildable interface {
	BuildDependencies() ([]*Task, error)
}

// PathProvider delivers a file system path on demand. This allows to
// reference files whose names depend on settings that may still change while
// the build is configured.
type PathProvider interface {
	Path() string
}

type FixedPath string

func (p FixedPath) Path() string { return string(p) }

type PathFunc func() string

func (f PathFunc) Path() string { return f() }

// A Task is a named unit of work in a [Project]. Tasks depend on other tasks
// and form the task graph that is executed by the [Builder].
type Task struct {
	Op          Operation
	Description string

	prj     *Project
	name    string
	deps    []any
	inputs  []PathProvider
	outputs []PathProvider

	sync.Mutex
	lastBID BuildID
}

var _ Buildable = (*Task)(nil)

func (t *Task) Project() *Project { return t.prj }

func (t *Task) Name() string { return t.name }

// Path returns the absolute task path, e.g. ":alpha:remap".
func (t *Task) Path() string { return t.prj.TaskPath(t.name) }

func (t *Task) String() string { return t.Path() }

func (t *Task) IsImplicit() bool { return t.Op == nil }

func (t *Task) Describe(env *Env) string {
	if t.Op == nil {
		return "implicit:" + t.Path()
	}
	return t.Op.Describe(t, env)
}

// DependOn adds dependencies to t. A dependency is either a *Task, the name
// of a task in the same project, an absolute task path like ":p:task" or any
// [Buildable]. Names are resolved when the dependencies are requested.
func (t *Task) DependOn(deps ...any) *Task {
NEXT_DEP:
	for _, d := range deps {
		switch d := d.(type) {
		case *Task:
			for _, e := range t.deps {
				if e, ok := e.(*Task); ok && e == d {
					continue NEXT_DEP
				}
			}
		case string:
			for _, e := range t.deps {
				if e, ok := e.(string); ok && e == d {
					continue NEXT_DEP
				}
			}
		case Buildable:
		default:
			panic(fmt.Errorf("task %s: illegal dependency type %T", t.Path(), d))
		}
		t.deps = append(t.deps, d)
	}
	return t
}

// Dependencies returns the tasks t directly depends on in the order they were
// declared. Unknown task names yield a [ConfigError] of kind [MissingTask].
func (t *Task) Dependencies() ([]*Task, error) {
	var res []*Task
	add := func(ts ...*Task) {
	NEXT_TASK:
		for _, u := range ts {
			for _, r := range res {
				if r == u {
					continue NEXT_TASK
				}
			}
			res = append(res, u)
		}
	}
	for _, d := range t.deps {
		switch d := d.(type) {
		case *Task:
			add(d)
		case string:
			u, err := t.prj.lookupTask(d)
			if err != nil {
				return nil, err
			}
			add(u)
		case Buildable:
			us, err := d.BuildDependencies()
			if err != nil {
				return nil, fmt.Errorf("dependencies of task %s: %w", t.Path(), err)
			}
			add(us...)
		}
	}
	return res, nil
}

// DependsOnTask reports whether t directly depends on the task with name,
// which may also be an absolute task path.
func (t *Task) DependsOnTask(name string) bool {
	deps, err := t.Dependencies()
	if err != nil {
		return false
	}
	for _, d := range deps {
		if d.name == name || d.Path() == name {
			return true
		}
	}
	return false
}

func (t *Task) BuildDependencies() ([]*Task, error) { return []*Task{t}, nil }

func (t *Task) AddInputs(ps ...PathProvider) *Task {
	t.inputs = append(t.inputs, ps...)
	return t
}

func (t *Task) AddOutputs(ps ...PathProvider) *Task {
	t.outputs = append(t.outputs, ps...)
	return t
}

func (t *Task) InputPaths() []string { return t.prj.absPaths(t.inputs) }

func (t *Task) OutputPaths() []string { return t.prj.absPaths(t.outputs) }

// UpToDate reports whether all outputs of t exist and none is older than the
// newest input. Missing inputs count as empty. Tasks without declared inputs
// or without outputs are never up to date.
func (t *Task) UpToDate() bool {
	ins, outs := t.InputPaths(), t.OutputPaths()
	if len(ins) == 0 || len(outs) == 0 {
		return false
	}
	var oldestOut time.Time
	for _, o := range outs {
		mt := modTime(o)
		if mt.IsZero() {
			return false
		}
		if oldestOut.IsZero() || mt.Before(oldestOut) {
			oldestOut = mt
		}
	}
	for _, i := range ins {
		if oldestOut.Before(modTime(i)) {
			return false
		}
	}
	return true
}

// LockBuild locks t once for the current build of t's build. If t was already
// locked for the build 0 is returned.
func (t *Task) LockBuild() BuildID {
	t.Mutex.Lock()
	if blb := t.prj.build.lastBuild; t.lastBID < blb {
		t.lastBID = blb
		return blb
	}
	t.Mutex.Unlock()
	return 0
}

func (prj *Project) lookupTask(name string) (*Task, error) {
	idx := strings.LastIndexByte(name, ':')
	if idx < 0 {
		return prj.Task(name)
	}
	ppath, tname := name[:idx], name[idx+1:]
	if ppath == "" {
		ppath = ":"
	}
	other, err := prj.build.Project(ppath)
	if err != nil {
		return nil, err
	}
	if t := other.tasks[tname]; t != nil {
		return t, nil
	}
	return nil, &ConfigError{Kind: MissingTask, Project: prj.path, Entity: name}
}

func (prj *Project) absPaths(ps []PathProvider) []string {
	if len(ps) == 0 {
		return nil
	}
	res := make([]string, 0, len(ps))
	for _, p := range ps {
		if path := p.Path(); path != "" {
			res = append(res, prj.AbsPath(path))
		}
	}
	return res
}

// modTime of a directory is the newest modification time in its tree.
func modTime(path string) time.Time {
	st, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	if !st.IsDir() {
		return st.ModTime()
	}
	t := st.ModTime()
	filepath.WalkDir(path, func(_ string, e fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if info, err := e.Info(); err == nil && info.ModTime().After(t) {
			t = info.ModTime()
		}
		return nil
	})
	return t
}
