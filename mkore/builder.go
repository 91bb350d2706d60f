package mkore

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bits-and-blooms/bitset"
)

// Builder executes tasks of a [Build] after all the tasks they depend on.
// Each task runs at most once per build. A task is skipped when it is up to
// date and none of its dependencies had to run.
type Builder struct {
	// DryRun traces the tasks that would run without running them.
	DryRun bool

	trace    *Trace
	env      *Env
	bid      BuildID // => builder must not be used concurrently
	ran      []*Task
	upToDate []*Task
}

func NewBuilder(tr *Trace, env *Env) (*Builder, error) {
	if tr == nil {
		return nil, errors.New("no trace for new builder")
	}
	return &Builder{trace: tr, env: env}, nil
}

// Ran returns the tasks that were run by the last call to Tasks or
// NamedTasks in execution order.
func (bd *Builder) Ran() []*Task { return bd.ran }

// UpToDate returns the tasks that were skipped by the last build.
func (bd *Builder) UpToDate() []*Task { return bd.upToDate }

// NamedTasks builds the tasks selected by names. An absolute task path like
// ":alpha:build" selects exactly one task. A plain name selects the task with
// that name in every project of b.
func (bd *Builder) NamedTasks(b *Build, names ...string) error {
	var ts []*Task
	for _, n := range names {
		sel, err := SelectTasks(b, n)
		if err != nil {
			return err
		}
		ts = append(ts, sel...)
	}
	return bd.Tasks(ts...)
}

func SelectTasks(b *Build, name string) ([]*Task, error) {
	if strings.HasPrefix(name, ":") {
		t, err := b.root.lookupTask(name)
		if err != nil {
			return nil, err
		}
		return []*Task{t}, nil
	}
	var res []*Task
	for _, prj := range b.Projects() {
		if t := prj.tasks[name]; t != nil {
			res = append(res, t)
		}
	}
	if len(res) == 0 {
		return nil, &ConfigError{Kind: MissingTask, Entity: name}
	}
	return res, nil
}

// Plan returns ts and all tasks they depend on, transitively, in an order
// where each task comes after its dependencies.
func (bd *Builder) Plan(ts ...*Task) ([]*Task, error) {
	p := planner{
		index:  make(map[*Task]uint),
		done:   bitset.New(0),
		onPath: bitset.New(0),
	}
	for _, t := range ts {
		if err := p.visit(t); err != nil {
			return nil, err
		}
	}
	return p.order, nil
}

func (bd *Builder) Tasks(ts ...*Task) error {
	if len(ts) == 0 {
		return nil
	}
	b := ts[0].Project().Build()
	for _, t := range ts[1:] {
		if t.Project().Build() != b {
			return fmt.Errorf("task %s is not part of %s", t, b)
		}
	}
	plan, err := bd.Plan(ts...)
	if err != nil {
		return err
	}
	bd.bid = b.LockBuild()
	defer b.Unlock()
	if bd.env == nil {
		bd.env = DefaultEnv(bd.trace)
	}
	bd.ran, bd.upToDate = nil, nil

	start := time.Now()
	tr := bd.trace.pushBuild(b)
	tr.startBuild(b, "building")
	defer func() { tr.doneBuild(b, "building", time.Since(start)) }()
	didRun := make(map[*Task]bool)
	for _, t := range plan {
		if err := tr.Ctx().Err(); err != nil {
			return err
		}
		if err := bd.runTask(tr, t, didRun); err != nil {
			return err
		}
	}
	return nil
}

func (bd *Builder) runTask(tr *Trace, t *Task, didRun map[*Task]bool) error {
	if t.LockBuild() == 0 {
		return nil
	}
	defer t.Unlock()

	tr = tr.pushTask(t)
	deps, err := t.Dependencies()
	if err != nil {
		return err
	}
	depRan := false
	for _, d := range deps {
		if didRun[d] {
			depRan = true
			break
		}
	}
	switch {
	case t.Op == nil:
		tr.runImplicitTask(t)
		didRun[t] = depRan
		return nil
	case !depRan && t.UpToDate():
		tr.taskUpToDate(t)
		bd.upToDate = append(bd.upToDate, t)
		return nil
	}
	tr.runTask(t)
	if !bd.DryRun {
		env := bd.env.TaskEnv(t)
		err := t.Op.Do(tr, t, env)
		env.FinishTask()
		if err != nil {
			tr.taskFailed(t, err)
			return fmt.Errorf("task %s: %w", t.Path(), err)
		}
	}
	didRun[t] = true
	bd.ran = append(bd.ran, t)
	return nil
}

type planner struct {
	index  map[*Task]uint
	done   *bitset.BitSet
	onPath *bitset.BitSet
	path   []*Task
	order  []*Task
}

func (p *planner) idx(t *Task) uint {
	if i, ok := p.index[t]; ok {
		return i
	}
	i := uint(len(p.index))
	p.index[t] = i
	return i
}

func (p *planner) visit(t *Task) error {
	i := p.idx(t)
	if p.done.Test(i) {
		return nil
	}
	if p.onPath.Test(i) {
		var sb strings.Builder
		for j := len(p.path) - 1; j >= 0; j-- {
			if p.path[j] == t {
				for _, c := range p.path[j:] {
					sb.WriteString(c.Path())
					sb.WriteString(" -> ")
				}
				break
			}
		}
		sb.WriteString(t.Path())
		return fmt.Errorf("task dependency cycle: %s", sb.String())
	}
	p.onPath.Set(i)
	p.path = append(p.path, t)
	deps, err := t.Dependencies()
	if err != nil {
		return err
	}
	for _, d := range deps {
		if err := p.visit(d); err != nil {
			return err
		}
	}
	p.path = p.path[:len(p.path)-1]
	p.onPath.Clear(i)
	p.done.Set(i)
	p.order = append(p.order, t)
	return nil
}

type BuildTracer interface {
	TracerCommon

	RunTask(*Trace, *Task)
	RunImplicitTask(*Trace, *Task)
	TaskUpToDate(*Trace, *Task)
	TaskFailed(*Trace, *Task, error)
}
