package mkore

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

type TracerCommon interface {
	Debug(t *Trace, msg string, args ...any)
	Info(t *Trace, msg string, args ...any)
	Warn(t *Trace, msg string, args ...any)

	StartBuild(t *Trace, b *Build, activity string)
	DoneBuild(t *Trace, b *Build, activity string, dt time.Duration)
}

type Tracer interface {
	BuildTracer
	CleanTracer
}

type TraceLog int

var DefaultTraceLog TraceLog = TraceWarn

const (
	TraceWarn TraceLog = (1 << iota)
	TraceInfo
	TraceDebug
)

// Trace follows a single build through the task graph. Traces are pushed for
// each task that is visited, allowing tracers to tag their output.
type Trace struct {
	root *traceRoot
	up   *Trace
	obj  any
	id   uint64
}

func NewTrace(ctx context.Context, t Tracer) *Trace {
	if ctx == nil {
		ctx = context.Background()
	}
	root := &traceRoot{ctx: ctx, tr: t}
	return &Trace{root: root}
}

func (t *Trace) Ctx() context.Context { return t.root.ctx }

func (t *Trace) Debug(msg string, args ...any) { t.root.tr.Debug(t, msg, args...) }
func (t *Trace) Info(msg string, args ...any)  { t.root.tr.Info(t, msg, args...) }
func (t *Trace) Warn(msg string, args ...any)  { t.root.tr.Warn(t, msg, args...) }

func (t *Trace) startBuild(b *Build, activity string) {
	t.root.build = b
	t.root.tr.StartBuild(t, b, activity)
}

func (t *Trace) doneBuild(b *Build, activity string, dt time.Duration) {
	t.root.tr.DoneBuild(t, b, activity, dt)
	t.root.build = nil
}

func (t *Trace) runTask(task *Task)               { t.root.tr.RunTask(t, task) }
func (t *Trace) runImplicitTask(task *Task)       { t.root.tr.RunImplicitTask(t, task) }
func (t *Trace) taskUpToDate(task *Task)          { t.root.tr.TaskUpToDate(t, task) }
func (t *Trace) taskFailed(task *Task, err error) { t.root.tr.TaskFailed(t, task, err) }
func (t *Trace) removeOutput(task *Task, path string) {
	t.root.tr.RemoveOutput(t, task, path)
}

// Build returns the id of the build that is traced or 0 if no build is
// running.
func (t *Trace) Build() BuildID {
	if t.root == nil || t.root.build == nil {
		return 0
	}
	return t.root.build.lastBuild
}

func (t *Trace) TopID() uint64 { return t.id }

func (t *Trace) TopTag() string {
	switch obj := t.obj.(type) {
	case *Task:
		return fmt.Sprintf("(%d)", t.id)
	case *Build:
		return fmt.Sprintf("{%d}", t.id)
	case nil:
		return ""
	default:
		return fmt.Sprintf("!%T!", obj)
	}
}

func (t *Trace) Path() string {
	var sb strings.Builder
	sb.WriteByte('<')
	for ; t != nil; t = t.up {
		sb.WriteString(t.TopTag())
	}
	sb.WriteByte('>')
	return sb.String()
}

func (t *Trace) String() string {
	if t.root.build == nil {
		return t.Path()
	}
	return fmt.Sprintf("%d@%s", t.Build(), t.Path())
}

func (t *Trace) pushBuild(b *Build) *Trace {
	return &Trace{
		root: t.root,
		up:   t,
		obj:  b,
		id:   t.root.idSeq.Add(1),
	}
}

func (t *Trace) pushTask(task *Task) *Trace {
	return &Trace{
		root: t.root,
		up:   t,
		obj:  task,
		id:   t.root.idSeq.Add(1),
	}
}

type traceRoot struct {
	ctx   context.Context
	tr    Tracer
	build *Build
	idSeq atomic.Uint64
}
