package mkore

import (
	"context"
	"io"
	"testing"
	"time"
)

type testTracer struct{ t *testing.T }

var _ Tracer = testTracer{}

func newTestTrace(t *testing.T) *Trace {
	return NewTrace(context.Background(), testTracer{t})
}

func (tr testTracer) Debug(_ *Trace, msg string, args ...any) {
	tr.t.Logf("mkore-DEBUG: %s %v", msg, args)
}

func (tr testTracer) Info(_ *Trace, msg string, args ...any) {
	tr.t.Logf("mkore-INFO: %s %v", msg, args)
}

func (tr testTracer) Warn(_ *Trace, msg string, args ...any) {
	tr.t.Logf("mkore-WARN: %s %v", msg, args)
}

func (tr testTracer) StartBuild(_ *Trace, b *Build, activity string) {
	tr.t.Logf("mkore-StartBuild: %s %s", b, activity)
}

func (tr testTracer) DoneBuild(_ *Trace, b *Build, activity string, dt time.Duration) {
	tr.t.Logf("mkore-DoneBuild: %s %s %s", b, activity, dt)
}

func (tr testTracer) RunTask(_ *Trace, t *Task) { tr.t.Logf("mkore-RunTask: %s", t) }

func (tr testTracer) RunImplicitTask(_ *Trace, t *Task) {
	tr.t.Logf("mkore-RunImplicitTask: %s", t)
}

func (tr testTracer) TaskUpToDate(_ *Trace, t *Task) { tr.t.Logf("mkore-TaskUpToDate: %s", t) }

func (tr testTracer) TaskFailed(_ *Trace, t *Task, err error) {
	tr.t.Logf("mkore-TaskFailed: %s: %s", t, err)
}

func (tr testTracer) RemoveOutput(_ *Trace, t *Task, path string) {
	tr.t.Logf("mkore-RemoveOutput: %s: %s", t, path)
}

// recordOp appends the task path to a shared log when done and writes out
// to the task's output.
type recordOp struct {
	log  *[]string
	out  string
	fail error
}

func (op recordOp) Describe(t *Task, _ *Env) string { return "record " + t.Path() }

func (op recordOp) Do(_ *Trace, t *Task, env *Env) error {
	*op.log = append(*op.log, t.Path())
	if op.out != "" {
		io.WriteString(env.Out, op.out)
	}
	return op.fail
}
