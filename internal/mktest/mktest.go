// Package mktest has helpers for tests of build conventions.
package mktest

import (
	"context"
	"testing"
	"time"

	"git.fractalqb.de/fractalqb/mkconv/mkore"
)

// Tracer logs all trace events with t.Logf.
type Tracer struct{ T testing.TB }

var _ mkore.Tracer = Tracer{}

func NewTrace(t testing.TB) *mkore.Trace {
	return mkore.NewTrace(context.Background(), Tracer{t})
}

func (tr Tracer) Debug(_ *mkore.Trace, msg string, args ...any) {
	tr.T.Logf("mk-DEBUG: %s %v", msg, args)
}

func (tr Tracer) Info(_ *mkore.Trace, msg string, args ...any) {
	tr.T.Logf("mk-INFO: %s %v", msg, args)
}

func (tr Tracer) Warn(_ *mkore.Trace, msg string, args ...any) {
	tr.T.Logf("mk-WARN: %s %v", msg, args)
}

func (tr Tracer) StartBuild(_ *mkore.Trace, b *mkore.Build, activity string) {
	tr.T.Logf("mk-StartBuild: %s %s", b, activity)
}

func (tr Tracer) DoneBuild(_ *mkore.Trace, b *mkore.Build, activity string, dt time.Duration) {
	tr.T.Logf("mk-DoneBuild: %s %s %s", b, activity, dt)
}

func (tr Tracer) RunTask(_ *mkore.Trace, t *mkore.Task) { tr.T.Logf("mk-RunTask: %s", t) }

func (tr Tracer) RunImplicitTask(_ *mkore.Trace, t *mkore.Task) {
	tr.T.Logf("mk-RunImplicitTask: %s", t)
}

func (tr Tracer) TaskUpToDate(_ *mkore.Trace, t *mkore.Task) {
	tr.T.Logf("mk-TaskUpToDate: %s", t)
}

func (tr Tracer) TaskFailed(_ *mkore.Trace, t *mkore.Task, err error) {
	tr.T.Logf("mk-TaskFailed: %s: %s", t, err)
}

func (tr Tracer) RemoveOutput(_ *mkore.Trace, t *mkore.Task, path string) {
	tr.T.Logf("mk-RemoveOutput: %s: %s", t, path)
}

// Run builds the tasks with a fresh builder and an environment without
// output.
func Run(t testing.TB, tasks ...*mkore.Task) (*mkore.Builder, error) {
	bd, err := mkore.NewBuilder(NewTrace(t), &mkore.Env{})
	if err != nil {
		return nil, err
	}
	return bd, bd.Tasks(tasks...)
}

// Recorder is an operation that records the paths of the tasks it is run
// for.
type Recorder struct {
	Ran []string
}

func (r *Recorder) Describe(t *mkore.Task, _ *mkore.Env) string { return "record " + t.Path() }

func (r *Recorder) Do(_ *mkore.Trace, t *mkore.Task, _ *mkore.Env) error {
	r.Ran = append(r.Ran, t.Path())
	return nil
}
