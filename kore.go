package mkconv

import (
	"errors"
	"fmt"

	"git.fractalqb.de/fractalqb/mkconv/mkore"
)

type (
	Build         = mkore.Build
	Project       = mkore.Project
	Task          = mkore.Task
	Configuration = mkore.Configuration
	Env           = mkore.Env
	Trace         = mkore.Trace
)

func NewBuild(rootDir, rootName string) *Build { return mkore.NewBuild(rootDir, rootName) }

// Edit calls do with wrappers of [mkore] types that allow easy editing of
// project definitions. Edit recovers from any panic and returns it as an error,
// so the idiomatic error handling within do can be skipped.
func Edit(prj *Project, do func(ProjectEd)) (err error) {
	prj.Lock()
	defer prj.Unlock()
	defer recoverEd(&err)
	do(ProjectEd{prj})
	return
}

func recoverEd(err *error) {
	if p := recover(); p != nil {
		switch p := p.(type) {
		case error:
			*err = p
		case string:
			*err = errors.New(p)
		default:
			*err = fmt.Errorf("panic: %+v", p)
		}
	}
}

func OpFunc(desc string, f func(*Trace, *Task, *Env) error) mkore.Operation {
	return funcOp{desc: desc, f: f}
}

type funcOp struct {
	desc string
	f    func(*Trace, *Task, *Env) error
}

func (fo funcOp) Describe(*Task, *Env) string { return fo.desc }

func (fo funcOp) Do(tr *Trace, t *Task, env *Env) error {
	tr.Debug("call `function`", `function`, fo.desc)
	return fo.f(tr, t, env)
}

func mustEd(err error) {
	if err != nil {
		panic(err)
	}
}

func mustRet[T any](v T, err error) T {
	mustEd(err)
	return v
}
