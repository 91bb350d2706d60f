package mkore

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
)

// Env is the environment tasks are executed in: standard I/O and the
// variables passed to external tools. Sub environments inherit the variables
// of their parent unless they override or delete them.
type Env struct {
	In       io.Reader
	Out, Err io.Writer

	vars    map[string]string
	deleted map[string]bool
	xenv    []string
	xenvErr error
	parent  *Env
}

// DefaultEnv uses the process' standard I/O and environment.
func DefaultEnv(tr *Trace) *Env {
	env := &Env{
		In:   os.Stdin,
		Out:  os.Stdout,
		Err:  os.Stderr,
		vars: make(map[string]string),
	}
	for _, evar := range os.Environ() {
		k, v, _ := strings.Cut(evar, "=")
		if k == "" {
			if tr != nil {
				tr.Warn("ignoring default `env`", `env`, evar)
			}
			continue
		}
		env.vars[k] = v
	}
	return env
}

func (e *Env) Sub() *Env {
	return &Env{
		In: e.In, Out: e.Out, Err: e.Err,
		parent: e,
	}
}

// TaskEnv returns a sub environment whose output lines are tagged with the
// path of task t. See [TaskWriter].
func (e *Env) TaskEnv(t *Task) *Env {
	sub := e.Sub()
	if e.Out != nil {
		sub.Out = NewTaskWriter(e.Out, t)
	}
	if e.Err != nil {
		sub.Err = NewTaskWriter(e.Err, t)
	}
	return sub
}

// FinishTask terminates incomplete output lines of a task environment.
func (e *Env) FinishTask() {
	for _, w := range []io.Writer{e.Out, e.Err} {
		if tw, ok := w.(*TaskWriter); ok {
			tw.Finish()
		}
	}
}

func (e *Env) Clone() *Env {
	return &Env{
		In: e.In, Out: e.Out, Err: e.Err,
		vars: e.merged(),
	}
}

func (e *Env) Var(key string) (string, bool) {
	for e != nil {
		if v, ok := e.vars[key]; ok {
			return v, true
		}
		if e.deleted[key] {
			break
		}
		e = e.parent
	}
	return "", false
}

func (e *Env) SetVar(key, val string) {
	if e.vars == nil {
		e.vars = make(map[string]string)
	}
	e.vars[key] = val
	delete(e.deleted, key)
	e.clearXEnv()
}

// SetVars sets variables from "key=value" strings. A string without '='
// sets key to the empty string.
func (e *Env) SetVars(env ...string) {
	for _, evar := range env {
		k, v, _ := strings.Cut(evar, "=")
		e.SetVar(k, v)
	}
}

func (e *Env) SetVarsMap(vars map[string]string) {
	for k, v := range vars {
		e.SetVar(k, v)
	}
}

func (e *Env) DelVar(key string) {
	delete(e.vars, key)
	if e.parent != nil {
		if e.deleted == nil {
			e.deleted = make(map[string]bool)
		}
		e.deleted[key] = true
	}
	e.clearXEnv()
}

type NonXEnvKeys []string

func (e NonXEnvKeys) Error() string {
	return fmt.Sprintf("illegal exec env keys: %s", strings.Join(e, ", "))
}

func (NonXEnvKeys) Is(target error) bool {
	_, ok := target.(NonXEnvKeys)
	return ok
}

// ExecEnv returns the variables in the form expected by os/exec, sorted by
// key. Keys that cannot be passed to a process are reported as
// [NonXEnvKeys] error.
func (e *Env) ExecEnv() ([]string, error) {
	if e.xenv == nil {
		var errKeys []string
		vars := e.merged()
		keys := slices.Sorted(maps.Keys(vars))
		for _, k := range keys {
			switch {
			case k == "":
				errKeys = append(errKeys, `""`)
			case strings.ContainsRune(k, '='):
				errKeys = append(errKeys, k)
			default:
				e.xenv = append(e.xenv, k+"="+vars[k])
			}
		}
		if len(errKeys) > 0 {
			e.xenvErr = NonXEnvKeys(errKeys)
		}
	}
	return e.xenv, e.xenvErr
}

func (e *Env) clearXEnv() {
	e.xenv = nil
	e.xenvErr = nil
}

func (e *Env) merged() map[string]string {
	if e.parent == nil {
		if e.vars == nil {
			return make(map[string]string)
		}
		return maps.Clone(e.vars)
	}
	res := e.parent.merged()
	for k := range e.deleted {
		delete(res, k)
	}
	maps.Copy(res, e.vars)
	return res
}
