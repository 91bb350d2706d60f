package mkconv

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"git.fractalqb.de/fractalqb/mkconv/mkore"
	"git.fractalqb.de/fractalqb/sllm/v3"
)

type WriteTracer struct {
	W   io.Writer
	Log mkore.TraceLog
}

var _ mkore.Tracer = (*WriteTracer)(nil)

func DefaultTracer() *WriteTracer {
	return &WriteTracer{W: os.Stderr, Log: mkore.DefaultTraceLog}
}

func (tr *WriteTracer) ParseLogFlag(f string) error {
	switch f {
	case "":
		return nil
	case "off":
		tr.Log = 0
	case "warn", "w":
		tr.Log = mkore.TraceWarn
	case "info", "i":
		tr.Log = mkore.TraceWarn | mkore.TraceInfo
	case "debug", "d":
		tr.Log = mkore.TraceWarn | mkore.TraceInfo | mkore.TraceDebug
	default:
		return fmt.Errorf("write tracer: illegal log flag '%s'", f)
	}
	return nil
}

func (tr *WriteTracer) Debug(t *mkore.Trace, msg string, args ...any) {
	if tr.Log&mkore.TraceDebug == 0 {
		return
	}
	tr.msg(t, "DEBUG", msg, args)
}

func (tr *WriteTracer) Info(t *mkore.Trace, msg string, args ...any) {
	if tr.Log&(mkore.TraceInfo|mkore.TraceDebug) == 0 {
		return
	}
	tr.msg(t, "INFO ", msg, args)
}

func (tr *WriteTracer) Warn(t *mkore.Trace, msg string, args ...any) {
	if tr.Log == 0 {
		return
	}
	tr.msg(t, "WARN ", msg, args)
}

func (tr *WriteTracer) msg(t *mkore.Trace, level, msg string, args []any) {
	fmt.Fprintf(tr.W, "%d@%s\t  %s ", t.Build(), t.TopTag(), level)
	sllm.Fprint(tr.W, msg, sllmArgs(args).append)
	fmt.Fprintln(tr.W)
}

func (tr *WriteTracer) StartBuild(t *mkore.Trace, b *mkore.Build, activity string) {
	fmt.Fprintf(tr.W, "%d@%s\t{ %s %s in %s\n",
		t.Build(),
		t.TopTag(),
		activity,
		b,
		b.RootDir,
	)
}

func (tr *WriteTracer) DoneBuild(t *mkore.Trace, b *mkore.Build, activity string, dt time.Duration) {
	fmt.Fprintf(tr.W, "%d@%s\t} %s %s took %s\n",
		t.Build(),
		t.TopTag(),
		activity,
		b,
		dt,
	)
}

func (tr *WriteTracer) logTasks() bool {
	return tr.Log&(mkore.TraceInfo|mkore.TraceDebug) != 0
}

func (tr *WriteTracer) RunTask(t *mkore.Trace, task *mkore.Task) {
	if tr.Log != 0 {
		fmt.Fprintf(tr.W, "%d@%s\t> %s\n", t.Build(), t.TopTag(), task)
	}
}

func (tr *WriteTracer) RunImplicitTask(t *mkore.Trace, task *mkore.Task) {
	if tr.Log&mkore.TraceDebug != 0 {
		fmt.Fprintf(tr.W, "%d@%s\t  implicit %s\n", t.Build(), t.TopTag(), task)
	}
}

func (tr *WriteTracer) TaskUpToDate(t *mkore.Trace, task *mkore.Task) {
	if tr.logTasks() {
		fmt.Fprintf(tr.W, "%d@%s\t. %s is up-to-date\n", t.Build(), t.TopTag(), task)
	}
}

func (tr *WriteTracer) TaskFailed(t *mkore.Trace, task *mkore.Task, err error) {
	fmt.Fprintf(tr.W, "%d@%s\t! %s failed: %s\n", t.Build(), t.TopTag(), task, err)
}

func (tr *WriteTracer) RemoveOutput(t *mkore.Trace, task *mkore.Task, path string) {
	if tr.Log != 0 {
		fmt.Fprintf(tr.W, "%d@%s\t! remove output of %s: %s\n",
			t.Build(),
			t.TopTag(),
			task,
			path,
		)
	}
}

type sllmArgs []any

func (as sllmArgs) append(buf []byte, _ int, n string) ([]byte, error) {
	for len(as) > 0 {
		switch k := as[0].(type) {
		case string:
			if len(as) == 1 {
				return buf, fmt.Errorf("no value for key '%s'", n)
			}
			if k == n {
				return sllm.AppendArg(buf, as[1]), nil
			}
			as = as[2:]
		case slog.Attr:
			if k.Key == n {
				return sllm.AppendArg(buf, k.Value), nil
			}
			as = as[1:]
		default:
			return buf, fmt.Errorf("illegal key type %T", k)
		}
	}
	return buf, fmt.Errorf("no key '%s'", n)
}
