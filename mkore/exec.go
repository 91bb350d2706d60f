package mkore

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// CmdOp runs an external command. Relative CWD, InFile and OutFile are
// relative to the task's project directory.
type CmdOp struct {
	CWD             string
	Exe             string
	Args            []string
	InFile, OutFile string
	Desc            string
}

var _ Operation = (*CmdOp)(nil)

func (op *CmdOp) Describe(*Task, *Env) string {
	if op.Desc == "" {
		return fmt.Sprintf("%s%v", filepath.Base(op.Exe), op.Args)
	}
	return op.Desc
}

func (op *CmdOp) Do(tr *Trace, t *Task, env *Env) error {
	xenv, err := env.ExecEnv()
	if err != nil {
		tr.Warn(err.Error(), `task`, t)
	}
	abs := func(p string) string {
		if t == nil {
			return p
		}
		return t.Project().AbsPath(p)
	}
	cmd := exec.CommandContext(tr.Ctx(), op.Exe, op.Args...)
	if op.CWD != "" {
		cmd.Dir = abs(op.CWD)
	} else if t != nil {
		cmd.Dir = t.Project().Dir()
	}
	cmd.Env = xenv
	if op.InFile != "" {
		r, err := os.Open(abs(op.InFile))
		if err != nil {
			return err
		}
		defer r.Close()
		cmd.Stdin = r
	} else {
		cmd.Stdin = env.In
	}
	if op.OutFile != "" {
		w, err := os.Create(abs(op.OutFile))
		if err != nil {
			return err
		}
		defer w.Close()
		cmd.Stdout = w
	} else {
		cmd.Stdout = env.Out
	}
	cmd.Stderr = env.Err
	tr.Debug("exec `cmd` in `dir`", `cmd`, cmd.String(), `dir`, cmd.Dir)
	if err = cmd.Run(); err != nil {
		tr.Warn("failed `cmd` in `dir` with `error`",
			`cmd`, cmd.String(),
			`dir`, cmd.Dir,
			`error`, err,
		)
	}
	return err
}
