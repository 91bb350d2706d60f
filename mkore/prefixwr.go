package mkore

import (
	"bytes"
	"io"
)

// TaskWriter tags every line written through it with the path of its task,
// e.g. "[:alpha:remap] ". An incomplete last line is kept open until more
// output arrives or [TaskWriter.Finish] is called.
type TaskWriter struct {
	w      io.Writer
	task   *Task
	tag    []byte
	inLine bool
}

func NewTaskWriter(w io.Writer, t *Task) *TaskWriter {
	return &TaskWriter{
		w:    w,
		task: t,
		tag:  []byte("[" + t.Path() + "] "),
	}
}

func (tw *TaskWriter) Task() *Task { return tw.task }

func (tw *TaskWriter) Write(p []byte) (n int, err error) {
	for len(p) > 0 {
		if !tw.inLine {
			if _, err = tw.w.Write(tw.tag); err != nil {
				return n, err
			}
			tw.inLine = true
		}
		line, _, found := bytes.Cut(p, []byte{'\n'})
		if found {
			line = p[:len(line)+1]
		}
		m, err := tw.w.Write(line)
		n += m
		if err != nil {
			return n, err
		}
		if found {
			tw.inLine = false
		}
		p = p[len(line):]
	}
	return n, nil
}

// Finish terminates an incomplete last line with a newline.
func (tw *TaskWriter) Finish() error {
	if !tw.inLine {
		return nil
	}
	tw.inLine = false
	_, err := tw.w.Write([]byte{'\n'})
	return err
}
