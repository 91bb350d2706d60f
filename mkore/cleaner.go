package mkore

import (
	"os"
	"time"
)

// Clean removes the declared outputs of all tasks in all projects of b.
// Failing removals are reported as warnings.
func Clean(b *Build, dryrun bool, tr *Trace) error {
	b.LockBuild()
	defer b.Unlock()
	start := time.Now()
	tr = tr.pushBuild(b)
	tr.startBuild(b, "cleaning")
	for _, prj := range b.Projects() {
		for _, t := range prj.Tasks() {
			ttr := tr.pushTask(t)
			for _, path := range t.OutputPaths() {
				if _, err := os.Stat(path); err != nil {
					continue
				}
				ttr.removeOutput(t, path)
				if dryrun {
					continue
				}
				if err := os.RemoveAll(path); err != nil {
					ttr.Warn(err.Error())
				}
			}
		}
	}
	tr.doneBuild(b, "cleaning", time.Since(start))
	return nil
}

type CleanTracer interface {
	TracerCommon

	RemoveOutput(t *Trace, task *Task, path string)
}
