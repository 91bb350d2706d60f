package mkfs

import (
	"fmt"
	"os"

	"git.fractalqb.de/fractalqb/mkconv/mkore"
)

// Delete [mkore.Operation] removes files and directories recursively. Missing
// paths are not an error.
type Delete struct {
	Paths []mkore.PathProvider
}

var _ mkore.Operation = Delete{}

func (Delete) Describe(*mkore.Task, *mkore.Env) string { return "FS delete" }

func (d Delete) Do(tr *mkore.Trace, t *mkore.Task, _ *mkore.Env) error {
	for _, p := range d.Paths {
		path := t.Project().AbsPath(p.Path())
		if ok, err := Exists(path); err != nil {
			return err
		} else if !ok {
			continue
		}
		tr.Debug("FS delete `path`", `path`, path)
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("FS delete: %w", err)
		}
	}
	return nil
}
