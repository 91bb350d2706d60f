package mkfs

import (
	"io/fs"
	"os"

	"git.fractalqb.de/fractalqb/mkconv/mkore"
)

// MkDirs [mkore.Operation] creates directories with all missing parents.
type MkDirs struct {
	Paths []mkore.PathProvider
	Mode  fs.FileMode
}

var _ mkore.Operation = MkDirs{}

func (MkDirs) Describe(*mkore.Task, *mkore.Env) string { return "FS mkdirs" }

func (md MkDirs) Do(tr *mkore.Trace, t *mkore.Task, _ *mkore.Env) error {
	mode := md.Mode
	if mode == 0 {
		mode = 0777
	}
	for _, p := range md.Paths {
		path := t.Project().AbsPath(p.Path())
		tr.Debug("FS mkdir `path`", `path`, path)
		if err := os.MkdirAll(path, mode); err != nil {
			return err
		}
	}
	return nil
}
