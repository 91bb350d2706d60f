package mkfs

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"git.fractalqb.de/fractalqb/mkconv/mkore"
)

// Copy [mkore.Operation] copies the files of the Src tree into the Dest
// directory keeping their relative paths. With MkDirMode set, Dest is created
// even if Src is empty.
type Copy struct {
	Src       Tree
	Dest      mkore.PathProvider
	MkDirMode fs.FileMode
}

var _ mkore.Operation = Copy{}

func (cp Copy) Describe(*mkore.Task, *mkore.Env) string {
	return fmt.Sprintf("FS copy %s -> %s", cp.Src.Dir.Path(), cp.Dest.Path())
}

func (cp Copy) Do(tr *mkore.Trace, t *mkore.Task, _ *mkore.Env) error {
	prj := t.Project()
	srcRoot := prj.AbsPath(cp.Src.Dir.Path())
	dstRoot := prj.AbsPath(cp.Dest.Path())
	files, err := cp.Src.Files(prj)
	if err != nil {
		return err
	}
	if err := provideDir(dstRoot, cp.MkDirMode); err != nil {
		return err
	}
	for _, f := range files {
		if err := cp.copyFile(tr, filepath.Join(dstRoot, f), filepath.Join(srcRoot, f)); err != nil {
			return fmt.Errorf("FS copy: %w", err)
		}
	}
	return nil
}

func (cp Copy) copyFile(tr *mkore.Trace, dst, src string) error {
	if src == dst {
		return nil
	}
	sstat, err := os.Stat(src)
	if err != nil {
		return err
	}
	tr.Debug("FS copy: `src` -> `dst`", `src`, src, `dst`, dst)
	if err := provideDir(filepath.Dir(dst), cp.MkDirMode); err != nil {
		return err
	}
	w, err := os.OpenFile(dst,
		os.O_CREATE|os.O_TRUNC|os.O_WRONLY,
		sstat.Mode().Perm(),
	)
	if err != nil {
		return err
	}
	defer w.Close()
	r, err := os.Open(src)
	if err != nil {
		return err
	}
	defer r.Close()
	_, err = io.Copy(w, r)
	return err
}
