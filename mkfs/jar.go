package mkfs

import (
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"git.fractalqb.de/fractalqb/mkconv/mkore"
	"github.com/klauspost/compress/zip"
)

const ManifestPath = "META-INF/MANIFEST.MF"

// Jar [mkore.Operation] packs the content of Dirs into the Java archive
// Archive. The manifest is always the first entry. Missing directories are
// skipped. Of entries with equal names, the one from the first dir wins.
type Jar struct {
	Dirs     []mkore.PathProvider
	Archive  mkore.PathProvider
	Manifest map[string]string

	// MkDirMode, if not 0, is used to create the archive's directory
	MkDirMode fs.FileMode
}

var _ mkore.Operation = (*Jar)(nil)

func (j *Jar) Describe(*mkore.Task, *mkore.Env) string {
	return "jar " + filepath.Base(j.Archive.Path())
}

func (j *Jar) Do(tr *mkore.Trace, t *mkore.Task, _ *mkore.Env) error {
	prj := t.Project()
	archive := prj.AbsPath(j.Archive.Path())
	if err := provideDir(filepath.Dir(archive), j.MkDirMode); err != nil {
		return err
	}
	f, err := os.Create(archive)
	if err != nil {
		return err
	}
	if err = j.write(tr, f, prj); err != nil {
		f.Close()
		os.Remove(archive)
		return fmt.Errorf("jar %s: %w", archive, err)
	}
	return f.Close()
}

func (j *Jar) write(tr *mkore.Trace, w io.Writer, prj *mkore.Project) error {
	zw := zip.NewWriter(w)
	if _, err := zw.Create("META-INF/"); err != nil {
		return err
	}
	mw, err := zw.Create(ManifestPath)
	if err != nil {
		return err
	}
	if _, err = io.WriteString(mw, j.manifest()); err != nil {
		return err
	}
	seen := map[string]bool{"META-INF": true, ManifestPath: true}
	for _, dir := range j.Dirs {
		root := prj.AbsPath(dir.Path())
		err = Tree{}.ls(root, func(p string, e fs.DirEntry) error {
			name := filepath.ToSlash(p)
			if seen[name] {
				return nil
			}
			seen[name] = true
			if e.IsDir() {
				_, err := zw.Create(name + "/")
				return err
			}
			tr.Debug("jar add `entry`", `entry`, name)
			return addFile(zw, name, filepath.Join(root, p))
		})
		if err != nil {
			return err
		}
	}
	return zw.Close()
}

func addFile(zw *zip.Writer, name, path string) error {
	r, err := os.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()
	st, err := r.Stat()
	if err != nil {
		return err
	}
	hdr, err := zip.FileInfoHeader(st)
	if err != nil {
		return err
	}
	hdr.Name = name
	hdr.Method = zip.Deflate
	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, r)
	return err
}

func (j *Jar) manifest() string {
	var sb strings.Builder
	sb.WriteString("Manifest-Version: 1.0\r\n")
	for _, k := range slices.Sorted(maps.Keys(j.Manifest)) {
		if k == "Manifest-Version" {
			continue
		}
		fmt.Fprintf(&sb, "%s: %s\r\n", k, j.Manifest[k])
	}
	sb.WriteString("\r\n")
	return sb.String()
}
