package mkfs

import (
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"git.fractalqb.de/fractalqb/mkconv/internal/mktest"
	"git.fractalqb.de/fractalqb/mkconv/mkore"
	"git.fractalqb.de/fractalqb/testerr"
	"github.com/klauspost/compress/zip"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		testerr.Shall(os.MkdirAll(filepath.Dir(path), 0777)).BeNil(t)
		testerr.Shall(os.WriteFile(path, []byte(content), 0644)).BeNil(t)
	}
}

func TestJar(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, filepath.Join(dir, "build", "classes"), map[string]string{
		"org/ex/B.class": "B",
		"org/ex/A.class": "A",
	})
	writeFiles(t, filepath.Join(dir, "build", "resources"), map[string]string{
		"logic.txt":      "text",
		"org/ex/A.class": "shadowed",
	})
	prj := mkore.NewBuild(dir, "alpha").Root()
	task := testerr.Shall1(prj.Register("jar", &Jar{
		Dirs: []mkore.PathProvider{
			mkore.FixedPath("build/classes"),
			mkore.FixedPath("build/resources"),
		},
		Archive:   mkore.FixedPath("build/libs/alpha.jar"),
		Manifest:  map[string]string{"Implementation-Title": "alpha"},
		MkDirMode: 0777,
	})).BeNil(t)
	testerr.Shall1(mktest.Run(t, task)).BeNil(t)

	zr := testerr.Shall1(zip.OpenReader(filepath.Join(dir, "build", "libs", "alpha.jar"))).BeNil(t)
	defer zr.Close()
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	want := []string{
		"META-INF/",
		ManifestPath,
		"org/",
		"org/ex/",
		"org/ex/A.class",
		"org/ex/B.class",
		"logic.txt",
	}
	if !slices.Equal(names, want) {
		t.Errorf("entries %v", names)
	}
	r := testerr.Shall1(zr.File[1].Open()).BeNil(t)
	mf := testerr.Shall1(io.ReadAll(r)).BeNil(t)
	r.Close()
	if s := string(mf); s != "Manifest-Version: 1.0\r\nImplementation-Title: alpha\r\n\r\n" {
		t.Errorf("manifest %q", s)
	}
	for _, f := range zr.File {
		if f.Name != "org/ex/A.class" {
			continue
		}
		r := testerr.Shall1(f.Open()).BeNil(t)
		data := testerr.Shall1(io.ReadAll(r)).BeNil(t)
		r.Close()
		if string(data) != "A" {
			t.Errorf("A.class from wrong dir: '%s'", data)
		}
	}
}

func TestJar_noDir(t *testing.T) {
	dir := t.TempDir()
	prj := mkore.NewBuild(dir, "alpha").Root()
	task := testerr.Shall1(prj.Register("jar", &Jar{
		Dirs:      []mkore.PathProvider{mkore.FixedPath("build/classes")},
		Archive:   mkore.FixedPath("build/libs/alpha.jar"),
		MkDirMode: 0777,
	})).BeNil(t)
	testerr.Shall1(mktest.Run(t, task)).BeNil(t)
	zr := testerr.Shall1(zip.OpenReader(filepath.Join(dir, "build", "libs", "alpha.jar"))).BeNil(t)
	defer zr.Close()
	if len(zr.File) != 2 {
		t.Errorf("%d entries in empty jar", len(zr.File))
	}
}

func TestCopyAndDelete(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, filepath.Join(dir, "src", "main", "resources"), map[string]string{
		"a.txt":     "a",
		"sub/b.txt": "b",
	})
	prj := mkore.NewBuild(dir, "alpha").Root()
	cp := testerr.Shall1(prj.Register("processResources", Copy{
		Src:       Tree{Dir: mkore.FixedPath("src/main/resources")},
		Dest:      mkore.FixedPath("build/resources"),
		MkDirMode: 0777,
	})).BeNil(t)
	testerr.Shall1(mktest.Run(t, cp)).BeNil(t)
	data := testerr.Shall1(os.ReadFile(filepath.Join(dir, "build", "resources", "sub", "b.txt"))).BeNil(t)
	if string(data) != "b" {
		t.Errorf("copied content '%s'", data)
	}

	del := testerr.Shall1(prj.Register("clean", Delete{
		Paths: []mkore.PathProvider{mkore.FixedPath("build"), mkore.FixedPath("nope")},
	})).BeNil(t)
	testerr.Shall1(mktest.Run(t, del)).BeNil(t)
	if ok := testerr.Shall1(Exists(filepath.Join(dir, "build"))).BeNil(t); ok {
		t.Error("build dir not deleted")
	}
}

func TestTree_FilesMissingDir(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"src/org/ex/A.java": "",
		"src/org/ex/B.java": "",
		"src/org/ex/c.txt":  "",
	})
	prj := mkore.NewBuild(dir, "alpha").Root()
	ls := testerr.Shall1(FilesWithExt(mkore.FixedPath("src"), ".java").Files(prj)).BeNil(t)
	want := []string{
		filepath.Join("org", "ex", "A.java"),
		filepath.Join("org", "ex", "B.java"),
	}
	if !slices.Equal(ls, want) {
		t.Errorf("files %v", ls)
	}
	ls = testerr.Shall1(FilesWithExt(mkore.FixedPath("nope"), ".java").Files(prj)).BeNil(t)
	if len(ls) != 0 {
		t.Errorf("files in missing dir %v", ls)
	}
}

func TestDigest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	testerr.Shall(os.WriteFile(path, []byte("x"), 0644)).BeNil(t)
	d1 := testerr.Shall1(Digest(path)).BeNil(t)
	if len(d1) != 64 {
		t.Errorf("digest length %d", len(d1))
	}
	testerr.Shall(os.WriteFile(path, []byte("y"), 0644)).BeNil(t)
	d2 := testerr.Shall1(Digest(path)).BeNil(t)
	if d1 == d2 {
		t.Error("digest did not change")
	}
}
