package mkfs

import (
	"path/filepath"
	"slices"
	"testing"

	"git.fractalqb.de/fractalqb/mkconv/mkore"
	"git.fractalqb.de/fractalqb/testerr"
)

func TestTree_Files(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, filepath.Join(dir, "src"), map[string]string{
		"org/ex/A.java":    "class A {}",
		"org/ex/B.java":    "class B {}",
		"org/ex/logic.txt": "text",
		"README.md":        "read me",
	})
	prj := mkore.NewBuild(dir, "alpha").Root()
	src := mkore.FixedPath("src")

	java := testerr.Shall1(FilesWithExt(src, ".java").Files(prj)).BeNil(t)
	want := []string{filepath.Join("org", "ex", "A.java"), filepath.Join("org", "ex", "B.java")}
	if !slices.Equal(java, want) {
		t.Errorf("java files %v", java)
	}

	other := testerr.Shall1(Tree{Dir: src, Filter: Not(Ext(".java"))}.Files(prj)).BeNil(t)
	want = []string{"README.md", filepath.Join("org", "ex", "logic.txt")}
	if !slices.Equal(other, want) {
		t.Errorf("other files %v", other)
	}

	md := testerr.Shall1(Tree{Dir: src, Filter: NameMatch("*.md")}.Files(prj)).BeNil(t)
	if !slices.Equal(md, []string{"README.md"}) {
		t.Errorf("markdown files %v", md)
	}

	none := testerr.Shall1(Tree{Dir: mkore.FixedPath("missing")}.Files(prj)).BeNil(t)
	if len(none) != 0 {
		t.Errorf("files in missing dir %v", none)
	}
}
