package license

import (
	"testing"

	"git.fractalqb.de/fractalqb/mkconv/internal/mktest"
	"git.fractalqb.de/fractalqb/mkconv/mkore"
	"git.fractalqb.de/fractalqb/mkconv/plugin/base"
	"git.fractalqb.de/fractalqb/testerr"
)

func TestApply(t *testing.T) {
	prj := mkore.NewBuild(t.TempDir(), "alpha").Root()
	x := testerr.Shall1(Apply(prj)).BeNil(t)
	bx := testerr.Shall1(base.Lookup(prj)).BeNil(t)
	if !bx.Check.DependsOnTask(CheckLicenses) {
		t.Error("check does not depend on checkLicenses")
	}
	if x.HeaderFile != DefaultHeaderFile {
		t.Errorf("header file '%s'", x.HeaderFile)
	}
	testerr.Shall1(mktest.Run(t, bx.Check)).BeNil(t)
}

func TestCheck_tool(t *testing.T) {
	prj := mkore.NewBuild(t.TempDir(), "alpha").Root()
	x := testerr.Shall1(Apply(prj)).BeNil(t)
	x.Tool = []string{"false"}
	if _, err := mktest.Run(t, x.CheckLicenses); err == nil {
		t.Error("failing license tool did not fail the build")
	}
	x.Tool = []string{"true"}
	testerr.Shall1(mktest.Run(t, x.CheckLicenses)).BeNil(t)
}
