// This is an example build script that sets up a library project with the
// mapping-logic convention without a settings file. Run it from a directory
// that contains the projects alpha and mappings/shared.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"git.fractalqb.de/fractalqb/mkconv"
	"git.fractalqb.de/fractalqb/mkconv/mkore"
	"git.fractalqb.de/fractalqb/mkconv/plugin/java"
)

var (
	tracer = mkconv.DefaultTracer()

	clean, dryrun bool
	writeDot      bool
	remapTool     = []string{"tiny-remapper"}
)

func flags() {
	pflag.BoolVar(&writeDot, "dot", writeDot, "Write graphviz file to stdout and exit")
	pflag.BoolVar(&clean, "clean", clean, "Clean project")
	pflag.BoolVarP(&dryrun, "dry-run", "n", dryrun, "Dryrun")
	pflag.StringSliceVar(&remapTool, "remapper", remapTool, "Remapper command line")
	fTrace := pflag.String("trace", "", "Set trace level")
	pflag.Parse()

	if err := tracer.ParseLogFlag(*fTrace); err != nil {
		log.Fatal(err)
	}
}

func main() {
	flags()

	wd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}
	b := mkconv.NewBuild(wd, "example")
	if err := b.Toolchains.Discover(os.Environ()); err != nil {
		slog.Warn(err.Error())
	}
	shared, err := b.Include(mkconv.MappingsProject)
	if err != nil {
		log.Fatal(err)
	}
	// Shared mappings only need an archive
	if _, err := java.Apply(shared); err != nil {
		log.Fatal(err)
	}
	alpha, err := b.Include(":alpha")
	if err != nil {
		log.Fatal(err)
	}
	alpha.Version = "1.0.0"

	res, err := mkconv.ApplyMappingLogic(alpha)
	if err != nil {
		log.Fatal("applying mapping-logic:", err)
	}
	res.Remap.Tool = remapTool

	tr := mkore.NewTrace(context.Background(), tracer)

	if clean {
		if err := mkore.Clean(b, dryrun, tr); err != nil {
			log.Fatal(err)
		}
		return
	}

	if writeDot {
		dia := mkconv.Diagrammer{RankDir: "LR"}
		if err := dia.WriteDot(os.Stdout, b); err != nil {
			slog.Error(err.Error())
			os.Exit(1)
		}
		return
	}

	build, err := mkore.NewBuilder(tr, nil)
	if err != nil {
		log.Fatal(err)
	}
	build.DryRun = dryrun
	names := pflag.Args()
	if len(names) == 0 {
		names = []string{"build"}
	}
	if err := build.NamedTasks(b, names...); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}
