// mkconv configures a multi-project build from its settings file and runs
// the requested tasks. Without task arguments the task "build" of all
// projects is run.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"git.fractalqb.de/fractalqb/mkconv"
	"git.fractalqb.de/fractalqb/mkconv/mkfs"
	"git.fractalqb.de/fractalqb/mkconv/mkore"
	"git.fractalqb.de/fractalqb/mkconv/settings"
)

func main() {
	if err := loadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadDotEnv loads the .env file or files. Missing files are fine.
func loadDotEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading env file: %w", err)
	}
	return nil
}

type options struct {
	settings string
	dot      bool
	clean    bool
	dryrun   bool
	trace    string
	tasks    bool
	outgoing bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var opts options
	flags := pflag.NewFlagSet("mkconv", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&opts.settings, "settings", settings.DefaultFile, "build settings file")
	flags.BoolVar(&opts.dot, "dot", false, "write graphviz file of the task graph to stdout and exit")
	flags.BoolVar(&opts.clean, "clean", false, "remove the outputs of all tasks")
	flags.BoolVarP(&opts.dryrun, "dry-run", "n", false, "trace tasks without running them")
	flags.StringVar(&opts.trace, "trace", "", "trace level: off, warn, info, debug")
	flags.BoolVar(&opts.tasks, "tasks", false, "list the tasks of all projects and exit")
	flags.BoolVar(&opts.outgoing, "outgoing", false, "list the consumable artifacts with their digest and exit")
	if err := flags.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	tracer := mkconv.DefaultTracer()
	tracer.W = stderr
	if err := tracer.ParseLogFlag(opts.trace); err != nil {
		return err
	}
	logLevel := slog.LevelWarn
	if tracer.Log&mkore.TraceDebug != 0 {
		logLevel = slog.LevelDebug
	} else if tracer.Log&mkore.TraceInfo != 0 {
		logLevel = slog.LevelInfo
	}

	s, err := settings.Load(opts.settings)
	if err != nil {
		return err
	}
	rootDir, err := filepath.Abs(filepath.Dir(opts.settings))
	if err != nil {
		return err
	}
	b := mkore.NewBuild(rootDir, s.RootProject)
	b.Log = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: logLevel}))
	if err := b.Toolchains.Discover(os.Environ()); err != nil {
		b.Log.Warn(err.Error())
	}
	if err := s.Configure(b, mkconv.Conventions); err != nil {
		return fmt.Errorf("configuring build: %w", err)
	}

	switch {
	case opts.dot:
		dia := mkconv.Diagrammer{RankDir: "LR"}
		return dia.WriteDot(stdout, b)
	case opts.tasks:
		return listTasks(stdout, b)
	case opts.outgoing:
		return listOutgoing(stdout, b)
	}

	tr := mkore.NewTrace(ctx, tracer)
	if opts.clean {
		return mkore.Clean(b, opts.dryrun, tr)
	}
	bd, err := mkore.NewBuilder(tr, nil)
	if err != nil {
		return err
	}
	bd.DryRun = opts.dryrun
	names := flags.Args()
	if len(names) == 0 {
		names = []string{"build"}
	}
	return bd.NamedTasks(b, names...)
}

func listTasks(w io.Writer, b *mkore.Build) error {
	for _, prj := range b.Projects() {
		for _, t := range prj.Tasks() {
			if t.Description == "" {
				fmt.Fprintln(w, t.Path())
			} else {
				fmt.Fprintf(w, "%s\t%s\n", t.Path(), t.Description)
			}
		}
	}
	return nil
}

func listOutgoing(w io.Writer, b *mkore.Build) error {
	for _, prj := range b.Projects() {
		for _, c := range prj.Configurations() {
			if !c.CanBeConsumed {
				continue
			}
			for _, a := range c.Outgoing() {
				path := a.Path()
				digest := "-"
				if ok, err := mkfs.Exists(path); err != nil {
					return err
				} else if ok {
					if digest, err = mkfs.Digest(path); err != nil {
						return err
					}
				}
				fmt.Fprintf(w, "%s:%s\t%s\t%s\n", prj.Path(), c.Name(), path, digest)
			}
		}
	}
	return nil
}
