package mkore

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

type BuildID = uint64

// A Build is a multi-project build. Projects are addressed by colon separated
// paths, e.g. ":mappings:shared". The root project has path ":".
type Build struct {
	RootDir    string
	Toolchains *Toolchains

	// Log receives messages of the configuration phase. When nil,
	// slog.Default() is used.
	Log *slog.Logger

	sync.Mutex

	root      *Project
	projects  map[string]*Project
	lastBuild BuildID
}

func NewBuild(rootDir, rootName string) *Build {
	if rootDir == "" {
		rootDir, _ = os.Getwd()
	}
	if rootName == "" {
		rootName = filepath.Base(rootDir)
	}
	b := &Build{
		RootDir:    rootDir,
		Toolchains: new(Toolchains),
		projects:   make(map[string]*Project),
	}
	b.root = newProject(b, nil, rootName, rootDir)
	b.projects[b.root.path] = b.root
	return b
}

func (b *Build) Root() *Project { return b.root }

func (b *Build) Logger() *slog.Logger {
	if b.Log == nil {
		return slog.Default()
	}
	return b.Log
}

// Include adds the project with path and all its missing ancestors to the
// build. Including an existing project returns that project.
func (b *Build) Include(path string) (*Project, error) {
	segs, err := splitProjectPath(path)
	if err != nil {
		return nil, err
	}
	prj := b.root
	for _, seg := range segs {
		cpath := joinProjectPath(prj.path, seg)
		sub := b.projects[cpath]
		if sub == nil {
			sub = newProject(b, prj, seg, filepath.Join(prj.dir, seg))
			b.projects[cpath] = sub
			b.Logger().Debug("include `project`", `project`, cpath)
		}
		prj = sub
	}
	return prj, nil
}

// Project returns the project with path. If there is no such project, a
// [ConfigError] of kind [MissingProject] is returned.
func (b *Build) Project(path string) (*Project, error) {
	if prj := b.FindProject(path); prj != nil {
		return prj, nil
	}
	return nil, &ConfigError{Kind: MissingProject, Entity: path}
}

func (b *Build) FindProject(path string) *Project {
	np, err := NormProjectPath(path)
	if err != nil {
		return nil
	}
	return b.projects[np]
}

// Projects returns all projects of the build sorted by path.
func (b *Build) Projects() []*Project {
	res := make([]*Project, 0, len(b.projects))
	for _, prj := range b.projects {
		res = append(res, prj)
	}
	slices.SortFunc(res, func(p, q *Project) int { return strings.Compare(p.path, q.path) })
	return res
}

func (b *Build) LockBuild() BuildID {
	b.Lock()
	b.lastBuild++
	return b.lastBuild
}

func (b *Build) String() string { return fmt.Sprintf("build '%s'", b.root.name) }

// NormProjectPath returns the canonical form of a project path: a leading
// colon and no empty segments. Paths without leading colon are taken as
// relative to the root project.
func NormProjectPath(path string) (string, error) {
	segs, err := splitProjectPath(path)
	if err != nil {
		return "", err
	}
	return ":" + strings.Join(segs, ":"), nil
}

func splitProjectPath(path string) ([]string, error) {
	if path == "" {
		return nil, errors.New("empty project path")
	}
	if path == ":" {
		return nil, nil
	}
	segs := strings.Split(strings.TrimPrefix(path, ":"), ":")
	for _, s := range segs {
		if s == "" {
			return nil, fmt.Errorf("illegal project path '%s'", path)
		}
	}
	return segs, nil
}

func joinProjectPath(parent, name string) string {
	if parent == ":" {
		return ":" + name
	}
	return parent + ":" + name
}
