// Package settings reads the description of a multi-project build from a
// YAML file and configures a build accordingly.
package settings

import (
	"os"
	"slices"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"git.fractalqb.de/fractalqb/mkconv/mkore"
	"git.fractalqb.de/fractalqb/mkconv/plugin/license"
	"git.fractalqb.de/fractalqb/mkconv/plugin/remapper"
)

const DefaultFile = "settings.yaml"

type Settings struct {
	RootProject string                     `yaml:"rootProject"`
	Version     string                     `yaml:"version"`
	BuildDir    string                     `yaml:"buildDir"`
	Include     []string                   `yaml:"include"`
	Projects    map[string]ProjectSettings `yaml:"projects"`
	Toolchains  []Toolchain                `yaml:"toolchains"`
	Remapper    Tool                       `yaml:"remapper"`
	License     License                    `yaml:"license"`
}

type ProjectSettings struct {
	Version     string   `yaml:"version"`
	Description string   `yaml:"description"`
	BuildDir    string   `yaml:"buildDir"`
	Conventions []string `yaml:"conventions"`
}

// Toolchain announces a JDK installation. Without Version, version and
// vendor are read from the release file in Home.
type Toolchain struct {
	Home    string `yaml:"home"`
	Version string `yaml:"version"`
	Vendor  string `yaml:"vendor"`
}

type Tool struct {
	Tool []string `yaml:"tool"`
}

type License struct {
	HeaderFile string   `yaml:"headerFile"`
	Tool       []string `yaml:"tool"`
}

func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "could not read settings %s", path)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, eris.Wrapf(err, "settings %s", path)
	}
	return s, nil
}

func Parse(data []byte) (*Settings, error) {
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, eris.Wrap(err, "failed to parse settings")
	}
	for i, inc := range s.Include {
		np, err := mkore.NormProjectPath(inc)
		if err != nil {
			return nil, eris.Wrapf(err, "include %d", i+1)
		}
		s.Include[i] = np
	}
	for i, tc := range s.Toolchains {
		if tc.Home == "" {
			return nil, eris.Errorf("toolchain %d has no home", i+1)
		}
	}
	return &s, nil
}

// NewBuild creates the build in rootDir and configures it.
func (s *Settings) NewBuild(rootDir string, conventions map[string]func(*mkore.Project) error) (*mkore.Build, error) {
	b := mkore.NewBuild(rootDir, s.RootProject)
	if err := s.Configure(b, conventions); err != nil {
		return nil, err
	}
	return b, nil
}

// Configure includes the projects, registers the toolchains and applies the
// conventions of each project in project path order. Finally the external
// tools are set for all projects that did not configure their own.
func (s *Settings) Configure(b *mkore.Build, conventions map[string]func(*mkore.Project) error) error {
	s.defaults(b.Root())
	for _, inc := range s.Include {
		prj, err := b.Include(inc)
		if err != nil {
			return eris.Wrapf(err, "include %s", inc)
		}
		s.defaults(prj)
	}
	for _, tc := range s.Toolchains {
		inst, err := tc.installation()
		if err != nil {
			return err
		}
		b.Toolchains.Add(inst)
	}
	paths := make([]string, 0, len(s.Projects))
	for path := range s.Projects {
		paths = append(paths, path)
	}
	slices.Sort(paths)
	for _, path := range paths {
		prj, err := b.Project(path)
		if err != nil {
			return eris.Wrap(err, "project settings")
		}
		ps := s.Projects[path]
		if ps.Version != "" {
			prj.Version = ps.Version
		}
		if ps.BuildDir != "" {
			prj.BuildDir = ps.BuildDir
		}
		prj.Description = ps.Description
	}
	for _, path := range paths {
		prj, _ := b.Project(path)
		for _, name := range s.Projects[path].Conventions {
			apply := conventions[name]
			if apply == nil {
				return eris.Errorf("project %s: unknown convention '%s'", path, name)
			}
			if err := apply(prj); err != nil {
				return eris.Wrapf(err, "project %s: convention '%s'", path, name)
			}
		}
	}
	s.tools(b)
	return nil
}

func (s *Settings) defaults(prj *mkore.Project) {
	if s.Version != "" {
		prj.Version = s.Version
	}
	if s.BuildDir != "" {
		prj.BuildDir = s.BuildDir
	}
}

func (s *Settings) tools(b *mkore.Build) {
	for _, prj := range b.Projects() {
		if rt, err := remapper.Lookup(prj); err == nil && len(rt.Tool) == 0 {
			rt.Tool = s.Remapper.Tool
		}
		if lx, err := license.Lookup(prj); err == nil {
			if s.License.HeaderFile != "" {
				lx.HeaderFile = s.License.HeaderFile
			}
			if len(lx.Tool) == 0 {
				lx.Tool = s.License.Tool
			}
		}
	}
}

func (tc Toolchain) installation() (mkore.Installation, error) {
	if tc.Version == "" {
		inst, err := mkore.ReadInstallation(tc.Home)
		if err != nil {
			return inst, eris.Wrapf(err, "toolchain %s", tc.Home)
		}
		if tc.Vendor != "" {
			inst.Vendor = tc.Vendor
		}
		return inst, nil
	}
	v, err := mkore.ParseJavaVersion(tc.Version)
	if err != nil {
		return mkore.Installation{}, eris.Wrapf(err, "toolchain %s version", tc.Home)
	}
	return mkore.Installation{Home: tc.Home, Version: v, Vendor: tc.Vendor}, nil
}
