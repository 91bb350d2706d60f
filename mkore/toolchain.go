package mkore

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
)

// ToolchainSpec requests a compile toolchain. A zero LanguageVersion accepts
// any installation.
type ToolchainSpec struct {
	LanguageVersion int
	Vendor          string
}

func (s ToolchainSpec) String() string {
	var sb strings.Builder
	if s.LanguageVersion > 0 {
		fmt.Fprintf(&sb, "JDK %d", s.LanguageVersion)
	} else {
		sb.WriteString("any JDK")
	}
	if s.Vendor != "" {
		fmt.Fprintf(&sb, " (%s)", s.Vendor)
	}
	return sb.String()
}

// Installation is a JDK installed on the build host.
type Installation struct {
	Home    string
	Version *semver.Version
	Vendor  string
}

func (inst Installation) LanguageVersion() int {
	if inst.Version == nil {
		return 0
	}
	return int(inst.Version.Major())
}

// Tool returns the path of the executable tool in the installation's bin
// directory.
func (inst Installation) Tool(name string) string {
	return filepath.Join(inst.Home, "bin", name)
}

func (inst Installation) String() string {
	if inst.Vendor == "" {
		return fmt.Sprintf("JDK %s in %s", inst.Version, inst.Home)
	}
	return fmt.Sprintf("%s JDK %s in %s", inst.Vendor, inst.Version, inst.Home)
}

// Toolchains is the registry of the JDK installations known to a build.
type Toolchains struct {
	sync.Mutex
	insts []Installation
}

func (tcs *Toolchains) Add(insts ...Installation) {
	tcs.Lock()
	defer tcs.Unlock()
	for _, inst := range insts {
		if slices.ContainsFunc(tcs.insts, func(i Installation) bool { return i.Home == inst.Home }) {
			continue
		}
		tcs.insts = append(tcs.insts, inst)
	}
}

func (tcs *Toolchains) Installations() []Installation {
	tcs.Lock()
	defer tcs.Unlock()
	return slices.Clone(tcs.insts)
}

// Find returns the newest installation that matches spec. If there is none,
// a [ConfigError] of kind [ToolchainUnavailable] is returned.
func (tcs *Toolchains) Find(spec ToolchainSpec) (Installation, error) {
	var cstr *semver.Constraints
	if spec.LanguageVersion > 0 {
		var err error
		cstr, err = semver.NewConstraint(fmt.Sprintf("%d.x", spec.LanguageVersion))
		if err != nil {
			return Installation{}, err
		}
	}
	tcs.Lock()
	defer tcs.Unlock()
	var (
		best  Installation
		found bool
	)
	for _, inst := range tcs.insts {
		if inst.Version == nil {
			continue
		}
		if cstr != nil && !cstr.Check(inst.Version) {
			continue
		}
		if spec.Vendor != "" && !strings.Contains(
			strings.ToLower(inst.Vendor),
			strings.ToLower(spec.Vendor),
		) {
			continue
		}
		if !found || best.Version.LessThan(inst.Version) {
			best, found = inst, true
		}
	}
	if !found {
		return Installation{}, &ConfigError{Kind: ToolchainUnavailable, Entity: spec.String()}
	}
	return best, nil
}

var jdkHomeVar = regexp.MustCompile(`^(?:JDK|JAVA)(\d+)_HOME$`)

// Discover adds installations that are announced by environment variables
// JAVA_HOME, JDK<N>_HOME and JAVA<N>_HOME. The version of an installation is
// read from its "release" file. If that fails, N is used as version.
func (tcs *Toolchains) Discover(environ []string) error {
	var errs []string
	for _, evar := range environ {
		key, home, ok := strings.Cut(evar, "=")
		if !ok || home == "" {
			continue
		}
		var hint string
		switch m := jdkHomeVar.FindStringSubmatch(key); {
		case key == "JAVA_HOME":
		case m != nil:
			hint = m[1]
		default:
			continue
		}
		inst, err := ReadInstallation(home)
		if err != nil {
			if hint == "" {
				errs = append(errs, err.Error())
				continue
			}
			v, verr := semver.NewVersion(hint)
			if verr != nil {
				errs = append(errs, err.Error())
				continue
			}
			inst = Installation{Home: home, Version: v}
		}
		tcs.Add(inst)
	}
	if len(errs) > 0 {
		return fmt.Errorf("toolchain discovery: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ReadInstallation reads the JDK's version and vendor from the "release" file
// in its home directory.
func ReadInstallation(home string) (Installation, error) {
	f, err := os.Open(filepath.Join(home, "release"))
	if err != nil {
		return Installation{}, err
	}
	defer f.Close()
	inst := Installation{Home: home}
	scn := bufio.NewScanner(f)
	for scn.Scan() {
		key, val, ok := strings.Cut(scn.Text(), "=")
		if !ok {
			continue
		}
		val = strings.Trim(strings.TrimSpace(val), `"`)
		switch strings.TrimSpace(key) {
		case "JAVA_VERSION":
			if inst.Version, err = ParseJavaVersion(val); err != nil {
				return inst, fmt.Errorf("JDK in %s: %w", home, err)
			}
		case "IMPLEMENTOR":
			inst.Vendor = val
		}
	}
	if err := scn.Err(); err != nil {
		return inst, err
	}
	if inst.Version == nil {
		return inst, fmt.Errorf("JDK in %s: no JAVA_VERSION in release file", home)
	}
	return inst, nil
}

// ParseJavaVersion parses Java version strings like "17.0.2", "21" or the
// legacy "1.8.0_392" (which is version 8).
func ParseJavaVersion(s string) (*semver.Version, error) {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "1."); ok {
		s = rest
	}
	if i := strings.IndexByte(s, '_'); i >= 0 {
		s = s[:i]
	}
	if _, err := strconv.Atoi(s); err == nil {
		s += ".0.0"
	}
	return semver.NewVersion(s)
}
