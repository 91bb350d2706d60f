package mkore

import (
	"fmt"
)

type ErrorKind int

const (
	MissingTask ErrorKind = iota + 1
	MissingProject
	MissingConfiguration
	ToolchainUnavailable
	Duplicate
)

func (k ErrorKind) String() string {
	switch k {
	case MissingTask:
		return "missing task"
	case MissingProject:
		return "missing project"
	case MissingConfiguration:
		return "missing configuration"
	case ToolchainUnavailable:
		return "toolchain unavailable"
	case Duplicate:
		return "duplicate"
	}
	return fmt.Sprintf("error kind %d", int(k))
}

// ConfigError is raised while a build is configured. Any ConfigError aborts
// the build before a single task runs.
type ConfigError struct {
	Kind    ErrorKind
	Project string // path of the project being configured, if any
	Entity  string // name of the failing entity
	Err     error
}

var (
	ErrMissingTask          = &ConfigError{Kind: MissingTask}
	ErrMissingProject       = &ConfigError{Kind: MissingProject}
	ErrMissingConfiguration = &ConfigError{Kind: MissingConfiguration}
	ErrToolchainUnavailable = &ConfigError{Kind: ToolchainUnavailable}
	ErrDuplicate            = &ConfigError{Kind: Duplicate}
)

func (e *ConfigError) Error() string {
	var msg string
	switch e.Kind {
	case MissingTask:
		msg = fmt.Sprintf("task '%s' not found", e.Entity)
	case MissingProject:
		msg = fmt.Sprintf("project '%s' not found in build", e.Entity)
	case MissingConfiguration:
		msg = fmt.Sprintf("configuration '%s' not found", e.Entity)
	case ToolchainUnavailable:
		msg = fmt.Sprintf("cannot provision toolchain %s", e.Entity)
	case Duplicate:
		msg = fmt.Sprintf("'%s' already exists", e.Entity)
	default:
		msg = fmt.Sprintf("%s: '%s'", e.Kind, e.Entity)
	}
	if e.Project != "" {
		msg = fmt.Sprintf("project '%s': %s", e.Project, msg)
	}
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Is matches target if it is a *ConfigError of the same kind. The target's
// Project and Entity are only compared when they are not empty.
func (e *ConfigError) Is(target error) bool {
	t, ok := target.(*ConfigError)
	if !ok {
		return false
	}
	if t.Kind != 0 && t.Kind != e.Kind {
		return false
	}
	if t.Entity != "" && t.Entity != e.Entity {
		return false
	}
	return t.Project == "" || t.Project == e.Project
}
