// Package vcserrors holds the sentinel error taxonomy shared by the
// manifest, probe, sync, vcs driver, and worktree packages.
package vcserrors

import "errors"

// Configuration-time errors. These abort before any work begins.
var (
	ErrConfigFormat    = errors.New("vcspull: unsupported manifest file extension")
	ErrConfigParse     = errors.New("vcspull: malformed manifest")
	ErrConfigSchema    = errors.New("vcspull: manifest violates schema")
	ErrDuplicatePath   = errors.New("vcspull: two repositories map to the same path with different identity")
	ErrMultipleConfigs = errors.New("vcspull: more than one top-level manifest found")
	ErrWorktreeConfig  = errors.New("vcspull: worktree entry is malformed")
)

// Per-repository errors. Captured in a PlanEntry; the run continues
// unless exit-on-error is set.
var (
	ErrNotInstalled     = errors.New("vcspull: required vcs executable not installed")
	ErrAuthRequired     = errors.New("vcspull: authentication required")
	ErrNetwork          = errors.New("vcspull: network error")
	ErrNonZeroExit      = errors.New("vcspull: vcs command exited non-zero")
	ErrOutputParse      = errors.New("vcspull: could not parse vcs command output")
	ErrCancelled        = errors.New("vcspull: cancelled")
	ErrRefNotResolved   = errors.New("vcspull: ref does not resolve locally or on any declared remote")
	ErrNotAWorktree     = errors.New("vcspull: path exists and is not a worktree")
	ErrWorktreeDirty    = errors.New("vcspull: worktree has uncommitted changes")
)

// DriverErrorKind classifies a DriverError for programmatic handling.
type DriverErrorKind int

const (
	NotInstalled DriverErrorKind = iota
	AuthRequired
	NetworkError
	NonZeroExit
	OutputParseError
)

func (k DriverErrorKind) String() string {
	switch k {
	case NotInstalled:
		return "not_installed"
	case AuthRequired:
		return "auth_required"
	case NetworkError:
		return "network_error"
	case NonZeroExit:
		return "non_zero_exit"
	case OutputParseError:
		return "output_parse_error"
	default:
		return "unknown"
	}
}

// DriverError wraps a VCS driver failure with a stable kind and the
// captured stderr, so callers can classify without string-matching.
type DriverError struct {
	Kind    DriverErrorKind
	Op      string // the failing VCS subcommand, e.g. "clone", "fetch", "rev-parse"
	Cause   error
	Stderr  string
}

func (e *DriverError) Error() string {
	if e.Stderr != "" {
		return e.Op + ": " + e.Kind.String() + ": " + e.Cause.Error() + "\n" + e.Stderr
	}
	return e.Op + ": " + e.Kind.String() + ": " + e.Cause.Error()
}

func (e *DriverError) Unwrap() error { return e.Cause }

func (e *DriverError) sentinel() error {
	switch e.Kind {
	case NotInstalled:
		return ErrNotInstalled
	case AuthRequired:
		return ErrAuthRequired
	case NetworkError:
		return ErrNetwork
	case OutputParseError:
		return ErrOutputParse
	default:
		return ErrNonZeroExit
	}
}

// Is lets errors.Is(err, vcserrors.ErrNetwork) match a *DriverError of
// the corresponding kind, the same way the teacher's sentinel package
// lets callers test a concrete error against a named condition.
func (e *DriverError) Is(target error) bool {
	return e.sentinel() == target
}

// IsConfigError reports whether err is one of the configuration-time
// sentinels that should abort before any work begins.
func IsConfigError(err error) bool {
	switch {
	case errors.Is(err, ErrConfigFormat),
		errors.Is(err, ErrConfigParse),
		errors.Is(err, ErrConfigSchema),
		errors.Is(err, ErrDuplicatePath),
		errors.Is(err, ErrMultipleConfigs):
		return true
	default:
		return false
	}
}

// IsRetryable reports whether a per-repository error is plausibly
// transient and a later run might succeed without operator action.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrNetwork) || errors.Is(err, ErrCancelled)
}

// IsUserActionRequired reports whether resolving err needs the
// operator to do something (auth, clean a dirty tree, install a tool).
func IsUserActionRequired(err error) bool {
	return errors.Is(err, ErrAuthRequired) ||
		errors.Is(err, ErrNotInstalled) ||
		errors.Is(err, ErrWorktreeDirty) ||
		errors.Is(err, ErrNotAWorktree)
}

// IsFatal reports whether err should stop the whole run rather than
// just taint one PlanEntry.
func IsFatal(err error) bool {
	return IsConfigError(err) || errors.Is(err, ErrNotInstalled)
}
