// Package svn implements the Subversion backend of internal/vcs.Driver.
//
// Has no teacher analog; grounded on the same exec.CommandContext +
// cmd.Dir + wrapped CombinedOutput idiom as internal/vcs/git, applied
// to the svn CLI.
package svn

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/steveyegge/vcspull/internal/manifest"
	"github.com/steveyegge/vcspull/internal/vcs"
	"github.com/steveyegge/vcspull/internal/vcserrors"
)

func init() {
	vcs.Register(manifest.Svn, func() vcs.Driver { return New() })
}

const defaultTimeout = 2 * time.Minute

// Driver implements vcs.Driver for Subversion working copies.
type Driver struct {
	timeout time.Duration
}

// New returns an svn Driver with the package default timeout.
func New() *Driver {
	return &Driver{timeout: defaultTimeout}
}

func (d *Driver) run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	out, err := vcs.ExecContext(ctx, d.timeout, dir, "svn", args...)
	if err != nil {
		// ExecContext appends stderr to the *exec.ExitError's own text;
		// split it back out so classify reads svn's diagnostics.
		cause, stderr := err, ""
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			cause = exitErr
			stderr = strings.TrimPrefix(strings.TrimPrefix(err.Error(), exitErr.Error()), ": ")
		}
		return out, classify(args[0], cause, stderr)
	}
	return out, nil
}

func classify(op string, cause error, stderr string) error {
	if vcs.IsExitError(cause) {
		lower := strings.ToLower(stderr)
		switch {
		case strings.Contains(lower, "could not resolve hostname"),
			strings.Contains(lower, "connection refused"),
			strings.Contains(lower, "unable to connect"):
			return &vcserrors.DriverError{Kind: vcserrors.NetworkError, Op: op, Cause: cause, Stderr: stderr}
		case strings.Contains(lower, "authorization failed"),
			strings.Contains(lower, "username"),
			strings.Contains(lower, "password"):
			return &vcserrors.DriverError{Kind: vcserrors.AuthRequired, Op: op, Cause: cause, Stderr: stderr}
		default:
			return &vcserrors.DriverError{Kind: vcserrors.NonZeroExit, Op: op, Cause: cause, Stderr: stderr}
		}
	}
	if vcs.LookPath("svn") != nil {
		return &vcserrors.DriverError{Kind: vcserrors.NotInstalled, Op: op, Cause: cause, Stderr: stderr}
	}
	return &vcserrors.DriverError{Kind: vcserrors.NonZeroExit, Op: op, Cause: cause, Stderr: stderr}
}

// Clone checks out url into targetPath at rev, or HEAD if rev is empty.
func (d *Driver) Clone(ctx context.Context, url, targetPath, rev string) error {
	args := []string{"checkout", url, targetPath}
	if rev != "" {
		args = []string{"checkout", "-r", rev, url, targetPath}
	}
	if _, err := d.run(ctx, "", args...); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	return nil
}

// Update brings the working copy to rev, or HEAD if rev is empty — the
// revision spec section 4.7 has update read from the manifest's
// declared rev, including any URL "@rev" suffix the normalizer lifted
// into it. svn has a single implicit remote (the URL a working copy
// was checked out from); setRemotes is accepted for interface symmetry
// and has no effect here.
func (d *Driver) Update(ctx context.Context, path, rev string, setRemotes bool) error {
	args := []string{"update"}
	if rev != "" {
		args = []string{"update", "-r", rev}
	}
	if _, err := d.run(ctx, path, args...); err != nil {
		return fmt.Errorf("update: %w", err)
	}
	return nil
}

var revisionRe = regexp.MustCompile(`Revision:\s*(\d+)`)

// CurrentRevision returns the working copy's revision number.
func (d *Driver) CurrentRevision(ctx context.Context, path string) (string, error) {
	out, err := d.run(ctx, path, "info")
	if err != nil {
		return "", fmt.Errorf("info: %w", err)
	}
	m := revisionRe.FindStringSubmatch(string(out))
	if m == nil {
		return "", &vcserrors.DriverError{Kind: vcserrors.OutputParseError, Op: "info", Stderr: string(out)}
	}
	return m[1], nil
}
