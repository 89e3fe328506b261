package git

import (
	"context"
	"strconv"
	"strings"

	"github.com/steveyegge/vcspull/internal/vcserrors"
)

// DetailedStatus is the full observed state spec section 4.4's
// detailed mode reads for a git working copy.
type DetailedStatus struct {
	Branch        string // empty when HEAD is detached
	RemoteBranch  string // empty when no upstream is configured
	CurrentRev    string
	Ahead, Behind int  // both zero when RemoteBranch is empty
	HasUpstream   bool // distinguishes "0 ahead/behind" from "no upstream"
	Dirty         bool
}

// Inspect reads the full detailed status of the working copy at path.
// Grounded on the teacher's internal/vcs/git/refs.go (CurrentRef,
// HasDivergence) and repo.go (porcelain-status cleanliness check),
// recombined into the single call spec.md 4.4 describes.
func (d *Driver) Inspect(ctx context.Context, path string) (DetailedStatus, error) {
	var st DetailedStatus

	branch, err := d.currentBranch(ctx, path)
	if err != nil {
		return st, err
	}
	st.Branch = branch

	rev, err := d.CurrentRevision(ctx, path)
	if err != nil {
		return st, err
	}
	st.CurrentRev = rev

	dirty, err := d.isDirty(ctx, path)
	if err != nil {
		return st, err
	}
	st.Dirty = dirty

	if branch == "" {
		return st, nil // detached HEAD: ahead/behind undefined
	}

	upstream, err := d.upstream(ctx, path, branch)
	if err != nil || upstream == "" {
		return st, nil // no upstream configured
	}
	st.RemoteBranch = upstream
	st.HasUpstream = true

	ahead, behind, err := d.aheadBehind(ctx, path, branch, upstream)
	if err != nil {
		return st, err
	}
	st.Ahead, st.Behind = ahead, behind

	return st, nil
}

func (d *Driver) isDirty(ctx context.Context, path string) (bool, error) {
	out, err := d.run(ctx, path, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return len(strings.TrimSpace(string(out))) > 0, nil
}

// aheadBehind reports left-right commit counts of <branch>...<upstream>.
func (d *Driver) aheadBehind(ctx context.Context, path, branch, upstream string) (ahead, behind int, err error) {
	out, err := d.run(ctx, path, "rev-list", "--left-right", "--count", branch+"..."+upstream)
	if err != nil {
		return 0, 0, err
	}
	fields := strings.Fields(strings.TrimSpace(string(out)))
	if len(fields) != 2 {
		return 0, 0, &vcserrors.DriverError{Kind: vcserrors.OutputParseError, Op: "rev-list", Stderr: string(out)}
	}
	ahead, aerr := strconv.Atoi(fields[0])
	behind, berr := strconv.Atoi(fields[1])
	if aerr != nil || berr != nil {
		return 0, 0, &vcserrors.DriverError{Kind: vcserrors.OutputParseError, Op: "rev-list", Stderr: string(out)}
	}
	return ahead, behind, nil
}
