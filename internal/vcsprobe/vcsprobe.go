// Package vcsprobe wraps the git binary as the fixed operation set the
// Diff Parser and Evolver need, with every failure surfaced as a typed
// VcsError and a timeout on every call.
package vcsprobe

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"rpg/internal/rpgerrors"
)

// DefaultTimeout bounds every git invocation, per the VcsProbe contract.
const DefaultTimeout = 10 * time.Second

// GitProbe shells out to the git binary rooted at a repository directory.
type GitProbe struct {
	// Timeout overrides DefaultTimeout when non-zero.
	Timeout time.Duration
}

// New returns a GitProbe using DefaultTimeout.
func New() *GitProbe {
	return &GitProbe{}
}

func (g *GitProbe) timeout() time.Duration {
	if g.Timeout > 0 {
		return g.Timeout
	}
	return DefaultTimeout
}

func (g *GitProbe) run(ctx context.Context, repo string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout())
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = repo

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", rpgerrors.VcsError("git "+strings.Join(args, " ")+": "+stderr.String(), err)
	}
	return stdout.String(), nil
}

// HeadSha returns the 40-hex SHA of HEAD.
func (g *GitProbe) HeadSha(ctx context.Context, repo string) (string, error) {
	out, err := g.run(ctx, repo, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// CurrentBranch returns the checked-out branch name, or "" in detached HEAD.
func (g *GitProbe) CurrentBranch(ctx context.Context, repo string) (string, error) {
	out, err := g.run(ctx, repo, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	branch := strings.TrimSpace(out)
	if branch == "HEAD" {
		return "", nil
	}
	return branch, nil
}

// DefaultBranch returns the remote HEAD's default branch name, falling back
// to "main" when no remote HEAD ref is configured (e.g. a fresh local repo).
func (g *GitProbe) DefaultBranch(ctx context.Context, repo string) (string, error) {
	out, err := g.run(ctx, repo, "symbolic-ref", "refs/remotes/origin/HEAD")
	if err != nil {
		return "main", nil
	}
	ref := strings.TrimSpace(out)
	if idx := strings.LastIndex(ref, "/"); idx >= 0 {
		return ref[idx+1:], nil
	}
	return "main", nil
}

// MergeBase returns the merge base commit of a and b.
func (g *GitProbe) MergeBase(ctx context.Context, repo, a, b string) (string, error) {
	out, err := g.run(ctx, repo, "merge-base", a, b)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// NameStatus returns the raw `git diff --name-status` report for
// commitRange, in the form the diff parser expects.
func (g *GitProbe) NameStatus(ctx context.Context, repo, commitRange string) (string, error) {
	if commitRange == "" {
		return "", nil
	}
	return g.run(ctx, repo, "diff", "--name-status", "-M", "-C", commitRange)
}

// FileAtRevision returns path's content at rev, or ok=false when the file
// does not exist at that revision (deleted, or added later).
func (g *GitProbe) FileAtRevision(ctx context.Context, repo, rev, path string) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout())
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "show", rev+":"+path)
	cmd.Dir = repo

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if isMissingPathError(stderr.String()) {
			return nil, false, nil
		}
		return nil, false, rpgerrors.VcsError("git show "+rev+":"+path, err)
	}
	return stdout.Bytes(), true, nil
}

func isMissingPathError(stderr string) bool {
	lower := strings.ToLower(stderr)
	return strings.Contains(lower, "does not exist") ||
		strings.Contains(lower, "exists on disk, but not in") ||
		strings.Contains(lower, "bad object")
}
