package git

import (
	"bytes"
	"errors"
	"os/exec"
	"strings"
)

var (
	ErrGitCommand = errors.New("git command failed")
)

// Runner executes git as a subprocess
type Runner struct{}

// NewRunner creates a new git Runner
func NewRunner() *Runner {
	return &Runner{}
}

// runCommand executes a git command in dir and returns stdout, stderr, and any error
func (g *Runner) runCommand(dir string, args ...string) (stdout, stderr string, err error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if err != nil {
		// Wrap the error with stderr for context
		if stderr != "" {
			err = errors.Join(ErrGitCommand, errors.New(strings.TrimSpace(stderr)))
		}
	}

	return stdout, stderr, err
}

// Clone clones a remote repository into dest
func (g *Runner) Clone(url, dest string) error {
	_, _, err := g.runCommand("", "clone", "--depth", "1", url, dest)
	return err
}

// IsRepo reports whether dir is the top of a git working tree
func (g *Runner) IsRepo(dir string) bool {
	stdout, _, err := g.runCommand(dir, "rev-parse", "--is-inside-work-tree")
	if err != nil {
		return false
	}
	return strings.TrimSpace(stdout) == "true"
}

// Fetch fetches changes from the default remote
func (g *Runner) Fetch(dir string) error {
	_, _, err := g.runCommand(dir, "fetch", "--quiet")
	return err
}

// Pull fast-forwards the working tree from the default remote
func (g *Runner) Pull(dir string) error {
	_, _, err := g.runCommand(dir, "pull", "--ff-only", "--quiet")
	return err
}

// CommitsSinceRemote returns the subject lines of commits present on the
// remote tracking branch but not yet in the working tree. A missing
// tracking branch yields an empty list, not an error.
func (g *Runner) CommitsSinceRemote(dir string) ([]string, error) {
	stdout, _, err := g.runCommand(dir, "log", "--format=%s", "HEAD..@{upstream}")
	if err != nil {
		if strings.Contains(err.Error(), "no upstream") {
			return nil, nil
		}
		return nil, err
	}

	return parseSubjectLines(stdout), nil
}

// Remote returns the fetch URL of the default remote, if any
func (g *Runner) Remote(dir string) (string, error) {
	stdout, _, err := g.runCommand(dir, "remote", "get-url", "origin")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(stdout), nil
}

// parseSubjectLines splits git log --format=%s output into subject lines
func parseSubjectLines(output string) []string {
	var subjects []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		subjects = append(subjects, line)
	}
	return subjects
}

// Ensure Runner implements Syncer interface
var _ Syncer = (*Runner)(nil)
