// Package gitutil commits generated publication files to the surrounding
// git repository.
package gitutil

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes git with args in dir.
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) (stdout, stderr string, err error)
}

// ExecRunner runs the git binary.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, dir string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var out, errB bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errB
	err := cmd.Run()
	return out.String(), errB.String(), err
}

// Publisher stages, commits and optionally pushes a set of files.
type Publisher struct {
	Runner Runner
	// Dir is the working tree; empty means the current directory.
	Dir string
	// Push also pushes the commit, setting the upstream when missing.
	Push bool
}

// Outcome reports what Publish did.
type Outcome struct {
	Committed bool
	Pushed    bool
}

// noChangeMarkers are the phrases git prints when a commit would be empty.
var noChangeMarkers = []string{"nothing to commit", "no changes added to commit", "working tree clean"}

// Publish stages paths and commits them with message. A commit with nothing
// to record is not an error and skips the push.
func (p Publisher) Publish(ctx context.Context, paths []string, message string) (Outcome, error) {
	var o Outcome
	if len(paths) == 0 {
		return o, nil
	}
	if _, stderr, err := p.git(ctx, append([]string{"add", "-A", "--"}, paths...)...); err != nil {
		return o, fmt.Errorf("git add failed: %w: %s", err, stderr)
	}
	stdout, stderr, err := p.git(ctx, "commit", "-m", message)
	if err != nil {
		combined := stderr + stdout
		for _, m := range noChangeMarkers {
			if strings.Contains(combined, m) {
				return o, nil
			}
		}
		return o, fmt.Errorf("git commit failed: %w: %s%s", err, stderr, stdout)
	}
	o.Committed = true
	if !p.Push {
		return o, nil
	}
	if err := p.push(ctx); err != nil {
		return o, err
	}
	o.Pushed = true
	return o, nil
}

// push falls back to "push -u origin <branch>" when no upstream is configured.
func (p Publisher) push(ctx context.Context) error {
	_, stderr, err := p.git(ctx, "push")
	if err == nil {
		return nil
	}
	if !strings.Contains(stderr, "has no upstream branch") && !strings.Contains(stderr, "no configured push destination") {
		return fmt.Errorf("git push failed: %w: %s", err, stderr)
	}
	branch := "HEAD"
	if br, _, bErr := p.git(ctx, "rev-parse", "--abbrev-ref", "HEAD"); bErr == nil && strings.TrimSpace(br) != "" {
		branch = strings.TrimSpace(br)
	}
	if _, stderr2, err2 := p.git(ctx, "push", "-u", "origin", branch); err2 != nil {
		return fmt.Errorf("git push failed: %w: %s; fallback failed: %v: %s", err, stderr, err2, stderr2)
	}
	return nil
}

func (p Publisher) git(ctx context.Context, args ...string) (string, string, error) {
	r := p.Runner
	if r == nil {
		r = ExecRunner{}
	}
	return r.Run(ctx, p.Dir, args...)
}
