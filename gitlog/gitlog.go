// Package gitlog reads recent version-control activity through bounded
// invocations of the git binary.
package gitlog

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds each git invocation.
const DefaultTimeout = 5 * time.Second

const messageLimit = 50

// Commit is one entry of the recent-change list.
type Commit struct {
	Hash    string `json:"hash"`
	Message string `json:"message"`
	TimeAgo string `json:"time_ago"`
	Author  string `json:"author"`
}

// Reader queries the repository at Dir.
type Reader struct {
	Dir     string
	Timeout time.Duration
}

// NewReader creates a reader for the repository at dir.
func NewReader(dir string) *Reader {
	return &Reader{Dir: dir, Timeout: DefaultTimeout}
}

// CommitCount returns the number of commits since the given time.
func (r *Reader) CommitCount(ctx context.Context, since time.Time) (int, error) {
	out, err := r.run(ctx, "log", "--since", since.Format("2006-01-02"), "--oneline")
	if err != nil {
		return 0, err
	}
	count := 0
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	return count, nil
}

// Recent returns up to limit commits, newest first.
func (r *Reader) Recent(ctx context.Context, limit int) ([]Commit, error) {
	if limit <= 0 {
		limit = 10
	}
	out, err := r.run(ctx, "log", "--oneline", fmt.Sprintf("-%d", limit),
		"--pretty=format:%h|%s|%ar|%an")
	if err != nil {
		return nil, err
	}
	return parseCommits(out), nil
}

func parseCommits(out string) []Commit {
	var commits []Commit
	for _, line := range strings.Split(out, "\n") {
		parts := strings.SplitN(line, "|", 4)
		if len(parts) < 4 {
			continue
		}
		message := parts[1]
		if len(message) > messageLimit {
			message = message[:messageLimit]
		}
		commits = append(commits, Commit{
			Hash:    parts[0],
			Message: message,
			TimeAgo: parts[2],
			Author:  parts[3],
		})
	}
	return commits
}

func (r *Reader) run(ctx context.Context, args ...string) (string, error) {
	if _, err := exec.LookPath("git"); err != nil {
		return "", fmt.Errorf("git not found: %w", err)
	}
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	if r.Dir != "" {
		cmd.Dir = r.Dir
	}
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s failed: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}
