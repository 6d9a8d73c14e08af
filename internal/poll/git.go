// Package poll gathers session-independent facts on a fixed interval: git
// working-tree state and configured MCP servers. These snapshots go
// straight to the rendering layer and are never touched by the session
// reset sweep.
package poll

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// GitInfo is a snapshot of the working tree.
type GitInfo struct {
	Branch      string
	CommitShort string
	Dirty       bool
	Ahead       int
	Behind      int
	Staged      int
	Modified    int
	Untracked   int
	Conflicted  int
}

// FetchGit queries git for the state of dir. It returns an error when dir
// is not inside a git repository.
func FetchGit(ctx context.Context, dir string) (GitInfo, error) {
	if err := exec.CommandContext(ctx, "git", "-C", dir, "rev-parse", "--git-dir").Run(); err != nil {
		return GitInfo{}, fmt.Errorf("not a git repository: %s", dir)
	}

	var info GitInfo

	if out, err := exec.CommandContext(ctx, "git", "-C", dir, "rev-parse", "--abbrev-ref", "HEAD").Output(); err == nil {
		info.Branch = strings.TrimSpace(string(out))
	}
	if out, err := exec.CommandContext(ctx, "git", "-C", dir, "rev-parse", "--short", "HEAD").Output(); err == nil {
		info.CommitShort = strings.TrimSpace(string(out))
	}
	if out, err := exec.CommandContext(ctx, "git", "-C", dir, "status", "--porcelain=v2", "--branch").Output(); err == nil {
		parseStatus(&info, string(out))
	}

	info.Dirty = info.Staged > 0 || info.Modified > 0 || info.Untracked > 0 || info.Conflicted > 0
	return info, nil
}

// parseStatus fills info from `git status --porcelain=v2 --branch` output.
func parseStatus(info *GitInfo, output string) {
	for _, line := range strings.Split(output, "\n") {
		switch {
		case strings.HasPrefix(line, "# branch.ab "):
			// "# branch.ab +1 -2"
			for _, p := range strings.Fields(line) {
				if strings.HasPrefix(p, "+") {
					fmt.Sscanf(p, "+%d", &info.Ahead)
				} else if strings.HasPrefix(p, "-") {
					fmt.Sscanf(p, "-%d", &info.Behind)
				}
			}
		case strings.HasPrefix(line, "1 "), strings.HasPrefix(line, "2 "):
			parts := strings.Fields(line)
			if len(parts) >= 2 && len(parts[1]) == 2 {
				xy := parts[1]
				if xy[0] != '.' {
					info.Staged++
				}
				if xy[1] != '.' {
					info.Modified++
				}
			}
		case strings.HasPrefix(line, "u "):
			info.Conflicted++
		case strings.HasPrefix(line, "? "):
			info.Untracked++
		}
	}
}
