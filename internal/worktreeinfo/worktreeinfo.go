// Package worktreeinfo discovers sibling git worktrees and reads their
// project-local permission allowlists, per spec.md §4.3's "Worktree
// discovery" subsection.
package worktreeinfo

import (
	"bufio"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// WorktreeInfo is one worktree: its path, and a lazily-loaded rule set read
// from its project-local settings file.
type WorktreeInfo struct {
	Path string

	loaded bool
	allow  []string
}

// Allow lazily reads <Path>/.claude/settings.local.json's permissions.allow
// array. A missing or malformed file yields an empty slice and no error:
// spec.md §7's SiblingUnreadable recovery is "skip that sibling silently".
func (w *WorktreeInfo) Allow() []string {
	if w.loaded {
		return w.allow
	}
	w.loaded = true
	w.allow = readSiblingAllow(w.Path)
	return w.allow
}

func readSiblingAllow(worktreePath string) []string {
	data, err := os.ReadFile(filepath.Join(worktreePath, ".claude", "settings.local.json"))
	if err != nil {
		return nil
	}

	var doc struct {
		Permissions struct {
			Allow []string `json:"allow"`
		} `json:"permissions"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil
	}
	return doc.Permissions.Allow
}

// HasSiblings is the fast short-circuit guard: it compares the git-dir
// against the git-common-dir for cwd. If they're equal and the common dir
// has no populated worktrees/ subdirectory, there are no sibling worktrees
// and the (more expensive) full listing can be skipped.
func HasSiblings(cwd string) bool {
	gitDir, err := gitRevParse(cwd, "--git-dir")
	if err != nil {
		return false
	}
	commonDir, err := gitRevParse(cwd, "--git-common-dir")
	if err != nil {
		return false
	}

	gitDirAbs := resolveAgainst(cwd, gitDir)
	commonDirAbs := resolveAgainst(cwd, commonDir)

	if gitDirAbs == commonDirAbs {
		entries, err := os.ReadDir(filepath.Join(commonDirAbs, "worktrees"))
		if err != nil || len(entries) == 0 {
			return false
		}
		return true
	}
	return true
}

// Discover lists worktrees via "git worktree list --porcelain", filtering
// out bare repositories and any path that no longer exists on disk.
func Discover(cwd string) ([]WorktreeInfo, error) {
	out, err := exec.Command("git", "-C", cwd, "worktree", "list", "--porcelain").Output()
	if err != nil {
		return nil, err
	}
	return parsePorcelain(out), nil
}

// parsePorcelain parses "git worktree list --porcelain" records: blank-line
// separated blocks, each starting with "worktree <path>" and optionally
// containing a bare "bare" line.
func parsePorcelain(out []byte) []WorktreeInfo {
	var result []WorktreeInfo

	var path string
	var bare bool
	flush := func() {
		if path == "" {
			return
		}
		if bare {
			path = ""
			bare = false
			return
		}
		if _, err := os.Stat(path); err != nil {
			path = ""
			bare = false
			return
		}
		result = append(result, WorktreeInfo{Path: path})
		path = ""
		bare = false
	}

	scanner := bufio.NewScanner(strings.NewReader(string(out)))
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, "worktree "):
			flush()
			path = strings.TrimPrefix(line, "worktree ")
		case line == "bare":
			bare = true
		}
	}
	flush()

	return result
}

// gitRevParse runs "git -C <cwd> rev-parse <arg>" and returns the trimmed
// first line of output.
func gitRevParse(cwd, arg string) (string, error) {
	out, err := exec.Command("git", "-C", cwd, "rev-parse", arg).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// resolveAgainst makes a possibly-relative git path absolute against base,
// the way git itself reports --git-dir relative to the invocation cwd.
func resolveAgainst(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Clean(filepath.Join(base, p))
}

// UnionAllow unions the Allow() rule sets of every worktree, deduplicating.
func UnionAllow(worktrees []WorktreeInfo) map[string]struct{} {
	union := make(map[string]struct{})
	for i := range worktrees {
		for _, rule := range worktrees[i].Allow() {
			union[rule] = struct{}{}
		}
	}
	return union
}
