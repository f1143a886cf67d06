// Command permission-guard is the deterministic permission-request filter
// for an AI coding agent: it runs as the agent's PermissionRequest hook
// (subcommand "hook") and provides two offline maintenance tools that
// persist approved rules into settings files (subcommands "sync" and
// "worktree").
package main

func main() {
	Execute()
}
