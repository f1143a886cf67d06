package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/billf/permissionsync-claude-code/internal/config"
	"github.com/billf/permissionsync-claude-code/internal/hook"
)

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Read one tool invocation from stdin and emit an allow decision or fall through",
	RunE:  runHook,
}

func init() {
	rootCmd.AddCommand(hookCmd)
}

// runHook never returns an error to cobra: a hook that exits non-zero
// would surface as a user-visible failure, and spec.md §7 requires the
// hook to default to fall-through on any internal inconsistency rather
// than propagate a process error.
func runHook(cmd *cobra.Command, args []string) error {
	tables, err := config.Load()
	if err != nil {
		return nil
	}

	inv, err := hook.ParseInvocation(os.Stdin)
	if err != nil {
		// InputMalformed (spec.md §7): treat as an empty invocation.
		inv = hook.ToolInvocation{}
	}

	engine := &hook.Engine{
		LogPath:      GetLogPath(),
		AutoMode:     os.Getenv("CLAUDE_PERMISSION_AUTO") == "1",
		WorktreeMode: os.Getenv("CLAUDE_PERMISSION_WORKTREE") == "1",
		Tables:       tables,
	}

	decision := engine.Handle(inv)
	if err := hook.WriteDecision(os.Stdout, decision); err != nil {
		return nil
	}
	return nil
}
