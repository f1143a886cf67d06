package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/billf/permissionsync-claude-code/internal/config"
	"github.com/billf/permissionsync-claude-code/internal/settings"
	"github.com/billf/permissionsync-claude-code/internal/sync"
	"github.com/billf/permissionsync-claude-code/internal/worktreeinfo"
)

var (
	worktreeApply    bool
	worktreeApplyAll bool
	worktreeReport   bool
	worktreeDiff     bool
	worktreeRefine   bool
	worktreeFromLog  bool
)

var worktreeCmd = &cobra.Command{
	Use:   "worktree",
	Short: "Aggregate permission rules across sibling git worktrees",
	RunE:  runWorktree,
}

func init() {
	worktreeCmd.Flags().Bool("preview", false, "Print the aggregated rule set without writing it (the default mode)")
	worktreeCmd.Flags().BoolVar(&worktreeApply, "apply", false, "Write the aggregated rule set to the current worktree's settings.local.json")
	worktreeCmd.Flags().BoolVar(&worktreeApplyAll, "apply-all", false, "Write the aggregated rule set to every sibling worktree's settings.local.json")
	worktreeCmd.Flags().BoolVar(&worktreeReport, "report", false, "Print a per-worktree summary of discovered rules")
	worktreeCmd.Flags().BoolVar(&worktreeDiff, "diff", false, "Print the rules that would be added and removed per worktree")
	worktreeCmd.Flags().BoolVar(&worktreeRefine, "refine", false, "Expand broad Bash(<binary> *) rules before applying")
	worktreeCmd.Flags().BoolVar(&worktreeFromLog, "from-log", false, "Also harvest rules from the approval log, filtered by each worktree's path")
	rootCmd.AddCommand(worktreeCmd)
}

func runWorktree(cmd *cobra.Command, args []string) error {
	tables, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config tables: %w", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	worktrees, err := worktreeinfo.Discover(cwd)
	if err != nil {
		return fmt.Errorf("discover worktrees: %w", err)
	}

	// Sibling rules are already approved (present in another worktree's own
	// settings.local.json), so they carry no further opt-in requirement:
	// mark them safe so Refine never holds them back.
	union := worktreeinfo.UnionAllow(worktrees)
	aggregated := make([]sync.HarvestedRule, 0, len(union))
	for r := range union {
		aggregated = append(aggregated, sync.HarvestedRule{Rule: r, Safe: true})
	}

	if worktreeFromLog {
		for _, w := range worktrees {
			harvested, err := sync.HarvestFromLogForCwd(GetLogPath(), w.Path, tables)
			if err != nil {
				continue
			}
			for _, h := range harvested {
				if _, fromSibling := union[h.Rule]; fromSibling {
					continue
				}
				aggregated = append(aggregated, h)
			}
		}
	}

	switch {
	case worktreeReport:
		for _, w := range worktrees {
			fmt.Printf("%s: %d rules\n", w.Path, len(w.Allow()))
		}
		return nil
	case worktreeApplyAll:
		for _, w := range worktrees {
			if err := applyToWorktree(w.Path, aggregated, tables); err != nil {
				return err
			}
		}
		return nil
	case worktreeApply:
		return applyToWorktree(cwd, aggregated, tables)
	case worktreeDiff:
		for _, w := range worktrees {
			target := filepath.Join(w.Path, ".claude", "settings.local.json")
			doc, err := settings.Load(target)
			if err != nil {
				continue
			}
			plan := sync.BuildPlan(doc.Permissions.Allow, aggregated, worktreeRefine, tables)
			fmt.Printf("# %s\n", w.Path)
			fmt.Print(sync.FormatDiff(plan))
		}
		return nil
	default: // --preview, the default mode
		plan := sync.BuildPlan(nil, aggregated, worktreeRefine, tables)
		for _, r := range plan.Next {
			fmt.Println(r)
		}
		if len(plan.Excluded) > 0 {
			fmt.Fprint(os.Stderr, sync.FormatExcluded(plan.Excluded))
		}
		return nil
	}
}

func applyToWorktree(path string, aggregated []sync.HarvestedRule, tables *config.Tables) error {
	target := filepath.Join(path, ".claude", "settings.local.json")
	doc, err := settings.Load(target)
	if err != nil {
		return fmt.Errorf("load settings %s: %w", target, err)
	}
	plan := sync.BuildPlan(doc.Permissions.Allow, aggregated, worktreeRefine, tables)
	if len(plan.Excluded) > 0 {
		fmt.Fprint(os.Stderr, sync.FormatExcluded(plan.Excluded))
	}
	if err := sync.Apply(target, plan); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return nil
}
