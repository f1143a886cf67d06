package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/billf/permissionsync-claude-code/internal/config"
	"github.com/billf/permissionsync-claude-code/internal/settings"
	"github.com/billf/permissionsync-claude-code/internal/sync"
)

var (
	syncApply  bool
	syncPrint  bool
	syncDiff   bool
	syncRefine bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Harvest approved rules from the log and sync them into the global settings file",
	RunE:  runSync,
}

func init() {
	syncCmd.Flags().Bool("preview", false, "Print the rules that would be added and removed (the default mode)")
	syncCmd.Flags().BoolVar(&syncApply, "apply", false, "Write the synced rule set to the settings file")
	syncCmd.Flags().BoolVar(&syncPrint, "print", false, "Print every rule in the synced set, one per line")
	syncCmd.Flags().BoolVar(&syncDiff, "diff", false, "Print the rules that would be added and removed")
	syncCmd.Flags().BoolVar(&syncRefine, "refine", false, "Expand broad Bash(<binary> *) rules into safe-subcommand rules")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	tables, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config tables: %w", err)
	}

	target := GetSettingsPath()
	doc, err := settings.Load(target)
	if err != nil {
		return fmt.Errorf("load settings %s: %w", target, err)
	}

	harvested, err := sync.HarvestFromLog(GetLogPath(), tables)
	if err != nil {
		return fmt.Errorf("harvest approval log: %w", err)
	}

	plan := sync.BuildPlan(doc.Permissions.Allow, harvested, syncRefine, tables)

	switch {
	case syncPrint:
		for _, r := range plan.Next {
			fmt.Println(r)
		}
		if len(plan.Excluded) > 0 {
			fmt.Fprint(os.Stderr, sync.FormatExcluded(plan.Excluded))
		}
		return nil
	case syncApply:
		if len(plan.Excluded) > 0 {
			fmt.Fprint(os.Stderr, sync.FormatExcluded(plan.Excluded))
		}
		if err := sync.Apply(target, plan); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return nil
	case syncDiff:
		fmt.Print(sync.FormatDiff(plan))
		return nil
	default: // --preview, the default mode
		fmt.Print(sync.FormatDiff(plan))
		return nil
	}
}
