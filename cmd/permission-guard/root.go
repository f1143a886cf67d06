package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/billf/permissionsync-claude-code/internal/hook"
)

var (
	logPathFlag      string
	settingsPathFlag string
)

var rootCmd = &cobra.Command{
	Use:          "permission-guard",
	Short:        "Deterministic permission-request filter for an AI coding agent",
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logPathFlag, "log", "", "Override the approval log path (default $CLAUDE_PERMISSION_LOG or ~/.claude/permission-approvals.jsonl)")
	rootCmd.PersistentFlags().StringVar(&settingsPathFlag, "settings", "", "Override the target settings file path")
}

// GetLogPath resolves the approval log path: the --log flag, else
// $CLAUDE_PERMISSION_LOG, else the default location.
func GetLogPath() string {
	if logPathFlag != "" {
		return logPathFlag
	}
	return hook.DefaultLogPath()
}

// GetSettingsPath resolves the global settings.json path: the --settings
// flag, else <home>/.claude/settings.json.
func GetSettingsPath() string {
	if settingsPathFlag != "" {
		return settingsPathFlag
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".claude", "settings.json")
}
