// Pantryd is a voice shopping-list skill daemon.
//
// It subscribes to Hermes-style intent subjects on NATS, reconciles the
// requested items against a Bring shopping list, and ends each spoken
// session with one composed sentence.
//
// Usage:
//
//	# Start the daemon
//	pantryd
//
//	# With an explicit config file
//	pantryd --config /etc/pantryd/config.yaml
//
//	# Preview a response offline
//	pantryd say --locale en --action add --done eggs --failed milk
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:     "pantryd",
	Short:   "Voice shopping-list skill daemon",
	Long:    "pantryd answers add/remove/check/read shopping-list intents against a Bring list.",
	Version: version + " (" + gitCommit + ")",
	RunE:    runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default ~/.config/pantryd/config.yaml)")
	rootCmd.AddCommand(sayCmd)
	rootCmd.AddCommand(localesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
