// Command taskboard serves the live task list and exports task snapshots.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/taskboard/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

// globalFlags are shared by every command.
type globalFlags struct {
	configPath  string
	noColor     bool
	errorFormat string
}

func newRootCmd() *cobra.Command {
	var g globalFlags

	rootCmd := &cobra.Command{
		Use:   "taskboard",
		Short: "A live task list with toast notifications",
		Long: `Taskboard serves a server-rendered task list backed by a remote task API.

The browser keeps a WebSocket open to the server, which renders the
page, runs event handlers and shows notifications when API calls fail.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if g.noColor {
				errors.DisableColors()
			}
			switch g.errorFormat {
			case "text":
			case "json":
				errors.EnableJSON()
			default:
				return fmt.Errorf("invalid --error-format %q: want text or json", g.errorFormat)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Configuration file (default: taskboard.yaml, .yml or .json in the working directory)")
	rootCmd.PersistentFlags().BoolVar(&g.noColor, "no-color", false, "Disable colored error output")
	rootCmd.PersistentFlags().StringVar(&g.errorFormat, "error-format", "text", "Error output format: text or json")

	rootCmd.AddCommand(
		serveCmd(&g),
		exportCmd(&g),
		versionCmd(),
	)
	return rootCmd
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}
