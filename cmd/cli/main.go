package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	host   string
	dbPath string
	locale string
)

var rootCmd = &cobra.Command{
	Use:   "club-cli",
	Short: "A CLI to inspect club attendance and match statistics",
	Long: `A command-line interface for the club statistics engine.

Statistics commands read the database directly with --db. The remaining
commands talk to a running server at --host.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&host, "host", "http://localhost:8080", "The host address of the server")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "club.db", "Path to the SQLite database")
	rootCmd.PersistentFlags().StringVar(&locale, "locale", "da", "Weekday name locale (en or da)")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your command '%s'", err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
