package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "dev"

var noColor bool

var rootCmd = &cobra.Command{
	Use:   "jobwalk",
	Short: "Field data collection for foundation inspections",
	Long: `jobwalk runs inspection sessions for foundation and crawlspace visits:
a guided checklist that derives condition tags, suggests solutions,
builds per-solution flight plans, and produces the job handoff summary.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)

	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(jobCmd)
	rootCmd.AddCommand(answerCmd)
	rootCmd.AddCommand(perimeterCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(promptCmd)
	rootCmd.AddCommand(dispoCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	// Local overrides for development; absence is not an error.
	godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
