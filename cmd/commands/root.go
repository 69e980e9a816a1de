package commands

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "infra-engine",
	Short: "LLM-driven infrastructure orchestration engine",
	Long:  `Turns natural-language infrastructure requests into IaC code, cost estimates and architecture diagrams`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Register subcommands
	rootCmd.AddCommand(serverCmd) // HTTP API server
	rootCmd.AddCommand(workflowCmd)
}
