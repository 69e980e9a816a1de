package commands

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/infrax/infra-engine/internal/codegen"
	"github.com/infrax/infra-engine/internal/config"
	"github.com/infrax/infra-engine/internal/cost"
	"github.com/infrax/infra-engine/internal/diagram"
	"github.com/infrax/infra-engine/internal/llm"
	"github.com/infrax/infra-engine/internal/orchestrator"
	"github.com/infrax/infra-engine/internal/planner"
	"github.com/infrax/infra-engine/internal/repository"
	"github.com/infrax/infra-engine/internal/selector"
	"github.com/infrax/infra-engine/internal/types"
)

var (
	workflowPrompt   string
	workflowLocation string
	workflowRepoURL  string
	workflowIaCType  string
)

var workflowCmd = &cobra.Command{
	Use:   "workflow",
	Short: "Run one workflow from the command line",
	Long: `Run the full pipeline for a single request and print the summary.

Generated code is written to OUTPUT_DIR. Results are not persisted to the
database; use the server for that.

Examples:
  infra-engine workflow --prompt "Deploy a web app with a database in Europe"
  infra-engine workflow --repo-url https://github.com/acme/shop --iac-type pulumi`,
	RunE: runWorkflow,
}

func init() {
	workflowCmd.Flags().StringVar(&workflowPrompt, "prompt", "", "Natural-language infrastructure request")
	workflowCmd.Flags().StringVar(&workflowLocation, "location", "", "Preferred deployment location")
	workflowCmd.Flags().StringVar(&workflowRepoURL, "repo-url", "", "Repository to analyze instead of a prompt")
	workflowCmd.Flags().StringVar(&workflowIaCType, "iac-type", "terraform", "IaC flavor: terraform, pulumi or cloudformation")
}

func runWorkflow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyLogLevel(cfg.LogLevel)

	client := llm.NewClient(cfg.LLMURL, cfg.LLMTimeout)
	engine := orchestrator.New(
		planner.New(client),
		selector.New(client),
		cost.New(client),
		codegen.New(),
		diagram.New(client),
		repository.NewMemory(),
		codegen.NewArtifactWriter(cfg.OutputDir),
	)

	result, err := engine.Run(context.Background(), types.WorkflowRequest{
		Prompt:   workflowPrompt,
		Location: workflowLocation,
		RepoURL:  workflowRepoURL,
		IaCType:  types.IaCType(workflowIaCType),
	})
	if err != nil {
		return err
	}

	printSummary(result)
	if !result.Success {
		return fmt.Errorf("workflow failed at %s: %s", result.FailedStep, result.Error)
	}
	return nil
}

func printSummary(result *types.WorkflowResult) {
	s := result.Summary()

	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Workflow: %s\n", s.WorkflowID)
	fmt.Printf("Success:  %v\n", s.Success)
	if result.Plan != nil {
		fmt.Printf("Provider: %s (%s)\n", s.CloudProvider, s.Region)
		if s.LocationRationale != "" {
			fmt.Printf("Location: %s\n", s.LocationRationale)
		}
	}
	if result.Selection != nil {
		fmt.Printf("Services: %d resolved\n", s.ServicesCount)
		for _, svc := range result.Selection.Services {
			fmt.Printf("  - %s (%s)\n", svc.DisplayName, svc.ResourceType)
		}
		for _, omission := range result.Selection.Omissions {
			fmt.Printf("  ! omitted: %s\n", omission)
		}
	}
	if result.Cost != nil {
		fmt.Printf("Monthly cost: $%.2f %s (est. savings $%.2f)\n",
			s.BaseMonthlyCost, result.Cost.Currency, s.EstimatedSavings)
	}
	if result.Code != nil {
		fmt.Printf("Code: %s (%s)\n", s.CodeFile, s.IaCType)
	}
	if s.FailedStep != "" {
		fmt.Printf("Failed step: %s\n", s.FailedStep)
		fmt.Printf("Error: %s\n", s.Error)
	}
	fmt.Println(strings.Repeat("=", 60))

	log.WithField("workflow_id", s.WorkflowID).Info("Workflow run finished")
}
