package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove duplicate identities, keeping the first name of each group",
	Long: `Computes the duplicate groups and lists the names that would be removed.
Nothing is deleted unless --execute is given.

Examples:
  # Preview the removals
  face-gate cleanup

  # Delete the duplicates
  face-gate cleanup --execute`,
	Args: cobra.NoArgs,
	RunE: runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)

	cleanupCmd.Flags().Bool("execute", false, "Delete the planned identities instead of only reporting them")
	cleanupCmd.Flags().Float64("tolerance", 0, "Duplicate tolerance (default FACE_DUPLICATE_TOLERANCE)")
	cleanupCmd.Flags().String("policy", "", "Cluster policy: greedy or transitive (default FACE_CLUSTER_POLICY)")
	cleanupCmd.Flags().Bool("json", false, "Output as JSON")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	execute := mustGetBool(cmd, "execute")
	jsonOutput := mustGetBool(cmd, "json")

	cfg, err := loadConfig(matchingOverrides(cmd))
	if err != nil {
		return err
	}
	if err := openBackend(cfg); err != nil {
		return err
	}
	defer closeBackend()

	ctx := context.Background()
	svc, err := buildService(ctx, cfg, nil, false)
	if err != nil {
		return err
	}

	report, err := svc.Cleanup(ctx, execute)
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}

	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	}

	if len(report.Plan) == 0 {
		fmt.Println("No duplicate identities found.")
		return nil
	}

	if !execute {
		fmt.Printf("[DRY-RUN] Would remove %d identities:\n", len(report.Plan))
		for _, name := range report.Plan {
			fmt.Printf("  - %s\n", name)
		}
		fmt.Println("\nRun with --execute to delete them.")
		return nil
	}

	for _, name := range report.Removed {
		fmt.Printf("  Removed %s\n", name)
	}
	for _, e := range report.Errors {
		fmt.Printf("  Error: %s\n", e)
	}
	fmt.Printf("\nRemoved %d of %d planned identities\n", len(report.Removed), len(report.Plan))
	if len(report.Errors) > 0 {
		return fmt.Errorf("%d identities could not be removed", len(report.Errors))
	}
	return nil
}
