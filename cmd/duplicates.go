package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/kozaktomas/face-gate/internal/config"
	"github.com/spf13/cobra"
)

var duplicatesCmd = &cobra.Command{
	Use:   "duplicates",
	Short: "List groups of identities that share a face",
	Long: `Clusters the enrolled identities by face distance and prints every group
of names whose encodings fall within the duplicate tolerance. The first name of
each group is the one that would be kept by cleanup.

Examples:
  # Report with the configured tolerance
  face-gate duplicates

  # Use a stricter tolerance and chain-connected groups
  face-gate duplicates --tolerance 0.25 --policy transitive

  # Output as JSON
  face-gate duplicates --json`,
	Args: cobra.NoArgs,
	RunE: runDuplicates,
}

func init() {
	rootCmd.AddCommand(duplicatesCmd)

	duplicatesCmd.Flags().Float64("tolerance", 0, "Duplicate tolerance (default FACE_DUPLICATE_TOLERANCE)")
	duplicatesCmd.Flags().String("policy", "", "Cluster policy: greedy or transitive (default FACE_CLUSTER_POLICY)")
	duplicatesCmd.Flags().Bool("json", false, "Output as JSON")
}

// matchingOverrides applies --tolerance and --policy to the loaded config when set.
func matchingOverrides(cmd *cobra.Command) func(*config.Config) {
	return func(cfg *config.Config) {
		if cmd.Flags().Changed("tolerance") {
			cfg.Matching.DuplicateTolerance = mustGetFloat64(cmd, "tolerance")
		}
		if cmd.Flags().Changed("policy") {
			cfg.Matching.ClusterPolicy = mustGetString(cmd, "policy")
		}
	}
}

func runDuplicates(cmd *cobra.Command, args []string) error {
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

	report, err := svc.Duplicates(ctx)
	if err != nil {
		return fmt.Errorf("failed to compute duplicates: %w", err)
	}

	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	}

	if report.Total == 0 {
		fmt.Println("No duplicate identities found.")
		return nil
	}

	fmt.Printf("Found %d duplicate groups (%d identities, tolerance %.2f, %s)\n\n",
		report.Total, report.Members, cfg.Matching.DuplicateTolerance, cfg.Matching.ClusterPolicy)
	for i, g := range report.Groups {
		fmt.Printf("%d. %s\n", i+1, g.Primary)
		for _, d := range g.Duplicates {
			fmt.Printf("   - %s\n", d)
		}
	}
	return nil
}
