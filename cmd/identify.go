package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/kozaktomas/face-gate/internal/config"
	"github.com/kozaktomas/face-gate/internal/constants"
	"github.com/kozaktomas/face-gate/internal/database"
	"github.com/kozaktomas/face-gate/internal/embedding"
	"github.com/kozaktomas/face-gate/internal/facematch"
	"github.com/spf13/cobra"
)

var identifyCmd = &cobra.Command{
	Use:   "identify <image>",
	Short: "Match the faces in an image against the enrolled identities",
	Long: `Extracts every face in the image and reports the first enrolled identity
within the tolerance for each of them. Unlike a kiosk login this writes no
attendance record.

Examples:
  face-gate identify visitor.jpg
  face-gate identify visitor.jpg --tolerance 0.35 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runIdentify,
}

func init() {
	rootCmd.AddCommand(identifyCmd)

	identifyCmd.Flags().Float64("tolerance", 0, "Match tolerance (default FACE_ENROLL_TOLERANCE)")
	identifyCmd.Flags().Bool("json", false, "Output as JSON")
}

// IdentifyResult is the match for one face found in the image
type IdentifyResult struct {
	Face     int                   `json:"face"`
	Status   facematch.MatchStatus `json:"status"`
	Identity string                `json:"identity,omitempty"`
	Distance float64               `json:"distance,omitempty"`
}

func runIdentify(cmd *cobra.Command, args []string) error {
	jsonOutput := mustGetBool(cmd, "json")

	cfg, err := loadConfig(func(cfg *config.Config) {
		if cmd.Flags().Changed("tolerance") {
			cfg.Matching.EnrollTolerance = mustGetFloat64(cmd, "tolerance")
		}
	})
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	prepared, err := embedding.Preprocess(data, constants.MaxImageSize)
	if err != nil {
		return err
	}

	if err := openBackend(cfg); err != nil {
		return err
	}
	defer closeBackend()

	ctx := context.Background()
	reader, err := database.GetIdentityReader(ctx)
	if err != nil {
		return err
	}
	identities, err := reader.Enumerate(ctx)
	if err != nil {
		return fmt.Errorf("failed to load identities: %w", err)
	}
	entries := database.Entries(identities)

	encodings, err := newExtractor(cfg, nil).ExtractFaces(ctx, prepared)
	if err != nil {
		return fmt.Errorf("failed to extract faces: %w", err)
	}

	results := make([]IdentifyResult, 0, len(encodings))
	for i, enc := range encodings {
		m := facematch.Match(enc, entries, cfg.Matching.EnrollTolerance)
		results = append(results, IdentifyResult{Face: i, Status: m.Status, Identity: m.Identity, Distance: m.Distance})
	}

	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No face detected.")
		return nil
	}
	fmt.Printf("Compared against %d identities (tolerance %.2f)\n\n", len(entries), cfg.Matching.EnrollTolerance)
	for _, r := range results {
		if r.Status == facematch.Matched {
			fmt.Printf("Face %d: %s (distance %.3f)\n", r.Face+1, r.Identity, r.Distance)
		} else {
			fmt.Printf("Face %d: not recognized\n", r.Face+1)
		}
	}
	return nil
}
