package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/kozaktomas/face-gate/internal/constants"
	"github.com/kozaktomas/face-gate/internal/facematch"
	"github.com/kozaktomas/face-gate/internal/identity"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll-dir <directory>",
	Short: "Enroll every face image in a directory",
	Long: `Registers one identity per image file. The identity name is the file name
without its extension, with underscores turned into spaces (jan_novak.jpg
enrolls "jan novak"). Faces are extracted in parallel, but images are enrolled
one at a time in file name order, so when two files show the same face the
first one wins. Images whose face is already enrolled under another name are
skipped, exactly as they would be at the kiosk.

Examples:
  face-gate enroll-dir ./faces
  face-gate enroll-dir ./faces --concurrency 8`,
	Args: cobra.ExactArgs(1),
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)

	enrollCmd.Flags().Int("concurrency", constants.DefaultConcurrency, "Number of images sent to the extractor in parallel")
}

var enrollExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp"}

// enrollFiles lists the image files of dir in name order.
func enrollFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !slices.Contains(enrollExtensions, strings.ToLower(filepath.Ext(e.Name()))) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

func nameFromPath(path string) string {
	base := filepath.Base(path)
	return facematch.NameFromFile(strings.TrimSuffix(base, filepath.Ext(base)))
}

// enroller is the part of identity.Service used by enroll-dir
type enroller interface {
	Prepare(ctx context.Context, name string, image []byte) (identity.Candidate, error)
	Enroll(ctx context.Context, c identity.Candidate) (identity.RegisterOutcome, error)
}

type enrollResult struct {
	path    string
	outcome identity.RegisterOutcome
	err     error
}

// enrollAll extracts faces from files with up to concurrency workers, then
// enrolls the candidates one by one in file order. When two files show the
// same face, the one that sorts first is admitted.
func enrollAll(ctx context.Context, svc enroller, files []string, concurrency int, progress func()) []enrollResult {
	results := make([]enrollResult, len(files))
	candidates := make([]identity.Candidate, len(files))

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	for i, path := range files {
		results[i].path = path
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			data, err := os.ReadFile(path)
			if err != nil {
				results[i].err = err
				return
			}
			candidates[i], results[i].err = svc.Prepare(ctx, nameFromPath(path), data)
		}()
	}
	wg.Wait()

	for i := range files {
		if results[i].err == nil {
			results[i].outcome, results[i].err = svc.Enroll(ctx, candidates[i])
		}
		if progress != nil {
			progress()
		}
	}
	return results
}

func runEnroll(cmd *cobra.Command, args []string) error {
	concurrency := mustGetInt(cmd, "concurrency")
	if concurrency < 1 {
		concurrency = 1
	}

	files, err := enrollFiles(args[0])
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("No images found.")
		return nil
	}

	cfg, err := loadConfig()
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

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription("Enrolling faces"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("images"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)

	results := enrollAll(ctx, svc, files, concurrency, func() { bar.Add(1) })
	fmt.Println()

	counts := make(map[identity.RegisterStatus]int)
	var failures []string
	for _, r := range results {
		switch {
		case r.err != nil:
			failures = append(failures, fmt.Sprintf("%s: %v", filepath.Base(r.path), r.err))
		case r.outcome.Status != identity.RegisterAdmitted:
			counts[r.outcome.Status]++
			failures = append(failures, fmt.Sprintf("%s: %s", filepath.Base(r.path), r.outcome.Message()))
		default:
			counts[r.outcome.Status]++
		}
	}

	for _, f := range failures {
		fmt.Printf("  Skipped %s\n", f)
	}

	fmt.Printf("\nEnrolled %d of %d images", counts[identity.RegisterAdmitted], len(files))
	fmt.Printf(" (%d already known, %d names taken, %d without a face)\n",
		counts[identity.RegisterFaceAlreadyKnown], counts[identity.RegisterNameTaken], counts[identity.RegisterNoFace])
	return nil
}
