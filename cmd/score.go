package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/talent-matcher/internal/scoring"
	"github.com/spigell/talent-matcher/internal/talent"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score one resume against one job",
	Run: func(cmd *cobra.Command, _ []string) {
		logger, _ := setup()

		resume, _ := cmd.Flags().GetString("resume")
		jobFile, _ := cmd.Flags().GetString("job-file")
		jobID, _ := cmd.Flags().GetString("job-id")

		if err := runScore(logger, resume, jobFile, jobID, cmd.OutOrStdout()); err != nil {
			logger.Fatal("scoring failed", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringP("resume", "r", "", "resume profile JSON file")
	scoreCmd.Flags().StringP("job-file", "f", "", "job catalog JSON file")
	scoreCmd.Flags().String("job-id", "", "job to score against when the catalog holds several")

	scoreCmd.MarkFlagRequired("resume")
	scoreCmd.MarkFlagRequired("job-file")
}

func runScore(logger *zap.Logger, resumePath, jobFile, jobID string, out io.Writer) error {
	resume, err := talent.LoadResume(resumePath)
	if err != nil {
		return fmt.Errorf("loading resume: %w", err)
	}

	jobs, err := talent.LoadJobs(jobFile)
	if err != nil {
		return fmt.Errorf("loading jobs: %w", err)
	}

	job, err := jobByID(jobs, jobID)
	if err != nil {
		return err
	}

	result := scoring.NewCalculator(logger).CalculateMatchScore(resume, job)
	logger.Info("resume scored",
		zap.String("job_id", job.ID),
		zap.Int("total_score", result.TotalScore),
	)

	return printJSON(out, result)
}

// jobByID picks the job with id. An empty id is only accepted for single-job catalogs.
func jobByID(jobs *talent.Jobs, id string) (*talent.JobPosting, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		switch jobs.Len() {
		case 0:
			return nil, fmt.Errorf("job catalog is empty")
		case 1:
			return jobs.Items[0], nil
		default:
			return nil, fmt.Errorf("catalog holds %d jobs, pass --job-id (one of %s)", jobs.Len(), strings.Join(jobIDs(jobs), ", "))
		}
	}

	job := jobs.FindByID(id)
	if job == nil {
		return nil, fmt.Errorf("there is no such job id %s", id)
	}
	return job, nil
}

func jobIDs(jobs *talent.Jobs) []string {
	ids := make([]string, 0, jobs.Len())
	for _, job := range jobs.Items {
		ids = append(ids, job.ID)
	}
	return ids
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
