package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/talent-matcher/internal/scoring"
	"github.com/spigell/talent-matcher/internal/shortlist"
	"github.com/spigell/talent-matcher/internal/talent"
)

var shortlistCmd = &cobra.Command{
	Use:   "shortlist",
	Short: "Rank the applications for a job, with AI assistance when configured",
	Run: func(cmd *cobra.Command, _ []string) {
		logger, config := setup()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		applications, _ := cmd.Flags().GetString("applications")
		jobsPath, _ := cmd.Flags().GetString("jobs")
		jobID, _ := cmd.Flags().GetString("job-id")
		top, _ := cmd.Flags().GetInt("top")
		yes, _ := cmd.Flags().GetBool("yes")

		if top <= 0 {
			top = config.Shortlist.TopN
		}

		jobs, err := talent.LoadJobs(jobsPath)
		if err != nil {
			logger.Fatal("loading jobs", zap.Error(err))
		}

		job, err := chooseJob(jobs, jobID, yes)
		if err != nil {
			logger.Fatal("choosing a job", zap.Error(err))
		}

		gateway := newGateway(ctx, config.AI, logger)
		shortlister := shortlist.NewShortlister(gateway, scoring.NewCalculator(logger), logger,
			shortlist.WithMaxFieldRunes(config.Shortlist.MaxFieldRunes),
		)

		if err := runShortlist(ctx, logger, shortlister, applications, job, top, cmd.OutOrStdout()); err != nil {
			logger.Fatal("shortlisting failed", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(shortlistCmd)

	shortlistCmd.Flags().StringP("applications", "a", "", "applications JSON file")
	shortlistCmd.Flags().StringP("jobs", "f", "", "job catalog JSON file")
	shortlistCmd.Flags().String("job-id", "", "job to shortlist for")
	shortlistCmd.Flags().IntP("top", "n", 0, "maximum number of entries (default shortlist.top-n)")
	shortlistCmd.Flags().BoolP("yes", "y", false, "do not ask which job to use, take the first one")

	shortlistCmd.MarkFlagRequired("applications")
	shortlistCmd.MarkFlagRequired("jobs")
}

func runShortlist(ctx context.Context, logger *zap.Logger, shortlister *shortlist.Shortlister, applicationsPath string, job *talent.JobPosting, top int, out io.Writer) error {
	applications, err := talent.LoadApplications(applicationsPath)
	if err != nil {
		return fmt.Errorf("loading applications: %w", err)
	}

	logger.Info("starting the shortlist",
		zap.String("job_id", job.ID),
		zap.String("job_title", job.Title),
		zap.Int("applications", len(applications)),
	)

	entries := shortlister.AIShortlistCandidates(ctx, applications, job, top)

	return printJSON(out, entries)
}

// chooseJob resolves the job to shortlist for, asking interactively when the catalog is ambiguous.
func chooseJob(jobs *talent.Jobs, id string, assumeYes bool) (*talent.JobPosting, error) {
	if strings.TrimSpace(id) != "" || jobs.Len() <= 1 {
		return jobByID(jobs, id)
	}

	if assumeYes {
		return jobs.Items[0], nil
	}

	items := make([]string, 0, jobs.Len())
	for _, job := range jobs.Items {
		items = append(items, fmt.Sprintf("%s %s / %s", job.ID, job.Title, job.Company))
	}

	jobPrompt := promptui.Select{
		Label: "Choose a job and press ENTER",
		Items: items,
	}

	idx, _, err := jobPrompt.Run()
	if err != nil {
		return nil, err
	}

	return jobs.Items[idx], nil
}

