package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/talent-matcher/internal/filtering"
	"github.com/spigell/talent-matcher/internal/scoring"
	"github.com/spigell/talent-matcher/internal/talent"
)

const rememberReason = "recommended"

type resumeRecommendations struct {
	Resume          string                   `json:"resume"`
	Recommendations []scoring.Recommendation `json:"recommendations"`
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend open jobs for one or more resumes",
	Run: func(cmd *cobra.Command, _ []string) {
		logger, config := setup()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		resumes, _ := cmd.Flags().GetStringSlice("resume")
		jobsPath, _ := cmd.Flags().GetString("jobs")
		includeClosed, _ := cmd.Flags().GetBool("include-closed")
		remember, _ := cmd.Flags().GetBool("remember")

		opts := recommendOptions{
			resumes:       resumes,
			jobsPath:      jobsPath,
			includeClosed: includeClosed,
			remember:      remember,
		}

		if err := runRecommend(ctx, logger, config.Recommend, opts, cmd.OutOrStdout()); err != nil {
			logger.Fatal("recommending failed", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(recommendCmd)

	recommendCmd.Flags().StringSliceP("resume", "r", nil, "resume profile JSON file, repeatable")
	recommendCmd.Flags().StringP("jobs", "f", "", "job catalog JSON file")
	recommendCmd.Flags().StringP("exclude-file", "e", "", "file with jobs to exclude. Default is unset.")
	recommendCmd.Flags().Bool("include-closed", false, "do not drop closed jobs")
	recommendCmd.Flags().Bool("remember", false, "append recommended jobs to the exclude file so later runs skip them")

	recommendCmd.MarkFlagRequired("resume")
	recommendCmd.MarkFlagRequired("jobs")

	viper.BindPFlag("recommend.exclude-file", recommendCmd.Flags().Lookup("exclude-file"))
}

type recommendOptions struct {
	resumes       []string
	jobsPath      string
	includeClosed bool
	remember      bool
}

func runRecommend(ctx context.Context, logger *zap.Logger, cfg *RecommendConfig, opts recommendOptions, out io.Writer) error {
	if cfg == nil {
		cfg = &RecommendConfig{}
	}

	jobs, err := talent.LoadJobs(opts.jobsPath)
	if err != nil {
		return fmt.Errorf("loading jobs: %w", err)
	}
	logger.Info("loaded job catalog", zap.Int("count", jobs.Len()))

	steps := filtering.Default()
	if opts.includeClosed {
		filtering.DisableByName(steps, filtering.NameOpenOnly, "include-closed flag is set")
	}

	jobs, err = filtering.Run(ctx, &filtering.Config{
		ExcludeCompanies: cfg.ExcludeCompanies,
		ExcludeFile:      cfg.ExcludeFile,
	}, filtering.Deps{Logger: logger}, steps, jobs)
	if err != nil {
		return fmt.Errorf("filtering jobs: %w", err)
	}

	results, err := recommendAll(ctx, logger, opts.resumes, jobs.Items, cfg.Concurrency)
	if err != nil {
		return err
	}

	if opts.remember {
		if err := remember(logger, cfg.ExcludeFile, results); err != nil {
			return err
		}
	}

	return printJSON(out, results)
}

// recommendAll scores resumes in parallel. The job slice is shared read-only between workers.
func recommendAll(ctx context.Context, logger *zap.Logger, paths []string, jobs []*talent.JobPosting, concurrency int) ([]resumeRecommendations, error) {
	if concurrency <= 0 {
		concurrency = 1
	}

	recommender := scoring.NewRecommender(scoring.NewCalculator(logger), logger)
	results := make([]resumeRecommendations, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for idx, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			resume, err := talent.LoadResume(path)
			if err != nil {
				return fmt.Errorf("loading resume %s: %w", path, err)
			}

			recommendations := recommender.GetRecommendedJobs(resume, jobs)
			logger.Info("recommendations ready",
				zap.String("resume", path),
				zap.Int("count", len(recommendations)),
			)

			results[idx] = resumeRecommendations{Resume: path, Recommendations: recommendations}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func remember(logger *zap.Logger, excludeFile string, results []resumeRecommendations) error {
	excludeFile = strings.TrimSpace(excludeFile)
	if excludeFile == "" {
		return fmt.Errorf("--remember needs an exclude file (recommend.exclude-file or --exclude-file)")
	}

	seen := make(map[string]struct{})
	recommended := &talent.Jobs{}
	for _, result := range results {
		for _, rec := range result.Recommendations {
			if _, ok := seen[rec.Job.ID]; ok {
				continue
			}
			seen[rec.Job.ID] = struct{}{}
			recommended.Items = append(recommended.Items, rec.Job)
		}
	}

	if recommended.Len() == 0 {
		return nil
	}

	excluded, err := talent.GetExcludedJobsFromFile(excludeFile)
	if err != nil {
		return fmt.Errorf("reading exclude file: %w", err)
	}

	excluded.Append(recommended.ToExcluded(talent.ExcludeActorFilter, rememberReason))

	if err := excluded.ToFile(excludeFile); err != nil {
		return fmt.Errorf("writing exclude file: %w", err)
	}

	logger.Info("appended to exclude file",
		zap.String("filename", excludeFile),
		zap.Int("jobs", recommended.Len()),
	)
	return nil
}
