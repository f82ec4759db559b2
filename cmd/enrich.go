package cmd

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/eo-scorer/internal/logger"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich <profile-url>",
	Short: "Fetch one profile, attach company data and print it as JSON",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		enrich(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(enrichCmd)

	enrichCmd.Flags().BoolP("score", "s", false, "score the enriched profile as well")
}

type enrichOutput struct {
	Profile map[string]any `json:"profile"`
	Score   any            `json:"score,omitempty"`
}

func enrich(cmd *cobra.Command, profileURL string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	client, err := newEnrichLayer(config.EnrichLayer, logger)
	if err != nil {
		logger.Fatal("creating enrichlayer client", zap.Error(err))
	}

	profile, err := client.FetchProfile(ctx, profileURL)
	if err != nil {
		logger.Fatal("fetching profile", zap.String("profile_url", profileURL), zap.Error(err))
	}

	report := newEnricher(client, config.EnrichLayer, logger).Enrich(ctx, profile)
	logger.Info("profile enriched",
		zap.Int("experiences", report.Experiences),
		zap.Int("companies_fetched", report.Fetched),
		zap.Int("companies_reused", report.Reused),
		zap.Int("volunteer_skipped", report.Volunteer),
		zap.Int("companies_failed", report.Failed),
	)

	out := enrichOutput{Profile: profile}

	if score, _ := cmd.Flags().GetBool("score"); score {
		scorer, err := newScorer(ctx, config.AI, logger)
		if err != nil {
			logger.Fatal("creating scorer", zap.Error(err))
		}

		result, err := scorer.Score(ctx, profile)
		if err != nil {
			logger.Fatal("scoring profile", zap.Error(err))
		}
		out.Score = result
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Fatal("writing output", zap.Error(err))
	}
}
