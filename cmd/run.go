package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/eo-scorer/internal/batch"
	"github.com/spigell/eo-scorer/internal/logger"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var prompt = promptui.Select{
	Label: "Proceed?",
	Items: []string{PromptYes, PromptNo},
}

var runCmd = &cobra.Command{
	Use:   "run <input.csv>",
	Short: "Score every profile URL of a CSV file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		run(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation before scoring")
	runCmd.Flags().StringP("out", "o", "", "output CSV file (default is output_llm_analysis.csv)")
	runCmd.Flags().String("url-col", "", "column holding profile URLs (detected when unset)")
	runCmd.Flags().Duration("row-delay", 0, "minimal delay between profile fetches")

	viper.BindPFlag("batch.out", runCmd.Flags().Lookup("out"))
	viper.BindPFlag("batch.url-col", runCmd.Flags().Lookup("url-col"))
	viper.BindPFlag("batch.row-delay", runCmd.Flags().Lookup("row-delay"))
}

// run scores a CSV file and writes the results next to the original columns.
func run(cmd *cobra.Command, input string) {
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

	logger.Info("starting the eo-scorer", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	table, err := loadTable(input, config.Batch.URLColumn)
	if err != nil {
		logger.Fatal("loading input csv", zap.String("input", input), zap.Error(err))
	}

	if len(table.Rows) == 0 {
		logger.Info("exiting", zap.String("reason", "no rows in input"))
		return
	}

	logger.Info("input loaded",
		zap.Int("rows", len(table.Rows)),
		zap.String("url_column", table.URLColumn),
	)

	client, err := newEnrichLayer(config.EnrichLayer, logger)
	if err != nil {
		logger.Fatal("creating enrichlayer client", zap.Error(err))
	}

	scorer, err := newScorer(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal("creating scorer", zap.Error(err))
	}

	if cmd.Flag("auto-approve").Value.String() == "false" {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		if action != PromptYes {
			logger.Info("exiting", zap.String("reason", "got no from prompt"))
			return
		}
	}

	runner := batch.NewRunner(client, newEnricher(client, config.EnrichLayer, logger), scorer, config.Batch.RowDelay, logger)

	results, runErr := runner.Run(ctx, table)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		logger.Fatal("scoring failed", zap.Error(runErr))
	}

	if err := writeResults(config.Batch.Out, table.Header, results); err != nil {
		logger.Fatal("writing results", zap.Error(err))
	}

	if runErr != nil {
		logger.Warn("interrupted, partial results written",
			zap.Int("rows", len(results)),
			zap.String("out", config.Batch.Out),
		)
		return
	}

	logger.Info("batch completed", zap.Int("rows", len(results)), zap.String("out", config.Batch.Out))
}

func loadTable(path, urlColumn string) (*batch.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return batch.LoadRows(f, urlColumn)
}

func writeResults(path string, header []string, results []batch.Result) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := batch.WriteResults(f, header, results); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
