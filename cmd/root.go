package cmd

import (
	"errors"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/eo-scorer/internal/batch"
	"github.com/spigell/eo-scorer/internal/enrichlayer"
	"github.com/spigell/eo-scorer/internal/enrichment"
)

const (
	app = "eo-scorer"

	envEnrichLayerKey = "ENRICHLAYER_API_KEY"
	envGeminiKey      = "GEMINI_API_KEY"
	envAnthropicKey   = "ANTHROPIC_API_KEY"
)

type Config struct {
	EnrichLayer *EnrichLayerConfig `mapstructure:"enrichlayer"`
	AI          *AIConfig          `mapstructure:"ai"`
	Batch       *BatchConfig       `mapstructure:"batch"`
}

type EnrichLayerConfig struct {
	APIKey       string        `mapstructure:"api-key" json:"-"`
	APIKeyFile   string        `mapstructure:"api-key-file"`
	BaseURL      string        `mapstructure:"base-url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	SleepBetween time.Duration `mapstructure:"sleep-between"`
}

type AIConfig struct {
	Provider   string           `mapstructure:"provider"`
	PromptFile string           `mapstructure:"prompt-file"`
	Gemini     *GeminiConfig    `mapstructure:"gemini"`
	Anthropic  *AnthropicConfig `mapstructure:"anthropic"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key" json:"-"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type AnthropicConfig struct {
	APIKey       string `mapstructure:"api-key" json:"-"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type BatchConfig struct {
	Out       string        `mapstructure:"out"`
	URLColumn string        `mapstructure:"url-col"`
	RowDelay  time.Duration `mapstructure:"row-delay"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "eo-scorer rates LinkedIn profiles for entrepreneurial orientation",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	for key, env := range map[string]string{
		"enrichlayer.api-key":       envEnrichLayerKey,
		"enrichlayer.api-key-file":  "ENRICHLAYER_API_KEY_FILE",
		"ai.provider":               "EO_SCORER_AI_PROVIDER",
		"ai.prompt-file":            "EO_SCORER_PROMPT_FILE",
		"ai.gemini.api-key":         envGeminiKey,
		"ai.gemini.api-key-file":    "GEMINI_API_KEY_FILE",
		"ai.gemini.model":           "GEMINI_MODEL",
		"ai.anthropic.api-key":      envAnthropicKey,
		"ai.anthropic.api-key-file": "ANTHROPIC_API_KEY_FILE",
		"ai.anthropic.model":        "ANTHROPIC_MODEL",
	} {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	viper.SetDefault("enrichlayer.timeout", enrichlayer.DefaultTimeout)
	viper.SetDefault("enrichlayer.sleep-between", enrichment.DefaultSleepBetween)
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("batch.out", "output_llm_analysis.csv")
	viper.SetDefault("batch.row-delay", batch.DefaultRowDelay)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is eo-scorer.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	// The config file is optional: everything can come from the environment.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.EnrichLayer == nil {
		config.EnrichLayer = &EnrichLayerConfig{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}
	if config.AI.Anthropic == nil {
		config.AI.Anthropic = &AnthropicConfig{}
	}
	if config.Batch == nil {
		config.Batch = &BatchConfig{}
	}

	return config, nil
}
