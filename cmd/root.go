package cmd

import (
	"log"

	"github.com/sevahub/volunteer-shortlister/internal/store"
	"github.com/sevahub/volunteer-shortlister/internal/vms"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "volunteer-shortlister"
)

type Config struct {
	Job *struct {
		Description     string `mapstructure:"description"`
		DescriptionFile string `mapstructure:"description-file"`
	} `mapstructure:"job"`
	Source      *SourceConfig   `mapstructure:"source"`
	Matching    *MatchingConfig `mapstructure:"matching"`
	ExcludeFile string          `mapstructure:"exclude-file"`
	Exclude     *struct {
		Emails []string
	}
	Database *store.Config `mapstructure:"database"`
	VMS      *VMSConfig    `mapstructure:"vms"`
	AI       *AIConfig     `mapstructure:"ai"`
}

// SourceConfig selects where volunteer records come from.
type SourceConfig struct {
	Kind   string `mapstructure:"kind"`
	Roster string `mapstructure:"roster"`
	List   *vms.ListParams
}

type MatchingConfig struct {
	MinScore   float64 `mapstructure:"min-score"`
	MaxResults int     `mapstructure:"max-results"`
}

type VMSConfig struct {
	TokenFile string `mapstructure:"token-file"`
	UserAgent string `mapstructure:"user-agent"`
	APIURL    string `mapstructure:"api-url"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "volunteer-shortlister matches volunteers against opportunity descriptions and shortlists the best fits",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("vms.token-file", "VMS_TOKEN_FILE"); err != nil {
		log.Fatalf("binding VMS_TOKEN_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is volunteer-shortlister.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config needed only for run and sync commands now. If there is no config, we can skip initialization
	if runCmd.CalledAs() == "" && syncCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
