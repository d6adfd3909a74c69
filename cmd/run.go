package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/sevahub/volunteer-shortlister/internal/ai"
	"github.com/sevahub/volunteer-shortlister/internal/ai/gemini"
	"github.com/sevahub/volunteer-shortlister/internal/export"
	"github.com/sevahub/volunteer-shortlister/internal/filtering"
	"github.com/sevahub/volunteer-shortlister/internal/logger"
	"github.com/sevahub/volunteer-shortlister/internal/matching"
	"github.com/sevahub/volunteer-shortlister/internal/output"
	"github.com/sevahub/volunteer-shortlister/internal/roster"
	"github.com/sevahub/volunteer-shortlister/internal/secrets"
	"github.com/sevahub/volunteer-shortlister/internal/store"
	"github.com/sevahub/volunteer-shortlister/internal/vms"
	"github.com/sevahub/volunteer-shortlister/internal/volunteer"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptSaveToDatabase      = "Save shortlist to database"
	PromptExportToExcel       = "Export shortlist to Excel"
	PromptShortlistToFile     = "Dump shortlist to file"
	PromptVolunteersToFile    = "Dump volunteers to file"
	PromptAppendToExcludeFile = "Append shortlisted volunteers to exclude file"
	PromptExit                = "Exit"

	sourceDatabase = "database"
	sourceExcel    = "excel"
	sourceVMS      = "vms"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "Proceed?",
	Items: []string{PromptSaveToDatabase, PromptExportToExcel, PromptShortlistToFile, PromptVolunteersToFile, PromptAppendToExcludeFile, PromptExit},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Shortlist volunteers for an opportunity description",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("job", "t", "", "opportunity description text. Overrides the config file.")
	runCmd.Flags().BoolP("auto-save", "y", false, "save the shortlist to the database without asking")
	runCmd.Flags().StringP("exclude-file", "e", "", "special file with volunteers to exclude. Default is unset.")
	runCmd.Flags().StringP("output", "o", "shortlist.xlsx", "path for the Excel export action")

	viper.BindPFlag("exclude-file", runCmd.Flags().Lookup("exclude-file"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the volunteer-shortlister", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		logger.Fatal("config is required")
	}

	jobDescription, err := resolveJobDescription(cmd, config)
	if err != nil {
		logger.Fatal("resolving the opportunity description", zap.Error(err))
	}

	volunteers, err := loadVolunteers(ctx, config, logger)
	if err != nil {
		logger.Fatal("loading volunteers", zap.Error(err))
	}

	logger.Info("loading volunteers", zap.Int("count", volunteers.Len()))

	if volunteers.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no volunteers found"))
		return
	}

	filtered, err := filtering.Run(ctx, prepareFilterConfig(config), filtering.Deps{Logger: logger}, prepareFilters(), volunteers)
	if err != nil {
		logger.Fatal("filtering failed", zap.Error(err))
	}
	volunteers = filtered

	if volunteers.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no volunteers left after filters"))
		return
	}

	query := enhanceQuery(ctx, config, logger, jobDescription)

	minScore, maxResults := matchingLimits(config)
	results := matching.NewRanker(logger).Shortlist(volunteers, query, minScore, maxResults)

	if len(results) == 0 {
		logger.Info("exiting", zap.String("reason", "no volunteers passed the score threshold"))
		return
	}

	logShortlist(logger, results)

	table := output.NewShortlistTable()
	table.AddResults(results)
	table.Render()

	if cmd.Flag("auto-save").Value.String() == "true" {
		if err := saveShortlist(ctx, config, logger, jobDescription, results); err != nil {
			logger.Fatal("saving the shortlist", zap.Error(err))
		}
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(ctx, cmd, action, config, logger, jobDescription, volunteers, results); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(ctx context.Context, cmd *cobra.Command, action string, config *Config, logger *zap.Logger, jobDescription string, volunteers *volunteer.Volunteers, results []matching.MatchResult) error {
	switch action {
	case PromptSaveToDatabase:
		return saveShortlist(ctx, config, logger, jobDescription, results)
	case PromptExportToExcel:
		path := cmd.Flag("output").Value.String()
		if err := export.ToExcel(path, jobDescription, results); err != nil {
			return fmt.Errorf("exporting shortlist: %w", err)
		}
		logger.Info("shortlist exported", zap.String("path", path))
		return nil
	case PromptShortlistToFile:
		filename, err := dumpShortlist(results)
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptVolunteersToFile:
		filename, err := volunteers.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump volunteers to file: %w", err)
		}
		logger.Info("dumping volunteers to file", zap.String("filename", filename))
		return nil
	case PromptAppendToExcludeFile:
		return appendToExcludeFile(logger, results)
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// saveShortlist makes sure every shortlisted volunteer exists in the database
// and replaces the stored shortlist.
func saveShortlist(ctx context.Context, config *Config, logger *zap.Logger, jobDescription string, results []matching.MatchResult) error {
	db, err := openStore(ctx, config, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, result := range results {
		if result.Volunteer == nil {
			continue
		}
		id, inserted, err := db.InsertVolunteer(ctx, result.Volunteer)
		if err != nil {
			return fmt.Errorf("storing volunteer %q: %w", result.Volunteer.Email, err)
		}
		result.Volunteer.ID = id
		if inserted {
			logger.Debug("volunteer stored", zap.String("volunteer_id", id))
		}
	}

	if err := db.SaveShortlist(ctx, jobDescription, results); err != nil {
		return fmt.Errorf("saving shortlist: %w", err)
	}

	stats, err := db.Stats(ctx)
	if err != nil {
		return fmt.Errorf("reading store stats: %w", err)
	}

	logger.Info("shortlist saved to database",
		zap.Int("volunteers", stats.Volunteers),
		zap.Int("shortlisted", stats.Shortlisted),
		zap.Float64("average_score", stats.AverageScore),
	)

	return nil
}

func appendToExcludeFile(logger *zap.Logger, results []matching.MatchResult) error {
	excludeFile := strings.TrimSpace(viper.GetString("exclude-file"))
	if excludeFile == "" {
		return errors.New("exclude file is not configured")
	}

	excluded := &volunteer.ExcludedVolunteers{}
	if _, err := os.Stat(excludeFile); err == nil {
		excluded, err = volunteer.GetExcludedVolunteersFromFile(excludeFile)
		if err != nil {
			return err
		}
	}

	shortlisted := &volunteer.Volunteers{}
	for _, result := range results {
		if result.Volunteer != nil {
			shortlisted.Items = append(shortlisted.Items, result.Volunteer)
		}
	}

	excluded.Append(shortlisted.ToExcluded(volunteer.ExcludeActorUser, "already shortlisted"))

	if err := excluded.ToFile(excludeFile); err != nil {
		return err
	}

	logger.Info("appended to exclude file",
		zap.String("filename", excludeFile),
		zap.Strings("emails", shortlisted.Emails()),
	)
	return nil
}

func dumpShortlist(results []matching.MatchResult) (string, error) {
	file, err := os.CreateTemp("", "shortlist_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return "", err
	}
	return file.Name(), nil
}

func logShortlist(log *zap.Logger, results []matching.MatchResult) {
	for _, result := range results {
		if result.Volunteer == nil {
			continue
		}
		log.Debug("shortlisted volunteer",
			logger.MatchFields(result.Volunteer.ID, result.Volunteer.Name, result.Score, result.MatchingSkills)...,
		)
	}
}

// enhanceQuery optionally extends the opportunity description with AI
// extracted keywords. Matching proceeds with the plain description when the
// provider is disabled or fails.
func enhanceQuery(ctx context.Context, config *Config, log *zap.Logger, jobDescription string) string {
	extractor, err := newKeywordExtractor(ctx, config.AI, log)
	if err != nil {
		log.Warn("skipping keyword extraction", zap.Error(err))
		return jobDescription
	}
	if extractor == nil {
		return jobDescription
	}

	keywords, err := extractor.Extract(ctx, jobDescription)
	if err != nil {
		log.Warn("keyword extraction failed", zap.Error(err))
		return jobDescription
	}

	if len(keywords.All) == 0 {
		return jobDescription
	}

	log.Info("extracted keywords", zap.Strings("keywords", keywords.All))
	return jobDescription + " " + strings.Join(keywords.All, " ")
}

func newKeywordExtractor(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.Extractor, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	if cfg.Gemini == nil {
		return nil, errors.New("gemini configuration is required when ai is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
	}

	genLogger := logger.WithCommonFields(log, "gemini", cfg.Gemini.Model)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	return gemini.NewExtractor(generator, genLogger, cfg.Gemini.MaxLogLength), nil
}

func resolveJobDescription(cmd *cobra.Command, config *Config) (string, error) {
	if flag := cmd.Flag("job"); flag != nil {
		if text := strings.TrimSpace(flag.Value.String()); text != "" {
			return text, nil
		}
	}

	if config.Job == nil {
		return "", errors.New("opportunity description is required under job.description or via the --job flag")
	}

	if text := strings.TrimSpace(config.Job.Description); text != "" {
		return text, nil
	}

	if file := strings.TrimSpace(config.Job.DescriptionFile); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading description file: %w", err)
		}
		if text := strings.TrimSpace(string(data)); text != "" {
			return text, nil
		}
		return "", fmt.Errorf("description file %q is empty", file)
	}

	return "", errors.New("opportunity description is required under job.description or via the --job flag")
}

// loadVolunteers returns volunteer records from the configured source.
func loadVolunteers(ctx context.Context, config *Config, log *zap.Logger) (*volunteer.Volunteers, error) {
	source := config.Source
	if source == nil {
		source = &SourceConfig{Kind: sourceDatabase}
	}

	switch strings.TrimSpace(strings.ToLower(source.Kind)) {
	case sourceDatabase, "":
		db, err := openStore(ctx, config, log)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return db.AllVolunteers(ctx)
	case sourceExcel:
		if strings.TrimSpace(source.Roster) == "" {
			return nil, errors.New("source.roster is required for the excel source")
		}
		return roster.Import(source.Roster, log)
	case sourceVMS:
		client, err := newVMSClient(ctx, config, log)
		if err != nil {
			return nil, err
		}
		return client.GetVolunteers(source.List)
	default:
		return nil, fmt.Errorf("unsupported volunteer source: %s", source.Kind)
	}
}

func openStore(ctx context.Context, config *Config, log *zap.Logger) (*store.Store, error) {
	db, err := store.New(ctx, config.Database, log)
	if err != nil {
		return nil, fmt.Errorf("connecting to the database: %w", err)
	}
	return db, nil
}

func newVMSClient(ctx context.Context, config *Config, log *zap.Logger) (*vms.Client, error) {
	tokenFile := ""
	if config.VMS != nil {
		tokenFile = strings.TrimSpace(config.VMS.TokenFile)
	}
	if tokenFile == "" {
		tokenFile = strings.TrimSpace(viper.GetString("vms.token-file"))
	}

	token, err := secrets.Load(secrets.Source{
		Name: "vms token",
		File: tokenFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set VMS_TOKEN_FILE environment variable or the 'vms.token-file' key in the configuration file)", err)
	}

	client := vms.New(ctx, log, token)
	if config.VMS != nil {
		if config.VMS.UserAgent != "" {
			client.UserAgent = config.VMS.UserAgent
		}
		if config.VMS.APIURL != "" {
			client.APIURL = config.VMS.APIURL
		}
	}

	return client, nil
}

func prepareFilters() []filtering.Filter {
	return []filtering.Filter{
		filtering.NewEligibility(),
		filtering.NewDedupe(),
		filtering.NewExcludeEmails(),
		filtering.NewExcludeFile(),
	}
}

func prepareFilterConfig(config *Config) *filtering.Config {
	cfg := &filtering.Config{
		ExcludeFile: strings.TrimSpace(viper.GetString("exclude-file")),
	}
	if cfg.ExcludeFile == "" {
		cfg.ExcludeFile = strings.TrimSpace(config.ExcludeFile)
	}
	if config.Exclude != nil {
		cfg.ExcludeEmails = config.Exclude.Emails
	}
	return cfg
}

func matchingLimits(config *Config) (float64, int) {
	minScore := matching.DefaultMinScore
	maxResults := matching.DefaultMaxResults

	if config.Matching != nil {
		if config.Matching.MinScore > 0 {
			minScore = config.Matching.MinScore
		}
		if config.Matching.MaxResults > 0 {
			maxResults = config.Matching.MaxResults
		}
	}

	return minScore, maxResults
}
