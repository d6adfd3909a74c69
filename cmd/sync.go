package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/sevahub/volunteer-shortlister/internal/logger"
	"github.com/sevahub/volunteer-shortlister/internal/roster"
	"github.com/sevahub/volunteer-shortlister/internal/utils"
	"github.com/sevahub/volunteer-shortlister/internal/volunteer"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Import volunteers from the roster workbook or the VMS into the database",
	Run: func(cmd *cobra.Command, _ []string) {
		sync(cmd)
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().StringP("roster", "r", "", "path to a roster workbook. Overrides the config file.")
	syncCmd.Flags().DurationP("watch", "w", 0, "keep syncing with the given interval. Default is a single sync.")
}

func sync(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil {
		logger.Fatal("config is required")
	}

	logger.Info("starting the sync", zap.String("version", version))

	interval, err := cmd.Flags().GetDuration("watch")
	if err != nil {
		logger.Fatal("reading the watch flag", zap.Error(err))
	}

	for {
		if err := syncOnce(ctx, cmd, config, logger); err != nil {
			logger.Fatal("sync failed", zap.Error(err))
		}

		if interval <= 0 {
			return
		}

		logger.Info("waiting for the next sync", zap.Duration("interval", interval))
		if err := utils.WaitFor(ctx, interval); err != nil {
			logger.Info("exiting", zap.Error(err))
			return
		}
	}
}

func syncOnce(ctx context.Context, cmd *cobra.Command, config *Config, log *zap.Logger) error {
	volunteers, err := loadSyncSource(ctx, cmd, config, log)
	if err != nil {
		return err
	}

	if volunteers.Len() == 0 {
		log.Info("nothing to sync", zap.String("reason", "no volunteers found in the source"))
		return nil
	}

	db, err := openStore(ctx, config, log)
	if err != nil {
		return err
	}
	defer db.Close()

	inserted, skipped := 0, 0
	for _, v := range volunteers.Items {
		if !v.HasBasicInfo() {
			skipped++
			continue
		}

		_, stored, err := db.InsertVolunteer(ctx, v)
		if err != nil {
			return fmt.Errorf("storing volunteer %q: %w", v.Email, err)
		}
		if stored {
			inserted++
		} else {
			skipped++
		}
	}

	stats, err := db.Stats(ctx)
	if err != nil {
		return fmt.Errorf("reading store stats: %w", err)
	}

	log.Info("sync completed",
		zap.Int("inserted", inserted),
		zap.Int("skipped", skipped),
		zap.Int("volunteers_total", stats.Volunteers),
	)

	return nil
}

// loadSyncSource reads volunteers from the roster workbook or the VMS. The
// database source makes no sense here since it is the sync target.
func loadSyncSource(ctx context.Context, cmd *cobra.Command, config *Config, log *zap.Logger) (*volunteer.Volunteers, error) {
	if flag := cmd.Flag("roster"); flag != nil {
		if path := strings.TrimSpace(flag.Value.String()); path != "" {
			return roster.Import(path, log)
		}
	}

	source := config.Source
	if source == nil {
		return nil, errors.New("a sync source is required under source.kind or via the --roster flag")
	}

	switch strings.TrimSpace(strings.ToLower(source.Kind)) {
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
		return nil, fmt.Errorf("unsupported sync source: %s", source.Kind)
	}
}
