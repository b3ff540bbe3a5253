package cmd

import (
	"context"
	"database/sql"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/dbrainlab/autoindex/optimizer"
	"github.com/dbrainlab/autoindex/tuner"
	"github.com/dbrainlab/autoindex/utils"
)

type tuneCmdOpt struct {
	dsn        string
	schemaName string
	configPath string
	logLevel   string
}

func newTuneCmd() *cobra.Command {
	var opt tuneCmdOpt
	cmd := &cobra.Command{
		Use:   "tune",
		Short: "periodically tune the indexes of a running cluster",
		Long: `periodically tune the indexes of a running cluster.
Each pass reads the query history recorded since the previous pass; once
enough queries have accumulated, the current secondary indexes are replaced
with the advisor's recommendation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			utils.SetLogLevel(opt.logLevel)
			return tune(opt)
		},
	}

	cmd.Flags().StringVar(&opt.dsn, "dsn", "root:@tcp(127.0.0.1:4000)/test", "dsn")
	cmd.Flags().StringVar(&opt.schemaName, "schema-name", "test", "the schema(database) name to tune")
	cmd.Flags().StringVar(&opt.configPath, "config", "", "path of the TOML settings file")
	cmd.Flags().StringVar(&opt.logLevel, "log-level", "info", "log level, one of 'debug', 'info', 'warning', 'error'")
	return cmd
}

func tune(opt tuneCmdOpt) error {
	settings := tuner.DefaultSettings()
	if opt.configPath != "" {
		var err error
		if settings, err = tuner.LoadSettings(opt.configPath); err != nil {
			return err
		}
	}

	db, err := sql.Open("mysql", opt.dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return err
	}

	whatIf, err := optimizer.NewTiDBWhatIfOptimizer(opt.dsn)
	if err != nil {
		return err
	}
	defer whatIf.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	job := tuner.NewJobFromDB(settings, opt.schemaName, db, whatIf)
	if err := job.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
