package cmd

import (
	"context"
	"fmt"
	"path"

	"github.com/spf13/cobra"

	"github.com/dbrainlab/autoindex/advisor"
	"github.com/dbrainlab/autoindex/optimizer"
	"github.com/dbrainlab/autoindex/utils"
	"github.com/dbrainlab/autoindex/workload"
)

type adviseCmdOpt struct {
	maxNumIndexes        int
	maxIndexWidth        int
	enumerationThreshold int

	dsn          string
	schemaName   string
	workloadPath string
	logLevel     string
}

func newAdviseCmd() *cobra.Command {
	var opt adviseCmdOpt
	cmd := &cobra.Command{
		Use:   "advise",
		Short: "advise some indexes for the specified workload",
		Long: `advise some indexes for the specified workload.
The workload directory contains 'schema.sql' (create-table statements) and
'queries.sql' (the workload); candidate indexes are evaluated against the
cluster behind the DSN through its hypothetical-index feature.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			utils.SetLogLevel(opt.logLevel)
			recommendation, err := advise(opt)
			if err != nil {
				return err
			}
			for _, idx := range recommendation.List() {
				fmt.Println(idx.Hypo().DDL() + ";")
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&opt.maxNumIndexes, "max-num-indexes", 5, "max number of indexes to recommend, 1~20")
	cmd.Flags().IntVar(&opt.maxIndexWidth, "max-index-width", 3, "the max number of columns in recommended indexes")
	cmd.Flags().IntVar(&opt.enumerationThreshold, "enumeration-threshold", 2, "the exhaustive-enumeration width of the search")

	cmd.Flags().StringVar(&opt.dsn, "dsn", "root:@tcp(127.0.0.1:4000)/test", "dsn")
	cmd.Flags().StringVar(&opt.schemaName, "schema-name", "test", "the schema(database) name to run all queries on the workload")
	cmd.Flags().StringVar(&opt.workloadPath, "workload-path", "", "workload directory containing schema.sql and queries.sql")
	cmd.Flags().StringVar(&opt.logLevel, "log-level", "info", "log level, one of 'debug', 'info', 'warning', 'error'")
	return cmd
}

func advise(opt adviseCmdOpt) (*advisor.IndexConfiguration, error) {
	createStmts, err := utils.ParseRawSQLsFromFile(path.Join(opt.workloadPath, "schema.sql"))
	if err != nil {
		return nil, err
	}
	catalog, err := workload.BuildCatalog(opt.schemaName, createStmts)
	if err != nil {
		return nil, err
	}

	rawSQLs, err := utils.ParseRawSQLsFromFile(path.Join(opt.workloadPath, "queries.sql"))
	if err != nil {
		return nil, err
	}
	w := workload.NewWorkload()
	for _, sql := range rawSQLs {
		q, err := workload.ParseQuery(opt.schemaName, sql)
		if err != nil {
			utils.Warningf("skip unparseable query %q: %v", sql, err)
			continue
		}
		w.Add(q)
	}

	db, err := optimizer.NewTiDBWhatIfOptimizer(opt.dsn)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	knobs := advisor.Knobs{
		MaxIndexCols:         opt.maxIndexWidth,
		EnumerationThreshold: opt.enumerationThreshold,
		NumIndexes:           opt.maxNumIndexes,
	}
	recommendation, err := advisor.BestIndexes(context.Background(), db, catalog, w, knobs)
	if err != nil {
		return nil, err
	}
	utils.Infof("what-if optimizer usage: %v", db.Stats().Format())
	return recommendation, nil
}
