package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"lgexport/internal/config"
	"lgexport/internal/generator"
	"lgexport/internal/logging"
	"lgexport/internal/pipeline"
	"lgexport/internal/project"
	"lgexport/internal/storage"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	rootCmd = &cobra.Command{
		Use:          "lgexport",
		Short:        "Compile a conversation project into LU training data and LG response templates",
		SilenceUsage: true,
	}
	configPath string
	snapshot   string
	outputDir  string
	reportPath string
	historyDB  string
	withLuis   bool
	limit      int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&historyDB, "db", "", "Path to the run history database (SQLite)")

	for _, cmd := range []*cobra.Command{compileCmd, validateCmd} {
		cmd.Flags().StringVarP(&snapshot, "snapshot", "s", "", "Project snapshot JSON exported from the project service")
	}
	compileCmd.Flags().StringVarP(&outputDir, "out", "o", "", "Existing, empty directory for the generated files")
	compileCmd.Flags().StringVar(&reportPath, "report", "", "Write the compile report as JSON to this path")
	compileCmd.Flags().BoolVar(&withLuis, "luis", false, "Also write the LUIS application import document")
	historyCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to list")

	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig applies command line flags over the config file.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if snapshot != "" {
		cfg.Project.Snapshot = snapshot
	}
	if outputDir != "" {
		cfg.Output.Dir = outputDir
	}
	if reportPath != "" {
		cfg.Output.Report = reportPath
	}
	if cmd.Flags().Changed("luis") {
		cfg.Output.Luis = withLuis
	}
	if historyDB != "" {
		cfg.History.DB = historyDB
	}
	return cfg, nil
}

func newExport(cfg *config.Config, logger *logging.Logger) *pipeline.Export {
	return &pipeline.Export{
		Source:     project.FileSource{Path: cfg.Project.Snapshot},
		OutputDir:  cfg.Output.Dir,
		ReportPath: cfg.Output.Report,
		Options: generator.Options{
			Delimiter:     cfg.Delimiter(),
			MinUtterances: cfg.Compile.MinUtterances,
			Luis:          cfg.Output.Luis,
			Culture:       cfg.Compile.Culture,
		},
		Logger: logger,
	}
}

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Generate the .lu and .lg files for a project snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err := logging.New(cfg.Log.Mode)
		if err != nil {
			return fmt.Errorf("failed to init logger: %w", err)
		}
		defer logger.Sync()

		export := newExport(cfg, logger)
		if cfg.History.DB != "" {
			store, err := storage.NewSQLiteStore(cfg.History.DB)
			if err != nil {
				return fmt.Errorf("failed to open history database: %w", err)
			}
			defer store.Close()
			export.History = store
		}

		fmt.Printf("📂 Compiling %s into %s\n", cfg.Project.Snapshot, cfg.Output.Dir)
		start := time.Now()
		res, err := export.Run(ctx)
		if err != nil {
			logger.Error("compile failed", "snapshot", cfg.Project.Snapshot, "error", err)
			return err
		}

		for _, p := range res.Paths {
			fmt.Printf("  -> %s\n", p)
		}
		summary := res.Output.Report.Summary
		fmt.Printf("✅ %d intents, %d templates (%d skipped) in %v\n",
			summary.Intents, summary.Templates, summary.SkippedTemplates, time.Since(start).Round(time.Millisecond))
		if w := res.Output.Report.Warnings(); w > 0 {
			fmt.Printf("⚠️  %d data quality warnings, see the log above\n", w)
		}
		if res.RunID != "" {
			fmt.Printf("💾 Recorded run %s\n", res.RunID)
		}
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load and compile a snapshot without writing any file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err := logging.New(cfg.Log.Mode)
		if err != nil {
			return fmt.Errorf("failed to init logger: %w", err)
		}
		defer logger.Sync()

		out, err := newExport(cfg, logger).Check(context.Background())
		if err != nil {
			logger.Error("validation failed", "snapshot", cfg.Project.Snapshot, "error", err)
			return err
		}
		fmt.Printf("✅ %s is valid: %d templates, %d warnings\n",
			cfg.Project.Snapshot, out.Report.Summary.Templates, out.Report.Warnings())
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history [project]",
	Short: "List recent compilation runs",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.History.DB == "" {
			return fmt.Errorf("run history is disabled (history.db is empty)")
		}
		store, err := storage.NewSQLiteStore(cfg.History.DB)
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer store.Close()

		name := ""
		if len(args) > 0 {
			name = args[0]
		}
		runs, err := store.ListRuns(context.Background(), name, limit)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tPROJECT\tWHEN\tTEMPLATES\tWARNINGS")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n", r.ID, r.Project, r.CreatedAt.Local().Format(time.DateTime), r.Templates, r.Warnings)
		}
		return w.Flush()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}
