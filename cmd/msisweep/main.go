package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"msisweep/internal/config"
	"msisweep/internal/keepset"
	"msisweep/internal/pipeline"
	"msisweep/internal/report"
	"msisweep/internal/runlog"
	"msisweep/internal/ui"
	"msisweep/internal/vendorfilter"
)

var (
	Version   = "0.2.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

var (
	configPath     string
	verbose        bool
	autoMode       bool
	autoAllMode    bool
	autoDryMode    bool
	autoDryAllMode bool
	useQuarantine  bool
	quarantineDir  string
	excludeVendors string
	cacheDir       string
	logFile        string
	workers        int
	outputFmt      string
	outputFile     string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "msisweep",
	Short: "Reclaim disk space from the Windows Installer cache",
	Long: `msisweep finds installer-cache payloads (.msi/.msp) that no installed
product or applied patch references any longer, and deletes or quarantines
them. Without mode flags it starts an interactive session.`,
	Version:      fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		fileCfg, err := loadFileConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		runCfg, err := resolveRunConfig(fileCfg)
		if err != nil {
			return err
		}
		if runCfg == nil {
			// Interactive session cancelled.
			return nil
		}

		rep, err := execute(cmd, runCfg)
		if err != nil {
			return err
		}

		format := report.FormatSummary
		if verbose {
			format = report.FormatTable
		}
		return report.New(cmd.OutOrStdout(), format).Report(rep)
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Classify the installer cache without touching anything",
	Long:  `Builds the keep set, classifies every cached payload, and reports what a live run would dispose of. Never mutates the filesystem.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fileCfg, err := loadFileConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		runCfg, err := config.NewRun(fileCfg.CacheDir, true, config.ModeDelete, "",
			mergedVendors(fileCfg, true), fileCfg.Workers, fileCfg.LogFile)
		if err != nil {
			return err
		}

		rep, err := execute(cmd, runCfg)
		if err != nil {
			return err
		}
		return report.New(cmd.OutOrStdout(), report.OutputFormat(outputFmt)).Report(rep)
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a classification report",
	RunE: func(cmd *cobra.Command, args []string) error {
		fileCfg, err := loadFileConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		runCfg, err := config.NewRun(fileCfg.CacheDir, true, config.ModeDelete, "",
			mergedVendors(fileCfg, true), fileCfg.Workers, fileCfg.LogFile)
		if err != nil {
			return err
		}

		rep, err := execute(cmd, runCfg)
		if err != nil {
			return err
		}

		format := report.OutputFormat(outputFmt)
		if outputFile != "" {
			if err := report.SaveToFile(rep, outputFile, format); err != nil {
				return fmt.Errorf("failed to save report: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report saved to: %s\n", outputFile)
			return nil
		}
		return report.New(cmd.OutOrStdout(), format).Report(rep)
	},
}

// execute builds the platform collaborators and runs the pipeline.
func execute(cmd *cobra.Command, runCfg *config.Run) (*report.RunReport, error) {
	source, err := keepset.NewSystemSource()
	if err != nil {
		return nil, err
	}

	audit := runlog.New(runCfg.LogFile)
	p := pipeline.New(runCfg, source, vendorfilter.NewSystemSubjectReader(), audit)
	return p.Run(cmd.Context())
}

// resolveRunConfig turns the mode flags (or the interactive session) into
// a run configuration.
func resolveRunConfig(fileCfg *config.File) (*config.Run, error) {
	modeFlags := 0
	for _, set := range []bool{autoMode, autoAllMode, autoDryMode, autoDryAllMode} {
		if set {
			modeFlags++
		}
	}
	if modeFlags > 1 {
		return nil, fmt.Errorf("conflicting mode flags: pick one of --auto, --auto-all, --auto-dry, --auto-dry-all")
	}

	if modeFlags == 0 {
		return ui.Run(fileCfg)
	}

	dryRun := autoDryMode || autoDryAllMode
	withDefaults := autoMode || autoDryMode

	mode := config.ModeDelete
	quarantine := ""
	if useQuarantine {
		mode = config.ModeQuarantine
		quarantine = fileCfg.QuarantineDir
		if quarantineDir != "" {
			quarantine = quarantineDir
		}
		if quarantine == "" {
			quarantine = config.DefaultQuarantineDir(fileCfg.CacheDir)
		}
	}

	return config.NewRun(fileCfg.CacheDir, dryRun, mode, quarantine,
		mergedVendors(fileCfg, withDefaults), fileCfg.Workers, fileCfg.LogFile)
}

// mergedVendors combines the configured defaults (when wanted) with any
// --exclude-vendors additions.
func mergedVendors(fileCfg *config.File, withDefaults bool) []string {
	var out []string
	if withDefaults {
		out = append(out, fileCfg.VendorFilters...)
	}
	for _, v := range strings.Split(excludeVendors, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func loadFileConfig() (*config.File, error) {
	path := configPath
	if path == "" {
		var err error
		if path, err = config.GetConfigPath(); err != nil {
			return nil, err
		}
	}

	fileCfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	// Flag overrides.
	if cacheDir != "" {
		fileCfg.CacheDir = cacheDir
	}
	if logFile != "" {
		fileCfg.LogFile = logFile
	}
	if workers > 0 {
		fileCfg.Workers = workers
	}
	return fileCfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "installer cache directory to scan")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "append-only run log path")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "classification worker count")
	rootCmd.PersistentFlags().StringVar(&excludeVendors, "exclude-vendors", "", "comma-separated vendor patterns to exclude")

	rootCmd.Flags().BoolVar(&autoMode, "auto", false, "live run with default vendor filter")
	rootCmd.Flags().BoolVar(&autoAllMode, "auto-all", false, "live run without default vendor filter")
	rootCmd.Flags().BoolVar(&autoDryMode, "auto-dry", false, "dry run with default vendor filter")
	rootCmd.Flags().BoolVar(&autoDryAllMode, "auto-dry-all", false, "dry run without vendor filter")
	rootCmd.Flags().BoolVar(&useQuarantine, "quarantine", false, "move orphans instead of deleting them")
	rootCmd.Flags().StringVar(&quarantineDir, "quarantine-dir", "", "holding directory for quarantined files")
	rootCmd.Flags().BoolVar(&verbose, "verbose", false, "print the full per-file table")

	scanCmd.Flags().StringVar(&outputFmt, "output", "summary", "output format (summary, table, json, yaml)")
	reportCmd.Flags().StringVar(&outputFmt, "output", "summary", "output format (summary, table, json, yaml)")
	reportCmd.Flags().StringVar(&outputFile, "file", "", "save report to file")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(reportCmd)
}
