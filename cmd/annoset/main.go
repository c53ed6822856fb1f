// Command annoset converts, filters, transforms and merges annotated
// datasets.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hupe1980/annoset"
)

var (
	// Version information - will be set at build time
	Version   = "dev"
	GitCommit = "unknown"
)

// app carries state shared by subcommands once the configuration is loaded.
type app struct {
	cfg     *Config
	session *annoset.Session
	stdout  io.Writer
	stderr  io.Writer
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "annoset",
		Short: "Annotated dataset conversion, filtering and merging",
		Long: `annoset reads and writes annotated computer-vision datasets in several
formats, filters them with a query language, applies transform pipelines and
merges annotations from several sources into one consensus dataset.`,
		SilenceUsage: true,
		Version:      fmt.Sprintf("%s (%s)", Version, GitCommit),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(viper.New(), configPath, cmd.Flags())
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.stdout = cmd.OutOrStdout()
			a.stderr = cmd.ErrOrStderr()

			s, err := a.newSession()
			if err != nil {
				return err
			}
			a.session = s
			return nil
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default ./annoset.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text or json")
	pf.Int("workers", 0, "parallel workers (0 = GOMAXPROCS)")
	pf.Int64("io-limit", 0, "blob IO limit in bytes per second (0 = unlimited)")
	pf.BoolVar(&color.NoColor, "no-color", color.NoColor, "disable colored output")

	rootCmd.AddCommand(newConvertCmd(a))
	rootCmd.AddCommand(newFilterCmd(a))
	rootCmd.AddCommand(newTransformCmd(a))
	rootCmd.AddCommand(newMergeCmd(a))
	rootCmd.AddCommand(newFormatsCmd(a))

	return rootCmd
}

func (a *app) newSession() (*annoset.Session, error) {
	level, err := a.cfg.level()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if a.cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(a.stderr, opts)
	} else {
		handler = slog.NewTextHandler(a.stderr, opts)
	}

	return annoset.New(
		annoset.WithLogger(annoset.NewLogger(handler)),
		annoset.WithWorkers(a.cfg.Workers),
		annoset.WithIOLimit(a.cfg.IOLimit),
		annoset.WithMediaCache(a.cfg.MediaCache),
	)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}
