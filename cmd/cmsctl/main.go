package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/tendant/simple-cms/pkg/simplecms/config"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cmsctl",
		Short: "Offline content projection and media enrichment",
		Long: `cmsctl runs the content projector and the image cropper enricher
against a settings file, without a running server.

Entities are read from JSON files holding content_type_alias, name,
creator_id and values. Media files are resolved below --media-dir.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringP("settings", "s", "settings.yaml", "settings file with data types, users and content types")
	rootCmd.PersistentFlags().String("media-dir", "", "directory holding media files (default: in-memory)")
	rootCmd.PersistentFlags().Bool("strict", false, "fail projections on unresolved data types")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")

	rootCmd.AddCommand(NewProjectCommand())
	rootCmd.AddCommand(NewEnrichCommand())
	rootCmd.AddCommand(NewValidateCommand())

	return rootCmd
}

type globalFlags struct {
	settings string
	mediaDir string
	strict   bool
	verbose  bool
}

func readGlobalFlags(cmd *cobra.Command) (globalFlags, error) {
	var f globalFlags
	var err error
	if f.settings, err = cmd.Flags().GetString("settings"); err != nil {
		return f, err
	}
	if f.mediaDir, err = cmd.Flags().GetString("media-dir"); err != nil {
		return f, err
	}
	if f.strict, err = cmd.Flags().GetBool("strict"); err != nil {
		return f, err
	}
	if f.verbose, err = cmd.Flags().GetBool("verbose"); err != nil {
		return f, err
	}
	return f, nil
}

// buildComponents wires the service from the persistent flags.
func buildComponents(cmd *cobra.Command) (*config.Components, error) {
	flags, err := readGlobalFlags(cmd)
	if err != nil {
		return nil, err
	}

	level := slog.LevelWarn
	if flags.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	opts := []config.Option{
		config.WithSettingsFile(flags.settings),
		config.WithStrictProjection(flags.strict),
		config.WithLogger(logger),
	}
	if flags.mediaDir != "" {
		opts = append(opts, config.WithFilesystemStorage(flags.mediaDir))
	}

	cfg, err := config.Load(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg.Build(cmd.Context())
}
