// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
	"github.com/toeirei/douban-comment/buildvars"
	"github.com/toeirei/douban-comment/internal/config"
	"github.com/toeirei/douban-comment/internal/db"
	"github.com/toeirei/douban-comment/internal/i18n"
	"github.com/toeirei/douban-comment/internal/logging"
)

const modulePath = "github.com/toeirei/douban-comment"

var (
	cfgFile   string
	envFile   string
	verbose   bool
	appConfig config.Config
	// envFileUsed is the .env file loaded by setupDefaultServices, if any.
	envFileUsed string
)

// setupDefaultServices loads .env and config, then initializes i18n and
// logging. It runs before every subcommand.
func setupDefaultServices(cmd *cobra.Command, _ []string) error {
	loaded, err := config.LoadEnvFile(envFile)
	if err != nil {
		return err
	}
	envFileUsed = loaded

	optionalConfigPath, err := getConfigPathFromCli(cmd)
	if err != nil {
		return err
	}
	appConfig, err = config.LoadConfig[config.Config](cmd, config.Defaults(), optionalConfigPath)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if err := appConfig.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	i18n.Init(appConfig.Language)
	logging.SetDebug(verbose)
	db.SetDebug(verbose)
	if loaded != "" {
		logging.Debugf("%s", i18n.T("crawl.env_loaded", loaded))
	}
	return nil
}

func getConfigPathFromCli(cmd *cobra.Command) (*string, error) {
	if !cmd.Flags().Changed("config") {
		return nil, nil
	}
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("could not read --config flag: %w", err)
	}
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file specified via --config flag not found or is not accessible: %w", err)
	}
	return &path, nil
}

// initialLanguage picks the language for help texts, which are built before
// the config is loaded.
func initialLanguage() string {
	if lang := os.Getenv(config.EnvPrefix + "_LANGUAGE"); lang != "" {
		return lang
	}
	return i18n.DefaultLanguage
}

// Execute runs the CLI. main handles the process exit code.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd creates the root command with all subcommands. Tests build a
// fresh tree per case.
func NewRootCmd() *cobra.Command {
	i18n.Init(initialLanguage())

	cmd := &cobra.Command{
		Use:               "douban-comment [subject-id...]",
		Short:             i18n.T("cli.root.short"),
		Long:              i18n.T("cli.root.long"),
		Args:              cobra.ArbitraryArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setupDefaultServices,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runCrawl(cmd, args)
		},
	}

	v, c, d := resolveBuildVersion(nil)
	compositeVersion := v
	if c != "" && c != "dev" {
		compositeVersion = compositeVersion + " (" + c + ")"
	}
	if d != "" {
		compositeVersion = compositeVersion + " built: " + d
	}
	cmd.Version = compositeVersion

	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", i18n.T("flag.config"))
	pf.StringVar(&envFile, "env-file", "", i18n.T("flag.env_file"))
	pf.BoolVarP(&verbose, "verbose", "v", false, i18n.T("flag.verbose"))
	pf.String("language", "", i18n.T("flag.language"))
	pf.String("output-dir", "", i18n.T("flag.output_dir"))
	pf.String("format", "", i18n.T("flag.format"))
	pf.String("compress", "", i18n.T("flag.compress"))
	pf.String("cookies", "", i18n.T("flag.cookies"))
	pf.String("base-url", "", i18n.T("flag.base_url"))
	pf.StringSlice("status", nil, i18n.T("flag.status"))
	pf.String("sort", "", i18n.T("flag.sort"))
	pf.Int("concurrency", 1, i18n.T("flag.concurrency"))
	pf.Int("retries", 3, i18n.T("flag.retries"))
	pf.Bool("no-delay", false, i18n.T("flag.no_delay"))
	pf.Bool("save-db", false, i18n.T("flag.save_db"))
	pf.String("db-type", "", i18n.T("flag.db_type"))
	pf.String("db-dsn", "", i18n.T("flag.db_dsn"))

	cmd.AddCommand(
		newCrawlCmd(),
		newInfoCmd(),
		newExportCmd(),
		newBrowseCmd(),
		newDBCmd(),
		newConfigCmd(),
		newVersionCmd(),
		newDebugCmd(),
	)
	return cmd
}

// resolveBuildVersion computes the best-available version, commit and build
// date for the running binary. If info is nil, it reads build info from the
// runtime.
func resolveBuildVersion(info *debug.BuildInfo) (versionOut, commitOut, dateOut string) {
	resolvedVersion := buildvars.VersionOrDefault("dev")
	resolvedCommit := buildvars.Commit
	if resolvedCommit == "" {
		resolvedCommit = "dev"
	}
	resolvedDate := buildvars.BuildDate

	if info == nil {
		if local, ok := debug.ReadBuildInfo(); ok {
			info = local
		}
	}
	if info != nil && resolvedVersion == "dev" {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			resolvedVersion = info.Main.Version
		}
		if resolvedVersion == "dev" {
			for _, dep := range info.Deps {
				if dep.Path == modulePath && dep.Version != "" {
					resolvedVersion = dep.Version
					break
				}
			}
		}
	}
	if info != nil {
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if s.Value != "" && resolvedCommit == "dev" {
					resolvedCommit = s.Value
				}
			case "vcs.time":
				if s.Value != "" && resolvedDate == "" {
					resolvedDate = s.Value
				}
			}
		}
	}

	// Without a version, a commit stamped at build time still helps support.
	if resolvedVersion == "dev" && resolvedCommit != "dev" && resolvedCommit != "" {
		resolvedVersion = resolvedCommit
	}
	return resolvedVersion, resolvedCommit, resolvedDate
}
