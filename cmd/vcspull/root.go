package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/steveyegge/vcspull/internal/vcslog"

	_ "github.com/steveyegge/vcspull/internal/vcs/git"
	_ "github.com/steveyegge/vcspull/internal/vcs/hg"
	_ "github.com/steveyegge/vcspull/internal/vcs/svn"
)

var rootCmd = &cobra.Command{
	Use:           "vcspull [repo-terms...]",
	Short:         "Declaratively clone and update a tree of repositories",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	flagConfig  string
	flagLogFile string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "explicit manifest path")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "rotate warnings/info to this file instead of stderr")
}

// Execute runs the root command, returning any error for main to turn
// into an exit code.
func Execute() error {
	cobra.OnInitialize(func() {
		logFile := flagLogFile
		if logFile == "" {
			logFile = os.Getenv("VCSPULL_LOG_FILE")
		}
		vcslog.Configure(logFile)
	})
	return rootCmd.Execute()
}

// bindViper layers a cobra flag set over a fresh viper instance, the
// precedence order internal/settings.Resolve expects.
func bindViper(flags *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlag("max_concurrent", flags.Flags().Lookup("max-concurrent"))
	_ = v.BindPFlag("fetch", flags.Flags().Lookup("fetch"))
	_ = v.BindPFlag("offline", flags.Flags().Lookup("offline"))
	_ = v.BindPFlag("exit_on_error", flags.Flags().Lookup("exit-on-error"))
	_ = v.BindPFlag("include_worktrees", flags.Flags().Lookup("include-worktrees"))
	return v
}
