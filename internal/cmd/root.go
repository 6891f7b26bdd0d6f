// Package cmd holds the rxstream command line.
package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ambitiousfew/rxstream/log"
)

// app is the state shared by every subcommand once the root has run.
type app struct {
	configPath string
	logLevel   string

	settings Settings
	logger   log.Logger
}

// NewRootCmd builds the rxstream command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "rxstream",
		Short: "Broadcast topics with per-subscriber lag reporting",
		Long: `rxstream fans published messages out to every subscriber of a topic.
Subscribers that fall behind the topic capacity are told how many messages
they missed and carry on from the oldest retained one.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (.json, .yaml or .yml)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, notice, warning, error)")

	rootCmd.AddCommand(newServeCmd(a), newDemoCmd(a))
	return rootCmd
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func (a *app) init(cmd *cobra.Command) error {
	settings, err := loadSettings(cmd.Context(), a.configPath)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("log-level") {
		settings.LogLevel = a.logLevel
	}

	a.settings = settings
	a.logger = log.NewLogger(log.LevelFromString(settings.LogLevel), log.NewHandler(
		log.WithWriters(cmd.OutOrStdout(), cmd.ErrOrStderr()),
	))
	return nil
}
