package cmds

import (
	clay "github.com/go-go-golems/clay/pkg"
	"github.com/go-go-golems/jobbot/pkg/config"
	"github.com/go-go-golems/jobbot/pkg/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// env carries the resolved settings from the root command to subcommands.
type env struct {
	settings config.Settings
}

func NewRootCommand() (*cobra.Command, error) {
	e := &env{}

	rootCmd := &cobra.Command{
		Use:           "jobbot",
		Short:         "jobbot is a terminal client for the JobBot booking assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// reinitialize the logger because we can now parse --log-level and co
			// from the command line flag
			if err := config.InitViper(viper.GetViper(), cmd.Flags()); err != nil {
				return err
			}
			s, err := config.Load(viper.GetViper())
			if err != nil {
				return err
			}
			e.settings = s
			return logging.InitLogger(false)
		},
	}
	config.AddFlags(rootCmd.PersistentFlags())

	if err := clay.InitViper(config.AppName, rootCmd); err != nil {
		return nil, err
	}
	if err := clay.InitLogger(); err != nil {
		return nil, err
	}

	rootCmd.AddCommand(newChatCommand(e))

	healthCmd, err := NewHealthCommand(e)
	if err != nil {
		return nil, err
	}
	sessionCmd, err := NewSessionCommand(e)
	if err != nil {
		return nil, err
	}
	resetCmd, err := NewResetCommand(e)
	if err != nil {
		return nil, err
	}
	if err := buildGlazeCommands(rootCmd, healthCmd, sessionCmd, resetCmd); err != nil {
		return nil, err
	}

	bookingCmd, err := NewBookingCommand(e)
	if err != nil {
		return nil, err
	}
	rootCmd.AddCommand(bookingCmd)

	transcriptCmd, err := NewTranscriptCommand(e)
	if err != nil {
		return nil, err
	}
	rootCmd.AddCommand(transcriptCmd)
	return rootCmd, nil
}
