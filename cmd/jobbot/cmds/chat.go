package cmds

import (
	"context"
	"os"
	"os/signal"

	"github.com/go-go-golems/jobbot/pkg/app"
	"github.com/go-go-golems/jobbot/pkg/console"
	"github.com/go-go-golems/jobbot/pkg/logging"
	"github.com/go-go-golems/jobbot/pkg/ui"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newChatCommand(e *env) *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive booking conversation",
		Long: "Start an interactive booking conversation. A full-screen UI is used when " +
			"attached to a terminal; --plain or redirected streams switch to line mode.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			interactive := isatty.IsTerminal(os.Stdout.Fd()) && isatty.IsTerminal(os.Stdin.Fd())
			if interactive && !plain {
				return runTUI(ctx, e)
			}
			return runConsole(ctx, e, cmd)
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "Use line mode even on a terminal")
	return cmd
}

func runTUI(ctx context.Context, e *env) error {
	// the full-screen UI owns the terminal; logs only go to --log-file
	if err := logging.InitLogger(true); err != nil {
		return err
	}

	r := ui.NewRenderer(0)
	a, err := app.New(ctx, e.settings, r, r)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn().Err(err).Msg("closing app")
		}
	}()

	return a.Run(ctx, func(ctx context.Context) error {
		return ui.Run(ctx, r, a.Chat, a.Booking)
	})
}

func runConsole(ctx context.Context, e *env, cmd *cobra.Command) error {
	c := console.New(cmd.InOrStdin(), cmd.OutOrStdout())
	a, err := app.New(ctx, e.settings, c, c)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn().Err(err).Msg("closing app")
		}
	}()

	log.Debug().Str("session_id", a.Client.SessionID()).Msg("starting console chat")
	return a.Run(ctx, func(ctx context.Context) error {
		return c.Run(ctx, a.Chat, a.Booking)
	})
}
