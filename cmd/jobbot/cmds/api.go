package cmds

import (
	"context"

	"github.com/go-go-golems/glazed/pkg/cli"
	"github.com/go-go-golems/glazed/pkg/cmds"
	"github.com/go-go-golems/glazed/pkg/cmds/fields"
	"github.com/go-go-golems/glazed/pkg/cmds/sources"
	"github.com/go-go-golems/glazed/pkg/cmds/values"
	"github.com/go-go-golems/glazed/pkg/middlewares"
	"github.com/go-go-golems/glazed/pkg/settings"
	"github.com/go-go-golems/glazed/pkg/types"
	"github.com/go-go-golems/jobbot/pkg/api"
	"github.com/go-go-golems/jobbot/pkg/config"
	"github.com/go-go-golems/jobbot/pkg/conversation"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func (e *env) client() (*api.Client, error) {
	return api.NewClient(e.settings.BaseURL, e.settings.ClientOptions()...)
}

func (e *env) sessionClient() (*api.Client, error) {
	if e.settings.SessionID == "" {
		return nil, errors.New("--session-id is required")
	}
	return e.client()
}

func getMiddlewares(
	_ *values.Values,
	cmd *cobra.Command,
	args []string,
) ([]sources.Middleware, error) {
	return []sources.Middleware{
		sources.FromCobra(cmd),
		sources.FromArgs(args),
		sources.FromEnv(config.EnvPrefix,
			fields.WithSource("env"),
		),
		sources.FromDefaults(),
	}, nil
}

// newDescription adds the glazed output and command settings sections every
// row-emitting command shares.
func newDescription(name string, options ...cmds.CommandDescriptionOption) (*cmds.CommandDescription, error) {
	glazedSection, err := settings.NewGlazedSection()
	if err != nil {
		return nil, err
	}
	commandSettingsSection, err := cli.NewCommandSettingsSection()
	if err != nil {
		return nil, err
	}
	options = append(options, cmds.WithSections(glazedSection, commandSettingsSection))
	return cmds.NewCommandDescription(name, options...), nil
}

func buildGlazeCommands(parent *cobra.Command, commands ...cmds.GlazeCommand) error {
	for _, c := range commands {
		cobraCmd, err := cli.BuildCobraCommand(c, cli.WithCobraMiddlewaresFunc(getMiddlewares))
		if err != nil {
			return err
		}
		parent.AddCommand(cobraCmd)
	}
	return nil
}

type HealthCommand struct {
	*cmds.CommandDescription
	env *env
}

func NewHealthCommand(e *env) (*HealthCommand, error) {
	desc, err := newDescription("health",
		cmds.WithShort("Check whether the booking service is up"),
		cmds.WithLong("Query the health endpoint. Transport failures are reported as an unhealthy row, not an error."),
	)
	if err != nil {
		return nil, err
	}
	return &HealthCommand{CommandDescription: desc, env: e}, nil
}

func (c *HealthCommand) RunIntoGlazeProcessor(ctx context.Context, _ *values.Values, gp middlewares.Processor) error {
	client, err := c.env.client()
	if err != nil {
		return err
	}
	return gp.AddRow(ctx, healthRow(client.HealthCheck(ctx)))
}

func healthRow(h conversation.Health) types.Row {
	return types.NewRow(
		types.MRP("status", h.Status),
		types.MRP("healthy", h.IsHealthy()),
		types.MRP("service", h.Service),
		types.MRP("version", h.Version),
		types.MRP("error", h.Error),
	)
}

type SessionCommand struct {
	*cmds.CommandDescription
	env *env
}

func NewSessionCommand(e *env) (*SessionCommand, error) {
	desc, err := newDescription("session",
		cmds.WithShort("Show the server-side state of a session (use --session-id)"),
	)
	if err != nil {
		return nil, err
	}
	return &SessionCommand{CommandDescription: desc, env: e}, nil
}

func (c *SessionCommand) RunIntoGlazeProcessor(ctx context.Context, _ *values.Values, gp middlewares.Processor) error {
	client, err := c.env.sessionClient()
	if err != nil {
		return err
	}
	data, err := client.SessionData(ctx)
	if err != nil {
		return err
	}
	return gp.AddRow(ctx, sessionRow(data))
}

func sessionRow(d *conversation.SessionData) types.Row {
	return types.NewRow(
		types.MRP("session_id", d.SessionID),
		types.MRP("conversation_state", d.State.Label),
		types.MRP("message_count", d.MessageCount),
		types.MRP("status", d.Status),
		types.MRP("booking_data", map[string]any(d.BookingData.Clone())),
	)
}

type ResetCommand struct {
	*cmds.CommandDescription
	env *env
}

func NewResetCommand(e *env) (*ResetCommand, error) {
	desc, err := newDescription("reset",
		cmds.WithShort("Reset the server-side conversation of a session (use --session-id)"),
	)
	if err != nil {
		return nil, err
	}
	return &ResetCommand{CommandDescription: desc, env: e}, nil
}

func (c *ResetCommand) RunIntoGlazeProcessor(ctx context.Context, _ *values.Values, gp middlewares.Processor) error {
	client, err := c.env.sessionClient()
	if err != nil {
		return err
	}
	res, err := client.ResetConversation(ctx)
	if err != nil {
		return err
	}
	return gp.AddRow(ctx, types.NewRow(
		types.MRP("status", res.Status),
		types.MRP("session_id", res.SessionID),
	))
}

var _ cmds.GlazeCommand = &HealthCommand{}
var _ cmds.GlazeCommand = &SessionCommand{}
var _ cmds.GlazeCommand = &ResetCommand{}
