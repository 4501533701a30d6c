package cmds

import (
	"context"
	"sort"

	"github.com/go-go-golems/glazed/pkg/cmds"
	"github.com/go-go-golems/glazed/pkg/cmds/fields"
	"github.com/go-go-golems/glazed/pkg/cmds/values"
	"github.com/go-go-golems/glazed/pkg/middlewares"
	"github.com/go-go-golems/glazed/pkg/types"
	"github.com/go-go-golems/jobbot/pkg/conversation"
	"github.com/spf13/cobra"
)

func NewBookingCommand(e *env) (*cobra.Command, error) {
	cobraCmd := &cobra.Command{
		Use:   "booking",
		Short: "Query and confirm bookings",
	}

	summaryCmd, err := NewBookingSummaryCommand(e)
	if err != nil {
		return nil, err
	}
	analyticsCmd, err := NewBookingAnalyticsCommand(e)
	if err != nil {
		return nil, err
	}
	formatCmd, err := NewFormatSummaryCommand(e)
	if err != nil {
		return nil, err
	}
	confirmCmd, err := NewConfirmCommand(e)
	if err != nil {
		return nil, err
	}
	if err := buildGlazeCommands(cobraCmd, summaryCmd, analyticsCmd, formatCmd, confirmCmd); err != nil {
		return nil, err
	}
	return cobraCmd, nil
}

type BookingSummarySettings struct {
	BookingID string `glazed:"booking-id"`
}

type BookingSummaryCommand struct {
	*cmds.CommandDescription
	env *env
}

func NewBookingSummaryCommand(e *env) (*BookingSummaryCommand, error) {
	desc, err := newDescription("summary",
		cmds.WithShort("Show the stored summary of a booking"),
		cmds.WithArguments(
			fields.New(
				"booking-id",
				fields.TypeString,
				fields.WithHelp("Booking identifier"),
				fields.WithRequired(true),
			),
		),
	)
	if err != nil {
		return nil, err
	}
	return &BookingSummaryCommand{CommandDescription: desc, env: e}, nil
}

func (c *BookingSummaryCommand) RunIntoGlazeProcessor(ctx context.Context, parsedLayers *values.Values, gp middlewares.Processor) error {
	s := &BookingSummarySettings{}
	if err := parsedLayers.DecodeSectionInto(values.DefaultSlug, s); err != nil {
		return err
	}
	client, err := c.env.client()
	if err != nil {
		return err
	}
	summary, err := client.BookingSummary(ctx, s.BookingID)
	if err != nil {
		return err
	}
	return gp.AddRow(ctx, bookingSummaryRow(summary))
}

// bookingSummaryRow lists the known columns first and the service's extra
// fields after them in key order.
func bookingSummaryRow(s *conversation.BookingSummary) types.Row {
	row := types.NewRow(
		types.MRP("booking_id", s.BookingID),
		types.MRP("status", s.Status),
		types.MRP("created_at", s.CreatedAt),
		types.MRP("last_updated", s.LastUpdated),
	)
	setSorted(row, s.Extra)
	return row
}

type BookingAnalyticsCommand struct {
	*cmds.CommandDescription
	env *env
}

func NewBookingAnalyticsCommand(e *env) (*BookingAnalyticsCommand, error) {
	desc, err := newDescription("analytics",
		cmds.WithShort("Show booking analytics"),
	)
	if err != nil {
		return nil, err
	}
	return &BookingAnalyticsCommand{CommandDescription: desc, env: e}, nil
}

func (c *BookingAnalyticsCommand) RunIntoGlazeProcessor(ctx context.Context, _ *values.Values, gp middlewares.Processor) error {
	client, err := c.env.client()
	if err != nil {
		return err
	}
	a, err := client.BookingAnalytics(ctx)
	if err != nil {
		return err
	}
	return gp.AddRow(ctx, rowFromMap(a))
}

func rowFromMap(m map[string]any) types.Row {
	row := types.NewRow()
	setSorted(row, m)
	return row
}

func setSorted(row types.Row, m map[string]any) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		row.Set(k, m[k])
	}
}

type BookingDataSettings struct {
	Input string `glazed:"input"`
}

func bookingDataArgument() cmds.CommandDescriptionOption {
	return cmds.WithArguments(
		fields.New(
			"input",
			fields.TypeString,
			fields.WithHelp("Booking data JSON file (use - for stdin)"),
			fields.WithDefault("-"),
		),
	)
}

func decodeBookingData(parsedLayers *values.Values) (conversation.BookingData, error) {
	s := &BookingDataSettings{}
	if err := parsedLayers.DecodeSectionInto(values.DefaultSlug, s); err != nil {
		return nil, err
	}
	var data conversation.BookingData
	if err := readJSONArg(s.Input, &data); err != nil {
		return nil, err
	}
	return data, nil
}

type FormatSummaryCommand struct {
	*cmds.CommandDescription
	env *env
}

func NewFormatSummaryCommand(e *env) (*FormatSummaryCommand, error) {
	desc, err := newDescription("format-summary",
		cmds.WithShort("Ask the service to format a booking summary"),
		bookingDataArgument(),
	)
	if err != nil {
		return nil, err
	}
	return &FormatSummaryCommand{CommandDescription: desc, env: e}, nil
}

func (c *FormatSummaryCommand) RunIntoGlazeProcessor(ctx context.Context, parsedLayers *values.Values, gp middlewares.Processor) error {
	data, err := decodeBookingData(parsedLayers)
	if err != nil {
		return err
	}
	client, err := c.env.client()
	if err != nil {
		return err
	}
	s, err := client.FormatBookingSummary(ctx, data)
	if err != nil {
		return err
	}
	return gp.AddRow(ctx, types.NewRow(
		types.MRP("formatted_summary", s.FormattedSummary),
		types.MRP("booking_data", map[string]any(s.BookingData.Clone())),
	))
}

type ConfirmCommand struct {
	*cmds.CommandDescription
	env *env
}

func NewConfirmCommand(e *env) (*ConfirmCommand, error) {
	desc, err := newDescription("confirm",
		cmds.WithShort("Confirm a booking from its collected data"),
		bookingDataArgument(),
	)
	if err != nil {
		return nil, err
	}
	return &ConfirmCommand{CommandDescription: desc, env: e}, nil
}

func (c *ConfirmCommand) RunIntoGlazeProcessor(ctx context.Context, parsedLayers *values.Values, gp middlewares.Processor) error {
	data, err := decodeBookingData(parsedLayers)
	if err != nil {
		return err
	}
	client, err := c.env.client()
	if err != nil {
		return err
	}
	conf, err := client.ConfirmBooking(ctx, data)
	if err != nil {
		return err
	}
	return gp.AddRow(ctx, confirmationRow(conf))
}

func confirmationRow(c *conversation.Confirmation) types.Row {
	return types.NewRow(
		types.MRP("booking_id", c.BookingID),
		types.MRP("status", c.Status),
		types.MRP("confirmed", c.IsConfirmed()),
		types.MRP("confirmation_message", c.ConfirmationMessage),
		types.MRP("job_dossier", c.JobDossier),
		types.MRP("crm_data", c.CRMData),
	)
}

var _ cmds.GlazeCommand = &BookingSummaryCommand{}
var _ cmds.GlazeCommand = &BookingAnalyticsCommand{}
var _ cmds.GlazeCommand = &FormatSummaryCommand{}
var _ cmds.GlazeCommand = &ConfirmCommand{}
