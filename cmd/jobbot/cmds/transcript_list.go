package cmds

import (
	"context"
	"time"

	"github.com/go-go-golems/glazed/pkg/cmds"
	"github.com/go-go-golems/glazed/pkg/cmds/fields"
	"github.com/go-go-golems/glazed/pkg/cmds/values"
	"github.com/go-go-golems/glazed/pkg/middlewares"
	"github.com/go-go-golems/glazed/pkg/types"
	"github.com/go-go-golems/jobbot/pkg/persistence/transcriptstore"
)

type TranscriptListCommand struct {
	*cmds.CommandDescription
	env *env
}

type TranscriptListSettings struct {
	Limit int `glazed:"limit"`
}

func NewTranscriptListCommand(e *env) (*TranscriptListCommand, error) {
	desc, err := newDescription("list",
		cmds.WithShort("List recorded sessions, most recent first"),
		cmds.WithLong("List sessions in the transcript database with their entry counts and activity times."),
		cmds.WithFlags(
			fields.New(
				"limit",
				fields.TypeInteger,
				fields.WithDefault(50),
				fields.WithHelp("Maximum number of sessions"),
			),
		),
	)
	if err != nil {
		return nil, err
	}
	return &TranscriptListCommand{CommandDescription: desc, env: e}, nil
}

func (c *TranscriptListCommand) RunIntoGlazeProcessor(
	ctx context.Context,
	parsedLayers *values.Values,
	gp middlewares.Processor,
) error {
	s := &TranscriptListSettings{}
	if err := parsedLayers.DecodeSectionInto(values.DefaultSlug, s); err != nil {
		return err
	}
	store, err := openTranscriptStore(c.env.settings.TranscriptDB)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	sessions, err := store.Sessions(ctx, s.Limit)
	if err != nil {
		return err
	}
	for _, info := range sessions {
		if err := gp.AddRow(ctx, sessionInfoRow(info)); err != nil {
			return err
		}
	}
	return nil
}

func sessionInfoRow(info transcriptstore.SessionInfo) types.Row {
	return types.NewRow(
		types.MRP("session_id", info.SessionID),
		types.MRP("entries", info.Entries),
		types.MRP("first_entry", time.UnixMilli(info.FirstEntryMs).Format(time.RFC3339)),
		types.MRP("last_activity", time.UnixMilli(info.LastActivityMs).Format(time.RFC3339)),
	)
}

var _ cmds.GlazeCommand = &TranscriptListCommand{}
