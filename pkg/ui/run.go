package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Run shows the full-screen chat until the user quits or ctx is canceled.
func Run(ctx context.Context, r *Renderer, chat ChatActions, booking BookingActions) error {
	defer r.Stop()

	m := NewOverlayModel(ctx, NewChatModel(ctx, chat), booking, r.Events())
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	log.Debug().Msg("starting chat UI")
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return errors.Wrap(err, "chat UI")
	}
	return nil
}
