// Package console runs the booking chat as a line-oriented dialogue on plain
// streams, for pipes and terminals where the full-screen UI is unwanted.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/go-go-golems/jobbot/pkg/booking"
	"github.com/go-go-golems/jobbot/pkg/chat"
	"github.com/go-go-golems/jobbot/pkg/conversation"
	"github.com/go-go-golems/jobbot/pkg/markup"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	input "github.com/tcnksm/go-input"
)

const (
	timeLayout = "3:04 PM"
	prompt     = "› "
	helpText   = "Commands: /<n> press button n, /reset new chat, /help, /quit"
)

// ChatActions is the part of chat.Controller the console drives.
type ChatActions interface {
	Send(ctx context.Context, text string) error
	SelectSlot(ctx context.Context, slot conversation.TimeSlot) error
	SelectAction(ctx context.Context, action string) error
	Reset()
}

// BookingActions is the part of booking.Controller the console drives.
type BookingActions interface {
	Confirm(ctx context.Context) error
	Edit(ctx context.Context) error
	StartNew()
	Close()
}

type overlayMode int

const (
	overlayNone overlayMode = iota
	overlaySummary
	overlayResult
)

type button struct {
	label string
	slot  *conversation.TimeSlot
}

// Console prints transcript and overlay updates as lines and reads user
// input from in.
type Console struct {
	out io.Writer
	in  *bufio.Reader
	ui  *input.UI

	mu      sync.Mutex
	buttons []button
	mode    overlayMode
}

var (
	_ chat.Renderer   = &Console{}
	_ booking.Overlay = &Console{}
)

// byteReader hands out one byte per Read so go-input's scanner never buffers
// past the answer line.
type byteReader struct {
	r io.ByteReader
}

func (b byteReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	c, err := b.r.ReadByte()
	if err != nil {
		return 0, err
	}
	p[0] = c
	return 1, nil
}

func New(in io.Reader, out io.Writer) *Console {
	br := bufio.NewReader(in)
	return &Console{
		out: out,
		in:  br,
		ui:  &input.UI{Writer: out, Reader: byteReader{r: br}},
	}
}

func (c *Console) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}

func (c *Console) AppendUser(e chat.Entry) {
	c.mu.Lock()
	c.buttons = nil
	c.mu.Unlock()
	c.printf("You%s: %s\n", stamp(e), markup.StripControl(e.Text))
}

func (c *Console) AppendBot(e chat.BotEntry) {
	var buttons []button
	notice := ""
	if e.SlotPicker {
		if len(e.Slots) == 0 {
			notice = chat.NoSlotsNotice
		}
		for i := range e.Slots {
			slot := e.Slots[i]
			buttons = append(buttons, button{label: slot.Display, slot: &slot})
		}
	} else {
		for _, a := range e.Actions {
			buttons = append(buttons, button{label: a})
		}
	}
	if len(buttons) > 0 {
		c.mu.Lock()
		c.buttons = buttons
		c.mu.Unlock()
	}

	c.printf("JobBot%s: %s\n", stamp(chat.Entry{Time: e.Time}), markup.StripControl(markup.Plain(e.Text)))
	if notice != "" {
		c.printf("  (%s)\n", notice)
	}
	for i, b := range buttons {
		c.printf("  [/%d] %s\n", i+1, markup.StripControl(b.label))
	}
}

func (c *Console) AppendError(e chat.Entry) {
	c.printf("! %s\n", markup.StripControl(e.Text))
}

func (c *Console) Clear() {
	c.mu.Lock()
	c.buttons = nil
	c.mu.Unlock()
	c.printf("\n--- new conversation ---\n\n")
}

func (c *Console) SetTyping(on bool) {
	if on {
		c.printf("  JobBot is typing...\n")
	}
}

func (c *Console) SetSendEnabled(bool) {}
func (c *Console) ClearInput()         {}

func (c *Console) ShowSummary(fields []booking.SummaryField) {
	c.mu.Lock()
	c.mode = overlaySummary
	c.mu.Unlock()

	c.printf("\n📋 Booking Summary\n")
	for _, f := range fields {
		c.printf("  %s %-16s %s\n", f.Icon, f.Label+":", markup.StripControl(f.Value))
	}
	c.printf("\n")
}

func (c *Console) SetConfirmPending(pending bool, label string) {
	if pending {
		c.printf("  %s\n", label)
	}
}

func (c *Console) ShowResult(r booking.Result) {
	c.mu.Lock()
	c.mode = overlayResult
	c.mu.Unlock()

	icon := "✅"
	message := markup.Plain(r.Message)
	if r.View == booking.ResultReceived {
		icon = "⚠️"
		message = r.Message
	}
	c.printf("\n%s %s\n%s\n", icon, r.Title, markup.StripControl(message))
	if r.Dossier != "" {
		c.printf("\nJob Dossier\n%s\n", markup.StripControl(r.Dossier))
	}
	c.printf("\n")
}

func (c *Console) Close() {
	c.mu.Lock()
	c.mode = overlayNone
	c.mu.Unlock()
}

func (c *Console) overlay() overlayMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

func (c *Console) button(n int) (button, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n < 1 || n > len(c.buttons) {
		return button{}, false
	}
	return c.buttons[n-1], true
}

// Run reads lines until EOF, /quit or ctx is canceled. Whenever the booking
// overlay is open the next answer goes to it instead of the chat.
func (c *Console) Run(ctx context.Context, chatActions ChatActions, bookingActions BookingActions) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		if mode := c.overlay(); mode != overlayNone {
			if err := c.promptBooking(ctx, mode, bookingActions); err != nil {
				if errors.Is(err, io.EOF) || errors.Is(err, input.ErrInterrupted) || c.atEOF() {
					return nil
				}
				return err
			}
			continue
		}

		c.printf("%s", prompt)
		line, err := c.in.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return errors.Wrap(err, "read input")
		}

		quit, cmdErr := c.handleLine(ctx, strings.TrimSpace(line), chatActions)
		if cmdErr != nil && !errors.Is(cmdErr, chat.ErrSendInFlight) {
			log.Debug().Err(cmdErr).Msg("console command failed")
		}
		if quit || errors.Is(err, io.EOF) {
			return nil
		}
	}
}

func (c *Console) handleLine(ctx context.Context, line string, chatActions ChatActions) (bool, error) {
	if !strings.HasPrefix(line, "/") {
		return false, chatActions.Send(ctx, line)
	}

	cmd := strings.ToLower(strings.TrimPrefix(line, "/"))
	switch cmd {
	case "quit", "exit", "q":
		return true, nil
	case "reset":
		chatActions.Reset()
		return false, nil
	case "help", "?":
		c.printf("%s\n", helpText)
		return false, nil
	}

	n, err := strconv.Atoi(cmd)
	if err != nil {
		c.printf("Unknown command %q. %s\n", line, helpText)
		return false, nil
	}
	b, ok := c.button(n)
	if !ok {
		c.printf("No button %d.\n", n)
		return false, nil
	}
	if b.slot != nil {
		return false, chatActions.SelectSlot(ctx, *b.slot)
	}
	return false, chatActions.SelectAction(ctx, b.label)
}

func (c *Console) promptBooking(ctx context.Context, mode overlayMode, actions BookingActions) error {
	query := "[c] " + booking.ConfirmLabel + "  [e] Edit Details  [n] Start New Booking  [x] Close"
	valid := "cenx"
	if mode == overlayResult {
		query = "[n] Start New Booking  [x] Close"
		valid = "nx"
	}

	var answer string
	for {
		a, err := c.ui.Ask(query, &input.Options{HideOrder: true})
		if err != nil {
			return errors.Wrap(err, "booking prompt")
		}
		answer = strings.ToLower(strings.TrimSpace(a))
		if len(answer) == 1 && strings.Contains(valid, answer) {
			break
		}
		if answer == "" && c.atEOF() {
			return io.EOF
		}
		c.printf("Please enter one of %s.\n", strings.Join(strings.Split(valid, ""), ", "))
	}

	switch answer {
	case "c":
		if err := actions.Confirm(ctx); err != nil {
			log.Debug().Err(err).Msg("booking confirmation failed")
		}
	case "e":
		if err := actions.Edit(ctx); err != nil {
			log.Debug().Err(err).Msg("booking edit failed")
		}
	case "n":
		actions.StartNew()
	default:
		actions.Close()
	}
	return nil
}

func (c *Console) atEOF() bool {
	_, err := c.in.Peek(1)
	return errors.Is(err, io.EOF)
}

func stamp(e chat.Entry) string {
	if e.Time.IsZero() {
		return ""
	}
	return " (" + e.Time.Format(timeLayout) + ")"
}
