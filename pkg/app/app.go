package app

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-go-golems/jobbot/pkg/api"
	"github.com/go-go-golems/jobbot/pkg/booking"
	"github.com/go-go-golems/jobbot/pkg/chat"
	"github.com/go-go-golems/jobbot/pkg/config"
	"github.com/go-go-golems/jobbot/pkg/events"
	"github.com/go-go-golems/jobbot/pkg/persistence/transcriptstore"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// App owns the gateway and both controllers for one interactive session.
type App struct {
	Client  *api.Client
	Chat    *chat.Controller
	Booking *booking.Controller

	bus   *events.Bus
	store transcriptstore.Store
	msgs  <-chan *message.Message
}

type options struct {
	clientOptions []api.ClientOption
	store         transcriptstore.Store
	bus           *events.Bus
}

type Option func(*options)

// WithClientOptions appends gateway options after the ones derived from settings.
func WithClientOptions(opts ...api.ClientOption) Option {
	return func(o *options) { o.clientOptions = append(o.clientOptions, opts...) }
}

// WithTranscript records the session through bus into store instead of the
// configured sqlite file.
func WithTranscript(bus *events.Bus, store transcriptstore.Store) Option {
	return func(o *options) {
		o.bus = bus
		o.store = store
	}
}

// New builds the gateway and the controllers, wiring the completion handoff
// from the chat to the booking overlay.
func New(ctx context.Context, s config.Settings, renderer chat.Renderer, overlay booking.Overlay, opts ...Option) (*App, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	client, err := api.NewClient(s.BaseURL, append(s.ClientOptions(), o.clientOptions...)...)
	if err != nil {
		return nil, err
	}

	ret := &App{Client: client, bus: o.bus, store: o.store}
	if ret.store == nil && s.TranscriptDB != "" {
		if err := ret.openTranscript(ctx, s); err != nil {
			return nil, err
		}
	}
	if ret.bus != nil && ret.store != nil {
		last, err := ret.store.LastSeq(ctx, client.SessionID())
		if err != nil {
			_ = ret.Close()
			return nil, errors.Wrap(err, "resume transcript")
		}
		ret.msgs, err = ret.bus.Subscribe(ctx)
		if err != nil {
			_ = ret.Close()
			return nil, err
		}
		renderer = events.NewRecordingRenderer(renderer, ret.bus, client.SessionID(), events.WithStartSeq(last))
	}

	ret.Chat = chat.NewController(client, renderer)
	ret.Booking = booking.NewController(client, overlay, ret.Chat)
	ret.Chat.SetCompletionHandler(ret.Booking.Show)

	log.Debug().
		Str("session_id", client.SessionID()).
		Str("base_url", s.BaseURL).
		Bool("transcript", ret.msgs != nil).
		Msg("app initialized")
	return ret, nil
}

func (a *App) openTranscript(ctx context.Context, s config.Settings) error {
	dsn, err := transcriptstore.SQLiteDSNForFile(s.TranscriptDB)
	if err != nil {
		return err
	}
	store, err := transcriptstore.NewSQLiteStore(dsn)
	if err != nil {
		return err
	}
	bus, err := events.NewBus(ctx, s.Redis)
	if err != nil {
		_ = store.Close()
		return errors.Wrap(err, "transcript bus")
	}
	a.store = store
	a.bus = bus
	return nil
}

// Run starts the transcript sink, shows the welcome message and runs ui until
// it returns. Canceling ctx stops both.
func (a *App) Run(ctx context.Context, ui func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	eg := errgroup.Group{}
	if a.msgs != nil {
		eg.Go(func() error {
			return events.Drain(ctx, a.msgs, events.StepTranscriptPersistFunc(a.store))
		})
	}

	eg.Go(func() error {
		defer cancel()
		a.Chat.Welcome()
		return ui(ctx)
	})

	return eg.Wait()
}

func (a *App) Close() error {
	var firstErr error
	if a.bus != nil {
		if err := a.bus.Close(); err != nil {
			firstErr = err
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
