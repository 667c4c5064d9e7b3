package server

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/blindtest/internal/blindtest"
	"github.com/playperu/blindtest/internal/game"
)

// Catalog is the music catalog the API reads themes and songs from. It never
// fails: unavailable data comes back empty.
type Catalog interface {
	SearchPlaylists(ctx context.Context, query string) []blindtest.Theme
	ChartPlaylists(ctx context.Context) []blindtest.Theme
	PlaylistTracks(ctx context.Context, id int64) []blindtest.Song
	Playlist(ctx context.Context, id int64) (blindtest.Theme, bool)
	BuildPlaylist(ctx context.Context, themeIDs []int64) []blindtest.Song
}

// API is the blindtest HTTP surface: catalog browsing, session control, and
// the live event and answer channels.
type API struct {
	logger    *slog.Logger
	catalog   Catalog
	sessions  *Registry
	broker    *Broker
	countdown *countdown
	gameOpts  []game.Option
	spaDir    string
}

type APIOption func(*API)

// WithTickSource replaces the one-second ticker that drives song countdowns.
func WithTickSource(ts TickSource) APIOption {
	return func(a *API) { a.countdown.ticks = ts }
}

// WithGameOptions applies opts to every new game.Session.
func WithGameOptions(opts ...game.Option) APIOption {
	return func(a *API) { a.gameOpts = append(a.gameOpts, opts...) }
}

// WithSPA serves a built single-page app from dir for unmatched routes.
func WithSPA(dir string) APIOption {
	return func(a *API) { a.spaDir = dir }
}

func NewAPI(logger *slog.Logger, catalog Catalog, sessions *Registry, opts ...APIOption) *API {
	broker := NewBroker()
	a := &API{
		logger:   logger,
		catalog:  catalog,
		sessions: sessions,
		broker:   broker,
		countdown: &countdown{
			ticks:  tickerSource,
			broker: broker,
			logger: logger,
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Mount registers the API routes on r.
func (a *API) Mount(r chi.Router) {
	addRoutes(r, a)
}

// Broker exposes the session event bus.
func (a *API) Broker() *Broker { return a.broker }
