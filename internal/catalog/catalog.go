package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/playperu/blindtest/internal/blindtest"
	"github.com/playperu/blindtest/internal/metrics"
)

// Source is an upstream catalog. Client implements it.
type Source interface {
	SearchPlaylists(ctx context.Context, query string) ([]blindtest.Theme, error)
	ChartPlaylists(ctx context.Context) ([]blindtest.Theme, error)
	PlaylistTracks(ctx context.Context, id int64) ([]blindtest.Song, error)
	Playlist(ctx context.Context, id int64) (blindtest.Theme, error)
}

// Catalog serves catalog data from cache when possible and never fails:
// upstream errors are logged and turned into empty results. Errors are not
// cached.
type Catalog struct {
	source  Source
	cache   Cache
	logger  *slog.Logger
	shuffle func([]blindtest.Song)
}

type Option func(*Catalog)

// WithCache enables caching. Without it every call reaches the source.
func WithCache(c Cache) Option {
	return func(cat *Catalog) { cat.cache = c }
}

// WithShuffle replaces the playlist shuffler.
func WithShuffle(f func([]blindtest.Song)) Option {
	return func(cat *Catalog) { cat.shuffle = f }
}

func New(source Source, logger *slog.Logger, opts ...Option) *Catalog {
	c := &Catalog{
		source: source,
		logger: logger,
		shuffle: func(songs []blindtest.Song) {
			rand.Shuffle(len(songs), func(i, j int) { songs[i], songs[j] = songs[j], songs[i] })
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Catalog) SearchPlaylists(ctx context.Context, query string) []blindtest.Theme {
	query = strings.TrimSpace(query)
	if query == "" {
		query = DefaultQuery
	}
	key := "search:" + strings.ToLower(query)
	themes, err := cached(ctx, c, "search", key, func() ([]blindtest.Theme, error) {
		return c.source.SearchPlaylists(ctx, query)
	})
	if err != nil {
		c.logger.Error("searching playlists failed", "query", query, "error", err)
		return []blindtest.Theme{}
	}
	return themes
}

func (c *Catalog) ChartPlaylists(ctx context.Context) []blindtest.Theme {
	themes, err := cached(ctx, c, "chart", "chart", func() ([]blindtest.Theme, error) {
		return c.source.ChartPlaylists(ctx)
	})
	if err != nil {
		c.logger.Error("fetching chart playlists failed", "error", err)
		return []blindtest.Theme{}
	}
	return themes
}

func (c *Catalog) PlaylistTracks(ctx context.Context, id int64) []blindtest.Song {
	songs, err := cached(ctx, c, "tracks", fmt.Sprintf("tracks:%d", id), func() ([]blindtest.Song, error) {
		return c.source.PlaylistTracks(ctx, id)
	})
	if err != nil {
		c.logger.Error("fetching playlist tracks failed", "playlist_id", id, "error", err)
		return []blindtest.Song{}
	}
	return songs
}

// Playlist reports false when the playlist cannot be fetched.
func (c *Catalog) Playlist(ctx context.Context, id int64) (blindtest.Theme, bool) {
	theme, err := cached(ctx, c, "playlist", fmt.Sprintf("playlist:%d", id), func() (blindtest.Theme, error) {
		return c.source.Playlist(ctx, id)
	})
	if err != nil {
		c.logger.Error("fetching playlist failed", "playlist_id", id, "error", err)
		return blindtest.Theme{}, false
	}
	return theme, true
}

// BuildPlaylist loads the tracks of every theme concurrently, concatenates
// them in theme order without duplicate songs, and shuffles the result.
// Themes that fail to load contribute nothing.
func (c *Catalog) BuildPlaylist(ctx context.Context, themeIDs []int64) []blindtest.Song {
	perTheme := make([][]blindtest.Song, len(themeIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, id := range themeIDs {
		g.Go(func() error {
			perTheme[i] = c.PlaylistTracks(gctx, id)
			return nil
		})
	}
	_ = g.Wait()

	seen := make(map[int64]struct{})
	songs := []blindtest.Song{}
	for _, list := range perTheme {
		for _, s := range list {
			if _, dup := seen[s.ID]; dup {
				continue
			}
			seen[s.ID] = struct{}{}
			songs = append(songs, s)
		}
	}
	c.shuffle(songs)

	c.logger.Info("playlist built", "themes", len(themeIDs), "songs", len(songs))
	return songs
}

func cached[T any](ctx context.Context, c *Catalog, op, key string, fetch func() (T, error)) (T, error) {
	var v T
	if c.cache != nil {
		err := c.cache.Get(ctx, key, &v)
		if err == nil {
			metrics.CatalogRequests.WithLabelValues(op, "hit").Inc()
			return v, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			c.logger.Warn("catalog cache read failed", "key", key, "error", err)
		}
	}

	start := time.Now()
	v, err := fetch()
	metrics.CatalogDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CatalogRequests.WithLabelValues(op, "error").Inc()
		return v, err
	}
	metrics.CatalogRequests.WithLabelValues(op, "ok").Inc()

	if c.cache != nil {
		if err := c.cache.Put(ctx, key, v); err != nil {
			c.logger.Warn("catalog cache write failed", "key", key, "error", err)
		}
	}
	return v, nil
}
