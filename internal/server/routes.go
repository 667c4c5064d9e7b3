package server

import (
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, a *API) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Blindtest API", "/openapi.json", "/docs"))

	// Catalog browsing, no session needed.
	r.Route("/api/themes", func(r chi.Router) {
		r.Get("/", handleListThemes(a.catalog))
		r.Get("/{themeID}", handleGetTheme(a.catalog))
		r.Get("/{themeID}/tracks", handleThemeTracks(a.catalog))
	})

	r.Post("/api/sessions", handleCreateSession(a.sessions, a.gameOpts))

	// Session routes: {sessionID} and its token resolved by sessionMiddleware.
	r.Route("/api/sessions/{sessionID}", func(r chi.Router) {
		r.Use(sessionMiddleware(a.sessions))
		r.Get("/", handleGetSession())
		r.Delete("/", handleDeleteSession(a.sessions))
		r.Patch("/settings", handleUpdateSettings())
		r.Get("/themes", handleSessionThemes(a.catalog))
		r.Put("/themes/selected", handleSelectThemes(a.catalog))
		r.Post("/playlist", handleBuildPlaylist(a.catalog))
		r.Post("/start", handleStart(a.countdown, a.broker))
		r.Post("/next", handleNext(a.countdown, a.broker))
		r.Post("/answer", handleAnswer(a.broker))
		r.Post("/timeup", handleTimeUp(a.broker))
		r.Post("/mute", handleMute())
		r.Post("/reset", handleReset(a.broker))
		r.Get("/events", handleEvents(a.broker, a.logger))
	})

	r.With(sessionMiddleware(a.sessions)).
		Get("/ws/sessions/{sessionID}", handleLiveAnswers(a.broker, a.logger))

	if a.spaDir != "" {
		if info, err := os.Stat(a.spaDir); err == nil && info.IsDir() {
			a.logger.Info("serving SPA", "dir", a.spaDir)
			r.NotFound(handleSPA(a.spaDir))
		}
	}
}
