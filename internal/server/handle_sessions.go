package server

import (
	"errors"
	"fmt"
	"net/http"
	"slices"

	"github.com/playperu/blindtest/internal/blindtest"
	"github.com/playperu/blindtest/internal/game"
)

func validateSettings(u SettingsRequest) error {
	if u.MaxPoints != nil && *u.MaxPoints <= 0 {
		return errors.New("maxPoints must be positive")
	}
	if u.AnswerMode != nil && !u.AnswerMode.Valid() {
		return fmt.Errorf("unknown answerMode %q", *u.AnswerMode)
	}
	return nil
}

func handleCreateSession(sessions *Registry, gameOpts []game.Option) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SettingsRequest
		if err := readJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := validateSettings(req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		opts := append(slices.Clone(gameOpts), game.WithSettings(req.Apply(blindtest.DefaultSettings())))
		ls, token := sessions.Create(game.NewSession(opts...))

		ls.mu.Lock()
		state := ls.game.Snapshot()
		ls.mu.Unlock()

		writeJSON(w, http.StatusCreated, CreateSessionResponse{
			ID:    ls.ID,
			Token: token,
			State: state,
		})
	}
}

func handleGetSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ls := sessionFrom(r)

		ls.mu.Lock()
		state := ls.game.Snapshot()
		ls.mu.Unlock()

		writeJSON(w, http.StatusOK, state)
	}
}

func handleDeleteSession(sessions *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions.Delete(sessionFrom(r).ID)
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleUpdateSettings() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SettingsRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := validateSettings(req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		ls := sessionFrom(r)
		ls.mu.Lock()
		ls.game.UpdateSettings(req)
		state := ls.game.Snapshot()
		ls.mu.Unlock()

		writeJSON(w, http.StatusOK, state)
	}
}

// handleSessionThemes fetches themes for the session and makes them its
// available list.
func handleSessionThemes(catalog Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		themes := findThemes(r, catalog)

		ls := sessionFrom(r)
		ls.mu.Lock()
		// Keep selected themes resolvable after a new search.
		merged := slices.Clone(themes)
		for _, t := range ls.game.SelectedThemes() {
			if !containsTheme(merged, t.ID) {
				merged = append(merged, t)
			}
		}
		ls.game.SetAvailableThemes(merged)
		ls.mu.Unlock()

		writeJSON(w, http.StatusOK, themes)
	}
}

// handleSelectThemes sets the selection. IDs outside the available list are
// looked up in the catalog first.
func handleSelectThemes(catalog Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SelectThemesRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		ls := sessionFrom(r)
		ls.mu.Lock()
		available := ls.game.AvailableThemes()
		ls.mu.Unlock()

		var fetched []blindtest.Theme
		for _, id := range req.ThemeIDs {
			if containsTheme(available, id) || containsTheme(fetched, id) {
				continue
			}
			theme, ok := catalog.Playlist(r.Context(), id)
			if !ok {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown theme %d", id))
				return
			}
			fetched = append(fetched, theme)
		}

		ls.mu.Lock()
		all := ls.game.AvailableThemes()
		for _, t := range fetched {
			if !containsTheme(all, t.ID) {
				all = append(all, t)
			}
		}
		ls.game.SetAvailableThemes(all)

		selected := make([]blindtest.Theme, 0, len(req.ThemeIDs))
		for _, id := range req.ThemeIDs {
			if i := slices.IndexFunc(all, func(t blindtest.Theme) bool { return t.ID == id }); i >= 0 && !containsTheme(selected, id) {
				selected = append(selected, all[i])
			}
		}
		ls.game.SetSelectedThemes(selected)
		state := ls.game.Snapshot()
		ls.mu.Unlock()

		writeJSON(w, http.StatusOK, state)
	}
}

// handleBuildPlaylist loads the tracks of every selected theme into the
// session's playlist and rewinds the game. It refuses while a game is in
// progress. The catalog is queried without holding the session.
func handleBuildPlaylist(catalog Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ls := sessionFrom(r)

		ls.mu.Lock()
		ids := ls.game.Settings().SelectedThemeIDs
		busy := gameInProgress(ls)
		ls.mu.Unlock()

		if busy {
			writeError(w, http.StatusConflict, "game in progress")
			return
		}
		if len(ids) == 0 {
			writeError(w, http.StatusBadRequest, "no themes selected")
			return
		}

		songs := catalog.BuildPlaylist(r.Context(), ids)

		ls.mu.Lock()
		if gameInProgress(ls) {
			ls.mu.Unlock()
			writeError(w, http.StatusConflict, "game in progress")
			return
		}
		// A new playlist starts a new game: cursor and results must match it.
		ls.stopCountdown()
		ls.game.ResetGame()
		ls.game.SetPlaylist(songs)
		state := ls.game.Snapshot()
		ls.mu.Unlock()

		writeJSON(w, http.StatusOK, state)
	}
}

// gameInProgress reports whether a song has been started and the game is not
// over yet. Caller holds ls.mu.
func gameInProgress(ls *LiveSession) bool {
	return ls.game.CurrentSong() != nil && !ls.game.IsGameOver()
}

func containsTheme(themes []blindtest.Theme, id int64) bool {
	return slices.ContainsFunc(themes, func(t blindtest.Theme) bool { return t.ID == id })
}
