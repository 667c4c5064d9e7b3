package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/blindtest/internal/blindtest"
)

// findThemes searches the catalog, or lists the chart when q is blank.
func findThemes(r *http.Request, catalog Catalog) []blindtest.Theme {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		return catalog.ChartPlaylists(r.Context())
	}
	return catalog.SearchPlaylists(r.Context(), q)
}

func themeID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "themeID"), 10, 64)
	return id, err == nil && id > 0
}

func handleListThemes(catalog Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, findThemes(r, catalog))
	}
}

func handleGetTheme(catalog Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := themeID(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid theme id")
			return
		}

		theme, ok := catalog.Playlist(r.Context(), id)
		if !ok {
			writeError(w, http.StatusNotFound, "theme not found")
			return
		}
		writeJSON(w, http.StatusOK, theme)
	}
}

func handleThemeTracks(catalog Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := themeID(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid theme id")
			return
		}
		writeJSON(w, http.StatusOK, catalog.PlaylistTracks(r.Context(), id))
	}
}
