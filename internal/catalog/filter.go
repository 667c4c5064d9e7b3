package catalog

import "github.com/playperu/blindtest/internal/blindtest"

// minSongDuration excludes tracks shorter than the 30 s preview window.
const minSongDuration = 30

func filterThemes(themes []blindtest.Theme, minTracks int) []blindtest.Theme {
	out := make([]blindtest.Theme, 0, len(themes))
	for _, t := range themes {
		if t.NbTracks >= minTracks && t.Picture != "" {
			out = append(out, t)
		}
	}
	return out
}

func filterSongs(songs []blindtest.Song) []blindtest.Song {
	out := make([]blindtest.Song, 0, len(songs))
	for _, s := range songs {
		if playable(s) {
			out = append(out, s)
		}
	}
	return out
}

func playable(s blindtest.Song) bool {
	return s.Preview != "" &&
		s.Title != "" &&
		s.Artist.Name != "" &&
		s.Duration > minSongDuration
}
