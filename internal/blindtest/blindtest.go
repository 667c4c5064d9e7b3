// Package blindtest defines the core domain types shared by the game engine,
// the catalog client and the HTTP surface. It has zero external dependencies.
package blindtest

// Theme is a selectable playlist descriptor from the catalog.
type Theme struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Picture   string `json:"picture"`
	Tracklist string `json:"tracklist"`
	NbTracks  int    `json:"nb_tracks"`
}

type Artist struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

type Album struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Cover string `json:"cover"`
}

// Song is one playable track. Preview is the URL of a 30 s audio clip.
type Song struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Preview  string `json:"preview"`
	Artist   Artist `json:"artist"`
	Album    Album  `json:"album"`
	Duration int    `json:"duration"`
}

// AnswerMode selects what a guess is judged against.
type AnswerMode string

const (
	AnswerModeArtist AnswerMode = "artist"
	AnswerModeSong   AnswerMode = "song"
	AnswerModeBoth   AnswerMode = "both"
)

func (m AnswerMode) Valid() bool {
	switch m {
	case AnswerModeArtist, AnswerModeSong, AnswerModeBoth:
		return true
	}
	return false
}

// MatchesTitle reports whether guesses are compared against the song title.
func (m AnswerMode) MatchesTitle() bool { return m == AnswerModeSong || m == AnswerModeBoth }

// MatchesArtist reports whether guesses are compared against the artist name.
func (m AnswerMode) MatchesArtist() bool { return m == AnswerModeArtist || m == AnswerModeBoth }

type GameSettings struct {
	MaxPoints        int        `json:"maxPoints"`
	SelectedThemeIDs []int64    `json:"selectedThemeIds"`
	AnswerMode       AnswerMode `json:"answerMode"`
}

// DefaultSettings returns the settings a fresh session starts with.
func DefaultSettings() GameSettings {
	return GameSettings{
		MaxPoints:        100,
		SelectedThemeIDs: []int64{},
		AnswerMode:       AnswerModeBoth,
	}
}

// SettingsUpdate is a partial GameSettings. Nil fields are left unchanged.
type SettingsUpdate struct {
	MaxPoints        *int        `json:"maxPoints,omitempty"`
	SelectedThemeIDs []int64     `json:"selectedThemeIds,omitempty"`
	AnswerMode       *AnswerMode `json:"answerMode,omitempty"`
}

// Apply merges u into s and returns the result.
func (u SettingsUpdate) Apply(s GameSettings) GameSettings {
	if u.MaxPoints != nil {
		s.MaxPoints = *u.MaxPoints
	}
	if u.SelectedThemeIDs != nil {
		s.SelectedThemeIDs = append([]int64(nil), u.SelectedThemeIDs...)
	}
	if u.AnswerMode != nil {
		s.AnswerMode = *u.AnswerMode
	}
	return s
}

// GameResult is the committed outcome of one song cycle.
type GameResult struct {
	SongID        int64  `json:"songId"`
	SongTitle     string `json:"songTitle"`
	ArtistName    string `json:"artistName"`
	UserAnswer    string `json:"userAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
	Score         int    `json:"score"`
	TimeRemaining int    `json:"timeRemaining"`
}
