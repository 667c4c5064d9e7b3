package game

import "github.com/playperu/blindtest/internal/blindtest"

// State is a read-only snapshot of a Session for the presentation layer.
type State struct {
	Settings           blindtest.GameSettings `json:"settings"`
	AvailableThemes    []blindtest.Theme      `json:"availableThemes"`
	SelectedThemes     []blindtest.Theme      `json:"selectedThemes"`
	CurrentSong        *blindtest.Song        `json:"currentSong"`
	CurrentSongIndex   int                    `json:"currentSongIndex"`
	PlaylistLength     int                    `json:"playlistLength"`
	Results            []blindtest.GameResult `json:"results"`
	IsPlaying          bool                   `json:"isPlaying"`
	Timer              int                    `json:"timer"`
	UserAnswer         string                 `json:"userAnswer"`
	TimeIsUp           bool                   `json:"timeIsUp"`
	FoundCorrectAnswer bool                   `json:"foundCorrectAnswer"`
	CorrectAnswerTime  int                    `json:"correctAnswerTime"`
	IsMuted            bool                   `json:"isMuted"`
	Phase              string                 `json:"phase"`
	PendingScore       int                    `json:"pendingScore"`
	PendingResult      *blindtest.GameResult  `json:"pendingResult"`
	TotalScore         int                    `json:"totalScore"`
	IsGameOver         bool                   `json:"isGameOver"`
}

// Snapshot copies the session's observable state. Slices are never nil so
// they encode as JSON arrays.
func (s *Session) Snapshot() State {
	st := State{
		Settings:           s.Settings(),
		AvailableThemes:    s.AvailableThemes(),
		SelectedThemes:     s.SelectedThemes(),
		CurrentSong:        s.CurrentSong(),
		CurrentSongIndex:   s.cursor,
		PlaylistLength:     len(s.playlist),
		Results:            s.Results(),
		IsPlaying:          s.playing,
		Timer:              s.timer,
		UserAnswer:         s.userAnswer,
		TimeIsUp:           s.timeIsUp,
		FoundCorrectAnswer: s.FoundCorrectAnswer(),
		CorrectAnswerTime:  s.CorrectAnswerTime(),
		IsMuted:            s.muted,
		Phase:              s.cycle.phase.String(),
		PendingScore:       s.PendingScore(),
		TotalScore:         s.TotalScore(),
		IsGameOver:         s.IsGameOver(),
	}
	if r, ok := s.PendingResult(); ok {
		st.PendingResult = &r
	}
	if st.AvailableThemes == nil {
		st.AvailableThemes = []blindtest.Theme{}
	}
	if st.SelectedThemes == nil {
		st.SelectedThemes = []blindtest.Theme{}
	}
	if st.Results == nil {
		st.Results = []blindtest.GameResult{}
	}
	if st.Settings.SelectedThemeIDs == nil {
		st.Settings.SelectedThemeIDs = []int64{}
	}
	return st
}
