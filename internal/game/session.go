// Package game implements the blind-test session state machine together with
// the answer matching and time-based scoring it relies on.
//
// A Session is not safe for concurrent use. It owns no clock: whoever drives
// the countdown calls Tick once per second and TimeUp when the timer hits zero.
package game

import (
	"slices"

	"github.com/playperu/blindtest/internal/blindtest"
)

// RoundSeconds is the length of one song cycle.
const RoundSeconds = 30

type phase int

const (
	phaseNoAnswer phase = iota
	phasePending
	phaseCommitted
)

func (p phase) String() string {
	switch p {
	case phasePending:
		return "pending"
	case phaseCommitted:
		return "committed"
	default:
		return "no_answer"
	}
}

// cycle is the answer state of the current song. In phasePending, result is
// the provisional outcome; in phaseCommitted it is what was appended to the log.
type cycle struct {
	phase  phase
	result blindtest.GameResult
}

type Session struct {
	evaluator Evaluator
	scoring   ScoringPolicy

	settings        blindtest.GameSettings
	availableThemes []blindtest.Theme
	playlist        []blindtest.Song
	results         []blindtest.GameResult

	current    *blindtest.Song
	cursor     int
	timer      int
	playing    bool
	timeIsUp   bool
	muted      bool
	userAnswer string
	cycle      cycle
}

type Option func(*Session)

func WithEvaluator(e Evaluator) Option {
	return func(s *Session) { s.evaluator = e }
}

func WithScoring(p ScoringPolicy) Option {
	return func(s *Session) { s.scoring = p }
}

func WithSettings(settings blindtest.GameSettings) Option {
	return func(s *Session) { s.settings = settings }
}

// NewSession returns a session in its initial state, using FuzzyEvaluator and
// TimeTable unless overridden.
func NewSession(opts ...Option) *Session {
	s := &Session{
		evaluator: FuzzyEvaluator{},
		scoring:   TimeTable{},
		settings:  blindtest.DefaultSettings(),
		timer:     RoundSeconds,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// --- configuration ---

func (s *Session) UpdateSettings(u blindtest.SettingsUpdate) {
	s.settings = u.Apply(s.settings)
}

func (s *Session) SetAvailableThemes(themes []blindtest.Theme) {
	s.availableThemes = themes
}

func (s *Session) SetSelectedThemes(themes []blindtest.Theme) {
	ids := make([]int64, 0, len(themes))
	for _, t := range themes {
		ids = append(ids, t.ID)
	}
	s.settings.SelectedThemeIDs = ids
}

// SetPlaylist replaces the playlist. Call it before StartGame.
func (s *Session) SetPlaylist(songs []blindtest.Song) {
	s.playlist = songs
}

// --- transitions ---

// StartGame rewinds to the first song, clears committed results and mute,
// and begins the first cycle.
func (s *Session) StartGame() {
	s.cursor = 0
	s.results = nil
	s.muted = false
	s.Advance()
}

// Advance makes the next playlist entry current and starts its cycle. It
// reports false and changes nothing when the playlist is exhausted.
func (s *Session) Advance() bool {
	if s.cursor >= len(s.playlist) {
		return false
	}
	song := s.playlist[s.cursor]
	s.current = &song
	s.cursor++
	s.timer = RoundSeconds
	s.userAnswer = ""
	s.timeIsUp = false
	s.cycle = cycle{}
	s.playing = true
	return true
}

// SetUserAnswer records the raw text currently typed by the player.
func (s *Session) SetUserAnswer(answer string) {
	s.userAnswer = answer
}

// MarkCorrectAnswer holds a provisional result for the current song scored
// from timeRemaining. It does not touch the committed log; TimeUp does.
// Calling it again before TimeUp overwrites the pending result. It reports
// false when there is no current song or the cycle is already committed.
func (s *Session) MarkCorrectAnswer(timeRemaining int) bool {
	if s.current == nil || s.cycle.phase == phaseCommitted {
		return false
	}
	timeRemaining = min(max(timeRemaining, 0), RoundSeconds)
	s.cycle = cycle{
		phase: phasePending,
		result: blindtest.GameResult{
			SongID:        s.current.ID,
			SongTitle:     s.current.Title,
			ArtistName:    s.current.Artist.Name,
			UserAnswer:    s.userAnswer,
			IsCorrect:     true,
			Score:         s.scoring.PointsFor(timeRemaining),
			TimeRemaining: timeRemaining,
		},
	}
	return true
}

// Guess records input as the current answer and, the first time it matches
// during a live cycle, marks it correct at the current timer value.
func (s *Session) Guess(input string) bool {
	s.SetUserAnswer(input)
	if s.current == nil || s.timeIsUp || s.cycle.phase == phaseCommitted {
		return false
	}
	if !s.IsAnswerCorrect() {
		return false
	}
	if s.cycle.phase == phaseNoAnswer {
		s.MarkCorrectAnswer(s.timer)
	}
	return true
}

// Tick decrements the timer of a running cycle and returns the seconds left.
func (s *Session) Tick() int {
	if s.playing && !s.timeIsUp && s.timer > 0 {
		s.timer--
	}
	return s.timer
}

// TimeUp ends the current cycle and appends exactly one result: the pending
// one if a correct answer was found, otherwise a zero-score miss. It returns
// the appended result, or false when there is no current song or the cycle
// was already committed.
func (s *Session) TimeUp() (blindtest.GameResult, bool) {
	if s.current == nil || s.cycle.phase == phaseCommitted {
		return blindtest.GameResult{}, false
	}
	s.timeIsUp = true
	s.playing = false

	result := s.cycle.result
	if s.cycle.phase != phasePending {
		result = blindtest.GameResult{
			SongID:     s.current.ID,
			SongTitle:  s.current.Title,
			ArtistName: s.current.Artist.Name,
		}
	}
	s.results = append(s.results, result)
	s.cycle = cycle{phase: phaseCommitted, result: result}
	return result, true
}

func (s *Session) ToggleMute() bool {
	s.muted = !s.muted
	return s.muted
}

// ResetGame returns every game and per-song field to its initial value.
// Available themes and settings survive.
func (s *Session) ResetGame() {
	s.current = nil
	s.cursor = 0
	s.playlist = nil
	s.results = nil
	s.playing = false
	s.timer = RoundSeconds
	s.userAnswer = ""
	s.timeIsUp = false
	s.muted = false
	s.cycle = cycle{}
}

// --- derived values ---

func (s *Session) IsAnswerCorrect() bool {
	return s.evaluator.IsCorrect(s.current, s.userAnswer, s.settings.AnswerMode)
}

func (s *Session) SelectedThemes() []blindtest.Theme {
	var out []blindtest.Theme
	for _, t := range s.availableThemes {
		if slices.Contains(s.settings.SelectedThemeIDs, t.ID) {
			out = append(out, t)
		}
	}
	return out
}

// TotalScore sums committed results only.
func (s *Session) TotalScore() int {
	total := 0
	for _, r := range s.results {
		total += r.Score
	}
	return total
}

func (s *Session) PendingScore() int {
	if s.cycle.phase != phasePending {
		return 0
	}
	return s.cycle.result.Score
}

func (s *Session) PendingResult() (blindtest.GameResult, bool) {
	if s.cycle.phase != phasePending {
		return blindtest.GameResult{}, false
	}
	return s.cycle.result, true
}

func (s *Session) FoundCorrectAnswer() bool {
	return s.cycle.phase != phaseNoAnswer && s.cycle.result.IsCorrect
}

func (s *Session) CorrectAnswerTime() int {
	if !s.FoundCorrectAnswer() {
		return 0
	}
	return s.cycle.result.TimeRemaining
}

func (s *Session) IsGameOver() bool {
	return s.TotalScore() >= s.settings.MaxPoints ||
		(s.cursor == len(s.playlist) && len(s.playlist) > 0)
}

func (s *Session) Settings() blindtest.GameSettings {
	out := s.settings
	out.SelectedThemeIDs = slices.Clone(s.settings.SelectedThemeIDs)
	return out
}

func (s *Session) AvailableThemes() []blindtest.Theme { return slices.Clone(s.availableThemes) }
func (s *Session) Playlist() []blindtest.Song { return slices.Clone(s.playlist) }
func (s *Session) Results() []blindtest.GameResult { return slices.Clone(s.results) }
func (s *Session) CurrentSongIndex() int { return s.cursor }
func (s *Session) Timer() int { return s.timer }
func (s *Session) IsPlaying() bool { return s.playing }
func (s *Session) TimeIsUp() bool { return s.timeIsUp }
func (s *Session) IsMuted() bool { return s.muted }
func (s *Session) UserAnswer() string { return s.userAnswer }

// CurrentSong returns a copy of the current song, or nil before the first cycle.
func (s *Session) CurrentSong() *blindtest.Song {
	if s.current == nil {
		return nil
	}
	song := *s.current
	return &song
}
