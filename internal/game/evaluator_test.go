package game

import (
	"testing"

	"github.com/playperu/blindtest/internal/blindtest"
)

func testSong() *blindtest.Song {
	return &blindtest.Song{
		ID:    1,
		Title: "Bohemian Rhapsody (Remastered 2011)",
		Artist: blindtest.Artist{
			ID:   10,
			Name: "Queen",
		},
	}
}

func TestFuzzyEvaluator(t *testing.T) {
	mercury := &blindtest.Song{ID: 2, Title: "Love Kills", Artist: blindtest.Artist{Name: "Freddie Mercury"}}
	abc := &blindtest.Song{ID: 3, Title: "The Look of Love", Artist: blindtest.Artist{Name: "ABC Band"}}

	tests := []struct {
		name  string
		song  *blindtest.Song
		input string
		mode  blindtest.AnswerMode
		want  bool
	}{
		{"no song", nil, "queen", blindtest.AnswerModeBoth, false},
		{"empty input", testSong(), "", blindtest.AnswerModeBoth, false},
		{"too short", testSong(), "qu", blindtest.AnswerModeBoth, false},
		{"too short after trim", testSong(), "   qu   ", blindtest.AnswerModeArtist, false},
		{"exact title", testSong(), "bohemian rhapsody", blindtest.AnswerModeSong, true},
		{"title with typo", testSong(), "bohemian rapsody", blindtest.AnswerModeBoth, true},
		{"artist in artist mode", testSong(), "Queen", blindtest.AnswerModeArtist, true},
		{"artist in both mode", testSong(), "queen", blindtest.AnswerModeBoth, true},
		{"artist ignored in song mode", testSong(), "queen", blindtest.AnswerModeSong, false},
		{"title ignored in artist mode", testSong(), "bohemian rhapsody", blindtest.AnswerModeArtist, false},
		{"single title word", testSong(), "rhapsody", blindtest.AnswerModeSong, true},
		{"single artist word", mercury, "mercury", blindtest.AnswerModeArtist, true},
		{"artist word ignored in song mode", mercury, "mercury", blindtest.AnswerModeSong, false},
		{"word match needs four runes", abc, "abc", blindtest.AnswerModeArtist, false},
		{"unrelated guess", testSong(), "stairway to heaven", blindtest.AnswerModeBoth, false},
	}

	var e FuzzyEvaluator
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.IsCorrect(tt.song, tt.input, tt.mode); got != tt.want {
				t.Errorf("IsCorrect(%q, %s) = %v, want %v", tt.input, tt.mode, got, tt.want)
			}
		})
	}
}

func TestFuzzyEvaluatorRejectsShortInputInEveryMode(t *testing.T) {
	song := &blindtest.Song{Title: "Up", Artist: blindtest.Artist{Name: "U2"}}
	modes := []blindtest.AnswerMode{blindtest.AnswerModeArtist, blindtest.AnswerModeSong, blindtest.AnswerModeBoth}

	var e FuzzyEvaluator
	for _, m := range modes {
		for _, in := range []string{"u2", "up", " U2 ", "x"} {
			if e.IsCorrect(song, in, m) {
				t.Errorf("IsCorrect(%q, %s) = true, want false", in, m)
			}
		}
	}
}

func TestSignificantWords(t *testing.T) {
	got := significantWords("  The Look  of Love ")
	want := []string{"the", "look", "love"}
	if len(got) != len(want) {
		t.Fatalf("significantWords = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("word %d = %q, want %q", i, got[i], want[i])
		}
	}
}
