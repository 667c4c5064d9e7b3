package game

import (
	"strings"
	"unicode/utf8"

	"github.com/playperu/blindtest/internal/blindtest"
)

const (
	// MatchThreshold is the similarity percentage a guess (or a single word
	// of it) must reach to count as correct.
	MatchThreshold = 90

	minAnswerLen    = 3
	minWordLen      = 3
	minWordMatchLen = 4
)

// Evaluator decides whether a raw guess names the given song.
type Evaluator interface {
	IsCorrect(song *blindtest.Song, input string, mode blindtest.AnswerMode) bool
}

// FuzzyEvaluator accepts a guess when it is close to the full title or artist
// name, or when one of its significant words closely matches one of theirs.
type FuzzyEvaluator struct{}

func (FuzzyEvaluator) IsCorrect(song *blindtest.Song, input string, mode blindtest.AnswerMode) bool {
	if song == nil || input == "" {
		return false
	}
	answer := strings.TrimSpace(input)
	if utf8.RuneCountInString(answer) < minAnswerLen {
		return false
	}

	var titleSim, artistSim float64
	if mode.MatchesTitle() {
		titleSim = Similarity(answer, song.Title)
	}
	if mode.MatchesArtist() {
		artistSim = Similarity(answer, song.Artist.Name)
	}
	if titleSim >= MatchThreshold || artistSim >= MatchThreshold {
		return true
	}

	answerWords := significantWords(answer)
	if len(answerWords) == 0 || utf8.RuneCountInString(answer) < minWordMatchLen {
		return false
	}

	if mode.MatchesTitle() && anyWordMatches(answerWords, significantWords(song.Title)) {
		return true
	}
	return mode.MatchesArtist() && anyWordMatches(answerWords, significantWords(song.Artist.Name))
}

// significantWords splits s on whitespace, lowercases, and keeps words of at
// least three runes.
func significantWords(s string) []string {
	var words []string
	for _, w := range strings.Fields(strings.ToLower(s)) {
		if utf8.RuneCountInString(w) >= minWordLen {
			words = append(words, w)
		}
	}
	return words
}

func anyWordMatches(guess, target []string) bool {
	for _, g := range guess {
		for _, t := range target {
			if Similarity(g, t) >= MatchThreshold {
				return true
			}
		}
	}
	return false
}
