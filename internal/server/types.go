package server

import (
	"github.com/playperu/blindtest/internal/blindtest"
	"github.com/playperu/blindtest/internal/game"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

type CreateSessionResponse struct {
	ID    string     `json:"id"`
	Token string     `json:"token"`
	State game.State `json:"state"`
}

type SettingsRequest = blindtest.SettingsUpdate

type SelectThemesRequest struct {
	ThemeIDs []int64 `json:"themeIds"`
}

type AnswerRequest struct {
	Answer string `json:"answer"`
}

// AnswerResponse reports the evaluation of the latest input. Score is the
// pending score of the cycle, not yet part of the total.
type AnswerResponse struct {
	IsCorrect          bool `json:"isCorrect"`
	FoundCorrectAnswer bool `json:"foundCorrectAnswer"`
	Timer              int  `json:"timer"`
	Score              int  `json:"score"`
}

type TimeUpResponse struct {
	Result blindtest.GameResult `json:"result"`
	State  game.State           `json:"state"`
}

type MuteResponse struct {
	IsMuted bool `json:"isMuted"`
}

type TickEvent struct {
	Timer int `json:"timer"`
}

type GameOverEvent struct {
	TotalScore int                    `json:"totalScore"`
	Results    []blindtest.GameResult `json:"results"`
}
