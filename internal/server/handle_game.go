package server

import (
	"net/http"

	"github.com/playperu/blindtest/internal/metrics"
)

func handleStart(cd *countdown, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ls := sessionFrom(r)
		ls.mu.Lock()
		defer ls.mu.Unlock()

		if len(ls.game.Playlist()) == 0 {
			writeError(w, http.StatusConflict, "playlist is empty")
			return
		}

		ls.game.StartGame()
		metrics.GamesStarted.Inc()
		cd.start(ls)

		state := ls.game.Snapshot()
		broker.Publish(ls.ID, Event{Type: EventSong, Data: state})
		writeJSON(w, http.StatusOK, state)
	}
}

func handleNext(cd *countdown, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ls := sessionFrom(r)
		ls.mu.Lock()
		defer ls.mu.Unlock()

		switch {
		case ls.game.IsGameOver():
			writeError(w, http.StatusConflict, "game is over")
			return
		case ls.game.IsPlaying():
			writeError(w, http.StatusConflict, "current song is still playing")
			return
		case !ls.game.Advance():
			writeError(w, http.StatusConflict, "playlist is exhausted")
			return
		}
		cd.start(ls)

		state := ls.game.Snapshot()
		broker.Publish(ls.ID, Event{Type: EventSong, Data: state})
		writeJSON(w, http.StatusOK, state)
	}
}

// submitGuess evaluates input against the current song. Caller holds ls.mu
// and has checked that a cycle is live.
func submitGuess(ls *LiveSession, broker *Broker, input string) AnswerResponse {
	alreadyFound := ls.game.FoundCorrectAnswer()
	correct := ls.game.Guess(input)

	result := "incorrect"
	if correct {
		result = "correct"
	}
	metrics.Guesses.WithLabelValues(result).Inc()

	resp := AnswerResponse{
		IsCorrect:          correct,
		FoundCorrectAnswer: ls.game.FoundCorrectAnswer(),
		Timer:              ls.game.Timer(),
		Score:              ls.game.PendingScore(),
	}
	if correct && !alreadyFound {
		broker.Publish(ls.ID, Event{Type: EventAnswer, Data: resp})
	}
	return resp
}

func handleAnswer(broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AnswerRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		ls := sessionFrom(r)
		ls.mu.Lock()
		defer ls.mu.Unlock()

		if ls.game.CurrentSong() == nil || ls.game.TimeIsUp() {
			writeError(w, http.StatusConflict, "no song is playing")
			return
		}
		writeJSON(w, http.StatusOK, submitGuess(ls, broker, req.Answer))
	}
}

// handleTimeUp commits the current cycle for clients that run their own
// timer.
func handleTimeUp(broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ls := sessionFrom(r)
		ls.mu.Lock()
		defer ls.mu.Unlock()

		result, ok := commitTimeUp(ls, broker)
		if !ok {
			writeError(w, http.StatusConflict, "no song is playing")
			return
		}
		writeJSON(w, http.StatusOK, TimeUpResponse{Result: result, State: ls.game.Snapshot()})
	}
}

func handleMute() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ls := sessionFrom(r)
		ls.mu.Lock()
		muted := ls.game.ToggleMute()
		ls.mu.Unlock()

		writeJSON(w, http.StatusOK, MuteResponse{IsMuted: muted})
	}
}

func handleReset(broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ls := sessionFrom(r)
		ls.mu.Lock()
		defer ls.mu.Unlock()

		ls.stopCountdown()
		ls.game.ResetGame()

		state := ls.game.Snapshot()
		broker.Publish(ls.ID, Event{Type: EventReset, Data: state})
		writeJSON(w, http.StatusOK, state)
	}
}
