package server

import (
	"net/http"
	"testing"

	"github.com/playperu/blindtest/internal/blindtest"
	"github.com/playperu/blindtest/internal/game"
)

func TestGameFlow(t *testing.T) {
	h, _ := newTestAPI(t, testCatalog())
	s := readySession(t, h, nil)
	base := "/api/sessions/" + s.ID

	// Start plays the first song.
	w := call(t, h, http.MethodPost, base+"/start", s.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("start: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	state := decode[game.State](t, w)
	if state.CurrentSong == nil || state.CurrentSong.ID != 10 {
		t.Fatalf("start: current song = %+v, want 10", state.CurrentSong)
	}
	if !state.IsPlaying || state.PlaylistLength != 2 {
		t.Errorf("start: playing=%v length=%d", state.IsPlaying, state.PlaylistLength)
	}

	// Next is refused while the song plays.
	if w := call(t, h, http.MethodPost, base+"/next", s.Token, nil); w.Code != http.StatusConflict {
		t.Errorf("next while playing: expected 409, got %d", w.Code)
	}

	// Wrong answer.
	w = call(t, h, http.MethodPost, base+"/answer", s.Token, AnswerRequest{Answer: "abba"})
	ans := decode[AnswerResponse](t, w)
	if ans.IsCorrect || ans.FoundCorrectAnswer {
		t.Errorf("wrong answer: %+v", ans)
	}

	// Correct answer holds a pending score only.
	w = call(t, h, http.MethodPost, base+"/answer", s.Token, AnswerRequest{Answer: "queen"})
	ans = decode[AnswerResponse](t, w)
	if !ans.IsCorrect || !ans.FoundCorrectAnswer {
		t.Fatalf("correct answer: %+v", ans)
	}
	if ans.Score != 10 || ans.Timer != game.RoundSeconds {
		t.Errorf("correct answer: score=%d timer=%d, want 10 and %d", ans.Score, ans.Timer, game.RoundSeconds)
	}

	w = call(t, h, http.MethodGet, base, s.Token, nil)
	state = decode[game.State](t, w)
	if state.TotalScore != 0 || state.PendingScore != 10 {
		t.Errorf("before time up: total=%d pending=%d, want 0 and 10", state.TotalScore, state.PendingScore)
	}

	// Time up commits.
	w = call(t, h, http.MethodPost, base+"/timeup", s.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("timeup: expected 200, got %d", w.Code)
	}
	tu := decode[TimeUpResponse](t, w)
	if !tu.Result.IsCorrect || tu.Result.Score != 10 || tu.Result.UserAnswer != "queen" {
		t.Errorf("timeup result = %+v", tu.Result)
	}
	if tu.State.TotalScore != 10 || len(tu.State.Results) != 1 {
		t.Errorf("timeup state: total=%d results=%d", tu.State.TotalScore, len(tu.State.Results))
	}

	// A second time up for the same song changes nothing.
	if w := call(t, h, http.MethodPost, base+"/timeup", s.Token, nil); w.Code != http.StatusConflict {
		t.Errorf("second timeup: expected 409, got %d", w.Code)
	}
	if w := call(t, h, http.MethodPost, base+"/answer", s.Token, AnswerRequest{Answer: "queen"}); w.Code != http.StatusConflict {
		t.Errorf("answer after time up: expected 409, got %d", w.Code)
	}

	// Second song is missed.
	w = call(t, h, http.MethodPost, base+"/next", s.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("next: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	state = decode[game.State](t, w)
	if state.CurrentSong == nil || state.CurrentSong.ID != 11 {
		t.Fatalf("next: current song = %+v, want 11", state.CurrentSong)
	}
	if state.UserAnswer != "" || state.Phase != "no_answer" {
		t.Errorf("next: answer=%q phase=%q, want fresh cycle", state.UserAnswer, state.Phase)
	}

	w = call(t, h, http.MethodPost, base+"/timeup", s.Token, nil)
	tu = decode[TimeUpResponse](t, w)
	if tu.Result.IsCorrect || tu.Result.Score != 0 || tu.Result.TimeRemaining != 0 {
		t.Errorf("missed result = %+v", tu.Result)
	}
	if !tu.State.IsGameOver || tu.State.TotalScore != 10 {
		t.Errorf("end: gameOver=%v total=%d", tu.State.IsGameOver, tu.State.TotalScore)
	}

	if w := call(t, h, http.MethodPost, base+"/next", s.Token, nil); w.Code != http.StatusConflict {
		t.Errorf("next after game over: expected 409, got %d", w.Code)
	}
}

func TestAnswerWithoutSong(t *testing.T) {
	h, _ := newTestAPI(t, testCatalog())
	s := readySession(t, h, nil)

	w := call(t, h, http.MethodPost, "/api/sessions/"+s.ID+"/answer", s.Token, AnswerRequest{Answer: "queen"})
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	if w := call(t, h, http.MethodPost, "/api/sessions/"+s.ID+"/timeup", s.Token, nil); w.Code != http.StatusConflict {
		t.Errorf("timeup without song: expected 409, got %d", w.Code)
	}
}

func TestAnswerModeRespected(t *testing.T) {
	h, _ := newTestAPI(t, testCatalog())
	mode := blindtest.AnswerModeSong
	s := readySession(t, h, SettingsRequest{AnswerMode: &mode})
	base := "/api/sessions/" + s.ID

	call(t, h, http.MethodPost, base+"/start", s.Token, nil)

	w := call(t, h, http.MethodPost, base+"/answer", s.Token, AnswerRequest{Answer: "queen"})
	if ans := decode[AnswerResponse](t, w); ans.IsCorrect {
		t.Error("artist accepted in song mode")
	}
	w = call(t, h, http.MethodPost, base+"/answer", s.Token, AnswerRequest{Answer: "bohemian rhapsody"})
	if ans := decode[AnswerResponse](t, w); !ans.IsCorrect {
		t.Error("title rejected in song mode")
	}
}

func TestGameOverOnMaxPoints(t *testing.T) {
	h, _ := newTestAPI(t, testCatalog())
	points := 10
	s := readySession(t, h, SettingsRequest{MaxPoints: &points})
	base := "/api/sessions/" + s.ID

	call(t, h, http.MethodPost, base+"/start", s.Token, nil)
	call(t, h, http.MethodPost, base+"/answer", s.Token, AnswerRequest{Answer: "queen"})
	w := call(t, h, http.MethodPost, base+"/timeup", s.Token, nil)

	if tu := decode[TimeUpResponse](t, w); !tu.State.IsGameOver {
		t.Fatal("expected game over after reaching maxPoints")
	}
	if w := call(t, h, http.MethodPost, base+"/next", s.Token, nil); w.Code != http.StatusConflict {
		t.Errorf("next: expected 409, got %d", w.Code)
	}
}

func TestMuteAndReset(t *testing.T) {
	h, _ := newTestAPI(t, testCatalog())
	s := readySession(t, h, nil)
	base := "/api/sessions/" + s.ID

	call(t, h, http.MethodPost, base+"/start", s.Token, nil)

	w := call(t, h, http.MethodPost, base+"/mute", s.Token, nil)
	if m := decode[MuteResponse](t, w); !m.IsMuted {
		t.Error("first toggle: expected muted")
	}
	w = call(t, h, http.MethodPost, base+"/mute", s.Token, nil)
	if m := decode[MuteResponse](t, w); m.IsMuted {
		t.Error("second toggle: expected unmuted")
	}

	call(t, h, http.MethodPost, base+"/mute", s.Token, nil)
	call(t, h, http.MethodPost, base+"/answer", s.Token, AnswerRequest{Answer: "queen"})
	call(t, h, http.MethodPost, base+"/timeup", s.Token, nil)

	w = call(t, h, http.MethodPost, base+"/reset", s.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("reset: expected 200, got %d", w.Code)
	}
	state := decode[game.State](t, w)
	if state.CurrentSong != nil || state.PlaylistLength != 0 || len(state.Results) != 0 {
		t.Errorf("reset: song=%v length=%d results=%d", state.CurrentSong, state.PlaylistLength, len(state.Results))
	}
	if state.IsMuted || state.IsPlaying || state.Timer != game.RoundSeconds {
		t.Errorf("reset: muted=%v playing=%v timer=%d", state.IsMuted, state.IsPlaying, state.Timer)
	}
	if len(state.SelectedThemes) != 1 {
		t.Errorf("reset: selected themes = %+v, want kept", state.SelectedThemes)
	}
}

func TestPlaylistRebuild(t *testing.T) {
	h, _ := newTestAPI(t, testCatalog())
	s := readySession(t, h, nil)
	base := "/api/sessions/" + s.ID

	call(t, h, http.MethodPost, base+"/start", s.Token, nil)
	if w := call(t, h, http.MethodPost, base+"/playlist", s.Token, nil); w.Code != http.StatusConflict {
		t.Errorf("rebuild mid-game: expected 409, got %d", w.Code)
	}

	call(t, h, http.MethodPost, base+"/timeup", s.Token, nil)
	call(t, h, http.MethodPost, base+"/next", s.Token, nil)
	w := call(t, h, http.MethodPost, base+"/timeup", s.Token, nil)
	if state := decode[TimeUpResponse](t, w).State; !state.IsGameOver || len(state.Results) != 2 {
		t.Fatalf("after two songs: over=%v results=%d", state.IsGameOver, len(state.Results))
	}

	// Theme 2 has no tracks: the new playlist is empty.
	call(t, h, http.MethodPut, base+"/themes/selected", s.Token, SelectThemesRequest{ThemeIDs: []int64{2}})
	w = call(t, h, http.MethodPost, base+"/playlist", s.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("rebuild after game over: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	state := decode[game.State](t, w)
	if len(state.Results) > state.PlaylistLength {
		t.Errorf("results %d exceed playlist %d", len(state.Results), state.PlaylistLength)
	}
	if state.CurrentSong != nil || state.CurrentSongIndex != 0 || state.IsGameOver {
		t.Errorf("rebuild: song=%v cursor=%d over=%v", state.CurrentSong, state.CurrentSongIndex, state.IsGameOver)
	}

	// A playable playlist after a finished game starts from the first song.
	call(t, h, http.MethodPut, base+"/themes/selected", s.Token, SelectThemesRequest{ThemeIDs: []int64{1}})
	call(t, h, http.MethodPost, base+"/playlist", s.Token, nil)
	w = call(t, h, http.MethodPost, base+"/start", s.Token, nil)
	if state := decode[game.State](t, w); state.CurrentSong == nil || state.CurrentSong.ID != 10 || len(state.Results) != 0 {
		t.Errorf("restart: song=%v results=%d", state.CurrentSong, len(state.Results))
	}
}
