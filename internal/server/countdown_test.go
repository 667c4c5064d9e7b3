package server

import (
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/playperu/blindtest/internal/blindtest"
	"github.com/playperu/blindtest/internal/game"
)

// manualTicks is a TickSource the test fires by hand. Each countdown gets a
// fresh channel; fire targets the most recent one.
type manualTicks struct {
	mu sync.Mutex
	ch chan time.Time
}

func (m *manualTicks) source() (<-chan time.Time, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ch = make(chan time.Time)
	return m.ch, func() {}
}

// fire delivers one tick and reports whether a driver received it.
func (m *manualTicks) fire() bool {
	m.mu.Lock()
	ch := m.ch
	m.mu.Unlock()
	if ch == nil {
		return false
	}
	select {
	case ch <- time.Now():
		return true
	case <-time.After(200 * time.Millisecond):
		return false
	}
}

func waitEvent(t *testing.T, ch chan Event, typ string) Event {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev := <-ch:
			if ev.Type == typ {
				return ev
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %q event", typ)
		}
	}
}

func TestCountdownCommitsAtZero(t *testing.T) {
	ticks := &manualTicks{}
	h, a := newTestAPI(t, testCatalog(), WithTickSource(ticks.source))
	s := readySession(t, h, nil)
	base := "/api/sessions/" + s.ID

	events := a.Broker().Subscribe(s.ID)
	defer a.Broker().Unsubscribe(s.ID, events)

	call(t, h, http.MethodPost, base+"/start", s.Token, nil)
	waitEvent(t, events, EventSong)

	for i := 1; i <= game.RoundSeconds; i++ {
		if !ticks.fire() {
			t.Fatalf("tick %d not received", i)
		}
		ev := waitEvent(t, events, EventTick)
		if got := ev.Data.(TickEvent).Timer; got != game.RoundSeconds-i {
			t.Fatalf("tick %d: timer = %d, want %d", i, got, game.RoundSeconds-i)
		}
	}

	ev := waitEvent(t, events, EventTimeUp)
	if r := ev.Data.(blindtest.GameResult); r.IsCorrect || r.SongID != 10 {
		t.Errorf("time_up result = %+v, want a miss on song 10", r)
	}

	w := call(t, h, http.MethodGet, base, s.Token, nil)
	state := decode[game.State](t, w)
	if !state.TimeIsUp || state.IsPlaying || state.Timer != 0 || len(state.Results) != 1 {
		t.Errorf("state = timeUp:%v playing:%v timer:%d results:%d", state.TimeIsUp, state.IsPlaying, state.Timer, len(state.Results))
	}

	if ticks.fire() {
		t.Error("driver still running after commit")
	}
}

func TestCountdownScoresAtAnswerTime(t *testing.T) {
	ticks := &manualTicks{}
	h, a := newTestAPI(t, testCatalog(), WithTickSource(ticks.source))
	s := readySession(t, h, nil)
	base := "/api/sessions/" + s.ID

	events := a.Broker().Subscribe(s.ID)
	defer a.Broker().Unsubscribe(s.ID, events)

	call(t, h, http.MethodPost, base+"/start", s.Token, nil)
	for range 8 {
		ticks.fire()
		waitEvent(t, events, EventTick)
	}

	w := call(t, h, http.MethodPost, base+"/answer", s.Token, AnswerRequest{Answer: "queen"})
	ans := decode[AnswerResponse](t, w)
	if ans.Timer != 22 || ans.Score != 8 {
		t.Fatalf("answer at 22s: timer=%d score=%d, want 22 and 8", ans.Timer, ans.Score)
	}
	waitEvent(t, events, EventAnswer)

	// The countdown keeps running until the song ends.
	for ticks.fire() {
		if ev := waitEvent(t, events, EventTick); ev.Data.(TickEvent).Timer == 0 {
			break
		}
	}
	ev := waitEvent(t, events, EventTimeUp)
	if r := ev.Data.(blindtest.GameResult); !r.IsCorrect || r.Score != 8 || r.TimeRemaining != 22 {
		t.Errorf("committed = %+v, want correct with 8 points at 22s", r)
	}
}

func TestCountdownStoppedByManualTimeUp(t *testing.T) {
	ticks := &manualTicks{}
	h, a := newTestAPI(t, testCatalog(), WithTickSource(ticks.source))
	s := readySession(t, h, nil)
	base := "/api/sessions/" + s.ID

	events := a.Broker().Subscribe(s.ID)
	defer a.Broker().Unsubscribe(s.ID, events)

	call(t, h, http.MethodPost, base+"/start", s.Token, nil)
	call(t, h, http.MethodPost, base+"/timeup", s.Token, nil)
	waitEvent(t, events, EventTimeUp)

	if ticks.fire() {
		t.Error("driver still running after manual time up")
	}

	w := call(t, h, http.MethodGet, base, s.Token, nil)
	if state := decode[game.State](t, w); len(state.Results) != 1 {
		t.Errorf("results = %d, want exactly 1", len(state.Results))
	}
}

func TestCountdownGameOverEvent(t *testing.T) {
	ticks := &manualTicks{}
	h, a := newTestAPI(t, testCatalog(), WithTickSource(ticks.source))
	points := 5
	s := readySession(t, h, SettingsRequest{MaxPoints: &points})
	base := "/api/sessions/" + s.ID

	events := a.Broker().Subscribe(s.ID)
	defer a.Broker().Unsubscribe(s.ID, events)

	call(t, h, http.MethodPost, base+"/start", s.Token, nil)
	call(t, h, http.MethodPost, base+"/answer", s.Token, AnswerRequest{Answer: "bohemian rhapsody"})
	for ticks.fire() {
	}

	ev := waitEvent(t, events, EventGameOver)
	if over := ev.Data.(GameOverEvent); over.TotalScore != 10 || len(over.Results) != 1 {
		t.Errorf("game_over = %+v", over)
	}
}
