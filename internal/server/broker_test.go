package server

import "testing"

func TestBroker(t *testing.T) {
	b := NewBroker()
	a1 := b.Subscribe("a")
	a2 := b.Subscribe("a")
	other := b.Subscribe("b")

	b.Publish("a", Event{Type: EventTick, Data: TickEvent{Timer: 29}})

	for i, ch := range []chan Event{a1, a2} {
		select {
		case ev := <-ch:
			if ev.Type != EventTick || ev.Data.(TickEvent).Timer != 29 {
				t.Errorf("subscriber %d got %+v", i, ev)
			}
		default:
			t.Errorf("subscriber %d got nothing", i)
		}
	}
	select {
	case ev := <-other:
		t.Errorf("other session received %+v", ev)
	default:
	}

	b.Unsubscribe("a", a1)
	b.Unsubscribe("a", a2)
	if n := b.Subscribers("a"); n != 0 {
		t.Errorf("subscribers = %d, want 0", n)
	}
}

func TestBrokerDropsForSlowSubscriber(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("a")

	for i := range cap(ch) + 10 {
		b.Publish("a", Event{Type: EventTick, Data: TickEvent{Timer: i}})
	}
	if len(ch) != cap(ch) {
		t.Errorf("buffered = %d, want %d", len(ch), cap(ch))
	}
}
