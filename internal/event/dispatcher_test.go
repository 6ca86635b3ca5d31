package event_test

import (
	"sync"
	"testing"
	"time"

	"github.com/blues/cfl/internal/event"
)

// captureProcessor 收集处理过的事件，供测试断言
type captureProcessor struct {
	mu     sync.Mutex
	events []event.Event
	done   chan struct{}
	want   int
}

func newCaptureProcessor(want int) *captureProcessor {
	return &captureProcessor{done: make(chan struct{}), want: want}
}

func (p *captureProcessor) Name() string {
	return "capture"
}

func (p *captureProcessor) Process(ev event.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	if len(p.events) == p.want {
		close(p.done)
	}
	return nil
}

func TestDispatcherDeliversToAllProcessors(t *testing.T) {
	first := newCaptureProcessor(1)
	second := newCaptureProcessor(1)

	d, err := event.NewDispatcher(4, first)
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}
	defer d.Release()
	d.Register(second)

	d.Emit(event.Event{
		Type:       event.TypeCampaignCreated,
		Campaign:   "0x1000000000000000000000000000000000000001",
		OccurredAt: time.Now(),
	})

	for _, p := range []*captureProcessor{first, second} {
		select {
		case <-p.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("processor %s did not receive the event", p.Name())
		}
	}

	if first.events[0].Type != event.TypeCampaignCreated {
		t.Fatalf("event type = %s, want %s", first.events[0].Type, event.TypeCampaignCreated)
	}
}

func TestDispatcherDefaultsPoolSize(t *testing.T) {
	d, err := event.NewDispatcher(0)
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}
	d.Release()
}
