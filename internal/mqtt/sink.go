package mqtt

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/sweeney/motion-strip/internal/logic"
)

// DefaultQueueSize is the number of controller events Sink holds while the
// publishing goroutine catches up.
const DefaultQueueSize = 64

// Sink forwards controller events to a Publisher from its own goroutine.
// Emit never blocks: when the queue is full the event is dropped and counted,
// so a slow or absent broker cannot alter controller timing.
type Sink struct {
	pub   Publisher
	now   func() time.Time
	queue chan Event

	mu      sync.Mutex
	dropped int
}

// NewSink creates a Sink with room for size pending events.
// now stamps each event with wall-clock time; nil means time.Now.
func NewSink(pub Publisher, size int, now func() time.Time) *Sink {
	if size < 1 {
		size = DefaultQueueSize
	}
	if now == nil {
		now = time.Now
	}
	return &Sink{pub: pub, now: now, queue: make(chan Event, size)}
}

// Emit implements logic.Sink.
func (s *Sink) Emit(e logic.Event) {
	select {
	case s.queue <- Event{Timestamp: s.now(), Event: e}:
	default:
		s.mu.Lock()
		s.dropped++
		s.mu.Unlock()
	}
}

// Dropped returns how many events were discarded because the queue was full.
func (s *Sink) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Run publishes queued events until ctx is cancelled, then flushes whatever
// is still queued before returning.
func (s *Sink) Run(ctx context.Context) {
	for {
		select {
		case ev := <-s.queue:
			s.publish(ev)
		case <-ctx.Done():
			for {
				select {
				case ev := <-s.queue:
					s.publish(ev)
				default:
					return
				}
			}
		}
	}
}

func (s *Sink) publish(ev Event) {
	if err := s.pub.Publish(ev); err != nil {
		log.Printf("MQTT publish error: %v", err)
	}
}
