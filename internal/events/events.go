// Package events buffers simulation change notifications for UI layers
// to drain once per frame.
package events

import (
	"fmt"

	"github.com/signalsfoundry/starview-simulator/core"
	"github.com/signalsfoundry/starview-simulator/model"
)

// Kind classifies a buffered event.
type Kind int

const (
	SelectionChanged Kind = iota
	TimeChanged
	FrameChanged
	FlashMessage
)

// Event is one buffered notification. Only the fields relevant to its
// Kind are set.
type Event struct {
	Kind      Kind
	Selection model.Selection
	JD        float64
	Frame     *core.Frame
	Message   string
}

// String renders the event for status lines and logs.
func (e Event) String() string {
	switch e.Kind {
	case SelectionChanged:
		if e.Selection.Empty() {
			return "selection cleared"
		}
		return "selected " + e.Selection.Name()
	case TimeChanged:
		return fmt.Sprintf("time set to JD %.5f", e.JD)
	case FrameChanged:
		if e.Frame == nil {
			return "frame changed"
		}
		return "frame: " + e.Frame.System.String()
	case FlashMessage:
		return e.Message
	default:
		return "unknown event"
	}
}

// Queue is a bounded FIFO of simulation events. It implements the
// simulation's notifier interface. When full, the oldest events are
// dropped; the UI only ever wants the recent past. The queue is not
// goroutine safe; producers and the draining UI share the tick
// goroutine.
type Queue struct {
	buf      []Event
	capacity int
}

// NewQueue creates a queue holding at most capacity events.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 64
	}
	return &Queue{capacity: capacity}
}

func (q *Queue) push(e Event) {
	if len(q.buf) >= q.capacity {
		drop := len(q.buf) - q.capacity + 1
		q.buf = append(q.buf[:0], q.buf[drop:]...)
	}
	q.buf = append(q.buf, e)
}

// SelectionChanged buffers a selection change.
func (q *Queue) SelectionChanged(sel model.Selection) {
	q.push(Event{Kind: SelectionChanged, Selection: sel})
}

// TimeChanged buffers a clock change.
func (q *Queue) TimeChanged(jd float64) {
	q.push(Event{Kind: TimeChanged, JD: jd})
}

// FrameChanged buffers a reference frame change.
func (q *Queue) FrameChanged(f *core.Frame) {
	q.push(Event{Kind: FrameChanged, Frame: f})
}

// Flash buffers an advisory message.
func (q *Queue) Flash(message string) {
	q.push(Event{Kind: FlashMessage, Message: message})
}

// Len returns the number of buffered events.
func (q *Queue) Len() int { return len(q.buf) }

// Drain returns all buffered events in arrival order and empties the
// queue.
func (q *Queue) Drain() []Event {
	if len(q.buf) == 0 {
		return nil
	}
	out := make([]Event, len(q.buf))
	copy(out, q.buf)
	q.buf = q.buf[:0]
	return out
}
