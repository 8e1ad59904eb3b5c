package models

import (
	"sync"

	"github.com/google/uuid"
)

// Sender is the write side of a viewer connection.
type Sender interface {
	WriteJSON(v interface{}) error
}

const DefaultViewerBuffer = 256

// Viewer is one connection watching a session. Events are queued in the order
// they are produced and written by Pump, so producers never block on a slow
// connection.
type Viewer struct {
	Id   uuid.UUID `json:"viewerid"`
	Conn Sender    `json:"-"`

	out       chan Event
	done      chan struct{}
	closeOnce sync.Once
}

func NewViewer(conn Sender, buffer int) *Viewer {
	if buffer <= 0 {
		buffer = DefaultViewerBuffer
	}
	return &Viewer{
		Id:   uuid.New(),
		Conn: conn,
		out:  make(chan Event, buffer),
		done: make(chan struct{}),
	}
}

// Enqueue queues e without blocking. It reports false when the viewer is
// closed or too far behind.
func (v *Viewer) Enqueue(e Event) bool {
	select {
	case <-v.done:
		return false
	default:
	}
	select {
	case v.out <- e:
		return true
	default:
		return false
	}
}

// Pump writes queued events until Close is called or a write fails. Nothing
// is written once Close has returned, even if events are still queued.
func (v *Viewer) Pump() error {
	for {
		select {
		case <-v.done:
			return nil
		case e := <-v.out:
			// select picks at random when both are ready
			select {
			case <-v.done:
				return nil
			default:
			}
			if err := v.Conn.WriteJSON(e); err != nil {
				return err
			}
		}
	}
}

func (v *Viewer) Close() {
	v.closeOnce.Do(func() { close(v.done) })
}
