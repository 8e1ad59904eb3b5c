package models

import "time"

type EventType string

const (
	EventReset     EventType = "reset"     // a new run started, drop everything shown
	EventActive    EventType = "active"    // Role is about to speak
	EventReveal    EventType = "reveal"    // Message at Index joined the transcript
	EventTyping    EventType = "typing"    // Shown runes of the message at Index are visible
	EventFinished  EventType = "finished"  // playback complete, results unlocked
	EventFailed    EventType = "failed"    // synthesis failed, back to input
	EventSelection EventType = "selection" // role filter changed
)

// Event is pushed to every viewer of a session.
type Event struct {
	Type      EventType      `json:"type"`
	Role      Role           `json:"role,omitempty"`
	Index     int            `json:"index"`
	Message   *DebateMessage `json:"message,omitempty"`
	Shown     int            `json:"shown,omitempty"`
	Visible   bool           `json:"visible"` // passes the current role filter
	Text      string         `json:"text,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}
