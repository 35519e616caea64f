package room

import (
	"time"

	"github.com/pion/webrtc/v3"
)

// EventType represents the type of room event.
type EventType string

const (
	// EventParticipantConnected is fired when a participant joins the room
	EventParticipantConnected EventType = "participant_connected"

	// EventParticipantDisconnected is fired when a participant leaves the room
	EventParticipantDisconnected EventType = "participant_disconnected"

	// EventTrackSubscribed is fired when a remote track is subscribed
	EventTrackSubscribed EventType = "track_subscribed"

	// EventDisconnected is fired when the room connection drops
	EventDisconnected EventType = "disconnected"
)

// Event represents a room event with associated data.
type Event struct {
	// Type of the event
	Type EventType

	// Timestamp when the event occurred
	Timestamp time.Time

	// Identity of the participant associated with the event (if applicable)
	Identity string

	// Metadata of the participant at event time (if applicable)
	Metadata string

	// Track carries the subscribed remote track for track events
	Track *webrtc.TrackRemote
}

// NewEvent creates a new event with the current timestamp.
func NewEvent(eventType EventType) *Event {
	return &Event{
		Type:      eventType,
		Timestamp: time.Now(),
	}
}

// WithParticipant adds participant identity and metadata to the event.
func (e *Event) WithParticipant(identity, metadata string) *Event {
	e.Identity = identity
	e.Metadata = metadata
	return e
}

// WithTrack adds the remote track to the event.
func (e *Event) WithTrack(track *webrtc.TrackRemote) *Event {
	e.Track = track
	return e
}
