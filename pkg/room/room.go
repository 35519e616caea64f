// Package room wraps the LiveKit room connection for an interview job. It
// exposes the candidate's arrival, their microphone track, and disconnects
// as events the job runner can wait on.
package room

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	lksdk "github.com/livekit/server-sdk-go"
	"github.com/pion/webrtc/v3"
)

// Participant describes a remote participant the agent is interviewing.
type Participant struct {
	Identity string
	Metadata string
}

// Config contains configuration for connecting to a room.
type Config struct {
	// URL of the LiveKit server
	URL string

	// APIKey and APISecret authenticate the agent participant
	APIKey    string
	APISecret string

	// Name of the room to join
	Name string

	// Identity the agent joins as
	Identity string

	// Buffer size for the events channel
	EventBufferSize int
}

func (c Config) validate() error {
	if c.URL == "" {
		return fmt.Errorf("URL is required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("API key is required")
	}
	if c.APISecret == "" {
		return fmt.Errorf("API secret is required")
	}
	if c.Name == "" {
		return fmt.Errorf("room name is required")
	}
	if c.Identity == "" {
		return fmt.Errorf("identity is required")
	}
	return nil
}

// Room wraps the LiveKit room connection and provides event handling.
type Room struct {
	// Events channel for room events
	Events chan *Event

	room   *lksdk.Room
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger

	mu           sync.RWMutex
	connected    bool
	eventsClosed bool

	// First-arrival signals the job runner blocks on
	participantOnce sync.Once
	participantCh   chan Participant
	audioOnce       sync.Once
	audioCh         chan *webrtc.TrackRemote
}

// New creates a Room wrapper with the given configuration. Call Connect to
// establish the connection.
func New(ctx context.Context, config Config, logger *slog.Logger) (*Room, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	bufferSize := config.EventBufferSize
	if bufferSize == 0 {
		bufferSize = 100
	}

	roomCtx, cancel := context.WithCancel(ctx)

	return &Room{
		Events:        make(chan *Event, bufferSize),
		ctx:           roomCtx,
		cancel:        cancel,
		logger:        logger,
		participantCh: make(chan Participant, 1),
		audioCh:       make(chan *webrtc.TrackRemote, 1),
	}, nil
}

// Connect establishes the connection to the LiveKit room.
func (r *Room) Connect(config Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.connected {
		return fmt.Errorf("room is already connected")
	}

	callback := &lksdk.RoomCallback{
		OnParticipantConnected:    r.onParticipantConnected,
		OnParticipantDisconnected: r.onParticipantDisconnected,
		OnDisconnected:            r.onDisconnected,
		ParticipantCallback: lksdk.ParticipantCallback{
			OnTrackSubscribed: r.onTrackSubscribed,
		},
	}

	room, err := lksdk.ConnectToRoom(config.URL, lksdk.ConnectInfo{
		APIKey:              config.APIKey,
		APISecret:           config.APISecret,
		RoomName:            config.Name,
		ParticipantIdentity: config.Identity,
	}, callback)
	if err != nil {
		return fmt.Errorf("failed to connect to room: %w", err)
	}

	r.room = room
	r.connected = true

	r.logger.Info("Connected to LiveKit room",
		slog.String("room_name", config.Name),
		slog.String("identity", config.Identity))

	// The candidate may already be in the room when the agent joins.
	for _, p := range room.GetParticipants() {
		r.signalParticipant(p)
	}

	return nil
}

// WaitForParticipant blocks until a remote participant is present in the
// room or the context is done. It returns the first participant to arrive.
func (r *Room) WaitForParticipant(ctx context.Context) (Participant, error) {
	select {
	case p := <-r.participantCh:
		return p, nil
	case <-ctx.Done():
		return Participant{}, ctx.Err()
	case <-r.ctx.Done():
		return Participant{}, fmt.Errorf("room disconnected while waiting for participant")
	}
}

// WaitForAudioTrack blocks until a remote audio track is subscribed or the
// context is done.
func (r *Room) WaitForAudioTrack(ctx context.Context) (*webrtc.TrackRemote, error) {
	select {
	case track := <-r.audioCh:
		return track, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-r.ctx.Done():
		return nil, fmt.Errorf("room disconnected while waiting for audio track")
	}
}

// LKRoom returns the underlying LiveKit room for track publication.
func (r *Room) LKRoom() *lksdk.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.room
}

// IsConnected returns true if the room is currently connected.
func (r *Room) IsConnected() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.connected
}

// Disconnect closes the room connection and cleans up resources.
func (r *Room) Disconnect() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cancel()

	if r.connected {
		r.connected = false
		if r.room != nil {
			r.room.Disconnect()
		}
		r.logger.Info("Disconnected from LiveKit room")
	}

	if !r.eventsClosed {
		close(r.Events)
		r.eventsClosed = true
	}

	return nil
}

func (r *Room) signalParticipant(p *lksdk.RemoteParticipant) {
	r.participantOnce.Do(func() {
		r.participantCh <- Participant{
			Identity: p.Identity(),
			Metadata: p.Metadata(),
		}
	})
}

// Event handlers

func (r *Room) onParticipantConnected(participant *lksdk.RemoteParticipant) {
	r.signalParticipant(participant)

	event := NewEvent(EventParticipantConnected).
		WithParticipant(participant.Identity(), participant.Metadata())
	r.sendEvent(event)

	r.logger.Info("Participant connected",
		slog.String("identity", participant.Identity()))
}

func (r *Room) onParticipantDisconnected(participant *lksdk.RemoteParticipant) {
	event := NewEvent(EventParticipantDisconnected).
		WithParticipant(participant.Identity(), participant.Metadata())
	r.sendEvent(event)

	r.logger.Info("Participant disconnected",
		slog.String("identity", participant.Identity()))
}

func (r *Room) onTrackSubscribed(track *webrtc.TrackRemote, publication *lksdk.RemoteTrackPublication, participant *lksdk.RemoteParticipant) {
	if track.Kind() == webrtc.RTPCodecTypeAudio {
		r.audioOnce.Do(func() {
			r.audioCh <- track
		})
	}

	event := NewEvent(EventTrackSubscribed).
		WithParticipant(participant.Identity(), participant.Metadata()).
		WithTrack(track)
	r.sendEvent(event)

	r.logger.Info("Track subscribed",
		slog.String("participant", participant.Identity()),
		slog.String("track_sid", publication.SID()),
		slog.String("track_type", string(publication.Kind())))
}

func (r *Room) onDisconnected() {
	r.sendEvent(NewEvent(EventDisconnected))
	r.cancel()
}

// sendEvent sends an event to the Events channel if the room is still connected.
func (r *Room) sendEvent(event *Event) {
	r.mu.RLock()
	closed := r.eventsClosed
	r.mu.RUnlock()

	if closed {
		return
	}

	select {
	case r.Events <- event:
	case <-r.ctx.Done():
		return
	default:
		r.logger.Warn("Events channel is full, dropping event",
			slog.String("event_type", string(event.Type)))
	}
}
