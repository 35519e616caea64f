package rtc

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	lksdk "github.com/livekit/server-sdk-go"
	"github.com/pion/webrtc/v3"
	"github.com/pion/webrtc/v3/pkg/media"
	"gopkg.in/hraban/opus.v2"
)

// samplesPerFrame is one 20ms Opus frame at the room rate.
const samplesPerFrame = RoomSampleRate / 1000 * frameDurationMillis

// Playback publishes the engine's 24 kHz speech output into the room as a
// 48 kHz Opus voice track.
type Playback struct {
	track   *lksdk.LocalSampleTrack
	pub     *lksdk.LocalTrackPublication
	encoder *opus.Encoder
	logger  *slog.Logger

	mu      sync.Mutex
	pending []byte // partial frame awaiting enough samples
	closed  bool
}

// NewPlayback creates the agent's voice track and publishes it to the room.
func NewPlayback(room *lksdk.Room, logger *slog.Logger) (*Playback, error) {
	if room == nil {
		return nil, fmt.Errorf("room is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	encoder, err := opus.NewEncoder(RoomSampleRate, channels, opus.AppVoIP)
	if err != nil {
		return nil, fmt.Errorf("failed to create opus encoder: %w", err)
	}

	track, err := lksdk.NewLocalSampleTrack(webrtc.RTPCodecCapability{
		MimeType:  webrtc.MimeTypeOpus,
		ClockRate: RoomSampleRate,
		Channels:  channels,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create voice track: %w", err)
	}

	pub, err := room.LocalParticipant.PublishTrack(track, &lksdk.TrackPublicationOptions{
		Name: "interviewer-voice",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to publish voice track: %w", err)
	}

	logger.Info("Published interviewer voice track", slog.String("track_sid", pub.SID()))

	return &Playback{
		track:   track,
		pub:     pub,
		encoder: encoder,
		logger:  logger,
	}, nil
}

// Write queues 24 kHz mono PCM16 speech for playout. Data is upsampled to
// the room rate, split into 20ms frames and Opus-encoded; a trailing partial
// frame is held until the next write.
func (p *Playback) Write(pcm []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return fmt.Errorf("playback is closed")
	}

	p.pending = append(p.pending, Resample(pcm, EngineOutputRate, RoomSampleRate)...)

	frameBytes := samplesPerFrame * bytesPerSample
	encoded := make([]byte, 1500)

	for len(p.pending) >= frameBytes {
		frame := bytesToInt16(p.pending[:frameBytes])
		p.pending = p.pending[frameBytes:]

		n, err := p.encoder.Encode(frame, encoded)
		if err != nil {
			return fmt.Errorf("failed to encode voice frame: %w", err)
		}

		sample := media.Sample{
			Data:     append([]byte(nil), encoded[:n]...),
			Duration: frameDurationMillis * time.Millisecond,
		}
		if err := p.track.WriteSample(sample, nil); err != nil {
			return fmt.Errorf("failed to write voice frame: %w", err)
		}
	}
	return nil
}

// Close drops any partial frame and stops accepting writes.
func (p *Playback) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.pending = nil
}
