package rtc

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/pion/webrtc/v3"
	"gopkg.in/hraban/opus.v2"
)

// MicStream decodes a subscribed microphone track into 16 kHz mono PCM16
// chunks for the realtime engine.
type MicStream struct {
	track     *webrtc.TrackRemote
	decoder   *opus.Decoder
	frames    chan []byte
	done      chan struct{}
	closeOnce sync.Once
	logger    *slog.Logger
}

// NewMicStream starts decoding the given remote track. The returned stream
// runs until the track ends or Close is called.
func NewMicStream(track *webrtc.TrackRemote, logger *slog.Logger) (*MicStream, error) {
	if track == nil {
		return nil, fmt.Errorf("track is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	decoder, err := opus.NewDecoder(RoomSampleRate, channels)
	if err != nil {
		return nil, fmt.Errorf("failed to create opus decoder: %w", err)
	}

	m := &MicStream{
		track:   track,
		decoder: decoder,
		frames:  make(chan []byte, 64),
		done:    make(chan struct{}),
		logger:  logger,
	}
	go m.run()
	return m, nil
}

// Frames returns the channel of decoded 16 kHz PCM16 chunks. It is closed
// when the track ends.
func (m *MicStream) Frames() <-chan []byte {
	return m.frames
}

// Close stops the stream. It is safe to call from multiple goroutines.
func (m *MicStream) Close() {
	m.closeOnce.Do(func() { close(m.done) })
}

func (m *MicStream) run() {
	defer close(m.frames)

	// Up to 120ms of 48kHz mono per opus packet.
	pcmBuf := make([]int16, 5760)

	for {
		select {
		case <-m.done:
			return
		default:
		}

		pkt, _, err := m.track.ReadRTP()
		if err != nil {
			if err != io.EOF {
				m.logger.Warn("Failed to read microphone packet", slog.String("error", err.Error()))
			}
			return
		}
		if len(pkt.Payload) == 0 {
			continue
		}

		n, err := m.decoder.Decode(pkt.Payload, pcmBuf)
		if err != nil {
			m.logger.Warn("Failed to decode opus frame", slog.String("error", err.Error()))
			continue
		}
		if n == 0 {
			continue
		}

		chunk := Resample(int16ToBytes(pcmBuf[:n]), RoomSampleRate, EngineInputRate)

		select {
		case m.frames <- chunk:
		case <-m.done:
			return
		default:
			// Engine is falling behind; dropping is better than stalling
			// the RTP read loop.
			m.logger.Warn("Microphone frame dropped, engine backlogged")
		}
	}
}
