// Package rtc bridges room audio and the realtime engine: Opus in the room,
// raw PCM16 on the engine side.
package rtc

// Sample rates at the two ends of the bridge. The room speaks 48 kHz Opus;
// the realtime engine consumes 16 kHz microphone audio and produces 24 kHz
// speech.
const (
	RoomSampleRate      = 48000
	EngineInputRate     = 16000
	EngineOutputRate    = 24000
	channels            = 1
	bytesPerSample      = 2
	frameDurationMillis = 20
)

// Resample converts 16-bit mono PCM between sample rates using
// nearest-sample selection. Good enough for speech; the providers apply
// their own filtering.
func Resample(pcm []byte, fromRate, toRate int) []byte {
	if fromRate == toRate {
		return pcm
	}

	samples := len(pcm) / bytesPerSample
	ratio := float64(toRate) / float64(fromRate)
	outSamples := int(float64(samples) * ratio)

	out := make([]byte, outSamples*bytesPerSample)
	for i := 0; i < outSamples; i++ {
		src := int(float64(i) / ratio)
		if src >= samples {
			src = samples - 1
		}
		copy(out[i*bytesPerSample:(i+1)*bytesPerSample], pcm[src*bytesPerSample:(src+1)*bytesPerSample])
	}
	return out
}

func int16ToBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*bytesPerSample)
	for i, s := range samples {
		out[i*2] = byte(s)
		out[i*2+1] = byte(s >> 8)
	}
	return out
}

func bytesToInt16(data []byte) []int16 {
	out := make([]int16, len(data)/bytesPerSample)
	for i := range out {
		out[i] = int16(data[i*2]) | int16(data[i*2+1])<<8
	}
	return out
}
