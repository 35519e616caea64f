package rtc

import (
	"sync"
	"testing"

	"github.com/matryer/is"
)

func TestResample_Identity(t *testing.T) {
	is := is.New(t)

	pcm := int16ToBytes([]int16{1, 2, 3, 4})
	out := Resample(pcm, 48000, 48000)
	is.Equal(out, pcm) // same rate should pass through untouched
}

func TestResample_Downsample(t *testing.T) {
	is := is.New(t)

	// 6 samples at 48kHz -> 2 samples at 16kHz
	pcm := int16ToBytes([]int16{10, 20, 30, 40, 50, 60})
	out := bytesToInt16(Resample(pcm, 48000, 16000))

	is.Equal(len(out), 2)
	is.Equal(out[0], int16(10)) // every third sample survives
	is.Equal(out[1], int16(40))
}

func TestResample_Upsample(t *testing.T) {
	is := is.New(t)

	// 2 samples at 24kHz -> 4 samples at 48kHz
	pcm := int16ToBytes([]int16{100, 200})
	out := bytesToInt16(Resample(pcm, 24000, 48000))

	is.Equal(len(out), 4)
	is.Equal(out[0], int16(100))
	is.Equal(out[1], int16(100)) // repeated source samples
	is.Equal(out[2], int16(200))
	is.Equal(out[3], int16(200))
}

func TestMicStream_ConcurrentClose(t *testing.T) {
	m := &MicStream{
		frames: make(chan []byte),
		done:   make(chan struct{}),
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Close()
		}()
	}
	wg.Wait()

	select {
	case <-m.done:
	default:
		t.Error("stream should be closed")
	}
}

func TestInt16Roundtrip(t *testing.T) {
	is := is.New(t)

	samples := []int16{-32768, -1, 0, 1, 32767}
	is.Equal(bytesToInt16(int16ToBytes(samples)), samples)
}
