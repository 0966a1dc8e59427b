// ABOUTME: Audio output interface definition
// ABOUTME: Common interface for audio playback backends and shared volume handling
package output

import (
	"fmt"
	"sync/atomic"

	"github.com/Resonate-Protocol/smd-go/pkg/audio"
)

// Output represents an audio output device
type Output interface {
	// Open initializes the output device
	Open(sampleRate, channels int) error

	// Write outputs interleaved 24-bit samples (blocks until queued)
	Write(samples []int32) error

	// SetVolume sets the volume (0-100)
	SetVolume(volume int)

	// SetMuted sets mute state
	SetMuted(muted bool)

	// Close releases output resources
	Close() error
}

// New creates the named backend: "oto" (16-bit) or "malgo"
func New(backend string, bitDepth int) (Output, error) {
	switch backend {
	case "", "oto":
		return NewOto(), nil
	case "malgo":
		return NewMalgo(bitDepth), nil
	default:
		return nil, fmt.Errorf("unknown output backend: %s", backend)
	}
}

// gain holds volume and mute state shared between the caller and the
// playback path
type gain struct {
	volume atomic.Int32
	muted  atomic.Bool
}

func newGain() *gain {
	g := &gain{}
	g.volume.Store(100)
	return g
}

// SetVolume sets the volume (0-100)
func (g *gain) SetVolume(volume int) {
	g.volume.Store(int32(clampVolume(volume)))
}

// SetMuted sets mute state
func (g *gain) SetMuted(muted bool) {
	g.muted.Store(muted)
}

// GetVolume returns current volume
func (g *gain) GetVolume() int {
	return int(g.volume.Load())
}

// IsMuted returns mute state
func (g *gain) IsMuted() bool {
	return g.muted.Load()
}

func (g *gain) apply(samples []int32) []int32 {
	return applyVolume(samples, g.GetVolume(), g.IsMuted())
}

func clampVolume(volume int) int {
	if volume < 0 {
		return 0
	}
	if volume > 100 {
		return 100
	}
	return volume
}

// applyVolume applies volume and mute to samples with clipping protection
func applyVolume(samples []int32, volume int, muted bool) []int32 {
	multiplier := getVolumeMultiplier(volume, muted)

	result := make([]int32, len(samples))
	for i, sample := range samples {
		scaled := int64(float64(sample) * multiplier)

		// Clamp to 24-bit range to prevent overflow
		if scaled > audio.Max24Bit {
			scaled = audio.Max24Bit
		} else if scaled < audio.Min24Bit {
			scaled = audio.Min24Bit
		}

		result[i] = int32(scaled)
	}

	return result
}

// getVolumeMultiplier calculates volume multiplier
func getVolumeMultiplier(volume int, muted bool) float64 {
	if muted {
		return 0.0
	}
	return float64(volume) / 100.0
}
