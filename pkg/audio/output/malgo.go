// ABOUTME: Malgo-based audio output implementation with 24-bit support
// ABOUTME: Uses miniaudio library via malgo for callback-driven playback
package output

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Resonate-Protocol/smd-go/pkg/audio"
	"github.com/gen2brain/malgo"
	"github.com/rs/zerolog/log"
)

// Malgo output implementation using malgo/miniaudio library
type Malgo struct {
	*gain

	ctx        context.Context
	cancel     context.CancelFunc
	malgoCtx   *malgo.AllocatedContext
	device     *malgo.Device
	sampleRate int
	channels   int
	bitDepth   int
	ready      bool

	// Ring buffer for callback-based playback
	ringBuffer *RingBuffer
	mu         sync.Mutex
}

// NewMalgo creates a new Malgo output producing bitDepth samples
func NewMalgo(bitDepth int) Output {
	ctx, cancel := context.WithCancel(context.Background())

	return &Malgo{
		gain:     newGain(),
		ctx:      ctx,
		cancel:   cancel,
		bitDepth: bitDepth,
	}
}

// Open initializes the output device
func (m *Malgo) Open(sampleRate, channels int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device != nil && m.sampleRate == sampleRate && m.channels == channels {
		return nil
	}

	if m.device != nil {
		log.Info().
			Int("from_rate", m.sampleRate).Int("from_channels", m.channels).
			Int("to_rate", sampleRate).Int("to_channels", channels).
			Msg("format change, reinitializing device")
		m.closeDevice()
	}

	format, err := malgoFormat(m.bitDepth)
	if err != nil {
		return err
	}

	// Create malgo context if needed
	if m.malgoCtx == nil {
		ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
		if err != nil {
			return fmt.Errorf("failed to initialize malgo context: %w", err)
		}
		m.malgoCtx = ctx
	}

	// Create ring buffer (500ms capacity)
	bufferSamples := (sampleRate * channels * 500) / 1000
	m.ringBuffer = NewRingBuffer(bufferSamples)

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = format
	deviceConfig.Playback.Channels = uint32(channels)
	deviceConfig.SampleRate = uint32(sampleRate)
	deviceConfig.Alsa.NoMMap = 1

	onSamples := func(pOutputSample, pInputSamples []byte, frameCount uint32) {
		m.dataCallback(pOutputSample, frameCount)
	}

	device, err := malgo.InitDevice(m.malgoCtx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: onSamples,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize playback device: %w", err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("failed to start device: %w", err)
	}

	m.device = device
	m.sampleRate = sampleRate
	m.channels = channels
	m.ready = true

	log.Info().
		Int("sample_rate", sampleRate).
		Int("channels", channels).
		Str("format", formatName(format)).
		Msg("malgo output initialized")

	return nil
}

// Write queues audio samples for playback, waiting while the ring is full
func (m *Malgo) Write(samples []int32) error {
	if !m.ready {
		return fmt.Errorf("output not initialized")
	}

	volumedSamples := m.apply(samples)

	written := 0
	for written < len(volumedSamples) {
		n := m.ringBuffer.Write(volumedSamples[written:])
		written += n
		if n > 0 {
			continue
		}

		select {
		case <-m.ctx.Done():
			return fmt.Errorf("output closed: %w", m.ctx.Err())
		case <-time.After(5 * time.Millisecond):
		}
	}

	return nil
}

// dataCallback is called by malgo to fill the audio output buffer
func (m *Malgo) dataCallback(pOutput []byte, frameCount uint32) {
	samples := make([]int32, int(frameCount)*m.channels)
	m.ringBuffer.Read(samples)
	packSamples(pOutput, samples, m.bitDepth)
}

// packSamples converts 24-bit samples into the device byte layout
func packSamples(output []byte, samples []int32, bitDepth int) {
	switch bitDepth {
	case 16:
		for i, sample := range samples {
			sample16 := audio.SampleToInt16(sample)
			output[i*2] = byte(sample16)
			output[i*2+1] = byte(sample16 >> 8)
		}
	case 24:
		for i, sample := range samples {
			b := audio.SampleTo24Bit(sample)
			copy(output[i*3:], b[:])
		}
	case 32:
		for i, sample := range samples {
			// Shift 24-bit value to upper bits of 32-bit container
			sample32 := sample << 8
			output[i*4] = byte(sample32)
			output[i*4+1] = byte(sample32 >> 8)
			output[i*4+2] = byte(sample32 >> 16)
			output[i*4+3] = byte(sample32 >> 24)
		}
	}
}

// Close releases output resources
func (m *Malgo) Close() error {
	m.cancel()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.closeDevice()

	if m.malgoCtx != nil {
		if err := m.malgoCtx.Uninit(); err != nil {
			log.Warn().Err(err).Msg("malgo context uninit error")
		}
		m.malgoCtx.Free()
		m.malgoCtx = nil
	}
	return nil
}

// closeDevice stops and uninitializes the device (must hold m.mu)
func (m *Malgo) closeDevice() {
	if m.device != nil {
		if err := m.device.Stop(); err != nil {
			log.Warn().Err(err).Msg("device stop error")
		}
		m.device.Uninit()
		m.device = nil
		m.ready = false
	}
}

// malgoFormat maps a bit depth to the device sample format
func malgoFormat(bitDepth int) (malgo.FormatType, error) {
	switch bitDepth {
	case 16:
		return malgo.FormatS16, nil
	case 24:
		return malgo.FormatS24, nil
	case 32:
		return malgo.FormatS32, nil
	default:
		return malgo.FormatUnknown, fmt.Errorf("unsupported bit depth: %d (supported: 16, 24, 32)", bitDepth)
	}
}

// formatName returns human-readable format name
func formatName(format malgo.FormatType) string {
	switch format {
	case malgo.FormatS16:
		return "S16"
	case malgo.FormatS24:
		return "S24"
	case malgo.FormatS32:
		return "S32"
	default:
		return fmt.Sprintf("Unknown(%d)", format)
	}
}
