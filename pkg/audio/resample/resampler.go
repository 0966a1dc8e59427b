// ABOUTME: Simple linear resampler for converting audio sample rates
// ABOUTME: Converts planar float buffers using linear interpolation
package resample

import "github.com/Resonate-Protocol/smd-go/pkg/audio"

// Resampler performs linear interpolation to convert between sample rates
type Resampler struct {
	inputRate  int
	outputRate int
	ratio      float64
}

// New creates a new resampler
func New(inputRate, outputRate int) *Resampler {
	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		ratio:      float64(inputRate) / float64(outputRate),
	}
}

// Resample converts one channel. It writes at most len(output) frames and
// returns how many were written; the last input sample is held past the end.
func (r *Resampler) Resample(input, output []float32) int {
	if len(input) == 0 {
		return 0
	}
	last := len(input) - 1

	for i := range output {
		pos := float64(i) * r.ratio
		idx := int(pos)
		if idx > last {
			return i
		}
		if idx == last {
			output[i] = input[last]
			continue
		}

		// Linear interpolation
		frac := pos - float64(idx)
		output[i] = float32(float64(input[idx])*(1.0-frac) + float64(input[idx+1])*frac)
	}
	return len(output)
}

// OutputFrames calculates how many output frames inputFrames produce
func (r *Resampler) OutputFrames(inputFrames int) int {
	return int(int64(inputFrames) * int64(r.outputRate) / int64(r.inputRate))
}

// InputFrames calculates how many input frames are needed for outputFrames
func (r *Resampler) InputFrames(outputFrames int) int {
	return int(int64(outputFrames) * int64(r.inputRate) / int64(r.outputRate))
}

// Buffer returns a copy of in at the output rate
func (r *Resampler) Buffer(in *audio.Buffer) *audio.Buffer {
	format := in.Format
	format.SampleRate = r.outputRate
	out := audio.NewBuffer(format, r.OutputFrames(in.Frames()))
	for ch := range in.Samples {
		r.Resample(in.Samples[ch], out.Samples[ch])
	}
	return out
}
