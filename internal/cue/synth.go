// Package cue procedurally generates the short collision sounds and
// schedules their playback. Synthesis is stateless and pure; playback
// is fire-and-forget and decorative, never blocking the frame path.
package cue

import "math"

// Buffer is mono float64 samples at unity gain.
type Buffer []float64

// Pitch and envelope parameters. Higher collision velocity maps to a
// higher frequency with the same decay envelope.
const (
	baseFreq     = 220.0  // Hz at zero velocity
	freqPerVel   = 2.0    // Hz per px/s of impact speed
	maxFreq      = 1800.0 // Hz ceiling
	cueSeconds   = 0.12
	decayRate    = 6.0   // exponent of the decay envelope
	fullAmpAtVel = 900.0 // px/s at which amplitude saturates
	minAmp       = 0.12  // soft taps stay audible
)

// Frequency maps a collision velocity (px/s) to the cue pitch in Hz.
func Frequency(velocity float64) float64 {
	f := baseFreq + freqPerVel*math.Abs(velocity)
	if f > maxFreq {
		f = maxFreq
	}
	return f
}

// amplitude maps velocity to peak amplitude in [minAmp, 1].
func amplitude(velocity float64) float64 {
	a := math.Abs(velocity) / fullAmpAtVel
	if a > 1 {
		a = 1
	}
	if a < minAmp {
		a = minAmp
	}
	return a
}

// Synthesize produces the cue buffer for one collision. Same velocity
// always produces the same buffer.
func Synthesize(velocity float64, sampleRate int) Buffer {
	n := int(cueSeconds * float64(sampleRate))
	buf := make(Buffer, n)

	freq := Frequency(velocity)
	amp := amplitude(velocity)
	phaseInc := freq / float64(sampleRate)

	phase := 0.0
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n)
		env := math.Exp(-decayRate * t)
		buf[i] = amp * env * math.Sin(2*math.Pi*phase)

		phase += phaseInc
		if phase >= 1.0 {
			phase -= 1.0
		}
	}
	return buf
}
