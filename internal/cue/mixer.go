package cue

import (
	"encoding/binary"

	"marble-derby/internal/config"
)

// PCMMixer renders cues into per-frame s16le stereo chunks for the
// export pipeline, so encoded video carries the collision sounds.
// Cues longer than one frame carry over into subsequent frames.
type PCMMixer struct {
	sampleRate    int
	channels      int
	fps           int
	volume        float64
	bytesPerFrame int

	active []*activeCue
}

type activeCue struct {
	data     Buffer
	position int
}

// NewPCMMixer creates a mixer producing exactly one chunk per frame.
func NewPCMMixer(cfg config.AudioConfig, fps int) *PCMMixer {
	channels := 2
	return &PCMMixer{
		sampleRate:    cfg.SampleRate,
		channels:      channels,
		fps:           fps,
		volume:        cfg.Volume,
		bytesPerFrame: (cfg.SampleRate / fps) * channels * 2,
	}
}

// BytesPerFrame is the fixed size of every generated chunk.
func (m *PCMMixer) BytesPerFrame() int { return m.bytesPerFrame }

// Queue synthesizes one cue and adds it to the active set.
func (m *PCMMixer) Queue(velocity float64) {
	m.active = append(m.active, &activeCue{data: Synthesize(velocity, m.sampleRate)})
}

// GenerateFrame mixes all active cues into one frame-sized chunk.
// Applies soft limiting at ±30000 to prevent harsh clipping when many
// cues land on the same frame.
func (m *PCMMixer) GenerateFrame() []byte {
	samplesPerFrame := m.sampleRate / m.fps
	mix := make([]int32, samplesPerFrame)

	alive := m.active[:0]
	for _, c := range m.active {
		remaining := len(c.data) - c.position
		if remaining <= 0 {
			continue
		}
		toRead := samplesPerFrame
		if toRead > remaining {
			toRead = remaining
		}
		for i := 0; i < toRead; i++ {
			mix[i] += int32(c.data[c.position+i] * m.volume * 28000)
		}
		c.position += toRead
		if c.position < len(c.data) {
			alive = append(alive, c)
		}
	}
	m.active = alive

	out := make([]byte, m.bytesPerFrame)
	for i := 0; i < samplesPerFrame; i++ {
		sample := mix[i]

		// Soft limiting: gradual compression above ±30000.
		if sample > 30000 {
			sample = 30000 + (sample-30000)/4
		} else if sample < -30000 {
			sample = -30000 + (sample+30000)/4
		}
		if sample > 32767 {
			sample = 32767
		} else if sample < -32768 {
			sample = -32768
		}

		// Same mono sample on both channels.
		for ch := 0; ch < m.channels; ch++ {
			binary.LittleEndian.PutUint16(out[(i*m.channels+ch)*2:], uint16(int16(sample)))
		}
	}
	return out
}
