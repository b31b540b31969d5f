// Package audio plays procedural sounds through PortAudio. The mixing lives in
// Mixer so it can run without a device.
package audio

import (
	"sort"
	"sync"

	"glscene/internal/util"
)

const (
	SampleRate      = 44100
	FramesPerBuffer = 1024
	NumChannels     = 2
)

// Sound is a mono sample buffer with playback state.
type Sound struct {
	ID      string
	Samples []float32
	Loop    bool

	position int
	volume   float32
	pan      float32
	playing  bool
}

// NewSound wraps samples at full volume, centred.
func NewSound(id string, samples []float32, loop bool) *Sound {
	return &Sound{ID: id, Samples: samples, Loop: loop, volume: 1}
}

// Mixer sums playing sounds into interleaved stereo frames. It is safe for
// concurrent use; Mix runs on the audio callback thread.
type Mixer struct {
	mu     sync.Mutex
	volume float32
	sounds map[string]*Sound
}

// NewMixer returns a mixer with the given master volume.
func NewMixer(volume float32) *Mixer {
	return &Mixer{volume: volume, sounds: make(map[string]*Sound)}
}

// Play starts s from the beginning, replacing a sound with the same id.
func (m *Mixer) Play(s *Sound) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.position = 0
	s.playing = true
	m.sounds[s.ID] = s
}

// Stop removes the sound with id.
func (m *Mixer) Stop(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sounds[id]; ok {
		s.playing = false
		delete(m.sounds, id)
	}
}

// SetGain sets the volume and pan of a playing sound. Pan runs from -1 (left)
// to 1 (right).
func (m *Mixer) SetGain(id string, volume, pan float32) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sounds[id]
	if !ok {
		return false
	}
	s.volume = volume
	s.pan = util.Clamp(pan, -1, 1)
	return true
}

// Gain returns the volume and pan of a playing sound.
func (m *Mixer) Gain(id string) (volume, pan float32, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sounds[id]
	if !ok {
		return 0, 0, false
	}
	return s.volume, s.pan, true
}

// SetVolume sets the master volume.
func (m *Mixer) SetVolume(v float32) {
	m.mu.Lock()
	m.volume = v
	m.mu.Unlock()
}

// Playing returns the ids of the sounds currently playing, sorted.
func (m *Mixer) Playing() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.sounds))
	for id := range m.sounds {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Mix fills out with interleaved stereo frames. Finished sounds that do not
// loop are dropped.
func (m *Mixer) Mix(out []float32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	clear(out)
	for id, s := range m.sounds {
		if !s.playing || len(s.Samples) == 0 {
			delete(m.sounds, id)
			continue
		}
		for i := 0; i+1 < len(out); i += NumChannels {
			if s.position >= len(s.Samples) {
				if !s.Loop {
					s.playing = false
					delete(m.sounds, id)
					break
				}
				s.position = 0
			}
			sample := s.Samples[s.position] * s.volume * m.volume
			out[i] += sample * (1 - s.pan) / 2
			out[i+1] += sample * (1 + s.pan) / 2
			s.position++
		}
	}

	for i, v := range out {
		out[i] = util.Clamp(v, -1, 1)
	}
}
