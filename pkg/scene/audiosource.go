package scene

import (
	"errors"

	"glscene/pkg/audio"

	"github.com/go-gl/mathgl/mgl32"
)

// AudioPlayer is the part of the audio engine a scene drives. *audio.Mixer
// and *audio.Engine implement it.
type AudioPlayer interface {
	Play(s *audio.Sound)
	Stop(id string)
	SetGain(id string, volume, pan float32) bool
}

// AudioSource plays a sound positioned at its node. Gain falls off with the
// distance to the listener and pan follows the listener's right axis.
type AudioSource struct {
	BaseBehaviour

	// Listener is usually the camera's Transform. Without one the sound
	// plays centred at Volume.
	Listener *Transform
	Volume   float32
	// Rolloff is the distance at which the gain has halved.
	Rolloff float32
	// Autoplay starts the sound in Prepare.
	Autoplay bool

	player  AudioPlayer
	sound   *audio.Sound
	playing bool
	gain    float32
	pan     float32
}

// NewAudioSource returns a constructor for a source playing sound on player.
func NewAudioSource(player AudioPlayer, sound *audio.Sound) func(*Node) (*AudioSource, error) {
	return func(n *Node) (*AudioSource, error) {
		if player == nil || sound == nil {
			return nil, errors.New("audio source needs a player and a sound")
		}
		return &AudioSource{
			BaseBehaviour: NewBaseBehaviour(n, sound.ID, nil),
			Volume:        1,
			Rolloff:       5,
			Autoplay:      true,
			player:        player,
			sound:         sound,
		}, nil
	}
}

func (a *AudioSource) Prepare() error {
	if a.Autoplay && !a.playing {
		a.Play()
	}
	return nil
}

func (a *AudioSource) Play() {
	a.player.Play(a.sound)
	a.playing = true
	a.refresh()
}

func (a *AudioSource) Stop() {
	a.player.Stop(a.sound.ID)
	a.playing = false
}

func (a *AudioSource) Playing() bool { return a.playing }

// Gain returns the last volume and pan sent to the player.
func (a *AudioSource) Gain() (volume, pan float32) { return a.gain, a.pan }

func (a *AudioSource) Update() { a.refresh() }

// UpdatePerFrame follows the listener, which moves without dirtying this
// node.
func (a *AudioSource) UpdatePerFrame(float32) { a.refresh() }

func (a *AudioSource) refresh() {
	a.gain, a.pan = a.Volume, 0
	t := a.transform()
	if a.Listener != nil && t != nil {
		rel := a.Listener.GlobalMatrix().Inv().Mul4x1(t.GlobalPosition().Vec4(1)).Vec3()
		dist := rel.Len()
		a.gain = a.Volume / (1 + dist/max(a.Rolloff, 1e-3))
		if dist > 1e-6 {
			a.pan = mgl32.Clamp(rel.X()/dist, -1, 1)
		}
	}
	if a.playing && !a.player.SetGain(a.sound.ID, a.gain, a.pan) {
		// the mixer dropped a finished sound
		a.playing = false
	}
}

func (a *AudioSource) Destroy() {
	if a.playing {
		a.Stop()
	}
	a.BaseBehaviour.Destroy()
}
