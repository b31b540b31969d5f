package audio

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"

	"glscene/internal/logger"
)

// Engine feeds a Mixer to the default PortAudio output stream.
type Engine struct {
	*Mixer

	log    *logger.Logger
	stream *portaudio.Stream
	once   sync.Once
}

// Open initializes PortAudio and starts the default output stream.
func Open(volume float32, log *logger.Logger) (*Engine, error) {
	if log == nil {
		log = logger.Nop()
	}
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}

	e := &Engine{Mixer: NewMixer(volume), log: log}

	stream, err := portaudio.OpenDefaultStream(0, NumChannels, SampleRate, FramesPerBuffer, e.Mix)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to open audio stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to start audio stream: %w", err)
	}
	e.stream = stream
	log.Infof("audio: %d Hz, %d channels, %d frames per buffer", SampleRate, NumChannels, FramesPerBuffer)
	return e, nil
}

// Close stops the stream and terminates PortAudio.
func (e *Engine) Close() error {
	var err error
	e.once.Do(func() {
		if e.stream != nil {
			if serr := e.stream.Stop(); serr != nil {
				e.log.Warnf("audio: stop stream: %v", serr)
			}
			err = e.stream.Close()
		}
		if terr := portaudio.Terminate(); terr != nil && err == nil {
			err = terr
		}
	})
	return err
}
