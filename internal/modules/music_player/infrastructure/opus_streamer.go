package infrastructure

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"layeh.com/gopus"
)

const (
	sampleRate = 48000
	channels   = 2
	// frameSize is the number of samples per channel in one 20ms Opus frame.
	frameSize = 960
	// frameBytes is the size of one PCM frame: samples * channels * 2 bytes.
	frameBytes = frameSize * channels * 2

	frameDuration = 20 * time.Millisecond
)

// DefaultAudioBitrate is the Opus bitrate used when none is configured.
const DefaultAudioBitrate = 96000

type frameEncoder interface {
	Encode(pcm []int16, frameSize, maxDataBytes int) ([]byte, error)
}

// OpusStreamer encodes PCM into Opus frames for a Discord voice connection.
type OpusStreamer struct {
	bitrate    int
	newEncoder func(bitrate int) (frameEncoder, error)
}

// NewOpusStreamer creates a streamer encoding at the given bitrate in bits per second.
func NewOpusStreamer(bitrate int) *OpusStreamer {
	if bitrate <= 0 {
		bitrate = DefaultAudioBitrate
	}
	return &OpusStreamer{
		bitrate:    bitrate,
		newEncoder: newOpusEncoder,
	}
}

func newOpusEncoder(bitrate int) (frameEncoder, error) {
	encoder, err := gopus.NewEncoder(sampleRate, channels, gopus.Audio)
	if err != nil {
		return nil, err
	}
	encoder.SetBitrate(bitrate)
	return encoder, nil
}

// Stream reads PCM frames from src and sends the encoded frames to out until
// src is exhausted or stop is closed. While paused reports true no frames are read.
// Reaching the end of src, including a trailing partial frame, is not an error.
func (s *OpusStreamer) Stream(
	src io.Reader,
	out chan<- []byte,
	stop <-chan struct{},
	paused *atomic.Bool,
) error {
	encoder, err := s.newEncoder(s.bitrate)
	if err != nil {
		return fmt.Errorf("encoder error: %w", err)
	}

	pcmBuf := make([]byte, frameBytes)
	intBuf := make([]int16, frameSize*channels)

	for {
		select {
		case <-stop:
			return nil
		default:
		}

		if paused != nil && paused.Load() {
			select {
			case <-stop:
				return nil
			case <-time.After(frameDuration):
			}
			continue
		}

		if _, err := io.ReadFull(src, pcmBuf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			return fmt.Errorf("read error: %w", err)
		}

		pcmToInt16(intBuf, pcmBuf)

		opus, err := encoder.Encode(intBuf, frameSize, len(pcmBuf))
		if err != nil {
			return fmt.Errorf("encode error: %w", err)
		}

		select {
		case out <- opus:
		case <-stop:
			return nil
		}
	}
}

// pcmToInt16 decodes little-endian 16-bit samples from src into dst.
func pcmToInt16(dst []int16, src []byte) {
	for i := range dst {
		dst[i] = int16(binary.LittleEndian.Uint16(src[i*2 : i*2+2]))
	}
}
