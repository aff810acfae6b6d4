package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// ErrNoStreamURL is returned when a track has nothing to decode.
var ErrNoStreamURL = errors.New("track has no stream url")

// maxStderrBytes bounds how much ffmpeg diagnostic output is kept for error messages.
const maxStderrBytes = 4096

// PCMStream is a running decoder producing signed 16-bit little-endian stereo PCM at 48kHz.
type PCMStream interface {
	io.Reader

	// Wait blocks until the decoder exits on its own and reports how it ended.
	Wait() error

	// Close terminates the decoder and releases its resources.
	Close() error
}

// FFmpegSource decodes remote media into PCM using the ffmpeg binary.
type FFmpegSource struct {
	executable string
}

// NewFFmpegSource creates a source that runs the ffmpeg binary at executable.
// An empty executable uses "ffmpeg" from PATH.
func NewFFmpegSource(executable string) *FFmpegSource {
	if executable == "" {
		executable = "ffmpeg"
	}
	return &FFmpegSource{executable: executable}
}

// Open starts decoding url. Cancelling ctx kills the process.
func (s *FFmpegSource) Open(ctx context.Context, url string) (PCMStream, error) {
	if url == "" {
		return nil, ErrNoStreamURL
	}

	cmd := exec.CommandContext(ctx, s.executable, ffmpegArgs(url)...)

	stderr := &limitedBuffer{limit: maxStderrBytes}
	cmd.Stderr = stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe error: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	return &ffmpegStream{cmd: cmd, stdout: stdout, stderr: stderr}, nil
}

func ffmpegArgs(url string) []string {
	return []string{
		"-reconnect", "1",
		"-reconnect_streamed", "1",
		"-reconnect_delay_max", "5",
		"-i", url,
		"-vn",
		"-f", "s16le",
		"-ar", strconv.Itoa(sampleRate),
		"-ac", strconv.Itoa(channels),
		"-loglevel", "warning",
		"pipe:1",
	}
}

type ffmpegStream struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr *limitedBuffer

	waitOnce sync.Once
	waitErr  error
}

func (s *ffmpegStream) Read(p []byte) (int, error) {
	return s.stdout.Read(p)
}

func (s *ffmpegStream) Wait() error {
	s.waitOnce.Do(func() {
		err := s.cmd.Wait()
		if err != nil {
			if msg := strings.TrimSpace(s.stderr.String()); msg != "" {
				err = fmt.Errorf("ffmpeg: %w: %s", err, msg)
			} else {
				err = fmt.Errorf("ffmpeg: %w", err)
			}
		}
		s.waitErr = err
	})
	return s.waitErr
}

func (s *ffmpegStream) Close() error {
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	// The exit status of a killed process carries no information.
	_ = s.Wait()
	return nil
}

// limitedBuffer keeps the first limit bytes written to it and discards the rest.
type limitedBuffer struct {
	mu    sync.Mutex
	buf   bytes.Buffer
	limit int
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if room := b.limit - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}

func (b *limitedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
