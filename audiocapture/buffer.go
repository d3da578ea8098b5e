// Package audiocapture records microphone audio into WAV files.
//
// Capture runs at 16 kHz mono signed 16-bit PCM, the format the speech
// backend expects. Incoming device callbacks append fixed-size chunks to
// a Buffer; stopping drains the buffer and writes a single waveform file.
package audiocapture

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	// SampleRate is the capture sample rate in Hz.
	SampleRate = 16000
	// Channels is the number of capture channels (mono).
	Channels = 1
	// BitDepth is the PCM sample width in bits.
	BitDepth = 16
)

// ErrNoAudio is returned when a capture produced no samples, for example
// when the toggle was flipped off before any audio arrived.
var ErrNoAudio = errors.New("no audio captured")

// ErrRunning is returned when starting a recorder that is already running.
var ErrRunning = errors.New("recorder already running")

// Buffer accumulates PCM chunks from the capture callback.
// Safe for concurrent use; the device callback appends while the
// application thread inspects or drains it.
type Buffer struct {
	mu     sync.Mutex
	chunks [][]byte
	size   int
}

// Append copies a chunk of S16LE PCM bytes into the buffer.
func (b *Buffer) Append(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	cp := make([]byte, len(chunk))
	copy(cp, chunk)

	b.mu.Lock()
	b.chunks = append(b.chunks, cp)
	b.size += len(cp)
	b.mu.Unlock()
}

// Len returns the total number of buffered bytes.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// Reset discards all buffered audio.
func (b *Buffer) Reset() {
	b.mu.Lock()
	b.chunks = nil
	b.size = 0
	b.mu.Unlock()
}

// WriteWAV concatenates the buffered chunks and writes them as a
// 16 kHz mono WAV file in dir (os.TempDir when empty). It returns the
// file path, or ErrNoAudio without creating a file when the buffer is
// empty. The caller owns the file and is expected to remove it.
func (b *Buffer) WriteWAV(dir string) (string, error) {
	b.mu.Lock()
	chunks := b.chunks
	size := b.size
	b.mu.Unlock()

	if size == 0 {
		return "", ErrNoAudio
	}

	pcm := make([]byte, 0, size)
	for _, c := range chunks {
		pcm = append(pcm, c...)
	}

	f, err := os.CreateTemp(dir, "golem-*.wav")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	if err := encodeWAV(f, pcm); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("encode wav: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close wav file: %w", err)
	}
	return f.Name(), nil
}

// encodeWAV writes S16LE PCM bytes as a WAV stream.
func encodeWAV(f *os.File, pcm []byte) error {
	ints := make([]int, len(pcm)/2)
	for i := 0; i+1 < len(pcm); i += 2 {
		ints[i/2] = int(int16(binary.LittleEndian.Uint16(pcm[i : i+2])))
	}

	buf := &audio.IntBuffer{
		Data:           ints,
		Format:         &audio.Format{NumChannels: Channels, SampleRate: SampleRate},
		SourceBitDepth: BitDepth,
	}

	enc := wav.NewEncoder(f, SampleRate, BitDepth, Channels, 1)
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write samples: %w", err)
	}
	return enc.Close()
}
