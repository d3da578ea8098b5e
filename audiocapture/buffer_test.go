package audiocapture

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
)

func TestWriteWAVEmptyBuffer(t *testing.T) {
	dir := t.TempDir()

	var b Buffer
	path, err := b.WriteWAV(dir)
	if !errors.Is(err, ErrNoAudio) {
		t.Fatalf("err = %v, want ErrNoAudio", err)
	}
	if path != "" {
		t.Errorf("path = %q, want empty", path)
	}

	// No file may be left behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("found %d files in output dir, want 0", len(entries))
	}
}

func TestWriteWAVRoundTrip(t *testing.T) {
	// Two chunks of S16LE samples: a short ramp.
	samples := []int16{0, 100, -100, 200, -200, 300, -300, 32767, -32768, 0}
	half := len(samples) / 2

	var b Buffer
	b.Append(pcmBytes(samples[:half]))
	b.Append(pcmBytes(samples[half:]))

	if got, want := b.Len(), len(samples)*2; got != want {
		t.Fatalf("Len = %d, want %d", got, want)
	}

	path, err := b.WriteWAV(t.TempDir())
	if err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}
	defer os.Remove(path)

	if filepath.Ext(path) != ".wav" {
		t.Errorf("path = %q, want .wav suffix", path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatal("decoder rejects written file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if buf.Format.SampleRate != SampleRate {
		t.Errorf("sample rate = %d, want %d", buf.Format.SampleRate, SampleRate)
	}
	if buf.Format.NumChannels != Channels {
		t.Errorf("channels = %d, want %d", buf.Format.NumChannels, Channels)
	}
	if len(buf.Data) != len(samples) {
		t.Fatalf("decoded %d samples, want %d", len(buf.Data), len(samples))
	}
	for i, want := range samples {
		if buf.Data[i] != int(want) {
			t.Fatalf("sample %d = %d, want %d", i, buf.Data[i], want)
		}
	}
}

func TestBufferReset(t *testing.T) {
	var b Buffer
	b.Append([]byte{1, 2, 3, 4})
	b.Reset()

	if b.Len() != 0 {
		t.Errorf("Len after Reset = %d, want 0", b.Len())
	}
	if _, err := b.WriteWAV(t.TempDir()); !errors.Is(err, ErrNoAudio) {
		t.Errorf("err after Reset = %v, want ErrNoAudio", err)
	}
}

func TestAppendCopiesChunk(t *testing.T) {
	chunk := []byte{1, 0, 2, 0}
	var b Buffer
	b.Append(chunk)

	// Mutating the caller's slice must not affect buffered data.
	chunk[0] = 0xFF

	path, err := b.WriteWAV(t.TempDir())
	if err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}
	defer os.Remove(path)

	f, _ := os.Open(path)
	defer f.Close()
	buf, err := wav.NewDecoder(f).FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if buf.Data[0] != 1 {
		t.Errorf("first sample = %d, want 1", buf.Data[0])
	}
}

func pcmBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}
