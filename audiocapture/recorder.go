package audiocapture

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gen2brain/malgo"
)

// Recorder captures microphone audio through the default input device.
// At most one capture runs at a time; Start while running returns
// ErrRunning. Each Start begins a fresh Buffer, so a new capture
// implicitly discards the previous one's data.
type Recorder struct {
	mu      sync.Mutex
	ctx     *malgo.AllocatedContext
	device  *malgo.Device
	buf     *Buffer
	running bool
}

// NewRecorder initializes the audio backend.
func NewRecorder() (*Recorder, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		slog.Debug("audio backend", "message", message)
	})
	if err != nil {
		return nil, fmt.Errorf("init audio context: %w", err)
	}
	return &Recorder{ctx: ctx}, nil
}

// Start opens the default capture device and begins buffering chunks.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return ErrRunning
	}

	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = malgo.FormatS16
	cfg.Capture.Channels = Channels
	cfg.SampleRate = SampleRate
	cfg.Alsa.NoMMap = 1

	buf := &Buffer{}
	callbacks := malgo.DeviceCallbacks{
		Data: func(_, pSample []byte, _ uint32) {
			buf.Append(pSample)
		},
	}

	device, err := malgo.InitDevice(r.ctx.Context, cfg, callbacks)
	if err != nil {
		return fmt.Errorf("init capture device: %w", err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("start capture device: %w", err)
	}

	r.device = device
	r.buf = buf
	r.running = true
	return nil
}

// Stop tears down the capture device and returns the buffered audio.
// Stopping an idle recorder returns an empty buffer.
func (r *Recorder) Stop() *Buffer {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return &Buffer{}
	}

	// Stop before Uninit, or the backend may deliver into a dead buffer.
	if err := r.device.Stop(); err != nil {
		slog.Warn("stop capture device", "error", err)
	}
	r.device.Uninit()
	r.device = nil
	r.running = false

	buf := r.buf
	r.buf = nil
	return buf
}

// IsRecording reports whether a capture is in progress.
func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Close stops any capture and releases the audio backend.
func (r *Recorder) Close() {
	r.Stop()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ctx != nil {
		_ = r.ctx.Uninit()
		r.ctx.Free()
		r.ctx = nil
	}
}
