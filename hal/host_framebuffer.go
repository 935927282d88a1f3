//go:build !tinygo

package hal

import "sync"

// hostFramebuffer keeps the last presented frame apart from the one being
// drawn, so the window never shows a half-rendered dashboard.
type hostFramebuffer struct {
	frameBuffer

	mu        sync.Mutex
	presented []byte
	frames    uint64
}

func newHostFramebuffer(width, height int) *hostFramebuffer {
	f := &hostFramebuffer{frameBuffer: newFrameBuffer(width, height)}
	f.presented = make([]byte, len(f.buf))
	return f
}

func (f *hostFramebuffer) ClearRGB(r, g, b uint8) { f.fill(r, g, b) }

func (f *hostFramebuffer) Present() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy(f.presented, f.buf)
	f.frames++
	return nil
}

func (f *hostFramebuffer) snapshotRGB565(dst []byte) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy(dst, f.presented)
	return f.frames
}
