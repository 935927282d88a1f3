//go:build !tinygo

package hal

import (
	"fmt"
	"os"
	"sync"

	"tinygo.org/x/drivers"
)

// HostConfig selects the host backends.
type HostConfig struct {
	// I2CBus names a real Linux I2C bus ("1", "/dev/i2c-1"). Empty runs the
	// simulated sensors.
	I2CBus string
}

type hostHAL struct {
	logger *hostLogger
	fb     *hostFramebuffer
	bl     *hostBacklight
	t      *hostTime
	bus    drivers.I2C
}

// New returns a host HAL with simulated sensors.
func New() HAL {
	h, _ := NewHost(HostConfig{})
	return h
}

// NewHost returns a host HAL implementation.
func NewHost(cfg HostConfig) (HAL, error) {
	logger := &hostLogger{w: os.Stdout}

	var bus drivers.I2C
	if cfg.I2CBus != "" {
		b, err := OpenI2C(cfg.I2CBus)
		if err != nil {
			return nil, err
		}
		bus = b
		logger.WriteLineString(fmt.Sprintf("hal: i2c bus %s", b))
	} else {
		bus = newSimBus()
		logger.WriteLineString("hal: simulated sensors")
	}

	return &hostHAL{
		logger: logger,
		fb:     newHostFramebuffer(ScreenWidth, ScreenHeight),
		bl:     &hostBacklight{logger: logger},
		t:      newHostTime(),
		bus:    bus,
	}, nil
}

func (h *hostHAL) Logger() Logger       { return h.logger }
func (h *hostHAL) Display() Display     { return hostDisplay{fb: h.fb} }
func (h *hostHAL) Backlight() Backlight { return h.bl }
func (h *hostHAL) Time() Time           { return h.t }
func (h *hostHAL) I2C() drivers.I2C     { return h.bus }

type hostDisplay struct {
	fb *hostFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }

type hostLogger struct {
	mu sync.Mutex
	w  *os.File
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}

type hostBacklight struct {
	mu     sync.Mutex
	on     bool
	logger *hostLogger
}

func (b *hostBacklight) Set(on bool) {
	b.mu.Lock()
	changed := b.on != on
	b.on = on
	b.mu.Unlock()
	if !changed {
		return
	}
	if on {
		b.logger.WriteLineString("backlight: on")
	} else {
		b.logger.WriteLineString("backlight: off")
	}
}

func (b *hostBacklight) On() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.on
}
