//go:build !tinygo

package hal

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"tinygo.org/x/drivers"
)

// ErrNoDevice is returned by the simulated bus for addresses with no chip.
var ErrNoDevice = errors.New("i2c: no device at address")

// Waveform returns the bus voltage (mV) and load current (mA) of a simulated
// port at time t since power-on.
type Waveform func(t time.Duration) (mv, ma float64)

// Simulated port loads, one per hub position.
var (
	// WaveSteady is a phone charging at about 820 mA.
	WaveSteady Waveform = func(t time.Duration) (float64, float64) {
		return 5080, 820 + 120*math.Sin(2*math.Pi*t.Seconds()/5)
	}
	// WaveEmpty is a port with nothing plugged in.
	WaveEmpty Waveform = func(time.Duration) (float64, float64) {
		return 0, 0
	}
	// WaveHotplug is a small device plugged in for 8 s, then pulled for 6 s.
	WaveHotplug Waveform = func(t time.Duration) (float64, float64) {
		if t%(14*time.Second) < 8*time.Second {
			return 5020, 15
		}
		return 400, 0
	}
	// WaveSawtooth ramps the load from 0 to 1600 mA every 12 s.
	WaveSawtooth Waveform = func(t time.Duration) (float64, float64) {
		const period = 12 * time.Second
		return 4950, 1600 * float64(t%period) / float64(period)
	}
)

type simChip struct {
	wave   Waveform
	config uint16
	cal    uint16
}

// simBus is an I2C bus populated with INA219-compatible register files.
type simBus struct {
	mu    sync.Mutex
	chips map[uint16]*simChip
	start time.Time
	now   func() time.Time
}

func newSimBus() *simBus {
	return newSimBusWithClock(time.Now)
}

func newSimBusWithClock(now func() time.Time) *simBus {
	b := &simBus{chips: make(map[uint16]*simChip), start: now(), now: now}
	b.Attach(0x40, WaveSteady)
	b.Attach(0x41, WaveEmpty)
	b.Attach(0x44, WaveHotplug)
	b.Attach(0x45, WaveSawtooth)
	return b
}

// Attach places a simulated chip at addr, replacing any chip already there.
// A nil waveform removes it.
func (b *simBus) Attach(addr uint16, w Waveform) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if w == nil {
		delete(b.chips, addr)
		return
	}
	b.chips[addr] = &simChip{wave: w, config: 0x399F}
}

func (b *simBus) String() string { return "sim" }

// Tx implements drivers.I2C. A one-byte write selects a register and the
// read returns it; a three-byte write stores a register.
func (b *simBus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, ok := b.chips[addr]
	if !ok {
		return fmt.Errorf("0x%02x: %w", addr, ErrNoDevice)
	}
	if len(w) == 0 {
		return nil
	}
	reg := w[0]
	if len(w) >= 3 {
		c.write(reg, uint16(w[1])<<8|uint16(w[2]))
	}
	if len(r) > 0 {
		v := c.read(reg, b.now().Sub(b.start))
		r[0] = byte(v >> 8)
		if len(r) > 1 {
			r[1] = byte(v)
		}
	}
	return nil
}

func (b *simBus) ReadRegister(addr uint8, reg uint8, buf []byte) error {
	return b.Tx(uint16(addr), []byte{reg}, buf)
}

func (b *simBus) WriteRegister(addr uint8, reg uint8, buf []byte) error {
	return b.Tx(uint16(addr), append([]byte{reg}, buf...), nil)
}

func (c *simChip) write(reg uint8, v uint16) {
	switch reg {
	case 0x00:
		if v&0x8000 != 0 {
			c.config = 0x399F
			c.cal = 0
			return
		}
		c.config = v
	case 0x05:
		c.cal = v
	}
}

func (c *simChip) read(reg uint8, t time.Duration) uint16 {
	if c.config&0x0007 == 0 {
		// Powered down: conversions stop.
		switch reg {
		case 0x01, 0x02, 0x03, 0x04:
			return 0
		}
	}

	mv, ma := c.wave(t)
	if mv < 0 {
		mv = 0
	}
	if ma < 0 {
		ma = 0
	}
	switch reg {
	case 0x00:
		return c.config
	case 0x01:
		// Shunt register in 10 µA steps of the hub's shunt scaling.
		return uint16(ma * 10)
	case 0x02:
		return uint16(mv/4)<<3 | 0x0002
	case 0x03:
		if c.cal == 0 {
			return 0
		}
		// 2 mW LSB with the 32 V / 2 A calibration.
		return uint16(mv * ma / 1000 / 2)
	case 0x04:
		if c.cal == 0 {
			return 0
		}
		return uint16(ma * 10)
	case 0x05:
		return c.cal
	}
	return 0
}

// SimulatedBus returns a bus with the four hub sensors attached.
func SimulatedBus() drivers.I2C { return newSimBus() }
