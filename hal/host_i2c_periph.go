//go:build !tinygo

package hal

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

var hostInit struct {
	once sync.Once
	err  error
}

// PeriphBus adapts a periph.io I2C bus to the tinygo drivers bus interface,
// so the sensor drivers run unchanged against a Linux /dev/i2c-N.
type PeriphBus struct {
	bus i2c.BusCloser
}

// OpenI2C opens a host I2C bus by name ("1", "/dev/i2c-1", "" for the first
// one found) at 400 kHz.
func OpenI2C(name string) (*PeriphBus, error) {
	hostInit.once.Do(func() {
		_, hostInit.err = host.Init()
	})
	if hostInit.err != nil {
		return nil, fmt.Errorf("periph init: %w", hostInit.err)
	}
	b, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open i2c %q: %w", name, err)
	}
	if err := b.SetSpeed(400 * physic.KiloHertz); err != nil {
		b.Close()
		return nil, fmt.Errorf("i2c %s: set speed: %w", b, err)
	}
	return &PeriphBus{bus: b}, nil
}

func (p *PeriphBus) Tx(addr uint16, w, r []byte) error {
	return p.bus.Tx(addr, w, r)
}

func (p *PeriphBus) ReadRegister(addr uint8, reg uint8, buf []byte) error {
	return p.bus.Tx(uint16(addr), []byte{reg}, buf)
}

func (p *PeriphBus) WriteRegister(addr uint8, reg uint8, buf []byte) error {
	return p.bus.Tx(uint16(addr), append([]byte{reg}, buf...), nil)
}

func (p *PeriphBus) String() string { return p.bus.String() }

func (p *PeriphBus) Close() error { return p.bus.Close() }
