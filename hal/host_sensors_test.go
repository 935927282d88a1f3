//go:build !tinygo

package hal

import (
	"errors"
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func readReg(t *testing.T, b *simBus, addr uint16, reg uint8) uint16 {
	t.Helper()
	var r [2]byte
	if err := b.Tx(addr, []byte{reg}, r[:]); err != nil {
		t.Fatalf("Tx(0x%02x, reg %d): %v", addr, reg, err)
	}
	return uint16(r[0])<<8 | uint16(r[1])
}

func TestSimBusMissingAddress(t *testing.T) {
	clk := &fakeClock{t: time.Unix(100, 0)}
	b := newSimBusWithClock(clk.now)
	var r [2]byte
	err := b.Tx(0x42, []byte{0x02}, r[:])
	if !errors.Is(err, ErrNoDevice) {
		t.Fatalf("err = %v, want ErrNoDevice", err)
	}
}

func TestSimBusBusVoltageEncoding(t *testing.T) {
	clk := &fakeClock{t: time.Unix(100, 0)}
	b := newSimBusWithClock(clk.now)

	raw := readReg(t, b, 0x44, 0x02)
	if got := (raw >> 3) * 4; got != 5020 {
		t.Fatalf("port3 bus = %d mV, want 5020", got)
	}
	if got := readReg(t, b, 0x44, 0x01) / 10; got != 15 {
		t.Fatalf("port3 current = %d mA, want 15", got)
	}

	clk.advance(9 * time.Second)
	raw = readReg(t, b, 0x44, 0x02)
	if got := (raw >> 3) * 4; got != 400 {
		t.Fatalf("unplugged port3 bus = %d mV, want 400", got)
	}

	clk.advance(5 * time.Second)
	raw = readReg(t, b, 0x44, 0x02)
	if got := (raw >> 3) * 4; got != 5020 {
		t.Fatalf("replugged port3 bus = %d mV, want 5020", got)
	}
}

func TestSimBusSawtooth(t *testing.T) {
	clk := &fakeClock{t: time.Unix(100, 0)}
	b := newSimBusWithClock(clk.now)

	clk.advance(6 * time.Second)
	if got := readReg(t, b, 0x45, 0x01) / 10; got != 800 {
		t.Fatalf("half-period current = %d mA, want 800", got)
	}
}

func TestSimBusConfigWriteAndReset(t *testing.T) {
	clk := &fakeClock{t: time.Unix(100, 0)}
	b := newSimBusWithClock(clk.now)

	if err := b.Tx(0x40, []byte{0x05, 0x10, 0x00}, nil); err != nil {
		t.Fatal(err)
	}
	if got := readReg(t, b, 0x40, 0x05); got != 0x1000 {
		t.Fatalf("cal = %#04x, want 0x1000", got)
	}
	if got := readReg(t, b, 0x40, 0x04); got == 0 {
		t.Fatal("current register zero after calibration")
	}

	if err := b.Tx(0x40, []byte{0x00, 0x80, 0x00}, nil); err != nil {
		t.Fatal(err)
	}
	if got := readReg(t, b, 0x40, 0x00); got != 0x399F {
		t.Fatalf("config after reset = %#04x, want 0x399f", got)
	}
	if got := readReg(t, b, 0x40, 0x05); got != 0 {
		t.Fatalf("cal after reset = %#04x, want 0", got)
	}
}

func TestSimBusPowerDown(t *testing.T) {
	clk := &fakeClock{t: time.Unix(100, 0)}
	b := newSimBusWithClock(clk.now)

	if err := b.Tx(0x40, []byte{0x00, 0x39, 0x98}, nil); err != nil {
		t.Fatal(err)
	}
	if got := readReg(t, b, 0x40, 0x02); got != 0 {
		t.Fatalf("bus while powered down = %#04x, want 0", got)
	}
}

func TestSimBusDetach(t *testing.T) {
	clk := &fakeClock{t: time.Unix(100, 0)}
	b := newSimBusWithClock(clk.now)
	b.Attach(0x40, nil)
	var r [2]byte
	if err := b.Tx(0x40, []byte{0x02}, r[:]); !errors.Is(err, ErrNoDevice) {
		t.Fatalf("err = %v, want ErrNoDevice", err)
	}
}
